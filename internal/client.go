package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// Client talks to the RAG backend. The base address is resolved through
// Prefs on every call, never cached.
type Client struct {
	prefs Prefs
	httpc *http.Client
}

// NewClient creates a backend client resolving its address through prefs.
func NewClient(prefs Prefs) *Client {
	return &Client{prefs: prefs, httpc: http.DefaultClient}
}

func (c *Client) baseURL() string {
	return BaseURL(c.prefs)
}

// queryRequest is the body of a streaming query.
type queryRequest struct {
	Prompt string `json:"prompt"`
}

// QueryStream is a pull-based view of one streaming query response.
// Callers must Close it; Close aborts the underlying transport read so an
// abandoned stream does not leak the connection.
type QueryStream struct {
	dec    *StreamDecoder
	body   io.ReadCloser
	cancel context.CancelFunc
}

// Next returns the next protocol event. io.EOF means the stream ended;
// note the backend may end the stream without a done event, which callers
// should treat as truncation rather than completion.
func (s *QueryStream) Next() (*StreamEvent, error) {
	return s.dec.Next()
}

// Close releases the underlying connection. Safe to call more than once.
func (s *QueryStream) Close() error {
	s.cancel()
	return s.body.Close()
}

// Query opens a streaming query for prompt. A non-2xx status or a response
// without a readable body is a fatal error; otherwise the decoded event
// sequence is returned for the caller to drive.
func (c *Client) Query(ctx context.Context, prompt string) (*QueryStream, error) {
	payload, err := json.Marshal(queryRequest{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/api/query", bytes.NewReader(payload))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to build query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("query request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		cancel()
		return nil, c.apiError(resp)
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		cancel()
		return nil, ErrNoStreamBody
	}

	return &QueryStream{
		dec:    NewStreamDecoder(resp.Body),
		body:   resp.Body,
		cancel: cancel,
	}, nil
}

// analyzeResponse is the body of a successful document analysis.
type analyzeResponse struct {
	Matches []Match `json:"matches"`
}

// AnalyzeDocument posts a PDF and an analysis config to the backend and
// returns the matched spans. The call blocks until the full response is in.
func (c *Client) AnalyzeDocument(ctx context.Context, pdf []byte, cfg RagConfig) ([]Match, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="document.pdf"`)
	header.Set("Content-Type", "application/pdf")
	part, err := form.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(pdf); err != nil {
		return nil, fmt.Errorf("failed to write document part: %w", err)
	}

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis config: %w", err)
	}
	if err := form.WriteField("config", string(cfgJSON)); err != nil {
		return nil, fmt.Errorf("failed to write config part: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/api/annotations", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyze request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.apiError(resp)
	}

	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode analyze response: %w", err)
	}
	return out.Matches, nil
}

// systemPromptList is the body of the system prompt listing.
type systemPromptList struct {
	Prompts []SystemPrompt `json:"prompts"`
}

// ListSystemPrompts fetches the backend's editable prompt templates.
func (c *Client) ListSystemPrompts(ctx context.Context) ([]SystemPrompt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+"/api/system-prompts", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt list request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prompt list request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.apiError(resp)
	}

	var out systemPromptList
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode prompt list: %w", err)
	}
	return out.Prompts, nil
}

// UpdateSystemPrompt replaces the content of one prompt template.
func (c *Client) UpdateSystemPrompt(ctx context.Context, key, content string) error {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("failed to encode prompt update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL()+"/api/system-prompts/"+key, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build prompt update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("prompt update request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp)
	}
	return nil
}

// apiError drains the response body into a typed error.
func (c *Client) apiError(resp *http.Response) error {
	detail, _ := io.ReadAll(resp.Body)
	return &APIError{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Body:       strings.TrimSpace(string(detail)),
	}
}
