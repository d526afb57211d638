package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Backend is a scripted stand-in for the retrieval server. Each endpoint
// serves canned responses so command tests can exercise the full request
// path without a live server.
type Backend struct {
	// QueryLines are written one per line to every /api/query request.
	QueryLines []string
	// AnalyzeBody is returned verbatim from /api/annotations.
	AnalyzeBody string
	// Prompts is returned from GET /api/system-prompts and updated by PUT.
	Prompts map[string]string

	srv *httptest.Server
}

// NewBackend starts the scripted server and registers its shutdown with t.
func NewBackend(t *testing.T, lines []string) *Backend {
	t.Helper()

	b := &Backend{
		QueryLines:  lines,
		AnalyzeBody: `{"matches":[]}`,
		Prompts:     map[string]string{"default": "You are a helpful assistant."},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/query", b.handleQuery)
	mux.HandleFunc("POST /api/annotations", b.handleAnalyze)
	mux.HandleFunc("GET /api/system-prompts", b.handlePromptList)
	mux.HandleFunc("PUT /api/system-prompts/{key}", b.handlePromptUpdate)

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

// URL returns the backend's base URL, suitable for the apiBaseUrl pref.
func (b *Backend) URL() string {
	return b.srv.URL
}

func (b *Backend) handleQuery(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	flusher, _ := w.(http.Flusher)
	for _, line := range b.QueryLines {
		fmt.Fprintln(w, line)
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (b *Backend) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, b.AnalyzeBody)
}

func (b *Backend) handlePromptList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"prompts":[`)
	first := true
	for key, content := range b.Prompts {
		if !first {
			fmt.Fprint(w, ",")
		}
		first = false
		fmt.Fprintf(w, `{"key":%q,"title":%q,"content":%q}`, key, key, content)
	}
	fmt.Fprint(w, `]}`)
}

func (b *Backend) handlePromptUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b.Prompts[r.PathValue("key")] = body.Content
	w.WriteHeader(http.StatusNoContent)
}

// AnswerLines builds a minimal well-formed stream: sources, two tokens and
// the done marker. The concatenated answer is "The answer.".
func AnswerLines() []string {
	return []string{
		`{"type":"setSources","sources":[{"id":"1","filename":"a.pdf","documentRef":"KEY1"}]}`,
		`{"type":"token","token":"The "}`,
		`{"type":"token","token":"answer."}`,
		`{"type":"done"}`,
	}
}
