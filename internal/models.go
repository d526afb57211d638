package internal

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultSessionTitle is the placeholder title a session carries until it is
// renamed, either by the user or automatically from the first prompt.
const DefaultSessionTitle = "New chat"

// ChatSession represents one conversation thread.
type ChatSession struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"createdAt"` // milliseconds since epoch
}

// ChatMessage represents a single message within a session.
type ChatMessage struct {
	ID        string   `json:"id"`
	SessionID string   `json:"sessionId"`
	Role      Role     `json:"role"`
	Content   string   `json:"content"`
	CreatedAt int64    `json:"createdAt"` // milliseconds since epoch
	Sources   []Source `json:"sources,omitempty"`
}

// Source is one document the backend cited for an assistant answer.
type Source struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	DocumentRef string `json:"documentRef,omitempty"`
}

// HighlightRule is one highlighting instruction for document analysis.
// Enabled and ColorHex only drive local presentation and are stripped
// before transmission.
type HighlightRule struct {
	ID       string `json:"id" yaml:"id"`
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	ColorHex string `json:"colorHex" yaml:"colorHex"`
	TermsRaw string `json:"termsRaw" yaml:"termsRaw"`
}

// RagRule is the wire form of a highlight rule.
type RagRule struct {
	ID       string `json:"id"`
	TermsRaw string `json:"termsRaw"`
}

// RagConfig is the analysis configuration sent to the backend.
type RagConfig struct {
	Rules []RagRule `json:"rules"`
}

// BuildRagConfig converts local highlight rules to their wire form,
// dropping disabled rules and presentation-only fields.
func BuildRagConfig(rules []HighlightRule) RagConfig {
	cfg := RagConfig{Rules: []RagRule{}}
	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		cfg.Rules = append(cfg.Rules, RagRule{ID: r.ID, TermsRaw: r.TermsRaw})
	}
	return cfg
}

// Match is one highlighted span the backend found in an analyzed document.
type Match struct {
	ID        string      `json:"id"`
	PageIndex int         `json:"pageIndex"`
	Rects     [][]float64 `json:"rects"`
}

// PromptPlaceholder documents one substitution slot in a system prompt.
type PromptPlaceholder struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SystemPrompt is one editable backend prompt template.
type SystemPrompt struct {
	Key          string              `json:"key"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Placeholders []PromptPlaceholder `json:"placeholders"`
	Content      string              `json:"content"`
}

// titleMaxRunes is the longest auto-generated session title before truncation.
const titleMaxRunes = 32

// TitleFromPrompt derives a session title from the first prompt, truncating
// long prompts to 32 characters plus an ellipsis.
func TitleFromPrompt(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > titleMaxRunes {
		return string(runes[:titleMaxRunes]) + "…"
	}
	return prompt
}

// NewID allocates an opaque unique identifier.
func NewID() string {
	return uuid.NewString()
}

// NowMillis returns the current time in milliseconds since epoch.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// MillisToTime converts a millisecond epoch timestamp to a time.Time.
func MillisToTime(ms int64) time.Time {
	return time.Unix(0, ms*int64(time.Millisecond))
}

// FormatMillis renders a millisecond epoch timestamp as ISO-8601 (UTC).
func FormatMillis(ms int64) string {
	return MillisToTime(ms).UTC().Format(time.RFC3339)
}
