package export

import (
	"bytes"
	"strings"
	"testing"

	"ragchat/internal"
)

func sampleDocument() *Document {
	return &Document{
		Session: &internal.ChatSession{ID: "sess1", Title: "Reading notes", CreatedAt: 1700000000000},
		Messages: []*internal.ChatMessage{
			{ID: "m1", SessionID: "sess1", Role: internal.RoleUser, Content: "What is X?", CreatedAt: 1700000001000},
			{
				ID: "m2", SessionID: "sess1", Role: internal.RoleAssistant, Content: "The answer.",
				CreatedAt: 1700000002000,
				Sources: []internal.Source{
					{ID: "1", Filename: "a.pdf", DocumentRef: "KEY1"},
					{ID: "2", Filename: "b.pdf"},
				},
			},
		},
	}
}

func TestMarkdownExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(sampleDocument(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Reading notes",
		"**Session:** sess1",
		"**Messages:** 2",
		"**user:**",
		"What is X?",
		"**assistant:**",
		"The answer.",
		"- a.pdf (KEY1)",
		"- b.pdf",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "escapes bold markers",
			input: "this is **bold** text",
			want:  []string{"\\*\\*bold\\*\\*"},
		},
		{
			name:  "preserves code blocks",
			input: "```go\npackage main\n```",
			want:  []string{"```go", "package main", "```"},
		},
		{
			name:  "escapes underscores outside code",
			input: "some __emphasis__ here",
			want:  []string{"\\_\\_emphasis\\_\\_"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := escapeMarkdown(tt.input)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("escapeMarkdown(%q) = %q, missing %q", tt.input, got, w)
				}
			}
		})
	}
}
