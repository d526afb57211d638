package export

import (
	"fmt"
	"io"
	"strings"

	"ragchat/internal"
)

// MarkdownExporter exports sessions in Markdown format
type MarkdownExporter struct{}

// Export exports a session to Markdown format
func (e *MarkdownExporter) Export(doc *Document, w io.Writer) error {
	session := doc.Session

	// Header
	_, _ = fmt.Fprintf(w, "# %s\n\n", session.Title)
	_, _ = fmt.Fprintf(w, "**Session:** %s  \n", session.ID)
	_, _ = fmt.Fprintf(w, "**Created:** %s  \n", internal.FormatMillis(session.CreatedAt))
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(doc.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")

	// Messages
	for i, msg := range doc.Messages {
		content := escapeMarkdown(msg.Content)

		_, _ = fmt.Fprintf(w, "**%s:** (%s)\n\n%s\n\n", msg.Role, internal.FormatMillis(msg.CreatedAt), content)

		if len(msg.Sources) > 0 {
			_, _ = fmt.Fprintf(w, "Sources:\n\n")
			for _, src := range msg.Sources {
				if src.DocumentRef != "" {
					_, _ = fmt.Fprintf(w, "- %s (%s)\n", src.Filename, src.DocumentRef)
				} else {
					_, _ = fmt.Fprintf(w, "- %s\n", src.Filename)
				}
			}
			_, _ = fmt.Fprintf(w, "\n")
		}

		// Add horizontal rule after each message (except the last one)
		if i < len(doc.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			// Escape markdown syntax outside code blocks
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
