package export

import (
	"encoding/json"
	"fmt"
	"io"

	"ragchat/internal"
)

// JSONLExporter exports sessions in JSONL format (one message per line)
type JSONLExporter struct{}

// Export exports a session to JSONL format
func (e *JSONLExporter) Export(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range doc.Messages {
		// Create message object
		obj := map[string]interface{}{
			"role":      msg.Role,
			"content":   msg.Content,
			"timestamp": internal.FormatMillis(msg.CreatedAt),
		}

		if len(msg.Sources) > 0 {
			obj["sources"] = msg.Sources
		}

		// Encode to single line
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
