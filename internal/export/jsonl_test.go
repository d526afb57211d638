package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(sampleDocument(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (one per message)", len(lines))
	}

	// Every line is one standalone JSON object.
	for i, line := range lines {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
		if _, ok := obj["role"]; !ok {
			t.Errorf("line %d missing role: %s", i, line)
		}
		if _, ok := obj["content"]; !ok {
			t.Errorf("line %d missing content: %s", i, line)
		}
	}

	// Only the assistant message carries sources.
	if strings.Contains(lines[0], "sources") {
		t.Errorf("user line should not carry sources: %s", lines[0])
	}
	if !strings.Contains(lines[1], "a.pdf") {
		t.Errorf("assistant line missing sources: %s", lines[1])
	}
}
