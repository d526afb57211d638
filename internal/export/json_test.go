package export

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestJSONExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(sampleDocument(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var got Document
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if got.Session.ID != "sess1" || got.Session.Title != "Reading notes" {
		t.Errorf("session = %+v", got.Session)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(got.Messages))
	}
	if len(got.Messages[1].Sources) != 2 {
		t.Errorf("assistant sources = %+v", got.Messages[1].Sources)
	}
}
