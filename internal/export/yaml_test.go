package export

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(sampleDocument(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	// The document must parse back as YAML.
	var got map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Reading notes", "What is X?", "The answer.", "a.pdf"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
