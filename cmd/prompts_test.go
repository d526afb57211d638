package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"ragchat/testutil"
)

func TestPromptsListCommand(t *testing.T) {
	backend := testutil.NewBackend(t, nil)
	env := newTestEnv(t, backend.URL())

	if err := runCommand(t, env, "prompts", "list"); err != nil {
		t.Fatalf("prompts list failed: %v", err)
	}
}

func TestPromptsSetCommand(t *testing.T) {
	backend := testutil.NewBackend(t, nil)
	env := newTestEnv(t, backend.URL())

	if err := runCommand(t, env, "prompts", "set", "default", "Answer tersely."); err != nil {
		t.Fatalf("prompts set failed: %v", err)
	}

	if got := backend.Prompts["default"]; got != "Answer tersely." {
		t.Errorf("Expected backend prompt to be replaced, got %q", got)
	}
}

func TestPromptsSetCommand_FromFile(t *testing.T) {
	backend := testutil.NewBackend(t, nil)
	env := newTestEnv(t, backend.URL())

	contentPath := filepath.Join(t.TempDir(), "prompt.txt")
	if err := os.WriteFile(contentPath, []byte("Cite every claim."), 0644); err != nil {
		t.Fatalf("Failed to write content file: %v", err)
	}

	if err := runCommand(t, env, "prompts", "set", "default", "--file", contentPath); err != nil {
		t.Fatalf("prompts set failed: %v", err)
	}

	if got := backend.Prompts["default"]; got != "Cite every claim." {
		t.Errorf("Expected backend prompt from file, got %q", got)
	}
}

func TestPromptsSetCommand_MissingContent(t *testing.T) {
	backend := testutil.NewBackend(t, nil)
	env := newTestEnv(t, backend.URL())

	if err := runCommand(t, env, "prompts", "set", "default"); err == nil {
		t.Fatal("Expected missing content to fail")
	}
}

func TestPromptsShowCommand_UnknownKey(t *testing.T) {
	backend := testutil.NewBackend(t, nil)
	env := newTestEnv(t, backend.URL())

	if err := runCommand(t, env, "prompts", "show", "no-such-key"); err == nil {
		t.Fatal("Expected unknown prompt key to fail")
	}
}
