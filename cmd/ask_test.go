package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ragchat/internal"
	"ragchat/testutil"
)

func TestAskCommand_PersistsTurn(t *testing.T) {
	backend := testutil.NewBackend(t, testutil.AnswerLines())
	env := newTestEnv(t, backend.URL())

	if err := runCommand(t, env, "ask", "What is X?"); err != nil {
		t.Fatalf("ask failed: %v", err)
	}

	store := openTestStore(t, env)
	sessions, err := store.ListSessions()
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}
	if sessions[0].Title != "What is X?" {
		t.Errorf("Expected auto-title from prompt, got %q", sessions[0].Title)
	}

	messages, err := store.ListMessages(sessions[0].ID)
	if err != nil {
		t.Fatalf("Failed to list messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != internal.RoleUser || messages[0].Content != "What is X?" {
		t.Errorf("Unexpected user message: %+v", messages[0])
	}
	if messages[1].Role != internal.RoleAssistant || messages[1].Content != "The answer." {
		t.Errorf("Unexpected assistant message: %+v", messages[1])
	}
	if len(messages[1].Sources) != 1 || messages[1].Sources[0].Filename != "a.pdf" {
		t.Errorf("Expected one cited source, got %+v", messages[1].Sources)
	}
}

func TestAskCommand_WritesMirrorFile(t *testing.T) {
	backend := testutil.NewBackend(t, testutil.AnswerLines())
	env := newTestEnv(t, backend.URL())

	if err := runCommand(t, env, "ask", "What is X?"); err != nil {
		t.Fatalf("ask failed: %v", err)
	}

	store := openTestStore(t, env)
	sessions, err := store.ListSessions()
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}

	data, err := os.ReadFile(filepath.Join(env.mirrorDir, sessions[0].ID+".txt"))
	if err != nil {
		t.Fatalf("Expected mirror file: %v", err)
	}
	if !strings.Contains(string(data), "The answer.") {
		t.Errorf("Mirror file should contain the answer, got:\n%s", data)
	}
}

func TestAskCommand_NewFlagStartsFreshSession(t *testing.T) {
	backend := testutil.NewBackend(t, testutil.AnswerLines())
	env := newTestEnv(t, backend.URL())

	if err := runCommand(t, env, "ask", "first question"); err != nil {
		t.Fatalf("first ask failed: %v", err)
	}
	if err := runCommand(t, env, "ask", "--new", "second question"); err != nil {
		t.Fatalf("second ask failed: %v", err)
	}

	store := openTestStore(t, env)
	sessions, err := store.ListSessions()
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}
}

func TestAskCommand_BackendFailureSurfaces(t *testing.T) {
	backend := testutil.NewBackend(t, []string{"not json"})
	env := newTestEnv(t, backend.URL())

	if err := runCommand(t, env, "ask", "What is X?"); err == nil {
		t.Fatal("Expected malformed stream to fail the command")
	}

	// The failed turn is still persisted with the error in the placeholder.
	store := openTestStore(t, env)
	sessions, err := store.ListSessions()
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}
	messages, err := store.ListMessages(sessions[0].ID)
	if err != nil {
		t.Fatalf("Failed to list messages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if !strings.HasPrefix(messages[1].Content, "Error: ") {
		t.Errorf("Expected error content, got %q", messages[1].Content)
	}
}

func TestStreamPrinter_DeltaOutput(t *testing.T) {
	// render sequences mirror a turn: placeholder, stages, then the
	// accumulating answer.
	p := &streamPrinter{}
	p.last = ""

	p.render("m1", "Thinking…")
	if p.last != "Thinking…" {
		t.Errorf("Expected last to track content, got %q", p.last)
	}

	p.render("m1", "The ")
	p.render("m1", "The answer.")
	if p.last != "The answer." {
		t.Errorf("Expected last to track accumulated answer, got %q", p.last)
	}
}
