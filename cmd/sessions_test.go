package cmd

import (
	"testing"
)

func TestSessionsNewCommand(t *testing.T) {
	env := newTestEnv(t, "http://localhost:1") // backend never contacted

	if err := runCommand(t, env, "sessions", "new", "Reading notes"); err != nil {
		t.Fatalf("sessions new failed: %v", err)
	}

	store := openTestStore(t, env)
	sessions, err := store.ListSessions()
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Title != "Reading notes" {
		t.Fatalf("Expected one session titled 'Reading notes', got %+v", sessions)
	}
}

func TestSessionsNewCommand_DefaultTitle(t *testing.T) {
	env := newTestEnv(t, "http://localhost:1")

	if err := runCommand(t, env, "sessions", "new"); err != nil {
		t.Fatalf("sessions new failed: %v", err)
	}

	store := openTestStore(t, env)
	sessions, err := store.ListSessions()
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Title != "New chat" {
		t.Fatalf("Expected default title, got %+v", sessions)
	}
}

func TestSessionsRenameCommand(t *testing.T) {
	env := newTestEnv(t, "http://localhost:1")

	if err := runCommand(t, env, "sessions", "new", "Old title"); err != nil {
		t.Fatalf("sessions new failed: %v", err)
	}

	store := openTestStore(t, env)
	sessions, err := store.ListSessions()
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}

	if err := runCommand(t, env, "sessions", "rename", sessions[0].ID, "New title"); err != nil {
		t.Fatalf("sessions rename failed: %v", err)
	}

	renamed, err := store.GetSession(sessions[0].ID)
	if err != nil {
		t.Fatalf("Failed to reload session: %v", err)
	}
	if renamed.Title != "New title" {
		t.Errorf("Expected renamed title, got %q", renamed.Title)
	}
}

func TestSessionsRenameCommand_MissingIsNoOp(t *testing.T) {
	env := newTestEnv(t, "http://localhost:1")

	if err := runCommand(t, env, "sessions", "rename", "no-such-id", "whatever"); err != nil {
		t.Fatalf("Renaming a missing session should not fail: %v", err)
	}
}

func TestSessionsDeleteCommand(t *testing.T) {
	env := newTestEnv(t, "http://localhost:1")

	if err := runCommand(t, env, "sessions", "new", "Doomed"); err != nil {
		t.Fatalf("sessions new failed: %v", err)
	}

	store := openTestStore(t, env)
	sessions, err := store.ListSessions()
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}

	if err := runCommand(t, env, "sessions", "delete", sessions[0].ID); err != nil {
		t.Fatalf("sessions delete failed: %v", err)
	}

	remaining, err := store.ListSessions()
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("Expected no sessions after delete, got %d", len(remaining))
	}
}
