package testutil

import (
	"testing"

	"ragchat/internal"
)

// SeedSession populates the database at path with one session holding a
// user/assistant exchange and returns it.
func SeedSession(t *testing.T, path, title string) *internal.ChatSession {
	t.Helper()

	store := internal.NewChatStore(path, nil)
	defer func() { _ = store.Close() }()

	session, err := store.CreateSession(title)
	if err != nil {
		t.Fatalf("Failed to create fixture session: %v", err)
	}

	if _, err := store.AddMessage(internal.NewMessage{
		SessionID: session.ID,
		Role:      internal.RoleUser,
		Content:   "What is X?",
	}); err != nil {
		t.Fatalf("Failed to add fixture user message: %v", err)
	}

	if _, err := store.AddMessage(internal.NewMessage{
		SessionID: session.ID,
		Role:      internal.RoleAssistant,
		Content:   "The answer.",
		Sources:   []internal.Source{{ID: "1", Filename: "a.pdf", DocumentRef: "KEY1"}},
	}); err != nil {
		t.Fatalf("Failed to add fixture assistant message: %v", err)
	}

	return session
}
