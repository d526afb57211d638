package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Mirror projects store state to one human-readable text file per session.
// It is best effort and fully detached from the store's transactions:
// writes run on their own goroutines, failures are logged and never
// surfaced to the triggering operation. Writes for the same session are
// serialized in submission order so a newer snapshot cannot be overwritten
// by an older one.
type Mirror struct {
	prefs Prefs

	mu    sync.Mutex
	tails map[string]chan struct{}
	wg    sync.WaitGroup
}

// NewMirror creates a mirror resolving its output directory through prefs
// at write time. An unset directory preference disables every operation.
func NewMirror(prefs Prefs) *Mirror {
	return &Mirror{prefs: prefs, tails: make(map[string]chan struct{})}
}

// SessionSnapshot is the consistent store state a mirror write renders.
type SessionSnapshot struct {
	Session  *ChatSession
	Messages []*ChatMessage
}

// Write queues a projection of snapshot and returns immediately.
func (m *Mirror) Write(snapshot SessionSnapshot) {
	id := snapshot.Session.ID
	m.enqueue(id, func() {
		if err := m.write(snapshot); err != nil {
			Log.Warn("mirror write failed", "session", id, "err", err)
		}
	})
}

// Remove queues deletion of a session's mirror file, tolerating absence.
func (m *Mirror) Remove(sessionID string) {
	m.enqueue(sessionID, func() {
		dir := m.dir()
		if dir == "" {
			return
		}
		if err := os.Remove(m.path(dir, sessionID)); err != nil && !os.IsNotExist(err) {
			Log.Warn("mirror remove failed", "session", sessionID, "err", err)
		}
	})
}

// Wait blocks until every queued operation has settled. Used on shutdown
// and by tests.
func (m *Mirror) Wait() {
	m.wg.Wait()
}

// enqueue chains job behind the previous job for the same session.
func (m *Mirror) enqueue(sessionID string, job func()) {
	m.mu.Lock()
	prev := m.tails[sessionID]
	done := make(chan struct{})
	m.tails[sessionID] = done
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			close(done)
			m.mu.Lock()
			if m.tails[sessionID] == done {
				delete(m.tails, sessionID)
			}
			m.mu.Unlock()
		}()
		if prev != nil {
			<-prev
		}
		job()
	}()
}

func (m *Mirror) dir() string {
	return strings.TrimSpace(m.prefs.Get(PrefMirrorDir))
}

func (m *Mirror) path(dir, sessionID string) string {
	return filepath.Join(dir, sessionID+".txt")
}

// write renders the snapshot and swaps it into place atomically so a
// concurrent reader never observes a half-written file.
func (m *Mirror) write(snapshot SessionSnapshot) error {
	dir := m.dir()
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create mirror directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, snapshot.Session.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(renderSessionText(snapshot)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write mirror file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to close mirror file: %w", err)
	}

	target := m.path(dir, snapshot.Session.ID)
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace mirror file: %w", err)
	}
	return nil
}

// renderSessionText produces the deterministic flat-file form of a session.
func renderSessionText(snapshot SessionSnapshot) []byte {
	var b strings.Builder
	s := snapshot.Session

	fmt.Fprintf(&b, "%s\n", s.Title)
	fmt.Fprintf(&b, "Session: %s\n", s.ID)
	fmt.Fprintf(&b, "Created: %s\n", FormatMillis(s.CreatedAt))

	for _, msg := range snapshot.Messages {
		b.WriteString("\n----\n")
		fmt.Fprintf(&b, "[%s] %s\n", FormatMillis(msg.CreatedAt), msg.Role)
		b.WriteString(msg.Content)
		b.WriteString("\n")
		if len(msg.Sources) > 0 {
			encoded, err := json.Marshal(msg.Sources)
			if err == nil {
				fmt.Fprintf(&b, "Sources: %s\n", encoded)
			}
		}
	}

	return []byte(b.String())
}
