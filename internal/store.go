package internal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// schemaVersion is fixed; there is no migration path.
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	sources    TEXT
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id);
CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);
`

// ChatStore persists sessions and messages in a local SQLite database.
// The connection opens lazily on first use and is shared for the life of
// the process. Multi-step operations run inside a single transaction; no
// operation observes another's intermediate state.
type ChatStore struct {
	path   string
	mirror *Mirror

	openOnce sync.Once
	db       *sql.DB
	openErr  error
}

// NewChatStore creates a store over the database file at path. mirror may
// be nil to disable flat-file projection entirely.
func NewChatStore(path string, mirror *Mirror) *ChatStore {
	return &ChatStore{path: path, mirror: mirror}
}

// handle returns the shared connection, opening it on first use.
func (s *ChatStore) handle() (*sql.DB, error) {
	s.openOnce.Do(func() {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			s.openErr = &StoreError{Op: "open", Err: err}
			return
		}

		db, err := sql.Open("sqlite", s.path)
		if err != nil {
			s.openErr = &StoreError{Op: "open", Err: err}
			return
		}
		// One connection: SQLite serializes transactions anyway, and the
		// foreign_keys pragma is per-connection.
		db.SetMaxOpenConns(1)
		if err := db.Ping(); err != nil {
			_ = db.Close()
			s.openErr = &StoreError{Op: "open", Err: err}
			return
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			s.openErr = &StoreError{Op: "open", Err: err}
			return
		}
		if _, err := db.Exec(schemaSQL); err != nil {
			_ = db.Close()
			s.openErr = &StoreError{Op: "open", Err: err}
			return
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			_ = db.Close()
			s.openErr = &StoreError{Op: "open", Err: err}
			return
		}
		s.db = db
	})
	return s.db, s.openErr
}

// Close releases the connection if one was opened.
func (s *ChatStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Wait blocks until pending mirror writes settle. For shutdown and tests.
func (s *ChatStore) Wait() {
	if s.mirror != nil {
		s.mirror.Wait()
	}
}

// CreateSession allocates a new session and triggers a mirror write.
func (s *ChatStore) CreateSession(title string) (*ChatSession, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	session := &ChatSession{ID: NewID(), Title: title, CreatedAt: NowMillis()}
	_, err = db.Exec(
		"INSERT INTO sessions (id, title, created_at) VALUES (?, ?, ?)",
		session.ID, session.Title, session.CreatedAt,
	)
	if err != nil {
		return nil, &StoreError{Op: "exec", Err: err}
	}

	s.mirrorSession(session.ID)
	return session, nil
}

// ListSessions returns all sessions, newest first. Ties on created_at are
// broken by id so repeated calls without writes never reorder.
func (s *ChatStore) ListSessions() ([]*ChatSession, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT id, title, created_at FROM sessions ORDER BY created_at DESC, id ASC")
	if err != nil {
		return nil, &StoreError{Op: "query", Err: err}
	}
	defer rows.Close()

	sessions := make([]*ChatSession, 0)
	for rows.Next() {
		var session ChatSession
		if err := rows.Scan(&session.ID, &session.Title, &session.CreatedAt); err != nil {
			return nil, &StoreError{Op: "query", Err: err}
		}
		sessions = append(sessions, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "query", Err: err}
	}
	return sessions, nil
}

// GetSession returns the session with id, or (nil, nil) when absent.
func (s *ChatStore) GetSession(id string) (*ChatSession, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	var session ChatSession
	err = db.QueryRow("SELECT id, title, created_at FROM sessions WHERE id = ?", id).
		Scan(&session.ID, &session.Title, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "query", Err: err}
	}
	return &session, nil
}

// RenameSession updates a session's title in place. A missing id is a
// silent no-op and triggers no mirror write.
func (s *ChatStore) RenameSession(id, title string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	res, err := db.Exec("UPDATE sessions SET title = ? WHERE id = ?", title, id)
	if err != nil {
		return &StoreError{Op: "exec", Err: err}
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return nil
	}

	s.mirrorSession(id)
	return nil
}

// DeleteSession removes a session and every message referencing it in one
// transaction, then triggers removal of the mirror file.
func (s *ChatStore) DeleteSession(id string) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return &StoreError{Op: "tx", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM messages WHERE session_id = ?", id); err != nil {
		return &StoreError{Op: "exec", Err: err}
	}
	if _, err := tx.Exec("DELETE FROM sessions WHERE id = ?", id); err != nil {
		return &StoreError{Op: "exec", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &StoreError{Op: "tx", Err: err}
	}

	if s.mirror != nil {
		s.mirror.Remove(id)
	}
	return nil
}

// NewMessage carries the caller-supplied fields of a message; id and
// timestamp are allocated by the store.
type NewMessage struct {
	SessionID string
	Role      Role
	Content   string
	Sources   []Source
}

// AddMessage inserts a message and triggers a mirror write for its session.
// The session must exist.
func (s *ChatStore) AddMessage(msg NewMessage) (*ChatMessage, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	full := &ChatMessage{
		ID:        NewID(),
		SessionID: msg.SessionID,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: NowMillis(),
		Sources:   msg.Sources,
	}

	sources, err := encodeSources(full.Sources)
	if err != nil {
		return nil, &StoreError{Op: "exec", Err: err}
	}

	_, err = db.Exec(
		"INSERT INTO messages (id, session_id, role, content, created_at, sources) VALUES (?, ?, ?, ?, ?, ?)",
		full.ID, full.SessionID, full.Role, full.Content, full.CreatedAt, sources,
	)
	if err != nil {
		return nil, &StoreError{Op: "exec", Err: err}
	}

	s.mirrorSession(full.SessionID)
	return full, nil
}

// MessagePatch is a partial message update; nil fields are left untouched.
type MessagePatch struct {
	Content *string
	Sources *[]Source
}

// UpdateMessage patches a message in place inside one transaction. A
// missing id is fatal (ErrMessageNotFound), unlike RenameSession.
func (s *ChatStore) UpdateMessage(id string, patch MessagePatch) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return &StoreError{Op: "tx", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	var sessionID, content string
	var sources sql.NullString
	err = tx.QueryRow("SELECT session_id, content, sources FROM messages WHERE id = ?", id).
		Scan(&sessionID, &content, &sources)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to update message %s: %w", id, ErrMessageNotFound)
	}
	if err != nil {
		return &StoreError{Op: "query", Err: err}
	}

	if patch.Content != nil {
		content = *patch.Content
	}
	if patch.Sources != nil {
		encoded, err := encodeSources(*patch.Sources)
		if err != nil {
			return &StoreError{Op: "exec", Err: err}
		}
		sources = encoded
	}

	if _, err := tx.Exec("UPDATE messages SET content = ?, sources = ? WHERE id = ?", content, sources, id); err != nil {
		return &StoreError{Op: "exec", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &StoreError{Op: "tx", Err: err}
	}

	s.mirrorSession(sessionID)
	return nil
}

// ListMessages returns a session's messages, oldest first. A deleted or
// unknown session yields an empty list, not an error.
func (s *ChatStore) ListMessages(sessionID string) ([]*ChatMessage, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	return listMessages(db, sessionID)
}

// querier covers *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

func listMessages(q querier, sessionID string) ([]*ChatMessage, error) {
	rows, err := q.Query(
		"SELECT id, session_id, role, content, created_at, sources FROM messages WHERE session_id = ? ORDER BY created_at ASC, id ASC",
		sessionID,
	)
	if err != nil {
		return nil, &StoreError{Op: "query", Err: err}
	}
	defer rows.Close()

	messages := make([]*ChatMessage, 0)
	for rows.Next() {
		var msg ChatMessage
		var sources sql.NullString
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content, &msg.CreatedAt, &sources); err != nil {
			return nil, &StoreError{Op: "query", Err: err}
		}
		if sources.Valid && sources.String != "" {
			if err := json.Unmarshal([]byte(sources.String), &msg.Sources); err != nil {
				return nil, &StoreError{Op: "query", Err: err}
			}
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "query", Err: err}
	}
	return messages, nil
}

// encodeSources stores sources as JSON text, NULL when empty.
func encodeSources(sources []Source) (sql.NullString, error) {
	if len(sources) == 0 {
		return sql.NullString{}, nil
	}
	encoded, err := json.Marshal(sources)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(encoded), Valid: true}, nil
}

// mirrorSession snapshots a session after a committed mutation and hands it
// to the mirror. Mirror failures never reach the caller.
func (s *ChatStore) mirrorSession(id string) {
	if s.mirror == nil {
		return
	}

	session, err := s.GetSession(id)
	if err != nil || session == nil {
		if err != nil {
			Log.Debug("mirror snapshot failed", "session", id, "err", err)
		}
		return
	}
	messages, err := s.ListMessages(id)
	if err != nil {
		Log.Debug("mirror snapshot failed", "session", id, "err", err)
		return
	}

	s.mirror.Write(SessionSnapshot{Session: session, Messages: messages})
}
