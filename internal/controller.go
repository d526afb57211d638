package internal

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// PendingContent is the transient content of a freshly inserted assistant
// placeholder, overwritten once the backend answers.
const PendingContent = "Thinking…"

// TurnState tracks one prompt through the turn-taking protocol.
type TurnState int

const (
	TurnIdle TurnState = iota
	TurnAwaitingSession
	TurnSent
	TurnStreaming
	TurnFinalized
	TurnFailed
)

func (s TurnState) String() string {
	switch s {
	case TurnIdle:
		return "idle"
	case TurnAwaitingSession:
		return "awaiting-session"
	case TurnSent:
		return "sent"
	case TurnStreaming:
		return "streaming"
	case TurnFinalized:
		return "finalized"
	case TurnFailed:
		return "failed"
	default:
		return fmt.Sprintf("TurnState(%d)", int(s))
	}
}

// RenderFunc receives every visible change to the pending assistant
// message: progress stages before the first token, then the accumulated
// answer after each token, then the final or error content.
type RenderFunc func(messageID, content string)

// TurnResult reports where a turn ended and what it produced.
type TurnResult struct {
	State       TurnState
	Session     *ChatSession
	UserMessage *ChatMessage
	Assistant   *ChatMessage
	Sources     []Source
	Err         error
}

// SessionController drives one conversation turn: persist the user prompt,
// stream the backend answer into a placeholder message, then finalize it
// or write the failure into it. A turn always ends finalized or failed once
// the placeholder exists.
type SessionController struct {
	store  *ChatStore
	client *Client
}

// NewSessionController wires a controller over a store and backend client.
func NewSessionController(store *ChatStore, client *Client) *SessionController {
	return &SessionController{store: store, client: client}
}

// Send runs one turn. sessionID selects the conversation; "" resolves the
// most recent session or creates one. An all-whitespace prompt is a no-op
// returning an idle result. render may be nil.
func (c *SessionController) Send(ctx context.Context, sessionID, prompt string, render RenderFunc) (*TurnResult, error) {
	res := &TurnResult{State: TurnIdle}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return res, nil
	}
	if render == nil {
		render = func(string, string) {}
	}

	res.State = TurnAwaitingSession
	session, err := c.ensureSession(sessionID)
	if err != nil {
		res.State = TurnFailed
		res.Err = err
		return res, err
	}
	res.Session = session

	// Auto-title from the first prompt unless the user renamed the session.
	if session.Title == "" || session.Title == DefaultSessionTitle {
		title := TitleFromPrompt(prompt)
		if err := c.store.RenameSession(session.ID, title); err != nil {
			res.State = TurnFailed
			res.Err = err
			return res, err
		}
		session.Title = title
	}

	userMsg, err := c.store.AddMessage(NewMessage{SessionID: session.ID, Role: RoleUser, Content: prompt})
	if err != nil {
		res.State = TurnFailed
		res.Err = err
		return res, err
	}
	res.UserMessage = userMsg

	pending, err := c.store.AddMessage(NewMessage{SessionID: session.ID, Role: RoleAssistant, Content: PendingContent})
	if err != nil {
		res.State = TurnFailed
		res.Err = err
		return res, err
	}
	res.Assistant = pending
	render(pending.ID, pending.Content)
	res.State = TurnSent

	stream, err := c.client.Query(ctx, prompt)
	if err != nil {
		return c.fail(res, err, render)
	}
	defer func() { _ = stream.Close() }()
	res.State = TurnStreaming

	var answer strings.Builder
	var sources []Source
	sawToken := false

consume:
	for {
		ev, err := stream.Next()
		if err == io.EOF {
			// Ended without done: truncation, finalize what arrived.
			break
		}
		if err != nil {
			return c.fail(res, err, render)
		}

		switch ev.Type {
		case EventUpdateProgress:
			if !sawToken {
				render(pending.ID, ev.Stage)
			}
		case EventSetSources:
			sources = ev.Sources
		case EventToken:
			if !sawToken {
				// The first token discards placeholder and progress text.
				answer.Reset()
				sawToken = true
			}
			answer.WriteString(ev.Token)
			render(pending.ID, answer.String())
		case EventDone:
			break consume
		}
	}

	final := answer.String()
	if err := c.store.UpdateMessage(pending.ID, MessagePatch{Content: &final, Sources: &sources}); err != nil {
		return c.fail(res, err, render)
	}
	pending.Content = final
	pending.Sources = sources
	res.Sources = sources
	res.State = TurnFinalized
	render(pending.ID, final)
	return res, nil
}

// fail writes the error into the placeholder, leaving sources empty, and
// ends the turn failed. The triggering error is returned to the caller.
func (c *SessionController) fail(res *TurnResult, cause error, render RenderFunc) (*TurnResult, error) {
	content := "Error: " + cause.Error()
	if err := c.store.UpdateMessage(res.Assistant.ID, MessagePatch{Content: &content}); err != nil {
		Log.Warn("failed to record turn error", "message", res.Assistant.ID, "err", err)
	} else {
		res.Assistant.Content = content
	}
	render(res.Assistant.ID, content)

	res.State = TurnFailed
	res.Err = cause
	return res, cause
}

// ensureSession resolves the target session: an explicit id must exist, ""
// picks the most recent session or creates a fresh one.
func (c *SessionController) ensureSession(id string) (*ChatSession, error) {
	if id != "" {
		session, err := c.store.GetSession(id)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, fmt.Errorf("session %s not found", id)
		}
		return session, nil
	}

	sessions, err := c.store.ListSessions()
	if err != nil {
		return nil, err
	}
	if len(sessions) > 0 {
		return sessions[0], nil
	}
	return c.store.CreateSession(DefaultSessionTitle)
}
