package internal

// Event types carried by the query response stream.
const (
	EventSetSources     = "setSources"
	EventUpdateProgress = "updateProgress"
	EventToken          = "token"
	EventDone           = "done"
)

// StreamEvent is one decoded unit of the query response stream. Type
// discriminates which payload fields are meaningful:
//
//   - setSources: Sources
//   - updateProgress: Stage, optionally Debug
//   - token: Token
//   - done: no payload
type StreamEvent struct {
	Type    string   `json:"type"`
	Sources []Source `json:"sources,omitempty"`
	Stage   string   `json:"stage,omitempty"`
	Debug   string   `json:"debug,omitempty"`
	Token   string   `json:"token,omitempty"`
}

// IsDone reports whether the event terminates the stream.
func (e *StreamEvent) IsDone() bool {
	return e.Type == EventDone
}
