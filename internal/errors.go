package internal

import (
	"errors"
	"fmt"
)

// ErrMessageNotFound is returned by UpdateMessage when the target message
// does not exist. Renaming a missing session is a silent no-op instead;
// the two deliberately differ.
var ErrMessageNotFound = errors.New("message not found")

// ErrNoStreamBody is returned when a successful query response carries no
// readable body to stream from.
var ErrNoStreamBody = errors.New("query response has no readable body")

// APIError represents a non-success HTTP response from the backend
type APIError struct {
	Status     int
	StatusText string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend error (%d %s)", e.Status, e.StatusText)
	}
	return fmt.Sprintf("backend error (%d %s): %s", e.Status, e.StatusText, e.Body)
}

// StreamError represents a malformed line in the query response stream.
// It is fatal: the stream yields nothing after it.
type StreamError struct {
	Line string
	Err  error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream error on line %q: %v", e.Line, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// StoreError represents a failed chat store operation
type StoreError struct {
	Op  string // "open", "query", "exec", "tx"
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
