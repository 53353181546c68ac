package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the
// store, or the stored entry has expired.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionBusy is returned when a turn is already in flight for the session
// and the manager is configured to reject rather than wait.
var ErrSessionBusy = errors.New("session busy")

// ErrRecordNotFound is returned by directory lookups when no record matches.
// Agents translate it into a clarification, never into a failed turn.
var ErrRecordNotFound = errors.New("record not found")

// ValidationError reports malformed caller input. It maps to a 400 at the
// HTTP boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ExternalError wraps a failure of an external collaborator (reasoning
// service, directory, retriever). Specialists absorb these into state
// updates; only the supervisor lets one abort the turn.
type ExternalError struct {
	Service string
	Err     error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}

// IsExternal reports whether err is (or wraps) an ExternalError.
func IsExternal(err error) bool {
	var ext *ExternalError
	return errors.As(err, &ext)
}
