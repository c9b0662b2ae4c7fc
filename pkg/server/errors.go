package server

import (
	"errors"
	"fmt"
)

// Sentinel errors for common session and server error conditions.
var (
	// ErrSessionClosed is returned when an operation is attempted on a closed session.
	ErrSessionClosed = errors.New("server: session closed")

	// ErrHandlerNotFound is returned when a node has no listener for an event.
	ErrHandlerNotFound = errors.New("server: handler not found")

	// ErrUnsupportedHandler is returned when a listener has a shape host.Invoke
	// cannot call.
	ErrUnsupportedHandler = errors.New("server: unsupported handler type")

	// ErrServerClosed is returned by Run after Shutdown.
	ErrServerClosed = errors.New("server: server closed")
)

// SessionError wraps an error with session context for debugging.
type SessionError struct {
	SessionID string
	Op        string // Operation that failed
	Err       error  // Underlying error
}

// Error returns the error message with session context.
func (e *SessionError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("server: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("server: session %s: %s: %v", e.SessionID, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SessionError) Unwrap() error {
	return e.Err
}
