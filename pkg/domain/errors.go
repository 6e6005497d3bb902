package domain

import (
	"errors"
	"fmt"
)

// ErrSessionExpired is returned when a session ID is unknown, reaped or past its lifetime.
var ErrSessionExpired = errors.New("session expired")

// ErrPageExpired is returned when a page ID cannot be found in the session's page store.
var ErrPageExpired = errors.New("page expired")

// ErrProtocol is the parent of every request-shape violation (see ProtocolError).
var ErrProtocol = errors.New("protocol error")

// ErrInvalidAction is returned when the submitted action token does not resolve
// against the page it was sent to.
var ErrInvalidAction = errors.New("invalid action")

// ErrUnavailable is returned when the session lock cannot be obtained in time.
var ErrUnavailable = errors.New("session unavailable")

// ErrCallbackFailed wraps errors returned (or panics raised) by application callbacks.
var ErrCallbackFailed = errors.New("callback failed")

// ErrChainCorrupted signals a broken decoration chain (nil next, missing terminal).
// It is raised as a panic: it is a programming error, not a request error.
var ErrChainCorrupted = errors.New("decoration chain corrupted")

// ErrNotCalled is returned by Answer when the component was not called by anyone.
var ErrNotCalled = errors.New("component was not called")

// ErrAlreadyCalled is returned by Call when the caller is already delegating to the same callee.
var ErrAlreadyCalled = errors.New("call already in flight")

// ErrSelfCall is returned by Call when a component tries to call itself.
var ErrSelfCall = errors.New("component cannot call itself")

// ErrCallCycle is returned by Call when the callee already delegates, directly
// or through other callees, back to the caller.
var ErrCallCycle = errors.New("call would create a delegation cycle")

// ErrUnknownFollowup is returned when a named follow-up handler is not registered on the caller.
var ErrUnknownFollowup = errors.New("unknown follow-up handler")

// ErrUnknownResource is returned when a request names a resource nobody registered.
var ErrUnknownResource = errors.New("unknown resource")

// ProtocolError describes a malformed request. It matches ErrProtocol with errors.Is.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %s", e.Reason)
}

// Unwrap allows errors.Is(err, ErrProtocol).
func (e *ProtocolError) Unwrap() error {
	return ErrProtocol
}

// NewProtocolError formats a ProtocolError.
func NewProtocolError(format string, args ...any) error {
	return &ProtocolError{Reason: fmt.Sprintf(format, args...)}
}
