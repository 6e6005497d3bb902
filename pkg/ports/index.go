package ports

import (
	"context"
	"time"
)

// SessionInfo describes one live session.
type SessionInfo struct {
	ID        string
	ExpiresAt time.Time
}

// SessionIndex is a shared record of live sessions, used to inspect a
// deployment from outside the process that owns the sessions.
type SessionIndex interface {
	// Touch records the session with its current expiry.
	Touch(ctx context.Context, sessionID string, expiresAt time.Time) error

	// Remove forgets the session.
	Remove(ctx context.Context, sessionID string) error

	// List returns the sessions that have not expired, soonest expiry first.
	List(ctx context.Context) ([]SessionInfo, error)
}
