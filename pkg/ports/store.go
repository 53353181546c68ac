package ports

import (
	"context"

	"github.com/switchyard-ai/switchyard/pkg/domain"
)

// SessionStore defines the interface for persisting conversation sessions.
// Every write carries the full session and renews its TTL; implementations
// must treat expired entries as absent.
type SessionStore interface {
	// Save persists the session and resets its expiry to now+TTL.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves a session by ID.
	// Returns domain.ErrSessionNotFound if the session does not exist or has expired.
	Load(ctx context.Context, id string) (*domain.Session, error)

	// Delete removes the session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error

	// List returns summaries of live sessions, most recently updated first.
	// limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]domain.Summary, error)

	// Refresh renews the session's TTL without touching its state.
	// Returns domain.ErrSessionNotFound if the session does not exist or has expired.
	Refresh(ctx context.Context, id string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
