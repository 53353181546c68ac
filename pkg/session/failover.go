package session

import (
	"errors"
	"sort"

	"context"
	"log/slog"

	"github.com/switchyard-ai/switchyard/internal/logging"
	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

// Failover is a ports.SessionStore layered over a durable primary and an
// in-process fallback. When the primary is unreachable the fallback serves
// reads and absorbs writes, so callers never observe the outage; both layers
// enforce the same TTL semantics, which bounds how long a fallback-only
// session can diverge.
type Failover struct {
	primary  ports.SessionStore
	fallback ports.SessionStore
	logger   *slog.Logger
}

// FailoverOption configures the failover store.
type FailoverOption func(*Failover)

// WithFailoverLogger configures a logger for backend-switch events.
func WithFailoverLogger(logger *slog.Logger) FailoverOption {
	return func(f *Failover) {
		f.logger = logger
	}
}

// NewFailover wraps primary with fallback.
func NewFailover(primary, fallback ports.SessionStore, opts ...FailoverOption) *Failover {
	f := &Failover{
		primary:  primary,
		fallback: fallback,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// unavailable classifies an error as a backend failure rather than a domain
// answer. Domain sentinels flow through untouched.
func unavailable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, domain.ErrSessionNotFound)
}

// Save writes to the primary, falling back when it is unreachable. A
// successful primary write clears any fallback copy left over from an outage.
func (f *Failover) Save(ctx context.Context, sess *domain.Session) error {
	err := f.primary.Save(ctx, sess)
	if err == nil {
		if delErr := f.fallback.Delete(ctx, sess.ID); delErr != nil {
			f.logger.Warn("failed to clear fallback session copy", "session_id", sess.ID, "err", delErr)
		}
		return nil
	}

	f.logger.Warn("durable session store unavailable, writing to fallback", "session_id", sess.ID, "err", err)
	return f.fallback.Save(ctx, sess)
}

// Load reads from the primary first. A primary miss still consults the
// fallback, because sessions written during an outage live only there.
func (f *Failover) Load(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := f.primary.Load(ctx, id)
	if err == nil {
		return sess, nil
	}
	if unavailable(err) {
		f.logger.Warn("durable session store unavailable, reading from fallback", "session_id", id, "err", err)
	}
	return f.fallback.Load(ctx, id)
}

// Delete removes the session from both layers. An unreachable primary is
// logged, not surfaced; its copy expires via TTL.
func (f *Failover) Delete(ctx context.Context, id string) error {
	if err := f.primary.Delete(ctx, id); err != nil {
		f.logger.Warn("durable session store unavailable, deleting from fallback only", "session_id", id, "err", err)
	}
	return f.fallback.Delete(ctx, id)
}

// List merges both layers' views, primary winning on duplicate IDs, ordered
// most recently updated first.
func (f *Failover) List(ctx context.Context, limit int) ([]domain.Summary, error) {
	primary, err := f.primary.List(ctx, limit)
	if err != nil {
		f.logger.Warn("durable session store unavailable, listing fallback only", "err", err)
		return f.fallback.List(ctx, limit)
	}

	fallback, err := f.fallback.List(ctx, 0)
	if err != nil {
		return primary, nil
	}

	seen := make(map[string]struct{}, len(primary))
	for _, s := range primary {
		seen[s.ID] = struct{}{}
	}
	merged := primary
	for _, s := range fallback {
		if _, dup := seen[s.ID]; !dup {
			merged = append(merged, s)
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].UpdatedAt.After(merged[j].UpdatedAt)
	})
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// Refresh renews the TTL wherever the session lives.
func (f *Failover) Refresh(ctx context.Context, id string) error {
	err := f.primary.Refresh(ctx, id)
	if err == nil {
		return nil
	}
	if unavailable(err) {
		f.logger.Warn("durable session store unavailable, refreshing fallback", "session_id", id, "err", err)
	}
	return f.fallback.Refresh(ctx, id)
}

// Ping reports the primary's health; the fallback keeps the store usable
// regardless.
func (f *Failover) Ping(ctx context.Context) error {
	return f.primary.Ping(ctx)
}
