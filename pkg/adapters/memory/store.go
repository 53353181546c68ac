// Package memory provides an in-process session store. It backs local
// development and doubles as the fallback behind the durable store, so its
// TTL semantics match the Redis adapter exactly.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/switchyard-ai/switchyard/pkg/domain"
)

// DefaultTTL matches the durable store's session lifetime.
const DefaultTTL = time.Hour

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string]*domain.Session

	ttl   time.Duration
	clock func() time.Time
}

// Option configures the store.
type Option func(*Store)

// WithTTL sets the session lifetime. Zero means sessions never expire.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source. Tests use this to force expiry.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data:  make(map[string]*domain.Session),
		ttl:   DefaultTTL,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists a deep copy of the session and renews its expiry.
func (s *Store) Save(ctx context.Context, session *domain.Session) error {
	copied := session.Clone()
	if s.ttl > 0 {
		copied.ExpiresAt = s.clock().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[session.ID] = copied

	// Mirror the write-through expiry back to the caller's copy.
	session.ExpiresAt = copied.ExpiresAt
	return nil
}

// Load retrieves the session. Expired entries are treated as absent; the
// sweeper removes them for real.
func (s *Store) Load(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.data[id]
	if !ok || s.expired(session) {
		return nil, domain.ErrSessionNotFound
	}

	// Copy on read so callers can't mutate stored state through the pointer.
	return session.Clone(), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns summaries of live sessions, most recently updated first.
func (s *Store) List(ctx context.Context, limit int) ([]domain.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.Summary, 0, len(s.data))
	for _, session := range s.data {
		if s.expired(session) {
			continue
		}
		summaries = append(summaries, session.Summarize())
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})

	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// Refresh renews the session's TTL without touching its state.
func (s *Store) Refresh(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.data[id]
	if !ok || s.expired(session) {
		return domain.ErrSessionNotFound
	}
	if s.ttl > 0 {
		session.ExpiresAt = s.clock().Add(s.ttl)
	}
	return nil
}

// Ping always succeeds; the process is its own backend.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// EvictExpired removes every expired entry and reports how many went. The
// background sweeper calls this; foreground reads never pay for eviction.
func (s *Store) EvictExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, session := range s.data {
		if !session.ExpiresAt.IsZero() && !now.Before(session.ExpiresAt) {
			delete(s.data, id)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of entries, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *Store) expired(session *domain.Session) bool {
	if session.ExpiresAt.IsZero() {
		return false
	}
	return !s.clock().Before(session.ExpiresAt)
}
