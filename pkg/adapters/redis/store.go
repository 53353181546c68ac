// Package redis provides the durable session store and the distributed lock.
// Sessions live as JSON values with a native TTL plus a ZSET index scored by
// expiry, so listing stays cheap and expired entries fall out lazily.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/switchyard-ai/switchyard/pkg/domain"
)

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = time.Hour

// farFuture scores index entries for non-expiring sessions (2100-01-01, ms).
const farFuture = 4102444800000

// Store implements ports.SessionStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	clock  func() time.Time
}

type Option func(*Store)

// WithTTL sets the expiration for sessions. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithClock overrides the time source used for index scores.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "switchyard:session:",
		ttl:    DefaultTTL,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

func (s *Store) score(expiry time.Time) float64 {
	if s.ttl == 0 {
		return farFuture
	}
	return float64(expiry.UnixMilli())
}

// Save persists the session and renews its TTL.
func (s *Store) Save(ctx context.Context, session *domain.Session) error {
	if s.ttl > 0 {
		session.ExpiresAt = s.clock().Add(s.ttl)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(session.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  s.score(session.ExpiresAt),
		Member: session.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the session. Expired keys are gone natively, so a miss and
// an expiry look the same to callers.
func (s *Store) Load(ctx context.Context, id string) (*domain.Session, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes the session and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// List returns summaries of live sessions, most recently saved first. The
// index is pruned lazily on every call; the ZSET score, not the stored
// document, is the authoritative expiry (Refresh bumps only score and TTL).
func (s *Store) List(ctx context.Context, limit int) ([]domain.Summary, error) {
	now := float64(s.clock().UnixMilli())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	entries, err := s.client.ZRevRangeWithScores(ctx, s.indexKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(entries) == 0 {
		return []domain.Summary{}, nil
	}

	keys := make([]string, len(entries))
	for i, entry := range entries {
		keys[i] = s.key(entry.Member.(string))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}

	summaries := make([]domain.Summary, 0, len(entries))
	for i, val := range values {
		raw, ok := val.(string)
		if !ok {
			// Expired between prune and fetch.
			continue
		}
		var session domain.Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session %q: %w", entries[i].Member, err)
		}
		summary := session.Summarize()
		if entries[i].Score < farFuture {
			summary.ExpiresAt = time.UnixMilli(int64(entries[i].Score))
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Refresh renews the session's TTL and index score without touching state.
func (s *Store) Refresh(ctx context.Context, id string) error {
	if s.ttl == 0 {
		if exists, err := s.client.Exists(ctx, s.key(id)).Result(); err != nil {
			return fmt.Errorf("failed to check session: %w", err)
		} else if exists == 0 {
			return domain.ErrSessionNotFound
		}
		return nil
	}

	ok, err := s.client.Expire(ctx, s.key(id), s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	if !ok {
		return domain.ErrSessionNotFound
	}

	err = s.client.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  s.score(s.clock().Add(s.ttl)),
		Member: id,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to refresh session index: %w", err)
	}
	return nil
}

// Ping reports backend reachability.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
