package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/switchyard-ai/switchyard/internal/logging"
	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/ports"
)

// ConflictPolicy decides what happens when a turn arrives while another turn
// holds the same session.
type ConflictPolicy string

const (
	// Wait blocks the new turn until the session lock frees. Default.
	Wait ConflictPolicy = "wait"

	// Reject fails the new turn immediately with domain.ErrSessionBusy.
	Reject ConflictPolicy = "reject"
)

// DefaultLockTTL bounds how long a crashed replica can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring a session runs at most one
// turn at a time. It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	policy  ConflictPolicy
	lockTTL time.Duration

	newID func() string
	clock func() time.Time

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithConflictPolicy sets the behavior for concurrent same-session turns.
func WithConflictPolicy(policy ConflictPolicy) Option {
	return func(m *Manager) {
		m.policy = policy
	}
}

// WithLockTTL sets the distributed lock's lifetime.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIDGenerator overrides how new session IDs are minted.
func WithIDGenerator(newID func() string) Option {
	return func(m *Manager) {
		m.newID = newID
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		m.clock = clock
	}
}

// NewManager creates a new session manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		policy:  Wait,
		lockTTL: DefaultLockTTL,
		newID:   uuid.NewString,
		clock:   time.Now,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewID mints a fresh session identifier.
func (m *Manager) NewID() string {
	return m.newID()
}

// Policy returns the configured conflict policy.
func (m *Manager) Policy() ConflictPolicy {
	return m.policy
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock executes fn while holding the session's lock. Under the Wait
// policy a held lock blocks the caller; under Reject it returns
// domain.ErrSessionBusy without waiting.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)

	if m.policy == Reject {
		if !entry.mu.TryLock() {
			m.release(id)
			return domain.ErrSessionBusy
		}
	} else {
		entry.mu.Lock()
	}
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.lockDistributed(ctx, id)
		if err != nil {
			return err
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock, it will expire via TTL",
					"session_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) lockDistributed(ctx context.Context, id string) (ports.UnlockFunc, error) {
	if m.policy == Reject {
		if try, ok := m.locker.(ports.TryLocker); ok {
			unlock, acquired, err := try.TryLock(ctx, id, m.lockTTL)
			if err != nil {
				return nil, fmt.Errorf("failed to acquire distributed lock: %w", err)
			}
			if !acquired {
				return nil, domain.ErrSessionBusy
			}
			return unlock, nil
		}
	}

	unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire distributed lock: %w", err)
	}
	return unlock, nil
}

// Load retrieves an existing session under the session lock.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		sess, err = m.store.Load(ctx, id)
		return err
	})
	return sess, err
}

// Save persists the session under the session lock.
func (m *Manager) Save(ctx context.Context, sess *domain.Session) error {
	return m.WithLock(ctx, sess.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, sess)
	})
}

// Delete removes the session under the session lock.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context, limit int) ([]domain.Summary, error) {
	return m.store.List(ctx, limit)
}

// Refresh renews the session's TTL under the session lock.
func (m *Manager) Refresh(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Refresh(ctx, id)
	})
}

// Store returns the underlying session store. Callers composing a whole turn
// use it inside WithLock so load, run, and save share one critical section.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// LoadOrCreate loads a session or initializes a fresh one. The second return
// reports whether the session was created. Nothing is persisted here; a new
// session only reaches the store when its first turn completes cleanly.
//
// Callers are expected to hold the session lock (Manager.WithLock) around the
// load-run-save window this participates in.
func LoadOrCreate(ctx context.Context, store ports.SessionStore, id string, now time.Time) (*domain.Session, bool, error) {
	sess, err := store.Load(ctx, id)
	if err == nil {
		return sess, false, nil
	}
	if err != domain.ErrSessionNotFound {
		return nil, false, fmt.Errorf("failed to check session existence: %w", err)
	}
	return domain.NewSession(id, now), true, nil
}
