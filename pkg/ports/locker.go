package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for distributed concurrency control.
// It allows the session manager to serialize same-session turns across
// multiple instances (replicas).
type DistributedLocker interface {
	// Lock attempts to acquire a distributed lock for the given key (a session ID).
	// It blocks until the lock is acquired, the context is canceled, or the TTL
	// expires (implementation specific).
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// TryLocker is an optional capability of DistributedLocker implementations.
// The session manager uses it under the reject conflict policy, where a held
// lock must fail fast instead of blocking.
type TryLocker interface {
	// TryLock makes a single acquisition attempt. The second return reports
	// whether the lock was obtained.
	TryLock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, bool, error)
}
