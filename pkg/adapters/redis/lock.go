package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"

	"github.com/switchyard-ai/switchyard/pkg/ports"
)

// retryInterval is how often a blocked Lock call re-attempts acquisition.
const retryInterval = 100 * time.Millisecond

// unlockScript releases the lock only if we still hold it, so a client whose
// lock already expired cannot delete a successor's lock.
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Locker implements ports.DistributedLocker using Redis SET NX.
type Locker struct {
	client *backend.Client
	prefix string
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
	}
}

// Lock acquires a distributed lock for the given key. It tries immediately,
// then polls until the context is canceled. The returned UnlockFunc releases
// the lock through a compare-and-delete script.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if unlock, ok, err := l.TryLock(ctx, key, ttl); err != nil || ok {
		return unlock, err
	}

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			unlock, ok, err := l.TryLock(ctx, key, ttl)
			if err != nil || ok {
				return unlock, err
			}
		}
	}
}

// TryLock makes a single acquisition attempt, implementing ports.TryLocker.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, bool, error) {
	lockKey := l.prefix + "lock:" + key
	val := uuid.NewString()

	success, err := l.client.SetNX(ctx, lockKey, val, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis error acquiring lock: %w", err)
	}
	if !success {
		return nil, false, nil
	}
	return func(ctx context.Context) error {
		return l.client.Eval(ctx, unlockScript, []string{lockKey}, val).Err()
	}, true, nil
}
