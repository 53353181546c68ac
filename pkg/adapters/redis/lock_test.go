package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/switchyard-ai/switchyard/pkg/adapters/redis"
)

func newTestLocker(t *testing.T) (*redis.Locker, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	return redis.NewLocker(client, "test:"), mr
}

func TestRedisLocker_LockUnlock(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "sess-1", 5*time.Second)
	assert.NoError(t, err)
	assert.NotNil(t, unlock)

	assert.True(t, mr.Exists("test:lock:sess-1"), "Lock key should be set in Redis")

	err = unlock(ctx)
	assert.NoError(t, err)

	assert.False(t, mr.Exists("test:lock:sess-1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	unlock1, err := locker.Lock(ctx, "sess-1", 5*time.Second)
	assert.NoError(t, err)

	// A second acquisition blocks until the holder releases, so give it a
	// deadline and expect it to hit it.
	ctxTimeout, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = locker.Lock(ctxTimeout, "sess-1", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.WithinDuration(t, start.Add(500*time.Millisecond), time.Now(), 100*time.Millisecond,
		"Should block until timeout")

	assert.NoError(t, unlock1(ctx))

	unlock2, err := locker.Lock(ctx, "sess-1", 5*time.Second)
	assert.NoError(t, err)
	defer func() { _ = unlock2(ctx) }()

	assert.True(t, mr.Exists("test:lock:sess-1"))
}

func TestRedisLocker_StaleUnlockIsHarmless(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	unlock1, err := locker.Lock(ctx, "sess-1", time.Second)
	assert.NoError(t, err)

	// The holder's TTL lapses and someone else takes the lock.
	mr.FastForward(2 * time.Second)
	unlock2, err := locker.Lock(ctx, "sess-1", 5*time.Second)
	assert.NoError(t, err)

	// The stale unlock must not release the new holder's lock.
	assert.NoError(t, unlock1(ctx))
	assert.True(t, mr.Exists("test:lock:sess-1"), "stale unlock must not delete a successor's lock")

	assert.NoError(t, unlock2(ctx))
	assert.False(t, mr.Exists("test:lock:sess-1"))
}
