// Package redis provides a Redis-backed distributed locker so multiple kiosk
// frontends (HTTP replicas, MCP servers) can serialize access to one session.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/kiosk/pkg/ports"
)

var (
	// ErrLockAcquire is returned when the lock cannot be acquired before the
	// caller's context expires.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")
)

// Lua script for safe release: only delete the key if we still own it.
const unlockScript = `
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`

// retryInterval is how long a blocked Lock waits between attempts.
const retryInterval = 100 * time.Millisecond

// Locker implements ports.DistributedLocker using Redis SET NX PX.
type Locker struct {
	client *backend.Client
	prefix string
}

// NewLocker creates a new Redis locker. Keys are stored as prefix+"lock:"+key.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
	}
}

// Lock acquires a distributed lock for the given key, polling until it
// succeeds or ctx expires. The lock auto-expires after ttl so a crashed
// holder cannot wedge the session forever.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key

	// Fencing value so only the holder can release. Checked by the unlock
	// script; a lock that expired and was re-acquired by someone else will
	// not be deleted by our stale unlock.
	val := fmt.Sprintf("%d", time.Now().UnixNano())

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		success, err := l.client.SetNX(ctx, lockKey, val, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if success {
			return func(ctx context.Context) error {
				return l.client.Eval(ctx, unlockScript, []string{lockKey}, val).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrLockAcquire, ctx.Err())
		case <-ticker.C:
			// Retry.
		}
	}
}
