package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock previously acquired through a DistributedLocker.
// Calling it more than once is safe; only the first call releases.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes session access across replicas. The session
// manager locks on the session ID before mutating, so two processes sharing a
// store never interleave writes to one transcript. The ttl bounds how long a
// crashed holder can wedge the session.
type DistributedLocker interface {
	// Lock blocks until the key is held, the context is canceled, or the
	// attempt times out. The returned UnlockFunc must be called to release.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
