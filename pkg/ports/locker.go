package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
// The context bounds the release call only.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes requests for one session across replicas that
// share a sticky-less load balancer. The in-process session lock is always
// taken first; the distributed lock is layered on top of it.
type DistributedLocker interface {
	// Lock blocks until key is held or ctx ends. A held lock lapses after ttl
	// so a crashed replica cannot wedge the session.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
