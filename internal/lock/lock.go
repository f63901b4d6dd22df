// Package lock implements a self-expiring mutual-exclusion record in Redis.
// It guarantees that at most one holder runs a named operation at a time
// across every process sharing the Redis instance, without a coordinator.
// A holder that crashes without releasing is recovered by the key's TTL.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/sentiment-analyzer/internal/logs"
)

var (
	// ErrLockHeld is returned by Run when another holder owns the key.
	ErrLockHeld = errors.New("lock held by another holder")
	// ErrUnavailable wraps any failure to talk to Redis.
	ErrUnavailable = errors.New("lock store unavailable")
)

// releaseScript deletes the key only while it still carries the caller's
// holder id, so a holder whose TTL lapsed cannot remove a successor's lock.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Lease identifies one successful acquisition.
type Lease struct {
	Key       string
	Holder    string
	ExpiresAt time.Time
}

// Locker acquires and releases leases.
type Locker struct {
	rdb            redis.UniversalClient
	releaseTimeout time.Duration
}

// New returns a Locker backed by rdb.
func New(rdb redis.UniversalClient) *Locker {
	return &Locker{rdb: rdb, releaseTimeout: 3 * time.Second}
}

// TryAcquire creates key with a fresh holder id only if it is absent,
// expiring after ttl.  The existence check and the write are one SET NX PX
// command.  ok is false, with a nil error, when someone else holds the key.
func (l *Locker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	if key == "" || ttl <= 0 {
		return Lease{}, false, fmt.Errorf("lock: invalid key %q or ttl %s", key, ttl)
	}
	holder := uuid.NewString()
	start := time.Now()
	ok, err := l.rdb.SetNX(ctx, key, holder, ttl).Result()
	if err != nil {
		return Lease{}, false, fmt.Errorf("%w: acquire %s: %w", ErrUnavailable, key, err)
	}
	if !ok {
		return Lease{}, false, nil
	}
	return Lease{Key: key, Holder: holder, ExpiresAt: start.Add(ttl)}, true, nil
}

// Release deletes the lease's key if it still belongs to the lease.  It
// reports false when the key had already expired or passed to a new holder.
func (l *Locker) Release(ctx context.Context, lease Lease) (bool, error) {
	n, err := releaseScript.Run(ctx, l.rdb, []string{lease.Key}, lease.Holder).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: release %s: %w", ErrUnavailable, lease.Key, err)
	}
	return n == 1, nil
}

// Run acquires key, runs fn inside the critical section and releases on
// every exit path, panics included.  fn's context is cancelled when the
// lease expires.  When the key is already held Run returns ErrLockHeld and
// fn is not called.
func (l *Locker) Run(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	lease, ok, err := l.TryAcquire(ctx, key, ttl)
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockHeld
	}
	log := logs.Logger.WithField("lock", key)
	log.Debug("lock acquired")

	defer func() {
		// The caller may have gone away; release on a detached context.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.releaseTimeout)
		defer cancel()
		released, rerr := l.Release(rctx, lease)
		switch {
		case rerr != nil:
			log.WithError(rerr).Error("lock release failed; waiting for ttl expiry")
		case !released:
			log.Warn("lock expired before release")
		default:
			log.Debug("lock released")
		}
	}()

	fnCtx, cancel := context.WithDeadline(ctx, lease.ExpiresAt)
	defer cancel()
	return fn(fnCtx)
}
