// Package lock implements the per-room mutual exclusion used by reservation
// admission. Locks live in Redis so every server process sees them; each
// lock expires on its own after a fixed lifetime so a crashed holder never
// wedges a room.
package lock

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-room-reservation/internal/config"
)

// ErrNotAcquired is returned when the wait timeout elapses before the lock
// could be taken. It is a transient condition.
var ErrNotAcquired = errors.New("room lock not acquired")

// ErrUnavailable wraps Redis failures while acquiring. Like
// ErrNotAcquired it means "try again later", not a broken request.
var ErrUnavailable = errors.New("room lock service unavailable")

// Lease is a held lock. Release is idempotent.
type Lease interface {
	Release(ctx context.Context) error
}

// Locker hands out per-room leases.
type Locker interface {
	Acquire(ctx context.Context, roomID uint64) (Lease, error)
}

// releaseScript deletes the key only when it still holds our token, so a
// holder whose lease already expired cannot free a lock another process
// took over in the meantime.
var releaseScript = redis.NewScript(`
    if redis.call('GET', KEYS[1]) == ARGV[1] then
        return redis.call('DEL', KEYS[1])
    end
    return 0
`)

// RoomLocker acquires room locks with SET NX PX, polling until the lock is
// free or the wait timeout elapses.
type RoomLocker struct {
	rdb    redis.UniversalClient
	cfg    config.LockConfig
	logger *zap.Logger
}

// NewRoomLocker returns a RoomLocker backed by rdb.
func NewRoomLocker(rdb redis.UniversalClient, cfg config.LockConfig, logger *zap.Logger) *RoomLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomLocker{rdb: rdb, cfg: cfg, logger: logger}
}

// Key returns the Redis key guarding roomID.
func (l *RoomLocker) Key(roomID uint64) string {
	return l.cfg.Prefix + ":room:" + strconv.FormatUint(roomID, 10)
}

// Acquire blocks until the room lock is held, the configured wait timeout
// elapses (ErrNotAcquired), Redis fails (ErrUnavailable), or ctx is done
// (ctx.Err()).
func (l *RoomLocker) Acquire(ctx context.Context, roomID uint64) (Lease, error) {
	key := l.Key(roomID)
	token := uuid.NewString()

	deadline := time.NewTimer(l.cfg.WaitTimeout)
	defer deadline.Stop()
	retry := time.NewTimer(l.cfg.RetryInterval)
	defer retry.Stop()

	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, err := l.rdb.SetNX(ctx, key, token, l.cfg.TTL).Result()
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
			l.logger.Warn("room lock backend failed", zap.Uint64("room_id", roomID), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if ok {
			l.logger.Debug("room lock acquired",
				zap.Uint64("room_id", roomID),
				zap.Duration("waited", time.Since(start)),
			)
			return &lease{rdb: l.rdb, key: key, token: token, logger: l.logger}, nil
		}

		retry.Reset(l.cfg.RetryInterval)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			l.logger.Warn("room lock wait timed out",
				zap.Uint64("room_id", roomID),
				zap.Duration("wait_timeout", l.cfg.WaitTimeout),
			)
			return nil, ErrNotAcquired
		case <-retry.C:
		}
	}
}

type lease struct {
	rdb    redis.UniversalClient
	key    string
	token  string
	logger *zap.Logger

	once sync.Once
	err  error
}

// Release frees the lock if this lease still owns it. Calls after the first
// return the first call's result. The caller's cancellation does not stop
// the release.
func (l *lease) Release(ctx context.Context) error {
	l.once.Do(func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		n, err := releaseScript.Run(rctx, l.rdb, []string{l.key}, l.token).Int()
		if err != nil {
			l.err = err
			return
		}
		if n == 0 {
			// lifetime elapsed before release; another holder may own the key now
			l.logger.Warn("room lock expired before release", zap.String("key", l.key))
		}
	})
	return l.err
}

// With runs fn while holding the lock for roomID. The lease is released on
// every return path, including panics. A release failure is logged and does
// not replace fn's result: the key expires on its own.
func With(ctx context.Context, l Locker, roomID uint64, logger *zap.Logger, fn func(ctx context.Context) error) error {
	held, err := l.Acquire(ctx, roomID)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := held.Release(ctx); rerr != nil && logger != nil {
			logger.Error("room lock release failed", zap.Uint64("room_id", roomID), zap.Error(rerr))
		}
	}()
	return fn(ctx)
}
