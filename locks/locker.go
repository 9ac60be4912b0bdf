// Package locks provides short-lived mutual exclusion keyed by string, used
// to reject concurrent duplicate submissions.
package locks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrLocked is returned when the key is already held
	ErrLocked = errors.New("lock already held")

	// ErrUnavailable is returned when the lock backend cannot be reached
	ErrUnavailable = errors.New("lock backend unavailable")
)

// ReleaseFunc releases a held lock. Releasing twice is a no-op.
type ReleaseFunc func(ctx context.Context) error

// Locker acquires exclusive, expiring locks
type Locker interface {
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLocker creates a Redis-backed locker
func NewRedisLocker(client *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix, ttl: ttl}
}

// Acquire takes the lock for key or returns ErrLocked
func (l *RedisLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	var once sync.Once
	return func(ctx context.Context) error {
		var releaseErr error
		once.Do(func() {
			if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				releaseErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
		})
		return releaseErr
	}, nil
}

// MemoryLocker implements Locker in process memory
type MemoryLocker struct {
	mu    sync.Mutex
	ttl   time.Duration
	held  map[string]time.Time
	nowFn func() time.Time
}

// NewMemoryLocker creates an in-process locker
func NewMemoryLocker(ttl time.Duration) *MemoryLocker {
	return &MemoryLocker{
		ttl:   ttl,
		held:  make(map[string]time.Time),
		nowFn: time.Now,
	}
}

// Acquire takes the lock for key or returns ErrLocked
func (l *MemoryLocker) Acquire(_ context.Context, key string) (ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	if expiry, ok := l.held[key]; ok && now.Before(expiry) {
		return nil, ErrLocked
	}
	expiry := now.Add(l.ttl)
	l.held[key] = expiry

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			// Only clear our own entry
			if l.held[key].Equal(expiry) {
				delete(l.held, key)
			}
		})
		return nil
	}, nil
}
