package lock

import (
	"context"
	"fmt"
	"time"

	"rentalhub-backend/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still carries our token, so a
// lease that expired and was taken over is never released by the old holder.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Redis is a Locker shared by every server instance pointing at the same
// Redis. Leases expire after TTL in case a holder dies.
type Redis struct {
	client     *redis.Client
	ttl        time.Duration
	retryDelay time.Duration
}

func NewRedis(client *redis.Client, ttl, retryDelay time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if retryDelay <= 0 {
		retryDelay = 25 * time.Millisecond
	}
	return &Redis{client: client, ttl: ttl, retryDelay: retryDelay}
}

func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
			}
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			break
		}
		timer := time.NewTimer(r.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
		case <-timer.C:
		}
	}

	return func() {
		// Release with a fresh context so a cancelled request still frees the lease.
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(relCtx, r.client, []string{key}, token).Err(); err != nil {
			logger.Warn("Failed to release item lock", "key", key, "error", err)
		}
	}, nil
}
