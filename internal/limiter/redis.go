// Package limiter throttles login attempts per email before the
// persistent lockout counters engage.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Abdul-Aziz026/school-auth/internal/model"
)

const (
	attemptKeyPrefix = "login_attempt:"
	blockKeyPrefix   = "login_block:"
)

var _ model.LoginLimiter = (*RedisLimiter)(nil)

// RedisLimiter counts failed attempts per key in a sliding window and
// blocks the key once the budget is spent. State lives in redis, so the
// throttle holds across instances.
type RedisLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
	block       time.Duration
}

func NewRedisLimiter(client *redis.Client, maxAttempts int, window, block time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:      client,
		maxAttempts: maxAttempts,
		window:      window,
		block:       block,
	}
}

func (l *RedisLimiter) Allowed(ctx context.Context, key string) (bool, error) {
	err := l.client.Get(ctx, blockKeyPrefix+key).Err()
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("failed to check login block: %w", err)
	}
	return true, nil
}

func (l *RedisLimiter) RecordFailure(ctx context.Context, key string) error {
	attemptKey := attemptKeyPrefix + key

	count, err := l.client.Incr(ctx, attemptKey).Result()
	if err != nil {
		return fmt.Errorf("failed to count login attempt: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, attemptKey, l.window).Err(); err != nil {
			return fmt.Errorf("failed to set attempt window: %w", err)
		}
	}

	if count >= int64(l.maxAttempts) {
		if err := l.client.Set(ctx, blockKeyPrefix+key, "1", l.block).Err(); err != nil {
			return fmt.Errorf("failed to set login block: %w", err)
		}
	}
	return nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, attemptKeyPrefix+key, blockKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}
