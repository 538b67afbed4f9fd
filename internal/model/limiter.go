package model

import "context"

// LoginLimiter throttles login attempts per key (typically the
// normalized email) ahead of the durable lockout counters. A limiter
// failure must not take the login path down with it.
type LoginLimiter interface {
	Allowed(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
