package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a fixed-window counter shared by every server instance.
// The window starts at the first attempt for a key and lasts window.
type Redis struct {
	client *redis.Client
	max    int
	window time.Duration
	prefix string
}

// NewRedis counts at most max attempts per key in each window. Keys are
// stored under prefix.
func NewRedis(client *redis.Client, max int, window time.Duration, prefix string) *Redis {
	if max < 1 {
		max = 1
	}
	return &Redis{client: client, max: max, window: window, prefix: prefix}
}

// Allow increments the counter and sets its expiry in one transaction. The
// expiry is only set when the key has none, so a key left without a TTL
// still gets one.
func (l *Redis) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit: %w", err)
	}
	return incr.Val() <= int64(l.max), nil
}
