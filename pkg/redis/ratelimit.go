package redis

import (
	"context"
	"time"
)

// RateLimiter is a fixed window limiter shared by every replica that talks
// to the same redis.
type RateLimiter struct {
	client *Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(c *Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: c, limit: int64(limit), window: window}
}

func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	ok, _, err := l.client.FixedWindowAllow(ctx, key, l.limit, l.window)
	return ok, err
}
