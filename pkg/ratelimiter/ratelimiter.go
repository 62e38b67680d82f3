package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitError carries how long the caller has to wait.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// Limiter enforces a fixed cooldown per action key using Redis SETNX.
// A nil Redis client disables limiting (local development without Redis).
type Limiter struct {
	client *redis.Client
}

func New(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// Allow returns nil when the action may proceed and records the cooldown.
func (l *Limiter) Allow(ctx context.Context, action, subject string, cooldown time.Duration) error {
	if l.client == nil || cooldown <= 0 {
		return nil
	}

	key := fmt.Sprintf("ratelimit:%s:%s", action, subject)
	ok, err := l.client.SetNX(ctx, key, 1, cooldown).Result()
	if err != nil {
		// Redis being down should not block writes.
		return nil
	}
	if ok {
		return nil
	}

	ttl, err := l.client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = cooldown
	}

	return &RateLimitError{
		Message:    fmt.Sprintf("too many requests, retry in %s", ttl.Round(time.Second)),
		RetryAfter: ttl,
	}
}
