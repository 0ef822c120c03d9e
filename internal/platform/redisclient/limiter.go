package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fatflowers/sitecraft/pkg/config"
)

const keyPrefix = "sitecraft:rate:"

// Limiter is a fixed-window counter per key.
type Limiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

type Decision struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
}

func NewLimiter(client *redis.Client, cfg *config.Config) *Limiter {
	return &Limiter{client: client, limit: cfg.Redis.IntakeLimit, window: cfg.Redis.IntakeWindow}
}

// Enabled reports whether calls to Allow can ever deny.
func (l *Limiter) Enabled() bool {
	return l != nil && l.client != nil && l.limit > 0 && l.window > 0
}

// Allow counts one hit for key. Errors leave the decision as allowed so callers can fail open.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	if !l.Enabled() {
		return Decision{Allowed: true}, nil
	}
	full := keyPrefix + key
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, full)
		ttl = p.PTTL(ctx, full)
		return nil
	})
	if err != nil {
		return Decision{Allowed: true, Limit: l.limit}, fmt.Errorf("rate limit %s: %w", key, err)
	}

	n := incr.Val()
	retry := ttl.Val()
	if retry < 0 {
		// First hit in the window, or a key that lost its expiry.
		if err := l.client.PExpire(ctx, full, l.window).Err(); err != nil {
			return Decision{Allowed: true, Limit: l.limit}, fmt.Errorf("rate limit expire %s: %w", key, err)
		}
		retry = l.window
	}
	d := Decision{
		Allowed:   n <= l.limit,
		Limit:     l.limit,
		Remaining: max(l.limit-n, 0),
	}
	if !d.Allowed {
		d.RetryAfter = retry
	}
	return d, nil
}
