// Package redisclient provides the shared Redis connection and the counters built on it.
package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/sitecraft/pkg/config"
)

var Module = fx.Options(
	fx.Provide(NewClient, NewLimiter),
)

// NewClient returns nil when redis.addr is empty; callers treat a nil client as "disabled".
func NewClient(lc fx.Lifecycle, cfg *config.Config, log *zap.SugaredLogger) *redis.Client {
	if cfg.Redis.Addr == "" {
		log.Warnw("redis_disabled", "detail", "intake rate limiting is off")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Unreachable Redis only disables limiting, it does not stop the service.
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warnw("redis_ping_failed", "addr", cfg.Redis.Addr, "error", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := client.Close(); err != nil {
				return fmt.Errorf("close redis: %w", err)
			}
			return nil
		},
	})
	return client
}
