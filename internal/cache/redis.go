package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent.
var ErrMiss = errors.New("cache miss")

// Connect parses a redis:// URL and pings until the server answers or ctx
// is cancelled, waiting retryDelay between attempts.
func Connect(ctx context.Context, redisURL string, retryDelay time.Duration) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	for attempt := 1; ; attempt++ {
		err := client.Ping(ctx).Err()
		if err == nil {
			slog.Info("redis connected", "addr", opts.Addr, "db", opts.DB)
			return client, nil
		}

		slog.Warn("redis connection failed, retrying", "attempt", attempt, "retry_in", retryDelay, "error", err)

		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, fmt.Errorf("connect redis: %w", ctx.Err())
		case <-time.After(retryDelay):
		}
	}
}
