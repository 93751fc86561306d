package redis

import (
	"context"
	"time"

	"deeplink-attribution/pkg/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("redis",
	fx.Provide(New),
)

const (
	pingAttempts = 5
	pingInterval = 3 * time.Second
)

// New dials Redis and fails the fx start when it never answers a ping.
// Per-command timeouts are set here; callers do not retry.
func New(lc fx.Lifecycle, c *config.Config) (*redis.Client, error) {
	zapLog := zap.L().With(
		zap.String("addr", c.Redis.Addr),
		zap.Int("db", c.Redis.DB),
		zap.Int("pool_size", c.Redis.PoolSize),
		zap.Duration("pool_timeout", c.Redis.PoolTimeout),
	)

	rdb := redis.NewClient(&redis.Options{
		Addr:         c.Redis.Addr,
		Password:     c.Redis.Password,
		DB:           c.Redis.DB,
		PoolSize:     c.Redis.PoolSize,
		PoolTimeout:  c.Redis.PoolTimeout,
		DialTimeout:  c.Redis.DialTimeout,
		ReadTimeout:  c.Redis.ReadTimeout,
		WriteTimeout: c.Redis.WriteTimeout,
	})

	attempt := 0
	ping := func() error {
		attempt++
		err := rdb.Ping(context.Background()).Err()
		if err != nil {
			zapLog.Warn("[Redis] Redis not ready, retrying...", zap.Int("retry", attempt), zap.Error(err))
		}
		return err
	}

	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(pingInterval), pingAttempts-1)
	if err := backoff.Retry(ping, bo); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	zapLog.Info("[Redis] Connected to Redis")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return rdb.Close()
		},
	})

	return rdb, nil
}
