package cache

import (
	"context"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/vendahub/billing/pkg/config"
)

// NewRedis connects the access-check cache. The cache is an optimization
// for the storefront access gate; a failed ping is logged but does not
// abort startup, callers treat cache errors as misses.
func NewRedis(lc fx.Lifecycle, l *zap.SugaredLogger, cfg *cfgpkg.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				l.Warnw("redis ping failed, access cache degraded", "addr", cfg.Redis.Addr, "err", err)
				return nil
			}
			l.Infow("connected to redis", "addr", cfg.Redis.Addr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			l.Infow("closing redis client")
			return client.Close()
		},
	})

	return client
}

var Module = fx.Options(
	fx.Provide(NewRedis),
)
