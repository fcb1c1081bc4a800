package cmd

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"request-throttler/internal/config"
	"request-throttler/throttle/domain"
	"request-throttler/throttle/infra"
)

// openStats connects the Redis stats store when enabled. The returned close
// func is never nil.
func openStats(ctx context.Context, cfg config.StatsConfig, logger *zap.Logger) (domain.StatsStore, func(), error) {
	if !cfg.Enabled {
		return nil, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	closeFn := func() { _ = rdb.Close() }

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	_, err := rdb.Ping(pingCtx).Result()
	cancel()
	if err != nil {
		closeFn()
		return nil, func() {}, errors.Wrap(err, "redis stats ping")
	}

	logger.Info("stats enabled",
		zap.String("redis_addr", cfg.RedisAddr),
		zap.String("prefix", cfg.Prefix),
		zap.String("bucket", cfg.Bucket),
		zap.Duration("ttl", cfg.TTL))

	store := infra.NewRedisStatsStore(rdb,
		infra.WithStatsPrefix(cfg.Prefix),
		infra.WithStatsTTL(cfg.TTL),
		infra.WithStatsBucket(cfg.Bucket),
	)
	return store, closeFn, nil
}
