package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"request-throttler/throttle/domain"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type RedisStatsStore struct {
	rdb *redis.Client

	prefix string
	// ttl aplica apenas em chaves de série temporal.
	// total e observed não expiram.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "throttler:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Prefix() string { return s.prefix }

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	pipe := s.rdb.Pipeline()

	switch ev.Kind {
	case domain.EventObserved:
		pipe.HSet(ctx, s.prefix+":observed", "last", ev.Count, "at", at.Unix())
		if s.bucket == "minute" {
			bucketKey := s.bucketKey(at)
			pipe.HIncrBy(ctx, bucketKey, "observed_sum", int64(ev.Count))
			pipe.HIncrBy(ctx, bucketKey, "observed_samples", 1)
			if s.ttl > 0 {
				pipe.Expire(ctx, bucketKey, s.ttl)
			}
		}
	case domain.EventSent, domain.EventFailed:
		field := string(ev.Kind)
		pipe.HIncrBy(ctx, s.prefix+":total", field, 1)
		if s.bucket == "minute" {
			bucketKey := s.bucketKey(at)
			pipe.HIncrBy(ctx, bucketKey, field, 1)
			if s.ttl > 0 {
				pipe.Expire(ctx, bucketKey, s.ttl)
			}
		}
	default:
		return nil
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "redis stats record %s", ev.Kind)
	}
	return nil
}

func (s *RedisStatsStore) bucketKey(at time.Time) string {
	return fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
}
