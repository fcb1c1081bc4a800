package infra

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"request-throttler/throttle/domain"
)

func TestMemoryStatsStore_CountsOutcomesAndSamples(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackSeq(true))
	ctx := context.Background()
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, domain.StatsEvent{Kind: domain.EventSent, Seq: 0}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Kind: domain.EventFailed, Seq: 2}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Kind: domain.EventSent, Seq: 1}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Kind: domain.EventObserved, Count: 7, At: at}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Kind: "bogus"}))

	require.Equal(t, Counters{Sent: 2, Failed: 1}, s.Total())

	last, samples := s.LastObservation()
	require.Equal(t, int64(1), samples)
	require.Equal(t, Observation{Count: 7, At: at}, last)

	seq, ok := s.MaxSeq()
	require.True(t, ok)
	require.Equal(t, uint64(2), seq)
}

func TestMemoryStatsStore_SeqNotTrackedByDefault(t *testing.T) {
	s := NewMemoryStatsStore()
	require.NoError(t, s.Record(context.Background(), domain.StatsEvent{Kind: domain.EventSent, Seq: 9}))

	_, ok := s.MaxSeq()
	require.False(t, ok)
}

func TestRedisStatsStore_NilClientIsNoop(t *testing.T) {
	s := NewRedisStatsStore(nil)
	require.NoError(t, s.Record(context.Background(), domain.StatsEvent{Kind: domain.EventSent}))

	var nilStore *RedisStatsStore
	require.NoError(t, nilStore.Record(context.Background(), domain.StatsEvent{Kind: domain.EventSent}))
}

func TestRedisStatsStore_Options(t *testing.T) {
	s := NewRedisStatsStore(nil,
		WithStatsPrefix(":custom:prefix:"),
		WithStatsTTL(time.Minute),
		WithStatsBucket(" NONE "),
	)
	require.Equal(t, "custom:prefix", s.Prefix())
	require.Equal(t, time.Minute, s.ttl)
	require.Equal(t, "none", s.bucket)
	require.Equal(t, "custom:prefix:minute:202501020304",
		s.bucketKey(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestRedisStatsStore_UnreachableServerReturnsError(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer func() { _ = rdb.Close() }()

	s := NewRedisStatsStore(rdb)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := s.Record(ctx, domain.StatsEvent{Kind: domain.EventObserved, Count: 3})
	require.Error(t, err)
	require.Contains(t, err.Error(), "redis stats record observed")
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), DisableIdentity: true})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisStatsStore_KeyLayout(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	s := NewRedisStatsStore(rdb, WithStatsPrefix("tt"), WithStatsTTL(time.Hour))
	ctx := context.Background()
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, s.Record(ctx, domain.StatsEvent{Kind: domain.EventSent, Seq: 0, At: at}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Kind: domain.EventSent, Seq: 1, At: at}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Kind: domain.EventFailed, Seq: 2, At: at}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Kind: domain.EventObserved, Count: 7, At: at}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Kind: domain.EventObserved, Count: 5, At: at}))

	require.Equal(t, "2", mr.HGet("tt:total", "sent"))
	require.Equal(t, "1", mr.HGet("tt:total", "failed"))

	require.Equal(t, "5", mr.HGet("tt:observed", "last"))
	require.Equal(t, "1735787045", mr.HGet("tt:observed", "at"))

	bucket := "tt:minute:202501020304"
	require.Equal(t, "2", mr.HGet(bucket, "sent"))
	require.Equal(t, "1", mr.HGet(bucket, "failed"))
	require.Equal(t, "12", mr.HGet(bucket, "observed_sum"))
	require.Equal(t, "2", mr.HGet(bucket, "observed_samples"))
	require.Equal(t, time.Hour, mr.TTL(bucket))

	require.Zero(t, mr.TTL("tt:total"))
	require.Zero(t, mr.TTL("tt:observed"))
}

func TestRedisStatsStore_BucketNoneSkipsMinuteKeys(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	s := NewRedisStatsStore(rdb, WithStatsPrefix("tt"), WithStatsBucket("none"))
	ctx := context.Background()
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, s.Record(ctx, domain.StatsEvent{Kind: domain.EventSent, At: at}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Kind: domain.EventObserved, Count: 3, At: at}))

	require.ElementsMatch(t, []string{"tt:total", "tt:observed"}, mr.Keys())
}

func TestRedisStatsStore_UnknownKindWritesNothing(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	s := NewRedisStatsStore(rdb)

	require.NoError(t, s.Record(context.Background(), domain.StatsEvent{Kind: "bogus"}))
	require.Empty(t, mr.Keys())
}
