package infra

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"request-throttler/throttle/domain"
)

func TestNewTokenBucket_MaxTokens(t *testing.T) {
	cases := []struct {
		rate float64
		want float64
	}{
		{rate: 10, want: 10},
		{rate: 1, want: 1},
		{rate: 2.5, want: 2.5},
		{rate: 0.5, want: 1},
		{rate: 0.02, want: 1},
	}
	for _, tc := range cases {
		b, err := NewTokenBucket(tc.rate, newManualClock())
		require.NoError(t, err)
		require.Equal(t, tc.want, b.MaxTokens(), "rate=%v", tc.rate)
		require.Zero(t, b.Tokens(), "bucket must start empty")
	}
}

func TestNewTokenBucket_RejectsInvalidRate(t *testing.T) {
	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := NewTokenBucket(r, nil)
		require.ErrorIs(t, err, domain.ErrInvalidRate, "rate=%v", r)
	}
}

func TestTokenBucket_RefillAfterOneSecondThenAdmit(t *testing.T) {
	clock := newManualClock()
	b, err := NewTokenBucket(10, clock)
	require.NoError(t, err)

	clock.Advance(time.Second)
	require.NoError(t, b.Admit(context.Background()))
	require.InDelta(t, 9, b.Tokens(), 1e-9)
	require.Zero(t, clock.Sleeps(), "admission should not have waited")
}

func TestTokenBucket_RefillIsQuantizedToWholeTokens(t *testing.T) {
	clock := newManualClock()
	b, err := NewTokenBucket(10, clock)
	require.NoError(t, err)

	// 50ms a 10/s rende 0.5 token: nada é aplicado e o tempo continua contando.
	clock.Advance(50 * time.Millisecond)
	require.False(t, b.TryTake())
	require.Zero(t, b.Tokens())

	// +60ms: 110ms acumulados rendem 1.1 tokens.
	clock.Advance(60 * time.Millisecond)
	require.True(t, b.TryTake())
	require.InDelta(t, 0.1, b.Tokens(), 1e-9)
}

func TestTokenBucket_BurstCeilingAfterIdle(t *testing.T) {
	for _, rate := range []float64{0.5, 1, 5, 10, 100} {
		clock := newManualClock()
		b, err := NewTokenBucket(rate, clock)
		require.NoError(t, err)

		// ocioso bem mais que maxTokens/rate
		clock.Advance(time.Duration(10 * b.MaxTokens() / rate * float64(time.Second)))

		immediate := 0
		for b.TryTake() {
			immediate++
			require.LessOrEqual(t, float64(immediate), b.MaxTokens(), "rate=%v", rate)
		}
		require.Equal(t, int(math.Floor(b.MaxTokens())), immediate, "rate=%v", rate)
	}
}

func TestTokenBucket_BalanceStaysWithinBounds(t *testing.T) {
	clock := newManualClock()
	b, err := NewTokenBucket(7, clock)
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		clock.Advance(time.Duration(rnd.Int63n(int64(3 * time.Second / 2))))
		takes := rnd.Intn(10)
		for j := 0; j < takes; j++ {
			b.TryTake()
		}
		tokens := b.Tokens()
		require.GreaterOrEqual(t, tokens, 0.0)
		require.LessOrEqual(t, tokens, b.MaxTokens())
	}
}

func TestTokenBucket_LongRunAverageConverges(t *testing.T) {
	clock := newManualClock()
	b, err := NewTokenBucket(5, clock)
	require.NoError(t, err)

	start := clock.Now()
	admitted := 0
	for {
		require.NoError(t, b.Admit(context.Background()))
		if clock.Now().Sub(start) > 10*time.Second {
			break
		}
		admitted++
	}
	require.GreaterOrEqual(t, admitted, 40)
	require.LessOrEqual(t, admitted, 55)
}

func TestTokenBucket_AtMostMaxTokensImmediatelyAfterIdleSecond(t *testing.T) {
	clock := newManualClock()
	b, err := NewTokenBucket(5, clock)
	require.NoError(t, err)

	clock.Advance(time.Second)

	sleepsBefore := clock.Sleeps()
	admitted := 0
	for i := 0; i < 5; i++ {
		require.NoError(t, b.Admit(context.Background()))
		admitted++
	}
	require.Equal(t, sleepsBefore, clock.Sleeps(), "first 5 should be immediate")

	// a sexta precisa esperar pela reposição
	require.NoError(t, b.Admit(context.Background()))
	require.Greater(t, clock.Sleeps(), sleepsBefore)
}

func TestTokenBucket_AdmitReturnsOnCancel(t *testing.T) {
	b, err := NewTokenBucket(0.01, SystemClock{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = b.Admit(ctx)
	require.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	require.Less(t, time.Since(start), time.Second)
	require.Zero(t, b.Tokens())
}

func TestTokenBucket_ConcurrentTakeNeverOverspends(t *testing.T) {
	clock := newManualClock()
	b, err := NewTokenBucket(10, clock)
	require.NoError(t, err)
	clock.Advance(5 * time.Second)

	var wg sync.WaitGroup
	var taken int64
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.TryTake() {
				atomic.AddInt64(&taken, 1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(10), atomic.LoadInt64(&taken))
	require.GreaterOrEqual(t, b.Tokens(), 0.0)
}

func TestTokenBucket_SystemClockPacing(t *testing.T) {
	b, err := NewTokenBucket(20, SystemClock{})
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, b.Admit(context.Background()))
	}
	elapsed := time.Since(start)

	// 5 tokens a 20/s saindo do balde vazio: ~250ms
	if elapsed < 200*time.Millisecond || elapsed > 2*time.Second {
		t.Fatalf("5 admissions at 20/s took %v; expected ~250ms", elapsed)
	}
}
