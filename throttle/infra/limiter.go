package infra

import (
	"math"
	"time"

	"request-throttler/throttle/domain"
)

// NewLimiter constrói a variante escolhida. O dispatcher só enxerga
// domain.RateLimiter.
func NewLimiter(strategy domain.Strategy, rate float64, clock domain.Clock) (domain.RateLimiter, error) {
	if !validRate(rate) {
		return nil, domain.ErrInvalidRate
	}
	switch strategy {
	case domain.StrategyFixedInterval:
		return NewFixedInterval(rate, clock)
	case domain.StrategyTokenBucket, "":
		return NewTokenBucket(rate, clock)
	case domain.StrategyXRate:
		return NewXRate(rate)
	}
	return nil, domain.ErrUnknownStrategy
}

func validRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}

func intervalFor(rate float64) time.Duration {
	d := time.Duration(float64(time.Second) / rate)
	if d <= 0 {
		d = time.Nanosecond
	}
	return d
}
