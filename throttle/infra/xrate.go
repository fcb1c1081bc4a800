package infra

import (
	"context"
	"math"
	"time"

	"request-throttler/throttle/domain"

	"golang.org/x/time/rate"
)

// XRate é uma implementação de infra baseada em token-bucket (x/time/rate).
//
// O burst segue a mesma regra do TokenBucket (floor(rate), mínimo 1) e o balde
// é esvaziado na construção, porque rate.NewLimiter começa cheio.
type XRate struct {
	lim *rate.Limiter
}

func NewXRate(rps float64) (*XRate, error) {
	if !validRate(rps) {
		return nil, domain.ErrInvalidRate
	}
	burst := int(math.Floor(rps))
	if burst < 1 {
		burst = 1
	}
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	lim.AllowN(time.Now(), burst)
	return &XRate{lim: lim}, nil
}

func (x *XRate) RPS() float64 { return float64(x.lim.Limit()) }
func (x *XRate) Burst() int   { return x.lim.Burst() }

// Admit implementa domain.RateLimiter.
func (x *XRate) Admit(ctx context.Context) error {
	return x.lim.Wait(ctx)
}
