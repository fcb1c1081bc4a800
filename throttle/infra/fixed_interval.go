package infra

import (
	"context"
	"time"

	"request-throttler/throttle/domain"
)

// FixedInterval espaça as admissões dormindo 1/rate a cada chamada.
//
// Não há absorção de rajada: se o chamador atrasar, o tempo perdido não é
// compensado. Na prática a taxa fica um pouco abaixo de rate por causa do
// overhead de agendamento de cada admissão.
type FixedInterval struct {
	interval time.Duration
	clock    domain.Clock
}

func NewFixedInterval(rate float64, clock domain.Clock) (*FixedInterval, error) {
	if !validRate(rate) {
		return nil, domain.ErrInvalidRate
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &FixedInterval{interval: intervalFor(rate), clock: clock}, nil
}

func (f *FixedInterval) Interval() time.Duration { return f.interval }

// Admit implementa domain.RateLimiter.
func (f *FixedInterval) Admit(ctx context.Context) error {
	return f.clock.Sleep(ctx, f.interval)
}
