package application

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"request-throttler/throttle/domain"
)

// DefaultReportInterval é a cadência padrão do RateReporter.
const DefaultReportInterval = 500 * time.Millisecond

// RateReporter amostra periodicamente o tamanho da janela e emite como
// estimativa de requisições por segundo. Sem suavização: é o valor bruto.
type RateReporter struct {
	Window   domain.Window
	Interval time.Duration
	Logger   *zap.Logger
	Stats    domain.StatsStore
}

// Run emite uma amostra imediatamente e depois a cada Interval, até o ctx
// encerrar (retorna ctx.Err()).
func (r RateReporter) Run(ctx context.Context) error {
	if r.Interval <= 0 {
		r.Interval = DefaultReportInterval
	}
	if r.Logger == nil {
		r.Logger = zap.NewNop()
	}

	t := time.NewTicker(r.Interval)
	defer t.Stop()

	for {
		r.report(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (r RateReporter) report(ctx context.Context) {
	n := r.Window.Size()
	r.Logger.Info(strconv.Itoa(n)+" requests/second", zap.Int("count", n))

	if r.Stats == nil {
		return
	}
	ev := domain.StatsEvent{Kind: domain.EventObserved, Count: n, At: time.Now()}
	if err := r.Stats.Record(ctx, ev); err != nil {
		r.Logger.Debug("stats record failed", zap.Error(err))
	}
}
