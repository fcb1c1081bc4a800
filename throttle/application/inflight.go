package application

import (
	"context"
	"sync/atomic"
	"time"

	"request-throttler/throttle/domain"
)

// InFlightGate limita quantos envios rodam ao mesmo tempo e conta quantos
// foram descartados por falta de vaga. Sem Pool, sempre libera.
type InFlightGate struct {
	Pool domain.SlotPool
	// Wait é quanto um envio espera por vaga; <= 0 espera até o ctx encerrar.
	Wait time.Duration

	active  atomic.Int64
	dropped atomic.Int64
}

// Enter tenta ocupar uma vaga. Com ok=false o chamador deve descartar o envio;
// com ok=true, leave deve ser chamado exatamente uma vez.
func (g *InFlightGate) Enter(ctx context.Context) (leave func(), ok bool) {
	if g.Pool == nil {
		g.active.Add(1)
		return func() { g.active.Add(-1) }, true
	}

	if g.Wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Wait)
		defer cancel()
	}
	release, ok := g.Pool.Acquire(ctx)
	if !ok {
		g.dropped.Add(1)
		return nil, false
	}
	g.active.Add(1)
	return func() {
		g.active.Add(-1)
		release()
	}, true
}

func (g *InFlightGate) Active() int64  { return g.active.Load() }
func (g *InFlightGate) Dropped() int64 { return g.dropped.Load() }
