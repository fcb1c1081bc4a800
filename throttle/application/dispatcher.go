package application

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"request-throttler/throttle/domain"
)

// DefaultSendTimeout limita cada envio individual.
const DefaultSendTimeout = 5 * time.Second

// Dispatcher pede admissão ao limitador e, a cada admissão, dispara um envio
// independente (fire-and-forget) com o próximo número de sequência.
//
// A taxa de admissão é desacoplada da latência do envio: um envio lento ou com
// falha nunca segura as admissões seguintes. O log de envio acontece na
// admissão, não na conclusão.
type Dispatcher struct {
	limiter     domain.RateLimiter
	sender      domain.Sender
	logger      *zap.Logger
	stats       domain.StatsStore
	gate        *InFlightGate
	sendTimeout time.Duration

	seq      atomic.Uint64
	inflight sync.WaitGroup
}

type DispatcherOption func(*Dispatcher)

func WithDispatchLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

func WithDispatchStats(s domain.StatsStore) DispatcherOption {
	return func(d *Dispatcher) { d.stats = s }
}

// WithInFlightLimit limita envios simultâneos. O limite é verificado dentro da
// goroutine de envio; quando não há vaga em `wait` (ou, com wait <= 0, dentro
// do timeout do envio), o envio é descartado.
func WithInFlightLimit(pool domain.SlotPool, wait time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.gate = &InFlightGate{Pool: pool, Wait: wait}
	}
}

func WithSendTimeout(t time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if t > 0 {
			d.sendTimeout = t
		}
	}
}

func NewDispatcher(limiter domain.RateLimiter, sender domain.Sender, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		limiter:     limiter,
		sender:      sender,
		logger:      zap.NewNop(),
		gate:        &InFlightGate{},
		sendTimeout: DefaultSendTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Admitted retorna quantas admissões já aconteceram (== próximo número de sequência).
func (d *Dispatcher) Admitted() uint64 { return d.seq.Load() }

// InFlight retorna quantos envios estão em andamento.
func (d *Dispatcher) InFlight() int64 { return d.gate.Active() }

// Dropped retorna quantos envios foram descartados por falta de vaga.
func (d *Dispatcher) Dropped() int64 { return d.gate.Dropped() }

// Run executa o loop de admissão até o ctx encerrar. Ao encerrar, para de
// admitir, espera os envios em andamento e retorna ctx.Err().
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.inflight.Wait()

	// envios não herdam o cancelamento do loop, só o timeout de cada um
	sendBase := context.WithoutCancel(ctx)

	for {
		if err := d.limiter.Admit(ctx); err != nil {
			return err
		}

		seq := d.seq.Add(1) - 1
		d.logger.Info(strconv.FormatUint(seq, 10)+": sending request to server", zap.Uint64("seq", seq))

		d.inflight.Add(1)
		go d.send(sendBase, seq)
	}
}

func (d *Dispatcher) send(base context.Context, seq uint64) {
	defer d.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("send task panicked", zap.Uint64("seq", seq), zap.String("panic", fmt.Sprint(r)))
			d.record(base, domain.EventFailed, seq)
		}
	}()

	ctx, cancel := context.WithTimeout(base, d.sendTimeout)
	defer cancel()

	leave, ok := d.gate.Enter(ctx)
	if !ok {
		d.logger.Warn("send dropped", zap.Uint64("seq", seq), zap.Error(domain.ErrTooManyInFlight))
		d.record(base, domain.EventFailed, seq)
		return
	}
	defer leave()

	if err := d.sender.Send(ctx, seq); err != nil {
		d.logger.Warn("send failed", zap.Uint64("seq", seq), zap.Error(err))
		d.record(base, domain.EventFailed, seq)
		return
	}
	d.record(base, domain.EventSent, seq)
}

func (d *Dispatcher) record(ctx context.Context, kind domain.EventKind, seq uint64) {
	if d.stats == nil {
		return
	}
	ev := domain.StatsEvent{Kind: kind, Seq: seq, At: time.Now()}
	if err := d.stats.Record(ctx, ev); err != nil {
		d.logger.Debug("stats record failed", zap.String("kind", string(kind)), zap.Error(err))
	}
}
