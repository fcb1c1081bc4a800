package infra

import (
	"context"

	"golang.org/x/sync/semaphore"

	"request-throttler/throttle/domain"
)

// SemaphorePool implementa domain.SlotPool com um semáforo ponderado de
// capacidade max (cada envio ocupa peso 1).
type SemaphorePool struct {
	sem *semaphore.Weighted
	max int64
}

func NewSemaphorePool(max int) *SemaphorePool {
	if max < 1 {
		max = 1
	}
	return &SemaphorePool{sem: semaphore.NewWeighted(int64(max)), max: int64(max)}
}

func (p *SemaphorePool) Cap() int { return int(p.max) }

// Acquire implementa domain.SlotPool. Uma vaga livre é adquirida mesmo com o
// ctx já encerrado.
func (p *SemaphorePool) Acquire(ctx context.Context) (func(), bool) {
	if p.sem.TryAcquire(1) {
		return p.release, true
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, false
	}
	return p.release, true
}

func (p *SemaphorePool) release() { p.sem.Release(1) }

var _ domain.SlotPool = (*SemaphorePool)(nil)
