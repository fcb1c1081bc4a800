package infra

import (
	"context"
	"testing"
	"time"
)

func TestSemaphorePool_AcquireUpToCapacity(t *testing.T) {
	p := NewSemaphorePool(2)

	r1, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected first acquire ok")
	}
	r2, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected second acquire ok")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, ok := p.Acquire(ctx); ok {
		t.Fatalf("expected third acquire to time out")
	}

	r1()
	r3, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected acquire after release ok")
	}
	r2()
	r3()
}

func TestSemaphorePool_FreeSlotWithDoneContext(t *testing.T) {
	p := NewSemaphorePool(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	release, ok := p.Acquire(ctx)
	if !ok {
		t.Fatalf("expected free slot to be acquired even with a done context")
	}
	release()
}

func TestSemaphorePool_MinimumCapacity(t *testing.T) {
	if got := NewSemaphorePool(0).Cap(); got != 1 {
		t.Fatalf("expected capacity clamped to 1, got %d", got)
	}
}
