package infra

import (
	"context"
	"math"
	"sync"
	"time"

	"request-throttler/throttle/domain"
)

// TokenBucket é um limitador token-bucket com reposição calculada pelo tempo
// decorrido (não por ticks fixos).
//
// O balde começa vazio, para não liberar uma rajada de maxTokens no instante
// em que o limitador é criado. A reposição só é aplicada quando rende pelo
// menos 1 token inteiro; a fração fica acumulada no tempo ainda não contado.
type TokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64
	lastRefill time.Time

	poll  time.Duration
	clock domain.Clock
}

func NewTokenBucket(rate float64, clock domain.Clock) (*TokenBucket, error) {
	if !validRate(rate) {
		return nil, domain.ErrInvalidRate
	}
	if clock == nil {
		clock = SystemClock{}
	}
	maxTokens := rate
	if rate < 1 {
		// pelo menos um token de capacidade para taxas abaixo de 1/s
		maxTokens = 1
	}
	return &TokenBucket{
		maxTokens:  maxTokens,
		refillRate: rate,
		lastRefill: clock.Now(),
		poll:       intervalFor(rate),
		clock:      clock,
	}, nil
}

func (b *TokenBucket) MaxTokens() float64  { return b.maxTokens }
func (b *TokenBucket) RefillRate() float64 { return b.refillRate }

// Tokens retorna o saldo atual (sem aplicar reposição).
func (b *TokenBucket) Tokens() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens
}

// Admit implementa domain.RateLimiter. Suspende até existir um token e então
// consome exatamente um.
func (b *TokenBucket) Admit(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if b.TryTake() {
			return nil
		}
		if err := b.clock.Sleep(ctx, b.poll); err != nil {
			return err
		}
	}
}

// TryTake aplica a reposição e, se houver saldo, consome um token.
// Reposição e consumo acontecem sob o mesmo lock.
func (b *TokenBucket) TryTake() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked(b.clock.Now())
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func (b *TokenBucket) refillLocked(now time.Time) {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	gained := elapsed * b.refillRate
	if gained < 1 {
		return
	}
	b.tokens = math.Min(b.tokens+gained, b.maxTokens)
	b.lastRefill = now
}
