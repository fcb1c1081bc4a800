package infra

import (
	"context"
	"sync"
	"time"

	"request-throttler/throttle/domain"
)

type Counters struct {
	Sent   int64
	Failed int64
}

// Observation é a última amostra de taxa observada.
type Observation struct {
	Count int
	At    time.Time
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    Counters
	last     Observation
	samples  int64
	lastSeq  uint64
	seenSeq  bool
	trackSeq bool
}

type MemoryStatsOption func(*MemoryStatsStore)

// WithTrackSeq guarda o maior número de sequência já visto.
func WithTrackSeq(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackSeq = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case domain.EventSent:
		s.total.Sent++
	case domain.EventFailed:
		s.total.Failed++
	case domain.EventObserved:
		s.samples++
		s.last = Observation{Count: ev.Count, At: ev.At}
		return nil
	default:
		return nil
	}

	if s.trackSeq && (!s.seenSeq || ev.Seq > s.lastSeq) {
		s.lastSeq = ev.Seq
		s.seenSeq = true
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) LastObservation() (Observation, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.samples
}

// MaxSeq retorna o maior número de sequência visto (só com WithTrackSeq).
func (s *MemoryStatsStore) MaxSeq() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeq, s.seenSeq
}
