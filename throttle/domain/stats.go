package domain

import (
	"context"
	"time"
)

// EventKind classifica um StatsEvent.
type EventKind string

const (
	EventSent     EventKind = "sent"
	EventFailed   EventKind = "failed"
	EventObserved EventKind = "observed"
)

// StatsEvent representa um evento do dispatcher (resultado de um envio) ou uma
// amostra do reporter (taxa observada).
//
// Seq só é preenchido para sent/failed; Count só para observed.
type StatsEvent struct {
	Kind  EventKind
	Seq   uint64
	Count int

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas.
//
// Implementações podem armazenar em Redis, memória, etc.
// Quem grava deve tratar erro como best-effort (não derrubar envio nem loop).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
