package infra

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultHorizon é o tempo de vida de uma entrada da RequestWindow.
const DefaultHorizon = 1 * time.Second

// RequestWindow é um conjunto auto-expirável usado para estimar a taxa recente.
//
// Cada Record insere um identificador novo e arma um timer próprio que remove
// exatamente aquela entrada depois de horizon. Não há varredura periódica: o
// tamanho do conjunto é o número de admissões nos últimos horizon segundos.
type RequestWindow struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*time.Timer
	horizon time.Duration
}

type WindowOption func(*RequestWindow)

func WithHorizon(d time.Duration) WindowOption {
	return func(w *RequestWindow) {
		if d > 0 {
			w.horizon = d
		}
	}
}

func NewRequestWindow(opts ...WindowOption) *RequestWindow {
	w := &RequestWindow{
		entries: make(map[uuid.UUID]*time.Timer),
		horizon: DefaultHorizon,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *RequestWindow) Horizon() time.Duration { return w.horizon }

// Record insere uma entrada e agenda sua remoção. Nunca rejeita.
func (w *RequestWindow) Record() uuid.UUID {
	id := uuid.New()

	// O timer é criado com o lock preso: se disparar antes do insert terminar,
	// evict espera o lock e encontra a entrada.
	w.mu.Lock()
	w.entries[id] = time.AfterFunc(w.horizon, func() { w.evict(id) })
	w.mu.Unlock()
	return id
}

// Size implementa domain.Window.
func (w *RequestWindow) Size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// Close para todos os timers pendentes e esvazia o conjunto.
func (w *RequestWindow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, t := range w.entries {
		t.Stop()
		delete(w.entries, id)
	}
}

func (w *RequestWindow) evict(id uuid.UUID) {
	w.mu.Lock()
	delete(w.entries, id)
	w.mu.Unlock()
}
