package domain

import (
	"context"
	"errors"
)

// ErrTooManyInFlight indica que um envio foi descartado porque o limite de
// envios simultâneos estava cheio.
var ErrTooManyInFlight = errors.New("too many sends in flight")

// SlotPool representa um recurso com capacidade finita (ex: conexões de saída).
//
// A semântica é: Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar.
// Ao adquirir, retorna uma função de release que deve ser chamada exatamente uma vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}
