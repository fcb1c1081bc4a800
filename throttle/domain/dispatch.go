package domain

import "context"

// Sender envia uma unidade de trabalho identificada pelo número de sequência.
//
// Falhas de conexão são retornadas como erro; quem chama decide registrar em
// log e seguir em frente.
type Sender interface {
	Send(ctx context.Context, seq uint64) error
}

// SenderFunc adapta uma função comum a Sender.
type SenderFunc func(ctx context.Context, seq uint64) error

func (f SenderFunc) Send(ctx context.Context, seq uint64) error { return f(ctx, seq) }

// Window é o conjunto auto-expirável que mede requisições recentes.
type Window interface {
	Size() int
}
