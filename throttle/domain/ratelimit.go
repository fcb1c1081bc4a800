package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de rede.

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrInvalidRate é retornado na construção quando rate <= 0 (ou NaN/Inf).
	ErrInvalidRate = errors.New("rate must be a finite number > 0")

	// ErrUnknownStrategy é retornado quando a estratégia não é reconhecida.
	ErrUnknownStrategy = errors.New("unknown limiter strategy")
)

// RateLimiter decide quando o próximo trabalho pode ser disparado.
//
// Admit suspende até a próxima admissão e retorna nil. Não existe caminho de
// erro por falta de tokens: o chamador espera, nunca é rejeitado. O único
// erro possível é o cancelamento do ctx (ctx.Err()).
type RateLimiter interface {
	Admit(ctx context.Context) error
}

// Strategy identifica a variante de RateLimiter escolhida na construção.
type Strategy string

const (
	StrategyFixedInterval Strategy = "fixed"
	StrategyTokenBucket   Strategy = "bucket"
	StrategyXRate         Strategy = "xrate"
)

// ParseStrategy normaliza o nome vindo da configuração.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyFixedInterval, "fixed_interval", "interval":
		return StrategyFixedInterval, nil
	case StrategyTokenBucket, "token_bucket", "tokenbucket", "":
		return StrategyTokenBucket, nil
	case StrategyXRate, "x/time/rate":
		return StrategyXRate, nil
	}
	return "", ErrUnknownStrategy
}
