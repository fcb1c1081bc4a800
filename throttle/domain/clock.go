package domain

import (
	"context"
	"time"
)

// Clock é a fonte de tempo monotônica usada apenas para cálculo de duração.
//
// Now deve carregar a leitura monotônica (time.Now faz isso), então só
// Sub/Since são significativos. Sleep retorna ctx.Err() se o ctx encerrar
// antes de d.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}
