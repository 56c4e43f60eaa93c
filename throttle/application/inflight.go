package application

import (
	"context"
	"time"

	"throttle-gateway/throttle/domain"
)

// InFlightGate segura chamadas de saída que já ganharam slot até haver vaga
// no Pool. O Pacer espaça o início das chamadas; o gate limita quantas
// respostas do upstream ficam abertas ao mesmo tempo.
type InFlightGate struct {
	Pool domain.InFlightPool
	// Timeout > 0 limita a espera por vaga, independente do ctx do chamador.
	Timeout time.Duration
}

// Enter devolve o release da vaga. Sem Pool, deixa passar sempre.
//
// Se o ctx do chamador encerrou, o erro é o do ctx; se só o Timeout
// estourou, domain.ErrNoCapacity.
func (g InFlightGate) Enter(ctx context.Context) (func(), error) {
	if g.Pool == nil {
		return func() {}, nil
	}

	waitCtx := ctx
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	release, ok := g.Pool.Acquire(waitCtx)
	if ok {
		return release, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, domain.ErrNoCapacity
}
