package domain

import (
	"context"
	"errors"
)

// ErrNoCapacity: nenhuma vaga de InFlightPool liberou a tempo.
var ErrNoCapacity = errors.New("throttle: no in-flight capacity")

// InFlightPool limita quantas chamadas podem estar em andamento ao mesmo tempo.
//
// Não é pacing: uma vaga é devolvida no release, um slot de Schedule nunca volta.
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar; o release
// deve ser chamado exatamente uma vez.
type InFlightPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}
