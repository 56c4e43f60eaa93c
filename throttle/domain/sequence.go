package domain

import (
	"context"
	"errors"
)

// Done é retornado por Sequence.Next quando não há mais itens.
var Done = errors.New("no more items in sequence")

// Sequence é o contrato de "pull assíncrono do próximo item".
//
// Next bloqueia até haver item, erro ou ctx encerrar. Exaustão é sinalizada
// com Done; qualquer outro erro pertence à sequência e é repassado como está.
type Sequence[T any] interface {
	Next(ctx context.Context) (T, error)
}

// SequenceFunc adapta uma função ao contrato Sequence.
type SequenceFunc[T any] func(ctx context.Context) (T, error)

func (f SequenceFunc[T]) Next(ctx context.Context) (T, error) { return f(ctx) }
