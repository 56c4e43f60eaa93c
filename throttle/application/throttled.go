package application

import (
	"context"
	"errors"
	"iter"

	"throttle-gateway/throttle/domain"
)

type throttleState uint8

const (
	stateIdle throttleState = iota
	stateAwaitingSlot
	stateAwaitingItem
	stateCompleted
)

// Throttled é uma sequência que espera um slot da agenda antes de cada pull.
//
// Não há buffer: no máximo uma reserva e um pull pendentes por vez.
// Se o ctx de Next encerrar no meio do ciclo, o próximo Next continua de onde
// parou (mesma reserva, ou direto no pull interno) sem pedir outro slot.
//
// Um Throttled não deve ser usado por várias goroutines ao mesmo tempo; vários
// Throttled compartilhando a mesma agenda podem.
type Throttled[T any] struct {
	inner    domain.Sequence[T]
	schedule domain.Schedule

	state   throttleState
	pending domain.Reservation
}

// Throttle embrulha inner para respeitar schedule. Itens e ordem são preservados.
func Throttle[T any](inner domain.Sequence[T], schedule domain.Schedule) *Throttled[T] {
	return &Throttled[T]{inner: inner, schedule: schedule}
}

// Next implementa domain.Sequence. Erros da sequência interna voltam sem alteração.
func (t *Throttled[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for {
		switch t.state {
		case stateCompleted:
			return zero, domain.Done

		case stateIdle:
			t.pending = t.schedule.Grant()
			t.state = stateAwaitingSlot

		case stateAwaitingSlot:
			if err := t.pending.Wait(ctx); err != nil {
				return zero, err
			}
			t.pending = nil
			t.state = stateAwaitingItem

		case stateAwaitingItem:
			item, err := t.inner.Next(ctx)
			switch {
			case err == nil:
				t.state = stateIdle
				return item, nil
			case errors.Is(err, domain.Done):
				t.state = stateCompleted
				return zero, err
			case ctx.Err() != nil:
				// pull interrompido: o slot já concedido continua valendo
				return zero, err
			default:
				t.state = stateIdle
				return zero, err
			}
		}
	}
}

// All expõe o Throttled como iterador range-over-func. Para no Done ou no
// primeiro erro.
func (t *Throttled[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return All[T](ctx, t)
}

// All adapta qualquer Sequence para range-over-func, com a mesma regra de
// parada de Throttled.All.
func All[T any](ctx context.Context, seq domain.Sequence[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			item, err := seq.Next(ctx)
			if errors.Is(err, domain.Done) {
				return
			}
			if !yield(item, err) || err != nil {
				return
			}
		}
	}
}

var _ domain.Sequence[int] = (*Throttled[int])(nil)
