package application

import (
	"context"
	"errors"

	"throttle-gateway/throttle/domain"
)

// FromSlice devolve uma sequência que produz items na ordem e depois Done.
func FromSlice[T any](items []T) domain.Sequence[T] {
	i := 0
	return domain.SequenceFunc[T](func(ctx context.Context) (T, error) {
		var zero T
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if i >= len(items) {
			return zero, domain.Done
		}
		item := items[i]
		i++
		return item, nil
	})
}

// Repeat produz v para sempre.
func Repeat[T any](v T) domain.Sequence[T] {
	return domain.SequenceFunc[T](func(ctx context.Context) (T, error) {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		return v, nil
	})
}

// Take limita seq a n itens. Depois do n-ésimo, Done sem puxar seq de novo.
func Take[T any](seq domain.Sequence[T], n int) domain.Sequence[T] {
	taken := 0
	return domain.SequenceFunc[T](func(ctx context.Context) (T, error) {
		if taken >= n {
			var zero T
			return zero, domain.Done
		}
		item, err := seq.Next(ctx)
		if err == nil {
			taken++
		}
		return item, err
	})
}

// Collect puxa seq até Done. Para no primeiro erro, devolvendo o que já coletou.
func Collect[T any](ctx context.Context, seq domain.Sequence[T]) ([]T, error) {
	var out []T
	for {
		item, err := seq.Next(ctx)
		if errors.Is(err, domain.Done) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, item)
	}
}
