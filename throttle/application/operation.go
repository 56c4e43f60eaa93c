package application

import (
	"context"

	"throttle-gateway/throttle/domain"
)

// Queue espera o próximo slot de schedule. Se ctx encerrar antes, o slot é
// perdido (não há devolução) e o erro do ctx é retornado.
func Queue(ctx context.Context, schedule domain.Schedule) error {
	return schedule.Grant().Wait(ctx)
}

// Do espera um slot e executa fn. O erro de fn volta sem alteração.
func Do(ctx context.Context, schedule domain.Schedule, fn func(context.Context) error) error {
	if err := Queue(ctx, schedule); err != nil {
		return err
	}
	return fn(ctx)
}
