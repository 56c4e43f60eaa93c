package domain

import (
	"context"
	"time"
)

// GrantEvent representa o desfecho de uma espera por slot.
//
// Ele é propositalmente "agnóstico de HTTP": Method/Path são strings genéricas.
//
// Observação: cuidado com cardinalidade de Key/Path numa base como Redis.
type GrantEvent struct {
	Key Key
	// Abandoned indica que o chamador desistiu antes do slot (o slot não volta).
	Abandoned bool
	Delay     time.Duration

	Method string
	Path   string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas do pacing.
//
// Só observa: nada aqui realimenta o cursor. Erros são best-effort.
type StatsStore interface {
	Record(ctx context.Context, ev GrantEvent) error
}
