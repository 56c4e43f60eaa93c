package application

import (
	"context"
	"time"

	"throttle-gateway/throttle/domain"
)

// Pacer concentra a regra de aplicação do pacing por chave.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas espera o slot e
// devolve uma decisão.
type Pacer struct {
	Store domain.ScheduleStore
	// MaxWait limita a espera. Se <= 0, espera até o ctx encerrar.
	MaxWait time.Duration
	// Now é o relógio usado em Delay e RetryAfter. Deve ser o mesmo das
	// agendas do Store. Padrão: time.Now.
	Now func() time.Time
}

func (p Pacer) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// Acquire reserva um slot para key e espera por ele.
//
// Se o próximo slot livre cai além de MaxWait, desiste na hora sem reservar:
// a recusa não empurra o cursor, então quem volta num ritmo válido é atendido.
// Um slot já reservado e abandonado (ctx encerrado) não volta para a agenda;
// RetryAfter diz quanto faltava para ele.
func (p Pacer) Acquire(ctx context.Context, key domain.Key) domain.Decision {
	if p.Store == nil {
		return domain.Decision{Allowed: true}
	}
	sched := p.Store.Get(key)
	if sched == nil {
		return domain.Decision{Allowed: true}
	}

	start := p.now()
	res, ok := p.grant(sched, start)
	if !ok {
		return domain.Decision{Allowed: false, RetryAfter: max(res.At().Sub(start), 0)}
	}

	if err := res.Wait(ctx); err != nil {
		now := p.now()
		return domain.Decision{
			Allowed:    false,
			Delay:      now.Sub(start),
			RetryAfter: max(res.At().Sub(now), 0),
		}
	}
	return domain.Decision{Allowed: true, Delay: p.now().Sub(start)}
}

// grant devolve ok=false quando o slot não cabe em MaxWait. Agendas sem
// GrantWithin reservam antes de checar, e aí o slot recusado fica gasto.
func (p Pacer) grant(sched domain.Schedule, start time.Time) (domain.Reservation, bool) {
	if p.MaxWait <= 0 {
		return sched.Grant(), true
	}
	if b, ok := sched.(domain.BoundedSchedule); ok {
		return b.GrantWithin(p.MaxWait)
	}
	res := sched.Grant()
	return res, res.At().Sub(start) <= p.MaxWait
}
