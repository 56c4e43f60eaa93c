package domain

import (
	"context"
	"time"
)

type Key string

// Schedule concede slots espaçados no tempo.
//
// Grant nunca falha: reserva o próximo slot livre e devolve a Reservation.
// O cursor avança no momento do Grant; abandonar a reserva não devolve o slot.
// Implementações precisam aceitar Grant concorrente de várias goroutines.
type Schedule interface {
	Grant() Reservation
}

// BoundedSchedule é opcional: concede o slot só se ele cair até within a
// partir de agora. Checagem e reserva são uma operação só, então uma recusa
// não mexe no cursor.
//
// Se ok=false nada foi reservado e res.At() informa o próximo slot livre
// (res não deve ser esperado).
type BoundedSchedule interface {
	Schedule
	GrantWithin(within time.Duration) (res Reservation, ok bool)
}

// Reservation representa "esperar até o instante At".
type Reservation interface {
	At() time.Time
	// Ready informa, sem bloquear, se o instante já passou.
	Ready() bool
	// Wait bloqueia até At ou até ctx encerrar (retorna ctx.Err()).
	Wait(ctx context.Context) error
}

// ScheduleStore obtém a agenda de uma chave (ex: host de destino, cliente).
// Chamadas com a mesma chave compartilham o mesmo cursor.
type ScheduleStore interface {
	Get(Key) Schedule
}

type Decision struct {
	Allowed bool
	// Delay é quanto o chamador esperou pelo slot.
	Delay time.Duration
	// RetryAfter é quanto faltava para o slot quando a espera foi abandonada.
	RetryAfter time.Duration
}
