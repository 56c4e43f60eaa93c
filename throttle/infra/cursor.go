package infra

import (
	"sync/atomic"
	"time"

	"throttle-gateway/throttle/domain"
)

// Cursor é a agenda compartilhada: um contador atômico com o próximo slot livre.
//
// O compartilhamento é por ponteiro: todo holder do mesmo *Cursor disputa o
// mesmo cursor. Dois Grant quaisquer ficam separados por pelo menos Interval.
type Cursor struct {
	// next guarda os ticks (ns desde base) do próximo slot livre.
	// Zero equivale a "agora" no primeiro Grant, pois base <= now.
	next     atomic.Int64
	interval int64
	base     time.Time
	now      func() time.Time
}

func NewCursor(r domain.Rate, opts ...Option) *Cursor {
	o := buildOptions(opts)
	return &Cursor{
		interval: int64(r.Interval()),
		base:     o.now(),
		now:      o.now,
	}
}

func (c *Cursor) Interval() time.Duration { return time.Duration(c.interval) }

// Next retorna o instante do próximo slot livre.
func (c *Cursor) Next() time.Time {
	return c.base.Add(time.Duration(c.next.Load()))
}

// Grant reserva o próximo slot: reserved = max(next, now); next = reserved + interval.
//
// O cursor avança aqui, não quando a reserva é consumida. Quem vence o CAS
// primeiro fica com o slot mais cedo.
func (c *Cursor) Grant() domain.Reservation {
	now := int64(c.now().Sub(c.base))
	for {
		next := c.next.Load()
		reserved := max(next, now)
		if c.next.CompareAndSwap(next, reserved+c.interval) {
			return newTimerReservation(c.base.Add(time.Duration(reserved)), c.now)
		}
	}
}

// GrantWithin implementa domain.BoundedSchedule. A recusa acontece dentro do
// mesmo laço de CAS, sem avançar o cursor.
func (c *Cursor) GrantWithin(within time.Duration) (domain.Reservation, bool) {
	now := int64(c.now().Sub(c.base))
	for {
		next := c.next.Load()
		reserved := max(next, now)
		res := newTimerReservation(c.base.Add(time.Duration(reserved)), c.now)
		if reserved-now > int64(within) {
			return res, false
		}
		if c.next.CompareAndSwap(next, reserved+c.interval) {
			return res, true
		}
	}
}

var _ domain.BoundedSchedule = (*Cursor)(nil)
