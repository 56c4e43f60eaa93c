package infra

import (
	"sync"
	"time"

	"throttle-gateway/throttle/domain"

	"golang.org/x/time/rate"
)

// LimiterSchedule implementa domain.Schedule sobre golang.org/x/time/rate.
//
// Com burst=1 o token bucket vira espaçamento uniforme: cada ReserveN empurra
// o próximo slot em um Interval. A reserva nunca é cancelada (sem devolução).
//
// O mutex cobre leitura do relógio + ReserveN: sem ele, quem lê o relógio antes
// mas reserva depois ganharia um slot menos espaçado que Interval.
type LimiterSchedule struct {
	mu       sync.Mutex
	lim      *rate.Limiter
	interval time.Duration
	now      func() time.Time
	// last é o último instante concedido. O limiter converte tokens em tempo
	// com float64 e pode errar por 1ns; last+interval é o piso de cada slot.
	last time.Time
}

func NewLimiterSchedule(r domain.Rate, opts ...Option) *LimiterSchedule {
	o := buildOptions(opts)
	return &LimiterSchedule{
		lim:      rate.NewLimiter(rate.Every(r.Interval()), 1),
		interval: r.Interval(),
		now:      o.now,
	}
}

func (l *LimiterSchedule) Interval() time.Duration { return l.interval }

// Next estima o próximo slot livre a partir dos tokens (negativos = fila).
func (l *LimiterSchedule) Next() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextLocked(l.now())
}

func (l *LimiterSchedule) nextLocked(now time.Time) time.Time {
	at := now
	if tokens := l.lim.TokensAt(now); tokens < 1 {
		at = now.Add(time.Duration((1 - tokens) * float64(l.interval)))
	}
	return l.floor(at)
}

func (l *LimiterSchedule) floor(at time.Time) time.Time {
	if l.last.IsZero() {
		return at
	}
	if earliest := l.last.Add(l.interval); at.Before(earliest) {
		return earliest
	}
	return at
}

func (l *LimiterSchedule) grantLocked(now time.Time) time.Time {
	res := l.lim.ReserveN(now, 1)
	at := l.floor(now.Add(res.DelayFrom(now)))
	l.last = at
	return at
}

func (l *LimiterSchedule) Grant() domain.Reservation {
	l.mu.Lock()
	at := l.grantLocked(l.now())
	l.mu.Unlock()
	return newTimerReservation(at, l.now)
}

// GrantWithin implementa domain.BoundedSchedule: recusa sem chamar ReserveN,
// então o limiter não perde token.
func (l *LimiterSchedule) GrantWithin(within time.Duration) (domain.Reservation, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if next := l.nextLocked(now); next.Sub(now) > within {
		return newTimerReservation(next, l.now), false
	}
	return newTimerReservation(l.grantLocked(now), l.now), true
}

var _ domain.BoundedSchedule = (*LimiterSchedule)(nil)
