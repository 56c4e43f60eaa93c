package infra

import (
	"context"
	"time"

	"throttle-gateway/throttle/domain"
)

type timerReservation struct {
	at  time.Time
	now func() time.Time
}

func newTimerReservation(at time.Time, now func() time.Time) timerReservation {
	return timerReservation{at: at, now: now}
}

func (r timerReservation) At() time.Time { return r.at }

func (r timerReservation) Ready() bool { return !r.now().Before(r.at) }

// Wait arma um timer até At. A cada disparo o relógio é conferido de novo,
// porque o timer pode acordar antes (ou bem depois) do instante pedido.
func (r timerReservation) Wait(ctx context.Context) error {
	for {
		d := r.at.Sub(r.now())
		if d <= 0 {
			return nil
		}

		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

var _ domain.Reservation = timerReservation{}
