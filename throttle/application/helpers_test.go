package application

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"throttle-gateway/throttle/domain"
	"throttle-gateway/throttle/infra"

	"github.com/stretchr/testify/require"
)

type countingSchedule struct {
	inner  domain.Schedule
	grants atomic.Int32
}

func (c *countingSchedule) Grant() domain.Reservation {
	c.grants.Add(1)
	return c.inner.Grant()
}

func newCursor(t *testing.T, count int, per time.Duration, opts ...infra.Option) *infra.Cursor {
	t.Helper()
	r, err := domain.NewRate(count, per)
	require.NoError(t, err)
	return infra.NewCursor(r, opts...)
}

func fixedClock() func() time.Time {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

// stalled nunca produz item: só volta quando o ctx encerra.
func stalled[T any]() domain.Sequence[T] {
	return domain.SequenceFunc[T](func(ctx context.Context) (T, error) {
		<-ctx.Done()
		var zero T
		return zero, ctx.Err()
	})
}
