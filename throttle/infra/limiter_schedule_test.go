package infra

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterSchedule_BackToBackGrantsAreSpacedByInterval(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiterSchedule(mustRate(t, 5, time.Second), WithClock(clock.Now))

	start := clock.Now()
	var ats []time.Time
	for range 10 {
		ats = append(ats, l.Grant().At())
	}

	assert.Equal(t, start, ats[0])
	for i := 1; i < len(ats); i++ {
		assert.InDelta(t, float64(200*time.Millisecond), float64(ats[i].Sub(ats[i-1])), float64(time.Microsecond))
	}
	assert.InDelta(t, float64(1800*time.Millisecond), float64(ats[9].Sub(ats[0])), float64(time.Microsecond))
}

func TestLimiterSchedule_NextTracksQueuedSlots(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiterSchedule(mustRate(t, 10, time.Second), WithClock(clock.Now))

	assert.Equal(t, clock.Now(), l.Next())

	l.Grant()
	l.Grant()
	assert.InDelta(t, float64(200*time.Millisecond), float64(l.Next().Sub(clock.Now())), float64(time.Microsecond))

	clock.Advance(time.Second)
	assert.Equal(t, clock.Now(), l.Next())
}

func TestLimiterSchedule_AbandonedReservationIsNotRefunded(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiterSchedule(mustRate(t, 1, time.Minute), WithClock(clock.Now))

	l.Grant()
	abandoned := l.Grant()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, abandoned.Wait(ctx), context.Canceled)

	next := l.Grant()
	assert.InDelta(t, float64(time.Minute), float64(next.At().Sub(abandoned.At())), float64(time.Microsecond))
}

func TestLimiterSchedule_SpacingNeverBelowIntervalForUnevenRates(t *testing.T) {
	for _, count := range []int{3, 7, 9, 11, 17, 19, 23} {
		t.Run(fmt.Sprintf("count=%d", count), func(t *testing.T) {
			clock := newFakeClock()
			r := mustRate(t, count, time.Second)
			l := NewLimiterSchedule(r, WithClock(clock.Now))

			prev := l.Grant().At()
			for i := 1; i < 200; i++ {
				at := l.Grant().At()
				require.GreaterOrEqual(t, at.Sub(prev), r.Interval(), "grant %d", i)
				prev = at
			}
		})
	}
}

func TestLimiterSchedule_GrantWithinRefusesWithoutReserving(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiterSchedule(mustRate(t, 1, time.Minute), WithClock(clock.Now))

	first, ok := l.GrantWithin(time.Second)
	require.True(t, ok)
	assert.Equal(t, clock.Now(), first.At())

	for range 5 {
		refused, ok := l.GrantWithin(time.Second)
		require.False(t, ok)
		assert.Equal(t, first.At().Add(time.Minute), refused.At())
	}
	assert.Equal(t, first.At().Add(time.Minute), l.Next())

	clock.Advance(time.Minute)
	next, ok := l.GrantWithin(time.Second)
	require.True(t, ok)
	assert.Equal(t, clock.Now(), next.At())
}
