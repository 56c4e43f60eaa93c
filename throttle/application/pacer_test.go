package application

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"throttle-gateway/throttle/domain"
	"throttle-gateway/throttle/infra"

	"github.com/sourcegraph/conc"
)

type fakeStore struct {
	sched domain.Schedule
	keys  []domain.Key
}

func (s *fakeStore) Get(k domain.Key) domain.Schedule {
	s.keys = append(s.keys, k)
	return s.sched
}

func TestPacer_Acquire_AllowsWhenNoStore(t *testing.T) {
	p := Pacer{}
	dec := p.Acquire(context.Background(), "k")
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if dec.RetryAfter != 0 {
		t.Fatalf("expected RetryAfter=0 when allowed, got %s", dec.RetryAfter)
	}
}

func TestPacer_Acquire_AllowsImmediateSlot(t *testing.T) {
	store := &fakeStore{sched: newCursor(t, 10, time.Second)}
	p := Pacer{Store: store, MaxWait: time.Second}

	dec := p.Acquire(context.Background(), "client-1")
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if len(store.keys) != 1 || store.keys[0] != "client-1" {
		t.Fatalf("expected store lookup by key, got %v", store.keys)
	}
}

func TestPacer_Acquire_WaitsForSlot(t *testing.T) {
	p := Pacer{Store: &fakeStore{sched: newCursor(t, 20, time.Second)}}

	_ = p.Acquire(context.Background(), "k")
	dec := p.Acquire(context.Background(), "k")
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if dec.Delay < 40*time.Millisecond {
		t.Fatalf("expected to wait about 50ms, waited %s", dec.Delay)
	}
}

func TestPacer_Acquire_GivesUpBeyondMaxWait(t *testing.T) {
	cursor := newCursor(t, 1, time.Minute)
	p := Pacer{Store: &fakeStore{sched: cursor}, MaxWait: 10 * time.Millisecond}

	_ = p.Acquire(context.Background(), "k")

	start := time.Now()
	dec := p.Acquire(context.Background(), "k")
	if dec.Allowed {
		t.Fatalf("expected to give up")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatalf("expected to give up without waiting")
	}
	if dec.RetryAfter < 59*time.Second {
		t.Fatalf("expected RetryAfter close to 1m, got %s", dec.RetryAfter)
	}

	// a recusa não reservou nada: o cursor segue 1m à frente
	if got := time.Until(cursor.Next()); got > 61*time.Second {
		t.Fatalf("expected cursor about 1m ahead, got %s", got)
	}
}

func TestPacer_Acquire_RejectionsDoNotAdvanceCursor(t *testing.T) {
	cursor := newCursor(t, 10, time.Second)
	p := Pacer{Store: &fakeStore{sched: cursor}, MaxWait: 150 * time.Millisecond}

	var allowed atomic.Int32
	var wg conc.WaitGroup
	for range 50 {
		wg.Go(func() {
			if p.Acquire(context.Background(), "c").Allowed {
				allowed.Add(1)
			}
		})
	}
	wg.Wait()

	// slots em now, +100ms (e talvez +200ms se o relógio andou no meio)
	if got := allowed.Load(); got < 2 || got > 4 {
		t.Fatalf("expected 2-4 requests allowed, got %d", got)
	}
	if ahead := time.Until(cursor.Next()); ahead > 250*time.Millisecond {
		t.Fatalf("expected cursor at most one slot past MaxWait, got %s ahead", ahead)
	}

	time.Sleep(300 * time.Millisecond)
	dec := p.Acquire(context.Background(), "c")
	if !dec.Allowed {
		t.Fatalf("expected a well-spaced request to pass, got RetryAfter=%s", dec.RetryAfter)
	}
}

func TestPacer_Acquire_UsesItsClockForRetryAfter(t *testing.T) {
	clock := fixedClock()
	cursor := newCursor(t, 1, time.Minute, infra.WithClock(clock))
	p := Pacer{Store: &fakeStore{sched: cursor}, MaxWait: 50 * time.Millisecond, Now: clock}

	first := p.Acquire(context.Background(), "k")
	if !first.Allowed || first.Delay != 0 {
		t.Fatalf("expected immediate slot, got %+v", first)
	}

	dec := p.Acquire(context.Background(), "k")
	if dec.Allowed {
		t.Fatalf("expected to give up")
	}
	if dec.RetryAfter != time.Minute {
		t.Fatalf("expected RetryAfter=1m on the schedule clock, got %s", dec.RetryAfter)
	}
}

func TestPacer_Acquire_ContextEndsWhileWaiting(t *testing.T) {
	p := Pacer{Store: &fakeStore{sched: newCursor(t, 1, time.Minute)}}
	_ = p.Acquire(context.Background(), "k")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	dec := p.Acquire(ctx, "k")
	if dec.Allowed {
		t.Fatalf("expected not allowed")
	}
	if dec.RetryAfter <= 0 {
		t.Fatalf("expected positive RetryAfter, got %s", dec.RetryAfter)
	}
}
