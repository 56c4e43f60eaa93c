package infra

import (
	"context"
	"sync"
	"time"

	"throttle-gateway/throttle/domain"
)

type Counters struct {
	Granted   int64
	Abandoned int64
	// Waited soma o tempo de espera dos slots concedidos.
	Waited time.Duration
}

func (c Counters) add(ev domain.GrantEvent) Counters {
	if ev.Abandoned {
		c.Abandoned++
		return c
	}
	c.Granted++
	c.Waited += ev.Delay
	return c
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu      sync.Mutex
	total   Counters
	byRoute map[string]Counters
	byKey   map[string]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byRoute: make(map[string]Counters),
		byKey:   make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.GrantEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total = s.total.add(ev)
	if ev.Method != "" || ev.Path != "" {
		route := ev.Method + " " + ev.Path
		s.byRoute[route] = s.byRoute[route].add(ev)
	}
	if s.trackKeys {
		key := string(ev.Key)
		s.byKey[key] = s.byKey[key].add(ev)
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByRoute() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byRoute))
	for k, v := range s.byRoute {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByKey() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}

var _ domain.StatsStore = (*MemoryStatsStore)(nil)
