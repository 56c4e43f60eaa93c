package infra

import (
	"sync"
	"time"

	"throttle-gateway/throttle/domain"
)

// Store mantém uma agenda compartilhada por chave, com limpeza periódica.
//
// Todas as chamadas Get com a mesma chave devolvem o mesmo domain.Schedule.
type Store struct {
	mu           sync.Mutex
	entries      map[string]*storeEntry
	rate         domain.Rate
	newSchedule  func(domain.Rate) domain.Schedule
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type storeEntry struct {
	sched    domain.Schedule
	lastSeen time.Time
}

type StoreOption func(*Store)

func WithIdleTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

// WithScheduleFactory troca o backend das agendas (padrão: NewCursor).
func WithScheduleFactory(fn func(domain.Rate) domain.Schedule) StoreOption {
	return func(s *Store) { s.newSchedule = fn }
}

// WithLimiterBackend usa LimiterSchedule (x/time/rate) em vez de Cursor.
func WithLimiterBackend() StoreOption {
	return WithScheduleFactory(func(r domain.Rate) domain.Schedule { return NewLimiterSchedule(r) })
}

func NewStore(r domain.Rate, opts ...StoreOption) *Store {
	s := &Store{
		entries:      make(map[string]*storeEntry),
		rate:         r,
		newSchedule:  func(r domain.Rate) domain.Schedule { return NewCursor(r) },
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Rate() domain.Rate { return s.rate }
func (s *Store) CleanupEvery() time.Duration { return s.cleanupEvery }

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Get implementa domain.ScheduleStore.
func (s *Store) Get(key domain.Key) domain.Schedule {
	return s.GetString(string(key))
}

func (s *Store) GetString(key string) domain.Schedule {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.sched
	}

	sched := s.newSchedule(s.rate)
	s.entries[key] = &storeEntry{sched: sched, lastSeen: now}
	return sched
}

type nextSlotter interface {
	Next() time.Time
}

// Cleanup descarta agendas ociosas. Uma agenda com slots reservados no futuro
// não é ociosa: descartá-la faria a próxima chave começar do zero e furar o
// espaçamento. Quem ainda segura a agenda antiga continua usando-a normalmente.
func (s *Store) Cleanup() {
	now := time.Now()
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if !ent.lastSeen.Before(cutoff) {
			continue
		}
		if ns, ok := ent.sched.(nextSlotter); ok && ns.Next().After(now) {
			continue
		}
		delete(s.entries, k)
	}
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto.
func (s *Store) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
type DoneContext interface {
	Done() <-chan struct{}
}

var _ domain.ScheduleStore = (*Store)(nil)
