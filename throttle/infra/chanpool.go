package infra

import (
	"context"
	"sync"

	"throttle-gateway/throttle/domain"
)

type chanPool struct {
	sem chan struct{}
}

// NewChanPool cria um limite de chamadas em andamento baseado em channel com capacidade `max`.
func NewChanPool(max int) domain.InFlightPool {
	return &chanPool{sem: make(chan struct{}, max)}
}

func (p *chanPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, false
	}

	var once sync.Once
	return func() { once.Do(func() { <-p.sem }) }, true
}
