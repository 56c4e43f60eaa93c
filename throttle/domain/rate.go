package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRate é o sentinel usado por ConfigError em errors.Is.
var ErrInvalidRate = errors.New("invalid throttle rate")

// ConfigError indica uma taxa mal configurada.
//
// É erro de programação: NewRate devolve na hora, nunca durante a espera.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid throttle rate: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidRate }

// Rate descreve "count permissões por duration".
//
// Valor imutável; o único estado derivado é o intervalo entre slots.
type Rate struct {
	count    int
	duration time.Duration
	interval time.Duration
}

// NewRate valida e constrói uma Rate. count e duration precisam ser > 0,
// e duration/count precisa dar pelo menos 1ns.
func NewRate(count int, duration time.Duration) (Rate, error) {
	if count <= 0 {
		return Rate{}, &ConfigError{Field: "count", Reason: "must be > 0"}
	}
	if duration <= 0 {
		return Rate{}, &ConfigError{Field: "duration", Reason: "must be > 0"}
	}
	interval := duration / time.Duration(count)
	if interval <= 0 {
		return Rate{}, &ConfigError{Field: "interval", Reason: fmt.Sprintf("%s/%d is below 1ns", duration, count)}
	}
	return Rate{count: count, duration: duration, interval: interval}, nil
}

func (r Rate) Count() int              { return r.count }
func (r Rate) Duration() time.Duration { return r.duration }

// Interval é o espaçamento mínimo entre dois slots (duration / count).
func (r Rate) Interval() time.Duration { return r.interval }

func (r Rate) String() string {
	return fmt.Sprintf("%d per %s", r.count, r.duration)
}
