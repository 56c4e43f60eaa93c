package infra

import "time"

type options struct {
	now func() time.Time
}

// Option configura Cursor e LimiterSchedule.
type Option func(*options)

// WithClock troca o relógio (útil em testes). O padrão é time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
