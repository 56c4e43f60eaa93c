package throttle

import (
	"net/http"
	"time"

	"throttle-gateway/throttle/application"
	"throttle-gateway/throttle/domain"

	"github.com/rs/zerolog"
)

type Options struct {
	Store  domain.ScheduleStore
	Stats  domain.StatsStore
	Logger *zerolog.Logger

	KeyFn              KeyFunc
	KeyHeader          string
	TrustXForwardedFor bool

	// MaxWait limita quanto uma requisição espera pelo slot. 0 = até o cliente desistir.
	MaxWait      time.Duration
	RejectStatus int

	AddThrottleHeaders bool
}

type rateInfo interface {
	Rate() domain.Rate
}

// Middleware espaça requisições de entrada por cliente.
//
// Diferente de um limitador allow/deny, a requisição espera o seu slot e segue.
// Só é rejeitada (RejectStatus, padrão 429, com Retry-After) quando o slot cai
// além de MaxWait ou o cliente vai embora antes dele.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	log := loggerOrNop(opts.Logger)

	pacer := application.Pacer{
		Store:   opts.Store,
		MaxWait: opts.MaxWait,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			if opts.AddThrottleHeaders {
				w.Header().Set("X-Throttle-Key", key)
				if ri, ok := opts.Store.(rateInfo); ok {
					w.Header().Set("X-Throttle-Interval", formatDuration(ri.Rate().Interval()))
				}
			}

			dec := pacer.Acquire(r.Context(), domain.Key(key))
			record(r.Context(), opts.Stats, log, r, key, dec)

			if !dec.Allowed {
				log.Debug().Str("key", key).Dur("retry_after", dec.RetryAfter).Msg("throttle wait abandoned")
				w.Header().Set("Retry-After", formatRetryAfter(dec.RetryAfter))
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}

			if opts.AddThrottleHeaders {
				w.Header().Set("X-Throttle-Delay", formatDuration(dec.Delay))
			}
			next.ServeHTTP(w, r)
		})
	}
}
