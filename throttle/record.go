package throttle

import (
	"context"
	"net/http"
	"time"

	"throttle-gateway/throttle/domain"

	"github.com/rs/zerolog"
)

var nopLogger = zerolog.Nop()

func loggerOrNop(l *zerolog.Logger) *zerolog.Logger {
	if l == nil {
		return &nopLogger
	}
	return l
}

// record envia o evento para stats em modo best-effort: erro só vai para o log.
// O ctx da requisição pode já estar cancelado (cliente desistiu), por isso o
// envio usa um ctx sem cancelamento.
func record(ctx context.Context, stats domain.StatsStore, log *zerolog.Logger, r *http.Request, key string, dec domain.Decision) {
	if stats == nil {
		return
	}
	ev := domain.GrantEvent{
		Key:       domain.Key(key),
		Abandoned: !dec.Allowed,
		Delay:     dec.Delay,
		Method:    r.Method,
		Path:      r.URL.Path,
		At:        time.Now(),
	}
	if err := stats.Record(context.WithoutCancel(ctx), ev); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("throttle stats record failed")
	}
}
