// Demo: várias sequências infinitas dividindo a mesma agenda. O intervalo
// entre itens emitidos (somando todas as sequências) fica próximo de
// DEMO_PER / DEMO_COUNT, não importa quantas sequências existam.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"throttle-gateway/internal/logging"
	"throttle-gateway/throttle/application"
	"throttle-gateway/throttle/domain"
	"throttle-gateway/throttle/infra"

	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"
	"github.com/spf13/viper"
)

type emission struct {
	stream int
	at     time.Time
}

func main() {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("demo_count", 5)
	v.SetDefault("demo_per", time.Second)
	v.SetDefault("demo_streams", 3)
	v.SetDefault("demo_items", 10)
	v.SetDefault("throttle_backend", "cursor")
	v.SetDefault("log_format", "console")
	v.SetDefault("log_level", "info")

	log := logging.New(v.GetString("log_format"), v.GetString("log_level"))

	r, err := domain.NewRate(v.GetInt("demo_count"), v.GetDuration("demo_per"))
	if err != nil {
		log.Fatal().Err(errors.Wrap(err, "DEMO_COUNT/DEMO_PER")).Msg("config error")
	}
	log.Info().Stringer("rate", r).Dur("interval", r.Interval()).Msg("demo throttle")

	var schedule domain.Schedule = infra.NewCursor(r)
	if v.GetString("throttle_backend") == "limiter" {
		schedule = infra.NewLimiterSchedule(r)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	emitted := make(chan emission)
	var wg conc.WaitGroup
	for i := range v.GetInt("demo_streams") {
		stream := i + 1
		wg.Go(func() {
			seq := application.Take(application.Throttle(application.Repeat(stream), schedule), v.GetInt("demo_items"))
			for s, err := range application.All(ctx, seq) {
				if err != nil {
					log.Warn().Err(err).Int("stream", stream).Msg("stream stopped")
					return
				}
				emitted <- emission{stream: s, at: time.Now()}
			}
		})
	}
	go func() {
		wg.Wait()
		close(emitted)
	}()

	last := time.Now()
	for e := range emitted {
		log.Info().Int("stream", e.stream).Dur("item_delay", e.at.Sub(last)).Msg("item")
		last = e.at
	}
}
