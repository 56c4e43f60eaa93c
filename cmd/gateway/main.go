package main

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httputil"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"throttle-gateway/internal/logging"
	"throttle-gateway/throttle"
	"throttle-gateway/throttle/domain"
	"throttle-gateway/throttle/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := readConfig(newViper())
	if err != nil {
		boot := logging.New("console", "info")
		boot.Fatal().Err(err).Msg("config error")
	}
	log := logging.New(cfg.logFormat, cfg.logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var statsStore domain.StatsStore
	if cfg.statsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.statsRedisAddr).Msg("redis stats ping error")
		}

		statsStore = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
			infra.WithStatsBucket(cfg.statsBucket),
			infra.WithStatsTrackKeys(cfg.statsTrackKeys),
		)
	}

	// uma agenda só para todo o tráfego ao upstream: o teto é agregado
	upstream := newSchedule(cfg.backend, cfg.upstreamRate)

	proxy := httputil.NewSingleHostReverseProxy(cfg.upstreamURL)
	proxy.Transport = throttle.NewTransport(throttle.TransportOptions{
		Schedule:        upstream,
		MaxWait:         cfg.maxWait,
		MaxInFlight:     cfg.maxInFlight,
		InFlightTimeout: cfg.inFlightTimeout,
		Stats:           statsStore,
		Logger:          &log,
	})
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		var we *throttle.WaitError
		switch {
		case errors.As(err, &we):
			log.Debug().Dur("retry_after", we.RetryAfter).Str("path", r.URL.Path).Msg("upstream slot beyond max wait")
			w.Header().Set("Retry-After", formatSeconds(we.RetryAfter))
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		case errors.Is(err, throttle.ErrNoCapacity):
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		case errors.Is(err, context.Canceled):
			// cliente foi embora enquanto esperava o slot
		default:
			log.Error().Err(err).Str("path", r.URL.Path).Msg("proxy error")
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}
	}

	h := http.Handler(proxy)
	if cfg.clientEnabled {
		clients := infra.NewStore(cfg.clientRate, storeBackend(cfg.backend))
		clients.StartJanitor(ctx)

		h = throttle.Middleware(throttle.Options{
			Store:              clients,
			Stats:              statsStore,
			Logger:             &log,
			KeyHeader:          cfg.keyHeader,
			TrustXForwardedFor: cfg.trustXFF,
			MaxWait:            cfg.clientMaxWait,
			AddThrottleHeaders: cfg.addHeaders,
		})(h)
	}

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logStartup(&log, cfg)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
}

func newSchedule(backend string, r domain.Rate) domain.Schedule {
	if backend == "limiter" {
		return infra.NewLimiterSchedule(r)
	}
	return infra.NewCursor(r)
}

func storeBackend(backend string) infra.StoreOption {
	return infra.WithScheduleFactory(func(r domain.Rate) domain.Schedule { return newSchedule(backend, r) })
}

func formatSeconds(d time.Duration) string {
	return strconv.Itoa(max(int(math.Ceil(d.Seconds())), 1))
}

func logStartup(log *zerolog.Logger, cfg config) {
	log.Info().Str("addr", cfg.listenAddr).Stringer("upstream", cfg.upstreamURL).Msg("gateway listening")
	log.Info().
		Stringer("rate", cfg.upstreamRate).
		Dur("interval", cfg.upstreamRate.Interval()).
		Str("backend", cfg.backend).
		Dur("max_wait", cfg.maxWait).
		Int("max_in_flight", cfg.maxInFlight).
		Msg("upstream throttle")
	if cfg.clientEnabled {
		log.Info().
			Stringer("rate", cfg.clientRate).
			Str("key_header", cfg.keyHeader).
			Bool("trust_xff", cfg.trustXFF).
			Dur("max_wait", cfg.clientMaxWait).
			Msg("client throttle")
	}
	log.Info().
		Bool("enabled", cfg.statsEnabled).
		Str("redis_addr", cfg.statsRedisAddr).
		Str("bucket", cfg.statsBucket).
		Dur("ttl", cfg.statsTTL).
		Bool("track_keys", cfg.statsTrackKeys).
		Msg("throttle stats")
}
