package main

import (
	"net/url"
	"strings"
	"time"

	"throttle-gateway/throttle/domain"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type config struct {
	listenAddr  string
	upstreamURL *url.URL

	// teto agregado das chamadas ao upstream
	upstreamRate    domain.Rate
	backend         string
	maxWait         time.Duration
	maxInFlight     int
	inFlightTimeout time.Duration

	// pacing opcional por cliente na entrada
	clientEnabled bool
	clientRate    domain.Rate
	clientMaxWait time.Duration
	keyHeader     string
	trustXFF      bool
	addHeaders    bool

	statsEnabled       bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
	statsBucket        string
	statsTrackKeys     bool

	logFormat string
	logLevel  string
}

// newViper lê tudo do ambiente (LISTEN_ADDR, UPSTREAM_URL, THROTTLE_COUNT, ...).
func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("throttle_count", 10)
	v.SetDefault("throttle_per", time.Second)
	v.SetDefault("throttle_backend", "cursor")
	v.SetDefault("throttle_max_wait", 0)
	v.SetDefault("max_in_flight", 100)
	v.SetDefault("in_flight_timeout", 0)

	v.SetDefault("client_throttle_enabled", false)
	v.SetDefault("client_throttle_count", 5)
	v.SetDefault("client_throttle_per", time.Second)
	v.SetDefault("client_throttle_max_wait", 2*time.Second)
	v.SetDefault("rate_key_header", "")
	v.SetDefault("trust_xff", false)
	v.SetDefault("add_throttle_headers", false)

	v.SetDefault("rate_stats_enabled", false)
	v.SetDefault("rate_stats_redis_addr", "")
	v.SetDefault("rate_stats_redis_password", "")
	v.SetDefault("rate_stats_redis_db", 0)
	v.SetDefault("rate_stats_prefix", "throttle:stats")
	v.SetDefault("rate_stats_ttl", 24*time.Hour)
	v.SetDefault("rate_stats_bucket", "minute")
	v.SetDefault("rate_stats_track_keys", false)

	v.SetDefault("log_format", "console")
	v.SetDefault("log_level", "info")
	return v
}

func readConfig(v *viper.Viper) (config, error) {
	cfg := config{
		listenAddr:      v.GetString("listen_addr"),
		backend:         strings.ToLower(strings.TrimSpace(v.GetString("throttle_backend"))),
		maxWait:         v.GetDuration("throttle_max_wait"),
		maxInFlight:     v.GetInt("max_in_flight"),
		inFlightTimeout: v.GetDuration("in_flight_timeout"),

		clientEnabled: v.GetBool("client_throttle_enabled"),
		clientMaxWait: v.GetDuration("client_throttle_max_wait"),
		keyHeader:     v.GetString("rate_key_header"),
		trustXFF:      v.GetBool("trust_xff"),
		addHeaders:    v.GetBool("add_throttle_headers"),

		statsEnabled:       v.GetBool("rate_stats_enabled"),
		statsRedisAddr:     v.GetString("rate_stats_redis_addr"),
		statsRedisPassword: v.GetString("rate_stats_redis_password"),
		statsRedisDB:       v.GetInt("rate_stats_redis_db"),
		statsPrefix:        v.GetString("rate_stats_prefix"),
		statsTTL:           v.GetDuration("rate_stats_ttl"),
		statsBucket:        v.GetString("rate_stats_bucket"),
		statsTrackKeys:     v.GetBool("rate_stats_track_keys"),

		logFormat: v.GetString("log_format"),
		logLevel:  v.GetString("log_level"),
	}

	raw := strings.TrimSpace(v.GetString("upstream_url"))
	if raw == "" {
		return config{}, errors.New("UPSTREAM_URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return config{}, errors.Wrap(err, "invalid UPSTREAM_URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return config{}, errors.Errorf("invalid UPSTREAM_URL %q: scheme and host are required", raw)
	}
	cfg.upstreamURL = u

	cfg.upstreamRate, err = domain.NewRate(v.GetInt("throttle_count"), v.GetDuration("throttle_per"))
	if err != nil {
		return config{}, errors.Wrap(err, "THROTTLE_COUNT/THROTTLE_PER")
	}
	if cfg.clientEnabled {
		cfg.clientRate, err = domain.NewRate(v.GetInt("client_throttle_count"), v.GetDuration("client_throttle_per"))
		if err != nil {
			return config{}, errors.Wrap(err, "CLIENT_THROTTLE_COUNT/CLIENT_THROTTLE_PER")
		}
	}

	if cfg.backend != "cursor" && cfg.backend != "limiter" {
		return config{}, errors.Errorf("THROTTLE_BACKEND must be cursor or limiter, got %q", cfg.backend)
	}
	if cfg.maxInFlight < 0 {
		return config{}, errors.New("MAX_IN_FLIGHT must be >= 0")
	}
	if cfg.statsEnabled && strings.TrimSpace(cfg.statsRedisAddr) == "" {
		return config{}, errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	}
	return cfg, nil
}
