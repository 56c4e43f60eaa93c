package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"throttle-gateway/throttle/domain"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStatsStore exporta contadores de espera para Redis.
//
// Layout (prefixo padrão "throttle:stats"):
//
//	<prefix>:total              hash granted / abandoned / wait_us
//	<prefix>:minute:YYYYMMDDhhmm mesmo hash por minuto (expira em ttl)
//	<prefix>:route              hash "<METHOD> <path>:<campo>"
//	<prefix>:key:<key>          hash por chave (opcional, expira em ttl)
type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix string
	// ttl aplica apenas em chaves de série temporal / por key.
	// total é cumulativo e não expira.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "throttle:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Prefix() string { return s.prefix }

// MinuteKey devolve a chave do bucket de minuto que contém at.
func (s *RedisStatsStore) MinuteKey(at time.Time) string {
	return fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.GrantEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := "granted"
	if ev.Abandoned {
		field = "abandoned"
	}
	waitUS := ev.Delay.Microseconds()

	incr := func(pipe redis.Pipeliner, key string) {
		pipe.HIncrBy(ctx, key, field, 1)
		if !ev.Abandoned && waitUS > 0 {
			pipe.HIncrBy(ctx, key, "wait_us", waitUS)
		}
	}

	pipe := s.rdb.Pipeline()
	incr(pipe, s.prefix+":total")

	if s.bucket == "minute" {
		bucketKey := s.MinuteKey(at)
		incr(pipe, bucketKey)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	routeField := strings.TrimSpace(strings.TrimSpace(ev.Method) + " " + strings.TrimSpace(ev.Path))
	if routeField != "" {
		pipe.HIncrBy(ctx, s.prefix+":route", routeField+":"+field, 1)
	}

	if s.trackKeys {
		if k := strings.TrimSpace(string(ev.Key)); k != "" {
			keyKey := s.prefix + ":key:" + k
			incr(pipe, keyKey)
			if s.ttl > 0 {
				pipe.Expire(ctx, keyKey, s.ttl)
			}
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "record throttle stats")
	}
	return nil
}

var _ domain.StatsStore = (*RedisStatsStore)(nil)
