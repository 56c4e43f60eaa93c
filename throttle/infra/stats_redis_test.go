package infra

import (
	"context"
	"os"
	"testing"
	"time"

	"throttle-gateway/throttle/domain"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStatsStore_NilClientIsNoop(t *testing.T) {
	var s *RedisStatsStore
	assert.NoError(t, s.Record(context.Background(), domain.GrantEvent{Key: "k"}))

	s = NewRedisStatsStore(nil)
	assert.NoError(t, s.Record(context.Background(), domain.GrantEvent{Key: "k"}))
}

func TestRedisStatsStore_Options(t *testing.T) {
	s := NewRedisStatsStore(nil, WithStatsPrefix(":app:throttle:"), WithStatsBucket(" MINUTE "))

	assert.Equal(t, "app:throttle", s.Prefix())
	at := time.Date(2024, 3, 1, 12, 34, 56, 0, time.UTC)
	assert.Equal(t, "app:throttle:minute:202403011234", s.MinuteKey(at))
}

func TestRedisStatsStore_UnreachableServerReturnsWrappedError(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer func() { _ = rdb.Close() }()

	err := NewRedisStatsStore(rdb).Record(context.Background(), domain.GrantEvent{Key: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record throttle stats")
}

// Integração: roda só com RATE_STATS_REDIS_ADDR apontando para um Redis descartável.
func TestRedisStatsStore_RecordsCounters(t *testing.T) {
	addr := os.Getenv("RATE_STATS_REDIS_ADDR")
	if addr == "" {
		t.Skip("RATE_STATS_REDIS_ADDR not set")
	}

	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = rdb.Close() }()

	prefix := "throttle:test:" + time.Now().Format("150405.000000")
	s := NewRedisStatsStore(rdb, WithStatsPrefix(prefix), WithStatsTrackKeys(true), WithStatsTTL(time.Minute))
	t.Cleanup(func() {
		keys, _ := rdb.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			_ = rdb.Del(ctx, keys...).Err()
		}
	})

	at := time.Now()
	require.NoError(t, s.Record(ctx, domain.GrantEvent{Key: "c1", Delay: 1500 * time.Microsecond, Method: "GET", Path: "/a", At: at}))
	require.NoError(t, s.Record(ctx, domain.GrantEvent{Key: "c1", Abandoned: true, Method: "GET", Path: "/a", At: at}))

	total, err := rdb.HGetAll(ctx, prefix+":total").Result()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"granted": "1", "abandoned": "1", "wait_us": "1500"}, total)

	minute, err := rdb.HGetAll(ctx, s.MinuteKey(at)).Result()
	require.NoError(t, err)
	assert.Equal(t, "1", minute["granted"])

	route, err := rdb.HGetAll(ctx, prefix+":route").Result()
	require.NoError(t, err)
	assert.Equal(t, "1", route["GET /a:granted"])
	assert.Equal(t, "1", route["GET /a:abandoned"])

	byKey, err := rdb.HGetAll(ctx, prefix+":key:c1").Result()
	require.NoError(t, err)
	assert.Equal(t, "1", byKey["granted"])
}
