package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/flexprice/recurring/internal/cache"
	"github.com/flexprice/recurring/internal/config"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisReplayGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	guard := NewRedisReplayGuard(client, "test:", time.Hour)
	ctx := context.Background()

	ok, err := guard.Claim(ctx, "stripe:evt_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("test:stripe:evt_1"))

	ok, err = guard.Claim(ctx, "stripe:evt_1")
	require.NoError(t, err)
	assert.False(t, ok, "second delivery must not be claimed")

	require.NoError(t, guard.Release(ctx, "stripe:evt_1"))
	ok, err = guard.Claim(ctx, "stripe:evt_1")
	require.NoError(t, err)
	assert.True(t, ok, "released delivery can be claimed again")
}

func TestRedisReplayGuard_Expires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	guard := NewRedisReplayGuard(client, "", time.Minute)
	ctx := context.Background()

	ok, err := guard.Claim(ctx, "xendit:wh_1")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = guard.Claim(ctx, "xendit:wh_1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisReplayGuard_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	guard := NewRedisReplayGuard(client, "", time.Minute)
	mr.Close()

	_, err := guard.Claim(context.Background(), "stripe:evt_1")
	assert.Error(t, err)
}

func TestCacheReplayGuard(t *testing.T) {
	guard := NewCacheReplayGuard(cache.NewInMemoryCache(nil), time.Hour)
	ctx := context.Background()

	ok, err := guard.Claim(ctx, "stripe:evt_1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = guard.Claim(ctx, "stripe:evt_1")
	assert.False(t, ok)

	ok, _ = guard.Claim(ctx, "stripe:evt_2")
	assert.True(t, ok)

	require.NoError(t, guard.Release(ctx, "stripe:evt_1"))
	ok, _ = guard.Claim(ctx, "stripe:evt_1")
	assert.True(t, ok)
}

func TestNewReplayGuard(t *testing.T) {
	cfg := config.GetDefaultConfig()
	guard, err := NewReplayGuard(cfg, cache.NewInMemoryCache(cfg), logger.NewNoopLogger())
	require.NoError(t, err)
	assert.IsType(t, &cacheReplayGuard{}, guard)

	mr := miniredis.RunT(t)
	cfg.Redis.Enabled = true
	cfg.Redis.URL = "redis://" + mr.Addr()
	guard, err = NewReplayGuard(cfg, nil, logger.NewNoopLogger())
	require.NoError(t, err)
	assert.IsType(t, &redisReplayGuard{}, guard)

	cfg.Redis.URL = "://bad"
	_, err = NewReplayGuard(cfg, nil, logger.NewNoopLogger())
	assert.Error(t, err)
}

func TestGenerator_GenerateKey(t *testing.T) {
	g := NewGenerator()
	a := g.GenerateKey(ScopeCheckout, map[string]interface{}{"payment_id": "pay_1", "attempt": "create"})
	b := g.GenerateKey(ScopeCheckout, map[string]interface{}{"attempt": "create", "payment_id": "pay_1"})
	c := g.GenerateKey(ScopeCheckout, map[string]interface{}{"payment_id": "pay_2", "attempt": "create"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "checkout-")
	assert.True(t, g.ValidateKey(ScopeCheckout, map[string]interface{}{"payment_id": "pay_1", "attempt": "create"}, a))
}
