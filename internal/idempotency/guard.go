package idempotency

import (
	"context"
	"time"

	"github.com/flexprice/recurring/internal/cache"
	"github.com/flexprice/recurring/internal/config"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/redis/go-redis/v9"
)

// DefaultReplayTTL is how long a claimed delivery is remembered when no TTL is configured
const DefaultReplayTTL = 72 * time.Hour

// ReplayGuard remembers webhook deliveries that are being or have been processed.
// A claim is released when processing fails so the provider's redelivery is retried.
type ReplayGuard interface {
	// Claim records key and reports whether this caller is the first to claim it
	Claim(ctx context.Context, key string) (bool, error)

	// Release forgets key
	Release(ctx context.Context, key string) error
}

// NewReplayGuard picks redis when it is enabled and an in-process cache otherwise
func NewReplayGuard(cfg *config.Configuration, c cache.Cache, log *logger.Logger) (ReplayGuard, error) {
	ttl := cfg.Providers.ReplayTTL
	if ttl <= 0 {
		ttl = DefaultReplayTTL
	}

	if !cfg.Redis.Enabled {
		log.Infow("webhook replay guard using in-memory cache", "ttl", ttl.String())
		return NewCacheReplayGuard(c, ttl), nil
	}

	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid redis url").
			Mark(ierr.ErrConfiguration)
	}

	log.Infow("webhook replay guard using redis", "addr", opt.Addr, "ttl", ttl.String())
	return NewRedisReplayGuard(redis.NewClient(opt), cfg.Redis.KeyPrefix, ttl), nil
}

// cacheReplayGuard keeps claims in the process cache. Claims are lost on restart,
// the ledger's terminal-status guard still holds.
type cacheReplayGuard struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewCacheReplayGuard(c cache.Cache, ttl time.Duration) ReplayGuard {
	return &cacheReplayGuard{cache: c, ttl: ttl}
}

func (g *cacheReplayGuard) Claim(ctx context.Context, key string) (bool, error) {
	return g.cache.Add(ctx, cache.GenerateKey(cache.PrefixWebhookEvent, key), time.Now().UTC(), g.ttl), nil
}

func (g *cacheReplayGuard) Release(ctx context.Context, key string) error {
	g.cache.Delete(ctx, cache.GenerateKey(cache.PrefixWebhookEvent, key))
	return nil
}

// redisReplayGuard shares claims across instances with SET NX
type redisReplayGuard struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisReplayGuard(client *redis.Client, prefix string, ttl time.Duration) ReplayGuard {
	return &redisReplayGuard{client: client, prefix: prefix, ttl: ttl}
}

func (g *redisReplayGuard) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.prefix+key, time.Now().UTC().Unix(), g.ttl).Result()
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to claim webhook delivery").
			WithReportableDetails(map[string]any{"key": key}).
			Mark(ierr.ErrSystem)
	}
	return ok, nil
}

func (g *redisReplayGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.prefix+key).Err(); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to release webhook delivery").
			WithReportableDetails(map[string]any{"key": key}).
			Mark(ierr.ErrSystem)
	}
	return nil
}
