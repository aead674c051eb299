package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/mitradev/ssogate/internal/cache"
	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/metrics"
)

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config) metrics.Recorder {
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}
	return recorder
}

// initializeStatsCache initializes the counter cache shared by the
// dashboard stats service and the artifact gauge updater. With Redis
// configured the cache is shared across instances and served through
// rueidis' client-side caching; without it a per-process memory cache
// is used.
func initializeStatsCache(ctx context.Context, cfg *config.Config) (cache.Cache[int64], error) {
	if cfg.RedisAddr == "" {
		log.Println("Stats cache: memory (single instance only)")
		return cache.NewMemoryCache[int64](), nil
	}

	c, err := cache.NewRueidisAsideCache(
		cfg.RedisAddr,
		cfg.RedisPassword,
		cfg.RedisDB,
		"ssogate:stats:",
		cfg.StatsCacheTTL,
	)
	if err != nil {
		// Client-side caching needs the RESP3 invalidation channel;
		// fall back to basic mode when the server cannot provide it.
		log.Printf("Stats cache: client-side caching unavailable (%v), using basic redis mode", err)
		return initializeBasicRedisCache(ctx, cfg)
	}
	if err := c.Health(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("stats cache health check failed: %w", err)
	}
	log.Printf("Stats cache: redis-aside (addr=%s, db=%d)", cfg.RedisAddr, cfg.RedisDB)
	return c, nil
}

func initializeBasicRedisCache(ctx context.Context, cfg *config.Config) (cache.Cache[int64], error) {
	c, err := cache.NewRueidisCache(
		ctx,
		cfg.RedisAddr,
		cfg.RedisPassword,
		cfg.RedisDB,
		"ssogate:stats:",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis stats cache: %w", err)
	}
	log.Printf("Stats cache: redis basic (addr=%s, db=%d)", cfg.RedisAddr, cfg.RedisDB)
	return c, nil
}
