package bootstrap

import (
	"log"

	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimitMiddlewares holds rate limiting middlewares for different endpoints
type rateLimitMiddlewares struct {
	general gin.HandlerFunc
	login   gin.HandlerFunc
	token   gin.HandlerFunc
}

// setupRateLimiting configures rate limiting middlewares based on configuration.
// Accepts an optional go-redis client for a shared store.
func setupRateLimiting(cfg *config.Config, redisClient *redis.Client) rateLimitMiddlewares {
	noOpMiddleware := func(c *gin.Context) { c.Next() }

	if !cfg.RateLimitEnabled {
		return rateLimitMiddlewares{
			general: noOpMiddleware,
			login:   noOpMiddleware,
			token:   noOpMiddleware,
		}
	}

	factory, err := middleware.NewRateLimiterFactory(redisClient)
	if err != nil {
		log.Fatalf("Failed to create rate limiter store: %v", err)
	}

	if redisClient != nil {
		log.Printf("Rate limiting enabled (store: redis)")
	} else {
		log.Printf("Rate limiting enabled (store: memory, single instance only)")
	}

	createLimiter := func(format, endpoint string) gin.HandlerFunc {
		limit, err := factory.Limit(format)
		if err != nil {
			log.Fatalf("Failed to create rate limiter for %s: %v", endpoint, err)
		}
		return limit
	}

	return rateLimitMiddlewares{
		general: createLimiter(cfg.RateLimitGeneral, "general"),
		login:   createLimiter(cfg.RateLimitLogin, "/login"),
		token:   createLimiter(cfg.RateLimitToken, "/oauth/token"),
	}
}
