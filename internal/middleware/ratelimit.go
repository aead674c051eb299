package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mitradev/ssogate/internal/templates"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterRedis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimiterFactory builds per-route rate limiting middleware on a
// shared store. Each route group gets its own rate in limiter format
// ("10-M" is 10 requests per minute) but all limits count in the same
// backend, so multi-instance deployments share state when Redis is
// configured.
type RateLimiterFactory struct {
	store limiter.Store
}

// NewRateLimiterFactory creates a factory backed by Redis when a client
// is provided and in-process memory otherwise.
func NewRateLimiterFactory(redisClient *redis.Client) (*RateLimiterFactory, error) {
	if redisClient == nil {
		return &RateLimiterFactory{store: memory.NewStore()}, nil
	}

	store, err := limiterRedis.NewStoreWithOptions(redisClient, limiter.StoreOptions{
		Prefix: "ratelimit",
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit redis store: %w", err)
	}
	return &RateLimiterFactory{store: store}, nil
}

// Limit returns middleware enforcing the given rate, e.g. "300-M"
func (f *RateLimiterFactory) Limit(format string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(format)
	if err != nil {
		return nil, fmt.Errorf("rate limit format %q: %w", format, err)
	}

	instance := limiter.New(f.store, rate)

	return mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		if strings.Contains(c.GetHeader("Accept"), "text/html") {
			templates.RenderTempl(c, http.StatusTooManyRequests, templates.ErrorPage(templates.ErrorPageProps{
				Error:   "rate_limit_exceeded",
				Message: "Too many requests. Please wait a moment and try again.",
			}))
		} else {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":             "rate_limit_exceeded",
				"error_description": "Too many requests. Please try again later.",
			})
		}
		c.Abort()
	})), nil
}
