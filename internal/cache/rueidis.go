package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/rueidis"
)

// Compile-time interface check.
var _ Cache[int64] = (*RueidisCache)(nil)

// RueidisCache is a Cache[int64] on a plain rueidis connection without
// client-side caching. It serves deployments where the RESP3
// invalidation channel is unavailable (older Redis, proxies), trading
// the local cache of RueidisAsideCache for a round-trip per read.
type RueidisCache struct {
	client    rueidis.Client
	keyPrefix string
}

// NewRueidisCache connects to Redis in basic mode and verifies the
// connection before returning.
func NewRueidisCache(
	ctx context.Context,
	addr, password string,
	db int,
	keyPrefix string,
) (*RueidisCache, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{addr},
		Password:     password,
		SelectDB:     db,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RueidisCache{
		client:    client,
		keyPrefix: keyPrefix,
	}, nil
}

// Get retrieves a counter. A missing key surfaces as ErrCacheMiss.
func (c *RueidisCache) Get(ctx context.Context, key string) (int64, error) {
	resp := c.client.Do(ctx, c.client.B().Get().Key(c.keyPrefix+key).Build())
	if err := resp.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	str, err := resp.ToString()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	value, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return value, nil
}

// Set stores a counter with TTL
func (c *RueidisCache) Set(ctx context.Context, key string, value int64, ttl time.Duration) error {
	cmd := c.client.B().Set().
		Key(c.keyPrefix + key).
		Value(strconv.FormatInt(value, 10)).
		Ex(ttl).
		Build()

	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// MGet retrieves multiple counters, omitting missing or unparsable keys
func (c *RueidisCache) MGet(ctx context.Context, keys []string) (map[string]int64, error) {
	if len(keys) == 0 {
		return make(map[string]int64), nil
	}

	fullKeys := make([]string, len(keys))
	for i, key := range keys {
		fullKeys[i] = c.keyPrefix + key
	}

	resp := c.client.Do(ctx, c.client.B().Mget().Key(fullKeys...).Build())
	if err := resp.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	values, err := resp.ToArray()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	result := make(map[string]int64)
	for i, val := range values {
		if val.IsNil() {
			continue
		}
		str, err := val.ToString()
		if err != nil {
			continue
		}
		num, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			continue
		}
		result[keys[i]] = num
	}
	return result, nil
}

// MSet stores multiple counters with a shared TTL in one pipeline
func (c *RueidisCache) MSet(ctx context.Context, values map[string]int64, ttl time.Duration) error {
	if len(values) == 0 {
		return nil
	}

	cmds := make(rueidis.Commands, 0, len(values))
	for key, value := range values {
		cmds = append(cmds, c.client.B().Set().
			Key(c.keyPrefix+key).
			Value(strconv.FormatInt(value, 10)).
			Ex(ttl).
			Build())
	}

	for _, resp := range c.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
		}
	}
	return nil
}

// Delete removes a key
func (c *RueidisCache) Delete(ctx context.Context, key string) error {
	cmd := c.client.B().Del().Key(c.keyPrefix + key).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RueidisCache) Close() error {
	c.client.Close()
	return nil
}

// Health checks if Redis is reachable
func (c *RueidisCache) Health(ctx context.Context) error {
	if err := c.client.Do(ctx, c.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}
