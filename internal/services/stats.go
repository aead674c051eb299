package services

import (
	"context"
	"time"

	"github.com/mitradev/ssogate/internal/cache"
	"github.com/mitradev/ssogate/internal/store"
)

// Dashboard counter cache keys
const (
	statTotalUsers        = "stats:total_users"
	statActiveUsers       = "stats:active_users"
	statTotalClients      = "stats:total_clients"
	statActiveClients     = "stats:active_clients"
	statLiveRefreshTokens = "stats:live_refresh_tokens"
	statAccessGrants      = "stats:access_grants"
)

// StatsService serves the admin dashboard counters through a cache-aside
// layer. Counts are expensive table scans, so they are cached for a
// short TTL; with the rueidisaside backend concurrent misses collapse
// into a single database fetch across instances.
type StatsService struct {
	store *store.Store
	cache cache.Cache[int64]
	ttl   time.Duration
}

func NewStatsService(s *store.Store, c cache.Cache[int64], ttl time.Duration) *StatsService {
	return &StatsService{store: s, cache: c, ttl: ttl}
}

// GetDashboardStats returns the dashboard counters, cached
func (s *StatsService) GetDashboardStats(ctx context.Context) (*store.DashboardStats, error) {
	// One DB round trip fills every counter, so all six keys share a
	// single fetch keyed off whichever one missed first.
	fetch := func(pick func(*store.DashboardStats) int64) func(context.Context, string) (int64, error) {
		return func(ctx context.Context, _ string) (int64, error) {
			fresh, err := s.store.GetDashboardStats(ctx)
			if err != nil {
				return 0, err
			}
			s.primeCache(ctx, fresh)
			return pick(fresh), nil
		}
	}

	stats := &store.DashboardStats{}
	var err error

	if stats.TotalUsers, err = s.getCounter(ctx, statTotalUsers,
		fetch(func(d *store.DashboardStats) int64 { return d.TotalUsers })); err != nil {
		return nil, err
	}
	if stats.ActiveUsers, err = s.getCounter(ctx, statActiveUsers,
		fetch(func(d *store.DashboardStats) int64 { return d.ActiveUsers })); err != nil {
		return nil, err
	}
	if stats.TotalClients, err = s.getCounter(ctx, statTotalClients,
		fetch(func(d *store.DashboardStats) int64 { return d.TotalClients })); err != nil {
		return nil, err
	}
	if stats.ActiveClients, err = s.getCounter(ctx, statActiveClients,
		fetch(func(d *store.DashboardStats) int64 { return d.ActiveClients })); err != nil {
		return nil, err
	}
	if stats.LiveRefreshTokens, err = s.getCounter(ctx, statLiveRefreshTokens,
		fetch(func(d *store.DashboardStats) int64 { return d.LiveRefreshTokens })); err != nil {
		return nil, err
	}
	if stats.AccessGrants, err = s.getCounter(ctx, statAccessGrants,
		fetch(func(d *store.DashboardStats) int64 { return d.AccessGrants })); err != nil {
		return nil, err
	}

	return stats, nil
}

// getCounter reads one counter through the cache, preferring the
// stampede-protected path when the backend provides it.
func (s *StatsService) getCounter(
	ctx context.Context,
	key string,
	fetchFunc func(ctx context.Context, key string) (int64, error),
) (int64, error) {
	if cf, ok := s.cache.(cache.CacheWithFetch[int64]); ok {
		return cf.GetWithFetch(ctx, key, s.ttl, fetchFunc)
	}
	return cache.GetWithFetch(ctx, s.cache, key, s.ttl, fetchFunc)
}

// primeCache stores all counters after a fetch so the sibling keys do
// not each trigger their own scan.
func (s *StatsService) primeCache(ctx context.Context, d *store.DashboardStats) {
	_ = s.cache.MSet(ctx, map[string]int64{
		statTotalUsers:        d.TotalUsers,
		statActiveUsers:       d.ActiveUsers,
		statTotalClients:      d.TotalClients,
		statActiveClients:     d.ActiveClients,
		statLiveRefreshTokens: d.LiveRefreshTokens,
		statAccessGrants:      d.AccessGrants,
	}, s.ttl)
}

// Invalidate drops the cached counters, used after bulk mutations
func (s *StatsService) Invalidate(ctx context.Context) {
	for _, key := range []string{
		statTotalUsers,
		statActiveUsers,
		statTotalClients,
		statActiveClients,
		statLiveRefreshTokens,
		statAccessGrants,
	} {
		_ = s.cache.Delete(ctx, key)
	}
}
