package metrics

import (
	"context"
	"time"

	"github.com/mitradev/ssogate/internal/cache"
	"github.com/mitradev/ssogate/internal/models"
	"github.com/mitradev/ssogate/internal/store"
)

// artifactCounter is the slice of the store the gauge updater needs
type artifactCounter interface {
	CountArtifacts(ctx context.Context, kind models.ArtifactKind) (int64, error)
}

// ArtifactGaugeUpdater refreshes the live-artifact gauges. Counts go
// through a short-TTL cache so a fleet of instances scraped in parallel
// does not multiply the table scans.
type ArtifactGaugeUpdater struct {
	store    artifactCounter
	cache    cache.Cache[int64]
	recorder Recorder
	ttl      time.Duration
}

func NewArtifactGaugeUpdater(
	s *store.Store,
	c cache.Cache[int64],
	recorder Recorder,
	ttl time.Duration,
) *ArtifactGaugeUpdater {
	return &ArtifactGaugeUpdater{
		store:    s,
		cache:    c,
		recorder: recorder,
		ttl:      ttl,
	}
}

// Update refreshes the gauges for every artifact kind
func (u *ArtifactGaugeUpdater) Update(ctx context.Context) error {
	kinds := []models.ArtifactKind{
		models.ArtifactAuthorizationCode,
		models.ArtifactRefreshToken,
	}

	for _, kind := range kinds {
		count, err := u.countThroughCache(ctx, kind)
		if err != nil {
			return err
		}
		u.recorder.SetActiveArtifacts(string(kind), count)
	}
	return nil
}

func (u *ArtifactGaugeUpdater) countThroughCache(
	ctx context.Context,
	kind models.ArtifactKind,
) (int64, error) {
	key := "metrics:artifacts:" + string(kind)
	fetch := func(ctx context.Context, _ string) (int64, error) {
		return u.store.CountArtifacts(ctx, kind)
	}

	if cf, ok := u.cache.(cache.CacheWithFetch[int64]); ok {
		return cf.GetWithFetch(ctx, key, u.ttl, fetch)
	}
	return cache.GetWithFetch(ctx, u.cache, key, u.ttl, fetch)
}
