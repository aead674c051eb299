package bootstrap

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/mitradev/ssogate/internal/cache"
	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/metrics"
	"github.com/mitradev/ssogate/internal/services"
	"github.com/mitradev/ssogate/internal/store"

	"github.com/appleboy/graceful"
	"github.com/redis/go-redis/v9"
)

// createHTTPServer creates the HTTP server instance
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// addServerRunningJob adds the HTTP server running job
func addServerRunningJob(m *graceful.Manager, srv *http.Server) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()
		<-ctx.Done()
		return nil
	})
}

// addServerShutdownJob adds HTTP server shutdown handler
func addServerShutdownJob(m *graceful.Manager, srv *http.Server) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
			return err
		}

		log.Println("Server exited")
		return nil
	})
}

// addRedisClientShutdownJob adds Redis client shutdown handler
func addRedisClientShutdownJob(m *graceful.Manager, redisClient *redis.Client) {
	if redisClient == nil {
		return
	}

	m.AddShutdownJob(func() error {
		log.Println("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
			return err
		}
		return nil
	})
}

// addAuditServiceShutdownJob adds audit service shutdown handler
func addAuditServiceShutdownJob(m *graceful.Manager, auditService *services.AuditService) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down audit service...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := auditService.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down audit service: %v", err)
			return err
		}
		return nil
	})
}

// addAuditLogCleanupJob adds periodic audit log cleanup job
func addAuditLogCleanupJob(
	m *graceful.Manager,
	cfg *config.Config,
	auditService *services.AuditService,
) {
	if !cfg.EnableAuditLogging || cfg.AuditRetention <= 0 {
		return
	}

	cleanup := func(ctx context.Context) {
		if deleted, err := auditService.CleanupOldLogs(ctx, cfg.AuditRetention); err != nil {
			log.Printf("Failed to cleanup old audit logs: %v", err)
		} else if deleted > 0 {
			log.Printf("Cleaned up %d old audit logs", deleted)
		}
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		// Run cleanup immediately on startup
		cleanup(ctx)

		for {
			select {
			case <-ticker.C:
				cleanup(ctx)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addArtifactPurgeJob adds the periodic sweep of expired grant
// artifacts. Expired rows are already invisible to reads, the sweep
// only reclaims storage.
func addArtifactPurgeJob(
	m *graceful.Manager,
	cfg *config.Config,
	db *store.Store,
	recorder metrics.Recorder,
) {
	if cfg.PurgeInterval <= 0 {
		return
	}

	purge := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()

		purged, err := db.PurgeExpiredArtifacts(ctx)
		if err != nil {
			log.Printf("Failed to purge expired artifacts: %v", err)
			return
		}
		recorder.RecordArtifactsPurged(purged)
		if purged > 0 {
			log.Printf("Purged %d expired grant artifacts", purged)
		}
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.PurgeInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				purge(ctx)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addArtifactGaugeJob adds the periodic live-artifact gauge refresh
func addArtifactGaugeJob(
	m *graceful.Manager,
	cfg *config.Config,
	db *store.Store,
	recorder metrics.Recorder,
	statsCache cache.Cache[int64],
) {
	if !cfg.MetricsEnabled {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.StatsCacheTTL)
		defer ticker.Stop()

		updater := metrics.NewArtifactGaugeUpdater(db, statsCache, recorder, cfg.StatsCacheTTL)

		// Update immediately on startup
		if err := updater.Update(ctx); err != nil {
			log.Printf("Failed to update artifact gauges: %v", err)
		}

		for {
			select {
			case <-ticker.C:
				if err := updater.Update(ctx); err != nil {
					log.Printf("Failed to update artifact gauges: %v", err)
				}
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addHRISSyncJob adds the periodic HRIS roster reconciliation job
func addHRISSyncJob(
	m *graceful.Manager,
	cfg *config.Config,
	hrisService *services.HRISService,
	statsService *services.StatsService,
	recorder metrics.Recorder,
) {
	if hrisService == nil || cfg.HRISSyncInterval <= 0 {
		return
	}

	sync := func(ctx context.Context) {
		start := time.Now()
		result, err := hrisService.Sync(ctx)
		recorder.RecordHRISSync(err == nil, time.Since(start))
		if err != nil {
			log.Printf("HRIS sync failed: %v", err)
			return
		}
		log.Printf(
			"HRIS sync completed: fetched=%d upserted=%d disabled=%d failed=%d",
			result.Fetched, result.Upserted, result.Disabled, result.Failed,
		)
		statsService.Invalidate(ctx)
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.HRISSyncInterval)
		defer ticker.Stop()

		// Reconcile once on startup so a fresh deployment has a roster
		sync(ctx)

		for {
			select {
			case <-ticker.C:
				sync(ctx)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addStatsCacheCleanupJob adds stats cache cleanup on shutdown
func addStatsCacheCleanupJob(m *graceful.Manager, statsCache cache.Cache[int64]) {
	if statsCache == nil {
		return
	}

	m.AddShutdownJob(func() error {
		if err := statsCache.Close(); err != nil {
			log.Printf("Error closing stats cache: %v", err)
		}
		return nil
	})
}
