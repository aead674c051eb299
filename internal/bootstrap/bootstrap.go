package bootstrap

import (
	"context"
	"net/http"

	"github.com/mitradev/ssogate/internal/cache"
	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/metrics"
	"github.com/mitradev/ssogate/internal/services"
	"github.com/mitradev/ssogate/internal/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB                   *store.Store
	MetricsRecorder      metrics.Recorder
	StatsCache           cache.Cache[int64]
	RateLimitRedisClient *redis.Client

	// Services
	AuditService         *services.AuditService
	UserService          *services.UserService
	TokenService         *services.TokenService
	ClientService        *services.ClientService
	AuthorizationService *services.AuthorizationService
	AccessService        *services.AccessService
	OrgService           *services.OrgService
	StatsService         *services.StatsService
	HRISService          *services.HRISService

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the application
func Run(ctx context.Context, cfg *config.Config) error {
	app := &Application{Config: cfg}

	// Phase 1: Validate configuration
	validateConfiguration(cfg)

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(ctx); err != nil {
		return err
	}

	// Phase 3: Initialize business layer
	app.initializeBusinessLayer()

	// Phase 4: Initialize HTTP layer
	app.initializeHTTPLayer()

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up database, metrics, cache, and Redis
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}

	app.MetricsRecorder = initializeMetrics(app.Config)

	app.StatsCache, err = initializeStatsCache(ctx, app.Config)
	if err != nil {
		return err
	}

	app.RateLimitRedisClient, err = initializeRateLimitRedisClient(ctx, app.Config)
	if err != nil {
		return err
	}

	return nil
}

// initializeBusinessLayer sets up services
func (app *Application) initializeBusinessLayer() {
	// Audit service first, every other service logs through it
	app.AuditService = services.NewAuditService(
		app.DB,
		app.Config.EnableAuditLogging,
		app.Config.AuditLogBufferSize,
	)

	app.UserService,
		app.TokenService,
		app.ClientService,
		app.AuthorizationService,
		app.AccessService = initializeServices(
		app.Config,
		app.DB,
		app.AuditService,
		app.MetricsRecorder,
	)

	app.OrgService = services.NewOrgService(app.DB, app.AuditService)
	app.StatsService = services.NewStatsService(app.DB, app.StatsCache, app.Config.StatsCacheTTL)
	app.HRISService = initializeHRISService(app.Config, app.DB, app.AuditService)
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() {
	app.HandlerSet = initializeHandlers(
		app.Config,
		app.UserService,
		app.TokenService,
		app.ClientService,
		app.AuthorizationService,
		app.AccessService,
		app.OrgService,
		app.AuditService,
		app.StatsService,
		app.HRISService,
		app.MetricsRecorder,
	)

	app.Router = setupRouter(
		app.Config,
		app.DB,
		app.HandlerSet,
		app.MetricsRecorder,
		app.RateLimitRedisClient,
	)

	app.Server = createHTTPServer(app.Config, app.Router)
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	addServerRunningJob(m, app.Server)
	addServerShutdownJob(m, app.Server)
	addRedisClientShutdownJob(m, app.RateLimitRedisClient)
	addAuditServiceShutdownJob(m, app.AuditService)
	addAuditLogCleanupJob(m, app.Config, app.AuditService)
	addArtifactPurgeJob(m, app.Config, app.DB, app.MetricsRecorder)
	addArtifactGaugeJob(m, app.Config, app.DB, app.MetricsRecorder, app.StatsCache)
	addHRISSyncJob(m, app.Config, app.HRISService, app.StatsService, app.MetricsRecorder)
	addStatsCacheCleanupJob(m, app.StatsCache)

	<-m.Done()
}
