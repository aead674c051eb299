package bootstrap

import (
	"log"
	"net/http"

	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/metrics"
	"github.com/mitradev/ssogate/internal/middleware"
	"github.com/mitradev/ssogate/internal/store"
	"github.com/mitradev/ssogate/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	db *store.Store,
	h handlerSet,
	recorder metrics.Recorder,
	rateLimitRedisClient *redis.Client,
) *gin.Engine {
	setupGinMode(cfg)
	r := gin.New()

	r.Use(metrics.HTTPMetricsMiddleware(recorder))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(util.IPMiddleware())

	setupSessionMiddleware(r, cfg)

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(db))

	setupMetricsEndpoint(r, cfg)

	rateLimiters := setupRateLimiting(cfg, rateLimitRedisClient)

	setupAllRoutes(r, cfg, h, rateLimiters)

	logServerStartup(cfg)

	return r
}

// setupSessionMiddleware configures session handling middleware
func setupSessionMiddleware(r *gin.Engine, cfg *config.Config) {
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("ssogate_session", sessionStore))
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsAuthToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuth(cfg.MetricsAuthToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(
	r *gin.Engine,
	cfg *config.Config,
	h handlerSet,
	rateLimiters rateLimitMiddlewares,
) {
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/login")
	})

	// Swagger documentation (development only)
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		log.Println("Swagger UI enabled at /swagger/index.html")
	}

	// Sign-in routes
	r.GET("/login", h.auth.ShowLogin)
	r.POST("/login", rateLimiters.login, h.auth.Login)
	r.GET("/logout", h.auth.Logout)
	r.GET("/login/github", h.auth.GitHubLogin)
	r.GET("/login/github/callback", h.auth.GitHubCallback)

	// OIDC discovery
	r.GET("/.well-known/openid-configuration", h.oidc.Discovery)

	// Token and UserInfo endpoints (public, client-authenticated)
	oauth := r.Group("/oauth")
	{
		oauth.POST("/token", rateLimiters.token, h.token.Token)
		oauth.GET("/userinfo", h.oidc.UserInfo)
		oauth.POST("/userinfo", h.oidc.UserInfo)
		oauth.GET("/logout", h.oidc.EndSession)
	}

	// Authorization endpoint (browser, requires login + CSRF)
	authorize := r.Group("/oauth")
	authorize.Use(
		middleware.RequireAuth(),
		middleware.LoadUser(h.userService),
		middleware.CSRF(),
	)
	{
		authorize.GET("/authorize", rateLimiters.general, h.authorize.Authorize)
		authorize.POST("/authorize", rateLimiters.general, h.authorize.Consent)
	}

	setupAdminRoutes(r, h)
}

// setupAdminRoutes configures the admin JSON API
func setupAdminRoutes(r *gin.Engine, h handlerSet) {
	admin := r.Group("/api/admin")
	admin.Use(
		middleware.RequireAuth(),
		middleware.LoadUser(h.userService),
		middleware.RequireAdmin(),
	)
	{
		admin.GET("/users", h.admin.ListUsers)
		admin.POST("/users", h.admin.CreateUser)
		admin.PUT("/users/:id/status", h.admin.SetUserStatus)
		admin.POST("/users/:id/revoke-tokens", h.admin.RevokeUserTokens)

		admin.GET("/clients", h.admin.ListClients)
		admin.POST("/clients", h.admin.CreateClient)
		admin.GET("/clients/:id", h.admin.GetClient)
		admin.PUT("/clients/:id", h.admin.UpdateClient)
		admin.DELETE("/clients/:id", h.admin.DeleteClient)
		admin.POST("/clients/:id/regenerate-secret", h.admin.RegenerateClientSecret)

		admin.POST("/access/grant", h.admin.GrantAccess)
		admin.POST("/access/revoke", h.admin.RevokeAccess)
		admin.GET("/access/users/:id", h.admin.ListUserGrants)

		admin.GET("/groups", h.admin.ListGroups)
		admin.POST("/groups", h.admin.CreateGroup)
		admin.DELETE("/groups/:id", h.admin.DeleteGroup)
		admin.PUT("/groups/:id/members/:userID", h.admin.SetGroupMember)
		admin.DELETE("/groups/:id/members/:userID", h.admin.SetGroupMember)
		admin.PUT("/groups/:id/clients/:clientID", h.admin.SetGroupClient)
		admin.DELETE("/groups/:id/clients/:clientID", h.admin.SetGroupClient)

		admin.POST("/tokens/revoke-grant", h.admin.RevokeGrantFamily)

		admin.GET("/sites", h.admin.ListSites)
		admin.POST("/sites", h.admin.CreateSite)
		admin.DELETE("/sites/:id", h.admin.DeleteSite)
		admin.GET("/divisions", h.admin.ListDivisions)
		admin.POST("/divisions", h.admin.CreateDivision)
		admin.GET("/units", h.admin.ListUnits)
		admin.POST("/units", h.admin.CreateUnit)
		admin.GET("/roles", h.admin.ListRoles)
		admin.POST("/roles", h.admin.CreateRole)
		admin.DELETE("/roles/:id", h.admin.DeleteRole)

		admin.GET("/audit", h.admin.ListAuditLogs)
		admin.GET("/stats", h.admin.DashboardStats)
		admin.POST("/hris/sync", h.admin.TriggerHRISSync)
	}
}

// createHealthCheckHandler creates health check endpoint handler
// healthCheck godoc
//
//	@Summary		Health check
//	@Description	Check server and database health status
//	@Tags			System
//	@Produce		json
//	@Success		200	{object}	object{status=string,database=string}	"Service is healthy"
//	@Failure		503	{object}	object{status=string,database=string}	"Service is unhealthy"
//	@Router			/health [get]
func createHealthCheckHandler(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch err := db.Health(c.Request.Context()); err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"status":   "healthy",
				"database": "connected",
			})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
		}
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		return
	}
	gin.SetMode(gin.DebugMode)
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config) {
	log.Printf("Identity provider starting on %s", cfg.ServerAddr)
	log.Printf("Issuer: %s", cfg.Issuer)
	log.Printf("Default admin user is seeded on first run (check logs for credentials)")
}
