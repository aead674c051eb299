package bootstrap

import (
	"github.com/mitradev/ssogate/internal/auth"
	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/metrics"
	"github.com/mitradev/ssogate/internal/services"
	"github.com/mitradev/ssogate/internal/store"
	"github.com/mitradev/ssogate/internal/token"
)

// initializeServices creates the core business logic services
func initializeServices(
	cfg *config.Config,
	db *store.Store,
	auditService *services.AuditService,
	recorder metrics.Recorder,
) (*services.UserService, *services.TokenService, *services.ClientService, *services.AuthorizationService, *services.AccessService) {
	// Authentication providers
	localProvider := auth.NewLocalAuthProvider(db)
	oauthProvider := initializeOAuthProvider(cfg)

	// JWT signing
	tokenProvider := token.NewProvider(cfg)

	userService := services.NewUserService(db, localProvider, oauthProvider, auditService)
	tokenService := services.NewTokenService(db, cfg, tokenProvider, auditService, recorder)
	clientService := services.NewClientService(db, auditService)
	authorizationService := services.NewAuthorizationService(db, cfg, auditService)
	accessService := services.NewAccessService(db, auditService)

	return userService, tokenService, clientService, authorizationService, accessService
}
