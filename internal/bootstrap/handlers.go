package bootstrap

import (
	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/handlers"
	"github.com/mitradev/ssogate/internal/metrics"
	"github.com/mitradev/ssogate/internal/services"
)

// handlerSet holds all HTTP handlers and required services
type handlerSet struct {
	auth        *handlers.AuthHandler
	authorize   *handlers.AuthorizeHandler
	token       *handlers.TokenHandler
	oidc        *handlers.OIDCHandler
	admin       *handlers.AdminHandler
	userService *services.UserService
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	cfg *config.Config,
	userService *services.UserService,
	tokenService *services.TokenService,
	clientService *services.ClientService,
	authorizationService *services.AuthorizationService,
	accessService *services.AccessService,
	orgService *services.OrgService,
	auditService *services.AuditService,
	statsService *services.StatsService,
	hrisService *services.HRISService,
	recorder metrics.Recorder,
) handlerSet {
	return handlerSet{
		auth:      handlers.NewAuthHandler(userService, cfg, recorder),
		authorize: handlers.NewAuthorizeHandler(authorizationService, accessService, auditService, cfg, recorder),
		token:     handlers.NewTokenHandler(tokenService, authorizationService, cfg),
		oidc:      handlers.NewOIDCHandler(tokenService, clientService, auditService, cfg, recorder),
		admin: handlers.NewAdminHandler(
			userService,
			clientService,
			accessService,
			tokenService,
			orgService,
			auditService,
			statsService,
			hrisService,
		),
		userService: userService,
	}
}
