package bootstrap

import (
	"log"

	"github.com/mitradev/ssogate/internal/auth"
	"github.com/mitradev/ssogate/internal/config"
	"github.com/mitradev/ssogate/internal/hris"
	"github.com/mitradev/ssogate/internal/services"
	"github.com/mitradev/ssogate/internal/store"
)

// initializeOAuthProvider initializes the upstream GitHub sign-in
// provider when configured. Returns nil when upstream sign-in is off,
// the login page hides the button in that case.
func initializeOAuthProvider(cfg *config.Config) *auth.OAuthProvider {
	if !cfg.GitHubOAuthEnabled {
		return nil
	}

	provider := auth.NewGitHubProvider(auth.OAuthProviderConfig{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		RedirectURL:  cfg.GitHubOAuthRedirectURL,
		Scopes:       cfg.GitHubOAuthScopes,
	})
	log.Printf("GitHub sign-in configured: redirect=%s", cfg.GitHubOAuthRedirectURL)
	return provider
}

// initializeHRISService wires the HRIS roster sync when enabled.
// Returns nil when sync is off; the admin trigger endpoint reports 404.
func initializeHRISService(
	cfg *config.Config,
	db *store.Store,
	auditService *services.AuditService,
) *services.HRISService {
	if !cfg.HRISSyncEnabled {
		return nil
	}

	client, err := hris.NewClient(hris.Options{
		Endpoint:   cfg.HRISEndpoint,
		APIKey:     cfg.HRISAPIKey,
		Timeout:    cfg.HRISTimeout,
		MaxRetries: cfg.HRISMaxRetries,
		RetryDelay: cfg.HRISRetryDelay,
	})
	if err != nil {
		log.Fatalf("Failed to create HRIS client: %v", err)
	}

	log.Printf("HRIS sync enabled: endpoint=%s interval=%s", cfg.HRISEndpoint, cfg.HRISSyncInterval)
	return services.NewHRISService(db, client, auditService)
}
