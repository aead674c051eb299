package bootstrap

import (
	"errors"
	"log"
	"net/url"
	"strings"

	"github.com/mitradev/ssogate/internal/config"
)

// validateConfiguration validates all configuration settings
func validateConfiguration(cfg *config.Config) {
	if err := validateIssuer(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := validateSecrets(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := validateHRISConfig(cfg); err != nil {
		log.Fatalf("Invalid HRIS configuration: %v", err)
	}
	if err := validateOAuthConfig(cfg); err != nil {
		log.Fatalf("Invalid upstream OAuth configuration: %v", err)
	}
}

// validateIssuer checks the issuer is an absolute URL without trailing slash
func validateIssuer(cfg *config.Config) error {
	u, err := url.Parse(cfg.Issuer)
	if err != nil || !u.IsAbs() {
		return errors.New("ISSUER must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("ISSUER must use http or https")
	}
	return nil
}

func validateSecrets(cfg *config.Config) error {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if strings.TrimSpace(cfg.SessionSecret) == "" {
		return errors.New("SESSION_SECRET is required")
	}
	return nil
}

// validateHRISConfig checks that required config is present when HRIS sync is enabled
func validateHRISConfig(cfg *config.Config) error {
	if !cfg.HRISSyncEnabled {
		return nil
	}
	if cfg.HRISEndpoint == "" {
		return errors.New("HRIS_ENDPOINT is required when HRIS_SYNC_ENABLED=true")
	}
	if cfg.HRISAPIKey == "" {
		return errors.New("HRIS_API_KEY is required when HRIS_SYNC_ENABLED=true")
	}
	return nil
}

// validateOAuthConfig checks that required config is present when GitHub sign-in is enabled
func validateOAuthConfig(cfg *config.Config) error {
	if !cfg.GitHubOAuthEnabled {
		return nil
	}
	if cfg.GitHubClientID == "" || cfg.GitHubClientSecret == "" {
		return errors.New(
			"GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET are required when GITHUB_OAUTH_ENABLED=true",
		)
	}
	return nil
}
