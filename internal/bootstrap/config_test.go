package bootstrap

import (
	"testing"

	"github.com/mitradev/ssogate/internal/config"

	"github.com/stretchr/testify/assert"
)

func validConfig() *config.Config {
	return &config.Config{
		Issuer:        "https://sso.example.com",
		JWTSecret:     "jwt-secret",
		SessionSecret: "session-secret",
	}
}

func TestValidateIssuer(t *testing.T) {
	cases := []struct {
		name    string
		issuer  string
		wantErr bool
	}{
		{"https", "https://sso.example.com", false},
		{"http", "http://localhost:8080", false},
		{"relative", "/sso", true},
		{"bare host", "sso.example.com", true},
		{"wrong scheme", "ftp://sso.example.com", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Issuer = tc.issuer
			err := validateIssuer(cfg)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSecrets(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, validateSecrets(cfg))

	cfg.JWTSecret = "  "
	assert.Error(t, validateSecrets(cfg))

	cfg = validConfig()
	cfg.SessionSecret = ""
	assert.Error(t, validateSecrets(cfg))
}

func TestValidateHRISConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, validateHRISConfig(cfg))

	cfg.HRISSyncEnabled = true
	assert.Error(t, validateHRISConfig(cfg))

	cfg.HRISEndpoint = "https://hris.example.com/api"
	assert.Error(t, validateHRISConfig(cfg))

	cfg.HRISAPIKey = "key"
	assert.NoError(t, validateHRISConfig(cfg))
}

func TestValidateOAuthConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, validateOAuthConfig(cfg))

	cfg.GitHubOAuthEnabled = true
	assert.Error(t, validateOAuthConfig(cfg))

	cfg.GitHubClientID = "id"
	assert.Error(t, validateOAuthConfig(cfg))

	cfg.GitHubClientSecret = "secret"
	assert.NoError(t, validateOAuthConfig(cfg))
}
