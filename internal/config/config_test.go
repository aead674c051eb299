package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "http://localhost:8080", cfg.Issuer)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())

	assert.Equal(t, time.Hour, cfg.AccessTokenExpiration)
	assert.Equal(t, time.Hour, cfg.IDTokenExpiration)
	assert.Equal(t, 10*time.Minute, cfg.AuthCodeExpiration)
	assert.Equal(t, 336*time.Hour, cfg.RefreshTokenExpiration)

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "ssogate.db", cfg.DatabaseDSN)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 10*time.Minute, cfg.PurgeInterval)

	assert.True(t, cfg.EnableAuditLogging)
	assert.Equal(t, 1000, cfg.AuditLogBufferSize)
	assert.Equal(t, 90*24*time.Hour, cfg.AuditRetention)

	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, "300-M", cfg.RateLimitGeneral)
	assert.Equal(t, "10-M", cfg.RateLimitLogin)
	assert.Equal(t, "60-M", cfg.RateLimitToken)

	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, time.Minute, cfg.StatsCacheTTL)

	assert.False(t, cfg.HRISSyncEnabled)
	assert.Equal(t, 6*time.Hour, cfg.HRISSyncInterval)
	assert.Equal(t, 3, cfg.HRISMaxRetries)

	assert.False(t, cfg.GitHubOAuthEnabled)
	assert.Equal(t, []string{"user:email"}, cfg.GitHubOAuthScopes)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ISSUER", "https://sso.example.com")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("AUTH_CODE_EXPIRATION", "5m")
	t.Setenv("RATE_LIMIT_TOKEN", "120-M")
	t.Setenv("AUDIT_LOG_BUFFER_SIZE", "500")
	t.Setenv("HRIS_SYNC_ENABLED", "true")
	t.Setenv("GITHUB_SCOPES", "user:email, read:org")

	cfg := Load()

	assert.Equal(t, "https://sso.example.com", cfg.Issuer)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5*time.Minute, cfg.AuthCodeExpiration)
	assert.Equal(t, "120-M", cfg.RateLimitToken)
	assert.Equal(t, 500, cfg.AuditLogBufferSize)
	assert.True(t, cfg.HRISSyncEnabled)
	assert.Equal(t, []string{"user:email", "read:org"}, cfg.GitHubOAuthScopes)
}

func TestLoad_PostgresDSN(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "host=localhost user=sso dbname=sso")

	cfg := Load()
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "host=localhost user=sso dbname=sso", cfg.DatabaseDSN)
}

func TestLoad_SQLitePathFallback(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/data/sso.db")

	cfg := Load()
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "/data/sso.db", cfg.DatabaseDSN)
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("FLAG_TRUE", "true")
	t.Setenv("FLAG_ONE", "1")
	t.Setenv("FLAG_OFF", "false")

	assert.True(t, getEnvBool("FLAG_TRUE", false))
	assert.True(t, getEnvBool("FLAG_ONE", false))
	assert.False(t, getEnvBool("FLAG_OFF", true))
	assert.True(t, getEnvBool("FLAG_UNSET", true))
}

func TestGetEnvDuration_Invalid(t *testing.T) {
	t.Setenv("BAD_DURATION", "not-a-duration")
	assert.Equal(t, time.Minute, getEnvDuration("BAD_DURATION", time.Minute))
}
