package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server settings
	ServerAddr  string
	Issuer      string // external base URL, used as iss claim and in discovery
	Environment string // "production" or "development"

	// Signing settings
	JWTSecret             string
	AccessTokenExpiration time.Duration
	IDTokenExpiration     time.Duration

	// Authorization code settings
	AuthCodeExpiration time.Duration

	// Refresh token settings
	RefreshTokenExpiration time.Duration

	// Session settings
	SessionSecret string
	SessionMaxAge time.Duration

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // Database connection string (DSN or path)
	StoreTimeout   time.Duration

	// Artifact purge sweep
	PurgeInterval time.Duration

	// Audit settings
	EnableAuditLogging bool
	AuditLogBufferSize int
	AuditRetention     time.Duration

	// Rate limiting
	RateLimitEnabled bool
	RateLimitGeneral string // limiter format, e.g. "100-M"
	RateLimitLogin   string
	RateLimitToken   string

	// Redis (rate limit store + stats cache); empty means in-memory
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Metrics
	MetricsEnabled   bool
	MetricsAuthToken string // optional bearer token guarding /metrics
	StatsCacheTTL    time.Duration

	// HRIS sync
	HRISSyncEnabled  bool
	HRISEndpoint     string
	HRISAPIKey       string
	HRISSyncInterval time.Duration
	HRISTimeout      time.Duration
	HRISMaxRetries   int
	HRISRetryDelay   time.Duration

	// Upstream OAuth sign-in (GitHub)
	GitHubOAuthEnabled     bool
	GitHubClientID         string
	GitHubClientSecret     string
	GitHubOAuthRedirectURL string
	GitHubOAuthScopes      []string
	OAuthTimeout           time.Duration
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	// Determine database driver and DSN
	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "ssogate.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:  getEnv("SERVER_ADDR", ":8080"),
		Issuer:      getEnv("ISSUER", "http://localhost:8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		JWTSecret:             getEnv("JWT_SECRET", "change-me-256-bit-secret"),
		AccessTokenExpiration: getEnvDuration("ACCESS_TOKEN_EXPIRATION", time.Hour),
		IDTokenExpiration:     getEnvDuration("ID_TOKEN_EXPIRATION", time.Hour),

		AuthCodeExpiration: getEnvDuration("AUTH_CODE_EXPIRATION", 10*time.Minute),

		RefreshTokenExpiration: getEnvDuration(
			"REFRESH_TOKEN_EXPIRATION",
			336*time.Hour,
		), // 14 days

		SessionSecret: getEnv("SESSION_SECRET", "session-secret-change-in-production"),
		SessionMaxAge: getEnvDuration("SESSION_MAX_AGE", 12*time.Hour),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		StoreTimeout:   getEnvDuration("STORE_TIMEOUT", 5*time.Second),

		PurgeInterval: getEnvDuration("ARTIFACT_PURGE_INTERVAL", 10*time.Minute),

		EnableAuditLogging: getEnvBool("ENABLE_AUDIT_LOGGING", true),
		AuditLogBufferSize: getEnvInt("AUDIT_LOG_BUFFER_SIZE", 1000),
		AuditRetention:     getEnvDuration("AUDIT_RETENTION", 90*24*time.Hour),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitGeneral: getEnv("RATE_LIMIT_GENERAL", "300-M"),
		RateLimitLogin:   getEnv("RATE_LIMIT_LOGIN", "10-M"),
		RateLimitToken:   getEnv("RATE_LIMIT_TOKEN", "60-M"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MetricsEnabled:   getEnvBool("METRICS_ENABLED", false),
		MetricsAuthToken: getEnv("METRICS_AUTH_TOKEN", ""),
		StatsCacheTTL:    getEnvDuration("STATS_CACHE_TTL", time.Minute),

		HRISSyncEnabled:  getEnvBool("HRIS_SYNC_ENABLED", false),
		HRISEndpoint:     getEnv("HRIS_ENDPOINT", ""),
		HRISAPIKey:       getEnv("HRIS_API_KEY", ""),
		HRISSyncInterval: getEnvDuration("HRIS_SYNC_INTERVAL", 6*time.Hour),
		HRISTimeout:      getEnvDuration("HRIS_TIMEOUT", 30*time.Second),
		HRISMaxRetries:   getEnvInt("HRIS_MAX_RETRIES", 3),
		HRISRetryDelay:   getEnvDuration("HRIS_RETRY_DELAY", time.Second),

		GitHubOAuthEnabled:     getEnvBool("GITHUB_OAUTH_ENABLED", false),
		GitHubClientID:         getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret:     getEnv("GITHUB_CLIENT_SECRET", ""),
		GitHubOAuthRedirectURL: getEnv("GITHUB_REDIRECT_URL", ""),
		GitHubOAuthScopes:      getEnvSlice("GITHUB_SCOPES", []string{"user:email"}),
		OAuthTimeout:           getEnvDuration("OAUTH_TIMEOUT", 15*time.Second),
	}
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := splitAndTrim(value, ",")
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
