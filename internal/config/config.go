// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public-facing URL used for links and redirects.
	BaseURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// Database holds MariaDB connection settings.
	Database DatabaseConfig

	// Redis holds Redis connection settings.
	Redis RedisConfig

	// Auth holds token signing and account lockout settings.
	Auth AuthConfig

	// Google holds the Google OAuth client settings.
	Google GoogleConfig

	// Quota holds per-user write ceilings and transport rate limits.
	Quota QuotaConfig

	// Cache holds TTLs for user-scoped read caches.
	Cache CacheConfig
}

// DatabaseConfig holds MariaDB connection parameters. Individual fields
// (Host, User, Password, Name) are read from separate env vars so container
// orchestrators can manage each independently. If DATABASE_URL is set, it
// takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port format (default: "localhost:3306").
	// If no port is specified, 3306 is appended automatically.
	Host string

	// User is the MariaDB username (default: "eduseek").
	User string

	// Password is the MariaDB password (default: "eduseek").
	Password string

	// Name is the database name (default: "eduseek").
	Name string

	// dsnOverride is set when DATABASE_URL is provided, bypassing individual fields.
	dsnOverride string

	// MaxOpenConns is the maximum number of open connections in the pool.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int

	// ConnMaxLifetime is how long a connection can be reused.
	ConnMaxLifetime time.Duration
}

// DSN returns the go-sql-driver/mysql connection string. If DATABASE_URL was
// set, it is returned as-is. Otherwise the DSN is built from the individual
// Host/User/Password/Name fields using the driver's Config.FormatDSN()
// to safely handle special characters in passwords.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
// Allows users to set DB_HOST=mydb (gets :3306) or DB_HOST=mydb:3307 (as-is).
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// AuthConfig holds token signing and account lockout settings.
type AuthConfig struct {
	// JWTSecret is the HMAC signing key for access tokens (32+ bytes).
	JWTSecret string

	// Issuer is the "iss" claim stamped on every access token.
	Issuer string

	// Audience is the "aud" claim stamped on every access token.
	Audience string

	// AccessTokenTTL is the lifetime of an access token.
	AccessTokenTTL time.Duration

	// RefreshTokenTTL is the lifetime of a refresh token (session record).
	RefreshTokenTTL time.Duration

	// MaxLoginFailures is the consecutive-failure count that locks an account.
	MaxLoginFailures int

	// LockoutDuration is how long a locked account rejects login attempts.
	LockoutDuration time.Duration
}

// GoogleConfig holds the Google OAuth client settings. Federation routes
// return 501 when ClientID is empty.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string

	// RedirectURL is the callback URL registered with Google.
	RedirectURL string

	// HTTPTimeout bounds the code-exchange and userinfo calls. The exchange
	// is not idempotent, so there is no retry -- only this deadline.
	HTTPTimeout time.Duration
}

// QuotaConfig holds per-user write ceilings and transport rate limits.
type QuotaConfig struct {
	// FraudReportsPerDay is the per-user ceiling on fraud report submissions
	// within a UTC calendar day.
	FraudReportsPerDay int

	// APIRequestsPerMinute is the fixed-window transport limit applied to
	// the authenticated API route group, keyed by user (or IP when anonymous).
	APIRequestsPerMinute int
}

// CacheConfig holds TTLs for the user-scoped Redis read caches.
type CacheConfig struct {
	// FavoritesTTL bounds how stale a cached favorites list may get.
	FavoritesTTL time.Duration

	// HistoryTTL bounds how stale a cached search history list may get.
	HistoryTTL time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost:3306"),
			User:            getEnv("DB_USER", "eduseek"),
			Password:        getEnv("DB_PASSWORD", "eduseek"),
			Name:            getEnv("DB_NAME", "eduseek"),
			dsnOverride:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},

		Auth: AuthConfig{
			JWTSecret:        getEnv("JWT_SECRET", ""),
			Issuer:           getEnv("JWT_ISSUER", "eduseek"),
			Audience:         getEnv("JWT_AUDIENCE", "eduseek-api"),
			AccessTokenTTL:   getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTokenTTL:  getEnvDuration("REFRESH_TOKEN_TTL", 720*time.Hour),
			MaxLoginFailures: getEnvInt("MAX_LOGIN_FAILURES", 5),
			LockoutDuration:  getEnvDuration("LOCKOUT_DURATION", 15*time.Minute),
		},

		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
			HTTPTimeout:  getEnvDuration("GOOGLE_HTTP_TIMEOUT", 10*time.Second),
		},

		Quota: QuotaConfig{
			FraudReportsPerDay:   getEnvInt("FRAUD_REPORTS_PER_DAY", 5),
			APIRequestsPerMinute: getEnvInt("API_REQUESTS_PER_MINUTE", 20),
		},

		Cache: CacheConfig{
			FavoritesTTL: getEnvDuration("FAVORITES_CACHE_TTL", 10*time.Minute),
			HistoryTTL:   getEnvDuration("HISTORY_CACHE_TTL", 10*time.Minute),
		},
	}

	// A missing signing key is a deployment mistake, not something to paper
	// over per-request. Refuse to start in production; fall back to a dev
	// key otherwise so local runs work without a .env file.
	envLower := strings.ToLower(cfg.Env)
	if envLower == "production" || envLower == "prod" {
		if cfg.Auth.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		if len(cfg.Auth.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "dev-secret-key-do-not-use-in-production!!"
	}

	if cfg.Google.RedirectURL == "" {
		cfg.Google.RedirectURL = cfg.BaseURL + "/api/v1/auth/google-callback"
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "720h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
