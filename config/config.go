package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// TokenSaltEnv is the environment variable holding the fallback shared secret
const TokenSaltEnv = "ECOFLOW_SYS_TOKEN_SALT"

// Config represents the complete plugin host configuration
type Config struct {
	Server        ServerConfig
	Token         TokenConfig
	JWKS          JWKSConfig
	OAuth         OAuthConfig
	Database      *DatabaseConfig // Optional: OAuth client store. When nil, clients come from the pipeline file.
	Observability ObservabilityConfig
	Pipelines     PipelinesConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	AllowedOrigins  []string
}

// TokenConfig holds token signing configuration
type TokenConfig struct {
	// Salt is the shared secret used when an asymmetric key file is missing
	Salt string
}

// JWKSConfig holds remote key set client configuration
type JWKSConfig struct {
	CacheSize   int
	CacheTTL    time.Duration
	HTTPTimeout time.Duration
}

// OAuthConfig holds OAuth provider configuration
type OAuthConfig struct {
	UserInfoURL string
	HTTPTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL database configuration for the OAuth client store
type DatabaseConfig struct {
	ConnectionString string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or console
}

// PipelinesConfig locates the pipeline definition file
type PipelinesConfig struct {
	File string
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 60*time.Second),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:*"}),
		},
		Token: TokenConfig{
			Salt: os.Getenv(TokenSaltEnv),
		},
		JWKS: JWKSConfig{
			CacheSize:   getEnvAsInt("JWKS_CACHE_SIZE", 50),
			CacheTTL:    getEnvAsDuration("JWKS_CACHE_TTL", time.Hour),
			HTTPTimeout: getEnvAsDuration("JWKS_HTTP_TIMEOUT", 10*time.Second),
		},
		OAuth: OAuthConfig{
			UserInfoURL: getEnv("GOOGLE_USERINFO_URL", "https://www.googleapis.com/oauth2/v2/userinfo"),
			HTTPTimeout: getEnvAsDuration("OAUTH_HTTP_TIMEOUT", 15*time.Second),
		},
		Database: loadDatabaseConfig(),
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
		Pipelines: PipelinesConfig{
			File: getEnv("PIPELINES_FILE", "pipelines.yaml"),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	// Fallback secret is required in production
	if c.IsProduction() && c.Token.Salt == "" {
		return fmt.Errorf("%s is required in production", TokenSaltEnv)
	}

	if c.JWKS.CacheSize <= 0 {
		return fmt.Errorf("jwks cache size must be positive")
	}
	if c.JWKS.CacheTTL <= 0 {
		return fmt.Errorf("jwks cache ttl must be positive")
	}

	if c.OAuth.UserInfoURL != "" {
		if _, err := url.ParseRequestURI(c.OAuth.UserInfoURL); err != nil {
			return fmt.Errorf("invalid userinfo url: %w", err)
		}
	}

	// Observability validation
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return c.ConnectionString
}

// LogString returns a safe string for logging (no password)
func (c *DatabaseConfig) LogString() string {
	u, err := url.Parse(c.ConnectionString)
	if err != nil || u.Host == "" {
		return "host=<from OAUTH_CLIENTS_DATABASE_URL>"
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	db := strings.TrimPrefix(u.Path, "/")
	return fmt.Sprintf("host=%s port=%s database=%s", u.Hostname(), port, db)
}

// loadDatabaseConfig loads the client store config from OAUTH_CLIENTS_DATABASE_URL.
// Returns nil when not set.
func loadDatabaseConfig() *DatabaseConfig {
	dbURL := getEnv("OAUTH_CLIENTS_DATABASE_URL", "")
	if dbURL == "" {
		return nil
	}
	return &DatabaseConfig{
		ConnectionString: dbURL,
		MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 4000)
func getPort() int {
	for _, key := range []string{"PORT", "SERVER_PORT"} {
		if value := os.Getenv(key); value != "" {
			if p, err := strconv.Atoi(value); err == nil {
				return p
			}
		}
	}
	return 4000
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
