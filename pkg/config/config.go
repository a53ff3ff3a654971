// Package config loads application configuration from defaults, an optional
// YAML file, and WILDLIFE_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/korimako/wildlife/pkg/observability"
	"github.com/korimako/wildlife/pkg/store"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Storage configuration
	Storage store.Config `yaml:"storage"`

	// Session configuration
	Session SessionConfig `yaml:"session"`

	// Rate limiting for the suggestion API
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Observability configuration
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Health/metrics server (separate port for k8s probes)
	HealthPort string `yaml:"health_port"`
}

// SessionConfig holds session store configuration
type SessionConfig struct {
	// Backend selects the session store: "memory" or "redis"
	Backend string `yaml:"backend"`

	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	TTL        time.Duration `yaml:"ttl"`
	CookieName string        `yaml:"cookie_name"`

	// MaxSessions bounds the in-memory store; ignored for redis
	MaxSessions int `yaml:"max_sessions"`
}

// RateLimitConfig holds rate limiting settings for the suggestion API
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled"`
	RequestsPerWindow int           `yaml:"requests_per_window"`
	Window            time.Duration `yaml:"window"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel string `yaml:"log_level"`

	// Metrics
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// Cron schedule for refreshing catalogue gauges
	GaugeRefreshSchedule string `yaml:"gauge_refresh_schedule"`
}

// DefaultConfig returns the configuration defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			HealthPort:      "9090",
		},
		Storage: store.DefaultConfig(),
		Session: SessionConfig{
			Backend:     "memory",
			RedisDB:     0,
			TTL:         24 * time.Hour,
			CookieName:  "wildlife_session",
			MaxSessions: 10000,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerWindow: 60,
			Window:            time.Minute,
		},
		Observability: ObservabilityConfig{
			LogLevel:             "info",
			MetricsEnabled:       true,
			GaugeRefreshSchedule: "@every 1m",
		},
	}
}

// LoadConfig loads configuration from an optional YAML file and environment
// variables. Environment variables take precedence over the file.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if path := getEnv("WILDLIFE_CONFIG_FILE", ""); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	loadEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile overlays values from a YAML config file
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadEnv overlays values from environment variables
func loadEnv(cfg *Config) {
	// Server
	cfg.Server.Host = getEnv("WILDLIFE_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnv("WILDLIFE_PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getEnvDuration("WILDLIFE_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvDuration("WILDLIFE_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = getEnvDuration("WILDLIFE_IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Server.ShutdownTimeout = getEnvDuration("WILDLIFE_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.HealthPort = getEnv("WILDLIFE_HEALTH_PORT", cfg.Server.HealthPort)

	// Storage
	cfg.Storage.Driver = getEnv("WILDLIFE_STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.SQLitePath = getEnv("WILDLIFE_SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.PostgresURL = getEnv("WILDLIFE_POSTGRES_URL", cfg.Storage.PostgresURL)
	cfg.Storage.MaxOpenConns = getEnvInt("WILDLIFE_DB_MAX_OPEN_CONNS", cfg.Storage.MaxOpenConns)
	cfg.Storage.MaxIdleConns = getEnvInt("WILDLIFE_DB_MAX_IDLE_CONNS", cfg.Storage.MaxIdleConns)
	cfg.Storage.ConnMaxLifetime = getEnvDuration("WILDLIFE_DB_CONN_MAX_LIFETIME", cfg.Storage.ConnMaxLifetime)

	// Session
	cfg.Session.Backend = getEnv("WILDLIFE_SESSION_BACKEND", cfg.Session.Backend)
	cfg.Session.RedisURL = getEnv("WILDLIFE_REDIS_URL", cfg.Session.RedisURL)
	cfg.Session.RedisPassword = getEnv("WILDLIFE_REDIS_PASSWORD", cfg.Session.RedisPassword)
	cfg.Session.RedisDB = getEnvInt("WILDLIFE_REDIS_DB", cfg.Session.RedisDB)
	cfg.Session.TTL = getEnvDuration("WILDLIFE_SESSION_TTL", cfg.Session.TTL)
	cfg.Session.CookieName = getEnv("WILDLIFE_SESSION_COOKIE", cfg.Session.CookieName)
	cfg.Session.MaxSessions = getEnvInt("WILDLIFE_SESSION_MAX", cfg.Session.MaxSessions)

	// Rate limiting
	cfg.RateLimit.Enabled = getEnvBool("WILDLIFE_RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.RequestsPerWindow = getEnvInt("WILDLIFE_RATE_LIMIT_REQUESTS", cfg.RateLimit.RequestsPerWindow)
	cfg.RateLimit.Window = getEnvDuration("WILDLIFE_RATE_LIMIT_WINDOW", cfg.RateLimit.Window)

	// Observability
	cfg.Observability.LogLevel = getEnv("WILDLIFE_LOG_LEVEL", cfg.Observability.LogLevel)
	cfg.Observability.MetricsEnabled = getEnvBool("WILDLIFE_METRICS_ENABLED", cfg.Observability.MetricsEnabled)
	cfg.Observability.GaugeRefreshSchedule = getEnv("WILDLIFE_GAUGE_REFRESH_SCHEDULE", cfg.Observability.GaugeRefreshSchedule)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	// Validate storage config based on driver
	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite storage")
		}
	case "postgres":
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("invalid storage driver: %s (must be sqlite or postgres)", c.Storage.Driver)
	}

	// Validate session config
	switch c.Session.Backend {
	case "memory":
		if c.Session.MaxSessions <= 0 {
			return fmt.Errorf("session max must be positive for memory sessions")
		}
	case "redis":
		if c.Session.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis sessions")
		}
	default:
		return fmt.Errorf("invalid session backend: %s (must be memory or redis)", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session cookie name is required")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerWindow <= 0 {
			return fmt.Errorf("rate limit requests per window must be positive")
		}
		if c.RateLimit.Window <= 0 {
			return fmt.Errorf("rate limit window must be positive")
		}
	}

	return nil
}

// ParseLogLevel parses a log level string
func ParseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
