package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server       ServerConfig    `yaml:"server"`
	Database     DatabaseConfig  `yaml:"database"`
	Session      SessionConfig   `yaml:"session"`
	CSRF         CSRFConfig      `yaml:"csrf"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
	Logging      LoggingConfig   `yaml:"logging"`
	Tracing      TracingConfig   `yaml:"tracing"`
	LegacyCompat bool            `yaml:"legacy_compat"`
	Environment  string          `yaml:"environment"`
}

type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MaxConnections int    `yaml:"max_connections"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`

	// Timeout is derived from TimeoutSeconds after loading.
	Timeout time.Duration `yaml:"-"`
}

type SessionConfig struct {
	Secret      string `yaml:"secret"`
	ExpiryHours int    `yaml:"expiry_hours"`
	CookieName  string `yaml:"cookie_name"`

	// Expiry is derived from ExpiryHours after loading.
	Expiry time.Duration `yaml:"-"`
}

type CSRFConfig struct {
	Secret string `yaml:"secret"`
}

type RateLimitConfig struct {
	LoginPerMinute int `yaml:"login_per_minute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// Load builds configuration from environment variables. When path is
// non-empty the YAML file is read first and env vars override it.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.Database.TimeoutSeconds > 0 {
		cfg.Database.Timeout = time.Duration(cfg.Database.TimeoutSeconds) * time.Second
	}
	if cfg.Session.ExpiryHours > 0 {
		cfg.Session.Expiry = time.Duration(cfg.Session.ExpiryHours) * time.Hour
	}

	if cfg.Session.Secret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}
	if cfg.CSRF.Secret == "" {
		cfg.CSRF.Secret = cfg.Session.Secret
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			BaseURL: "http://localhost:8080",
		},
		Database: DatabaseConfig{
			MaxConnections: 25,
			Timeout:        5 * time.Second,
		},
		Session: SessionConfig{
			Expiry:     24 * time.Hour,
			CookieName: "board_session",
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Exporter:    "none",
			ServiceName: "townboard",
			SampleRate:  1.0,
		},
		Environment: "development",
	}
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.BaseURL = getEnv("SERVER_BASE_URL", cfg.Server.BaseURL)

	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.MaxConnections = getEnvInt("DATABASE_MAX_CONNECTIONS", cfg.Database.MaxConnections)
	cfg.Database.TimeoutSeconds = getEnvInt("STORAGE_TIMEOUT_SECONDS", cfg.Database.TimeoutSeconds)

	cfg.Session.Secret = getEnv("SESSION_SECRET", cfg.Session.Secret)
	cfg.Session.ExpiryHours = getEnvInt("SESSION_EXPIRY_HOURS", cfg.Session.ExpiryHours)
	cfg.Session.CookieName = getEnv("SESSION_COOKIE_NAME", cfg.Session.CookieName)

	cfg.CSRF.Secret = getEnv("CSRF_SECRET", cfg.CSRF.Secret)

	cfg.RateLimit.LoginPerMinute = getEnvInt("RATE_LIMIT_LOGIN", cfg.RateLimit.LoginPerMinute)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Tracing.Enabled = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = getEnv("TRACING_EXPORTER", cfg.Tracing.Exporter)
	cfg.Tracing.ServiceName = getEnv("TRACING_SERVICE_NAME", cfg.Tracing.ServiceName)
	cfg.Tracing.OTLPEndpoint = getEnv("TRACING_OTLP_ENDPOINT", cfg.Tracing.OTLPEndpoint)

	cfg.LegacyCompat = getEnvBool("LEGACY_COMPAT", cfg.LegacyCompat)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
