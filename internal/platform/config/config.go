package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

const maxTokenLength = 4096

type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`
	Host   string `env:"HOST" default:"0.0.0.0"`
	Port   string `env:"PORT" default:"5000"`

	ModelPath     string        `env:"MODEL_PATH" default:"./model"`
	ModelEndpoint string        `env:"MODEL_ENDPOINT"`
	ModelTimeout  time.Duration `env:"MODEL_TIMEOUT" default:"10s"`
	BatchSize     int           `env:"BATCH_SIZE" default:"16"`
	MaxLength     int           `env:"MAX_LENGTH" default:"512"`

	StoreDriver  string `env:"STORE_DRIVER" default:"sqlite"`
	DatabasePath string `env:"DATABASE_PATH" default:"game_reviews.db"`
	DatabaseURL  string `env:"DATABASE_URL"`

	RedisURL          string        `env:"REDIS_URL"`
	AnalyticsCacheTTL time.Duration `env:"ANALYTICS_CACHE_TTL" default:"30s"`

	CORSOrigins    string  `env:"CORS_ORIGINS" default:"http://localhost:3000,http://127.0.0.1:3000"`
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" default:"20"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
	LogFile   string `env:"LOG_FILE"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// AllowedOrigins splits CORS_ORIGINS on commas, dropping blanks.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func validate(cfg *Config) error {
	drivers := []string{StoreSQLite, StorePostgres, StoreMemory}
	if !slices.Contains(drivers, cfg.StoreDriver) {
		return fmt.Errorf("STORE_DRIVER must be one of %s, got %q", strings.Join(drivers, ", "), cfg.StoreDriver)
	}

	switch cfg.StoreDriver {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case StoreSQLite:
		if cfg.DatabasePath == "" {
			return errors.New("DATABASE_PATH is required when STORE_DRIVER=sqlite")
		}
	}

	if cfg.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be at least 1, got %d", cfg.BatchSize)
	}
	if cfg.MaxLength < 1 || cfg.MaxLength > maxTokenLength {
		return fmt.Errorf("MAX_LENGTH must be between 1 and %d, got %d", maxTokenLength, cfg.MaxLength)
	}
	if cfg.ModelTimeout <= 0 {
		return errors.New("MODEL_TIMEOUT must be positive")
	}
	if cfg.AnalyticsCacheTTL < 0 {
		return errors.New("ANALYTICS_CACHE_TTL must not be negative")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst < 1 {
		return errors.New("RATE_LIMIT_RPS must be positive and RATE_LIMIT_BURST at least 1")
	}
	if len(cfg.AllowedOrigins()) == 0 {
		return errors.New("CORS_ORIGINS must list at least one origin")
	}

	return nil
}
