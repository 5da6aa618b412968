// Package config loads the stash CLI configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Backend names a storage medium.
type Backend string

const (
	BackendJSON   Backend = "json"
	BackendYAML   Backend = "yaml"
	BackendSQLite Backend = "sqlite"
	BackendBolt   Backend = "bolt"
	BackendRemote Backend = "remote"
)

// Config holds the CLI configuration loaded from environment variables.
type Config struct {
	// Storage
	Backend  Backend `env:"STASH_BACKEND"  envDefault:"json"`
	Path     string  `env:"STASH_PATH"     envDefault:"db.json"`
	Document string  `env:"STASH_DOCUMENT" envDefault:"default"`
	URL      string  `env:"STASH_URL"`

	// Behavior
	Timeout       time.Duration `env:"STASH_TIMEOUT"        envDefault:"10s"`
	RetryAttempts int           `env:"STASH_RETRY_ATTEMPTS" envDefault:"3"`

	// Observability
	LogLevel string `env:"STASH_LOG_LEVEL" envDefault:"info"` // debug, info, warn, error
	Trace    bool   `env:"STASH_TRACE"     envDefault:"false"`
}

// Load reads configuration from the environment.
// With no files it loads .env if present (silent fail if not found); named
// files must exist. Variables already set in the environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendJSON, BackendYAML, BackendSQLite, BackendBolt:
		if c.Path == "" {
			return fmt.Errorf("STASH_PATH is required for %s backend", c.Backend)
		}
	case BackendRemote:
		if c.URL == "" {
			return fmt.Errorf("STASH_URL is required for remote backend")
		}
	default:
		return fmt.Errorf("unknown backend: %s (must be json, yaml, sqlite, bolt, or remote)", c.Backend)
	}

	if (c.Backend == BackendSQLite || c.Backend == BackendBolt) && c.Document == "" {
		return fmt.Errorf("STASH_DOCUMENT is required for %s backend", c.Backend)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("STASH_TIMEOUT must be positive, got %s", c.Timeout)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("STASH_RETRY_ATTEMPTS must be at least 1, got %d", c.RetryAttempts)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	return nil
}

// SlogLevel converts LogLevel to a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("STASH_LOG_LEVEL must be debug, info, warn, or error, got %q", c.LogLevel)
}
