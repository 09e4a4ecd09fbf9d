// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// LogLevel controls the minimum log level: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins,
	// comma-separated in CORS_ORIGINS. Defaults to the Vite dev server.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// JWTSecret is the HMAC key used to verify bearer tokens. Required.
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	// MaxBodyBytes caps request bodies; larger requests get 413.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// ChatPollInterval is the client re-fetch interval advertised by the API
	// and used by the poller. It is also the chat staleness bound.
	ChatPollInterval time.Duration `env:"CHAT_POLL_INTERVAL" envDefault:"5s"`

	// MigrateOnStart applies pending goose migrations before serving.
	MigrateOnStart bool `env:"MIGRATE_ON_START" envDefault:"false"`
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error naming any required variable that is not set or any value
// that fails to parse.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("config.Load: MAX_BODY_BYTES must be positive")
	}
	if cfg.ChatPollInterval <= 0 {
		return Config{}, fmt.Errorf("config.Load: CHAT_POLL_INTERVAL must be positive")
	}
	return cfg, nil
}

// trimAll trims each entry and drops empty ones.
func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
