// Package config loads service configuration from MISSIONIA_-prefixed
// environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config carries everything the API binary needs at startup.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string `env:"ADDR" envDefault:":8080"`

	// PGDSN selects the Postgres backend. Empty means preview mode:
	// a seeded in-memory store and password-less demo logins.
	PGDSN string `env:"PG_DSN"`

	// StorageDir is where uploaded files land; they are served back
	// under /files/.
	StorageDir string `env:"STORAGE_DIR" envDefault:"data/files"`

	// PublicFilesURL prefixes the URLs stored for uploads.
	PublicFilesURL string `env:"PUBLIC_FILES_URL" envDefault:"/files"`

	// SessionTTLHours bounds issued session tokens.
	SessionTTLHours int `env:"SESSION_TTL_HOURS" envDefault:"24"`

	// Per-IP rate limiting.
	RateBurst  int `env:"RATE_BURST" envDefault:"50"`
	RatePerSec int `env:"RATE_PER_SEC" envDefault:"25"`
}

// Load reads the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "MISSIONIA_"}); err != nil {
		return Config{}, fmt.Errorf("parse environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.SessionTTLHours <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if c.RateBurst <= 0 || c.RatePerSec <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}
	return nil
}

// Preview reports whether the server runs against the in-memory demo
// store instead of Postgres.
func (c Config) Preview() bool { return c.PGDSN == "" }
