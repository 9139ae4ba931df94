// apps/go-server/internal/config/config.go
//
// Process configuration.
// Values come from the environment; a `.env` file in the working directory
// is loaded first in development so local overrides do not need exporting.

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DevSecret signs session cookies when SESSION_SECRET is unset.
// Rejected in production.
const DevSecret = "dev_secret_change_me"

// Config is every setting the server reads at startup.
type Config struct {
	Port         string `env:"PORT"          envDefault:"5175"`
	Env          string `env:"NODE_ENV"      envDefault:"development"`
	LogLevel     string `env:"LOG_LEVEL"     envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT"    envDefault:"json"` // json | console
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	SessionStore string `env:"SESSION_STORE" envDefault:"memory"` // memory | sqlite | postgres
	SQLitePath   string `env:"SQLITE_PATH"   envDefault:"./data/battleship.db"`
	PostgresDSN  string `env:"POSTGRES_DSN"`

	SessionSecret  string        `env:"SESSION_SECRET"   envDefault:"dev_secret_change_me"`
	CookieName     string        `env:"COOKIE_NAME"      envDefault:"battleship_sid"`
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"24h"`
	SweepInterval  time.Duration `env:"SWEEP_INTERVAL"   envDefault:"5m"`

	// RandomSeed fixes the computer's randomness; 0 seeds from crypto/rand.
	RandomSeed int64 `env:"RANDOM_SEED" envDefault:"0"`
}

// Production reports whether cookies should be Secure.
func (c Config) Production() bool { return c.Env == "production" }

// Load reads .env (if present) and parses the environment into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks combinations env tags cannot express.
func (c Config) Validate() error {
	switch c.SessionStore {
	case "memory", "sqlite":
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("config: POSTGRES_DSN is required when SESSION_STORE=postgres")
		}
	default:
		return fmt.Errorf("config: unknown SESSION_STORE %q", c.SessionStore)
	}
	if c.SessionIdleTTL <= 0 || c.SweepInterval <= 0 {
		return errors.New("config: SESSION_IDLE_TTL and SWEEP_INTERVAL must be positive")
	}
	if c.SessionSecret == "" || (c.Production() && c.SessionSecret == DevSecret) {
		return errors.New("config: SESSION_SECRET must be set in production")
	}
	return nil
}
