package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Session backends
const (
	BackendCookie = "cookie"
	BackendJWT    = "jwt"
	BackendRedis  = "redis"
	BackendBolt   = "bolt"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel    slog.Level

	SecretKey      string        `env:"SECRET_KEY"`
	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"cookie"`
	SessionCookie  string        `env:"SESSION_COOKIE" envDefault:"session"`
	SessionMaxAge  time.Duration `env:"SESSION_MAX_AGE" envDefault:"744h"`

	RedisURL string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	BoltPath string `env:"BOLT_PATH" envDefault:"./data/sessions.db"`

	// ClimbBranch enables the "climbed" variant of the second floor.
	ClimbBranch bool `env:"CLIMB_BRANCH" envDefault:"true"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("SECRET_KEY is required")
	}
	switch c.SessionBackend {
	case BackendCookie, BackendJWT, BackendRedis, BackendBolt:
	default:
		return fmt.Errorf("invalid SESSION_BACKEND %q (supported: cookie, jwt, redis, bolt)", c.SessionBackend)
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive, got %s", c.SessionMaxAge)
	}
	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
