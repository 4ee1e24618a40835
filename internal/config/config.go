package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config is the server configuration, read from RTS_* environment variables
type Config struct {
	Host     string `env:"RTS_HOST" envDefault:""`
	Port     int    `env:"RTS_PORT" envDefault:"8080"`
	LogLevel string `env:"RTS_LOG_LEVEL" envDefault:"info"`

	Storage     string `env:"RTS_STORAGE" envDefault:"memory"`
	RedisURL    string `env:"RTS_REDIS_URL"`
	PostgresDSN string `env:"RTS_POSTGRES_DSN"`

	SessionTTL        time.Duration `env:"RTS_SESSION_TTL" envDefault:"30m"`
	SessionGrace      time.Duration `env:"RTS_SESSION_GRACE" envDefault:"2m"`
	RateLimitCooldown time.Duration `env:"RTS_RATE_LIMIT_COOLDOWN" envDefault:"25s"`
	ScoreCeiling      int           `env:"RTS_SCORE_CEILING" envDefault:"9999"`
	SweepSchedule     string        `env:"RTS_SWEEP_SCHEDULE" envDefault:"@every 10m"`

	CompetitionFile string `env:"RTS_COMPETITION_FILE" envDefault:"competition.json"`
	// OperatorKeyHash is a bcrypt hash of the operator key. Admin routes are
	// disabled when it is empty.
	OperatorKeyHash string `env:"RTS_OPERATOR_KEY_HASH"`
}

// Load reads the configuration from the environment and validates it
func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom reads the configuration from vars, or from the process
// environment when vars is nil
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{}
	if vars != nil {
		opts.Environment = vars
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the settings fit together
func (c Config) Validate() error {
	var errs []error
	switch c.Storage {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("RTS_REDIS_URL is required when RTS_STORAGE=redis"))
		}
	case StoragePostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("RTS_POSTGRES_DSN is required when RTS_STORAGE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("RTS_STORAGE must be memory, redis or postgres, got %q", c.Storage))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("RTS_PORT out of range: %d", c.Port))
	}
	if c.SessionTTL <= 0 || c.SessionGrace <= 0 || c.RateLimitCooldown <= 0 {
		errs = append(errs, errors.New("durations must be positive"))
	}
	if c.ScoreCeiling <= 0 {
		errs = append(errs, errors.New("RTS_SCORE_CEILING must be positive"))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
