package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/reflextile/internal/config"
	"github.com/mcoot/reflextile/internal/dependencies/clock"
	"github.com/mcoot/reflextile/internal/dependencies/random"
	"github.com/mcoot/reflextile/internal/services/analytics"
	"github.com/mcoot/reflextile/internal/services/competition"
	"github.com/mcoot/reflextile/internal/services/janitor"
	"github.com/mcoot/reflextile/internal/services/leaderboard"
	"github.com/mcoot/reflextile/internal/services/merge"
	"github.com/mcoot/reflextile/internal/services/ratelimit"
	"github.com/mcoot/reflextile/internal/services/report"
	"github.com/mcoot/reflextile/internal/services/session"
	"github.com/mcoot/reflextile/internal/services/submission"
	"github.com/mcoot/reflextile/internal/services/validation"
	"github.com/mcoot/reflextile/internal/storage"
	"github.com/mcoot/reflextile/internal/storage/memory"
	pgstorage "github.com/mcoot/reflextile/internal/storage/postgres"
	redisstorage "github.com/mcoot/reflextile/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Submission gatekeeping
	Registry  *session.Registry
	Limiter   *ratelimit.Limiter
	Validator *validation.Validator
	Merger    *merge.Merger
	Pipeline  *submission.Pipeline

	// Supporting services
	Leaderboard *leaderboard.Service
	Competition *competition.Service
	Analytics   *analytics.Service
	Report      *report.Service
	Janitor     *janitor.Janitor
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds database settings (required if StorageType is "postgres")
	PostgresConfig *pgstorage.Config

	// Zero values select each service's defaults
	Session         session.Config
	RateLimit       ratelimit.Config
	ScoreCeiling    int
	SweepSchedule   string
	CompetitionFile string
}

// ConfigFrom translates the environment configuration into factory settings
func ConfigFrom(cfg config.Config, logger *slog.Logger) Config {
	fc := Config{
		Logger:      logger,
		StorageType: cfg.Storage,
		Session: session.Config{
			TTL:   cfg.SessionTTL,
			Grace: cfg.SessionGrace,
		},
		RateLimit: ratelimit.Config{
			Cooldown: cfg.RateLimitCooldown,
		},
		ScoreCeiling:    cfg.ScoreCeiling,
		SweepSchedule:   cfg.SweepSchedule,
		CompetitionFile: cfg.CompetitionFile,
	}

	switch cfg.Storage {
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		fc.RedisConfig = &redisCfg
	case config.StoragePostgres:
		pgCfg := pgstorage.DefaultConfig()
		pgCfg.DSN = cfg.PostgresDSN
		fc.PostgresConfig = &pgCfg
	}
	return fc
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageMemory
	}

	switch storageType {
	case config.StorageMemory:
		store = memory.New()
	case config.StorageRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case config.StoragePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		pgStore, err := pgstorage.New(*cfg.PostgresConfig, logger)
		if err != nil {
			return nil, err
		}
		store = pgStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}

	app, err := newWithDependencies(store, clock.New(), random.New(), cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) (*App, error) {
	registry := session.New(clk, rnd, cfg.Session, logger)
	limiter := ratelimit.New(cfg.RateLimit, logger)
	validator := validation.New(cfg.ScoreCeiling, logger)
	merger := merge.New(store, clk, logger)
	pipeline := submission.New(registry, limiter, validator, merger, clk, logger)

	jan, err := janitor.New(registry, limiter, clk, cfg.SweepSchedule, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Registry:    registry,
		Limiter:     limiter,
		Validator:   validator,
		Merger:      merger,
		Pipeline:    pipeline,
		Leaderboard: leaderboard.New(store, clk),
		Competition: competition.New(cfg.CompetitionFile, clk, logger),
		Analytics:   analytics.New(store, logger),
		Report:      report.New(store),
		Janitor:     jan,
	}, nil
}
