package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 2*time.Minute, cfg.SessionGrace)
	assert.Equal(t, 25*time.Second, cfg.RateLimitCooldown)
	assert.Equal(t, 9999, cfg.ScoreCeiling)
	assert.Equal(t, "@every 10m", cfg.SweepSchedule)
	assert.Equal(t, "competition.json", cfg.CompetitionFile)
	assert.Empty(t, cfg.OperatorKeyHash)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"RTS_HOST":          "127.0.0.1",
		"RTS_PORT":          "9000",
		"RTS_LOG_LEVEL":     "debug",
		"RTS_STORAGE":       "redis",
		"RTS_REDIS_URL":     "redis://cache:6379/1",
		"RTS_SESSION_TTL":   "10m",
		"RTS_SCORE_CEILING": "5000",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, StorageRedis, cfg.Storage)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 5000, cfg.ScoreCeiling)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"unknown storage", map[string]string{"RTS_STORAGE": "sqlite"}},
		{"redis without url", map[string]string{"RTS_STORAGE": "redis"}},
		{"postgres without dsn", map[string]string{"RTS_STORAGE": "postgres"}},
		{"bad port", map[string]string{"RTS_PORT": "70000"}},
		{"bad duration", map[string]string{"RTS_SESSION_TTL": "soon"}},
		{"zero ceiling", map[string]string{"RTS_SCORE_CEILING": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.vars)
			assert.Error(t, err)
		})
	}
}
