package ratelimit

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

const shardCount = 16

// Config holds the limiter settings
type Config struct {
	// Cooldown is the minimum gap between two accepted submissions of a device
	Cooldown time.Duration
	// PruneThreshold is the table size above which stale entries are pruned inline
	PruneThreshold int
	// StaleAfter is added to Cooldown to decide when an entry can be pruned
	StaleAfter time.Duration
}

// DefaultConfig returns the default limiter settings
func DefaultConfig() Config {
	return Config{
		Cooldown:       25 * time.Second,
		PruneThreshold: 500,
		StaleAfter:     5 * time.Second,
	}
}

type shard struct {
	mu   sync.Mutex
	last map[string]time.Time
}

// Limiter admits at most one submission per device per cooldown.
// Devices are spread over shards so unrelated devices do not contend.
type Limiter struct {
	cfg      Config
	perShard int
	logger   *slog.Logger
	shards   [shardCount]shard
}

// New creates a Limiter
func New(cfg Config, logger *slog.Logger) *Limiter {
	def := DefaultConfig()
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if cfg.PruneThreshold <= 0 {
		cfg.PruneThreshold = def.PruneThreshold
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = def.StaleAfter
	}

	l := &Limiter{
		cfg:      cfg,
		perShard: (cfg.PruneThreshold + shardCount - 1) / shardCount,
		logger:   logger,
	}
	for i := range l.shards {
		l.shards[i].last = make(map[string]time.Time)
	}
	return l
}

// Config returns the settings in effect
func (l *Limiter) Config() Config {
	return l.cfg
}

// CheckAndRecord reports whether deviceID is inside its cooldown. When it is
// not, now is recorded as the device's last submission.
func (l *Limiter) CheckAndRecord(deviceID string, now time.Time) bool {
	s := l.shardFor(deviceID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.last[deviceID]; ok && now.Sub(last) < l.cfg.Cooldown {
		return true
	}
	s.last[deviceID] = now

	if len(s.last) > l.perShard {
		s.prune(l.cutoff(now))
	}
	return false
}

// Forget drops the record made for deviceID at the given time, if it is
// still the latest one
func (l *Limiter) Forget(deviceID string, at time.Time) {
	s := l.shardFor(deviceID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.last[deviceID]; ok && last.Equal(at) {
		delete(s.last, deviceID)
	}
}

// Prune removes entries that can no longer limit anything and returns how
// many were removed
func (l *Limiter) Prune(now time.Time) int {
	cutoff := l.cutoff(now)
	removed := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		removed += s.prune(cutoff)
		s.mu.Unlock()
	}
	if removed > 0 {
		l.logger.Info("pruned rate limit entries", slog.Int("removed", removed))
	}
	return removed
}

// Len returns the number of tracked devices
func (l *Limiter) Len() int {
	n := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		n += len(s.last)
		s.mu.Unlock()
	}
	return n
}

func (l *Limiter) cutoff(now time.Time) time.Time {
	return now.Add(-(l.cfg.Cooldown + l.cfg.StaleAfter))
}

func (l *Limiter) shardFor(deviceID string) *shard {
	return &l.shards[xxhash.Sum64String(deviceID)%shardCount]
}

// prune is called with s.mu held
func (s *shard) prune(cutoff time.Time) int {
	removed := 0
	for id, last := range s.last {
		if last.Before(cutoff) {
			delete(s.last, id)
			removed++
		}
	}
	return removed
}
