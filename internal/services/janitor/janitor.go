package janitor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/mcoot/reflextile/internal/dependencies/clock"
	"github.com/mcoot/reflextile/internal/services/ratelimit"
	"github.com/mcoot/reflextile/internal/services/session"
)

// DefaultSchedule runs the sweep every ten minutes
const DefaultSchedule = "@every 10m"

// Janitor periodically drops expired session tokens and stale rate limit
// entries. It runs on the cron goroutine and never touches a token lock.
type Janitor struct {
	registry *session.Registry
	limiter  *ratelimit.Limiter
	clock    clock.Clock
	logger   *slog.Logger
	cron     *cron.Cron
}

// New creates a Janitor for the given schedule (standard cron spec or a
// descriptor such as "@every 10m")
func New(registry *session.Registry, limiter *ratelimit.Limiter, clock clock.Clock, schedule string, logger *slog.Logger) (*Janitor, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	j := &Janitor{
		registry: registry,
		limiter:  limiter,
		clock:    clock,
		logger:   logger,
		cron:     cron.New(),
	}
	if _, err := j.cron.AddFunc(schedule, j.Run); err != nil {
		return nil, fmt.Errorf("janitor schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Start begins running on schedule
func (j *Janitor) Start() {
	j.cron.Start()
	j.logger.Info("janitor started", slog.Int("jobs", len(j.cron.Entries())))
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to
// end
func (j *Janitor) Stop(ctx context.Context) error {
	done := j.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run performs one sweep now
func (j *Janitor) Run() {
	now := j.clock.Now()
	tokens := j.registry.Sweep(now)
	entries := j.limiter.Prune(now)
	j.logger.Debug("janitor sweep",
		slog.Int("tokens_removed", tokens),
		slog.Int("rate_limit_entries_removed", entries),
	)
}
