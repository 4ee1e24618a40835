package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/mcoot/reflextile/internal/dependencies/clock"
	"github.com/mcoot/reflextile/internal/model"
	"github.com/mcoot/reflextile/internal/storage"
)

const (
	// DefaultLimit is the listing size when none is asked for
	DefaultLimit = 500
	// MaxLimit caps the listing size
	MaxLimit = 1000
	// PeriodWeek restricts a listing to records updated in the last 7 days
	PeriodWeek = "week"
)

// Query selects a leaderboard. Unknown modes and periods are ignored, and a
// non-positive limit selects DefaultLimit.
type Query struct {
	Mode   string
	Period string
	Limit  int
}

// Service lists the best scores
type Service struct {
	store storage.RecordStore
	clock clock.Clock
}

// New creates a Service
func New(store storage.RecordStore, clock clock.Clock) *Service {
	return &Service{store: store, clock: clock}
}

// Top returns records with a positive score, best first
func (s *Service) Top(ctx context.Context, q Query) ([]*model.PlayerRecord, error) {
	records, err := s.store.List(ctx, s.options(q))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return records, nil
}

func (s *Service) options(q Query) model.ListOptions {
	var opts model.ListOptions
	switch model.Mode(q.Mode) {
	case model.ModeSolo, model.ModeVersus:
		opts.Mode = model.Mode(q.Mode)
	}
	if q.Period == PeriodWeek {
		opts.Since = s.clock.Now().Add(-7 * 24 * time.Hour)
	}

	opts.Limit = q.Limit
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Limit > MaxLimit {
		opts.Limit = MaxLimit
	}
	return opts
}
