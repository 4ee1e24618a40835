package submission

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/reflextile/internal/dependencies/clock"
	"github.com/mcoot/reflextile/internal/model"
	"github.com/mcoot/reflextile/internal/services/merge"
	"github.com/mcoot/reflextile/internal/services/ratelimit"
	"github.com/mcoot/reflextile/internal/services/session"
	"github.com/mcoot/reflextile/internal/services/validation"
)

// Result is the outcome of an accepted submission
type Result struct {
	// Record is the stored record after the submission. It is nil only for a
	// replay of a device that has no record in the claimed mode.
	Record *model.PlayerRecord
	// Created is set when the submission created the record
	Created bool
	// Replayed is set when the session had already been used within its
	// grace window and nothing was changed
	Replayed bool
}

// Pipeline decides, per submission, whether a score is admitted and merged
type Pipeline struct {
	registry  *session.Registry
	limiter   *ratelimit.Limiter
	validator *validation.Validator
	merger    *merge.Merger
	clock     clock.Clock
	logger    *slog.Logger
}

// New creates a Pipeline
func New(
	registry *session.Registry,
	limiter *ratelimit.Limiter,
	validator *validation.Validator,
	merger *merge.Merger,
	clock clock.Clock,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		registry:  registry,
		limiter:   limiter,
		validator: validator,
		merger:    merger,
		clock:     clock,
		logger:    logger,
	}
}

// IssueSession mints a single-use session token for a device about to play
func (p *Pipeline) IssueSession(ctx context.Context, deviceID string) (string, error) {
	id, err := p.registry.Issue(deviceID)
	if err != nil {
		return "", err
	}
	p.logger.Debug("issued session", slog.String("device_id", session.NormalizeDeviceID(deviceID)))
	return id, nil
}

// Submit runs a claim through validation, the session checks and the rate
// limit, then merges it. The first failing check decides the rejection.
//
// The session is consumed only once the rate limit passes. A name or
// contact conflict leaves it consumed. A store failure reverts both the
// session and the rate limit record so the client can retry as is.
func (p *Pipeline) Submit(ctx context.Context, claim validation.Claim) (*Result, error) {
	score, err := p.validator.Validate(claim)
	if err != nil {
		return nil, err
	}

	if !session.WellFormed(claim.SessionID) {
		p.security("score without session", score.DeviceID)
		return nil, model.ErrSessionRequired
	}

	hold, err := p.registry.Acquire(claim.SessionID, score.DeviceID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrSessionInvalid):
			p.security("score with unknown session", score.DeviceID)
		case errors.Is(err, model.ErrSessionDeviceMismatch):
			p.security("score with session of another device", score.DeviceID)
		}
		return nil, err
	}

	if hold.Replay() {
		hold.Release()
		rec, err := p.merger.Current(ctx, score.DeviceID, score.Mode)
		if err != nil {
			return nil, err
		}
		return &Result{Record: rec, Replayed: true}, nil
	}
	defer hold.Release()

	now := p.clock.Now()
	if p.limiter.CheckAndRecord(score.DeviceID, now) {
		return nil, model.ErrRateLimited
	}

	hold.MarkUsed()

	rec, created, err := p.merger.Merge(ctx, score)
	if err != nil {
		if errors.Is(err, model.ErrStoreUnavailable) {
			hold.Unmark()
			p.limiter.Forget(score.DeviceID, now)
			p.logger.Error("store unavailable during submission",
				slog.String("device_id", score.DeviceID),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	return &Result{Record: rec, Created: created}, nil
}

// Register claims a name and optional contact for a device without a
// session
func (p *Pipeline) Register(ctx context.Context, deviceID, playerName string, contact *string) (*model.PlayerRecord, bool, error) {
	id, err := validation.NormalizeIdentity(deviceID, playerName, contact)
	if err != nil {
		return nil, false, err
	}
	return p.merger.Register(ctx, id)
}

func (p *Pipeline) security(msg, deviceID string) {
	if len(deviceID) > 8 {
		deviceID = deviceID[:8]
	}
	p.logger.Warn(msg,
		slog.Bool("security", true),
		slog.String("device_id", deviceID),
	)
}
