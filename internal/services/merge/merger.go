package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/reflextile/internal/dependencies/clock"
	"github.com/mcoot/reflextile/internal/keylock"
	"github.com/mcoot/reflextile/internal/model"
	"github.com/mcoot/reflextile/internal/services/validation"
	"github.com/mcoot/reflextile/internal/storage"
)

// Merger folds accepted scores into the stored player records.
//
// Each merge checks name and contact ownership and then writes, holding a
// key lock over the device, name and contact involved. Stores enforce the
// same uniqueness inside Upsert, which covers writers in other processes.
type Merger struct {
	store  storage.RecordStore
	clock  clock.Clock
	logger *slog.Logger
	locks  *keylock.Locker
}

// New creates a Merger
func New(store storage.RecordStore, clock clock.Clock, logger *slog.Logger) *Merger {
	return &Merger{
		store:  store,
		clock:  clock,
		logger: logger,
		locks:  keylock.New(),
	}
}

// Merge applies a validated score. An existing record for the device and
// mode keeps the higher score, takes the new name, counts one more play and
// takes the contact only when one was supplied. Otherwise a record is
// created with one play. created reports which happened.
func (m *Merger) Merge(ctx context.Context, score validation.Score) (*model.PlayerRecord, bool, error) {
	unlock := m.lock(score.DeviceID, score.PlayerName, score.Contact)
	defer unlock()

	if err := m.checkOwnership(ctx, score.DeviceID, score.PlayerName, score.Contact); err != nil {
		return nil, false, err
	}

	now := m.clock.Now()
	existing, err := m.store.FindByDevice(ctx, score.DeviceID, score.Mode)
	if err != nil && !errors.Is(err, model.ErrRecordNotFound) {
		return nil, false, unavailable(err)
	}

	var rec *model.PlayerRecord
	created := existing == nil
	if created {
		rec = &model.PlayerRecord{
			DeviceID:   score.DeviceID,
			PlayerName: score.PlayerName,
			Score:      score.Score,
			Mode:       score.Mode,
			Contact:    score.Contact,
			PlayCount:  1,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	} else {
		rec = existing.Clone()
		rec.Score = max(existing.Score, score.Score)
		rec.PlayerName = score.PlayerName
		rec.PlayCount = existing.PlayCount + 1
		if score.Contact != nil {
			rec.Contact = score.Contact
		}
		rec.UpdatedAt = now
	}

	if err := m.upsert(ctx, rec); err != nil {
		return nil, false, err
	}

	m.logger.Debug("merged score",
		slog.String("device_id", rec.DeviceID),
		slog.String("mode", string(rec.Mode)),
		slog.Int("score", rec.Score),
		slog.Int("play_count", rec.PlayCount),
		slog.Bool("created", created),
	)
	return rec, created, nil
}

// Register claims a name, and optionally a contact, for a device before it
// has played. Every existing record of the device is renamed; a device with
// no records gets a solo placeholder with no score and no plays.
func (m *Merger) Register(ctx context.Context, id validation.Identity) (*model.PlayerRecord, bool, error) {
	unlock := m.lock(id.DeviceID, id.PlayerName, id.Contact)
	defer unlock()

	if err := m.checkOwnership(ctx, id.DeviceID, id.PlayerName, id.Contact); err != nil {
		return nil, false, err
	}

	now := m.clock.Now()
	var updated *model.PlayerRecord
	for _, mode := range model.Modes() {
		existing, err := m.store.FindByDevice(ctx, id.DeviceID, mode)
		if errors.Is(err, model.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, false, unavailable(err)
		}

		rec := existing.Clone()
		rec.PlayerName = id.PlayerName
		if id.Contact != nil {
			rec.Contact = id.Contact
		}
		rec.UpdatedAt = now
		if err := m.upsert(ctx, rec); err != nil {
			return nil, false, err
		}
		if updated == nil {
			updated = rec
		}
	}
	if updated != nil {
		return updated, false, nil
	}

	rec := &model.PlayerRecord{
		DeviceID:   id.DeviceID,
		PlayerName: id.PlayerName,
		Mode:       model.ModeSolo,
		Contact:    id.Contact,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := m.upsert(ctx, rec); err != nil {
		return nil, false, err
	}
	m.logger.Info("registered player",
		slog.String("device_id", rec.DeviceID),
		slog.String("player_name", rec.PlayerName),
	)
	return rec, true, nil
}

// Current returns the stored record for a device and mode, or nil if none
func (m *Merger) Current(ctx context.Context, deviceID string, mode model.Mode) (*model.PlayerRecord, error) {
	rec, err := m.store.FindByDevice(ctx, deviceID, mode)
	if errors.Is(err, model.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return rec, nil
}

func (m *Merger) lock(deviceID, name string, contact *string) func() {
	keys := []string{"device:" + deviceID, "name:" + name}
	if contact != nil {
		keys = append(keys, "contact:"+*contact)
	}
	return m.locks.Lock(keys...)
}

// checkOwnership fails when the name or contact belongs to another device
func (m *Merger) checkOwnership(ctx context.Context, deviceID, name string, contact *string) error {
	owner, err := m.store.FindByName(ctx, name)
	switch {
	case errors.Is(err, model.ErrRecordNotFound):
	case err != nil:
		return unavailable(err)
	case owner.DeviceID != deviceID:
		return model.ErrNameTaken
	}

	if contact == nil {
		return nil
	}
	owner, err = m.store.FindByContact(ctx, *contact)
	switch {
	case errors.Is(err, model.ErrRecordNotFound):
	case err != nil:
		return unavailable(err)
	case owner.DeviceID != deviceID:
		return model.ErrContactTaken
	}
	return nil
}

func (m *Merger) upsert(ctx context.Context, rec *model.PlayerRecord) error {
	err := m.store.Upsert(ctx, rec)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrNameTaken), errors.Is(err, model.ErrContactTaken):
		return err
	default:
		return unavailable(err)
	}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
}
