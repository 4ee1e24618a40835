// Package storagetest holds the contract every storage backend must satisfy.
// Backend test suites embed Suite and assign Store in their SetupTest.
package storagetest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/reflextile/internal/model"
	"github.com/mcoot/reflextile/internal/storage"
)

// Suite is the shared storage contract
type Suite struct {
	suite.Suite
	Store storage.Storage
	Ctx   context.Context
}

var base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func contact(s string) *string {
	return &s
}

func record(deviceID, name string, score int, mode model.Mode) *model.PlayerRecord {
	return &model.PlayerRecord{
		DeviceID:   deviceID,
		PlayerName: name,
		Score:      score,
		Mode:       mode,
		PlayCount:  1,
		CreatedAt:  base,
		UpdatedAt:  base,
	}
}

// Record tests

func (s *Suite) TestUpsertAndFindByDevice() {
	rec := record("D1", "Ann", 120, model.ModeSolo)
	rec.Contact = contact("ann@example.com")
	s.Require().NoError(s.Store.Upsert(s.Ctx, rec))

	got, err := s.Store.FindByDevice(s.Ctx, "D1", model.ModeSolo)
	s.Require().NoError(err)
	s.Equal("Ann", got.PlayerName)
	s.Equal(120, got.Score)
	s.Equal(1, got.PlayCount)
	s.Require().NotNil(got.Contact)
	s.Equal("ann@example.com", *got.Contact)
}

func (s *Suite) TestFindByDeviceNotFound() {
	_, err := s.Store.FindByDevice(s.Ctx, "nobody", model.ModeSolo)
	s.ErrorIs(err, model.ErrRecordNotFound)
}

func (s *Suite) TestFindByDeviceIsPerMode() {
	s.Require().NoError(s.Store.Upsert(s.Ctx, record("D1", "Ann", 10, model.ModeSolo)))

	_, err := s.Store.FindByDevice(s.Ctx, "D1", model.ModeVersus)
	s.ErrorIs(err, model.ErrRecordNotFound)
}

func (s *Suite) TestUpsertReplacesSameDeviceAndMode() {
	s.Require().NoError(s.Store.Upsert(s.Ctx, record("D1", "Ann", 10, model.ModeSolo)))

	updated := record("D1", "Ann", 50, model.ModeSolo)
	updated.PlayCount = 2
	s.Require().NoError(s.Store.Upsert(s.Ctx, updated))

	all, err := s.Store.List(s.Ctx, model.ListOptions{})
	s.Require().NoError(err)
	s.Len(all, 1)
	s.Equal(50, all[0].Score)
	s.Equal(2, all[0].PlayCount)
}

func (s *Suite) TestFindByName() {
	s.Require().NoError(s.Store.Upsert(s.Ctx, record("D1", "Ann", 10, model.ModeSolo)))

	got, err := s.Store.FindByName(s.Ctx, "Ann")
	s.Require().NoError(err)
	s.Equal("D1", got.DeviceID)

	_, err = s.Store.FindByName(s.Ctx, "Bob")
	s.ErrorIs(err, model.ErrRecordNotFound)
}

func (s *Suite) TestFindByContact() {
	rec := record("D1", "Ann", 10, model.ModeSolo)
	rec.Contact = contact("@ann")
	s.Require().NoError(s.Store.Upsert(s.Ctx, rec))

	got, err := s.Store.FindByContact(s.Ctx, "@ann")
	s.Require().NoError(err)
	s.Equal("D1", got.DeviceID)

	_, err = s.Store.FindByContact(s.Ctx, "@bob")
	s.ErrorIs(err, model.ErrRecordNotFound)
}

func (s *Suite) TestUpsertRejectsNameOwnedByOtherDevice() {
	s.Require().NoError(s.Store.Upsert(s.Ctx, record("D1", "Ann", 10, model.ModeSolo)))

	err := s.Store.Upsert(s.Ctx, record("D2", "Ann", 99, model.ModeSolo))
	s.ErrorIs(err, model.ErrNameTaken)

	_, err = s.Store.FindByDevice(s.Ctx, "D2", model.ModeSolo)
	s.ErrorIs(err, model.ErrRecordNotFound)
}

func (s *Suite) TestUpsertRejectsContactOwnedByOtherDevice() {
	rec := record("D1", "Ann", 10, model.ModeSolo)
	rec.Contact = contact("@ann")
	s.Require().NoError(s.Store.Upsert(s.Ctx, rec))

	other := record("D2", "Bob", 10, model.ModeSolo)
	other.Contact = contact("@ann")
	err := s.Store.Upsert(s.Ctx, other)
	s.ErrorIs(err, model.ErrContactTaken)

	_, err = s.Store.FindByName(s.Ctx, "Bob")
	s.ErrorIs(err, model.ErrRecordNotFound)
}

func (s *Suite) TestSameDeviceMayReuseNameAcrossModes() {
	s.Require().NoError(s.Store.Upsert(s.Ctx, record("D1", "Ann", 10, model.ModeSolo)))
	s.Require().NoError(s.Store.Upsert(s.Ctx, record("D1", "Ann", 20, model.ModeVersus)))

	solo, err := s.Store.FindByDevice(s.Ctx, "D1", model.ModeSolo)
	s.Require().NoError(err)
	versus, err := s.Store.FindByDevice(s.Ctx, "D1", model.ModeVersus)
	s.Require().NoError(err)
	s.Equal(10, solo.Score)
	s.Equal(20, versus.Score)
}

func (s *Suite) TestRenameReleasesOldName() {
	s.Require().NoError(s.Store.Upsert(s.Ctx, record("D1", "Ann", 10, model.ModeSolo)))
	s.Require().NoError(s.Store.Upsert(s.Ctx, record("D1", "Anne", 10, model.ModeSolo)))

	_, err := s.Store.FindByName(s.Ctx, "Ann")
	s.ErrorIs(err, model.ErrRecordNotFound)

	s.NoError(s.Store.Upsert(s.Ctx, record("D2", "Ann", 5, model.ModeSolo)))
}

func (s *Suite) TestRenameKeepsNameHeldByOtherMode() {
	s.Require().NoError(s.Store.Upsert(s.Ctx, record("D1", "Ann", 10, model.ModeSolo)))
	s.Require().NoError(s.Store.Upsert(s.Ctx, record("D1", "Ann", 10, model.ModeVersus)))
	s.Require().NoError(s.Store.Upsert(s.Ctx, record("D1", "Anne", 10, model.ModeSolo)))

	err := s.Store.Upsert(s.Ctx, record("D2", "Ann", 5, model.ModeSolo))
	s.ErrorIs(err, model.ErrNameTaken)
}

func (s *Suite) TestConcurrentUpsertsForSameNameOneWins() {
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			deviceID := string(rune('A' + i))
			errs[i] = s.Store.Upsert(s.Ctx, record(deviceID, "Contested", 10, model.ModeSolo))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		s.ErrorIs(err, model.ErrNameTaken)
	}
	s.Equal(1, wins)
}

// Listing tests

func (s *Suite) TestListOrdersByScoreThenCreation() {
	early := record("D1", "Early", 100, model.ModeSolo)
	late := record("D2", "Late", 100, model.ModeSolo)
	late.CreatedAt = base.Add(time.Minute)
	best := record("D3", "Best", 300, model.ModeSolo)
	zero := record("D4", "Zero", 0, model.ModeSolo)

	for _, r := range []*model.PlayerRecord{late, zero, early, best} {
		s.Require().NoError(s.Store.Upsert(s.Ctx, r))
	}

	list, err := s.Store.List(s.Ctx, model.ListOptions{})
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("Best", list[0].PlayerName)
	s.Equal("Early", list[1].PlayerName)
	s.Equal("Late", list[2].PlayerName)
}

func (s *Suite) TestListFiltersModeSinceAndLimit() {
	old := record("D1", "Old", 50, model.ModeSolo)
	old.UpdatedAt = base.Add(-30 * 24 * time.Hour)
	recent := record("D2", "Recent", 40, model.ModeSolo)
	versus := record("D3", "Versus", 70, model.ModeVersus)
	another := record("D4", "Another", 30, model.ModeSolo)

	for _, r := range []*model.PlayerRecord{old, recent, versus, another} {
		s.Require().NoError(s.Store.Upsert(s.Ctx, r))
	}

	list, err := s.Store.List(s.Ctx, model.ListOptions{Mode: model.ModeSolo})
	s.Require().NoError(err)
	s.Len(list, 3)

	list, err = s.Store.List(s.Ctx, model.ListOptions{Since: base.Add(-7 * 24 * time.Hour)})
	s.Require().NoError(err)
	s.Len(list, 3)
	for _, r := range list {
		s.NotEqual("Old", r.PlayerName)
	}

	list, err = s.Store.List(s.Ctx, model.ListOptions{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("Versus", list[0].PlayerName)
	s.Equal("Old", list[1].PlayerName)
}

func (s *Suite) TestListIncludeUnplayed() {
	played := record("D1", "Played", 10, model.ModeSolo)
	unplayed := record("D2", "Unplayed", 0, model.ModeSolo)
	for _, r := range []*model.PlayerRecord{unplayed, played} {
		s.Require().NoError(s.Store.Upsert(s.Ctx, r))
	}

	list, err := s.Store.List(s.Ctx, model.ListOptions{IncludeUnplayed: true})
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("Played", list[0].PlayerName)
	s.Equal("Unplayed", list[1].PlayerName)
}

// Tap tests

func (s *Suite) TestRecordTapsIsWatermark() {
	got, err := s.Store.RecordTaps(s.Ctx, model.TapCount{Brand: "Tuberway", DeviceID: "D1", Taps: 5})
	s.Require().NoError(err)
	s.Equal(5, got)

	got, err = s.Store.RecordTaps(s.Ctx, model.TapCount{Brand: "Tuberway", DeviceID: "D1", Taps: 3})
	s.Require().NoError(err)
	s.Equal(5, got)

	got, err = s.Store.RecordTaps(s.Ctx, model.TapCount{Brand: "Tuberway", DeviceID: "D1", Taps: 5})
	s.Require().NoError(err)
	s.Equal(5, got)

	got, err = s.Store.RecordTaps(s.Ctx, model.TapCount{Brand: "Tuberway", DeviceID: "D1", Taps: 8})
	s.Require().NoError(err)
	s.Equal(8, got)
}

func (s *Suite) TestTapTotalsSumDevicesPerBrand() {
	for _, tc := range []model.TapCount{
		{Brand: "Tuberway", DeviceID: "D1", Taps: 4},
		{Brand: "Tuberway", DeviceID: "D2", Taps: 6},
		{Brand: "1Percent", DeviceID: "D1", Taps: 2},
	} {
		_, err := s.Store.RecordTaps(s.Ctx, tc)
		s.Require().NoError(err)
	}

	totals, err := s.Store.TapTotals(s.Ctx)
	s.Require().NoError(err)
	s.Equal(map[string]int{"Tuberway": 10, "1Percent": 2}, totals)
}
