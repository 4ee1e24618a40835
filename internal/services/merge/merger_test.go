package merge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/reflextile/internal/dependencies/mocks"
	"github.com/mcoot/reflextile/internal/model"
	"github.com/mcoot/reflextile/internal/services/validation"
	"github.com/mcoot/reflextile/internal/storage/memory"
	"github.com/mcoot/reflextile/internal/testutil"
)

type MergerSuite struct {
	suite.Suite
	store  *mocks.FailingStore
	clock  *mocks.MockClock
	merger *Merger
	ctx    context.Context
}

func TestMergerSuite(t *testing.T) {
	suite.Run(t, new(MergerSuite))
}

func (s *MergerSuite) SetupTest() {
	s.store = mocks.NewFailingStore(memory.New())
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.merger = New(s.store, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func strPtr(v string) *string {
	return &v
}

func score(deviceID, name string, points int, mode model.Mode) validation.Score {
	return validation.Score{DeviceID: deviceID, PlayerName: name, Score: points, Mode: mode}
}

// Merge tests

func (s *MergerSuite) TestMergeCreatesRecord() {
	rec, created, err := s.merger.Merge(s.ctx, score("D1", "Ann", 120, model.ModeSolo))
	s.Require().NoError(err)

	s.True(created)
	s.Equal(120, rec.Score)
	s.Equal(1, rec.PlayCount)
	s.Equal(s.clock.Now(), rec.CreatedAt)

	stored, err := s.store.FindByDevice(s.ctx, "D1", model.ModeSolo)
	s.Require().NoError(err)
	s.Equal(rec, stored)
}

func (s *MergerSuite) TestMergeKeepsHigherScore() {
	_, _, err := s.merger.Merge(s.ctx, score("D1", "Ann", 120, model.ModeSolo))
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	rec, created, err := s.merger.Merge(s.ctx, score("D1", "Ann", 90, model.ModeSolo))
	s.Require().NoError(err)

	s.False(created)
	s.Equal(120, rec.Score)
	s.Equal(2, rec.PlayCount)
	s.Equal(s.clock.Now(), rec.UpdatedAt)
	s.True(rec.CreatedAt.Before(rec.UpdatedAt))
}

func (s *MergerSuite) TestMergeRaisesScore() {
	_, _, _ = s.merger.Merge(s.ctx, score("D1", "Ann", 120, model.ModeSolo))

	rec, _, err := s.merger.Merge(s.ctx, score("D1", "Ann", 300, model.ModeSolo))
	s.Require().NoError(err)
	s.Equal(300, rec.Score)
}

func (s *MergerSuite) TestMergeRenames() {
	_, _, _ = s.merger.Merge(s.ctx, score("D1", "Ann", 120, model.ModeSolo))

	rec, _, err := s.merger.Merge(s.ctx, score("D1", "Annie", 10, model.ModeSolo))
	s.Require().NoError(err)
	s.Equal("Annie", rec.PlayerName)

	_, err = s.store.FindByName(s.ctx, "Ann")
	s.ErrorIs(err, model.ErrRecordNotFound)
}

func (s *MergerSuite) TestMergeKeepsContactWhenNoneSupplied() {
	first := score("D1", "Ann", 10, model.ModeSolo)
	first.Contact = strPtr("@ann")
	_, _, _ = s.merger.Merge(s.ctx, first)

	rec, _, err := s.merger.Merge(s.ctx, score("D1", "Ann", 20, model.ModeSolo))
	s.Require().NoError(err)
	s.Require().NotNil(rec.Contact)
	s.Equal("@ann", *rec.Contact)
}

func (s *MergerSuite) TestMergeReplacesSuppliedContact() {
	first := score("D1", "Ann", 10, model.ModeSolo)
	first.Contact = strPtr("@ann")
	_, _, _ = s.merger.Merge(s.ctx, first)

	second := score("D1", "Ann", 20, model.ModeSolo)
	second.Contact = strPtr("@ann2")
	rec, _, err := s.merger.Merge(s.ctx, second)
	s.Require().NoError(err)
	s.Equal("@ann2", *rec.Contact)
}

func (s *MergerSuite) TestModesAreSeparateRecords() {
	_, _, _ = s.merger.Merge(s.ctx, score("D1", "Ann", 120, model.ModeSolo))

	rec, created, err := s.merger.Merge(s.ctx, score("D1", "Ann", 40, model.ModeVersus))
	s.Require().NoError(err)
	s.True(created)
	s.Equal(40, rec.Score)
	s.Equal(1, rec.PlayCount)
}

func (s *MergerSuite) TestNameTakenByOtherDevice() {
	_, _, _ = s.merger.Merge(s.ctx, score("D1", "Ann", 120, model.ModeSolo))

	_, _, err := s.merger.Merge(s.ctx, score("D2", "Ann", 500, model.ModeSolo))
	s.ErrorIs(err, model.ErrNameTaken)

	_, err = s.store.FindByDevice(s.ctx, "D2", model.ModeSolo)
	s.ErrorIs(err, model.ErrRecordNotFound)
}

func (s *MergerSuite) TestContactTakenByOtherDevice() {
	first := score("D1", "Ann", 10, model.ModeSolo)
	first.Contact = strPtr("@ann")
	_, _, _ = s.merger.Merge(s.ctx, first)

	other := score("D2", "Bob", 10, model.ModeSolo)
	other.Contact = strPtr("@ann")
	_, _, err := s.merger.Merge(s.ctx, other)
	s.ErrorIs(err, model.ErrContactTaken)
}

func (s *MergerSuite) TestNameCheckedBeforeContact() {
	first := score("D1", "Ann", 10, model.ModeSolo)
	first.Contact = strPtr("@ann")
	_, _, _ = s.merger.Merge(s.ctx, first)

	other := score("D2", "Ann", 10, model.ModeSolo)
	other.Contact = strPtr("@ann")
	_, _, err := s.merger.Merge(s.ctx, other)
	s.ErrorIs(err, model.ErrNameTaken)
}

func (s *MergerSuite) TestStoreReadFailureIsUnavailable() {
	s.store.FailReads(errors.New("connection refused"))

	_, _, err := s.merger.Merge(s.ctx, score("D1", "Ann", 10, model.ModeSolo))
	s.ErrorIs(err, model.ErrStoreUnavailable)
}

func (s *MergerSuite) TestStoreWriteFailureIsUnavailable() {
	s.store.FailUpserts(errors.New("connection refused"))

	_, _, err := s.merger.Merge(s.ctx, score("D1", "Ann", 10, model.ModeSolo))
	s.ErrorIs(err, model.ErrStoreUnavailable)
}

func (s *MergerSuite) TestStoreConflictPassesThrough() {
	s.store.FailUpserts(model.ErrNameTaken)

	_, _, err := s.merger.Merge(s.ctx, score("D1", "Ann", 10, model.ModeSolo))
	s.ErrorIs(err, model.ErrNameTaken)
	s.NotErrorIs(err, model.ErrStoreUnavailable)
}

func (s *MergerSuite) TestConcurrentSameNameOneWins() {
	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = s.merger.Merge(s.ctx, score(fmt.Sprintf("D%d", i), "Contested", 10, model.ModeSolo))
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

func (s *MergerSuite) TestConcurrentSameDeviceCountsEveryPlay() {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := s.merger.Merge(s.ctx, score("D1", "Ann", i, model.ModeSolo))
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	rec, err := s.store.FindByDevice(s.ctx, "D1", model.ModeSolo)
	s.Require().NoError(err)
	s.Equal(20, rec.PlayCount)
	s.Equal(19, rec.Score)
}

// Register tests

func (s *MergerSuite) TestRegisterCreatesPlaceholder() {
	rec, created, err := s.merger.Register(s.ctx, validation.Identity{DeviceID: "D1", PlayerName: "Ann"})
	s.Require().NoError(err)

	s.True(created)
	s.Equal(model.ModeSolo, rec.Mode)
	s.Equal(0, rec.Score)
	s.Equal(0, rec.PlayCount)
}

func (s *MergerSuite) TestRegisterThenPlay() {
	_, _, err := s.merger.Register(s.ctx, validation.Identity{DeviceID: "D1", PlayerName: "Ann"})
	s.Require().NoError(err)

	rec, created, err := s.merger.Merge(s.ctx, score("D1", "Ann", 50, model.ModeSolo))
	s.Require().NoError(err)
	s.False(created)
	s.Equal(50, rec.Score)
	s.Equal(1, rec.PlayCount)
}

func (s *MergerSuite) TestRegisterRenamesEveryMode() {
	_, _, _ = s.merger.Merge(s.ctx, score("D1", "Ann", 10, model.ModeSolo))
	_, _, _ = s.merger.Merge(s.ctx, score("D1", "Ann", 20, model.ModeVersus))

	rec, created, err := s.merger.Register(s.ctx, validation.Identity{
		DeviceID:   "D1",
		PlayerName: "Annie",
		Contact:    strPtr("@annie"),
	})
	s.Require().NoError(err)
	s.False(created)
	s.Equal("Annie", rec.PlayerName)

	for _, mode := range model.Modes() {
		stored, err := s.store.FindByDevice(s.ctx, "D1", mode)
		s.Require().NoError(err)
		s.Equal("Annie", stored.PlayerName)
		s.Equal("@annie", *stored.Contact)
		s.Equal(1, stored.PlayCount)
	}

	_, err = s.store.FindByName(s.ctx, "Ann")
	s.ErrorIs(err, model.ErrRecordNotFound)
}

func (s *MergerSuite) TestRegisterNameTaken() {
	_, _, _ = s.merger.Merge(s.ctx, score("D1", "Ann", 10, model.ModeSolo))

	_, _, err := s.merger.Register(s.ctx, validation.Identity{DeviceID: "D2", PlayerName: "Ann"})
	s.ErrorIs(err, model.ErrNameTaken)
}

// Current tests

func (s *MergerSuite) TestCurrent() {
	rec, err := s.merger.Current(s.ctx, "D1", model.ModeSolo)
	s.Require().NoError(err)
	s.Nil(rec)

	_, _, _ = s.merger.Merge(s.ctx, score("D1", "Ann", 10, model.ModeSolo))
	rec, err = s.merger.Current(s.ctx, "D1", model.ModeSolo)
	s.Require().NoError(err)
	s.Equal(10, rec.Score)
}
