package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/reflextile/internal/dependencies/mocks"
	"github.com/mcoot/reflextile/internal/model"
	"github.com/mcoot/reflextile/internal/storage/memory"
)

var joined = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	store   *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.service = New(s.store)
	s.ctx = context.Background()
}

func (s *ServiceSuite) put(deviceID, name string, score, plays int, contact string) {
	rec := &model.PlayerRecord{
		DeviceID:   deviceID,
		PlayerName: name,
		Score:      score,
		Mode:       model.ModeSolo,
		PlayCount:  plays,
		CreatedAt:  joined,
		UpdatedAt:  joined,
	}
	if contact != "" {
		rec.Contact = &contact
	}
	s.Require().NoError(s.store.Upsert(s.ctx, rec))
}

func (s *ServiceSuite) TestStatsOverEmptyStore() {
	st, err := s.service.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, st.TotalPlayers)
	s.Equal(0, st.AvgScore)
	s.Equal(0.0, st.AvgPlays)
}

func (s *ServiceSuite) TestStats() {
	s.put("D1", "Ann", 100, 3, "ann@example.com")
	s.put("D2", "Bob", 251, 2, "")
	s.put("D3", "Cat", 0, 0, "cat@example.com")

	_, err := s.store.RecordTaps(s.ctx, model.TapCount{Brand: "acme", DeviceID: "D1", Taps: 4})
	s.Require().NoError(err)
	_, err = s.store.RecordTaps(s.ctx, model.TapCount{Brand: "zeta", DeviceID: "D2", Taps: 1})
	s.Require().NoError(err)

	st, err := s.service.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, st.TotalPlayers)
	s.Equal(2, st.WithContact)
	s.Equal(176, st.AvgScore)
	s.Equal(251, st.TopScore)
	s.Equal(5, st.TotalPlays)
	s.Equal(1.7, st.AvgPlays)
	s.Equal(5, st.TotalTaps)
	s.Equal(map[string]int{"acme": 4, "zeta": 1}, st.TapTotals)
}

func (s *ServiceSuite) TestExportListsEveryRecordBestFirst() {
	s.put("D1", "Ann", 100, 3, "ann@example.com")
	s.put("D2", "Bob, Jr.", 250, 2, "")
	s.put("D3", "Cat", 0, 0, "")

	var buf bytes.Buffer
	s.Require().NoError(s.service.Export(s.ctx, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(rows, 4)
	s.Equal(ExportHeader, rows[0])
	s.Equal([]string{"1", "Bob, Jr.", "250", "2", "", "solo", "D2", "2024-01-01T12:00:00Z"}, rows[1])
	s.Equal("Ann", rows[2][1])
	s.Equal("ann@example.com", rows[2][4])
	s.Equal("Cat", rows[3][1])
}

func (s *ServiceSuite) TestExportFailureWritesNothing() {
	failing := mocks.NewFailingStore(s.store)
	failing.FailReads(errors.New("connection refused"))

	var buf bytes.Buffer
	err := New(failing).Export(s.ctx, &buf)
	s.ErrorIs(err, model.ErrStoreUnavailable)
	s.Zero(buf.Len())
}
