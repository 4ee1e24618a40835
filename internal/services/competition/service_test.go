package competition

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/reflextile/internal/dependencies/mocks"
	"github.com/mcoot/reflextile/internal/model"
	"github.com/mcoot/reflextile/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	path  string
	clock *mocks.MockClock
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "competition.json")
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
}

func (s *ServiceSuite) newService() *Service {
	return New(s.path, s.clock, testutil.NopLogger())
}

func (s *ServiceSuite) TestMissingFileDefaultsToOpen() {
	state := s.newService().State()
	s.True(state.Open)
	s.Nil(state.StartedAt)
	s.Nil(state.EndedAt)
}

func (s *ServiceSuite) TestCorruptFileDefaultsToOpen() {
	s.Require().NoError(os.WriteFile(s.path, []byte("{not json"), 0o644))

	s.True(s.newService().State().Open)
}

func (s *ServiceSuite) TestCloseRecordsEnd() {
	svc := s.newService()

	state, err := svc.Close()
	s.Require().NoError(err)
	s.False(state.Open)
	s.Require().NotNil(state.EndedAt)
	s.Equal(s.clock.Now(), *state.EndedAt)
}

func (s *ServiceSuite) TestOpenStartsNewPeriod() {
	svc := s.newService()
	_, _ = svc.Close()

	s.clock.Advance(time.Hour)
	state, err := svc.Open()
	s.Require().NoError(err)
	s.True(state.Open)
	s.Equal(s.clock.Now(), *state.StartedAt)
	s.Nil(state.EndedAt)
}

func (s *ServiceSuite) TestCloseKeepsStart() {
	svc := s.newService()
	opened, _ := svc.Open()

	s.clock.Advance(time.Hour)
	closed, err := svc.Close()
	s.Require().NoError(err)
	s.Equal(*opened.StartedAt, *closed.StartedAt)
	s.Equal(s.clock.Now(), *closed.EndedAt)
}

func (s *ServiceSuite) TestStateSurvivesRestart() {
	_, err := s.newService().Close()
	s.Require().NoError(err)

	reloaded := s.newService().State()
	s.False(reloaded.Open)
	s.Require().NotNil(reloaded.EndedAt)
	s.True(s.clock.Now().Equal(*reloaded.EndedAt))
}

func (s *ServiceSuite) TestFileIsIndentedJSON() {
	_, err := s.newService().Close()
	s.Require().NoError(err)

	data, err := os.ReadFile(s.path)
	s.Require().NoError(err)
	s.Contains(string(data), "\n  \"open\": false")

	var state model.CompetitionState
	s.Require().NoError(json.Unmarshal(data, &state))
	s.False(state.Open)
}

func (s *ServiceSuite) TestStateIsACopy() {
	svc := s.newService()
	_, _ = svc.Open()

	state := svc.State()
	*state.StartedAt = time.Time{}

	s.False(svc.State().StartedAt.IsZero())
}

func (s *ServiceSuite) TestSaveFailureIsReported() {
	svc := New(filepath.Join(s.T().TempDir(), "missing", "competition.json"), s.clock, testutil.NopLogger())

	state, err := svc.Close()
	s.Error(err)
	s.False(state.Open)
}
