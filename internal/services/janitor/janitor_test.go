package janitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/reflextile/internal/dependencies/mocks"
	"github.com/mcoot/reflextile/internal/services/ratelimit"
	"github.com/mcoot/reflextile/internal/services/session"
	"github.com/mcoot/reflextile/internal/testutil"
)

type JanitorSuite struct {
	suite.Suite
	clock    *mocks.MockClock
	registry *session.Registry
	limiter  *ratelimit.Limiter
}

func TestJanitorSuite(t *testing.T) {
	suite.Run(t, new(JanitorSuite))
}

func (s *JanitorSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.registry = session.New(s.clock, mocks.NewMockRandom(), session.DefaultConfig(), logger)
	s.limiter = ratelimit.New(ratelimit.DefaultConfig(), logger)
}

func (s *JanitorSuite) newJanitor(schedule string) *Janitor {
	j, err := New(s.registry, s.limiter, s.clock, schedule, testutil.NopLogger())
	s.Require().NoError(err)
	return j
}

func (s *JanitorSuite) TestRunSweepsTokensAndLimiter() {
	_, err := s.registry.Issue("D1")
	s.Require().NoError(err)
	s.limiter.CheckAndRecord("D1", s.clock.Now())

	s.clock.Advance(time.Hour)
	_, err = s.registry.Issue("D2")
	s.Require().NoError(err)

	s.newJanitor("").Run()

	s.Equal(1, s.registry.Len())
	s.Equal(0, s.limiter.Len())
}

func (s *JanitorSuite) TestRunKeepsLiveState() {
	_, _ = s.registry.Issue("D1")
	s.limiter.CheckAndRecord("D1", s.clock.Now())

	s.newJanitor("").Run()

	s.Equal(1, s.registry.Len())
	s.Equal(1, s.limiter.Len())
}

func (s *JanitorSuite) TestInvalidScheduleFails() {
	_, err := New(s.registry, s.limiter, s.clock, "not a schedule", testutil.NopLogger())
	s.Error(err)
}

func (s *JanitorSuite) TestScheduledRun() {
	_, _ = s.registry.Issue("D1")
	s.clock.Advance(time.Hour)

	j := s.newJanitor("@every 1s")
	j.Start()
	defer func() {
		s.NoError(j.Stop(context.Background()))
	}()

	s.Eventually(func() bool {
		return s.registry.Len() == 0
	}, 5*time.Second, 50*time.Millisecond)
}

func (s *JanitorSuite) TestStopHonoursContext() {
	j := s.newJanitor("")
	j.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.NoError(j.Stop(ctx))
}
