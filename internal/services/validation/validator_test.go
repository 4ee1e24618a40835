package validation

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/reflextile/internal/model"
	"github.com/mcoot/reflextile/internal/testutil"
)

type ValidatorSuite struct {
	suite.Suite
	validator *Validator
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSuite))
}

func (s *ValidatorSuite) SetupTest() {
	s.validator = New(0, testutil.NopLogger())
}

func strPtr(v string) *string {
	return &v
}

func validClaim() Claim {
	return Claim{
		DeviceID:   "D1",
		PlayerName: "Ann",
		Score:      120,
		Mode:       "solo",
		SessionID:  "0123456789abcdef0123456789abcdef",
	}
}

func (s *ValidatorSuite) TestValidClaim() {
	score, err := s.validator.Validate(validClaim())
	s.Require().NoError(err)

	s.Equal("D1", score.DeviceID)
	s.Equal("Ann", score.PlayerName)
	s.Equal(120, score.Score)
	s.Equal(model.ModeSolo, score.Mode)
	s.Nil(score.Contact)
}

// Name and device tests

func (s *ValidatorSuite) TestMissingNameIsInvalid() {
	c := validClaim()
	c.PlayerName = ""
	_, err := s.validator.Validate(c)
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *ValidatorSuite) TestBlankNameIsInvalid() {
	c := validClaim()
	c.PlayerName = "   "
	_, err := s.validator.Validate(c)
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *ValidatorSuite) TestNameIsTrimmedAndTruncated() {
	c := validClaim()
	c.PlayerName = "  " + strings.Repeat("é", 40) + "  "

	score, err := s.validator.Validate(c)
	s.Require().NoError(err)
	s.Equal(strings.Repeat("é", MaxPlayerNameLength), score.PlayerName)
}

func (s *ValidatorSuite) TestBlankDeviceIsInvalid() {
	c := validClaim()
	c.DeviceID = " "
	_, err := s.validator.Validate(c)
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *ValidatorSuite) TestDeviceIsTruncated() {
	c := validClaim()
	c.DeviceID = strings.Repeat("d", 80)

	score, err := s.validator.Validate(c)
	s.Require().NoError(err)
	s.Len(score.DeviceID, 64)
}

// Score tests

func (s *ValidatorSuite) TestMissingScoreIsInvalid() {
	c := validClaim()
	c.Score = math.NaN()
	_, err := s.validator.Validate(c)
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *ValidatorSuite) TestInfiniteScoreIsInvalid() {
	c := validClaim()
	c.Score = math.Inf(1)
	_, err := s.validator.Validate(c)
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *ValidatorSuite) TestNegativeScoreIsInvalid() {
	c := validClaim()
	c.Score = -1
	_, err := s.validator.Validate(c)
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *ValidatorSuite) TestZeroScoreIsValid() {
	c := validClaim()
	c.Score = 0
	score, err := s.validator.Validate(c)
	s.Require().NoError(err)
	s.Equal(0, score.Score)
}

func (s *ValidatorSuite) TestCeilingIsInclusive() {
	c := validClaim()
	c.Score = 9999
	score, err := s.validator.Validate(c)
	s.Require().NoError(err)
	s.Equal(9999, score.Score)
}

func (s *ValidatorSuite) TestAboveCeilingIsScoreInvalid() {
	c := validClaim()
	c.Score = 10000
	_, err := s.validator.Validate(c)
	s.ErrorIs(err, model.ErrScoreInvalid)
}

func (s *ValidatorSuite) TestFractionAboveCeilingIsScoreInvalid() {
	c := validClaim()
	c.Score = 9999.2
	_, err := s.validator.Validate(c)
	s.ErrorIs(err, model.ErrScoreInvalid)
}

func (s *ValidatorSuite) TestStructuralErrorsWinOverCeiling() {
	c := validClaim()
	c.PlayerName = ""
	c.Score = 10000
	_, err := s.validator.Validate(c)
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *ValidatorSuite) TestScoreRoundsHalfUp() {
	cases := map[float64]int{
		0.4:   0,
		0.5:   1,
		2.5:   3,
		119.6: 120,
	}
	for in, want := range cases {
		c := validClaim()
		c.Score = in
		score, err := s.validator.Validate(c)
		s.Require().NoError(err)
		s.Equal(want, score.Score, "score %v", in)
	}
}

func (s *ValidatorSuite) TestCustomCeiling() {
	v := New(500, testutil.NopLogger())
	s.Equal(500, v.Ceiling())

	c := validClaim()
	c.Score = 501
	_, err := v.Validate(c)
	s.ErrorIs(err, model.ErrScoreInvalid)
}

// Mode tests

func (s *ValidatorSuite) TestModeDefaultsToSolo() {
	for _, mode := range []string{"", "SOLO", "Versus", "duel"} {
		c := validClaim()
		c.Mode = mode
		score, err := s.validator.Validate(c)
		s.Require().NoError(err)
		s.Equal(model.ModeSolo, score.Mode, "mode %q", mode)
	}
}

func (s *ValidatorSuite) TestVersusMode() {
	c := validClaim()
	c.Mode = "versus"
	score, err := s.validator.Validate(c)
	s.Require().NoError(err)
	s.Equal(model.ModeVersus, score.Mode)
}

// Contact tests

func (s *ValidatorSuite) TestContactIsTrimmedAndTruncated() {
	c := validClaim()
	c.Contact = strPtr("  " + strings.Repeat("c", 200) + " ")

	score, err := s.validator.Validate(c)
	s.Require().NoError(err)
	s.Require().NotNil(score.Contact)
	s.Len(*score.Contact, MaxContactLength)
}

func (s *ValidatorSuite) TestBlankContactIsAbsent() {
	c := validClaim()
	c.Contact = strPtr("   ")

	score, err := s.validator.Validate(c)
	s.Require().NoError(err)
	s.Nil(score.Contact)
}
