package validation

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/reflextile/internal/model"
	"github.com/mcoot/reflextile/internal/services/session"
)

const (
	// MaxPlayerNameLength is where player names are truncated
	MaxPlayerNameLength = 32
	// MaxContactLength is where contacts are truncated
	MaxContactLength = 128
	// DefaultCeiling is the highest score a real game can reach
	DefaultCeiling = 9999
)

// Claim is a score submission as received from a client. Score is NaN when
// the client sent none.
type Claim struct {
	DeviceID   string
	PlayerName string
	Score      float64
	Mode       string
	Contact    *string
	SessionID  string
}

// Score is a claim that passed validation, with every field normalized
type Score struct {
	DeviceID   string
	PlayerName string
	Score      int
	Mode       model.Mode
	Contact    *string
}

// Identity is the normalized name and contact a player goes by
type Identity struct {
	DeviceID   string
	PlayerName string
	Contact    *string
}

// Validator checks and normalizes submitted scores
type Validator struct {
	ceiling int
	logger  *slog.Logger
}

// New creates a Validator. A non-positive ceiling selects DefaultCeiling.
func New(ceiling int, logger *slog.Logger) *Validator {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	return &Validator{ceiling: ceiling, logger: logger}
}

// Ceiling returns the highest accepted score
func (v *Validator) Ceiling() int {
	return v.ceiling
}

// Validate checks a claim. Structural problems fail with ErrInvalidInput;
// a score above the ceiling fails with ErrScoreInvalid and is logged as a
// security signal.
func (v *Validator) Validate(c Claim) (Score, error) {
	id, err := NormalizeIdentity(c.DeviceID, c.PlayerName, c.Contact)
	if err != nil {
		return Score{}, err
	}

	if math.IsNaN(c.Score) || math.IsInf(c.Score, 0) {
		return Score{}, fmt.Errorf("%w: score must be a number", model.ErrInvalidInput)
	}
	if c.Score < 0 {
		return Score{}, fmt.Errorf("%w: score must not be negative", model.ErrInvalidInput)
	}
	if c.Score > float64(v.ceiling) {
		v.logger.Warn("rejected impossible score",
			slog.Bool("security", true),
			slog.String("device_id", prefix(id.DeviceID)),
			slog.Float64("score", c.Score),
		)
		return Score{}, fmt.Errorf("%w: %v exceeds %d", model.ErrScoreInvalid, c.Score, v.ceiling)
	}

	return Score{
		DeviceID:   id.DeviceID,
		PlayerName: id.PlayerName,
		Score:      int(math.Floor(c.Score + 0.5)),
		Mode:       model.ParseMode(c.Mode),
		Contact:    id.Contact,
	}, nil
}

// NormalizeIdentity trims and truncates a device id, player name and
// contact. Name and device are required; a blank contact counts as absent.
func NormalizeIdentity(deviceID, playerName string, contact *string) (Identity, error) {
	name := truncate(strings.TrimSpace(playerName), MaxPlayerNameLength)
	if name == "" {
		return Identity{}, fmt.Errorf("%w: player name is required", model.ErrInvalidInput)
	}

	device := session.NormalizeDeviceID(deviceID)
	if device == "" {
		return Identity{}, fmt.Errorf("%w: device id is required", model.ErrInvalidInput)
	}

	return Identity{
		DeviceID:   device,
		PlayerName: name,
		Contact:    NormalizeContact(contact),
	}, nil
}

// NormalizeContact trims and truncates a contact, returning nil when blank
func NormalizeContact(contact *string) *string {
	if contact == nil {
		return nil
	}
	c := truncate(strings.TrimSpace(*contact), MaxContactLength)
	if c == "" {
		return nil
	}
	return &c
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// prefix shortens a device id for logs
func prefix(deviceID string) string {
	return truncate(deviceID, 8)
}
