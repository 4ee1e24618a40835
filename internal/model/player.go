package model

import "time"

// Mode is the game mode a score was achieved in
type Mode string

const (
	ModeSolo   Mode = "solo"
	ModeVersus Mode = "versus"
)

// ParseMode returns ModeVersus only for an exact "versus"; anything else is solo
func ParseMode(s string) Mode {
	if s == string(ModeVersus) {
		return ModeVersus
	}
	return ModeSolo
}

// Modes lists every known mode
func Modes() []Mode {
	return []Mode{ModeSolo, ModeVersus}
}

// PlayerRecord is the persisted best score of one device in one mode
type PlayerRecord struct {
	DeviceID   string
	PlayerName string // unique across all records
	Score      int    // never decreases
	Mode       Mode
	Contact    *string // unique across all records when set
	PlayCount  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone returns a deep copy so callers never share a stored record
func (r *PlayerRecord) Clone() *PlayerRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.Contact != nil {
		contact := *r.Contact
		c.Contact = &contact
	}
	return &c
}

// HasContact reports whether the record carries a contact
func (r *PlayerRecord) HasContact() bool {
	return r.Contact != nil && *r.Contact != ""
}

// ListOptions filters a listing of records
type ListOptions struct {
	Mode  Mode      // empty means all modes
	Since time.Time // zero means no lower bound on UpdatedAt
	Limit int

	// IncludeUnplayed also lists records with a zero score, such as players
	// who registered but never submitted
	IncludeUnplayed bool
}
