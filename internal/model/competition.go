package model

import "time"

// CompetitionState says whether the competition is accepting play
type CompetitionState struct {
	Open      bool       `json:"open"`
	StartedAt *time.Time `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt"`
}

// Clone returns a copy that shares no pointers with s
func (s CompetitionState) Clone() CompetitionState {
	c := s
	if s.StartedAt != nil {
		t := *s.StartedAt
		c.StartedAt = &t
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		c.EndedAt = &t
	}
	return c
}
