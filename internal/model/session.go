package model

import "time"

// SessionToken is a one-time credential proving a play session started
type SessionToken struct {
	ID       string
	DeviceID string
	IssuedAt time.Time
	UsedAt   *time.Time
}

// Used reports whether the token has been consumed
func (t SessionToken) Used() bool {
	return t.UsedAt != nil
}
