package model

import "errors"

// Submission rejections. Each maps to a distinct client-visible status.
var (
	// Input errors
	ErrInvalidInput = errors.New("invalid input")
	ErrScoreInvalid = errors.New("score invalid")

	// Session errors
	ErrSessionRequired       = errors.New("session required")
	ErrSessionInvalid        = errors.New("session invalid")
	ErrSessionDeviceMismatch = errors.New("session bound to a different device")
	ErrSessionExpired        = errors.New("session expired")
	ErrSessionUsed           = errors.New("session already used")

	// Throttling
	ErrRateLimited = errors.New("rate limited")

	// Uniqueness conflicts
	ErrNameTaken    = errors.New("player name taken")
	ErrContactTaken = errors.New("contact taken")
)

// Storage errors
var (
	ErrRecordNotFound = errors.New("record not found")

	// ErrStoreUnavailable wraps any failure of the record store itself.
	// It is not a rejection: the client may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)
