package random

import (
	"crypto/rand"
	"encoding/hex"
)

// Random provides random generation that can be mocked for testing
type Random interface {
	// Hex returns n random bytes, hex encoded (2n characters)
	Hex(n int) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Hex returns n bytes from crypto/rand as lowercase hex
func (r *CryptoRandom) Hex(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	// crypto/rand.Read never returns an error on supported platforms
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
