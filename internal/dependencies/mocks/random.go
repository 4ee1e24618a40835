package mocks

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mcoot/reflextile/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	mu sync.Mutex

	// HexResults is a queue of results to return from Hex
	HexResults []string
	hexIndex   int

	// counter backs Hex once the queue is drained
	counter int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Hex returns the next queued result. Once the queue is drained it returns a
// zero-padded counter of the requested width so generated ids stay distinct.
func (r *MockRandom) Hex(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hexIndex < len(r.HexResults) {
		result := r.HexResults[r.hexIndex]
		r.hexIndex++
		return result
	}
	r.counter++
	s := fmt.Sprintf("%x", r.counter)
	if pad := 2*n - len(s); pad > 0 {
		s = strings.Repeat("0", pad) + s
	}
	return s
}

// QueueHex adds values to the Hex result queue
func (r *MockRandom) QueueHex(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.HexResults = append(r.HexResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.HexResults = nil
	r.hexIndex = 0
	r.counter = 0
}
