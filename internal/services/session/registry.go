package session

import (
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/mcoot/reflextile/internal/dependencies/clock"
	"github.com/mcoot/reflextile/internal/dependencies/random"
	"github.com/mcoot/reflextile/internal/model"
)

const (
	// TokenBytes is the entropy of a session token; ids are twice as many hex chars
	TokenBytes = 16
	// MaxDeviceIDLength is where device ids are truncated
	MaxDeviceIDLength = 64
)

// Config holds the token lifetimes
type Config struct {
	// TTL is how long an unused token stays valid after issue
	TTL time.Duration
	// Grace is how long after consumption a retry replays instead of failing
	Grace time.Duration
}

// DefaultConfig returns the default token lifetimes
func DefaultConfig() Config {
	return Config{
		TTL:   30 * time.Minute,
		Grace: 2 * time.Minute,
	}
}

// entry is one issued token. id, deviceID and issuedAt never change after
// issue; usedAt is guarded by mu.
type entry struct {
	mu       sync.Mutex
	id       string
	deviceID string
	issuedAt time.Time
	usedAt   *time.Time
	removed  atomic.Bool
}

// Registry issues and consumes single-use session tokens.
//
// The token map is guarded by mu, held only for lookups, inserts and
// deletes. Each token carries its own mutex so the check-then-consume
// sequence of one token never blocks another. Lock order is token, then map.
type Registry struct {
	clock  clock.Clock
	random random.Random
	logger *slog.Logger
	cfg    Config

	mu     sync.Mutex
	tokens map[string]*entry
}

// New creates a Registry
func New(clock clock.Clock, random random.Random, cfg Config, logger *slog.Logger) *Registry {
	def := DefaultConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.Grace <= 0 {
		cfg.Grace = def.Grace
	}
	return &Registry{
		clock:  clock,
		random: random,
		logger: logger,
		cfg:    cfg,
		tokens: make(map[string]*entry),
	}
}

// Config returns the lifetimes in effect
func (r *Registry) Config() Config {
	return r.cfg
}

// Issue mints a token bound to deviceID
func (r *Registry) Issue(deviceID string) (string, error) {
	deviceID = NormalizeDeviceID(deviceID)
	if deviceID == "" {
		return "", model.ErrInvalidInput
	}

	e := &entry{
		deviceID: deviceID,
		issuedAt: r.clock.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		e.id = r.random.Hex(TokenBytes)
		if _, exists := r.tokens[e.id]; !exists {
			break
		}
	}
	r.tokens[e.id] = e
	return e.id, nil
}

// Claim is an exclusive hold on one token, returned by Acquire.
// The holder must call Release exactly once.
type Claim struct {
	registry *Registry
	entry    *entry
	replay   bool
	marked   bool
}

// Acquire locks the token and runs the session checks in order: unknown,
// bound to another device, expired (the token is deleted), already used.
// A used token inside its grace window yields a replay claim; the caller
// must not mutate anything for it. On error nothing is held.
func (r *Registry) Acquire(tokenID, deviceID string) (*Claim, error) {
	r.mu.Lock()
	e, ok := r.tokens[tokenID]
	r.mu.Unlock()
	if !ok {
		return nil, model.ErrSessionInvalid
	}

	e.mu.Lock()
	if e.removed.Load() {
		e.mu.Unlock()
		return nil, model.ErrSessionInvalid
	}
	if e.deviceID != NormalizeDeviceID(deviceID) {
		e.mu.Unlock()
		return nil, model.ErrSessionDeviceMismatch
	}

	now := r.clock.Now()
	if now.Sub(e.issuedAt) > r.cfg.TTL {
		r.remove(e)
		e.mu.Unlock()
		return nil, model.ErrSessionExpired
	}

	if e.usedAt != nil {
		if now.Sub(*e.usedAt) < r.cfg.Grace {
			return &Claim{registry: r, entry: e, replay: true}, nil
		}
		e.mu.Unlock()
		return nil, model.ErrSessionUsed
	}

	return &Claim{registry: r, entry: e}, nil
}

// Replay reports whether the token was already consumed within the grace window
func (c *Claim) Replay() bool {
	return c.replay
}

// MarkUsed consumes the token. It is the only place usedAt is set.
func (c *Claim) MarkUsed() {
	if c.replay || c.marked {
		return
	}
	now := c.registry.clock.Now()
	c.entry.usedAt = &now
	c.marked = true
}

// Unmark reverts MarkUsed so the client can retry with the same token
func (c *Claim) Unmark() {
	if !c.marked {
		return
	}
	c.entry.usedAt = nil
	c.marked = false
}

// Release gives up the hold on the token
func (c *Claim) Release() {
	c.entry.mu.Unlock()
}

// Sweep deletes every token issued longer ago than TTL+Grace and returns how
// many were removed. Only the map lock is taken.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-(r.cfg.TTL + r.cfg.Grace))

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.tokens {
		if e.issuedAt.Before(cutoff) {
			e.removed.Store(true)
			delete(r.tokens, id)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Info("swept session tokens",
			slog.Int("removed", removed),
			slog.Int("remaining", len(r.tokens)),
		)
	}
	return removed
}

// Len returns the number of live tokens
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

// Lookup returns a snapshot of a token, for inspection
func (r *Registry) Lookup(tokenID string) (model.SessionToken, bool) {
	r.mu.Lock()
	e, ok := r.tokens[tokenID]
	r.mu.Unlock()
	if !ok {
		return model.SessionToken{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	tok := model.SessionToken{ID: e.id, DeviceID: e.deviceID, IssuedAt: e.issuedAt}
	if e.usedAt != nil {
		used := *e.usedAt
		tok.UsedAt = &used
	}
	return tok, true
}

// remove deletes an entry; called with e.mu held
func (r *Registry) remove(e *entry) {
	e.removed.Store(true)
	r.mu.Lock()
	delete(r.tokens, e.id)
	r.mu.Unlock()
}

// NormalizeDeviceID trims a device id and truncates it to MaxDeviceIDLength
func NormalizeDeviceID(deviceID string) string {
	deviceID = strings.TrimSpace(deviceID)
	if utf8.RuneCountInString(deviceID) > MaxDeviceIDLength {
		deviceID = string([]rune(deviceID)[:MaxDeviceIDLength])
	}
	return deviceID
}

// WellFormed reports whether tokenID looks like an issued token
func WellFormed(tokenID string) bool {
	if len(tokenID) != 2*TokenBytes {
		return false
	}
	for _, c := range tokenID {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
