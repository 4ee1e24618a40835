package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/reflextile/internal/model"
	"github.com/mcoot/reflextile/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	records  map[recordKey]*model.PlayerRecord
	names    map[string]string // player name -> owning device
	contacts map[string]string // contact -> owning device
	taps     map[tapKey]int
}

type recordKey struct {
	deviceID string
	mode     model.Mode
}

type tapKey struct {
	brand    string
	deviceID string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		records:  make(map[recordKey]*model.PlayerRecord),
		names:    make(map[string]string),
		contacts: make(map[string]string),
		taps:     make(map[tapKey]int),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for memory storage
func (s *Storage) Close() error {
	return nil
}

// Record operations

func (s *Storage) FindByDevice(ctx context.Context, deviceID string, mode model.Mode) (*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[recordKey{deviceID, mode}]
	if !ok {
		return nil, model.ErrRecordNotFound
	}
	return rec.Clone(), nil
}

func (s *Storage) FindByName(ctx context.Context, name string) (*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deviceID, ok := s.names[name]
	if !ok {
		return nil, model.ErrRecordNotFound
	}
	for _, mode := range model.Modes() {
		rec, ok := s.records[recordKey{deviceID, mode}]
		if ok && rec.PlayerName == name {
			return rec.Clone(), nil
		}
	}
	return nil, model.ErrRecordNotFound
}

func (s *Storage) FindByContact(ctx context.Context, contact string) (*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deviceID, ok := s.contacts[contact]
	if !ok {
		return nil, model.ErrRecordNotFound
	}
	for _, mode := range model.Modes() {
		rec, ok := s.records[recordKey{deviceID, mode}]
		if ok && rec.HasContact() && *rec.Contact == contact {
			return rec.Clone(), nil
		}
	}
	return nil, model.ErrRecordNotFound
}

func (s *Storage) Upsert(ctx context.Context, record *model.PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner, ok := s.names[record.PlayerName]; ok && owner != record.DeviceID {
		return model.ErrNameTaken
	}
	if record.HasContact() {
		if owner, ok := s.contacts[*record.Contact]; ok && owner != record.DeviceID {
			return model.ErrContactTaken
		}
	}

	key := recordKey{record.DeviceID, record.Mode}
	prev := s.records[key]
	s.records[key] = record.Clone()

	s.names[record.PlayerName] = record.DeviceID
	if record.HasContact() {
		s.contacts[*record.Contact] = record.DeviceID
	}

	// Release identity the device no longer uses in any mode
	if prev != nil {
		if prev.PlayerName != record.PlayerName && !s.deviceHoldsName(prev.DeviceID, prev.PlayerName) {
			delete(s.names, prev.PlayerName)
		}
		if prev.HasContact() && !s.deviceHoldsContact(prev.DeviceID, *prev.Contact) {
			delete(s.contacts, *prev.Contact)
		}
	}
	return nil
}

func (s *Storage) List(ctx context.Context, opts model.ListOptions) ([]*model.PlayerRecord, error) {
	s.mu.RLock()
	result := make([]*model.PlayerRecord, 0, len(s.records))
	for _, rec := range s.records {
		if storage.Matches(rec, opts) {
			result = append(result, rec.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return storage.Ranks(result[i], result[j])
	})
	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

// deviceHoldsName must be called with s.mu held
func (s *Storage) deviceHoldsName(deviceID, name string) bool {
	for _, mode := range model.Modes() {
		if rec, ok := s.records[recordKey{deviceID, mode}]; ok && rec.PlayerName == name {
			return true
		}
	}
	return false
}

// deviceHoldsContact must be called with s.mu held
func (s *Storage) deviceHoldsContact(deviceID, contact string) bool {
	for _, mode := range model.Modes() {
		if rec, ok := s.records[recordKey{deviceID, mode}]; ok && rec.HasContact() && *rec.Contact == contact {
			return true
		}
	}
	return false
}

// Tap operations

func (s *Storage) RecordTaps(ctx context.Context, tc model.TapCount) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tapKey{tc.Brand, tc.DeviceID}
	if tc.Taps > s.taps[key] {
		s.taps[key] = tc.Taps
	}
	return s.taps[key], nil
}

func (s *Storage) TapTotals(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	totals := make(map[string]int)
	for key, taps := range s.taps {
		totals[key.brand] += taps
	}
	return totals, nil
}
