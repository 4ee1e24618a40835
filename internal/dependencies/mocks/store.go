package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/reflextile/internal/model"
	"github.com/mcoot/reflextile/internal/storage"
)

// FailingStore wraps a Storage and fails chosen operations on demand
type FailingStore struct {
	storage.Storage

	mu        sync.Mutex
	readErr   error
	upsertErr error
	upserts   int
}

// Ensure FailingStore implements Storage
var _ storage.Storage = (*FailingStore)(nil)

// NewFailingStore wraps inner
func NewFailingStore(inner storage.Storage) *FailingStore {
	return &FailingStore{Storage: inner}
}

// FailReads makes every lookup and listing return err until called with nil
func (f *FailingStore) FailReads(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

// FailUpserts makes every upsert return err until called with nil
func (f *FailingStore) FailUpserts(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertErr = err
}

// Upserts returns how many upserts reached the wrapped store
func (f *FailingStore) Upserts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts
}

func (f *FailingStore) FindByDevice(ctx context.Context, deviceID string, mode model.Mode) (*model.PlayerRecord, error) {
	if err := f.read(); err != nil {
		return nil, err
	}
	return f.Storage.FindByDevice(ctx, deviceID, mode)
}

func (f *FailingStore) FindByName(ctx context.Context, name string) (*model.PlayerRecord, error) {
	if err := f.read(); err != nil {
		return nil, err
	}
	return f.Storage.FindByName(ctx, name)
}

func (f *FailingStore) FindByContact(ctx context.Context, contact string) (*model.PlayerRecord, error) {
	if err := f.read(); err != nil {
		return nil, err
	}
	return f.Storage.FindByContact(ctx, contact)
}

func (f *FailingStore) List(ctx context.Context, opts model.ListOptions) ([]*model.PlayerRecord, error) {
	if err := f.read(); err != nil {
		return nil, err
	}
	return f.Storage.List(ctx, opts)
}

func (f *FailingStore) Upsert(ctx context.Context, record *model.PlayerRecord) error {
	f.mu.Lock()
	err := f.upsertErr
	if err == nil {
		f.upserts++
	}
	f.mu.Unlock()

	if err != nil {
		return err
	}
	return f.Storage.Upsert(ctx, record)
}

func (f *FailingStore) read() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readErr
}
