package storage

import (
	"context"

	"github.com/mcoot/reflextile/internal/model"
)

// RecordStore persists player records.
//
// Lookups return model.ErrRecordNotFound when nothing matches. Upsert inserts
// or replaces the record for (DeviceID, Mode) and enforces name and contact
// uniqueness atomically with the write: a name or contact owned by another
// device yields model.ErrNameTaken or model.ErrContactTaken and nothing is
// written. Any other error means the store itself failed.
type RecordStore interface {
	FindByDevice(ctx context.Context, deviceID string, mode model.Mode) (*model.PlayerRecord, error)
	FindByName(ctx context.Context, name string) (*model.PlayerRecord, error)
	FindByContact(ctx context.Context, contact string) (*model.PlayerRecord, error)
	Upsert(ctx context.Context, record *model.PlayerRecord) error

	// List returns records with a positive score, best first, ties broken
	// by earliest creation
	List(ctx context.Context, opts model.ListOptions) ([]*model.PlayerRecord, error)
}

// TapStore persists cumulative logo tap counts as watermarks
type TapStore interface {
	// RecordTaps raises the stored count for (brand, device) to taps if it is
	// higher, and returns the stored value afterwards
	RecordTaps(ctx context.Context, tc model.TapCount) (int, error)

	// TapTotals sums counts per brand across all devices
	TapTotals(ctx context.Context) (map[string]int, error)
}

// Storage is everything a backend provides
type Storage interface {
	RecordStore
	TapStore

	Close() error
}
