package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/reflextile/internal/model"
	"github.com/mcoot/reflextile/internal/services/session"
	"github.com/mcoot/reflextile/internal/storage"
)

const (
	// MaxBrandLength is where brand names are truncated
	MaxBrandLength = 32
	// UnknownDevice is recorded when a report carries no device id
	UnknownDevice = "unknown"
)

// Service records logo taps. Clients report their cumulative count per
// brand; the store keeps the highest count seen, so a resent report never
// counts twice.
type Service struct {
	store  storage.TapStore
	logger *slog.Logger
}

// New creates a Service
func New(store storage.TapStore, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// RecordTaps stores a device's cumulative tap count for a brand and returns
// the count now on record
func (s *Service) RecordTaps(ctx context.Context, brand, deviceID string, taps int) (int, error) {
	brand = strings.TrimSpace(brand)
	if utf8.RuneCountInString(brand) > MaxBrandLength {
		brand = string([]rune(brand)[:MaxBrandLength])
	}
	if brand == "" {
		return 0, fmt.Errorf("%w: brand is required", model.ErrInvalidInput)
	}
	if taps < 0 {
		return 0, fmt.Errorf("%w: taps must not be negative", model.ErrInvalidInput)
	}

	deviceID = session.NormalizeDeviceID(deviceID)
	if deviceID == "" {
		deviceID = UnknownDevice
	}

	stored, err := s.store.RecordTaps(ctx, model.TapCount{Brand: brand, DeviceID: deviceID, Taps: taps})
	if err != nil {
		s.logger.Error("failed to record taps",
			slog.String("brand", brand),
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return stored, nil
}

// Totals returns the tap count per brand summed over devices
func (s *Service) Totals(ctx context.Context) (map[string]int, error) {
	totals, err := s.store.TapTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return totals, nil
}
