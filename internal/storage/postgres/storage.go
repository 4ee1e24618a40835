package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mcoot/reflextile/internal/model"
	"github.com/mcoot/reflextile/internal/storage"
)

// Storage is a Postgres-backed implementation of the storage interface
type Storage struct {
	db *gorm.DB
}

// New opens the database, retrying while it comes up, and migrates the
// tables when cfg.AutoMigrate is set
func New(cfg Config, log *slog.Logger) (*Storage, error) {
	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i <= cfg.ConnectRetries; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err == nil {
			break
		}
		log.Warn("postgres connect failed, retrying",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()),
		)
		if i < cfg.ConnectRetries {
			time.Sleep(cfg.RetryInterval)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	s := NewWithDB(db)
	if cfg.AutoMigrate {
		if err := s.Migrate(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewWithDB wraps an already opened database
func NewWithDB(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// Migrate creates or extends the tables this store uses
func (s *Storage) Migrate() error {
	if err := s.db.AutoMigrate(&playerRow{}, &nameClaim{}, &contactClaim{}, &tapRow{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Record operations

func (s *Storage) FindByDevice(ctx context.Context, deviceID string, mode model.Mode) (*model.PlayerRecord, error) {
	return s.take(s.db.WithContext(ctx).Where("device_id = ? AND mode = ?", deviceID, string(mode)))
}

func (s *Storage) FindByName(ctx context.Context, name string) (*model.PlayerRecord, error) {
	return s.take(s.db.WithContext(ctx).Where("player_name = ?", name).Order("mode"))
}

func (s *Storage) FindByContact(ctx context.Context, contact string) (*model.PlayerRecord, error) {
	return s.take(s.db.WithContext(ctx).Where("contact = ?", contact).Order("mode"))
}

func (s *Storage) take(q *gorm.DB) (*model.PlayerRecord, error) {
	var row playerRow
	if err := q.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrRecordNotFound
		}
		return nil, err
	}
	return row.toRecord(), nil
}

// Upsert claims the name and contact through their primary keys, then
// writes the record, all in one transaction. A concurrent claim of the same
// key blocks on the primary key until the first transaction settles.
func (s *Storage) Upsert(ctx context.Context, record *model.PlayerRecord) error {
	row := rowFromRecord(record)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := claimName(tx, row.PlayerName, row.DeviceID); err != nil {
			return err
		}
		if row.Contact != nil {
			if err := claimContact(tx, *row.Contact, row.DeviceID); err != nil {
				return err
			}
		}

		var prev playerRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("device_id = ? AND mode = ?", row.DeviceID, row.Mode).
			Take(&prev).Error
		hadPrev := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}, {Name: "mode"}},
			DoUpdates: clause.AssignmentColumns([]string{"player_name", "score", "contact", "play_count", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		if !hadPrev {
			return nil
		}
		if prev.PlayerName != row.PlayerName {
			if err := releaseUnused(tx, "player_name", prev.PlayerName, prev.DeviceID, &nameClaim{}, "name"); err != nil {
				return err
			}
		}
		if prev.Contact != nil && (row.Contact == nil || *row.Contact != *prev.Contact) {
			if err := releaseUnused(tx, "contact", *prev.Contact, prev.DeviceID, &contactClaim{}, "contact"); err != nil {
				return err
			}
		}
		return nil
	})
}

func claimName(tx *gorm.DB, name, deviceID string) error {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&nameClaim{Name: name, DeviceID: deviceID}).Error; err != nil {
		return err
	}
	var claim nameClaim
	if err := tx.Where("name = ?", name).Take(&claim).Error; err != nil {
		return err
	}
	if claim.DeviceID != deviceID {
		return model.ErrNameTaken
	}
	return nil
}

func claimContact(tx *gorm.DB, contact, deviceID string) error {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&contactClaim{Contact: contact, DeviceID: deviceID}).Error; err != nil {
		return err
	}
	var claim contactClaim
	if err := tx.Where("contact = ?", contact).Take(&claim).Error; err != nil {
		return err
	}
	if claim.DeviceID != deviceID {
		return model.ErrContactTaken
	}
	return nil
}

// releaseUnused drops the device's claim on value once none of its records
// carry it in column
func releaseUnused(tx *gorm.DB, column, value, deviceID string, claim any, claimColumn string) error {
	var inUse int64
	if err := tx.Model(&playerRow{}).
		Where("device_id = ? AND "+column+" = ?", deviceID, value).
		Count(&inUse).Error; err != nil {
		return err
	}
	if inUse > 0 {
		return nil
	}
	return tx.Where(claimColumn+" = ? AND device_id = ?", value, deviceID).Delete(claim).Error
}

func (s *Storage) List(ctx context.Context, opts model.ListOptions) ([]*model.PlayerRecord, error) {
	q := s.db.WithContext(ctx)
	if !opts.IncludeUnplayed {
		q = q.Where("score > 0")
	}
	if opts.Mode != "" {
		q = q.Where("mode = ?", string(opts.Mode))
	}
	if !opts.Since.IsZero() {
		q = q.Where("updated_at >= ?", opts.Since)
	}
	q = q.Order("score DESC").Order("created_at ASC")
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	var rows []playerRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]*model.PlayerRecord, len(rows))
	for i, row := range rows {
		result[i] = row.toRecord()
	}
	return result, nil
}

// Tap operations

func (s *Storage) RecordTaps(ctx context.Context, tc model.TapCount) (int, error) {
	row := tapRow{Brand: tc.Brand, DeviceID: tc.DeviceID, Taps: tc.Taps}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "brand"}, {Name: "device_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"taps": gorm.Expr("GREATEST(logo_taps.taps, EXCLUDED.taps)"),
		}),
	}).Create(&row).Error
	if err != nil {
		return 0, err
	}

	var stored tapRow
	if err := s.db.WithContext(ctx).
		Where("brand = ? AND device_id = ?", tc.Brand, tc.DeviceID).
		Take(&stored).Error; err != nil {
		return 0, err
	}
	return stored.Taps, nil
}

func (s *Storage) TapTotals(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Brand string
		Total int
	}
	if err := s.db.WithContext(ctx).Model(&tapRow{}).
		Select("brand, SUM(taps) AS total").
		Group("brand").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make(map[string]int, len(rows))
	for _, r := range rows {
		totals[r.Brand] = r.Total
	}
	return totals, nil
}
