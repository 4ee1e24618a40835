package postgres

import (
	"time"

	"github.com/mcoot/reflextile/internal/model"
)

// playerRow is the scores table; one row per (device, mode)
type playerRow struct {
	DeviceID   string    `gorm:"primaryKey;size:64"`
	Mode       string    `gorm:"primaryKey;size:16"`
	PlayerName string    `gorm:"size:32;not null;index"`
	Score      int       `gorm:"not null;index"`
	Contact    *string   `gorm:"size:128;index"`
	PlayCount  int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"autoCreateTime:false;index"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime:false"`
}

func (playerRow) TableName() string { return "scores" }

// nameClaim reserves a player name for one device
type nameClaim struct {
	Name     string `gorm:"primaryKey;size:32"`
	DeviceID string `gorm:"size:64;not null"`
}

func (nameClaim) TableName() string { return "player_name_claims" }

// contactClaim reserves a contact for one device
type contactClaim struct {
	Contact  string `gorm:"primaryKey;size:128"`
	DeviceID string `gorm:"size:64;not null"`
}

func (contactClaim) TableName() string { return "contact_claims" }

// tapRow is one device's tap watermark for a brand
type tapRow struct {
	Brand    string `gorm:"primaryKey;size:32"`
	DeviceID string `gorm:"primaryKey;size:64"`
	Taps     int    `gorm:"not null;default:0"`
}

func (tapRow) TableName() string { return "logo_taps" }

func rowFromRecord(r *model.PlayerRecord) playerRow {
	row := playerRow{
		DeviceID:   r.DeviceID,
		Mode:       string(r.Mode),
		PlayerName: r.PlayerName,
		Score:      r.Score,
		PlayCount:  r.PlayCount,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.HasContact() {
		c := *r.Contact
		row.Contact = &c
	}
	return row
}

func (row playerRow) toRecord() *model.PlayerRecord {
	return (&model.PlayerRecord{
		DeviceID:   row.DeviceID,
		Mode:       model.Mode(row.Mode),
		PlayerName: row.PlayerName,
		Score:      row.Score,
		Contact:    row.Contact,
		PlayCount:  row.PlayCount,
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}).Clone()
}
