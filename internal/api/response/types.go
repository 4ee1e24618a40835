package response

import (
	"time"

	"github.com/mcoot/reflextile/internal/model"
	"github.com/mcoot/reflextile/internal/services/report"
)

// PlayerRecord represents a stored score in API responses
type PlayerRecord struct {
	DeviceID   string    `json:"device_id"`
	PlayerName string    `json:"player_name"`
	Score      int       `json:"score"`
	Mode       string    `json:"mode"`
	Contact    *string   `json:"contact"`
	PlayCount  int       `json:"play_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PlayerRecordFromModel converts a model.PlayerRecord
func PlayerRecordFromModel(r *model.PlayerRecord) PlayerRecord {
	return PlayerRecord{
		DeviceID:   r.DeviceID,
		PlayerName: r.PlayerName,
		Score:      r.Score,
		Mode:       string(r.Mode),
		Contact:    r.Contact,
		PlayCount:  r.PlayCount,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// SessionResponse is the response for starting a play session
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// SubmitResponse is the response for an accepted submission. Record is
// absent only when a replayed session has nothing stored in its mode.
type SubmitResponse struct {
	Record   *PlayerRecord `json:"record,omitempty"`
	Created  bool          `json:"created"`
	Replayed bool          `json:"replayed"`
}

// LeaderboardResponse lists records best first
type LeaderboardResponse struct {
	Scores []PlayerRecord `json:"scores"`
}

// LeaderboardFromModel converts a listing
func LeaderboardFromModel(records []*model.PlayerRecord) LeaderboardResponse {
	scores := make([]PlayerRecord, len(records))
	for i, r := range records {
		scores[i] = PlayerRecordFromModel(r)
	}
	return LeaderboardResponse{Scores: scores}
}

// CompetitionResponse represents the competition state
type CompetitionResponse struct {
	Open      bool       `json:"open"`
	StartedAt *time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

// CompetitionFromModel converts model.CompetitionState
func CompetitionFromModel(s model.CompetitionState) CompetitionResponse {
	return CompetitionResponse{
		Open:      s.Open,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
	}
}

// TapsResponse is the response for a tap report
type TapsResponse struct {
	Brand string `json:"brand"`
	Taps  int    `json:"taps"`
}

// TapTotalsResponse sums taps per brand
type TapTotalsResponse struct {
	Totals map[string]int `json:"totals"`
}

// StatsResponse summarizes the stored data for operators
type StatsResponse struct {
	TotalPlayers int            `json:"total_players"`
	WithContact  int            `json:"with_contact"`
	AvgScore     int            `json:"avg_score"`
	TopScore     int            `json:"top_score"`
	TotalPlays   int            `json:"total_plays"`
	AvgPlays     float64        `json:"avg_plays"`
	TotalTaps    int            `json:"total_taps"`
	TapTotals    map[string]int `json:"tap_totals"`
}

// StatsFromReport converts report.Stats
func StatsFromReport(st *report.Stats) StatsResponse {
	return StatsResponse{
		TotalPlayers: st.TotalPlayers,
		WithContact:  st.WithContact,
		AvgScore:     st.AvgScore,
		TopScore:     st.TopScore,
		TotalPlays:   st.TotalPlays,
		AvgPlays:     st.AvgPlays,
		TotalTaps:    st.TotalTaps,
		TapTotals:    st.TapTotals,
	}
}

// HealthResponse is the response for the health check
type HealthResponse struct {
	Status string    `json:"status"`
	Now    time.Time `json:"now"`
}
