package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/mcoot/reflextile/internal/model"
	"github.com/mcoot/reflextile/internal/storage"
)

// Stats summarizes the stored records and taps for operators
type Stats struct {
	TotalPlayers int
	WithContact  int
	// AvgScore averages records that have been played, rounded
	AvgScore   int
	TopScore   int
	TotalPlays int
	// AvgPlays is plays per record, rounded to one decimal
	AvgPlays  float64
	TotalTaps int
	TapTotals map[string]int
}

// ExportHeader is the first row of an export
var ExportHeader = []string{"Rank", "Player", "Score", "Plays", "Contact", "Mode", "Device ID", "Joined"}

// Store is what reports read from
type Store interface {
	storage.RecordStore
	storage.TapStore
}

// Service builds operator reports
type Service struct {
	store Store
}

// New creates a Service
func New(store Store) *Service {
	return &Service{store: store}
}

// Stats computes the summary over every record, played or not
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	records, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.store.TapTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	st := &Stats{
		TotalPlayers: len(records),
		TapTotals:    totals,
	}

	var played, scoreSum int
	for _, r := range records {
		if r.HasContact() {
			st.WithContact++
		}
		if r.Score > 0 {
			played++
			scoreSum += r.Score
		}
		if r.Score > st.TopScore {
			st.TopScore = r.Score
		}
		st.TotalPlays += r.PlayCount
	}
	if played > 0 {
		st.AvgScore = int(math.Floor(float64(scoreSum)/float64(played) + 0.5))
	}
	if st.TotalPlayers > 0 {
		st.AvgPlays = math.Floor(float64(st.TotalPlays)/float64(st.TotalPlayers)*10+0.5) / 10
	}
	for _, n := range totals {
		st.TotalTaps += n
	}
	return st, nil
}

// Export writes every record as CSV, best first. Nothing is written when
// the store cannot be read.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	records, err := s.all(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for i, r := range records {
		var contact string
		if r.Contact != nil {
			contact = *r.Contact
		}
		row := []string{
			strconv.Itoa(i + 1),
			r.PlayerName,
			strconv.Itoa(r.Score),
			strconv.Itoa(r.PlayCount),
			contact,
			string(r.Mode),
			r.DeviceID,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *Service) all(ctx context.Context) ([]*model.PlayerRecord, error) {
	records, err := s.store.List(ctx, model.ListOptions{IncludeUnplayed: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return records, nil
}
