package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case SessionResult:
		fmt.Fprintf(o.w, "Session: %s\n", v.SessionID)
	case SubmitResult:
		o.printSubmitResult(v)
	case PlayerRecord:
		o.printRecord(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case Competition:
		o.printCompetition(v)
	case TapsResult:
		fmt.Fprintf(o.w, "%s: %d taps\n", v.Brand, v.Taps)
	case TapTotals:
		o.printTapTotals(v)
	case HealthResult:
		o.printHealthResult(v)
	case Stats:
		o.printStats(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// SessionResult response type (matches API)
type SessionResult struct {
	SessionID string `json:"session_id"`
}

// PlayerRecord response type
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

// SubmitResult response type
type SubmitResult struct {
	Record   *PlayerRecord `json:"record,omitempty"`
	Created  bool          `json:"created"`
	Replayed bool          `json:"replayed"`
}

// Leaderboard response type
type Leaderboard struct {
	Scores []PlayerRecord `json:"scores"`
}

// Competition response type
type Competition struct {
	Open      bool       `json:"open"`
	StartedAt *time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

// TapsResult response type
type TapsResult struct {
	Brand string `json:"brand"`
	Taps  int    `json:"taps"`
}

// TapTotals response type
type TapTotals struct {
	Totals map[string]int `json:"totals"`
}

// Stats response type
type Stats struct {
	TotalPlayers int            `json:"total_players"`
	WithContact  int            `json:"with_contact"`
	AvgScore     int            `json:"avg_score"`
	TopScore     int            `json:"top_score"`
	TotalPlays   int            `json:"total_plays"`
	AvgPlays     float64        `json:"avg_plays"`
	TotalTaps    int            `json:"total_taps"`
	TapTotals    map[string]int `json:"tap_totals"`
}

// HealthResult response type
type HealthResult struct {
	Status string    `json:"status"`
	Now    time.Time `json:"now"`
}

func (o *Output) printRecord(r PlayerRecord) {
	fmt.Fprintf(o.w, "Player: %s\n", r.PlayerName)
	fmt.Fprintf(o.w, "Device: %s\n", r.DeviceID)
	fmt.Fprintf(o.w, "Mode: %s\n", r.Mode)
	fmt.Fprintf(o.w, "Score: %d\n", r.Score)
	fmt.Fprintf(o.w, "Plays: %d\n", r.PlayCount)
	if r.Contact != nil {
		fmt.Fprintf(o.w, "Contact: %s\n", *r.Contact)
	}
}

func (o *Output) printSubmitResult(s SubmitResult) {
	switch {
	case s.Replayed:
		fmt.Fprintln(o.w, "Already submitted, nothing changed")
	case s.Created:
		fmt.Fprintln(o.w, "New record created")
	default:
		fmt.Fprintln(o.w, "Score accepted")
	}
	if s.Record != nil {
		o.printRecord(*s.Record)
	}
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Scores) == 0 {
		fmt.Fprintln(o.w, "No scores yet")
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPLAYER\tSCORE\tMODE\tPLAYS")
	for i, r := range l.Scores {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\n", i+1, r.PlayerName, r.Score, r.Mode, r.PlayCount)
	}
	_ = tw.Flush()
}

func (o *Output) printCompetition(c Competition) {
	state := "closed"
	if c.Open {
		state = "open"
	}
	fmt.Fprintf(o.w, "Competition: %s\n", state)
	if c.StartedAt != nil {
		fmt.Fprintf(o.w, "Started: %s\n", c.StartedAt.Format(time.RFC3339))
	}
	if c.EndedAt != nil {
		fmt.Fprintf(o.w, "Ended: %s\n", c.EndedAt.Format(time.RFC3339))
	}
}

func (o *Output) printTapTotals(t TapTotals) {
	if len(t.Totals) == 0 {
		fmt.Fprintln(o.w, "No taps recorded")
		return
	}

	brands := make([]string, 0, len(t.Totals))
	for b := range t.Totals {
		brands = append(brands, b)
	}
	sort.Strings(brands)

	for _, b := range brands {
		fmt.Fprintf(o.w, "%s: %d\n", b, t.Totals[b])
	}
}

func (o *Output) printStats(st Stats) {
	fmt.Fprintf(o.w, "Players: %d (%d with contact)\n", st.TotalPlayers, st.WithContact)
	fmt.Fprintf(o.w, "Top score: %d\n", st.TopScore)
	fmt.Fprintf(o.w, "Average score: %d\n", st.AvgScore)
	fmt.Fprintf(o.w, "Plays: %d (%.1f per player)\n", st.TotalPlays, st.AvgPlays)
	fmt.Fprintf(o.w, "Logo taps: %d\n", st.TotalTaps)
	if len(st.TapTotals) > 0 {
		o.printTapTotals(TapTotals{Totals: st.TapTotals})
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Server time: %s\n", h.Now.Format(time.RFC3339))
}
