package request

// IssueSessionRequest is the request body for starting a play session
type IssueSessionRequest struct {
	DeviceID string `json:"device_id"`
}

// SubmitScoreRequest is the request body for submitting a score.
// Score is a pointer so a missing score can be told apart from zero.
type SubmitScoreRequest struct {
	DeviceID   string   `json:"device_id"`
	PlayerName string   `json:"player_name"`
	Score      *float64 `json:"score"`
	Mode       string   `json:"mode,omitempty"`
	Contact    *string  `json:"contact,omitempty"`
	SessionID  string   `json:"session_id"`
}

// RegisterRequest is the request body for claiming a player name
type RegisterRequest struct {
	DeviceID   string  `json:"device_id"`
	PlayerName string  `json:"player_name"`
	Contact    *string `json:"contact,omitempty"`
}

// RecordTapsRequest is the request body for reporting logo taps. Taps is
// the device's cumulative count for the brand.
type RecordTapsRequest struct {
	Brand    string `json:"brand"`
	DeviceID string `json:"device_id,omitempty"`
	Taps     int    `json:"taps"`
}
