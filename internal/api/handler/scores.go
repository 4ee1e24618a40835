package handler

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/mcoot/reflextile/internal/api/request"
	"github.com/mcoot/reflextile/internal/api/response"
	"github.com/mcoot/reflextile/internal/services/leaderboard"
	"github.com/mcoot/reflextile/internal/services/submission"
	"github.com/mcoot/reflextile/internal/services/validation"
)

// ScoreHandler handles session, submission and leaderboard endpoints
type ScoreHandler struct {
	pipeline    *submission.Pipeline
	leaderboard *leaderboard.Service
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(pipeline *submission.Pipeline, leaderboard *leaderboard.Service) *ScoreHandler {
	return &ScoreHandler{
		pipeline:    pipeline,
		leaderboard: leaderboard,
	}
}

// IssueSession handles POST /api/v1/scores/session
func (h *ScoreHandler) IssueSession(w http.ResponseWriter, r *http.Request) {
	var req request.IssueSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	id, err := h.pipeline.IssueSession(r.Context(), req.DeviceID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionResponse{SessionID: id})
}

// Submit handles POST /api/v1/scores
func (h *ScoreHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	score := math.NaN()
	if req.Score != nil {
		score = *req.Score
	}

	result, err := h.pipeline.Submit(r.Context(), validation.Claim{
		DeviceID:   req.DeviceID,
		PlayerName: req.PlayerName,
		Score:      score,
		Mode:       req.Mode,
		Contact:    req.Contact,
		SessionID:  req.SessionID,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.SubmitResponse{
		Created:  result.Created,
		Replayed: result.Replayed,
	}
	if result.Record != nil {
		rec := response.PlayerRecordFromModel(result.Record)
		resp.Record = &rec
	}

	response.Stored(w, result.Created, resp)
}

// Register handles POST /api/v1/scores/register
func (h *ScoreHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	rec, created, err := h.pipeline.Register(r.Context(), req.DeviceID, req.PlayerName, req.Contact)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Stored(w, created, response.PlayerRecordFromModel(rec))
}

// Leaderboard handles GET /api/v1/scores
func (h *ScoreHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var limit int
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteError(w, NewInvalidRequestError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	records, err := h.leaderboard.Top(r.Context(), leaderboard.Query{
		Mode:   q.Get("mode"),
		Period: q.Get("period"),
		Limit:  limit,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(records))
}
