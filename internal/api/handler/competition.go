package handler

import (
	"net/http"

	"github.com/mcoot/reflextile/internal/api/response"
	"github.com/mcoot/reflextile/internal/services/competition"
)

// CompetitionHandler handles competition state endpoints
type CompetitionHandler struct {
	competition *competition.Service
}

// NewCompetitionHandler creates a new competition handler
func NewCompetitionHandler(competition *competition.Service) *CompetitionHandler {
	return &CompetitionHandler{competition: competition}
}

// Get handles GET /api/v1/competition
func (h *CompetitionHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.CompetitionFromModel(h.competition.State()))
}

// Open handles POST /api/v1/admin/competition/open
func (h *CompetitionHandler) Open(w http.ResponseWriter, r *http.Request) {
	state, err := h.competition.Open()
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CompetitionFromModel(state))
}

// Close handles POST /api/v1/admin/competition/close
func (h *CompetitionHandler) Close(w http.ResponseWriter, r *http.Request) {
	state, err := h.competition.Close()
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CompetitionFromModel(state))
}
