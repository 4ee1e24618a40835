package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/reflextile/internal/api/handler"
	"github.com/mcoot/reflextile/internal/api/middleware"
	"github.com/mcoot/reflextile/internal/dependencies/clock"
	"github.com/mcoot/reflextile/internal/services/analytics"
	"github.com/mcoot/reflextile/internal/services/competition"
	"github.com/mcoot/reflextile/internal/services/leaderboard"
	"github.com/mcoot/reflextile/internal/services/report"
	"github.com/mcoot/reflextile/internal/services/submission"
)

// DefaultRequestTimeout bounds each API request when none is configured
const DefaultRequestTimeout = 10 * time.Second

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Clock       clock.Clock
	Pipeline    *submission.Pipeline
	Leaderboard *leaderboard.Service
	Competition *competition.Service
	Analytics   *analytics.Service
	Report      *report.Service

	// OperatorKeyHash is the bcrypt hash of the operator key. Admin routes
	// are only registered when it is set.
	OperatorKeyHash string
	RequestTimeout  time.Duration
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	// Create handlers
	scoreHandler := handler.NewScoreHandler(cfg.Pipeline, cfg.Leaderboard)
	competitionHandler := handler.NewCompetitionHandler(cfg.Competition)
	analyticsHandler := handler.NewAnalyticsHandler(cfg.Analytics)
	reportHandler := handler.NewReportHandler(cfg.Report)
	healthHandler := handler.NewHealthHandler(cfg.Clock)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Common(cfg.Logger, timeout)...)

	// Score routes
	api.HandleFunc("/scores/session", scoreHandler.IssueSession).Methods(http.MethodPost)
	api.HandleFunc("/scores/register", scoreHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/scores", scoreHandler.Submit).Methods(http.MethodPost)
	api.HandleFunc("/scores", scoreHandler.Leaderboard).Methods(http.MethodGet)

	// Competition routes
	api.HandleFunc("/competition", competitionHandler.Get).Methods(http.MethodGet)

	// Operator routes
	if cfg.OperatorKeyHash != "" {
		admin := api.PathPrefix("/admin").Subrouter()
		admin.Use(middleware.OperatorAuth([]byte(cfg.OperatorKeyHash)))
		admin.HandleFunc("/competition/open", competitionHandler.Open).Methods(http.MethodPost)
		admin.HandleFunc("/competition/close", competitionHandler.Close).Methods(http.MethodPost)
		admin.HandleFunc("/stats", reportHandler.Stats).Methods(http.MethodGet)
		admin.HandleFunc("/export", reportHandler.Export).Methods(http.MethodGet)
	}

	// Analytics routes
	api.HandleFunc("/analytics/taps", analyticsHandler.RecordTaps).Methods(http.MethodPost)
	api.HandleFunc("/analytics/taps", analyticsHandler.Totals).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteError(w, handler.NewNotFoundError())
	})

	return r
}
