package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/benvon/mindful-harmony/internal/database"
	"github.com/benvon/mindful-harmony/internal/logger"
	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/benvon/mindful-harmony/internal/request"
	"github.com/benvon/mindful-harmony/internal/services/recommend"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// ActivityScorer ranks catalog activities for a request.
type ActivityScorer interface {
	ScoreAndRank(ctx context.Context, catalog *recommend.Catalog, req models.ScoringRequest) []models.ScoredActivity
}

// ActivityHandler handles activity recommendation and completion requests
type ActivityHandler struct {
	catalog *recommend.Catalog
	scorer  ActivityScorer
	logs    database.ActivityLogRepositoryInterface
	logger  *zap.Logger
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(catalog *recommend.Catalog, scorer ActivityScorer, logs database.ActivityLogRepositoryInterface, log *zap.Logger) *ActivityHandler {
	if catalog == nil {
		catalog = recommend.EmptyCatalog()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ActivityHandler{catalog: catalog, scorer: scorer, logs: logs, logger: log}
}

// RegisterRoutes registers activity routes on the given router
// The router should already have the /api/activities prefix
func (h *ActivityHandler) RegisterRoutes(r *mux.Router, auth AuthMiddleware) {
	_, optional := routeAuth(auth)
	r.Handle("/recommendations/activities", wrap(optional, h.Recommend)).Methods("POST")
	r.Handle("/complete", wrap(optional, h.Complete)).Methods("POST")
	r.Handle("/history", wrap(optional, h.History)).Methods("GET")
	r.HandleFunc("/catalog", h.Catalog).Methods("GET")
}

// Recommend scores the catalog against the caller's mood, energy, time and context.
func (h *ActivityHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req models.ScoringRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Mood) == "" {
		badRequest(w, "Mood is required")
		return
	}
	if !validateBody(w, req) {
		return
	}
	if id := request.UserIDFromContext(r); id != nil {
		req.UserID = id.String()
	}

	req = req.WithDefaults()
	activities := h.scorer.ScoreAndRank(r.Context(), h.catalog, req)
	if activities == nil {
		activities = []models.ScoredActivity{}
	}

	fields := []zap.Field{
		zap.String("mood", logger.SanitizeLabel(req.Mood)),
		zap.String("energy", string(req.Energy)),
		zap.Int("time_min", req.Minutes()),
		zap.Int("returned", len(activities)),
		zap.String("request_id", request.RequestID(r.Context())),
	}
	if len(activities) > 0 {
		fields = append(fields, zap.String("top_activity", activities[0].ID), zap.Float64("top_score", activities[0].Score))
	}
	h.logger.Info("activity_recommendations_scored", fields...)

	respondJSON(w, http.StatusOK, models.Recommendations{
		Activities: activities,
		Filters: models.RecommendationFilters{
			Mood:    req.Mood,
			Energy:  req.Energy,
			TimeMin: req.Minutes(),
			Context: req.Context,
		},
	})
}

type completeActivityRequest struct {
	ActivityID string `json:"activity_id" validate:"max=64"`
}

// Complete records that the caller finished an activity.
func (h *ActivityHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeActivityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ActivityID = strings.TrimSpace(req.ActivityID)
	if req.ActivityID == "" {
		badRequest(w, "Activity ID is required")
		return
	}
	if !validateBody(w, req) {
		return
	}

	entry := &models.ActivityLog{
		UserID:     request.UserIDFromContext(r),
		ActivityID: req.ActivityID,
		Completed:  true,
	}
	if err := h.logs.Create(r.Context(), entry); err != nil {
		h.logger.Error("activity_completion_failed",
			zap.String("activity_id", logger.SanitizeLabel(req.ActivityID)),
			zap.Error(err),
		)
		internalError(w, "Failed to complete activity")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "Activity completed successfully",
		"log":     entry,
	})
}

// History lists the caller's completions, newest first.
func (h *ActivityHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := request.QueryInt(r, "limit", defaultHistoryLimit, 1, maxHistoryLimit)
	logs, err := h.logs.History(r.Context(), request.UserIDFromContext(r), limit)
	if err != nil {
		h.logger.Error("activity_history_failed", zap.Error(err))
		internalError(w, "Failed to retrieve activity history")
		return
	}
	if logs == nil {
		logs = []models.ActivityLog{}
	}
	respondJSON(w, http.StatusOK, models.ActivityHistory{Logs: logs, TotalCompleted: len(logs)})
}

// Catalog returns the loaded activity catalog.
func (h *ActivityHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"activities": h.catalog.Activities(),
		"total":      h.catalog.Len(),
	})
}
