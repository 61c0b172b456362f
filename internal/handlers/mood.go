package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/benvon/mindful-harmony/internal/database"
	"github.com/benvon/mindful-harmony/internal/logger"
	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/benvon/mindful-harmony/internal/request"
	"github.com/benvon/mindful-harmony/internal/services/mood"
	"github.com/benvon/mindful-harmony/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	defaultMoodDays  = 30
	maxMoodDays      = 365
	defaultMoodLimit = 50
	maxMoodLimit     = 500
)

// MoodHandler handles mood tracking requests
type MoodHandler struct {
	moods  database.MoodRepositoryInterface
	logger *zap.Logger
	now    func() time.Time
}

// NewMoodHandler creates a new mood handler
func NewMoodHandler(moods database.MoodRepositoryInterface, log *zap.Logger) *MoodHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MoodHandler{moods: moods, logger: log, now: time.Now}
}

// RegisterRoutes registers mood routes on the given router
// The router should already have the /api/mood prefix
func (h *MoodHandler) RegisterRoutes(r *mux.Router, auth AuthMiddleware) {
	required, _ := routeAuth(auth)
	r.Handle("/submit", wrap(required, h.Submit)).Methods("POST")
	r.Handle("/history", wrap(required, h.History)).Methods("GET")
	r.Handle("/current", wrap(required, h.Current)).Methods("GET")
	r.Handle("/trends", wrap(required, h.Trends)).Methods("GET")
}

// Submit records a mood and returns feedback for it.
func (h *MoodHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req models.SubmitMoodRequest
	if !decodeBody(w, r, &req) {
		return
	}
	label := models.NormalizeMood(req.Mood)
	if label == "" {
		badRequest(w, "Mood is required")
		return
	}
	if len(label) > validation.MaxMoodLabelLength {
		badRequest(w, "Mood is too long")
		return
	}
	intensity := mood.DefaultIntensity
	if req.Intensity != nil {
		intensity = *req.Intensity
	}
	if intensity < mood.MinIntensity || intensity > mood.MaxIntensity {
		badRequest(w, "Intensity must be between 1 and 10")
		return
	}
	if !validateBody(w, req) {
		return
	}

	entry := &models.MoodEntry{
		UserID:     user.ID,
		Mood:       label,
		Intensity:  intensity,
		Notes:      validation.SanitizeText(req.Notes),
		Activities: cleanTags(req.Activities),
		Weather:    validation.SanitizeText(req.Weather),
		Location:   validation.SanitizeText(req.Location),
	}
	if err := h.moods.Create(r.Context(), entry); err != nil {
		h.logger.Error("mood_submit_failed", zap.Error(err))
		internalError(w, "Failed to save mood entry")
		return
	}
	h.logger.Debug("mood_submitted",
		zap.String("user_id", logger.SanitizeUserID(user.ID.String())),
		zap.String("mood", logger.SanitizeLabel(label)),
		zap.Int("intensity", intensity),
	)

	respondJSON(w, http.StatusCreated, map[string]any{
		"entry":    entry,
		"insights": mood.Insights(label, intensity),
	})
}

// History returns recent entries with summary statistics.
func (h *MoodHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	days := request.QueryInt(r, "days", defaultMoodDays, 1, maxMoodDays)
	limit := request.QueryInt(r, "limit", defaultMoodLimit, 1, maxMoodLimit)

	entries, err := h.moods.ListSince(r.Context(), user.ID, h.since(days), limit)
	if err != nil {
		h.logger.Error("mood_history_failed", zap.Error(err))
		internalError(w, "Failed to retrieve mood history")
		return
	}
	if entries == nil {
		entries = []models.MoodEntry{}
	}

	var stats any = map[string]any{}
	if s := mood.Stats(entries); s != nil {
		stats = s
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"entries":    entries,
		"statistics": stats,
	})
}

// Current returns the most recent entry.
func (h *MoodHandler) Current(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	entry, err := h.moods.Latest(r.Context(), user.ID)
	if errors.Is(err, database.ErrNotFound) {
		notFound(w, "No mood entries found")
		return
	}
	if err != nil {
		h.logger.Error("mood_current_failed", zap.Error(err))
		internalError(w, "Failed to retrieve current mood")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// Trends returns daily averages and the overall direction.
func (h *MoodHandler) Trends(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	days := request.QueryInt(r, "days", defaultMoodDays, 1, maxMoodDays)

	entries, err := h.moods.ListSince(r.Context(), user.ID, h.since(days), 0)
	if err != nil {
		h.logger.Error("mood_trends_failed", zap.Error(err))
		internalError(w, "Failed to retrieve mood trends")
		return
	}

	var trends any = map[string]any{}
	if t := mood.Trends(entries); t != nil {
		trends = t
	}
	respondJSON(w, http.StatusOK, trends)
}

func (h *MoodHandler) since(days int) time.Time {
	return h.now().UTC().AddDate(0, 0, -days)
}
