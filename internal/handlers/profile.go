package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/mindful-harmony/internal/database"
	"github.com/benvon/mindful-harmony/internal/logger"
	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/benvon/mindful-harmony/internal/request"
	"github.com/benvon/mindful-harmony/internal/services/profile"
	"github.com/benvon/mindful-harmony/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	defaultProfileDays     = 30
	maxProfileDays         = 365
	defaultBiometricsLimit = 50
	maxBiometricsLimit     = 500
)

// ProfileService computes profile statistics and insights.
type ProfileService interface {
	Stats(ctx context.Context, user *models.User, days int) (*models.ProfileStats, error)
	Insights(ctx context.Context, userID uuid.UUID) ([]models.ProfileInsight, error)
}

// ProfileHandler handles profile, biometric and statistics requests
type ProfileHandler struct {
	users      database.UserProfileStore
	biometrics database.BiometricRepositoryInterface
	profiles   ProfileService
	logger     *zap.Logger
	now        func() time.Time
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(users database.UserProfileStore, biometrics database.BiometricRepositoryInterface, profiles ProfileService, log *zap.Logger) *ProfileHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileHandler{users: users, biometrics: biometrics, profiles: profiles, logger: log, now: time.Now}
}

// RegisterRoutes registers profile routes on the given router
// The router should already have the /api/profile prefix
func (h *ProfileHandler) RegisterRoutes(r *mux.Router, auth AuthMiddleware) {
	required, _ := routeAuth(auth)
	r.Handle("/update", wrap(required, h.Update)).Methods("PUT")
	r.Handle("/biometrics", wrap(required, h.LogBiometrics)).Methods("POST")
	r.Handle("/biometrics", wrap(required, h.Biometrics)).Methods("GET")
	r.Handle("/stats", wrap(required, h.Stats)).Methods("GET")
	r.Handle("/insights", wrap(required, h.Insights)).Methods("GET")
}

// Update changes the name, picture or favorite genres of the caller.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == nil && req.ProfilePic == nil && req.FavoriteGenres == nil {
		badRequest(w, "No profile fields to update")
		return
	}
	if !validateBody(w, req) {
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(validation.SanitizeText(*req.Name))
		req.Name = &name
	}
	if req.FavoriteGenres != nil {
		genres := normalizeGenres(*req.FavoriteGenres)
		req.FavoriteGenres = &genres
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, req)
	if errors.Is(err, database.ErrNotFound) {
		notFound(w, "User not found")
		return
	}
	if err != nil {
		h.logger.Error("profile_update_failed", zap.Error(err))
		internalError(w, "Failed to update profile")
		return
	}
	h.logger.Debug("profile_updated", zap.String("user_id", logger.SanitizeUserID(user.ID.String())))
	respondJSON(w, http.StatusOK, updated)
}

// LogBiometrics records one set of measurements.
func (h *ProfileHandler) LogBiometrics(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req models.LogBiometricsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.HasMeasurement() {
		badRequest(w, "At least one biometric measurement is required")
		return
	}
	if !validateBody(w, req) {
		return
	}

	entry := &models.BiometricEntry{
		UserID:          user.ID,
		HeartRate:       req.HeartRate,
		SleepHours:      req.SleepHours,
		ExerciseMinutes: req.ExerciseMinutes,
		Notes:           validation.SanitizeText(req.Notes),
	}
	if err := h.biometrics.Create(r.Context(), entry); err != nil {
		h.logger.Error("biometrics_create_failed", zap.Error(err))
		internalError(w, "Failed to save biometrics")
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

// Biometrics returns recent entries with summary statistics.
func (h *ProfileHandler) Biometrics(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	days := request.QueryInt(r, "days", defaultProfileDays, 1, maxProfileDays)
	limit := request.QueryInt(r, "limit", defaultBiometricsLimit, 1, maxBiometricsLimit)

	entries, err := h.biometrics.ListSince(r.Context(), user.ID, h.now().UTC().AddDate(0, 0, -days), limit)
	if err != nil {
		h.logger.Error("biometrics_history_failed", zap.Error(err))
		internalError(w, "Failed to retrieve biometrics")
		return
	}
	if entries == nil {
		entries = []models.BiometricEntry{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"entries":    entries,
		"statistics": profile.BiometricSummary(entries),
	})
}

// Stats aggregates the caller's data over a period of days.
func (h *ProfileHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	days := request.QueryInt(r, "days", defaultProfileDays, 1, maxProfileDays)

	stats, err := h.profiles.Stats(r.Context(), user, days)
	if err != nil {
		h.logger.Error("profile_stats_failed", zap.Error(err))
		internalError(w, "Failed to retrieve profile statistics")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Insights returns observations drawn from the caller's recent records.
func (h *ProfileHandler) Insights(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	insights, err := h.profiles.Insights(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("profile_insights_failed", zap.Error(err))
		internalError(w, "Failed to retrieve insights")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"insights": insights})
}

// normalizeGenres lowercases, trims and de-duplicates genres, keeping
// their first-seen order.
func normalizeGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	seen := make(map[string]bool, len(genres))
	for _, g := range genres {
		g = strings.ToLower(strings.TrimSpace(g))
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}
