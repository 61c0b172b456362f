package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/benvon/mindful-harmony/internal/database"
	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func profileRoutes(h *ProfileHandler) func(*mux.Router) {
	return func(r *mux.Router) { h.RegisterRoutes(r, nil) }
}

func TestProfileHandler_Update(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	tests := []struct {
		name       string
		body       any
		user       *models.User
		updateErr  error
		wantStatus int
		wantMsg    string
		wantName   string
		wantGenres []string
	}{
		{name: "requires user", body: map[string]any{"name": "Sam"}, wantStatus: http.StatusUnauthorized},
		{name: "nothing to update", body: map[string]any{}, user: user, wantStatus: http.StatusBadRequest, wantMsg: "No profile fields to update"},
		{name: "invalid picture url", body: map[string]any{"profile_pic": "not a url"}, user: user, wantStatus: http.StatusBadRequest},
		{name: "too many genres", body: map[string]any{"favorite_genres": make([]string, 21)}, user: user, wantStatus: http.StatusBadRequest},
		{
			name: "name and genres normalized", body: map[string]any{"name": "  Sam ", "favorite_genres": []string{"Ambient", " jazz", "ambient"}},
			user: user, wantStatus: http.StatusOK, wantName: "Sam", wantGenres: []string{"ambient", "jazz"},
		},
		{name: "user gone", body: map[string]any{"name": "Sam"}, user: user, updateErr: database.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "store failure", body: map[string]any{"name": "Sam"}, user: user, updateErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := &mockProfileStore{}
			if tt.updateErr != nil {
				store.updateFunc = func(context.Context, uuid.UUID, models.UpdateProfileRequest) (*models.User, error) {
					return nil, tt.updateErr
				}
			}
			h := NewProfileHandler(store, &mockBiometricRepo{}, &mockProfileService{}, zap.NewNop())
			w := serve(profileRoutes(h), withUser(newTestRequest(http.MethodPut, "/update", tt.body), tt.user))

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantMsg != "" {
				if msg := errorMessage(t, w); msg != tt.wantMsg {
					t.Errorf("Expected message %q, got %q", tt.wantMsg, msg)
				}
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got models.User
			decodeData(t, w, &got)
			if got.Name != tt.wantName {
				t.Errorf("Expected name %q, got %q", tt.wantName, got.Name)
			}
			if len(got.FavoriteGenres) != len(tt.wantGenres) {
				t.Fatalf("Expected genres %v, got %v", tt.wantGenres, got.FavoriteGenres)
			}
			for i := range tt.wantGenres {
				if got.FavoriteGenres[i] != tt.wantGenres[i] {
					t.Errorf("Expected genres %v, got %v", tt.wantGenres, got.FavoriteGenres)
				}
			}
			if len(store.updates) != 1 || store.updates[0].ProfilePic != nil {
				t.Errorf("Unexpected update calls: %+v", store.updates)
			}
		})
	}
}

func TestProfileHandler_LogBiometrics(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantMsg    string
	}{
		{name: "no measurement", body: map[string]any{"notes": "felt fine"}, wantStatus: http.StatusBadRequest, wantMsg: "At least one biometric measurement is required"},
		{name: "heart rate out of range", body: map[string]any{"heart_rate": 400}, wantStatus: http.StatusBadRequest},
		{name: "sleep out of range", body: map[string]any{"sleep_hours": 25.0}, wantStatus: http.StatusBadRequest},
		{name: "sleep only", body: map[string]any{"sleep_hours": 6.5}, wantStatus: http.StatusCreated},
		{name: "all measurements", body: map[string]any{"heart_rate": 62, "sleep_hours": 8, "exercise_minutes": 30}, wantStatus: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockBiometricRepo{}
			h := NewProfileHandler(&mockProfileStore{}, repo, &mockProfileService{}, zap.NewNop())
			w := serve(profileRoutes(h), withUser(newTestRequest(http.MethodPost, "/biometrics", tt.body), user))

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantMsg != "" {
				if msg := errorMessage(t, w); msg != tt.wantMsg {
					t.Errorf("Expected message %q, got %q", tt.wantMsg, msg)
				}
			}
			wantStored := 0
			if tt.wantStatus == http.StatusCreated {
				wantStored = 1
			}
			if len(repo.created) != wantStored {
				t.Fatalf("Expected %d stored entries, got %d", wantStored, len(repo.created))
			}
			if wantStored == 1 && repo.created[0].UserID != user.ID {
				t.Errorf("Entry stored for %s, want %s", repo.created[0].UserID, user.ID)
			}
		})
	}
}

func TestProfileHandler_Biometrics(t *testing.T) {
	t.Parallel()

	hr := 70
	repo := &mockBiometricRepo{entries: []models.BiometricEntry{{HeartRate: &hr}}}
	h := NewProfileHandler(&mockProfileStore{}, repo, &mockProfileService{}, zap.NewNop())
	w := serve(profileRoutes(h), withUser(newTestRequest(http.MethodGet, "/biometrics?limit=5", nil), &models.User{ID: uuid.New()}))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var got struct {
		Entries    []models.BiometricEntry `json:"entries"`
		Statistics models.BiometricStats   `json:"statistics"`
	}
	decodeData(t, w, &got)
	if len(got.Entries) != 1 || got.Statistics.HeartRate == nil || got.Statistics.HeartRate.Average != 70 {
		t.Errorf("Unexpected body: %+v", got)
	}
	if repo.lastLimit != 5 {
		t.Errorf("Expected limit 5, got %d", repo.lastLimit)
	}
}

func TestProfileHandler_StatsAndInsights(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	tests := []struct {
		name       string
		path       string
		svcErr     error
		wantStatus int
		wantDays   int
	}{
		{name: "stats default period", path: "/stats", wantStatus: http.StatusOK, wantDays: 30},
		{name: "stats custom period", path: "/stats?days=7", wantStatus: http.StatusOK, wantDays: 7},
		{name: "stats period clamped", path: "/stats?days=9999", wantStatus: http.StatusOK, wantDays: 365},
		{name: "stats failure", path: "/stats", svcErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
		{name: "insights", path: "/insights", wantStatus: http.StatusOK},
		{name: "insights failure", path: "/insights", svcErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockProfileService{
				err:      tt.svcErr,
				insights: []models.ProfileInsight{{Type: "general", Message: "m", Suggestion: "s"}},
			}
			h := NewProfileHandler(&mockProfileStore{}, &mockBiometricRepo{}, svc, zap.NewNop())
			w := serve(profileRoutes(h), withUser(newTestRequest(http.MethodGet, tt.path, nil), user))

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantDays != 0 && svc.lastDays != tt.wantDays {
				t.Errorf("Expected days %d, got %d", tt.wantDays, svc.lastDays)
			}
		})
	}
}
