package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benvon/mindful-harmony/internal/database"
	"github.com/benvon/mindful-harmony/internal/middleware"
	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/benvon/mindful-harmony/internal/queue"
	"github.com/benvon/mindful-harmony/internal/services/ai"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func analysisResult(source models.AnalysisSource) ai.Result {
	return ai.Result{
		Analysis: ai.Fallback("feeling a bit down"),
		Source:   source,
	}
}

func TestJournalHandler_CreateJournal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		body         any
		source       models.AnalysisSource
		hasProvider  bool
		publisher    bool
		publishErr   error
		wantStatus   int
		wantMsg      string
		wantEnqueued int
	}{
		{name: "missing text", body: map[string]any{}, wantStatus: http.StatusBadRequest, wantMsg: "Journal text is required"},
		{name: "whitespace text", body: map[string]any{"text": " \n "}, wantStatus: http.StatusBadRequest, wantMsg: "Journal text is required"},
		{
			name: "provider analysis is not requeued", body: map[string]any{"text": "today was fine"},
			source: models.AnalysisSourceProvider, hasProvider: true, publisher: true, wantStatus: http.StatusCreated,
		},
		{
			name: "fallback with provider is requeued", body: map[string]any{"text": "today was fine"},
			source: models.AnalysisSourceFallback, hasProvider: true, publisher: true, wantStatus: http.StatusCreated, wantEnqueued: 1,
		},
		{
			name: "fallback without provider is not requeued", body: map[string]any{"text": "today was fine"},
			source: models.AnalysisSourceFallback, publisher: true, wantStatus: http.StatusCreated,
		},
		{
			name: "crisis is never requeued", body: map[string]any{"text": "today was awful"},
			source: models.AnalysisSourceCrisis, hasProvider: true, publisher: true, wantStatus: http.StatusCreated,
		},
		{
			name: "fallback without broker", body: map[string]any{"text": "today was fine"},
			source: models.AnalysisSourceFallback, hasProvider: true, wantStatus: http.StatusCreated,
		},
		{
			name: "publish failure still saves", body: map[string]any{"text": "today was fine"},
			source: models.AnalysisSourceFallback, hasProvider: true, publisher: true, publishErr: errors.New("broker down"),
			wantStatus: http.StatusCreated, wantEnqueued: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockJournalRepo{}
			analyzer := &mockAnalyzer{result: analysisResult(tt.source), hasProvider: tt.hasProvider}
			pub := &mockPublisher{enqueueFunc: func(context.Context, *queue.Job) error { return tt.publishErr }}
			var jobs queue.Publisher
			if tt.publisher {
				jobs = pub
			}
			h := NewJournalHandler(repo, analyzer, jobs, zap.NewNop())
			w := serve(journalRoutes(h), newTestRequest(http.MethodPost, "/api/journal", tt.body))

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantMsg != "" {
				if msg := errorMessage(t, w); msg != tt.wantMsg {
					t.Errorf("Expected message %q, got %q", tt.wantMsg, msg)
				}
				if len(analyzer.texts) != 0 {
					t.Error("Analyzer should not run for invalid input")
				}
				return
			}

			var got models.JournalEntry
			decodeData(t, w, &got)
			if got.AI == nil || got.AISource != tt.source {
				t.Errorf("Expected analysis with source %q, got %+v", tt.source, got)
			}
			if len(pub.jobs) != tt.wantEnqueued {
				t.Fatalf("Expected %d enqueued jobs, got %d", tt.wantEnqueued, len(pub.jobs))
			}
			if tt.wantEnqueued > 0 {
				job := pub.jobs[0]
				if job.Type != queue.JobTypeJournalReanalyze || job.EntryID == nil || *job.EntryID != got.ID {
					t.Errorf("Unexpected job: %+v", job)
				}
			}
		})
	}
}

type stalledGenerator struct{}

func (stalledGenerator) Name() string { return "stalled" }

func (stalledGenerator) Generate(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestJournalHandler_CreateJournalFallsBackBeforeRequestDeadline(t *testing.T) {
	t.Parallel()

	guard := ai.NewGuard(stalledGenerator{}, 50*time.Millisecond, nil)
	h := NewJournalHandler(&mockJournalRepo{}, guard, nil, zap.NewNop())
	router := mux.NewRouter()
	journalRoutes(h)(router)
	handler := middleware.Timeout(500 * time.Millisecond)(router)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, newTestRequest(http.MethodPost, "/api/journal", map[string]any{"text": "long day at work"}))

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	var got models.JournalEntry
	decodeData(t, w, &got)
	if got.AI == nil || got.AISource != models.AnalysisSourceFallback {
		t.Errorf("Expected fallback analysis, got %+v", got)
	}
}

// journalRoutes mounts h under /api/journal the way the server does.
func journalRoutes(h *JournalHandler) func(*mux.Router) {
	return func(r *mux.Router) { h.RegisterRoutes(r.PathPrefix("/api/journal").Subrouter(), nil) }
}

func TestJournalHandler_CreateEntry(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	no := false
	tests := []struct {
		name        string
		body        any
		user        *models.User
		wantStatus  int
		wantMsg     string
		wantPrivate bool
		wantWords   int
	}{
		{name: "requires user", body: map[string]any{"content": "x"}, wantStatus: http.StatusUnauthorized},
		{name: "missing content", body: map[string]any{"title": "t"}, user: user, wantStatus: http.StatusBadRequest, wantMsg: "Journal content is required"},
		{
			name: "private by default", body: map[string]any{"content": "one two  three", "mood": " Calm ", "tags": []string{"work", " "}},
			user: user, wantStatus: http.StatusCreated, wantPrivate: true, wantWords: 3,
		},
		{
			name: "explicit public", body: map[string]any{"content": "one", "is_private": &no},
			user: user, wantStatus: http.StatusCreated, wantPrivate: false, wantWords: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			analyzer := &mockAnalyzer{}
			h := NewJournalHandler(&mockJournalRepo{}, analyzer, nil, zap.NewNop())
			w := serve(journalRoutes(h), withUser(newTestRequest(http.MethodPost, "/api/journal/entry", tt.body), tt.user))

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				if tt.wantMsg != "" {
					if msg := errorMessage(t, w); msg != tt.wantMsg {
						t.Errorf("Expected message %q, got %q", tt.wantMsg, msg)
					}
				}
				return
			}

			var got models.JournalEntry
			decodeData(t, w, &got)
			if got.IsPrivate != tt.wantPrivate || got.WordCount != tt.wantWords {
				t.Errorf("Expected private=%v words=%d, got %+v", tt.wantPrivate, tt.wantWords, got)
			}
			if got.UserID == nil || *got.UserID != user.ID {
				t.Errorf("Expected entry owned by %s", user.ID)
			}
			if got.AI != nil || len(analyzer.texts) != 0 {
				t.Error("Entries created via /entry should not be analyzed")
			}
		})
	}
}

func TestJournalHandler_AIResponse(t *testing.T) {
	t.Parallel()

	owner := &models.User{ID: uuid.New()}
	ownedID := uuid.New()
	foreignID := uuid.New()
	otherUser := uuid.New()

	tests := []struct {
		name        string
		body        any
		wantStatus  int
		wantUpdated bool
	}{
		{name: "missing content", body: map[string]any{"entry_id": ownedID.String()}, wantStatus: http.StatusBadRequest},
		{name: "no entry id", body: map[string]any{"content": "hello"}, wantStatus: http.StatusOK},
		{name: "owned entry updated", body: map[string]any{"content": "hello", "entry_id": ownedID.String()}, wantStatus: http.StatusOK, wantUpdated: true},
		{name: "foreign entry untouched", body: map[string]any{"content": "hello", "entry_id": foreignID.String()}, wantStatus: http.StatusOK},
		{name: "missing entry ignored", body: map[string]any{"content": "hello", "entry_id": uuid.NewString()}, wantStatus: http.StatusOK},
		{name: "malformed entry id ignored", body: map[string]any{"content": "hello", "entry_id": "nope"}, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockJournalRepo{getByIDFunc: func(_ context.Context, id uuid.UUID) (*models.JournalEntry, error) {
				switch id {
				case ownedID:
					uid := owner.ID
					return &models.JournalEntry{ID: id, UserID: &uid}, nil
				case foreignID:
					return &models.JournalEntry{ID: id, UserID: &otherUser}, nil
				}
				return nil, database.ErrNotFound
			}}
			h := NewJournalHandler(repo, &mockAnalyzer{result: analysisResult(models.AnalysisSourceProvider)}, nil, zap.NewNop())
			w := serve(journalRoutes(h), withUser(newTestRequest(http.MethodPost, "/api/journal/ai-response", tt.body), owner))

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got struct {
				AIResponse models.Analysis       `json:"ai_response"`
				AISource   models.AnalysisSource `json:"ai_source"`
			}
			decodeData(t, w, &got)
			if got.AIResponse.Reply == "" || got.AISource != models.AnalysisSourceProvider {
				t.Errorf("Unexpected response: %+v", got)
			}
			if updated := len(repo.updated) == 1; updated != tt.wantUpdated {
				t.Errorf("Expected updated=%v, got %v", tt.wantUpdated, repo.updated)
			}
		})
	}
}

func TestJournalHandler_List(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New()}
	tests := []struct {
		name      string
		path      string
		user      *models.User
		wantLimit int
		wantUser  bool
		wantCode  int
	}{
		{name: "anonymous journal list", path: "", wantLimit: 20, wantCode: http.StatusOK},
		{name: "authenticated journal list", path: "?limit=5&page=2", user: user, wantLimit: 5, wantUser: true, wantCode: http.StatusOK},
		{name: "entries default limit", path: "/entries", user: user, wantLimit: 10, wantUser: true, wantCode: http.StatusOK},
		{name: "entries require user", path: "/entries", wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotLimit int
			var gotUser *uuid.UUID
			repo := &mockJournalRepo{listFunc: func(_ context.Context, userID *uuid.UUID, _ int, limit int) ([]*models.JournalEntry, int, error) {
				gotLimit, gotUser = limit, userID
				return []*models.JournalEntry{{ID: uuid.New()}}, 11, nil
			}}
			h := NewJournalHandler(repo, &mockAnalyzer{}, nil, zap.NewNop())
			w := serve(journalRoutes(h), withUser(newTestRequest(http.MethodGet, "/api/journal"+tt.path, nil), tt.user))

			if w.Code != tt.wantCode {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if gotLimit != tt.wantLimit {
				t.Errorf("Expected limit %d, got %d", tt.wantLimit, gotLimit)
			}
			if (gotUser != nil) != tt.wantUser {
				t.Errorf("Expected user filter %v, got %v", tt.wantUser, gotUser)
			}
			var got struct {
				Entries    []models.JournalEntry `json:"entries"`
				Pagination models.Pagination     `json:"pagination"`
			}
			decodeData(t, w, &got)
			if got.Pagination.Total != 11 || len(got.Entries) != 1 {
				t.Errorf("Unexpected list response: %+v", got)
			}
		})
	}
}
