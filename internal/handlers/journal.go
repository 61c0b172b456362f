package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/benvon/mindful-harmony/internal/database"
	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/benvon/mindful-harmony/internal/queue"
	"github.com/benvon/mindful-harmony/internal/request"
	"github.com/benvon/mindful-harmony/internal/services/ai"
	"github.com/benvon/mindful-harmony/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	// MaxJournalTextLength is the maximum length for journal text
	MaxJournalTextLength = 20000

	defaultJournalLimit = 20
	defaultEntriesLimit = 10
	maxJournalLimit     = 100
)

// JournalAnalyzer produces a guarded analysis for journal text.
type JournalAnalyzer interface {
	Analyze(ctx context.Context, text string) ai.Result
	HasProvider() bool
}

// JournalHandler handles journal requests
type JournalHandler struct {
	journal  database.JournalRepositoryInterface
	analyzer JournalAnalyzer
	jobs     queue.Publisher
	logger   *zap.Logger
}

// NewJournalHandler creates a new journal handler. jobs may be nil, in
// which case fallback analyses are not queued for re-analysis.
func NewJournalHandler(journal database.JournalRepositoryInterface, analyzer JournalAnalyzer, jobs queue.Publisher, log *zap.Logger) *JournalHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &JournalHandler{journal: journal, analyzer: analyzer, jobs: jobs, logger: log}
}

// RegisterRoutes registers journal routes on the given router
// The router should already have the /api/journal prefix
func (h *JournalHandler) RegisterRoutes(r *mux.Router, auth AuthMiddleware) {
	required, optional := routeAuth(auth)
	r.Handle("", wrap(optional, h.CreateJournal)).Methods("POST")
	r.Handle("", wrap(optional, h.ListJournal)).Methods("GET")
	r.Handle("/entry", wrap(required, h.CreateEntry)).Methods("POST")
	r.Handle("/entries", wrap(required, h.ListEntries)).Methods("GET")
	r.Handle("/ai-response", wrap(required, h.AIResponse)).Methods("POST")
}

// journalText sanitizes text and enforces presence and length.
func journalText(w http.ResponseWriter, text, missing string) (string, bool) {
	text = validation.SanitizeText(text)
	if text == "" {
		badRequest(w, missing)
		return "", false
	}
	if len(text) > MaxJournalTextLength {
		badRequest(w, "Journal text is too long")
		return "", false
	}
	return text, true
}

// CreateJournal analyzes and stores a journal entry.
func (h *JournalHandler) CreateJournal(w http.ResponseWriter, r *http.Request) {
	var req models.CreateJournalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	text, ok := journalText(w, req.Text, "Journal text is required")
	if !ok {
		return
	}

	entry := &models.JournalEntry{
		ID:        uuid.New(),
		UserID:    request.UserIDFromContext(r),
		Text:      text,
		WordCount: wordCount(text),
	}
	ctx := ai.WithEntryID(providerContext(r), entry.ID)
	res := h.analyzer.Analyze(ctx, text)
	entry.AI = &res.Analysis
	entry.AISource = res.Source

	if err := h.journal.Create(r.Context(), entry); err != nil {
		h.logger.Error("journal_create_failed", zap.Error(err))
		internalError(w, "Failed to save journal entry")
		return
	}

	if res.Source == models.AnalysisSourceFallback {
		h.queueReanalysis(r.Context(), entry)
	}

	respondJSON(w, http.StatusCreated, entry)
}

// queueReanalysis publishes a re-analysis job. Publishing is best effort;
// the periodic sweep picks up entries whose job was lost.
func (h *JournalHandler) queueReanalysis(ctx context.Context, entry *models.JournalEntry) {
	if h.jobs == nil || !h.analyzer.HasProvider() {
		return
	}
	job := queue.NewJournalReanalyzeJob(entry.ID, entry.UserID)
	if err := h.jobs.Enqueue(ctx, job); err != nil {
		h.logger.Warn("journal_reanalyze_enqueue_failed",
			zap.String("entry_id", entry.ID.String()),
			zap.Error(err),
		)
		return
	}
	h.logger.Debug("journal_reanalyze_enqueued",
		zap.String("entry_id", entry.ID.String()),
		zap.String("job_id", job.ID.String()),
	)
}

// ListJournal lists the caller's entries. Anonymous callers see
// anonymous entries.
func (h *JournalHandler) ListJournal(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, defaultJournalLimit)
}

// ListEntries lists the authenticated caller's entries.
func (h *JournalHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	h.list(w, r, defaultEntriesLimit)
}

func (h *JournalHandler) list(w http.ResponseWriter, r *http.Request, defaultLimit int) {
	page := request.QueryInt(r, "page", 1, 1, 1<<20)
	limit := request.QueryInt(r, "limit", defaultLimit, 1, maxJournalLimit)

	entries, total, err := h.journal.List(r.Context(), request.UserIDFromContext(r), page, limit)
	if err != nil {
		h.logger.Error("journal_list_failed", zap.Error(err))
		internalError(w, "Failed to retrieve journal entries")
		return
	}
	if entries == nil {
		entries = []*models.JournalEntry{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"entries":    entries,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// CreateEntry stores a titled entry without analysis.
func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req models.CreateEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	text, ok := journalText(w, req.Content, "Journal content is required")
	if !ok {
		return
	}
	if !validateBody(w, req) {
		return
	}

	isPrivate := true
	if req.IsPrivate != nil {
		isPrivate = *req.IsPrivate
	}
	userID := user.ID
	entry := &models.JournalEntry{
		UserID:    &userID,
		Title:     validation.SanitizeText(req.Title),
		Text:      text,
		Mood:      models.NormalizeMood(req.Mood),
		Tags:      cleanTags(req.Tags),
		WordCount: wordCount(text),
		IsPrivate: isPrivate,
	}
	if err := h.journal.Create(r.Context(), entry); err != nil {
		h.logger.Error("journal_entry_create_failed", zap.Error(err))
		internalError(w, "Failed to save journal entry")
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(validation.SanitizeText(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// AIResponse analyzes content and, when entry_id names one of the
// caller's entries, replaces that entry's stored analysis.
func (h *JournalHandler) AIResponse(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req models.AIResponseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	text, ok := journalText(w, req.Content, "Journal content is required")
	if !ok {
		return
	}

	ctx := providerContext(r)
	entryID, hasEntry := uuid.Nil, false
	if raw := strings.TrimSpace(req.EntryID); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			entryID, hasEntry = id, true
			ctx = ai.WithEntryID(ctx, id)
		}
	}

	res := h.analyzer.Analyze(ctx, text)

	if hasEntry {
		h.updateOwnedEntry(r.Context(), user.ID, entryID, res)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"ai_response": res.Analysis,
		"ai_source":   res.Source,
	})
}

// updateOwnedEntry stores res on the entry if userID owns it. Entries
// owned by someone else, or missing, are left alone.
func (h *JournalHandler) updateOwnedEntry(ctx context.Context, userID, entryID uuid.UUID, res ai.Result) {
	entry, err := h.journal.GetByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			h.logger.Warn("journal_entry_lookup_failed", zap.String("entry_id", entryID.String()), zap.Error(err))
		}
		return
	}
	if entry.UserID == nil || *entry.UserID != userID {
		return
	}
	analysis := res.Analysis
	if err := h.journal.UpdateAnalysis(ctx, entryID, &analysis, res.Source); err != nil {
		h.logger.Warn("journal_analysis_update_failed", zap.String("entry_id", entryID.String()), zap.Error(err))
	}
}
