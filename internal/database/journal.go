package database

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// JournalRepository handles journal entry database operations
type JournalRepository struct {
	db *DB
}

// NewJournalRepository creates a new journal repository
func NewJournalRepository(db *DB) *JournalRepository {
	return &JournalRepository{db: db}
}

const journalColumns = `id, user_id, title, text, mood, tags, word_count, is_private, ai, ai_source, created_at, updated_at`

// Create inserts an entry.
func (r *JournalRepository) Create(ctx context.Context, e *models.JournalEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	aiJSON, err := marshalAnalysis(e.AI)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO journal_entries (`+journalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`, e.ID, e.UserID, e.Title, e.Text, e.Mood, pq.Array(e.Tags), e.WordCount, e.IsPrivate,
		aiJSON, string(e.AISource), now, now,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create journal entry: %w", err)
	}
	return nil
}

// GetByID retrieves an entry by ID
func (r *JournalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+journalColumns+` FROM journal_entries WHERE id = $1`, id)
	e, err := scanJournal(row)
	if notFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	return e, nil
}

// List returns one page of entries for userID, newest first, plus the
// total count. A nil userID selects anonymous entries.
func (r *JournalRepository) List(ctx context.Context, userID *uuid.UUID, page, limit int) ([]*models.JournalEntry, int, error) {
	where, args := `user_id IS NULL`, []any{}
	if userID != nil {
		where, args = `user_id = $1`, []any{*userID}
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal_entries WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count journal entries: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM journal_entries WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		journalColumns, where, n+1, n+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []*models.JournalEntry{}
	for rows.Next() {
		e, err := scanJournal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate journal entries: %w", err)
	}
	return entries, total, nil
}

// ListFallbackIDs returns ids and owners of entries created since the
// given time whose analysis came from the keyword fallback, oldest first.
func (r *JournalRepository) ListFallbackIDs(ctx context.Context, since time.Time, limit int) ([]FallbackEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id FROM journal_entries
		WHERE ai_source = $1 AND created_at >= $2
		ORDER BY created_at ASC
		LIMIT $3
	`, string(models.AnalysisSourceFallback), since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list fallback journal entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []FallbackEntry{}
	for rows.Next() {
		var (
			fe     FallbackEntry
			userID uuid.NullUUID
		)
		if err := rows.Scan(&fe.ID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan fallback journal entry: %w", err)
		}
		if userID.Valid {
			id := userID.UUID
			fe.UserID = &id
		}
		out = append(out, fe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fallback journal entries: %w", err)
	}
	return out, nil
}

// StatsSince counts the user's entries and words at or after since.
func (r *JournalRepository) StatsSince(ctx context.Context, userID uuid.UUID, since time.Time) (*models.JournalStats, error) {
	var stats models.JournalStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(word_count), 0)
		FROM journal_entries WHERE user_id = $1 AND created_at >= $2
	`, userID, since).Scan(&stats.TotalEntries, &stats.TotalWords)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate journal entries: %w", err)
	}
	if stats.TotalEntries > 0 {
		stats.AverageWordsPerEntry = math.Round(float64(stats.TotalWords)/float64(stats.TotalEntries)*10) / 10
	}
	return &stats, nil
}

// FallbackEntry identifies a journal entry awaiting re-analysis.
type FallbackEntry struct {
	ID     uuid.UUID
	UserID *uuid.UUID
}

// UpdateAnalysis replaces the stored analysis and its source.
func (r *JournalRepository) UpdateAnalysis(ctx context.Context, id uuid.UUID, a *models.Analysis, source models.AnalysisSource) error {
	aiJSON, err := marshalAnalysis(a)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE journal_entries SET ai = $2, ai_source = $3, updated_at = $4 WHERE id = $1
	`, id, aiJSON, string(source), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update journal analysis: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJournal(s rowScanner) (*models.JournalEntry, error) {
	var (
		e      models.JournalEntry
		uid    uuid.NullUUID
		aiJSON []byte
		source string
	)
	if err := s.Scan(&e.ID, &uid, &e.Title, &e.Text, &e.Mood, pq.Array(&e.Tags), &e.WordCount,
		&e.IsPrivate, &aiJSON, &source, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.UserID = nullUUIDPtr(uid)
	e.AISource = models.AnalysisSource(source)
	if e.Tags == nil {
		e.Tags = []string{}
	}
	a, err := unmarshalAnalysis(aiJSON)
	if err != nil {
		return nil, err
	}
	e.AI = a
	return &e, nil
}

func marshalAnalysis(a *models.Analysis) (any, error) {
	if a == nil {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}
	return b, nil
}

func unmarshalAnalysis(b []byte) (*models.Analysis, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var a models.Analysis
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}
	if a.CrisisResources == nil {
		a.CrisisResources = []models.CrisisResource{}
	}
	return &a, nil
}
