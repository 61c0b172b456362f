package database

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// MoodRepository handles mood entry database operations
type MoodRepository struct {
	db *DB
}

// NewMoodRepository creates a new mood repository
func NewMoodRepository(db *DB) *MoodRepository {
	return &MoodRepository{db: db}
}

const moodColumns = `id, user_id, mood, intensity, notes, activities, weather, location, ts`

// Create inserts a mood entry. A zero Timestamp is set to now.
func (r *MoodRepository) Create(ctx context.Context, e *models.MoodEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Activities == nil {
		e.Activities = []string{}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mood_entries (`+moodColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.UserID, e.Mood, e.Intensity, e.Notes, pq.Array(e.Activities), e.Weather, e.Location, e.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create mood entry: %w", err)
	}
	return nil
}

// ListSince returns up to limit entries for userID at or after since,
// newest first. limit <= 0 means no limit.
func (r *MoodRepository) ListSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]models.MoodEntry, error) {
	query := `SELECT ` + moodColumns + ` FROM mood_entries WHERE user_id = $1 AND ts >= $2 ORDER BY ts DESC`
	args := []any{userID, since}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list mood entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []models.MoodEntry{}
	for rows.Next() {
		e, err := scanMood(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mood entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mood entries: %w", err)
	}
	return entries, nil
}

// Latest returns the most recent entry for userID.
func (r *MoodRepository) Latest(ctx context.Context, userID uuid.UUID) (*models.MoodEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+moodColumns+` FROM mood_entries WHERE user_id = $1 ORDER BY ts DESC LIMIT 1`, userID)
	e, err := scanMood(row)
	if notFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest mood entry: %w", err)
	}
	return e, nil
}

func scanMood(s rowScanner) (*models.MoodEntry, error) {
	var e models.MoodEntry
	if err := s.Scan(&e.ID, &e.UserID, &e.Mood, &e.Intensity, &e.Notes, pq.Array(&e.Activities),
		&e.Weather, &e.Location, &e.Timestamp); err != nil {
		return nil, err
	}
	if e.Activities == nil {
		e.Activities = []string{}
	}
	return &e, nil
}
