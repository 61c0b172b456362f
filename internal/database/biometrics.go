package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/google/uuid"
)

// BiometricRepository stores self-reported measurements.
type BiometricRepository struct {
	db *DB
}

// NewBiometricRepository creates a new biometric repository
func NewBiometricRepository(db *DB) *BiometricRepository {
	return &BiometricRepository{db: db}
}

// Create inserts e. A zero Timestamp is set to now.
func (r *BiometricRepository) Create(ctx context.Context, e *models.BiometricEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO biometrics (id, user_id, heart_rate, sleep_hours, exercise_minutes, notes, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.UserID, e.HeartRate, e.SleepHours, e.ExerciseMinutes, e.Notes, e.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create biometric entry: %w", err)
	}
	return nil
}

// ListSince returns up to limit entries for userID at or after since,
// newest first. limit <= 0 means no limit.
func (r *BiometricRepository) ListSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]models.BiometricEntry, error) {
	query := `
		SELECT id, user_id, heart_rate, sleep_hours, exercise_minutes, notes, ts
		FROM biometrics WHERE user_id = $1 AND ts >= $2 ORDER BY ts DESC`
	args := []any{userID, since}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list biometric entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []models.BiometricEntry{}
	for rows.Next() {
		var (
			e        models.BiometricEntry
			hr, ex   sql.NullInt32
			sleepHrs sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &hr, &sleepHrs, &ex, &e.Notes, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan biometric entry: %w", err)
		}
		e.HeartRate = nullIntPtr(hr)
		e.ExerciseMinutes = nullIntPtr(ex)
		if sleepHrs.Valid {
			v := sleepHrs.Float64
			e.SleepHours = &v
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate biometric entries: %w", err)
	}
	return entries, nil
}

func nullIntPtr(n sql.NullInt32) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int32)
	return &v
}
