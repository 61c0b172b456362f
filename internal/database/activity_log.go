package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/google/uuid"
)

// ActivityLogRepository stores activity completions.
type ActivityLogRepository struct {
	db *DB
}

// NewActivityLogRepository creates a new activity log repository
func NewActivityLogRepository(db *DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Create records a completion. A zero Ts is set to now.
func (r *ActivityLogRepository) Create(ctx context.Context, log *models.ActivityLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.Ts.IsZero() {
		log.Ts = time.Now().UTC()
	}
	log.Completed = true

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_log (id, user_id, activity_id, ts, completed)
		VALUES ($1, $2, $3, $4, $5)
	`, log.ID, log.UserID, log.ActivityID, log.Ts, log.Completed)
	if err != nil {
		return fmt.Errorf("failed to create activity log: %w", err)
	}
	return nil
}

// History returns up to limit completions for userID, newest first. A nil
// userID selects anonymous completions.
func (r *ActivityLogRepository) History(ctx context.Context, userID *uuid.UUID, limit int) ([]models.ActivityLog, error) {
	var (
		rows *sql.Rows
		err  error
	)
	const cols = `SELECT id, user_id, activity_id, ts, completed FROM activity_log`
	if userID == nil {
		rows, err = r.db.QueryContext(ctx, cols+` WHERE user_id IS NULL ORDER BY ts DESC LIMIT $1`, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, cols+` WHERE user_id = $1 ORDER BY ts DESC LIMIT $2`, *userID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query activity history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	logs := []models.ActivityLog{}
	for rows.Next() {
		var (
			l   models.ActivityLog
			uid uuid.NullUUID
		)
		if err := rows.Scan(&l.ID, &uid, &l.ActivityID, &l.Ts, &l.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		l.UserID = nullUUIDPtr(uid)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity history: %w", err)
	}
	return logs, nil
}

// ListSince returns up to limit completions for userID at or after
// since, newest first. limit <= 0 means no limit.
func (r *ActivityLogRepository) ListSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]models.ActivityLog, error) {
	query := `SELECT id, activity_id, ts, completed FROM activity_log
		WHERE user_id = $1 AND ts >= $2 AND completed ORDER BY ts DESC`
	args := []any{userID, since}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	logs := []models.ActivityLog{}
	for rows.Next() {
		l := models.ActivityLog{UserID: &userID}
		if err := rows.Scan(&l.ID, &l.ActivityID, &l.Ts, &l.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity logs: %w", err)
	}
	return logs, nil
}

// LastCompleted returns the newest completion of activityID by userID.
func (r *ActivityLogRepository) LastCompleted(ctx context.Context, activityID, userID string) (time.Time, bool, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid user id: %w", err)
	}
	var ts sql.NullTime
	err = r.db.QueryRowContext(ctx, `
		SELECT MAX(ts) FROM activity_log
		WHERE user_id = $1 AND activity_id = $2 AND completed
	`, uid, activityID).Scan(&ts)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query last completion: %w", err)
	}
	return ts.Time, ts.Valid, nil
}

func nullUUIDPtr(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}
