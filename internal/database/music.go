package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/google/uuid"
)

// MusicRepository stores generated playlists and favorite tracks.
type MusicRepository struct {
	db *DB
}

// NewMusicRepository creates a new music repository
func NewMusicRepository(db *DB) *MusicRepository {
	return &MusicRepository{db: db}
}

// CreatePlaylist inserts a generated playlist.
func (r *MusicRepository) CreatePlaylist(ctx context.Context, p *models.Playlist) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	tracks, err := json.Marshal(p.Tracks)
	if err != nil {
		return fmt.Errorf("failed to marshal tracks: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO playlists (id, user_id, mood, intensity, tracks, fallback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.UserID, p.Mood, p.Intensity, tracks, p.Fallback, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	return nil
}

// GetPlaylist returns the playlist id owned by userID.
func (r *MusicRepository) GetPlaylist(ctx context.Context, userID, id uuid.UUID) (*models.Playlist, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, mood, intensity, tracks, fallback, created_at
		FROM playlists WHERE id = $1 AND user_id = $2
	`, id, userID)
	p, err := scanPlaylist(row)
	if notFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	return p, nil
}

// ListPlaylists returns one page of the user's playlists, newest first,
// plus the total count.
func (r *MusicRepository) ListPlaylists(ctx context.Context, userID uuid.UUID, page, limit int) ([]*models.Playlist, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM playlists WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count playlists: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, mood, intensity, tracks, fallback, created_at
		FROM playlists WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list playlists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	playlists := []*models.Playlist{}
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate playlists: %w", err)
	}
	return playlists, total, nil
}

// AddFavorite saves a track. An already-saved track returns ErrDuplicate.
func (r *MusicRepository) AddFavorite(ctx context.Context, f *models.FavoriteTrack) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.AddedAt.IsZero() {
		f.AddedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO favorite_tracks (id, user_id, track_id, name, artist, album, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, f.ID, f.UserID, f.TrackID, f.Name, f.Artist, f.Album, f.AddedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// ListFavorites returns the user's favorites, newest first.
func (r *MusicRepository) ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.FavoriteTrack, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, track_id, name, artist, album, added_at
		FROM favorite_tracks WHERE user_id = $1 ORDER BY added_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer func() { _ = rows.Close() }()

	favs := []models.FavoriteTrack{}
	for rows.Next() {
		var f models.FavoriteTrack
		if err := rows.Scan(&f.ID, &f.UserID, &f.TrackID, &f.Name, &f.Artist, &f.Album, &f.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favs = append(favs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}
	return favs, nil
}

// RemoveFavorite deletes a saved track. ErrNotFound if it was not saved.
func (r *MusicRepository) RemoveFavorite(ctx context.Context, userID uuid.UUID, trackID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorite_tracks WHERE user_id = $1 AND track_id = $2`, userID, trackID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates the user's playlists and favorites. MoodDistribution
// is sorted by count descending.
func (r *MusicRepository) Stats(ctx context.Context, userID uuid.UUID) (*models.MusicStats, error) {
	stats := &models.MusicStats{MoodDistribution: []models.MoodCount{}}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM playlists WHERE user_id = $1`, userID).Scan(&stats.TotalPlaylists); err != nil {
		return nil, fmt.Errorf("failed to count playlists: %w", err)
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorite_tracks WHERE user_id = $1`, userID).Scan(&stats.TotalFavorites); err != nil {
		return nil, fmt.Errorf("failed to count favorites: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT mood, COUNT(*) AS n FROM playlists WHERE user_id = $1
		GROUP BY mood ORDER BY n DESC, mood
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mood distribution: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var mc models.MoodCount
		if err := rows.Scan(&mc.Mood, &mc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan mood count: %w", err)
		}
		stats.MoodDistribution = append(stats.MoodDistribution, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate mood distribution: %w", err)
	}

	var (
		mood      string
		createdAt time.Time
	)
	err = r.db.QueryRowContext(ctx, `
		SELECT mood, created_at FROM playlists WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1
	`, userID).Scan(&mood, &createdAt)
	switch {
	case notFound(err):
	case err != nil:
		return nil, fmt.Errorf("failed to get recent playlist: %w", err)
	default:
		stats.RecentPlaylist = models.RecentPlaylist{Mood: &mood, CreatedAt: &createdAt}
	}
	return stats, nil
}

// PlaylistStatsSince aggregates playlists the user generated at or after
// since.
func (r *MusicRepository) PlaylistStatsSince(ctx context.Context, userID uuid.UUID, since time.Time) (*models.PlaylistPeriodStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT mood, COUNT(*), COALESCE(SUM(jsonb_array_length(tracks)), 0)
		FROM playlists WHERE user_id = $1 AND created_at >= $2
		GROUP BY mood
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate playlists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats := &models.PlaylistPeriodStats{MoodDistribution: map[string]int{}}
	for rows.Next() {
		var (
			mood      string
			n, tracks int
		)
		if err := rows.Scan(&mood, &n, &tracks); err != nil {
			return nil, fmt.Errorf("failed to scan playlist aggregate: %w", err)
		}
		stats.MoodDistribution[mood] = n
		stats.TotalPlaylists += n
		stats.TotalTracks += tracks
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate playlist aggregates: %w", err)
	}
	return stats, nil
}

func scanPlaylist(s rowScanner) (*models.Playlist, error) {
	var (
		p      models.Playlist
		tracks []byte
	)
	if err := s.Scan(&p.ID, &p.UserID, &p.Mood, &p.Intensity, &tracks, &p.Fallback, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tracks, &p.Tracks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tracks: %w", err)
	}
	if p.Tracks == nil {
		p.Tracks = []models.Track{}
	}
	p.TotalTracks = len(p.Tracks)
	return &p, nil
}
