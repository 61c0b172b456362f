package models

import (
	"time"

	"github.com/google/uuid"
)

// Track is a music track as returned to clients.
type Track struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Artist      string  `json:"artist"`
	Album       string  `json:"album"`
	DurationMS  int     `json:"duration_ms"`
	Popularity  int     `json:"popularity"`
	PreviewURL  *string `json:"preview_url"`
	ExternalURL *string `json:"external_url"`
	AlbumArt    *string `json:"album_art"`
}

// Playlist is a generated set of tracks for a mood.
type Playlist struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Mood        string    `json:"mood"`
	Intensity   int       `json:"intensity"`
	Tracks      []Track   `json:"tracks"`
	TotalTracks int       `json:"total_tracks"`
	Fallback    bool      `json:"fallback,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// GeneratePlaylistRequest is the body of POST /api/music/generate.
type GeneratePlaylistRequest struct {
	Mood      string `json:"mood"`
	Intensity *int   `json:"intensity" validate:"omitempty,min=1,max=10"`
	Limit     *int   `json:"limit" validate:"omitempty,min=1,max=100"`
}

// FavoriteTrack is a track saved by a user.
type FavoriteTrack struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	TrackID string    `json:"track_id"`
	Name    string    `json:"name"`
	Artist  string    `json:"artist"`
	Album   string    `json:"album"`
	AddedAt time.Time `json:"added_at"`
}

// AddFavoriteRequest is the body of POST /api/music/favorites.
type AddFavoriteRequest struct {
	TrackID string `json:"track_id"`
	Name    string `json:"name" validate:"max=300"`
	Artist  string `json:"artist" validate:"max=300"`
	Album   string `json:"album" validate:"max=300"`
}

// MoodCount is one bucket of a playlist mood distribution.
type MoodCount struct {
	Mood  string `json:"mood"`
	Count int    `json:"count"`
}

// RecentPlaylist summarizes the newest playlist.
type RecentPlaylist struct {
	Mood      *string    `json:"mood"`
	CreatedAt *time.Time `json:"created_at"`
}

// MusicStats is the response body of GET /api/music/stats.
type MusicStats struct {
	TotalPlaylists   int            `json:"total_playlists"`
	TotalFavorites   int            `json:"total_favorites"`
	MoodDistribution []MoodCount    `json:"mood_distribution"`
	RecentPlaylist   RecentPlaylist `json:"recent_playlist"`
}
