package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/benvon/mindful-harmony/internal/database"
	"github.com/benvon/mindful-harmony/internal/logger"
	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/benvon/mindful-harmony/internal/request"
	"github.com/benvon/mindful-harmony/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	defaultPlaylistIntensity = 5
	defaultPlaylistTracks    = 20
	defaultPlaylistsLimit    = 10
	defaultSearchLimit       = 10
	maxSpotifyLimit          = 50
	maxSearchQueryLength     = 200
)

// MusicService builds playlists and proxies catalog lookups.
type MusicService interface {
	GeneratePlaylist(ctx context.Context, mood string, intensity, limit int) models.Playlist
	Search(ctx context.Context, query string, limit int) []models.Track
	Genres(ctx context.Context) []string
	Recommendations(ctx context.Context, seedTracks, seedGenres []string, limit int) []models.Track
}

// MusicHandler handles playlist and favorite requests
type MusicHandler struct {
	music  MusicService
	repo   database.MusicRepositoryInterface
	logger *zap.Logger
}

// NewMusicHandler creates a new music handler
func NewMusicHandler(music MusicService, repo database.MusicRepositoryInterface, log *zap.Logger) *MusicHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MusicHandler{music: music, repo: repo, logger: log}
}

// RegisterRoutes registers music routes on the given router
// The router should already have the /api/music prefix
func (h *MusicHandler) RegisterRoutes(r *mux.Router, auth AuthMiddleware) {
	required, _ := routeAuth(auth)
	r.Handle("/generate", wrap(required, h.Generate)).Methods("POST")
	r.Handle("/playlists", wrap(required, h.ListPlaylists)).Methods("GET")
	r.Handle("/playlist/{id}", wrap(required, h.GetPlaylist)).Methods("GET")
	r.HandleFunc("/search", h.Search).Methods("GET")
	r.HandleFunc("/genres", h.Genres).Methods("GET")
	r.HandleFunc("/recommendations", h.Recommendations).Methods("GET")
	r.Handle("/favorites", wrap(required, h.ListFavorites)).Methods("GET")
	r.Handle("/favorites", wrap(required, h.AddFavorite)).Methods("POST")
	r.Handle("/favorites/{track_id}", wrap(required, h.RemoveFavorite)).Methods("DELETE")
	r.Handle("/stats", wrap(required, h.Stats)).Methods("GET")
}

// Generate builds and stores a playlist for a mood.
func (h *MusicHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req models.GeneratePlaylistRequest
	if !decodeBody(w, r, &req) {
		return
	}
	label := models.NormalizeMood(req.Mood)
	if label == "" {
		badRequest(w, "Mood is required")
		return
	}
	if !validateBody(w, req) {
		return
	}
	intensity := defaultPlaylistIntensity
	if req.Intensity != nil {
		intensity = *req.Intensity
	}
	limit := defaultPlaylistTracks
	if req.Limit != nil {
		limit = *req.Limit
	}

	playlist := h.music.GeneratePlaylist(r.Context(), label, intensity, limit)
	playlist.UserID = user.ID
	playlist.Mood = label
	if err := h.repo.CreatePlaylist(r.Context(), &playlist); err != nil {
		h.logger.Error("playlist_create_failed", zap.Error(err))
		internalError(w, "Failed to save playlist")
		return
	}
	h.logger.Info("playlist_generated",
		zap.String("mood", logger.SanitizeLabel(label)),
		zap.Int("intensity", intensity),
		zap.Int("tracks", playlist.TotalTracks),
		zap.Bool("fallback", playlist.Fallback),
	)

	respondJSON(w, http.StatusCreated, playlist)
}

// ListPlaylists pages through the caller's playlists.
func (h *MusicHandler) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	page := request.QueryInt(r, "page", 1, 1, 1<<20)
	limit := request.QueryInt(r, "limit", defaultPlaylistsLimit, 1, maxJournalLimit)

	playlists, total, err := h.repo.ListPlaylists(r.Context(), user.ID, page, limit)
	if err != nil {
		h.logger.Error("playlist_list_failed", zap.Error(err))
		internalError(w, "Failed to retrieve playlists")
		return
	}
	if playlists == nil {
		playlists = []*models.Playlist{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"playlists":  playlists,
		"pagination": models.NewPagination(page, limit, total),
	})
}

// GetPlaylist returns one of the caller's playlists.
func (h *MusicHandler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(pathVar(r, "id"))
	if err != nil {
		notFound(w, "Playlist not found")
		return
	}
	playlist, err := h.repo.GetPlaylist(r.Context(), user.ID, id)
	if errors.Is(err, database.ErrNotFound) {
		notFound(w, "Playlist not found")
		return
	}
	if err != nil {
		h.logger.Error("playlist_get_failed", zap.Error(err))
		internalError(w, "Failed to retrieve playlist")
		return
	}
	respondJSON(w, http.StatusOK, playlist)
}

// Search looks up tracks by free text.
func (h *MusicHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := validation.SanitizeText(r.URL.Query().Get("q"))
	if q == "" {
		badRequest(w, "Search query is required")
		return
	}
	if len(q) > maxSearchQueryLength {
		q = q[:maxSearchQueryLength]
	}
	limit := request.QueryInt(r, "limit", defaultSearchLimit, 1, maxSpotifyLimit)
	tracks := h.music.Search(r.Context(), q, limit)
	respondJSON(w, http.StatusOK, map[string]any{"tracks": tracks, "total": len(tracks)})
}

// Genres lists the available seed genres.
func (h *MusicHandler) Genres(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"genres": h.music.Genres(r.Context())})
}

// Recommendations returns tracks for explicit track and genre seeds.
func (h *MusicHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	seedTracks := request.QueryList(r, "seed_tracks")
	seedGenres := request.QueryList(r, "seed_genres")
	if len(seedTracks) == 0 && len(seedGenres) == 0 {
		badRequest(w, "Must provide seed tracks or genres")
		return
	}
	limit := request.QueryInt(r, "limit", defaultPlaylistTracks, 1, maxSpotifyLimit)
	tracks := h.music.Recommendations(r.Context(), seedTracks, seedGenres, limit)
	respondJSON(w, http.StatusOK, map[string]any{"tracks": tracks, "total": len(tracks)})
}

// ListFavorites returns the caller's saved tracks.
func (h *MusicHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	favs, err := h.repo.ListFavorites(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("favorites_list_failed", zap.Error(err))
		internalError(w, "Failed to retrieve favorites")
		return
	}
	if favs == nil {
		favs = []models.FavoriteTrack{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"favorites": favs, "total": len(favs)})
}

// AddFavorite saves a track for the caller.
func (h *MusicHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req models.AddFavoriteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.TrackID = strings.TrimSpace(req.TrackID)
	if req.TrackID == "" {
		badRequest(w, "Track ID is required")
		return
	}
	if !validateBody(w, req) {
		return
	}

	fav := &models.FavoriteTrack{
		UserID:  user.ID,
		TrackID: req.TrackID,
		Name:    validation.SanitizeText(req.Name),
		Artist:  validation.SanitizeText(req.Artist),
		Album:   validation.SanitizeText(req.Album),
	}
	err := h.repo.AddFavorite(r.Context(), fav)
	if errors.Is(err, database.ErrDuplicate) {
		badRequest(w, "Track already in favorites")
		return
	}
	if err != nil {
		h.logger.Error("favorite_add_failed", zap.Error(err))
		internalError(w, "Failed to add favorite")
		return
	}
	respondJSON(w, http.StatusCreated, fav)
}

// RemoveFavorite deletes a saved track.
func (h *MusicHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	trackID := pathVar(r, "track_id")
	if trackID == "" {
		badRequest(w, "Track ID is required")
		return
	}
	err := h.repo.RemoveFavorite(r.Context(), user.ID, trackID)
	if errors.Is(err, database.ErrNotFound) {
		notFound(w, "Track not found in favorites")
		return
	}
	if err != nil {
		h.logger.Error("favorite_remove_failed", zap.Error(err))
		internalError(w, "Failed to remove favorite")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Track removed from favorites"})
}

// Stats summarizes the caller's playlists and favorites.
func (h *MusicHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	stats, err := h.repo.Stats(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("music_stats_failed", zap.Error(err))
		internalError(w, "Failed to retrieve music stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
