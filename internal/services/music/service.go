package music

import (
	"context"

	"github.com/benvon/mindful-harmony/internal/logger"
	"github.com/benvon/mindful-harmony/internal/models"
	"go.uber.org/zap"
)

// Service builds playlists. It degrades to fixed playlists and empty
// results when Spotify is unconfigured or failing.
type Service struct {
	api    SpotifyAPI
	cache  GenreCache
	logger *zap.Logger
}

// NewService creates a Service. api and cache may be nil.
func NewService(api SpotifyAPI, cache GenreCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, cache: cache, logger: logger}
}

// Available reports whether a Spotify client is configured.
func (s *Service) Available() bool {
	return s.api != nil
}

// GeneratePlaylist returns recommendations for mood at intensity (1-10),
// or the fallback playlist when the call fails.
func (s *Service) GeneratePlaylist(ctx context.Context, mood string, intensity, limit int) models.Playlist {
	if s.api == nil {
		return FallbackPlaylist(mood, limit)
	}

	profile := AdjustForIntensity(ProfileFor(mood), intensity)
	seeds := SeedGenres(profile.Genres, s.Genres(ctx))

	tracks, err := s.api.Recommendations(ctx, RecommendationParams{
		SeedGenres: seeds,
		Targets:    TargetsFor(profile),
		Limit:      limit,
	})
	if err != nil {
		s.logger.Warn("spotify_recommendations_failed_using_fallback",
			zap.String("mood", logger.SanitizeLabel(mood)),
			zap.Error(err),
		)
		return FallbackPlaylist(mood, limit)
	}

	return models.Playlist{
		Mood:        mood,
		Intensity:   intensity,
		Tracks:      tracks,
		TotalTracks: len(tracks),
	}
}

// Search returns matching tracks, or an empty list on failure.
func (s *Service) Search(ctx context.Context, query string, limit int) []models.Track {
	if s.api == nil {
		return []models.Track{}
	}
	tracks, err := s.api.SearchTracks(ctx, query, limit)
	if err != nil {
		s.logger.Warn("spotify_search_failed", zap.Error(err))
		return []models.Track{}
	}
	return tracks
}

// Genres returns the available seed genres, served from the cache when
// possible. Failures yield an empty list.
func (s *Service) Genres(ctx context.Context) []string {
	if s.api == nil {
		return []string{}
	}
	if s.cache != nil {
		genres, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("genre_cache_get_failed", zap.Error(err))
		} else if ok {
			return genres
		}
	}

	genres, err := s.api.AvailableGenres(ctx)
	if err != nil {
		s.logger.Warn("spotify_genres_failed", zap.Error(err))
		return []string{}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, genres); err != nil {
			s.logger.Warn("genre_cache_set_failed", zap.Error(err))
		}
	}
	return genres
}

// Recommendations returns tracks for explicit seeds, or an empty list on
// failure.
func (s *Service) Recommendations(ctx context.Context, seedTracks, seedGenres []string, limit int) []models.Track {
	if s.api == nil {
		return []models.Track{}
	}
	tracks, err := s.api.Recommendations(ctx, RecommendationParams{
		SeedTracks: seedTracks,
		SeedGenres: seedGenres,
		Limit:      limit,
	})
	if err != nil {
		s.logger.Warn("spotify_recommendations_failed", zap.Error(err))
		return []models.Track{}
	}
	return tracks
}
