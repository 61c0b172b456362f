package database

import (
	"context"
	"time"

	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/google/uuid"
)

// UserRepositoryInterface defines the user operations handlers depend on.
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// UserProfileStore defines profile reads and updates.
type UserProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req models.UpdateProfileRequest) (*models.User, error)
}

// BiometricRepositoryInterface defines biometric entry storage.
type BiometricRepositoryInterface interface {
	Create(ctx context.Context, e *models.BiometricEntry) error
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]models.BiometricEntry, error)
}

// ActivityLogRepositoryInterface defines activity completion storage.
type ActivityLogRepositoryInterface interface {
	Create(ctx context.Context, log *models.ActivityLog) error
	History(ctx context.Context, userID *uuid.UUID, limit int) ([]models.ActivityLog, error)
	LastCompleted(ctx context.Context, activityID, userID string) (time.Time, bool, error)
}

// JournalRepositoryInterface defines journal entry storage.
type JournalRepositoryInterface interface {
	Create(ctx context.Context, e *models.JournalEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error)
	List(ctx context.Context, userID *uuid.UUID, page, limit int) ([]*models.JournalEntry, int, error)
	UpdateAnalysis(ctx context.Context, id uuid.UUID, a *models.Analysis, source models.AnalysisSource) error
	ListFallbackIDs(ctx context.Context, since time.Time, limit int) ([]FallbackEntry, error)
}

// MoodRepositoryInterface defines mood entry storage.
type MoodRepositoryInterface interface {
	Create(ctx context.Context, e *models.MoodEntry) error
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]models.MoodEntry, error)
	Latest(ctx context.Context, userID uuid.UUID) (*models.MoodEntry, error)
}

// MusicRepositoryInterface defines playlist and favorite storage.
type MusicRepositoryInterface interface {
	CreatePlaylist(ctx context.Context, p *models.Playlist) error
	GetPlaylist(ctx context.Context, userID, id uuid.UUID) (*models.Playlist, error)
	ListPlaylists(ctx context.Context, userID uuid.UUID, page, limit int) ([]*models.Playlist, int, error)
	AddFavorite(ctx context.Context, f *models.FavoriteTrack) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.FavoriteTrack, error)
	RemoveFavorite(ctx context.Context, userID uuid.UUID, trackID string) error
	Stats(ctx context.Context, userID uuid.UUID) (*models.MusicStats, error)
}

// RatelimitConfigStore defines keyed rate limit configuration storage.
type RatelimitConfigStore interface {
	Get(ctx context.Context, key string) (*models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

// CorsConfigStore defines CORS configuration storage.
type CorsConfigStore interface {
	Get(ctx context.Context) (*models.CorsConfig, error)
	Set(ctx context.Context, c *models.CorsConfig) error
}

// Ensure concrete types implement the interfaces
var (
	_ UserRepositoryInterface        = (*UserRepository)(nil)
	_ UserProfileStore               = (*UserRepository)(nil)
	_ BiometricRepositoryInterface   = (*BiometricRepository)(nil)
	_ ActivityLogRepositoryInterface = (*ActivityLogRepository)(nil)
	_ JournalRepositoryInterface     = (*JournalRepository)(nil)
	_ MoodRepositoryInterface        = (*MoodRepository)(nil)
	_ MusicRepositoryInterface       = (*MusicRepository)(nil)
	_ RatelimitConfigStore           = (*RatelimitConfigRepository)(nil)
	_ CorsConfigStore                = (*CorsConfigRepository)(nil)
)
