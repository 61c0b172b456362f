package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/benvon/mindful-harmony/internal/database"
	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/benvon/mindful-harmony/internal/queue"
	"github.com/benvon/mindful-harmony/internal/services/ai"
	"github.com/google/uuid"
)

type mockActivityLogs struct {
	createFunc  func(ctx context.Context, log *models.ActivityLog) error
	historyFunc func(ctx context.Context, userID *uuid.UUID, limit int) ([]models.ActivityLog, error)
	created     []*models.ActivityLog
}

func (m *mockActivityLogs) Create(ctx context.Context, log *models.ActivityLog) error {
	m.created = append(m.created, log)
	if m.createFunc != nil {
		return m.createFunc(ctx, log)
	}
	return nil
}

func (m *mockActivityLogs) History(ctx context.Context, userID *uuid.UUID, limit int) ([]models.ActivityLog, error) {
	if m.historyFunc != nil {
		return m.historyFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockActivityLogs) LastCompleted(context.Context, string, string) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

type mockJournalRepo struct {
	mu                 sync.Mutex
	createFunc         func(ctx context.Context, e *models.JournalEntry) error
	getByIDFunc        func(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error)
	listFunc           func(ctx context.Context, userID *uuid.UUID, page, limit int) ([]*models.JournalEntry, int, error)
	updateAnalysisFunc func(ctx context.Context, id uuid.UUID, a *models.Analysis, source models.AnalysisSource) error
	created            []*models.JournalEntry
	updated            []uuid.UUID
}

func (m *mockJournalRepo) Create(ctx context.Context, e *models.JournalEntry) error {
	m.mu.Lock()
	m.created = append(m.created, e)
	m.mu.Unlock()
	if m.createFunc != nil {
		return m.createFunc(ctx, e)
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now().UTC()
	return nil
}

func (m *mockJournalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, database.ErrNotFound
}

func (m *mockJournalRepo) List(ctx context.Context, userID *uuid.UUID, page, limit int) ([]*models.JournalEntry, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID, page, limit)
	}
	return nil, 0, nil
}

func (m *mockJournalRepo) UpdateAnalysis(ctx context.Context, id uuid.UUID, a *models.Analysis, source models.AnalysisSource) error {
	m.mu.Lock()
	m.updated = append(m.updated, id)
	m.mu.Unlock()
	if m.updateAnalysisFunc != nil {
		return m.updateAnalysisFunc(ctx, id, a, source)
	}
	return nil
}

func (m *mockJournalRepo) ListFallbackIDs(context.Context, time.Time, int) ([]database.FallbackEntry, error) {
	return nil, nil
}

type mockAnalyzer struct {
	result      ai.Result
	hasProvider bool
	texts       []string
}

func (m *mockAnalyzer) Analyze(_ context.Context, text string) ai.Result {
	m.texts = append(m.texts, text)
	return m.result
}

func (m *mockAnalyzer) HasProvider() bool { return m.hasProvider }

type mockPublisher struct {
	enqueueFunc func(ctx context.Context, job *queue.Job) error
	jobs        []*queue.Job
}

func (m *mockPublisher) Enqueue(ctx context.Context, job *queue.Job) error {
	m.jobs = append(m.jobs, job)
	if m.enqueueFunc != nil {
		return m.enqueueFunc(ctx, job)
	}
	return nil
}

type mockMoodRepo struct {
	createFunc    func(ctx context.Context, e *models.MoodEntry) error
	listSinceFunc func(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]models.MoodEntry, error)
	latestFunc    func(ctx context.Context, userID uuid.UUID) (*models.MoodEntry, error)
	created       []*models.MoodEntry
}

func (m *mockMoodRepo) Create(ctx context.Context, e *models.MoodEntry) error {
	m.created = append(m.created, e)
	if m.createFunc != nil {
		return m.createFunc(ctx, e)
	}
	return nil
}

func (m *mockMoodRepo) ListSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]models.MoodEntry, error) {
	if m.listSinceFunc != nil {
		return m.listSinceFunc(ctx, userID, since, limit)
	}
	return nil, nil
}

func (m *mockMoodRepo) Latest(ctx context.Context, userID uuid.UUID) (*models.MoodEntry, error) {
	if m.latestFunc != nil {
		return m.latestFunc(ctx, userID)
	}
	return nil, database.ErrNotFound
}

type mockMusicRepo struct {
	createPlaylistFunc func(ctx context.Context, p *models.Playlist) error
	getPlaylistFunc    func(ctx context.Context, userID, id uuid.UUID) (*models.Playlist, error)
	addFavoriteFunc    func(ctx context.Context, f *models.FavoriteTrack) error
	removeFavoriteFunc func(ctx context.Context, userID uuid.UUID, trackID string) error
	playlists          []*models.Playlist
}

func (m *mockMusicRepo) CreatePlaylist(ctx context.Context, p *models.Playlist) error {
	m.playlists = append(m.playlists, p)
	if m.createPlaylistFunc != nil {
		return m.createPlaylistFunc(ctx, p)
	}
	return nil
}

func (m *mockMusicRepo) GetPlaylist(ctx context.Context, userID, id uuid.UUID) (*models.Playlist, error) {
	if m.getPlaylistFunc != nil {
		return m.getPlaylistFunc(ctx, userID, id)
	}
	return nil, database.ErrNotFound
}

func (m *mockMusicRepo) ListPlaylists(context.Context, uuid.UUID, int, int) ([]*models.Playlist, int, error) {
	return m.playlists, len(m.playlists), nil
}

func (m *mockMusicRepo) AddFavorite(ctx context.Context, f *models.FavoriteTrack) error {
	if m.addFavoriteFunc != nil {
		return m.addFavoriteFunc(ctx, f)
	}
	return nil
}

func (m *mockMusicRepo) ListFavorites(context.Context, uuid.UUID) ([]models.FavoriteTrack, error) {
	return nil, nil
}

func (m *mockMusicRepo) RemoveFavorite(ctx context.Context, userID uuid.UUID, trackID string) error {
	if m.removeFavoriteFunc != nil {
		return m.removeFavoriteFunc(ctx, userID, trackID)
	}
	return nil
}

func (m *mockMusicRepo) Stats(context.Context, uuid.UUID) (*models.MusicStats, error) {
	return &models.MusicStats{MoodDistribution: []models.MoodCount{}}, nil
}

type mockMusicService struct {
	playlist   models.Playlist
	tracks     []models.Track
	genres     []string
	lastMood   string
	lastLimit  int
	lastSeeds  []string
	lastIntens int
}

func (m *mockMusicService) GeneratePlaylist(_ context.Context, mood string, intensity, limit int) models.Playlist {
	m.lastMood, m.lastIntens, m.lastLimit = mood, intensity, limit
	return m.playlist
}

func (m *mockMusicService) Search(_ context.Context, _ string, limit int) []models.Track {
	m.lastLimit = limit
	return m.tracks
}

func (m *mockMusicService) Genres(context.Context) []string { return m.genres }

func (m *mockMusicService) Recommendations(_ context.Context, seedTracks, seedGenres []string, limit int) []models.Track {
	m.lastSeeds = append(append([]string{}, seedTracks...), seedGenres...)
	m.lastLimit = limit
	return m.tracks
}

type mockUserRepo struct {
	createFunc     func(ctx context.Context, user *models.User) error
	getByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*models.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = uuid.New()
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, database.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, database.ErrNotFound
}

type mockProfileStore struct {
	updateFunc func(ctx context.Context, id uuid.UUID, req models.UpdateProfileRequest) (*models.User, error)
	updates    []models.UpdateProfileRequest
}

func (m *mockProfileStore) GetByID(context.Context, uuid.UUID) (*models.User, error) {
	return nil, database.ErrNotFound
}

func (m *mockProfileStore) UpdateProfile(ctx context.Context, id uuid.UUID, req models.UpdateProfileRequest) (*models.User, error) {
	m.updates = append(m.updates, req)
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, req)
	}
	u := &models.User{ID: id, FavoriteGenres: []string{}}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.FavoriteGenres != nil {
		u.FavoriteGenres = *req.FavoriteGenres
	}
	return u, nil
}

type mockBiometricRepo struct {
	created   []*models.BiometricEntry
	entries   []models.BiometricEntry
	err       error
	lastLimit int
}

func (m *mockBiometricRepo) Create(_ context.Context, e *models.BiometricEntry) error {
	if m.err != nil {
		return m.err
	}
	e.ID = uuid.New()
	e.Timestamp = time.Now().UTC()
	m.created = append(m.created, e)
	return nil
}

func (m *mockBiometricRepo) ListSince(_ context.Context, _ uuid.UUID, _ time.Time, limit int) ([]models.BiometricEntry, error) {
	m.lastLimit = limit
	return m.entries, m.err
}

type mockProfileService struct {
	stats    *models.ProfileStats
	insights []models.ProfileInsight
	err      error
	lastDays int
}

func (m *mockProfileService) Stats(_ context.Context, user *models.User, days int) (*models.ProfileStats, error) {
	m.lastDays = days
	if m.err != nil {
		return nil, m.err
	}
	if m.stats != nil {
		return m.stats, nil
	}
	return &models.ProfileStats{User: user, PeriodDays: days}, nil
}

func (m *mockProfileService) Insights(context.Context, uuid.UUID) ([]models.ProfileInsight, error) {
	return m.insights, m.err
}
