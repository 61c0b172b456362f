package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/google/uuid"
)

type mockMoods struct {
	entries []models.MoodEntry
	err     error
	limits  []int
}

func (m *mockMoods) ListSince(_ context.Context, _ uuid.UUID, _ time.Time, limit int) ([]models.MoodEntry, error) {
	m.limits = append(m.limits, limit)
	return m.entries, m.err
}

type mockJournal struct {
	stats *models.JournalStats
	err   error
	since time.Time
}

func (m *mockJournal) StatsSince(_ context.Context, _ uuid.UUID, since time.Time) (*models.JournalStats, error) {
	m.since = since
	if m.stats == nil {
		return &models.JournalStats{}, m.err
	}
	return m.stats, m.err
}

type mockActivities struct {
	logs []models.ActivityLog
	err  error
}

func (m *mockActivities) ListSince(context.Context, uuid.UUID, time.Time, int) ([]models.ActivityLog, error) {
	return m.logs, m.err
}

type mockPlaylists struct {
	stats *models.PlaylistPeriodStats
	err   error
}

func (m *mockPlaylists) PlaylistStatsSince(context.Context, uuid.UUID, time.Time) (*models.PlaylistPeriodStats, error) {
	if m.stats == nil {
		return &models.PlaylistPeriodStats{MoodDistribution: map[string]int{}}, m.err
	}
	return m.stats, m.err
}

type mockBiometrics struct {
	entries []models.BiometricEntry
	err     error
}

func (m *mockBiometrics) ListSince(context.Context, uuid.UUID, time.Time, int) ([]models.BiometricEntry, error) {
	return m.entries, m.err
}

type catalogMap map[string]models.Activity

func (c catalogMap) Get(id string) (models.Activity, bool) {
	a, ok := c[id]
	return a, ok
}

var testCatalog = catalogMap{
	"box_breath_5": {ID: "box_breath_5", Title: "Box breathing", DurationMin: 5},
	"walk_15":      {ID: "walk_15", Title: "Short walk", DurationMin: 15},
}

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func logOf(id string) models.ActivityLog {
	return models.ActivityLog{ActivityID: id, Completed: true}
}

func TestActivitySummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		logs        []models.ActivityLog
		catalog     ActivityLookup
		wantTotal   int
		wantMinutes int
		wantAvg     float64
		wantDist    map[string]int
	}{
		{name: "no activities", wantDist: map[string]int{}},
		{
			name:        "catalog titles and durations",
			logs:        []models.ActivityLog{logOf("box_breath_5"), logOf("walk_15"), logOf("box_breath_5")},
			catalog:     testCatalog,
			wantTotal:   3,
			wantMinutes: 25,
			wantAvg:     8.33,
			wantDist:    map[string]int{"Box breathing": 2, "Short walk": 1},
		},
		{
			name:        "unknown activity counts by id with no duration",
			logs:        []models.ActivityLog{logOf("retired_1"), logOf("walk_15")},
			catalog:     testCatalog,
			wantTotal:   2,
			wantMinutes: 15,
			wantAvg:     7.5,
			wantDist:    map[string]int{"retired_1": 1, "Short walk": 1},
		},
		{
			name:      "no catalog",
			logs:      []models.ActivityLog{logOf("walk_15")},
			wantTotal: 1,
			wantDist:  map[string]int{"walk_15": 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ActivitySummary(tt.logs, tt.catalog)
			if got.TotalActivities != tt.wantTotal || got.TotalDurationMinutes != tt.wantMinutes || got.AverageDuration != tt.wantAvg {
				t.Errorf("ActivitySummary = %+v, want total=%d minutes=%d avg=%v", got, tt.wantTotal, tt.wantMinutes, tt.wantAvg)
			}
			if len(got.ActivityDistribution) != len(tt.wantDist) {
				t.Fatalf("distribution = %v, want %v", got.ActivityDistribution, tt.wantDist)
			}
			for k, v := range tt.wantDist {
				if got.ActivityDistribution[k] != v {
					t.Errorf("distribution[%q] = %d, want %d", k, got.ActivityDistribution[k], v)
				}
			}
		})
	}
}

func TestBiometricSummary(t *testing.T) {
	t.Parallel()

	got := BiometricSummary([]models.BiometricEntry{
		{HeartRate: intPtr(60), SleepHours: floatPtr(6.5)},
		{HeartRate: intPtr(75)},
		{HeartRate: intPtr(68), SleepHours: floatPtr(8)},
	})
	if got.TotalEntries != 3 {
		t.Errorf("TotalEntries = %d, want 3", got.TotalEntries)
	}
	if got.HeartRate == nil || *got.HeartRate != (models.MetricSummary{Average: 67.7, Min: 60, Max: 75, Count: 3}) {
		t.Errorf("HeartRate = %+v", got.HeartRate)
	}
	if got.SleepHours == nil || *got.SleepHours != (models.MetricSummary{Average: 7.3, Min: 6.5, Max: 8, Count: 2}) {
		t.Errorf("SleepHours = %+v", got.SleepHours)
	}
	if got.ExerciseMinutes != nil {
		t.Errorf("ExerciseMinutes = %+v, want nil when never recorded", got.ExerciseMinutes)
	}

	if empty := BiometricSummary(nil); empty.TotalEntries != 0 || empty.HeartRate != nil {
		t.Errorf("BiometricSummary(nil) = %+v", empty)
	}
}

func moodsOf(labels ...string) []models.MoodEntry {
	out := make([]models.MoodEntry, len(labels))
	for i, l := range labels {
		out[i] = models.MoodEntry{Mood: l, Intensity: 5}
	}
	return out
}

func TestGenerateInsights(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		moods      []models.MoodEntry
		activities []string
		biometrics []models.BiometricEntry
		wantTypes  []string
	}{
		{name: "no data", wantTypes: []string{}},
		{name: "latest mood low", moods: moodsOf("Sad", "happy"), wantTypes: []string{"mood"}},
		{name: "latest mood stressed", moods: moodsOf("worried"), wantTypes: []string{"mood"}},
		{name: "older low mood ignored", moods: moodsOf("happy", "sad"), wantTypes: []string{}},
		{name: "breathing practice", activities: []string{"Box breathing", "Short walk"}, wantTypes: []string{"activity"}},
		{name: "short sleep", biometrics: []models.BiometricEntry{{SleepHours: floatPtr(5.5)}}, wantTypes: []string{"biometric"}},
		{name: "enough sleep", biometrics: []models.BiometricEntry{{SleepHours: floatPtr(7)}}, wantTypes: []string{}},
		{name: "latest entry without sleep", biometrics: []models.BiometricEntry{{HeartRate: intPtr(70)}, {SleepHours: floatPtr(4)}}, wantTypes: []string{}},
		{
			name:       "consistent tracking",
			moods:      moodsOf("anxious", "calm", "calm", "happy", "calm"),
			activities: []string{"Breath counting"},
			wantTypes:  []string{"mood", "activity", "general"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := GenerateInsights(tt.moods, tt.activities, tt.biometrics)
			if got == nil {
				t.Fatal("GenerateInsights returned nil, want empty slice")
			}
			if len(got) != len(tt.wantTypes) {
				t.Fatalf("got %d insights %+v, want types %v", len(got), got, tt.wantTypes)
			}
			for i, typ := range tt.wantTypes {
				if got[i].Type != typ {
					t.Errorf("insight %d type = %q, want %q", i, got[i].Type, typ)
				}
				if got[i].Message == "" || got[i].Suggestion == "" {
					t.Errorf("insight %d missing text: %+v", i, got[i])
				}
			}
		})
	}
}

func newTestService(src Sources) *Service {
	s := NewService(src, testCatalog, nil)
	s.now = func() time.Time { return time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestServiceStats(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: uuid.New(), Username: "sam"}
	journal := &mockJournal{stats: &models.JournalStats{TotalEntries: 2, TotalWords: 45, AverageWordsPerEntry: 22.5}}
	src := Sources{
		Moods:      &mockMoods{entries: moodsOf("calm", "calm", "sad")},
		Journal:    journal,
		Activities: &mockActivities{logs: []models.ActivityLog{logOf("walk_15")}},
		Playlists:  &mockPlaylists{stats: &models.PlaylistPeriodStats{TotalPlaylists: 1, TotalTracks: 20, MoodDistribution: map[string]int{"calm": 1}}},
		Biometrics: &mockBiometrics{entries: []models.BiometricEntry{{ExerciseMinutes: intPtr(30)}}},
	}

	got, err := newTestService(src).Stats(context.Background(), user, 7)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if want := time.Date(2026, 3, 24, 12, 0, 0, 0, time.UTC); !journal.since.Equal(want) {
		t.Errorf("since = %v, want %v", journal.since, want)
	}
	if got.User != user || got.PeriodDays != 7 {
		t.Errorf("user/period = %v/%d", got.User, got.PeriodDays)
	}
	if got.MoodStats.TotalEntries != 3 || got.MoodStats.MostCommonMood != "calm" {
		t.Errorf("MoodStats = %+v", got.MoodStats)
	}
	if got.JournalStats.TotalWords != 45 {
		t.Errorf("JournalStats = %+v", got.JournalStats)
	}
	if got.ActivityStats.TotalDurationMinutes != 15 || got.ActivityStats.ActivityDistribution["Short walk"] != 1 {
		t.Errorf("ActivityStats = %+v", got.ActivityStats)
	}
	if got.MusicStats.TotalTracks != 20 {
		t.Errorf("MusicStats = %+v", got.MusicStats)
	}
	if got.BiometricStats.ExerciseMinutes == nil || got.BiometricStats.ExerciseMinutes.Average != 30 {
		t.Errorf("BiometricStats = %+v", got.BiometricStats)
	}
}

func TestServiceStats_EmptyPeriod(t *testing.T) {
	t.Parallel()

	src := Sources{
		Moods:      &mockMoods{},
		Journal:    &mockJournal{},
		Activities: &mockActivities{},
		Playlists:  &mockPlaylists{},
		Biometrics: &mockBiometrics{},
	}
	got, err := newTestService(src).Stats(context.Background(), &models.User{ID: uuid.New()}, 30)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if got.MoodStats == nil || got.MoodStats.MoodDistribution == nil || got.MoodStats.TotalEntries != 0 {
		t.Errorf("MoodStats = %+v, want zeroed stats with empty maps", got.MoodStats)
	}
	if got.ActivityStats.ActivityDistribution == nil {
		t.Error("ActivityDistribution is nil")
	}
}

func TestServiceStats_SourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	src := Sources{
		Moods:      &mockMoods{},
		Journal:    &mockJournal{},
		Activities: &mockActivities{},
		Playlists:  &mockPlaylists{err: boom},
		Biometrics: &mockBiometrics{},
	}
	if _, err := newTestService(src).Stats(context.Background(), &models.User{ID: uuid.New()}, 30); !errors.Is(err, boom) {
		t.Errorf("Stats error = %v, want %v", err, boom)
	}
}

func TestServiceInsights(t *testing.T) {
	t.Parallel()

	moods := &mockMoods{entries: moodsOf("stressed")}
	src := Sources{
		Moods:      moods,
		Activities: &mockActivities{logs: []models.ActivityLog{logOf("box_breath_5")}},
		Biometrics: &mockBiometrics{},
	}
	got, err := newTestService(src).Insights(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Insights: %v", err)
	}
	if len(got) != 2 || got[0].Type != "mood" || got[1].Type != "activity" {
		t.Errorf("Insights = %+v, want mood then activity", got)
	}
	if len(moods.limits) != 1 || moods.limits[0] != RecentLimit {
		t.Errorf("mood limit = %v, want %d", moods.limits, RecentLimit)
	}

	src.Biometrics = &mockBiometrics{err: errors.New("timeout")}
	if _, err := newTestService(src).Insights(context.Background(), uuid.New()); err == nil {
		t.Error("expected error from biometric source")
	}
}
