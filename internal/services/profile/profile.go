// Package profile aggregates a user's mood, journal, activity, music and
// biometric history into period statistics and personalized insights.
package profile

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/benvon/mindful-harmony/internal/services/mood"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecentLimit is how many of the newest records feed Insights.
const RecentLimit = 10

// MoodSource lists mood entries newest first.
type MoodSource interface {
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]models.MoodEntry, error)
}

// JournalSource aggregates journal entries.
type JournalSource interface {
	StatsSince(ctx context.Context, userID uuid.UUID, since time.Time) (*models.JournalStats, error)
}

// ActivitySource lists completed activities newest first.
type ActivitySource interface {
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]models.ActivityLog, error)
}

// PlaylistSource aggregates generated playlists.
type PlaylistSource interface {
	PlaylistStatsSince(ctx context.Context, userID uuid.UUID, since time.Time) (*models.PlaylistPeriodStats, error)
}

// BiometricSource lists biometric entries newest first.
type BiometricSource interface {
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]models.BiometricEntry, error)
}

// ActivityLookup resolves catalog activities by id.
type ActivityLookup interface {
	Get(id string) (models.Activity, bool)
}

// Sources groups the stores a Service reads from.
type Sources struct {
	Moods      MoodSource
	Journal    JournalSource
	Activities ActivitySource
	Playlists  PlaylistSource
	Biometrics BiometricSource
}

// Service computes profile statistics and insights.
type Service struct {
	src     Sources
	catalog ActivityLookup
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a profile service. catalog may be nil, in which
// case activities are reported by id with no duration.
func NewService(src Sources, catalog ActivityLookup, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{src: src, catalog: catalog, logger: logger, now: time.Now}
}

// Stats summarizes the last days days of the user's data.
func (s *Service) Stats(ctx context.Context, user *models.User, days int) (*models.ProfileStats, error) {
	since := s.now().UTC().AddDate(0, 0, -days)

	moods, err := s.src.Moods.ListSince(ctx, user.ID, since, 0)
	if err != nil {
		return nil, fmt.Errorf("mood entries: %w", err)
	}
	journal, err := s.src.Journal.StatsSince(ctx, user.ID, since)
	if err != nil {
		return nil, fmt.Errorf("journal entries: %w", err)
	}
	activities, err := s.src.Activities.ListSince(ctx, user.ID, since, 0)
	if err != nil {
		return nil, fmt.Errorf("activities: %w", err)
	}
	playlists, err := s.src.Playlists.PlaylistStatsSince(ctx, user.ID, since)
	if err != nil {
		return nil, fmt.Errorf("playlists: %w", err)
	}
	biometrics, err := s.src.Biometrics.ListSince(ctx, user.ID, since, 0)
	if err != nil {
		return nil, fmt.Errorf("biometrics: %w", err)
	}

	s.logger.Debug("profile_stats_loaded",
		zap.Int("period_days", days),
		zap.Int("moods", len(moods)),
		zap.Int("activities", len(activities)),
		zap.Int("biometrics", len(biometrics)),
	)

	moodStats := mood.Stats(moods)
	if moodStats == nil {
		moodStats = &models.MoodStats{MoodDistribution: map[string]int{}, MoodAvgIntensities: map[string]float64{}}
	}
	return &models.ProfileStats{
		User:           user,
		PeriodDays:     days,
		MoodStats:      moodStats,
		JournalStats:   *journal,
		ActivityStats:  ActivitySummary(activities, s.catalog),
		BiometricStats: BiometricSummary(biometrics),
		MusicStats:     *playlists,
	}, nil
}

// Insights derives observations from the user's newest records.
func (s *Service) Insights(ctx context.Context, userID uuid.UUID) ([]models.ProfileInsight, error) {
	moods, err := s.src.Moods.ListSince(ctx, userID, time.Time{}, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("mood entries: %w", err)
	}
	logs, err := s.src.Activities.ListSince(ctx, userID, time.Time{}, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("activities: %w", err)
	}
	biometrics, err := s.src.Biometrics.ListSince(ctx, userID, time.Time{}, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("biometrics: %w", err)
	}

	titles := make([]string, len(logs))
	for i, l := range logs {
		titles[i] = activityTitle(s.catalog, l.ActivityID)
	}
	return GenerateInsights(moods, titles, biometrics), nil
}

// ActivitySummary counts completions by activity title and sums catalog
// durations.
func ActivitySummary(logs []models.ActivityLog, catalog ActivityLookup) models.ActivityStats {
	stats := models.ActivityStats{ActivityDistribution: map[string]int{}}
	for _, l := range logs {
		stats.TotalActivities++
		stats.ActivityDistribution[activityTitle(catalog, l.ActivityID)]++
		if catalog == nil {
			continue
		}
		if a, ok := catalog.Get(l.ActivityID); ok {
			stats.TotalDurationMinutes += a.DurationMin
		}
	}
	if stats.TotalActivities > 0 {
		stats.AverageDuration = round(float64(stats.TotalDurationMinutes)/float64(stats.TotalActivities), 2)
	}
	return stats
}

// BiometricSummary reports average, min and max for each measurement
// that at least one entry recorded.
func BiometricSummary(entries []models.BiometricEntry) models.BiometricStats {
	var hr, sleep, ex []float64
	for _, e := range entries {
		if e.HeartRate != nil {
			hr = append(hr, float64(*e.HeartRate))
		}
		if e.SleepHours != nil {
			sleep = append(sleep, *e.SleepHours)
		}
		if e.ExerciseMinutes != nil {
			ex = append(ex, float64(*e.ExerciseMinutes))
		}
	}
	return models.BiometricStats{
		TotalEntries:    len(entries),
		HeartRate:       summarize(hr),
		SleepHours:      summarize(sleep),
		ExerciseMinutes: summarize(ex),
	}
}

func summarize(xs []float64) *models.MetricSummary {
	if len(xs) == 0 {
		return nil
	}
	m := &models.MetricSummary{Min: xs[0], Max: xs[0], Count: len(xs)}
	var sum float64
	for _, x := range xs {
		sum += x
		m.Min = math.Min(m.Min, x)
		m.Max = math.Max(m.Max, x)
	}
	m.Average = round(sum/float64(len(xs)), 1)
	return m
}

const (
	minHealthySleepHours = 7
	consistentMoodCount  = 5
)

var (
	lowMoods      = []string{"sad", "depressed", "down"}
	stressedMoods = []string{"anxious", "worried", "stressed"}
)

// GenerateInsights inspects the newest mood, activity and biometric
// records. Each slice is newest first; activities holds titles.
func GenerateInsights(moods []models.MoodEntry, activities []string, biometrics []models.BiometricEntry) []models.ProfileInsight {
	insights := []models.ProfileInsight{}

	if len(moods) > 0 {
		switch latest := models.NormalizeMood(moods[0].Mood); {
		case contains(lowMoods, latest):
			insights = append(insights, models.ProfileInsight{
				Type:       "mood",
				Message:    "I notice you've been feeling down lately. Remember, it's okay to not be okay.",
				Suggestion: "Try reaching out to a friend or engaging in a mood-lifting activity.",
			})
		case contains(stressedMoods, latest):
			insights = append(insights, models.ProfileInsight{
				Type:       "mood",
				Message:    "Stress and anxiety are common, but there are ways to manage them.",
				Suggestion: "Consider trying some breathing exercises or meditation.",
			})
		}
	}

	if len(activities) > 0 && strings.Contains(strings.ToLower(activities[0]), "breath") {
		insights = append(insights, models.ProfileInsight{
			Type:       "activity",
			Message:    "Great job practicing breathing exercises!",
			Suggestion: "Try to make this a daily habit for better stress management.",
		})
	}

	if len(biometrics) > 0 {
		if h := biometrics[0].SleepHours; h != nil && *h < minHealthySleepHours {
			insights = append(insights, models.ProfileInsight{
				Type:       "biometric",
				Message:    "Getting enough sleep is crucial for mental health.",
				Suggestion: "Try to aim for 7-9 hours of sleep per night.",
			})
		}
	}

	if len(moods) >= consistentMoodCount {
		insights = append(insights, models.ProfileInsight{
			Type:       "general",
			Message:    "You've been consistently tracking your mood. That's a great habit!",
			Suggestion: "Keep up the good work with your mental health journey.",
		})
	}
	return insights
}

func activityTitle(catalog ActivityLookup, id string) string {
	if catalog != nil {
		if a, ok := catalog.Get(id); ok {
			return a.Title
		}
	}
	return id
}

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
