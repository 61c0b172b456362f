package models

import (
	"time"

	"github.com/google/uuid"
)

// MoodEntry is one self-reported mood. Intensity is on a 1-10 scale.
type MoodEntry struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Mood       string    `json:"mood"`
	Intensity  int       `json:"intensity"`
	Notes      string    `json:"notes"`
	Activities []string  `json:"activities"`
	Weather    string    `json:"weather"`
	Location   string    `json:"location"`
	Timestamp  time.Time `json:"timestamp"`
}

// SubmitMoodRequest is the body of POST /api/mood/submit.
type SubmitMoodRequest struct {
	Mood       string   `json:"mood"`
	Intensity  *int     `json:"intensity"`
	Notes      string   `json:"notes" validate:"max=2000"`
	Activities []string `json:"activities" validate:"max=20,dive,max=100"`
	Weather    string   `json:"weather" validate:"max=64"`
	Location   string   `json:"location" validate:"max=128"`
}

// MoodInsights is the feedback returned after a mood submission.
type MoodInsights struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// MoodStats summarizes a set of mood entries.
type MoodStats struct {
	TotalEntries       int                `json:"total_entries"`
	AverageIntensity   float64            `json:"average_intensity"`
	MoodDistribution   map[string]int     `json:"mood_distribution"`
	MoodAvgIntensities map[string]float64 `json:"mood_avg_intensities"`
	MostCommonMood     string             `json:"most_common_mood"`
}

// MoodPatterns flags the overall direction of recent daily averages.
type MoodPatterns struct {
	Improving bool `json:"improving"`
	Declining bool `json:"declining"`
	Stable    bool `json:"stable"`
}

// MoodTrends is the response body of GET /api/mood/trends.
type MoodTrends struct {
	DailyAverages map[string]float64 `json:"daily_averages"`
	Patterns      MoodPatterns       `json:"patterns"`
	TotalDays     int                `json:"total_days"`
}
