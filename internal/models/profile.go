package models

import (
	"time"

	"github.com/google/uuid"
)

// UpdateProfileRequest is the body of PUT /api/profile/update. Nil fields
// are left unchanged.
type UpdateProfileRequest struct {
	Name           *string   `json:"name" validate:"omitempty,max=100"`
	ProfilePic     *string   `json:"profile_pic" validate:"omitempty,url,max=2048"`
	FavoriteGenres *[]string `json:"favorite_genres" validate:"omitempty,max=20,dive,required,max=64"`
}

// BiometricEntry is one self-reported set of measurements. Unset
// measurements are nil.
type BiometricEntry struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	HeartRate       *int      `json:"heart_rate"`
	SleepHours      *float64  `json:"sleep_hours"`
	ExerciseMinutes *int      `json:"exercise_minutes"`
	Notes           string    `json:"notes"`
	Timestamp       time.Time `json:"timestamp"`
}

// LogBiometricsRequest is the body of POST /api/profile/biometrics.
type LogBiometricsRequest struct {
	HeartRate       *int     `json:"heart_rate" validate:"omitempty,min=20,max=250"`
	SleepHours      *float64 `json:"sleep_hours" validate:"omitempty,min=0,max=24"`
	ExerciseMinutes *int     `json:"exercise_minutes" validate:"omitempty,min=0,max=1440"`
	Notes           string   `json:"notes" validate:"max=1000"`
}

// HasMeasurement reports whether at least one measurement is set.
func (r LogBiometricsRequest) HasMeasurement() bool {
	return r.HeartRate != nil || r.SleepHours != nil || r.ExerciseMinutes != nil
}

// MetricSummary summarizes one biometric measurement.
type MetricSummary struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Count   int     `json:"count"`
}

// BiometricStats summarizes biometric entries. A metric is nil when no
// entry recorded it.
type BiometricStats struct {
	TotalEntries    int            `json:"total_entries"`
	HeartRate       *MetricSummary `json:"heart_rate,omitempty"`
	SleepHours      *MetricSummary `json:"sleep_hours,omitempty"`
	ExerciseMinutes *MetricSummary `json:"exercise_minutes,omitempty"`
}

// JournalStats summarizes journal entries in a period.
type JournalStats struct {
	TotalEntries         int     `json:"total_entries"`
	TotalWords           int     `json:"total_words"`
	AverageWordsPerEntry float64 `json:"average_words_per_entry"`
}

// ActivityStats summarizes completed activities in a period. Durations
// come from the catalog; unknown activities count zero minutes.
type ActivityStats struct {
	TotalActivities      int            `json:"total_activities"`
	TotalDurationMinutes int            `json:"total_duration_minutes"`
	AverageDuration      float64        `json:"average_duration"`
	ActivityDistribution map[string]int `json:"activity_distribution"`
}

// PlaylistPeriodStats summarizes playlists generated in a period.
type PlaylistPeriodStats struct {
	TotalPlaylists   int            `json:"total_playlists"`
	TotalTracks      int            `json:"total_tracks"`
	MoodDistribution map[string]int `json:"mood_distribution"`
}

// ProfileStats is the response body of GET /api/profile/stats.
type ProfileStats struct {
	User           *User               `json:"user"`
	PeriodDays     int                 `json:"period_days"`
	MoodStats      *MoodStats          `json:"mood_stats"`
	JournalStats   JournalStats        `json:"journal_stats"`
	ActivityStats  ActivityStats       `json:"activity_stats"`
	BiometricStats BiometricStats      `json:"biometric_stats"`
	MusicStats     PlaylistPeriodStats `json:"music_stats"`
}

// ProfileInsight is one personalized observation.
type ProfileInsight struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}
