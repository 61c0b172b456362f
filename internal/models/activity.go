package models

import (
	"time"

	"github.com/google/uuid"
)

// Energy is the effort level an activity demands or a user has available.
type Energy string

const (
	EnergyLow  Energy = "low"
	EnergyMed  Energy = "med"
	EnergyHigh Energy = "high"
)

// ContextAny matches every requested context.
const ContextAny = "any"

// Activity is a read-only catalog entry.
type Activity struct {
	ID          string   `json:"id" yaml:"id" validate:"required,max=64"`
	Title       string   `json:"title" yaml:"title" validate:"required"`
	Description string   `json:"description,omitempty" yaml:"description"`
	MoodTargets []string `json:"mood_targets" yaml:"mood_targets" validate:"min=1,dive,mood_label"`
	DurationMin int      `json:"duration_min" yaml:"duration_min" validate:"min=1"`
	Energy      Energy   `json:"energy" yaml:"energy" validate:"energy"`
	Context     []string `json:"context" yaml:"context" validate:"min=1,dive,required"`
}

// ScoringRequest carries one recommendation query. Empty fields take the
// defaults applied by WithDefaults.
type ScoringRequest struct {
	Mood    string `json:"mood" validate:"required,mood_label"`
	Energy  Energy `json:"energy,omitempty" validate:"max=16"`
	TimeMin *int   `json:"time_min,omitempty" validate:"omitempty,min=0,max=1440"`
	Context string `json:"context,omitempty" validate:"omitempty,max=64"`
	UserID  string `json:"-"`
}

// Default values for optional ScoringRequest fields.
const (
	DefaultEnergy  = EnergyMed
	DefaultTimeMin = 10
	DefaultContext = ContextAny
)

// WithDefaults returns a copy with defaults filled in and the mood lowercased.
func (r ScoringRequest) WithDefaults() ScoringRequest {
	out := r
	out.Mood = normalizeLabel(r.Mood)
	if out.Energy == "" {
		out.Energy = DefaultEnergy
	}
	if out.TimeMin == nil {
		t := DefaultTimeMin
		out.TimeMin = &t
	}
	if out.Context == "" {
		out.Context = DefaultContext
	}
	return out
}

// Minutes returns TimeMin or the default when unset.
func (r ScoringRequest) Minutes() int {
	if r.TimeMin == nil {
		return DefaultTimeMin
	}
	return *r.TimeMin
}

// ScoredActivity is an Activity with its computed score in [0, 1].
type ScoredActivity struct {
	Activity
	Score float64 `json:"score"`
}

// RecommendationFilters echoes the effective request parameters.
type RecommendationFilters struct {
	Mood    string `json:"mood"`
	Energy  Energy `json:"energy"`
	TimeMin int    `json:"time_min"`
	Context string `json:"context"`
}

// Recommendations is the response body for an activity recommendation.
type Recommendations struct {
	Activities []ScoredActivity      `json:"activities"`
	Filters    RecommendationFilters `json:"filters"`
}

// ActivityLog records a completed activity. UserID is nil for anonymous callers.
type ActivityLog struct {
	ID         uuid.UUID  `json:"id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	ActivityID string     `json:"activity_id"`
	Ts         time.Time  `json:"ts"`
	Completed  bool       `json:"completed"`
}

// ActivityHistory is the response body for a completion history query.
type ActivityHistory struct {
	Logs           []ActivityLog `json:"logs"`
	TotalCompleted int           `json:"total_completed"`
}
