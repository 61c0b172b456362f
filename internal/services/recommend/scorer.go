// Package recommend ranks catalog activities against a user's mood,
// energy, available time and situation.
package recommend

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/benvon/mindful-harmony/internal/logger"
	"github.com/benvon/mindful-harmony/internal/models"
	"go.uber.org/zap"
)

// Factor weights. They sum to 1.
const (
	WeightMood     = 0.45
	WeightDuration = 0.25
	WeightEnergy   = 0.15
	WeightContext  = 0.10
	WeightNovelty  = 0.05
)

const (
	// MaxRecommendations is the length cap of a ranked result.
	MaxRecommendations = 5
	// NoveltyWindow is how far back a completion counts as recent.
	NoveltyWindow = 7 * 24 * time.Hour

	durationTolerance   = 2
	durationDecayPerMin = 0.1
	durationFloor       = 0.1
	adjacentMoodFit     = 0.5
	energyMismatchFit   = 0.5
	contextMismatchFit  = 0.3
	recentNovelty       = 0.3
)

// moodGroups relates moods to neighbours. It is deliberately not
// symmetric: restless points at anxious but not the reverse.
var moodGroups = map[string][]string{
	"anxious":     {"stressed", "overwhelmed"},
	"stressed":    {"anxious", "overwhelmed"},
	"overwhelmed": {"anxious", "stressed"},
	"low":         {"sad"},
	"sad":         {"low"},
	"restless":    {"anxious"},
}

// HistoryLookup reports the most recent completion of an activity by a user.
type HistoryLookup interface {
	LastCompleted(ctx context.Context, activityID, userID string) (time.Time, bool, error)
}

// Scorer ranks activities. It holds no mutable state and is safe for
// concurrent use.
type Scorer struct {
	history HistoryLookup
	now     func() time.Time
	logger  *zap.Logger
}

// Option customizes a Scorer.
type Option func(*Scorer)

// WithClock overrides the time source used for the novelty window.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

// NewScorer creates a Scorer. history may be nil, in which case every
// activity is treated as novel.
func NewScorer(history HistoryLookup, logger *zap.Logger, opts ...Option) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scorer{history: history, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScoreAndRank scores every catalog entry and returns the best
// MaxRecommendations, highest first. Equal scores keep catalog order.
// req.Mood must already be validated as non-empty.
func (s *Scorer) ScoreAndRank(ctx context.Context, catalog *Catalog, req models.ScoringRequest) []models.ScoredActivity {
	req = req.WithDefaults()
	activities := catalog.Activities()
	scored := make([]models.ScoredActivity, 0, len(activities))
	for _, a := range activities {
		scored = append(scored, models.ScoredActivity{
			Activity: a,
			Score:    Score(a, req, s.novelty(ctx, a.ID, req.UserID)),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > MaxRecommendations {
		scored = scored[:MaxRecommendations]
	}
	return scored
}

// novelty is 1 unless the user completed the activity within NoveltyWindow.
// Lookup errors count as no history.
func (s *Scorer) novelty(ctx context.Context, activityID, userID string) float64 {
	if userID == "" || s.history == nil {
		return 1.0
	}
	last, ok, err := s.history.LastCompleted(ctx, activityID, userID)
	if err != nil {
		s.logger.Warn("activity_history_lookup_failed",
			zap.String("activity_id", logger.SanitizeLabel(activityID)),
			zap.String("user_id", logger.SanitizeUserID(userID)),
			zap.Error(err),
		)
		return 1.0
	}
	if ok && !last.Before(s.now().Add(-NoveltyWindow)) {
		return recentNovelty
	}
	return 1.0
}

// Score combines the weighted factors for one activity. req must have
// defaults applied.
func Score(a models.Activity, req models.ScoringRequest, novelty float64) float64 {
	total := WeightMood*MoodFit(req.Mood, a.MoodTargets) +
		WeightDuration*DurationFit(a.DurationMin, req.Minutes()) +
		WeightEnergy*EnergyFit(a.Energy, req.Energy) +
		WeightContext*ContextFit(req.Context, a.Context) +
		WeightNovelty*novelty
	// Guard against float rounding past the bounds.
	return math.Max(0, math.Min(1, total))
}

// MoodFit is 1 for an exact target, 0.5 for an adjacent mood, else 0.
func MoodFit(mood string, targets []string) float64 {
	for _, t := range targets {
		if t == mood {
			return 1.0
		}
	}
	if moodRelated(mood, targets) {
		return adjacentMoodFit
	}
	return 0
}

// moodRelated consults moodGroups in both directions.
func moodRelated(mood string, targets []string) bool {
	for _, t := range targets {
		if contains(moodGroups[t], mood) || contains(moodGroups[mood], t) {
			return true
		}
	}
	return false
}

// DurationFit is 1 within two minutes of the wanted time, then decays by
// 0.1 per extra minute down to a floor of 0.1.
func DurationFit(activityMin, wantMin int) float64 {
	diff := activityMin - wantMin
	if diff < 0 {
		diff = -diff
	}
	if diff <= durationTolerance {
		return 1.0
	}
	return math.Max(durationFloor, 1.0-durationDecayPerMin*float64(diff-durationTolerance))
}

// EnergyFit is 1 on a match and 0.5 otherwise.
func EnergyFit(activity, want models.Energy) float64 {
	if activity == want {
		return 1.0
	}
	return energyMismatchFit
}

// ContextFit is 1 when the activity lists the context or "any", else 0.3.
func ContextFit(want string, contexts []string) float64 {
	if contains(contexts, want) || contains(contexts, models.ContextAny) {
		return 1.0
	}
	return contextMismatchFit
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
