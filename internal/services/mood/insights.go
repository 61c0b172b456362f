// Package mood derives feedback, statistics and trends from mood entries.
package mood

import (
	"math"
	"sort"
	"time"

	"github.com/benvon/mindful-harmony/internal/models"
)

// Intensity bounds for submitted moods (1-10 scale).
const (
	MinIntensity     = 1
	MaxIntensity     = 10
	DefaultIntensity = 5

	highIntensity = 8
	lowIntensity  = 3

	// trendWindowDays is how many days at each end of the range are compared.
	trendWindowDays = 7
	trendThreshold  = 1.0
)

type insightGroup struct {
	moods       []string
	message     string
	suggestions []string
}

var insightGroups = []insightGroup{
	{
		moods:       []string{"happy", "joyful", "excited"},
		message:     "Great to see you're feeling positive! Keep up the good energy.",
		suggestions: []string{"Share your joy with friends", "Try some upbeat music", "Take a walk in nature"},
	},
	{
		moods:       []string{"sad", "depressed", "down"},
		message:     "It's okay to feel this way. Remember, this too shall pass.",
		suggestions: []string{"Practice self-compassion", "Listen to calming music", "Reach out to a friend"},
	},
	{
		moods:       []string{"anxious", "worried", "stressed"},
		message:     "Anxiety is a natural response. Let's help you find some calm.",
		suggestions: []string{"Try deep breathing exercises", "Listen to soothing sounds", "Write down your thoughts"},
	},
	{
		moods:       []string{"angry", "frustrated", "irritated"},
		message:     "Anger is a valid emotion. Let's channel it constructively.",
		suggestions: []string{"Take a few deep breaths", "Go for a walk or run", "Write about what's bothering you"},
	},
}

var defaultInsight = insightGroup{
	message:     "Thank you for sharing your mood. How can we support you today?",
	suggestions: []string{"Try some mood-lifting activities", "Connect with friends", "Practice mindfulness"},
}

// Insights returns feedback for a submitted mood. mood must be lowercased.
func Insights(mood string, intensity int) models.MoodInsights {
	group := defaultInsight
	for _, g := range insightGroups {
		if containsString(g.moods, mood) {
			group = g
			break
		}
	}

	msg := group.message
	switch {
	case intensity >= highIntensity:
		msg += " Your mood intensity is quite high. Consider reaching out for support if needed."
	case intensity <= lowIntensity:
		msg += " Your mood seems quite low. Remember, it's okay to ask for help."
	}
	return models.MoodInsights{
		Message:     msg,
		Suggestions: append([]string(nil), group.suggestions...),
	}
}

// Stats summarizes entries. It returns nil for no entries. Ties for the
// most common mood go to the mood seen first.
func Stats(entries []models.MoodEntry) *models.MoodStats {
	if len(entries) == 0 {
		return nil
	}

	counts := make(map[string]int)
	sums := make(map[string]int)
	var order []string
	total := 0
	for _, e := range entries {
		if _, seen := counts[e.Mood]; !seen {
			order = append(order, e.Mood)
		}
		counts[e.Mood]++
		sums[e.Mood] += e.Intensity
		total += e.Intensity
	}

	avgs := make(map[string]float64, len(counts))
	for m, c := range counts {
		avgs[m] = float64(sums[m]) / float64(c)
	}

	mostCommon := order[0]
	for _, m := range order[1:] {
		if counts[m] > counts[mostCommon] {
			mostCommon = m
		}
	}

	return &models.MoodStats{
		TotalEntries:       len(entries),
		AverageIntensity:   round2(float64(total) / float64(len(entries))),
		MoodDistribution:   counts,
		MoodAvgIntensities: avgs,
		MostCommonMood:     mostCommon,
	}
}

// Trends groups entries by UTC calendar day and compares the mean of the
// first and last seven days. It returns nil for no entries.
func Trends(entries []models.MoodEntry) *models.MoodTrends {
	if len(entries) == 0 {
		return nil
	}

	type bucket struct{ sum, n int }
	days := make(map[string]*bucket)
	for _, e := range entries {
		key := e.Timestamp.UTC().Format(time.DateOnly)
		b, ok := days[key]
		if !ok {
			b = &bucket{}
			days[key] = b
		}
		b.sum += e.Intensity
		b.n++
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	daily := make(map[string]float64, len(keys))
	series := make([]float64, len(keys))
	for i, k := range keys {
		avg := round2(float64(days[k].sum) / float64(days[k].n))
		daily[k] = avg
		series[i] = avg
	}

	var patterns models.MoodPatterns
	if len(series) >= trendWindowDays {
		earlier := mean(series[:trendWindowDays])
		recent := mean(series[len(series)-trendWindowDays:])
		switch {
		case recent > earlier+trendThreshold:
			patterns.Improving = true
		case recent < earlier-trendThreshold:
			patterns.Declining = true
		default:
			patterns.Stable = true
		}
	}

	return &models.MoodTrends{
		DailyAverages: daily,
		Patterns:      patterns,
		TotalDays:     len(keys),
	}
}

func mean(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
