package ai

import (
	"strings"

	"github.com/benvon/mindful-harmony/internal/models"
)

const (
	fallbackSummary = "Thank you for sharing your thoughts"
	fallbackReply   = "I hear you. Consider a minute of slow breathing to reset."
	neutralEmotion  = "neutral"
)

// emotionRules are checked in order; the first rule with a matching keyword wins.
var emotionRules = []struct {
	emotion   string
	intensity int
	keywords  []string
}{
	{"sad", 4, []string{"sad", "depressed", "down", "hopeless"}},
	{"anxious", 3, []string{"anxious", "worried", "nervous", "stress"}},
	{"angry", 3, []string{"angry", "frustrated", "mad"}},
	{"happy", 2, []string{"happy", "joy", "excited"}},
}

func defaultMicroAction() models.MicroAction {
	return models.MicroAction{Type: "breathing", DurationSec: 60}
}

// Fallback classifies text with keyword rules. It is deterministic and
// always returns a complete Analysis.
func Fallback(text string) models.Analysis {
	lower := strings.ToLower(text)
	emotion, intensity := neutralEmotion, 2
	for _, rule := range emotionRules {
		if containsAny(lower, rule.keywords) {
			emotion, intensity = rule.emotion, rule.intensity
			break
		}
	}
	return models.Analysis{
		Emotion:         emotion,
		Intensity:       intensity,
		Risk:            models.RiskNone,
		Summary:         fallbackSummary,
		Reply:           fallbackReply,
		MicroAction:     defaultMicroAction(),
		CrisisResources: []models.CrisisResource{},
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
