package ai

import (
	"strings"

	"github.com/benvon/mindful-harmony/internal/models"
)

// crisisPhrases are matched case-insensitively as substrings.
var crisisPhrases = []string{
	"suicide",
	"kill myself",
	"want to die",
	"end it all",
	"no reason to live",
	"better off dead",
	"hurt myself",
	"self harm",
	"self-harm",
	"cutting",
	"overdose",
	"hopeless",
	"helpless",
	"worthless",
	"burden",
	"everyone would be better off",
}

// CrisisReply opens every crisis response.
const CrisisReply = "If you're having thoughts of self-harm or suicide, please know that help is available 24/7. " +
	"You don't have to go through this alone. Please reach out to one of the resources below right now."

// DefaultCrisisResources returns a fresh copy of the fixed resource list.
func DefaultCrisisResources() []models.CrisisResource {
	return []models.CrisisResource{
		{Label: "988 Suicide & Crisis Lifeline (call or text 988)", URL: "https://988lifeline.org", Region: "US"},
		{Label: "Crisis Text Line (text HOME to 741741)", URL: "https://www.crisistextline.org", Region: "US"},
		{Label: "Emergency services (911)", URL: "tel:911", Region: "US"},
		{Label: "Find a local helpline", URL: "https://findahelpline.com", Region: "INTL"},
	}
}

// DetectCrisis reports whether text contains any high-risk phrase.
func DetectCrisis(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range crisisPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// ApplyCrisisOverride forces the safety script onto a.
func ApplyCrisisOverride(a models.Analysis) models.Analysis {
	a.Risk = models.RiskCrisis
	a.Intensity = 5
	a.Reply = CrisisReply
	a.CrisisResources = DefaultCrisisResources()
	a.MicroAction = defaultMicroAction()
	return a
}
