package models

import "strings"

// Risk is the assessed safety level of a journal entry.
type Risk string

const (
	RiskNone     Risk = "none"
	RiskLow      Risk = "low"
	RiskElevated Risk = "elevated"
	RiskCrisis   Risk = "crisis"
)

// ParseRisk matches s case-insensitively against the known levels.
func ParseRisk(s string) (Risk, bool) {
	switch Risk(strings.ToLower(s)) {
	case RiskNone:
		return RiskNone, true
	case RiskLow:
		return RiskLow, true
	case RiskElevated:
		return RiskElevated, true
	case RiskCrisis:
		return RiskCrisis, true
	}
	return "", false
}

// MicroAction is a short coping exercise attached to every analysis.
type MicroAction struct {
	Type        string `json:"type"`
	DurationSec int    `json:"duration_sec"`
}

// CrisisResource points to a source of immediate help.
type CrisisResource struct {
	Label  string `json:"label"`
	URL    string `json:"url"`
	Region string `json:"region"`
}

// Analysis is the structured reply to a journal entry. Every field is
// always populated; CrisisResources is never nil.
type Analysis struct {
	Emotion         string           `json:"emotion"`
	Intensity       int              `json:"intensity" validate:"min=1,max=5"`
	Risk            Risk             `json:"risk" validate:"risk"`
	Summary         string           `json:"summary"`
	Reply           string           `json:"reply"`
	MicroAction     MicroAction      `json:"micro_action"`
	CrisisResources []CrisisResource `json:"crisis_resources" validate:"required"`
}

// AnalysisSource records which path produced an Analysis.
type AnalysisSource string

const (
	AnalysisSourceProvider AnalysisSource = "provider"
	AnalysisSourceFallback AnalysisSource = "fallback"
	AnalysisSourceCrisis   AnalysisSource = "crisis"
)
