package ai

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/benvon/mindful-harmony/internal/models"
)

const (
	placeholderText  = "Not specified"
	defaultIntensity = 3
)

// ErrNotJSONObject is returned when provider output is not a JSON object.
var ErrNotJSONObject = errors.New("provider output is not a JSON object")

// StripCodeFences removes a surrounding markdown code fence. When the
// output starts with backticks, all leading and trailing backticks are
// dropped along with the first line (the fence's language tag).
func StripCodeFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.Trim(t, "`")
	if _, rest, ok := strings.Cut(t, "\n"); ok {
		t = rest
	}
	return t
}

// ParseAnalysis decodes raw provider output and repairs every field.
// It fails only when the output is not a JSON object.
func ParseAnalysis(raw string) (models.Analysis, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(StripCodeFences(raw)), &obj); err != nil {
		return models.Analysis{}, err
	}
	if obj == nil {
		return models.Analysis{}, ErrNotJSONObject
	}
	return repair(obj), nil
}

func repair(obj map[string]any) models.Analysis {
	return models.Analysis{
		Emotion:         textField(obj, "emotion"),
		Intensity:       intensityField(obj["intensity"]),
		Risk:            riskField(obj["risk"]),
		Summary:         textField(obj, "summary"),
		Reply:           textField(obj, "reply"),
		MicroAction:     microActionField(obj["micro_action"]),
		CrisisResources: crisisResourcesField(obj["crisis_resources"]),
	}
}

func textField(obj map[string]any, key string) string {
	if s, ok := obj[key].(string); ok {
		return s
	}
	return placeholderText
}

func intensityField(v any) int {
	n, ok := toInt(v)
	if !ok || n < 1 || n > 5 {
		return defaultIntensity
	}
	return n
}

// toInt truncates numbers toward zero and parses integer strings.
func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		t := math.Trunc(x)
		if t < math.MinInt32 || t > math.MaxInt32 {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		return n, err == nil
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func riskField(v any) models.Risk {
	s, ok := v.(string)
	if !ok {
		return models.RiskNone
	}
	if r, ok := models.ParseRisk(s); ok {
		return r
	}
	return models.RiskNone
}

func microActionField(v any) models.MicroAction {
	m, ok := v.(map[string]any)
	if !ok {
		return defaultMicroAction()
	}
	typ, typeOK := m["type"].(string)
	dur, durOK := toInt(m["duration_sec"])
	if !typeOK || !durOK {
		return defaultMicroAction()
	}
	return models.MicroAction{Type: typ, DurationSec: dur}
}

func crisisResourcesField(v any) []models.CrisisResource {
	list, ok := v.([]any)
	out := make([]models.CrisisResource, 0, len(list))
	if !ok {
		return out
	}
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		label, _ := m["label"].(string)
		url, _ := m["url"].(string)
		region, _ := m["region"].(string)
		if label == "" && url == "" {
			continue
		}
		out = append(out, models.CrisisResource{Label: label, URL: url, Region: region})
	}
	return out
}
