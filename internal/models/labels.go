package models

import "strings"

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeMood lowercases and trims a mood label for matching and storage.
func NormalizeMood(mood string) string {
	return normalizeLabel(mood)
}
