package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength bounds URL paths in logs.
	MaxPathLength = 500
	// MaxUserIDLength bounds user IDs in logs (UUIDs are 36 chars).
	MaxUserIDLength = 128
	// MaxLabelLength bounds short user-supplied labels such as moods and activity IDs.
	MaxLabelLength = 64
	// MaxErrorMessageLength bounds error messages in logs.
	MaxErrorMessageLength = 1000
	// MaxGeneralStringLength is used when no explicit bound is given.
	MaxGeneralStringLength = 2000
	// MaxDebugContentLength bounds prompts and provider responses logged in debug mode.
	MaxDebugContentLength = 10000
)

// SanitizeString strips control characters, repairs invalid UTF-8 and
// truncates to maxLength bytes.
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' {
			b.WriteRune(r)
		}
	}
	s = b.String()
	if len(s) > maxLength {
		s = strings.ToValidUTF8(s[:maxLength], "") + "..."
	}
	return s
}

// SanitizePath prepares a request path for logging.
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeLabel prepares a mood, energy, context or activity id for logging.
func SanitizeLabel(label string) string {
	return SanitizeString(label, MaxLabelLength)
}

// SanitizeError prepares an error for logging.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// SanitizeUserID prepares a user id for logging.
func SanitizeUserID(userID string) string {
	return SanitizeString(userID, MaxUserIDLength)
}

// SanitizeDebugContent prepares provider prompts and responses for debug logs.
func SanitizeDebugContent(content string) string {
	return SanitizeString(content, MaxDebugContentLength)
}
