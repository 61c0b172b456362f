package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/benvon/mindful-harmony/internal/logger"
)

type contextKey string

const (
	userIDContextKey    contextKey = "user_id"
	entryIDContextKey   contextKey = "entry_id"
	requestIDContextKey contextKey = "request_id"
)

// WithUserID attaches a user id for provider logging.
func WithUserID(ctx context.Context, id fmt.Stringer) context.Context {
	return context.WithValue(ctx, userIDContextKey, id.String())
}

// WithEntryID attaches a journal entry id for provider logging.
func WithEntryID(ctx context.Context, id fmt.Stringer) context.Context {
	return context.WithValue(ctx, entryIDContextKey, id.String())
}

// WithRequestID attaches a request id for provider logging.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

func stringFromContext(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// ExtractRequestID returns the request id attached by WithRequestID.
func ExtractRequestID(ctx context.Context) string { return stringFromContext(ctx, requestIDContextKey) }

// ExtractUserID returns the user id attached by WithUserID.
func ExtractUserID(ctx context.Context) string { return stringFromContext(ctx, userIDContextKey) }

// ExtractEntryID returns the entry id attached by WithEntryID.
func ExtractEntryID(ctx context.Context) string { return stringFromContext(ctx, entryIDContextKey) }

const (
	// MaxPreviewLength bounds prompt and response previews outside debug mode.
	MaxPreviewLength = 200
	// RedactedValue replaces secret material in logs.
	RedactedValue = "[REDACTED]"
)

// SanitizeAPIKey keeps only the first and last four characters of a key.
func SanitizeAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return RedactedValue
	}
	return apiKey[:4] + RedactedValue + apiKey[len(apiKey)-4:]
}

// SanitizeResponse returns a log-safe preview of provider output.
// Journal text is never passed here.
func SanitizeResponse(response string, fullLog bool) string {
	if fullLog {
		return logger.SanitizeDebugContent(response)
	}
	return logger.SanitizeString(response, MaxPreviewLength)
}

// HashUserID returns a short stable digest of a user id.
func HashUserID(userID string) string {
	if userID == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(hash[:])[:16]
}
