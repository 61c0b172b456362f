package ai

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   ErrorKind
	}{
		{name: "unauthorized", err: genai.APIError{Code: http.StatusUnauthorized, Status: "UNAUTHENTICATED"}, wantStatus: 401, wantKind: KindAuth},
		{name: "wrapped forbidden", err: fmt.Errorf("generate: %w", genai.APIError{Code: http.StatusForbidden}), wantStatus: 403, wantKind: KindAuth},
		{name: "pointer too many requests", err: &genai.APIError{Code: http.StatusTooManyRequests}, wantStatus: 429, wantKind: KindRateLimited},
		{name: "server error", err: genai.APIError{Code: http.StatusInternalServerError, Message: "internal"}, wantStatus: 500, wantKind: KindTransport},
		{name: "network error", err: errors.New("dial tcp: connection refused"), wantStatus: 0, wantKind: KindTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status := geminiStatus(tt.err)
			if status != tt.wantStatus {
				t.Errorf("geminiStatus = %d, want %d", status, tt.wantStatus)
			}
			ge := newGenerationError(ProviderGemini, status, tt.err)
			if ge.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", ge.Kind, tt.wantKind)
			}
			if tt.wantKind == KindAuth && ge.Retryable() {
				t.Error("auth failures must not be retryable")
			}
		})
	}
}
