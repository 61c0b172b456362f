package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAudit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		path      string
		status    int
		wantEvent string
		wantLevel zapcore.Level
	}{
		{name: "successful login", path: "/api/auth/login", status: http.StatusOK, wantEvent: "auth_succeeded", wantLevel: zapcore.InfoLevel},
		{name: "registration conflict", path: "/api/auth/register", status: http.StatusBadRequest, wantEvent: "auth_failed", wantLevel: zapcore.WarnLevel},
		{name: "bad credentials", path: "/api/auth/login", status: http.StatusUnauthorized, wantEvent: "auth_failed", wantLevel: zapcore.WarnLevel},
		{name: "missing token", path: "/api/mood/current", status: http.StatusUnauthorized, wantEvent: "security_event", wantLevel: zapcore.WarnLevel},
		{name: "rate limited", path: "/api/journal", status: http.StatusTooManyRequests, wantEvent: "rate_limit_violation", wantLevel: zapcore.WarnLevel},
		{name: "oversized upload", path: "/api/voice/transcribe", status: http.StatusRequestEntityTooLarge, wantEvent: "payload_rejected", wantLevel: zapcore.WarnLevel},
		{name: "profile read not audited", path: "/api/auth/profile", status: http.StatusOK},
		{name: "ordinary request not audited", path: "/api/journal", status: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.DebugLevel)
			h := Audit(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, tt.path, nil))

			entries := logs.All()
			if tt.wantEvent == "" {
				if len(entries) != 0 {
					t.Fatalf("expected no audit log, got %q", entries[0].Message)
				}
				return
			}
			if len(entries) != 1 {
				t.Fatalf("expected 1 audit log, got %d", len(entries))
			}
			if entries[0].Message != tt.wantEvent {
				t.Errorf("event = %q, want %q", entries[0].Message, tt.wantEvent)
			}
			if entries[0].Level != tt.wantLevel {
				t.Errorf("level = %v, want %v", entries[0].Level, tt.wantLevel)
			}
			if got := entries[0].ContextMap()["status_code"]; got != int64(tt.status) {
				t.Errorf("status_code = %v, want %d", got, tt.status)
			}
		})
	}
}
