package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		wantStatus  int
	}{
		{name: "GET without content type", method: http.MethodGet, path: "/api/moods", wantStatus: http.StatusOK},
		{name: "POST json", method: http.MethodPost, path: "/api/moods", contentType: "application/json", wantStatus: http.StatusOK},
		{name: "POST json with charset", method: http.MethodPost, path: "/api/moods", contentType: "Application/JSON; charset=utf-8", wantStatus: http.StatusOK},
		{name: "POST missing content type", method: http.MethodPost, path: "/api/moods", wantStatus: http.StatusBadRequest},
		{name: "POST form", method: http.MethodPost, path: "/api/moods", contentType: "text/plain", wantStatus: http.StatusUnsupportedMediaType},
		{name: "multipart on voice", method: http.MethodPost, path: "/api/voice/transcribe", contentType: "multipart/form-data; boundary=x", wantStatus: http.StatusOK},
		{name: "multipart elsewhere", method: http.MethodPost, path: "/api/journal", contentType: "multipart/form-data; boundary=x", wantStatus: http.StatusUnsupportedMediaType},
	}

	mw := ContentType(zap.NewNop(), "/api/voice/")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			mw(okHandler()).ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	t.Parallel()

	mw := MaxRequestSize(8, zap.NewNop(), SizeLimit{Prefix: "/api/voice/", MaxBytes: 64})

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{name: "small body", path: "/api/journal", body: "1234", wantStatus: http.StatusOK},
		{name: "too large", path: "/api/journal", body: strings.Repeat("x", 9), wantStatus: http.StatusRequestEntityTooLarge},
		{name: "override allows more", path: "/api/voice/transcribe", body: strings.Repeat("x", 32), wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			mw(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body)))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	SecurityHeaders(true)(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/journal", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	// No TLS on the test request.
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS set on plain HTTP request")
	}
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	w := httptest.NewRecorder()
	Timeout(20*time.Millisecond)(slow).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Request timed out") {
		t.Errorf("body = %q", w.Body.String())
	}
}
