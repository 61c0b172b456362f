package middleware

import (
	"net/http"
	"strings"

	logpkg "github.com/benvon/mindful-harmony/internal/logger"
	"github.com/benvon/mindful-harmony/internal/request"
	"go.uber.org/zap"
)

const authPathPrefix = "/api/auth/"

// auditEvent names the security event a response represents, or "" when
// the response is not audited. Every login and registration outcome is
// recorded; elsewhere only rejections are.
func auditEvent(path string, status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return "rate_limit_violation"
	case status == http.StatusRequestEntityTooLarge:
		return "payload_rejected"
	case strings.HasPrefix(path, authPathPrefix) && (strings.HasSuffix(path, "/login") || strings.HasSuffix(path, "/register")):
		if status < http.StatusBadRequest {
			return "auth_succeeded"
		}
		return "auth_failed"
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "security_event"
	}
	return ""
}

// Audit logs security-related events: authentication outcomes, rejected
// credentials, rate limit violations and oversized payloads.
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &auditResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			event := auditEvent(r.URL.Path, wrapped.statusCode)
			if event == "" {
				return
			}
			fields := []zap.Field{
				zap.Int("status_code", wrapped.statusCode),
				zap.String("request_id", request.RequestID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
			}
			if event == "auth_succeeded" {
				logger.Info(event, fields...)
				return
			}
			logger.Warn(event, fields...)
		})
	}
}

type auditResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (aw *auditResponseWriter) WriteHeader(code int) {
	aw.statusCode = code
	aw.ResponseWriter.WriteHeader(code)
}
