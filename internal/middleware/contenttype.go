package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ContentType validates Content-Type headers for requests with bodies.
// Requests whose path starts with one of multipartPrefixes may also send
// multipart/form-data.
func ContentType(logger *zap.Logger, multipartPrefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Only validate Content-Type for methods that typically have bodies
			if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
				contentType := strings.ToLower(r.Header.Get("Content-Type"))

				if contentType == "" {
					respondErrorJSON(w, r, http.StatusBadRequest, "Bad Request", "Content-Type header is required", logger)
					return
				}

				// Allow application/json with charset and similar parameters
				allowed := strings.HasPrefix(contentType, "application/json")
				if !allowed && strings.HasPrefix(contentType, "multipart/form-data") {
					for _, prefix := range multipartPrefixes {
						if strings.HasPrefix(r.URL.Path, prefix) {
							allowed = true
							break
						}
					}
				}

				if !allowed {
					respondErrorJSON(w, r, http.StatusUnsupportedMediaType, "Unsupported Media Type", "Content-Type must be application/json", logger)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
