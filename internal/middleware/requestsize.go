package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultMaxRequestSize is the default maximum request body size (1MB)
	DefaultMaxRequestSize int64 = 1 << 20
	// MaxUploadSize bounds audio uploads.
	MaxUploadSize int64 = 10 << 20
)

// SizeLimit raises or lowers the body limit for paths under Prefix.
type SizeLimit struct {
	Prefix   string
	MaxBytes int64
}

// MaxRequestSize limits the size of request bodies. The first matching
// override wins; other paths get maxBytes.
func MaxRequestSize(maxBytes int64, logger *zap.Logger, overrides ...SizeLimit) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit := maxBytes
			for _, o := range overrides {
				if o.MaxBytes > 0 && strings.HasPrefix(r.URL.Path, o.Prefix) {
					limit = o.MaxBytes
					break
				}
			}

			// Check Content-Length header early if present
			if r.ContentLength > limit {
				respondErrorJSON(w, r, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Request body too large", logger)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			defer r.Body.Close()

			next.ServeHTTP(w, r)
		})
	}
}
