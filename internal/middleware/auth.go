package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/benvon/mindful-harmony/internal/database"
	logpkg "github.com/benvon/mindful-harmony/internal/logger"
	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/benvon/mindful-harmony/internal/request"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenVerifier validates a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(raw string) (uuid.UUID, error)
}

// UserLookup loads the user a token refers to.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// UserFromContext extracts the user from the request context
func UserFromContext(r *http.Request) *models.User {
	return request.UserFromContext(r)
}

// Authenticator resolves bearer tokens to users.
type Authenticator struct {
	verifier TokenVerifier
	users    UserLookup
	logger   *zap.Logger
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(verifier TokenVerifier, users UserLookup, logger *zap.Logger) *Authenticator {
	return &Authenticator{verifier: verifier, users: users, logger: logger}
}

// Required rejects requests without a valid bearer token.
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return a.handler(next, false)
}

// Optional lets anonymous requests through but still rejects a token
// that is present and invalid.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return a.handler(next, true)
}

func (a *Authenticator) handler(next http.Handler, optional bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if optional {
				next.ServeHTTP(w, r)
				return
			}
			respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "Missing Authorization header", a.logger)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "Invalid Authorization header format", a.logger)
			return
		}

		userID, err := a.verifier.Verify(parts[1])
		if err != nil {
			a.logger.Debug("token_verification_failed",
				zap.String("error", logpkg.SanitizeError(err)),
			)
			respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token", a.logger)
			return
		}

		user, err := a.users.GetByID(r.Context(), userID)
		if errors.Is(err, database.ErrNotFound) {
			respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token", a.logger)
			return
		}
		if err != nil {
			// Actual database error (connection failure, timeout, etc.)
			a.logger.Error("failed_to_load_authenticated_user",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			respondErrorJSON(w, r, http.StatusInternalServerError, "Internal Server Error", "Database error", a.logger)
			return
		}

		next.ServeHTTP(w, r.WithContext(request.WithUser(r.Context(), user)))
	})
}
