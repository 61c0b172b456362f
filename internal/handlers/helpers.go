package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/benvon/mindful-harmony/internal/request"
	"github.com/benvon/mindful-harmony/internal/services/ai"
	"github.com/benvon/mindful-harmony/internal/validation"
	"github.com/gorilla/mux"
)

// maxErrorMessageLength bounds messages echoed to clients.
const maxErrorMessageLength = 200

// AuthMiddleware attaches the bearer-token user to the request context.
type AuthMiddleware interface {
	Required(next http.Handler) http.Handler
	Optional(next http.Handler) http.Handler
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage truncates client-facing messages and strips
// control characters.
func sanitizeErrorMessage(message string) string {
	sanitized := validation.SanitizeText(message)
	if len(sanitized) > maxErrorMessageLength {
		sanitized = sanitized[:maxErrorMessageLength] + "..."
	}
	return sanitized
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizeErrorMessage(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func badRequest(w http.ResponseWriter, message string) {
	respondJSONError(w, http.StatusBadRequest, "Bad Request", message)
}

func internalError(w http.ResponseWriter, message string) {
	respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", message)
}

func notFound(w http.ResponseWriter, message string) {
	respondJSONError(w, http.StatusNotFound, "Not Found", message)
}

// decodeBody decodes the JSON body into v and writes a 400 on failure.
// An empty body decodes to the zero value so required-field checks
// produce their own messages.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := request.DecodeJSON(r, v); err != nil {
		if errors.Is(err, request.ErrEmptyBody) {
			return true
		}
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return false
		}
		badRequest(w, "Invalid request body")
		return false
	}
	return true
}

// validateBody runs struct validation and writes a 400 on failure.
func validateBody(w http.ResponseWriter, v any) bool {
	if err := validation.Validate.Struct(v); err != nil {
		badRequest(w, validation.FirstError(err))
		return false
	}
	return true
}

// requireUser returns the authenticated user or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return nil, false
	}
	return user, true
}

// providerContext carries request and user ids into AI provider logging.
func providerContext(r *http.Request) context.Context {
	ctx := ai.WithRequestID(r.Context(), request.RequestID(r.Context()))
	if user := request.UserFromContext(r); user != nil {
		ctx = ai.WithUserID(ctx, user.ID)
	}
	return ctx
}

// wrap applies mw to a single route handler.
func wrap(mw func(http.Handler) http.Handler, h http.HandlerFunc) http.Handler {
	if mw == nil {
		return h
	}
	return mw(h)
}

// routeAuth returns the required and optional middleware, tolerating a nil
// AuthMiddleware in tests that inject users directly.
func routeAuth(auth AuthMiddleware) (required, optional func(http.Handler) http.Handler) {
	if auth == nil {
		return nil, nil
	}
	return auth.Required, auth.Optional
}

func pathVar(r *http.Request, name string) string {
	return strings.TrimSpace(mux.Vars(r)[name])
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
