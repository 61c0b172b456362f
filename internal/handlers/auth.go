package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/mindful-harmony/internal/database"
	"github.com/benvon/mindful-harmony/internal/logger"
	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/benvon/mindful-harmony/internal/services/auth"
	"github.com/benvon/mindful-harmony/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxUsernameLength = 64

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, time.Time, error)
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	users  database.UserRepositoryInterface
	tokens TokenIssuer
	logger *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users database.UserRepositoryInterface, tokens TokenIssuer, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{users: users, tokens: tokens, logger: log}
}

// RegisterRoutes registers auth routes on the given router
// The router should already have the /api/auth prefix
func (h *AuthHandler) RegisterRoutes(r *mux.Router, authMW AuthMiddleware) {
	required, _ := routeAuth(authMW)
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.Handle("/profile", wrap(required, h.Profile)).Methods("GET")
}

// Register creates an account and returns an access token for it.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Username = validation.SanitizeText(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	for _, f := range []struct{ name, value string }{
		{"username", req.Username},
		{"email", req.Email},
		{"password", req.Password},
	} {
		if f.value == "" {
			badRequest(w, f.name+" is required")
			return
		}
	}
	if len(req.Username) > maxUsernameLength {
		badRequest(w, "Username is too long")
		return
	}
	if !validation.ValidEmail(req.Email) {
		badRequest(w, "Invalid email format")
		return
	}
	if len(req.Password) < auth.MinPasswordLength {
		badRequest(w, "Password must be at least 6 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("password_hash_failed", zap.Error(err))
		internalError(w, "Failed to register user")
		return
	}
	user := &models.User{Username: req.Username, Email: req.Email, PasswordHash: hash}
	err = h.users.Create(r.Context(), user)
	if errors.Is(err, database.ErrDuplicate) {
		badRequest(w, "User already exists")
		return
	}
	if err != nil {
		h.logger.Error("user_create_failed", zap.Error(err))
		internalError(w, "Failed to register user")
		return
	}
	h.logger.Info("user_registered", zap.String("user_id", logger.SanitizeUserID(user.ID.String())))

	h.respondToken(w, http.StatusCreated, user)
}

// Login exchanges credentials for an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		badRequest(w, "Email and password are required")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, database.ErrNotFound) {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
		return
	}
	if err != nil {
		h.logger.Error("user_lookup_failed", zap.Error(err))
		internalError(w, "Failed to log in")
		return
	}
	ok, err := auth.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		h.logger.Warn("password_check_failed",
			zap.String("user_id", logger.SanitizeUserID(user.ID.String())),
			zap.Error(err),
		)
	}
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
		return
	}

	h.respondToken(w, http.StatusOK, user)
}

func (h *AuthHandler) respondToken(w http.ResponseWriter, status int, user *models.User) {
	token, expires, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.logger.Error("token_issue_failed", zap.Error(err))
		internalError(w, "Failed to issue access token")
		return
	}
	respondJSON(w, status, models.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expires,
		User:        user,
	})
}

// Profile returns the authenticated user, reloaded from storage.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	current, ok := requireUser(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetByID(r.Context(), current.ID)
	if errors.Is(err, database.ErrNotFound) {
		notFound(w, "User not found")
		return
	}
	if err != nil {
		h.logger.Error("profile_lookup_failed", zap.Error(err))
		internalError(w, "Failed to retrieve profile")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
