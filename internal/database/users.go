package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UserRepository handles user database operations
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user. Emails are stored lowercased; a taken email
// returns ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, user.ID, user.Username, user.Email, user.PasswordHash, now, now,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	if user.FavoriteGenres == nil {
		user.FavoriteGenres = []string{}
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

// UpdateProfile applies the non-nil fields of req and returns the
// updated user.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, req models.UpdateProfileRequest) (*models.User, error) {
	var name, pic, genres any
	if req.Name != nil {
		name = *req.Name
	}
	if req.ProfilePic != nil {
		pic = *req.ProfilePic
	}
	if req.FavoriteGenres != nil {
		g := *req.FavoriteGenres
		if g == nil {
			g = []string{}
		}
		genres = pq.Array(g)
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE users SET
			display_name    = COALESCE($2, display_name),
			profile_pic     = COALESCE($3, profile_pic),
			favorite_genres = COALESCE($4::text[], favorite_genres),
			updated_at      = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, name, pic, genres)
	user, err := scanUser(row)
	if notFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

const userColumns = `id, username, email, password_hash, display_name, profile_pic, favorite_genres, created_at, updated_at`

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users `+where, arg))
	if notFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func scanUser(s rowScanner) (*models.User, error) {
	user := &models.User{}
	if err := s.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.ProfilePic,
		pq.Array(&user.FavoriteGenres),
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if user.FavoriteGenres == nil {
		user.FavoriteGenres = []string{}
	}
	return user, nil
}
