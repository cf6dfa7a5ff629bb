// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nutridash/dashboard/internal/domain/user"
	"github.com/nutridash/dashboard/internal/ports/outbound"
	"gorm.io/gorm"
)

// ErrDuplicateUser is returned when a unique constraint rejects an insert
var ErrDuplicateUser = errors.New("user with this username or email already exists")

// UserRepository implements the user repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) outbound.UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *user.User) error {
	model := UserToModel(user)

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrDuplicateUser
		}
		return result.Error
	}

	return nil
}

// Update updates an existing user
func (r *UserRepository) Update(ctx context.Context, user *user.User) error {
	model := UserToModel(user)

	// Save would insert a missing row; Updates on the primary key does not
	result := r.db.WithContext(ctx).Model(model).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return outbound.ErrNotFound
	}

	return nil
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.first(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// FindByUsername finds a user by username, ignoring case
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.first(ctx, "LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username)))
}

// FindByIdentifier finds a user whose username or email matches, ignoring case
func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*user.User, error) {
	id := strings.ToLower(strings.TrimSpace(identifier))
	return r.first(ctx, "LOWER(username) = ? OR email = ?", id, id)
}

// ExistsByUsernameOrEmail reports whether either value is taken
func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64

	result := r.db.WithContext(ctx).Model(&UserModel{}).
		Where("LOWER(username) = ? OR email = ?",
			strings.ToLower(strings.TrimSpace(username)),
			strings.ToLower(strings.TrimSpace(email)),
		).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// UpdateLastLogin updates the last login timestamp
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&UserModel{}).
		Where("id = ?", id).
		Update("last_login_at", gorm.Expr("CURRENT_TIMESTAMP"))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return outbound.ErrNotFound
	}

	return nil
}

func (r *UserRepository) first(ctx context.Context, query string, args ...interface{}) (*user.User, error) {
	var model UserModel

	result := r.db.WithContext(ctx).Where(query, args...).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", result.Error)
	}

	return ModelToUser(&model), nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}
