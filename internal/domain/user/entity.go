// Package user defines the user domain entity and body metrics
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents a registered account with its body metrics
type User struct {
	id           uuid.UUID
	username     string
	email        string
	passwordHash string
	body         BodyMetrics
	createdAt    time.Time
	updatedAt    time.Time
	lastLoginAt  *time.Time
}

// NewUser creates a new user with validation
func NewUser(username, email, password string, body BodyMetrics) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := validateUsername(username); err != nil {
		return nil, err
	}

	if err := validateEmail(email); err != nil {
		return nil, err
	}

	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if err := body.Validate(); err != nil {
		return nil, err
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrPasswordHash
	}

	now := time.Now()
	return &User{
		id:           uuid.New(),
		username:     username,
		email:        strings.ToLower(email),
		passwordHash: string(hashedPassword),
		body:         body,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Restore rebuilds a user from persisted fields
func Restore(id uuid.UUID, username, email, passwordHash string, body BodyMetrics, createdAt, updatedAt time.Time, lastLoginAt *time.Time) *User {
	return &User{
		id:           id,
		username:     username,
		email:        email,
		passwordHash: passwordHash,
		body:         body,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		lastLoginAt:  lastLoginAt,
	}
}

// ID returns the user's ID
func (u *User) ID() uuid.UUID {
	return u.id
}

// Username returns the user's username
func (u *User) Username() string {
	return u.username
}

// Email returns the user's email
func (u *User) Email() string {
	return u.email
}

// PasswordHash returns the bcrypt hash
func (u *User) PasswordHash() string {
	return u.passwordHash
}

// Body returns the user's body metrics
func (u *User) Body() BodyMetrics {
	return u.body
}

// CreatedAt returns when the user was created
func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

// UpdatedAt returns when the user was last updated
func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

// LastLoginAt returns when the user last logged in
func (u *User) LastLoginAt() *time.Time {
	return u.lastLoginAt
}

// CheckPassword verifies if the provided password matches
func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password))
}

// UpdateBody replaces the body metrics
func (u *User) UpdateBody(body BodyMetrics) error {
	if err := body.Validate(); err != nil {
		return err
	}
	u.body = body
	u.updatedAt = time.Now()
	return nil
}

// RecordLogin records a login timestamp
func (u *User) RecordLogin() {
	now := time.Now()
	u.lastLoginAt = &now
	u.updatedAt = now
}

// Validation functions
func validateUsername(username string) error {
	if username == "" {
		return ErrUsernameRequired
	}

	if len(username) > 50 {
		return ErrUsernameTooLong
	}

	if strings.Contains(username, "@") {
		return ErrUsernameInvalid
	}

	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}

	if !strings.Contains(email, "@") {
		return ErrEmailInvalid
	}

	if len(email) > 255 {
		return ErrEmailTooLong
	}

	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}

	if len(password) > 72 {
		return ErrPasswordTooLong
	}

	return nil
}
