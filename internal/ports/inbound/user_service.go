package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserService defines account and body metric use cases
type UserService interface {
	Register(ctx context.Context, cmd RegisterCommand) (*UserDTO, error)
	Login(ctx context.Context, cmd LoginCommand) (*AuthTokenDTO, error)
	GetMetrics(ctx context.Context, userID uuid.UUID) (*BodyMetricsDTO, error)
	UpdateMetrics(ctx context.Context, cmd UpdateMetricsCommand) (*BodyMetricsDTO, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}

// RegisterCommand creates an account
type RegisterCommand struct {
	Username string
	Email    string
	Password string
	WeightKg float64
	HeightCm float64
	Age      int
	Gender   string
	Activity string
}

// LoginCommand authenticates by username or email
type LoginCommand struct {
	Identifier string
	Password   string
}

// UpdateMetricsCommand replaces a user's body metrics
type UpdateMetricsCommand struct {
	UserID   uuid.UUID
	WeightKg float64
	HeightCm float64
	Age      int
	Gender   string
	Activity string
}

// UserDTO is the public view of a user
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	WeightKg  float64   `json:"weight_kg"`
	HeightCm  float64   `json:"height_cm"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	Activity  string    `json:"activity"`
	CreatedAt time.Time `json:"created_at"`
}

// BodyMetricsDTO is a profile with its calorie figures
type BodyMetricsDTO struct {
	User   UserDTO        `json:"user"`
	BMR    float64        `json:"bmr"`
	TDEE   float64        `json:"tdee"`
	Macros DailyTargetDTO `json:"macros"`
}

// AuthTokenDTO is returned on login
type AuthTokenDTO struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserDTO   `json:"user"`
}

// TokenClaims identify the caller of an authenticated request
type TokenClaims struct {
	UserID   uuid.UUID
	Username string
}
