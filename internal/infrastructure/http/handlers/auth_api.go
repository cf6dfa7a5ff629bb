package handlers

import (
	"net/http"

	"github.com/nutridash/dashboard/internal/infrastructure/http/middleware"
	"github.com/nutridash/dashboard/internal/ports/inbound"
	apperrors "github.com/nutridash/dashboard/pkg/errors"
	"go.uber.org/zap"
)

// AuthAPIHandlers handles registration, login and body metrics
type AuthAPIHandlers struct {
	base
	users inbound.UserService
}

// NewAuthAPIHandlers creates a new authentication API handlers instance
func NewAuthAPIHandlers(users inbound.UserService, v *Validator, logger *zap.Logger) *AuthAPIHandlers {
	return &AuthAPIHandlers{
		base:  base{validator: v, logger: logger.Named("auth-api")},
		users: users,
	}
}

// RegisterRequest represents user registration request
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,max=50"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,max=72"`
	WeightKg float64 `json:"weight_kg" validate:"gte=20,lte=200"`
	HeightCm float64 `json:"height_cm" validate:"gte=100,lte=220"`
	Age      int     `json:"age" validate:"gte=10,lte=100"`
	Gender   string  `json:"gender" validate:"required,gender"`
	Activity string  `json:"activity" validate:"required,activity_level"`
}

// LoginRequest accepts a username or an email as identifier
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// MetricsRequest replaces the caller's body metrics
type MetricsRequest struct {
	WeightKg float64 `json:"weight_kg" validate:"gte=20,lte=200"`
	HeightCm float64 `json:"height_cm" validate:"gte=100,lte=220"`
	Age      int     `json:"age" validate:"gte=10,lte=100"`
	Gender   string  `json:"gender" validate:"required,gender"`
	Activity string  `json:"activity" validate:"required,activity_level"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthAPIHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), inbound.RegisterCommand{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		WeightKg: req.WeightKg,
		HeightCm: req.HeightCm,
		Age:      req.Age,
		Gender:   req.Gender,
		Activity: req.Activity,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    user,
		Message: "Registration successful! Please log in.",
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthAPIHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	token, err := h.users.Login(r.Context(), inbound.LoginCommand{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, token)
}

// GetMetrics handles GET /api/v1/me/metrics
func (h *AuthAPIHandlers) GetMetrics(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperrors.NewUnauthorizedError(""))
		return
	}

	metrics, err := h.users.GetMetrics(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, metrics)
}

// UpdateMetrics handles PUT /api/v1/me/metrics
func (h *AuthAPIHandlers) UpdateMetrics(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		h.writeError(w, r, apperrors.NewUnauthorizedError(""))
		return
	}

	var req MetricsRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	metrics, err := h.users.UpdateMetrics(r.Context(), inbound.UpdateMetricsCommand{
		UserID:   claims.UserID,
		WeightKg: req.WeightKg,
		HeightCm: req.HeightCm,
		Age:      req.Age,
		Gender:   req.Gender,
		Activity: req.Activity,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    metrics,
		Message: "Metrics updated successfully!",
	})
}
