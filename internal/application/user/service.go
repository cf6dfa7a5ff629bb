// Package user provides the application layer for user management
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nutridash/dashboard/internal/application/planner"
	"github.com/nutridash/dashboard/internal/domain/plan"
	"github.com/nutridash/dashboard/internal/domain/user"
	"github.com/nutridash/dashboard/internal/ports/inbound"
	"github.com/nutridash/dashboard/internal/ports/outbound"
	apperrors "github.com/nutridash/dashboard/pkg/errors"
	"go.uber.org/zap"
)

// DefaultTokenTTL is the access token lifetime
const DefaultTokenTTL = time.Hour

// UserService implements user management use cases
type UserService struct {
	userRepo  outbound.UserRepository
	metrics   outbound.MetricsRecorder
	jwtSecret []byte
	issuer    string
	tokenTTL  time.Duration
	logger    *zap.Logger
}

var _ inbound.UserService = (*UserService)(nil)

// NewUserService creates a new user service
func NewUserService(
	userRepo outbound.UserRepository,
	metrics outbound.MetricsRecorder,
	jwtSecret string,
	issuer string,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &UserService{
		userRepo:  userRepo,
		metrics:   metrics,
		jwtSecret: []byte(jwtSecret),
		issuer:    issuer,
		tokenTTL:  tokenTTL,
		logger:    logger.Named("user-service"),
	}
}

// JWTClaims represents JWT token claims
type JWTClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	jwt.RegisteredClaims
}

// Register creates a new user account
func (s *UserService) Register(ctx context.Context, cmd inbound.RegisterCommand) (*inbound.UserDTO, error) {
	s.logger.Info("Registering new user",
		zap.String("username", cmd.Username),
		zap.String("email", cmd.Email),
	)

	body, err := parseBody(cmd.WeightKg, cmd.HeightCm, cmd.Age, cmd.Gender, cmd.Activity)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	newUser, err := user.NewUser(cmd.Username, cmd.Email, cmd.Password, body)
	if err != nil {
		if errors.Is(err, user.ErrPasswordHash) {
			return nil, apperrors.Wrap(err, "Failed to create user")
		}
		return nil, apperrors.NewValidationError(err.Error())
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, newUser.Username(), newUser.Email())
	if err != nil {
		return nil, apperrors.NewDatabaseError("check existing user", err)
	}
	if exists {
		return nil, apperrors.NewAccountAlreadyExistsError()
	}

	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return nil, apperrors.NewDatabaseError("save user", err)
	}
	s.metrics.RecordRegistration()

	s.logger.Info("User registered successfully",
		zap.String("user_id", newUser.ID().String()),
		zap.String("username", newUser.Username()),
	)

	dto := entityToDTO(newUser)
	return &dto, nil
}

// Login authenticates a user by username or email
func (s *UserService) Login(ctx context.Context, cmd inbound.LoginCommand) (*inbound.AuthTokenDTO, error) {
	identifier := strings.TrimSpace(cmd.Identifier)
	if identifier == "" || cmd.Password == "" {
		return nil, apperrors.NewValidationError("identifier and password are required")
	}

	s.logger.Info("User login attempt", zap.String("identifier", identifier))

	userEntity, err := s.userRepo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, outbound.ErrNotFound) {
			return nil, apperrors.NewInvalidCredentialsError()
		}
		return nil, apperrors.NewDatabaseError("find user", err)
	}

	if err := userEntity.CheckPassword(cmd.Password); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("identifier", identifier))
		return nil, apperrors.NewInvalidCredentialsError()
	}

	if err := s.userRepo.UpdateLastLogin(ctx, userEntity.ID()); err != nil {
		s.logger.Error("Failed to update last login", zap.Error(err))
	}

	token, expiresAt, err := s.generateToken(userEntity)
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to issue token")
	}

	s.logger.Info("User logged in successfully",
		zap.String("user_id", userEntity.ID().String()),
		zap.String("username", userEntity.Username()),
	)

	return &inbound.AuthTokenDTO{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        entityToDTO(userEntity),
	}, nil
}

// GetMetrics returns the user's profile with BMR, TDEE and TDEE-based macros
func (s *UserService) GetMetrics(ctx context.Context, userID uuid.UUID) (*inbound.BodyMetricsDTO, error) {
	userEntity, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	return metricsToDTO(userEntity), nil
}

// UpdateMetrics replaces the user's body metrics
func (s *UserService) UpdateMetrics(ctx context.Context, cmd inbound.UpdateMetricsCommand) (*inbound.BodyMetricsDTO, error) {
	body, err := parseBody(cmd.WeightKg, cmd.HeightCm, cmd.Age, cmd.Gender, cmd.Activity)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	userEntity, err := s.find(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if err := userEntity.UpdateBody(body); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.userRepo.Update(ctx, userEntity); err != nil {
		return nil, apperrors.NewDatabaseError("update body metrics", err)
	}

	s.logger.Info("Body metrics updated", zap.String("user_id", cmd.UserID.String()))
	return metricsToDTO(userEntity), nil
}

// ValidateToken validates a JWT token and returns user claims
func (s *UserService) ValidateToken(ctx context.Context, tokenString string) (*inbound.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("Invalid token").WithCause(err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, apperrors.NewUnauthorizedError("Invalid token claims")
	}

	return &inbound.TokenClaims{UserID: claims.UserID, Username: claims.Username}, nil
}

// Helper methods

func (s *UserService) find(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	userEntity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrNotFound) {
			return nil, apperrors.NewUserNotFoundError(userID.String())
		}
		return nil, apperrors.NewDatabaseError("find user", err)
	}
	return userEntity, nil
}

// generateToken issues an HS256 access token
func (s *UserService) generateToken(userEntity *user.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := &JWTClaims{
		UserID:   userEntity.ID(),
		Username: userEntity.Username(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userEntity.ID().String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func parseBody(weight, height float64, age int, gender, activity string) (user.BodyMetrics, error) {
	g, err := user.ParseGender(gender)
	if err != nil {
		return user.BodyMetrics{}, err
	}
	a, err := user.ParseActivityLevel(activity)
	if err != nil {
		return user.BodyMetrics{}, err
	}
	body := user.BodyMetrics{
		WeightKg: weight,
		HeightCm: height,
		Age:      age,
		Gender:   g,
		Activity: a,
	}
	return body, body.Validate()
}

// entityToDTO converts user entity to DTO
func entityToDTO(userEntity *user.User) inbound.UserDTO {
	body := userEntity.Body()
	return inbound.UserDTO{
		ID:        userEntity.ID(),
		Username:  userEntity.Username(),
		Email:     userEntity.Email(),
		WeightKg:  body.WeightKg,
		HeightCm:  body.HeightCm,
		Age:       body.Age,
		Gender:    string(body.Gender),
		Activity:  string(body.Activity),
		CreatedAt: userEntity.CreatedAt(),
	}
}

func metricsToDTO(userEntity *user.User) *inbound.BodyMetricsDTO {
	body := userEntity.Body()
	tdee := body.TDEE()
	return &inbound.BodyMetricsDTO{
		User:   entityToDTO(userEntity),
		BMR:    body.BMR(),
		TDEE:   tdee,
		Macros: planner.TargetToDTO(plan.NewDailyTarget(tdee)),
	}
}
