package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nutridash/dashboard/internal/ports/inbound"
	"github.com/nutridash/dashboard/internal/ports/outbound"
	apperrors "github.com/nutridash/dashboard/pkg/errors"
	"github.com/nutridash/dashboard/test/testutils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

const testSecret = "test-secret-at-least-32-bytes-long!!"

// UserServiceTestSuite covers registration, login and body metrics
type UserServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	repo    *testutils.MockUserRepository
	metrics *testutils.MockMetricsRecorder
	service *UserService
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.reset()
}

// SetupSubTest gives every subtest fresh mocks
func (suite *UserServiceTestSuite) SetupSubTest() {
	suite.reset()
}

func (suite *UserServiceTestSuite) TearDownSubTest() {
	suite.repo.AssertExpectations(suite.T())
	suite.metrics.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) reset() {
	suite.ctx = context.Background()
	suite.repo = new(testutils.MockUserRepository)
	suite.metrics = new(testutils.MockMetricsRecorder)
	suite.service = NewUserService(suite.repo, suite.metrics, testSecret, "nutridash-test", time.Hour, zap.NewNop())
}

func validRegistration() inbound.RegisterCommand {
	return inbound.RegisterCommand{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: testutils.DefaultPassword,
		WeightKg: 60,
		HeightCm: 165,
		Age:      28,
		Gender:   "female",
		Activity: "lightly active",
	}
}

func (suite *UserServiceTestSuite) TestRegister() {
	suite.Run("ValidRegistration_ShouldCreateUser", func() {
		suite.repo.On("ExistsByUsernameOrEmail", mock.Anything, "alice", "alice@example.com").Return(false, nil).Once()
		suite.repo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).Return(nil).Once()
		suite.metrics.On("RecordRegistration").Once()

		dto, err := suite.service.Register(suite.ctx, validRegistration())

		suite.Require().NoError(err)
		suite.Equal("alice", dto.Username)
		suite.Equal("alice@example.com", dto.Email)
		suite.Equal("Female", dto.Gender)
		suite.Equal("Lightly Active", dto.Activity)
		suite.NotEqual(uuid.Nil, dto.ID)
	})

	suite.Run("DuplicateAccount_ShouldConflict", func() {
		suite.repo.On("ExistsByUsernameOrEmail", mock.Anything, "alice", "alice@example.com").Return(true, nil).Once()

		_, err := suite.service.Register(suite.ctx, validRegistration())

		suite.Equal(apperrors.CodeAccountAlreadyExists, apperrors.GetCode(err))
	})

	suite.Run("InvalidBody_ShouldFailValidation", func() {
		cmd := validRegistration()
		cmd.Age = 8

		_, err := suite.service.Register(suite.ctx, cmd)

		suite.Equal(apperrors.CodeValidationFailed, apperrors.GetCode(err))
	})

	suite.Run("UsernameWithAt_ShouldFailValidation", func() {
		cmd := validRegistration()
		cmd.Username = "alice@home"

		_, err := suite.service.Register(suite.ctx, cmd)

		suite.Equal(apperrors.CodeValidationFailed, apperrors.GetCode(err))
	})

	suite.Run("RepositoryFailure_ShouldReturnDatabaseError", func() {
		suite.repo.On("ExistsByUsernameOrEmail", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("db down")).Once()

		_, err := suite.service.Register(suite.ctx, validRegistration())

		suite.Equal(apperrors.CodeDatabaseError, apperrors.GetCode(err))
	})
}

func (suite *UserServiceTestSuite) TestLogin() {
	u := testutils.NewUserBuilder().WithUsername("bob").WithEmail("bob@example.com").MustBuild(suite.T())

	suite.Run("ValidCredentials_ShouldIssueToken", func() {
		suite.repo.On("FindByIdentifier", mock.Anything, "bob").Return(u, nil).Once()
		suite.repo.On("UpdateLastLogin", mock.Anything, u.ID()).Return(nil).Once()

		token, err := suite.service.Login(suite.ctx, inbound.LoginCommand{Identifier: " bob ", Password: testutils.DefaultPassword})

		suite.Require().NoError(err)
		suite.Equal("Bearer", token.TokenType)
		suite.True(token.ExpiresAt.After(time.Now()))

		claims, err := suite.service.ValidateToken(suite.ctx, token.AccessToken)
		suite.Require().NoError(err)
		suite.Equal(u.ID(), claims.UserID)
		suite.Equal("bob", claims.Username)
	})

	suite.Run("WrongPassword_ShouldFail", func() {
		suite.repo.On("FindByIdentifier", mock.Anything, "bob@example.com").Return(u, nil).Once()

		_, err := suite.service.Login(suite.ctx, inbound.LoginCommand{Identifier: "bob@example.com", Password: "nope"})

		suite.Equal(apperrors.CodeInvalidCredentials, apperrors.GetCode(err))
	})

	suite.Run("UnknownUser_ShouldFailWithSameError", func() {
		suite.repo.On("FindByIdentifier", mock.Anything, "carol").Return(nil, outbound.ErrNotFound).Once()

		_, err := suite.service.Login(suite.ctx, inbound.LoginCommand{Identifier: "carol", Password: "x"})

		suite.Equal(apperrors.CodeInvalidCredentials, apperrors.GetCode(err))
	})

	suite.Run("MissingFields_ShouldFailValidation", func() {
		_, err := suite.service.Login(suite.ctx, inbound.LoginCommand{Identifier: " "})
		suite.Equal(apperrors.CodeValidationFailed, apperrors.GetCode(err))
	})
}

func (suite *UserServiceTestSuite) TestValidateToken() {
	suite.Run("Garbage", func() {
		_, err := suite.service.ValidateToken(suite.ctx, "not-a-token")
		suite.Equal(apperrors.CodeUnauthorized, apperrors.GetCode(err))
	})

	suite.Run("WrongIssuer", func() {
		other := NewUserService(suite.repo, nil, testSecret, "someone-else", time.Hour, zap.NewNop())
		u := testutils.NewUserBuilder().MustBuild(suite.T())
		token, _, err := other.generateToken(u)
		suite.Require().NoError(err)

		_, err = suite.service.ValidateToken(suite.ctx, token)
		suite.Equal(apperrors.CodeUnauthorized, apperrors.GetCode(err))
	})

	suite.Run("Expired", func() {
		now := time.Now()
		claims := &JWTClaims{
			UserID: uuid.New(),
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "nutridash-test",
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		suite.Require().NoError(err)

		_, err = suite.service.ValidateToken(suite.ctx, token)
		suite.Equal(apperrors.CodeUnauthorized, apperrors.GetCode(err))
	})
}

func (suite *UserServiceTestSuite) TestMetrics() {
	u := testutils.NewUserBuilder().MustBuild(suite.T())

	suite.Run("GetMetrics", func() {
		suite.repo.On("FindByID", mock.Anything, u.ID()).Return(u, nil).Once()

		dto, err := suite.service.GetMetrics(suite.ctx, u.ID())

		suite.Require().NoError(err)
		suite.InDelta(1648.75, dto.BMR, 1e-9)
		suite.InDelta(1648.75*1.55, dto.TDEE, 1e-9)
		suite.InDelta(dto.TDEE*0.25/4, dto.Macros.Protein, 1e-9)
	})

	suite.Run("UpdateMetrics", func() {
		suite.repo.On("FindByID", mock.Anything, u.ID()).Return(u, nil).Once()
		suite.repo.On("Update", mock.Anything, u).Return(nil).Once()

		dto, err := suite.service.UpdateMetrics(suite.ctx, inbound.UpdateMetricsCommand{
			UserID: u.ID(), WeightKg: 80, HeightCm: 175, Age: 30, Gender: "Male", Activity: "Sedentary",
		})

		suite.Require().NoError(err)
		suite.Equal(80.0, dto.User.WeightKg)
		suite.InDelta(1748.75, dto.BMR, 1e-9)
		suite.InDelta(1748.75*1.2, dto.TDEE, 1e-9)
	})

	suite.Run("InvalidUpdateSkipsRepository", func() {
		_, err := suite.service.UpdateMetrics(suite.ctx, inbound.UpdateMetricsCommand{
			UserID: u.ID(), WeightKg: 500, HeightCm: 175, Age: 30, Gender: "Male", Activity: "Sedentary",
		})
		suite.Equal(apperrors.CodeValidationFailed, apperrors.GetCode(err))
	})

	suite.Run("UnknownUser", func() {
		id := uuid.New()
		suite.repo.On("FindByID", mock.Anything, id).Return(nil, outbound.ErrNotFound).Once()

		_, err := suite.service.GetMetrics(suite.ctx, id)
		suite.Equal(apperrors.CodeUserNotFound, apperrors.GetCode(err))
	})
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
