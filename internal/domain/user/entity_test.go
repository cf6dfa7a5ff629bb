package user_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/nutridash/dashboard/internal/domain/user"
	"github.com/nutridash/dashboard/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// UserTestSuite provides a test suite for the User entity
type UserTestSuite struct {
	suite.Suite
	body user.BodyMetrics
}

func (suite *UserTestSuite) SetupTest() {
	suite.body = user.BodyMetrics{
		WeightKg: 70,
		HeightCm: 175,
		Age:      30,
		Gender:   user.GenderMale,
		Activity: user.ActivityModeratelyActive,
	}
}

// TestUserCreation tests registration scenarios
func (suite *UserTestSuite) TestUserCreation() {
	suite.Run("ValidUser_ShouldCreateSuccessfully", func() {
		// Act
		u, err := user.NewUser("  alice ", "Alice@Example.COM", "secret", suite.body)

		// Assert
		suite.Require().NoError(err)
		suite.NotEqual(uuid.Nil, u.ID())
		suite.Equal("alice", u.Username())
		suite.Equal("alice@example.com", u.Email())
		suite.NotEqual("secret", u.PasswordHash())
		suite.NoError(u.CheckPassword("secret"))
		suite.Error(u.CheckPassword("Secret"))
		suite.Nil(u.LastLoginAt())
		suite.NotZero(u.CreatedAt())
	})

	cases := []struct {
		name     string
		username string
		email    string
		password string
		want     error
	}{
		{"EmptyUsername", " ", "a@b.c", "pw", user.ErrUsernameRequired},
		{"UsernameWithAt", "a@b", "a@b.c", "pw", user.ErrUsernameInvalid},
		{"UsernameTooLong", strings.Repeat("u", 51), "a@b.c", "pw", user.ErrUsernameTooLong},
		{"EmptyEmail", "alice", "", "pw", user.ErrEmailRequired},
		{"EmailWithoutAt", "alice", "alice.example.com", "pw", user.ErrEmailInvalid},
		{"EmptyPassword", "alice", "a@b.c", "", user.ErrPasswordRequired},
		{"PasswordTooLong", "alice", "a@b.c", strings.Repeat("p", 73), user.ErrPasswordTooLong},
	}
	for _, tc := range cases {
		suite.Run(tc.name+"_ShouldReturnError", func() {
			u, err := user.NewUser(tc.username, tc.email, tc.password, suite.body)
			suite.Nil(u)
			suite.ErrorIs(err, tc.want)
		})
	}

	suite.Run("UsernameAtLimit_ShouldCreate", func() {
		_, err := user.NewUser(strings.Repeat("u", 50), "a@b.c", strings.Repeat("p", 72), suite.body)
		suite.NoError(err)
	})
}

// TestBodyMetrics tests the registration bounds
func (suite *UserTestSuite) TestBodyMetrics() {
	mutate := func(f func(b *user.BodyMetrics)) user.BodyMetrics {
		b := suite.body
		f(&b)
		return b
	}

	cases := []struct {
		name string
		body user.BodyMetrics
		want error
	}{
		{"WeightLow", mutate(func(b *user.BodyMetrics) { b.WeightKg = 19.9 }), user.ErrWeightOutOfRange},
		{"WeightHigh", mutate(func(b *user.BodyMetrics) { b.WeightKg = 200.1 }), user.ErrWeightOutOfRange},
		{"HeightLow", mutate(func(b *user.BodyMetrics) { b.HeightCm = 99 }), user.ErrHeightOutOfRange},
		{"HeightHigh", mutate(func(b *user.BodyMetrics) { b.HeightCm = 221 }), user.ErrHeightOutOfRange},
		{"AgeLow", mutate(func(b *user.BodyMetrics) { b.Age = 9 }), user.ErrAgeOutOfRange},
		{"AgeHigh", mutate(func(b *user.BodyMetrics) { b.Age = 101 }), user.ErrAgeOutOfRange},
		{"Gender", mutate(func(b *user.BodyMetrics) { b.Gender = "Other" }), user.ErrUnknownGender},
		{"Activity", mutate(func(b *user.BodyMetrics) { b.Activity = "Couch" }), user.ErrUnknownActivity},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			suite.ErrorIs(tc.body.Validate(), tc.want)
		})
	}

	suite.Run("BoundsAreInclusive", func() {
		low := user.BodyMetrics{WeightKg: 20, HeightCm: 100, Age: 10, Gender: user.GenderFemale, Activity: user.ActivitySedentary}
		high := user.BodyMetrics{WeightKg: 200, HeightCm: 220, Age: 100, Gender: user.GenderMale, Activity: user.ActivityExtraActive}
		suite.NoError(low.Validate())
		suite.NoError(high.Validate())
	})
}

// TestProfileUpdates tests body updates and login tracking
func (suite *UserTestSuite) TestProfileUpdates() {
	u := testutils.NewUserBuilder().MustBuild(suite.T())

	suite.Run("UpdateBody", func() {
		next := suite.body
		next.WeightKg = 80
		suite.Require().NoError(u.UpdateBody(next))
		suite.Equal(80.0, u.Body().WeightKg)
	})

	suite.Run("InvalidUpdateKeepsBody", func() {
		bad := suite.body
		bad.Age = 5
		suite.ErrorIs(u.UpdateBody(bad), user.ErrAgeOutOfRange)
		suite.Equal(80.0, u.Body().WeightKg)
	})

	suite.Run("RecordLogin", func() {
		u.RecordLogin()
		suite.Require().NotNil(u.LastLoginAt())
		suite.False(u.LastLoginAt().Before(u.CreatedAt()))
	})
}

func TestUserTestSuite(t *testing.T) {
	suite.Run(t, new(UserTestSuite))
}

func TestBMRAndTDEE(t *testing.T) {
	male := user.BodyMetrics{WeightKg: 70, HeightCm: 175, Age: 30, Gender: user.GenderMale, Activity: user.ActivitySedentary}
	female := male
	female.Gender = user.GenderFemale

	// 700 + 1093.75 - 150
	assert.InDelta(t, 1648.75, male.BMR(), 1e-9)
	assert.InDelta(t, 1482.75, female.BMR(), 1e-9)

	multipliers := map[user.ActivityLevel]float64{
		user.ActivitySedentary:        1.2,
		user.ActivityLightlyActive:    1.375,
		user.ActivityModeratelyActive: 1.55,
		user.ActivityVeryActive:       1.725,
		user.ActivityExtraActive:      1.9,
	}
	for level, m := range multipliers {
		b := male
		b.Activity = level
		assert.InDelta(t, 1648.75*m, b.TDEE(), 1e-9, string(level))
	}
}

func TestParseGenderAndActivity(t *testing.T) {
	g, err := user.ParseGender(" female ")
	require.NoError(t, err)
	assert.Equal(t, user.GenderFemale, g)

	_, err = user.ParseGender("x")
	assert.ErrorIs(t, err, user.ErrUnknownGender)

	a, err := user.ParseActivityLevel("very active")
	require.NoError(t, err)
	assert.Equal(t, user.ActivityVeryActive, a)

	_, err = user.ParseActivityLevel("lazy")
	assert.ErrorIs(t, err, user.ErrUnknownActivity)
	assert.Equal(t, 1.2, user.ActivityLevel("lazy").Multiplier())
}
