package gorm_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nutridash/dashboard/internal/domain/feedback"
	"github.com/nutridash/dashboard/internal/domain/user"
	gormrepo "github.com/nutridash/dashboard/internal/infrastructure/persistence/gorm"
	"github.com/nutridash/dashboard/internal/ports/outbound"
	"github.com/nutridash/dashboard/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// UserRepositoryTestSuite runs the GORM repositories against in-memory SQLite
type UserRepositoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	db   *gorm.DB
	repo outbound.UserRepository
}

func (suite *UserRepositoryTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = testutils.SetupTestDatabase(suite.T())
	suite.repo = gormrepo.NewUserRepository(suite.db)
}

func (suite *UserRepositoryTestSuite) create(username, email string) *user.User {
	u := testutils.NewUserBuilder().WithUsername(username).WithEmail(email).MustBuild(suite.T())
	suite.Require().NoError(suite.repo.Create(suite.ctx, u))
	return u
}

func (suite *UserRepositoryTestSuite) TestCreateAndFind() {
	u := suite.create("Alice", "alice@example.com")
	suite.Equal(int64(1), testutils.CountRows(suite.T(), suite.db, "users"))

	suite.Run("ByID", func() {
		found, err := suite.repo.FindByID(suite.ctx, u.ID())
		suite.Require().NoError(err)
		suite.Equal(u.Username(), found.Username())
		suite.Equal(u.Body(), found.Body())
		suite.NoError(found.CheckPassword(testutils.DefaultPassword))
	})

	suite.Run("ByEmailIgnoresCase", func() {
		found, err := suite.repo.FindByEmail(suite.ctx, " ALICE@example.com ")
		suite.Require().NoError(err)
		suite.Equal(u.ID(), found.ID())
	})

	suite.Run("ByUsernameIgnoresCase", func() {
		found, err := suite.repo.FindByUsername(suite.ctx, "alice")
		suite.Require().NoError(err)
		suite.Equal(u.ID(), found.ID())
	})

	suite.Run("ByIdentifier", func() {
		for _, id := range []string{"ALICE", "alice@EXAMPLE.com"} {
			found, err := suite.repo.FindByIdentifier(suite.ctx, id)
			suite.Require().NoError(err, id)
			suite.Equal(u.ID(), found.ID())
		}
	})

	suite.Run("Missing", func() {
		_, err := suite.repo.FindByID(suite.ctx, uuid.New())
		suite.ErrorIs(err, outbound.ErrNotFound)
		_, err = suite.repo.FindByIdentifier(suite.ctx, "nobody")
		suite.ErrorIs(err, outbound.ErrNotFound)
	})
}

func (suite *UserRepositoryTestSuite) TestUniqueness() {
	suite.create("bob", "bob@example.com")

	exists, err := suite.repo.ExistsByUsernameOrEmail(suite.ctx, "BOB", "other@example.com")
	suite.Require().NoError(err)
	suite.True(exists)

	exists, err = suite.repo.ExistsByUsernameOrEmail(suite.ctx, "carol", "carol@example.com")
	suite.Require().NoError(err)
	suite.False(exists)

	dup := testutils.NewUserBuilder().WithUsername("bob").WithEmail("bob2@example.com").MustBuild(suite.T())
	suite.ErrorIs(suite.repo.Create(suite.ctx, dup), gormrepo.ErrDuplicateUser)
}

func (suite *UserRepositoryTestSuite) TestUpdate() {
	u := suite.create("dana", "dana@example.com")

	body := u.Body()
	body.WeightKg = 82.5
	suite.Require().NoError(u.UpdateBody(body))
	suite.Require().NoError(suite.repo.Update(suite.ctx, u))

	found, err := suite.repo.FindByID(suite.ctx, u.ID())
	suite.Require().NoError(err)
	suite.Equal(82.5, found.Body().WeightKg)

	ghost := testutils.NewUserBuilder().MustBuild(suite.T())
	suite.ErrorIs(suite.repo.Update(suite.ctx, ghost), outbound.ErrNotFound)
	suite.Equal(int64(1), testutils.CountRows(suite.T(), suite.db, "users"))
}

func (suite *UserRepositoryTestSuite) TestUpdateLastLogin() {
	u := suite.create("erin", "erin@example.com")

	suite.Require().NoError(suite.repo.UpdateLastLogin(suite.ctx, u.ID()))

	found, err := suite.repo.FindByID(suite.ctx, u.ID())
	suite.Require().NoError(err)
	suite.NotNil(found.LastLoginAt())

	suite.ErrorIs(suite.repo.UpdateLastLogin(suite.ctx, uuid.New()), outbound.ErrNotFound)
}

func TestUserRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(UserRepositoryTestSuite))
}

func TestFeedbackRepository(t *testing.T) {
	ctx := context.Background()
	db := testutils.SetupTestDatabase(t)
	repo := gormrepo.NewFeedbackRepository(db)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, subject := range []string{"first", "second", "third"} {
		fb := feedback.Restore(uuid.New(), "Ada", "ada@example.com", subject, "msg", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, repo.Create(ctx, fb))
	}

	list, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "third", list[0].Subject())
	assert.Equal(t, "second", list[1].Subject())
	assert.True(t, list[0].SubmittedAt().Equal(base.Add(2*time.Hour)))
}
