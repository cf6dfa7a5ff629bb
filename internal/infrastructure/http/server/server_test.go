package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nutridash/dashboard/internal/application/assistant"
	appfeedback "github.com/nutridash/dashboard/internal/application/feedback"
	"github.com/nutridash/dashboard/internal/application/planner"
	"github.com/nutridash/dashboard/internal/application/session"
	appuser "github.com/nutridash/dashboard/internal/application/user"
	"github.com/nutridash/dashboard/internal/domain/ai"
	"github.com/nutridash/dashboard/internal/infrastructure/config"
	"github.com/nutridash/dashboard/internal/infrastructure/http/handlers"
	"github.com/nutridash/dashboard/internal/infrastructure/http/server"
	gormrepo "github.com/nutridash/dashboard/internal/infrastructure/persistence/gorm"
	"github.com/nutridash/dashboard/internal/ports/inbound"
	"github.com/nutridash/dashboard/internal/ports/outbound"
	apperrors "github.com/nutridash/dashboard/pkg/errors"
	"github.com/nutridash/dashboard/pkg/healthcheck"
	"github.com/nutridash/dashboard/test/testutils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// ServerTestSuite drives the full router against in-memory SQLite and the
// sample catalog
type ServerTestSuite struct {
	suite.Suite
	handler  http.Handler
	provider *testutils.MockChatProvider
}

func (suite *ServerTestSuite) SetupTest() {
	logger := zap.NewNop()
	db := testutils.SetupTestDatabase(suite.T())
	users := gormrepo.NewUserRepository(db)
	sessions := session.NewRegistry(time.Hour, logger)

	plannerService := planner.NewService(
		&testutils.StaticCatalog{Catalog: testutils.SampleCatalog(suite.T())},
		users, sessions, nil, planner.Config{}, logger,
	)
	userService := appuser.NewUserService(users, nil, "test-secret", "nutridash-test", time.Hour, logger)

	suite.provider = testutils.NewMockChatProvider(ai.ProviderTypeMock)
	suite.provider.On("Chat", mock.Anything, mock.Anything).
		Return(&outbound.ChatReply{Content: "Try lentils for fiber."}, nil).Maybe()
	assistantService := assistant.NewService(sessions, users, nil, logger, suite.provider)
	feedbackService := appfeedback.NewService(gormrepo.NewFeedbackRepository(db), nil, logger)

	v := handlers.NewValidator()
	cfg := &config.Config{
		App:    config.AppConfig{Environment: "test"},
		Server: config.ServerConfig{EnableCORS: true, AllowedOrigins: []string{"*"}},
	}

	health := healthcheck.New("test", logger)
	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	health.Register("database", healthcheck.NewDatabaseChecker(sqlDB))

	suite.handler = server.NewServer(cfg, server.Dependencies{
		Auth:     handlers.NewAuthAPIHandlers(userService, v, logger),
		Catalog:  handlers.NewCatalogAPIHandlers(plannerService, v, logger),
		Planner:  handlers.NewPlannerAPIHandlers(plannerService, v, logger),
		Chat:     handlers.NewChatAPIHandlers(assistantService, v, logger),
		Feedback: handlers.NewFeedbackAPIHandlers(feedbackService, v, logger),
		Tokens:   userService,
		Health:   health,
	}, logger).Router()
}

func (suite *ServerTestSuite) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	suite.handler.ServeHTTP(rec, req)
	return rec
}

// data asserts a success envelope and decodes its payload into dst
func (suite *ServerTestSuite) data(rec *httptest.ResponseRecorder, status int, dst interface{}) envelope {
	suite.Require().Equal(status, rec.Code, rec.Body.String())
	var env envelope
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env))
	suite.True(env.Success)
	if dst != nil {
		suite.Require().NoError(json.Unmarshal(env.Data, dst))
	}
	return env
}

func (suite *ServerTestSuite) failure(rec *httptest.ResponseRecorder, status int, code apperrors.ErrorCode) {
	suite.Equal(status, rec.Code, rec.Body.String())
	var resp apperrors.ErrorResponse
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Equal(code, resp.Error.Code)
	suite.NotEmpty(resp.Error.RequestID)
}

func (suite *ServerTestSuite) newSession(body interface{}, token string) inbound.SessionDTO {
	var sess inbound.SessionDTO
	suite.data(suite.do(http.MethodPost, "/api/v1/sessions", body, token), http.StatusCreated, &sess)
	return sess
}

func (suite *ServerTestSuite) TestHealthAndHeaders() {
	rec := suite.do(http.MethodGet, "/health", nil, "")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
	suite.Equal("DENY", rec.Header().Get("X-Frame-Options"))

	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/health/live", nil, "").Code)
	suite.Equal(http.StatusOK, suite.do(http.MethodGet, "/health/ready", nil, "").Code)

	suite.failure(suite.do(http.MethodGet, "/nope", nil, ""), http.StatusNotFound, apperrors.CodeNotFound)
}

func (suite *ServerTestSuite) TestPlanFlow() {
	sess := suite.newSession(nil, "")
	suite.Equal("omnivore", sess.DietType)
	suite.Equal("TDEE", sess.CalorieBasis)
	suite.Equal(2200.0, sess.Target.Calories)
	base := "/api/v1/sessions/" + sess.ID

	var entry inbound.PlanEntryDTO
	env := suite.data(suite.do(http.MethodPost, base+"/plan", map[string]interface{}{
		"meal_slot": "Breakfast", "food_id": "1", "grams": 200,
	}, ""), http.StatusCreated, &entry)
	suite.Equal("Added Oatmeal to Breakfast", env.Message)
	suite.Equal("Oatmeal", entry.FoodName)
	suite.Require().NotNil(entry.Nutrients.Calories)
	suite.InDelta(136, *entry.Nutrients.Calories, 1e-9)

	suite.Run("Summary", func() {
		var summary inbound.PlanSummaryDTO
		suite.data(suite.do(http.MethodGet, base+"/plan/summary", nil, ""), http.StatusOK, &summary)
		suite.Len(summary.Entries, 1)
		suite.InDelta(136, summary.Totals.Calories, 1e-9)
		suite.InDelta(136.0/2200, summary.Progress, 1e-9)
	})

	suite.Run("Swaps", func() {
		var swaps inbound.SwapsDTO
		suite.data(suite.do(http.MethodGet, base+"/plan/swaps", nil, ""), http.StatusOK, &swaps)
		suite.True(swaps.Found)
		suite.Require().Len(swaps.Swaps, 1)
		names := make([]string, 0, 3)
		for _, f := range swaps.Swaps[0].Substitutes {
			names = append(names, f.Name)
		}
		suite.Equal([]string{"Greek Yogurt", "Tofu", "Lentils"}, names)
	})

	suite.Run("UpdateEntry", func() {
		var updated inbound.PlanEntryDTO
		suite.data(suite.do(http.MethodPatch, base+"/plan/0", map[string]interface{}{"grams": 100}, ""), http.StatusOK, &updated)
		suite.Equal(100.0, updated.Grams)

		suite.failure(suite.do(http.MethodPatch, base+"/plan/0", map[string]interface{}{"grams": 5}, ""),
			http.StatusBadRequest, apperrors.CodeValidationFailed)
		suite.failure(suite.do(http.MethodPatch, base+"/plan/3", map[string]interface{}{"grams": 50}, ""),
			http.StatusNotFound, apperrors.CodeIndexOutOfRange)
		suite.failure(suite.do(http.MethodPatch, base+"/plan/x", map[string]interface{}{"grams": 50}, ""),
			http.StatusBadRequest, apperrors.CodeBadRequest)
	})

	suite.Run("RemoveAndClear", func() {
		suite.Equal(http.StatusNoContent, suite.do(http.MethodDelete, base+"/plan/0", nil, "").Code)

		var entries []inbound.PlanEntryDTO
		suite.data(suite.do(http.MethodGet, base+"/plan", nil, ""), http.StatusOK, &entries)
		suite.Empty(entries)

		suite.Equal(http.StatusNoContent, suite.do(http.MethodDelete, base+"/plan", nil, "").Code)
	})

	suite.Run("DeleteSession", func() {
		suite.Equal(http.StatusNoContent, suite.do(http.MethodDelete, base+"/", nil, "").Code)
		suite.failure(suite.do(http.MethodGet, base+"/plan", nil, ""), http.StatusNotFound, apperrors.CodeSessionNotFound)
	})
}

func (suite *ServerTestSuite) TestRequestValidation() {
	base := "/api/v1/sessions/" + suite.newSession(nil, "").ID

	suite.failure(suite.do(http.MethodPost, base+"/plan", map[string]interface{}{
		"meal_slot": "Brunch", "food_id": "1", "grams": 100,
	}, ""), http.StatusBadRequest, apperrors.CodeValidationFailed)

	suite.failure(suite.do(http.MethodPost, base+"/plan", map[string]interface{}{
		"meal_slot": "Lunch", "food_id": "999", "grams": 100,
	}, ""), http.StatusBadRequest, apperrors.CodeValidationFailed)

	suite.failure(suite.do(http.MethodPost, base+"/plan", map[string]interface{}{
		"meal_slot": "Lunch", "food_id": "1", "grams": 100, "extra": true,
	}, ""), http.StatusBadRequest, apperrors.CodeBadRequest)

	suite.failure(suite.do(http.MethodPost, "/api/v1/sessions", map[string]string{"diet_type": "carnivore"}, ""),
		http.StatusBadRequest, apperrors.CodeValidationFailed)
}

func (suite *ServerTestSuite) TestPreferencesAndBrowse() {
	base := "/api/v1/sessions/" + suite.newSession(map[string]string{"diet_type": "vegetarian"}, "").ID

	var list inbound.FoodList
	suite.data(suite.do(http.MethodGet, base+"/foods", nil, ""), http.StatusOK, &list)
	suite.Equal(10, list.Total)

	var sess inbound.SessionDTO
	suite.data(suite.do(http.MethodPut, base+"/preferences", map[string]string{
		"diet_type": "vegan", "calorie_basis": "BMR",
	}, ""), http.StatusOK, &sess)
	suite.Equal("vegan", sess.DietType)
	suite.Equal(1800.0, sess.Target.Calories)

	suite.data(suite.do(http.MethodGet, base+"/foods?category=Dairy", nil, ""), http.StatusOK, &list)
	suite.Zero(list.Total)
}

func (suite *ServerTestSuite) TestCatalog() {
	var categories []string
	suite.data(suite.do(http.MethodGet, "/api/v1/catalog/categories", nil, ""), http.StatusOK, &categories)
	suite.Len(categories, 9)

	var ranked []inbound.RankedFoodDTO
	suite.data(suite.do(http.MethodGet, "/api/v1/catalog/top?nutrient=protein&count=5", nil, ""), http.StatusOK, &ranked)
	suite.Require().Len(ranked, 5)
	names := make([]string, 0, len(ranked))
	for _, r := range ranked {
		names = append(names, r.Food.Name)
	}
	suite.Equal([]string{"Chicken Breast", "Cheddar Cheese", "Almonds", "Salmon Fillet", "Boiled Egg"}, names)
	suite.Equal(1, ranked[0].Rank)
	suite.Equal("g", ranked[0].Unit)

	suite.failure(suite.do(http.MethodGet, "/api/v1/catalog/top?nutrient=protein&count=3", nil, ""),
		http.StatusBadRequest, apperrors.CodeValidationFailed)
	suite.failure(suite.do(http.MethodGet, "/api/v1/catalog/top?nutrient=sodium", nil, ""),
		http.StatusBadRequest, apperrors.CodeValidationFailed)
	suite.failure(suite.do(http.MethodGet, "/api/v1/catalog/foods?limit=abc", nil, ""),
		http.StatusBadRequest, apperrors.CodeBadRequest)
}

func (suite *ServerTestSuite) TestAccountFlow() {
	register := map[string]interface{}{
		"username": "alice", "email": "alice@example.com", "password": "s3cret-pass",
		"weight_kg": 70, "height_cm": 175, "age": 30, "gender": "Male", "activity": "Moderately Active",
	}
	suite.data(suite.do(http.MethodPost, "/api/v1/auth/register", register, ""), http.StatusCreated, nil)
	suite.failure(suite.do(http.MethodPost, "/api/v1/auth/register", register, ""),
		http.StatusConflict, apperrors.CodeAccountAlreadyExists)

	suite.failure(suite.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"identifier": "alice", "password": "wrong",
	}, ""), http.StatusUnauthorized, apperrors.CodeInvalidCredentials)

	var token inbound.AuthTokenDTO
	suite.data(suite.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"identifier": "ALICE@example.com", "password": "s3cret-pass",
	}, ""), http.StatusOK, &token)
	suite.Require().NotEmpty(token.AccessToken)

	suite.Run("Metrics", func() {
		suite.failure(suite.do(http.MethodGet, "/api/v1/me/metrics", nil, ""), http.StatusUnauthorized, apperrors.CodeUnauthorized)
		suite.failure(suite.do(http.MethodGet, "/api/v1/me/metrics", nil, "garbage"), http.StatusUnauthorized, apperrors.CodeUnauthorized)

		var metrics inbound.BodyMetricsDTO
		suite.data(suite.do(http.MethodGet, "/api/v1/me/metrics", nil, token.AccessToken), http.StatusOK, &metrics)
		suite.InDelta(1648.75, metrics.BMR, 1e-9)
		suite.InDelta(1648.75*1.55, metrics.TDEE, 1e-9)
	})

	suite.Run("PersonalSession", func() {
		sess := suite.newSession(nil, token.AccessToken)
		suite.Require().NotNil(sess.UserID)
		suite.InDelta(1648.75*1.55, sess.Target.Calories, 1e-9)
	})
}

func (suite *ServerTestSuite) TestChat() {
	base := "/api/v1/sessions/" + suite.newSession(nil, "").ID + "/chat"

	var chat inbound.ChatDTO
	suite.data(suite.do(http.MethodGet, base, nil, ""), http.StatusOK, &chat)
	suite.Len(chat.Messages, 1)

	suite.data(suite.do(http.MethodPost, base, map[string]string{"message": "what about fiber?"}, ""), http.StatusOK, &chat)
	suite.Require().Len(chat.Messages, 3)
	suite.Equal("Try lentils for fiber.", chat.Messages[2].Content)

	suite.failure(suite.do(http.MethodPost, base, map[string]string{"message": ""}, ""),
		http.StatusBadRequest, apperrors.CodeValidationFailed)

	suite.data(suite.do(http.MethodDelete, base, nil, ""), http.StatusOK, &chat)
	suite.Len(chat.Messages, 1)
}

func (suite *ServerTestSuite) TestFeedback() {
	suite.data(suite.do(http.MethodPost, "/api/v1/feedback", map[string]string{
		"name": "Ada", "email": "ada@example.com", "subject": "Swaps", "message": "Love the swaps",
	}, ""), http.StatusCreated, nil)

	suite.failure(suite.do(http.MethodPost, "/api/v1/feedback", map[string]string{
		"name": "Ada", "email": "not-an-email", "message": "hi",
	}, ""), http.StatusBadRequest, apperrors.CodeValidationFailed)

	suite.failure(suite.do(http.MethodGet, "/api/v1/feedback", nil, ""), http.StatusUnauthorized, apperrors.CodeUnauthorized)
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
