// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nutridash/dashboard/internal/domain/ai"
	"github.com/nutridash/dashboard/internal/domain/feedback"
	"github.com/nutridash/dashboard/internal/domain/food"
	"github.com/nutridash/dashboard/internal/domain/user"
	"github.com/nutridash/dashboard/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository provides a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

var _ outbound.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	return userArg(args)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	return userArg(args)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	return userArg(args)
}

func (m *MockUserRepository) FindByIdentifier(ctx context.Context, identifier string) (*user.User, error) {
	args := m.Called(ctx, identifier)
	return userArg(args)
}

func (m *MockUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func userArg(args mock.Arguments) (*user.User, error) {
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

// MockFeedbackRepository provides a mock implementation of FeedbackRepository
type MockFeedbackRepository struct {
	mock.Mock
}

var _ outbound.FeedbackRepository = (*MockFeedbackRepository)(nil)

func (m *MockFeedbackRepository) Create(ctx context.Context, fb *feedback.Feedback) error {
	return m.Called(ctx, fb).Error(0)
}

func (m *MockFeedbackRepository) ListRecent(ctx context.Context, limit int) ([]*feedback.Feedback, error) {
	args := m.Called(ctx, limit)
	list, _ := args.Get(0).([]*feedback.Feedback)
	return list, args.Error(1)
}

// MockCacheRepository provides a mock implementation of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

var _ outbound.CacheRepository = (*MockCacheRepository)(nil)

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// StaticCatalog is a CatalogRepository serving a fixed catalog
type StaticCatalog struct {
	Catalog *food.Catalog
	Err     error
}

var _ outbound.CatalogRepository = (*StaticCatalog)(nil)

func (s *StaticCatalog) Load(context.Context) (*food.Catalog, error) {
	return s.Catalog, s.Err
}

// MockChatProvider provides a mock implementation of ChatProvider
type MockChatProvider struct {
	mock.Mock
	Type ai.ProviderType
}

var _ outbound.ChatProvider = (*MockChatProvider)(nil)

// NewMockChatProvider creates a provider reporting the given type
func NewMockChatProvider(t ai.ProviderType) *MockChatProvider {
	return &MockChatProvider{Type: t}
}

func (m *MockChatProvider) Chat(ctx context.Context, messages []ai.Message) (*outbound.ChatReply, error) {
	args := m.Called(ctx, messages)
	reply, _ := args.Get(0).(*outbound.ChatReply)
	return reply, args.Error(1)
}

func (m *MockChatProvider) Provider() ai.ProviderType {
	if m.Type == "" {
		return ai.ProviderTypeMock
	}
	return m.Type
}

func (m *MockChatProvider) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockMetricsRecorder provides a mock implementation of MetricsRecorder
type MockMetricsRecorder struct {
	mock.Mock
}

var _ outbound.MetricsRecorder = (*MockMetricsRecorder)(nil)

func (m *MockMetricsRecorder) RecordPlanEvent(event string) {
	m.Called(event)
}

func (m *MockMetricsRecorder) RecordChatRequest(provider string, duration time.Duration, err error) {
	m.Called(provider, duration, err)
}

func (m *MockMetricsRecorder) RecordRegistration() {
	m.Called()
}

func (m *MockMetricsRecorder) RecordFeedback() {
	m.Called()
}

func (m *MockMetricsRecorder) SetActiveSessions(n int) {
	m.Called(n)
}
