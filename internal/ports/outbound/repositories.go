// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/nutridash/dashboard/internal/domain/ai"
	"github.com/nutridash/dashboard/internal/domain/feedback"
	"github.com/nutridash/dashboard/internal/domain/food"
	"github.com/nutridash/dashboard/internal/domain/user"
)

// ErrCacheMiss is returned by CacheRepository.Get when the key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// ErrNotFound is returned by repositories when no row matches
var ErrNotFound = errors.New("record not found")

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *user.User) error
	Update(ctx context.Context, user *user.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	// FindByIdentifier matches username or email, case-insensitively
	FindByIdentifier(ctx context.Context, identifier string) (*user.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

// FeedbackRepository defines the interface for feedback persistence
type FeedbackRepository interface {
	Create(ctx context.Context, fb *feedback.Feedback) error
	ListRecent(ctx context.Context, limit int) ([]*feedback.Feedback, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogSource fetches the raw catalog CSV
type CatalogSource interface {
	// Open returns the CSV stream. Callers close it.
	Open(ctx context.Context) (io.ReadCloser, error)
	// Location identifies the source in logs and cache keys
	Location() string
}

// CatalogRepository provides the parsed food catalog. Load is idempotent:
// repeated calls return the same in-memory catalog.
type CatalogRepository interface {
	Load(ctx context.Context) (*food.Catalog, error)
}

// ChatProvider sends a conversation to a completion backend
type ChatProvider interface {
	Chat(ctx context.Context, messages []ai.Message) (*ChatReply, error)
	Provider() ai.ProviderType
	HealthCheck(ctx context.Context) error
}

// ChatReply is the assistant's answer
type ChatReply struct {
	Content string
	Model   string
	Usage   ai.TokenUsage
}

// MetricsRecorder receives business metrics from the application layer
type MetricsRecorder interface {
	RecordPlanEvent(event string)
	RecordChatRequest(provider string, duration time.Duration, err error)
	RecordRegistration()
	RecordFeedback()
	SetActiveSessions(n int)
}

// NopMetrics discards every metric
type NopMetrics struct{}

func (NopMetrics) RecordPlanEvent(string) {}
func (NopMetrics) RecordChatRequest(string, time.Duration, error) {}
func (NopMetrics) RecordRegistration() {}
func (NopMetrics) RecordFeedback() {}
func (NopMetrics) SetActiveSessions(int) {}
