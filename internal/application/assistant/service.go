// Package assistant provides the nutrition chat bound to planner sessions
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nutridash/dashboard/internal/application/session"
	"github.com/nutridash/dashboard/internal/domain/ai"
	"github.com/nutridash/dashboard/internal/ports/inbound"
	"github.com/nutridash/dashboard/internal/ports/outbound"
	apperrors "github.com/nutridash/dashboard/pkg/errors"
	"go.uber.org/zap"
)

const (
	// Greeting opens every anonymous conversation
	Greeting = "👋 Hello! How can I help you with your nutrition and health today?"

	// SystemPrompt is sent ahead of every history
	SystemPrompt = "You are a friendly nutrition assistant."

	// AnonymousContext replaces the profile sentence for visitors
	AnonymousContext = "The user is not logged in, so no personal details are available."

	errorPrefix = "⚠️ Error: "
)

// ErrNoProvider is returned when no chat backend is configured
var ErrNoProvider = errors.New("no chat provider configured")

// Service implements inbound.AssistantService
type Service struct {
	sessions  *session.Registry
	users     outbound.UserRepository
	providers []outbound.ChatProvider
	metrics   outbound.MetricsRecorder
	logger    *zap.Logger
}

var _ inbound.AssistantService = (*Service)(nil)

// NewService creates the assistant. Providers are tried in order; the first
// is the primary and the rest are fallbacks.
func NewService(
	sessions *session.Registry,
	users outbound.UserRepository,
	metrics outbound.MetricsRecorder,
	logger *zap.Logger,
	providers ...outbound.ChatProvider,
) *Service {
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, string(p.Provider()))
	}
	namedLogger := logger.Named("assistant-service")
	namedLogger.Info("Assistant initialized", zap.Strings("providers", names))

	return &Service{
		sessions:  sessions,
		users:     users,
		providers: providers,
		metrics:   metrics,
		logger:    namedLogger,
	}
}

// History returns the conversation, seeding it on first access
func (s *Service) History(ctx context.Context, sessionID string) (*inbound.ChatDTO, error) {
	greeting, _ := s.profile(ctx, sessionID)

	var dto *inbound.ChatDTO
	err := s.sessions.Do(sessionID, func(sess *session.Session) error {
		chat := conversation(sess, greeting)
		dto = toDTO(sessionID, chat, "")
		return nil
	})
	if err != nil {
		return nil, translate(err, sessionID)
	}
	return dto, nil
}

// Send appends the user's message, asks the provider and appends its reply.
// A provider failure is recorded in the history as an error turn.
func (s *Service) Send(ctx context.Context, sessionID, message string) (*inbound.ChatDTO, error) {
	greeting, userContext := s.profile(ctx, sessionID)

	var history []ai.Message
	err := s.sessions.Do(sessionID, func(sess *session.Session) error {
		chat := conversation(sess, greeting)
		if err := chat.AddUserMessage(message); err != nil {
			return err
		}
		history = chat.Messages()
		return nil
	})
	if err != nil {
		return nil, translate(err, sessionID)
	}

	prompt := make([]ai.Message, 0, len(history)+2)
	prompt = append(prompt,
		ai.Message{Role: ai.RoleSystem, Content: SystemPrompt},
		ai.Message{Role: ai.RoleSystem, Content: userContext},
	)
	prompt = append(prompt, history...)

	reply, provider, chatErr := s.chat(ctx, prompt)
	var answer string
	if chatErr != nil {
		s.logger.Error("Chat request failed",
			zap.String("session_id", sessionID),
			zap.String("code", string(apperrors.GetCode(chatErr))),
			zap.Error(chatErr),
		)
		answer = errorPrefix + failureText(chatErr)
	} else {
		answer = reply.Content
	}

	var dto *inbound.ChatDTO
	err = s.sessions.Do(sessionID, func(sess *session.Session) error {
		chat := conversation(sess, greeting)
		chat.AddAssistantMessage(answer)
		dto = toDTO(sessionID, chat, provider)
		return nil
	})
	if err != nil {
		return nil, translate(err, sessionID)
	}
	return dto, nil
}

// Clear resets the conversation to the greeting
func (s *Service) Clear(ctx context.Context, sessionID string) (*inbound.ChatDTO, error) {
	greeting, _ := s.profile(ctx, sessionID)

	var dto *inbound.ChatDTO
	err := s.sessions.Do(sessionID, func(sess *session.Session) error {
		chat := conversation(sess, greeting)
		chat.Reset(greeting)
		dto = toDTO(sessionID, chat, "")
		return nil
	})
	if err != nil {
		return nil, translate(err, sessionID)
	}
	s.logger.Debug("Chat cleared", zap.String("session_id", sessionID))
	return dto, nil
}

// chat tries each provider in order
func (s *Service) chat(ctx context.Context, messages []ai.Message) (*outbound.ChatReply, string, error) {
	if len(s.providers) == 0 {
		return nil, "", ErrNoProvider
	}

	var (
		lastErr  error
		lastName string
	)
	for i, p := range s.providers {
		name := string(p.Provider())
		start := time.Now()
		reply, err := p.Chat(ctx, messages)
		s.metrics.RecordChatRequest(name, time.Since(start), err)
		if err == nil {
			if i > 0 {
				s.logger.Info("Fallback provider succeeded", zap.String("provider", name))
			}
			return reply, name, nil
		}
		lastErr, lastName = err, name
		if ctx.Err() != nil {
			break
		}
		s.logger.Warn("Provider failed, trying fallback",
			zap.String("provider", name),
			zap.Error(err),
		)
	}
	return nil, "", apperrors.NewExternalServiceError(lastName, lastErr)
}

// failureText is the provider's own message, without the error envelope
func failureText(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Cause != nil {
		return appErr.Cause.Error()
	}
	return err.Error()
}

// profile builds the greeting and context sentence for the session's user
func (s *Service) profile(ctx context.Context, sessionID string) (string, string) {
	var userID uuid.UUID
	var loggedIn bool
	_ = s.sessions.Do(sessionID, func(sess *session.Session) error {
		if id := sess.UserID(); id != nil {
			userID, loggedIn = *id, true
		}
		return nil
	})
	if !loggedIn || s.users == nil {
		return Greeting, AnonymousContext
	}

	found, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn("Could not load chat profile", zap.String("user_id", userID.String()), zap.Error(err))
		return Greeting, AnonymousContext
	}

	b := found.Body()
	userContext := fmt.Sprintf(
		"The user is %d years old, weighs %g kg, is %g cm tall, and identifies as %s. Their activity level is %s.",
		b.Age, b.WeightKg, b.HeightCm, b.Gender, b.Activity,
	)
	return PersonalGreeting(found.Username()), userContext
}

// PersonalGreeting greets a logged-in user by name
func PersonalGreeting(username string) string {
	return fmt.Sprintf("👋 Hello **%s**! How can I help you with your nutrition and health today?", username)
}

// conversation returns the session's chat, creating it or upgrading an
// anonymous greeting to a personal one.
func conversation(sess *session.Session, greeting string) *ai.Conversation {
	chat := sess.Chat()
	if chat == nil {
		chat = ai.NewConversation(greeting)
		sess.SetChat(chat)
		return chat
	}
	if chat.Greeting() == Greeting && greeting != Greeting {
		chat.Regreet(greeting)
	}
	return chat
}

func toDTO(sessionID string, chat *ai.Conversation, provider string) *inbound.ChatDTO {
	msgs := chat.Messages()
	out := make([]inbound.ChatMessageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, inbound.ChatMessageDTO{
			Role:    string(m.Role),
			Content: m.Content,
			SentAt:  m.SentAt,
		})
	}
	return &inbound.ChatDTO{SessionID: sessionID, Messages: out, Provider: provider}
}

func translate(err error, sessionID string) error {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return apperrors.NewSessionNotFoundError(sessionID)
	case errors.Is(err, ai.ErrEmptyMessage), errors.Is(err, ai.ErrMessageTooLong):
		return apperrors.NewValidationError(err.Error())
	default:
		return apperrors.Wrap(err, "Assistant operation failed")
	}
}
