// Package feedback provides the application layer for the feedback form
package feedback

import (
	"context"
	"errors"

	"github.com/nutridash/dashboard/internal/domain/feedback"
	"github.com/nutridash/dashboard/internal/ports/inbound"
	"github.com/nutridash/dashboard/internal/ports/outbound"
	apperrors "github.com/nutridash/dashboard/pkg/errors"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// Service implements inbound.FeedbackService
type Service struct {
	repo    outbound.FeedbackRepository
	metrics outbound.MetricsRecorder
	logger  *zap.Logger
}

var _ inbound.FeedbackService = (*Service)(nil)

// NewService creates a new feedback service
func NewService(repo outbound.FeedbackRepository, metrics outbound.MetricsRecorder, logger *zap.Logger) *Service {
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	return &Service{
		repo:    repo,
		metrics: metrics,
		logger:  logger.Named("feedback-service"),
	}
}

// Submit validates and stores a submission
func (s *Service) Submit(ctx context.Context, cmd inbound.SubmitFeedbackCommand) (*inbound.FeedbackDTO, error) {
	fb, err := feedback.NewFeedback(cmd.Name, cmd.Email, cmd.Subject, cmd.Message)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := s.repo.Create(ctx, fb); err != nil {
		return nil, apperrors.NewDatabaseError("save feedback", err)
	}
	s.metrics.RecordFeedback()

	s.logger.Info("Feedback submitted",
		zap.String("feedback_id", fb.ID().String()),
		zap.String("subject", fb.Subject()),
	)

	dto := toDTO(fb)
	return &dto, nil
}

// ListRecent returns the newest submissions first
func (s *Service) ListRecent(ctx context.Context, limit int) ([]inbound.FeedbackDTO, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	items, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		if errors.Is(err, outbound.ErrNotFound) {
			return []inbound.FeedbackDTO{}, nil
		}
		return nil, apperrors.NewDatabaseError("list feedback", err)
	}

	out := make([]inbound.FeedbackDTO, 0, len(items))
	for _, fb := range items {
		out = append(out, toDTO(fb))
	}
	return out, nil
}

func toDTO(fb *feedback.Feedback) inbound.FeedbackDTO {
	return inbound.FeedbackDTO{
		ID:          fb.ID(),
		Name:        fb.Name(),
		Email:       fb.Email(),
		Subject:     fb.Subject(),
		Message:     fb.Message(),
		SubmittedAt: fb.SubmittedAt(),
	}
}
