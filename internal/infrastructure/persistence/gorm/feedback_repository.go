package gorm

import (
	"context"

	"github.com/nutridash/dashboard/internal/domain/feedback"
	"github.com/nutridash/dashboard/internal/ports/outbound"
	"gorm.io/gorm"
)

// FeedbackRepository implements the feedback repository interface using GORM
type FeedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *gorm.DB) outbound.FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create stores a submission
func (r *FeedbackRepository) Create(ctx context.Context, fb *feedback.Feedback) error {
	return r.db.WithContext(ctx).Create(FeedbackToModel(fb)).Error
}

// ListRecent returns up to limit submissions, newest first
func (r *FeedbackRepository) ListRecent(ctx context.Context, limit int) ([]*feedback.Feedback, error) {
	var models []FeedbackModel

	result := r.db.WithContext(ctx).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	out := make([]*feedback.Feedback, 0, len(models))
	for i := range models {
		out = append(out, ModelToFeedback(&models[i]))
	}
	return out, nil
}
