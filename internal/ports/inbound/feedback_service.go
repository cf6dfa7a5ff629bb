package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FeedbackService collects feedback form submissions
type FeedbackService interface {
	Submit(ctx context.Context, cmd SubmitFeedbackCommand) (*FeedbackDTO, error)
	ListRecent(ctx context.Context, limit int) ([]FeedbackDTO, error)
}

// SubmitFeedbackCommand is the feedback form
type SubmitFeedbackCommand struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// FeedbackDTO is a stored submission
type FeedbackDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Subject     string    `json:"subject,omitempty"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submitted_at"`
}
