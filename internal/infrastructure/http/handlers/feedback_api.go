package handlers

import (
	"net/http"

	"github.com/nutridash/dashboard/internal/ports/inbound"
	"go.uber.org/zap"
)

// FeedbackAPIHandlers accepts contact form submissions
type FeedbackAPIHandlers struct {
	base
	feedback inbound.FeedbackService
}

// NewFeedbackAPIHandlers creates the feedback handlers
func NewFeedbackAPIHandlers(feedback inbound.FeedbackService, v *Validator, logger *zap.Logger) *FeedbackAPIHandlers {
	return &FeedbackAPIHandlers{
		base:     base{validator: v, logger: logger.Named("feedback-api")},
		feedback: feedback,
	}
}

// FeedbackRequest is the feedback form
type FeedbackRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackAPIHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	stored, err := h.feedback.Submit(r.Context(), inbound.SubmitFeedbackCommand{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    stored,
		Message: "Thank you for your feedback!",
	})
}

// ListRecent handles GET /api/v1/feedback?limit=20
func (h *FeedbackAPIHandlers) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items, err := h.feedback.ListRecent(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, items)
}
