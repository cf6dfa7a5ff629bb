package handlers

import (
	"net/http"

	"github.com/nutridash/dashboard/internal/ports/inbound"
	"go.uber.org/zap"
)

// ChatAPIHandlers serves the nutrition assistant bound to a planner session
type ChatAPIHandlers struct {
	base
	assistant inbound.AssistantService
}

// NewChatAPIHandlers creates the chat handlers
func NewChatAPIHandlers(assistant inbound.AssistantService, v *Validator, logger *zap.Logger) *ChatAPIHandlers {
	return &ChatAPIHandlers{
		base:      base{validator: v, logger: logger.Named("chat-api")},
		assistant: assistant,
	}
}

// ChatRequest is one user turn
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// History handles GET /api/v1/sessions/{sessionID}/chat
func (h *ChatAPIHandlers) History(w http.ResponseWriter, r *http.Request) {
	chat, err := h.assistant.History(r.Context(), sessionID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, chat)
}

// Send handles POST /api/v1/sessions/{sessionID}/chat. A provider failure is
// reported as an assistant turn, not as an HTTP error.
func (h *ChatAPIHandlers) Send(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	chat, err := h.assistant.Send(r.Context(), sessionID(r), req.Message)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, chat)
}

// Clear handles DELETE /api/v1/sessions/{sessionID}/chat
func (h *ChatAPIHandlers) Clear(w http.ResponseWriter, r *http.Request) {
	chat, err := h.assistant.Clear(r.Context(), sessionID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, chat)
}
