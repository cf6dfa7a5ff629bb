package inbound

import (
	"context"
	"time"
)

// AssistantService is the nutrition chat bound to a planner session
type AssistantService interface {
	History(ctx context.Context, sessionID string) (*ChatDTO, error)
	Send(ctx context.Context, sessionID, message string) (*ChatDTO, error)
	Clear(ctx context.Context, sessionID string) (*ChatDTO, error)
}

// ChatMessageDTO is one chat turn
type ChatMessageDTO struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

// ChatDTO is the visible chat history
type ChatDTO struct {
	SessionID string           `json:"session_id"`
	Messages  []ChatMessageDTO `json:"messages"`
	Provider  string           `json:"provider,omitempty"`
}
