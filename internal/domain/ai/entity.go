// Package ai defines the assistant conversation entity
package ai

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyMessage   = errors.New("message cannot be empty")
	ErrMessageTooLong = errors.New("message must not exceed 4000 characters")
)

// MaxMessageLength bounds a single user message
const MaxMessageLength = 4000

// Role is the author of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ProviderType represents the chat completion backends
type ProviderType string

const (
	ProviderTypeOpenAI ProviderType = "openai"
	ProviderTypeOllama ProviderType = "ollama"
	ProviderTypeMock   ProviderType = "mock"
)

// Message is one turn of a conversation
type Message struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

// TokenUsage tracks token consumption
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Conversation is the chat history of one session. The first message is
// always the assistant greeting.
type Conversation struct {
	id        uuid.UUID
	messages  []Message
	createdAt time.Time
	updatedAt time.Time
}

// NewConversation starts a conversation seeded with greeting
func NewConversation(greeting string) *Conversation {
	now := time.Now()
	return &Conversation{
		id:        uuid.New(),
		messages:  []Message{{Role: RoleAssistant, Content: greeting, SentAt: now}},
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the conversation ID
func (c *Conversation) ID() uuid.UUID {
	return c.id
}

// Messages returns a copy of the history
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Greeting returns the seed message
func (c *Conversation) Greeting() string {
	return c.messages[0].Content
}

// UpdatedAt returns when the last message was added
func (c *Conversation) UpdatedAt() time.Time {
	return c.updatedAt
}

// AddUserMessage appends a user turn
func (c *Conversation) AddUserMessage(content string) error {
	if err := validatePrompt(content); err != nil {
		return err
	}
	c.append(RoleUser, content)
	return nil
}

// AddAssistantMessage appends an assistant turn
func (c *Conversation) AddAssistantMessage(content string) {
	c.append(RoleAssistant, content)
}

// Regreet swaps a generic greeting for a personalised one without touching
// the rest of the history.
func (c *Conversation) Regreet(greeting string) {
	c.messages[0].Content = greeting
}

// Reset drops the history back to a single greeting
func (c *Conversation) Reset(greeting string) {
	now := time.Now()
	c.messages = []Message{{Role: RoleAssistant, Content: greeting, SentAt: now}}
	c.updatedAt = now
}

func (c *Conversation) append(role Role, content string) {
	now := time.Now()
	c.messages = append(c.messages, Message{Role: role, Content: content, SentAt: now})
	c.updatedAt = now
}

func validatePrompt(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}
	if len(content) > MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}
