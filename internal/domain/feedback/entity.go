// Package feedback defines user feedback submissions
package feedback

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNameRequired    = errors.New("name is required")
	ErrEmailRequired   = errors.New("email is required")
	ErrEmailInvalid    = errors.New("invalid email format")
	ErrMessageRequired = errors.New("message is required")
	ErrMessageTooLong  = errors.New("message must not exceed 5000 characters")
)

// Feedback is a message left through the feedback form
type Feedback struct {
	id          uuid.UUID
	name        string
	email       string
	subject     string
	message     string
	submittedAt time.Time
}

// NewFeedback validates and timestamps a submission. Subject is optional.
func NewFeedback(name, email, subject, message string) (*Feedback, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	message = strings.TrimSpace(message)

	if name == "" {
		return nil, ErrNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if !strings.Contains(email, "@") {
		return nil, ErrEmailInvalid
	}
	if message == "" {
		return nil, ErrMessageRequired
	}
	if len(message) > 5000 {
		return nil, ErrMessageTooLong
	}

	return &Feedback{
		id:          uuid.New(),
		name:        name,
		email:       email,
		subject:     strings.TrimSpace(subject),
		message:     message,
		submittedAt: time.Now(),
	}, nil
}

// Restore rebuilds feedback from persisted fields
func Restore(id uuid.UUID, name, email, subject, message string, submittedAt time.Time) *Feedback {
	return &Feedback{
		id:          id,
		name:        name,
		email:       email,
		subject:     subject,
		message:     message,
		submittedAt: submittedAt,
	}
}

func (f *Feedback) ID() uuid.UUID { return f.id }
func (f *Feedback) Name() string { return f.name }
func (f *Feedback) Email() string { return f.email }
func (f *Feedback) Subject() string { return f.subject }
func (f *Feedback) Message() string { return f.message }
func (f *Feedback) SubmittedAt() time.Time { return f.submittedAt }
