// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"github.com/nutridash/dashboard/internal/domain/feedback"
	"github.com/nutridash/dashboard/internal/domain/user"
)

// UserToModel converts a domain user to a GORM model
func UserToModel(u *user.User) *UserModel {
	body := u.Body()
	return &UserModel{
		ID:           u.ID(),
		Username:     u.Username(),
		Email:        u.Email(),
		PasswordHash: u.PasswordHash(),
		Body: BodyMetricsModel{
			WeightKg: body.WeightKg,
			HeightCm: body.HeightCm,
			Age:      body.Age,
			Gender:   string(body.Gender),
			Activity: string(body.Activity),
		},
		CreatedAt:   u.CreatedAt(),
		UpdatedAt:   u.UpdatedAt(),
		LastLoginAt: u.LastLoginAt(),
	}
}

// ModelToUser converts a GORM model to a domain user
func ModelToUser(m *UserModel) *user.User {
	body := user.BodyMetrics{
		WeightKg: m.Body.WeightKg,
		HeightCm: m.Body.HeightCm,
		Age:      m.Body.Age,
		Gender:   user.Gender(m.Body.Gender),
		Activity: user.ActivityLevel(m.Body.Activity),
	}
	return user.Restore(m.ID, m.Username, m.Email, m.PasswordHash, body, m.CreatedAt, m.UpdatedAt, m.LastLoginAt)
}

// FeedbackToModel converts a domain feedback to a GORM model
func FeedbackToModel(f *feedback.Feedback) *FeedbackModel {
	return &FeedbackModel{
		ID:          f.ID(),
		Name:        f.Name(),
		Email:       f.Email(),
		Subject:     f.Subject(),
		Message:     f.Message(),
		SubmittedAt: f.SubmittedAt(),
	}
}

// ModelToFeedback converts a GORM model to a domain feedback
func ModelToFeedback(m *FeedbackModel) *feedback.Feedback {
	return feedback.Restore(m.ID, m.Name, m.Email, m.Subject, m.Message, m.SubmittedAt)
}
