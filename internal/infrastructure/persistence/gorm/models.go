// Package gorm provides GORM model definitions for the application
package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel represents the GORM model for users
type UserModel struct {
	ID           uuid.UUID        `gorm:"type:char(36);primaryKey"`
	Username     string           `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email        string           `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string           `gorm:"type:varchar(255);not null"`
	Body         BodyMetricsModel `gorm:"embedded;embeddedPrefix:body_"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// BodyMetricsModel represents embedded body metrics
type BodyMetricsModel struct {
	WeightKg float64 `gorm:"not null"`
	HeightCm float64 `gorm:"not null"`
	Age      int     `gorm:"not null"`
	Gender   string  `gorm:"type:varchar(10);not null"`
	Activity string  `gorm:"type:varchar(30);not null"`
}

// FeedbackModel represents the GORM model for feedback submissions
type FeedbackModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Email       string    `gorm:"type:varchar(255);not null"`
	Subject     string    `gorm:"type:varchar(255)"`
	Message     string    `gorm:"type:text;not null"`
	SubmittedAt time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for UserModel
func (UserModel) TableName() string {
	return "users"
}

// TableName specifies the table name for FeedbackModel
func (FeedbackModel) TableName() string {
	return "feedback"
}

// BeforeCreate hook for UserModel
func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for FeedbackModel
func (f *FeedbackModel) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// AllModels returns all models for migration
func AllModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&FeedbackModel{},
	}
}
