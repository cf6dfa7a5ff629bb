// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PlannerService defines the meal plan use cases. Every call is scoped to a
// session; sessions never share plan state.
type PlannerService interface {
	// Session lifecycle
	CreateSession(ctx context.Context, cmd CreateSessionCommand) (*SessionDTO, error)
	GetSession(ctx context.Context, sessionID string) (*SessionDTO, error)
	UpdatePreferences(ctx context.Context, cmd UpdatePreferencesCommand) (*SessionDTO, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Catalog within the session's diet
	BrowseFoods(ctx context.Context, sessionID string, query FoodQuery) (*FoodList, error)

	// Plan commands
	AddEntry(ctx context.Context, cmd AddEntryCommand) (*PlanEntryDTO, error)
	UpdateEntry(ctx context.Context, cmd UpdateEntryCommand) (*PlanEntryDTO, error)
	RemoveEntry(ctx context.Context, sessionID string, index int) error
	ClearPlan(ctx context.Context, sessionID string) error

	// Plan queries
	ListEntries(ctx context.Context, sessionID string) ([]PlanEntryDTO, error)
	Summary(ctx context.Context, sessionID string) (*PlanSummaryDTO, error)
	Swaps(ctx context.Context, sessionID string) (*SwapsDTO, error)
}

// CreateSessionCommand opens a planner session, optionally for a logged-in user
type CreateSessionCommand struct {
	UserID       *uuid.UUID
	DietType     string
	CalorieBasis string
}

// UpdatePreferencesCommand changes diet or calorie basis. Nil fields are kept.
type UpdatePreferencesCommand struct {
	SessionID    string
	DietType     *string
	CalorieBasis *string
}

// AddEntryCommand appends a food portion to a meal
type AddEntryCommand struct {
	SessionID string
	MealSlot  string
	FoodID    string
	Grams     float64
}

// UpdateEntryCommand changes grams and/or meal of one entry. Nil fields are kept.
type UpdateEntryCommand struct {
	SessionID string
	Index     int
	Grams     *float64
	MealSlot  *string
}

// FoodQuery filters catalog browsing
type FoodQuery struct {
	Categories []string
	Search     string
	Offset     int
	Limit      int
}

// SessionDTO describes a planner session
type SessionDTO struct {
	ID           string         `json:"id"`
	UserID       *uuid.UUID     `json:"user_id,omitempty"`
	DietType     string         `json:"diet_type"`
	CalorieBasis string         `json:"calorie_basis"`
	Target       DailyTargetDTO `json:"target"`
	Entries      int            `json:"entries"`
	CreatedAt    time.Time      `json:"created_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
}

// DailyTargetDTO is the calorie goal with derived macros
type DailyTargetDTO struct {
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Fat          float64 `json:"fat"`
	Fiber        float64 `json:"fiber"`
	SugarCeiling float64 `json:"sugar_ceiling"`
}

// FoodDTO is a catalog row. Nil nutrients are unknown.
type FoodDTO struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category,omitempty"`
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
	Fiber    *float64 `json:"fiber"`
	Sugar    *float64 `json:"sugar"`
}

// FoodList is a page of catalog rows
type FoodList struct {
	Foods  []FoodDTO `json:"foods"`
	Total  int       `json:"total"`
	Offset int       `json:"offset"`
	Limit  int       `json:"limit"`
}

// NutrientsDTO are scaled amounts for a portion. Nil values are unknown.
type NutrientsDTO struct {
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
	Fiber    *float64 `json:"fiber"`
	Sugar    *float64 `json:"sugar"`
}

// PlanEntryDTO is one plan row with its scaled nutrients
type PlanEntryDTO struct {
	Index     int          `json:"index"`
	ID        uuid.UUID    `json:"id"`
	MealSlot  string       `json:"meal_slot"`
	FoodID    string       `json:"food_id"`
	FoodName  string       `json:"food_name"`
	Category  string       `json:"category,omitempty"`
	Grams     float64      `json:"grams"`
	Nutrients NutrientsDTO `json:"nutrients"`
}

// TotalsDTO are plan-wide sums
type TotalsDTO struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
	Entries  int     `json:"entries"`
}

// PlanSummaryDTO is the plan with totals measured against the daily target
type PlanSummaryDTO struct {
	Entries  []PlanEntryDTO `json:"entries"`
	Totals   TotalsDTO      `json:"totals"`
	Target   DailyTargetDTO `json:"target"`
	Progress float64        `json:"progress"`
}

// SwapDTO lists substitutes for one plan entry
type SwapDTO struct {
	Entry       PlanEntryDTO `json:"entry"`
	Substitutes []FoodDTO    `json:"substitutes"`
}

// SwapsDTO is the swap search over the whole plan
type SwapsDTO struct {
	Swaps   []SwapDTO `json:"swaps"`
	Found   bool      `json:"found"`
	Message string    `json:"message,omitempty"`
}
