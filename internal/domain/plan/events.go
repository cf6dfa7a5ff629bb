package plan

import (
	"time"

	"github.com/google/uuid"
)

// EntryAddedEvent is raised when a food portion is appended to the plan
type EntryAddedEvent struct {
	EntryID  uuid.UUID
	MealSlot MealSlot
	FoodID   string
	Grams    float64
	AddedAt  time.Time
}

func (e EntryAddedEvent) EventName() string {
	return "plan.entry.added"
}

func (e EntryAddedEvent) OccurredAt() time.Time {
	return e.AddedAt
}

// EntryGramsUpdatedEvent is raised when a portion size changes
type EntryGramsUpdatedEvent struct {
	EntryID   uuid.UUID
	OldGrams  float64
	NewGrams  float64
	UpdatedAt time.Time
}

func (e EntryGramsUpdatedEvent) EventName() string {
	return "plan.entry.grams_updated"
}

func (e EntryGramsUpdatedEvent) OccurredAt() time.Time {
	return e.UpdatedAt
}

// EntryMovedEvent is raised when an entry is reassigned to another meal
type EntryMovedEvent struct {
	EntryID uuid.UUID
	From    MealSlot
	To      MealSlot
	MovedAt time.Time
}

func (e EntryMovedEvent) EventName() string {
	return "plan.entry.moved"
}

func (e EntryMovedEvent) OccurredAt() time.Time {
	return e.MovedAt
}

// EntryRemovedEvent is raised when an entry is deleted
type EntryRemovedEvent struct {
	EntryID   uuid.UUID
	FoodID    string
	RemovedAt time.Time
}

func (e EntryRemovedEvent) EventName() string {
	return "plan.entry.removed"
}

func (e EntryRemovedEvent) OccurredAt() time.Time {
	return e.RemovedAt
}

// PlanClearedEvent is raised when every entry is dropped at once
type PlanClearedEvent struct {
	Removed   int
	ClearedAt time.Time
}

func (e PlanClearedEvent) EventName() string {
	return "plan.cleared"
}

func (e PlanClearedEvent) OccurredAt() time.Time {
	return e.ClearedAt
}
