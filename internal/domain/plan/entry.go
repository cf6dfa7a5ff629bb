// Package plan implements the meal plan store and the nutrient math over it
package plan

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// MealSlot is the meal an entry is assigned to
type MealSlot string

const (
	Breakfast MealSlot = "Breakfast"
	Lunch     MealSlot = "Lunch"
	Dinner    MealSlot = "Dinner"
	Snack     MealSlot = "Snack"
)

// MealSlots lists the slots in display order
var MealSlots = []MealSlot{Breakfast, Lunch, Dinner, Snack}

// ParseMealSlot parses a slot name case-insensitively
func ParseMealSlot(s string) (MealSlot, error) {
	for _, slot := range MealSlots {
		if strings.EqualFold(strings.TrimSpace(s), string(slot)) {
			return slot, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMealSlot, s)
}

// IsValid reports whether the slot is one of the known meals
func (m MealSlot) IsValid() bool {
	for _, slot := range MealSlots {
		if m == slot {
			return true
		}
	}
	return false
}

// Entry is one food portion assigned to a meal. Entries are values; the
// Store hands out copies.
type Entry struct {
	id       uuid.UUID
	mealSlot MealSlot
	foodID   string
	grams    float64
}

// ID returns the entry identity
func (e Entry) ID() uuid.UUID {
	return e.id
}

// MealSlot returns the assigned meal
func (e Entry) MealSlot() MealSlot {
	return e.mealSlot
}

// FoodID returns the referenced catalog record
func (e Entry) FoodID() string {
	return e.foodID
}

// Grams returns the portion size
func (e Entry) Grams() float64 {
	return e.grams
}

// RestoreEntry rebuilds an entry from stored fields without validation
func RestoreEntry(id uuid.UUID, slot MealSlot, foodID string, grams float64) Entry {
	return Entry{id: id, mealSlot: slot, foodID: foodID, grams: grams}
}
