// Package food holds the food catalog, its diet filter and dashboard queries
package food

import (
	"fmt"
	"strings"
)

// Record is one catalog row. Nutrients are per 100 g.
type Record struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Calories Amount `json:"calories"`
	Protein  Amount `json:"protein"`
	Carbs    Amount `json:"carbs"`
	Fat      Amount `json:"fat"`
	Fiber    Amount `json:"fiber"`
	Sugar    Amount `json:"sugar"`
}

// Validate checks the record invariants
func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	for _, n := range AllNutrients {
		if v, ok := r.Nutrient(n).Value(); ok && v < 0 {
			return fmt.Errorf("%w: %s of %q is %g", ErrNegativeNutrient, n, r.Name, v)
		}
	}
	return nil
}

// HasCategory reports whether the category is known
func (r Record) HasCategory() bool {
	return r.Category != ""
}

// Nutrient returns the per-100g value for n
func (r Record) Nutrient(n Nutrient) Amount {
	switch n {
	case Calories:
		return r.Calories
	case Protein:
		return r.Protein
	case Carbs:
		return r.Carbs
	case Fat:
		return r.Fat
	case Fiber:
		return r.Fiber
	case Sugar:
		return r.Sugar
	default:
		return None()
	}
}

// Nutrient names one of the six tracked nutrient columns
type Nutrient string

const (
	Calories Nutrient = "calories"
	Protein  Nutrient = "protein"
	Carbs    Nutrient = "carbs"
	Fat      Nutrient = "fat"
	Fiber    Nutrient = "fiber"
	Sugar    Nutrient = "sugar"
)

// AllNutrients lists the nutrients in display order
var AllNutrients = []Nutrient{Calories, Protein, Carbs, Fat, Fiber, Sugar}

// ParseNutrient parses a nutrient name case-insensitively
func ParseNutrient(s string) (Nutrient, error) {
	n := Nutrient(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllNutrients {
		if n == known {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownNutrient, s)
}

// Unit returns the display unit of the nutrient
func (n Nutrient) Unit() string {
	if n == Calories {
		return "kcal"
	}
	return "g"
}
