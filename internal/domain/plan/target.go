package plan

import (
	"fmt"
	"strings"
)

// Fallback calorie targets when no profile is available
const (
	DefaultBMR  = 1800.0
	DefaultTDEE = 2200.0
)

// CalorieBasis selects which profile figure drives the daily target
type CalorieBasis string

const (
	BasisBMR  CalorieBasis = "BMR"
	BasisTDEE CalorieBasis = "TDEE"
)

// ParseCalorieBasis accepts BMR or TDEE case-insensitively; empty means TDEE
func ParseCalorieBasis(s string) (CalorieBasis, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "TDEE":
		return BasisTDEE, nil
	case "BMR":
		return BasisBMR, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBasis, s)
	}
}

// Pick returns the figure matching the basis
func (b CalorieBasis) Pick(bmr, tdee float64) float64 {
	if b == BasisBMR {
		return bmr
	}
	return tdee
}

// DailyTarget is a calorie goal and the macro targets derived from it
type DailyTarget struct {
	Calories     float64 `json:"calories"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	Fat          float64 `json:"fat"`
	Fiber        float64 `json:"fiber"`
	SugarCeiling float64 `json:"sugar_ceiling"`
}

// NewDailyTarget derives macros from calories: protein 25% at 4 kcal/g,
// carbs 50% at 4 kcal/g, fat 25% at 9 kcal/g, fiber 14 g per 1000 kcal and
// a sugar ceiling of 10% at 4 kcal/g.
func NewDailyTarget(calories float64) DailyTarget {
	return DailyTarget{
		Calories:     calories,
		Protein:      calories * 0.25 / 4,
		Carbs:        calories * 0.50 / 4,
		Fat:          calories * 0.25 / 9,
		Fiber:        14 * calories / 1000,
		SugarCeiling: calories * 0.10 / 4,
	}
}
