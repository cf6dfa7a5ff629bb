package plan

import (
	"fmt"
	"math"

	"github.com/nutridash/dashboard/internal/domain/food"
)

// ScaledNutrients are absolute nutrient amounts for a portion.
// They are computed on demand and never stored.
type ScaledNutrients struct {
	Calories food.Amount `json:"calories"`
	Protein  food.Amount `json:"protein"`
	Carbs    food.Amount `json:"carbs"`
	Fat      food.Amount `json:"fat"`
	Fiber    food.Amount `json:"fiber"`
	Sugar    food.Amount `json:"sugar"`
}

// Scale converts per-100g values to the amount in grams. Absent values stay absent.
func Scale(record food.Record, grams float64) ScaledNutrients {
	factor := grams / 100.0
	return ScaledNutrients{
		Calories: record.Calories.Mul(factor),
		Protein:  record.Protein.Mul(factor),
		Carbs:    record.Carbs.Mul(factor),
		Fat:      record.Fat.Mul(factor),
		Fiber:    record.Fiber.Mul(factor),
		Sugar:    record.Sugar.Mul(factor),
	}
}

// Totals are the plan-wide sums. Absent values contribute zero.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
	Entries  int     `json:"entries"`
}

func (t *Totals) add(n ScaledNutrients) {
	t.Calories += n.Calories.OrZero()
	t.Protein += n.Protein.OrZero()
	t.Carbs += n.Carbs.OrZero()
	t.Fat += n.Fat.OrZero()
	t.Fiber += n.Fiber.OrZero()
	t.Sugar += n.Sugar.OrZero()
	t.Entries++
}

// Aggregate resolves every entry against lookup, scales it and sums the six
// nutrient columns. An entry whose food cannot be resolved is an error.
func Aggregate(entries []Entry, lookup FoodLookup) (Totals, error) {
	var totals Totals
	for _, e := range entries {
		record, ok := lookup.Lookup(e.foodID)
		if !ok {
			return Totals{}, fmt.Errorf("%w: %s", ErrUnknownFood, e.foodID)
		}
		totals.add(Scale(record, e.grams))
	}
	return totals, nil
}

// ProgressFraction returns min(totals.Calories / target.Calories, 1)
func ProgressFraction(totals Totals, target DailyTarget) (float64, error) {
	if !(target.Calories > 0) || math.IsInf(target.Calories, 0) {
		return 0, ErrDivisionUndefined
	}
	return math.Min(totals.Calories/target.Calories, 1.0), nil
}
