package plan

import (
	"fmt"
	"sort"

	"github.com/nutridash/dashboard/internal/domain/food"
)

// MaxSwaps caps the substitutes returned per entry
const MaxSwaps = 3

// Swap lists the substitutes found for one plan entry
type Swap struct {
	Entry       Entry
	Food        food.Record
	Scaled      ScaledNutrients
	Substitutes []food.Record
}

// Swaps holds one result per entry, in plan order
type Swaps []Swap

// Found reports whether at least one entry has a substitute
func (s Swaps) Found() bool {
	for _, swap := range s {
		if len(swap.Substitutes) > 0 {
			return true
		}
	}
	return false
}

// RecommendSwaps searches candidates for rows with calories per 100 g at or
// below the entry's scaled calories and protein per 100 g at or above its
// scaled protein. Matches are ordered by calories, catalog order breaking
// ties, and capped at MaxSwaps. Absent values never match.
func RecommendSwaps(entries []Entry, lookup FoodLookup, candidates *food.Catalog) (Swaps, error) {
	out := make(Swaps, 0, len(entries))
	for _, e := range entries {
		record, ok := lookup.Lookup(e.foodID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFood, e.foodID)
		}
		scaled := Scale(record, e.grams)
		out = append(out, Swap{
			Entry:       e,
			Food:        record,
			Scaled:      scaled,
			Substitutes: substitutes(scaled, candidates),
		})
	}
	return out, nil
}

func substitutes(chosen ScaledNutrients, candidates *food.Catalog) []food.Record {
	if !chosen.Calories.Present() || !chosen.Protein.Present() {
		return nil
	}

	matches := make([]food.Record, 0)
	for i := 0; i < candidates.Len(); i++ {
		r := candidates.At(i)
		if r.Calories.LessOrEqual(chosen.Calories) && r.Protein.GreaterOrEqual(chosen.Protein) {
			matches = append(matches, r)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Calories.OrZero() < matches[j].Calories.OrZero()
	})
	if len(matches) > MaxSwaps {
		matches = matches[:MaxSwaps]
	}
	return matches
}
