package food

import (
	"fmt"
	"strings"
)

// DietType is the dietary preference used to narrow the catalog
type DietType string

const (
	DietOmnivore   DietType = "omnivore"
	DietVegetarian DietType = "vegetarian"
	DietVegan      DietType = "vegan"
)

// ParseDietType accepts the canonical names plus "non-vegetarian" for omnivore.
// An empty string maps to omnivore.
func ParseDietType(s string) (DietType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "omnivore", "non-vegetarian", "nonvegetarian":
		return DietOmnivore, nil
	case "vegetarian":
		return DietVegetarian, nil
	case "vegan":
		return DietVegan, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDietType, s)
	}
}

// Default exclusion keywords
var (
	DefaultMeatKeywords = []string{
		"meat", "fish", "pork", "chicken", "beef", "turkey", "lamb", "goat",
		"duck", "veal", "shellfish", "crab", "lobster", "shrimp", "oyster",
		"clam", "anchovy", "tuna", "salmon", "mackerel", "sardine",
	}
	DefaultAnimalProductKeywords = []string{"milk", "cheese", "butter", "yogurt", "cream", "egg"}
)

// Keywords holds the exclusion lists applied by a DietFilter
type Keywords struct {
	// Meat excludes meat and seafood for vegetarian and vegan diets.
	Meat []string
	// AnimalProducts additionally excludes dairy and egg for vegan diets.
	AnimalProducts []string
}

// DefaultKeywords returns a copy of the built-in keyword sets
func DefaultKeywords() Keywords {
	return Keywords{
		Meat:           append([]string(nil), DefaultMeatKeywords...),
		AnimalProducts: append([]string(nil), DefaultAnimalProductKeywords...),
	}
}

// DietFilter derives diet-restricted views of a catalog
type DietFilter struct {
	meat   []string
	animal []string
}

// NewDietFilter builds a filter. Empty keyword lists fall back to the defaults.
func NewDietFilter(kw Keywords) *DietFilter {
	if len(kw.Meat) == 0 {
		kw.Meat = DefaultMeatKeywords
	}
	if len(kw.AnimalProducts) == 0 {
		kw.AnimalProducts = DefaultAnimalProductKeywords
	}
	return &DietFilter{
		meat:   lowerAll(kw.Meat),
		animal: lowerAll(kw.AnimalProducts),
	}
}

// ExcludedKeywords returns every keyword a diet type excludes
func (f *DietFilter) ExcludedKeywords(diet DietType) ([]string, error) {
	switch diet {
	case DietOmnivore:
		return nil, nil
	case DietVegetarian:
		return append([]string(nil), f.meat...), nil
	case DietVegan:
		out := make([]string, 0, len(f.meat)+len(f.animal))
		out = append(out, f.meat...)
		return append(out, f.animal...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDietType, diet)
	}
}

// Apply returns a view of c without rows whose name or category contains an
// excluded keyword. An empty result is valid.
func (f *DietFilter) Apply(c *Catalog, diet DietType) (*Catalog, error) {
	keywords, err := f.ExcludedKeywords(diet)
	if err != nil {
		return nil, err
	}
	if len(keywords) == 0 {
		return c, nil
	}
	return c.Where(func(r Record) bool {
		return !matchesAny(r.Name, keywords) && !matchesAny(r.Category, keywords)
	}), nil
}

// Filter applies the default keyword sets
func Filter(c *Catalog, diet DietType) (*Catalog, error) {
	return NewDietFilter(Keywords{}).Apply(c, diet)
}

func matchesAny(field string, keywords []string) bool {
	if field == "" {
		return false
	}
	lower := strings.ToLower(field)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
