package food

import (
	"sort"
	"strings"
)

// Top foods bounds
const (
	MinTopCount     = 5
	MaxTopCount     = 30
	DefaultTopCount = 10
)

// Query narrows a catalog for browsing
type Query struct {
	// Categories restricts rows to an exact category match. Empty means all.
	Categories []string
	// Search is a case-insensitive substring of the food name.
	Search string
}

// Categories returns the sorted distinct non-empty categories
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range c.records {
		if !r.HasCategory() {
			continue
		}
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	sort.Strings(out)
	return out
}

// Search returns a view holding the rows that match q, in catalog order
func (c *Catalog) Search(q Query) *Catalog {
	cats := make(map[string]struct{}, len(q.Categories))
	for _, cat := range q.Categories {
		if cat != "" {
			cats[cat] = struct{}{}
		}
	}
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	return c.Where(func(r Record) bool {
		if len(cats) > 0 {
			if _, ok := cats[r.Category]; !ok {
				return false
			}
		}
		if needle != "" && !strings.Contains(strings.ToLower(r.Name), needle) {
			return false
		}
		return true
	})
}

// RankedFood is one row of a top-foods ranking
type RankedFood struct {
	Record Record  `json:"food"`
	Value  float64 `json:"value"`
}

// TopFoods ranks rows by nutrient, highest first. Rows missing the nutrient
// are dropped and duplicate names keep only their highest value.
func (c *Catalog) TopFoods(n Nutrient, k int) ([]RankedFood, error) {
	if _, err := ParseNutrient(string(n)); err != nil {
		return nil, err
	}
	if k < MinTopCount || k > MaxTopCount {
		return nil, ErrInvalidTopCount
	}

	best := make(map[string]int)
	ranked := make([]RankedFood, 0)
	for _, r := range c.records {
		v, ok := r.Nutrient(n).Value()
		if !ok {
			continue
		}
		if i, seen := best[r.Name]; seen {
			if v > ranked[i].Value {
				ranked[i] = RankedFood{Record: r, Value: v}
			}
			continue
		}
		best[r.Name] = len(ranked)
		ranked = append(ranked, RankedFood{Record: r, Value: v})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value > ranked[j].Value
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked, nil
}
