// Package catalog loads the food catalog CSV from a file, HTTP or S3 source
// and maps its columns through a versioned schema.
package catalog

import (
	"fmt"
	"strings"

	"github.com/nutridash/dashboard/internal/domain/food"
)

// Field is a semantic catalog column
type Field string

const (
	FieldID       Field = "id"
	FieldFood     Field = "food"
	FieldCategory Field = "category"
	FieldCalories Field = "calories"
	FieldProtein  Field = "protein"
	FieldCarbs    Field = "carbs"
	FieldFat      Field = "fat"
	FieldFiber    Field = "fiber"
	FieldSugar    Field = "sugar"
)

// Column maps one field onto the header names that may carry it
type Column struct {
	Field    Field
	Aliases  []string
	Required bool
}

// Schema is a versioned header mapping
type Schema struct {
	Version string
	Columns []Column
}

// SchemaV1 matches the published nutrition dataset export
var SchemaV1 = Schema{
	Version: "v1",
	Columns: []Column{
		{Field: FieldID, Aliases: []string{"fdc_id", "id"}},
		{Field: FieldFood, Aliases: []string{"food", "food name", "description"}, Required: true},
		{Field: FieldCategory, Aliases: []string{"category", "food_category", "food category"}, Required: true},
		{Field: FieldCalories, Aliases: []string{"calories (kcal)", "calories", "energy (kcal)"}, Required: true},
		{Field: FieldProtein, Aliases: []string{"protein (g)", "protein"}, Required: true},
		{Field: FieldCarbs, Aliases: []string{"carbs (g)", "carbohydrates (g)", "carbs"}, Required: true},
		{Field: FieldFat, Aliases: []string{"fat (g)", "total fat (g)", "fat"}, Required: true},
		{Field: FieldFiber, Aliases: []string{"fiber (g)", "fibre (g)", "fiber"}, Required: true},
		{Field: FieldSugar, Aliases: []string{"sugar (g)", "sugars (g)", "sugar"}, Required: true},
	},
}

var schemas = map[string]Schema{
	SchemaV1.Version: SchemaV1,
}

// LookupSchema returns the schema registered for version. An empty version
// selects v1.
func LookupSchema(version string) (Schema, error) {
	if version == "" {
		return SchemaV1, nil
	}
	s, ok := schemas[strings.ToLower(version)]
	if !ok {
		return Schema{}, fmt.Errorf("unknown catalog schema version %q", version)
	}
	return s, nil
}

// Layout is a resolved header: field to column position
type Layout map[Field]int

// Resolve matches a CSV header against the schema. Header names are compared
// trimmed and case-insensitively. Every required field must match exactly one
// column; otherwise the error wraps food.ErrColumnResolution.
func (s Schema) Resolve(header []string) (Layout, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		positions[normalizeHeader(h)] = i
	}

	layout := make(Layout, len(s.Columns))
	for _, col := range s.Columns {
		matched := -1
		for _, alias := range col.Aliases {
			pos, ok := positions[alias]
			if !ok {
				continue
			}
			if matched >= 0 && matched != pos {
				return nil, fmt.Errorf("%w: %s matches both %q and %q",
					food.ErrColumnResolution, col.Field, header[matched], header[pos])
			}
			matched = pos
		}
		if matched < 0 {
			if col.Required {
				return nil, fmt.Errorf("%w: no column for %s (schema %s, accepted %q)",
					food.ErrColumnResolution, col.Field, s.Version, col.Aliases)
			}
			continue
		}
		layout[col.Field] = matched
	}
	return layout, nil
}

func normalizeHeader(h string) string {
	// Excel exports prefix the first header with a BOM
	h = strings.TrimPrefix(h, "\uFEFF")
	return strings.ToLower(strings.TrimSpace(h))
}
