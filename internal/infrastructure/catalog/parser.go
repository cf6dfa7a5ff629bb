package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/nutridash/dashboard/internal/domain/food"
)

var errEmptyCatalog = errors.New("catalog has no header row")

// Parse reads a catalog CSV. Blank or non-numeric nutrient cells and
// negative values become absent amounts; rows without a food name are
// skipped. Rows are identified by the id column when it is present and
// unique, otherwise by their 1-based data row number.
func Parse(r io.Reader, schema Schema) (*food.Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", food.ErrColumnResolution, errEmptyCatalog)
		}
		return nil, fmt.Errorf("read catalog header: %w", err)
	}

	layout, err := schema.Resolve(header)
	if err != nil {
		return nil, err
	}

	var (
		records []food.Record
		rawIDs  []string
		row     int
	)
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog row %d: %w", row+1, err)
		}
		row++

		name := cell(fields, layout, FieldFood)
		if name == "" {
			continue
		}

		records = append(records, food.Record{
			ID:       strconv.Itoa(row),
			Name:     name,
			Category: cell(fields, layout, FieldCategory),
			Calories: amount(cell(fields, layout, FieldCalories)),
			Protein:  amount(cell(fields, layout, FieldProtein)),
			Carbs:    amount(cell(fields, layout, FieldCarbs)),
			Fat:      amount(cell(fields, layout, FieldFat)),
			Fiber:    amount(cell(fields, layout, FieldFiber)),
			Sugar:    amount(cell(fields, layout, FieldSugar)),
		})
		rawIDs = append(rawIDs, cell(fields, layout, FieldID))
	}

	if _, ok := layout[FieldID]; ok && uniqueNonEmpty(rawIDs) {
		for i := range records {
			records[i].ID = rawIDs[i]
		}
	}

	return food.NewCatalog(records)
}

func cell(fields []string, layout Layout, f Field) string {
	pos, ok := layout[f]
	if !ok || pos >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[pos])
}

func amount(raw string) food.Amount {
	if raw == "" {
		return food.None()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return food.None()
	}
	return food.Some(v)
}

func uniqueNonEmpty(ids []string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return false
		}
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}
