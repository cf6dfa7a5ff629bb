package planner

import (
	"github.com/nutridash/dashboard/internal/application/session"
	"github.com/nutridash/dashboard/internal/domain/food"
	"github.com/nutridash/dashboard/internal/domain/plan"
	"github.com/nutridash/dashboard/internal/ports/inbound"
)

func foodToDTO(r food.Record) inbound.FoodDTO {
	return inbound.FoodDTO{
		ID:       r.ID,
		Name:     r.Name,
		Category: r.Category,
		Calories: r.Calories.Ptr(),
		Protein:  r.Protein.Ptr(),
		Carbs:    r.Carbs.Ptr(),
		Fat:      r.Fat.Ptr(),
		Fiber:    r.Fiber.Ptr(),
		Sugar:    r.Sugar.Ptr(),
	}
}

func foodsToDTO(records []food.Record) []inbound.FoodDTO {
	out := make([]inbound.FoodDTO, 0, len(records))
	for _, r := range records {
		out = append(out, foodToDTO(r))
	}
	return out
}

func nutrientsToDTO(n plan.ScaledNutrients) inbound.NutrientsDTO {
	return inbound.NutrientsDTO{
		Calories: n.Calories.Ptr(),
		Protein:  n.Protein.Ptr(),
		Carbs:    n.Carbs.Ptr(),
		Fat:      n.Fat.Ptr(),
		Fiber:    n.Fiber.Ptr(),
		Sugar:    n.Sugar.Ptr(),
	}
}

func entryToDTO(index int, e plan.Entry, r food.Record) inbound.PlanEntryDTO {
	return inbound.PlanEntryDTO{
		Index:     index,
		ID:        e.ID(),
		MealSlot:  string(e.MealSlot()),
		FoodID:    e.FoodID(),
		FoodName:  r.Name,
		Category:  r.Category,
		Grams:     e.Grams(),
		Nutrients: nutrientsToDTO(plan.Scale(r, e.Grams())),
	}
}

func totalsToDTO(t plan.Totals) inbound.TotalsDTO {
	return inbound.TotalsDTO{
		Calories: t.Calories,
		Protein:  t.Protein,
		Carbs:    t.Carbs,
		Fat:      t.Fat,
		Fiber:    t.Fiber,
		Sugar:    t.Sugar,
		Entries:  t.Entries,
	}
}

// TargetToDTO converts a daily target for transport
func TargetToDTO(t plan.DailyTarget) inbound.DailyTargetDTO {
	return inbound.DailyTargetDTO{
		Calories:     t.Calories,
		Protein:      t.Protein,
		Carbs:        t.Carbs,
		Fat:          t.Fat,
		Fiber:        t.Fiber,
		SugarCeiling: t.SugarCeiling,
	}
}

func sessionToDTO(s *session.Session, target plan.DailyTarget) *inbound.SessionDTO {
	return &inbound.SessionDTO{
		ID:           s.ID(),
		UserID:       s.UserID(),
		DietType:     string(s.Diet()),
		CalorieBasis: string(s.Basis()),
		Target:       TargetToDTO(target),
		Entries:      s.Plan().Len(),
		CreatedAt:    s.CreatedAt(),
		ExpiresAt:    s.ExpiresAt(),
	}
}

func page(records []food.Record, offset, limit, defaultLimit, maxLimit int) ([]food.Record, int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(records) {
		offset = len(records)
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end], offset, limit
}
