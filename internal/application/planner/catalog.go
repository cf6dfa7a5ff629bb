package planner

import (
	"context"

	"github.com/nutridash/dashboard/internal/domain/food"
	"github.com/nutridash/dashboard/internal/ports/inbound"
	"go.uber.org/zap"
)

// Categories lists the distinct catalog categories
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, translate(err, "")
	}
	return catalog.Categories(), nil
}

// SearchFoods browses the full, unfiltered catalog
func (s *Service) SearchFoods(ctx context.Context, query inbound.FoodQuery) (*inbound.FoodList, error) {
	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, translate(err, "")
	}
	return s.search(catalog, query), nil
}

// TopFoods ranks foods by a nutrient, optionally within categories and a name search
func (s *Service) TopFoods(ctx context.Context, query inbound.TopFoodsQuery) ([]inbound.RankedFoodDTO, error) {
	nutrient, err := food.ParseNutrient(query.Nutrient)
	if err != nil {
		return nil, translate(err, "")
	}
	count := query.Count
	if count == 0 {
		count = food.DefaultTopCount
	}

	catalog, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, translate(err, "")
	}

	view := catalog.Search(food.Query{Categories: query.Categories, Search: query.Search})
	ranked, err := view.TopFoods(nutrient, count)
	if err != nil {
		return nil, translate(err, "")
	}

	out := make([]inbound.RankedFoodDTO, 0, len(ranked))
	for i, r := range ranked {
		out = append(out, inbound.RankedFoodDTO{
			Rank:  i + 1,
			Food:  foodToDTO(r.Record),
			Value: r.Value,
			Unit:  nutrient.Unit(),
		})
	}

	s.logger.Debug("Top foods ranked",
		zap.String("nutrient", string(nutrient)),
		zap.Int("count", count),
		zap.Int("returned", len(out)),
	)
	return out, nil
}
