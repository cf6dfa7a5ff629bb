package inbound

import "context"

// CatalogService exposes the dashboard queries over the full catalog
type CatalogService interface {
	Categories(ctx context.Context) ([]string, error)
	SearchFoods(ctx context.Context, query FoodQuery) (*FoodList, error)
	TopFoods(ctx context.Context, query TopFoodsQuery) ([]RankedFoodDTO, error)
}

// TopFoodsQuery ranks foods by one nutrient
type TopFoodsQuery struct {
	Nutrient   string
	Count      int
	Categories []string
	Search     string
}

// RankedFoodDTO is one row of a ranking
type RankedFoodDTO struct {
	Rank  int     `json:"rank"`
	Food  FoodDTO `json:"food"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}
