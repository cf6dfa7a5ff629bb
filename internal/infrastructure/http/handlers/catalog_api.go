package handlers

import (
	"net/http"

	"github.com/nutridash/dashboard/internal/domain/food"
	"github.com/nutridash/dashboard/internal/ports/inbound"
	"go.uber.org/zap"
)

// CatalogAPIHandlers serves the dashboard queries over the full catalog
type CatalogAPIHandlers struct {
	base
	catalog inbound.CatalogService
}

// NewCatalogAPIHandlers creates the catalog handlers
func NewCatalogAPIHandlers(catalog inbound.CatalogService, v *Validator, logger *zap.Logger) *CatalogAPIHandlers {
	return &CatalogAPIHandlers{
		base:    base{validator: v, logger: logger.Named("catalog-api")},
		catalog: catalog,
	}
}

// Categories handles GET /api/v1/catalog/categories
func (h *CatalogAPIHandlers) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, categories)
}

// Foods handles GET /api/v1/catalog/foods?category=..&search=..&offset=..&limit=..
func (h *CatalogAPIHandlers) Foods(w http.ResponseWriter, r *http.Request) {
	query, err := foodQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	list, err := h.catalog.SearchFoods(r.Context(), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, list)
}

// Top handles GET /api/v1/catalog/top?nutrient=protein&count=10
func (h *CatalogAPIHandlers) Top(w http.ResponseWriter, r *http.Request) {
	count, err := queryInt(r, "count", food.DefaultTopCount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ranked, err := h.catalog.TopFoods(r.Context(), inbound.TopFoodsQuery{
		Nutrient:   r.URL.Query().Get("nutrient"),
		Count:      count,
		Categories: queryList(r, "category"),
		Search:     r.URL.Query().Get("search"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, ranked)
}

func foodQuery(r *http.Request) (inbound.FoodQuery, error) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		return inbound.FoodQuery{}, err
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		return inbound.FoodQuery{}, err
	}
	return inbound.FoodQuery{
		Categories: queryList(r, "category"),
		Search:     r.URL.Query().Get("search"),
		Offset:     offset,
		Limit:      limit,
	}, nil
}
