package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nutridash/dashboard/internal/infrastructure/http/middleware"
	"github.com/nutridash/dashboard/internal/ports/inbound"
	"go.uber.org/zap"
)

// PlannerAPIHandlers serves planner sessions and their meal plans
type PlannerAPIHandlers struct {
	base
	planner inbound.PlannerService
}

// NewPlannerAPIHandlers creates the planner handlers
func NewPlannerAPIHandlers(planner inbound.PlannerService, v *Validator, logger *zap.Logger) *PlannerAPIHandlers {
	return &PlannerAPIHandlers{
		base:    base{validator: v, logger: logger.Named("planner-api")},
		planner: planner,
	}
}

// CreateSessionRequest opens a planner session
type CreateSessionRequest struct {
	DietType     string `json:"diet_type" validate:"omitempty,diet_type"`
	CalorieBasis string `json:"calorie_basis" validate:"omitempty,calorie_basis"`
}

// PreferencesRequest changes diet or calorie basis; omitted fields are kept
type PreferencesRequest struct {
	DietType     *string `json:"diet_type" validate:"omitempty,diet_type"`
	CalorieBasis *string `json:"calorie_basis" validate:"omitempty,calorie_basis"`
}

// AddEntryRequest appends a portion to a meal. Gram bounds are enforced by
// the plan itself.
type AddEntryRequest struct {
	MealSlot string  `json:"meal_slot" validate:"required,meal_slot"`
	FoodID   string  `json:"food_id" validate:"required"`
	Grams    float64 `json:"grams" validate:"required"`
}

// UpdateEntryRequest edits one plan row; omitted fields are kept
type UpdateEntryRequest struct {
	Grams    *float64 `json:"grams"`
	MealSlot *string  `json:"meal_slot" validate:"omitempty,meal_slot"`
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}

// CreateSession handles POST /api/v1/sessions. A logged-in caller's body
// metrics drive the daily target.
func (h *PlannerAPIHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.ContentLength != 0 {
		if err := h.decode(w, r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	cmd := inbound.CreateSessionCommand{
		DietType:     req.DietType,
		CalorieBasis: req.CalorieBasis,
	}
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		userID := claims.UserID
		cmd.UserID = &userID
	}

	session, err := h.planner.CreateSession(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Debug("Planner session created", zap.String("session_id", session.ID))
	h.writeData(w, http.StatusCreated, session)
}

// GetSession handles GET /api/v1/sessions/{sessionID}
func (h *PlannerAPIHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.planner.GetSession(r.Context(), sessionID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, session)
}

// UpdatePreferences handles PUT /api/v1/sessions/{sessionID}/preferences
func (h *PlannerAPIHandlers) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	session, err := h.planner.UpdatePreferences(r.Context(), inbound.UpdatePreferencesCommand{
		SessionID:    sessionID(r),
		DietType:     req.DietType,
		CalorieBasis: req.CalorieBasis,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, session)
}

// DeleteSession handles DELETE /api/v1/sessions/{sessionID}
func (h *PlannerAPIHandlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.planner.DeleteSession(r.Context(), sessionID(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BrowseFoods handles GET /api/v1/sessions/{sessionID}/foods. Only foods
// allowed by the session's diet are listed.
func (h *PlannerAPIHandlers) BrowseFoods(w http.ResponseWriter, r *http.Request) {
	query, err := foodQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	list, err := h.planner.BrowseFoods(r.Context(), sessionID(r), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, list)
}

// ListEntries handles GET /api/v1/sessions/{sessionID}/plan
func (h *PlannerAPIHandlers) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.planner.ListEntries(r.Context(), sessionID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, entries)
}

// AddEntry handles POST /api/v1/sessions/{sessionID}/plan
func (h *PlannerAPIHandlers) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req AddEntryRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	entry, err := h.planner.AddEntry(r.Context(), inbound.AddEntryCommand{
		SessionID: sessionID(r),
		MealSlot:  req.MealSlot,
		FoodID:    req.FoodID,
		Grams:     req.Grams,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    entry,
		Message: "Added " + entry.FoodName + " to " + entry.MealSlot,
	})
}

// UpdateEntry handles PATCH /api/v1/sessions/{sessionID}/plan/{index}
func (h *PlannerAPIHandlers) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	index, err := intParam(r, "index")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req UpdateEntryRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	entry, err := h.planner.UpdateEntry(r.Context(), inbound.UpdateEntryCommand{
		SessionID: sessionID(r),
		Index:     index,
		Grams:     req.Grams,
		MealSlot:  req.MealSlot,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, entry)
}

// RemoveEntry handles DELETE /api/v1/sessions/{sessionID}/plan/{index}
func (h *PlannerAPIHandlers) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	index, err := intParam(r, "index")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.planner.RemoveEntry(r.Context(), sessionID(r), index); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearPlan handles DELETE /api/v1/sessions/{sessionID}/plan
func (h *PlannerAPIHandlers) ClearPlan(w http.ResponseWriter, r *http.Request) {
	if err := h.planner.ClearPlan(r.Context(), sessionID(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /api/v1/sessions/{sessionID}/plan/summary
func (h *PlannerAPIHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.planner.Summary(r.Context(), sessionID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, summary)
}

// Swaps handles GET /api/v1/sessions/{sessionID}/plan/swaps
func (h *PlannerAPIHandlers) Swaps(w http.ResponseWriter, r *http.Request) {
	swaps, err := h.planner.Swaps(r.Context(), sessionID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, swaps)
}
