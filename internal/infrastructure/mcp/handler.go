// Package mcp exposes planner operations as MCP tool calls over HTTP
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nutridash/dashboard/internal/ports/inbound"
	apperrors "github.com/nutridash/dashboard/pkg/errors"
	"go.uber.org/zap"
)

// ServerInfo identifies this tool server to MCP clients
var ServerInfo = protocol.Implementation{
	Name:    "nutridash-planner",
	Version: "1.0.0",
}

type toolFunc func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

// Handler routes CallToolRequests to the planner and catalog services
type Handler struct {
	planner inbound.PlannerService
	catalog inbound.CatalogService
	logger  *zap.Logger
	tools   map[string]toolFunc
}

// NewHandler creates the MCP tool handler
func NewHandler(planner inbound.PlannerService, catalog inbound.CatalogService, logger *zap.Logger) *Handler {
	h := &Handler{
		planner: planner,
		catalog: catalog,
		logger:  logger.Named("mcp"),
	}
	h.tools = map[string]toolFunc{
		"search_foods":  h.searchFoods,
		"top_foods":     h.topFoods,
		"add_to_plan":   h.addToPlan,
		"plan_summary":  h.planSummary,
		"healthy_swaps": h.healthySwaps,
	}
	return h
}

// ToolNames lists the registered tools in name order
func (h *Handler) ToolNames() []string {
	names := make([]string, 0, len(h.tools))
	for name := range h.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call runs one tool
func (h *Handler) Call(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	tool, ok := h.tools[req.Name]
	if !ok {
		return nil, apperrors.NewAppError(apperrors.CodeNotFound, "Unknown tool", req.Name)
	}
	return tool(ctx, req)
}

// ServeHTTP decodes a CallToolRequest and writes the CallToolResult
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req protocol.CallToolRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		h.writeError(w, r, apperrors.NewBadRequestError("Invalid JSON payload").WithCause(err))
		return
	}

	result, err := h.Call(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Debug("Tool called", zap.String("tool", req.Name))
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("Failed to encode tool result", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.Wrap(err, "Tool call failed")
	if appErr.StatusCode() >= http.StatusInternalServerError {
		h.logger.Error("Tool call failed", zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	_ = json.NewEncoder(w).Encode(apperrors.ToErrorResponse(appErr, chimiddleware.GetReqID(r.Context())))
}

// SearchFoodsParams filters the catalog. With a session the session's diet
// applies.
type SearchFoodsParams struct {
	SessionID  string   `json:"session_id,omitempty" description:"Planner session whose diet filters the results"`
	Search     string   `json:"search,omitempty" description:"Case-insensitive name substring"`
	Categories []string `json:"categories,omitempty" description:"Exact category names"`
	Limit      int      `json:"limit,omitempty" description:"Maximum rows to return"`
}

// TopFoodsParams ranks foods by a nutrient
type TopFoodsParams struct {
	Nutrient   string   `json:"nutrient" description:"calories, protein, carbs, fat, fiber or sugar"`
	Count      int      `json:"count,omitempty" description:"Number of foods, 5 to 30"`
	Categories []string `json:"categories,omitempty" description:"Exact category names"`
	Search     string   `json:"search,omitempty" description:"Case-insensitive name substring"`
}

// AddToPlanParams appends a portion to a meal
type AddToPlanParams struct {
	SessionID string  `json:"session_id" description:"Planner session"`
	MealSlot  string  `json:"meal_slot" description:"Breakfast, Lunch, Dinner or Snack"`
	FoodID    string  `json:"food_id" description:"Catalog food id"`
	Grams     float64 `json:"grams" description:"Portion size in grams"`
}

// SessionParams names a planner session
type SessionParams struct {
	SessionID string `json:"session_id" description:"Planner session"`
}

func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	raw, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return apperrors.NewBadRequestError("Invalid tool arguments").WithCause(err)
	}
	return nil
}

func requireSession(id string) error {
	if id == "" {
		return apperrors.NewValidationError("session_id is required")
	}
	return nil
}

func jsonResult(data interface{}) (*protocol.CallToolResult, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(raw),
			},
		},
	}, nil
}

func (h *Handler) searchFoods(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SearchFoodsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	query := inbound.FoodQuery{
		Categories: params.Categories,
		Search:     params.Search,
		Limit:      params.Limit,
	}

	var (
		list *inbound.FoodList
		err  error
	)
	if params.SessionID != "" {
		list, err = h.planner.BrowseFoods(ctx, params.SessionID, query)
	} else {
		list, err = h.catalog.SearchFoods(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	return jsonResult(list)
}

func (h *Handler) topFoods(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params TopFoodsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	ranked, err := h.catalog.TopFoods(ctx, inbound.TopFoodsQuery{
		Nutrient:   params.Nutrient,
		Count:      params.Count,
		Categories: params.Categories,
		Search:     params.Search,
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(ranked)
}

func (h *Handler) addToPlan(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params AddToPlanParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := requireSession(params.SessionID); err != nil {
		return nil, err
	}

	entry, err := h.planner.AddEntry(ctx, inbound.AddEntryCommand{
		SessionID: params.SessionID,
		MealSlot:  params.MealSlot,
		FoodID:    params.FoodID,
		Grams:     params.Grams,
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(entry)
}

func (h *Handler) planSummary(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SessionParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := requireSession(params.SessionID); err != nil {
		return nil, err
	}

	summary, err := h.planner.Summary(ctx, params.SessionID)
	if err != nil {
		return nil, err
	}
	return jsonResult(summary)
}

func (h *Handler) healthySwaps(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params SessionParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if err := requireSession(params.SessionID); err != nil {
		return nil, err
	}

	swaps, err := h.planner.Swaps(ctx, params.SessionID)
	if err != nil {
		return nil, err
	}
	return jsonResult(swaps)
}
