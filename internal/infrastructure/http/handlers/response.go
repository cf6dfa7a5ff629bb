// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/nutridash/dashboard/internal/domain/food"
	"github.com/nutridash/dashboard/internal/domain/plan"
	"github.com/nutridash/dashboard/internal/domain/user"
	apperrors "github.com/nutridash/dashboard/pkg/errors"
	"go.uber.org/zap"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Validator wraps go-playground/validator with the domain's enum tags
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports JSON field names
func NewValidator() *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("meal_slot", parsesWith(func(s string) error {
		_, err := plan.ParseMealSlot(s)
		return err
	}))
	validate.RegisterValidation("diet_type", parsesWith(func(s string) error {
		_, err := food.ParseDietType(s)
		return err
	}))
	validate.RegisterValidation("calorie_basis", parsesWith(func(s string) error {
		_, err := plan.ParseCalorieBasis(s)
		return err
	}))
	validate.RegisterValidation("gender", parsesWith(func(s string) error {
		_, err := user.ParseGender(s)
		return err
	}))
	validate.RegisterValidation("activity_level", parsesWith(func(s string) error {
		_, err := user.ParseActivityLevel(s)
		return err
	}))

	return &Validator{validate: validate}
}

func parsesWith(parse func(string) error) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return parse(fl.Field().String()) == nil
	}
}

// Struct validates s and converts failures to a VALIDATION_FAILED AppError
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.NewValidationError(err.Error())
	}

	out := make([]apperrors.ValidationError, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, apperrors.ValidationError{
			Field:   e.Field(),
			Value:   e.Value(),
			Tag:     e.Tag(),
			Message: validationMessage(e),
		})
	}
	return apperrors.NewValidationErrors(out)
}

func validationMessage(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "meal_slot":
		return fmt.Sprintf("%s must be one of Breakfast, Lunch, Dinner, Snack", field)
	case "diet_type":
		return fmt.Sprintf("%s must be one of omnivore, vegetarian, vegan", field)
	case "calorie_basis":
		return fmt.Sprintf("%s must be BMR or TDEE", field)
	case "gender":
		return fmt.Sprintf("%s must be Male or Female", field)
	case "activity_level":
		return fmt.Sprintf("%s is not a known activity level", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// base carries what every handler group needs
type base struct {
	validator *Validator
	logger    *zap.Logger
}

// decode reads a JSON body into dst and validates it
func (b *base) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewBadRequestError("Request body is required")
		}
		return apperrors.NewBadRequestError("Invalid JSON payload").WithCause(err)
	}
	return b.validator.Struct(dst)
}

// writeJSON writes a JSON response
func (b *base) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		b.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeData wraps data in a successful APIResponse
func (b *base) writeData(w http.ResponseWriter, status int, data interface{}) {
	b.writeJSON(w, status, APIResponse{Success: true, Data: data})
}

// writeError renders any error as the AppError envelope. Unknown errors are
// logged and reported as internal.
func (b *base) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.Wrap(err, "An unexpected error occurred")
	status := appErr.StatusCode()

	if status >= http.StatusInternalServerError {
		b.logger.Error("Request failed",
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		)
	}

	b.writeJSON(w, status, apperrors.ToErrorResponse(appErr, chimiddleware.GetReqID(r.Context())))
}

// intParam reads a path parameter as int
func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewBadRequestError(fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}

// queryInt reads an optional query parameter; missing yields def
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewBadRequestError(fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}

// queryList reads a repeated query parameter. Values are not split on
// commas since catalog categories may contain them.
func queryList(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
