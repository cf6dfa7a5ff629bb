package planner

import (
	"errors"

	"github.com/nutridash/dashboard/internal/application/session"
	"github.com/nutridash/dashboard/internal/domain/food"
	"github.com/nutridash/dashboard/internal/domain/plan"
	"github.com/nutridash/dashboard/internal/ports/outbound"
	apperrors "github.com/nutridash/dashboard/pkg/errors"
)

// translate maps domain errors onto application error codes
func translate(err error, sessionID string) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var indexErr *plan.IndexOutOfRangeError
	switch {
	case errors.As(err, &indexErr):
		return apperrors.NewIndexOutOfRangeError(indexErr.Index, indexErr.Len)
	case errors.Is(err, session.ErrSessionNotFound):
		return apperrors.NewSessionNotFoundError(sessionID)
	case errors.Is(err, plan.ErrUnknownFood):
		return apperrors.NewValidationError(err.Error()).WithMetadata("reason", "unknown_food")
	case errors.Is(err, food.ErrExcludedByDiet):
		return apperrors.NewValidationError(err.Error()).WithMetadata("reason", "excluded_by_diet")
	case errors.Is(err, plan.ErrGramsOutOfBounds),
		errors.Is(err, plan.ErrUnknownMealSlot),
		errors.Is(err, plan.ErrUnknownBasis),
		errors.Is(err, food.ErrUnknownDietType),
		errors.Is(err, food.ErrUnknownNutrient),
		errors.Is(err, food.ErrInvalidTopCount):
		return apperrors.NewValidationError(err.Error())
	case errors.Is(err, plan.ErrDivisionUndefined):
		return apperrors.NewDivisionUndefinedError(err)
	case errors.Is(err, food.ErrColumnResolution):
		return apperrors.NewColumnResolutionError(err)
	case errors.Is(err, outbound.ErrNotFound):
		return apperrors.NewNotFoundError("")
	default:
		return apperrors.Wrap(err, "Planner operation failed")
	}
}
