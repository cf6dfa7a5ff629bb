package food

import "errors"

// Domain errors for the food catalog

var (
	// Record validation errors
	ErrEmptyID          = errors.New("food id is required")
	ErrEmptyName        = errors.New("food name is required")
	ErrNegativeNutrient = errors.New("nutrient values must not be negative")
	ErrDuplicateID      = errors.New("food id already exists in catalog")

	// Load errors
	ErrColumnResolution = errors.New("required catalog column could not be resolved")

	// Query errors
	ErrUnknownDietType = errors.New("unknown diet type")
	ErrExcludedByDiet  = errors.New("food is excluded by the diet")
	ErrUnknownNutrient = errors.New("unknown nutrient")
	ErrInvalidTopCount = errors.New("top foods count must be between 5 and 30")
)
