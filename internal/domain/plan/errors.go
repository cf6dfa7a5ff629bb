package plan

import (
	"errors"
	"fmt"
)

// Domain errors for meal plan operations

var (
	// Validation errors
	ErrGramsOutOfBounds = errors.New("grams outside the allowed bounds")
	ErrUnknownFood      = errors.New("food is not in the catalog")
	ErrUnknownMealSlot  = errors.New("unknown meal slot")
	ErrInvalidBounds    = errors.New("gram bounds must satisfy 0 < min <= max")

	// Position errors
	ErrIndexOutOfRange = errors.New("plan index out of range")

	// Target errors
	ErrDivisionUndefined = errors.New("target calories must be positive")
	ErrUnknownBasis      = errors.New("unknown calorie basis")
)

// IndexOutOfRangeError carries the offending index. It matches ErrIndexOutOfRange.
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s: %d (plan has %d entries)", ErrIndexOutOfRange, e.Index, e.Len)
}

func (e *IndexOutOfRangeError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}
