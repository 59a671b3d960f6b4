package matrix

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors.
var (
	ErrDimensionMismatch  = errors.New("dimension mismatch")
	ErrInvalidShape       = errors.New("invalid shape")
	ErrNumericDomain      = errors.New("numeric domain violation")
	ErrInvariantViolation = errors.New("invariant violation")
)

// DimensionError describes operands whose shapes are incompatible with an operation.
type DimensionError struct {
	Op       string  // Operation that rejected the operands (e.g., "mul", "hstack")
	Expected string  // Requirement the operands failed to meet
	Actual   []Shape // Shapes of the operands, in call order
}

// Error implements the error interface.
func (e *DimensionError) Error() string {
	shapes := make([]string, len(e.Actual))
	for i, s := range e.Actual {
		shapes[i] = s.String()
	}
	return fmt.Sprintf("%s: %v: expected %s, got %s", e.Op, ErrDimensionMismatch, e.Expected, strings.Join(shapes, " and "))
}

// Unwrap allows errors.Is(err, ErrDimensionMismatch).
func (e *DimensionError) Unwrap() error {
	return ErrDimensionMismatch
}

// Mismatch builds a DimensionError from the operands of op.
func Mismatch(op, expected string, operands ...*Mat) error {
	shapes := make([]Shape, len(operands))
	for i, m := range operands {
		shapes[i] = m.Shape()
	}
	return &DimensionError{Op: op, Expected: expected, Actual: shapes}
}

// invalidShape reports a non-positive dimension request.
func invalidShape(op string, rows, cols int) error {
	return fmt.Errorf("%s: %w: (%d, %d) (dimensions must be > 0)", op, ErrInvalidShape, rows, cols)
}
