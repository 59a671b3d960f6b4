//go:build tapegrad_debug

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DebugEnabled reports whether numeric guards are compiled in.
const DebugEnabled = true

// AssertNotNaN fails with ErrNumericDomain if any element of m is NaN.
func AssertNotNaN(op string, m mat.Matrix) error {
	r, c := m.Dims()
	for i := range r {
		for j := range c {
			if math.IsNaN(m.At(i, j)) {
				return fmt.Errorf("%s: %w: NaN at (%d, %d)", op, ErrNumericDomain, i, j)
			}
		}
	}
	return nil
}

// AssertBounds fails with ErrNumericDomain if any element of m lies outside [lower, upper].
func AssertBounds(op string, m mat.Matrix, lower, upper float64) error {
	r, c := m.Dims()
	for i := range r {
		for j := range c {
			if v := m.At(i, j); v < lower || v > upper {
				return fmt.Errorf("%s: %w: %g at (%d, %d) outside [%g, %g]", op, ErrNumericDomain, v, i, j, lower, upper)
			}
		}
	}
	return nil
}

// AssertPositive fails with ErrNumericDomain if any element of m is <= 0.
func AssertPositive(op string, m mat.Matrix) error {
	r, c := m.Dims()
	for i := range r {
		for j := range c {
			if v := m.At(i, j); !(v > 0) {
				return fmt.Errorf("%s: %w: %g at (%d, %d) is not positive", op, ErrNumericDomain, v, i, j)
			}
		}
	}
	return nil
}
