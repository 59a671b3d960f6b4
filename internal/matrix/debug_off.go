//go:build !tapegrad_debug

package matrix

import "gonum.org/v1/gonum/mat"

// DebugEnabled reports whether numeric guards are compiled in.
const DebugEnabled = false

// AssertNotNaN is a no-op without the tapegrad_debug build tag.
func AssertNotNaN(string, mat.Matrix) error { return nil }

// AssertBounds is a no-op without the tapegrad_debug build tag.
func AssertBounds(string, mat.Matrix, float64, float64) error { return nil }

// AssertPositive is a no-op without the tapegrad_debug build tag.
func AssertPositive(string, mat.Matrix) error { return nil }
