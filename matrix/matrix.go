// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package matrix provides the dense matrix handle that the autodiff graph
// differentiates through.
//
// A Mat pairs a weight buffer with a gradient buffer of the same shape. The
// two owners can be shared or duplicated independently:
//
//	w, _ := matrix.New(128, 64, matrix.Uniform(-0.1, 0.1))
//	replica := w.Copy(true, false) // shared weights, private gradient
//
// Buffers are gonum *mat.Dense values and may be read or written directly.
package matrix

import (
	"github.com/born-ml/tapegrad/internal/matrix"
	"gonum.org/v1/gonum/mat"
)

// Mat is a handle to a matrix value and its gradient.
type Mat = matrix.Mat

// Shape is a (rows, cols) pair.
type Shape = matrix.Shape

// Initializer fills a freshly allocated weight buffer.
type Initializer = matrix.Initializer

// DimensionError describes operands with incompatible shapes.
type DimensionError = matrix.DimensionError

// Errors reported by matrix and graph operations.
var (
	ErrDimensionMismatch  = matrix.ErrDimensionMismatch
	ErrInvalidShape       = matrix.ErrInvalidShape
	ErrNumericDomain      = matrix.ErrNumericDomain
	ErrInvariantViolation = matrix.ErrInvariantViolation
)

// DebugEnabled reports whether the build carries the tapegrad_debug tag.
const DebugEnabled = matrix.DebugEnabled

// New creates a rows x cols matrix filled by init with a zero gradient.
//
// Example:
//
//	m, err := matrix.New(3, 4, matrix.Gaussian(0, 0.1))
func New(rows, cols int, init Initializer) (*Mat, error) {
	return matrix.New(rows, cols, init)
}

// Zeros creates a zero-filled rows x cols matrix.
func Zeros(rows, cols int) (*Mat, error) {
	return matrix.Zeros(rows, cols)
}

// FromSlice creates a rows x cols matrix from row-major data.
func FromSlice(rows, cols int, data []float64) (*Mat, error) {
	return matrix.FromSlice(rows, cols, data)
}

// FromDense wraps an existing dense matrix.
func FromDense(w *mat.Dense) *Mat {
	return matrix.FromDense(w)
}

// ZerosLike returns a zero-filled matrix with the shape of other.
func ZerosLike(other *Mat) *Mat {
	return matrix.ZerosLike(other)
}

// EmptyLike returns a matrix with the shape of other.
func EmptyLike(other *Mat) *Mat {
	return matrix.EmptyLike(other)
}

// Initializers

// Uninitialized leaves the buffer as allocated.
func Uninitialized() Initializer { return matrix.Uninitialized() }

// Zero fills with zeros.
func Zero() Initializer { return matrix.Zero() }

// Uniform draws from U(lower, upper).
func Uniform(lower, upper float64) Initializer { return matrix.Uniform(lower, upper) }

// UniformBound draws from U(-bound, bound).
func UniformBound(bound float64) Initializer { return matrix.UniformBound(bound) }

// Gaussian draws from N(mean, std²).
func Gaussian(mean, std float64) Initializer { return matrix.Gaussian(mean, std) }

// Eye fills the main diagonal with diag.
func Eye(diag float64) Initializer { return matrix.Eye(diag) }

// SVD fills with pre and replaces the result by its nearest orthogonal factor.
func SVD(pre Initializer) Initializer { return matrix.SVD(pre) }
