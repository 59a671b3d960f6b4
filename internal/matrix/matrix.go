// Package matrix defines the value/gradient data model used by the autodiff graph.
//
// A Mat is a lightweight handle over two independently shareable owners:
//   - weights: the value buffer plus the matrix identity
//   - grads:   the gradient accumulator, always the same shape as the weights
//
// Copying a handle can share or duplicate each owner separately:
//
//	shared := m.ShallowCopy()        // same weights, same gradient
//	replica := m.Copy(true, false)   // same weights, private gradient (Hogwild)
//	detached := m.Copy(false, false) // independent deep copy
//
// Buffers are gonum dense matrices; all numeric kernels operate on them directly.
package matrix

import (
	"fmt"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"
)

// nextID hands out process-wide matrix identities.
var nextID atomic.Int64

// weights owns the value buffer and the identity of a logical matrix.
type weights struct {
	w  *mat.Dense
	id int64
}

// grads owns the gradient accumulator of a logical matrix.
type grads struct {
	dw *mat.Dense
}

func newWeights(w *mat.Dense) *weights {
	return &weights{w: w, id: nextID.Add(1) - 1}
}

func newGrads(rows, cols int) *grads {
	return &grads{dw: mat.NewDense(rows, cols, nil)}
}

// Mat is a handle to a matrix value and its gradient.
//
// Handles are passed by pointer; several handles may point at the same
// weights or grads owner depending on how they were copied.
type Mat struct {
	m        *weights
	g        *grads
	name     string
	constant bool
}

// New creates a rows x cols matrix whose weights are filled by init.
// The gradient buffer is always zero-filled.
//
// Returns ErrInvalidShape if either dimension is not positive.
func New(rows, cols int, init Initializer) (*Mat, error) {
	if rows <= 0 || cols <= 0 {
		return nil, invalidShape("new", rows, cols)
	}
	w := mat.NewDense(rows, cols, nil)
	if init != nil {
		init(w)
	}
	return &Mat{
		m: newWeights(w),
		g: newGrads(rows, cols),
	}, nil
}

// Zeros creates a zero-filled rows x cols matrix.
func Zeros(rows, cols int) (*Mat, error) {
	return New(rows, cols, Zero())
}

// FromSlice creates a rows x cols matrix from row-major data.
// The slice is copied.
func FromSlice(rows, cols int, data []float64) (*Mat, error) {
	if rows <= 0 || cols <= 0 {
		return nil, invalidShape("from slice", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("from slice: %w: %d values for shape (%d, %d)", ErrInvalidShape, len(data), rows, cols)
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return FromDense(mat.NewDense(rows, cols, buf)), nil
}

// FromDense wraps an existing dense matrix as the weights of a new handle.
// The dense matrix is not copied; the caller must not retain it for writing.
func FromDense(w *mat.Dense) *Mat {
	r, c := w.Dims()
	return &Mat{
		m: newWeights(w),
		g: newGrads(r, c),
	}
}

// ZerosLike returns a new zero-filled matrix with the shape of other.
func ZerosLike(other *Mat) *Mat {
	r, c := other.Dims()
	return FromDense(mat.NewDense(r, c, nil))
}

// EmptyLike returns a new matrix with the shape of other.
// Buffers are zero-filled since the runtime does not hand out uninitialized memory.
func EmptyLike(other *Mat) *Mat {
	return ZerosLike(other)
}

// W returns the weight buffer.
func (m *Mat) W() *mat.Dense {
	return m.m.w
}

// DW returns the gradient buffer.
func (m *Mat) DW() *mat.Dense {
	return m.g.dw
}

// Dims returns (rows, cols).
func (m *Mat) Dims() (int, int) {
	return m.m.w.Dims()
}

// Rows returns the number of rows.
func (m *Mat) Rows() int {
	r, _ := m.m.w.Dims()
	return r
}

// Cols returns the number of columns.
func (m *Mat) Cols() int {
	_, c := m.m.w.Dims()
	return c
}

// Shape returns the matrix shape.
func (m *Mat) Shape() Shape {
	r, c := m.m.w.Dims()
	return Shape{Rows: r, Cols: c}
}

// NumElements returns rows*cols.
func (m *Mat) NumElements() int {
	return m.Shape().NumElements()
}

// At returns the weight at (i, j).
func (m *Mat) At(i, j int) float64 {
	return m.m.w.At(i, j)
}

// Set stores v at (i, j) of the weight buffer.
func (m *Mat) Set(i, j int, v float64) {
	m.m.w.Set(i, j, v)
}

// GradAt returns the gradient at (i, j).
func (m *Mat) GradAt(i, j int) float64 {
	return m.g.dw.At(i, j)
}

// ID returns the identity of the weights owner.
func (m *Mat) ID() int64 {
	return m.m.id
}

// Equal reports whether both handles refer to the same weights owner.
func (m *Mat) Equal(other *Mat) bool {
	return other != nil && m.m.id == other.m.id
}

// SharesWeights reports whether both handles read the same weight buffer.
func (m *Mat) SharesWeights(other *Mat) bool {
	return m.m == other.m
}

// SharesGrads reports whether both handles accumulate into the same gradient buffer.
func (m *Mat) SharesGrads(other *Mat) bool {
	return m.g == other.g
}

// Name returns the display name (empty if unnamed).
func (m *Mat) Name() string {
	return m.name
}

// SetName sets the display name.
func (m *Mat) SetName(name string) {
	m.name = name
}

// IsConstant reports whether the handle is excluded from gradient accumulation.
func (m *Mat) IsConstant() bool {
	return m.constant
}

// MarkConstant excludes the handle from gradient accumulation.
func (m *Mat) MarkConstant() {
	m.constant = true
}

// Copy returns a new handle. When shareWeights (shareGrads) is false the
// corresponding buffer is deep-copied; otherwise it is shared.
// A deep-copied weights owner receives a fresh identity.
func (m *Mat) Copy(shareWeights, shareGrads bool) *Mat {
	out := &Mat{
		m:        m.m,
		g:        m.g,
		name:     m.name,
		constant: m.constant,
	}
	if !shareWeights {
		out.m = newWeights(mat.DenseCopyOf(m.m.w))
	}
	if !shareGrads {
		out.g = &grads{dw: mat.DenseCopyOf(m.g.dw)}
	}
	return out
}

// ShallowCopy returns a handle sharing both weights and gradient.
func (m *Mat) ShallowCopy() *Mat {
	return m.Copy(true, true)
}

// Clone returns a handle with independent copies of weights and gradient.
func (m *Mat) Clone() *Mat {
	return m.Copy(false, false)
}

// Assign repoints m at the owners of other.
// Used by in-place compound operators to adopt the result of an operation.
func (m *Mat) Assign(other *Mat) {
	m.m = other.m
	m.g = other.g
}

// Resize conservatively resizes both buffers: the overlapping region is kept
// and new cells are zero. Every handle sharing the owners observes the change.
func (m *Mat) Resize(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return invalidShape("resize", rows, cols)
	}
	m.m.w = resizeDense(m.m.w, rows, cols)
	m.g.dw = resizeDense(m.g.dw, rows, cols)
	return nil
}

func resizeDense(src *mat.Dense, rows, cols int) *mat.Dense {
	dst := mat.NewDense(rows, cols, nil)
	r, c := src.Dims()
	r, c = min(r, rows), min(c, cols)
	dst.Slice(0, r, 0, c).(*mat.Dense).Copy(src.Slice(0, r, 0, c))
	return dst
}

// ResetGrad zeroes the gradient buffer.
func (m *Mat) ResetGrad() {
	m.g.dw.Zero()
}

// Argmax returns the flat (column-major) index of the largest weight.
// Ties resolve to the first occurrence.
func (m *Mat) Argmax() int {
	idx, _ := m.ArgmaxRange(0, m.NumElements())
	return idx
}

// ArgmaxRange returns the flat (column-major) index of the largest weight
// within [lower, upper). Ties resolve to the first occurrence.
func (m *Mat) ArgmaxRange(lower, upper int) (int, error) {
	n := m.NumElements()
	if lower < 0 || upper > n || lower >= upper {
		return 0, fmt.Errorf("argmax: %w: range [%d, %d) outside %d elements", ErrInvalidShape, lower, upper, n)
	}
	rows := m.Rows()
	best := lower
	bestVal := m.m.w.At(lower%rows, lower/rows)
	for k := lower + 1; k < upper; k++ {
		if v := m.m.w.At(k%rows, k/rows); v > bestVal {
			best, bestVal = k, v
		}
	}
	return best, nil
}

// String renders the handle metadata, e.g. <#Mat name="x" n=3, d=4>.
func (m *Mat) String() string {
	r, c := m.Dims()
	if m.name != "" {
		return fmt.Sprintf("<#Mat name=%q n=%d, d=%d>", m.name, r, c)
	}
	return fmt.Sprintf("<#Mat n=%d, d=%d>", r, c)
}
