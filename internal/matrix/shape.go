package matrix

import "fmt"

// Shape is the (rows, cols) extent of a matrix.
type Shape struct {
	Rows int
	Cols int
}

// String renders the shape as "(rows, cols)".
func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d)", s.Rows, s.Cols)
}

// NumElements returns rows*cols.
func (s Shape) NumElements() int {
	return s.Rows * s.Cols
}

// Validate checks that both dimensions are positive.
func (s Shape) Validate() error {
	if s.Rows <= 0 || s.Cols <= 0 {
		return invalidShape("shape", s.Rows, s.Cols)
	}
	return nil
}

// IsScalar reports whether the shape is 1x1.
func (s Shape) IsScalar() bool {
	return s.Rows == 1 && s.Cols == 1
}

// IsColumn reports whether the shape has a single column.
func (s Shape) IsColumn() bool {
	return s.Cols == 1
}
