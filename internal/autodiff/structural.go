package autodiff

import (
	"fmt"

	"github.com/born-ml/tapegrad/internal/autodiff/ops"
	"github.com/born-ml/tapegrad/internal/matrix"
	"gonum.org/v1/gonum/mat"
)

// HStack concatenates matrices with equal row counts along columns.
func (g *Graph) HStack(ms ...*matrix.Mat) (*matrix.Mat, error) {
	if len(ms) == 0 {
		return nil, errNoOperands("hstack")
	}
	for _, m := range ms[1:] {
		if m.Rows() != ms[0].Rows() {
			return nil, matrix.Mismatch("hstack", "equal row counts", ms...)
		}
	}
	out := matrix.FromDense(g.backend.HStack(weightsOf(ms)...))
	g.Record(ops.NewHStackOp(out, ms...))
	return out, nil
}

// VStack concatenates matrices with equal column counts along rows.
func (g *Graph) VStack(ms ...*matrix.Mat) (*matrix.Mat, error) {
	if len(ms) == 0 {
		return nil, errNoOperands("vstack")
	}
	for _, m := range ms[1:] {
		if m.Cols() != ms[0].Cols() {
			return nil, matrix.Mismatch("vstack", "equal column counts", ms...)
		}
	}
	out := matrix.FromDense(g.backend.VStack(weightsOf(ms)...))
	g.Record(ops.NewVStackOp(out, ms...))
	return out, nil
}

// RowsPluck gathers rows of a into the columns of a new a.cols x len(indices)
// matrix: out(:, k) = a(indices[k], :)ᵀ. Indices may repeat.
func (g *Graph) RowsPluck(a *matrix.Mat, indices []int) (*matrix.Mat, error) {
	if len(indices) == 0 {
		return nil, errNoOperands("rows pluck")
	}
	for _, idx := range indices {
		if err := checkIndex("rows pluck", idx, a.Rows()); err != nil {
			return nil, err
		}
	}
	out := matrix.FromDense(g.backend.PluckRows(a.W(), indices))
	g.Record(ops.NewRowsPluckOp("rows_pluck", a, indices, out))
	return out, nil
}

// RowPluck returns row of a as an a.cols x 1 column.
func (g *Graph) RowPluck(a *matrix.Mat, row int) (*matrix.Mat, error) {
	if err := checkIndex("row pluck", row, a.Rows()); err != nil {
		return nil, err
	}
	indices := []int{row}
	out := matrix.FromDense(g.backend.PluckRows(a.W(), indices))
	g.Record(ops.NewRowsPluckOp("row_pluck", a, indices, out))
	return out, nil
}

// RowsColsPluck gathers a(rows[k], cols[k]) into a 1 x k row.
func (g *Graph) RowsColsPluck(a *matrix.Mat, rows, cols []int) (*matrix.Mat, error) {
	if len(rows) != len(cols) {
		return nil, fmt.Errorf("rows cols pluck: %w: %d row indices for %d column indices", matrix.ErrDimensionMismatch, len(rows), len(cols))
	}
	if len(rows) == 0 {
		return nil, errNoOperands("rows cols pluck")
	}
	for k := range rows {
		if err := checkIndex("rows cols pluck", rows[k], a.Rows()); err != nil {
			return nil, err
		}
		if err := checkIndex("rows cols pluck", cols[k], a.Cols()); err != nil {
			return nil, err
		}
	}
	out := matrix.FromDense(g.backend.PluckPairs(a.W(), rows, cols))
	g.Record(ops.NewRowsColsPluckOp(a, rows, cols, out))
	return out, nil
}

// ColPluck returns column col of a as an a.rows x 1 column.
func (g *Graph) ColPluck(a *matrix.Mat, col int) (*matrix.Mat, error) {
	if err := checkIndex("col pluck", col, a.Cols()); err != nil {
		return nil, err
	}
	out := matrix.FromDense(g.backend.PluckCol(a.W(), col))
	g.Record(ops.NewColPluckOp(a, col, out))
	return out, nil
}

func weightsOf(ms []*matrix.Mat) []mat.Matrix {
	ws := make([]mat.Matrix, len(ms))
	for i, m := range ms {
		ws[i] = m.W()
	}
	return ws
}

func errNoOperands(op string) error {
	return fmt.Errorf("%s: %w: no operands", op, matrix.ErrInvalidShape)
}
