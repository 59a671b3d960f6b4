package ops

import (
	"slices"

	"github.com/born-ml/tapegrad/internal/matrix"
)

// RowsPluckOp represents output[:, k] = A[indices[k], :]ᵀ, a d x len(indices)
// matrix. row_pluck is the single-index case.
//
// Backward scatter-adds each output column into its source row; repeated
// indices accumulate.
type RowsPluckOp struct {
	base
	indices []int
}

// NewRowsPluckOp creates a new RowsPluckOp. The indices are copied.
func NewRowsPluckOp(kind string, a *matrix.Mat, indices []int, output *matrix.Mat) *RowsPluckOp {
	return &RowsPluckOp{base: newBase(kind, output, a), indices: slices.Clone(indices)}
}

// Indices returns the plucked rows.
func (op *RowsPluckOp) Indices() []int {
	return op.indices
}

// Backward scatters dOut columns into source rows.
func (op *RowsPluckOp) Backward() {
	a := op.inputs[0]
	if a.IsConstant() {
		return
	}
	dw, g := a.DW(), op.output.DW()
	cols := a.Cols()
	for k, row := range op.indices {
		for j := range cols {
			dw.Set(row, j, dw.At(row, j)+g.At(j, k))
		}
	}
}

// RowsColsPluckOp represents output[0, k] = A[rows[k], cols[k]], a 1 x k row.
//
// Backward: dA[rows[k], cols[k]] += dOut[0, k].
type RowsColsPluckOp struct {
	base
	rows []int
	cols []int
}

// NewRowsColsPluckOp creates a new RowsColsPluckOp. The indices are copied.
func NewRowsColsPluckOp(a *matrix.Mat, rows, cols []int, output *matrix.Mat) *RowsColsPluckOp {
	return &RowsColsPluckOp{
		base: newBase("rows_cols_pluck", output, a),
		rows: slices.Clone(rows),
		cols: slices.Clone(cols),
	}
}

// Backward scatters dOut into the plucked cells.
func (op *RowsColsPluckOp) Backward() {
	a := op.inputs[0]
	if a.IsConstant() {
		return
	}
	dw, g := a.DW(), op.output.DW()
	for k := range op.rows {
		i, j := op.rows[k], op.cols[k]
		dw.Set(i, j, dw.At(i, j)+g.At(0, k))
	}
}

// ColPluckOp represents output = A[:, col] (n x 1).
//
// Backward: dA[:, col] += dOut.
type ColPluckOp struct {
	base
	col int
}

// NewColPluckOp creates a new ColPluckOp.
func NewColPluckOp(a *matrix.Mat, col int, output *matrix.Mat) *ColPluckOp {
	return &ColPluckOp{base: newBase("col_pluck", output, a), col: col}
}

// Backward adds dOut into the source column.
func (op *ColPluckOp) Backward() {
	a := op.inputs[0]
	if a.IsConstant() {
		return
	}
	dw, g := a.DW(), op.output.DW()
	for i := range a.Rows() {
		dw.Set(i, op.col, dw.At(i, op.col)+g.At(i, 0))
	}
}
