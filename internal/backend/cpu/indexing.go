package cpu

import (
	"gonum.org/v1/gonum/mat"
)

// PluckRows gathers rows of a as columns: out(:, k) = a(indices[k], :)ᵀ.
func (cpu *CPUBackend) PluckRows(a mat.Matrix, indices []int) *mat.Dense {
	_, c := a.Dims()
	out := mat.NewDense(c, len(indices), nil)
	row := make([]float64, c)
	for k, idx := range indices {
		mat.Row(row, idx, a)
		out.SetCol(k, row)
	}
	return out
}

// PluckCol returns column col of a as an n x 1 matrix.
func (cpu *CPUBackend) PluckCol(a mat.Matrix, col int) *mat.Dense {
	r, _ := a.Dims()
	return mat.NewDense(r, 1, mat.Col(nil, col, a))
}

// PluckPairs gathers a(rows[k], cols[k]) into a 1 x k row.
func (cpu *CPUBackend) PluckPairs(a mat.Matrix, rows, cols []int) *mat.Dense {
	out := mat.NewDense(1, len(rows), nil)
	for k := range rows {
		out.Set(0, k, a.At(rows[k], cols[k]))
	}
	return out
}
