package cpu

import (
	"math"

	"github.com/born-ml/tapegrad/internal/parallel"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Add returns a + b.
func (cpu *CPUBackend) Add(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Add(a, b)
	return &out
}

// Sub returns a - b.
func (cpu *CPUBackend) Sub(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Sub(a, b)
	return &out
}

// AddScalar returns a + s elementwise.
func (cpu *CPUBackend) AddScalar(a mat.Matrix, s float64) *mat.Dense {
	out := mat.DenseCopyOf(a)
	cpu.rows(out, func(row []float64) {
		floats.AddConst(s, row)
	})
	return out
}

// Scale returns s * a.
func (cpu *CPUBackend) Scale(s float64, a mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Scale(s, a)
	return &out
}

// MulElem returns a ⊙ b.
func (cpu *CPUBackend) MulElem(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.MulElem(a, b)
	return &out
}

// DivElem returns a ⊘ b.
func (cpu *CPUBackend) DivElem(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.DivElem(a, b)
	return &out
}

// AddColumn returns a with sign*col(i) added to every element of row i.
func (cpu *CPUBackend) AddColumn(a mat.Matrix, col mat.Matrix, sign float64) *mat.Dense {
	out := mat.DenseCopyOf(a)
	cpu.rowsIndexed(out, func(i int, row []float64) {
		floats.AddConst(sign*col.At(i, 0), row)
	})
	return out
}

// ColumnMinus returns col(i) - a(i, j).
func (cpu *CPUBackend) ColumnMinus(col mat.Matrix, a mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(a)
	cpu.rowsIndexed(out, func(i int, row []float64) {
		floats.Scale(-1, row)
		floats.AddConst(col.At(i, 0), row)
	})
	return out
}

// MulColumn returns a(i, j) * col(i).
func (cpu *CPUBackend) MulColumn(a mat.Matrix, col mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(a)
	cpu.rowsIndexed(out, func(i int, row []float64) {
		floats.Scale(col.At(i, 0), row)
	})
	return out
}

// DivColumn returns a(i, j) / col(i).
func (cpu *CPUBackend) DivColumn(a mat.Matrix, col mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(a)
	cpu.rowsIndexed(out, func(i int, row []float64) {
		floats.Scale(1/col.At(i, 0), row)
	})
	return out
}

// MulRow returns a(i, j) * row(0, j).
func (cpu *CPUBackend) MulRow(a mat.Matrix, rowVec mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(a)
	scale := mat.Row(nil, 0, rowVec)
	cpu.rows(out, func(row []float64) {
		floats.Mul(row, scale)
	})
	return out
}

// Apply returns fn applied to every element of a.
func (cpu *CPUBackend) Apply(a mat.Matrix, fn func(float64) float64) *mat.Dense {
	out := mat.DenseCopyOf(a)
	cpu.rows(out, func(row []float64) {
		for j, v := range row {
			row[j] = fn(v)
		}
	})
	return out
}

// Pow returns a^p elementwise.
func (cpu *CPUBackend) Pow(a mat.Matrix, p float64) *mat.Dense {
	return cpu.Apply(a, func(v float64) float64 {
		return math.Pow(v, p)
	})
}

// Sum returns the sum of all elements.
func (cpu *CPUBackend) Sum(a mat.Matrix) float64 {
	return mat.Sum(a)
}

// rows runs fn over every row of the contiguous buffer of out.
func (cpu *CPUBackend) rows(out *mat.Dense, fn func(row []float64)) {
	cpu.rowsIndexed(out, func(_ int, row []float64) {
		fn(row)
	})
}

// rowsIndexed runs fn(i, row) over every row of out, splitting large
// matrices into row ranges across goroutines.
func (cpu *CPUBackend) rowsIndexed(out *mat.Dense, fn func(i int, row []float64)) {
	raw := out.RawMatrix()
	cfg := cpu.cfg
	if raw.Rows*raw.Cols < cfg.MinChunkSize*cfg.MinChunkSize {
		cfg.Enabled = false
	}
	parallel.ForRange(raw.Rows, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			fn(i, raw.Data[i*raw.Stride:i*raw.Stride+raw.Cols])
		}
	}, cfg)
}
