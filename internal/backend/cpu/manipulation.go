package cpu

import (
	"gonum.org/v1/gonum/mat"
)

// Transpose returns a copy of aᵀ.
func (cpu *CPUBackend) Transpose(a mat.Matrix) *mat.Dense {
	return mat.DenseCopyOf(a.T())
}

// HStack concatenates ms along columns. All operands share a row count.
func (cpu *CPUBackend) HStack(ms ...mat.Matrix) *mat.Dense {
	rows, _ := ms[0].Dims()
	total := 0
	for _, m := range ms {
		_, c := m.Dims()
		total += c
	}

	out := mat.NewDense(rows, total, nil)
	offset := 0
	for _, m := range ms {
		_, c := m.Dims()
		out.Slice(0, rows, offset, offset+c).(*mat.Dense).Copy(m)
		offset += c
	}
	return out
}

// VStack concatenates ms along rows. All operands share a column count.
func (cpu *CPUBackend) VStack(ms ...mat.Matrix) *mat.Dense {
	_, cols := ms[0].Dims()
	total := 0
	for _, m := range ms {
		r, _ := m.Dims()
		total += r
	}

	out := mat.NewDense(total, cols, nil)
	offset := 0
	for _, m := range ms {
		r, _ := m.Dims()
		out.Slice(offset, offset+r, 0, cols).(*mat.Dense).Copy(m)
		offset += r
	}
	return out
}
