package cpu

import (
	"gonum.org/v1/gonum/mat"
)

// MatMul returns a · b.
func (cpu *CPUBackend) MatMul(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(a, b)
	return &out
}

// MulAddMul returns Σ pairs[2k] · pairs[2k+1]. All products share a shape.
func (cpu *CPUBackend) MulAddMul(pairs ...mat.Matrix) *mat.Dense {
	out := cpu.MatMul(pairs[0], pairs[1])
	var prod mat.Dense
	for k := 2; k+1 < len(pairs); k += 2 {
		prod.Reset()
		prod.Mul(pairs[k], pairs[k+1])
		out.Add(out, &prod)
	}
	return out
}
