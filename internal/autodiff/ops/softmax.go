package ops

import (
	"github.com/born-ml/tapegrad/internal/matrix"
	"gonum.org/v1/gonum/mat"
)

// SoftmaxOp represents the column-wise output = softmax(A / T).
//
// Backward uses the full Jacobian per column:
//
//	dA += out ⊙ (dOut - colsum(out ⊙ dOut)) / T
type SoftmaxOp struct {
	base
	temperature float64
}

// NewSoftmaxOp creates a new SoftmaxOp.
func NewSoftmaxOp(a *matrix.Mat, temperature float64, output *matrix.Mat) *SoftmaxOp {
	return &SoftmaxOp{base: newBase("softmax", output, a), temperature: temperature}
}

// Temperature returns the softmax temperature.
func (op *SoftmaxOp) Temperature() float64 {
	return op.temperature
}

// Backward computes the input gradient for softmax.
func (op *SoftmaxOp) Backward() {
	a := op.inputs[0]
	if a.IsConstant() {
		return
	}
	y, g := op.output.W(), op.output.DW()
	var yg mat.Dense
	yg.MulElem(y, g)
	dots := colSums(&yg)

	r, c := y.Dims()
	delta := mat.NewDense(r, c, nil)
	inv := 1 / op.temperature
	delta.Apply(func(i, j int, _ float64) float64 {
		return y.At(i, j) * (g.At(i, j) - dots.At(0, j)) * inv
	}, delta)
	accumulate(a, delta)
}
