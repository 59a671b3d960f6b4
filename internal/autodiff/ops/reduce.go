package ops

import (
	"github.com/born-ml/tapegrad/internal/matrix"
)

// SumOp represents output = Σ A (1 x 1).
//
// Backward: dA += dOut(0, 0) everywhere.
type SumOp struct {
	base
}

// NewSumOp creates a new SumOp.
func NewSumOp(a, output *matrix.Mat) *SumOp {
	return &SumOp{base: newBase("sum", output, a)}
}

// Backward broadcasts the scalar gradient.
func (op *SumOp) Backward() {
	accumulateConst(op.inputs[0], op.output.GradAt(0, 0))
}

// MeanOp represents output = mean(A) (1 x 1).
//
// Backward: dA += dOut(0, 0) / (rows * cols) everywhere.
type MeanOp struct {
	base
}

// NewMeanOp creates a new MeanOp.
func NewMeanOp(a, output *matrix.Mat) *MeanOp {
	return &MeanOp{base: newBase("mean", output, a)}
}

// Backward broadcasts the scaled scalar gradient.
func (op *MeanOp) Backward() {
	a := op.inputs[0]
	accumulateConst(a, op.output.GradAt(0, 0)/float64(a.NumElements()))
}
