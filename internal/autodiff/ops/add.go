package ops

import (
	"github.com/born-ml/tapegrad/internal/matrix"
)

// AddOp represents output = Σ inputs (same shapes).
//
// Backward: every input receives dOut.
type AddOp struct {
	base
}

// NewAddOp creates a new AddOp over two or more same-shaped inputs.
func NewAddOp(output *matrix.Mat, inputs ...*matrix.Mat) *AddOp {
	return &AddOp{base: newBase("add", output, inputs...)}
}

// Backward adds dOut to every input.
func (op *AddOp) Backward() {
	for _, in := range op.inputs {
		accumulate(in, op.output.DW())
	}
}

// AddBroadcastOp represents output = A + b, where b is an n x 1 column added
// to every column of A.
//
// Backward: dA += dOut, db += rowsum(dOut).
type AddBroadcastOp struct {
	base
}

// NewAddBroadcastOp creates a new AddBroadcastOp.
func NewAddBroadcastOp(a, col, output *matrix.Mat) *AddBroadcastOp {
	return &AddBroadcastOp{base: newBase("add_broadcast", output, a, col)}
}

// Backward computes input gradients for broadcast addition.
func (op *AddBroadcastOp) Backward() {
	a, col := op.inputs[0], op.inputs[1]
	accumulate(a, op.output.DW())
	accumulate(col, rowSums(op.output.DW()))
}

// AddScalarOp represents output = A + s.
//
// Backward: dA += dOut.
type AddScalarOp struct {
	base
	scalar float64
}

// NewAddScalarOp creates a new AddScalarOp.
func NewAddScalarOp(a *matrix.Mat, scalar float64, output *matrix.Mat) *AddScalarOp {
	return &AddScalarOp{base: newBase("add_scalar", output, a), scalar: scalar}
}

// Scalar returns the added constant.
func (op *AddScalarOp) Scalar() float64 {
	return op.scalar
}

// Backward passes dOut through to A.
func (op *AddScalarOp) Backward() {
	accumulate(op.inputs[0], op.output.DW())
}
