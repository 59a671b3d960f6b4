package ops

import (
	"github.com/born-ml/tapegrad/internal/matrix"
)

// SubOp represents output = A - B.
//
// Backward: dA += dOut, dB -= dOut.
type SubOp struct {
	base
}

// NewSubOp creates a new SubOp.
func NewSubOp(a, b, output *matrix.Mat) *SubOp {
	return &SubOp{base: newBase("sub", output, a, b)}
}

// Backward computes input gradients for subtraction.
func (op *SubOp) Backward() {
	accumulate(op.inputs[0], op.output.DW())
	accumulateScaled(op.inputs[1], -1, op.output.DW())
}

// SubBroadcastOp represents output = A - b with b an n x 1 column.
//
// Backward: dA += dOut, db -= rowsum(dOut).
type SubBroadcastOp struct {
	base
}

// NewSubBroadcastOp creates a new SubBroadcastOp.
func NewSubBroadcastOp(a, col, output *matrix.Mat) *SubBroadcastOp {
	return &SubBroadcastOp{base: newBase("sub_broadcast", output, a, col)}
}

// Backward computes input gradients for broadcast subtraction.
func (op *SubBroadcastOp) Backward() {
	accumulate(op.inputs[0], op.output.DW())
	accumulateScaled(op.inputs[1], -1, rowSums(op.output.DW()))
}

// SubBroadcastReversedOp represents output = b - A with b an n x 1 column.
//
// Backward: dA -= dOut, db += rowsum(dOut).
type SubBroadcastReversedOp struct {
	base
}

// NewSubBroadcastReversedOp creates a new SubBroadcastReversedOp.
// Inputs are recorded as [A, b].
func NewSubBroadcastReversedOp(a, col, output *matrix.Mat) *SubBroadcastReversedOp {
	return &SubBroadcastReversedOp{base: newBase("sub_broadcast_reversed", output, a, col)}
}

// Backward computes input gradients for reversed broadcast subtraction.
func (op *SubBroadcastReversedOp) Backward() {
	accumulateScaled(op.inputs[0], -1, op.output.DW())
	accumulate(op.inputs[1], rowSums(op.output.DW()))
}

// ScalarSubOp represents output = s - A.
//
// Backward: dA -= dOut.
type ScalarSubOp struct {
	base
	scalar float64
}

// NewScalarSubOp creates a new ScalarSubOp.
func NewScalarSubOp(scalar float64, a, output *matrix.Mat) *ScalarSubOp {
	return &ScalarSubOp{base: newBase("scalar_sub", output, a), scalar: scalar}
}

// Backward negates dOut into A.
func (op *ScalarSubOp) Backward() {
	accumulateScaled(op.inputs[0], -1, op.output.DW())
}
