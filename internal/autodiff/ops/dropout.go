package ops

import (
	"github.com/born-ml/tapegrad/internal/matrix"
	"gonum.org/v1/gonum/mat"
)

// DropoutOp represents output = A ⊙ mask for the stochastic masking family
// (dropout, dropout_normalized, fast_dropout).
//
// The mask is sampled once during the forward pass and kept here, so every
// replay of Backward uses exactly the randomness applied forward.
//
// Backward: dA += mask ⊙ dOut.
type DropoutOp struct {
	base
	mask *mat.Dense
}

// NewDropoutOp creates a new DropoutOp of the given kind with a frozen mask.
func NewDropoutOp(kind string, a *matrix.Mat, mask *mat.Dense, output *matrix.Mat) *DropoutOp {
	return &DropoutOp{base: newBase(kind, output, a), mask: mask}
}

// Mask returns the frozen mask. Callers must not modify it.
func (op *DropoutOp) Mask() mat.Matrix {
	return op.mask
}

// Backward applies the frozen mask to dOut.
func (op *DropoutOp) Backward() {
	accumulateElem(op.inputs[0], op.mask, op.output.DW())
}
