package ops

import (
	"github.com/born-ml/tapegrad/internal/matrix"
)

// SigmoidOp represents output = σ(A).
//
// Backward: dA += out ⊙ (1 - out) ⊙ dOut.
type SigmoidOp struct {
	base
}

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(a, output *matrix.Mat) *SigmoidOp {
	return &SigmoidOp{base: newBase("sigmoid", output, a)}
}

// Backward computes the input gradient for sigmoid.
func (op *SigmoidOp) Backward() {
	accumulate(op.inputs[0], mapElem(op.output.DW(), op.output.W(), func(g, y float64) float64 {
		return g * y * (1 - y)
	}))
}

// SteepSigmoidOp represents output = σ(aggressiveness * A).
//
// Backward: dA += aggressiveness * out ⊙ (1 - out) ⊙ dOut.
type SteepSigmoidOp struct {
	base
	aggressiveness float64
}

// NewSteepSigmoidOp creates a new SteepSigmoidOp.
func NewSteepSigmoidOp(a *matrix.Mat, aggressiveness float64, output *matrix.Mat) *SteepSigmoidOp {
	return &SteepSigmoidOp{base: newBase("steep_sigmoid", output, a), aggressiveness: aggressiveness}
}

// Aggressiveness returns the steepness factor.
func (op *SteepSigmoidOp) Aggressiveness() float64 {
	return op.aggressiveness
}

// Backward computes the input gradient for the steep sigmoid.
func (op *SteepSigmoidOp) Backward() {
	k := op.aggressiveness
	accumulate(op.inputs[0], mapElem(op.output.DW(), op.output.W(), func(g, y float64) float64 {
		return k * g * y * (1 - y)
	}))
}

// TanhOp represents output = tanh(A).
//
// Backward: dA += (1 - out²) ⊙ dOut.
type TanhOp struct {
	base
}

// NewTanhOp creates a new TanhOp.
func NewTanhOp(a, output *matrix.Mat) *TanhOp {
	return &TanhOp{base: newBase("tanh", output, a)}
}

// Backward computes the input gradient for tanh.
func (op *TanhOp) Backward() {
	accumulate(op.inputs[0], mapElem(op.output.DW(), op.output.W(), func(g, y float64) float64 {
		return g * (1 - y*y)
	}))
}

// ReluOp represents output = max(A, 0).
//
// Backward: dA += sign(out) ⊙ dOut, so the gradient is zero where out <= 0.
type ReluOp struct {
	base
}

// NewReluOp creates a new ReluOp.
func NewReluOp(a, output *matrix.Mat) *ReluOp {
	return &ReluOp{base: newBase("relu", output, a)}
}

// Backward computes the input gradient for ReLU.
func (op *ReluOp) Backward() {
	accumulate(op.inputs[0], mapElem(op.output.DW(), op.output.W(), func(g, y float64) float64 {
		if y > 0 {
			return g
		}
		return 0
	}))
}
