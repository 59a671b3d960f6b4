package ops

import (
	"github.com/born-ml/tapegrad/internal/matrix"
)

// EltDivideOp represents output = A / B (elementwise).
//
// Backward: dA += dOut / B, dB -= dOut ⊙ A / B².
type EltDivideOp struct {
	base
}

// NewEltDivideOp creates a new EltDivideOp.
func NewEltDivideOp(a, b, output *matrix.Mat) *EltDivideOp {
	return &EltDivideOp{base: newBase("eltdivide", output, a, b)}
}

// Backward computes input gradients for elementwise division.
func (op *EltDivideOp) Backward() {
	a, b := op.inputs[0], op.inputs[1]
	g := op.output.DW()
	if !a.IsConstant() {
		accumulate(a, mapElem(g, b.W(), func(gv, bv float64) float64 {
			return gv / bv
		}))
	}
	if !b.IsConstant() {
		// A/B² == out/B
		scaled := mapElem(g, op.output.W(), func(gv, ov float64) float64 {
			return -gv * ov
		})
		accumulate(b, mapElem(scaled, b.W(), func(sv, bv float64) float64 {
			return sv / bv
		}))
	}
}

// EltDivideBroadcastOp represents output = A / b, with b an n x 1 column
// repeated across the columns of A.
//
// Backward: dA += dOut / b, db -= rowsum(dOut ⊙ A) / b².
type EltDivideBroadcastOp struct {
	base
}

// NewEltDivideBroadcastOp creates a new EltDivideBroadcastOp.
func NewEltDivideBroadcastOp(a, col, output *matrix.Mat) *EltDivideBroadcastOp {
	return &EltDivideBroadcastOp{base: newBase("eltdivide_broadcast", output, a, col)}
}

// Backward computes input gradients for column-broadcast division.
func (op *EltDivideBroadcastOp) Backward() {
	a, col := op.inputs[0], op.inputs[1]
	g := op.output.DW()
	_, c := g.Dims()
	denom := broadcastColumn(col.W(), c)
	if !a.IsConstant() {
		accumulate(a, mapElem(g, denom, func(gv, bv float64) float64 {
			return gv / bv
		}))
	}
	if !col.IsConstant() {
		num := rowSums(mapElem(g, a.W(), func(gv, av float64) float64 {
			return gv * av
		}))
		accumulate(col, mapElem(num, col.W(), func(s, bv float64) float64 {
			return -s / (bv * bv)
		}))
	}
}
