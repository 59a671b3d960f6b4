package ops

import (
	"github.com/born-ml/tapegrad/internal/matrix"
	"gonum.org/v1/gonum/mat"
)

// EltMulOp represents output = A ⊙ B.
//
// Backward: dA += B ⊙ dOut, dB += A ⊙ dOut.
type EltMulOp struct {
	base
}

// NewEltMulOp creates a new EltMulOp.
func NewEltMulOp(a, b, output *matrix.Mat) *EltMulOp {
	return &EltMulOp{base: newBase("eltmul", output, a, b)}
}

// Backward computes input gradients for elementwise multiplication.
func (op *EltMulOp) Backward() {
	a, b := op.inputs[0], op.inputs[1]
	g := op.output.DW()
	accumulateElem(a, b.W(), g)
	accumulateElem(b, a.W(), g)
}

// EltMulBroadcastOp represents output = A ⊙ b, with b an n x 1 column
// repeated across the columns of A.
//
// Backward: dA += dOut ⊙ b, db += rowsum(A ⊙ dOut).
type EltMulBroadcastOp struct {
	base
}

// NewEltMulBroadcastOp creates a new EltMulBroadcastOp.
func NewEltMulBroadcastOp(a, col, output *matrix.Mat) *EltMulBroadcastOp {
	return &EltMulBroadcastOp{base: newBase("eltmul_broadcast", output, a, col)}
}

// Backward computes input gradients for column-broadcast multiplication.
func (op *EltMulBroadcastOp) Backward() {
	a, col := op.inputs[0], op.inputs[1]
	g := op.output.DW()
	_, c := g.Dims()
	accumulateElem(a, g, broadcastColumn(col.W(), c))
	if !col.IsConstant() {
		var prod mat.Dense
		prod.MulElem(a.W(), g)
		accumulate(col, rowSums(&prod))
	}
}

// EltMulBroadcastRowwiseOp represents output = A ⊙ r, with r a 1 x d row
// repeated down the rows of A.
//
// Backward: dA += dOut ⊙ r, dr += colsum(A ⊙ dOut).
type EltMulBroadcastRowwiseOp struct {
	base
}

// NewEltMulBroadcastRowwiseOp creates a new EltMulBroadcastRowwiseOp.
func NewEltMulBroadcastRowwiseOp(a, row, output *matrix.Mat) *EltMulBroadcastRowwiseOp {
	return &EltMulBroadcastRowwiseOp{base: newBase("eltmul_broadcast_rowwise", output, a, row)}
}

// Backward computes input gradients for row-broadcast multiplication.
func (op *EltMulBroadcastRowwiseOp) Backward() {
	a, row := op.inputs[0], op.inputs[1]
	g := op.output.DW()
	if !a.IsConstant() {
		r, c := g.Dims()
		rep := mat.NewDense(r, c, nil)
		rep.Apply(func(_, j int, _ float64) float64 {
			return row.At(0, j)
		}, rep)
		accumulateElem(a, g, rep)
	}
	if !row.IsConstant() {
		var prod mat.Dense
		prod.MulElem(a.W(), g)
		accumulate(row, colSums(&prod))
	}
}

// EltMulRowwiseOp represents output = A ⊙ Bᵀ, with B shaped d x n.
//
// Backward: dA += Bᵀ ⊙ dOut, dB += (A ⊙ dOut)ᵀ.
type EltMulRowwiseOp struct {
	base
}

// NewEltMulRowwiseOp creates a new EltMulRowwiseOp.
func NewEltMulRowwiseOp(a, b, output *matrix.Mat) *EltMulRowwiseOp {
	return &EltMulRowwiseOp{base: newBase("eltmul_rowwise", output, a, b)}
}

// Backward computes input gradients for transposed elementwise multiplication.
func (op *EltMulRowwiseOp) Backward() {
	a, b := op.inputs[0], op.inputs[1]
	g := op.output.DW()
	accumulateElem(a, b.W().T(), g)
	if !b.IsConstant() {
		var prod mat.Dense
		prod.MulElem(a.W(), g)
		accumulate(b, prod.T())
	}
}

// EltMulScalarOp represents output = alpha * A.
//
// Backward: dA += alpha * dOut.
type EltMulScalarOp struct {
	base
	alpha float64
}

// NewEltMulScalarOp creates a new EltMulScalarOp.
func NewEltMulScalarOp(a *matrix.Mat, alpha float64, output *matrix.Mat) *EltMulScalarOp {
	return &EltMulScalarOp{base: newBase("eltmul_scalar", output, a), alpha: alpha}
}

// Alpha returns the scale factor.
func (op *EltMulScalarOp) Alpha() float64 {
	return op.alpha
}

// Backward scales dOut into A.
func (op *EltMulScalarOp) Backward() {
	accumulateScaled(op.inputs[0], op.alpha, op.output.DW())
}
