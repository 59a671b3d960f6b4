package ops

import (
	"github.com/born-ml/tapegrad/internal/matrix"
	"gonum.org/v1/gonum/mat"
)

// MulOp represents output = A · B.
//
// Backward: dA += dOut · Bᵀ, dB += Aᵀ · dOut.
type MulOp struct {
	base
}

// NewMulOp creates a new MulOp.
func NewMulOp(a, b, output *matrix.Mat) *MulOp {
	return &MulOp{base: newBase("mul", output, a, b)}
}

// Backward computes input gradients for the matrix product.
func (op *MulOp) Backward() {
	a, b := op.inputs[0], op.inputs[1]
	g := op.output.DW()
	accumulateProduct(a, g, b.W().T())
	accumulateProduct(b, a.W().T(), g)
}

// MulAddMulWithBiasOp represents output = Σ Aᵢ · xᵢ + bias, where bias is an
// n x 1 column broadcast across the output columns. Inputs are recorded as
// [A₁, x₁, A₂, x₂, ..., bias].
//
// mul_with_bias is the single-pair case.
//
// Backward: dAᵢ += dOut · xᵢᵀ, dxᵢ += Aᵢᵀ · dOut, dbias += rowsum(dOut).
type MulAddMulWithBiasOp struct {
	base
}

// NewMulAddMulWithBiasOp creates a new MulAddMulWithBiasOp.
// kind distinguishes mul_with_bias from mul_add_mul_with_bias on the tape.
func NewMulAddMulWithBiasOp(kind string, output *matrix.Mat, inputs ...*matrix.Mat) *MulAddMulWithBiasOp {
	return &MulAddMulWithBiasOp{base: newBase(kind, output, inputs...)}
}

// Backward computes gradients for every pair and the bias.
func (op *MulAddMulWithBiasOp) Backward() {
	g := op.output.DW()
	last := len(op.inputs) - 1
	for k := 0; k+1 < last; k += 2 {
		m, x := op.inputs[k], op.inputs[k+1]
		accumulateProduct(m, g, x.W().T())
		accumulateProduct(x, m.W().T(), g)
	}
	accumulate(op.inputs[last], rowSums(g))
}

// MulAddBroadcastMulWithBiasOp represents output = (A₁ · x₁ + bias) + A₂ · x₂,
// where x₁ and bias are single columns broadcast across the columns of
// A₂ · x₂. Inputs are recorded as [A₁, x₁, A₂, x₂, bias].
//
// Backward:
//
//	dA₁ += rowsum(dOut) · x₁ᵀ
//	dx₁ += rowsum(A₁ᵀ · dOut)
//	dA₂ += dOut · x₂ᵀ
//	dx₂ += A₂ᵀ · dOut
//	dbias += rowsum(dOut)
type MulAddBroadcastMulWithBiasOp struct {
	base
}

// NewMulAddBroadcastMulWithBiasOp creates a new MulAddBroadcastMulWithBiasOp.
func NewMulAddBroadcastMulWithBiasOp(m1, x1, m2, x2, bias, output *matrix.Mat) *MulAddBroadcastMulWithBiasOp {
	return &MulAddBroadcastMulWithBiasOp{
		base: newBase("mul_add_broadcast_mul_with_bias", output, m1, x1, m2, x2, bias),
	}
}

// Backward computes gradients for the broadcast pair, the full pair and the bias.
func (op *MulAddBroadcastMulWithBiasOp) Backward() {
	m1, x1, m2, x2, bias := op.inputs[0], op.inputs[1], op.inputs[2], op.inputs[3], op.inputs[4]
	g := op.output.DW()
	gSum := rowSums(g)

	accumulateProduct(m1, gSum, x1.W().T())
	if !x1.IsConstant() {
		var back mat.Dense
		back.Mul(m1.W().T(), g)
		accumulate(x1, rowSums(&back))
	}
	accumulateProduct(m2, g, x2.W().T())
	accumulateProduct(x2, m2.W().T(), g)
	accumulate(bias, gSum)
}
