package ops

import (
	"math"

	"github.com/born-ml/tapegrad/internal/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SquareOp represents output = A².
//
// Backward: dA += 2 * A ⊙ dOut.
type SquareOp struct {
	base
}

// NewSquareOp creates a new SquareOp.
func NewSquareOp(a, output *matrix.Mat) *SquareOp {
	return &SquareOp{base: newBase("square", output, a)}
}

// Backward computes the input gradient for squaring.
func (op *SquareOp) Backward() {
	a := op.inputs[0]
	if a.IsConstant() {
		return
	}
	var prod mat.Dense
	prod.MulElem(a.W(), op.output.DW())
	accumulateScaled(a, 2, &prod)
}

// SqrtOp represents output = √A.
//
// Backward: dA += dOut / (2 * out).
type SqrtOp struct {
	base
}

// NewSqrtOp creates a new SqrtOp.
func NewSqrtOp(a, output *matrix.Mat) *SqrtOp {
	return &SqrtOp{base: newBase("sqrt", output, a)}
}

// Backward computes the input gradient for the square root.
func (op *SqrtOp) Backward() {
	accumulate(op.inputs[0], mapElem(op.output.DW(), op.output.W(), func(g, y float64) float64 {
		return g / (2 * y)
	}))
}

// PowOp represents output = A^p for a constant exponent p.
//
// Backward: dA += p * A^(p-1) ⊙ dOut.
type PowOp struct {
	base
	exponent float64
}

// NewPowOp creates a new PowOp.
func NewPowOp(a *matrix.Mat, exponent float64, output *matrix.Mat) *PowOp {
	return &PowOp{base: newBase("pow", output, a), exponent: exponent}
}

// Exponent returns the constant exponent.
func (op *PowOp) Exponent() float64 {
	return op.exponent
}

// Backward computes the input gradient for the power.
func (op *PowOp) Backward() {
	p := op.exponent
	accumulate(op.inputs[0], mapElem(op.output.DW(), op.inputs[0].W(), func(g, x float64) float64 {
		return g * p * math.Pow(x, p-1)
	}))
}

// PowMatOp represents output = A^e where e is a 1 x 1 handle.
//
// Backward: dA += e * A^(e-1) ⊙ dOut, de += Σ out ⊙ log(A) ⊙ dOut.
type PowMatOp struct {
	base
}

// NewPowMatOp creates a new PowMatOp. Inputs are recorded as [A, e].
func NewPowMatOp(a, exponent, output *matrix.Mat) *PowMatOp {
	return &PowMatOp{base: newBase("pow_mat", output, a, exponent)}
}

// Backward computes gradients for the base and the exponent.
func (op *PowMatOp) Backward() {
	a, e := op.inputs[0], op.inputs[1]
	p := e.At(0, 0)
	g := op.output.DW()
	if !a.IsConstant() {
		accumulate(a, mapElem(g, a.W(), func(gv, x float64) float64 {
			return gv * p * math.Pow(x, p-1)
		}))
	}
	if !e.IsConstant() {
		grad := mapElem(g, op.output.W(), func(gv, y float64) float64 {
			return gv * y
		})
		grad = mapElem(grad, a.W(), func(v, x float64) float64 {
			return v * math.Log(x)
		})
		accumulateConst(e, floats.Sum(grad.RawMatrix().Data))
	}
}

// EltInverseOp represents output = 1 / A.
//
// Backward: dA -= out² ⊙ dOut.
type EltInverseOp struct {
	base
}

// NewEltInverseOp creates a new EltInverseOp.
func NewEltInverseOp(a, output *matrix.Mat) *EltInverseOp {
	return &EltInverseOp{base: newBase("elt_inverse", output, a)}
}

// Backward computes the input gradient for the reciprocal.
func (op *EltInverseOp) Backward() {
	accumulate(op.inputs[0], mapElem(op.output.DW(), op.output.W(), func(g, y float64) float64 {
		return -g * y * y
	}))
}

// LogOp represents output = log(A).
//
// Backward: dA += dOut / A.
type LogOp struct {
	base
}

// NewLogOp creates a new LogOp.
func NewLogOp(a, output *matrix.Mat) *LogOp {
	return &LogOp{base: newBase("log", output, a)}
}

// Backward computes the input gradient for the natural logarithm.
func (op *LogOp) Backward() {
	accumulate(op.inputs[0], mapElem(op.output.DW(), op.inputs[0].W(), func(g, x float64) float64 {
		return g / x
	}))
}

// ExpOp represents output = exp(A).
//
// Backward: dA += out ⊙ dOut.
type ExpOp struct {
	base
}

// NewExpOp creates a new ExpOp.
func NewExpOp(a, output *matrix.Mat) *ExpOp {
	return &ExpOp{base: newBase("exp", output, a)}
}

// Backward computes the input gradient for the exponential.
func (op *ExpOp) Backward() {
	accumulateElem(op.inputs[0], op.output.W(), op.output.DW())
}

// TransposeOp represents output = Aᵀ.
//
// Backward: dA += dOutᵀ.
type TransposeOp struct {
	base
}

// NewTransposeOp creates a new TransposeOp.
func NewTransposeOp(a, output *matrix.Mat) *TransposeOp {
	return &TransposeOp{base: newBase("transpose", output, a)}
}

// Backward transposes dOut into A.
func (op *TransposeOp) Backward() {
	accumulate(op.inputs[0], op.output.DW().T())
}
