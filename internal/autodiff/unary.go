package autodiff

import (
	"fmt"
	"math"

	"github.com/born-ml/tapegrad/internal/autodiff/ops"
	"github.com/born-ml/tapegrad/internal/backend/cpu"
	"github.com/born-ml/tapegrad/internal/matrix"
)

// Square returns a².
func (g *Graph) Square(a *matrix.Mat) *matrix.Mat {
	out := matrix.FromDense(g.backend.MulElem(a.W(), a.W()))
	g.Record(ops.NewSquareOp(a, out))
	return out
}

// Sqrt returns √a.
func (g *Graph) Sqrt(a *matrix.Mat) *matrix.Mat {
	out := matrix.FromDense(g.backend.Apply(a.W(), math.Sqrt))
	g.Record(ops.NewSqrtOp(a, out))
	return out
}

// Pow returns a raised to a constant exponent.
func (g *Graph) Pow(a *matrix.Mat, exponent float64) *matrix.Mat {
	out := matrix.FromDense(g.backend.Pow(a.W(), exponent))
	g.Record(ops.NewPowOp(a, exponent, out))
	return out
}

// PowMat returns a raised to the value of a 1x1 exponent handle.
// The exponent receives a gradient as well.
func (g *Graph) PowMat(a, exponent *matrix.Mat) (*matrix.Mat, error) {
	if !exponent.Shape().IsScalar() {
		return nil, matrix.Mismatch("pow", "1x1 exponent", a, exponent)
	}
	out := matrix.FromDense(g.backend.Pow(a.W(), exponent.At(0, 0)))
	g.Record(ops.NewPowMatOp(a, exponent, out))
	return out, nil
}

// EltInverse returns 1 / a.
func (g *Graph) EltInverse(a *matrix.Mat) *matrix.Mat {
	out := matrix.FromDense(g.backend.Apply(a.W(), func(x float64) float64 {
		return 1 / x
	}))
	g.Record(ops.NewEltInverseOp(a, out))
	return out
}

// Log returns the natural logarithm of a.
func (g *Graph) Log(a *matrix.Mat) *matrix.Mat {
	out := matrix.FromDense(g.backend.Apply(a.W(), math.Log))
	g.Record(ops.NewLogOp(a, out))
	return out
}

// Exp returns exp(a).
func (g *Graph) Exp(a *matrix.Mat) *matrix.Mat {
	out := matrix.FromDense(g.backend.Apply(a.W(), math.Exp))
	g.Record(ops.NewExpOp(a, out))
	return out
}

// Sigmoid returns σ(a) = 1 / (1 + exp(-a)).
func (g *Graph) Sigmoid(a *matrix.Mat) *matrix.Mat {
	out := matrix.FromDense(g.backend.Apply(a.W(), cpu.Sigmoid))
	g.Record(ops.NewSigmoidOp(a, out))
	return out
}

// SteepSigmoid returns σ(aggressiveness * a).
func (g *Graph) SteepSigmoid(a *matrix.Mat, aggressiveness float64) *matrix.Mat {
	out := matrix.FromDense(g.backend.Apply(a.W(), cpu.SteepSigmoid(aggressiveness)))
	g.Record(ops.NewSteepSigmoidOp(a, aggressiveness, out))
	return out
}

// Tanh returns tanh(a).
func (g *Graph) Tanh(a *matrix.Mat) *matrix.Mat {
	out := matrix.FromDense(g.backend.Apply(a.W(), math.Tanh))
	g.Record(ops.NewTanhOp(a, out))
	return out
}

// Relu returns max(a, 0).
func (g *Graph) Relu(a *matrix.Mat) *matrix.Mat {
	out := matrix.FromDense(g.backend.Apply(a.W(), cpu.Relu))
	g.Record(ops.NewReluOp(a, out))
	return out
}

// Softmax normalizes every column of a: out(:, j) = softmax(a(:, j) / temperature).
//
// Returns ErrNumericDomain if temperature is not positive.
func (g *Graph) Softmax(a *matrix.Mat, temperature float64) (*matrix.Mat, error) {
	if temperature <= 0 {
		return nil, fmt.Errorf("softmax: %w: temperature %v must be > 0", matrix.ErrNumericDomain, temperature)
	}
	if err := matrix.AssertNotNaN("softmax", a.W()); err != nil {
		return nil, err
	}
	out := matrix.FromDense(g.backend.SoftmaxColumns(a.W(), temperature))
	if err := matrix.AssertPositive("softmax", out.W()); err != nil {
		return nil, err
	}
	g.Record(ops.NewSoftmaxOp(a, temperature, out))
	return out, nil
}

// Transpose returns aᵀ.
func (g *Graph) Transpose(a *matrix.Mat) *matrix.Mat {
	out := matrix.FromDense(g.backend.Transpose(a.W()))
	g.Record(ops.NewTransposeOp(a, out))
	return out
}
