// Package optim implements solvers that consume the gradients accumulated by
// an autodiff backward pass.
//
// This package provides:
//   - Optimizer interface: Base interface for all solvers
//   - SGD: Stochastic Gradient Descent with momentum
//   - AdaGrad: per-element adaptive learning rates
//   - Adam: Adaptive Moment Estimation
//   - MergeGradients: folds Hogwild replica gradients into the master handles
//
// Example usage:
//
//	opt := optim.NewAdam(params, optim.DefaultAdamConfig())
//
//	for step := range steps {
//	    g := autodiff.New()
//	    loss, _ := forward(g, params, batch)
//	    _ = g.Grad(loss)
//	    g.Backward()
//
//	    opt.Step()
//	    opt.ZeroGrad()
//	}
package optim

import (
	"math"

	"github.com/born-ml/tapegrad/internal/matrix"
	"gonum.org/v1/gonum/mat"
)

// Optimizer is the base interface for all solvers.
type Optimizer interface {
	// Step updates the weights of every parameter from its gradient buffer.
	// Constant parameters are skipped.
	Step()

	// ZeroGrad resets every parameter gradient.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64
}

// Config holds the settings shared by every solver.
type Config struct {
	LR   float64 // Learning rate
	Clip float64 // Clip each gradient element to [-Clip, Clip] (0 disables)
	L2   float64 // L2 regularization strength added to the gradient (0 disables)
}

// effectiveGradient returns clip(dw) + L2 * w for p.
func (c Config) effectiveGradient(p *matrix.Mat) *mat.Dense {
	g := mat.DenseCopyOf(p.DW())
	if c.Clip > 0 {
		g.Apply(func(_, _ int, v float64) float64 {
			return math.Max(-c.Clip, math.Min(c.Clip, v))
		}, g)
	}
	if c.L2 != 0 {
		var reg mat.Dense
		reg.Scale(c.L2, p.W())
		g.Add(g, &reg)
	}
	return g
}

// zeroGrads resets the gradient buffer of every parameter.
func zeroGrads(params []*matrix.Mat) {
	for _, p := range params {
		p.ResetGrad()
	}
}

// state returns the per-parameter buffer at i, allocating it zero-filled on
// first use or after a resize.
func state(buffers []*mat.Dense, i int, p *matrix.Mat) *mat.Dense {
	r, c := p.Dims()
	if buffers[i] == nil {
		buffers[i] = mat.NewDense(r, c, nil)
	} else if br, bc := buffers[i].Dims(); br != r || bc != c {
		buffers[i] = mat.NewDense(r, c, nil)
	}
	return buffers[i]
}
