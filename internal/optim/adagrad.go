package optim

import (
	"math"

	"github.com/born-ml/tapegrad/internal/matrix"
	"gonum.org/v1/gonum/mat"
)

// AdaGrad scales every element's step by the root of its accumulated
// squared gradients.
//
// Update rule:
//
//	cache = cache + gradient²
//	param = param - lr * gradient / sqrt(cache + eps)
type AdaGrad struct {
	params []*matrix.Mat
	cfg    AdaGradConfig
	caches []*mat.Dense
}

// AdaGradConfig holds configuration for AdaGrad.
type AdaGradConfig struct {
	Config
	Eps float64 // Term for numerical stability (default: 1e-6)
}

// DefaultAdaGradConfig returns AdaGrad with LR 0.01 and Eps 1e-6.
func DefaultAdaGradConfig() AdaGradConfig {
	return AdaGradConfig{Config: Config{LR: 0.01}, Eps: 1e-6}
}

// NewAdaGrad creates a new AdaGrad optimizer. Zero fields select defaults.
func NewAdaGrad(params []*matrix.Mat, cfg AdaGradConfig) *AdaGrad {
	def := DefaultAdaGradConfig()
	if cfg.LR == 0 {
		cfg.LR = def.LR
	}
	if cfg.Eps == 0 {
		cfg.Eps = def.Eps
	}
	return &AdaGrad{
		params: params,
		cfg:    cfg,
		caches: make([]*mat.Dense, len(params)),
	}
}

// Step applies one AdaGrad update to every non-constant parameter.
func (a *AdaGrad) Step() {
	for i, p := range a.params {
		if p.IsConstant() {
			continue
		}
		grad := a.cfg.effectiveGradient(p)
		cache := state(a.caches, i, p)
		w := p.W()
		w.Apply(func(r, c int, v float64) float64 {
			g := grad.At(r, c)
			acc := cache.At(r, c) + g*g
			cache.Set(r, c, acc)
			return v - a.cfg.LR*g/math.Sqrt(acc+a.cfg.Eps)
		}, w)
	}
}

// ResetCaches forgets the accumulated squared gradients.
func (a *AdaGrad) ResetCaches() {
	for _, c := range a.caches {
		if c != nil {
			c.Zero()
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *AdaGrad) ZeroGrad() {
	zeroGrads(a.params)
}

// GetLR returns the current learning rate.
func (a *AdaGrad) GetLR() float64 {
	return a.cfg.LR
}
