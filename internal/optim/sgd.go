package optim

import (
	"github.com/born-ml/tapegrad/internal/matrix"
	"gonum.org/v1/gonum/mat"
)

// SGD implements Stochastic Gradient Descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []*matrix.Mat
	cfg        SGDConfig
	velocities []*mat.Dense
}

// SGDConfig holds configuration for SGD.
type SGDConfig struct {
	Config
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// DefaultSGDConfig returns plain SGD with LR 0.01.
func DefaultSGDConfig() SGDConfig {
	return SGDConfig{Config: Config{LR: 0.01}}
}

// NewSGD creates a new SGD optimizer. A zero LR selects the default.
func NewSGD(params []*matrix.Mat, cfg SGDConfig) *SGD {
	if cfg.LR == 0 {
		cfg.LR = DefaultSGDConfig().LR
	}
	return &SGD{
		params:     params,
		cfg:        cfg,
		velocities: make([]*mat.Dense, len(params)),
	}
}

// Step applies one SGD update to every non-constant parameter.
func (s *SGD) Step() {
	for i, p := range s.params {
		if p.IsConstant() {
			continue
		}
		grad := s.cfg.effectiveGradient(p)
		update := grad
		if s.cfg.Momentum != 0 {
			v := state(s.velocities, i, p)
			v.Scale(s.cfg.Momentum, v)
			v.Add(v, grad)
			update = v
		}
		var scaled mat.Dense
		scaled.Scale(s.cfg.LR, update)
		w := p.W()
		w.Sub(w, &scaled)
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	zeroGrads(s.params)
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.cfg.LR
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.cfg.LR = lr
}
