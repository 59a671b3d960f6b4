package optim

import (
	"math"

	"github.com/born-ml/tapegrad/internal/matrix"
	"gonum.org/v1/gonum/mat"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	params []*matrix.Mat
	cfg    AdamConfig
	t      int          // Timestep for bias correction
	m      []*mat.Dense // First moment estimates
	v      []*mat.Dense // Second moment estimates
}

// AdamConfig holds configuration for Adam.
type AdamConfig struct {
	Config
	Betas [2]float64 // Coefficients for the running averages (default: [0.9, 0.999])
	Eps   float64    // Term for numerical stability (default: 1e-8)
}

// DefaultAdamConfig returns Adam with LR 0.001, betas (0.9, 0.999) and Eps 1e-8.
func DefaultAdamConfig() AdamConfig {
	return AdamConfig{
		Config: Config{LR: 0.001},
		Betas:  [2]float64{0.9, 0.999},
		Eps:    1e-8,
	}
}

// NewAdam creates a new Adam optimizer. Zero fields select defaults.
func NewAdam(params []*matrix.Mat, cfg AdamConfig) *Adam {
	def := DefaultAdamConfig()
	if cfg.LR == 0 {
		cfg.LR = def.LR
	}
	if cfg.Betas[0] == 0 {
		cfg.Betas[0] = def.Betas[0]
	}
	if cfg.Betas[1] == 0 {
		cfg.Betas[1] = def.Betas[1]
	}
	if cfg.Eps == 0 {
		cfg.Eps = def.Eps
	}
	return &Adam{
		params: params,
		cfg:    cfg,
		m:      make([]*mat.Dense, len(params)),
		v:      make([]*mat.Dense, len(params)),
	}
}

// Step performs a single Adam update of every non-constant parameter.
func (a *Adam) Step() {
	a.t++
	beta1, beta2 := a.cfg.Betas[0], a.cfg.Betas[1]
	biasCorrection1 := 1 - math.Pow(beta1, float64(a.t))
	biasCorrection2 := 1 - math.Pow(beta2, float64(a.t))

	for i, p := range a.params {
		if p.IsConstant() {
			continue
		}
		grad := a.cfg.effectiveGradient(p)
		m := state(a.m, i, p)
		v := state(a.v, i, p)

		w := p.W()
		w.Apply(func(r, c int, x float64) float64 {
			g := grad.At(r, c)
			mi := beta1*m.At(r, c) + (1-beta1)*g
			vi := beta2*v.At(r, c) + (1-beta2)*g*g
			m.Set(r, c, mi)
			v.Set(r, c, vi)
			mHat := mi / biasCorrection1
			vHat := vi / biasCorrection2
			return x - a.cfg.LR*mHat/(math.Sqrt(vHat)+a.cfg.Eps)
		}, w)
	}
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	zeroGrads(a.params)
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float64 {
	return a.cfg.LR
}
