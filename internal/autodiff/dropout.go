package autodiff

import (
	"fmt"

	"github.com/born-ml/tapegrad/internal/autodiff/ops"
	"github.com/born-ml/tapegrad/internal/matrix"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DropoutThreshold is the probability below which dropout is a no-op.
const DropoutThreshold = 1e-6

// Dropout zeroes every element of a independently with probability p.
//
// The mask is drawn once per call and frozen in the recorded operation.
// For p below DropoutThreshold the input handle itself is returned and
// nothing is recorded.
func (g *Graph) Dropout(a *matrix.Mat, p float64) (*matrix.Mat, error) {
	return g.dropout("dropout", a, p, 1)
}

// DropoutNormalized is Dropout with survivors scaled by 1/(1-p), preserving
// the expected value of every element.
func (g *Graph) DropoutNormalized(a *matrix.Mat, p float64) (*matrix.Mat, error) {
	return g.dropout("dropout_normalized", a, p, 1/(1-p))
}

func (g *Graph) dropout(kind string, a *matrix.Mat, p, keep float64) (*matrix.Mat, error) {
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("%s: %w: probability %v outside [0, 1]", kind, matrix.ErrNumericDomain, p)
	}
	if p < DropoutThreshold {
		return a, nil
	}
	bern := distuv.Bernoulli{P: 1 - p}
	mask := sample(a, func() float64 {
		if bern.Rand() > 0 {
			return keep
		}
		return 0
	})
	return g.applyMask(kind, a, mask), nil
}

// FastDropout multiplies every element of a by an independent N(1, 1) sample.
func (g *Graph) FastDropout(a *matrix.Mat) *matrix.Mat {
	noise := distuv.Normal{Mu: 1, Sigma: 1}
	return g.applyMask("fast_dropout", a, sample(a, noise.Rand))
}

func (g *Graph) applyMask(kind string, a *matrix.Mat, mask *mat.Dense) *matrix.Mat {
	out := matrix.FromDense(g.backend.MulElem(a.W(), mask))
	g.Record(ops.NewDropoutOp(kind, a, mask, out))
	return out
}

// sample fills a buffer shaped like a with draws from next.
func sample(a *matrix.Mat, next func() float64) *mat.Dense {
	r, c := a.Dims()
	mask := mat.NewDense(r, c, nil)
	mask.Apply(func(_, _ int, _ float64) float64 {
		return next()
	}, mask)
	return mask
}
