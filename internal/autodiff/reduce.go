package autodiff

import (
	"github.com/born-ml/tapegrad/internal/autodiff/ops"
	"github.com/born-ml/tapegrad/internal/matrix"
	"gonum.org/v1/gonum/mat"
)

// Sum returns the 1x1 sum of all elements of a.
func (g *Graph) Sum(a *matrix.Mat) *matrix.Mat {
	out := scalar(g.backend.Sum(a.W()))
	g.Record(ops.NewSumOp(a, out))
	return out
}

// Mean returns the 1x1 mean of all elements of a.
func (g *Graph) Mean(a *matrix.Mat) *matrix.Mat {
	out := scalar(g.backend.Sum(a.W()) / float64(a.NumElements()))
	g.Record(ops.NewMeanOp(a, out))
	return out
}

func scalar(v float64) *matrix.Mat {
	return matrix.FromDense(mat.NewDense(1, 1, []float64{v}))
}
