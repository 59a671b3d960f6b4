package matrix

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Initializer fills a freshly allocated weight buffer.
type Initializer func(w *mat.Dense)

// Uninitialized leaves the buffer as allocated.
func Uninitialized() Initializer {
	return func(*mat.Dense) {}
}

// Zero fills the buffer with zeros.
func Zero() Initializer {
	return func(w *mat.Dense) {
		w.Zero()
	}
}

// Uniform draws every element from U(lower, upper).
func Uniform(lower, upper float64) Initializer {
	return func(w *mat.Dense) {
		dist := distuv.Uniform{Min: lower, Max: upper}
		fill(w, dist.Rand)
	}
}

// UniformBound draws every element from U(-bound/2, bound/2).
func UniformBound(bound float64) Initializer {
	return Uniform(-bound/2, bound/2)
}

// Gaussian draws every element from N(mean, std²).
func Gaussian(mean, std float64) Initializer {
	return func(w *mat.Dense) {
		dist := distuv.Normal{Mu: mean, Sigma: std}
		fill(w, dist.Rand)
	}
}

// Eye sets the main diagonal to diag and everything else to zero.
// Non-square buffers get the leading diagonal only.
func Eye(diag float64) Initializer {
	return func(w *mat.Dense) {
		w.Zero()
		r, c := w.Dims()
		for i := range min(r, c) {
			w.Set(i, i, diag)
		}
	}
}

// SVD runs pre and then replaces the n x d buffer with an orthonormal n x d
// basis taken from its singular value decomposition: the leading d columns
// of U when n >= d, the leading n rows of V otherwise.
//
// If the factorization fails the pre-initialized values are kept.
func SVD(pre Initializer) Initializer {
	return func(w *mat.Dense) {
		pre(w)
		n, d := w.Dims()

		var svd mat.SVD
		if ok := svd.Factorize(w, mat.SVDFull); !ok {
			return
		}

		var basis mat.Dense
		if n >= d {
			svd.UTo(&basis)
			w.Copy(basis.Slice(0, n, 0, d))
			return
		}
		svd.VTo(&basis)
		w.Copy(basis.Slice(0, n, 0, d))
	}
}

// fill sets every element of w from draw, in row-major order.
func fill(w *mat.Dense, draw func() float64) {
	raw := w.RawMatrix()
	for i := range raw.Rows {
		row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
		for j := range row {
			row[j] = draw()
		}
	}
}
