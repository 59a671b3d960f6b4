package ops

import (
	"github.com/born-ml/tapegrad/internal/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// accumulate adds delta into the gradient of dst.
func accumulate(dst *matrix.Mat, delta mat.Matrix) {
	if dst.IsConstant() {
		return
	}
	dw := dst.DW()
	dw.Add(dw, delta)
}

// accumulateScaled adds alpha * delta into the gradient of dst.
func accumulateScaled(dst *matrix.Mat, alpha float64, delta mat.Matrix) {
	if dst.IsConstant() {
		return
	}
	var scaled mat.Dense
	scaled.Scale(alpha, delta)
	dw := dst.DW()
	dw.Add(dw, &scaled)
}

// accumulateElem adds a ⊙ b into the gradient of dst.
func accumulateElem(dst *matrix.Mat, a, b mat.Matrix) {
	if dst.IsConstant() {
		return
	}
	var prod mat.Dense
	prod.MulElem(a, b)
	dw := dst.DW()
	dw.Add(dw, &prod)
}

// accumulateProduct adds a · b into the gradient of dst.
func accumulateProduct(dst *matrix.Mat, a, b mat.Matrix) {
	if dst.IsConstant() {
		return
	}
	var prod mat.Dense
	prod.Mul(a, b)
	dw := dst.DW()
	dw.Add(dw, &prod)
}

// accumulateConst adds c to every gradient element of dst.
func accumulateConst(dst *matrix.Mat, c float64) {
	if dst.IsConstant() {
		return
	}
	raw := dst.DW().RawMatrix()
	for i := range raw.Rows {
		floats.AddConst(c, raw.Data[i*raw.Stride:i*raw.Stride+raw.Cols])
	}
}

// rowSums returns the n x 1 column of row sums of m.
func rowSums(m mat.Matrix) *mat.Dense {
	r, _ := m.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := range r {
		out.Set(i, 0, floats.Sum(mat.Row(nil, i, m)))
	}
	return out
}

// colSums returns the 1 x d row of column sums of m.
func colSums(m mat.Matrix) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(1, c, nil)
	for j := range c {
		out.Set(0, j, floats.Sum(mat.Col(nil, j, m)))
	}
	return out
}

// mapElem returns fn(a(i, j), b(i, j)) for every element.
func mapElem(a, b mat.Matrix, fn func(x, y float64) float64) *mat.Dense {
	r, c := a.Dims()
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, _ float64) float64 {
		return fn(a.At(i, j), b.At(i, j))
	}, out)
	return out
}

// broadcastColumn expands an n x 1 column to n x cols.
func broadcastColumn(col mat.Matrix, cols int) *mat.Dense {
	r, _ := col.Dims()
	out := mat.NewDense(r, cols, nil)
	out.Apply(func(i, _ int, _ float64) float64 {
		return col.At(i, 0)
	}, out)
	return out
}
