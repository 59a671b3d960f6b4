package cpu

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sigmoid computes 1 / (1 + exp(-x)).
func Sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	// Same value, without overflowing exp for large negative x.
	e := math.Exp(x)
	return e / (1 + e)
}

// SteepSigmoid returns σ(aggressiveness * x).
func SteepSigmoid(aggressiveness float64) func(float64) float64 {
	return func(x float64) float64 {
		return Sigmoid(aggressiveness * x)
	}
}

// Relu returns max(0, x).
func Relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// SoftmaxColumns normalizes every column of a: out(:, j) = softmax(a(:, j) / temperature).
// The column maximum is subtracted before exponentiating.
func (cpu *CPUBackend) SoftmaxColumns(a mat.Matrix, temperature float64) *mat.Dense {
	r, c := a.Dims()
	out := mat.NewDense(r, c, nil)
	col := make([]float64, r)
	for j := range c {
		mat.Col(col, j, a)
		colMax := math.Inf(-1)
		for _, v := range col {
			colMax = math.Max(colMax, v)
		}
		var total float64
		for i, v := range col {
			col[i] = math.Exp((v - colMax) / temperature)
			total += col[i]
		}
		for i, v := range col {
			out.Set(i, j, v/total)
		}
	}
	return out
}
