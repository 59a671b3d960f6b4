package cpu

import (
	"math"
	"testing"

	"github.com/born-ml/tapegrad/internal/parallel"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestBroadcastKernels(t *testing.T) {
	backend := NewWithConfig(parallel.Sequential())
	a := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})
	col := mat.NewDense(2, 1, []float64{10, 2})
	row := mat.NewDense(1, 3, []float64{1, 0, -1})

	tests := []struct {
		name string
		got  *mat.Dense
		want []float64
	}{
		{"add column", backend.AddColumn(a, col, 1), []float64{11, 12, 13, 6, 7, 8}},
		{"sub column", backend.AddColumn(a, col, -1), []float64{-9, -8, -7, 2, 3, 4}},
		{"column minus", backend.ColumnMinus(col, a), []float64{9, 8, 7, -2, -3, -4}},
		{"mul column", backend.MulColumn(a, col), []float64{10, 20, 30, 8, 10, 12}},
		{"div column", backend.DivColumn(a, col), []float64{0.1, 0.2, 0.3, 2, 2.5, 3}},
		{"mul row", backend.MulRow(a, row), []float64{1, 0, -3, 4, 0, -6}},
		{"add scalar", backend.AddScalar(a, 1), []float64{2, 3, 4, 5, 6, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, mat.EqualApprox(mat.NewDense(2, 3, tt.want), tt.got, 1e-12), "got %v", mat.Formatted(tt.got))
		})
	}
}

func TestReductions(t *testing.T) {
	backend := New()
	a := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})

	assert.Equal(t, 21.0, backend.Sum(a))
}

func TestApply_LargeMatrixParallel(t *testing.T) {
	backend := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 2})
	a := mat.NewDense(64, 64, nil)
	a.Apply(func(i, j int, _ float64) float64 { return float64(i - j) }, a)

	out := backend.Apply(a, Relu)
	for i := range 64 {
		for j := range 64 {
			assert.Equal(t, math.Max(0, float64(i-j)), out.At(i, j))
		}
	}
}

func TestSigmoid_Stable(t *testing.T) {
	assert.InDelta(t, 0.5, Sigmoid(0), 1e-12)
	assert.InDelta(t, 1.0, Sigmoid(800), 1e-12)
	assert.InDelta(t, 0.0, Sigmoid(-800), 1e-12)
	assert.False(t, math.IsNaN(Sigmoid(-800)))
	assert.InDelta(t, Sigmoid(2), SteepSigmoid(2)(1), 1e-12)
}

func TestSoftmaxColumns(t *testing.T) {
	backend := New()
	a := mat.NewDense(3, 2, []float64{
		1, 1000,
		2, 1000,
		3, 1000,
	})

	out := backend.SoftmaxColumns(a, 1)
	for j := range 2 {
		assert.InDelta(t, 1.0, mat.Sum(out.ColView(j)), 1e-12)
	}
	assert.InDelta(t, 1.0/3, out.At(0, 1), 1e-12)
	assert.Greater(t, out.At(2, 0), out.At(1, 0))
}

func TestStacking(t *testing.T) {
	backend := New()
	a := mat.NewDense(2, 1, []float64{1, 2})
	b := mat.NewDense(2, 2, []float64{3, 4, 5, 6})

	h := backend.HStack(a, b)
	assert.True(t, mat.Equal(mat.NewDense(2, 3, []float64{1, 3, 4, 2, 5, 6}), h))

	v := backend.VStack(b, mat.NewDense(1, 2, []float64{7, 8}))
	assert.True(t, mat.Equal(mat.NewDense(3, 2, []float64{3, 4, 5, 6, 7, 8}), v))
}

func TestPluck(t *testing.T) {
	backend := New()
	a := mat.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})

	rows := backend.PluckRows(a, []int{2, 0, 2})
	assert.True(t, mat.Equal(mat.NewDense(2, 3, []float64{5, 1, 5, 6, 2, 6}), rows))

	pairs := backend.PluckPairs(a, []int{0, 2}, []int{1, 0})
	assert.True(t, mat.Equal(mat.NewDense(1, 2, []float64{2, 5}), pairs))

	col := backend.PluckCol(a, 1)
	assert.True(t, mat.Equal(mat.NewDense(3, 1, []float64{2, 4, 6}), col))
}

func TestMulAddMul(t *testing.T) {
	backend := New()
	a := mat.NewDense(1, 2, []float64{1, 2})
	x := mat.NewDense(2, 1, []float64{3, 4})
	b := mat.NewDense(1, 1, []float64{2})
	y := mat.NewDense(1, 1, []float64{5})

	out := backend.MulAddMul(a, x, b, y)
	assert.Equal(t, 21.0, out.At(0, 0))
}
