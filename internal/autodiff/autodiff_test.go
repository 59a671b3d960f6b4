package autodiff_test

import (
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/autodiff/ops"
	"github.com/born-ml/tapegrad/internal/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func zeroGrad(m *matrix.Mat) bool {
	r, c := m.Dims()
	return mat.Equal(m.DW(), mat.NewDense(r, c, nil))
}

func TestShapeAlgebra(t *testing.T) {
	g := autodiff.New()
	a := uniform(t, 3, 4, -1, 1)
	b := uniform(t, 3, 2, -1, 1)
	c := uniform(t, 5, 4, -1, 1)

	h, err := g.HStack(a, b)
	require.NoError(t, err)
	assert.Equal(t, matrix.Shape{Rows: 3, Cols: 6}, h.Shape())

	v, err := g.VStack(a, c)
	require.NoError(t, err)
	assert.Equal(t, matrix.Shape{Rows: 8, Cols: 4}, v.Shape())

	p, err := g.RowsPluck(c, []int{0, 4, 4})
	require.NoError(t, err)
	assert.Equal(t, matrix.Shape{Rows: 4, Cols: 3}, p.Shape())

	rc, err := g.RowsColsPluck(c, []int{0, 1}, []int{3, 2})
	require.NoError(t, err)
	assert.Equal(t, matrix.Shape{Rows: 1, Cols: 2}, rc.Shape())

	before := g.Len()
	tests := []struct {
		name string
		fn   func() (*matrix.Mat, error)
	}{
		{"hstack rows", func() (*matrix.Mat, error) { return g.HStack(a, c) }},
		{"vstack cols", func() (*matrix.Mat, error) { return g.VStack(a, b) }},
		{"add", func() (*matrix.Mat, error) { return g.Add(a, c) }},
		{"add broadcast rows", func() (*matrix.Mat, error) { return g.Add(a, uniform(t, 2, 1, 0, 1)) }},
		{"sub", func() (*matrix.Mat, error) { return g.Sub(a, b) }},
		{"eltmul", func() (*matrix.Mat, error) { return g.EltMul(a, c) }},
		{"eltmul rowwise", func() (*matrix.Mat, error) { return g.EltMulRowwise(a, a) }},
		{"eltmul broadcast rowwise", func() (*matrix.Mat, error) { return g.EltMulBroadcastRowwise(a, uniform(t, 1, 3, 0, 1)) }},
		{"mul", func() (*matrix.Mat, error) { return g.Mul(a, b) }},
		{"mul with bias", func() (*matrix.Mat, error) { return g.MulWithBias(b, uniform(t, 2, 2, 0, 1), uniform(t, 2, 1, 0, 1)) }},
		{"mul add mul", func() (*matrix.Mat, error) {
			return g.MulAddMulWithBias(a, uniform(t, 4, 2, 0, 1), b, uniform(t, 2, 3, 0, 1), uniform(t, 3, 1, 0, 1))
		}},
		{"pow mat", func() (*matrix.Mat, error) { return g.PowMat(a, b) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.fn()
			require.Error(t, err)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)

			var dimErr *matrix.DimensionError
			require.True(t, errors.As(err, &dimErr))
			assert.NotEmpty(t, dimErr.Actual)
		})
	}
	assert.Equal(t, before, g.Len(), "failed operations must not record")
}

func TestDimensionError_NamesShapes(t *testing.T) {
	g := autodiff.New()
	_, err := g.Mul(uniform(t, 2, 3, 0, 1), uniform(t, 4, 5, 0, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mul")
	assert.Contains(t, err.Error(), "(2, 3) and (4, 5)")
}

func TestIndexErrors(t *testing.T) {
	g := autodiff.New()
	a := uniform(t, 3, 2, 0, 1)

	_, err := g.RowsPluck(a, []int{0, 3})
	assert.ErrorIs(t, err, matrix.ErrInvalidShape)
	_, err = g.RowPluck(a, -1)
	assert.ErrorIs(t, err, matrix.ErrInvalidShape)
	_, err = g.ColPluck(a, 2)
	assert.ErrorIs(t, err, matrix.ErrInvalidShape)
	_, err = g.RowsColsPluck(a, []int{0}, []int{0, 1})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = g.CrossEntropy(uniform(t, 3, 1, 0, 1), 3)
	assert.ErrorIs(t, err, matrix.ErrInvalidShape)
	_, err = g.CrossEntropy(a, 0)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = g.SoftmaxCrossEntropy(a, []int{0})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	assert.Zero(t, g.Len())
}

func TestDropout_NoOpBelowThreshold(t *testing.T) {
	g := autodiff.New()
	a := uniform(t, 3, 4, -1, 1)

	for _, fn := range []func(*matrix.Mat, float64) (*matrix.Mat, error){g.Dropout, g.DropoutNormalized} {
		out, err := fn(a, 1e-7)
		require.NoError(t, err)
		assert.Same(t, a, out)
		assert.True(t, mat.Equal(a.W(), out.W()))
	}
	assert.Zero(t, g.Len())
}

func TestDropout_InvalidProbability(t *testing.T) {
	g := autodiff.New()
	a := uniform(t, 2, 2, -1, 1)

	_, err := g.Dropout(a, 1.5)
	assert.ErrorIs(t, err, matrix.ErrNumericDomain)
	_, err = g.DropoutNormalized(a, -0.1)
	assert.ErrorIs(t, err, matrix.ErrNumericDomain)
}

func TestDropout_FrozenMask(t *testing.T) {
	tests := []struct {
		name string
		fn   func(g *autodiff.Graph, a *matrix.Mat) (*matrix.Mat, error)
		keep func(v float64) bool
	}{
		{
			name: "dropout",
			fn:   func(g *autodiff.Graph, a *matrix.Mat) (*matrix.Mat, error) { return g.Dropout(a, 0.5) },
			keep: func(v float64) bool { return v == 0 || v == 1 },
		},
		{
			name: "dropout normalized",
			fn:   func(g *autodiff.Graph, a *matrix.Mat) (*matrix.Mat, error) { return g.DropoutNormalized(a, 0.75) },
			keep: func(v float64) bool { return v == 0 || v == 4 },
		},
		{
			name: "fast dropout",
			fn:   func(g *autodiff.Graph, a *matrix.Mat) (*matrix.Mat, error) { return g.FastDropout(a), nil },
			keep: func(float64) bool { return true },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := autodiff.New()
			a := uniform(t, 6, 5, -1, 1)

			out, err := tt.fn(g, a)
			require.NoError(t, err)
			require.Equal(t, 1, g.Len())

			rec, ok := g.Ops()[0].(*ops.DropoutOp)
			require.True(t, ok)
			mask := mat.DenseCopyOf(rec.Mask())
			mask.Apply(func(i, j int, v float64) float64 {
				assert.True(t, tt.keep(v), "mask value %v at (%d, %d)", v, i, j)
				return v
			}, mask)

			var expected mat.Dense
			expected.MulElem(a.W(), mask)
			assert.True(t, mat.EqualApprox(&expected, out.W(), 1e-12))

			// Objective Σ out: the gradient must be the stored mask, on every replay.
			require.NoError(t, g.Grad(g.Sum(out)))
			g.Backward()
			assert.True(t, mat.EqualApprox(mask, a.DW(), 1e-12))
		})
	}
}

func TestConstant_ReceivesNoGradient(t *testing.T) {
	g := autodiff.New()
	w := uniform(t, 3, 3, -1, 1)
	x := uniform(t, 3, 2, -1, 1)
	x.MarkConstant()

	h, err := g.Mul(w, x)
	require.NoError(t, err)
	h2, err := g.Add(h, x)
	require.NoError(t, err)
	loss := g.Sum(g.Tanh(h2))
	require.NoError(t, g.Grad(loss))
	g.Backward()

	assert.True(t, zeroGrad(x))
	assert.False(t, zeroGrad(w))
}

func TestConsiderConstant(t *testing.T) {
	g := autodiff.New()
	w := uniform(t, 2, 2, -1, 1)

	frozen := g.ConsiderConstant(w)
	assert.True(t, frozen.IsConstant())
	assert.True(t, frozen.SharesWeights(w))
	assert.False(t, frozen.SharesGrads(w))

	before := g.Len()
	_ = g.Sigmoid(frozen)
	assert.Equal(t, before, g.Len(), "all-constant operands must not record")

	prod, err := g.EltMul(frozen, w)
	require.NoError(t, err)
	require.NoError(t, g.Grad(g.Sum(prod)))
	g.Backward()

	// d/dw Σ(c ⊙ w) = c, with c the frozen copy of w.
	assert.True(t, mat.EqualApprox(w.W(), w.DW(), 1e-12))
	assert.True(t, zeroGrad(frozen))
}

func TestNoBackprop_Nesting(t *testing.T) {
	g := autodiff.New()
	require.True(t, g.Enabled())

	outer := g.NoBackprop(true)
	assert.False(t, g.Enabled())

	inner := g.NoBackprop(false)
	assert.False(t, g.Enabled(), "false condition keeps the current state")

	innermost := g.NoBackprop(true)
	assert.False(t, g.Enabled())

	require.NoError(t, innermost.Release())
	assert.False(t, g.Enabled())
	require.NoError(t, inner.Release())
	assert.False(t, g.Enabled())
	require.NoError(t, outer.Release())
	assert.True(t, g.Enabled())
}

func TestNoBackprop_SuppressesRecording(t *testing.T) {
	g := autodiff.New()
	a := uniform(t, 2, 2, -1, 1)

	guard := g.NoBackprop(true)
	_ = g.Tanh(a)
	require.NoError(t, g.Grad(g.Sum(a)))
	require.NoError(t, guard.Release())

	assert.Zero(t, g.Len())
	assert.True(t, zeroGrad(a))

	_ = g.Tanh(a)
	assert.Equal(t, 1, g.Len())
}

func TestNoBackprop_OutOfOrderRelease(t *testing.T) {
	g := autodiff.New()
	outer := g.NoBackprop(true)
	inner := g.NoBackprop(true)

	err := outer.Release()
	assert.ErrorIs(t, err, matrix.ErrInvariantViolation)
	assert.False(t, g.Enabled(), "state untouched on a rejected release")

	require.NoError(t, inner.Release())
	require.NoError(t, outer.Release())
	assert.True(t, g.Enabled())

	assert.ErrorIs(t, outer.Release(), matrix.ErrInvariantViolation)
}

func TestWithoutBackprop_RestoresOnError(t *testing.T) {
	g := autodiff.New()
	errBoom := errors.New("boom")

	err := g.WithoutBackprop(func() error {
		assert.False(t, g.Enabled())
		return g.WithoutBackprop(func() error {
			assert.False(t, g.Enabled())
			return errBoom
		})
	})
	assert.ErrorIs(t, err, errBoom)
	assert.True(t, g.Enabled())

	g2 := autodiff.New(autodiff.WithBackprop(false))
	require.NoError(t, g2.WithoutBackprop(func() error { return nil }))
	assert.False(t, g2.Enabled(), "restores the prior disabled state")
}

func TestWithoutBackprop_RestoresOnPanic(t *testing.T) {
	g := autodiff.New()

	assert.Panics(t, func() {
		_ = g.WithoutBackprop(func() error {
			g.NoBackprop(true) // leaked by the panic
			panic("abort")
		})
	})
	assert.True(t, g.Enabled())

	// A fresh guard nests normally afterwards.
	guard := g.NoBackprop(true)
	require.NoError(t, guard.Release())
	assert.True(t, g.Enabled())
}

func TestWithoutBackprop_ReportsLeakedGuard(t *testing.T) {
	g := autodiff.New()
	err := g.WithoutBackprop(func() error {
		g.NoBackprop(true)
		return nil
	})
	assert.ErrorIs(t, err, matrix.ErrInvariantViolation)
	assert.True(t, g.Enabled())
}

func TestGrad_RequiresScalar(t *testing.T) {
	g := autodiff.New()
	err := g.Grad(uniform(t, 2, 1, 0, 1))
	assert.ErrorIs(t, err, matrix.ErrInvariantViolation)

	s := uniform(t, 1, 1, 0, 1)
	require.NoError(t, g.Grad(s))
	assert.Equal(t, 1.0, s.GradAt(0, 0))
}

func TestBackward_TwiceDoublesGradient(t *testing.T) {
	g := autodiff.New()
	a := uniform(t, 2, 3, -1, 1)
	require.NoError(t, g.Grad(g.Sum(a)))

	g.Backward()
	assert.InDelta(t, 1.0, a.GradAt(1, 2), 1e-12)
	g.Backward()
	assert.InDelta(t, 2.0, a.GradAt(1, 2), 1e-12, "the tape is not consumed by Backward")

	g.Clear()
	assert.Zero(t, g.Len())
	g.Backward()
	assert.InDelta(t, 2.0, a.GradAt(1, 2), 1e-12)
}

func TestOps_Inspectable(t *testing.T) {
	g := autodiff.New()
	w := uniform(t, 3, 4, -1, 1)
	x := uniform(t, 4, 2, -1, 1)
	b := uniform(t, 3, 1, -1, 1)

	h, err := g.MulWithBias(w, x, b)
	require.NoError(t, err)
	y := g.Relu(h)
	_, err = g.Add(y, b)
	require.NoError(t, err)

	kinds := make([]string, 0, g.Len())
	for _, op := range g.Ops() {
		kinds = append(kinds, op.Kind())
	}
	assert.Equal(t, []string{"mul_with_bias", "relu", "add_broadcast"}, kinds)

	rec := g.Ops()[0]
	require.Len(t, rec.Inputs(), 3)
	assert.True(t, rec.Inputs()[0].Equal(w))
	assert.True(t, rec.Output().Equal(h))
	assert.Equal(t, "<#Graph backprop=true, ops=3>", g.String())
}

func TestMaskedCrossEntropy_Window(t *testing.T) {
	g := autodiff.New()
	logits := fromSlice(t, 3, 2,
		0.2, -1.0,
		1.5, 0.3,
		-0.7, 2.0,
	)
	starts := []int{0, 1}
	lengths := []int{3, 2}
	targets := []int{1, 2}

	loss, err := g.MaskedCrossEntropy(logits, 0, starts, lengths, targets)
	require.NoError(t, err)

	// Column 0 is inside [0, 3): plain softmax cross entropy.
	col := mat.Col(nil, 0, logits.W())
	var z float64
	for _, v := range col {
		z += math.Exp(v)
	}
	p := make([]float64, len(col))
	for i, v := range col {
		p[i] = math.Exp(v) / z
	}
	assert.InDelta(t, -math.Log(p[1]+ops.Epsilon), loss.PerColumn[0], 1e-9)

	// Column 1 is outside [1, 3) at position 0.
	assert.Equal(t, 0.0, loss.PerColumn[1])
	assert.InDelta(t, loss.PerColumn[0], loss.Total, 1e-12)

	g.Backward()
	for i := range 3 {
		want := p[i]
		if i == 1 {
			want--
		}
		assert.InDelta(t, want, logits.GradAt(i, 0), 1e-9)
		assert.Equal(t, 0.0, logits.GradAt(i, 1), "masked column must receive no gradient")
	}
}

func TestMaskedCrossEntropy_MatchesFiniteDifference(t *testing.T) {
	logits := uniform(t, 4, 3, -1, 1)
	starts := []int{0, 2, 1}
	lengths := []int{2, 3, 1}
	targets := []int{3, 0, 2}
	const pos = 1

	g := autodiff.New()
	_, err := g.MaskedCrossEntropy(logits, pos, starts, lengths, targets)
	require.NoError(t, err)
	g.Backward()

	eval := func() float64 {
		loss, err := autodiff.New().MaskedCrossEntropyNoGrad(logits, pos, starts, lengths, targets)
		require.NoError(t, err)
		return loss.Total
	}
	for i := range 4 {
		for j := range 3 {
			orig := logits.At(i, j)
			logits.Set(i, j, orig+fdEpsilon)
			plus := eval()
			logits.Set(i, j, orig-fdEpsilon)
			minus := eval()
			logits.Set(i, j, orig)
			assert.InDelta(t, (plus-minus)/(2*fdEpsilon), logits.GradAt(i, j), fdTolerance)
		}
	}
	// Column 1 starts at 2, so position 1 is outside its window.
	for i := range 4 {
		assert.Equal(t, 0.0, logits.GradAt(i, 1))
	}
}

func TestMaskedCrossEntropyNoGrad_DoesNotRecord(t *testing.T) {
	g := autodiff.New()
	logits := uniform(t, 3, 2, -1, 1)

	loss, err := g.MaskedCrossEntropyNoGrad(logits, 0, []int{0, 0}, []int{1, 1}, []int{0, 2})
	require.NoError(t, err)
	assert.Greater(t, loss.Total, 0.0)
	assert.Zero(t, g.Len())

	_, err = g.MaskedCrossEntropyNoGrad(logits, 0, []int{0}, []int{1, 1}, []int{0, 2})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// softmaxColumn returns the softmax of column j of m.
func softmaxColumn(m *matrix.Mat, j int) []float64 {
	col := mat.Col(nil, j, m.W())
	var z float64
	for _, v := range col {
		z += math.Exp(v)
	}
	p := make([]float64, len(col))
	for i, v := range col {
		p[i] = math.Exp(v) / z
	}
	return p
}

func TestMaskedCrossEntropy_TargetsReusedAfterForward(t *testing.T) {
	g := autodiff.New()
	logits := fromSlice(t, 3, 1, 0.2, -0.4, 0.9)
	targets := []int{0}

	_, err := g.MaskedCrossEntropy(logits, 0, []int{0}, []int{1}, targets)
	require.NoError(t, err)

	// The caller refills its target buffer for the next position.
	targets[0] = 2
	g.Backward()

	p := softmaxColumn(logits, 0)
	assert.InDelta(t, p[0]-1, logits.GradAt(0, 0), 1e-9)
	assert.InDelta(t, p[1], logits.GradAt(1, 0), 1e-9)
	assert.InDelta(t, p[2], logits.GradAt(2, 0), 1e-9)
}

func TestSoftmaxCrossEntropy_AnswersReusedAfterForward(t *testing.T) {
	g := autodiff.New()
	logits := fromSlice(t, 3, 1, 0.2, -0.4, 0.9)
	answers := []int{0}

	loss, err := g.SoftmaxCrossEntropy(logits, answers)
	require.NoError(t, err)
	require.NoError(t, g.Grad(loss))

	answers[0] = 2
	g.Backward()

	p := softmaxColumn(logits, 0)
	assert.InDelta(t, p[0]-1, logits.GradAt(0, 0), 1e-9)
	assert.InDelta(t, p[2], logits.GradAt(2, 0), 1e-9)
}

func TestMaskedCrossEntropyFromStart(t *testing.T) {
	logits := uniform(t, 3, 3, -1, 1)
	lengths := []int{1, 2, 3}
	targets := []int{2, 0, 1}

	g := autodiff.New()
	shared, err := g.MaskedCrossEntropyFromStart(logits, 2, 1, lengths, targets)
	require.NoError(t, err)
	explicit, err := g.MaskedCrossEntropyNoGrad(logits, 2, []int{1, 1, 1}, lengths, targets)
	require.NoError(t, err)

	assert.Equal(t, explicit, shared)
	// Window [1, 2) excludes position 2; the other two include it.
	assert.Equal(t, 0.0, shared.PerColumn[0])
	assert.Greater(t, shared.PerColumn[1], 0.0)
	assert.Equal(t, 1, g.Len())

	noGrad, err := g.MaskedCrossEntropyFromStartNoGrad(logits, 2, 1, lengths, targets)
	require.NoError(t, err)
	assert.Equal(t, explicit, noGrad)
	assert.Equal(t, 1, g.Len())

	_, err = g.MaskedCrossEntropyFromStart(logits, 0, 0, lengths[:2], targets)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestInPlace_KeepsConstantFlag(t *testing.T) {
	g := autodiff.New()

	frozen := uniform(t, 2, 2, -1, 1)
	frozen.MarkConstant()
	live := uniform(t, 2, 2, -1, 1)
	require.NoError(t, g.AddInPlace(frozen, live))
	assert.True(t, frozen.IsConstant())

	other := uniform(t, 2, 2, -1, 1)
	other.MarkConstant()
	require.NoError(t, g.MulInPlace(live, other))
	assert.False(t, live.IsConstant())
}

func TestAliasing_HogwildCopy(t *testing.T) {
	a, err := matrix.New(3, 4, matrix.Uniform(-1, 1))
	require.NoError(t, err)
	b := a.Copy(true, false)

	b.Set(2, 3, 42)
	assert.Equal(t, 42.0, a.At(2, 3))

	g := autodiff.New()
	y := g.Square(b)
	require.NoError(t, g.Grad(g.Sum(y)))
	g.Backward()

	assert.False(t, zeroGrad(b))
	assert.True(t, zeroGrad(a))
	assert.InDelta(t, 84.0, b.GradAt(2, 3), 1e-12)
}

func TestInPlace_KeepsPreviousOwners(t *testing.T) {
	g := autodiff.New()
	w := uniform(t, 2, 2, -1, 1)
	acc := w.ShallowCopy()
	other := uniform(t, 2, 2, -1, 1)

	require.NoError(t, g.SubInPlace(acc, other))
	assert.False(t, acc.SharesWeights(w))

	require.NoError(t, g.DivInPlace(acc, fromSlice(t, 2, 1, 2, 4)))
	require.NoError(t, g.Grad(g.Sum(acc)))
	g.Backward()

	// d/dw Σ((w - o) / b) = 1/b, broadcast along rows.
	assert.InDelta(t, 0.5, w.GradAt(0, 1), 1e-12)
	assert.InDelta(t, 0.25, w.GradAt(1, 0), 1e-12)
	assert.InDelta(t, -0.25, other.GradAt(1, 1), 1e-12)
}

func TestWithLogger(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	g := autodiff.New(autodiff.WithLogger(logger))

	_ = g.Tanh(uniform(t, 2, 2, -1, 1))
	g.Backward()
	g.Clear()

	assert.Contains(t, buf.String(), "msg=backward ops=1")
	assert.Contains(t, buf.String(), "msg=clear ops=1")
}
