package autodiff

import (
	"fmt"
	"math"

	"github.com/born-ml/tapegrad/internal/autodiff/ops"
	"github.com/born-ml/tapegrad/internal/matrix"
	"gonum.org/v1/gonum/mat"
)

// MaskedLoss is the result of a masked cross entropy evaluation.
type MaskedLoss struct {
	Total     float64   // Sum of PerColumn
	PerColumn []float64 // Loss of every logit column (0 outside its window)
}

// BinaryCrossEntropy returns the elementwise loss
// -[t·log(a) + (1-t)·log(1-a)] for a target probability t.
// The values of a are expected in [0, 1].
func (g *Graph) BinaryCrossEntropy(a *matrix.Mat, target float64) (*matrix.Mat, error) {
	if target < 0 || target > 1 {
		return nil, fmt.Errorf("binary cross entropy: %w: target %v outside [0, 1]", matrix.ErrNumericDomain, target)
	}
	if err := matrix.AssertBounds("binary cross entropy", a.W(), 0, 1+ops.Epsilon); err != nil {
		return nil, err
	}
	out := matrix.FromDense(g.backend.Apply(a.W(), func(x float64) float64 {
		return -(target*math.Log(x) + (1-target)*math.Log(1-x))
	}))
	if err := matrix.AssertNotNaN("binary cross entropy", out.W()); err != nil {
		return nil, err
	}
	g.Record(ops.NewBinaryCrossEntropyOp(a, target, out))
	return out, nil
}

// CrossEntropy returns -log(probs[answer] + ε) for a probability column.
func (g *Graph) CrossEntropy(probs *matrix.Mat, answer int) (*matrix.Mat, error) {
	if !probs.Shape().IsColumn() {
		return nil, matrix.Mismatch("cross entropy", "probability column (n, 1)", probs)
	}
	if err := checkIndex("cross entropy", answer, probs.Rows()); err != nil {
		return nil, err
	}
	if err := matrix.AssertBounds("cross entropy", probs.W(), 0, 1+ops.Epsilon); err != nil {
		return nil, err
	}
	out := scalar(-math.Log(probs.At(answer, 0) + ops.Epsilon))
	g.Record(ops.NewCrossEntropyOp(probs, answer, out))
	return out, nil
}

// SoftmaxCrossEntropy applies a column-wise softmax to logits and returns
// the summed cross entropy against one answer row per column (1x1).
func (g *Graph) SoftmaxCrossEntropy(logits *matrix.Mat, answers []int) (*matrix.Mat, error) {
	if len(answers) != logits.Cols() {
		return nil, fmt.Errorf("softmax cross entropy: %w: %d answers for %d columns", matrix.ErrDimensionMismatch, len(answers), logits.Cols())
	}
	for _, answer := range answers {
		if err := checkIndex("softmax cross entropy", answer, logits.Rows()); err != nil {
			return nil, err
		}
	}
	probs := g.backend.SoftmaxColumns(logits.W(), 1)
	var total float64
	for col, answer := range answers {
		total -= math.Log(probs.At(answer, col) + ops.Epsilon)
	}
	out := scalar(total)
	g.Record(ops.NewSoftmaxCrossEntropyOp(logits, probs, answers, out))
	return out, nil
}

// MaskedCrossEntropy evaluates a softmax cross entropy over a batch of
// variable-length sequences packed column-wise into logits.
//
// Column i contributes -log(p[targets[i], i] + ε) only when
// starts[i] <= pos < starts[i]+lengths[i]; otherwise its loss and gradient
// are zero. The gradient p - onehot of every active column is recorded with
// an implicit upstream gradient of 1, so no Grad call is needed.
func (g *Graph) MaskedCrossEntropy(logits *matrix.Mat, pos int, starts, lengths, targets []int) (MaskedLoss, error) {
	loss, probs, active, err := g.maskedCrossEntropy(logits, pos, starts, lengths, targets)
	if err != nil {
		return MaskedLoss{}, err
	}
	for _, on := range active {
		if on {
			g.Record(ops.NewMaskedCrossEntropyOp(logits, probs, targets, active))
			break
		}
	}
	return loss, nil
}

// MaskedCrossEntropyFromStart is MaskedCrossEntropy with one window start
// shared by every column.
func (g *Graph) MaskedCrossEntropyFromStart(logits *matrix.Mat, pos, start int, lengths, targets []int) (MaskedLoss, error) {
	return g.MaskedCrossEntropy(logits, pos, sharedStarts(start, len(lengths)), lengths, targets)
}

// MaskedCrossEntropyFromStartNoGrad is MaskedCrossEntropyFromStart without
// recording anything.
func (g *Graph) MaskedCrossEntropyFromStartNoGrad(logits *matrix.Mat, pos, start int, lengths, targets []int) (MaskedLoss, error) {
	return g.MaskedCrossEntropyNoGrad(logits, pos, sharedStarts(start, len(lengths)), lengths, targets)
}

func sharedStarts(start, n int) []int {
	starts := make([]int, n)
	for i := range starts {
		starts[i] = start
	}
	return starts
}

// MaskedCrossEntropyNoGrad is MaskedCrossEntropy without recording anything.
func (g *Graph) MaskedCrossEntropyNoGrad(logits *matrix.Mat, pos int, starts, lengths, targets []int) (MaskedLoss, error) {
	loss, _, _, err := g.maskedCrossEntropy(logits, pos, starts, lengths, targets)
	return loss, err
}

func (g *Graph) maskedCrossEntropy(logits *matrix.Mat, pos int, starts, lengths, targets []int) (MaskedLoss, *mat.Dense, []bool, error) {
	cols := logits.Cols()
	if len(starts) != cols || len(lengths) != cols || len(targets) != cols {
		return MaskedLoss{}, nil, nil, fmt.Errorf(
			"masked cross entropy: %w: %d columns with %d starts, %d lengths, %d targets",
			matrix.ErrDimensionMismatch, cols, len(starts), len(lengths), len(targets))
	}
	if err := matrix.AssertNotNaN("masked cross entropy", logits.W()); err != nil {
		return MaskedLoss{}, nil, nil, err
	}

	probs := g.backend.SoftmaxColumns(logits.W(), 1)
	loss := MaskedLoss{PerColumn: make([]float64, cols)}
	active := make([]bool, cols)
	for i := range cols {
		if pos < starts[i] || pos >= starts[i]+lengths[i] {
			continue
		}
		if err := checkIndex("masked cross entropy", targets[i], logits.Rows()); err != nil {
			return MaskedLoss{}, nil, nil, err
		}
		active[i] = true
		loss.PerColumn[i] = -math.Log(probs.At(targets[i], i) + ops.Epsilon)
		loss.Total += loss.PerColumn[i]
	}
	return loss, probs, active, nil
}

func checkIndex(op string, idx, n int) error {
	if idx < 0 || idx >= n {
		return fmt.Errorf("%s: %w: index %d outside [0, %d)", op, matrix.ErrInvalidShape, idx, n)
	}
	return nil
}
