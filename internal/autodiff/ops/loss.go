package ops

import (
	"slices"

	"github.com/born-ml/tapegrad/internal/matrix"
	"gonum.org/v1/gonum/mat"
)

// Epsilon is added inside log-domain losses to avoid log(0).
const Epsilon = 1e-9

// BinaryCrossEntropyOp represents elementwise
// output = -[t·log(x) + (1-t)·log(1-x)].
//
// Backward: dA += (t - x) / (x·(x - 1)) ⊙ dOut.
type BinaryCrossEntropyOp struct {
	base
	target float64
}

// NewBinaryCrossEntropyOp creates a new BinaryCrossEntropyOp.
func NewBinaryCrossEntropyOp(a *matrix.Mat, target float64, output *matrix.Mat) *BinaryCrossEntropyOp {
	return &BinaryCrossEntropyOp{base: newBase("binary_cross_entropy", output, a), target: target}
}

// Target returns the target probability.
func (op *BinaryCrossEntropyOp) Target() float64 {
	return op.target
}

// Backward computes the input gradient for binary cross entropy.
func (op *BinaryCrossEntropyOp) Backward() {
	t := op.target
	accumulate(op.inputs[0], mapElem(op.output.DW(), op.inputs[0].W(), func(g, x float64) float64 {
		return (t - x) / (x * (x - 1)) * g
	}))
}

// CrossEntropyOp represents output = -log(p[answer, 0] + ε) (1 x 1).
//
// Backward touches a single element: dP[answer, 0] += -1/(p + ε) * dOut.
type CrossEntropyOp struct {
	base
	answer int
}

// NewCrossEntropyOp creates a new CrossEntropyOp.
func NewCrossEntropyOp(probs *matrix.Mat, answer int, output *matrix.Mat) *CrossEntropyOp {
	return &CrossEntropyOp{base: newBase("cross_entropy", output, probs), answer: answer}
}

// Answer returns the target row.
func (op *CrossEntropyOp) Answer() int {
	return op.answer
}

// Backward adds the sparse gradient at the answer row.
func (op *CrossEntropyOp) Backward() {
	probs := op.inputs[0]
	if probs.IsConstant() {
		return
	}
	dw := probs.DW()
	p := probs.At(op.answer, 0)
	dw.Set(op.answer, 0, dw.At(op.answer, 0)-op.output.GradAt(0, 0)/(p+Epsilon))
}

// SoftmaxCrossEntropyOp represents the fused column-wise softmax followed
// by cross entropy against one answer row per column, summed to 1 x 1.
//
// Backward: dLogits += (p - onehot) * dOut.
type SoftmaxCrossEntropyOp struct {
	base
	probs   *mat.Dense
	answers []int
}

// NewSoftmaxCrossEntropyOp creates a new SoftmaxCrossEntropyOp.
// probs holds the softmax computed during the forward pass.
func NewSoftmaxCrossEntropyOp(logits *matrix.Mat, probs *mat.Dense, answers []int, output *matrix.Mat) *SoftmaxCrossEntropyOp {
	return &SoftmaxCrossEntropyOp{
		base:    newBase("softmax_cross_entropy", output, logits),
		probs:   probs,
		answers: slices.Clone(answers),
	}
}

// Probs returns the softmax probabilities computed forward.
func (op *SoftmaxCrossEntropyOp) Probs() mat.Matrix {
	return op.probs
}

// Backward adds (p - onehot) scaled by the scalar upstream gradient.
func (op *SoftmaxCrossEntropyOp) Backward() {
	logits := op.inputs[0]
	if logits.IsConstant() {
		return
	}
	delta := mat.DenseCopyOf(op.probs)
	for col, answer := range op.answers {
		delta.Set(answer, col, delta.At(answer, col)-1)
	}
	accumulateScaled(logits, op.output.GradAt(0, 0), delta)
}

// MaskedCrossEntropyOp records the gradient of a masked softmax cross
// entropy over a batch of logit columns. Only columns whose window
// [start, start+length) contains the evaluated position contribute.
//
// The loss is returned to the caller as plain numbers rather than a handle,
// so the upstream gradient is implicitly 1 and Output returns nil.
//
// Backward: dLogits[:, i] += p[:, i] - onehot(target_i) for active columns.
type MaskedCrossEntropyOp struct {
	base
	probs   *mat.Dense
	targets []int
	active  []bool
}

// NewMaskedCrossEntropyOp creates a new MaskedCrossEntropyOp.
func NewMaskedCrossEntropyOp(logits *matrix.Mat, probs *mat.Dense, targets []int, active []bool) *MaskedCrossEntropyOp {
	return &MaskedCrossEntropyOp{
		base:    newBase("masked_cross_entropy", nil, logits),
		probs:   probs,
		targets: slices.Clone(targets),
		active:  active,
	}
}

// Active reports which columns fall inside their window.
func (op *MaskedCrossEntropyOp) Active() []bool {
	return op.active
}

// Backward adds p - onehot into each active column of the logits gradient.
func (op *MaskedCrossEntropyOp) Backward() {
	logits := op.inputs[0]
	if logits.IsConstant() {
		return
	}
	dw := logits.DW()
	rows, _ := dw.Dims()
	for col, on := range op.active {
		if !on {
			continue
		}
		for i := range rows {
			dw.Set(i, col, dw.At(i, col)+op.probs.At(i, col))
		}
		t := op.targets[col]
		dw.Set(t, col, dw.At(t, col)-1)
	}
}
