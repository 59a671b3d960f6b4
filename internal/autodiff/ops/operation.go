// Package ops defines the backward records stored on the autodiff tape.
//
// Each record is one variant per operation kind. It keeps the operand and
// output handles plus whatever extra data the gradient needs (masks,
// indices, scalars), and its Backward method adds each operand's
// contribution into that operand's gradient buffer:
//   - AddOp: dA += dOut, dB += dOut
//   - EltMulOp: dA += B ⊙ dOut, dB += A ⊙ dOut
//   - MulOp: dA += dOut · Bᵀ, dB += Aᵀ · dOut
//   - SigmoidOp: dX += out ⊙ (1 - out) ⊙ dOut
//
// Backward never overwrites a gradient buffer and never writes into a
// constant handle.
package ops

import "github.com/born-ml/tapegrad/internal/matrix"

// Operation represents one recorded differentiable operation.
type Operation interface {
	// Backward adds the gradient contribution of this operation into the
	// gradient buffers of its (non-constant) inputs, reading the output's
	// already-populated gradient.
	Backward()

	// Kind returns the operation name (e.g., "add", "mul_with_bias").
	Kind() string

	// Inputs returns the operand handles in call order.
	Inputs() []*matrix.Mat

	// Output returns the handle produced by the forward pass.
	// Operations that return a plain scalar (masked cross entropy) return nil.
	Output() *matrix.Mat
}

// base carries the fields shared by every record.
type base struct {
	kind   string
	inputs []*matrix.Mat
	output *matrix.Mat
}

// newBase snapshots the handles so that later in-place reassignment of a
// caller's handle cannot redirect this record to different buffers.
func newBase(kind string, output *matrix.Mat, inputs ...*matrix.Mat) base {
	snap := make([]*matrix.Mat, len(inputs))
	for i, in := range inputs {
		snap[i] = in.ShallowCopy()
	}
	if output != nil {
		output = output.ShallowCopy()
	}
	return base{kind: kind, inputs: snap, output: output}
}

// Kind returns the operation name.
func (b *base) Kind() string {
	return b.kind
}

// Inputs returns the operand handles.
func (b *base) Inputs() []*matrix.Mat {
	return b.inputs
}

// Output returns the produced handle.
func (b *base) Output() *matrix.Mat {
	return b.output
}
