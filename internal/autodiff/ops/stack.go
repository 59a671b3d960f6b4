package ops

import (
	"github.com/born-ml/tapegrad/internal/matrix"
)

// HStackOp represents output = [A₁ A₂ ... Aₖ] (column concatenation).
//
// Backward: each input receives its column block of dOut.
type HStackOp struct {
	base
}

// NewHStackOp creates a new HStackOp.
func NewHStackOp(output *matrix.Mat, inputs ...*matrix.Mat) *HStackOp {
	return &HStackOp{base: newBase("hstack", output, inputs...)}
}

// Backward slices dOut back into the operand blocks.
func (op *HStackOp) Backward() {
	g := op.output.DW()
	rows, _ := g.Dims()
	offset := 0
	for _, in := range op.inputs {
		cols := in.Cols()
		accumulate(in, g.Slice(0, rows, offset, offset+cols))
		offset += cols
	}
}

// VStackOp represents output = [A₁; A₂; ...; Aₖ] (row concatenation).
//
// Backward: each input receives its row block of dOut.
type VStackOp struct {
	base
}

// NewVStackOp creates a new VStackOp.
func NewVStackOp(output *matrix.Mat, inputs ...*matrix.Mat) *VStackOp {
	return &VStackOp{base: newBase("vstack", output, inputs...)}
}

// Backward slices dOut back into the operand blocks.
func (op *VStackOp) Backward() {
	g := op.output.DW()
	_, cols := g.Dims()
	offset := 0
	for _, in := range op.inputs {
		rows := in.Rows()
		accumulate(in, g.Slice(offset, offset+rows, 0, cols))
		offset += rows
	}
}
