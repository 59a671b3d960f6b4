package autodiff

import (
	"fmt"

	"github.com/born-ml/tapegrad/internal/autodiff/ops"
	"github.com/born-ml/tapegrad/internal/matrix"
	"gonum.org/v1/gonum/mat"
)

// Mul returns the matrix product a · b.
func (g *Graph) Mul(a, b *matrix.Mat) (*matrix.Mat, error) {
	if a.Cols() != b.Rows() {
		return nil, matrix.Mismatch("mul", "a.cols == b.rows", a, b)
	}
	out := matrix.FromDense(g.backend.MatMul(a.W(), b.W()))
	g.Record(ops.NewMulOp(a, b, out))
	return out, nil
}

// MulWithBias returns a · x + bias, with bias an n x 1 column added to every
// output column.
func (g *Graph) MulWithBias(a, x, bias *matrix.Mat) (*matrix.Mat, error) {
	if a.Cols() != x.Rows() {
		return nil, matrix.Mismatch("mul with bias", "a.cols == x.rows", a, x)
	}
	if err := columnOf("mul with bias", a, bias); err != nil {
		return nil, err
	}
	prod := g.backend.MatMul(a.W(), x.W())
	out := matrix.FromDense(g.backend.AddColumn(prod, bias.W(), 1))
	g.Record(ops.NewMulAddMulWithBiasOp("mul_with_bias", out, a, x, bias))
	return out, nil
}

// MulAddMulWithBias returns m1 · x1 + m2 · x2 + bias in one fused operation.
//
// When exactly one of x1, x2 is a single column while the other is not, the
// single-column product is broadcast (see MulAddBroadcastMulWithBias).
func (g *Graph) MulAddMulWithBias(m1, x1, m2, x2, bias *matrix.Mat) (*matrix.Mat, error) {
	if x1.Cols() != x2.Cols() {
		switch {
		case x1.Cols() == 1:
			return g.MulAddBroadcastMulWithBias(m1, x1, m2, x2, bias)
		case x2.Cols() == 1:
			return g.MulAddBroadcastMulWithBias(m2, x2, m1, x1, bias)
		default:
			return nil, matrix.Mismatch("mul add mul with bias", "x1.cols == x2.cols", x1, x2)
		}
	}
	return g.MulAddMulWithBiasMany(m1, x1, m2, x2, bias)
}

// MulAddMulWithBiasMany returns Σ ms[2k] · ms[2k+1] + bias, where bias is the
// last argument. It takes at least one pair.
func (g *Graph) MulAddMulWithBiasMany(ms ...*matrix.Mat) (*matrix.Mat, error) {
	const op = "mul add mul with bias"
	if len(ms) < 3 || len(ms)%2 == 0 {
		return nil, fmt.Errorf("%s: %w: need matrix/input pairs plus a bias, got %d operands", op, matrix.ErrDimensionMismatch, len(ms))
	}
	bias := ms[len(ms)-1]
	rows, cols := ms[0].Rows(), ms[1].Cols()
	pairs := make([]mat.Matrix, 0, len(ms)-1)
	for k := 0; k+1 < len(ms); k += 2 {
		m, x := ms[k], ms[k+1]
		if m.Cols() != x.Rows() {
			return nil, matrix.Mismatch(op, "m.cols == x.rows", m, x)
		}
		if m.Rows() != rows || x.Cols() != cols {
			return nil, matrix.Mismatch(op, "products of equal shape", ms[0], ms[1], m, x)
		}
		pairs = append(pairs, m.W(), x.W())
	}
	if bias.Cols() != 1 || bias.Rows() != rows {
		return nil, matrix.Mismatch(op, "bias column of shape (m.rows, 1)", ms[0], bias)
	}
	out := matrix.FromDense(g.backend.AddColumn(g.backend.MulAddMul(pairs...), bias.W(), 1))
	kind := "mul_add_mul_with_bias"
	if len(ms) == 3 {
		kind = "mul_with_bias"
	}
	g.Record(ops.NewMulAddMulWithBiasOp(kind, out, ms...))
	return out, nil
}

// MulAddBroadcastMulWithBias returns m1 · x1 + m2 · x2 + bias where x1 and
// bias are single columns broadcast across the columns of m2 · x2.
func (g *Graph) MulAddBroadcastMulWithBias(m1, x1, m2, x2, bias *matrix.Mat) (*matrix.Mat, error) {
	const op = "mul add broadcast mul with bias"
	if m1.Cols() != x1.Rows() {
		return nil, matrix.Mismatch(op, "m1.cols == x1.rows", m1, x1)
	}
	if m2.Cols() != x2.Rows() {
		return nil, matrix.Mismatch(op, "m2.cols == x2.rows", m2, x2)
	}
	if x1.Cols() != 1 || bias.Cols() != 1 || m1.Rows() != bias.Rows() || m2.Rows() != bias.Rows() {
		return nil, matrix.Mismatch(op, "x1 and bias columns, m1.rows == m2.rows == bias.rows", m1, x1, m2, bias)
	}
	col := g.backend.Add(g.backend.MatMul(m1.W(), x1.W()), bias.W())
	out := matrix.FromDense(g.backend.AddColumn(g.backend.MatMul(m2.W(), x2.W()), col, 1))
	g.Record(ops.NewMulAddBroadcastMulWithBiasOp(m1, x1, m2, x2, bias, out))
	return out, nil
}
