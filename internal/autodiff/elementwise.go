package autodiff

import (
	"github.com/born-ml/tapegrad/internal/autodiff/ops"
	"github.com/born-ml/tapegrad/internal/matrix"
)

// Add returns a + b.
//
// When the column counts differ and one operand is a single column, the
// column is broadcast across the other operand (see AddBroadcast).
func (g *Graph) Add(a, b *matrix.Mat) (*matrix.Mat, error) {
	if a.Cols() != b.Cols() && (a.Cols() == 1 || b.Cols() == 1) {
		if a.Cols() == 1 {
			return g.AddBroadcast(b, a)
		}
		return g.AddBroadcast(a, b)
	}
	if err := sameShape("add", a, b); err != nil {
		return nil, err
	}
	out := matrix.FromDense(g.backend.Add(a.W(), b.W()))
	g.Record(ops.NewAddOp(out, a, b))
	return out, nil
}

// AddBroadcast returns a + col, adding the n x 1 column to every column of a.
func (g *Graph) AddBroadcast(a, col *matrix.Mat) (*matrix.Mat, error) {
	if err := columnOf("add broadcast", a, col); err != nil {
		return nil, err
	}
	out := matrix.FromDense(g.backend.AddColumn(a.W(), col.W(), 1))
	g.Record(ops.NewAddBroadcastOp(a, col, out))
	return out, nil
}

// AddMany returns the sum of one or more same-shaped matrices.
func (g *Graph) AddMany(ms ...*matrix.Mat) (*matrix.Mat, error) {
	if len(ms) == 0 {
		return nil, errNoOperands("add many")
	}
	for _, m := range ms[1:] {
		if err := sameShape("add many", ms[0], m); err != nil {
			return nil, err
		}
	}
	out := matrix.ZerosLike(ms[0])
	w := out.W()
	for _, m := range ms {
		w.Add(w, m.W())
	}
	g.Record(ops.NewAddOp(out, ms...))
	return out, nil
}

// AddScalar returns a + s.
func (g *Graph) AddScalar(a *matrix.Mat, s float64) *matrix.Mat {
	out := matrix.FromDense(g.backend.AddScalar(a.W(), s))
	g.Record(ops.NewAddScalarOp(a, s, out))
	return out
}

// Sub returns a - b.
//
// When the column counts differ and one operand is a single column, the
// column is broadcast: a - col (SubBroadcast) or col - b (SubBroadcastReversed).
func (g *Graph) Sub(a, b *matrix.Mat) (*matrix.Mat, error) {
	if a.Cols() != b.Cols() && (a.Cols() == 1 || b.Cols() == 1) {
		if a.Cols() == 1 {
			return g.SubBroadcastReversed(b, a)
		}
		return g.SubBroadcast(a, b)
	}
	if err := sameShape("sub", a, b); err != nil {
		return nil, err
	}
	out := matrix.FromDense(g.backend.Sub(a.W(), b.W()))
	g.Record(ops.NewSubOp(a, b, out))
	return out, nil
}

// SubBroadcast returns a - col, subtracting the n x 1 column from every column of a.
func (g *Graph) SubBroadcast(a, col *matrix.Mat) (*matrix.Mat, error) {
	if err := columnOf("sub broadcast", a, col); err != nil {
		return nil, err
	}
	out := matrix.FromDense(g.backend.AddColumn(a.W(), col.W(), -1))
	g.Record(ops.NewSubBroadcastOp(a, col, out))
	return out, nil
}

// SubBroadcastReversed returns col - a, subtracting every column of a from
// the n x 1 column.
func (g *Graph) SubBroadcastReversed(a, col *matrix.Mat) (*matrix.Mat, error) {
	if err := columnOf("sub broadcast reversed", a, col); err != nil {
		return nil, err
	}
	out := matrix.FromDense(g.backend.ColumnMinus(col.W(), a.W()))
	g.Record(ops.NewSubBroadcastReversedOp(a, col, out))
	return out, nil
}

// ScalarSub returns s - a.
func (g *Graph) ScalarSub(s float64, a *matrix.Mat) *matrix.Mat {
	out := matrix.FromDense(g.backend.AddScalar(g.backend.Scale(-1, a.W()), s))
	g.Record(ops.NewScalarSubOp(s, a, out))
	return out
}

// EltMul returns a ⊙ b.
//
// When the column counts differ and one operand is a single column, the
// column is broadcast across the other operand (see EltMulBroadcast).
func (g *Graph) EltMul(a, b *matrix.Mat) (*matrix.Mat, error) {
	if a.Cols() != b.Cols() && (a.Cols() == 1 || b.Cols() == 1) {
		if a.Cols() == 1 {
			return g.EltMulBroadcast(b, a)
		}
		return g.EltMulBroadcast(a, b)
	}
	if err := sameShape("eltmul", a, b); err != nil {
		return nil, err
	}
	out := matrix.FromDense(g.backend.MulElem(a.W(), b.W()))
	g.Record(ops.NewEltMulOp(a, b, out))
	return out, nil
}

// EltMulBroadcast returns a ⊙ col, scaling each row i of a by col(i, 0).
func (g *Graph) EltMulBroadcast(a, col *matrix.Mat) (*matrix.Mat, error) {
	if err := columnOf("eltmul broadcast", a, col); err != nil {
		return nil, err
	}
	out := matrix.FromDense(g.backend.MulColumn(a.W(), col.W()))
	g.Record(ops.NewEltMulBroadcastOp(a, col, out))
	return out, nil
}

// EltMulBroadcastRowwise returns a ⊙ row, scaling each column j of a by row(0, j).
func (g *Graph) EltMulBroadcastRowwise(a, row *matrix.Mat) (*matrix.Mat, error) {
	if row.Rows() != 1 || row.Cols() != a.Cols() {
		return nil, matrix.Mismatch("eltmul broadcast rowwise", "row of shape (1, a.cols)", a, row)
	}
	out := matrix.FromDense(g.backend.MulRow(a.W(), row.W()))
	g.Record(ops.NewEltMulBroadcastRowwiseOp(a, row, out))
	return out, nil
}

// EltMulRowwise returns a ⊙ bᵀ, where b has the transposed shape of a.
func (g *Graph) EltMulRowwise(a, b *matrix.Mat) (*matrix.Mat, error) {
	if a.Rows() != b.Cols() || a.Cols() != b.Rows() {
		return nil, matrix.Mismatch("eltmul rowwise", "b shaped as a transposed", a, b)
	}
	out := matrix.FromDense(g.backend.MulElem(a.W(), b.W().T()))
	g.Record(ops.NewEltMulRowwiseOp(a, b, out))
	return out, nil
}

// EltMulScalar returns alpha * a.
func (g *Graph) EltMulScalar(a *matrix.Mat, alpha float64) *matrix.Mat {
	out := matrix.FromDense(g.backend.Scale(alpha, a.W()))
	g.Record(ops.NewEltMulScalarOp(a, alpha, out))
	return out
}

// EltDivide returns a / b elementwise.
//
// When b is a single column and a is not, b is broadcast (see EltDivideBroadcast).
func (g *Graph) EltDivide(a, b *matrix.Mat) (*matrix.Mat, error) {
	if a.Cols() != b.Cols() && b.Cols() == 1 {
		return g.EltDivideBroadcast(a, b)
	}
	if err := sameShape("eltdivide", a, b); err != nil {
		return nil, err
	}
	out := matrix.FromDense(g.backend.DivElem(a.W(), b.W()))
	g.Record(ops.NewEltDivideOp(a, b, out))
	return out, nil
}

// EltDivideBroadcast returns a / col, dividing each row i of a by col(i, 0).
func (g *Graph) EltDivideBroadcast(a, col *matrix.Mat) (*matrix.Mat, error) {
	if err := columnOf("eltdivide broadcast", a, col); err != nil {
		return nil, err
	}
	out := matrix.FromDense(g.backend.DivColumn(a.W(), col.W()))
	g.Record(ops.NewEltDivideBroadcastOp(a, col, out))
	return out, nil
}

// EltDivideScalar returns a / s.
func (g *Graph) EltDivideScalar(a *matrix.Mat, s float64) *matrix.Mat {
	return g.EltMulScalar(a, 1/s)
}

func sameShape(op string, a, b *matrix.Mat) error {
	if a.Shape() != b.Shape() {
		return matrix.Mismatch(op, "equal shapes", a, b)
	}
	return nil
}

func columnOf(op string, a, col *matrix.Mat) error {
	if col.Cols() != 1 || col.Rows() != a.Rows() {
		return matrix.Mismatch(op, "column of shape (a.rows, 1)", a, col)
	}
	return nil
}
