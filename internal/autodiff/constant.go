package autodiff

import "github.com/born-ml/tapegrad/internal/matrix"

// ConsiderConstant returns a handle that shares the weights of m but has a
// private gradient and is marked constant. Operations consuming it never
// propagate gradient back into m.
func (g *Graph) ConsiderConstant(m *matrix.Mat) *matrix.Mat {
	out := m.Copy(true, false)
	out.MarkConstant()
	return out
}

// AddInPlace replaces dst with dst + other. The previous owners of dst keep
// receiving gradient through the recorded operation.
//
// Only the owners of dst are replaced: its name and constant flag stay as
// they were, whatever the flag of other. The same holds for SubInPlace,
// MulInPlace and DivInPlace.
func (g *Graph) AddInPlace(dst, other *matrix.Mat) error {
	return g.inPlace(dst, other, g.Add)
}

// SubInPlace replaces dst with dst - other.
func (g *Graph) SubInPlace(dst, other *matrix.Mat) error {
	return g.inPlace(dst, other, g.Sub)
}

// MulInPlace replaces dst with dst ⊙ other.
func (g *Graph) MulInPlace(dst, other *matrix.Mat) error {
	return g.inPlace(dst, other, g.EltMul)
}

// DivInPlace replaces dst with dst / other.
func (g *Graph) DivInPlace(dst, other *matrix.Mat) error {
	return g.inPlace(dst, other, g.EltDivide)
}

// inPlace runs fn on a snapshot of dst and repoints dst at the result's
// owners. Handle metadata (name, constant flag) is kept.
func (g *Graph) inPlace(dst, other *matrix.Mat, fn func(a, b *matrix.Mat) (*matrix.Mat, error)) error {
	out, err := fn(dst.ShallowCopy(), other)
	if err != nil {
		return err
	}
	dst.Assign(out)
	return nil
}
