package autodiff

import (
	"fmt"
	"slices"

	"github.com/born-ml/tapegrad/internal/matrix"
)

// Guard is a scoped override of the graph's recording state.
// Guards nest and must be released innermost first.
type Guard struct {
	graph    *Graph
	previous bool
	released bool
}

// NoBackprop disables recording when cond is true and returns a guard that
// restores the previous state on Release. When cond is false the guard still
// nests but leaves the state unchanged.
//
//	guard := g.NoBackprop(true)
//	defer guard.Release()
func (g *Graph) NoBackprop(cond bool) *Guard {
	guard := &Guard{graph: g, previous: g.enabled}
	if cond {
		g.enabled = false
	}
	g.guards = append(g.guards, guard)
	return guard
}

// Release restores the recording state saved when the guard was created.
//
// Returns ErrInvariantViolation if the guard was already released or is not
// the innermost open guard; the state is left untouched in that case.
func (gd *Guard) Release() error {
	g := gd.graph
	if gd.released {
		return fmt.Errorf("no backprop guard: %w: released twice", matrix.ErrInvariantViolation)
	}
	if n := len(g.guards); n == 0 || g.guards[n-1] != gd {
		return fmt.Errorf("no backprop guard: %w: released out of nesting order (%d open)", matrix.ErrInvariantViolation, n)
	}
	g.guards = g.guards[:len(g.guards)-1]
	g.enabled = gd.previous
	gd.released = true
	return nil
}

// WithoutBackprop runs fn with recording disabled and restores the previous
// state afterwards, including when fn returns an error or panics.
//
// Guards opened inside fn and never released are closed as well; that case
// is reported as ErrInvariantViolation unless fn already failed.
func (g *Graph) WithoutBackprop(fn func() error) (err error) {
	guard := g.NoBackprop(true)
	defer func() {
		if rerr := g.unwind(guard); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn()
}

// unwind closes every guard opened after gd, then gd itself.
func (g *Graph) unwind(gd *Guard) error {
	if !slices.Contains(g.guards, gd) {
		return gd.Release()
	}
	var leaked int
	for n := len(g.guards); n > 0 && g.guards[n-1] != gd; n = len(g.guards) {
		g.guards[n-1].released = true
		g.guards = g.guards[:n-1]
		leaked++
	}
	if err := gd.Release(); err != nil {
		return err
	}
	if leaked > 0 {
		return fmt.Errorf("no backprop guard: %w: %d nested guards left open", matrix.ErrInvariantViolation, leaked)
	}
	return nil
}
