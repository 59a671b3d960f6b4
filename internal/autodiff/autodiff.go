// Package autodiff implements reverse-mode automatic differentiation over
// dense matrices.
//
// A Graph is the tape: every differentiable operation called on it computes
// its forward value eagerly and, while backprop is enabled, appends one
// backward record (see package ops). Backward replays the records
// most-recent-first, accumulating into the gradient buffers of the operands.
//
// Usage:
//
//	g := autodiff.New()
//	h, _ := g.MulWithBias(w, x, b)
//	loss, _ := g.SoftmaxCrossEntropy(h, answers)
//	_ = g.Grad(loss)
//	g.Backward()
//	// w.DW(), b.DW() now hold dloss/dw, dloss/db
//	g.Clear()
//
// A Graph is not safe for concurrent use. Hogwild-style training gives each
// worker its own Graph and its own gradient-private copies of the parameters.
package autodiff

import (
	"fmt"
	"log/slog"

	"github.com/born-ml/tapegrad/internal/autodiff/ops"
	"github.com/born-ml/tapegrad/internal/backend/cpu"
	"github.com/born-ml/tapegrad/internal/matrix"
)

// Graph records differentiable operations and replays their backward passes.
type Graph struct {
	operations []ops.Operation // Recorded operations (in execution order)
	enabled    bool            // Whether new operations are recorded
	guards     []*Guard        // Open no-backprop scopes, innermost last
	backend    *cpu.CPUBackend // Forward kernels
	logger     *slog.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithBackend sets the CPU backend used for forward kernels.
func WithBackend(backend *cpu.CPUBackend) Option {
	return func(g *Graph) {
		g.backend = backend
	}
}

// WithLogger sets the logger used for debug tracing of backward passes.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		g.logger = logger
	}
}

// WithBackprop sets the initial recording state (enabled by default).
func WithBackprop(enabled bool) Option {
	return func(g *Graph) {
		g.enabled = enabled
	}
}

// New creates a new Graph with backprop enabled.
func New(opts ...Option) *Graph {
	g := &Graph{
		operations: make([]ops.Operation, 0, 64),
		enabled:    true,
		backend:    cpu.New(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Backend returns the forward kernel backend.
func (g *Graph) Backend() *cpu.CPUBackend {
	return g.backend
}

// Enabled reports whether new operations are recorded.
func (g *Graph) Enabled() bool {
	return g.enabled
}

// Len returns the number of recorded operations.
func (g *Graph) Len() int {
	return len(g.operations)
}

// Ops returns the recorded operations in execution order.
// The slice is owned by the graph and must not be modified.
func (g *Graph) Ops() []ops.Operation {
	return g.operations
}

// Grad seeds the gradient of a 1x1 handle with 1 so that Backward computes
// d(m)/d(operand) for every operand upstream of m.
// It is a no-op while backprop is disabled.
//
// Returns ErrInvariantViolation if m is not 1x1.
func (g *Graph) Grad(m *matrix.Mat) error {
	if !m.Shape().IsScalar() {
		return fmt.Errorf("grad: %w: objective must be 1x1, got %s", matrix.ErrInvariantViolation, m.Shape())
	}
	if !g.enabled {
		return nil
	}
	dw := m.DW()
	dw.Set(0, 0, dw.At(0, 0)+1)
	return nil
}

// String renders the graph state, e.g. <#Graph backprop=true, ops=3>.
func (g *Graph) String() string {
	return fmt.Sprintf("<#Graph backprop=%t, ops=%d>", g.enabled, len(g.operations))
}
