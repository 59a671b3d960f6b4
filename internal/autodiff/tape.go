package autodiff

import (
	"log/slog"

	"github.com/born-ml/tapegrad/internal/autodiff/ops"
)

// Record appends op to the tape.
// Only records while backprop is enabled and at least one input is not constant.
func (g *Graph) Record(op ops.Operation) {
	if !g.enabled {
		return
	}
	for _, in := range op.Inputs() {
		if !in.IsConstant() {
			g.operations = append(g.operations, op)
			return
		}
	}
}

// Backward replays every recorded operation, most recent first.
//
// The tape is left intact. Calling Backward twice without Clear accumulates
// every gradient twice; callers run one Backward per recorded forward pass.
func (g *Graph) Backward() {
	g.logger.Debug("backward", slog.Int("ops", len(g.operations)))
	for i := len(g.operations) - 1; i >= 0; i-- {
		g.operations[i].Backward()
	}
}

// Clear removes all recorded operations.
// Recording state and open guards are preserved.
func (g *Graph) Clear() {
	g.logger.Debug("clear", slog.Int("ops", len(g.operations)))
	clear(g.operations)
	g.operations = g.operations[:0]
}
