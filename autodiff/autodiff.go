// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation over
// matrix handles.
//
// A Graph is an explicit tape: every differentiable operation called on it
// computes its result eagerly and appends a backward record. Backward replays
// the records from newest to oldest, accumulating into gradient buffers.
//
// Example:
//
//	import (
//	    "github.com/born-ml/tapegrad/autodiff"
//	    "github.com/born-ml/tapegrad/matrix"
//	)
//
//	func main() {
//	    g := autodiff.New()
//
//	    w, _ := matrix.New(10, 4, matrix.Uniform(-0.1, 0.1))
//	    x, _ := matrix.New(4, 1, matrix.Gaussian(0, 1))
//
//	    h, _ := g.Mul(w, x)
//	    loss := g.Sum(g.Tanh(h))
//
//	    _ = g.Grad(loss)
//	    g.Backward() // w.DW() now holds dloss/dw
//	}
package autodiff

import (
	"github.com/born-ml/tapegrad/internal/autodiff"
	"github.com/born-ml/tapegrad/internal/autodiff/ops"
)

// Graph records differentiable operations and replays them backwards.
type Graph = autodiff.Graph

// Option configures a Graph.
type Option = autodiff.Option

// Guard suppresses recording until released.
type Guard = autodiff.Guard

// MaskedLoss is the result of a masked cross entropy.
type MaskedLoss = autodiff.MaskedLoss

// Operation is a recorded backward step, exposed for inspection.
type Operation = ops.Operation

// DropoutThreshold is the drop probability below which dropout is the identity.
const DropoutThreshold = autodiff.DropoutThreshold

// New creates a graph with recording enabled.
//
// Example:
//
//	g := autodiff.New(autodiff.WithLogger(slog.Default()))
func New(opts ...Option) *Graph {
	return autodiff.New(opts...)
}

// WithLogger sets the logger used for backward and clear events.
var WithLogger = autodiff.WithLogger

// WithBackprop sets the initial recording state.
var WithBackprop = autodiff.WithBackprop

// WithBackend sets the numeric backend.
var WithBackend = autodiff.WithBackend
