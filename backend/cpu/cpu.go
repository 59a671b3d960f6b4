// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/tapegrad/internal/backend/cpu"
	"github.com/born-ml/tapegrad/internal/parallel"
)

// Backend represents the CPU backend implementation.
//
// The CPU backend runs the forward kernels of every graph operation over
// gonum dense matrices, splitting row-wise work across goroutines for large
// operands.
type Backend = internalcpu.CPUBackend

// ParallelConfig controls how row-wise kernels fan out.
type ParallelConfig = parallel.Config

// New creates a new CPU backend with the default parallel configuration.
//
// Example:
//
//	import (
//	    "github.com/born-ml/tapegrad/autodiff"
//	    "github.com/born-ml/tapegrad/backend/cpu"
//	)
//
//	func main() {
//	    g := autodiff.New(autodiff.WithBackend(cpu.New()))
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg ParallelConfig) *Backend {
	return internalcpu.NewWithConfig(cfg)
}

// DefaultParallelConfig returns defaults based on the CPU count.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// Sequential returns a configuration that never spawns goroutines.
func Sequential() ParallelConfig {
	return parallel.Sequential()
}
