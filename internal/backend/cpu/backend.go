// Package cpu implements the forward numeric kernels used by the autodiff graph.
//
// Kernels take gonum matrices and return freshly allocated results; they
// never touch gradient buffers and never validate shapes (the graph does
// that before dispatching).
package cpu

import (
	"github.com/born-ml/tapegrad/internal/parallel"
)

// CPUBackend runs kernels on the CPU.
type CPUBackend struct {
	cfg parallel.Config
}

// New creates a new CPU backend with the default parallel configuration.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{cfg: cfg}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Config returns the parallel configuration.
func (cpu *CPUBackend) Config() parallel.Config {
	return cpu.cfg
}
