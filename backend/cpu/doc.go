// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend used by autodiff graphs.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO) on top of gonum/mat
//   - Float64 dense matrices
//   - Row-wise parallel kernels for large operands
//
// # Basic Usage
//
//	g := autodiff.New(autodiff.WithBackend(cpu.New()))
//
// # Deterministic Execution
//
// Tests and benchmarks that need a single goroutine can use:
//
//	backend := cpu.NewWithConfig(cpu.Sequential())
package cpu
