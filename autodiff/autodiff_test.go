// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package autodiff_test

import (
	"errors"
	"math"
	"testing"

	"github.com/born-ml/tapegrad/autodiff"
	"github.com/born-ml/tapegrad/matrix"
	"github.com/born-ml/tapegrad/optim"
)

// TestPublicTrainingStep runs one forward, backward and update through the
// public packages only.
func TestPublicTrainingStep(t *testing.T) {
	w, err := matrix.FromSlice(1, 2, []float64{0.5, -0.5})
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	x, err := matrix.FromSlice(2, 1, []float64{1, 2})
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	x.MarkConstant()

	g := autodiff.New()
	y, err := g.Mul(w, x)
	if err != nil {
		t.Fatalf("Mul failed: %v", err)
	}
	loss := g.Sum(g.Square(y))
	if err := g.Grad(loss); err != nil {
		t.Fatalf("Grad failed: %v", err)
	}
	g.Backward()

	// y = -0.5, dloss/dw = 2y * x
	if got := w.GradAt(0, 1); got != -2 {
		t.Errorf("GradAt(0, 1) = %v, want -2", got)
	}

	opt := optim.NewSGD([]*matrix.Mat{w}, optim.SGDConfig{Config: optim.Config{LR: 0.1}})
	opt.Step()
	if got := w.At(0, 0); math.Abs(got-0.6) > 1e-12 {
		t.Errorf("At(0, 0) = %v, want 0.6", got)
	}
}

// TestPublicErrors verifies sentinel errors survive the re-export.
func TestPublicErrors(t *testing.T) {
	a, _ := matrix.Zeros(2, 3)
	b, _ := matrix.Zeros(2, 3)

	_, err := autodiff.New().Mul(a, b)
	if !errors.Is(err, matrix.ErrDimensionMismatch) {
		t.Errorf("Mul error = %v, want ErrDimensionMismatch", err)
	}
	var dimErr *matrix.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("Mul error %T is not a *DimensionError", err)
	}
}
