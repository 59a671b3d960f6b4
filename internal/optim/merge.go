package optim

import (
	"fmt"

	"github.com/born-ml/tapegrad/internal/matrix"
)

// Replicate returns weights-shared, gradient-private copies of params, the
// per-worker view used for Hogwild training.
func Replicate(params []*matrix.Mat) []*matrix.Mat {
	out := make([]*matrix.Mat, len(params))
	for i, p := range params {
		out[i] = p.Copy(true, false)
	}
	return out
}

// MergeGradients adds the gradient of every replica into the matching master
// handle and resets the replica gradients.
//
// Each replica set must line up with masters one-to-one with equal shapes.
// The caller serializes MergeGradients against concurrent backward passes.
func MergeGradients(masters []*matrix.Mat, replicas ...[]*matrix.Mat) error {
	for r, set := range replicas {
		if len(set) != len(masters) {
			return fmt.Errorf("merge gradients: %w: replica %d has %d parameters, want %d",
				matrix.ErrDimensionMismatch, r, len(set), len(masters))
		}
		for i, rep := range set {
			if rep.Shape() != masters[i].Shape() {
				return fmt.Errorf("merge gradients: replica %d: %w", r, matrix.Mismatch("merge", "replica shape equal to master shape", masters[i], rep))
			}
		}
	}
	for _, set := range replicas {
		for i, rep := range set {
			if rep.SharesGrads(masters[i]) {
				continue
			}
			dw := masters[i].DW()
			dw.Add(dw, rep.DW())
			rep.ResetGrad()
		}
	}
	return nil
}
