// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides solvers that apply the gradients accumulated by an
// autodiff backward pass.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - AdaGrad: per-element adaptive learning rates
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// Every solver accepts gradient clipping and L2 regularization via Config.
//
// # Training Loop Pattern
//
//	optimizer := optim.NewAdam(params, optim.DefaultAdamConfig())
//
//	for epoch := range numEpochs {
//	    for batch := range batches {
//	        g := autodiff.New()
//
//	        // 1. Forward pass
//	        loss, _ := g.SoftmaxCrossEntropy(model(g, batch.Input), batch.Labels)
//
//	        // 2. Backward pass
//	        _ = g.Grad(loss)
//	        g.Backward()
//
//	        // 3. Update parameters and zero gradients
//	        optimizer.Step()
//	        optimizer.ZeroGrad()
//	    }
//	}
//
// # Hogwild
//
// Workers train on gradient-private replicas that share weights with the
// master parameters; MergeGradients folds their gradients back:
//
//	replicas := [][]*matrix.Mat{optim.Replicate(params), optim.Replicate(params)}
//	// ... one graph per worker, Backward into its replica ...
//	_ = optim.MergeGradients(params, replicas...)
//	optimizer.Step()
package optim
