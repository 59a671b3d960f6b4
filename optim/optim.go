// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/tapegrad/internal/matrix"
	"github.com/born-ml/tapegrad/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Config represents the settings shared by all optimizers.
type Config = optim.Config

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(params, optim.SGDConfig{
//	    Config:   optim.Config{LR: 0.01, Clip: 5},
//	    Momentum: 0.9,
//	})
func NewSGD(params []*matrix.Mat, config SGDConfig) *SGD {
	return optim.NewSGD(params, config)
}

// DefaultSGDConfig returns plain SGD with LR 0.01.
func DefaultSGDConfig() SGDConfig { return optim.DefaultSGDConfig() }

// AdaGrad

// AdaGrad represents the AdaGrad optimizer.
type AdaGrad = optim.AdaGrad

// AdaGradConfig contains configuration for AdaGrad optimizer.
type AdaGradConfig = optim.AdaGradConfig

// NewAdaGrad creates a new AdaGrad optimizer.
func NewAdaGrad(params []*matrix.Mat, config AdaGradConfig) *AdaGrad {
	return optim.NewAdaGrad(params, config)
}

// DefaultAdaGradConfig returns AdaGrad with LR 0.01.
func DefaultAdaGradConfig() AdaGradConfig { return optim.DefaultAdaGradConfig() }

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
//
// Example:
//
//	optimizer := optim.NewAdam(params, optim.AdamConfig{
//	    Config: optim.Config{LR: 0.001},
//	    Betas:  [2]float64{0.9, 0.999},
//	})
func NewAdam(params []*matrix.Mat, config AdamConfig) *Adam {
	return optim.NewAdam(params, config)
}

// DefaultAdamConfig returns Adam with LR 0.001.
func DefaultAdamConfig() AdamConfig { return optim.DefaultAdamConfig() }

// Hogwild

// Replicate returns weights-shared, gradient-private copies of params.
func Replicate(params []*matrix.Mat) []*matrix.Mat {
	return optim.Replicate(params)
}

// MergeGradients adds replica gradients into the master handles.
func MergeGradients(masters []*matrix.Mat, replicas ...[]*matrix.Mat) error {
	return optim.MergeGradients(masters, replicas...)
}
