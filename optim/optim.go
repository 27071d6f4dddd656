// Copyright 2026 The Chalk Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the public API for Chalk's optimizers.
package optim

import (
	"github.com/chalk-ml/chalk/internal/nn"
	"github.com/chalk-ml/chalk/internal/optim"
)

// Optimizer is the interface shared by all update rules.
type Optimizer = optim.Optimizer

// SGD is stochastic gradient descent with optional momentum.
type SGD = optim.SGD

// SGDConfig holds the SGD hyperparameters.
type SGDConfig = optim.SGDConfig

// NewSGD creates an SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	return optim.NewSGD(params, config)
}

// RMSprop scales updates by a running root-mean-square of the gradient,
// with optional hyperbolic learning-rate decay.
type RMSprop = optim.RMSprop

// RMSpropConfig holds the RMSprop hyperparameters.
type RMSpropConfig = optim.RMSpropConfig

// NewRMSprop creates an RMSprop optimizer.
//
// Example:
//
//	optimizer := optim.NewRMSprop(model.Parameters(), optim.RMSpropConfig{
//	    LR:    0.001,
//	    Rho:   0.9,
//	    Decay: 0.01,
//	})
func NewRMSprop(params []*nn.Parameter, config RMSpropConfig) *RMSprop {
	return optim.NewRMSprop(params, config)
}

// Adam is adaptive moment estimation with bias correction.
type Adam = optim.Adam

// AdamConfig holds the Adam hyperparameters.
type AdamConfig = optim.AdamConfig

// NewAdam creates an Adam optimizer.
//
// Example:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float64{0.9, 0.999},
//	})
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	return optim.NewAdam(params, config)
}
