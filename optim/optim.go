// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/gnn/backend"
	"github.com/born-ml/gnn/graph"
	"github.com/born-ml/gnn/internal/optim"
	"github.com/born-ml/gnn/tensor"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer[T tensor.Float] = optim.Optimizer[T]

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD[M backend.Mode, T tensor.Float] = optim.SGD[M, T]

// SGDConfig contains configuration for SGD.
type SGDConfig[T tensor.Float] = optim.SGDConfig[T]

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	opt := optim.NewSGD(
//	    []*graph.DTensorVar[cpu.Mode, float32]{w},
//	    optim.SGDConfig[float32]{LR: 0.01, Momentum: 0.9},
//	)
func NewSGD[M backend.Mode, T tensor.Float](params []*graph.DTensorVar[M, T], config SGDConfig[T]) *SGD[M, T] {
	return optim.NewSGD(params, config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam[M backend.Mode, T tensor.Float] = optim.Adam[M, T]

// AdamConfig contains configuration for Adam.
type AdamConfig[T tensor.Float] = optim.AdamConfig[T]

// NewAdam creates a new Adam optimizer with bias correction.
func NewAdam[M backend.Mode, T tensor.Float](params []*graph.DTensorVar[M, T], config AdamConfig[T]) *Adam[M, T] {
	return optim.NewAdam(params, config)
}
