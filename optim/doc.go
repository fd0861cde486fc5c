// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides parameter update rules for graph variables.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// # Basic Usage
//
//	ctx := cpu.New()
//	defer ctx.Close()
//
//	w := graph.NewDTensorVar[cpu.Mode, float32](ctx, "w", 16, 1).RequireGrad()
//	opt := optim.NewAdam([]*graph.DTensorVar[cpu.Mode, float32]{w},
//	    optim.AdamConfig[float32]{LR: 0.01})
//	defer opt.Release()
//
//	for range epochs {
//	    tape.Forward()
//	    opt.ZeroGrad()
//	    tape.Backward(loss)
//	    opt.Step()
//	}
//
// Parameters whose gradient was never sized by ZeroGrad are skipped by Step.
package optim
