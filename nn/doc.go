// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides operator nodes (factors) for graph models.
//
// # Overview
//
// This package contains:
//   - Loss functions: BinaryLogLoss
//   - Activations: Sigmoid
//   - Linear algebra: MatMul (dense or sparse left operand)
//
// Factors hold only hyperparameters and scratch tensors; the variables they
// read and write are passed on each call, usually by a graph.Tape.
//
// # Basic Usage
//
//	mm := nn.NewMatMul[cpu.Mode, float32]("propagate", graph.PropErrTrue)
//	bce := nn.NewBinaryLogLoss[cpu.Mode, float32]("loss", true, graph.PropErrTrue)
//
//	tape := graph.NewTape()
//	tape.Add(mm, []graph.Variable{adj, w}, []graph.Variable{logits})
//	tape.Add(bce, []graph.Variable{logits, labels}, []graph.Variable{loss})
//
// # Numerical Domain
//
// BinaryLogLoss does not clamp its input: predictions must lie strictly
// inside (0, 1) after the optional sigmoid.
package nn
