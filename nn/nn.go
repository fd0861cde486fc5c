// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/gnn/backend"
	"github.com/born-ml/gnn/graph"
	"github.com/born-ml/gnn/internal/nn"
	"github.com/born-ml/gnn/tensor"
)

// Loss functions

// BinaryLogLoss computes per-example binary cross-entropy.
type BinaryLogLoss[M backend.Mode, T tensor.Float] = nn.BinaryLogLoss[M, T]

// NewBinaryLogLoss creates a binary log-loss factor. With needSigmoid the
// prediction operand holds raw logits.
//
// Example:
//
//	loss := nn.NewBinaryLogLoss[cpu.Mode, float32]("loss", true, graph.PropErrTrue)
func NewBinaryLogLoss[M backend.Mode, T tensor.Float](name string, needSigmoid bool, propErr graph.PropErr) *BinaryLogLoss[M, T] {
	return nn.NewBinaryLogLoss[M, T](name, needSigmoid, propErr)
}

// Activations

// Sigmoid applies σ(x) = 1 / (1 + exp(-x)).
type Sigmoid[M backend.Mode, T tensor.Float] = nn.Sigmoid[M, T]

// NewSigmoid creates a sigmoid factor.
func NewSigmoid[M backend.Mode, T tensor.Float](name string, propErr graph.PropErr) *Sigmoid[M, T] {
	return nn.NewSigmoid[M, T](name, propErr)
}

// Linear algebra

// MatMul computes out = A · B for dense or sparse A.
type MatMul[M backend.Mode, T tensor.Float] = nn.MatMul[M, T]

// NewMatMul creates a matrix-product factor.
func NewMatMul[M backend.Mode, T tensor.Float](name string, propErr graph.PropErr) *MatMul[M, T] {
	return nn.NewMatMul[M, T](name, propErr)
}
