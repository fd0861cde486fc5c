// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides graph variables, the factor (operator node)
// contract and a tape that runs factors forward and backward.
//
// Example:
//
//	w := graph.NewDTensorVar[cpu.Mode, float32](ctx, "w", 16, 1).RequireGrad()
//	tape := graph.NewTape()
//	tape.Add(linear, []graph.Variable{x, w}, []graph.Variable{logits})
//	tape.Add(loss, []graph.Variable{logits, y}, []graph.Variable{out})
//	for range epochs {
//	    tape.Forward()
//	    tape.ZeroGrad()
//	    tape.Backward(out)
//	    w.Value.Axpy(-lr, w.Grad)
//	}
package graph

import (
	"github.com/born-ml/gnn/backend"
	"github.com/born-ml/gnn/internal/graph"
	"github.com/born-ml/gnn/tensor"
)

// Variable is a named node of the computation graph.
type Variable = graph.Variable

// Factor is an operator node.
type Factor = graph.Factor

// Base carries the name and PropErr shared by all factors.
type Base = graph.Base

// PropErr controls whether gradients propagate through a factor.
type PropErr = graph.PropErr

// Propagation modes.
const (
	PropErrTrue  PropErr = graph.PropErrTrue
	PropErrFalse PropErr = graph.PropErrFalse
)

// DTensorVar is a dense variable with a value and a gradient.
type DTensorVar[M backend.Mode, T tensor.Float] = graph.DTensorVar[M, T]

// SpTensorVar is a constant sparse variable.
type SpTensorVar[M backend.Mode, T tensor.Float] = graph.SpTensorVar[M, T]

// Tape records factor invocations and replays them.
type Tape = graph.Tape

// TapeOption configures a Tape.
type TapeOption = graph.TapeOption

// NewDTensorVar creates a dense variable with a rows x cols value.
func NewDTensorVar[M backend.Mode, T tensor.Float](ctx *backend.Context, name string, rows, cols int) *DTensorVar[M, T] {
	return graph.NewDTensorVar[M, T](ctx, name, rows, cols)
}

// WrapDense creates a dense variable over an existing tensor.
func WrapDense[M backend.Mode, T tensor.Float](name string, value *tensor.Dense[M, T]) *DTensorVar[M, T] {
	return graph.WrapDense(name, value)
}

// NewSpTensorVar creates an empty sparse variable.
func NewSpTensorVar[M backend.Mode, T tensor.Float](ctx *backend.Context, name string) *SpTensorVar[M, T] {
	return graph.NewSpTensorVar[M, T](ctx, name)
}

// WrapSparse creates a sparse variable over an existing tensor.
func WrapSparse[M backend.Mode, T tensor.Float](name string, value *tensor.Sparse[M, T]) *SpTensorVar[M, T] {
	return graph.WrapSparse(name, value)
}

// NewTape creates an empty tape.
func NewTape(opts ...TapeOption) *Tape {
	return graph.NewTape(opts...)
}

// NewBase creates the shared part of a factor.
func NewBase(name string, propErr PropErr) Base {
	return graph.NewBase(name, propErr)
}
