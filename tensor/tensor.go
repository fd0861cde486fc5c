// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/gnn/backend"
	"github.com/born-ml/gnn/internal/tensor"
)

// Float is the set of element types tensors support.
type Float = tensor.Float

// Shape is a [rows, cols] pair.
type Shape = tensor.Shape

// Dense is a row-major matrix on backend M.
type Dense[M backend.Mode, T Float] = tensor.Dense[M, T]

// Sparse is a compressed-row matrix on backend M.
type Sparse[M backend.Mode, T Float] = tensor.Sparse[M, T]

// New creates a rows x cols tensor with unspecified contents.
//
// Example:
//
//	x := tensor.New[backend.CPU, float32](ctx, 3, 4)
//	x.Zeros()
func New[M backend.Mode, T Float](ctx *backend.Context, rows, cols int) *Dense[M, T] {
	return tensor.New[M, T](ctx, rows, cols)
}

// FromSlice creates a rows x cols tensor holding a copy of data.
func FromSlice[M backend.Mode, T Float](ctx *backend.Context, data []T, rows, cols int) (*Dense[M, T], error) {
	return tensor.FromSlice[M, T](ctx, data, rows, cols)
}

// NewSparse creates an empty sparse tensor with room for nzCap nonzeros and
// ptrCap row offsets.
func NewSparse[M backend.Mode, T Float](ctx *backend.Context, nzCap, ptrCap int) *Sparse[M, T] {
	return tensor.NewSparse[M, T](ctx, nzCap, ptrCap)
}

// SparseFromCSR creates a sparse tensor from compressed-row arrays.
// Invalid arrays panic with a contract violation; use CheckCSR first for
// untrusted input.
//
// Example:
//
//	// [1 0]
//	// [0 2]
//	s := tensor.SparseFromCSR[backend.CPU](ctx, 2, 2,
//	    []float32{1, 2}, []int32{0, 1}, []int32{0, 1, 2})
func SparseFromCSR[M backend.Mode, T Float](ctx *backend.Context, rows, cols int, val []T, colIdx, rowPtr []int32) *Sparse[M, T] {
	return tensor.SparseFromCSR[M, T](ctx, rows, cols, val, colIdx, rowPtr)
}

// CheckCSR validates compressed-row arrays for a rows x cols matrix.
func CheckCSR(rows, cols, nnz int, colIdx, rowPtr []int32) error {
	return tensor.CheckCSR(rows, cols, nnz, colIdx, rowPtr)
}
