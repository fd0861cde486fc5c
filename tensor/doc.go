// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides dense and sparse matrices over pooled backend memory.
//
// # Overview
//
// Every tensor is generic over two axes:
//   - M: the backend mode (backend.CPU or backend.GPU)
//   - T: the element type (float32 or float64)
//
// Each combination is a distinct type, so mixing backends or element types
// is a compile error rather than a runtime check.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/gnn/backend/cpu"
//	    "github.com/born-ml/gnn/tensor"
//	)
//
//	func main() {
//	    ctx := cpu.New()
//	    defer ctx.Close()
//
//	    x, _ := tensor.FromSlice[cpu.Mode](ctx, []float32{1, 2, 3, 4}, 2, 2)
//	    y := tensor.New[cpu.Mode, float32](ctx, 0, 0)
//	    y.MM(x, x, false, true, 1, 0) // y = x · xᵀ
//	}
//
// # Operations
//
// Operations mutate the receiver in place. Element-wise operations require
// identical shapes; there is no broadcasting, and a mismatch panics with a
// contract violation.
//
//	x.Fill(v)            // x = v
//	x.Scale(a)           // x *= a
//	x.Add(a)             // x += a
//	x.Axpy(a, y)         // x += a * y
//	x.ElewiseMul(y)      // x *= y
//	x.ElewiseDiv(y)      // x /= y
//	x.Sigmoid()          // x = σ(x)
//	x.Log()              // x = log(x)
//	c.MM(a, b, ta, tb, alpha, beta)   // c = alpha·op(a)·op(b) + beta·c
//	c.SparseMM(s, b, ta, alpha, beta) // c = alpha·op(s)·b + beta·c
//
// # Memory Management
//
// Storage is drawn from the context's pool and returned by Release. Reshape
// reuses existing capacity and only grows. RowRef returns a view sharing the
// parent's memory; a view cannot grow and must not outlive its parent.
//
// # Accelerator Tensors
//
// On the GPU backend operations are queued and return immediately. ToHost,
// Sum and the sparse CSR accessor wait for queued work before reading.
// Data is host-only.
package tensor
