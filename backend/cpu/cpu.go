// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the host backend.
//
// Kernels run inline on the calling goroutine, split into chunks across
// worker goroutines for large tensors. Memory comes from process memory
// through a recycling pool.
//
// Example:
//
//	ctx := cpu.New()
//	defer ctx.Close()
//	x := tensor.New[cpu.Mode, float64](ctx, 3, 4)
package cpu

import (
	"github.com/born-ml/gnn/backend"
	internal "github.com/born-ml/gnn/internal/backend"
)

// Mode is the type parameter selecting this backend.
type Mode = backend.CPU

// New creates a host context.
func New(opts ...backend.Option) *backend.Context {
	return internal.NewHost(opts...)
}
