// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gpu provides the accelerator backend.
//
// Kernels are queued on a single in-order stream and run asynchronously;
// reading a tensor back to the host (ToHost, Sum) waits for the stream.
// Device memory is a budgeted arena behind a recycling pool whose reuse is
// ordered after the kernels still using a block.
//
// Example:
//
//	ctx := gpu.New(backend.WithMemoryBudget(512 << 20))
//	defer ctx.Close()
//	x := tensor.New[gpu.Mode, float32](ctx, 1024, 64)
//	x.Fill(1)
//	fmt.Println(x.Sum())
package gpu

import (
	"github.com/born-ml/gnn/backend"
	internal "github.com/born-ml/gnn/internal/backend"
)

// Mode is the type parameter selecting this backend.
type Mode = backend.GPU

// New creates an accelerator context.
func New(opts ...backend.Option) *backend.Context {
	return internal.NewDevice(opts...)
}
