// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package backend exposes the compute backends and their runtime context.
//
// A backend is chosen at compile time through a Mode type parameter:
// CPU runs every kernel inline on the host, GPU queues kernels on an
// in-order device stream. A Context owns the backend's memory pool and must
// be closed when no longer needed.
//
// Example:
//
//	ctx := gpu.New(backend.WithMemoryBudget(1 << 30))
//	defer ctx.Close()
//	x := tensor.New[backend.GPU, float32](ctx, 128, 64)
package backend

import (
	"log/slog"

	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/mem"
	"github.com/born-ml/gnn/internal/parallel"
)

// Mode is the set of backend modes.
type Mode = backend.Mode

// CPU selects the host backend.
type CPU = backend.CPU

// GPU selects the accelerator backend.
type GPU = backend.GPU

// Device identifies a memory/execution domain.
type Device = backend.Device

// Devices.
const (
	Host        Device = backend.Host
	Accelerator Device = backend.Accelerator
)

// Context is the runtime of one backend: memory pool, stream and settings.
type Context = backend.Context

// Option configures a Context.
type Option = backend.Option

// PoolConfig bounds how many blocks each pool size class retains.
type PoolConfig = mem.Config

// ParallelConfig controls chunked host execution of kernels.
type ParallelConfig = parallel.Config

// PoolStats reports memory pool counters.
type PoolStats = mem.Stats

// ErrOutOfMemory is the root cause of allocation failures.
var ErrOutOfMemory = mem.ErrOutOfMemory

// DeviceOf returns the device of mode M.
func DeviceOf[M Mode]() Device {
	return backend.DeviceOf[M]()
}

// WithPoolConfig sets the pool retention configuration.
func WithPoolConfig(cfg PoolConfig) Option {
	return backend.WithPoolConfig(cfg)
}

// WithMemoryBudget limits accelerator memory to budget bytes (0 = unlimited).
func WithMemoryBudget(budget int) Option {
	return backend.WithMemoryBudget(budget)
}

// WithStreamDepth sets how many kernels may be queued before Launch blocks.
func WithStreamDepth(depth int) Option {
	return backend.WithStreamDepth(depth)
}

// WithParallel sets the host parallelism configuration.
func WithParallel(cfg ParallelConfig) Option {
	return backend.WithParallel(cfg)
}

// WithLogger sets the logger for pool and context diagnostics.
func WithLogger(l *slog.Logger) Option {
	return backend.WithLogger(l)
}

// DefaultParallelConfig returns the default host parallelism configuration.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// DefaultPoolConfig returns the default pool retention configuration.
func DefaultPoolConfig() PoolConfig {
	return mem.DefaultConfig()
}
