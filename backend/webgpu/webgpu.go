//go:build windows

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides a recycling pool of WebGPU storage buffers.
//
// The pool is independent of tensors: tensor storage always comes from the
// pool of a cpu or gpu context.
//
// Example:
//
//	pool := webgpu.NewPool(device)
//	defer pool.Clear()
//	buf := pool.Allocate(4096)
//	defer pool.Recycle(buf)
package webgpu

import (
	"github.com/born-ml/gnn/internal/backend/webgpu"
	"github.com/born-ml/gnn/internal/mem"
	"github.com/go-webgpu/webgpu/wgpu"
)

// Allocator creates and destroys storage buffers on a device.
type Allocator = webgpu.Allocator

// Pool recycles WebGPU buffers by size class.
type Pool = mem.Pool[*wgpu.Buffer]

// NewAllocator creates an allocator on device.
func NewAllocator(device *wgpu.Device) *Allocator {
	return webgpu.NewAllocator(device)
}

// NewPool creates a buffer pool on device.
func NewPool(device *wgpu.Device) *Pool {
	return webgpu.NewPool(device)
}
