//go:build windows

// Package webgpu provides a WebGPU storage-buffer allocator for the backend
// memory pool. Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO
// WebGPU bindings.
//
// The pool it feeds is standalone: tensor storage is addressed through host
// slices and always allocates from a backend.Context pool (host memory or
// the emulated accelerator arena), never from this one. Callers use it
// directly to stage and recycle device buffers.
package webgpu

import (
	"sync"

	"github.com/born-ml/gnn/internal/contract"
	"github.com/born-ml/gnn/internal/mem"
	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/pkg/errors"
)

// StorageUsage is the usage of every buffer the allocator creates: bindable
// as compute storage and usable as a copy source and destination.
const StorageUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst

// Allocator creates and destroys storage buffers on a WebGPU device.
// It implements mem.Allocator[*wgpu.Buffer].
type Allocator struct {
	device *wgpu.Device

	mu     sync.Mutex
	sizes  map[*wgpu.Buffer]int
	active int
	bytes  int
}

// NewAllocator creates an allocator on device. The caller keeps ownership of
// the device and must release it after the allocator's pool is cleared.
func NewAllocator(device *wgpu.Device) *Allocator {
	contract.Require(device != nil, "webgpu: nil device")
	return &Allocator{
		device: device,
		sizes:  make(map[*wgpu.Buffer]int),
	}
}

// Malloc creates a storage buffer of size bytes.
func (a *Allocator) Malloc(size int) (*wgpu.Buffer, error) {
	buffer := a.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: StorageUsage,
		Size:  uint64(size),
	})
	if buffer == nil {
		return nil, errors.Wrapf(mem.ErrOutOfMemory, "webgpu: create buffer of %d bytes", size)
	}

	a.mu.Lock()
	a.sizes[buffer] = size
	a.active++
	a.bytes += size
	a.mu.Unlock()
	return buffer, nil
}

// Free releases a buffer created by Malloc.
func (a *Allocator) Free(buffer *wgpu.Buffer) {
	if buffer == nil {
		return
	}

	a.mu.Lock()
	a.bytes -= a.sizes[buffer]
	delete(a.sizes, buffer)
	a.active--
	a.mu.Unlock()

	buffer.Release()
}

// Name returns "webgpu".
func (a *Allocator) Name() string { return "webgpu" }

// Active returns the number of live buffers and their total size in bytes.
func (a *Allocator) Active() (buffers, bytes int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active, a.bytes
}

// NewPool creates a buffer pool backed by device.
func NewPool(device *wgpu.Device, opts ...mem.Option) *mem.Pool[*wgpu.Buffer] {
	return mem.NewPool[*wgpu.Buffer](NewAllocator(device), opts...)
}
