// Package storage implements the raw containers behind tensors: dense
// buffers that either own pool memory or view into another dense buffer, and
// compressed-row sparse buffers.
package storage

import (
	"unsafe"

	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/contract"
	"github.com/born-ml/gnn/internal/mem"
)

// DType is the set of element types storage can hold.
type DType interface {
	float32 | float64 | int32
}

// Dense is a contiguous block of MemSize() elements.
//
// An owning Dense allocates from its backend's pool and recycles on Release.
// A viewing Dense (IsReferring) aliases part of an owning Dense; it never
// allocates or frees, and may not grow. A view is only valid while its
// owner's buffer is; that lifetime is the caller's responsibility.
type Dense[M backend.Mode, T DType] struct {
	pool        *mem.Pool[[]byte]
	buf         mem.Buffer[[]byte]
	ptr         []T
	memSize     int
	isReferring bool
}

// NewDense creates an empty owning storage on ctx's pool.
func NewDense[M backend.Mode, T DType](ctx *backend.Context) *Dense[M, T] {
	backend.Check[M](ctx)
	return &Dense[M, T]{pool: ctx.Pool()}
}

// NewDenseView creates a storage viewing size elements of src starting at offset.
func NewDenseView[M backend.Mode, T DType](src *Dense[M, T], offset, size int) *Dense[M, T] {
	contract.Require(offset >= 0 && size >= 0, "storage: invalid view [%d, +%d)", offset, size)
	contract.Require(offset+size <= src.memSize,
		"storage: view [%d, %d) exceeds source of %d elements", offset, offset+size, src.memSize)
	return &Dense[M, T]{
		ptr:         src.ptr[offset : offset+size : offset+size],
		memSize:     size,
		isReferring: true,
	}
}

// Ptr returns all MemSize() elements.
// On the accelerator the slice may only be touched from launched kernels.
func (d *Dense[M, T]) Ptr() []T {
	return d.ptr
}

// MemSize returns the capacity in elements.
func (d *Dense[M, T]) MemSize() int {
	return d.memSize
}

// IsReferring reports whether d is a view.
func (d *Dense[M, T]) IsReferring() bool {
	return d.isReferring
}

// Resize ensures capacity for newSize elements.
// Shrinking is a no-op. Growing an owning storage replaces its buffer without
// preserving contents; growing a view is a contract violation.
func (d *Dense[M, T]) Resize(newSize int) {
	if newSize <= d.memSize {
		return
	}
	contract.Require(!d.isReferring, "cannot modify view only tensor (capacity %d, requested %d)",
		d.memSize, newSize)

	d.pool.ForceDelete(d.buf)
	d.buf = d.pool.Allocate(newSize * elemSize[T]())
	d.ptr = typedSlice[T](d.buf.Handle, newSize)
	d.memSize = newSize
}

// Release returns an owning buffer to the pool, or detaches a view.
// Release is idempotent; a released storage may be resized again.
func (d *Dense[M, T]) Release() {
	if !d.isReferring {
		d.pool.Recycle(d.buf)
	}
	d.buf = mem.Buffer[[]byte]{}
	d.ptr = nil
	d.memSize = 0
}

// elemSize returns the byte size of T.
func elemSize[T DType]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// typedSlice interprets the first n elements of b as []T.
func typedSlice[T DType](b []byte, n int) []T {
	if n == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by the pool block size
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}
