// Package mem implements the backend memory pool: buffer allocation with
// recycling, so that repeated same-shaped tensor resizes do not hit the
// system allocator every time.
package mem

import (
	"sync"
	"unsafe"

	"github.com/pkg/errors"
)

// ErrOutOfMemory is returned by allocators that cannot satisfy a request.
var ErrOutOfMemory = errors.New("out of memory")

// Allocator performs system-level allocation and release of raw blocks.
// H is the backend's handle type ([]byte for host memory).
type Allocator[H any] interface {
	// Malloc allocates a block of exactly size bytes.
	Malloc(size int) (H, error)
	// Free releases a block obtained from Malloc.
	Free(h H)
	// Name identifies the backend in diagnostics.
	Name() string
}

// Host allocates regular process memory.
type Host struct{}

// Malloc returns a zeroed, 8-byte aligned block.
func (Host) Malloc(size int) ([]byte, error) {
	return alignedBytes(size), nil
}

// Free drops the reference; the runtime reclaims it.
func (Host) Free([]byte) {}

// Name returns "host".
func (Host) Name() string { return "host" }

// Arena allocates emulated accelerator memory with an optional byte budget.
// A zero budget means unlimited.
type Arena struct {
	mu     sync.Mutex
	budget int
	used   int
}

// NewArena creates an arena limited to budget bytes (0 = unlimited).
func NewArena(budget int) *Arena {
	return &Arena{budget: budget}
}

// Malloc reserves size bytes of device memory.
func (a *Arena) Malloc(size int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.budget > 0 && a.used+size > a.budget {
		return nil, errors.Wrapf(ErrOutOfMemory, "device arena: %d bytes requested, %d of %d in use",
			size, a.used, a.budget)
	}
	a.used += size
	return alignedBytes(size), nil
}

// Free returns the block's bytes to the budget.
func (a *Arena) Free(h []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.used -= len(h)
}

// Name returns "device".
func (a *Arena) Name() string { return "device" }

// Used returns the number of bytes currently reserved.
func (a *Arena) Used() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used
}

// alignedBytes allocates size bytes backed by uint64 words so the block can be
// reinterpreted as any supported element type.
func alignedBytes(size int) []byte {
	if size == 0 {
		return nil
	}
	words := make([]uint64, (size+7)/8)
	//nolint:gosec // unsafe.Slice for zero-copy reinterpretation, length bounded by the word slice
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size)
}
