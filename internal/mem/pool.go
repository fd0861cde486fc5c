package mem

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
)

// SizeClass represents the buffer size categories used for pooling.
type SizeClass int

const (
	// SmallBuffer for blocks < 4KB.
	SmallBuffer SizeClass = iota
	// MediumBuffer for blocks 4KB-1MB.
	MediumBuffer
	// LargeBuffer for blocks >= 1MB.
	LargeBuffer
	numClasses
)

const (
	smallThreshold  = 4 * 1024    // 4KB
	mediumThreshold = 1024 * 1024 // 1MB
)

// Classify returns the size class of a block of size bytes.
func Classify(size int) SizeClass {
	if size < smallThreshold {
		return SmallBuffer
	}
	if size < mediumThreshold {
		return MediumBuffer
	}
	return LargeBuffer
}

// Config controls pool retention.
type Config struct {
	MaxPooled int // Max recycled blocks kept per size class.
}

// DefaultConfig returns the default pool configuration.
func DefaultConfig() Config {
	return Config{MaxPooled: 100}
}

// Fence orders buffer reuse against asynchronous work.
// Record returns the sequence number of the most recently issued work;
// Wait blocks until that sequence number has completed.
type Fence interface {
	Record() uint64
	Wait(seq uint64)
}

// Buffer is one block obtained from a Pool.
// A zero Size means no memory is held.
type Buffer[H any] struct {
	Handle H
	Size   int
}

// Empty reports whether the buffer holds no memory.
func (b Buffer[H]) Empty() bool {
	return b.Size == 0
}

// Stats is a snapshot of pool counters.
type Stats struct {
	Allocated uint64 // system allocations issued
	Freed     uint64 // system frees issued
	Recycled  uint64 // Recycle calls that kept the block
	Hits      uint64 // Allocate calls served from the pool
	Misses    uint64 // Allocate calls that needed a system allocation
	Live      int    // system allocations not yet freed (including pooled blocks)
	LiveBytes int
	Pooled    int // blocks currently waiting for reuse
}

type pooledBlock[H any] struct {
	buf    Buffer[H]
	ticket uint64
}

// Option configures a Pool.
type Option func(*options)

type options struct {
	cfg    Config
	fence  Fence
	logger *slog.Logger
}

// WithConfig sets the retention configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithFence orders reuse and frees after the fence's outstanding work.
func WithFence(f Fence) Option {
	return func(o *options) { o.fence = f }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Pool recycles blocks of one backend.
//
// Allocate prefers the smallest recycled block of the request's size class
// that is at least as large as the request; Recycle keeps a block for later
// reuse; ForceDelete frees immediately.
type Pool[H any] struct {
	alloc  Allocator[H]
	cfg    Config
	fence  Fence
	logger *slog.Logger

	mu      sync.Mutex
	classes [numClasses][]pooledBlock[H]
	stats   Stats
}

// NewPool creates a pool on top of alloc.
func NewPool[H any](alloc Allocator[H], opts ...Option) *Pool[H] {
	o := options{cfg: DefaultConfig(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Pool[H]{
		alloc:  alloc,
		cfg:    o.cfg,
		fence:  o.fence,
		logger: o.logger,
	}
}

// Name returns the backend name of the underlying allocator.
func (p *Pool[H]) Name() string {
	return p.alloc.Name()
}

// Allocate obtains a block of at least size bytes.
// Allocation failure is fatal: it panics with an error wrapping the allocator's error.
func (p *Pool[H]) Allocate(size int) Buffer[H] {
	if size < 0 {
		panic(fmt.Sprintf("%s pool: negative allocation size %d", p.alloc.Name(), size))
	}
	if size == 0 {
		return Buffer[H]{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	class := Classify(size)
	blocks := p.classes[class]

	best := -1
	for i, pb := range blocks {
		if pb.buf.Size >= size && (best < 0 || pb.buf.Size < blocks[best].buf.Size) {
			best = i
		}
	}
	if best >= 0 {
		pb := blocks[best]
		// Wait first: a failed wait leaves the block pooled.
		if p.fence != nil {
			p.fence.Wait(pb.ticket)
		}
		p.classes[class] = append(blocks[:best], blocks[best+1:]...)
		p.stats.Hits++
		p.stats.Pooled--
		return pb.buf
	}

	p.stats.Misses++
	h, err := p.alloc.Malloc(size)
	if err != nil {
		panic(errors.Wrapf(err, "%s pool: allocate %d bytes", p.alloc.Name(), size))
	}
	p.stats.Allocated++
	p.stats.Live++
	p.stats.LiveBytes += size
	return Buffer[H]{Handle: h, Size: size}
}

// Recycle returns buf to the pool for future reuse.
// If its size class is full the block is freed instead.
func (p *Pool[H]) Recycle(buf Buffer[H]) {
	if buf.Empty() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	class := Classify(buf.Size)
	if len(p.classes[class]) >= p.cfg.MaxPooled {
		p.logger.Debug("pool class full, freeing block",
			"backend", p.alloc.Name(), "class", class, "size", buf.Size)
		p.freeLocked(buf)
		return
	}

	var ticket uint64
	if p.fence != nil {
		ticket = p.fence.Record()
	}
	p.classes[class] = append(p.classes[class], pooledBlock[H]{buf: buf, ticket: ticket})
	p.stats.Recycled++
	p.stats.Pooled++
}

// ForceDelete frees buf immediately, bypassing the pool.
func (p *Pool[H]) ForceDelete(buf Buffer[H]) {
	if buf.Empty() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.freeLocked(buf)
}

// Clear frees every pooled block.
// Should be called when the backend is torn down.
func (p *Pool[H]) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for class := range p.classes {
		for _, pb := range p.classes[class] {
			p.freeLocked(pb.buf)
		}
		p.classes[class] = p.classes[class][:0]
	}
	p.stats.Pooled = 0

	p.logger.Debug("pool cleared",
		"backend", p.alloc.Name(),
		"allocated", p.stats.Allocated,
		"hits", p.stats.Hits,
		"misses", p.stats.Misses,
		"live", p.stats.Live)
}

// Stats returns a snapshot of the pool counters.
func (p *Pool[H]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// freeLocked frees buf after any outstanding work (must hold mu).
func (p *Pool[H]) freeLocked(buf Buffer[H]) {
	if p.fence != nil {
		p.fence.Wait(p.fence.Record())
	}
	p.alloc.Free(buf.Handle)
	p.stats.Freed++
	p.stats.Live--
	p.stats.LiveBytes -= buf.Size
}
