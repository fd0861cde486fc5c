// Package backend defines the two compute backends (host CPU and accelerator
// GPU) and the per-backend runtime Context that owns the memory pool and, for
// the accelerator, the kernel stream.
//
// The backend is a compile-time axis: tensors and factors are instantiated
// with a Mode type parameter (CPU or GPU), and kernels reach the right
// execution path through the mode's Launch method rather than through a
// runtime switch.
package backend

import (
	"fmt"
	"log/slog"

	"github.com/born-ml/gnn/internal/contract"
	"github.com/born-ml/gnn/internal/mem"
	"github.com/born-ml/gnn/internal/parallel"
	"github.com/born-ml/gnn/internal/stream"
)

// Device identifies a memory/execution domain.
type Device int

// Supported devices.
const (
	Host Device = iota
	Accelerator
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case Host:
		return "CPU"
	case Accelerator:
		return "GPU"
	default:
		return "Unknown"
	}
}

// CPU selects the host backend.
type CPU struct{}

// Device returns Host.
func (CPU) Device() Device { return Host }

// Launch runs k immediately on the calling goroutine.
func (CPU) Launch(_ *Context, k func()) { k() }

// GPU selects the accelerator backend.
type GPU struct{}

// Device returns Accelerator.
func (GPU) Device() Device { return Accelerator }

// Launch enqueues k on the context's stream and returns without waiting.
func (GPU) Launch(c *Context, k func()) { c.stream.Enqueue(k) }

// Mode is the closed set of backend modes.
type Mode interface {
	CPU | GPU
	Device() Device
	Launch(c *Context, k func())
}

// DeviceOf returns the device of mode M.
func DeviceOf[M Mode]() Device {
	var m M
	return m.Device()
}

// Launch executes kernel k on backend M: inline for CPU, in stream order for GPU.
func Launch[M Mode](c *Context, k func()) {
	var m M
	m.Launch(c, k)
}

// Check fails fast if c does not belong to backend M.
func Check[M Mode](c *Context) {
	contract.Require(c != nil, "backend: nil context for %s", DeviceOf[M]())
	contract.Require(c.device == DeviceOf[M](), "backend: %s context used with %s tensor",
		c.device, DeviceOf[M]())
}

// Context is the explicitly constructed runtime of one backend.
// It owns the backend's memory pool and, on the accelerator, its stream.
type Context struct {
	device   Device
	pool     *mem.Pool[[]byte]
	arena    *mem.Arena
	stream   *stream.Stream
	parallel parallel.Config
	logger   *slog.Logger
}

// Option configures a Context.
type Option func(*config)

type config struct {
	pool     mem.Config
	budget   int
	depth    int
	parallel parallel.Config
	logger   *slog.Logger
}

func defaultConfig() config {
	return config{
		pool:     mem.DefaultConfig(),
		depth:    stream.DefaultDepth,
		parallel: parallel.DefaultConfig(),
		logger:   slog.Default(),
	}
}

// WithPoolConfig sets the memory pool retention configuration.
func WithPoolConfig(cfg mem.Config) Option {
	return func(c *config) { c.pool = cfg }
}

// WithMemoryBudget limits accelerator memory to budget bytes (0 = unlimited).
// Ignored by the host backend.
func WithMemoryBudget(budget int) Option {
	return func(c *config) { c.budget = budget }
}

// WithStreamDepth sets how many kernels may be queued before Launch blocks.
func WithStreamDepth(depth int) Option {
	return func(c *config) { c.depth = depth }
}

// WithParallel sets the chunking configuration of element-wise kernels.
func WithParallel(cfg parallel.Config) Option {
	return func(c *config) { c.parallel = cfg }
}

// WithLogger sets the logger used by the context and its pool.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// NewHost creates the host backend runtime.
func NewHost(opts ...Option) *Context {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Context{
		device:   Host,
		pool:     mem.NewPool[[]byte](mem.Host{}, mem.WithConfig(cfg.pool), mem.WithLogger(cfg.logger)),
		parallel: cfg.parallel,
		logger:   cfg.logger,
	}
}

// NewDevice creates the accelerator backend runtime.
// Its pool is fenced by the stream so a recycled block is never reused while
// queued kernels may still access it.
func NewDevice(opts ...Option) *Context {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	s := stream.New(cfg.depth)
	arena := mem.NewArena(cfg.budget)
	return &Context{
		device: Accelerator,
		pool: mem.NewPool[[]byte](arena,
			mem.WithConfig(cfg.pool), mem.WithFence(s), mem.WithLogger(cfg.logger)),
		arena:    arena,
		stream:   s,
		parallel: cfg.parallel,
		logger:   cfg.logger,
	}
}

// Device returns the context's device.
func (c *Context) Device() Device {
	return c.device
}

// Pool returns the context's memory pool.
func (c *Context) Pool() *mem.Pool[[]byte] {
	return c.pool
}

// Parallel returns the kernel chunking configuration.
func (c *Context) Parallel() parallel.Config {
	return c.parallel
}

// Logger returns the context's logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// Synchronize blocks until all work launched on this context has completed.
// It is a no-op on the host.
func (c *Context) Synchronize() {
	if c.stream != nil {
		c.stream.Synchronize()
	}
}

// DeviceMemoryUsed returns the bytes reserved in accelerator memory (0 on the host).
func (c *Context) DeviceMemoryUsed() int {
	if c.arena == nil {
		return 0
	}
	return c.arena.Used()
}

// Close waits for outstanding work, stops the stream and frees pooled memory.
// A kernel fault still pending is re-raised after the teardown completes.
// Tensors still holding buffers must be released before Close.
func (c *Context) Close() {
	var fault error
	if c.stream != nil {
		fault = c.stream.Close()
	}
	c.pool.Clear()
	if fault != nil {
		c.logger.Debug("backend closed after kernel fault", "device", c.device.String(), "err", fault)
		panic(fault)
	}
	stats := c.pool.Stats()
	c.logger.Debug("backend closed",
		"device", c.device.String(),
		"live", stats.Live,
		"live_bytes", stats.LiveBytes)
}

// String describes the context.
func (c *Context) String() string {
	return fmt.Sprintf("Context(%s)", c.device)
}
