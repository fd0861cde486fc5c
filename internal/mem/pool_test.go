package mem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingAllocator records system-level calls.
type countingAllocator struct {
	mallocs int
	frees   int
}

func (c *countingAllocator) Malloc(size int) ([]byte, error) {
	c.mallocs++
	return make([]byte, size), nil
}

func (c *countingAllocator) Free([]byte) { c.frees++ }

func (c *countingAllocator) Name() string { return "counting" }

// fakeFence records the tickets it was asked to wait for.
type fakeFence struct {
	seq    uint64
	waited []uint64
}

func (f *fakeFence) Record() uint64 { return f.seq }
func (f *fakeFence) Wait(seq uint64) { f.waited = append(f.waited, seq) }

func TestPool_ReuseDoesNotGrowLiveCount(t *testing.T) {
	alloc := &countingAllocator{}
	pool := NewPool[[]byte](alloc)

	buf := pool.Allocate(1024)
	require.Equal(t, 1024, buf.Size)
	require.Len(t, buf.Handle, 1024)
	assert.Equal(t, 1, pool.Stats().Live)

	pool.Recycle(buf)
	assert.Equal(t, 1, pool.Stats().Live)
	assert.Equal(t, 1, pool.Stats().Pooled)

	again := pool.Allocate(1024)
	stats := pool.Stats()
	assert.Equal(t, 1, stats.Live)
	assert.Equal(t, uint64(1), stats.Allocated)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 0, stats.Pooled)
	assert.Equal(t, 1, alloc.mallocs)
	assert.Equal(t, 1024, again.Size)
}

func TestPool_ReusesLargerBlock(t *testing.T) {
	pool := NewPool[[]byte](Host{})

	big := pool.Allocate(2048)
	pool.Recycle(big)

	small := pool.Allocate(512)
	assert.Equal(t, 2048, small.Size, "smaller request served by the recycled block")
	assert.Equal(t, uint64(1), pool.Stats().Hits)
}

func TestPool_PicksSmallestFit(t *testing.T) {
	pool := NewPool[[]byte](Host{})

	a := pool.Allocate(3000)
	b := pool.Allocate(1000)
	c := pool.Allocate(2000)
	pool.Recycle(a)
	pool.Recycle(b)
	pool.Recycle(c)

	got := pool.Allocate(1500)
	assert.Equal(t, 2000, got.Size)
	assert.Equal(t, 2, pool.Stats().Pooled)
}

func TestPool_SizeClassesDoNotMix(t *testing.T) {
	pool := NewPool[[]byte](Host{})

	large := pool.Allocate(2 * 1024 * 1024)
	pool.Recycle(large)

	small := pool.Allocate(64)
	assert.Equal(t, 64, small.Size)
	assert.Equal(t, uint64(0), pool.Stats().Hits)
	assert.Equal(t, 1, pool.Stats().Pooled)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, SmallBuffer, Classify(2048))
	assert.Equal(t, MediumBuffer, Classify(512*1024))
	assert.Equal(t, LargeBuffer, Classify(2*1024*1024))
}

func TestPool_ForceDelete(t *testing.T) {
	alloc := &countingAllocator{}
	pool := NewPool[[]byte](alloc)

	buf := pool.Allocate(128)
	pool.ForceDelete(buf)

	stats := pool.Stats()
	assert.Equal(t, 0, stats.Live)
	assert.Equal(t, 0, stats.LiveBytes)
	assert.Equal(t, uint64(1), stats.Freed)
	assert.Equal(t, 0, stats.Pooled)
	assert.Equal(t, 1, alloc.frees)
}

func TestPool_FullClassFreesOnRecycle(t *testing.T) {
	alloc := &countingAllocator{}
	pool := NewPool[[]byte](alloc, WithConfig(Config{MaxPooled: 1}))

	a := pool.Allocate(100)
	b := pool.Allocate(100)
	pool.Recycle(a)
	pool.Recycle(b)

	stats := pool.Stats()
	assert.Equal(t, 1, stats.Pooled)
	assert.Equal(t, 1, stats.Live)
	assert.Equal(t, 1, alloc.frees)
}

func TestPool_Clear(t *testing.T) {
	alloc := &countingAllocator{}
	pool := NewPool[[]byte](alloc)

	for i := 0; i < 3; i++ {
		pool.Recycle(pool.Allocate(256 * (3 - i)))
	}
	require.Equal(t, 1, pool.Stats().Pooled, "each allocation reuses the previous block")

	pool.Recycle(pool.Allocate(10 * 1024))
	pool.Clear()

	stats := pool.Stats()
	assert.Equal(t, 0, stats.Pooled)
	assert.Equal(t, 0, stats.Live)
	assert.Equal(t, alloc.mallocs, alloc.frees)
}

func TestPool_ZeroSize(t *testing.T) {
	alloc := &countingAllocator{}
	pool := NewPool[[]byte](alloc)

	buf := pool.Allocate(0)
	assert.True(t, buf.Empty())
	pool.Recycle(buf)
	pool.ForceDelete(buf)

	assert.Equal(t, 0, alloc.mallocs)
	assert.Equal(t, 0, alloc.frees)
	assert.Equal(t, Stats{}, pool.Stats())
}

func TestPool_NegativeSizePanics(t *testing.T) {
	pool := NewPool[[]byte](Host{})
	assert.Panics(t, func() { pool.Allocate(-1) })
}

func TestPool_FenceOrdersReuse(t *testing.T) {
	fence := &fakeFence{}
	pool := NewPool[[]byte](Host{}, WithFence(fence))

	buf := pool.Allocate(64)
	fence.seq = 7
	pool.Recycle(buf)

	fence.seq = 9
	pool.Allocate(64)
	assert.Equal(t, []uint64{7}, fence.waited, "reuse waits for work issued before recycle")

	pool.ForceDelete(pool.Allocate(64))
	assert.Equal(t, []uint64{7, 9}, fence.waited, "free waits for all issued work")
}

// faultingFence panics on the next Wait, like a poisoned stream.
type faultingFence struct {
	fail bool
}

func (f *faultingFence) Record() uint64 { return 1 }

func (f *faultingFence) Wait(uint64) {
	if f.fail {
		f.fail = false
		panic(errors.New("kernel failed"))
	}
}

func TestPool_FailedFenceWaitKeepsBlockPooled(t *testing.T) {
	alloc := &countingAllocator{}
	fence := &faultingFence{}
	pool := NewPool[[]byte](alloc, WithFence(fence))

	pool.Recycle(pool.Allocate(64))
	before := pool.Stats()
	require.Equal(t, 1, before.Pooled)

	fence.fail = true
	assert.Panics(t, func() { pool.Allocate(64) })
	assert.Equal(t, before, pool.Stats(), "block stays in its size class")

	buf := pool.Allocate(64)
	assert.Equal(t, 64, buf.Size)
	assert.Equal(t, 1, alloc.mallocs, "the pooled block is reused after the fault")
	pool.Recycle(buf)

	pool.Clear()
	assert.Equal(t, 0, pool.Stats().Live)
	assert.Equal(t, 1, alloc.frees)
}

func TestPool_OutOfMemoryIsFatal(t *testing.T) {
	pool := NewPool[[]byte](NewArena(1024))

	pool.Allocate(1000)

	var r any
	func() {
		defer func() { r = recover() }()
		pool.Allocate(100)
	}()

	require.NotNil(t, r)
	err, ok := r.(error)
	require.True(t, ok)
	assert.True(t, errors.Is(err, ErrOutOfMemory))
	assert.Contains(t, err.Error(), "device pool")
}

func TestArena_Budget(t *testing.T) {
	arena := NewArena(100)

	h, err := arena.Malloc(60)
	require.NoError(t, err)
	assert.Equal(t, 60, arena.Used())

	_, err = arena.Malloc(50)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	arena.Free(h)
	assert.Equal(t, 0, arena.Used())

	_, err = arena.Malloc(100)
	assert.NoError(t, err)
}

func TestHost_Aligned(t *testing.T) {
	for _, size := range []int{1, 4, 8, 12, 4096} {
		b, err := Host{}.Malloc(size)
		require.NoError(t, err)
		assert.Len(t, b, size)
	}
	b, err := Host{}.Malloc(0)
	require.NoError(t, err)
	assert.Nil(t, b)
}
