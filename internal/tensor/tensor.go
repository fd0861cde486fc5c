package tensor

import (
	"fmt"

	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/contract"
	"github.com/born-ml/gnn/internal/parallel"
	"github.com/born-ml/gnn/internal/storage"
)

// Dense is a row-major matrix handle over a dense storage.
//
// Type Parameters:
//   - M: backend mode (backend.CPU or backend.GPU)
//   - T: element type (float32 or float64)
//
// Several handles may alias one storage (see RowRef); aliasing is explicit and
// there is no copy-on-write.
//
// Example:
//
//	ctx := backend.NewHost()
//	x := tensor.New[backend.CPU, float32](ctx, 3, 4)
//	x.Fill(1)
//	x.Scale(2)
type Dense[M backend.Mode, T Float] struct {
	ctx   *backend.Context
	data  *storage.Dense[M, T]
	shape Shape
}

// New creates a rows x cols tensor with storage from ctx's pool.
// Contents are unspecified until written.
func New[M backend.Mode, T Float](ctx *backend.Context, rows, cols int) *Dense[M, T] {
	t := &Dense[M, T]{
		ctx:   ctx,
		data:  storage.NewDense[M, T](ctx),
		shape: Shape{0, 0},
	}
	t.Reshape(rows, cols)
	return t
}

// FromSlice creates a rows x cols tensor holding a copy of data.
func FromSlice[M backend.Mode, T Float](ctx *backend.Context, data []T, rows, cols int) (*Dense[M, T], error) {
	if rows*cols != len(data) {
		return nil, fmt.Errorf("shape [%d %d] requires %d elements, but got %d", rows, cols, rows*cols, len(data))
	}
	t := New[M, T](ctx, rows, cols)
	t.SetData(data)
	return t, nil
}

// RowRef returns a tensor viewing rows [start, start+count) of t.
// The view shares t's memory; it cannot be reshaped beyond count*Cols()
// elements and is invalid once t's storage is released or regrown.
func (t *Dense[M, T]) RowRef(start, count int) *Dense[M, T] {
	contract.Require(start >= 0 && count >= 0 && start+count <= t.Rows(),
		"RowRef: rows [%d, %d) out of range for %v", start, start+count, t.shape)
	cols := t.Cols()
	return &Dense[M, T]{
		ctx:   t.ctx,
		data:  storage.NewDenseView(t.data, start*cols, count*cols),
		shape: Shape{count, cols},
	}
}

// Reshape changes the logical shape, growing the storage if needed.
// Contents are not preserved when the storage grows.
func (t *Dense[M, T]) Reshape(rows, cols int) {
	shape := Shape{rows, cols}
	if err := shape.Validate(); err != nil {
		contract.Fail("Reshape: %v", err)
	}
	t.data.Resize(rows * cols)
	t.shape = shape
}

// Rows returns the number of rows.
func (t *Dense[M, T]) Rows() int {
	return t.shape[0]
}

// Cols returns the number of columns.
func (t *Dense[M, T]) Cols() int {
	return t.shape[1]
}

// Shape returns a copy of the tensor's shape.
func (t *Dense[M, T]) Shape() Shape {
	return t.shape.Clone()
}

// Len returns the number of logical elements.
func (t *Dense[M, T]) Len() int {
	return t.shape.NumElements()
}

// Context returns the backend runtime the tensor lives on.
func (t *Dense[M, T]) Context() *backend.Context {
	return t.ctx
}

// Storage returns the underlying storage.
func (t *Dense[M, T]) Storage() *storage.Dense[M, T] {
	return t.data
}

// Data returns the logical elements of a host tensor (zero-copy).
// Use ToHost for accelerator tensors.
func (t *Dense[M, T]) Data() []T {
	contract.Require(backend.DeviceOf[M]() == backend.Host,
		"Data: %s tensor memory is not host addressable, use ToHost", backend.DeviceOf[M]())
	return t.data.Ptr()[:t.Len()]
}

// ToHost waits for pending work and returns a copy of the logical elements.
func (t *Dense[M, T]) ToHost() []T {
	out := make([]T, t.Len())
	src := t.data.Ptr()[:t.Len()]
	t.launch(func() { copy(out, src) })
	t.ctx.Synchronize()
	return out
}

// SetData copies src into the tensor; len(src) must equal Len().
func (t *Dense[M, T]) SetData(src []T) {
	contract.Require(len(src) == t.Len(), "SetData: %d values for shape %v", len(src), t.shape)
	staged := append([]T(nil), src...)
	dst := t.data.Ptr()[:t.Len()]
	t.launch(func() { copy(dst, staged) })
}

// Release returns owned memory to the pool (a view only detaches).
// The tensor is empty afterwards and may be reshaped again if it owned its storage.
func (t *Dense[M, T]) Release() {
	t.data.Release()
	t.shape = Shape{0, 0}
}

// String returns a human-readable description of the tensor.
func (t *Dense[M, T]) String() string {
	var zero T
	kind := "owning"
	if t.data.IsReferring() {
		kind = "view"
	}
	return fmt.Sprintf("Dense[%T]%v on %s (%s)", zero, []int(t.shape), backend.DeviceOf[M](), kind)
}

// launch runs k on the tensor's backend.
func (t *Dense[M, T]) launch(k func()) {
	backend.Launch[M](t.ctx, k)
}

// elementwise launches f over [0, n) in chunks.
func (t *Dense[M, T]) elementwise(n int, f func(lo, hi int)) {
	cfg := t.ctx.Parallel()
	t.launch(func() { parallel.ForRange(n, f, cfg) })
}

// requireSameShape fails fast when other's shape differs from t's.
func (t *Dense[M, T]) requireSameShape(op string, other *Dense[M, T]) {
	contract.Require(t.shape.Equal(other.shape), "%s: shape mismatch %v vs %v", op, t.shape, other.shape)
}
