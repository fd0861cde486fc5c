package tensor_test

import (
	"testing"

	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	s := tensor.Shape{3, 4}
	assert.Equal(t, 12, s.NumElements())
	assert.Equal(t, 1, tensor.Shape{}.NumElements())
	assert.True(t, s.Equal(tensor.Shape{3, 4}))
	assert.False(t, s.Equal(tensor.Shape{4, 3}))
	assert.False(t, s.Equal(tensor.Shape{3}))
	assert.NoError(t, s.Validate())
	assert.NoError(t, tensor.Shape{0, 5}.Validate())
	assert.Error(t, tensor.Shape{-1, 5}.Validate())
	assert.Error(t, tensor.Shape{1, 2, 3}.Validate())

	c := s.Clone()
	c[0] = 9
	assert.Equal(t, 3, s[0])
}

func testNewAndReshape[M backend.Mode](t *testing.T, ctx *backend.Context) {
	x := tensor.New[M, float64](ctx, 2, 3)
	assert.Equal(t, 2, x.Rows())
	assert.Equal(t, 3, x.Cols())
	assert.Equal(t, 6, x.Len())
	assert.Equal(t, tensor.Shape{2, 3}, x.Shape())

	x.Reshape(1, 2)
	assert.Equal(t, 6, x.Storage().MemSize(), "shrinking keeps capacity")

	x.Reshape(10, 10)
	assert.GreaterOrEqual(t, x.Storage().MemSize(), 100)
	assert.Equal(t, 100, x.Len())

	requireViolation(t, func() { x.Reshape(-1, 2) })
}

func TestDense_NewAndReshape(t *testing.T) {
	onBothBackends(t, testNewAndReshape[backend.CPU], testNewAndReshape[backend.GPU])
}

func testFromSlice[M backend.Mode](t *testing.T, ctx *backend.Context) {
	x, err := tensor.FromSlice[M](ctx, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, x.ToHost())

	_, err = tensor.FromSlice[M](ctx, []float32{1, 2, 3}, 2, 2)
	assert.Error(t, err)
}

func TestDense_FromSlice(t *testing.T) {
	onBothBackends(t, testFromSlice[backend.CPU], testFromSlice[backend.GPU])
}

func testSetDataCopiesInput[M backend.Mode](t *testing.T, ctx *backend.Context) {
	src := []float64{1, 2, 3}
	x := tensor.New[M, float64](ctx, 3, 1)
	x.SetData(src)
	src[0] = 100

	assert.Equal(t, []float64{1, 2, 3}, x.ToHost())
	requireViolation(t, func() { x.SetData([]float64{1}) })
}

func TestDense_SetData(t *testing.T) {
	onBothBackends(t, testSetDataCopiesInput[backend.CPU], testSetDataCopiesInput[backend.GPU])
}

func testRowRef[M backend.Mode](t *testing.T, ctx *backend.Context) {
	batch, err := tensor.FromSlice[M](ctx, []float64{1, 2, 3, 4, 5, 6, 7, 8}, 4, 2)
	require.NoError(t, err)

	view := batch.RowRef(1, 2)
	assert.Equal(t, tensor.Shape{2, 2}, view.Shape())
	assert.True(t, view.Storage().IsReferring())
	assert.Equal(t, []float64{3, 4, 5, 6}, view.ToHost())

	view.Scale(10)
	assert.Equal(t, []float64{1, 2, 30, 40, 50, 60, 7, 8}, batch.ToHost(), "views alias the batch")

	view.Reshape(1, 4)
	requireViolation(t, func() { view.Reshape(3, 2) })
	requireViolation(t, func() { batch.RowRef(3, 2) })

	view.Release()
	assert.Equal(t, 8, batch.Storage().MemSize(), "releasing a view leaves the owner intact")
}

func TestDense_RowRef(t *testing.T) {
	onBothBackends(t, testRowRef[backend.CPU], testRowRef[backend.GPU])
}

func TestDense_DataHostOnly(t *testing.T) {
	host := backend.NewHost()
	defer host.Close()
	dev := backend.NewDevice()
	defer dev.Close()

	x := tensor.New[backend.CPU, float32](host, 1, 2)
	x.Fill(3)
	assert.Equal(t, []float32{3, 3}, x.Data())

	y := tensor.New[backend.GPU, float32](dev, 1, 2)
	requireViolation(t, func() { y.Data() })
}

func TestDense_ReleaseRecycles(t *testing.T) {
	ctx := backend.NewHost()
	defer ctx.Close()

	x := tensor.New[backend.CPU, float64](ctx, 16, 16)
	x.Release()
	assert.Equal(t, 0, x.Len())
	assert.Equal(t, 1, ctx.Pool().Stats().Pooled)

	y := tensor.New[backend.CPU, float64](ctx, 16, 16)
	assert.Equal(t, uint64(1), ctx.Pool().Stats().Hits)
	assert.Equal(t, 1, ctx.Pool().Stats().Live)
	y.Release()
}

func TestDense_WrongContext(t *testing.T) {
	ctx := backend.NewHost()
	defer ctx.Close()

	requireViolation(t, func() { tensor.New[backend.GPU, float32](ctx, 1, 1) })
}

func TestDense_String(t *testing.T) {
	ctx := backend.NewHost()
	defer ctx.Close()

	x := tensor.New[backend.CPU, float32](ctx, 2, 3)
	assert.Equal(t, "Dense[float32][2 3] on CPU (owning)", x.String())
	assert.Equal(t, "Dense[float32][1 3] on CPU (view)", x.RowRef(0, 1).String())
}
