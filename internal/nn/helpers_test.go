package nn_test

import (
	"fmt"
	"testing"

	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/contract"
	"github.com/born-ml/gnn/internal/graph"
	"github.com/born-ml/gnn/internal/parallel"
	"github.com/born-ml/gnn/internal/tensor"
	"github.com/stretchr/testify/require"
)

var testParallel = parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 2}

func newContext[M backend.Mode]() *backend.Context {
	if backend.DeviceOf[M]() == backend.Host {
		return backend.NewHost(backend.WithParallel(testParallel))
	}
	return backend.NewDevice(backend.WithParallel(testParallel))
}

// onBothBackends runs a test body instantiated for CPU and GPU.
func onBothBackends(t *testing.T, cpu, gpu func(t *testing.T, ctx *backend.Context)) {
	t.Run("CPU", func(t *testing.T) {
		ctx := newContext[backend.CPU]()
		defer ctx.Close()
		cpu(t, ctx)
	})
	t.Run("GPU", func(t *testing.T) {
		ctx := newContext[backend.GPU]()
		defer ctx.Close()
		gpu(t, ctx)
	})
}

// denseVar creates a variable holding data with the given shape.
func denseVar[M backend.Mode, T tensor.Float](t *testing.T, ctx *backend.Context, name string, data []T, rows, cols int) *graph.DTensorVar[M, T] {
	t.Helper()
	require.Len(t, data, rows*cols)
	v := graph.NewDTensorVar[M, T](ctx, name, rows, cols)
	v.Value.SetData(data)
	return v
}

// emptyVar creates a variable with an empty value, typically a factor output.
func emptyVar[M backend.Mode, T tensor.Float](ctx *backend.Context, name string) *graph.DTensorVar[M, T] {
	return graph.NewDTensorVar[M, T](ctx, name, 0, 0)
}

func vars(vs ...graph.Variable) []graph.Variable { return vs }

func violationMessage(t *testing.T, fn func()) string {
	t.Helper()
	var r any
	func() {
		defer func() { r = recover() }()
		fn()
	}()
	require.NotNil(t, r, "expected a contract violation")
	require.True(t, contract.IsViolation(r), "unexpected panic: %v", r)
	return fmt.Sprint(r)
}
