package tensor_test

import (
	"testing"

	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/contract"
	"github.com/born-ml/gnn/internal/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testParallel forces chunking even for tiny tensors.
var testParallel = parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 2}

// newContext creates a runtime for backend M.
func newContext[M backend.Mode]() *backend.Context {
	if backend.DeviceOf[M]() == backend.Host {
		return backend.NewHost(backend.WithParallel(testParallel))
	}
	return backend.NewDevice(backend.WithParallel(testParallel))
}

// onBothBackends runs the CPU and GPU instantiations of a test.
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

// requireViolation asserts that fn fails with a contract violation.
func requireViolation(t *testing.T, fn func()) {
	t.Helper()
	var r any
	func() {
		defer func() { r = recover() }()
		fn()
	}()
	require.NotNil(t, r, "expected a contract violation")
	assert.True(t, contract.IsViolation(r), "unexpected panic: %v", r)
}

// naiveMM computes op(a) * op(b) for row-major inputs.
func naiveMM(a []float64, ar, ac int, b []float64, br, bc int, transA, transB bool) ([]float64, int, int) {
	at := func(i, k int) float64 {
		if transA {
			return a[k*ac+i]
		}
		return a[i*ac+k]
	}
	bt := func(k, j int) float64 {
		if transB {
			return b[j*bc+k]
		}
		return b[k*bc+j]
	}
	m, k := ar, ac
	if transA {
		m, k = ac, ar
	}
	n := bc
	if transB {
		n = br
	}
	out := make([]float64, m*n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			for p := 0; p < k; p++ {
				sum += at(i, p) * bt(p, j)
			}
			out[i*n+j] = sum
		}
	}
	return out, m, n
}
