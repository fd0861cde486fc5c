package tensor

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/gonum"
)

// impl is the pure-Go BLAS used by host and emulated-device kernels.
var impl gonum.Implementation

// axpy computes y += alpha * x.
func axpy[T Float](alpha T, x, y []T) {
	if len(x) == 0 {
		return
	}
	switch xs := any(x).(type) {
	case []float32:
		impl.Saxpy(len(xs), any(alpha).(float32), xs, 1, any(y).([]float32), 1)
	case []float64:
		impl.Daxpy(len(xs), any(alpha).(float64), xs, 1, any(y).([]float64), 1)
	}
}

// scal computes x *= alpha.
func scal[T Float](alpha T, x []T) {
	if len(x) == 0 {
		return
	}
	switch xs := any(x).(type) {
	case []float32:
		impl.Sscal(len(xs), any(alpha).(float32), xs, 1)
	case []float64:
		impl.Dscal(len(xs), any(alpha).(float64), xs, 1)
	}
}

// gemm computes c = alpha * op(a) * op(b) + beta * c for row-major operands,
// where op(a) is m x k, op(b) is k x n and c is m x n.
func gemm[T Float](transA, transB bool, m, n, k int, alpha T, a []T, lda int, b []T, ldb int, beta T, c []T) {
	if m == 0 || n == 0 {
		return
	}
	if k == 0 {
		scaleOrZero(beta, c[:m*n])
		return
	}
	tA, tB := blas.NoTrans, blas.NoTrans
	if transA {
		tA = blas.Trans
	}
	if transB {
		tB = blas.Trans
	}
	switch cs := any(c).(type) {
	case []float32:
		impl.Sgemm(tA, tB, m, n, k, any(alpha).(float32), any(a).([]float32), lda,
			any(b).([]float32), ldb, any(beta).(float32), cs, n)
	case []float64:
		impl.Dgemm(tA, tB, m, n, k, any(alpha).(float64), any(a).([]float64), lda,
			any(b).([]float64), ldb, any(beta).(float64), cs, n)
	}
}

// scaleOrZero computes x *= beta, treating beta == 0 as an overwrite so stale
// NaNs do not survive.
func scaleOrZero[T Float](beta T, x []T) {
	if beta == 0 {
		clear(x)
		return
	}
	if beta != 1 {
		scal(beta, x)
	}
}
