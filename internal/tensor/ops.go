package tensor

import (
	"math"

	"github.com/born-ml/gnn/internal/contract"
)

// Element-wise primitives. Every operand must have exactly the receiver's
// shape; there is no broadcasting. On the accelerator each call enqueues a
// kernel and returns before it runs.

// Zeros sets every element to zero.
func (t *Dense[M, T]) Zeros() {
	t.Fill(0)
}

// Fill sets every element to v.
func (t *Dense[M, T]) Fill(v T) {
	dst := t.data.Ptr()[:t.Len()]
	t.elementwise(len(dst), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] = v
		}
	})
}

// CopyFrom reshapes t to src's shape and copies src's contents.
func (t *Dense[M, T]) CopyFrom(src *Dense[M, T]) {
	if t == src {
		return
	}
	t.Reshape(src.Rows(), src.Cols())
	dst := t.data.Ptr()[:t.Len()]
	from := src.data.Ptr()[:src.Len()]
	t.elementwise(len(dst), func(lo, hi int) {
		copy(dst[lo:hi], from[lo:hi])
	})
}

// Scale computes t *= a.
func (t *Dense[M, T]) Scale(a T) {
	dst := t.data.Ptr()[:t.Len()]
	t.elementwise(len(dst), func(lo, hi int) {
		scal(a, dst[lo:hi])
	})
}

// Add computes t += a for scalar a.
func (t *Dense[M, T]) Add(a T) {
	dst := t.data.Ptr()[:t.Len()]
	t.elementwise(len(dst), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] += a
		}
	})
}

// Axpy computes t += a * x.
func (t *Dense[M, T]) Axpy(a T, x *Dense[M, T]) {
	t.requireSameShape("Axpy", x)
	dst := t.data.Ptr()[:t.Len()]
	src := x.data.Ptr()[:x.Len()]
	t.elementwise(len(dst), func(lo, hi int) {
		axpy(a, src[lo:hi], dst[lo:hi])
	})
}

// ElewiseMul computes t *= x element by element.
func (t *Dense[M, T]) ElewiseMul(x *Dense[M, T]) {
	t.requireSameShape("ElewiseMul", x)
	dst := t.data.Ptr()[:t.Len()]
	src := x.data.Ptr()[:x.Len()]
	t.elementwise(len(dst), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] *= src[i]
		}
	})
}

// ElewiseDiv computes t /= x element by element.
// Division by zero is not guarded.
func (t *Dense[M, T]) ElewiseDiv(x *Dense[M, T]) {
	t.requireSameShape("ElewiseDiv", x)
	dst := t.data.Ptr()[:t.Len()]
	src := x.data.Ptr()[:x.Len()]
	t.elementwise(len(dst), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] /= src[i]
		}
	})
}

// Sigmoid applies σ(x) = 1 / (1 + exp(-x)) in place.
func (t *Dense[M, T]) Sigmoid() {
	dst := t.data.Ptr()[:t.Len()]
	t.elementwise(len(dst), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] = T(1 / (1 + math.Exp(-float64(dst[i]))))
		}
	})
}

// Log applies the natural logarithm in place. log(0) is not guarded.
func (t *Dense[M, T]) Log() {
	dst := t.data.Ptr()[:t.Len()]
	t.elementwise(len(dst), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] = T(math.Log(float64(dst[i])))
		}
	})
}

// Sqrt applies the square root in place.
func (t *Dense[M, T]) Sqrt() {
	dst := t.data.Ptr()[:t.Len()]
	t.elementwise(len(dst), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] = T(math.Sqrt(float64(dst[i])))
		}
	})
}

// BinaryMap reshapes t to a's shape and sets t[i] = f(a[i], b[i]).
// t may alias a or b.
func (t *Dense[M, T]) BinaryMap(a, b *Dense[M, T], f func(x, y T) T) {
	a.requireSameShape("BinaryMap", b)
	t.Reshape(a.Rows(), a.Cols())
	dst := t.data.Ptr()[:t.Len()]
	xs := a.data.Ptr()[:a.Len()]
	ys := b.data.Ptr()[:b.Len()]
	t.elementwise(len(dst), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] = f(xs[i], ys[i])
		}
	})
}

// Sum waits for pending work and returns the sum of all elements.
func (t *Dense[M, T]) Sum() T {
	src := t.data.Ptr()[:t.Len()]
	var total float64
	t.launch(func() {
		for _, v := range src {
			total += float64(v)
		}
	})
	t.ctx.Synchronize()
	return T(total)
}

// MM computes t = alpha * op(a) * op(b) + beta * t, where op transposes its
// argument when the matching flag is set.
// With beta == 0 the receiver is reshaped to the product's shape; otherwise it
// must already have that shape.
func (t *Dense[M, T]) MM(a, b *Dense[M, T], transA, transB bool, alpha, beta T) {
	m, k := a.Rows(), a.Cols()
	if transA {
		m, k = k, m
	}
	kb, n := b.Rows(), b.Cols()
	if transB {
		kb, n = n, kb
	}
	contract.Require(k == kb, "MM: inner dimensions differ: op(a) is [%d %d], op(b) is [%d %d]", m, k, kb, n)
	contract.Require(t != a && t != b, "MM: output aliases an operand")

	if beta == 0 {
		t.Reshape(m, n)
	} else {
		contract.Require(t.Rows() == m && t.Cols() == n,
			"MM: accumulating into %v, product is [%d %d]", t.shape, m, n)
	}

	as := a.data.Ptr()[:a.Len()]
	bs := b.data.Ptr()[:b.Len()]
	cs := t.data.Ptr()[:t.Len()]
	lda, ldb := max(a.Cols(), 1), max(b.Cols(), 1)
	t.launch(func() {
		gemm(transA, transB, m, n, k, alpha, as, lda, bs, ldb, beta, cs)
	})
}
