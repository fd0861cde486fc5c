// Package tensor provides shaped tensor handles over dense and sparse storage
// and the element-wise / linear-algebra primitives used by graph factors.
package tensor

// Float is a constraint for the element types tensors compute with.
// Each (backend, Float) pair is a distinct instantiation of every primitive.
type Float interface {
	float32 | float64
}
