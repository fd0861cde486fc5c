// Package optim implements parameter update rules over graph variables.
//
// This package provides:
//   - Optimizer interface: Step / ZeroGrad / GetLR
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Optimizers read each parameter's accumulated Grad and update its Value in
// place with tensor primitives, so an update on the accelerator is queued
// like any other kernel.
//
// Example usage:
//
//	opt := optim.NewSGD([]*graph.DTensorVar[backend.CPU, float32]{w}, optim.SGDConfig[float32]{LR: 0.1})
//	defer opt.Release()
//
//	for range epochs {
//	    tape.Forward()
//	    opt.ZeroGrad()
//	    tape.Backward(loss)
//	    opt.Step()
//	}
package optim

import (
	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/graph"
	"github.com/born-ml/gnn/internal/tensor"
)

// Optimizer updates a fixed set of parameters from their gradients.
type Optimizer[T tensor.Float] interface {
	// Step applies one update to every parameter that has a gradient.
	Step()

	// ZeroGrad resets every parameter's gradient to zeros of its value's shape.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() T
}

// hasGrad reports whether p received a gradient. A gradient that was never
// sized by ZeroGrad is empty and the parameter is skipped.
func hasGrad[M backend.Mode, T tensor.Float](p *graph.DTensorVar[M, T]) bool {
	return p.Grad.Len() > 0
}

// state returns the per-parameter tensor for p, creating a zero tensor of
// p's shape on first use.
func state[M backend.Mode, T tensor.Float](m map[*graph.DTensorVar[M, T]]*tensor.Dense[M, T], p *graph.DTensorVar[M, T]) *tensor.Dense[M, T] {
	s, ok := m[p]
	if !ok {
		s = tensor.New[M, T](p.Value.Context(), p.Value.Rows(), p.Value.Cols())
		s.Zeros()
		m[p] = s
	}
	return s
}

func releaseAll[M backend.Mode, T tensor.Float](m map[*graph.DTensorVar[M, T]]*tensor.Dense[M, T]) {
	for p, s := range m {
		s.Release()
		delete(m, p)
	}
}
