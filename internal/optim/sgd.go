package optim

import (
	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/graph"
	"github.com/born-ml/gnn/internal/tensor"
)

// SGD implements Stochastic Gradient Descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD[M backend.Mode, T tensor.Float] struct {
	params     []*graph.DTensorVar[M, T]
	lr         T
	momentum   T
	velocities map[*graph.DTensorVar[M, T]]*tensor.Dense[M, T]
}

// SGDConfig holds configuration for SGD.
type SGDConfig[T tensor.Float] struct {
	LR       T // Learning rate (default: 0.01)
	Momentum T // Momentum factor (default: 0, range: [0, 1))
}

// NewSGD creates an SGD optimizer over params.
func NewSGD[M backend.Mode, T tensor.Float](params []*graph.DTensorVar[M, T], config SGDConfig[T]) *SGD[M, T] {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD[M, T]{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*graph.DTensorVar[M, T]]*tensor.Dense[M, T]),
	}
}

// Step performs a single optimization step.
func (s *SGD[M, T]) Step() {
	for _, p := range s.params {
		if !hasGrad(p) {
			continue
		}
		if s.momentum == 0 {
			p.Value.Axpy(-s.lr, p.Grad)
			continue
		}
		v := state(s.velocities, p)
		v.Scale(s.momentum)
		v.Axpy(1, p.Grad)
		p.Value.Axpy(-s.lr, v)
	}
}

// ZeroGrad clears all parameter gradients.
func (s *SGD[M, T]) ZeroGrad() {
	for _, p := range s.params {
		p.ZeroGrad()
	}
}

// GetLR returns the learning rate.
func (s *SGD[M, T]) GetLR() T {
	return s.lr
}

// SetLR changes the learning rate for subsequent steps.
func (s *SGD[M, T]) SetLR(lr T) {
	s.lr = lr
}

// Release returns the velocity buffers to the pool.
func (s *SGD[M, T]) Release() {
	releaseAll(s.velocities)
}
