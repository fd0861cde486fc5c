package optim

import (
	"math"

	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/graph"
	"github.com/born-ml/gnn/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam[M backend.Mode, T tensor.Float] struct {
	params []*graph.DTensorVar[M, T]
	lr     T
	beta1  T
	beta2  T
	eps    T
	t      int // Timestep for bias correction
	m      map[*graph.DTensorVar[M, T]]*tensor.Dense[M, T]
	v      map[*graph.DTensorVar[M, T]]*tensor.Dense[M, T]

	// Per-step scratch, shared by all parameters and resized as needed.
	num, den *tensor.Dense[M, T]
}

// AdamConfig holds configuration for Adam.
type AdamConfig[T tensor.Float] struct {
	LR    T    // Learning rate (default: 0.001)
	Betas [2]T // Coefficients for running averages (default: [0.9, 0.999])
	Eps   T    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates an Adam optimizer over params. Zero fields of config take
// their defaults.
func NewAdam[M backend.Mode, T tensor.Float](params []*graph.DTensorVar[M, T], config AdamConfig[T]) *Adam[M, T] {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam[M, T]{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[*graph.DTensorVar[M, T]]*tensor.Dense[M, T]),
		v:      make(map[*graph.DTensorVar[M, T]]*tensor.Dense[M, T]),
	}
}

// Step performs a single optimization step.
func (a *Adam[M, T]) Step() {
	a.t++
	bc1 := T(1 - math.Pow(float64(a.beta1), float64(a.t)))
	bc2 := T(1 - math.Pow(float64(a.beta2), float64(a.t)))

	for _, p := range a.params {
		if !hasGrad(p) {
			continue
		}
		ctx := p.Value.Context()
		if a.num == nil {
			a.num = tensor.New[M, T](ctx, 0, 0)
			a.den = tensor.New[M, T](ctx, 0, 0)
		}

		m := state(a.m, p)
		m.Scale(a.beta1)
		m.Axpy(1-a.beta1, p.Grad)

		// den = grad²
		a.den.CopyFrom(p.Grad)
		a.den.ElewiseMul(p.Grad)
		v := state(a.v, p)
		v.Scale(a.beta2)
		v.Axpy(1-a.beta2, a.den)

		// den = sqrt(v_hat) + eps
		a.den.CopyFrom(v)
		a.den.Scale(1 / bc2)
		a.den.Sqrt()
		a.den.Add(a.eps)

		a.num.CopyFrom(m)
		a.num.ElewiseDiv(a.den)
		p.Value.Axpy(-a.lr/bc1, a.num)
	}
}

// ZeroGrad clears all parameter gradients.
func (a *Adam[M, T]) ZeroGrad() {
	for _, p := range a.params {
		p.ZeroGrad()
	}
}

// GetLR returns the learning rate.
func (a *Adam[M, T]) GetLR() T {
	return a.lr
}

// Release returns the moment and scratch buffers to the pool.
func (a *Adam[M, T]) Release() {
	releaseAll(a.m)
	releaseAll(a.v)
	if a.num != nil {
		a.num.Release()
		a.den.Release()
		a.num, a.den = nil, nil
	}
}
