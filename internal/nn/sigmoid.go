package nn

import (
	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/graph"
	"github.com/born-ml/gnn/internal/tensor"
)

// Sigmoid applies σ(x) = 1 / (1 + exp(-x)) element by element.
//
// Backward uses the output: dx += dy * out * (1 - out).
type Sigmoid[M backend.Mode, T tensor.Float] struct {
	graph.Base

	tmp *tensor.Dense[M, T]
}

// NewSigmoid creates a sigmoid factor.
func NewSigmoid[M backend.Mode, T tensor.Float](name string, propErr graph.PropErr) *Sigmoid[M, T] {
	return &Sigmoid[M, T]{Base: graph.NewBase(name, propErr)}
}

// StrType returns "Sigmoid".
func (f *Sigmoid[M, T]) StrType() string { return "Sigmoid" }

// Forward computes outputs[0] = σ(operands[0]).
func (f *Sigmoid[M, T]) Forward(operands, outputs []graph.Variable) {
	graph.CheckArity(f, operands, outputs, 1, 1)
	x := graph.DenseOf[M, T](f, operands[0]).Value
	out := graph.DenseOf[M, T](f, outputs[0]).Value

	out.CopyFrom(x)
	out.Sigmoid()
}

// Backward accumulates the operand's gradient.
func (f *Sigmoid[M, T]) Backward(operands []graph.Variable, isConst []bool, outputs []graph.Variable) {
	graph.CheckBackward(f, operands, isConst, outputs, 1, 1)
	if isConst[0] {
		return
	}
	x := graph.DenseOf[M, T](f, operands[0])
	out := graph.DenseOf[M, T](f, outputs[0])

	tmp := scratch(&f.tmp, out.Value.Context())
	tmp.CopyFrom(out.Value)
	tmp.Scale(-1)
	tmp.Add(1)
	tmp.ElewiseMul(out.Value)
	tmp.ElewiseMul(out.Grad)
	x.Grad.Axpy(1, tmp)
}

// Release frees the factor's scratch tensor.
func (f *Sigmoid[M, T]) Release() {
	release(&f.tmp)
}
