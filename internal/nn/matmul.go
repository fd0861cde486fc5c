package nn

import (
	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/graph"
	"github.com/born-ml/gnn/internal/tensor"
)

// MatMul computes out = A · B.
//
// A may be a dense or a sparse variable; B is dense. A sparse A is always
// constant (graph adjacency, sparse features), so only B receives a gradient
// in that case:
//
//	dA += dOut · Bᵀ
//	dB += Aᵀ · dOut
type MatMul[M backend.Mode, T tensor.Float] struct {
	graph.Base
}

// NewMatMul creates a matrix-product factor.
func NewMatMul[M backend.Mode, T tensor.Float](name string, propErr graph.PropErr) *MatMul[M, T] {
	return &MatMul[M, T]{Base: graph.NewBase(name, propErr)}
}

// StrType returns "MatMul".
func (f *MatMul[M, T]) StrType() string { return "MatMul" }

// Forward computes outputs[0] = operands[0] · operands[1].
func (f *MatMul[M, T]) Forward(operands, outputs []graph.Variable) {
	graph.CheckArity(f, operands, outputs, 2, 1)
	b := graph.DenseOf[M, T](f, operands[1]).Value
	out := graph.DenseOf[M, T](f, outputs[0]).Value

	switch a := operands[0].(type) {
	case *graph.SpTensorVar[M, T]:
		graph.Require(f, a.Value.Cols() == b.Rows(),
			"cannot multiply [%d %d] by %v", a.Value.Rows(), a.Value.Cols(), b.Shape())
		out.SparseMM(a.Value, b, false, 1, 0)
	default:
		av := graph.DenseOf[M, T](f, a).Value
		graph.Require(f, av.Cols() == b.Rows(), "cannot multiply %v by %v", av.Shape(), b.Shape())
		out.MM(av, b, false, false, 1, 0)
	}
}

// Backward accumulates the gradients of non-constant operands.
func (f *MatMul[M, T]) Backward(operands []graph.Variable, isConst []bool, outputs []graph.Variable) {
	graph.CheckBackward(f, operands, isConst, outputs, 2, 1)
	b := graph.DenseOf[M, T](f, operands[1])
	gradOut := graph.DenseOf[M, T](f, outputs[0]).Grad

	switch a := operands[0].(type) {
	case *graph.SpTensorVar[M, T]:
		graph.Require(f, isConst[0], "sparse operand %q must be constant", a.Name())
		if !isConst[1] {
			b.Grad.SparseMM(a.Value, gradOut, true, 1, 1)
		}
	default:
		ad := graph.DenseOf[M, T](f, a)
		if !isConst[0] {
			ad.Grad.MM(gradOut, b.Value, false, true, 1, 1)
		}
		if !isConst[1] {
			b.Grad.MM(ad.Value, gradOut, true, false, 1, 1)
		}
	}
}
