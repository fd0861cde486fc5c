package nn

import (
	"math"

	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/graph"
	"github.com/born-ml/gnn/internal/tensor"
)

// BinaryLogLoss computes per-example binary cross-entropy.
//
// Operands: prediction and label, both column vectors. Output: a column
// vector of losses
//
//	loss_i = -y_i * log(p_i) - (1 - y_i) * log(1 - p_i)
//
// where p is the prediction itself, or sigmoid(prediction) when the factor
// was built with needSigmoid.
//
// Predictions must lie strictly inside (0, 1) after the optional sigmoid;
// log(0) and the division in the non-sigmoid backward are not guarded.
//
// Example:
//
//	loss := nn.NewBinaryLogLoss[backend.CPU, float32]("loss", true, graph.PropErrTrue)
//	loss.Forward([]graph.Variable{logits, labels}, []graph.Variable{out})
type BinaryLogLoss[M backend.Mode, T tensor.Float] struct {
	graph.Base
	needSigmoid bool

	probs    *tensor.Dense[M, T] // forward sigmoid(prediction), needSigmoid only
	tmp      *tensor.Dense[M, T]
	oneMinus *tensor.Dense[M, T]
}

// NewBinaryLogLoss creates a binary log-loss factor.
func NewBinaryLogLoss[M backend.Mode, T tensor.Float](name string, needSigmoid bool, propErr graph.PropErr) *BinaryLogLoss[M, T] {
	return &BinaryLogLoss[M, T]{
		Base:        graph.NewBase(name, propErr),
		needSigmoid: needSigmoid,
	}
}

// StrType returns "BinaryLogLoss".
func (f *BinaryLogLoss[M, T]) StrType() string { return "BinaryLogLoss" }

// NeedSigmoid reports whether the factor applies sigmoid to its prediction.
func (f *BinaryLogLoss[M, T]) NeedSigmoid() bool { return f.needSigmoid }

// Forward computes the loss of operands[0] against labels operands[1].
func (f *BinaryLogLoss[M, T]) Forward(operands, outputs []graph.Variable) {
	graph.CheckArity(f, operands, outputs, 2, 1)
	pred := graph.DenseOf[M, T](f, operands[0]).Value
	label := graph.DenseOf[M, T](f, operands[1]).Value
	out := graph.DenseOf[M, T](f, outputs[0]).Value
	graph.Require(f, pred.Cols() == 1 && label.Cols() == 1,
		"# columns should be 1, got prediction %v and label %v", pred.Shape(), label.Shape())
	graph.Require(f, pred.Rows() == label.Rows(),
		"prediction has %d rows, label has %d", pred.Rows(), label.Rows())

	probs := pred
	if f.needSigmoid {
		probs = scratch(&f.probs, pred.Context())
		probs.CopyFrom(pred)
		probs.Sigmoid()
	}
	out.BinaryMap(probs, label, logLoss[T])
}

// Backward accumulates the prediction's gradient. The label is never
// differentiated.
//
// With needSigmoid the gradient w.r.t. the raw logit is (p - y) * dOut.
// Otherwise it is (p - y) / (p * (1 - p)) * dOut in probability space.
func (f *BinaryLogLoss[M, T]) Backward(operands []graph.Variable, isConst []bool, outputs []graph.Variable) {
	graph.CheckBackward(f, operands, isConst, outputs, 2, 1)
	if isConst[0] {
		return
	}
	predVar := graph.DenseOf[M, T](f, operands[0])
	label := graph.DenseOf[M, T](f, operands[1]).Value
	gradOut := graph.DenseOf[M, T](f, outputs[0]).Grad
	pred := predVar.Value

	tmp := scratch(&f.tmp, pred.Context())
	if f.needSigmoid {
		// Recomputed from the operand: the node may have run Forward for
		// another invocation since this one.
		tmp.CopyFrom(pred)
		tmp.Sigmoid()
		tmp.Axpy(-1, label)
		tmp.ElewiseMul(gradOut)
		predVar.Grad.Axpy(1, tmp)
		return
	}

	oneMinus := scratch(&f.oneMinus, pred.Context())
	oneMinus.CopyFrom(pred)
	oneMinus.Scale(-1)
	oneMinus.Add(1)

	tmp.CopyFrom(pred)
	tmp.Axpy(-1, label)
	tmp.ElewiseDiv(pred)
	tmp.ElewiseDiv(oneMinus)
	tmp.ElewiseMul(gradOut)
	predVar.Grad.Axpy(1, tmp)
}

// Release frees the factor's scratch tensors.
func (f *BinaryLogLoss[M, T]) Release() {
	release(&f.probs, &f.tmp, &f.oneMinus)
}

func logLoss[T tensor.Float](p, y T) T {
	pf, yf := float64(p), float64(y)
	return T(-yf*math.Log(pf) - (1-yf)*math.Log(1-pf))
}
