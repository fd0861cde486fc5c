// Package graph defines graph variables, the operator-node (factor) contract
// and a minimal tape that runs factor invocations forward and backward.
package graph

import (
	"fmt"

	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/contract"
	"github.com/born-ml/gnn/internal/tensor"
)

// PropErr controls whether gradients propagate through a factor.
type PropErr int

const (
	// PropErrTrue propagates gradients to the factor's operands.
	PropErrTrue PropErr = iota
	// PropErrFalse stops gradients at the factor's outputs.
	PropErrFalse
)

func (p PropErr) String() string {
	switch p {
	case PropErrTrue:
		return "PropErrTrue"
	case PropErrFalse:
		return "PropErrFalse"
	default:
		return fmt.Sprintf("PropErr(%d)", int(p))
	}
}

// Factor is an operator node.
//
// A factor holds only hyperparameters and scratch tensors; the variables it
// reads and writes are passed on every call. For a given output set, Forward
// always runs before Backward.
//
// Forward computes outputs' values from operands' values and touches no
// gradient. Backward adds into the gradient of every operand whose isConst
// flag is false and leaves constant operands' gradients untouched. Neither
// mutates any variable's value.
type Factor interface {
	Name() string
	StrType() string
	PropErr() PropErr
	Forward(operands, outputs []Variable)
	Backward(operands []Variable, isConst []bool, outputs []Variable)
}

// Base carries the name and PropErr shared by all factors.
type Base struct {
	name    string
	propErr PropErr
}

// NewBase creates a Base.
func NewBase(name string, propErr PropErr) Base {
	return Base{name: name, propErr: propErr}
}

// Name returns the factor's name.
func (b Base) Name() string { return b.name }

// PropErr returns the factor's propagation mode.
func (b Base) PropErr() PropErr { return b.propErr }

// Require fails with a message tagged by f's type and name unless cond holds.
func Require(f Factor, cond bool, format string, args ...any) {
	if !cond {
		contract.Fail("%s %q: %s", f.StrType(), f.Name(), fmt.Sprintf(format, args...))
	}
}

// CheckArity fails unless exactly nOperands operands and nOutputs outputs are given.
func CheckArity(f Factor, operands, outputs []Variable, nOperands, nOutputs int) {
	Require(f, len(operands) == nOperands, "unexpected input size %d, want %d", len(operands), nOperands)
	Require(f, len(outputs) == nOutputs, "unexpected output size %d, want %d", len(outputs), nOutputs)
}

// CheckBackward runs CheckArity and checks that isConst matches operands.
func CheckBackward(f Factor, operands []Variable, isConst []bool, outputs []Variable, nOperands, nOutputs int) {
	CheckArity(f, operands, outputs, nOperands, nOutputs)
	Require(f, len(isConst) == len(operands), "%d isConst flags for %d operands", len(isConst), len(operands))
}

// DenseOf returns v as a dense variable of f's instantiation.
func DenseOf[M backend.Mode, T tensor.Float](f Factor, v Variable) *DTensorVar[M, T] {
	d, ok := v.(*DTensorVar[M, T])
	Require(f, ok, "variable %q is %T, want %T", nameOf(v), v, d)
	return d
}

// SparseOf returns v as a sparse variable of f's instantiation.
func SparseOf[M backend.Mode, T tensor.Float](f Factor, v Variable) *SpTensorVar[M, T] {
	s, ok := v.(*SpTensorVar[M, T])
	Require(f, ok, "variable %q is %T, want %T", nameOf(v), v, s)
	return s
}

func nameOf(v Variable) string {
	if v == nil {
		return "<nil>"
	}
	return v.Name()
}
