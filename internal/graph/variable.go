package graph

import (
	"fmt"

	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/tensor"
)

// Variable is a named node of the computation graph.
// Factors receive variables as call arguments and type-assert them to the
// concrete kind they expect.
type Variable interface {
	Name() string
}

// gradVariable is a variable that can carry a gradient.
type gradVariable interface {
	Variable
	RequiresGrad() bool
	ZeroGrad()
	SeedGrad()
}

// DTensorVar is a dense variable with a value and a gradient of the same shape.
//
// Grad is sized lazily by ZeroGrad; until then it is empty.
type DTensorVar[M backend.Mode, T tensor.Float] struct {
	name         string
	requiresGrad bool

	Value *tensor.Dense[M, T]
	Grad  *tensor.Dense[M, T]
}

// NewDTensorVar creates a variable with a rows x cols value.
func NewDTensorVar[M backend.Mode, T tensor.Float](ctx *backend.Context, name string, rows, cols int) *DTensorVar[M, T] {
	return &DTensorVar[M, T]{
		name:  name,
		Value: tensor.New[M, T](ctx, rows, cols),
		Grad:  tensor.New[M, T](ctx, 0, 0),
	}
}

// WrapDense creates a variable whose value is the given tensor.
// The variable does not copy value; a RowRef view over a batch works too.
func WrapDense[M backend.Mode, T tensor.Float](name string, value *tensor.Dense[M, T]) *DTensorVar[M, T] {
	return &DTensorVar[M, T]{
		name:  name,
		Value: value,
		Grad:  tensor.New[M, T](value.Context(), 0, 0),
	}
}

// Name returns the variable's name.
func (v *DTensorVar[M, T]) Name() string { return v.name }

// RequireGrad marks v as a trainable leaf and returns it.
func (v *DTensorVar[M, T]) RequireGrad() *DTensorVar[M, T] {
	v.requiresGrad = true
	return v
}

// RequiresGrad reports whether v was marked trainable.
func (v *DTensorVar[M, T]) RequiresGrad() bool { return v.requiresGrad }

// ZeroGrad reshapes Grad to Value's shape and clears it.
func (v *DTensorVar[M, T]) ZeroGrad() {
	v.Grad.Reshape(v.Value.Rows(), v.Value.Cols())
	v.Grad.Zeros()
}

// SeedGrad reshapes Grad to Value's shape and fills it with ones.
func (v *DTensorVar[M, T]) SeedGrad() {
	v.FillGrad(1)
}

// FillGrad reshapes Grad to Value's shape and fills it with x.
func (v *DTensorVar[M, T]) FillGrad(x T) {
	v.Grad.Reshape(v.Value.Rows(), v.Value.Cols())
	v.Grad.Fill(x)
}

// Release returns both tensors' memory to the pool.
func (v *DTensorVar[M, T]) Release() {
	v.Value.Release()
	v.Grad.Release()
}

func (v *DTensorVar[M, T]) String() string {
	return fmt.Sprintf("DTensorVar(%s, %v)", v.name, v.Value.Shape())
}

// SpTensorVar is a sparse variable. It has no gradient and is always
// constant, typically a graph adjacency or a sparse feature matrix.
type SpTensorVar[M backend.Mode, T tensor.Float] struct {
	name string

	Value *tensor.Sparse[M, T]
}

// NewSpTensorVar creates an empty sparse variable.
func NewSpTensorVar[M backend.Mode, T tensor.Float](ctx *backend.Context, name string) *SpTensorVar[M, T] {
	return &SpTensorVar[M, T]{
		name:  name,
		Value: tensor.NewSparse[M, T](ctx, 0, 1),
	}
}

// WrapSparse creates a sparse variable over value.
func WrapSparse[M backend.Mode, T tensor.Float](name string, value *tensor.Sparse[M, T]) *SpTensorVar[M, T] {
	return &SpTensorVar[M, T]{name: name, Value: value}
}

// Name returns the variable's name.
func (v *SpTensorVar[M, T]) Name() string { return v.name }

// Release returns the value's memory to the pool.
func (v *SpTensorVar[M, T]) Release() {
	v.Value.Release()
}

func (v *SpTensorVar[M, T]) String() string {
	return fmt.Sprintf("SpTensorVar(%s, [%d %d] nnz=%d)", v.name, v.Value.Rows(), v.Value.Cols(), v.Value.NNZ())
}
