package tensor

import (
	"fmt"

	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/contract"
	"github.com/born-ml/gnn/internal/parallel"
	"github.com/born-ml/gnn/internal/storage"
)

// Sparse is a rows x cols matrix in compressed-row layout.
//
// After construction and after every resize, RowPtr has Rows()+1 entries, is
// non-decreasing, ends at NNZ(), and every column index lies in [0, Cols()).
type Sparse[M backend.Mode, T Float] struct {
	ctx  *backend.Context
	data *storage.Sparse[M, T]
	rows int
	cols int
}

// NewSparse creates an empty sparse tensor with the given capacities.
func NewSparse[M backend.Mode, T Float](ctx *backend.Context, nzCap, ptrCap int) *Sparse[M, T] {
	s := &Sparse[M, T]{
		ctx:  ctx,
		data: storage.NewSparse[M, T](ctx, nzCap, max(ptrCap, 1)),
	}
	s.ResizeSp(0, 0, 0)
	return s
}

// SparseFromCSR creates a sparse tensor holding a copy of the given CSR arrays.
func SparseFromCSR[M backend.Mode, T Float](ctx *backend.Context, rows, cols int,
	val []T, colIdx, rowPtr []int32,
) *Sparse[M, T] {
	s := NewSparse[M, T](ctx, len(val), rows+1)
	s.SetCSR(rows, cols, val, colIdx, rowPtr)
	return s
}

// CheckCSR validates compressed-row arrays for a rows x cols matrix.
func CheckCSR(rows, cols int, nnz int, colIdx, rowPtr []int32) error {
	if rows < 0 || cols < 0 {
		return fmt.Errorf("invalid shape [%d %d]", rows, cols)
	}
	if len(rowPtr) != rows+1 {
		return fmt.Errorf("row pointer has %d entries, want %d", len(rowPtr), rows+1)
	}
	if len(colIdx) != nnz {
		return fmt.Errorf("%d column indices for %d values", len(colIdx), nnz)
	}
	if rowPtr[0] != 0 {
		return fmt.Errorf("row pointer starts at %d, want 0", rowPtr[0])
	}
	for i := 1; i <= rows; i++ {
		if rowPtr[i] < rowPtr[i-1] {
			return fmt.Errorf("row pointer decreases at row %d: %d < %d", i, rowPtr[i], rowPtr[i-1])
		}
	}
	if int(rowPtr[rows]) != nnz {
		return fmt.Errorf("row pointer ends at %d, want nnz %d", rowPtr[rows], nnz)
	}
	for k, c := range colIdx {
		if c < 0 || int(c) >= cols {
			return fmt.Errorf("column index %d at position %d out of range [0, %d)", c, k, cols)
		}
	}
	return nil
}

// SetCSR replaces the contents with copies of the given CSR arrays.
// Invalid arrays are a contract violation.
func (s *Sparse[M, T]) SetCSR(rows, cols int, val []T, colIdx, rowPtr []int32) {
	if err := CheckCSR(rows, cols, len(val), colIdx, rowPtr); err != nil {
		contract.Fail("SetCSR: %v", err)
	}
	s.reserve(len(val), rows+1)
	s.rows, s.cols = rows, cols

	stagedVal := append([]T(nil), val...)
	stagedCol := append([]int32(nil), colIdx...)
	stagedPtr := append([]int32(nil), rowPtr...)
	dv, dc, dp := s.data.Val(), s.data.ColIdx(), s.data.RowPtr()
	s.launch(func() {
		copy(dv, stagedVal)
		copy(dc, stagedCol)
		copy(dp, stagedPtr)
	})
}

// ResizeSp reshapes to rows x cols with room for nnz values.
// The structure is reset to a valid placeholder (every nonzero in the last
// row at column 0); callers overwrite it before use. Values are unspecified.
func (s *Sparse[M, T]) ResizeSp(rows, cols, nnz int) {
	contract.Require(rows >= 0 && cols >= 0 && nnz >= 0, "ResizeSp: invalid [%d %d] nnz=%d", rows, cols, nnz)
	contract.Require(nnz == 0 || (rows > 0 && cols > 0),
		"ResizeSp: %d nonzeros do not fit a [%d %d] matrix", nnz, rows, cols)
	s.reserve(nnz, rows+1)
	s.rows, s.cols = rows, cols

	dc, dp := s.data.ColIdx(), s.data.RowPtr()
	s.launch(func() {
		clear(dc)
		clear(dp[:rows])
		dp[rows] = int32(nnz)
	})
}

// Rows returns the number of rows.
func (s *Sparse[M, T]) Rows() int { return s.rows }

// Cols returns the number of columns.
func (s *Sparse[M, T]) Cols() int { return s.cols }

// NNZ returns the number of stored nonzeros.
func (s *Sparse[M, T]) NNZ() int { return s.data.NNZ() }

// Storage returns the underlying sparse storage.
func (s *Sparse[M, T]) Storage() *storage.Sparse[M, T] { return s.data }

// Context returns the backend runtime the tensor lives on.
func (s *Sparse[M, T]) Context() *backend.Context { return s.ctx }

// CSR waits for pending work and returns copies of the values, column indices
// and row pointer.
func (s *Sparse[M, T]) CSR() (val []T, colIdx, rowPtr []int32) {
	sv, sc, sp := s.data.Val(), s.data.ColIdx(), s.data.RowPtr()
	val = make([]T, len(sv))
	colIdx = make([]int32, len(sc))
	rowPtr = make([]int32, len(sp))
	s.launch(func() {
		copy(val, sv)
		copy(colIdx, sc)
		copy(rowPtr, sp)
	})
	s.ctx.Synchronize()
	return val, colIdx, rowPtr
}

// Validate checks the compressed-row invariants.
// A released tensor is the empty 0x0 matrix and is valid.
func (s *Sparse[M, T]) Validate() error {
	if s.data.Len() == 0 && s.rows == 0 && s.NNZ() == 0 {
		return nil
	}
	if s.data.Len() != s.rows+1 {
		return fmt.Errorf("row pointer length %d, want %d", s.data.Len(), s.rows+1)
	}
	_, colIdx, rowPtr := s.CSR()
	return CheckCSR(s.rows, s.cols, s.NNZ(), colIdx, rowPtr)
}

// ToDense writes the matrix into out, reshaping it to Rows() x Cols().
func (s *Sparse[M, T]) ToDense(out *Dense[M, T]) {
	out.Reshape(s.rows, s.cols)
	dst := out.data.Ptr()[:out.Len()]
	sv, sc, sp := s.data.Val(), s.data.ColIdx(), s.data.RowPtr()
	rows, cols := s.rows, s.cols
	s.launch(func() {
		clear(dst)
		for i := 0; i < rows; i++ {
			for k := sp[i]; k < sp[i+1]; k++ {
				dst[i*cols+int(sc[k])] += sv[k]
			}
		}
	})
}

// Release returns all three buffers to the pool and leaves an empty 0x0
// matrix that holds no row pointer. SetCSR or ResizeSp make it usable again.
func (s *Sparse[M, T]) Release() {
	s.data.Release()
	s.rows, s.cols = 0, 0
}

// String returns a human-readable description of the tensor.
func (s *Sparse[M, T]) String() string {
	var zero T
	return fmt.Sprintf("Sparse[%T][%d %d] nnz=%d on %s", zero, s.rows, s.cols, s.NNZ(), backend.DeviceOf[M]())
}

func (s *Sparse[M, T]) reserve(nnz, lenPtr int) {
	s.data.Reserve(nnz, lenPtr)
	s.data.SetSize(nnz, lenPtr)
}

func (s *Sparse[M, T]) launch(k func()) {
	backend.Launch[M](s.ctx, k)
}

// SparseMM computes t = alpha * op(a) * b + beta * t for sparse a, where
// op(a) is a or its transpose.
// With beta == 0 the receiver is reshaped to the product's shape; otherwise it
// must already have that shape.
func (t *Dense[M, T]) SparseMM(a *Sparse[M, T], b *Dense[M, T], transA bool, alpha, beta T) {
	m, k := a.Rows(), a.Cols()
	if transA {
		m, k = k, m
	}
	n := b.Cols()
	contract.Require(k == b.Rows(), "SparseMM: inner dimensions differ: op(a) is [%d %d], b is %v", m, k, b.shape)
	contract.Require(t != b, "SparseMM: output aliases an operand")

	if beta == 0 {
		t.Reshape(m, n)
	} else {
		contract.Require(t.Rows() == m && t.Cols() == n,
			"SparseMM: accumulating into %v, product is [%d %d]", t.shape, m, n)
	}

	cs := t.data.Ptr()[:t.Len()]
	bs := b.data.Ptr()[:b.Len()]
	sv, sc, sp := a.data.Val(), a.data.ColIdx(), a.data.RowPtr()
	rows := a.Rows()
	cfg := t.ctx.Parallel()

	t.launch(func() {
		scaleOrZero(beta, cs)
		if transA {
			// Scatter: rows of a map to rows of t, so rows cannot be split.
			for i := 0; i < rows; i++ {
				bRow := bs[i*n : (i+1)*n]
				for p := sp[i]; p < sp[i+1]; p++ {
					j := int(sc[p])
					axpy(alpha*sv[p], bRow, cs[j*n:(j+1)*n])
				}
			}
			return
		}
		parallel.ForRange(rows, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				cRow := cs[i*n : (i+1)*n]
				for p := sp[i]; p < sp[i+1]; p++ {
					j := int(sc[p])
					axpy(alpha*sv[p], bs[j*n:(j+1)*n], cRow)
				}
			}
		}, cfg)
	})
}
