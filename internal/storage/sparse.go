package storage

import (
	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/contract"
	"github.com/born-ml/gnn/internal/mem"
)

// Sparse holds a compressed-row matrix in three owned buffers: values,
// column indices (both nzCap long) and row offsets (ptrCap long).
//
// Invariant: Len() <= PtrCap() and NNZ() <= NzCap().
type Sparse[M backend.Mode, T DType] struct {
	pool *mem.Pool[[]byte]

	valBuf mem.Buffer[[]byte]
	colBuf mem.Buffer[[]byte]
	ptrBuf mem.Buffer[[]byte]

	val    []T
	colIdx []int32
	rowPtr []int32

	nnz    int
	lenPtr int
	nzCap  int
	ptrCap int
}

// NewSparse allocates a sparse storage with the given capacities.
func NewSparse[M backend.Mode, T DType](ctx *backend.Context, nzCap, ptrCap int) *Sparse[M, T] {
	backend.Check[M](ctx)
	s := &Sparse[M, T]{pool: ctx.Pool()}
	s.allocate(nzCap, ptrCap)
	return s
}

// Val returns the NNZ() stored values.
func (s *Sparse[M, T]) Val() []T { return s.val[:s.nnz] }

// ColIdx returns the NNZ() column indices.
func (s *Sparse[M, T]) ColIdx() []int32 { return s.colIdx[:s.nnz] }

// RowPtr returns the Len() row offsets.
func (s *Sparse[M, T]) RowPtr() []int32 { return s.rowPtr[:s.lenPtr] }

// NNZ returns the number of stored nonzeros.
func (s *Sparse[M, T]) NNZ() int { return s.nnz }

// Len returns the current row-pointer length.
func (s *Sparse[M, T]) Len() int { return s.lenPtr }

// NzCap returns the capacity of the value and index buffers.
func (s *Sparse[M, T]) NzCap() int { return s.nzCap }

// PtrCap returns the capacity of the row-pointer buffer.
func (s *Sparse[M, T]) PtrCap() int { return s.ptrCap }

// Reserve guarantees capacities of at least nzCap and ptrCap.
// When either must grow, all three buffers are recreated and the logical
// sizes reset to zero; otherwise nothing changes.
func (s *Sparse[M, T]) Reserve(nzCap, ptrCap int) {
	if nzCap <= s.nzCap && ptrCap <= s.ptrCap {
		return
	}
	nzCap = max(nzCap, s.nzCap)
	ptrCap = max(ptrCap, s.ptrCap)
	s.Release()
	s.allocate(nzCap, ptrCap)
}

// SetSize sets the logical nonzero count and row-pointer length.
func (s *Sparse[M, T]) SetSize(nnz, lenPtr int) {
	contract.Require(nnz >= 0 && nnz <= s.nzCap, "sparse storage: nnz %d exceeds capacity %d", nnz, s.nzCap)
	contract.Require(lenPtr >= 0 && lenPtr <= s.ptrCap,
		"sparse storage: row pointer length %d exceeds capacity %d", lenPtr, s.ptrCap)
	s.nnz = nnz
	s.lenPtr = lenPtr
}

// Release recycles all three buffers. Release is idempotent.
func (s *Sparse[M, T]) Release() {
	s.pool.Recycle(s.valBuf)
	s.pool.Recycle(s.colBuf)
	s.pool.Recycle(s.ptrBuf)
	*s = Sparse[M, T]{pool: s.pool}
}

func (s *Sparse[M, T]) allocate(nzCap, ptrCap int) {
	contract.Require(nzCap >= 0 && ptrCap >= 0, "sparse storage: invalid capacities nz=%d ptr=%d", nzCap, ptrCap)

	s.valBuf = s.pool.Allocate(nzCap * elemSize[T]())
	s.colBuf = s.pool.Allocate(nzCap * elemSize[int32]())
	s.ptrBuf = s.pool.Allocate(ptrCap * elemSize[int32]())

	s.val = typedSlice[T](s.valBuf.Handle, nzCap)
	s.colIdx = typedSlice[int32](s.colBuf.Handle, nzCap)
	s.rowPtr = typedSlice[int32](s.ptrBuf.Handle, ptrCap)

	s.nnz, s.lenPtr = 0, 0
	s.nzCap, s.ptrCap = nzCap, ptrCap
}
