package nn

import (
	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/tensor"
)

// scratch returns *slot, creating an empty tensor on ctx the first time.
// Factors keep their temporaries across invocations so steady-state passes
// allocate nothing.
func scratch[M backend.Mode, T tensor.Float](slot **tensor.Dense[M, T], ctx *backend.Context) *tensor.Dense[M, T] {
	if *slot == nil {
		*slot = tensor.New[M, T](ctx, 0, 0)
	}
	return *slot
}

// release frees every non-nil scratch tensor and clears its slot.
func release[M backend.Mode, T tensor.Float](slots ...**tensor.Dense[M, T]) {
	for _, s := range slots {
		if *s != nil {
			(*s).Release()
			*s = nil
		}
	}
}
