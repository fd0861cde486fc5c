package graph

import (
	"log/slog"

	"github.com/born-ml/gnn/internal/contract"
)

// Tape records factor invocations and replays them forward and backward.
//
// Invocations run in insertion order; the caller is responsible for adding
// them in a valid topological order.
//
// Usage:
//
//	tape := graph.NewTape()
//	tape.Add(matmul, []graph.Variable{x, w}, []graph.Variable{logits})
//	tape.Add(loss, []graph.Variable{logits, labels}, []graph.Variable{out})
//	for range epochs {
//		tape.Forward()
//		tape.ZeroGrad()
//		tape.Backward(out)
//	}
type Tape struct {
	nodes  []invocation
	needs  map[Variable]bool
	logger *slog.Logger
}

// invocation is one recorded factor call.
type invocation struct {
	factor   Factor
	operands []Variable
	outputs  []Variable
	isConst  []bool
	active   bool // some output needs a gradient
}

// TapeOption configures a Tape.
type TapeOption func(*Tape)

// WithTapeLogger sets the logger used for Debug pass summaries.
func WithTapeLogger(l *slog.Logger) TapeOption {
	return func(t *Tape) { t.logger = l }
}

// NewTape creates an empty tape.
func NewTape(opts ...TapeOption) *Tape {
	t := &Tape{
		nodes:  make([]invocation, 0, 16),
		needs:  make(map[Variable]bool),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Add appends an invocation of f.
//
// Gradient needs are resolved here: an operand needs a gradient if it was
// marked with RequireGrad or is the output of an earlier active invocation;
// an output needs one if f propagates errors and any operand needs one.
func (t *Tape) Add(f Factor, operands, outputs []Variable) {
	contract.Require(f != nil, "tape: nil factor")

	isConst := make([]bool, len(operands))
	anyNeeds := false
	for i, v := range operands {
		n := t.needsGrad(v)
		isConst[i] = !n
		anyNeeds = anyNeeds || n
	}

	active := anyNeeds && f.PropErr() == PropErrTrue
	for _, v := range outputs {
		if active {
			_, ok := v.(gradVariable)
			contract.Require(ok, "tape: output %q of %s cannot carry a gradient", v.Name(), f.StrType())
		}
		t.needs[v] = active || t.needs[v]
	}

	t.nodes = append(t.nodes, invocation{
		factor:   f,
		operands: operands,
		outputs:  outputs,
		isConst:  isConst,
		active:   active,
	})
}

// Len returns the number of recorded invocations.
func (t *Tape) Len() int {
	return len(t.nodes)
}

// NeedsGrad reports whether Backward will accumulate into v's gradient.
func (t *Tape) NeedsGrad(v Variable) bool {
	return t.needsGrad(v)
}

// Forward runs every invocation in insertion order.
func (t *Tape) Forward() {
	for _, n := range t.nodes {
		n.factor.Forward(n.operands, n.outputs)
	}
}

// ZeroGrad clears the gradient of every variable Backward will touch.
// Call it after Forward and before Backward, once per iteration.
func (t *Tape) ZeroGrad() {
	seen := make(map[Variable]bool)
	for _, n := range t.nodes {
		for _, v := range n.operands {
			t.zero(v, seen)
		}
		for _, v := range n.outputs {
			t.zero(v, seen)
		}
	}
}

func (t *Tape) zero(v Variable, seen map[Variable]bool) {
	if seen[v] || !t.needsGrad(v) {
		return
	}
	seen[v] = true
	v.(gradVariable).ZeroGrad()
}

// Backward seeds each seed's gradient with ones and runs the active
// invocations in reverse order. Invocations whose outputs need no gradient
// are skipped.
func (t *Tape) Backward(seeds ...Variable) {
	for _, s := range seeds {
		g, ok := s.(gradVariable)
		contract.Require(ok, "tape: seed %q cannot carry a gradient", s.Name())
		g.SeedGrad()
	}

	skipped := 0
	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := t.nodes[i]
		if !n.active {
			skipped++
			continue
		}
		n.factor.Backward(n.operands, n.isConst, n.outputs)
	}

	t.logger.Debug("tape backward pass",
		"invocations", len(t.nodes), "skipped", skipped, "seeds", len(seeds))
}

// Reset removes all invocations.
func (t *Tape) Reset() {
	t.nodes = t.nodes[:0]
	clear(t.needs)
}

func (t *Tape) needsGrad(v Variable) bool {
	if n, ok := t.needs[v]; ok && n {
		return true
	}
	g, ok := v.(gradVariable)
	return ok && g.RequiresGrad()
}
