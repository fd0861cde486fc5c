package nn_test

import (
	"math"
	"testing"

	"github.com/born-ml/gnn/internal/backend"
	"github.com/born-ml/gnn/internal/graph"
	"github.com/born-ml/gnn/internal/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogLossForward[M backend.Mode](t *testing.T, ctx *backend.Context) {
	loss := nn.NewBinaryLogLoss[M, float64]("loss", false, graph.PropErrTrue)
	pred := denseVar[M](t, ctx, "p", []float64{0.8, 0.8, 0.5}, 3, 1)
	label := denseVar[M](t, ctx, "y", []float64{1, 0, 1}, 3, 1)
	out := emptyVar[M, float64](ctx, "out")

	loss.Forward(vars(pred, label), vars(out))

	require.Equal(t, 3, out.Value.Rows())
	require.Equal(t, 1, out.Value.Cols())
	assert.InDeltaSlice(t, []float64{-math.Log(0.8), -math.Log(0.2), math.Ln2}, out.Value.ToHost(), 1e-12)
	assert.InDelta(t, 0.2231, out.Value.ToHost()[0], 1e-4)
	assert.InDelta(t, 1.6094, out.Value.ToHost()[1], 1e-4)
	assert.Equal(t, []float64{0.8, 0.8, 0.5}, pred.Value.ToHost(), "forward leaves operands untouched")
	assert.Equal(t, "BinaryLogLoss", loss.StrType())
	assert.Equal(t, "loss", loss.Name())
	assert.Equal(t, graph.PropErrTrue, loss.PropErr())
}

func TestBinaryLogLoss_Forward(t *testing.T) {
	onBothBackends(t, testLogLossForward[backend.CPU], testLogLossForward[backend.GPU])
}

func testLogLossSigmoidForward[M backend.Mode](t *testing.T, ctx *backend.Context) {
	loss := nn.NewBinaryLogLoss[M, float32]("loss", true, graph.PropErrTrue)
	logit := denseVar[M](t, ctx, "z", []float32{0, float32(math.Log(4))}, 2, 1)
	label := denseVar[M](t, ctx, "y", []float32{1, 1}, 2, 1)
	out := emptyVar[M, float32](ctx, "out")

	loss.Forward(vars(logit, label), vars(out))

	assert.InDeltaSlice(t, []float32{float32(math.Ln2), float32(-math.Log(0.8))}, out.Value.ToHost(), 1e-6)
	assert.Equal(t, []float32{0, float32(math.Log(4))}, logit.Value.ToHost(), "sigmoid is applied to scratch")
	assert.True(t, loss.NeedSigmoid())
}

func TestBinaryLogLoss_SigmoidForward(t *testing.T) {
	onBothBackends(t, testLogLossSigmoidForward[backend.CPU], testLogLossSigmoidForward[backend.GPU])
}

func testLogLossSigmoidBackward[M backend.Mode](t *testing.T, ctx *backend.Context) {
	z := []float64{-2, -0.5, 0, 0.5, 3}
	y := []float64{0, 1, 1, 0, 1}
	g := []float64{1, 0.5, -2, 3, 0.25}

	loss := nn.NewBinaryLogLoss[M, float64]("loss", true, graph.PropErrTrue)
	logit := denseVar[M](t, ctx, "z", z, 5, 1)
	label := denseVar[M](t, ctx, "y", y, 5, 1)
	out := emptyVar[M, float64](ctx, "out")

	loss.Forward(vars(logit, label), vars(out))
	out.ZeroGrad()
	out.Grad.SetData(g)
	logit.ZeroGrad()

	loss.Backward(vars(logit, label), []bool{false, true}, vars(out))

	want := make([]float64, len(z))
	for i := range z {
		p := 1 / (1 + math.Exp(-z[i]))
		want[i] = (p - y[i]) * g[i]
	}
	assert.InDeltaSlice(t, want, logit.Grad.ToHost(), 1e-12)
	assert.Equal(t, z, logit.Value.ToHost())
	assert.Equal(t, g, out.Grad.ToHost())

	// A second Backward accumulates rather than overwrites.
	loss.Backward(vars(logit, label), []bool{false, true}, vars(out))
	for i := range want {
		want[i] *= 2
	}
	assert.InDeltaSlice(t, want, logit.Grad.ToHost(), 1e-12)
}

func TestBinaryLogLoss_SigmoidBackward(t *testing.T) {
	onBothBackends(t, testLogLossSigmoidBackward[backend.CPU], testLogLossSigmoidBackward[backend.GPU])
}

func testLogLossProbBackward[M backend.Mode](t *testing.T, ctx *backend.Context) {
	p := []float64{0.1, 0.4, 0.8, 0.95}
	y := []float64{0, 1, 1, 0}
	g := []float64{2, -1, 0.5, 1}

	loss := nn.NewBinaryLogLoss[M, float64]("loss", false, graph.PropErrTrue)
	pred := denseVar[M](t, ctx, "p", p, 4, 1)
	label := denseVar[M](t, ctx, "y", y, 4, 1)
	out := emptyVar[M, float64](ctx, "out")

	loss.Forward(vars(pred, label), vars(out))
	out.ZeroGrad()
	out.Grad.SetData(g)
	pred.FillGrad(1)

	loss.Backward(vars(pred, label), []bool{false, true}, vars(out))

	want := make([]float64, len(p))
	for i := range p {
		want[i] = 1 + (p[i]-y[i])/(p[i]*(1-p[i]))*g[i]
	}
	assert.InDeltaSlice(t, want, pred.Grad.ToHost(), 1e-9)
	assert.Equal(t, p, pred.Value.ToHost(), "backward must not mutate the prediction")
}

func TestBinaryLogLoss_ProbBackward(t *testing.T) {
	onBothBackends(t, testLogLossProbBackward[backend.CPU], testLogLossProbBackward[backend.GPU])
}

func testLogLossConstOperand[M backend.Mode](t *testing.T, ctx *backend.Context) {
	for _, needSigmoid := range []bool{false, true} {
		loss := nn.NewBinaryLogLoss[M, float32]("loss", needSigmoid, graph.PropErrTrue)
		pred := denseVar[M](t, ctx, "p", []float32{0.3, 0.6}, 2, 1)
		label := denseVar[M](t, ctx, "y", []float32{1, 0}, 2, 1)
		out := emptyVar[M, float32](ctx, "out")

		loss.Forward(vars(pred, label), vars(out))
		out.FillGrad(1)
		pred.FillGrad(float32(math.NaN()))
		label.FillGrad(7)
		before := pred.Grad.ToHost()

		loss.Backward(vars(pred, label), []bool{true, true}, vars(out))

		after := pred.Grad.ToHost()
		require.Len(t, after, len(before))
		for i := range before {
			assert.Equal(t, math.Float32bits(before[i]), math.Float32bits(after[i]), "constant grad must be byte-identical")
		}
		assert.Equal(t, []float32{7, 7}, label.Grad.ToHost())
		loss.Release()
	}
}

func TestBinaryLogLoss_ConstOperand(t *testing.T) {
	onBothBackends(t, testLogLossConstOperand[backend.CPU], testLogLossConstOperand[backend.GPU])
}

func TestBinaryLogLoss_Contract(t *testing.T) {
	ctx := backend.NewHost()
	defer ctx.Close()

	loss := nn.NewBinaryLogLoss[backend.CPU, float64]("bce", true, graph.PropErrTrue)
	pred := denseVar[backend.CPU](t, ctx, "p", []float64{0.5, 0.5}, 2, 1)
	label := denseVar[backend.CPU](t, ctx, "y", []float64{1, 0}, 2, 1)
	wide := denseVar[backend.CPU](t, ctx, "w", []float64{1, 0}, 1, 2)
	out := emptyVar[backend.CPU, float64](ctx, "out")

	msg := violationMessage(t, func() { loss.Forward(vars(pred), vars(out)) })
	assert.Contains(t, msg, `BinaryLogLoss "bce"`)
	assert.Contains(t, msg, "unexpected input size")

	msg = violationMessage(t, func() { loss.Forward(vars(pred, label), vars(out, out)) })
	assert.Contains(t, msg, "unexpected output size")

	msg = violationMessage(t, func() { loss.Forward(vars(wide, label), vars(out)) })
	assert.Contains(t, msg, "# columns should be 1")

	msg = violationMessage(t, func() { loss.Backward(vars(pred, label), []bool{false}, vars(out)) })
	assert.Contains(t, msg, "isConst")
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func testLogLossSharedNode[M backend.Mode](t *testing.T, ctx *backend.Context) {
	loss := nn.NewBinaryLogLoss[M, float64]("bce", true, graph.PropErrTrue)
	defer loss.Release()

	za := denseVar[M](t, ctx, "za", []float64{0}, 1, 1).RequireGrad()
	zb := denseVar[M](t, ctx, "zb", []float64{3}, 1, 1).RequireGrad()
	label := denseVar[M](t, ctx, "y", []float64{1}, 1, 1)
	outA := emptyVar[M, float64](ctx, "outA")
	outB := emptyVar[M, float64](ctx, "outB")

	tape := graph.NewTape()
	tape.Add(loss, vars(za, label), vars(outA))
	tape.Add(loss, vars(zb, label), vars(outB))
	tape.Forward()
	tape.ZeroGrad()
	tape.Backward(outA, outB)

	assert.InDeltaSlice(t, []float64{sigmoid(0) - 1}, za.Grad.ToHost(), 1e-12)
	assert.InDeltaSlice(t, []float64{sigmoid(3) - 1}, zb.Grad.ToHost(), 1e-12)

	// Backward of the first invocation after the node ran forward on the second.
	za.ZeroGrad()
	loss.Forward(vars(za, label), vars(outA))
	loss.Forward(vars(zb, label), vars(outB))
	loss.Backward(vars(za, label), []bool{false, true}, vars(outA))
	assert.InDeltaSlice(t, []float64{-0.5}, za.Grad.ToHost(), 1e-12)
}

func TestBinaryLogLoss_SharedNode(t *testing.T) {
	onBothBackends(t, testLogLossSharedNode[backend.CPU], testLogLossSharedNode[backend.GPU])
}
