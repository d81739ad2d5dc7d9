package train_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaonet-ml/xiaonet/internal/graph"
	"github.com/xiaonet-ml/xiaonet/internal/nn"
	"github.com/xiaonet-ml/xiaonet/internal/tensor"
	"github.com/xiaonet-ml/xiaonet/internal/train"
)

// chain is a 1-sample, 2-feature, 2-neuron, 2-class graph with the
// caller's parameter tensors.
type chain struct {
	g              *graph.Graph
	input          *nn.Input
	w1, b1, w2, b2 *tensor.Tensor
	x, target      *tensor.Tensor
}

func mustTensor(t *testing.T, data []float64, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	tt, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return tt
}

// buildChain wires Input → Hidden → Softmax → CrossEntropy with
// non-zero parameters so every harvested gradient is non-zero.
func buildChain(t *testing.T) *chain {
	t.Helper()

	c := &chain{
		w1:     mustTensor(t, []float64{0.1, 0.2, 0.3, 0.4}, tensor.Shape{1, 2, 2}),
		b1:     mustTensor(t, []float64{0.1, 0.2}, tensor.Shape{1, 2}),
		w2:     mustTensor(t, []float64{0.5, 0.6, 0.7, 0.8}, tensor.Shape{1, 2, 2}),
		b2:     mustTensor(t, []float64{0.3, 0.4}, tensor.Shape{1, 2}),
		x:      mustTensor(t, []float64{1, 2}, tensor.Shape{1, 2}),
		target: mustTensor(t, []float64{1, 0}, tensor.Shape{1, 2}),
	}

	input, err := nn.NewInput(c.w1, c.b1)
	require.NoError(t, err)
	hidden, err := nn.NewHidden(input, c.w2, c.b2)
	require.NoError(t, err)
	softmax := nn.NewSoftmax(hidden)
	loss := nn.NewCrossEntropy(softmax)

	g, err := graph.New([]graph.Entry{input}, loss)
	require.NoError(t, err)

	c.g = g
	c.input = input
	return c
}

// zeroChain is buildChain with all parameters zero, so the affine
// outputs are zero and the loss is exactly log(2).
func zeroChain(t *testing.T) *chain {
	t.Helper()

	c := &chain{
		w1:     tensor.Zeros(tensor.Shape{1, 2, 2}),
		b1:     tensor.Zeros(tensor.Shape{1, 2}),
		w2:     tensor.Zeros(tensor.Shape{1, 2, 2}),
		b2:     tensor.Zeros(tensor.Shape{1, 2}),
		x:      mustTensor(t, []float64{1, 2}, tensor.Shape{1, 2}),
		target: mustTensor(t, []float64{1, 0}, tensor.Shape{1, 2}),
	}

	input, err := nn.NewInput(c.w1, c.b1)
	require.NoError(t, err)
	hidden, err := nn.NewHidden(input, c.w2, c.b2)
	require.NoError(t, err)
	loss := nn.NewCrossEntropy(nn.NewSoftmax(hidden))

	g, err := graph.New([]graph.Entry{input}, loss)
	require.NoError(t, err)

	c.g = g
	c.input = input
	return c
}

func TestNewSGD_DefaultLR(t *testing.T) {
	sgd := train.NewSGD(train.Config{})
	assert.Equal(t, 1e-4, sgd.LR())

	sgd.SetLR(0.5)
	assert.Equal(t, 0.5, sgd.LR())
}

func TestSGD_Step_LossOnZeroParameters(t *testing.T) {
	c := zeroChain(t)
	sgd := train.NewSGD(train.Config{LR: 0.1})

	loss, err := sgd.Step(c.g, graph.Feed{c.input: c.x}, c.target, nil)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(2), loss, 1e-12)
}

func TestSGD_Step_UpdatesMatchingTrainables(t *testing.T) {
	c := buildChain(t)

	// Trainables shaped like the harvested gradient sequence:
	// (Wgrad, bgrad) per affine layer in forward order.
	trainables := []*tensor.Tensor{
		tensor.Zeros(tensor.Shape{1, 2}),
		tensor.Zeros(tensor.Shape{1}),
		tensor.Zeros(tensor.Shape{1, 2}),
		tensor.Zeros(tensor.Shape{1}),
	}

	var updates int
	sgd := train.NewSGD(train.Config{
		LR:    0.1,
		Hooks: train.Hooks{OnUpdate: func(int, tensor.Shape) { updates++ }},
	})

	_, err := sgd.Step(c.g, graph.Feed{c.input: c.x}, c.target, trainables)
	require.NoError(t, err)

	assert.Equal(t, 4, updates)
	changed := false
	for _, tr := range trainables {
		for _, v := range tr.Data() {
			if v != 0 {
				changed = true
			}
		}
	}
	assert.True(t, changed, "at least one matching trainable must be updated")
}

func TestSGD_Step_SkipsMismatchedTrainables(t *testing.T) {
	c := buildChain(t)

	// The raw parameter tensors never match the harvested gradient
	// shapes; every position must be skipped without corruption.
	trainables := []*tensor.Tensor{c.w1, c.b1, c.w2, c.b2}
	before := []*tensor.Tensor{c.w1.Clone(), c.b1.Clone(), c.w2.Clone(), c.b2.Clone()}

	var skips, updates int
	sgd := train.NewSGD(train.Config{
		LR: 0.1,
		Hooks: train.Hooks{
			OnUpdate: func(int, tensor.Shape) { updates++ },
			OnSkip:   func(int, tensor.Shape, tensor.Shape) { skips++ },
		},
	})

	loss1, err := sgd.Step(c.g, graph.Feed{c.input: c.x}, c.target, trainables)
	require.NoError(t, err)
	loss2, err := sgd.Step(c.g, graph.Feed{c.input: c.x}, c.target, trainables)
	require.NoError(t, err)

	assert.Equal(t, 0, updates)
	assert.Equal(t, 8, skips)
	assert.Equal(t, loss1, loss2, "skipped updates must leave the loss unchanged")
	for i, tr := range trainables {
		assert.Equal(t, before[i].Data(), tr.Data())
	}
}

func TestSGD_Step_ExtraTrainablePositionsSkipped(t *testing.T) {
	c := buildChain(t)

	trainables := []*tensor.Tensor{
		tensor.Zeros(tensor.Shape{1, 2}),
		tensor.Zeros(tensor.Shape{1}),
		tensor.Zeros(tensor.Shape{1, 2}),
		tensor.Zeros(tensor.Shape{1}),
		tensor.Zeros(tensor.Shape{3, 3}), // beyond the harvested sequence
	}

	var skippedPos []int
	var nilGrads int
	sgd := train.NewSGD(train.Config{
		LR: 0.1,
		Hooks: train.Hooks{
			OnSkip: func(pos int, _, grad tensor.Shape) {
				skippedPos = append(skippedPos, pos)
				if grad == nil {
					nilGrads++
				}
			},
		},
	})

	_, err := sgd.Step(c.g, graph.Feed{c.input: c.x}, c.target, trainables)
	require.NoError(t, err)

	assert.Equal(t, []int{4}, skippedPos)
	assert.Equal(t, 1, nilGrads)
}

func TestSGD_Step_SameFeedTwiceMakesProgress(t *testing.T) {
	c := buildChain(t)

	trainables := []*tensor.Tensor{
		tensor.Zeros(tensor.Shape{1, 2}),
		tensor.Zeros(tensor.Shape{1}),
		tensor.Zeros(tensor.Shape{1, 2}),
		tensor.Zeros(tensor.Shape{1}),
	}
	sgd := train.NewSGD(train.Config{LR: 0.1})

	_, err := sgd.Step(c.g, graph.Feed{c.input: c.x}, c.target, trainables)
	require.NoError(t, err)
	first := trainables[0].Clone()

	_, err = sgd.Step(c.g, graph.Feed{c.input: c.x}, c.target, trainables)
	require.NoError(t, err)

	assert.NotEqual(t, first.Data(), trainables[0].Data())
}

func TestSGD_Step_PropagatesPlanError(t *testing.T) {
	c := buildChain(t)
	sgd := train.NewSGD(train.Config{LR: 0.1})

	_, err := sgd.Step(c.g, graph.Feed{}, c.target, nil)
	require.Error(t, err)
}

func TestSGD_Step_BadFeedShapeRejected(t *testing.T) {
	c := buildChain(t)
	sgd := train.NewSGD(train.Config{LR: 0.1})

	bad := tensor.Zeros(tensor.Shape{1, 5})
	_, err := sgd.Step(c.g, graph.Feed{c.input: bad}, c.target, nil)
	require.Error(t, err)
}
