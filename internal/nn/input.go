package nn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/xiaonet-ml/xiaonet/internal/graph"
	"github.com/xiaonet-ml/xiaonet/internal/parallel"
	"github.com/xiaonet-ml/xiaonet/internal/tensor"
)

// Input is the graph's entry affine layer. It consumes an externally
// injected batch X and computes, per sample,
//
//	value[i] = X[i]·W[i] + bias[i]
//
// Weights are per-sample: W is shaped (numImages, numFeatures, numNeurons)
// and bias (numImages, numNeurons), one matrix and bias row per sample.
// The layer holds references to the caller's tensors and never mutates
// them itself; updates happen through the training driver.
//
// Example:
//
//	w := tensor.Randn(tensor.Shape{32, 784, 128})
//	b := tensor.Zeros(tensor.Shape{32, 128})
//	in, err := nn.NewInput(w, b)
type Input struct {
	graph.NodeBase

	w      *tensor.Tensor // (numImages, numFeatures, numNeurons)
	biases *tensor.Tensor // (numImages, numNeurons)

	numImages   int
	numFeatures int
	numNeurons  int

	x     *tensor.Tensor // (numImages, numFeatures), injected per step
	value *tensor.Tensor // (numImages, numNeurons)

	wGrad *tensor.Tensor // (numImages, numFeatures)
	bGrad *tensor.Tensor // (numImages)
	grad  *tensor.Tensor // (numImages, numFeatures)

	par parallel.Config
}

// NewInput creates an entry affine layer. The batch size, feature count,
// and neuron count are derived from the weight tensor's shape.
//
// Returns an error if weights are not 3-D or the bias shape does not
// agree with the weights.
func NewInput(weights, biases *tensor.Tensor) (*Input, error) {
	ws := weights.Shape()
	if len(ws) != 3 {
		return nil, fmt.Errorf("nn: Input weights must be 3-D (batch, features, neurons), got shape %v", ws)
	}
	numImages, numFeatures, numNeurons := ws[0], ws[1], ws[2]

	wantBias := tensor.Shape{numImages, numNeurons}
	if !biases.Shape().Equal(wantBias) {
		return nil, fmt.Errorf("nn: Input bias shape mismatch: expected %v, got %v", wantBias, biases.Shape())
	}

	return &Input{
		w:           weights,
		biases:      biases,
		numImages:   numImages,
		numFeatures: numFeatures,
		numNeurons:  numNeurons,
		value:       tensor.Zeros(tensor.Shape{numImages, numNeurons}),
		wGrad:       tensor.Zeros(tensor.Shape{numImages, numFeatures}),
		bGrad:       tensor.Zeros(tensor.Shape{numImages}),
		grad:        tensor.Zeros(tensor.Shape{numImages, numFeatures}),
		par:         batchLoop,
	}, nil
}

// SetBatch stores the externally supplied batch as this layer's input.
// Called by the scheduler during data injection, never by the driver.
//
// The batch must be shaped (numImages, numFeatures); a disagreeing shape
// is rejected, never truncated or broadcast.
func (l *Input) SetBatch(batch *tensor.Tensor) error {
	want := tensor.Shape{l.numImages, l.numFeatures}
	if !batch.Shape().Equal(want) {
		return fmt.Errorf("nn: Input batch shape mismatch: expected %v, got %v", want, batch.Shape())
	}
	l.x = batch
	return nil
}

// Forward computes value[i] = X[i]·W[i] + bias[i] for every sample.
// Panics if no batch has been injected.
func (l *Input) Forward() {
	if l.x == nil {
		panic("nn: Input batch not set before forward pass")
	}
	parallel.For(l.numImages, func(i int) {
		row := l.value.RowSlice(i)
		h := mat.NewVecDense(l.numNeurons, row)
		h.MulVec(l.w.Matrix(i).T(), l.x.Row(i))
		floats.Add(row, l.biases.RowSlice(i))
	}, l.par)
}

// Backward reads gradients from the unique successor and computes, per
// sample,
//
//	Wgrad[i] = W[i]·g[i]
//	bgrad[i] = g[i]·bias[i]
//	grad[i]  = Wgrad[i] * bgrad[i]   (elementwise scale)
//
// The result is this node's own gradient estimate, harvested by the
// training driver; Input has no predecessor to propagate to.
func (l *Input) Backward() {
	g := successorGrads(l)
	parallel.For(l.numImages, func(i int) {
		wg := l.wGrad.Row(i)
		wg.MulVec(l.w.Matrix(i), g.Row(i))
		bg := mat.Dot(g.Row(i), l.biases.Row(i))
		l.bGrad.Set(bg, i)
		floats.ScaleTo(l.grad.RowSlice(i), bg, l.wGrad.RowSlice(i))
	}, l.par)
}

// Value returns the output of the last forward pass.
func (l *Input) Value() *tensor.Tensor { return l.value }

// Grads returns the gradients of the last backward pass.
func (l *Input) Grads() *tensor.Tensor { return l.grad }

// ParamGrads returns the weight and bias gradients of the last backward
// pass, in that order.
func (l *Input) ParamGrads() (weights, biases *tensor.Tensor) {
	return l.wGrad, l.bGrad
}

// BatchSize returns the number of samples per batch.
func (l *Input) BatchSize() int { return l.numImages }

// OutFeatures returns the neuron count of this layer.
func (l *Input) OutFeatures() int { return l.numNeurons }

// Weights returns the caller-owned weight tensor.
func (l *Input) Weights() *tensor.Tensor { return l.w }

// Biases returns the caller-owned bias tensor.
func (l *Input) Biases() *tensor.Tensor { return l.biases }

// successorGrads reads the gradient batch from a node's unique
// successor. Missing or gradient-less successors are programming errors:
// backward runs only inside a validated graph.
func successorGrads(n graph.Node) *tensor.Tensor {
	succs := n.Base().Successors()
	if len(succs) == 0 {
		panic("nn: backward pass on a node with no successor")
	}
	src, ok := succs[0].(graph.GradSource)
	if !ok {
		panic(fmt.Sprintf("nn: successor %T does not expose gradients", succs[0]))
	}
	return src.Grads()
}
