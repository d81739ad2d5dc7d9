package nn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/xiaonet-ml/xiaonet/internal/graph"
	"github.com/xiaonet-ml/xiaonet/internal/parallel"
	"github.com/xiaonet-ml/xiaonet/internal/tensor"
)

// Hidden is an interior affine layer. Its forward/backward contract is
// identical to Input, except the input batch is read from the
// predecessor's value at forward time and the batch size is inherited
// from the predecessor.
//
// W is shaped (numImages, predecessor.OutFeatures, numClasses) and bias
// (numImages, numClasses).
type Hidden struct {
	graph.NodeBase

	pred   Layer
	w      *tensor.Tensor
	biases *tensor.Tensor

	numImages  int
	numInputs  int // predecessor's output width
	numClasses int

	x     *tensor.Tensor // predecessor value, read at forward time
	value *tensor.Tensor // (numImages, numClasses)

	wGrad *tensor.Tensor // (numImages, numInputs)
	bGrad *tensor.Tensor // (numImages)
	grad  *tensor.Tensor // (numImages, numInputs)

	par parallel.Config
}

// NewHidden creates an interior affine layer on top of pred and wires
// the edge. A nil predecessor is a programming error and panics; shape
// disagreements between pred and the weights are construction errors.
func NewHidden(pred Layer, weights, biases *tensor.Tensor) (*Hidden, error) {
	if pred == nil {
		panic("nn: Hidden requires a predecessor")
	}

	ws := weights.Shape()
	if len(ws) != 3 {
		return nil, fmt.Errorf("nn: Hidden weights must be 3-D (batch, inputs, classes), got shape %v", ws)
	}
	numImages := pred.BatchSize()
	numInputs, numClasses := ws[1], ws[2]
	if ws[0] != numImages {
		return nil, fmt.Errorf("nn: Hidden weight batch %d disagrees with predecessor batch %d", ws[0], numImages)
	}
	if numInputs != pred.OutFeatures() {
		return nil, fmt.Errorf("nn: Hidden weight input width %d disagrees with predecessor width %d", numInputs, pred.OutFeatures())
	}

	wantBias := tensor.Shape{numImages, numClasses}
	if !biases.Shape().Equal(wantBias) {
		return nil, fmt.Errorf("nn: Hidden bias shape mismatch: expected %v, got %v", wantBias, biases.Shape())
	}

	l := &Hidden{
		pred:       pred,
		w:          weights,
		biases:     biases,
		numImages:  numImages,
		numInputs:  numInputs,
		numClasses: numClasses,
		value:      tensor.Zeros(tensor.Shape{numImages, numClasses}),
		wGrad:      tensor.Zeros(tensor.Shape{numImages, numInputs}),
		bGrad:      tensor.Zeros(tensor.Shape{numImages}),
		grad:       tensor.Zeros(tensor.Shape{numImages, numInputs}),
		par:        batchLoop,
	}
	graph.Wire(l, pred)
	return l, nil
}

// Forward reads X from the predecessor's value and computes
// value[i] = X[i]·W[i] + bias[i] for every sample.
func (l *Hidden) Forward() {
	l.x = l.pred.Value()
	parallel.For(l.numImages, func(i int) {
		row := l.value.RowSlice(i)
		h := mat.NewVecDense(l.numClasses, row)
		h.MulVec(l.w.Matrix(i).T(), l.x.Row(i))
		floats.Add(row, l.biases.RowSlice(i))
	}, l.par)
}

// Backward computes the same per-sample gradient estimate as Input,
// shaped against the predecessor's width so the predecessor can consume
// it on its own backward pass.
func (l *Hidden) Backward() {
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
func (l *Hidden) Value() *tensor.Tensor { return l.value }

// Grads returns the gradients of the last backward pass.
func (l *Hidden) Grads() *tensor.Tensor { return l.grad }

// ParamGrads returns the weight and bias gradients of the last backward
// pass, in that order.
func (l *Hidden) ParamGrads() (weights, biases *tensor.Tensor) {
	return l.wGrad, l.bGrad
}

// BatchSize returns the number of samples per batch.
func (l *Hidden) BatchSize() int { return l.numImages }

// OutFeatures returns the class count of this layer.
func (l *Hidden) OutFeatures() int { return l.numClasses }

// Weights returns the caller-owned weight tensor.
func (l *Hidden) Weights() *tensor.Tensor { return l.w }

// Biases returns the caller-owned bias tensor.
func (l *Hidden) Biases() *tensor.Tensor { return l.biases }
