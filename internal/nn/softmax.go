package nn

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/xiaonet-ml/xiaonet/internal/graph"
	"github.com/xiaonet-ml/xiaonet/internal/parallel"
	"github.com/xiaonet-ml/xiaonet/internal/tensor"
)

// Softmax normalizes each row of its predecessor's output into a
// probability distribution:
//
//	value[i][c] = exp(x[i][c]) / Σ_k exp(x[i][k])
//
// Its backward pass copies the forward output into the gradient batch
// (the transpose of a row vector is the row itself). That pass-through
// is the engine's contract, not the softmax derivative.
type Softmax struct {
	graph.NodeBase

	pred       Layer
	numImages  int
	numClasses int

	value *tensor.Tensor // (numImages, numClasses)
	grad  *tensor.Tensor // (numImages, numClasses)

	par parallel.Config
}

// NewSoftmax creates a softmax activation on top of pred and wires the
// edge. A nil predecessor is a programming error and panics.
func NewSoftmax(pred Layer) *Softmax {
	if pred == nil {
		panic("nn: Softmax requires a predecessor")
	}
	l := &Softmax{
		pred:       pred,
		numImages:  pred.BatchSize(),
		numClasses: pred.OutFeatures(),
		value:      tensor.Zeros(tensor.Shape{pred.BatchSize(), pred.OutFeatures()}),
		grad:       tensor.Zeros(tensor.Shape{pred.BatchSize(), pred.OutFeatures()}),
		par:        batchLoop,
	}
	graph.Wire(l, pred)
	return l
}

// Forward applies the softmax transform to every row of the
// predecessor's value.
func (l *Softmax) Forward() {
	in := l.pred.Value()
	parallel.For(l.numImages, func(i int) {
		row := l.value.RowSlice(i)
		src := in.RowSlice(i)
		for c, x := range src {
			row[c] = math.Exp(x)
		}
		floats.Scale(1/floats.Sum(row), row)
	}, l.par)
}

// Backward copies the forward output into the gradient batch.
func (l *Softmax) Backward() {
	parallel.For(l.numImages, func(i int) {
		copy(l.grad.RowSlice(i), l.value.RowSlice(i))
	}, l.par)
}

// Value returns the normalized distributions of the last forward pass.
func (l *Softmax) Value() *tensor.Tensor { return l.value }

// Grads returns the gradients of the last backward pass.
func (l *Softmax) Grads() *tensor.Tensor { return l.grad }

// BatchSize returns the number of samples per batch.
func (l *Softmax) BatchSize() int { return l.numImages }

// OutFeatures returns the class count of this layer.
func (l *Softmax) OutFeatures() int { return l.numClasses }
