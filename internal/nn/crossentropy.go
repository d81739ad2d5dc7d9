package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/xiaonet-ml/xiaonet/internal/graph"
	"github.com/xiaonet-ml/xiaonet/internal/tensor"
)

// logFloor bounds probabilities away from zero before the logarithm, so
// a hard-zero softmax entry yields a large finite loss instead of
// poisoning the batch mean with +Inf.
const logFloor = 1e-300

// CrossEntropy is the graph's designated sink. It reduces the
// predecessor's per-class distributions and the injected target batch
// to a scalar categorical cross-entropy:
//
//	tmp[i] = -Σ_c target[i][c] · log(p[i][c])
//	loss   = mean(tmp)
//
// The target is not set at construction; the scheduler injects it before
// the first forward pass. The sink terminates the backward chain and
// contributes no gradient of its own.
type CrossEntropy struct {
	graph.NodeBase

	pred       Layer
	numImages  int
	numClasses int

	ideal *tensor.Tensor // injected target batch (numImages, numClasses)
	tmp   *tensor.Tensor // per-sample losses (numImages)
	value float64

	grad *tensor.Tensor // always nil after backward; sink propagates nothing
}

// NewCrossEntropy creates the loss sink on top of pred and wires the
// edge. The predecessor must expose a normalized per-class distribution;
// a nil predecessor is a programming error and panics.
func NewCrossEntropy(pred Layer) *CrossEntropy {
	if pred == nil {
		panic("nn: CrossEntropy requires a predecessor")
	}
	l := &CrossEntropy{
		pred:       pred,
		numImages:  pred.BatchSize(),
		numClasses: pred.OutFeatures(),
		tmp:        tensor.Zeros(tensor.Shape{pred.BatchSize()}),
	}
	graph.Wire(l, pred)
	return l
}

// SetTarget stores the target label batch for the next forward pass.
// Called by the scheduler; the batch must be shaped (batch, classes).
func (l *CrossEntropy) SetTarget(target *tensor.Tensor) error {
	if target == nil {
		return fmt.Errorf("nn: CrossEntropy target is nil")
	}
	want := tensor.Shape{l.numImages, l.numClasses}
	if !target.Shape().Equal(want) {
		return fmt.Errorf("nn: CrossEntropy target shape mismatch: expected %v, got %v", want, target.Shape())
	}
	l.ideal = target
	return nil
}

// Forward computes the per-sample cross-entropy against the predecessor's
// distributions and reduces it to the batch mean.
// Panics if no target has been injected.
func (l *CrossEntropy) Forward() {
	if l.ideal == nil {
		panic("nn: CrossEntropy target not set before forward pass")
	}
	p := l.pred.Value()
	for i := 0; i < l.numImages; i++ {
		sum := 0.0
		probs := p.RowSlice(i)
		targets := l.ideal.RowSlice(i)
		for c, y := range targets {
			sum += y * math.Log(math.Max(probs[c], logFloor))
		}
		l.tmp.Set(-sum, i)
	}
	l.value = stat.Mean(l.tmp.Data(), nil)
}

// Backward clears the gradient placeholder; the sink terminates the
// backward chain.
func (l *CrossEntropy) Backward() {
	l.grad = nil
}

// Loss returns the scalar loss of the last forward pass.
func (l *CrossEntropy) Loss() float64 { return l.value }

// BatchSize returns the number of samples per batch.
func (l *CrossEntropy) BatchSize() int { return l.numImages }
