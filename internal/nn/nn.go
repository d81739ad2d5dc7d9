// Package nn implements the layer kinds of the computation graph:
//   - Input: entry affine layer fed an external batch
//   - Hidden: interior affine layer composing on a predecessor
//   - Softmax: per-row probability normalization
//   - CrossEntropy: the loss sink
//
// The affine layers use a per-sample parameter convention: each sample in
// the batch carries its own weight matrix and bias row. The backward
// formulas are part of the engine's contract, pinned by tests; they are
// not the textbook softmax/cross-entropy derivatives.
package nn

import (
	"github.com/xiaonet-ml/xiaonet/internal/graph"
	"github.com/xiaonet-ml/xiaonet/internal/parallel"
	"github.com/xiaonet-ml/xiaonet/internal/tensor"
)

// Layer is the contract interior layers require of their predecessor:
// a node that exposes its batch size, output width, and the output
// values of its last forward pass.
type Layer interface {
	graph.Node

	// Value returns the output of the last forward pass, shaped
	// (BatchSize, OutFeatures).
	Value() *tensor.Tensor

	// BatchSize returns the number of samples per batch.
	BatchSize() int

	// OutFeatures returns the width of this layer's output rows.
	OutFeatures() int
}

// batchLoop is the shared configuration for per-sample loops. Samples
// within one pass never share a read/write set, so the loops are safe to
// fan out.
var batchLoop = parallel.DefaultConfig()
