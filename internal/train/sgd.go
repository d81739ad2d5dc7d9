// Package train implements the training driver: one forward pass in
// topological order, one backward pass in reverse order, gradient
// harvesting, and an in-place stochastic-gradient-descent update of the
// caller's trainable tensors.
package train

import (
	"gonum.org/v1/gonum/floats"

	"github.com/xiaonet-ml/xiaonet/internal/graph"
	"github.com/xiaonet-ml/xiaonet/internal/tensor"
)

const defaultLR = 1e-4

// Trainable is implemented by nodes that contribute parameter gradients
// to the update step. The affine layers implement it; activations and
// the loss sink do not.
type Trainable interface {
	// ParamGrads returns the weight and bias gradients of the last
	// backward pass, in that order.
	ParamGrads() (weights, biases *tensor.Tensor)
}

// Hooks are optional per-step observability callbacks. Nil callbacks are
// skipped; the driver itself never writes to the console.
type Hooks struct {
	// OnUpdate fires after a trainable at the given position is updated
	// in place.
	OnUpdate func(pos int, shape tensor.Shape)

	// OnSkip fires when the trainable at the given position is left
	// untouched: its shape disagrees with the harvested gradient, or
	// grad is nil because no gradient was harvested for that position.
	OnSkip func(pos int, trainable, grad tensor.Shape)
}

// Config holds configuration for the SGD driver.
type Config struct {
	LR    float64 // Learning rate (default: 1e-4)
	Hooks Hooks   // Optional diagnostics
}

// SGD drives training steps over a computation graph.
//
// Example:
//
//	sgd := train.NewSGD(train.Config{LR: 0.01})
//	loss, err := sgd.Step(g, feed, target, trainables)
type SGD struct {
	lr    float64
	hooks Hooks
}

// NewSGD creates a training driver. A zero learning rate selects the
// default.
func NewSGD(cfg Config) *SGD {
	if cfg.LR == 0 {
		cfg.LR = defaultLR
	}
	return &SGD{lr: cfg.LR, hooks: cfg.Hooks}
}

// LR returns the current learning rate.
func (s *SGD) LR() float64 { return s.lr }

// SetLR updates the learning rate. Useful for scheduling between steps.
func (s *SGD) SetLR(lr float64) { s.lr = lr }

// Step executes one full training cycle:
//
//  1. Plan an execution order (the scheduler injects the feed's batches
//     and the target as a side effect).
//  2. Forward every node in order.
//  3. Backward every node in reverse order.
//  4. Harvest (weight, bias) gradient pairs from trainable-capable nodes
//     in forward order, flattened into one sequence.
//  5. Update each trainable in place, trainable -= lr·grad, where its
//     shape matches the gradient at the same position. A mismatch skips
//     that position silently, surfaced only through the hooks.
//
// Returns the sink's scalar loss for the step just executed. The
// trainables list and the node-owned buffers are the only state Step
// mutates.
func (s *SGD) Step(g *graph.Graph, feed graph.Feed, target *tensor.Tensor, trainables []*tensor.Tensor) (float64, error) {
	order, err := g.Plan(feed, target)
	if err != nil {
		return 0, err
	}

	for _, n := range order {
		n.Forward()
	}
	for i := len(order) - 1; i >= 0; i-- {
		order[i].Backward()
	}

	partials := harvest(order)

	for pos, p := range trainables {
		if pos >= len(partials) {
			if s.hooks.OnSkip != nil {
				s.hooks.OnSkip(pos, p.Shape(), nil)
			}
			continue
		}
		grad := partials[pos]
		if !p.Shape().Equal(grad.Shape()) {
			if s.hooks.OnSkip != nil {
				s.hooks.OnSkip(pos, p.Shape(), grad.Shape())
			}
			continue
		}
		floats.AddScaled(p.Data(), -s.lr, grad.Data())
		if s.hooks.OnUpdate != nil {
			s.hooks.OnUpdate(pos, p.Shape())
		}
	}

	return g.Sink().Loss(), nil
}

// harvest collects (weight, bias) gradient pairs from every
// trainable-capable node in forward order.
func harvest(order []graph.Node) []*tensor.Tensor {
	partials := make([]*tensor.Tensor, 0, 2*len(order))
	for _, n := range order {
		if tr, ok := n.(Trainable); ok {
			w, b := tr.ParamGrads()
			partials = append(partials, w, b)
		}
	}
	return partials
}
