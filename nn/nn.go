// Copyright 2025 XiaoNet. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for the layer kinds of the
// computation graph: the affine Input/Hidden layers with per-sample
// parameters, the Softmax activation, and the CrossEntropy loss sink.
//
// Example:
//
//	in, _ := nn.NewInput(w1, b1)
//	hid, _ := nn.NewHidden(in, w2, b2)
//	sm := nn.NewSoftmax(hid)
//	loss := nn.NewCrossEntropy(sm)
package nn

import (
	"github.com/xiaonet-ml/xiaonet/internal/nn"
	"github.com/xiaonet-ml/xiaonet/internal/tensor"
)

// Layer is the contract interior layers require of their predecessor.
type Layer = nn.Layer

// Input is the graph's entry affine layer.
type Input = nn.Input

// Hidden is an interior affine layer.
type Hidden = nn.Hidden

// Softmax normalizes each predecessor row into a probability
// distribution.
type Softmax = nn.Softmax

// CrossEntropy is the loss sink.
type CrossEntropy = nn.CrossEntropy

// NewInput creates an entry affine layer from per-sample weights shaped
// (batch, features, neurons) and biases shaped (batch, neurons).
func NewInput(weights, biases *tensor.Tensor) (*Input, error) {
	return nn.NewInput(weights, biases)
}

// NewHidden creates an interior affine layer on top of pred and wires
// the edge.
func NewHidden(pred Layer, weights, biases *tensor.Tensor) (*Hidden, error) {
	return nn.NewHidden(pred, weights, biases)
}

// NewSoftmax creates a softmax activation on top of pred and wires the
// edge.
func NewSoftmax(pred Layer) *Softmax {
	return nn.NewSoftmax(pred)
}

// NewCrossEntropy creates the loss sink on top of pred and wires the
// edge.
func NewCrossEntropy(pred Layer) *CrossEntropy {
	return nn.NewCrossEntropy(pred)
}
