// Copyright 2025 XiaoNet. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the dense float64 tensors
// that flow between layers of the computation graph.
//
// Example:
//
//	w := tensor.Randn(tensor.Shape{32, 784, 128})
//	b := tensor.Zeros(tensor.Shape{32, 128})
package tensor

import (
	"github.com/xiaonet-ml/xiaonet/internal/tensor"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Tensor is a dense, row-major multi-dimensional array of float64 values.
type Tensor = tensor.Tensor

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) (*Tensor, error) {
	return tensor.New(shape)
}

// FromSlice creates a tensor from a Go slice. The slice is copied.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// Zeros creates a tensor filled with zeros. Panics on an invalid shape.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, value float64) *Tensor {
	return tensor.Full(shape, value)
}

// Randn creates a tensor with random values from a normal distribution
// (mean=0, std=1).
func Randn(shape Shape) *Tensor {
	return tensor.Randn(shape)
}
