// Copyright 2025 XiaoNet. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package checkpoint provides the public API for saving and restoring
// named trainable tensors in the .xnet binary format.
//
// Example:
//
//	err := checkpoint.Save("model.xnet", state, checkpoint.Meta{Step: 100, Loss: loss})
//	state, meta, err := checkpoint.Load("model.xnet")
package checkpoint

import (
	"github.com/xiaonet-ml/xiaonet/internal/checkpoint"
	"github.com/xiaonet-ml/xiaonet/internal/tensor"
)

// Meta carries training state recorded alongside the tensors.
type Meta = checkpoint.Meta

// Header is the JSON header of a .xnet file.
type Header = checkpoint.Header

// TensorMeta describes one tensor in the data section.
type TensorMeta = checkpoint.TensorMeta

// Common errors.
var (
	ErrInvalidMagic       = checkpoint.ErrInvalidMagic
	ErrUnsupportedVersion = checkpoint.ErrUnsupportedVersion
	ErrChecksumMismatch   = checkpoint.ErrChecksumMismatch
	ErrHeaderTooLarge     = checkpoint.ErrHeaderTooLarge
	ErrOutOfBounds        = checkpoint.ErrOutOfBounds
	ErrTruncated          = checkpoint.ErrTruncated
)

// Save writes the named tensors and training metadata to path.
func Save(path string, state map[string]*tensor.Tensor, meta Meta) error {
	return checkpoint.Save(path, state, meta)
}

// Load reads a .xnet file and reconstructs its tensors by name.
func Load(path string) (map[string]*tensor.Tensor, Meta, error) {
	return checkpoint.Load(path)
}
