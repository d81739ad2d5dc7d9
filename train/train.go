// Copyright 2025 XiaoNet. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train provides the public API for the SGD training driver.
//
// Example:
//
//	sgd := train.NewSGD(train.Config{LR: 0.01})
//	loss, err := sgd.Step(g, feed, target, trainables)
package train

import (
	"github.com/xiaonet-ml/xiaonet/internal/train"
)

// Trainable is implemented by nodes that contribute parameter gradients
// to the update step.
type Trainable = train.Trainable

// Hooks are optional per-step observability callbacks.
type Hooks = train.Hooks

// Config holds configuration for the SGD driver.
type Config = train.Config

// SGD drives training steps over a computation graph.
type SGD = train.SGD

// NewSGD creates a training driver. A zero learning rate selects the
// default.
func NewSGD(cfg Config) *SGD {
	return train.NewSGD(cfg)
}
