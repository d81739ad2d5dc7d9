// Copyright 2025 XiaoNet. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides the public API for the computation graph: node
// wiring, graph construction, and the topological scheduler.
//
// Example:
//
//	g, err := graph.New([]graph.Entry{input}, loss)
//	if err != nil {
//		// cyclic or mis-wired topology
//	}
//	order, err := g.Plan(graph.Feed{input: batch}, target)
package graph

import (
	"github.com/xiaonet-ml/xiaonet/internal/graph"
)

// Node is one vertex in the computation graph.
type Node = graph.Node

// Base carries a node's edges and is embedded by every concrete node.
type Base = graph.NodeBase

// Entry is a node that consumes an externally supplied data batch.
type Entry = graph.Entry

// Sink is the terminal loss node.
type Sink = graph.Sink

// GradSource is a node whose gradients are read by its predecessor.
type GradSource = graph.GradSource

// Feed maps each entry node to the data batch it should consume for one
// training step.
type Feed = graph.Feed

// Graph is a validated, immutable view of a wired topology.
type Graph = graph.Graph

// Common graph-construction errors.
var (
	ErrNoEntries       = graph.ErrNoEntries
	ErrNilSink         = graph.ErrNilSink
	ErrCycle           = graph.ErrCycle
	ErrSinkUnreachable = graph.ErrSinkUnreachable
)

// Wire links n to its predecessor, appending n to the predecessor's
// successor list. Wiring is permanent.
func Wire(n, pred Node) {
	graph.Wire(n, pred)
}

// New freezes a wired topology into a Graph, validating that the sink is
// reachable and the reachable set is acyclic.
func New(entries []Entry, sink Sink) (*Graph, error) {
	return graph.New(entries, sink)
}
