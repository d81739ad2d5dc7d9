// Package graph implements the computation graph: the node abstraction,
// construction-time wiring, and the topological scheduler that drives
// forward and backward passes.
//
// Nodes are wired exactly once, at construction, via Wire. A finished
// topology is then frozen into a Graph with New, which validates it
// (acyclic, sink reachable) before any pass can run. Each training step
// asks the Graph for a Plan: a topological order of all reachable nodes,
// with entry batches and the loss target injected along the way.
package graph

import (
	"github.com/xiaonet-ml/xiaonet/internal/tensor"
)

// Node is one vertex in the computation graph with a declared forward
// and backward behavior.
//
// Concrete nodes embed Base, which carries the wiring. Invoking Forward
// or Backward on a node that does not override them is a programming
// error and panics.
type Node interface {
	// Forward computes this node's output from its input(s).
	Forward()

	// Backward computes this node's gradient contribution from its
	// successor's gradients.
	Backward()

	// Base returns the embedded wiring record. Provided by Base.
	Base() *NodeBase
}

// Base carries a node's edges: at most one predecessor and any number of
// successors. It is embedded by every concrete node type.
//
// The predecessor/successor relation is symmetric and immutable after
// construction: Wire appends the node to its predecessor's successor
// list exactly once.
type NodeBase struct {
	pred  Node
	succs []Node
}

// Base returns the wiring record itself, satisfying the Node interface
// for types that embed Base.
func (b *NodeBase) Base() *NodeBase { return b }

// Predecessor returns the node's predecessor, or nil for entry nodes.
func (b *NodeBase) Predecessor() Node { return b.pred }

// Successors returns the nodes wired on top of this one, in wiring order.
func (b *NodeBase) Successors() []Node { return b.succs }

// Forward panics: every concrete node must override it.
func (b *NodeBase) Forward() {
	panic("graph: Forward not implemented")
}

// Backward panics: every concrete node must override it.
func (b *NodeBase) Backward() {
	panic("graph: Backward not implemented")
}

// Wire links n to its predecessor, appending n to the predecessor's
// successor list. A nil predecessor is a no-op (entry nodes).
//
// Wiring is permanent: wiring a node that already has a predecessor is a
// programming error and panics.
func Wire(n, pred Node) {
	if pred == nil {
		return
	}
	b := n.Base()
	if b.pred != nil {
		panic("graph: node already wired to a predecessor")
	}
	b.pred = pred
	pb := pred.Base()
	pb.succs = append(pb.succs, n)
}

// Entry is implemented by nodes that consume an externally supplied data
// batch instead of computing their input from a predecessor.
type Entry interface {
	Node

	// SetBatch stores the batch this node will consume on the next
	// forward pass. Returns an error if the batch shape disagrees with
	// the node's declared input shape.
	SetBatch(batch *tensor.Tensor) error
}

// Sink is implemented by the terminal loss node whose scalar output is
// the objective being minimized.
type Sink interface {
	Node

	// SetTarget stores the target label batch for the next forward pass.
	// Returns an error if the target shape disagrees with the node's
	// declared (batch, classes) shape.
	SetTarget(target *tensor.Tensor) error

	// Loss returns the scalar loss computed by the last forward pass.
	Loss() float64
}

// GradSource is implemented by nodes whose gradients are read by their
// predecessor during the backward pass.
type GradSource interface {
	// Grads returns the gradients computed by the last backward pass.
	Grads() *tensor.Tensor
}

// Feed maps each entry node to the data batch it should consume for one
// training step. A Feed is built fresh per step and consumed by Plan.
type Feed map[Entry]*tensor.Tensor
