package graph

import (
	"errors"
	"fmt"

	"github.com/xiaonet-ml/xiaonet/internal/tensor"
)

// Common graph-construction errors.
var (
	ErrNoEntries       = errors.New("graph has no entry nodes")
	ErrNilSink         = errors.New("graph has no sink node")
	ErrCycle           = errors.New("graph contains a cycle")
	ErrSinkUnreachable = errors.New("sink not reachable from entry nodes")
)

// Graph is a validated, immutable view of a wired topology.
//
// New resolves the entry and sink capabilities once, so the per-step
// scheduling loop does no type inspection. The node and edge sets are
// frozen; only the derived execution order and the injected data are
// step-scoped.
type Graph struct {
	entries []Entry
	entryOf map[Node]Entry
	sink    Sink
	nodes   []Node // reachable set, BFS discovery order
}

// New freezes a wired topology into a Graph.
//
// It walks successor edges breadth-first from the entry nodes, then
// verifies that the sink is reachable and that the reachable set is
// acyclic. A wiring that fails either check is a fatal construction
// error; no forward or backward pass can run on it.
func New(entries []Entry, sink Sink) (*Graph, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	if sink == nil {
		return nil, ErrNilSink
	}

	g := &Graph{
		entries: entries,
		entryOf: make(map[Node]Entry, len(entries)),
		sink:    sink,
	}
	for _, e := range entries {
		g.entryOf[Node(e)] = e
	}

	// Reachable set by BFS along successor edges.
	seen := make(map[Node]bool)
	queue := make([]Node, 0, len(entries))
	for _, e := range entries {
		if !seen[e] {
			seen[e] = true
			queue = append(queue, e)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		g.nodes = append(g.nodes, n)
		for _, m := range n.Base().Successors() {
			if !seen[m] {
				seen[m] = true
				queue = append(queue, m)
			}
		}
	}

	if !seen[Node(sink)] {
		return nil, ErrSinkUnreachable
	}
	if _, err := g.order(nil, nil); err != nil {
		return nil, err
	}
	return g, nil
}

// Sink returns the graph's designated loss node.
func (g *Graph) Sink() Sink { return g.sink }

// Nodes returns every node reachable from the entries.
func (g *Graph) Nodes() []Node { return g.nodes }

// Plan computes one execution order for a training step using Kahn's
// algorithm and injects the step's data as a side effect: each entry
// node receives its batch from the feed, and the sink receives the
// target label batch.
//
// The order satisfies: every reachable node appears exactly once, and a
// node appears only after its predecessor. Ties between ready nodes are
// broken in FIFO order; callers must not rely on a particular tie-break
// for branching graphs.
func (g *Graph) Plan(feed Feed, target *tensor.Tensor) ([]Node, error) {
	return g.order(feed, target)
}

// order is the Kahn loop shared by Plan and the construction-time
// acyclicity check (which runs with a nil feed and injects nothing).
func (g *Graph) order(feed Feed, target *tensor.Tensor) ([]Node, error) {
	inject := feed != nil

	// In-degree over the reachable set, recomputed per step.
	indeg := make(map[Node]int, len(g.nodes))
	for _, n := range g.nodes {
		for _, m := range n.Base().Successors() {
			indeg[m]++
		}
	}

	ready := make([]Node, 0, len(g.entries))
	for _, n := range g.nodes {
		if indeg[n] == 0 {
			ready = append(ready, n)
		}
	}

	order := make([]Node, 0, len(g.nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]

		if inject {
			if e, ok := g.entryOf[n]; ok {
				batch, haveBatch := feed[e]
				if !haveBatch {
					return nil, fmt.Errorf("feed is missing a batch for entry node %T", e)
				}
				if err := e.SetBatch(batch); err != nil {
					return nil, fmt.Errorf("injecting batch: %w", err)
				}
			}
			if n == Node(g.sink) {
				if err := g.sink.SetTarget(target); err != nil {
					return nil, fmt.Errorf("injecting target: %w", err)
				}
			}
		}

		order = append(order, n)
		for _, m := range n.Base().Successors() {
			indeg[m]--
			if indeg[m] == 0 {
				ready = append(ready, m)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, ErrCycle
	}
	return order, nil
}
