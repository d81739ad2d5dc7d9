package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaonet-ml/xiaonet/internal/tensor"
)

// stub is a minimal concrete node for scheduling tests. It inherits the
// panicking Forward/Backward from Base.
type stub struct {
	NodeBase
}

type entryStub struct {
	stub
	batch *tensor.Tensor
	fail  bool
}

func (e *entryStub) SetBatch(b *tensor.Tensor) error {
	if e.fail {
		return errors.New("bad batch")
	}
	e.batch = b
	return nil
}

type sinkStub struct {
	stub
	target *tensor.Tensor
}

func (s *sinkStub) SetTarget(t *tensor.Tensor) error {
	s.target = t
	return nil
}

func (s *sinkStub) Loss() float64 { return 0.5 }

func TestWire_AppendsSuccessor(t *testing.T) {
	parent := &stub{}
	child := &stub{}

	Wire(child, parent)

	require.Len(t, parent.Successors(), 1)
	assert.Same(t, Node(child), parent.Successors()[0])
	assert.Same(t, Node(parent), child.Predecessor())
}

func TestWire_NilPredecessorIsNoop(t *testing.T) {
	n := &stub{}
	Wire(n, nil)
	assert.Nil(t, n.Predecessor())
}

func TestWire_RewirePanics(t *testing.T) {
	a := &stub{}
	b := &stub{}
	c := &stub{}

	Wire(c, a)
	assert.Panics(t, func() { Wire(c, b) })
}

func TestBase_AbstractOperationsPanic(t *testing.T) {
	var n Node = &stub{}
	assert.Panics(t, func() { n.Forward() })
	assert.Panics(t, func() { n.Backward() })
}

func TestNew_NoEntries(t *testing.T) {
	_, err := New(nil, &sinkStub{})
	require.ErrorIs(t, err, ErrNoEntries)
}

func TestNew_NilSink(t *testing.T) {
	_, err := New([]Entry{&entryStub{}}, nil)
	require.ErrorIs(t, err, ErrNilSink)
}

func TestNew_SinkUnreachable(t *testing.T) {
	e := &entryStub{}
	orphan := &sinkStub{}

	_, err := New([]Entry{e}, orphan)
	require.ErrorIs(t, err, ErrSinkUnreachable)
}

func TestNew_CycleDetected(t *testing.T) {
	e := &entryStub{}
	a := &stub{}
	s := &sinkStub{}

	Wire(a, e)
	Wire(e, a) // closes the cycle e → a → e
	Wire(s, e)

	_, err := New([]Entry{e}, s)
	require.ErrorIs(t, err, ErrCycle)
}

func buildChain() (*entryStub, *stub, *stub, *sinkStub, *Graph, error) {
	e := &entryStub{}
	n1 := &stub{}
	n2 := &stub{}
	s := &sinkStub{}

	Wire(n1, e)
	Wire(n2, n1)
	Wire(s, n2)

	g, err := New([]Entry{e}, s)
	return e, n1, n2, s, g, err
}

func TestPlan_LinearOrder(t *testing.T) {
	e, n1, n2, s, g, err := buildChain()
	require.NoError(t, err)

	batch := tensor.Zeros(tensor.Shape{1, 2})
	target := tensor.Zeros(tensor.Shape{1, 2})

	order, err := g.Plan(Feed{e: batch}, target)
	require.NoError(t, err)

	require.Len(t, order, 4)
	assert.Same(t, Node(e), order[0])
	assert.Same(t, Node(n1), order[1])
	assert.Same(t, Node(n2), order[2])
	assert.Same(t, Node(s), order[3])

	// Injection happened as a side effect of ordering.
	assert.Same(t, batch, e.batch)
	assert.Same(t, target, s.target)
}

func TestPlan_MissingEntryBatch(t *testing.T) {
	_, _, _, _, g, err := buildChain()
	require.NoError(t, err)

	_, err = g.Plan(Feed{}, tensor.Zeros(tensor.Shape{1}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing a batch")
}

func TestPlan_InjectionErrorPropagates(t *testing.T) {
	e := &entryStub{fail: true}
	s := &sinkStub{}
	Wire(s, e)

	g, err := New([]Entry{e}, s)
	require.NoError(t, err)

	_, err = g.Plan(Feed{e: tensor.Zeros(tensor.Shape{1})}, tensor.Zeros(tensor.Shape{1}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injecting batch")
}

func TestPlan_BranchingEveryNodeOnce(t *testing.T) {
	// e fans out to a side branch and the sink. The tie-break between
	// ready nodes is unspecified; only completeness and edge order are.
	e := &entryStub{}
	a := &stub{}
	b := &stub{}
	s := &sinkStub{}

	Wire(a, e)
	Wire(b, a)
	Wire(s, e)

	g, err := New([]Entry{e}, s)
	require.NoError(t, err)

	order, err := g.Plan(Feed{e: tensor.Zeros(tensor.Shape{1})}, tensor.Zeros(tensor.Shape{1}))
	require.NoError(t, err)

	require.Len(t, order, 4)
	seen := make(map[Node]int)
	for i, n := range order {
		seen[n] = i
	}
	require.Len(t, seen, 4)
	assert.Equal(t, 0, seen[Node(e)])
	assert.Less(t, seen[Node(a)], seen[Node(b)])
}

func TestNodes_ReachableSet(t *testing.T) {
	_, _, _, _, g, err := buildChain()
	require.NoError(t, err)
	assert.Len(t, g.Nodes(), 4)
}
