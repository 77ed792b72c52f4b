package iterator

// The Null iterator: the empty set. Operators that can statically prove a
// branch can never match (e.g. an And with a child Fixed([])) optimize to
// this instead of carrying the dead branch around.

import (
	"context"

	"github.com/cayleygraph/shapeql/graph"
)

var _ graph.IteratorShape = Null{}

// Null is an iterator shape with no results.
type Null struct{}

// NewNull creates a new Null iterator.
func NewNull() Null { return Null{} }

func newNull() Null { return Null{} }

func (Null) String() string { return "Null" }

func (Null) Iterate() graph.Scanner { return nullIterator{} }
func (Null) Lookup() graph.Index    { return nullIterator{} }

func (Null) Stats(ctx context.Context) (graph.IteratorCosts, error) {
	return graph.IteratorCosts{
		ContainsCost: 1,
		NextCost:     1,
		Size:         graph.Size{Value: 0, Exact: true},
	}, nil
}

func (Null) Optimize(ctx context.Context) (graph.IteratorShape, bool) { return Null{}, false }

func (Null) SubIterators() []graph.IteratorShape { return nil }

type nullIterator struct{}

func (nullIterator) TagResults(dst map[string]graph.Ref) {}
func (nullIterator) Result() graph.Ref                   { return nil }
func (nullIterator) NextPath(ctx context.Context) bool    { return false }
func (nullIterator) Err() error                           { return nil }
func (nullIterator) Close() error                         { return nil }
func (nullIterator) Next(ctx context.Context) bool        { return false }
func (nullIterator) Contains(ctx context.Context, v graph.Ref) bool {
	return false
}
func (nullIterator) String() string { return "Null" }
