package iterator

// Count reduces its subiterator to a single result: the number of values
// (including NextPath alternatives) it produces. When the subiterator
// reports an exact size, that size is used without iterating it. The same
// cursor answers both Next and Contains, since there's only ever one result
// to offer.

import (
	"context"

	"github.com/cayleygraph/shapeql/graph"
	"github.com/cayleygraph/shapeql/quad"
)

var _ graph.IteratorShape = &Count{}

type Count struct {
	it graph.IteratorShape
	qs graph.Namer
}

// NewCount builds an iterator counting it's results. qs may be nil; it's
// only used to resolve a candidate Ref when Contains is later called.
func NewCount(it graph.IteratorShape, qs graph.Namer) *Count { return &Count{it: it, qs: qs} }

func (it *Count) String() string { return "Count" }

func (it *Count) SubIterators() []graph.IteratorShape { return []graph.IteratorShape{it.it} }

func (it *Count) Optimize(ctx context.Context) (graph.IteratorShape, bool) {
	sub, optimized := it.it.Optimize(ctx)
	it.it = sub
	return it, optimized
}

func (it *Count) Stats(ctx context.Context) (graph.IteratorCosts, error) {
	sub, err := it.it.Stats(ctx)
	st := graph.IteratorCosts{NextCost: 1, ContainsCost: 1, Size: graph.Size{Value: 1, Exact: true}}
	if !sub.Size.Exact {
		st.NextCost = sub.NextCost * sub.Size.Value
		st.ContainsCost = st.NextCost
	}
	return st, err
}

func (it *Count) Iterate() graph.Scanner { return newCountNext(it.it, it.qs) }
func (it *Count) Lookup() graph.Index    { return newCountNext(it.it, it.qs) }

type countNext struct {
	it     graph.IteratorShape
	qs     graph.Namer
	done   bool
	result quad.Value
}

func newCountNext(it graph.IteratorShape, qs graph.Namer) *countNext {
	return &countNext{it: it, qs: qs}
}

func (it *countNext) TagResults(dst map[string]graph.Ref) {}

func (it *countNext) Next(ctx context.Context) bool {
	if it.done {
		return false
	}
	st, err := it.it.Stats(ctx)
	size := st.Size.Value
	if err != nil || !st.Size.Exact {
		scanner := it.it.Iterate()
		defer scanner.Close()
		size = 0
		for scanner.Next(ctx) {
			size++
			for scanner.NextPath(ctx) {
				size++
			}
		}
	}
	it.result = quad.Int(size)
	it.done = true
	return true
}

func (it *countNext) Err() error { return nil }

func (it *countNext) Result() graph.Ref {
	if it.result == nil {
		return nil
	}
	return graph.PreFetched(it.result)
}

func (it *countNext) Contains(ctx context.Context, val graph.Ref) bool {
	if !it.done {
		it.Next(ctx)
	}
	if v, ok := val.(graph.PreFetchedValue); ok {
		return v.NameOf() == it.result
	}
	if it.qs != nil {
		return it.qs.NameOf(val) == it.result
	}
	return false
}

func (it *countNext) NextPath(ctx context.Context) bool { return false }
func (it *countNext) Close() error                       { return nil }
func (it *countNext) String() string                     { return "Count" }
