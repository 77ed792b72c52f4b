package iterator

// Fixed is one of the base iterators: an explicit, caller-supplied set of
// Refs. Contains is linear in the number of values, via graph.ToKey, since a
// Ref may not answer to == directly; for the small sets Fixed is meant to
// hold this is not worth a better data structure.

import (
	"context"
	"fmt"

	"github.com/cayleygraph/shapeql/graph"
)

var _ graph.IteratorShape = &Fixed{}

// Fixed holds an explicit set of values.
type Fixed struct {
	values []graph.Ref
}

// NewFixed creates a new Fixed iterator over vals.
func NewFixed(vals ...graph.Ref) *Fixed {
	return &Fixed{values: append([]graph.Ref{}, vals...)}
}

// Add appends a value to the iterator.
func (it *Fixed) Add(v graph.Ref) { it.values = append(it.values, v) }

// Values returns the values stored in the iterator. The slice must not be
// modified.
func (it *Fixed) Values() []graph.Ref { return it.values }

func (it *Fixed) String() string { return fmt.Sprintf("Fixed(%v)", it.values) }

func (it *Fixed) Iterate() graph.Scanner { return newFixedNext(it.values) }
func (it *Fixed) Lookup() graph.Index    { return newFixedContains(it.values) }

func (it *Fixed) SubIterators() []graph.IteratorShape { return nil }

// Optimize replaces an empty or single-nil-value Fixed with Null, since an
// empty fixed set can never match.
func (it *Fixed) Optimize(ctx context.Context) (graph.IteratorShape, bool) {
	if len(it.values) == 0 || (len(it.values) == 1 && it.values[0] == nil) {
		return newNull(), true
	}
	return it, false
}

func (it *Fixed) Stats(ctx context.Context) (graph.IteratorCosts, error) {
	return graph.IteratorCosts{
		ContainsCost: 1,
		NextCost:     1,
		Size:         graph.Size{Value: int64(len(it.values)), Exact: true},
	}, nil
}

type fixedNext struct {
	values []graph.Ref
	ind    int
	result graph.Ref
}

func newFixedNext(vals []graph.Ref) *fixedNext { return &fixedNext{values: vals} }

func (it *fixedNext) Close() error                        { return nil }
func (it *fixedNext) TagResults(dst map[string]graph.Ref) {}
func (it *fixedNext) String() string                      { return fmt.Sprintf("Fixed(%v)", it.values) }
func (it *fixedNext) Err() error                           { return nil }
func (it *fixedNext) Result() graph.Ref                    { return it.result }
func (it *fixedNext) NextPath(ctx context.Context) bool    { return false }

func (it *fixedNext) Next(ctx context.Context) bool {
	if it.ind >= len(it.values) {
		return false
	}
	it.result = it.values[it.ind]
	it.ind++
	return true
}

type fixedContains struct {
	values []graph.Ref
	keys   []interface{}
	result graph.Ref
}

func newFixedContains(vals []graph.Ref) *fixedContains {
	keys := make([]interface{}, 0, len(vals))
	for _, v := range vals {
		keys = append(keys, graph.ToKey(v))
	}
	return &fixedContains{values: vals, keys: keys}
}

func (it *fixedContains) Close() error                        { return nil }
func (it *fixedContains) TagResults(dst map[string]graph.Ref) {}
func (it *fixedContains) String() string                      { return fmt.Sprintf("Fixed(%v)", it.values) }
func (it *fixedContains) Err() error                           { return nil }
func (it *fixedContains) Result() graph.Ref                    { return it.result }
func (it *fixedContains) NextPath(ctx context.Context) bool    { return false }

func (it *fixedContains) Contains(ctx context.Context, v graph.Ref) bool {
	vk := graph.ToKey(v)
	for i, x := range it.keys {
		if x == vk {
			it.result = it.values[i]
			return true
		}
	}
	return false
}
