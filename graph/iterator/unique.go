package iterator

import (
	"context"
	"fmt"

	"github.com/cayleygraph/shapeql/graph"
	"github.com/tylertreat/BoomFilters"
)

// Unique iterator removes duplicate values from it's subiterator.
type Unique struct {
	subIt graph.IteratorShape
}

func NewUnique(subIt graph.IteratorShape) *Unique {
	return &Unique{
		subIt: subIt,
	}
}

func (it *Unique) Iterate() graph.Scanner {
	return newUniqueNext(it.subIt.Iterate())
}

func (it *Unique) Lookup() graph.Index {
	return newUniqueContains(it.subIt.Lookup())
}

// SubIterators returns a slice holding the single sub iterator.
func (it *Unique) SubIterators() []graph.IteratorShape {
	return []graph.IteratorShape{it.subIt}
}

func (it *Unique) Optimize(ctx context.Context) (graph.IteratorShape, bool) {
	newIt, optimized := it.subIt.Optimize(ctx)
	if optimized {
		it.subIt = newIt
	}
	return it, false
}

const uniquenessFactor = 2

func (it *Unique) Stats(ctx context.Context) (graph.IteratorCosts, error) {
	subStats, err := it.subIt.Stats(ctx)
	return graph.IteratorCosts{
		NextCost:     subStats.NextCost * uniquenessFactor,
		ContainsCost: subStats.ContainsCost,
		Size: graph.Size{
			Value: subStats.Size.Value / uniquenessFactor,
			Exact: false,
		},
	}, err
}

func (it *Unique) String() string {
	return "Unique"
}

// Unique iterator removes duplicate values from it's subiterator. A Bloom
// filter guards the exact seen map: it never has false negatives, so a
// miss there proves a value is new and skips the map lookup outright; a
// hit still has to be checked against seen, since the filter can false-
// positive.
type uniqueNext struct {
	subIt  graph.Scanner
	result graph.Ref
	err    error
	seen   map[interface{}]bool
	filter *boom.BloomFilter
}

func newUniqueNext(subIt graph.Scanner) *uniqueNext {
	return &uniqueNext{
		subIt:  subIt,
		seen:   make(map[interface{}]bool),
		filter: boom.NewBloomFilter(100*1000, 0.01),
	}
}

func refBytes(key interface{}) []byte {
	if h, ok := key.(graph.ValueHash); ok {
		return h[:]
	}
	return []byte(fmt.Sprint(key))
}

func (it *uniqueNext) TagResults(dst map[string]graph.Ref) {
	if it.subIt != nil {
		it.subIt.TagResults(dst)
	}
}

// Next advances the subiterator, continuing until it returns a value which it
// has not previously seen.
func (it *uniqueNext) Next(ctx context.Context) bool {
	for it.subIt.Next(ctx) {
		curr := it.subIt.Result()
		key := graph.ToKey(curr)
		if !it.filter.Test(refBytes(key)) {
			it.filter.Add(refBytes(key))
			it.seen[key] = true
			it.result = curr
			return true
		}
		if ok := it.seen[key]; !ok {
			it.seen[key] = true
			it.result = curr
			return true
		}
	}
	it.err = it.subIt.Err()
	return false
}

func (it *uniqueNext) Err() error {
	return it.err
}

func (it *uniqueNext) Result() graph.Ref {
	return it.result
}

// NextPath for unique always returns false. If we were to return multiple
// paths, we'd no longer be a unique result, so we have to choose only the first
// path that got us here. Unique is serious on this point.
func (it *uniqueNext) NextPath(ctx context.Context) bool {
	return false
}

// Close closes the primary iterators.
func (it *uniqueNext) Close() error {
	it.seen = nil
	it.filter = nil
	return it.subIt.Close()
}

func (it *uniqueNext) String() string {
	return "UniqueNext"
}

// Unique iterator removes duplicate values from it's subiterator.
type uniqueContains struct {
	subIt graph.Index
}

func newUniqueContains(subIt graph.Index) *uniqueContains {
	return &uniqueContains{
		subIt: subIt,
	}
}

func (it *uniqueContains) TagResults(dst map[string]graph.Ref) {
	if it.subIt != nil {
		it.subIt.TagResults(dst)
	}
}

func (it *uniqueContains) Err() error {
	return it.subIt.Err()
}

func (it *uniqueContains) Result() graph.Ref {
	return it.subIt.Result()
}

// Contains checks whether the passed value is part of the primary iterator,
// which is irrelevant for uniqueness.
func (it *uniqueContains) Contains(ctx context.Context, val graph.Ref) bool {
	return it.subIt.Contains(ctx, val)
}

// NextPath for unique always returns false. If we were to return multiple
// paths, we'd no longer be a unique result, so we have to choose only the first
// path that got us here. Unique is serious on this point.
func (it *uniqueContains) NextPath(ctx context.Context) bool {
	return false
}

// Close closes the primary iterators.
func (it *uniqueContains) Close() error {
	return it.subIt.Close()
}

func (it *uniqueContains) String() string {
	return "UniqueContains"
}
