package iterator

// Sort materializes its subiterator and orders the results by the string
// form of their named value. Because it has to see every result before
// producing the first one, placing it where And could push it onto a
// Contains branch would turn it into a no-op -- the optimizer never does
// that, but a caller building iterators by hand should keep Sort on the
// Next path.

import (
	"context"
	"sort"

	"github.com/cayleygraph/shapeql/graph"
	"github.com/cayleygraph/shapeql/quad"
)

var _ graph.IteratorShape = &Sort{}

type Sort struct {
	namer graph.Namer
	sub   graph.IteratorShape
}

func NewSort(namer graph.Namer, sub graph.IteratorShape) *Sort {
	return &Sort{namer: namer, sub: sub}
}

func (it *Sort) String() string { return "Sort" }

func (it *Sort) SubIterators() []graph.IteratorShape { return []graph.IteratorShape{it.sub} }

func (it *Sort) Optimize(ctx context.Context) (graph.IteratorShape, bool) {
	newSub, optimized := it.sub.Optimize(ctx)
	if optimized {
		it.sub = newSub
	}
	return it, false
}

func (it *Sort) Stats(ctx context.Context) (graph.IteratorCosts, error) {
	sub, err := it.sub.Stats(ctx)
	return graph.IteratorCosts{
		NextCost:     sub.NextCost * 2,
		ContainsCost: sub.ContainsCost,
		Size:         graph.Size{Value: sub.Size.Value, Exact: sub.Size.Exact},
	}, err
}

func (it *Sort) Iterate() graph.Scanner { return newSortNext(it.namer, it.sub.Iterate()) }
func (it *Sort) Lookup() graph.Index    { return it.sub.Lookup() }

type sortedValue struct {
	res result
	str string
}
type sortedValues []sortedValue

func (v sortedValues) Len() int           { return len(v) }
func (v sortedValues) Less(i, j int) bool { return v[i].str < v[j].str }
func (v sortedValues) Swap(i, j int)      { v[i], v[j] = v[j], v[i] }

type sortNext struct {
	namer   graph.Namer
	sub     graph.Scanner
	ordered sortedValues
	index   int
	err     error
}

func newSortNext(namer graph.Namer, sub graph.Scanner) *sortNext {
	return &sortNext{namer: namer, sub: sub, index: -1}
}

func (it *sortNext) TagResults(dst map[string]graph.Ref) {
	if it.index < 0 || it.index >= len(it.ordered) {
		return
	}
	for k, v := range it.ordered[it.index].res.tags {
		dst[k] = v
	}
}

func (it *sortNext) Result() graph.Ref {
	if it.index < 0 || it.index >= len(it.ordered) {
		return nil
	}
	return it.ordered[it.index].res.id
}

func (it *sortNext) Err() error { return it.err }

func (it *sortNext) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	if it.ordered == nil {
		it.ordered, it.err = getSortedValues(ctx, it.namer, it.sub)
		if it.err != nil {
			return false
		}
	}
	it.index++
	return it.index < len(it.ordered)
}

func (it *sortNext) NextPath(ctx context.Context) bool { return false }

func (it *sortNext) Close() error {
	it.ordered = nil
	return it.sub.Close()
}

func (it *sortNext) String() string { return "Sort" }

func getSortedValues(ctx context.Context, namer graph.Namer, it graph.Scanner) (sortedValues, error) {
	var v sortedValues
	for it.Next(ctx) {
		id := it.Result()
		tags := make(map[string]graph.Ref)
		it.TagResults(tags)
		v = append(v, sortedValue{res: result{id: id, tags: tags}, str: quad.StringOf(namer.NameOf(id))})
		if err := it.Err(); err != nil {
			return v, err
		}
	}
	if err := it.Err(); err != nil {
		return v, err
	}
	sort.Sort(v)
	return v, nil
}
