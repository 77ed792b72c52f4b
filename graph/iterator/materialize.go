package iterator

// Materialize runs its subiterator once, caching every (result, tags) pair
// it produces, then answers further Next/Contains/NextPath calls from that
// cache. The optimizer wraps a branch in Materialize (see and.go's
// materializeIts) when scanning it once is projected cheaper than
// Contains()ing it repeatedly. MaterializeLimit bounds the memory cost when
// that projection turns out wrong: past it, Materialize gives up caching
// and falls back to driving the subiterator directly.

import (
	"context"

	"github.com/cayleygraph/shapeql/graph"
)

// MaterializeLimit is the maximum number of results Materialize will cache
// before aborting and falling back to the subiterator directly.
const MaterializeLimit = 1000

type result struct {
	id   graph.Ref
	tags map[string]graph.Ref
}

var _ graph.IteratorShape = &Materialize{}

// Materialize caches the full result set of sub the first time it's driven.
type Materialize struct {
	sub        graph.IteratorShape
	expectSize int64
}

// NewMaterialize creates a Materialize shape wrapping sub.
func NewMaterialize(sub graph.IteratorShape) *Materialize {
	return newMaterialize(sub)
}

// NewMaterializeWithSize is like NewMaterialize but records an expected
// result count for Stats to report before the cache is built.
func NewMaterializeWithSize(sub graph.IteratorShape, size int64) *Materialize {
	return &Materialize{sub: sub, expectSize: size}
}

func newMaterialize(sub graph.IteratorShape) *Materialize {
	return &Materialize{sub: sub}
}

func (it *Materialize) String() string { return "Materialize" }

func (it *Materialize) SubIterators() []graph.IteratorShape {
	return []graph.IteratorShape{it.sub}
}

func (it *Materialize) Optimize(ctx context.Context) (graph.IteratorShape, bool) {
	newSub, changed := it.sub.Optimize(ctx)
	if changed {
		it.sub = newSub
		if isNull(it.sub) {
			return it.sub, true
		}
	}
	return it, false
}

func (it *Materialize) Stats(ctx context.Context) (graph.IteratorCosts, error) {
	overhead := int64(2)
	var size graph.Size
	subitStats, err := it.sub.Stats(ctx)
	if it.expectSize > 0 {
		size = graph.Size{Value: it.expectSize, Exact: false}
	} else {
		size = subitStats.Size
	}
	return graph.IteratorCosts{
		ContainsCost: overhead * subitStats.NextCost,
		NextCost:     overhead * subitStats.NextCost,
		Size:         size,
	}, err
}

func (it *Materialize) Iterate() graph.Scanner { return newMaterializeNext(it.sub) }
func (it *Materialize) Lookup() graph.Index    { return newMaterializeContains(it.sub) }

// materializeNext drives Materialize on the Next path. Results are grouped
// by ToKey equality: values[i] holds every (id, tags) pair sharing the i'th
// distinct key, one per NextPath alternative.
type materializeNext struct {
	sub  graph.IteratorShape
	next graph.Scanner

	containsMap map[interface{}]int
	values      [][]result
	index       int
	subindex    int
	hasRun      bool
	aborted     bool
	err         error
}

func newMaterializeNext(sub graph.IteratorShape) *materializeNext {
	return &materializeNext{
		containsMap: make(map[interface{}]int),
		sub:         sub,
		next:        sub.Iterate(),
		index:       -1,
	}
}

func (it *materializeNext) Close() error {
	it.containsMap = nil
	it.values = nil
	it.hasRun = false
	return it.next.Close()
}

func (it *materializeNext) TagResults(dst map[string]graph.Ref) {
	if !it.hasRun {
		return
	}
	if it.aborted {
		it.next.TagResults(dst)
		return
	}
	if it.Result() == nil {
		return
	}
	for tag, value := range it.values[it.index][it.subindex].tags {
		dst[tag] = value
	}
}

func (it *materializeNext) Result() graph.Ref {
	if it.aborted {
		return it.next.Result()
	}
	if len(it.values) == 0 || it.index == -1 || it.index >= len(it.values) {
		return nil
	}
	return it.values[it.index][it.subindex].id
}

func (it *materializeNext) Next(ctx context.Context) bool {
	if !it.hasRun {
		it.materializeSet(ctx)
	}
	if it.err != nil {
		return false
	}
	if it.aborted {
		n := it.next.Next(ctx)
		it.err = it.next.Err()
		return n
	}

	it.index++
	it.subindex = 0
	if it.index >= len(it.values) {
		return false
	}
	return true
}

func (it *materializeNext) Err() error { return it.err }

func (it *materializeNext) NextPath(ctx context.Context) bool {
	if !it.hasRun {
		it.materializeSet(ctx)
	}
	if it.err != nil {
		return false
	}
	if it.aborted {
		return it.next.NextPath(ctx)
	}

	it.subindex++
	if it.subindex >= len(it.values[it.index]) {
		it.subindex--
		return false
	}
	return true
}

func (it *materializeNext) materializeSet(ctx context.Context) {
	i := 0
	for it.next.Next(ctx) {
		i++
		if i > MaterializeLimit {
			it.aborted = true
			break
		}
		id := it.next.Result()
		key := graph.ToKey(id)
		if _, ok := it.containsMap[key]; !ok {
			it.containsMap[key] = len(it.values)
			it.values = append(it.values, nil)
		}
		index := it.containsMap[key]
		tags := make(map[string]graph.Ref)
		it.next.TagResults(tags)
		it.values[index] = append(it.values[index], result{id: id, tags: tags})
		for it.next.NextPath(ctx) {
			i++
			if i > MaterializeLimit {
				it.aborted = true
				break
			}
			tags := make(map[string]graph.Ref)
			it.next.TagResults(tags)
			it.values[index] = append(it.values[index], result{id: id, tags: tags})
		}
	}
	it.err = it.next.Err()
	if it.err == nil && it.aborted {
		it.values = nil
		it.containsMap = nil
		_ = it.next.Close()
		it.next = it.sub.Iterate()
	}
	it.hasRun = true
}

// materializeContains drives Materialize on the Contains path, looking up
// the cache built by materializeSet. sub is only set once aborted, as a
// direct Index over the subiterator.
type materializeContains struct {
	next *materializeNext
	sub  graph.Index
}

func newMaterializeContains(sub graph.IteratorShape) *materializeContains {
	return &materializeContains{next: newMaterializeNext(sub)}
}

func (it *materializeContains) Close() error {
	err := it.next.Close()
	if it.sub != nil {
		if err2 := it.sub.Close(); err2 != nil && err == nil {
			err = err2
		}
	}
	return err
}

func (it *materializeContains) TagResults(dst map[string]graph.Ref) {
	if it.sub != nil {
		it.sub.TagResults(dst)
		return
	}
	it.next.TagResults(dst)
}

func (it *materializeContains) Result() graph.Ref {
	if it.sub != nil {
		return it.sub.Result()
	}
	return it.next.Result()
}

func (it *materializeContains) Err() error {
	if err := it.next.Err(); err != nil {
		return err
	} else if it.sub == nil {
		return nil
	}
	return it.sub.Err()
}

func (it *materializeContains) run(ctx context.Context) {
	it.next.materializeSet(ctx)
	if it.next.aborted {
		it.sub = it.next.sub.Lookup()
	}
}

func (it *materializeContains) Contains(ctx context.Context, v graph.Ref) bool {
	if !it.next.hasRun {
		it.run(ctx)
	}
	if it.next.Err() != nil {
		return false
	}
	if it.sub != nil {
		return it.sub.Contains(ctx, v)
	}
	key := graph.ToKey(v)
	if i, ok := it.next.containsMap[key]; ok {
		it.next.index = i
		it.next.subindex = 0
		return true
	}
	return false
}

func (it *materializeContains) NextPath(ctx context.Context) bool {
	if !it.next.hasRun {
		it.run(ctx)
	}
	if it.next.Err() != nil {
		return false
	}
	if it.sub != nil {
		return it.sub.NextPath(ctx)
	}
	return it.next.NextPath(ctx)
}
