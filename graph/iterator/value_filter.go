package iterator

// ValueFilter filters a subiterator's results by testing the named quad
// value each one resolves to. Regex and the comparison operators are both
// built as ValueFilters over a different predicate.

import (
	"context"

	"github.com/cayleygraph/shapeql/graph"
	"github.com/cayleygraph/shapeql/quad"
)

var _ graph.IteratorShape = &ValueFilter{}

// ValueFilterFunc reports whether v passes the filter.
type ValueFilterFunc func(quad.Value) (bool, error)

type ValueFilter struct {
	sub    graph.IteratorShape
	qs     graph.Namer
	filter ValueFilterFunc
	name   string
}

// NewValueFilter builds a ValueFilter over sub, resolving each candidate's
// named value through qs. name is used only for String().
func NewValueFilter(qs graph.Namer, sub graph.IteratorShape, name string, filter ValueFilterFunc) *ValueFilter {
	return &ValueFilter{sub: sub, qs: qs, name: name, filter: filter}
}

func (it *ValueFilter) String() string { return it.name }

func (it *ValueFilter) SubIterators() []graph.IteratorShape { return []graph.IteratorShape{it.sub} }

func (it *ValueFilter) Optimize(ctx context.Context) (graph.IteratorShape, bool) {
	newSub, changed := it.sub.Optimize(ctx)
	if changed {
		it.sub = newSub
		if isNull(newSub) {
			return newSub, true
		}
	}
	return it, false
}

func (it *ValueFilter) Stats(ctx context.Context) (graph.IteratorCosts, error) {
	st, err := it.sub.Stats(ctx)
	st.Size.Value /= 2
	st.Size.Exact = false
	return st, err
}

func (it *ValueFilter) doFilter(val graph.Ref) (bool, error) { return it.filter(it.qs.NameOf(val)) }

func (it *ValueFilter) Iterate() graph.Scanner {
	return newValueFilterNext(it.sub.Iterate(), it.doFilter, it.name)
}
func (it *ValueFilter) Lookup() graph.Index {
	return newValueFilterContains(it.sub.Lookup(), it.doFilter, it.name)
}

type valueFilterNext struct {
	sub    graph.Scanner
	filter func(graph.Ref) (bool, error)
	name   string
	result graph.Ref
	err    error
}

func newValueFilterNext(sub graph.Scanner, filter func(graph.Ref) (bool, error), name string) *valueFilterNext {
	return &valueFilterNext{sub: sub, filter: filter, name: name}
}

func (it *valueFilterNext) TagResults(dst map[string]graph.Ref) { it.sub.TagResults(dst) }
func (it *valueFilterNext) Result() graph.Ref                    { return it.result }
func (it *valueFilterNext) Err() error                            { return it.err }
func (it *valueFilterNext) Close() error                          { return it.sub.Close() }
func (it *valueFilterNext) String() string                        { return it.name }

func (it *valueFilterNext) Next(ctx context.Context) bool {
	for it.sub.Next(ctx) {
		val := it.sub.Result()
		ok, err := it.filter(val)
		if err != nil {
			it.err = err
			return false
		}
		if ok {
			it.result = val
			return true
		}
	}
	it.err = it.sub.Err()
	return false
}

func (it *valueFilterNext) NextPath(ctx context.Context) bool {
	for {
		if !it.sub.NextPath(ctx) {
			it.err = it.sub.Err()
			return false
		}
		val := it.sub.Result()
		ok, err := it.filter(val)
		if err != nil {
			it.err = err
			return false
		}
		if ok {
			it.result = val
			return true
		}
	}
}

type valueFilterContains struct {
	sub    graph.Index
	filter func(graph.Ref) (bool, error)
	name   string
	result graph.Ref
	err    error
}

func newValueFilterContains(sub graph.Index, filter func(graph.Ref) (bool, error), name string) *valueFilterContains {
	return &valueFilterContains{sub: sub, filter: filter, name: name}
}

func (it *valueFilterContains) TagResults(dst map[string]graph.Ref) { it.sub.TagResults(dst) }
func (it *valueFilterContains) Result() graph.Ref                    { return it.result }
func (it *valueFilterContains) Err() error                            { return it.err }
func (it *valueFilterContains) Close() error                          { return it.sub.Close() }
func (it *valueFilterContains) String() string                        { return it.name }

func (it *valueFilterContains) Contains(ctx context.Context, val graph.Ref) bool {
	ok, err := it.filter(val)
	if err != nil {
		it.err = err
		return false
	}
	if !ok {
		return false
	}
	if !it.sub.Contains(ctx, val) {
		it.err = it.sub.Err()
		return false
	}
	it.result = val
	return true
}

func (it *valueFilterContains) NextPath(ctx context.Context) bool {
	ok := it.sub.NextPath(ctx)
	if !ok {
		it.err = it.sub.Err()
	}
	return ok
}
