package iterator_test

import (
	"context"

	"github.com/cayleygraph/shapeql/graph"
	"github.com/cayleygraph/shapeql/quad"

	. "github.com/cayleygraph/shapeql/graph/iterator"
)

// intNode is a graph.Ref test fixture standing in for a resolved node
// value, letting iterator tests run without a real QuadStore.
type intNode int64

func (v intNode) Key() interface{} { return v }

// stringNode is intNode's string-valued counterpart, used by the
// value-filter and comparison tests.
type stringNode string

func (v stringNode) Key() interface{} { return v }

// intNamer resolves intNode/stringNode refs to a quad.Value, standing in
// for a QuadStore in tests that exercise ValueFilter, Sort or Count.
type intNamer struct{}

func (intNamer) NameOf(v graph.Ref) quad.Value {
	switch v := v.(type) {
	case intNode:
		return quad.Int(v)
	case stringNode:
		return quad.String(v)
	case graph.PreFetchedValue:
		return v.NameOf()
	}
	return nil
}

func (intNamer) ValueOf(v quad.Value) graph.Ref {
	switch v := v.(type) {
	case quad.Int:
		return intNode(v)
	case quad.String:
		return stringNode(v)
	}
	return nil
}

// newInt64 returns a Fixed shape holding every int in the closed range
// [low, high].
func newInt64(low, high int64, _ bool) graph.IteratorShape {
	f := NewFixed()
	for i := low; i <= high; i++ {
		f.Add(intNode(i))
	}
	return f
}

// newTestIterator builds a shape that fails immediately with err, standing
// in for a subiterator whose underlying store returned an error.
func newTestIterator(_ bool, err error) graph.IteratorShape {
	return NewError(err)
}

// iterated drains it in scan mode and collects the int form of its
// results, in order.
func iterated(it graph.IteratorShape) []int {
	ctx := context.TODO()
	s := it.Iterate()
	defer s.Close()
	var res []int
	for s.Next(ctx) {
		res = append(res, int(s.Result().(intNode)))
	}
	return res
}

// containsValue checks v against it in lookup mode.
func containsValue(it graph.IteratorShape, v graph.Ref) bool {
	idx := it.Lookup()
	defer idx.Close()
	return idx.Contains(context.TODO(), v)
}
