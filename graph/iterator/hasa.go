package iterator

// HasA takes a subiterator of quad refs and acts as an iterator over the
// nodes reachable via one of its directions: the link HasA subject, the
// link HasA predicate, and so on. The name comes from the idea that a
// "link HasA subject" or a "link HasA predicate".
//
// HasA may return the same value twice on the Next path -- once per
// matching quad. Contains()ing a HasA means "check every quad that has
// this value in the given direction against the subiterator"; since more
// than one such quad may exist, NextPath enumerates the rest once Contains
// finds the first. It's the dual of LinksTo.

import (
	"context"
	"fmt"

	"github.com/cayleygraph/shapeql/graph"
	"github.com/cayleygraph/shapeql/quad"
)

var _ graph.IteratorShape = &HasA{}

type HasA struct {
	qs  graph.QuadIndexer
	sub graph.IteratorShape
	dir quad.Direction
}

// NewHasA builds a HasA projecting sub's quad refs onto their d direction.
func NewHasA(qs graph.QuadIndexer, sub graph.IteratorShape, d quad.Direction) *HasA {
	return &HasA{qs: qs, sub: sub, dir: d}
}

func (it *HasA) Direction() quad.Direction { return it.dir }

func (it *HasA) String() string { return fmt.Sprintf("HasA(%v)", it.dir) }

func (it *HasA) SubIterators() []graph.IteratorShape { return []graph.IteratorShape{it.sub} }

func (it *HasA) Optimize(ctx context.Context) (graph.IteratorShape, bool) {
	newSub, changed := it.sub.Optimize(ctx)
	if changed {
		it.sub = newSub
		if isNull(newSub) {
			return newSub, true
		}
	}
	return it, false
}

const (
	hasaFaninFactor  = int64(1)
	hasaFanoutFactor = int64(30)
	hasaNextConstant = int64(2)
)

func (it *HasA) Stats(ctx context.Context) (graph.IteratorCosts, error) {
	sub, err := it.sub.Stats(ctx)
	return graph.IteratorCosts{
		NextCost:     1 + sub.NextCost,
		ContainsCost: hasaFanoutFactor * hasaNextConstant * sub.ContainsCost,
		Size:         graph.Size{Value: hasaFaninFactor * sub.Size.Value, Exact: false},
	}, err
}

func (it *HasA) Iterate() graph.Scanner { return newHasaNext(it.qs, it.sub.Iterate(), it.dir) }
func (it *HasA) Lookup() graph.Index    { return newHasaContains(it.qs, it.sub.Lookup(), it.dir) }

type hasaNext struct {
	qs      graph.QuadIndexer
	primary graph.Scanner
	dir     quad.Direction
	result  graph.Ref
	err     error
}

func newHasaNext(qs graph.QuadIndexer, primary graph.Scanner, dir quad.Direction) *hasaNext {
	return &hasaNext{qs: qs, primary: primary, dir: dir}
}

func (it *hasaNext) TagResults(dst map[string]graph.Ref) { it.primary.TagResults(dst) }
func (it *hasaNext) Result() graph.Ref                    { return it.result }
func (it *hasaNext) Err() error                            { return it.err }

func (it *hasaNext) Next(ctx context.Context) bool {
	if !it.primary.Next(ctx) {
		it.err = it.primary.Err()
		return false
	}
	it.result = it.qs.QuadDirection(it.primary.Result(), it.dir)
	return true
}

func (it *hasaNext) NextPath(ctx context.Context) bool {
	ok := it.primary.NextPath(ctx)
	if !ok {
		it.err = it.primary.Err()
	}
	return ok
}

func (it *hasaNext) Close() error   { return it.primary.Close() }
func (it *hasaNext) String() string { return "HasA" }

type hasaContains struct {
	qs      graph.QuadIndexer
	primary graph.Index
	dir     quad.Direction
	quads   graph.Scanner
	result  graph.Ref
	err     error
}

func newHasaContains(qs graph.QuadIndexer, primary graph.Index, dir quad.Direction) *hasaContains {
	return &hasaContains{qs: qs, primary: primary, dir: dir}
}

func (it *hasaContains) TagResults(dst map[string]graph.Ref) { it.primary.TagResults(dst) }
func (it *hasaContains) Result() graph.Ref                    { return it.result }
func (it *hasaContains) Err() error                            { return it.err }

func (it *hasaContains) Contains(ctx context.Context, val graph.Ref) bool {
	if it.quads != nil {
		it.quads.Close()
	}
	it.quads = it.qs.QuadIterator(it.dir, val).Iterate()
	return it.advance(ctx, val)
}

func (it *hasaContains) advance(ctx context.Context, val graph.Ref) bool {
	for it.quads.Next(ctx) {
		if it.primary.Contains(ctx, it.quads.Result()) {
			it.result = val
			return true
		}
	}
	it.err = it.quads.Err()
	return false
}

func (it *hasaContains) NextPath(ctx context.Context) bool {
	if it.primary.NextPath(ctx) {
		return true
	}
	if err := it.primary.Err(); err != nil {
		it.err = err
		return false
	}
	if it.quads == nil {
		return false
	}
	return it.advance(ctx, it.result)
}

func (it *hasaContains) Close() error {
	if it.quads != nil {
		if err := it.quads.Close(); err != nil {
			it.primary.Close()
			return err
		}
	}
	return it.primary.Close()
}

func (it *hasaContains) String() string { return "HasA" }
