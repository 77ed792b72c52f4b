package iterator

// LinksTo takes a subiterator of nodes and contains the quads that link to
// those nodes in the given direction: the dual of HasA. Next()ing a
// LinksTo walks every quad linking to the current subiterator value before
// advancing it, so it grows with fanout; Contains()ing one only has to
// pull one direction out of the candidate quad and check the subiterator,
// so it stays cheap.

import (
	"context"
	"fmt"

	"github.com/cayleygraph/shapeql/graph"
	"github.com/cayleygraph/shapeql/quad"
)

var _ graph.IteratorShape = &LinksTo{}

type LinksTo struct {
	qs  graph.QuadIndexer
	sub graph.IteratorShape
	dir quad.Direction
}

// NewLinksTo builds a LinksTo over the quads with sub's values in direction d.
func NewLinksTo(qs graph.QuadIndexer, sub graph.IteratorShape, d quad.Direction) *LinksTo {
	return &LinksTo{qs: qs, sub: sub, dir: d}
}

func (it *LinksTo) Direction() quad.Direction { return it.dir }

func (it *LinksTo) String() string { return fmt.Sprintf("LinksTo(%v)", it.dir) }

func (it *LinksTo) SubIterators() []graph.IteratorShape { return []graph.IteratorShape{it.sub} }

func (it *LinksTo) Optimize(ctx context.Context) (graph.IteratorShape, bool) {
	newSub, changed := it.sub.Optimize(ctx)
	if changed {
		it.sub = newSub
		if isNull(newSub) {
			return newSub, true
		}
	}
	return it, false
}

const linksToFanoutFactor = int64(20)

func (it *LinksTo) Stats(ctx context.Context) (graph.IteratorCosts, error) {
	sub, err := it.sub.Stats(ctx)
	size := graph.Size{Value: sub.Size.Value * linksToFanoutFactor, Exact: false}
	if fixed, ok := it.sub.(*Fixed); ok {
		var sz int64
		exact := true
		for _, v := range fixed.Values() {
			qsz, qerr := it.qs.QuadIteratorSize(ctx, it.dir, v)
			if qerr != nil {
				err = qerr
			}
			sz += qsz.Value
			exact = exact && qsz.Exact
		}
		size = graph.Size{Value: sz, Exact: exact}
	} else if qst, qerr := it.qs.Stats(ctx, false); qerr != nil {
		err = qerr
	} else if limit := qst.Quads.Value/2 + 1; size.Value > limit {
		size.Value = limit
	}
	return graph.IteratorCosts{
		NextCost:     2 + sub.NextCost,
		ContainsCost: 1 + sub.ContainsCost,
		Size:         size,
	}, err
}

func (it *LinksTo) Iterate() graph.Scanner { return newLinksToNext(it.qs, it.sub.Iterate(), it.dir) }
func (it *LinksTo) Lookup() graph.Index    { return newLinksToContains(it.qs, it.sub.Lookup(), it.dir) }

type linksToNext struct {
	qs      graph.QuadIndexer
	primary graph.Scanner
	dir     quad.Direction
	quads   graph.Scanner
	result  graph.Ref
	err     error
}

func newLinksToNext(qs graph.QuadIndexer, primary graph.Scanner, dir quad.Direction) *linksToNext {
	return &linksToNext{qs: qs, primary: primary, dir: dir, quads: NewNull().Iterate()}
}

func (it *linksToNext) TagResults(dst map[string]graph.Ref) { it.primary.TagResults(dst) }
func (it *linksToNext) Result() graph.Ref                    { return it.result }
func (it *linksToNext) Err() error                            { return it.err }

func (it *linksToNext) Next(ctx context.Context) bool {
	for {
		if it.quads.Next(ctx) {
			it.result = it.quads.Result()
			return true
		}
		if err := it.quads.Err(); err != nil {
			it.err = err
			return false
		}
		if !it.primary.Next(ctx) {
			it.err = it.primary.Err()
			return false
		}
		it.quads.Close()
		it.quads = it.qs.QuadIterator(it.dir, it.primary.Result()).Iterate()
	}
}

func (it *linksToNext) NextPath(ctx context.Context) bool {
	ok := it.primary.NextPath(ctx)
	if !ok {
		it.err = it.primary.Err()
	}
	return ok
}

func (it *linksToNext) Close() error {
	err := it.quads.Close()
	if err2 := it.primary.Close(); err2 != nil && err == nil {
		err = err2
	}
	return err
}

func (it *linksToNext) String() string { return "LinksTo" }

type linksToContains struct {
	qs      graph.QuadIndexer
	primary graph.Index
	dir     quad.Direction
	result  graph.Ref
	err     error
}

func newLinksToContains(qs graph.QuadIndexer, primary graph.Index, dir quad.Direction) *linksToContains {
	return &linksToContains{qs: qs, primary: primary, dir: dir}
}

func (it *linksToContains) TagResults(dst map[string]graph.Ref) { it.primary.TagResults(dst) }
func (it *linksToContains) Result() graph.Ref                    { return it.result }
func (it *linksToContains) Err() error                            { return it.err }

func (it *linksToContains) Contains(ctx context.Context, val graph.Ref) bool {
	node := it.qs.QuadDirection(val, it.dir)
	if it.primary.Contains(ctx, node) {
		it.result = val
		return true
	}
	it.err = it.primary.Err()
	return false
}

func (it *linksToContains) NextPath(ctx context.Context) bool {
	ok := it.primary.NextPath(ctx)
	if !ok {
		it.err = it.primary.Err()
	}
	return ok
}

func (it *linksToContains) Close() error   { return it.primary.Close() }
func (it *linksToContains) String() string { return "LinksTo" }
