package iterator

// Or is the union of its subiterators. Never reorders them from the order
// they arrived in. A short-circuiting Or instead returns values from the
// first subiterator that produces any at all, then stops -- used where
// the caller only wants one of several equivalent ways to reach a result,
// not all of them.
//
// A value may come back twice, once per matching branch; that is what
// Unique is for.

import (
	"context"

	"github.com/cayleygraph/shapeql/graph"
)

var _ graph.IteratorShape = &Or{}

type Or struct {
	isShortCircuiting bool
	sub               []graph.IteratorShape
}

func NewOr(sub ...graph.IteratorShape) *Or {
	it := &Or{sub: make([]graph.IteratorShape, 0, len(sub))}
	for _, s := range sub {
		it.AddSubIterator(s)
	}
	return it
}

func NewShortCircuitOr(sub ...graph.IteratorShape) *Or {
	it := &Or{sub: make([]graph.IteratorShape, 0, len(sub)), isShortCircuiting: true}
	for _, s := range sub {
		it.AddSubIterator(s)
	}
	return it
}

// AddSubIterator adds a subiterator to this Or. Order matters.
func (it *Or) AddSubIterator(sub graph.IteratorShape) { it.sub = append(it.sub, sub) }

func (it *Or) String() string { return "Or" }

func (it *Or) SubIterators() []graph.IteratorShape { return it.sub }

func (it *Or) Iterate() graph.Scanner {
	sub := make([]graph.Scanner, 0, len(it.sub))
	for _, s := range it.sub {
		sub = append(sub, s.Iterate())
	}
	return newOrNext(sub, it.isShortCircuiting)
}

func (it *Or) Lookup() graph.Index {
	sub := make([]graph.Index, 0, len(it.sub))
	for _, s := range it.sub {
		sub = append(sub, s.Lookup())
	}
	return newOrContains(sub, it.isShortCircuiting)
}

func (it *Or) Optimize(ctx context.Context) (graph.IteratorShape, bool) {
	opt := optimizeSubIterators(ctx, it.sub)
	newOr := &Or{isShortCircuiting: it.isShortCircuiting}
	for _, o := range opt {
		newOr.AddSubIterator(o)
	}
	return newOr, true
}

// Stats estimates the size of Or as the sum of its branches (the largest,
// for a short-circuiting Or), since it's a union and may overcount
// duplicates between branches.
func (it *Or) Stats(ctx context.Context) (graph.IteratorCosts, error) {
	var (
		containsCost int64
		nextCost     int64
		size         = graph.Size{Exact: true}
		last         error
	)
	for _, sub := range it.sub {
		stats, err := sub.Stats(ctx)
		if err != nil {
			last = err
		}
		nextCost += stats.NextCost
		containsCost += stats.ContainsCost
		if it.isShortCircuiting {
			if size.Value < stats.Size.Value {
				size = stats.Size
			}
		} else {
			size.Value += stats.Size.Value
			size.Exact = size.Exact && stats.Size.Exact
		}
	}
	return graph.IteratorCosts{ContainsCost: containsCost, NextCost: nextCost, Size: size}, last
}

type orNext struct {
	shortCircuit bool
	sub          []graph.Scanner
	curInd       int
	result       graph.Ref
	err          error
}

func newOrNext(sub []graph.Scanner, shortCircuit bool) *orNext {
	return &orNext{sub: sub, curInd: -1, shortCircuit: shortCircuit}
}

func (it *orNext) TagResults(dst map[string]graph.Ref) {
	if it.curInd >= 0 && it.curInd < len(it.sub) {
		it.sub[it.curInd].TagResults(dst)
	}
}

func (it *orNext) String() string { return "Or" }
func (it *orNext) Result() graph.Ref { return it.result }
func (it *orNext) Err() error         { return it.err }

// Next advances through every branch in turn, unless short-circuiting, in
// which case it sticks to the first branch that ever produced a result.
func (it *orNext) Next(ctx context.Context) bool {
	if it.curInd >= len(it.sub) {
		return false
	}
	first := it.curInd == -1
	if first {
		it.curInd = 0
	}
	for {
		cur := it.sub[it.curInd]
		if cur.Next(ctx) {
			it.result = cur.Result()
			return true
		}
		if it.err = cur.Err(); it.err != nil {
			return false
		}
		if it.shortCircuit && !first {
			return false
		}
		it.curInd++
		if it.curInd >= len(it.sub) {
			return false
		}
	}
}

func (it *orNext) NextPath(ctx context.Context) bool {
	if it.curInd == -1 {
		return false
	}
	ok := it.sub[it.curInd].NextPath(ctx)
	if !ok {
		it.err = it.sub[it.curInd].Err()
	}
	return ok
}

func (it *orNext) Close() error {
	var err error
	for _, s := range it.sub {
		if e := s.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

type orContains struct {
	shortCircuit bool
	sub          []graph.Index
	curInd       int
	result       graph.Ref
	err          error
}

func newOrContains(sub []graph.Index, shortCircuit bool) *orContains {
	return &orContains{sub: sub, curInd: -1, shortCircuit: shortCircuit}
}

func (it *orContains) TagResults(dst map[string]graph.Ref) {
	if it.curInd >= 0 && it.curInd < len(it.sub) {
		it.sub[it.curInd].TagResults(dst)
	}
}

func (it *orContains) String() string { return "Or" }
func (it *orContains) Result() graph.Ref { return it.result }
func (it *orContains) Err() error         { return it.err }

func (it *orContains) Contains(ctx context.Context, val graph.Ref) bool {
	for i, sub := range it.sub {
		if sub.Contains(ctx, val) {
			it.curInd = i
			it.result = val
			return true
		}
		if err := sub.Err(); err != nil {
			it.err = err
			return false
		}
	}
	return false
}

// NextPath only offers alternate paths from the branch that last matched;
// it doesn't go looking for matches in other branches.
func (it *orContains) NextPath(ctx context.Context) bool {
	if it.curInd == -1 {
		return false
	}
	ok := it.sub[it.curInd].NextPath(ctx)
	if !ok {
		it.err = it.sub[it.curInd].Err()
	}
	return ok
}

func (it *orContains) Close() error {
	var err error
	for _, s := range it.sub {
		if e := s.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
