package iterator

// And is the intersection of its subiterators: if one contains [1,3,5] and
// another [2,3,4], And contains [3]. sub[0] is the primary branch: the one
// driven by Next, with the rest checked by Contains against each candidate.
// Optimize is what actually picks a good primary and reorders the rest; an
// And built directly through NewAnd just uses the order it was given.
//
// opt holds optional branches: they are Contains-tested against every
// result but never gate it, and contribute tags only when they matched
// (optCheck records which did, for TagResults and NextPath).

import (
	"context"
	"sort"

	"github.com/cayleygraph/shapeql/graph"
)

var _ graph.IteratorShape = &And{}

// And is the intersection of its subiterators, with an optional set of
// branches that contribute tags but don't affect membership.
type And struct {
	sub       []graph.IteratorShape
	opt       []graph.IteratorShape
	checkList []graph.IteratorShape
}

// NewAnd creates an And iterator over the given subiterators. The first one
// added is the primary (Next-driven) branch until Optimize reorders them.
func NewAnd(sub ...graph.IteratorShape) *And {
	it := &And{}
	for _, s := range sub {
		it.AddSubIterator(s)
	}
	return it
}

// AddSubIterator adds a branch that must contain every result.
func (it *And) AddSubIterator(sub graph.IteratorShape) {
	it.sub = append(it.sub, sub)
}

// AddOptionalIterator adds a branch that is Contains-tested but does not
// affect which results match; only its tags are propagated, and only when
// it matched.
func (it *And) AddOptionalIterator(sub graph.IteratorShape) *And {
	it.opt = append(it.opt, sub)
	return it
}

func (it *And) String() string { return "And" }

// SubIterators returns the intersected branches followed by the optional
// ones, primary first.
func (it *And) SubIterators() []graph.IteratorShape {
	iters := make([]graph.IteratorShape, 0, len(it.sub)+len(it.opt))
	iters = append(iters, it.sub...)
	iters = append(iters, it.opt...)
	return iters
}

func (it *And) Stats(ctx context.Context) (graph.IteratorCosts, error) {
	stats, _, err := getStatsForSlice(ctx, it.sub, it.opt)
	return stats, err
}

// Iterate drives the And by Next()ing sub[0] and Contains()ing the
// candidate against the remaining branches, in the order they're stored.
func (it *And) Iterate() graph.Scanner {
	if len(it.sub) == 0 {
		return newNull().Iterate()
	}
	primary := it.sub[0].Iterate()
	sub := make([]graph.Index, 0, len(it.sub)-1)
	for _, s := range it.sub[1:] {
		sub = append(sub, s.Lookup())
	}
	return newAndNext(primary, sub, it.optIndexes())
}

// Lookup tests membership using checkList if Optimize built one (ordered by
// ascending ContainsCost, to fail as cheaply as possible), else the branches
// in their stored order.
func (it *And) Lookup() graph.Index {
	check := it.sub
	if it.checkList != nil {
		check = it.checkList
	}
	if len(check) == 0 {
		return newNull().Lookup()
	}
	primary := check[0].Lookup()
	sub := make([]graph.Index, 0, len(check)-1)
	for _, s := range check[1:] {
		sub = append(sub, s.Lookup())
	}
	return newAndContains(primary, sub, it.optIndexes())
}

func (it *And) optIndexes() []graph.Index {
	opt := make([]graph.Index, 0, len(it.opt))
	for _, s := range it.opt {
		opt = append(opt, s.Lookup())
	}
	return opt
}

// Optimize picks which branch to drive with Next and in what order to
// Contains-check the rest, wraps expensive-to-reprobe branches in
// Materialize, and builds a ContainsCost-sorted checkList for the Lookup
// path. This is where most of the actual query planning happens; changing
// it wrong either changes results or just makes them slow.
func (it *And) Optimize(ctx context.Context) (graph.IteratorShape, bool) {
	old := it.sub
	if len(old) == 0 {
		return newNull(), true
	}

	its := optimizeSubIterators(ctx, old)

	if out := optimizeReplacement(its); out != nil && len(it.opt) == 0 {
		return out, true
	}

	its = optimizeOrder(ctx, its)
	its, _ = materializeIts(ctx, its)

	newAnd := NewAnd(its...)
	for _, sub := range optimizeSubIterators(ctx, it.opt) {
		newAnd.AddOptionalIterator(sub)
	}
	_ = newAnd.optimizeContains(ctx)
	return newAnd, true
}

func (it *And) optimizeContains(ctx context.Context) error {
	it.checkList = append([]graph.IteratorShape{}, it.sub...)
	return sortByContainsCost(ctx, it.checkList)
}

func isNull(it graph.IteratorShape) bool {
	_, ok := it.(Null)
	return ok
}

func optimizeSubIterators(ctx context.Context, its []graph.IteratorShape) []graph.IteratorShape {
	out := make([]graph.IteratorShape, 0, len(its))
	for _, it := range its {
		o, _ := it.Optimize(ctx)
		out = append(out, o)
	}
	return out
}

// optimizeReplacement reports whether its collapses to a single equivalent
// shape: empty and null-of-size-one collapse to Null, and a lone
// subiterator is returned as-is.
func optimizeReplacement(its []graph.IteratorShape) graph.IteratorShape {
	if len(its) == 0 {
		return newNull()
	}
	if len(its) == 1 {
		return its[0]
	}
	if hasAnyNullIterators(its) {
		return newNull()
	}
	return nil
}

func hasAnyNullIterators(its []graph.IteratorShape) bool {
	for _, it := range its {
		if isNull(it) {
			return true
		}
	}
	return false
}

// optimizeOrder picks the branch with the lowest projected total cost
// (Next()ing it out fully, Contains()ing each result against the rest) and
// moves it to the front, leaving the rest in their given order behind it.
func optimizeOrder(ctx context.Context, its []graph.IteratorShape) []graph.IteratorShape {
	var (
		best     graph.IteratorShape
		bestCost = int64(1 << 62)
	)
	for _, root := range its {
		rootStats, _ := root.Stats(ctx)
		cost := rootStats.NextCost
		for _, f := range its {
			if f == root {
				continue
			}
			stats, _ := f.Stats(ctx)
			cost += stats.ContainsCost * (1 + (rootStats.Size.Value / (stats.Size.Value + 1)))
		}
		cost *= rootStats.Size.Value
		if cost < bestCost {
			best = root
			bestCost = cost
		}
	}

	out := make([]graph.IteratorShape, 0, len(its))
	if best != nil {
		out = append(out, best)
	}
	for _, it := range its {
		if it != best {
			out = append(out, it)
		}
	}
	return out
}

func sortByContainsCost(ctx context.Context, arr []graph.IteratorShape) error {
	cost := make([]graph.IteratorCosts, 0, len(arr))
	var last error
	for _, s := range arr {
		c, err := s.Stats(ctx)
		if err != nil {
			last = err
		}
		cost = append(cost, c)
	}
	sort.Sort(byCost{list: arr, cost: cost})
	return last
}

type byCost struct {
	list []graph.IteratorShape
	cost []graph.IteratorCosts
}

func (c byCost) Len() int { return len(c.list) }
func (c byCost) Less(i, j int) bool {
	return c.cost[i].ContainsCost < c.cost[j].ContainsCost
}
func (c byCost) Swap(i, j int) {
	c.list[i], c.list[j] = c.list[j], c.list[i]
	c.cost[i], c.cost[j] = c.cost[j], c.cost[i]
}

// materializeIts wraps a branch (other than the primary) in Materialize
// when scanning it fully is projected to be cheaper than repeatedly
// Contains()ing it and it's deep enough that repeated Contains() calls
// actually cost something (a shallow tree, e.g. a Fixed, is cheap to
// Contains() regardless).
func materializeIts(ctx context.Context, its []graph.IteratorShape) ([]graph.IteratorShape, error) {
	if len(its) == 0 {
		return its, nil
	}
	allStats, stats, err := getStatsForSlice(ctx, its, nil)
	out := make([]graph.IteratorShape, 0, len(its))
	out = append(out, its[0])
	for i, sub := range its[1:] {
		st := stats[i+1]
		if st.Size.Value*st.NextCost < st.ContainsCost*(1+(st.Size.Value/(allStats.Size.Value+1))) {
			if graph.Height(sub, func(s graph.IteratorShape) bool {
				_, ok := s.(*Materialize)
				return !ok
			}) > 10 {
				out = append(out, newMaterialize(sub))
				continue
			}
		}
		out = append(out, sub)
	}
	return out, err
}

// getStatsForSlice aggregates the cost of driving its[0] via Next and
// Contains()ing the rest (plus opt) against each result, along with the
// conservative size estimate (the smallest branch, since And can't produce
// more results than its smallest input).
func getStatsForSlice(ctx context.Context, its, opt []graph.IteratorShape) (graph.IteratorCosts, []graph.IteratorCosts, error) {
	if len(its) == 0 {
		return graph.IteratorCosts{}, nil, nil
	}

	arr := make([]graph.IteratorCosts, 0, len(its))
	primaryStats, _ := its[0].Stats(ctx)
	arr = append(arr, primaryStats)

	containsCost := primaryStats.ContainsCost
	nextCost := primaryStats.NextCost
	size := primaryStats.Size.Value
	exact := primaryStats.Size.Exact

	var last error
	for _, sub := range its[1:] {
		stats, err := sub.Stats(ctx)
		if err != nil {
			last = err
		}
		arr = append(arr, stats)
		nextCost += stats.ContainsCost * (1 + (primaryStats.Size.Value / (stats.Size.Value + 1)))
		containsCost += stats.ContainsCost
		if size > stats.Size.Value {
			size = stats.Size.Value
			exact = stats.Size.Exact
		}
	}
	for _, sub := range opt {
		stats, _ := sub.Stats(ctx)
		nextCost += stats.ContainsCost * (1 + (primaryStats.Size.Value / (stats.Size.Value + 1)))
		containsCost += stats.ContainsCost
	}
	return graph.IteratorCosts{
		ContainsCost: containsCost,
		NextCost:     nextCost,
		Size:         graph.Size{Value: size, Exact: exact},
	}, arr, last
}

// andBase holds the state and logic shared by the Next and Contains
// execution modes: the intersected and optional branches (already compiled
// to Index, since every branch but the driver is only ever Contains()ed),
// and which optional branches matched the current result.
type andBase struct {
	sub      []graph.Index
	opt      []graph.Index
	optCheck []bool
	result   graph.Ref
	err      error
}

func newAndBase(sub, opt []graph.Index) andBase {
	return andBase{sub: sub, opt: opt, optCheck: make([]bool, len(opt))}
}

func (it *andBase) checkOpt(ctx context.Context, val graph.Ref) {
	for i, sub := range it.opt {
		it.optCheck[i] = sub.Contains(ctx, val)
	}
}

// subContain checks val against every branch in order. On failure it
// rewinds the branches checked so far back to prev, so their tag state
// matches the last accepted result rather than the rejected candidate.
func (it *andBase) subContain(ctx context.Context, val, prev graph.Ref) bool {
	for i, sub := range it.sub {
		if !sub.Contains(ctx, val) {
			if err := sub.Err(); err != nil {
				it.err = err
				return false
			}
			if prev != nil {
				for j := 0; j < i; j++ {
					it.sub[j].Contains(ctx, prev)
				}
			}
			return false
		}
	}
	it.result = val
	it.checkOpt(ctx, val)
	return true
}

func (it *andBase) Result() graph.Ref { return it.result }
func (it *andBase) Err() error        { return it.err }

func (it *andBase) TagResults(dst map[string]graph.Ref) {
	for _, sub := range it.sub {
		sub.TagResults(dst)
	}
	for i, sub := range it.opt {
		if it.optCheck[i] {
			sub.TagResults(dst)
		}
	}
}

func (it *andBase) nextPathSub(ctx context.Context) bool {
	for _, sub := range it.sub {
		if sub.NextPath(ctx) {
			return true
		} else if err := sub.Err(); err != nil {
			it.err = err
			return false
		}
	}
	for i, sub := range it.opt {
		if !it.optCheck[i] {
			continue
		}
		if sub.NextPath(ctx) {
			return true
		} else if err := sub.Err(); err != nil {
			it.err = err
			return false
		}
	}
	return false
}

func (it *andBase) closeSub() error {
	var err error
	for _, sub := range it.sub {
		if err2 := sub.Close(); err2 != nil && err == nil {
			err = err2
		}
	}
	for _, sub := range it.opt {
		if err2 := sub.Close(); err2 != nil && err == nil {
			err = err2
		}
	}
	return err
}

// andNext drives And on the Next() path: it Next()s the primary and
// Contains()-tests the candidate against every other branch.
type andNext struct {
	andBase
	primary graph.Scanner
}

func newAndNext(primary graph.Scanner, sub, opt []graph.Index) *andNext {
	return &andNext{andBase: newAndBase(sub, opt), primary: primary}
}

func (it *andNext) Next(ctx context.Context) bool {
	for it.primary.Next(ctx) {
		cur := it.primary.Result()
		if it.subContain(ctx, cur, nil) {
			return true
		}
	}
	it.err = it.primary.Err()
	return false
}

func (it *andNext) NextPath(ctx context.Context) bool {
	if it.primary.NextPath(ctx) {
		return true
	} else if err := it.primary.Err(); err != nil {
		it.err = err
		return false
	}
	return it.nextPathSub(ctx)
}

func (it *andNext) TagResults(dst map[string]graph.Ref) {
	it.primary.TagResults(dst)
	it.andBase.TagResults(dst)
}

func (it *andNext) Close() error {
	err := it.primary.Close()
	if err2 := it.closeSub(); err2 != nil && err == nil {
		err = err2
	}
	return err
}

func (it *andNext) String() string { return "And" }

// andContains drives And on the Contains() path: every branch, including
// the primary, is only ever Contains()ed.
type andContains struct {
	andBase
	primary graph.Index
}

func newAndContains(primary graph.Index, sub, opt []graph.Index) *andContains {
	return &andContains{andBase: newAndBase(sub, opt), primary: primary}
}

func (it *andContains) Contains(ctx context.Context, v graph.Ref) bool {
	prev := it.result
	if it.primary.Contains(ctx, v) && it.subContain(ctx, v, prev) {
		return true
	}
	if err := it.primary.Err(); err != nil {
		it.err = err
	}
	if prev != nil {
		it.primary.Contains(ctx, prev)
	}
	return false
}

func (it *andContains) NextPath(ctx context.Context) bool {
	if it.primary.NextPath(ctx) {
		return true
	} else if err := it.primary.Err(); err != nil {
		it.err = err
		return false
	}
	return it.nextPathSub(ctx)
}

func (it *andContains) TagResults(dst map[string]graph.Ref) {
	it.primary.TagResults(dst)
	it.andBase.TagResults(dst)
}

func (it *andContains) Close() error {
	err := it.primary.Close()
	if err2 := it.closeSub(); err2 != nil && err == nil {
		err = err2
	}
	return err
}

func (it *andContains) String() string { return "And" }
