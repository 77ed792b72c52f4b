package iterator

// Skip discards the first n results of its subiterator on the Next path.
// Its Lookup mode just delegates straight through: skipping only applies
// to scans, not to a membership test against a single value.

import (
	"context"
	"fmt"

	"github.com/cayleygraph/shapeql/graph"
)

var _ graph.IteratorShape = &Skip{}

type Skip struct {
	skip int64
	it   graph.IteratorShape
}

func NewSkip(it graph.IteratorShape, skip int64) *Skip { return &Skip{skip: skip, it: it} }

func (it *Skip) String() string { return fmt.Sprintf("Skip(%d)", it.skip) }

func (it *Skip) SubIterators() []graph.IteratorShape { return []graph.IteratorShape{it.it} }

func (it *Skip) Optimize(ctx context.Context) (graph.IteratorShape, bool) {
	newIt, optimized := it.it.Optimize(ctx)
	if it.skip <= 0 {
		return newIt, true
	}
	it.it = newIt
	return it, optimized
}

func (it *Skip) Stats(ctx context.Context) (graph.IteratorCosts, error) {
	st, err := it.it.Stats(ctx)
	st.Size.Value -= it.skip
	if st.Size.Value < 0 {
		st.Size.Value = 0
	}
	return st, err
}

func (it *Skip) Iterate() graph.Scanner { return newSkipNext(it.it.Iterate(), it.skip) }
func (it *Skip) Lookup() graph.Index    { return it.it.Lookup() }

type skipNext struct {
	skip    int64
	skipped int64
	it      graph.Scanner
}

func newSkipNext(it graph.Scanner, skip int64) *skipNext { return &skipNext{skip: skip, it: it} }

func (it *skipNext) TagResults(dst map[string]graph.Ref) { it.it.TagResults(dst) }
func (it *skipNext) Result() graph.Ref                    { return it.it.Result() }
func (it *skipNext) Err() error                            { return it.it.Err() }
func (it *skipNext) Close() error                          { return it.it.Close() }
func (it *skipNext) String() string                        { return fmt.Sprintf("Skip(%d)", it.skip) }

func (it *skipNext) Next(ctx context.Context) bool {
	for ; it.skipped < it.skip; it.skipped++ {
		if !it.it.Next(ctx) {
			return false
		}
	}
	return it.it.Next(ctx)
}

func (it *skipNext) NextPath(ctx context.Context) bool {
	for ; it.skipped < it.skip; it.skipped++ {
		if !it.it.NextPath(ctx) {
			return false
		}
	}
	return it.it.NextPath(ctx)
}
