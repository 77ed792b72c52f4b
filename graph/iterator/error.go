package iterator

// Error is an iterator shape that immediately fails with a fixed error. It
// lets a construction-time failure be threaded through the iterator tree
// instead of panicking, so the failure surfaces through the normal Err()
// path at iteration time.

import (
	"context"

	"github.com/cayleygraph/shapeql/graph"
)

var _ graph.IteratorShape = Error{}

// Error is an iterator shape that always fails with Err.
type Error struct {
	Err error
}

// NewError creates an iterator shape that always returns err.
func NewError(err error) Error { return Error{Err: err} }

func (it Error) String() string { return "Error(" + it.Err.Error() + ")" }

func (it Error) Iterate() graph.Scanner { return errorIterator{err: it.Err} }
func (it Error) Lookup() graph.Index    { return errorIterator{err: it.Err} }

func (it Error) Stats(ctx context.Context) (graph.IteratorCosts, error) {
	return graph.IteratorCosts{}, it.Err
}

func (it Error) Optimize(ctx context.Context) (graph.IteratorShape, bool) { return it, false }

func (it Error) SubIterators() []graph.IteratorShape { return nil }

type errorIterator struct{ err error }

func (it errorIterator) TagResults(dst map[string]graph.Ref)      {}
func (it errorIterator) Result() graph.Ref                        { return nil }
func (it errorIterator) NextPath(ctx context.Context) bool         { return false }
func (it errorIterator) Err() error                                { return it.err }
func (it errorIterator) Close() error                              { return nil }
func (it errorIterator) Next(ctx context.Context) bool             { return false }
func (it errorIterator) Contains(ctx context.Context, v graph.Ref) bool {
	return false
}
func (it errorIterator) String() string { return "Error" }
