package graph

// Defines the Scan/Lookup iterator protocol: the runtime half of the
// logical Shape layer in graph/shape. An IteratorShape is a compiled query
// plan; calling Iterate or Lookup on it produces a live Scanner or Index
// that actually walks the backend.

import "context"

// TaggerBase is implemented by iterators that can have tags added to them
// directly (in this module, Save). It is optional: most iterators
// only forward TagResults from their children and don't implement it
// themselves. graph/iterator.Tag probes for it with a type assertion and
// falls back to wrapping the iterator in a Save.
type TaggerBase interface {
	// AddTag adds a tag that will be filled with the iterator's Result
	// whenever TagResults is called.
	AddTag(tag string)
	// Tags returns the tags added with AddTag.
	Tags() []string
	// AddFixedTag adds a tag bound to a constant value, independent of
	// iteration. Used by Save when saving a constant rather than a
	// sub-iterator's result.
	AddFixedTag(tag string, value Ref)
	// FixedTags returns the tags added with AddFixedTag.
	FixedTags() map[string]Ref
	// CopyFromTagger copies the tag set of another TaggerBase onto the
	// receiver, used when Optimize folds one tagging node into another.
	CopyFromTagger(st TaggerBase)
}

// IteratorBase is the part of Scanner and Index shared by both execution
// modes: reading out the current result, its tag bindings, its remaining
// path alternatives, and closing.
type IteratorBase interface {
	// TagResults fills dst with this iterator's tag bindings for its
	// current Result.
	TagResults(dst map[string]Ref)

	// Result returns the value the iterator is currently positioned at.
	// Valid only after Next or Contains returned true.
	Result() Ref

	// NextPath advances to the next tag binding for the current Result,
	// for iterators (Or, And's optional branches, Recursive) that can
	// reach the same Result through more than one path. Returns false
	// when no further path exists; the caller should then advance the
	// primary iteration instead.
	NextPath(ctx context.Context) bool

	// Err returns the error, if any, that caused the last Next, Contains
	// or NextPath call to return false. A false return with a nil Err
	// means the iterator is simply exhausted.
	Err() error

	// Close releases any resources held by the iterator. It is safe to
	// call Close more than once.
	Close() error
}

// Scanner is an iterator that lists all results sequentially, but not
// necessarily in a sorted order.
type Scanner interface {
	IteratorBase

	// Next advances the iterator to the next value, which is then
	// available through Result. It returns false if no further
	// advancement is possible, or if an error was encountered; Err
	// distinguishes the two cases.
	Next(ctx context.Context) bool
}

// Index is an index lookup iterator: it tests membership of a specific
// value rather than enumerating.
type Index interface {
	IteratorBase

	// Contains reports whether v is within the set held by the
	// iterator, positioning Result at v (or at the matching subtree) on
	// success.
	Contains(ctx context.Context, v Ref) bool
}

// TaggerShape is implemented by iterator shapes that carry tags
// independently of being compiled into a Scanner or Index yet.
type TaggerShape interface {
	IteratorShape
	TaggerBase
	CopyFromTagger(st TaggerBase)
}

// IteratorCosts summarizes the relative cost of driving an iterator shape
// in each execution mode, along with its estimated size. Roughly, it costs
// NextCost*Size to exhaust an iterator by scanning; ContainsCost to test
// one value by lookup. Used by the optimizer's driver-selection heuristics
// (And) and materialization heuristics (Materialize).
type IteratorCosts struct {
	ContainsCost int64
	NextCost     int64
	Size         Size
}

// IteratorShape is a compiled query plan: a node of the physical iterator
// tree produced by optimizing a logical Shape. It is not itself iterable;
// Iterate and Lookup each produce an independent, closeable cursor over it.
type IteratorShape interface {
	// String returns a short textual representation of the shape, for
	// diagnostics.
	String() string

	// Iterate starts this shape in scanning mode. The resulting Scanner
	// lists all results sequentially, but not necessarily in sorted
	// order. The caller must Close it.
	Iterate() Scanner

	// Lookup starts this shape in index lookup mode. Depending on the
	// shape this may still involve backend scans internally. The caller
	// must Close the resulting Index.
	Lookup() Index

	// Stats returns the relative costs of driving this shape, used by
	// Optimize to choose between equivalent plans.
	Stats(ctx context.Context) (IteratorCosts, error)

	// Optimize rewrites the shape, possibly replacing it outright. It
	// returns (newShape, true) if it replaced itself, or (self, false)
	// if it only optimized internally or did nothing.
	Optimize(ctx context.Context) (IteratorShape, bool)

	// SubIterators returns this shape's direct children, if any.
	SubIterators() []IteratorShape
}
