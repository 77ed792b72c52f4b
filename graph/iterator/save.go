package iterator

// Save tags a subiterator's result under one or more names: either the
// iterator's own result (tags) or a constant bound independently of the
// current result (fixedTags, used for a tag on a literal in a query).

import (
	"context"
	"fmt"

	"github.com/cayleygraph/shapeql/graph"
)

var _ graph.TaggerShape = &Save{}

// Tag adds tag to it, wrapping it in a Save unless it can carry tags itself.
func Tag(it graph.IteratorShape, tag string) graph.IteratorShape {
	if s, ok := it.(graph.TaggerBase); ok {
		s.AddTag(tag)
		return it
	}
	return NewSave(it, tag)
}

// NewSave wraps on in a Save tagging its result under the given tags.
func NewSave(on graph.IteratorShape, tags ...string) *Save {
	s := &Save{it: on}
	for _, t := range tags {
		s.AddTag(t)
	}
	return s
}

type Save struct {
	tags      []string
	fixedTags map[string]graph.Ref
	it        graph.IteratorShape
}

func (it *Save) String() string { return fmt.Sprintf("Save(%v, %v)", it.tags, it.fixedTags) }

func (it *Save) AddTag(tag string) { it.tags = append(it.tags, tag) }

func (it *Save) AddFixedTag(tag string, value graph.Ref) {
	if it.fixedTags == nil {
		it.fixedTags = make(map[string]graph.Ref)
	}
	it.fixedTags[tag] = value
}

func (it *Save) Tags() []string { return it.tags }

func (it *Save) FixedTags() map[string]graph.Ref { return it.fixedTags }

func (it *Save) CopyFromTagger(st graph.TaggerBase) {
	it.tags = append(it.tags, st.Tags()...)
	fixed := st.FixedTags()
	if len(fixed) == 0 {
		return
	}
	if it.fixedTags == nil {
		it.fixedTags = make(map[string]graph.Ref, len(fixed))
	}
	for k, v := range fixed {
		it.fixedTags[k] = v
	}
}

func (it *Save) SubIterators() []graph.IteratorShape { return []graph.IteratorShape{it.it} }

func (it *Save) Stats(ctx context.Context) (graph.IteratorCosts, error) { return it.it.Stats(ctx) }

// Optimize folds a tagless Save away entirely, and merges into the child's
// own tagger (if it has one) rather than nesting two Save wrappers.
func (it *Save) Optimize(ctx context.Context) (graph.IteratorShape, bool) {
	sub, changed := it.it.Optimize(ctx)
	if changed {
		it.it = sub
	}
	if len(it.tags) == 0 && len(it.fixedTags) == 0 {
		return it.it, true
	}
	if st, ok := it.it.(graph.TaggerShape); ok {
		st.CopyFromTagger(it)
		return st, true
	}
	return it, changed
}

func (it *Save) Iterate() graph.Scanner { return newSaveNext(it.it.Iterate(), it.tags, it.fixedTags) }
func (it *Save) Lookup() graph.Index    { return newSaveContains(it.it.Lookup(), it.tags, it.fixedTags) }

type saveNext struct {
	it        graph.Scanner
	tags      []string
	fixedTags map[string]graph.Ref
}

func newSaveNext(it graph.Scanner, tags []string, fixed map[string]graph.Ref) *saveNext {
	return &saveNext{it: it, tags: tags, fixedTags: fixed}
}

func (it *saveNext) TagResults(dst map[string]graph.Ref) {
	it.it.TagResults(dst)
	v := it.Result()
	for _, tag := range it.tags {
		dst[tag] = v
	}
	for tag, value := range it.fixedTags {
		dst[tag] = value
	}
}

func (it *saveNext) Result() graph.Ref                { return it.it.Result() }
func (it *saveNext) Next(ctx context.Context) bool     { return it.it.Next(ctx) }
func (it *saveNext) NextPath(ctx context.Context) bool { return it.it.NextPath(ctx) }
func (it *saveNext) Err() error                         { return it.it.Err() }
func (it *saveNext) Close() error                       { return it.it.Close() }
func (it *saveNext) String() string                     { return "Save" }

type saveContains struct {
	it        graph.Index
	tags      []string
	fixedTags map[string]graph.Ref
}

func newSaveContains(it graph.Index, tags []string, fixed map[string]graph.Ref) *saveContains {
	return &saveContains{it: it, tags: tags, fixedTags: fixed}
}

func (it *saveContains) TagResults(dst map[string]graph.Ref) {
	it.it.TagResults(dst)
	v := it.Result()
	for _, tag := range it.tags {
		dst[tag] = v
	}
	for tag, value := range it.fixedTags {
		dst[tag] = value
	}
}

func (it *saveContains) Result() graph.Ref                               { return it.it.Result() }
func (it *saveContains) Contains(ctx context.Context, v graph.Ref) bool    { return it.it.Contains(ctx, v) }
func (it *saveContains) NextPath(ctx context.Context) bool                 { return it.it.NextPath(ctx) }
func (it *saveContains) Err() error                                        { return it.it.Err() }
func (it *saveContains) Close() error                                      { return it.it.Close() }
func (it *saveContains) String() string                                    { return "Save" }
