package iterator

// Recursive computes the transitive closure of start under morphism: the
// set of refs reachable from start by 1..max_depth one-hop applications of
// morphism, in BFS-by-depth order, excluding start itself. Each Next or
// Contains cursor runs its own recursiveCore, which drains start (depth 0)
// and then repeatedly re-applies morphism to the current frontier until it
// empties or max_depth is reached.

import (
	"context"

	"github.com/cayleygraph/shapeql/graph"
	"github.com/cayleygraph/shapeql/quad"
)

// DefaultMaxRecursiveSteps bounds Recursive's closure when maxDepth<=0.
const DefaultMaxRecursiveSteps = 50

// Morphism is a one-hop traversal step: a function from an iterator shape
// to the shape reached by applying that hop.
type Morphism func(graph.IteratorShape) graph.IteratorShape

const recursiveAncestorTag = "__base_recursive"

var _ graph.IteratorShape = &Recursive{}

type Recursive struct {
	start     graph.IteratorShape
	morphism  Morphism
	maxDepth  int
	depthTags []string
}

// NewRecursive builds a Recursive shape over start, applying morphism up
// to maxDepth times (DefaultMaxRecursiveSteps if maxDepth<=0).
func NewRecursive(start graph.IteratorShape, morphism Morphism, maxDepth int) *Recursive {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxRecursiveSteps
	}
	return &Recursive{start: start, morphism: morphism, maxDepth: maxDepth}
}

// AddDepthTag requests every result be tagged with its discovery depth.
func (it *Recursive) AddDepthTag(tag string) { it.depthTags = append(it.depthTags, tag) }

func (it *Recursive) String() string { return "Recursive" }

func (it *Recursive) SubIterators() []graph.IteratorShape { return []graph.IteratorShape{it.start} }

func (it *Recursive) Optimize(ctx context.Context) (graph.IteratorShape, bool) {
	newStart, changed := it.start.Optimize(ctx)
	if changed {
		it.start = newStart
		if isNull(newStart) {
			return newStart, true
		}
	}
	return it, false
}

func (it *Recursive) Stats(ctx context.Context) (graph.IteratorCosts, error) {
	start, err := it.start.Stats(ctx)
	step, serr := it.morphism(NewFixed()).Stats(ctx)
	if serr != nil && err == nil {
		err = serr
	}
	fanout := step.Size.Value
	if fanout <= 0 {
		fanout = 5
	}
	size := start.Size.Value
	for d := 0; d < it.maxDepth && size < (1<<32); d++ {
		size *= fanout
	}
	return graph.IteratorCosts{
		NextCost:     step.NextCost + start.NextCost,
		ContainsCost: step.NextCost * fanout,
		Size:         graph.Size{Value: size, Exact: false},
	}, err
}

func (it *Recursive) Iterate() graph.Scanner {
	return newRecursiveNext(it.start, it.morphism, it.maxDepth, it.depthTags)
}
func (it *Recursive) Lookup() graph.Index {
	return newRecursiveContains(it.start, it.morphism, it.maxDepth, it.depthTags)
}

func depthValue(depth int) quad.Value { return quad.Int(depth) }

// recursiveCore runs the BFS-by-depth closure once per cursor: a Next or
// Contains driver walks it on first use and then answers from its results.
type recursiveCore struct {
	start     graph.IteratorShape
	morphism  Morphism
	maxDepth  int
	depthTags []string

	seen    map[interface{}]int
	order   []graph.Ref
	pathMap map[interface{}][]map[string]graph.Ref

	ran bool
	err error
}

func newRecursiveCore(start graph.IteratorShape, m Morphism, maxDepth int, depthTags []string) *recursiveCore {
	return &recursiveCore{
		start: start, morphism: m, maxDepth: maxDepth, depthTags: depthTags,
		seen:    make(map[interface{}]int),
		pathMap: make(map[interface{}][]map[string]graph.Ref),
	}
}

func (c *recursiveCore) run(ctx context.Context) {
	if c.ran {
		return
	}
	c.ran = true

	frontier := make(map[interface{}]graph.Ref)
	scanner := c.start.Iterate()
	for scanner.Next(ctx) {
		v := scanner.Result()
		key := graph.ToKey(v)
		c.seen[key] = 0
		frontier[key] = v
		for scanner.NextPath(ctx) {
		}
	}
	err := scanner.Err()
	scanner.Close()
	if err != nil {
		c.err = err
		return
	}

	for depth := 1; depth <= c.maxDepth && len(frontier) > 0; depth++ {
		vals := make([]graph.Ref, 0, len(frontier))
		for _, v := range frontier {
			vals = append(vals, v)
		}
		step := c.morphism(Tag(NewFixed(vals...), recursiveAncestorTag))
		next := make(map[interface{}]graph.Ref)

		s := step.Iterate()
		for s.Next(ctx) {
			c.recordHit(s, depth, next)
			for s.NextPath(ctx) {
				c.recordHit(s, depth, next)
			}
		}
		err := s.Err()
		s.Close()
		if err != nil {
			c.err = err
			return
		}
		frontier = next
	}
}

func (c *recursiveCore) recordHit(s graph.Scanner, depth int, next map[interface{}]graph.Ref) {
	v := s.Result()
	key := graph.ToKey(v)
	tags := make(map[string]graph.Ref)
	s.TagResults(tags)
	delete(tags, recursiveAncestorTag)
	for _, dt := range c.depthTags {
		tags[dt] = graph.PreFetched(depthValue(depth))
	}
	c.pathMap[key] = append(c.pathMap[key], tags)
	if _, ok := c.seen[key]; ok {
		return
	}
	c.seen[key] = depth
	c.order = append(c.order, v)
	next[key] = v
}

type recursiveNext struct {
	core  *recursiveCore
	index int
	sub   int
}

func newRecursiveNext(start graph.IteratorShape, m Morphism, maxDepth int, depthTags []string) *recursiveNext {
	return &recursiveNext{core: newRecursiveCore(start, m, maxDepth, depthTags), index: -1}
}

func (it *recursiveNext) Next(ctx context.Context) bool {
	it.core.run(ctx)
	if it.core.err != nil {
		return false
	}
	it.index++
	it.sub = 0
	return it.index < len(it.core.order)
}

func (it *recursiveNext) Result() graph.Ref {
	if it.index < 0 || it.index >= len(it.core.order) {
		return nil
	}
	return it.core.order[it.index]
}

func (it *recursiveNext) TagResults(dst map[string]graph.Ref) {
	if it.index < 0 || it.index >= len(it.core.order) {
		return
	}
	paths := it.core.pathMap[graph.ToKey(it.core.order[it.index])]
	if it.sub >= len(paths) {
		return
	}
	for k, v := range paths[it.sub] {
		dst[k] = v
	}
}

func (it *recursiveNext) NextPath(ctx context.Context) bool {
	if it.index < 0 || it.index >= len(it.core.order) {
		return false
	}
	paths := it.core.pathMap[graph.ToKey(it.core.order[it.index])]
	it.sub++
	if it.sub >= len(paths) {
		it.sub--
		return false
	}
	return true
}

func (it *recursiveNext) Err() error   { return it.core.err }
func (it *recursiveNext) Close() error { return nil }
func (it *recursiveNext) String() string { return "Recursive" }

type recursiveContains struct {
	core *recursiveCore
	val  graph.Ref
	sub  int
}

func newRecursiveContains(start graph.IteratorShape, m Morphism, maxDepth int, depthTags []string) *recursiveContains {
	return &recursiveContains{core: newRecursiveCore(start, m, maxDepth, depthTags)}
}

func (it *recursiveContains) Contains(ctx context.Context, v graph.Ref) bool {
	it.core.run(ctx)
	if it.core.err != nil {
		return false
	}
	key := graph.ToKey(v)
	depth, ok := it.core.seen[key]
	if !ok || depth == 0 {
		return false
	}
	it.val = v
	it.sub = 0
	return true
}

func (it *recursiveContains) Result() graph.Ref { return it.val }

func (it *recursiveContains) TagResults(dst map[string]graph.Ref) {
	paths := it.core.pathMap[graph.ToKey(it.val)]
	if it.sub >= len(paths) {
		return
	}
	for k, v := range paths[it.sub] {
		dst[k] = v
	}
}

func (it *recursiveContains) NextPath(ctx context.Context) bool {
	paths := it.core.pathMap[graph.ToKey(it.val)]
	it.sub++
	if it.sub >= len(paths) {
		it.sub--
		return false
	}
	return true
}

func (it *recursiveContains) Err() error   { return it.core.err }
func (it *recursiveContains) Close() error { return nil }
func (it *recursiveContains) String() string { return "Recursive" }
