// Package shape implements the logical query-shape algebra: a tree of
// set-algebraic nodes (AllNodes, Intersect, Union, NodesFrom, ...) that a
// query builder assembles and that Optimize rewrites before BuildIterator
// compiles it down to a graph/iterator physical tree.
package shape

import (
	"context"
	"regexp"

	"github.com/cayleygraph/shapeql/clog"
	"github.com/cayleygraph/shapeql/graph"
	"github.com/cayleygraph/shapeql/graph/iterator"
	"github.com/cayleygraph/shapeql/quad"
)

// Shape represents one node of a query shape tree.
type Shape interface {
	// BuildIterator compiles the shape into a physical iterator tree bound to qs.
	BuildIterator(qs graph.QuadStore) graph.IteratorShape
	// Optimize runs one rewrite pass over the shape. r, when non-nil, is
	// consulted after the generic rewrites for backend-specific ones.
	//
	// It returns a bool that indicates if the shape was replaced; in that
	// case it always returns a copy rather than mutating the receiver. If
	// no optimization applied, it returns the same shape unmodified.
	Optimize(ctx context.Context, r Optimizer) (Shape, bool)
}

// Optimizer intercepts shape optimization with rewrites of its own -- used
// both by the internal Lookup-resolving pass and by any QuadStore backend
// that implements Optimizer itself.
type Optimizer interface {
	OptimizeShape(ctx context.Context, s Shape) (Shape, bool)
}

// resolveValues is the first optimization pass Optimize always runs: it
// turns every Lookup into a Fixed (or Null) by resolving values through qs.
type resolveValues struct {
	qs graph.QuadStore
}

func (r resolveValues) OptimizeShape(ctx context.Context, s Shape) (Shape, bool) {
	if l, ok := s.(Lookup); ok {
		return l.resolve(r.qs), true
	}
	return s, false
}

// Optimize runs the shape optimizer to a fixed point in up to three passes:
// resolving Lookup against qs, generic rewrites, then qs's own rewrites if
// it implements Optimizer.
func Optimize(ctx context.Context, s Shape, qs graph.QuadStore) (Shape, bool) {
	if s == nil {
		return nil, false
	}
	var opt bool
	if qs != nil {
		s, opt = s.Optimize(ctx, resolveValues{qs: qs})
	}
	if s == nil {
		return Null{}, true
	}
	var opt1 bool
	s, opt1 = s.Optimize(ctx, nil)
	if s == nil {
		return Null{}, true
	}
	opt = opt || opt1
	if so, ok := qs.(Optimizer); ok && s != nil {
		var opt2 bool
		s, opt2 = s.Optimize(ctx, so)
		opt = opt || opt2
	}
	if s == nil {
		return Null{}, true
	}
	return s, opt
}

// IsNull safely checks if shape represents an empty set. It accounts for
// both a literal Null and a nil Shape.
func IsNull(s Shape) bool {
	_, ok := s.(Null)
	return s == nil || ok
}

// BuildIterator optimizes the shape against qs and compiles it down to an
// iterator tree. A nil or Null shape compiles to iterator.Null.
func BuildIterator(ctx context.Context, qs graph.QuadStore, s Shape) graph.IteratorShape {
	if s != nil {
		if clog.V(2) {
			clog.Infof("shape: %#v", s)
		}
		s, _ = Optimize(ctx, s, qs)
		if clog.V(2) {
			clog.Infof("optimized: %#v", s)
		}
	}
	if IsNull(s) {
		return iterator.NewNull()
	}
	return s.BuildIterator(qs)
}

// Null represents an empty set. Used as a safe, explicit alias for a nil Shape.
type Null struct{}

func (Null) BuildIterator(qs graph.QuadStore) graph.IteratorShape { return iterator.NewNull() }
func (s Null) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	if r != nil {
		return r.OptimizeShape(ctx, s)
	}
	return nil, true
}

// AllNodes represents every node known to the QuadStore.
type AllNodes struct{}

func (s AllNodes) BuildIterator(qs graph.QuadStore) graph.IteratorShape {
	return qs.NodesAllIterator()
}
func (s AllNodes) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	if r != nil {
		return r.OptimizeShape(ctx, s)
	}
	return s, false
}

// Except excludes a set of nodes from a source. A nil From means AllNodes.
type Except struct {
	Exclude Shape // nodes to exclude
	From    Shape // the set to exclude from; nil means AllNodes
}

func (s Except) BuildIterator(qs graph.QuadStore) graph.IteratorShape {
	var all graph.IteratorShape
	if s.From != nil {
		all = s.From.BuildIterator(qs)
	} else {
		all = qs.NodesAllIterator()
	}
	if IsNull(s.Exclude) {
		return all
	}
	return iterator.NewNot(s.Exclude.BuildIterator(qs), all)
}
func (s Except) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	var opt bool
	s.Exclude, opt = s.Exclude.Optimize(ctx, r)
	if s.From != nil {
		var opta bool
		s.From, opta = s.From.Optimize(ctx, r)
		opt = opt || opta
	}
	if r != nil {
		ns, nopt := r.OptimizeShape(ctx, s)
		return ns, opt || nopt
	}
	if IsNull(s.Exclude) {
		if s.From != nil {
			return s.From, true
		}
		return AllNodes{}, true
	} else if _, ok := s.Exclude.(AllNodes); ok {
		return nil, true
	}
	return s, opt
}

// ValueFilter is a filter that narrows an iterator down by the value its
// results name, without changing what QuadStore it runs against.
type ValueFilter interface {
	BuildIterator(qs graph.QuadStore, it graph.IteratorShape) graph.IteratorShape
}

// Filter narrows a source shape through a pipeline of value filters.
type Filter struct {
	From    Shape         // source to filter
	Filters []ValueFilter // filters applied in order
}

func (s Filter) BuildIterator(qs graph.QuadStore) graph.IteratorShape {
	if IsNull(s.From) {
		return iterator.NewNull()
	}
	it := s.From.BuildIterator(qs)
	for _, f := range s.Filters {
		it = f.BuildIterator(qs, it)
	}
	return it
}
func (s Filter) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	if IsNull(s.From) {
		return nil, true
	}
	var opt bool
	s.From, opt = s.From.Optimize(ctx, r)
	if r != nil {
		ns, nopt := r.OptimizeShape(ctx, s)
		return ns, opt || nopt
	}
	if IsNull(s.From) {
		return nil, true
	} else if len(s.Filters) == 0 {
		return s.From, true
	}
	return s, opt
}

var _ ValueFilter = Comparison{}

// Comparison is a value filter keeping values that relate to Val by Op.
type Comparison struct {
	Op  iterator.Operator
	Val quad.Value
}

func (f Comparison) BuildIterator(qs graph.QuadStore, it graph.IteratorShape) graph.IteratorShape {
	return iterator.NewComparison(qs, it, f.Op, f.Val)
}

var _ ValueFilter = Regexp{}

// Regexp filters values using a regular expression matched against their
// string form. Refs additionally allows matching IRIs and blank nodes.
type Regexp struct {
	Re   *regexp.Regexp
	Refs bool
}

func (f Regexp) BuildIterator(qs graph.QuadStore, it graph.IteratorShape) graph.IteratorShape {
	return iterator.NewRegex(qs, it, f.Re, f.Refs)
}

// Count reduces Values to a single result: the count of values it produces.
type Count struct {
	Values Shape
}

func (s Count) BuildIterator(qs graph.QuadStore) graph.IteratorShape {
	var it graph.IteratorShape
	if IsNull(s.Values) {
		it = iterator.NewNull()
	} else {
		it = s.Values.BuildIterator(qs)
	}
	return iterator.NewCount(it, qs)
}
func (s Count) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	if IsNull(s.Values) {
		return Fixed{graph.PreFetched(quad.Int(0))}, true
	}
	var opt bool
	s.Values, opt = s.Values.Optimize(ctx, r)
	if IsNull(s.Values) {
		return Fixed{graph.PreFetched(quad.Int(0))}, true
	}
	if r != nil {
		ns, nopt := r.OptimizeShape(ctx, s)
		return ns, opt || nopt
	}
	return s, opt
}

// QuadFilter constrains quads that have Values on direction Dir. The
// logical analog of the LinksTo iterator.
type QuadFilter struct {
	Dir    quad.Direction
	Values Shape
}

// buildIterator is unexported: callers should go through Quads so that
// several filters on the same quad set are grouped into one And.
func (s QuadFilter) buildIterator(qs graph.QuadStore) graph.IteratorShape {
	if s.Values == nil {
		return iterator.NewNull()
	} else if v, ok := One(s.Values); ok {
		return qs.QuadIterator(s.Dir, v)
	}
	if s.Dir == quad.Any {
		panic("shape: direction is not set")
	}
	sub := s.Values.BuildIterator(qs)
	return iterator.NewLinksTo(qs, sub, s.Dir)
}

// Quads selects quads matching a set of per-direction constraints. An
// empty or nil Quads means every quad in the store.
type Quads []QuadFilter

func (s *Quads) Intersect(q ...QuadFilter) { *s = append(*s, q...) }

func (s Quads) BuildIterator(qs graph.QuadStore) graph.IteratorShape {
	if len(s) == 0 {
		return qs.QuadsAllIterator()
	}
	its := make([]graph.IteratorShape, 0, len(s))
	for _, f := range s {
		its = append(its, f.buildIterator(qs))
	}
	if len(its) == 1 {
		return its[0]
	}
	return iterator.NewAnd(its...)
}
func (s Quads) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	var opt bool
	sw := 0
	realloc := func() {
		if !opt {
			opt = true
			nq := make(Quads, len(s))
			copy(nq, s)
			s = nq
		}
	}
	for i := 0; i < len(s); i++ {
		f := s[i]
		if f.Values == nil {
			return nil, true
		}
		v, ok := f.Values.Optimize(ctx, r)
		if v == nil {
			return nil, true
		}
		if ok {
			realloc()
			s[i].Values = v
		}
		if _, ok := s[i].Values.(Fixed); ok {
			realloc()
			s[sw], s[i] = s[i], s[sw]
			sw++
		}
	}
	if r != nil {
		ns, nopt := r.OptimizeShape(ctx, s)
		return ns, opt || nopt
	}
	return s, opt
}

// NodesFrom projects the nodes in direction Dir out of a set of quads.
// Analog of the HasA iterator.
type NodesFrom struct {
	Dir   quad.Direction
	Quads Shape
}

func (s NodesFrom) BuildIterator(qs graph.QuadStore) graph.IteratorShape {
	if IsNull(s.Quads) {
		return iterator.NewNull()
	}
	sub := s.Quads.BuildIterator(qs)
	if s.Dir == quad.Any {
		panic("shape: direction is not set")
	}
	return iterator.NewHasA(qs, sub, s.Dir)
}
func (s NodesFrom) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	if IsNull(s.Quads) {
		return nil, true
	}
	var opt bool
	s.Quads, opt = s.Quads.Optimize(ctx, r)
	if r != nil {
		ns, nopt := r.OptimizeShape(ctx, s)
		return ns, opt || nopt
	}
	q, ok := s.Quads.(Quads)
	if !ok {
		return s, opt
	}
	// HasA(x, LinksTo(x, y)) == y
	if len(q) == 1 && q[0].Dir == s.Dir {
		return q[0].Values, true
	}
	// hoist any FixedTags found inside the quad filters above this node
	var (
		tags  map[string]graph.Ref
		nquad Quads
	)
	for i, f := range q {
		if ft, ok := f.Values.(FixedTags); ok {
			if tags == nil {
				tags = make(map[string]graph.Ref)
				nquad = make(Quads, len(q))
				copy(nquad, q)
				q = nquad
			}
			q[i].Values = ft.On
			for k, v := range ft.Tags {
				tags[k] = v
			}
		}
	}
	if tags != nil {
		ns, _ := NodesFrom{Dir: s.Dir, Quads: q}.Optimize(ctx, r)
		return FixedTags{On: ns, Tags: tags}, true
	}
	return NodesFrom{Dir: s.Dir, Quads: q}, opt
}

// One reports whether s is a Fixed shape holding exactly one ref, and
// returns it.
func One(s Shape) (graph.Ref, bool) {
	if s, ok := s.(Fixed); ok && len(s) == 1 {
		return s[0], true
	}
	return nil, false
}

// Fixed is a static set of refs, defined only with respect to the
// QuadStore that produced them.
type Fixed []graph.Ref

func (s *Fixed) Add(v ...graph.Ref) { *s = append(*s, v...) }

func (s Fixed) BuildIterator(qs graph.QuadStore) graph.IteratorShape {
	return iterator.NewFixed(s...)
}
func (s Fixed) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	if len(s) == 0 {
		return nil, true
	}
	if r != nil {
		return r.OptimizeShape(ctx, s)
	}
	return s, false
}

// FixedTags attaches a set of fixed (query-time constant) tags to a
// result, without affecting query execution otherwise.
//
// Optimizers try to push these up the tree during the optimization pass,
// since a FixedTags wrapping e.g. an Intersect child is equivalent to one
// wrapping the whole Intersect.
type FixedTags struct {
	Tags map[string]graph.Ref
	On   Shape
}

func (s FixedTags) BuildIterator(qs graph.QuadStore) graph.IteratorShape {
	if IsNull(s.On) {
		return iterator.NewNull()
	}
	it := s.On.BuildIterator(qs)
	sv := iterator.NewSave(it)
	for k, v := range s.Tags {
		sv.AddFixedTag(k, v)
	}
	return sv
}
func (s FixedTags) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	if IsNull(s.On) {
		return nil, true
	}
	var opt bool
	s.On, opt = s.On.Optimize(ctx, r)
	if len(s.Tags) == 0 {
		return s.On, true
	} else if s2, ok := s.On.(FixedTags); ok {
		tags := make(map[string]graph.Ref, len(s.Tags)+len(s2.Tags))
		for k, v := range s.Tags {
			tags[k] = v
		}
		for k, v := range s2.Tags {
			tags[k] = v
		}
		s, opt = FixedTags{On: s2.On, Tags: tags}, true
	}
	if r != nil {
		ns, nopt := r.OptimizeShape(ctx, s)
		return ns, opt || nopt
	}
	return s, opt
}

// Lookup is a static set of values that must be resolved to refs by the
// QuadStore before it can be compiled; Optimize always does this before
// any other rewrite runs (see resolveValues).
type Lookup []quad.Value

func (s *Lookup) Add(v ...quad.Value) { *s = append(*s, v...) }

func (s Lookup) resolve(qs graph.Namer) Shape {
	// TODO: use graph.BatchNamer when qs supports it
	vals := make([]graph.Ref, 0, len(s))
	for _, v := range s {
		if gv := qs.ValueOf(v); gv != nil {
			vals = append(vals, gv)
		}
	}
	if len(vals) == 0 {
		return nil
	}
	return Fixed(vals)
}
func (s Lookup) BuildIterator(qs graph.QuadStore) graph.IteratorShape {
	f := s.resolve(qs)
	if IsNull(f) {
		return iterator.NewNull()
	}
	return f.BuildIterator(qs)
}
func (s Lookup) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	if r == nil {
		return s, false
	}
	ns, opt := r.OptimizeShape(ctx, s)
	if opt {
		return ns, true
	}
	if namer, ok := r.(graph.Namer); ok {
		return s.resolve(namer), true
	}
	return ns, opt
}

func clearFixedTags(arr []Shape) ([]Shape, map[string]graph.Ref) {
	var tags map[string]graph.Ref
	for i := 0; i < len(arr); i++ {
		if ft, ok := arr[i].(FixedTags); ok {
			if tags == nil {
				tags = make(map[string]graph.Ref)
				na := make([]Shape, len(arr))
				copy(na, arr)
				arr = na
			}
			arr[i] = ft.On
			for k, v := range ft.Tags {
				tags[k] = v
			}
		}
	}
	return arr, tags
}

// Intersect computes the intersection of several shapes. Analog of And.
type Intersect []Shape

func (s Intersect) BuildIterator(qs graph.QuadStore) graph.IteratorShape {
	if len(s) == 0 {
		return iterator.NewNull()
	}
	sub := make([]graph.IteratorShape, 0, len(s))
	for _, c := range s {
		sub = append(sub, c.BuildIterator(qs))
	}
	if len(sub) == 1 {
		return sub[0]
	}
	return iterator.NewAnd(sub...)
}
func (s Intersect) Optimize(ctx context.Context, r Optimizer) (sout Shape, opt bool) {
	if len(s) == 0 {
		return nil, true
	}
	realloc := func() {
		if !opt {
			arr := make(Intersect, len(s))
			copy(arr, s)
			s = arr
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if IsNull(c) {
			return nil, true
		}
		v, ok := c.Optimize(ctx, r)
		if !ok {
			continue
		}
		realloc()
		opt = true
		if IsNull(v) {
			return nil, true
		}
		s[i] = v
	}
	if r != nil {
		ns, nopt := r.OptimizeShape(ctx, s)
		return ns, opt || nopt
	}
	if arr, ft := clearFixedTags([]Shape(s)); ft != nil {
		ns, _ := FixedTags{On: Intersect(arr), Tags: ft}.Optimize(ctx, r)
		return ns, true
	}
	var (
		onlyAll = true  // every remaining child is AllNodes
		fixed   []Fixed // collected Fixed children; placed first once merged
		tags    []string
		quads   Quads
	)
	remove := func(i *int, optimized bool) {
		realloc()
		if optimized {
			opt = true
		}
		v := *i
		s = append(s[:v], s[v+1:]...)
		v--
		*i = v
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i].(type) {
		case AllNodes:
			remove(&i, true)
			continue
		case Quads:
			remove(&i, false)
			if quads == nil {
				quads = c[:len(c):len(c)]
			} else {
				opt = true
				quads = append(quads, c...)
			}
		case Fixed:
			remove(&i, true)
			fixed = append(fixed, c)
		case Intersect:
			remove(&i, true)
			s = append(s, c...)
		case Save:
			realloc()
			opt = true
			tags = append(tags, c.Tags...)
			s[i] = c.From
			i--
		}
		onlyAll = false
	}
	if onlyAll {
		return AllNodes{}, true
	}
	if len(tags) != 0 {
		defer func() {
			if IsNull(sout) {
				return
			}
			sv := Save{From: sout, Tags: tags}
			var topt bool
			sout, topt = sv.Optimize(ctx, r)
			opt = opt || topt
		}()
	}
	if quads != nil {
		nq, qopt := quads.Optimize(ctx, r)
		if IsNull(nq) {
			return nil, true
		}
		opt = opt || qopt
		s = append(s, nq)
	}
	if len(fixed) == 1 {
		s = append(s, nil)
		copy(s[1:], s)
		s[0] = fixed[0]
	} else if len(fixed) > 1 {
		ns := make(Intersect, len(s)+len(fixed))
		for i, f := range fixed {
			ns[i] = f
		}
		copy(ns[len(fixed):], s)
		s = ns
	}
	if len(s) == 0 {
		return nil, true
	} else if len(s) == 1 {
		return s[0], true
	}
	return s, opt
}

// IntersectOpt is like Intersect, but Opt holds branches that are checked
// against every result and contribute tags when they matched, without
// constraining which results pass through -- the shape-level analog of
// And.AddOptionalIterator. Built by IntersectOptional.
type IntersectOpt struct {
	Sub Intersect
	Opt []Shape
}

func (s IntersectOpt) BuildIterator(qs graph.QuadStore) graph.IteratorShape {
	if len(s.Sub) == 0 && len(s.Opt) == 0 {
		return iterator.NewNull()
	}
	and := iterator.NewAnd()
	if len(s.Sub) == 0 {
		and.AddSubIterator(iterator.NewNull())
	}
	for _, c := range s.Sub {
		and.AddSubIterator(c.BuildIterator(qs))
	}
	for _, c := range s.Opt {
		if IsNull(c) {
			continue
		}
		and.AddOptionalIterator(c.BuildIterator(qs))
	}
	return and
}
func (s IntersectOpt) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	var opt bool
	sub, subOpt := s.Sub.Optimize(ctx, r)
	opt = opt || subOpt
	if IsNull(sub) {
		return nil, true
	}
	if si, ok := sub.(Intersect); ok {
		s.Sub = si
	} else {
		s.Sub = Intersect{sub}
	}
	var nopt []Shape
	for _, c := range s.Opt {
		v, vopt := c.Optimize(ctx, r)
		opt = opt || vopt
		if IsNull(v) {
			continue
		}
		nopt = append(nopt, v)
	}
	s.Opt = nopt
	if r != nil {
		ns, ropt := r.OptimizeShape(ctx, s)
		return ns, opt || ropt
	}
	if len(s.Opt) == 0 {
		return s.Sub, true
	}
	return s, opt
}

// IntersectShapes combines two shapes so that both must match. AllNodes is
// absorbed; adjacent Intersects are merged rather than nested.
func IntersectShapes(s1, s2 Shape) Shape {
	switch s1 := s1.(type) {
	case AllNodes:
		return s2
	case Intersect:
		if s2, ok := s2.(Intersect); ok {
			return append(s1, s2...)
		}
		return append(s1, s2)
	}
	if _, ok := s2.(AllNodes); ok {
		return s1
	}
	return Intersect{s1, s2}
}

// IntersectOptional combines from with opt so opt contributes tags (when
// it matches) without constraining the result set.
func IntersectOptional(from, opt Shape) Shape {
	if IsNull(opt) {
		return from
	}
	var sub Intersect
	if si, ok := from.(Intersect); ok {
		sub = si
	} else if _, ok := from.(AllNodes); !ok {
		sub = Intersect{from}
	}
	return IntersectOpt{Sub: sub, Opt: []Shape{opt}}
}

// Union joins the results of several shapes together, without
// deduplicating them. Analog of Or.
type Union []Shape

func (s Union) BuildIterator(qs graph.QuadStore) graph.IteratorShape {
	if len(s) == 0 {
		return iterator.NewNull()
	}
	sub := make([]graph.IteratorShape, 0, len(s))
	for _, c := range s {
		sub = append(sub, c.BuildIterator(qs))
	}
	if len(sub) == 1 {
		return sub[0]
	}
	return iterator.NewOr(sub...)
}
func (s Union) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	var opt bool
	realloc := func() {
		if !opt {
			arr := make(Union, len(s))
			copy(arr, s)
			s = arr
		}
	}
	for i := 0; i < len(s); i++ {
		v, ok := s[i].Optimize(ctx, r)
		if !ok {
			continue
		}
		realloc()
		opt = true
		s[i] = v
	}
	if r != nil {
		ns, nopt := r.OptimizeShape(ctx, s)
		return ns, opt || nopt
	}
	if arr, ft := clearFixedTags([]Shape(s)); ft != nil {
		ns, _ := FixedTags{On: Union(arr), Tags: ft}.Optimize(ctx, r)
		return ns, true
	}
	for i := 0; i < len(s); i++ {
		if IsNull(s[i]) {
			realloc()
			opt = true
			s = append(s[:i], s[i+1:]...)
			i--
		}
	}
	if len(s) == 0 {
		return nil, true
	} else if len(s) == 1 {
		return s[0], true
	}
	return s, opt
}

// UnionShapes joins two shapes, merging adjacent Unions rather than nesting.
func UnionShapes(s1, s2 Shape) Union {
	if s1, ok := s1.(Union); ok {
		if s2, ok := s2.(Union); ok {
			return append(s1, s2...)
		}
		return append(s1, s2)
	}
	return Union{s1, s2}
}

// Page applies pagination to From: Skip discards the first n results, then
// Limit bounds how many follow. A zero Limit means unlimited.
type Page struct {
	From  Shape
	Skip  int64
	Limit int64
}

func (s Page) BuildIterator(qs graph.QuadStore) graph.IteratorShape {
	if IsNull(s.From) {
		return iterator.NewNull()
	}
	it := s.From.BuildIterator(qs)
	if s.Skip > 0 {
		it = iterator.NewSkip(it, s.Skip)
	}
	if s.Limit > 0 {
		it = iterator.NewLimit(it, s.Limit)
	}
	return it
}
func (s Page) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	if IsNull(s.From) {
		return nil, true
	}
	var opt bool
	s.From, opt = s.From.Optimize(ctx, r)
	if s.Skip <= 0 && s.Limit <= 0 {
		return s.From, true
	}
	if p, ok := s.From.(Page); ok {
		p2 := p.ApplyPage(s)
		if p2 == nil {
			return nil, true
		}
		s, opt = *p2, true
	}
	if r != nil {
		ns, nopt := r.OptimizeShape(ctx, s)
		return ns, opt || nopt
	}
	return s, opt
}

// ApplyPage folds p (applied after s) into a single equivalent Page, or
// returns nil if the combination can never match.
func (s Page) ApplyPage(p Page) *Page {
	s.Skip += p.Skip
	if s.Limit > 0 {
		s.Limit -= p.Skip
		if s.Limit <= 0 {
			return nil
		}
		if p.Limit > 0 && s.Limit > p.Limit {
			s.Limit = p.Limit
		}
	} else {
		s.Limit = p.Limit
	}
	return &s
}

// Sort orders From's results by the string form of their named value.
type Sort struct {
	From Shape
}

func (s Sort) BuildIterator(qs graph.QuadStore) graph.IteratorShape {
	if IsNull(s.From) {
		return iterator.NewNull()
	}
	return iterator.NewSort(qs, s.From.BuildIterator(qs))
}
func (s Sort) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	if IsNull(s.From) {
		return nil, true
	}
	var opt bool
	s.From, opt = s.From.Optimize(ctx, r)
	if IsNull(s.From) {
		return nil, true
	}
	if r != nil {
		ns, nopt := r.OptimizeShape(ctx, s)
		return ns, opt || nopt
	}
	return s, opt
}

// Unique deduplicates From's results.
type Unique struct {
	From Shape
}

func (s Unique) BuildIterator(qs graph.QuadStore) graph.IteratorShape {
	if IsNull(s.From) {
		return iterator.NewNull()
	}
	return iterator.NewUnique(s.From.BuildIterator(qs))
}
func (s Unique) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	if IsNull(s.From) {
		return nil, true
	}
	var opt bool
	s.From, opt = s.From.Optimize(ctx, r)
	if IsNull(s.From) {
		return nil, true
	}
	if r != nil {
		ns, nopt := r.OptimizeShape(ctx, s)
		return ns, opt || nopt
	}
	return s, opt
}

// Save tags From's results under Tags.
type Save struct {
	Tags []string
	From Shape
}

func (s Save) BuildIterator(qs graph.QuadStore) graph.IteratorShape {
	if IsNull(s.From) {
		return iterator.NewNull()
	}
	it := s.From.BuildIterator(qs)
	if len(s.Tags) == 0 {
		return it
	}
	return iterator.NewSave(it, s.Tags...)
}
func (s Save) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	if IsNull(s.From) {
		return nil, true
	}
	var opt bool
	s.From, opt = s.From.Optimize(ctx, r)
	if len(s.Tags) == 0 {
		return s.From, true
	}
	if r != nil {
		ns, nopt := r.OptimizeShape(ctx, s)
		return ns, opt || nopt
	}
	return s, opt
}

// Morphism is a shape-level one-hop traversal step, applied repeatedly by
// Recursive to compute a transitive closure.
type Morphism func(Shape) Shape

// fromIterator adapts an already-compiled IteratorShape into a Shape leaf.
// Recursive uses it to feed the current frontier back into Path at each
// step without rebuilding or re-optimizing the frontier itself.
type fromIterator struct{ it graph.IteratorShape }

func (s fromIterator) BuildIterator(qs graph.QuadStore) graph.IteratorShape { return s.it }
func (s fromIterator) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	return s, false
}

// Recursive computes the transitive closure of In under Path: the set of
// nodes reachable from In by 1..MaxDepth applications of Path, excluding
// In itself. If Tags is set, each result additionally carries the depth at
// which it was first reached under those tag names.
type Recursive struct {
	In       Shape
	Path     Morphism
	MaxDepth int
	Tags     []string
}

func (s Recursive) BuildIterator(qs graph.QuadStore) graph.IteratorShape {
	if IsNull(s.In) {
		return iterator.NewNull()
	}
	start := s.In.BuildIterator(qs)
	morph := func(it graph.IteratorShape) graph.IteratorShape {
		return BuildIterator(context.Background(), qs, s.Path(fromIterator{it}))
	}
	rec := iterator.NewRecursive(start, morph, s.MaxDepth)
	for _, t := range s.Tags {
		rec.AddDepthTag(t)
	}
	return rec
}
func (s Recursive) Optimize(ctx context.Context, r Optimizer) (Shape, bool) {
	if IsNull(s.In) {
		return nil, true
	}
	var opt bool
	s.In, opt = s.In.Optimize(ctx, r)
	if IsNull(s.In) {
		return nil, true
	}
	if r != nil {
		ns, nopt := r.OptimizeShape(ctx, s)
		return ns, opt || nopt
	}
	return s, opt
}
