package shape

// Path-to-shape helpers: the small vocabulary an external path/query
// builder uses to compose shapes, grounded on the quad-direction
// conventions of the core Out/In/Has/SaveVia traversal primitives.

import (
	"github.com/cayleygraph/shapeql/quad"
)

// NewInOut builds the shape that walks from `from` across predicate `via`
// (constrained to `labels` when non-nil) to the opposite node. With
// inverse false this is the usual Subject->Object "out" traversal; with
// inverse true, start and goal swap for an "in" traversal.
func NewInOut(from, via, labels Shape, tags []string, inverse bool) Shape {
	start, goal := quad.Subject, quad.Object
	if inverse {
		start, goal = goal, start
	}
	if len(tags) != 0 {
		via = Save{From: via, Tags: tags}
	}
	quads := make(Quads, 0, 3)
	if _, ok := from.(AllNodes); !ok && from != nil {
		quads = append(quads, QuadFilter{Dir: start, Values: from})
	}
	if _, ok := via.(AllNodes); !ok && via != nil {
		quads = append(quads, QuadFilter{Dir: quad.Predicate, Values: via})
	}
	if labels != nil {
		if _, ok := labels.(AllNodes); !ok {
			quads = append(quads, QuadFilter{Dir: quad.Label, Values: labels})
		}
	}
	return NodesFrom{Quads: quads, Dir: goal}
}

// HasLabels constrains `from` to nodes that have a quad linking them
// (through direction `via`, toward `nodes`) -- the inverse param picks
// which side of the quad `from` sits on.
func HasLabels(from, via, nodes Shape, inverse bool) Shape {
	start, goal := quad.Subject, quad.Object
	if inverse {
		start, goal = goal, start
	}
	quads := make(Quads, 0, 2)
	if _, ok := nodes.(AllNodes); !ok {
		quads = append(quads, QuadFilter{Dir: goal, Values: nodes})
	}
	if _, ok := via.(AllNodes); !ok {
		quads = append(quads, QuadFilter{Dir: quad.Predicate, Values: via})
	}
	if len(quads) == 0 {
		panic("shape: HasLabels given no constraints")
	}
	return IntersectShapes(from, NodesFrom{Quads: quads, Dir: start})
}

// Predicates returns the distinct set of predicates used by quads with
// `from` on the subject side (or object side, if in is true).
func Predicates(from Shape, in bool) Shape {
	dir := quad.Subject
	if in {
		dir = quad.Object
	}
	return Unique{NodesFrom{
		Quads: Quads{{Dir: dir, Values: from}},
		Dir:   quad.Predicate,
	}}
}

// SavePredicates constrains `from` to nodes with at least one quad on the
// given side, tagging the predicate of that quad under tag.
func SavePredicates(from Shape, in bool, tag string) Shape {
	preds := Save{From: AllNodes{}, Tags: []string{tag}}
	start := quad.Subject
	if in {
		start = quad.Object
	}
	var save Shape = Unique{NodesFrom{
		Quads: Quads{{Dir: quad.Predicate, Values: preds}},
		Dir:   start,
	}}
	return IntersectShapes(from, save)
}

// Labels returns the distinct set of graph labels used on quads touching
// `from`, whether as subject or object.
func Labels(from Shape) Shape {
	return Unique{NodesFrom{
		Quads: Union{
			Quads{{Dir: quad.Subject, Values: from}},
			Quads{{Dir: quad.Object, Values: from}},
		},
		Dir: quad.Label,
	}}
}

// SaveViaLabels constrains `from` to nodes reachable across predicate
// `via`, tagging the node on the other side under tag. When opt is true
// the constraint is optional: nodes without such a quad still pass
// through, just without the tag bound.
func SaveViaLabels(from, via Shape, tag string, inverse, opt bool) Shape {
	nodes := Save{From: AllNodes{}, Tags: []string{tag}}
	start, goal := quad.Subject, quad.Object
	if inverse {
		start, goal = goal, start
	}
	save := Shape(NodesFrom{
		Quads: Quads{
			{Dir: goal, Values: nodes},
			{Dir: quad.Predicate, Values: via},
		},
		Dir: start,
	})
	if opt {
		return IntersectOptional(from, save)
	}
	return IntersectShapes(from, save)
}
