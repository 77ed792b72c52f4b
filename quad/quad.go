package quad

import (
	"errors"
	"fmt"
)

var (
	ErrInvalid    = errors.New("quad: invalid quad")
	ErrIncomplete = errors.New("quad: incomplete quad")
)

// Make creates a quad with raw (unquoted) string values, leaving unset
// directions nil. Used by tests for bare-word quads.
func Make(subject, predicate, object, label string) (q Quad) {
	if subject != "" {
		q.Subject = Raw(subject)
	}
	if predicate != "" {
		q.Predicate = Raw(predicate)
	}
	if object != "" {
		q.Object = Raw(object)
	}
	if label != "" {
		q.Label = Raw(label)
	}
	return
}

// Quad is an immutable 4-tuple of values: the edges of the graph. Label may
// be nil, meaning "default graph".
type Quad struct {
	Subject   Value
	Predicate Value
	Object    Value
	Label     Value
}

// Direction identifies one of the four fields of a Quad.
type Direction byte

// The valid directions of a quad. Any is used as a wildcard in some APIs
// but never appears as a direction on a stored quad.
const (
	Any Direction = iota
	Subject
	Predicate
	Object
	Label
)

// Directions lists the four real directions, in canonical order.
var Directions = []Direction{Subject, Predicate, Object, Label}

func (d Direction) String() string {
	switch d {
	case Any:
		return "any"
	case Subject:
		return "subject"
	case Predicate:
		return "predicate"
	case Object:
		return "object"
	case Label:
		return "label"
	default:
		return fmt.Sprintf("invalid direction(%d)", byte(d))
	}
}

// Get returns the value for direction d.
func (q Quad) Get(d Direction) Value {
	switch d {
	case Subject:
		return q.Subject
	case Predicate:
		return q.Predicate
	case Object:
		return q.Object
	case Label:
		return q.Label
	default:
		panic(d.String())
	}
}

// Set returns a copy of q with direction d set to v.
func (q Quad) Set(d Direction, v Value) Quad {
	switch d {
	case Subject:
		q.Subject = v
	case Predicate:
		q.Predicate = v
	case Object:
		q.Object = v
	case Label:
		q.Label = v
	default:
		panic(d.String())
	}
	return q
}

// GetString returns the String() form of the value for direction d, or ""
// if unset.
func (q Quad) GetString(d Direction) string {
	return StringOf(q.Get(d))
}

// String pretty-prints a quad for diagnostics.
func (q Quad) String() string {
	return fmt.Sprintf("%v -- %v -> %v", q.Subject, q.Predicate, q.Object)
}

// IsValid reports whether subject, predicate and object are all set to
// non-empty values. Label may be unset.
func (q Quad) IsValid() bool {
	return q.Subject != nil && q.Predicate != nil && q.Object != nil &&
		q.Subject.String() != "" && q.Predicate.String() != "" && q.Object.String() != ""
}

// NQuad renders q in N-Quads-like notation.
func (q Quad) NQuad() string {
	if q.Label == nil || q.Label.String() == "" {
		return fmt.Sprintf("%s %s %s .", q.Subject, q.Predicate, q.Object)
	}
	return fmt.Sprintf("%s %s %s %s .", q.Subject, q.Predicate, q.Object, q.Label)
}

// ByQuadString orders quads lexicographically by the string form of
// subject, then predicate, then object, then label.
type ByQuadString []Quad

func (o ByQuadString) Len() int { return len(o) }
func (o ByQuadString) Less(i, j int) bool {
	a, b := o[i], o[j]
	if sa, sb := a.GetString(Subject), b.GetString(Subject); sa != sb {
		return sa < sb
	}
	if pa, pb := a.GetString(Predicate), b.GetString(Predicate); pa != pb {
		return pa < pb
	}
	if oa, ob := a.GetString(Object), b.GetString(Object); oa != ob {
		return oa < ob
	}
	return a.GetString(Label) < b.GetString(Label)
}
func (o ByQuadString) Swap(i, j int) { o[i], o[j] = o[j], o[i] }
