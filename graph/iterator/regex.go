package iterator

// NewRegex builds a ValueFilter testing each candidate's string form
// against re. allowRefs additionally matches IRIs and BNodes; by default
// only plain and typed strings are tested, same as Gremlin's
// filter{it.matches('exp')}.

import (
	"fmt"
	"regexp"

	"github.com/cayleygraph/shapeql/graph"
	"github.com/cayleygraph/shapeql/quad"
)

func NewRegex(qs graph.Namer, sub graph.IteratorShape, re *regexp.Regexp, allowRefs bool) *ValueFilter {
	name := fmt.Sprintf("Regex(%s)", re)
	return NewValueFilter(qs, sub, name, func(v quad.Value) (bool, error) {
		switch v := v.(type) {
		case quad.Raw:
			return re.MatchString(string(v)), nil
		case quad.String:
			return re.MatchString(string(v)), nil
		case quad.TypedString:
			return re.MatchString(string(v.Value)), nil
		case quad.BNode:
			return allowRefs && re.MatchString(string(v)), nil
		case quad.IRI:
			return allowRefs && re.MatchString(string(v)), nil
		}
		return false, nil
	})
}
