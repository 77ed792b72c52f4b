// Package scenario builds the demo shape trees that cmd/graphtool runs
// against testdata/social.nq, one per named scenario (s1 through s6).
package scenario

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/cayleygraph/shapeql/graph/shape"
	"github.com/cayleygraph/shapeql/quad"
)

// Scenario names a shape tree to run.
type Scenario struct {
	Name  string
	Shape shape.Shape
}

func node(name string) shape.Shape { return shape.Lookup{quad.Raw(name)} }

func follows(from, via quad.Value, inverse bool) shape.Shape {
	return shape.NewInOut(shape.Lookup{from}, shape.Lookup{via}, nil, nil, inverse)
}

// Build returns the named scenario, or an error if name isn't one of
// "s1".."s6".
func Build(name string) (Scenario, error) {
	switch name {
	case "s1":
		// Start at alice, out follows.
		return Scenario{Name: name, Shape: follows(quad.Raw("alice"), quad.Raw("follows"), false)}, nil
	case "s2":
		// Start at bob, in follows.
		return Scenario{Name: name, Shape: follows(quad.Raw("bob"), quad.Raw("follows"), true)}, nil
	case "s3":
		// Start at bob, both directions of follows.
		out := follows(quad.Raw("bob"), quad.Raw("follows"), false)
		in := follows(quad.Raw("bob"), quad.Raw("follows"), true)
		return Scenario{Name: name, Shape: shape.UnionShapes(out, in)}, nil
	case "s4":
		// Start at bob, in follows, filter by regex.
		re := regexp.MustCompile(`ar?li.*e`)
		base := follows(quad.Raw("bob"), quad.Raw("follows"), true)
		return Scenario{Name: name, Shape: shape.Filter{
			From:    base,
			Filters: []shape.ValueFilter{shape.Regexp{Re: re}},
		}}, nil
	case "s5":
		// Start at charlie, recursive follow, max depth 3, tagging depth.
		step := func(s shape.Shape) shape.Shape {
			return shape.NewInOut(s, node("follows"), nil, nil, false)
		}
		return Scenario{
			Name: name,
			Shape: shape.Recursive{
				In:       node("charlie"),
				Path:     step,
				MaxDepth: 3,
				Tags:     []string{"d"},
			},
		}, nil
	case "s6":
		// All nodes, limited to 5.
		return Scenario{Name: name, Shape: shape.Page{From: shape.AllNodes{}, Limit: 5}}, nil
	default:
		return Scenario{}, fmt.Errorf("scenario: unknown scenario %q", name)
	}
}

// Names lists every scenario Build understands, in a stable order.
func Names() []string {
	names := []string{"s1", "s2", "s3", "s4", "s5", "s6"}
	sort.Strings(names)
	return names
}
