package iterator

// Comparison filters a subiterator down to values that relate to a fixed
// quad.Value by <, <=, > or >=. Equality isn't here -- that's just an And
// against a Fixed.

import (
	"fmt"
	"time"

	"github.com/cayleygraph/shapeql/graph"
	"github.com/cayleygraph/shapeql/quad"
)

type Operator int

const (
	CompareLT Operator = iota
	CompareLTE
	CompareGT
	CompareGTE
)

func (op Operator) String() string {
	switch op {
	case CompareLT:
		return "<"
	case CompareLTE:
		return "<="
	case CompareGT:
		return ">"
	case CompareGTE:
		return ">="
	default:
		return fmt.Sprintf("op(%d)", int(op))
	}
}

// NewComparison builds a ValueFilter keeping values that relate to val by op.
func NewComparison(qs graph.Namer, sub graph.IteratorShape, op Operator, val quad.Value) *ValueFilter {
	name := fmt.Sprintf("Comparison(%s %v)", op, val)
	return NewValueFilter(qs, sub, name, func(qval quad.Value) (bool, error) {
		switch cVal := val.(type) {
		case quad.Int:
			v, ok := qval.(quad.Int)
			return ok && runIntOp(v, op, cVal), nil
		case quad.Float:
			v, ok := qval.(quad.Float)
			return ok && runFloatOp(v, op, cVal), nil
		case quad.String:
			v, ok := qval.(quad.String)
			return ok && runStrOp(string(v), op, string(cVal)), nil
		case quad.BNode:
			v, ok := qval.(quad.BNode)
			return ok && runStrOp(string(v), op, string(cVal)), nil
		case quad.IRI:
			v, ok := qval.(quad.IRI)
			return ok && runStrOp(string(v), op, string(cVal)), nil
		case quad.Time:
			v, ok := qval.(quad.Time)
			return ok && runTimeOp(time.Time(v), op, time.Time(cVal)), nil
		default:
			return runStrOp(quad.StringOf(qval), op, quad.StringOf(val)), nil
		}
	})
}

func runIntOp(a quad.Int, op Operator, b quad.Int) bool {
	switch op {
	case CompareLT:
		return a < b
	case CompareLTE:
		return a <= b
	case CompareGT:
		return a > b
	case CompareGTE:
		return a >= b
	default:
		panic(fmt.Sprintf("iterator: unknown operator %v", op))
	}
}

func runFloatOp(a quad.Float, op Operator, b quad.Float) bool {
	switch op {
	case CompareLT:
		return a < b
	case CompareLTE:
		return a <= b
	case CompareGT:
		return a > b
	case CompareGTE:
		return a >= b
	default:
		panic(fmt.Sprintf("iterator: unknown operator %v", op))
	}
}

func runStrOp(a string, op Operator, b string) bool {
	switch op {
	case CompareLT:
		return a < b
	case CompareLTE:
		return a <= b
	case CompareGT:
		return a > b
	case CompareGTE:
		return a >= b
	default:
		panic(fmt.Sprintf("iterator: unknown operator %v", op))
	}
}

func runTimeOp(a time.Time, op Operator, b time.Time) bool {
	switch op {
	case CompareLT:
		return a.Before(b)
	case CompareLTE:
		return !a.After(b)
	case CompareGT:
		return a.After(b)
	case CompareGTE:
		return !a.Before(b)
	default:
		panic(fmt.Sprintf("iterator: unknown operator %v", op))
	}
}
