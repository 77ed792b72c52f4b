package graph

// Defines the QuadStore interface. Every backing store must implement at
// least this interface for the iterator/shape layer to work against it.

import (
	"context"
	"fmt"
	"reflect"

	"github.com/cayleygraph/shapeql/quad"
)

// QuadIndexer is the read-side, index-facing half of a QuadStore: turning
// Refs and directions into iterators and back again.
type QuadIndexer interface {
	// Quad returns the quad for the given Ref.
	Quad(Ref) quad.Quad

	// QuadIterator returns a Shape enumerating quads with v in direction d.
	QuadIterator(d quad.Direction, v Ref) IteratorShape

	// QuadIteratorSize estimates the size of QuadIterator(d, v) without
	// building it.
	QuadIteratorSize(ctx context.Context, d quad.Direction, v Ref) (Size, error)

	// QuadDirection returns the node Ref in direction d of the quad
	// identified by id. At worst a valid implementation is
	// qs.ValueOf(qs.Quad(id).Get(d)), but most backends can do this
	// without a full round trip.
	QuadDirection(id Ref, d quad.Direction) Ref

	// Stats returns the number of nodes and quads currently stored. If
	// exact is false the backend may return an estimate, but it is free
	// to return an exact value anyway (with Exact set accordingly).
	Stats(ctx context.Context, exact bool) (Stats, error)
}

// Stats summarizes the size of a quad store.
type Stats struct {
	Nodes Size
	Quads Size
}

// QuadStore is the contract every backend must satisfy. The iterator/shape
// layer, the optimizer, and every operator in graph/iterator are written
// purely in terms of this interface plus Namer and QuadIndexer.
type QuadStore interface {
	Namer
	QuadIndexer

	// ApplyDeltas applies a batch of changes. Unless opts relaxes it, the
	// whole batch is all-or-nothing: the first Delta that cannot be
	// applied aborts the batch and none of its effects become visible.
	ApplyDeltas(deltas []Delta, opts IgnoreOpts) error

	// NewQuadWriter opens a batch import stream. The order in which
	// quads become visible relative to concurrent ApplyDeltas calls is
	// unspecified.
	NewQuadWriter() (quad.WriteCloser, error)

	// NodesAllIterator enumerates every node in the graph.
	NodesAllIterator() IteratorShape

	// QuadsAllIterator enumerates every quad in the graph.
	QuadsAllIterator() IteratorShape

	// Close releases any resources held by the store.
	Close() error
}

// Procedure names the action a Delta performs.
type Procedure int8

const (
	Add    Procedure = +1
	Delete Procedure = -1
)

func (p Procedure) String() string {
	switch p {
	case Add:
		return "add"
	case Delete:
		return "delete"
	default:
		return "invalid"
	}
}

// Delta is a single quad change: add or delete Quad.
type Delta struct {
	Quad   quad.Quad
	Action Procedure
}

// IgnoreOpts relaxes the all-or-nothing semantics of ApplyDeltas.
type IgnoreOpts struct {
	// IgnoreDup makes adding an already-present quad a no-op instead of
	// an error.
	IgnoreDup bool
	// IgnoreMissing makes deleting an absent quad a no-op instead of an
	// error.
	IgnoreMissing bool
}

// Options carries free-form backend configuration as named values.
type Options map[string]interface{}

var typeInt = reflect.TypeOf(int(0))

func (d Options) IntKey(key string, def int) (int, error) {
	val, ok := d[key]
	if !ok {
		return def, nil
	}
	if reflect.TypeOf(val).ConvertibleTo(typeInt) {
		return int(reflect.ValueOf(val).Convert(typeInt).Int()), nil
	}
	return def, fmt.Errorf("graph: invalid %s option type %T", key, val)
}

func (d Options) StringKey(key string, def string) (string, error) {
	val, ok := d[key]
	if !ok {
		return def, nil
	}
	if v, ok := val.(string); ok {
		return v, nil
	}
	return def, fmt.Errorf("graph: invalid %s option type %T", key, d[key])
}

func (d Options) BoolKey(key string, def bool) (bool, error) {
	val, ok := d[key]
	if !ok {
		return def, nil
	}
	if v, ok := val.(bool); ok {
		return v, nil
	}
	return def, fmt.Errorf("graph: invalid %s option type %T", key, d[key])
}
