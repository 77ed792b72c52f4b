// Package graph defines the iterator/shape protocol, the QuadStore
// contract, and the Ref/Namer value-reference layer that backends and
// operators share.
package graph

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/cayleygraph/shapeql/quad"
)

// Size is a count with an exactness flag. It propagates through cost
// computation: the result is exact only when every contributing Size was
// exact.
type Size struct {
	Value int64
	Exact bool
}

// Ref is an opaque handle a backend uses to identify a node or a quad. The
// iterator layer never interprets a Ref's contents; it only compares keys.
//
// Two Refs produced by the same backend for the same underlying entity
// must have equal keys.
type Ref interface {
	// Key returns a comparable representation of the receiver, unique per
	// distinct entity within one backend.
	Key() interface{}
}

// Namer maps between the Value domain and a backend's Refs.
type Namer interface {
	// ValueOf returns the Ref for v, or nil if the backend has never seen it.
	ValueOf(v quad.Value) Ref
	// NameOf returns the Value a Ref represents, or nil if unknown.
	NameOf(v Ref) quad.Value
}

// BatchNamer is an optional Namer extension for backends that can resolve
// many refs/values in one round trip.
type BatchNamer interface {
	ValuesOf(ctx context.Context, refs []Ref) ([]quad.Value, error)
	RefsOf(ctx context.Context, vals []quad.Value) ([]Ref, error)
}

// ValuesOf resolves refs to values, using qs's batch path when available.
func ValuesOf(ctx context.Context, qs Namer, refs []Ref) ([]quad.Value, error) {
	if bq, ok := qs.(BatchNamer); ok {
		return bq.ValuesOf(ctx, refs)
	}
	out := make([]quad.Value, len(refs))
	for i, r := range refs {
		out[i] = qs.NameOf(r)
	}
	return out, nil
}

// RefsOf resolves values to refs, using qs's batch path when available. It
// returns ErrNotFound if any value has no corresponding ref.
func RefsOf(ctx context.Context, qs Namer, vals []quad.Value) ([]Ref, error) {
	if bq, ok := qs.(BatchNamer); ok {
		return bq.RefsOf(ctx, vals)
	}
	out := make([]Ref, len(vals))
	for i, v := range vals {
		ref := qs.ValueOf(v)
		if ref == nil {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, v)
		}
		out[i] = ref
	}
	return out, nil
}

// ToKey normalizes a possibly-nil Ref into a map key.
func ToKey(v Ref) interface{} {
	if v == nil {
		return nil
	}
	return v.Key()
}

// ValueHash is a content hash of a single Value, usable as a Ref by
// backends that don't maintain their own id space.
type ValueHash [quad.HashSize]byte

var _ Ref = ValueHash{}

// HashOf computes the ValueHash of v.
func HashOf(v quad.Value) (out ValueHash) {
	if v == nil {
		return
	}
	quad.HashTo(v, out[:])
	return
}

func (h ValueHash) Valid() bool      { return h != ValueHash{} }
func (h ValueHash) Key() interface{} { return h }
func (h ValueHash) String() string {
	if !h.Valid() {
		return ""
	}
	return hex.EncodeToString(h[:])
}

// PreFetchedValue is a Ref that already carries its Value, so NameOf need
// not round-trip through a backend. Used for synthesized results such as
// Count's sole binding.
type PreFetchedValue interface {
	Ref
	NameOf() quad.Value
}

// PreFetched wraps v as a Ref whose key and payload are both v itself.
func PreFetched(v quad.Value) PreFetchedValue { return fetchedValue{v} }

type fetchedValue struct{ Val quad.Value }

func (v fetchedValue) NameOf() quad.Value { return v.Val }
func (v fetchedValue) Key() interface{}   { return v.Val }

// QuadHash is a Ref that identifies a quad by the hash of each of its four
// directions.
type QuadHash struct {
	Subject, Predicate, Object, Label ValueHash
}

var _ Ref = QuadHash{}

func (q QuadHash) Key() interface{} { return q }

func (q QuadHash) Get(d quad.Direction) ValueHash {
	switch d {
	case quad.Subject:
		return q.Subject
	case quad.Predicate:
		return q.Predicate
	case quad.Object:
		return q.Object
	case quad.Label:
		return q.Label
	}
	panic(fmt.Errorf("graph: unknown direction %v", d))
}

func (q *QuadHash) Set(d quad.Direction, h ValueHash) {
	switch d {
	case quad.Subject:
		q.Subject = h
	case quad.Predicate:
		q.Predicate = h
	case quad.Object:
		q.Object = h
	case quad.Label:
		q.Label = h
	default:
		panic(fmt.Errorf("graph: unknown direction %v", d))
	}
}
