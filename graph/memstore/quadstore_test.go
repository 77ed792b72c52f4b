// Copyright 2014 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package memstore

import (
	"context"
	"reflect"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/shapeql/graph"
	"github.com/cayleygraph/shapeql/graph/iterator"
	"github.com/cayleygraph/shapeql/graph/shape"
	"github.com/cayleygraph/shapeql/quad"
)

// This is a simple test graph.
//
//    +---+                        +---+
//    | A |-------               ->| F |<--
//    +---+       \------>+---+-/  +---+   \--+---+
//                 ------>|#B#|      |        | E |
//    +---+-------/      >+---+      |        +---+
//    | C |             /            v
//    +---+           -/           +---+
//      ----    +---+/             |#G#|
//          \-->|#D#|------------->+---+
//              +---+
//
var simpleGraph = []quad.Quad{
	quad.Make("A", "follows", "B", ""),
	quad.Make("C", "follows", "B", ""),
	quad.Make("C", "follows", "D", ""),
	quad.Make("D", "follows", "B", ""),
	quad.Make("B", "follows", "F", ""),
	quad.Make("F", "follows", "G", ""),
	quad.Make("D", "follows", "G", ""),
	quad.Make("E", "follows", "F", ""),
	quad.Make("B", "status", "cool", "status_graph"),
	quad.Make("D", "status", "cool", "status_graph"),
	quad.Make("G", "status", "cool", "status_graph"),
}

func TestMemstoreValueOf(t *testing.T) {
	qs := New(simpleGraph...)
	exp := graph.Stats{
		Nodes: graph.Size{Value: 11, Exact: true},
		Quads: graph.Size{Value: 11, Exact: true},
	}
	st, err := qs.Stats(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, exp, st, "Unexpected quadstore size")

	v := qs.ValueOf(quad.Raw("C"))
	require.IsType(t, bnode(0), v)
}

func TestIteratorsAndNextResultOrderA(t *testing.T) {
	ctx := context.TODO()
	qs := New(simpleGraph...)

	fixed := iterator.NewFixed(qs.ValueOf(quad.Raw("C")))
	fixed2 := iterator.NewFixed(qs.ValueOf(quad.Raw("follows")))

	all := qs.NodesAllIterator()

	const allTag = "all"
	innerAnd := iterator.NewAnd(
		iterator.NewLinksTo(qs, fixed2, quad.Predicate),
		iterator.NewLinksTo(qs, iterator.Tag(all, allTag), quad.Object),
	)

	hasa := iterator.NewHasA(qs, innerAnd, quad.Subject)
	outerAnd := iterator.NewAnd(fixed, hasa).Iterate()
	defer outerAnd.Close()

	if !outerAnd.Next(ctx) {
		t.Fatal("Expected one matching subtree")
	}
	if vn := qs.NameOf(outerAnd.Result()); vn != quad.Raw("C") {
		t.Errorf("Matching subtree should be %s, got %s", "C", vn)
	}

	var (
		got    []string
		expect = []string{"B", "D"}
	)
	for {
		m := make(map[string]graph.Ref, 1)
		outerAnd.TagResults(m)
		got = append(got, quad.StringOf(qs.NameOf(m[allTag])))
		if !outerAnd.NextPath(ctx) {
			break
		}
	}
	sort.Strings(got)

	if !reflect.DeepEqual(got, expect) {
		t.Errorf("Unexpected result, got:%q expect:%q", got, expect)
	}

	if outerAnd.Next(ctx) {
		t.Error("More than one possible top level output?")
	}
}

func TestQuadFilterCompilesToDirectIterator(t *testing.T) {
	qs := New(simpleGraph...)

	lto := shape.BuildIterator(context.TODO(), qs, shape.Quads{
		{Dir: quad.Object, Values: shape.Lookup{quad.Raw("cool")}},
	})

	if _, ok := lto.(*Iterator); !ok {
		t.Fatalf("expected a single fixed lookup to compile straight to memstore.Iterator, got %T", lto)
	}
}

func TestRemoveQuad(t *testing.T) {
	ctx := context.TODO()
	qs := New(simpleGraph...)

	err := qs.ApplyDeltas([]graph.Delta{
		{Quad: quad.Make("E", "follows", "F", ""), Action: graph.Delete},
	}, graph.IgnoreOpts{})
	require.NoError(t, err)

	fixed := iterator.NewFixed(qs.ValueOf(quad.Raw("E")))
	fixed2 := iterator.NewFixed(qs.ValueOf(quad.Raw("follows")))

	innerAnd := iterator.NewAnd(
		iterator.NewLinksTo(qs, fixed, quad.Subject),
		iterator.NewLinksTo(qs, fixed2, quad.Predicate),
	)

	hasa := iterator.NewHasA(qs, innerAnd, quad.Object)

	newIt, _ := hasa.Optimize(ctx)
	s := newIt.Iterate()
	defer s.Close()
	if s.Next(ctx) {
		t.Error("E should not have any followers.")
	}
}

func TestApplyDeltasRejectsDuplicateAdd(t *testing.T) {
	qs := New(simpleGraph...)
	err := qs.ApplyDeltas([]graph.Delta{
		{Quad: quad.Make("A", "follows", "B", ""), Action: graph.Add},
	}, graph.IgnoreOpts{})
	if !graph.IsQuadExist(err) {
		t.Errorf("expected a quad-exists error, got %v", err)
	}
}

func TestApplyDeltasIgnoreDup(t *testing.T) {
	qs := New(simpleGraph...)
	st, err := qs.Stats(context.Background(), true)
	require.NoError(t, err)

	err = qs.ApplyDeltas([]graph.Delta{
		{Quad: quad.Make("A", "follows", "B", ""), Action: graph.Add},
	}, graph.IgnoreOpts{IgnoreDup: true})
	require.NoError(t, err)

	st2, err := qs.Stats(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, st, st2, "duplicate add under IgnoreDup should not change store size")
}
