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

package iterator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cayleygraph/shapeql/graph"

	. "github.com/cayleygraph/shapeql/graph/iterator"
)

// Make sure that tags work on the And.
func TestAndTag(t *testing.T) {
	ctx := context.TODO()
	fix1 := NewFixed(intNode(234))
	fix2 := NewFixed(intNode(234))
	and := NewAnd(Tag(fix1, "foo")).AddOptionalIterator(Tag(fix2, "baz"))
	tagged := Tag(and, "bar")

	s := tagged.Iterate()
	defer s.Close()
	if !s.Next(ctx) {
		t.Errorf("And did not next")
	}
	val := s.Result()
	if val.(intNode) != 234 {
		t.Errorf("Unexpected value")
	}
	tags := make(map[string]graph.Ref)
	s.TagResults(tags)
	if tags["bar"].(intNode) != 234 {
		t.Errorf("no bar tag")
	}
	if tags["foo"].(intNode) != 234 {
		t.Errorf("no foo tag")
	}
	if tags["baz"].(intNode) != 234 {
		t.Errorf("no baz tag")
	}
}

// Do a simple intersection of fixed values.
func TestAndAndFixedIterators(t *testing.T) {
	ctx := context.TODO()
	fix1 := NewFixed(intNode(1), intNode(2), intNode(3), intNode(4))
	fix2 := NewFixed(intNode(3), intNode(4), intNode(5))
	and := NewAnd(fix1, fix2)

	st, _ := and.Stats(ctx)
	if st.Size.Value != 3 {
		t.Error("Incorrect size:", st.Size.Value)
	}
	if !st.Size.Exact {
		t.Error("not accurate")
	}

	s := and.Iterate()
	defer s.Close()
	if !s.Next(ctx) || s.Result().(intNode) != 3 {
		t.Error("Incorrect first value")
	}
	if !s.Next(ctx) || s.Result().(intNode) != 4 {
		t.Error("Incorrect second value")
	}
	if s.Next(ctx) {
		t.Error("Too many values")
	}
}

// If there's no intersection, the size should still report the same,
// but there should be nothing to Next()
func TestNonOverlappingFixedIterators(t *testing.T) {
	ctx := context.TODO()
	fix1 := NewFixed(intNode(1), intNode(2), intNode(3), intNode(4))
	fix2 := NewFixed(intNode(5), intNode(6), intNode(7))
	and := NewAnd(fix1, fix2)

	st, _ := and.Stats(ctx)
	if st.Size.Value != 3 {
		t.Error("Incorrect size")
	}
	if !st.Size.Exact {
		t.Error("not accurate")
	}

	s := and.Iterate()
	defer s.Close()
	if s.Next(ctx) {
		t.Error("Too many values")
	}
}

func TestAllIterators(t *testing.T) {
	ctx := context.TODO()
	all1 := newInt64(1, 5, true)
	all2 := newInt64(4, 10, true)
	and := NewAnd(all2, all1)

	s := and.Iterate()
	defer s.Close()
	if !s.Next(ctx) || s.Result().(intNode) != intNode(4) {
		t.Error("Incorrect first value")
	}
	if !s.Next(ctx) || s.Result().(intNode) != intNode(5) {
		t.Error("Incorrect second value")
	}
	if s.Next(ctx) {
		t.Error("Too many values")
	}
}

func TestAndIteratorErr(t *testing.T) {
	ctx := context.TODO()
	wantErr := errors.New("unique")
	allErr := newTestIterator(false, wantErr)

	and := NewAnd(allErr, newInt64(1, 5, true))

	s := and.Iterate()
	defer s.Close()
	if s.Next(ctx) != false {
		t.Errorf("And iterator did not pass through initial 'false'")
	}
	if s.Err() != wantErr {
		t.Errorf("And iterator did not pass through underlying Err: %v", s.Err())
	}
}
