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
	"reflect"
	"testing"

	"github.com/cayleygraph/shapeql/quad"

	. "github.com/cayleygraph/shapeql/graph/iterator"
)

func simpleFixedIterator() *Fixed {
	f := NewFixed()
	for i := int64(0); i < 5; i++ {
		f.Add(intNode(i))
	}
	return f
}

func stringFixedIterator() *Fixed {
	f := NewFixed()
	for _, value := range []string{"foo", "bar", "baz", "echo"} {
		f.Add(stringNode(value))
	}
	return f
}

func mixedFixedIterator() *Fixed {
	f := NewFixed()
	for i := int64(0); i < 10; i++ {
		f.Add(intNode(i))
	}
	return f
}

var comparisonTests = []struct {
	message  string
	operand  quad.Value
	operator Operator
	expect   []quad.Value
	iterator func() *Fixed
}{
	{
		message:  "successful int64 less than comparison",
		operand:  quad.Int(3),
		operator: CompareLT,
		expect:   []quad.Value{quad.Int(0), quad.Int(1), quad.Int(2)},
		iterator: simpleFixedIterator,
	},
	{
		message:  "empty int64 less than comparison",
		operand:  quad.Int(0),
		operator: CompareLT,
		expect:   nil,
		iterator: simpleFixedIterator,
	},
	{
		message:  "successful int64 greater than comparison",
		operand:  quad.Int(2),
		operator: CompareGT,
		expect:   []quad.Value{quad.Int(3), quad.Int(4)},
		iterator: simpleFixedIterator,
	},
	{
		message:  "successful int64 greater than or equal comparison",
		operand:  quad.Int(2),
		operator: CompareGTE,
		expect:   []quad.Value{quad.Int(2), quad.Int(3), quad.Int(4)},
		iterator: simpleFixedIterator,
	},
	{
		message:  "successful int64 greater than or equal comparison (mixed)",
		operand:  quad.Int(2),
		operator: CompareGTE,
		expect:   []quad.Value{quad.Int(2), quad.Int(3), quad.Int(4), quad.Int(5), quad.Int(6), quad.Int(7), quad.Int(8), quad.Int(9)},
		iterator: mixedFixedIterator,
	},
	{
		message:  "successful string less than comparison",
		operand:  quad.String("echo"),
		operator: CompareLT,
		expect:   []quad.Value{quad.String("bar"), quad.String("baz")},
		iterator: stringFixedIterator,
	},
	{
		message:  "empty string less than comparison",
		operand:  quad.String(""),
		operator: CompareLT,
		expect:   nil,
		iterator: stringFixedIterator,
	},
	{
		message:  "successful string greater than comparison",
		operand:  quad.String("echo"),
		operator: CompareGT,
		expect:   []quad.Value{quad.String("foo")},
		iterator: stringFixedIterator,
	},
	{
		message:  "successful string greater than or equal comparison",
		operand:  quad.String("echo"),
		operator: CompareGTE,
		expect:   []quad.Value{quad.String("foo"), quad.String("echo")},
		iterator: stringFixedIterator,
	},
}

func TestValueComparison(t *testing.T) {
	ctx := context.TODO()
	qs := intNamer{}
	for _, test := range comparisonTests {
		vc := NewComparison(qs, test.iterator(), test.operator, test.operand)

		s := vc.Iterate()
		var got []quad.Value
		for s.Next(ctx) {
			got = append(got, qs.NameOf(s.Result()))
		}
		s.Close()
		if !reflect.DeepEqual(got, test.expect) {
			t.Errorf("Failed to show %s, got:%q expect:%q", test.message, got, test.expect)
		}
	}
}

var vciContainsTests = []struct {
	message  string
	operator Operator
	check    intNode
	expect   bool
	val      quad.Value
	iterator func() *Fixed
}{
	{
		message:  "1 is less than 2",
		operator: CompareGTE,
		check:    intNode(1),
		expect:   false,
		val:      quad.Int(2),
		iterator: simpleFixedIterator,
	},
	{
		message:  "2 is greater than or equal to 2",
		operator: CompareGTE,
		check:    intNode(2),
		expect:   true,
		val:      quad.Int(2),
		iterator: simpleFixedIterator,
	},
	{
		message:  "3 is greater than or equal to 2",
		operator: CompareGTE,
		check:    intNode(3),
		expect:   true,
		val:      quad.Int(2),
		iterator: simpleFixedIterator,
	},
	{
		message:  "5 is absent from iterator",
		operator: CompareGTE,
		check:    intNode(5),
		expect:   false,
		val:      quad.Int(2),
		iterator: simpleFixedIterator,
	},
}

func TestVCIContains(t *testing.T) {
	ctx := context.TODO()
	qs := intNamer{}
	for _, test := range vciContainsTests {
		vc := NewComparison(qs, test.iterator(), test.operator, test.val)
		idx := vc.Lookup()
		if idx.Contains(ctx, test.check) != test.expect {
			t.Errorf("Failed to show %s", test.message)
		}
		idx.Close()
	}
}

func TestComparisonIteratorErr(t *testing.T) {
	ctx := context.TODO()
	wantErr := errors.New("unique")
	errIt := newTestIterator(false, wantErr)

	vc := NewComparison(intNamer{}, errIt, CompareLT, quad.Int(2))
	s := vc.Iterate()
	defer s.Close()
	if s.Next(ctx) != false {
		t.Errorf("Comparison iterator did not pass through initial 'false'")
	}
	if s.Err() != wantErr {
		t.Errorf("Comparison iterator did not pass through underlying Err")
	}
}
