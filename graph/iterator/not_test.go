package iterator_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	. "github.com/cayleygraph/shapeql/graph/iterator"
)

func TestNotIteratorBasics(t *testing.T) {
	ctx := context.TODO()
	allIt := NewFixed(intNode(1), intNode(2), intNode(3), intNode(4))
	toComplementIt := NewFixed(intNode(2), intNode(4))

	not := NewNot(toComplementIt, allIt)

	st, _ := not.Stats(ctx)
	if st.Size.Value != 2 {
		t.Errorf("Unexpected iterator size: got:%d, expected: %d", st.Size.Value, 2)
	}

	expect := []int{1, 3}
	for i := 0; i < 2; i++ {
		if got := iterated(not); !reflect.DeepEqual(got, expect) {
			t.Errorf("Failed to iterate Not correctly on repeat %d: got:%v expected:%v", i, got, expect)
		}
	}

	for _, v := range []int{1, 3} {
		if !containsValue(not, intNode(v)) {
			t.Errorf("Failed to correctly check %d as true", v)
		}
	}

	for _, v := range []int{2, 4} {
		if containsValue(not, intNode(v)) {
			t.Errorf("Failed to correctly check %d as false", v)
		}
	}
}

func TestNotIteratorErr(t *testing.T) {
	ctx := context.TODO()
	wantErr := errors.New("unique")
	allIt := newTestIterator(false, wantErr)
	toComplementIt := NewFixed()
	not := NewNot(toComplementIt, allIt)

	s := not.Iterate()
	defer s.Close()
	if s.Next(ctx) != false {
		t.Errorf("Not iterator did not pass through initial 'false'")
	}
	if s.Err() != wantErr {
		t.Errorf("Not iterator did not pass through underlying Err")
	}
}
