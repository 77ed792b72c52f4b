package iterator_test

import (
	"context"
	"reflect"
	"testing"

	. "github.com/cayleygraph/shapeql/graph/iterator"
)

func TestSkipIteratorBasics(t *testing.T) {
	ctx := context.TODO()
	allIt := NewFixed(intNode(1), intNode(2), intNode(3), intNode(4), intNode(5))

	u := NewSkip(allIt, 0)
	expect := []int{1, 2, 3, 4, 5}
	if got := iterated(u); !reflect.DeepEqual(got, expect) {
		t.Errorf("Failed to iterate Skip correctly: got:%v expected:%v", got, expect)
	}

	u = NewSkip(allIt, 3)
	stAll, _ := allIt.Stats(ctx)
	stSkip, _ := u.Stats(ctx)
	if stSkip.Size.Value != stAll.Size.Value-3 {
		t.Errorf("Failed to check Skip size: got:%v expected:%v", stSkip.Size.Value, stAll.Size.Value-3)
	}
	expect = []int{4, 5}
	if got := iterated(u); !reflect.DeepEqual(got, expect) {
		t.Errorf("Failed to iterate Skip correctly: got:%v expected:%v", got, expect)
	}

	// Lookup mode delegates straight to the subiterator: skip only
	// applies to scans, so every underlying value is found.
	for _, v := range []int{1, 2, 3, 4, 5} {
		if !containsValue(u, intNode(v)) {
			t.Errorf("Failed to find a correct value in the Skip iterator.")
		}
	}
}
