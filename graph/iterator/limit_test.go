package iterator_test

import (
	"context"
	"reflect"
	"testing"

	. "github.com/cayleygraph/shapeql/graph/iterator"
)

func TestLimitIteratorBasics(t *testing.T) {
	ctx := context.TODO()
	allIt := NewFixed(intNode(1), intNode(2), intNode(3), intNode(4), intNode(5))

	u := NewLimit(allIt, 0)
	stAll, _ := allIt.Stats(ctx)
	stLimit, _ := u.Stats(ctx)
	if stLimit.Size.Value != stAll.Size.Value {
		t.Errorf("Failed to check Limit size: got:%v expected:%v", stLimit.Size.Value, stAll.Size.Value)
	}
	expect := []int{1, 2, 3, 4, 5}
	if got := iterated(u); !reflect.DeepEqual(got, expect) {
		t.Errorf("Failed to iterate Limit correctly: got:%v expected:%v", got, expect)
	}

	u = NewLimit(allIt, 3)
	stLimit, _ = u.Stats(ctx)
	if stLimit.Size.Value != 3 {
		t.Errorf("Failed to check Limit size: got:%v expected:%v", stLimit.Size.Value, 3)
	}
	expect = []int{1, 2, 3}
	if got := iterated(u); !reflect.DeepEqual(got, expect) {
		t.Errorf("Failed to iterate Limit correctly: got:%v expected:%v", got, expect)
	}

	idx := u.Lookup()
	for _, v := range []int{1, 2, 3} {
		if !idx.Contains(ctx, intNode(v)) {
			t.Errorf("Failed to find a correct value in the Limit iterator.")
		}
	}
	if idx.Contains(ctx, intNode(4)) {
		t.Errorf("Limit should stop counting new hits once its limit is reached.")
	}
}
