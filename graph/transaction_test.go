package graph

import (
	"testing"

	"github.com/cayleygraph/shapeql/quad"
)

func TestTransaction(t *testing.T) {
	var tx *Transaction

	// simple adds / removes
	tx = NewTransaction()
	tx.AddQuad(quad.Make("E", "follows", "F", ""))
	tx.AddQuad(quad.Make("F", "follows", "G", ""))
	tx.RemoveQuad(quad.Make("A", "follows", "Z", ""))
	if len(tx.Deltas) != 3 {
		t.Errorf("expected 3 deltas, have %d", len(tx.Deltas))
	}

	// add, remove -> nothing
	tx = NewTransaction()
	tx.AddQuad(quad.Make("E", "follows", "G", ""))
	tx.RemoveQuad(quad.Make("E", "follows", "G", ""))
	if len(tx.Deltas) != 0 {
		t.Errorf("expected [add, remove]->[], have %d deltas", len(tx.Deltas))
	}

	// remove, add -> nothing
	tx = NewTransaction()
	tx.RemoveQuad(quad.Make("E", "follows", "G", ""))
	tx.AddQuad(quad.Make("E", "follows", "G", ""))
	if len(tx.Deltas) != 0 {
		t.Errorf("expected [remove, add]->[], have %d deltas", len(tx.Deltas))
	}

	// add x2 -> add x1
	tx = NewTransaction()
	tx.AddQuad(quad.Make("E", "follows", "G", ""))
	tx.AddQuad(quad.Make("E", "follows", "G", ""))
	if len(tx.Deltas) != 1 {
		t.Errorf("expected [add, add]->[add], have %d deltas", len(tx.Deltas))
	}

	// remove x2 -> remove x1
	tx = NewTransaction()
	tx.RemoveQuad(quad.Make("E", "follows", "G", ""))
	tx.RemoveQuad(quad.Make("E", "follows", "G", ""))
	if len(tx.Deltas) != 1 {
		t.Errorf("expected [remove, remove]->[remove], have %d deltas", len(tx.Deltas))
	}

	// add, remove x2 -> remove x1
	tx = NewTransaction()
	tx.AddQuad(quad.Make("E", "follows", "G", ""))
	tx.RemoveQuad(quad.Make("E", "follows", "G", ""))
	tx.RemoveQuad(quad.Make("E", "follows", "G", ""))
	if len(tx.Deltas) != 1 {
		t.Errorf("expected [add, remove, remove]->[remove], have %d deltas", len(tx.Deltas))
	}
}
