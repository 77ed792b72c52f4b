package metrics_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cayleygraph/shapeql/graph"
	"github.com/cayleygraph/shapeql/graph/memstore"
	"github.com/cayleygraph/shapeql/graph/metrics"
	"github.com/cayleygraph/shapeql/quad"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		m := f.GetMetric()[0]
		if m.GetCounter() != nil {
			return m.GetCounter().GetValue()
		}
		return m.GetGauge().GetValue()
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestApplyDeltasCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	qs := metrics.New(memstore.New(), reg, "test")

	q := quad.Make("alice", "follows", "bob", "")
	if err := qs.ApplyDeltas([]graph.Delta{{Quad: q, Action: graph.Add}}, graph.IgnoreOpts{}); err != nil {
		t.Fatal(err)
	}
	if got := counterValue(t, reg, "test_quadstore_quads_added_total"); got != 1 {
		t.Fatalf("quads_added_total = %v, want 1", got)
	}

	if err := qs.ApplyDeltas([]graph.Delta{{Quad: q, Action: graph.Delete}}, graph.IgnoreOpts{}); err != nil {
		t.Fatal(err)
	}
	if got := counterValue(t, reg, "test_quadstore_quads_removed_total"); got != 1 {
		t.Fatalf("quads_removed_total = %v, want 1", got)
	}

	// Deleting an already-absent quad should bump the error counter
	// instead of quads_removed_total.
	if err := qs.ApplyDeltas([]graph.Delta{{Quad: q, Action: graph.Delete}}, graph.IgnoreOpts{}); err == nil {
		t.Fatal("expected deleting an absent quad to error")
	}
	if got := counterValue(t, reg, "test_quadstore_delta_errors_total"); got != 1 {
		t.Fatalf("delta_errors_total = %v, want 1", got)
	}
	if got := counterValue(t, reg, "test_quadstore_quads_removed_total"); got != 1 {
		t.Fatalf("quads_removed_total should not advance on error, got %v", got)
	}
}

func TestStatsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	qs := metrics.New(memstore.New(quad.Make("alice", "follows", "bob", "")), reg, "test")

	st, err := qs.Stats(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	if got := counterValue(t, reg, "test_quadstore_nodes"); got != float64(st.Nodes.Value) {
		t.Fatalf("nodes gauge = %v, want %v", got, st.Nodes.Value)
	}
}
