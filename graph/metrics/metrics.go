// Package metrics wraps a graph.QuadStore with prometheus counters and
// histograms. It observes cost, it does not change it: every call is
// forwarded to the underlying store unchanged, with timing and counts
// recorded around the call.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cayleygraph/shapeql/graph"
	"github.com/cayleygraph/shapeql/quad"
)

// QuadStore instruments a graph.QuadStore. Every interface method not
// overridden below (Quad, QuadIterator, QuadIteratorSize, QuadDirection,
// NewQuadWriter, NodesAllIterator, QuadsAllIterator, Close) is promoted
// unchanged from the embedded store.
type QuadStore struct {
	graph.QuadStore

	quadsAdded   prometheus.Counter
	quadsRemoved prometheus.Counter
	deltaErrors  prometheus.Counter
	lookupTime   prometheus.Histogram
	nodeCount    prometheus.Gauge
	quadCount    prometheus.Gauge
}

// New wraps qs, registering its metrics under the given namespace (e.g.
// the backend name) in reg. Each call site should use a distinct
// namespace/subsystem pair; reusing one against the same registry panics,
// the same way a duplicate quad.RegisterFormat call does.
func New(qs graph.QuadStore, reg prometheus.Registerer, namespace string) *QuadStore {
	factory := promauto.With(reg)
	return &QuadStore{
		QuadStore: qs,
		quadsAdded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quadstore",
			Name:      "quads_added_total",
			Help:      "Quads successfully added via ApplyDeltas.",
		}),
		quadsRemoved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quadstore",
			Name:      "quads_removed_total",
			Help:      "Quads successfully removed via ApplyDeltas.",
		}),
		deltaErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quadstore",
			Name:      "delta_errors_total",
			Help:      "ApplyDeltas batches that returned an error.",
		}),
		lookupTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "quadstore",
			Name:      "lookup_seconds",
			Help:      "Latency of ValueOf/NameOf lookups.",
			Buckets:   prometheus.DefBuckets,
		}),
		nodeCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "quadstore",
			Name:      "nodes",
			Help:      "Node count last reported by Stats.",
		}),
		quadCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "quadstore",
			Name:      "quads",
			Help:      "Quad count last reported by Stats.",
		}),
	}
}

func (qs *QuadStore) ValueOf(v quad.Value) graph.Ref {
	start := time.Now()
	defer func() { qs.lookupTime.Observe(time.Since(start).Seconds()) }()
	return qs.QuadStore.ValueOf(v)
}

func (qs *QuadStore) NameOf(v graph.Ref) quad.Value {
	start := time.Now()
	defer func() { qs.lookupTime.Observe(time.Since(start).Seconds()) }()
	return qs.QuadStore.NameOf(v)
}

func (qs *QuadStore) ApplyDeltas(deltas []graph.Delta, opts graph.IgnoreOpts) error {
	err := qs.QuadStore.ApplyDeltas(deltas, opts)
	if err != nil {
		qs.deltaErrors.Inc()
		return err
	}
	for _, d := range deltas {
		switch d.Action {
		case graph.Add:
			qs.quadsAdded.Inc()
		case graph.Delete:
			qs.quadsRemoved.Inc()
		}
	}
	return nil
}

func (qs *QuadStore) Stats(ctx context.Context, exact bool) (graph.Stats, error) {
	st, err := qs.QuadStore.Stats(ctx, exact)
	if err != nil {
		return st, err
	}
	qs.nodeCount.Set(float64(st.Nodes.Value))
	qs.quadCount.Set(float64(st.Quads.Value))
	return st, nil
}
