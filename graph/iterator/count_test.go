package iterator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/shapeql/graph"
	"github.com/cayleygraph/shapeql/quad"

	. "github.com/cayleygraph/shapeql/graph/iterator"
)

func TestCount(t *testing.T) {
	ctx := context.TODO()
	fixed := NewFixed(
		graph.PreFetched(quad.String("a")),
		graph.PreFetched(quad.String("b")),
		graph.PreFetched(quad.String("c")),
		graph.PreFetched(quad.String("d")),
		graph.PreFetched(quad.String("e")),
	)
	it := NewCount(fixed, nil)
	s := it.Iterate()
	require.True(t, s.Next(ctx))
	require.Equal(t, graph.PreFetched(quad.Int(5)), s.Result())
	require.False(t, s.Next(ctx))

	idx := it.Lookup()
	require.True(t, idx.Contains(ctx, graph.PreFetched(quad.Int(5))))
	require.False(t, idx.Contains(ctx, graph.PreFetched(quad.Int(3))))

	fixed2 := NewFixed(
		graph.PreFetched(quad.String("b")),
		graph.PreFetched(quad.String("d")),
	)
	it = NewCount(NewAnd(fixed, fixed2), nil)
	s = it.Iterate()
	require.True(t, s.Next(ctx))
	require.Equal(t, graph.PreFetched(quad.Int(2)), s.Result())
	require.False(t, s.Next(ctx))

	idx = it.Lookup()
	require.False(t, idx.Contains(ctx, graph.PreFetched(quad.Int(5))))
	require.True(t, idx.Contains(ctx, graph.PreFetched(quad.Int(2))))
}
