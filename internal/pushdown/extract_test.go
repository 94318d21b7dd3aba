package pushdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/ir"
	"github.com/roach88/pushdown/internal/queryir"
	"github.com/roach88/pushdown/internal/traversal"
)

func lookupV(ids ...string) traversal.GraphStep {
	return traversal.GraphStep{ReturnType: graph.ElementVertex, IDs: ids}
}

func has(key string, p traversal.Predicate) traversal.HasStep {
	return traversal.HasStep{Filters: []traversal.HasFilter{traversal.Has(key, p)}}
}

func TestCompile_FilterOrderRange(t *testing.T) {
	c := NewCompiler(nil)
	p := traversal.Pipeline{
		lookupV(),
		has("name", traversal.Eq(ir.IRString("x"))),
		traversal.OrderStep{Comparators: []traversal.Comparator{{Key: "age", Order: traversal.OrderDesc}}},
		traversal.RangeStep{Low: 0, High: 10},
	}

	res, err := c.Compile(p, 0)
	require.NoError(t, err)

	assert.Equal(t, []queryir.Condition{
		queryir.Relation{Key: queryir.Raw("name"), Op: queryir.EQ, Value: ir.IRString("x")},
	}, res.Query.Conditions)
	assert.Equal(t, []queryir.OrderKey{{Key: queryir.Raw("age"), Direction: queryir.DESC}}, res.Query.Orders)
	require.NotNil(t, res.Query.Range)
	assert.Equal(t, queryir.Range{Offset: 0, Limit: 10}, *res.Query.Range)

	assert.Equal(t, traversal.Pipeline{lookupV(), traversal.RangeStep{Low: 0, High: 10}}, res.Pipeline)
	assert.Equal(t, 0, res.Anchor)
	assert.Len(t, res.Filters, 1)
}

func TestCompile_DoesNotMutateInput(t *testing.T) {
	c := NewCompiler(nil)
	p := traversal.Pipeline{
		lookupV(),
		traversal.HasStep{
			Labeled: traversal.Labeled{As: []string{"a"}},
			Filters: []traversal.HasFilter{traversal.Has(graph.AccessorID, traversal.Eq(ir.IRString("1")))},
		},
	}
	before := p.String()

	res, err := c.Compile(p, 0)
	require.NoError(t, err)

	assert.Equal(t, before, p.String())
	assert.Empty(t, p[0].(traversal.GraphStep).IDs)
	assert.Equal(t, []string{"1"}, res.Pipeline[0].(traversal.GraphStep).IDs)
}

func TestExtractFilters_StopsAtOpaqueStep(t *testing.T) {
	c := NewCompiler(nil)
	q := queryir.NewBackendQuery(graph.ElementVertex)
	p := traversal.Pipeline{
		lookupV(),
		has("a", traversal.Eq(ir.IRInt(1))),
		traversal.NoOpBarrierStep{},
		has("b", traversal.Eq(ir.IRInt(2))),
		traversal.OtherStep{Name: "dedup"},
		has("c", traversal.Eq(ir.IRInt(3))),
	}

	out, filters, err := c.ExtractFilters(p, 0, q)
	require.NoError(t, err)

	assert.Len(t, q.Conditions, 2)
	assert.Len(t, filters, 2)
	assert.Equal(t, traversal.Pipeline{
		lookupV(),
		traversal.NoOpBarrierStep{},
		traversal.OtherStep{Name: "dedup"},
		has("c", traversal.Eq(ir.IRInt(3))),
	}, out)
}

func TestExtractFilters_MovesLabelsToPredecessor(t *testing.T) {
	c := NewCompiler(nil)
	q := queryir.NewBackendQuery(graph.ElementVertex)
	p := traversal.Pipeline{
		traversal.GraphStep{Labeled: traversal.Labeled{As: []string{"v"}}, ReturnType: graph.ElementVertex},
		traversal.HasStep{
			Labeled: traversal.Labeled{As: []string{"a", "v"}},
			Filters: []traversal.HasFilter{traversal.Has("x", traversal.Eq(ir.IRInt(1)))},
		},
		traversal.NoOpBarrierStep{},
		traversal.HasStep{
			Labeled: traversal.Labeled{As: []string{"b"}},
			Filters: []traversal.HasFilter{traversal.Has("y", traversal.Eq(ir.IRInt(2)))},
		},
	}

	out, _, err := c.ExtractFilters(p, 0, q)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, []string{"v", "a"}, out[0].Labels())
	assert.Equal(t, []string{"b"}, out[1].Labels())
}

func TestExtractFilters_FailureAborts(t *testing.T) {
	c := NewCompiler(nil)
	p := traversal.Pipeline{
		lookupV(),
		has("ok", traversal.Eq(ir.IRInt(1))),
		has("x", traversal.Or{Predicates: []traversal.Predicate{traversal.Lt(ir.IRInt(1)), traversal.Gt(ir.IRInt(10))}}),
	}

	res, err := c.Compile(p, 0)
	assert.Nil(t, res)
	assert.True(t, IsUnsupportedPredicate(err))
}

func TestExtractFilters_DelegatesIDs(t *testing.T) {
	c := NewCompiler(nil)

	t.Run("eq", func(t *testing.T) {
		res, err := c.Compile(traversal.Pipeline{
			lookupV(),
			has(graph.AccessorID, traversal.Eq(ir.IRString("7"))),
		}, 0)
		require.NoError(t, err)
		assert.Empty(t, res.Query.Conditions)
		assert.Equal(t, []string{"7"}, res.Query.IDs)
		assert.Equal(t, traversal.Pipeline{lookupV("7")}, res.Pipeline)
		assert.Len(t, res.Filters, 1)
	})

	t.Run("within", func(t *testing.T) {
		res, err := c.Compile(traversal.Pipeline{
			lookupV(),
			has(graph.AccessorID, traversal.Within(ir.IRString("1"), ir.IRString("2"))),
		}, 0)
		require.NoError(t, err)
		assert.Empty(t, res.Query.Conditions)
		assert.Equal(t, []string{"1", "2"}, res.Query.IDs)
	})

	t.Run("anchor already has ids", func(t *testing.T) {
		res, err := c.Compile(traversal.Pipeline{
			lookupV("1"),
			has(graph.AccessorID, traversal.Eq(ir.IRString("2"))),
		}, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, res.Query.IDs)
		require.Len(t, res.Query.Conditions, 1)
		assert.Equal(t, queryir.WellKnown(queryir.KeyID), res.Query.Conditions[0].(queryir.Relation).Key)
	})

	t.Run("neq is translated", func(t *testing.T) {
		res, err := c.Compile(traversal.Pipeline{
			lookupV(),
			has(graph.AccessorID, traversal.Neq(ir.IRString("2"))),
		}, 0)
		require.NoError(t, err)
		assert.Empty(t, res.Query.IDs)
		assert.Len(t, res.Query.Conditions, 1)
	})

	t.Run("only first id filter delegates", func(t *testing.T) {
		res, err := c.Compile(traversal.Pipeline{
			lookupV(),
			has(graph.AccessorID, traversal.Within(ir.IRString("1"), ir.IRString("2"))),
			has(graph.AccessorID, traversal.Eq(ir.IRString("2"))),
		}, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, res.Query.IDs)
		assert.Len(t, res.Query.Conditions, 1)
		assert.Len(t, res.Filters, 2)
	})
}

func TestExtractOrder_Consecutive(t *testing.T) {
	c := NewCompiler(NewResolver(keyAge))
	q := queryir.NewBackendQuery(graph.ElementVertex)
	p := traversal.Pipeline{
		lookupV(),
		traversal.OrderStep{
			Labeled:     traversal.Labeled{As: []string{"o"}},
			Comparators: []traversal.Comparator{{Key: "age", Order: traversal.OrderIncr}},
		},
		traversal.IdentityStep{},
		traversal.OrderStep{Comparators: []traversal.Comparator{
			{Key: "name", Order: traversal.OrderDecr},
			{Key: graph.AccessorLabel, Order: traversal.OrderAsc},
		}},
		traversal.RangeStep{Low: 5, High: traversal.NoUpperBound},
	}

	out := c.ExtractOrder(p, 0, q)

	assert.Equal(t, []queryir.OrderKey{
		{Key: queryir.WellKnown(keyAge), Direction: queryir.ASC},
		{Key: queryir.Raw("name"), Direction: queryir.DESC},
		{Key: queryir.WellKnown(queryir.KeyLabel), Direction: queryir.ASC},
	}, q.Orders)
	assert.Equal(t, traversal.Pipeline{
		traversal.GraphStep{Labeled: traversal.Labeled{As: []string{"o"}}, ReturnType: graph.ElementVertex},
		traversal.IdentityStep{},
		traversal.RangeStep{Low: 5, High: traversal.NoUpperBound},
	}, out)
}

func TestExtractOrder_UnkeyedComparatorStops(t *testing.T) {
	c := NewCompiler(nil)
	q := queryir.NewBackendQuery(graph.ElementVertex)
	order := traversal.OrderStep{Comparators: []traversal.Comparator{{Order: traversal.OrderDesc}}}
	p := traversal.Pipeline{lookupV(), order}

	out := c.ExtractOrder(p, 0, q)
	assert.Empty(t, q.Orders)
	assert.Equal(t, p, out)
}

func TestExtractRange(t *testing.T) {
	tests := []struct {
		name  string
		steps []traversal.Step
		want  *queryir.Range
	}{
		{"limit", []traversal.Step{traversal.RangeStep{Low: 0, High: 10}}, &queryir.Range{Offset: 0, Limit: 10}},
		{"window", []traversal.Step{traversal.RangeStep{Low: 5, High: 15}}, &queryir.Range{Offset: 5, Limit: 10}},
		{"unbounded", []traversal.Step{traversal.RangeStep{Low: 3, High: traversal.NoUpperBound}}, &queryir.Range{Offset: 3, Limit: queryir.NoLimit}},
		{"skips identity and barrier", []traversal.Step{
			traversal.IdentityStep{}, traversal.NoOpBarrierStep{}, traversal.RangeStep{Low: 0, High: 2},
		}, &queryir.Range{Offset: 0, Limit: 2}},
		{"blocked by opaque step", []traversal.Step{
			traversal.OtherStep{Name: "dedup"}, traversal.RangeStep{Low: 0, High: 2},
		}, nil},
		{"first range only", []traversal.Step{
			traversal.RangeStep{Low: 0, High: 4}, traversal.RangeStep{Low: 0, High: 2},
		}, &queryir.Range{Offset: 0, Limit: 4}},
		{"none", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := queryir.NewBackendQuery(graph.ElementVertex)
			p := append(traversal.Pipeline{lookupV()}, tt.steps...)

			out := ExtractRange(p, 0, q)
			assert.Equal(t, tt.want, q.Range)
			assert.Equal(t, p, out)
		})
	}
}

func TestCompile_RangeRetained(t *testing.T) {
	c := NewCompiler(nil)
	p := traversal.Pipeline{
		lookupV(),
		has("a", traversal.Eq(ir.IRInt(1))),
		traversal.OrderStep{Comparators: []traversal.Comparator{{Key: "a", Order: traversal.OrderAsc}}},
		traversal.RangeStep{Low: 1, High: 3},
		has("b", traversal.Eq(ir.IRInt(1))),
	}

	res, err := c.Compile(p, 0)
	require.NoError(t, err)

	var ranges, hasSteps, orders int
	for _, s := range res.Pipeline {
		switch s.(type) {
		case traversal.RangeStep:
			ranges++
		case traversal.HasStep:
			hasSteps++
		case traversal.OrderStep:
			orders++
		}
	}
	assert.Equal(t, 1, ranges)
	assert.Equal(t, 1, hasSteps, "has-step after the range is not consumed")
	assert.Equal(t, 0, orders)
}

func TestCompile_EdgeAnchor(t *testing.T) {
	c := NewCompiler(nil)
	outE := traversal.VertexStep{Direction: graph.DirectionOut, EdgeLabels: []string{"knows"}, ReturnType: graph.ElementEdge}
	p := traversal.Pipeline{
		lookupV("1"),
		outE,
		has("weight", traversal.Gt(ir.IRInt(0))),
		traversal.OrderStep{Comparators: []traversal.Comparator{{Key: "weight", Order: traversal.OrderDesc}}},
		traversal.RangeStep{Low: 0, High: 1},
	}

	res, err := c.Compile(p, 1)
	require.NoError(t, err)

	assert.Equal(t, graph.ElementEdge, res.Query.ResultType)
	assert.Equal(t, []queryir.Condition{
		queryir.Relation{Key: queryir.WellKnown(queryir.KeyLabel), Op: queryir.EQ, Value: ir.IRString("knows")},
		queryir.Relation{Key: queryir.Raw("weight"), Op: queryir.GT, Value: ir.IRInt(0)},
	}, res.Query.Conditions)
	assert.Empty(t, res.Query.Orders)
	assert.Nil(t, res.Query.Range)
	assert.Equal(t, traversal.Pipeline{p[0], outE, p[3], p[4]}, res.Pipeline)
	assert.Equal(t, 1, res.Anchor)
}

func TestCompile_EdgeAnchorLabels(t *testing.T) {
	c := NewCompiler(nil)

	res, err := c.Compile(traversal.Pipeline{traversal.VertexStep{
		Direction:  graph.DirectionBoth,
		EdgeLabels: []string{"knows", "created"},
		ReturnType: graph.ElementEdge,
	}}, 0)
	require.NoError(t, err)
	assert.Equal(t, []queryir.Condition{queryir.SetRelation{
		Key:    queryir.WellKnown(queryir.KeyLabel),
		Op:     queryir.IN,
		Values: []ir.IRValue{ir.IRString("knows"), ir.IRString("created")},
	}}, res.Query.Conditions)
}

func TestCompile_EdgeAnchorDoesNotDelegateIDs(t *testing.T) {
	c := NewCompiler(nil)

	res, err := c.Compile(traversal.Pipeline{
		traversal.VertexStep{Direction: graph.DirectionOut, ReturnType: graph.ElementEdge},
		has(graph.AccessorID, traversal.Eq(ir.IRString("e1"))),
	}, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Query.IDs)
	assert.Len(t, res.Query.Conditions, 1)
}

func TestCompile_InvalidAnchor(t *testing.T) {
	c := NewCompiler(nil)
	p := traversal.Pipeline{
		lookupV(),
		traversal.VertexStep{Direction: graph.DirectionOut, ReturnType: graph.ElementVertex},
	}

	for _, idx := range []int{-1, 2, 1} {
		_, err := c.Compile(p, idx)
		var iae *InvalidAnchorError
		require.ErrorAs(t, err, &iae)
		assert.Equal(t, idx, iae.Index)
		assert.Equal(t, ErrCodeInvalidAnchor, iae.Code())
	}
}

func TestConvOrder(t *testing.T) {
	assert.Equal(t, queryir.ASC, ConvOrder(traversal.OrderIncr))
	assert.Equal(t, queryir.ASC, ConvOrder(traversal.OrderAsc))
	assert.Equal(t, queryir.DESC, ConvOrder(traversal.OrderDecr))
	assert.Equal(t, queryir.DESC, ConvOrder(traversal.OrderDesc))
}
