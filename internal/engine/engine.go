package engine

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/ir"
	"github.com/roach88/pushdown/internal/pushdown"
	"github.com/roach88/pushdown/internal/queryir"
	"github.com/roach88/pushdown/internal/traversal"
)

// Backend executes backend queries. *store.Store implements it.
type Backend interface {
	Query(ctx context.Context, q *queryir.BackendQuery) ([]graph.Element, error)
	ReadVertex(ctx context.Context, id string) (*graph.Vertex, error)
}

// Engine compiles and executes pipelines against a Backend.
//
// An Engine holds no per-execution state; Execute may be called from
// several goroutines at once if the Backend allows it.
type Engine struct {
	backend       Backend
	compiler      *pushdown.Compiler
	maxTraversers int
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxTraversers sets the traverser quota.
//
// Default: 100000 (DefaultMaxTraversers). Zero disables the quota.
func WithMaxTraversers(n int) EngineOption {
	return func(e *Engine) {
		e.maxTraversers = n
	}
}

// WithCompiler replaces the default compiler (one over the built-in keys).
func WithCompiler(c *pushdown.Compiler) EngineOption {
	return func(e *Engine) {
		e.compiler = c
	}
}

// New creates an Engine over the given backend.
func New(b Backend, opts ...EngineOption) *Engine {
	e := &Engine{
		backend:       b,
		compiler:      pushdown.NewCompiler(nil),
		maxTraversers: DefaultMaxTraversers,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Compile compiles p with the engine's compiler.
func (e *Engine) Compile(p traversal.Pipeline) (*Plan, error) {
	return Compile(e.compiler, p)
}

// Execute compiles and runs p, returning the final traversers.
func (e *Engine) Execute(ctx context.Context, p traversal.Pipeline) ([]graph.Element, error) {
	plan, err := e.Compile(p)
	if err != nil {
		return nil, err
	}
	return e.ExecutePlan(ctx, plan)
}

// ExecutePlan runs a compiled plan.
func (e *Engine) ExecutePlan(ctx context.Context, plan *Plan) ([]graph.Element, error) {
	quota := NewQuotaEnforcer(e.maxTraversers)
	var traversers []graph.Element

	for i, step := range plan.Pipeline {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, err := e.runStep(ctx, plan, i, step, traversers)
		if err != nil {
			return nil, err
		}
		if err := quota.Check(i, len(next)); err != nil {
			return nil, err
		}

		slog.Debug("executed step", "index", i, "step", step.String(), "in", len(traversers), "out", len(next))
		traversers = next
	}

	slog.Debug("pipeline complete", "results", len(traversers), "peak", quota.Peak())
	if traversers == nil {
		traversers = []graph.Element{}
	}
	return traversers, nil
}

func (e *Engine) runStep(ctx context.Context, plan *Plan, i int, step traversal.Step, in []graph.Element) ([]graph.Element, error) {
	if anchor, ok := plan.anchorAt(i); ok {
		switch s := step.(type) {
		case traversal.GraphStep:
			return e.runLookup(ctx, i, anchor)
		case traversal.VertexStep:
			return e.runEdgeAnchor(ctx, i, anchor, s, in)
		}
	}

	switch s := step.(type) {
	case traversal.HasStep:
		return slices.Collect(pushdown.Filter(slices.Values(in), s.Filters)), nil
	case traversal.OrderStep:
		return orderBy(in, s.Comparators), nil
	case traversal.RangeStep:
		return window(in, s.Low, s.High), nil
	case traversal.IdentityStep, traversal.NoOpBarrierStep:
		return in, nil
	case traversal.VertexStep:
		return e.runAdjacent(ctx, i, s, in)
	case traversal.OtherStep:
		if s.Name == "dedup" {
			return dedup(in), nil
		}
		return nil, &ExecError{Code: ErrCodeUnsupportedStep, Message: fmt.Sprintf("no in-memory implementation for %s", s), Step: i}
	default:
		return nil, &ExecError{Code: ErrCodeUnsupportedStep, Message: fmt.Sprintf("unexpected step %s", step), Step: i}
	}
}

// runLookup executes a lookup anchor once.
func (e *Engine) runLookup(ctx context.Context, i int, anchor AnchorPlan) ([]graph.Element, error) {
	rows, err := e.backend.Query(ctx, anchor.Query)
	if err != nil {
		return nil, backendError(i, err)
	}
	out := slices.Collect(pushdown.Filter(slices.Values(rows), anchor.Filters))

	slog.Debug("lookup anchor", "index", i, "fingerprint", anchor.Fingerprint, "rows", len(rows), "kept", len(out))
	return out, nil
}

// runEdgeAnchor executes an edge anchor once per incoming vertex. The
// backend matches the vertex on either endpoint, so the direction filter
// is what enforces OUT/IN.
func (e *Engine) runEdgeAnchor(ctx context.Context, i int, anchor AnchorPlan, s traversal.VertexStep, in []graph.Element) ([]graph.Element, error) {
	var out []graph.Element
	for _, el := range in {
		v, ok := el.(*graph.Vertex)
		if !ok {
			return nil, &ExecError{Code: ErrCodeUnsupportedStep, Message: fmt.Sprintf("%s applied to %s", s, el), Step: i}
		}
		edges, err := e.incidentEdges(ctx, i, anchor.Query, v, s)
		if err != nil {
			return nil, err
		}
		for edge := range pushdown.Filter(slices.Values(edges), anchor.Filters) {
			out = append(out, edge)
		}
	}
	return out, nil
}

// runAdjacent expands vertices to their neighbours (out/in/both).
func (e *Engine) runAdjacent(ctx context.Context, i int, s traversal.VertexStep, in []graph.Element) ([]graph.Element, error) {
	edgeStep := traversal.VertexStep{Direction: s.Direction, EdgeLabels: s.EdgeLabels, ReturnType: graph.ElementEdge}
	res, err := e.compiler.Compile(traversal.Pipeline{edgeStep}, 0)
	if err != nil {
		return nil, err
	}

	var out []graph.Element
	for _, el := range in {
		v, ok := el.(*graph.Vertex)
		if !ok {
			return nil, &ExecError{Code: ErrCodeUnsupportedStep, Message: fmt.Sprintf("%s applied to %s", s, el), Step: i}
		}
		edges, err := e.incidentEdges(ctx, i, res.Query, v, s)
		if err != nil {
			return nil, err
		}
		for _, edge := range edges {
			id := otherEnd(edge, v, s.Direction)
			nb, err := e.backend.ReadVertex(ctx, id)
			if err != nil {
				return nil, backendError(i, fmt.Errorf("read vertex %q: %w", id, err))
			}
			out = append(out, nb)
		}
	}
	return out, nil
}

// incidentEdges queries the edges of v matching q and keeps those on the
// requested side carrying one of the step's labels.
func (e *Engine) incidentEdges(ctx context.Context, i int, q *queryir.BackendQuery, v *graph.Vertex, s traversal.VertexStep) ([]*graph.Edge, error) {
	perVertex := q.Clone()
	perVertex.Query(queryir.Relation{
		Key:   queryir.WellKnown(queryir.KeyOwnerVertex),
		Op:    queryir.EQ,
		Value: ir.IRString(v.VertexID),
	})

	rows, err := e.backend.Query(ctx, perVertex)
	if err != nil {
		return nil, backendError(i, err)
	}

	edges := make([]*graph.Edge, 0, len(rows))
	for _, row := range rows {
		edge, ok := row.(*graph.Edge)
		if !ok {
			return nil, backendError(i, fmt.Errorf("edge query returned %s", row))
		}
		if len(s.EdgeLabels) > 0 && !slices.Contains(s.EdgeLabels, edge.EdgeLabel) {
			continue
		}
		edges = append(edges, edge)
	}
	return slices.Collect(pushdown.FilterByDirection(v, s.Direction, slices.Values(edges))), nil
}

func otherEnd(e *graph.Edge, v *graph.Vertex, dir graph.Direction) string {
	switch dir {
	case graph.DirectionOut:
		return e.InV
	case graph.DirectionIn:
		return e.OutV
	default:
		return e.OtherV(v.VertexID)
	}
}

// window keeps traversers in [low, high). high < 0 means no upper bound.
func window(in []graph.Element, low, high int64) []graph.Element {
	n := int64(len(in))
	low = min(max(low, 0), n)
	if high < 0 || high > n {
		high = n
	}
	if high <= low {
		return []graph.Element{}
	}
	return in[low:high]
}

func dedup(in []graph.Element) []graph.Element {
	type key struct {
		t  graph.ElementType
		id string
	}
	seen := make(map[key]bool, len(in))
	out := make([]graph.Element, 0, len(in))
	for _, el := range in {
		k := key{el.Type(), el.ID()}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, el)
	}
	return out
}

// orderBy sorts stably by the comparators, first comparator primary.
// Elements missing a key sort after those that have it.
func orderBy(in []graph.Element, comps []traversal.Comparator) []graph.Element {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b graph.Element) int {
		for _, c := range comps {
			av, aok := sortValue(a, c.Key)
			bv, bok := sortValue(b, c.Key)
			var r int
			switch {
			case !aok && !bok:
				r = 0
			case !aok:
				r = 1
			case !bok:
				r = -1
			default:
				r = compareValues(av, bv)
				if c.Order.Descending() {
					r = -r
				}
			}
			if r != 0 {
				return r
			}
		}
		return 0
	})
	return out
}

func sortValue(el graph.Element, key string) (ir.IRValue, bool) {
	switch key {
	case graph.AccessorID:
		return ir.IRString(el.ID()), true
	case graph.AccessorLabel:
		return ir.IRString(el.Label()), true
	default:
		return el.Property(key)
	}
}

// compareValues orders same-kind scalars naturally and everything else by
// kind rank, so mixed-type properties still sort deterministically.
func compareValues(a, b ir.IRValue) int {
	if c, ok := ir.Compare(a, b); ok {
		return c
	}
	return cmp.Compare(kindRank(a), kindRank(b))
}

func kindRank(v ir.IRValue) int {
	switch v.(type) {
	case ir.IRNull:
		return 0
	case ir.IRBool:
		return 1
	case ir.IRInt:
		return 2
	case ir.IRString:
		return 3
	case ir.IRArray:
		return 4
	case ir.IRObject:
		return 5
	default:
		return 6
	}
}
