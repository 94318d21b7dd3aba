package pushdown

import (
	"slices"

	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/ir"
	"github.com/roach88/pushdown/internal/queryir"
	"github.com/roach88/pushdown/internal/traversal"
)

// Result is the outcome of compiling one anchor.
type Result struct {
	// Pipeline is the residual pipeline. The anchor keeps its index.
	Pipeline traversal.Pipeline

	// Anchor is the index of the anchor step in Pipeline.
	Anchor int

	// Query is the backend query built for the anchor.
	Query *queryir.BackendQuery

	// Filters are the has-filters consumed into Query, in pipeline order.
	// They feed the residual filter.
	Filters []traversal.HasFilter
}

// Compiler runs the extraction passes for an anchor.
type Compiler struct {
	translator *Translator
}

// NewCompiler creates a Compiler over the given resolver.
func NewCompiler(r *Resolver) *Compiler {
	return &Compiler{translator: NewTranslator(r)}
}

// Translator returns the compiler's translator.
func (c *Compiler) Translator() *Translator { return c.translator }

// Compile builds the backend query for the anchor at index anchor.
//
// Filters are extracted for every anchor. Order and range are extracted
// only for lookup anchors (GraphStep): an edge anchor runs once per incoming
// vertex, so a sort or window applied per run would not be the global one
// the pipeline asked for.
//
// Compile fails without a partial result if any filter cannot be
// translated. p is never modified.
func (c *Compiler) Compile(p traversal.Pipeline, anchor int) (*Result, error) {
	if anchor < 0 || anchor >= len(p) {
		return nil, &InvalidAnchorError{Index: anchor}
	}
	if !traversal.IsAnchor(p[anchor]) {
		return nil, &InvalidAnchorError{Index: anchor, Step: p[anchor]}
	}

	q := seedQuery(p[anchor])
	steps, filters, err := c.ExtractFilters(p, anchor, q)
	if err != nil {
		return nil, err
	}

	if _, lookup := steps[anchor].(traversal.GraphStep); lookup {
		steps = c.ExtractOrder(steps, anchor, q)
		steps = ExtractRange(steps, anchor, q)
	}

	return &Result{
		Pipeline: steps,
		Anchor:   anchor,
		Query:    q,
		Filters:  filters,
	}, nil
}

// seedQuery creates the query implied by the anchor itself.
func seedQuery(anchor traversal.Step) *queryir.BackendQuery {
	switch s := anchor.(type) {
	case traversal.GraphStep:
		q := queryir.NewBackendQuery(s.ReturnType)
		q.IDs = slices.Clone(s.IDs)
		return q
	case traversal.VertexStep:
		q := queryir.NewBackendQuery(graph.ElementEdge)
		label := queryir.WellKnown(queryir.KeyLabel)
		switch len(s.EdgeLabels) {
		case 0:
		case 1:
			q.Query(queryir.Relation{Key: label, Op: queryir.EQ, Value: ir.IRString(s.EdgeLabels[0])})
		default:
			values := make([]ir.IRValue, len(s.EdgeLabels))
			for i, l := range s.EdgeLabels {
				values[i] = ir.IRString(l)
			}
			q.Query(queryir.SetRelation{Key: label, Op: queryir.IN, Values: values})
		}
		return q
	default:
		return queryir.NewBackendQuery(graph.ElementVertex)
	}
}

// ExtractFilters consumes the has-steps that follow the anchor (barriers
// are skipped over and kept) and adds their conditions to q. Labels of a
// consumed step move to its predecessor. Scanning stops at the first step
// that is neither a has-step nor a barrier.
//
// Returns the residual pipeline and the consumed filters.
func (c *Compiler) ExtractFilters(p traversal.Pipeline, anchor int, q *queryir.BackendQuery) (traversal.Pipeline, []traversal.HasFilter, error) {
	out := slices.Clone(p[:anchor+1])
	var consumed []traversal.HasFilter

	i := anchor + 1
scan:
	for ; i < len(p); i++ {
		switch s := p[i].(type) {
		case traversal.HasStep:
			for _, h := range s.Filters {
				if delegated, ok := delegateIDs(out[anchor], h); ok {
					out[anchor] = delegated
					q.IDs = delegated.(traversal.GraphStep).IDs
					continue
				}
				cond, err := c.translator.TranslateFilter(h)
				if err != nil {
					return nil, nil, err
				}
				q.Query(cond)
			}
			consumed = append(consumed, s.Filters...)
			prev := len(out) - 1
			out[prev] = traversal.WithLabels(out[prev], s.Labels())
		case traversal.NoOpBarrierStep:
			out = append(out, s)
		default:
			break scan
		}
	}

	out = append(out, p[i:]...)
	return out, consumed, nil
}

// delegateIDs hands an id filter to a lookup anchor that has no ids yet.
// Only ~id eq/within qualifies.
func delegateIDs(anchor traversal.Step, h traversal.HasFilter) (traversal.Step, bool) {
	gs, ok := anchor.(traversal.GraphStep)
	if !ok || h.Key != graph.AccessorID || len(gs.IDs) > 0 {
		return nil, false
	}

	var ids []string
	switch pred := h.Predicate.(type) {
	case traversal.Compare:
		if pred.Op != traversal.OpEq {
			return nil, false
		}
		id, isStr := pred.Value.(ir.IRString)
		if !isStr {
			return nil, false
		}
		ids = []string{string(id)}
	case traversal.SetMembership:
		if pred.Op != traversal.OpWithin || len(pred.Values) == 0 {
			return nil, false
		}
		for _, v := range pred.Values {
			id, isStr := v.(ir.IRString)
			if !isStr {
				return nil, false
			}
			ids = append(ids, string(id))
		}
	default:
		return nil, false
	}

	gs.IDs = ids
	return gs, true
}

// ExtractOrder consumes consecutive order-by steps after the anchor
// (identity and barrier steps are skipped over and kept), appending their
// comparators to q in order. Labels of consumed steps move to the anchor.
// An order step with a comparator that names no property stops the scan.
func (c *Compiler) ExtractOrder(p traversal.Pipeline, anchor int, q *queryir.BackendQuery) traversal.Pipeline {
	out := slices.Clone(p[:anchor+1])

	i := anchor + 1
scan:
	for ; i < len(p); i++ {
		switch s := p[i].(type) {
		case traversal.OrderStep:
			if !orderPushable(s) {
				break scan
			}
			for _, comp := range s.Comparators {
				q.OrderBy(c.translator.resolver.Resolve(comp.Key), ConvOrder(comp.Order))
			}
			out[anchor] = traversal.WithLabels(out[anchor], s.Labels())
		case traversal.IdentityStep, traversal.NoOpBarrierStep:
			out = append(out, s)
		default:
			break scan
		}
	}

	return append(out, p[i:]...)
}

func orderPushable(s traversal.OrderStep) bool {
	if len(s.Comparators) == 0 {
		return false
	}
	for _, comp := range s.Comparators {
		if comp.Key == "" {
			return false
		}
	}
	return true
}

// ConvOrder maps a pipeline order to a backend sort direction.
// decr/desc sort descending; everything else ascending.
func ConvOrder(o traversal.Order) queryir.Direction {
	if o.Descending() {
		return queryir.DESC
	}
	return queryir.ASC
}

// ExtractRange finds the first range step after the anchor, skipping
// identity and barrier steps, and sets it as the window of q.
//
// The range step is NOT removed. Backends may enforce the window
// inexactly, so the original step re-runs over the backend output.
func ExtractRange(p traversal.Pipeline, anchor int, q *queryir.BackendQuery) traversal.Pipeline {
	for i := anchor + 1; i < len(p); i++ {
		switch s := p[i].(type) {
		case traversal.RangeStep:
			q.SetRange(s.Low, s.High)
			return p
		case traversal.IdentityStep, traversal.NoOpBarrierStep:
			continue
		default:
			return p
		}
	}
	return p
}
