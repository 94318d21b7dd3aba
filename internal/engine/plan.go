package engine

import (
	"log/slog"

	"github.com/roach88/pushdown/internal/ir"
	"github.com/roach88/pushdown/internal/pushdown"
	"github.com/roach88/pushdown/internal/queryir"
	"github.com/roach88/pushdown/internal/traversal"
)

// AnchorPlan is the compiled form of one anchor.
type AnchorPlan struct {
	// Index is the anchor's position in Plan.Pipeline.
	Index int

	// Query is the backend query. Edge anchors add the incoming vertex at
	// execution time.
	Query *queryir.BackendQuery

	// Filters are the has-filters pushed into Query. They are re-checked
	// against every backend row.
	Filters []traversal.HasFilter

	// Fingerprint identifies Query by content.
	Fingerprint string
}

// Plan is a compiled pipeline.
type Plan struct {
	// Input is the pipeline as given to Compile.
	Input traversal.Pipeline

	// Pipeline is the residual pipeline after pushdown.
	Pipeline traversal.Pipeline

	// Anchors lists the compiled anchors in pipeline order.
	Anchors []AnchorPlan
}

// anchorAt returns the anchor plan for residual step i.
func (p *Plan) anchorAt(i int) (AnchorPlan, bool) {
	for _, a := range p.Anchors {
		if a.Index == i {
			return a, true
		}
	}
	return AnchorPlan{}, false
}

// Compile runs pushdown at every anchor of p, left to right.
//
// The pipeline must start with a lookup step. Compile fails without a
// partial plan if any anchor fails to compile.
func Compile(c *pushdown.Compiler, p traversal.Pipeline) (*Plan, error) {
	if len(p) == 0 {
		return nil, &ExecError{Code: ErrCodeMissingAnchor, Message: "empty pipeline", Step: -1}
	}
	if _, ok := p[0].(traversal.GraphStep); !ok {
		return nil, &ExecError{
			Code:    ErrCodeMissingAnchor,
			Message: "pipeline must start with V() or E(), got " + p[0].String(),
			Step:    0,
		}
	}

	plan := &Plan{Input: p.Clone()}
	steps := p
	for i := 0; i < len(steps); i++ {
		if !traversal.IsAnchor(steps[i]) {
			continue
		}
		res, err := c.Compile(steps, i)
		if err != nil {
			return nil, err
		}
		fp, err := res.Query.Fingerprint()
		if err != nil {
			return nil, err
		}

		slog.Debug("compiled anchor",
			"index", i,
			"step", res.Pipeline[i].String(),
			"fingerprint", fp,
			"conditions", len(res.Query.Conditions),
			"orders", len(res.Query.Orders),
			"range", res.Query.Range != nil,
		)

		plan.Anchors = append(plan.Anchors, AnchorPlan{
			Index:       i,
			Query:       res.Query,
			Filters:     res.Filters,
			Fingerprint: fp,
		})
		steps = res.Pipeline
	}
	plan.Pipeline = steps

	return plan, nil
}

// Describe returns the plan as plain maps suitable for canonical JSON.
func (p *Plan) Describe() map[string]any {
	anchors := make([]any, len(p.Anchors))
	for i, a := range p.Anchors {
		filters := make([]any, len(a.Filters))
		for j, f := range a.Filters {
			filters[j] = f.String()
		}
		anchors[i] = map[string]any{
			"index":       int64(a.Index),
			"step":        p.Pipeline[a.Index].String(),
			"query":       a.Query.Describe(),
			"filters":     filters,
			"fingerprint": a.Fingerprint,
		}
	}
	return map[string]any{
		"input":    pipelineStrings(p.Input),
		"residual": pipelineStrings(p.Pipeline),
		"anchors":  anchors,
	}
}

// Fingerprint returns a stable content hash of the plan.
func (p *Plan) Fingerprint() (string, error) {
	return ir.Fingerprint(ir.DomainPipeline, p.Describe())
}

func pipelineStrings(p traversal.Pipeline) []any {
	out := make([]any, len(p))
	for i, s := range p {
		out[i] = s.String()
	}
	return out
}
