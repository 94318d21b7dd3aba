package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/pushdown/internal/engine"
	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/pushdown"
	"github.com/roach88/pushdown/internal/querysql"
	"github.com/roach88/pushdown/internal/schema"
	"github.com/roach88/pushdown/internal/store"
	"github.com/roach88/pushdown/internal/traversal"
)

// Harness runs one scenario against a fresh store.
type Harness struct {
	engine *engine.Engine
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the schema (if any) and the graph fixture
// 2. Validate the graph against the schema and write it to the store
// 3. Compile the pipeline and explain the plan
// 4. Execute the plan
// 5. Evaluate assertions
//
// The returned error covers setup failures only. Compile and execution
// failures are recorded on the Result for error_code assertions.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	var sch *schema.Schema
	if scenario.Schema != "" {
		sch, err = schema.LoadDir(scenario.Schema)
		if err != nil {
			return nil, fmt.Errorf("failed to load schema: %w", err)
		}
	}

	vertices, edges, err := graph.LoadFixture(scenario.Graph)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	if err := sch.ValidateGraph(vertices, edges, nil); err != nil {
		return nil, fmt.Errorf("graph does not match schema: %w", err)
	}

	ctx := context.Background()
	if err := st.Load(ctx, vertices, edges); err != nil {
		return nil, fmt.Errorf("failed to load graph into store: %w", err)
	}

	pipeline, err := traversal.BuildPipeline(scenario.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}

	opts := []engine.EngineOption{
		engine.WithCompiler(pushdown.NewCompiler(pushdown.NewResolver(sch.WellKnownKeys()...))),
	}
	if scenario.MaxTraversers != 0 {
		opts = append(opts, engine.WithMaxTraversers(scenario.MaxTraversers))
	}

	h := &Harness{
		engine: engine.New(st, opts...),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	result := NewResult()
	h.execute(ctx, pipeline, result)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	if result.Err != nil && !expectsError(scenario.Assertions) {
		result.AddError(fmt.Sprintf("unexpected error: %v", result.Err))
	}

	return result, nil
}

// execute compiles and runs the pipeline, recording the plan, the result
// ids and any error on result.
func (h *Harness) execute(ctx context.Context, p traversal.Pipeline, result *Result) {
	plan, err := h.engine.Compile(p)
	if err != nil {
		h.fail(result, "compile", err)
		return
	}

	result.Residual = plan.Pipeline.String()
	for _, a := range plan.Anchors {
		result.Queries[a.Index] = a.Query.String()
	}
	explain, err := plan.Explain(querysql.NewSQLCompiler())
	if err != nil {
		h.fail(result, "explain", err)
		return
	}
	result.Explain = explain

	elements, err := h.engine.ExecutePlan(ctx, plan)
	if err != nil {
		h.fail(result, "execute", err)
		return
	}
	for _, el := range elements {
		result.IDs = append(result.IDs, el.ID())
	}

	h.logger.Info("scenario executed",
		"anchors", len(plan.Anchors),
		"residual", result.Residual,
		"results", len(result.IDs),
	)
}

func (h *Harness) fail(result *Result, phase string, err error) {
	result.Err = err
	result.ErrorCode = engine.ErrorCode(err)
	h.logger.Info("scenario failed", "phase", phase, "code", result.ErrorCode, "error", err)
}

func expectsError(assertions []Assertion) bool {
	for _, a := range assertions {
		if a.Type == AssertErrorCode {
			return true
		}
	}
	return false
}
