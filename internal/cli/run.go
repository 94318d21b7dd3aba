package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/pushdown/internal/engine"
	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/ir"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	DB            string // database path
	Schema        string // CUE schema directory
	MaxTraversers int    // 0 keeps the engine default
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <pipeline.yaml>",
		Short: "Execute a pipeline against a database",
		Long: `Execute a pipeline against a graph database written by "pushdown load".

Anchors are answered by SQL queries; the residual pipeline runs in memory
and re-checks every pushed filter.

Examples:
  pushdown run pipeline.yaml --db graph.db
  pushdown run pipeline.yaml --db graph.db --schema ./schema --max-traversers 1000`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "database path (required)")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "CUE schema directory")
	cmd.Flags().IntVar(&opts.MaxTraversers, "max-traversers", 0, "fail when a step holds more traversers (0 = engine default)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runPipeline(opts *RunOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd)

	sch, err := loadSchema(opts.Schema)
	if err != nil {
		return f.Fail(err)
	}
	pipeline, err := loadPipeline(path)
	if err != nil {
		return f.Fail(err)
	}

	st, err := openStore(opts.DB, true)
	if err != nil {
		return f.Fail(err)
	}
	defer st.Close()

	engineOpts := []engine.EngineOption{engine.WithCompiler(newCompiler(sch))}
	if opts.MaxTraversers > 0 {
		engineOpts = append(engineOpts, engine.WithMaxTraversers(opts.MaxTraversers))
	}
	eng := engine.New(st, engineOpts...)

	plan, err := eng.Compile(pipeline)
	if err != nil {
		return f.Fail(WrapExitError(ExitFailure, ErrCodeCompile, "compiling pipeline", err))
	}
	for _, a := range plan.Anchors {
		logger.Debug("anchor", "index", a.Index, "query", a.Query.String())
	}

	elements, err := eng.ExecutePlan(cmd.Context(), plan)
	if err != nil {
		return f.Fail(WrapExitError(ExitFailure, ErrCodeExecute, "executing pipeline", err))
	}

	logger.Debug("pipeline executed",
		"residual", plan.Pipeline.String(),
		"results", len(elements),
	)

	view := &runView{Elements: make([]elementView, len(elements)), Count: len(elements)}
	for i, el := range elements {
		view.Elements[i] = newElementView(el)
	}
	return f.Success(view)
}

type runView struct {
	Elements []elementView `json:"elements"`
	Count    int           `json:"count"`
}

type elementView struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Label      string         `json:"label"`
	Out        string         `json:"out,omitempty"`
	In         string         `json:"in,omitempty"`
	Properties map[string]any `json:"properties"`
}

func newElementView(el graph.Element) elementView {
	v := elementView{
		ID:         el.ID(),
		Type:       string(el.Type()),
		Label:      el.Label(),
		Properties: map[string]any{},
	}
	if e, ok := el.(*graph.Edge); ok {
		v.Out, v.In = e.OutV, e.InV
	}
	for k, p := range el.Properties() {
		v.Properties[k] = ir.ToAny(p)
	}
	return v
}

func (v *runView) renderText(w io.Writer) {
	for _, el := range v.Elements {
		props, err := ir.MarshalCanonical(el.Properties)
		if err != nil {
			props = []byte("{}")
		}
		if el.Type == string(graph.ElementEdge) {
			fmt.Fprintf(w, "e[%s][%s-%s->%s] %s\n", el.ID, el.Out, el.Label, el.In, props)
			continue
		}
		fmt.Fprintf(w, "v[%s] %s %s\n", el.ID, el.Label, props)
	}
	fmt.Fprintf(w, "%d element(s)\n", v.Count)
}
