package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/pushdown/internal/engine"
	"github.com/roach88/pushdown/internal/querysql"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	Schema string // CUE schema directory
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <pipeline.yaml>",
		Short: "Show how a pipeline is pushed down",
		Long: `Compile a pipeline without running it.

Prints every anchor with its backend query and the SQL the store runs
for it, the residual pipeline that executes in memory, and the plan
fingerprint.

Examples:
  pushdown explain pipeline.yaml
  pushdown explain pipeline.yaml --schema ./schema --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "CUE schema directory")

	return cmd
}

func runExplain(opts *ExplainOptions, path string, cmd *cobra.Command) error {
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
	plan, err := compilePlan(sch, pipeline)
	if err != nil {
		return f.Fail(err)
	}
	data, err := plan.Explain(querysql.NewSQLCompiler())
	if err != nil {
		return f.Fail(WrapExitError(ExitFailure, ErrCodeCompile, "explaining plan", err))
	}

	logger.Debug("pipeline compiled",
		"input", plan.Input.String(),
		"residual", plan.Pipeline.String(),
		"anchors", len(plan.Anchors),
	)

	return f.Success(&explainView{plan: plan, data: data})
}

// explainView renders an explained plan. JSON output is the explain map
// itself.
type explainView struct {
	plan *engine.Plan
	data map[string]any
}

func (v *explainView) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.data)
}

func (v *explainView) renderText(w io.Writer) {
	fmt.Fprintf(w, "Pipeline:    %s\n", v.plan.Input)
	fmt.Fprintf(w, "Residual:    %s\n", v.plan.Pipeline)
	fmt.Fprintf(w, "Fingerprint: %s\n", v.data["fingerprint"])

	if len(v.plan.Anchors) == 0 {
		fmt.Fprintln(w, "\nNo anchors.")
		return
	}

	anchors, _ := v.data["anchors"].([]any)
	fmt.Fprintln(w, "\nAnchors:")
	for i, a := range v.plan.Anchors {
		fmt.Fprintf(w, "  [%d] %s\n", a.Index, v.plan.Pipeline[a.Index])
		fmt.Fprintf(w, "      query:  %s\n", a.Query)
		if i >= len(anchors) {
			continue
		}
		entry, _ := anchors[i].(map[string]any)
		fmt.Fprintf(w, "      sql:    %s\n", entry["sql"])
		fmt.Fprintf(w, "      params: %v\n", entry["params"])
		if perVertex, _ := entry["per_vertex"].(bool); perVertex {
			fmt.Fprintln(w, "      runs once per incoming vertex")
		}
	}
}
