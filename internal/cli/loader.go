package cli

import (
	"fmt"
	"os"

	"github.com/roach88/pushdown/internal/engine"
	"github.com/roach88/pushdown/internal/pushdown"
	"github.com/roach88/pushdown/internal/schema"
	"github.com/roach88/pushdown/internal/store"
	"github.com/roach88/pushdown/internal/traversal"
)

// loadSchema loads the CUE schema in dir. An empty dir means no schema:
// every property key stays raw and nothing is validated.
func loadSchema(dir string) (*schema.Schema, error) {
	if dir == "" {
		return nil, nil
	}
	sch, err := schema.LoadDir(dir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeSchema, "loading schema", err)
	}
	return sch, nil
}

func loadPipeline(path string) (traversal.Pipeline, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, NewExitError(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("pipeline file not found: %s", path))
	}
	p, err := traversal.LoadPipeline(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodePipeline, "loading pipeline", err)
	}
	return p, nil
}

// openStore opens the database at path. With mustExist, a missing file
// is reported instead of creating an empty database.
func openStore(path string, mustExist bool) (*store.Store, error) {
	if mustExist {
		if _, err := os.Stat(path); err != nil {
			return nil, NewExitError(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", path))
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeStore, "opening database", err)
	}
	return st, nil
}

// newCompiler returns a pushdown compiler that resolves the schema's
// property keys to their well-known codes.
func newCompiler(sch *schema.Schema) *pushdown.Compiler {
	return pushdown.NewCompiler(pushdown.NewResolver(sch.WellKnownKeys()...))
}

func compilePlan(sch *schema.Schema, p traversal.Pipeline) (*engine.Plan, error) {
	plan, err := engine.Compile(newCompiler(sch), p)
	if err != nil {
		return nil, WrapExitError(ExitFailure, ErrCodeCompile, "compiling pipeline", err)
	}
	return plan, nil
}
