package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	modernGraph  = "../harness/testdata/graphs/modern.yaml"
	modernSchema = "../harness/testdata/schema"
	scenarioDir  = "../harness/testdata/scenarios"
)

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// loadedDB returns a database holding the modern graph.
func loadedDB(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "graph.db")
	_, _, err := execute(t, "load", modernGraph, "--db", db, "--schema", modernSchema)
	require.NoError(t, err)
	return db
}

const topTwoPipeline = `
- {step: V}
- {step: has, key: age, predicate: {op: gt, value: 28}}
- {step: order, by: [{key: age, order: desc}]}
- {step: range, low: 0, high: 2}
`
