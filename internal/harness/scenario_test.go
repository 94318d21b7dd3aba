package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "g.yaml", "vertices: []")
	path := writeFile(t, dir, "s.yaml", `
name: resolve
description: "paths are relative to the scenario"
graph: g.yaml
pipeline:
  - {step: V}
assertions:
  - type: result_ids
    ids: []
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "g.yaml"), scenario.Graph)
	assert.Empty(t, scenario.Schema)
	require.Len(t, scenario.Pipeline, 1)
	assert.Equal(t, "V", scenario.Pipeline[0].Step)
	assert.NotNil(t, scenario.Assertions[0].IDs)
}

func TestLoadScenario_Errors(t *testing.T) {
	const header = "name: x\ndescription: d\ngraph: g.yaml\n"
	const pipeline = "pipeline: [{step: V}]\n"

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown field", header + pipeline + "assertion: []\n", "failed to parse YAML"},
		{"missing name", "description: d\ngraph: g.yaml\n" + pipeline + "assertions: [{type: result_count}]\n", "name is required"},
		{"missing graph", "name: x\ndescription: d\n" + pipeline + "assertions: [{type: result_count}]\n", "graph is required"},
		{"missing pipeline", header + "assertions: [{type: result_count}]\n", "pipeline list is required"},
		{"missing assertions", header + pipeline, "assertions list is required"},
		{"unknown assertion", header + pipeline + "assertions: [{type: trace_order}]\n", `unknown assertion type "trace_order"`},
		{"ids required", header + pipeline + "assertions: [{type: result_ids}]\n", "ids is required for result_ids"},
		{"query required", header + pipeline + "assertions: [{type: anchor_query}]\n", "query is required"},
		{"code required", header + pipeline + "assertions: [{type: error_code}]\n", "code is required"},
		{"negative count", header + pipeline + "assertions: [{type: result_count, count: -1}]\n", "count must be non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "g.yaml", "vertices: []")
			path := writeFile(t, dir, "s.yaml", tt.content)

			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_FixtureNotFound(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "s.yaml", `
name: missing
description: "graph file does not exist"
graph: nowhere.yaml
pipeline: [{step: V}]
assertions: [{type: result_count}]
`)

	_, err := LoadScenario(path)
	var nf *FixtureNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.Scenario)
	assert.Equal(t, filepath.Join(dir, "nowhere.yaml"), nf.ResolvedPath)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does_not_exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestFindScenarios(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "")
	writeFile(t, dir, "a.yml", "")
	writeFile(t, dir, "notes.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	writeFile(t, filepath.Join(dir, "sub"), "c.YAML", "")

	paths, err := FindScenarios(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yml"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "sub", "c.YAML"),
	}, paths)
}
