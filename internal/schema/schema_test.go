package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/ir"
	"github.com/roach88/pushdown/internal/queryir"
	"github.com/roach88/pushdown/internal/testutil"
)

const modernSrc = `
graph: {
	propertyKeys: {
		name: type: "string"
		age: type: "int"
		tags: type: "list"
	}
	vertexLabels: person: properties: ["name", "age", "tags"]
	edgeLabels: knows: {from: "person", to: "person"}
}
`

func TestCompileString(t *testing.T) {
	s, err := CompileString(modernSrc)
	require.NoError(t, err)

	assert.Equal(t, []PropertyKey{
		{Name: "name", Type: TypeString, Code: queryir.FirstSchemaKeyCode},
		{Name: "age", Type: TypeInt, Code: queryir.FirstSchemaKeyCode + 1},
		{Name: "tags", Type: TypeList, Code: queryir.FirstSchemaKeyCode + 2},
	}, s.PropertyKeys)
	assert.Equal(t, []VertexLabel{{Name: "person", Properties: []string{"name", "age", "tags"}}}, s.VertexLabels)
	assert.Equal(t, []EdgeLabel{{Name: "knows", Out: "person", In: "person"}}, s.EdgeLabels)
}

func TestWellKnownKeys(t *testing.T) {
	s, err := CompileString(modernSrc)
	require.NoError(t, err)

	keys := s.WellKnownKeys()
	require.Len(t, keys, 3)
	assert.Equal(t, queryir.WellKnownKey{Code: queryir.FirstSchemaKeyCode + 1, Name: "age"}, keys[1])
	assert.False(t, keys[0].IsBuiltin())

	var nilSchema *Schema
	assert.Nil(t, nilSchema.WellKnownKeys())
}

func TestLoadDir(t *testing.T) {
	s, err := LoadDir("testdata/modern")
	require.NoError(t, err)

	assert.Len(t, s.PropertyKeys, 4)
	created, ok := s.EdgeLabel("created")
	require.True(t, ok)
	assert.Equal(t, "software", created.In)
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := LoadDir("testdata/does-not-exist")
	assert.Error(t, err)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		field   string
		message string
	}{
		{"missing graph", `other: 1`, "graph", "graph is required"},
		{"missing type", `graph: propertyKeys: name: {}`, "propertyKeys.name", "type is required"},
		{"unknown type", `graph: propertyKeys: name: type: "float"`, "propertyKeys.name", `unknown type "float"`},
		{"reserved name", `graph: propertyKeys: LABEL: type: "string"`, "propertyKeys.LABEL", "reserved"},
		{"undeclared vertex property", `graph: vertexLabels: person: properties: ["name"]`, "vertexLabels.person", `undeclared property key "name"`},
		{"undeclared endpoint", `graph: edgeLabels: knows: from: "person"`, "edgeLabels.knows", `undeclared vertex label "person"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileString(tt.src)
			require.Error(t, err)

			var ce *CompileError
			require.True(t, errors.As(err, &ce), "got %T: %v", err, err)
			assert.Equal(t, tt.field, ce.Field)
			assert.Contains(t, ce.Message, tt.message)
		})
	}
}

func TestCompile_CUESyntaxError(t *testing.T) {
	_, err := CompileString(`graph: {`)
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "cue", ce.Field)
	assert.True(t, ce.Pos.IsValid())
	assert.Contains(t, err.Error(), "schema.cue:")
}

func TestCompileError_Format(t *testing.T) {
	err := &CompileError{Field: "graph", Message: "graph is required"}
	assert.Equal(t, "graph: graph is required", err.Error())
}

func TestValidateVertex(t *testing.T) {
	s, err := CompileString(modernSrc)
	require.NoError(t, err)

	tests := []struct {
		name    string
		vertex  *graph.Vertex
		wantErr string
	}{
		{"valid", &graph.Vertex{VertexID: "1", VertexLabel: "person", Props: ir.IRObject{
			"name": ir.IRString("marko"), "age": ir.IRInt(29), "tags": ir.IRArray{},
		}}, ""},
		{"no properties", &graph.Vertex{VertexID: "1", VertexLabel: "person"}, ""},
		{"undeclared label", &graph.Vertex{VertexID: "1", VertexLabel: "robot"}, "undeclared vertex label"},
		{"undeclared property", &graph.Vertex{VertexID: "1", VertexLabel: "person", Props: ir.IRObject{
			"lang": ir.IRString("java"),
		}}, `property "lang" is not declared`},
		{"wrong type", &graph.Vertex{VertexID: "1", VertexLabel: "person", Props: ir.IRObject{
			"age": ir.IRString("old"),
		}}, `property "age" must be int`},
		{"null", &graph.Vertex{VertexID: "1", VertexLabel: "person", Props: ir.IRObject{
			"name": ir.IRNull{},
		}}, `property "name" must be string`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateVertex(tt.vertex)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateEdge(t *testing.T) {
	s, err := LoadDir("testdata/modern")
	require.NoError(t, err)

	e := &graph.Edge{EdgeID: "9", EdgeLabel: "created", OutV: "1", InV: "3", Props: ir.IRObject{"weight": ir.IRInt(4)}}
	assert.NoError(t, s.ValidateEdge(e, "person", "software"))

	err = s.ValidateEdge(e, "person", "person")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `must end at "software"`)

	err = s.ValidateEdge(&graph.Edge{EdgeID: "x", EdgeLabel: "likes"}, "person", "person")
	assert.ErrorContains(t, err, "undeclared edge label")
}

func TestNilSchemaAcceptsEverything(t *testing.T) {
	var s *Schema
	assert.NoError(t, s.ValidateVertex(&graph.Vertex{VertexLabel: "anything"}))
	assert.NoError(t, s.ValidateEdge(&graph.Edge{EdgeLabel: "anything"}, "", ""))
}

func TestValidateGraph(t *testing.T) {
	s, err := LoadDir("testdata/modern")
	require.NoError(t, err)

	assert.NoError(t, s.ValidateGraph(testutil.ModernVertices(), testutil.ModernEdges(), nil))

	// Endpoints outside the batch resolve through known.
	edges := []*graph.Edge{{EdgeID: "e", EdgeLabel: "knows", OutV: "a", InV: "b"}}
	err = s.ValidateGraph(nil, edges, nil)
	assert.ErrorContains(t, err, `unknown out vertex "a"`)

	known := func(id string) (string, bool) { return "person", true }
	assert.NoError(t, s.ValidateGraph(nil, edges, known))

	software := func(id string) (string, bool) { return "software", true }
	err = s.ValidateGraph(nil, edges, software)
	assert.ErrorContains(t, err, `must start at "person"`)

	bad := testutil.ModernVertices()
	bad[0].Props["age"] = ir.IRString("old")
	err = s.ValidateGraph(bad, nil, nil)
	assert.ErrorContains(t, err, `property "age" must be int`)

	var nilSchema *Schema
	assert.NoError(t, nilSchema.ValidateGraph(bad, edges, nil))
}
