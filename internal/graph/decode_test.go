package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pushdown/internal/ir"
)

func TestDecodeFixture(t *testing.T) {
	data := []byte(`
vertices:
  - {id: "1", label: person, properties: {name: marko, age: 29, tags: [a, b]}}
  - {label: software}
edges:
  - {id: "7", label: knows, out: "1", in: "2", properties: {weight: 5}}
`)
	vertices, edges, err := DecodeFixture(data)
	require.NoError(t, err)
	require.Len(t, vertices, 2)
	require.Len(t, edges, 1)

	assert.Equal(t, "1", vertices[0].VertexID)
	assert.Equal(t, ir.IRObject{
		"name": ir.IRString("marko"),
		"age":  ir.IRInt(29),
		"tags": ir.IRArray{ir.IRString("a"), ir.IRString("b")},
	}, vertices[0].Props)
	assert.Empty(t, vertices[1].VertexID)
	assert.Empty(t, vertices[1].Props)

	assert.Equal(t, &Edge{
		EdgeID:    "7",
		EdgeLabel: "knows",
		OutV:      "1",
		InV:       "2",
		Props:     ir.IRObject{"weight": ir.IRInt(5)},
	}, edges[0])
}

func TestDecodeFixture_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unknown field", "vertexes: []", "parse graph YAML"},
		{"vertex without label", "vertices: [{id: x}]", "vertices[0]: label is required"},
		{"edge without endpoint", "edges: [{label: knows, out: a}]", "edges[0]: out and in are required"},
		{"null property", "vertices: [{label: a, properties: {k: null}}]", `property "k": null values are not allowed`},
		{"float property", "vertices: [{label: a, properties: {k: 1.5}}]", "floats are forbidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeFixture([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
