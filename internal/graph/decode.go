package graph

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pushdown/internal/ir"
)

// Fixture is the YAML form of a graph:
//
//	vertices:
//	  - {id: "1", label: person, properties: {name: marko, age: 29}}
//	edges:
//	  - {id: "7", label: knows, out: "1", in: "2", properties: {weight: 5}}
//
// Ids may be omitted; the store assigns one on write.
type Fixture struct {
	Vertices []VertexSpec `yaml:"vertices"`
	Edges    []EdgeSpec   `yaml:"edges"`
}

// VertexSpec is one vertex of a Fixture.
type VertexSpec struct {
	ID         string         `yaml:"id,omitempty"`
	Label      string         `yaml:"label"`
	Properties map[string]any `yaml:"properties,omitempty"`
}

// EdgeSpec is one edge of a Fixture.
type EdgeSpec struct {
	ID         string         `yaml:"id,omitempty"`
	Label      string         `yaml:"label"`
	Out        string         `yaml:"out"`
	In         string         `yaml:"in"`
	Properties map[string]any `yaml:"properties,omitempty"`
}

// LoadFixture reads a YAML graph file.
func LoadFixture(path string) ([]*Vertex, []*Edge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read graph: %w", err)
	}
	return DecodeFixture(data)
}

// DecodeFixture parses a YAML graph. Unknown fields are rejected.
func DecodeFixture(data []byte) ([]*Vertex, []*Edge, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, nil, fmt.Errorf("parse graph YAML: %w", err)
	}
	return f.Build()
}

// Build converts the fixture into elements.
func (f Fixture) Build() ([]*Vertex, []*Edge, error) {
	vertices := make([]*Vertex, 0, len(f.Vertices))
	for i, spec := range f.Vertices {
		if spec.Label == "" {
			return nil, nil, fmt.Errorf("vertices[%d]: label is required", i)
		}
		props, err := buildProperties(spec.Properties)
		if err != nil {
			return nil, nil, fmt.Errorf("vertices[%d]: %w", i, err)
		}
		vertices = append(vertices, &Vertex{VertexID: spec.ID, VertexLabel: spec.Label, Props: props})
	}

	edges := make([]*Edge, 0, len(f.Edges))
	for i, spec := range f.Edges {
		if spec.Label == "" {
			return nil, nil, fmt.Errorf("edges[%d]: label is required", i)
		}
		if spec.Out == "" || spec.In == "" {
			return nil, nil, fmt.Errorf("edges[%d]: out and in are required", i)
		}
		props, err := buildProperties(spec.Properties)
		if err != nil {
			return nil, nil, fmt.Errorf("edges[%d]: %w", i, err)
		}
		edges = append(edges, &Edge{EdgeID: spec.ID, EdgeLabel: spec.Label, OutV: spec.Out, InV: spec.In, Props: props})
	}

	return vertices, edges, nil
}

// buildProperties converts decoded properties. A property set to null is
// an absent property, which the fixture must spell by omission.
func buildProperties(raw map[string]any) (ir.IRObject, error) {
	props, err := ir.ObjectFromAny(raw)
	if err != nil {
		return nil, err
	}
	for k, v := range props {
		if _, ok := v.(ir.IRNull); ok {
			return nil, fmt.Errorf("property %q: null values are not allowed", k)
		}
	}
	return props, nil
}
