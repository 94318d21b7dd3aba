// Package testutil holds shared fixtures and test doubles.
package testutil

import (
	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/ir"
)

// ModernVertices returns the six vertices of the "modern" toy graph:
// four people (1 marko, 2 vadas, 4 josh, 6 peter) and two pieces of
// software (3 lop, 5 ripple).
//
// Each call returns fresh values, so tests may mutate them.
func ModernVertices() []*graph.Vertex {
	person := func(id, name string, age int64) *graph.Vertex {
		return &graph.Vertex{
			VertexID:    id,
			VertexLabel: "person",
			Props:       ir.IRObject{"name": ir.IRString(name), "age": ir.IRInt(age)},
		}
	}
	software := func(id, name string) *graph.Vertex {
		return &graph.Vertex{
			VertexID:    id,
			VertexLabel: "software",
			Props:       ir.IRObject{"name": ir.IRString(name), "lang": ir.IRString("java")},
		}
	}
	return []*graph.Vertex{
		person("1", "marko", 29),
		person("2", "vadas", 27),
		software("3", "lop"),
		person("4", "josh", 32),
		software("5", "ripple"),
		person("6", "peter", 35),
	}
}

// ModernEdges returns the six edges of the "modern" toy graph.
// Weights are integers (tenths of the usual float weights).
func ModernEdges() []*graph.Edge {
	edge := func(id, label, out, in string, weight int64) *graph.Edge {
		return &graph.Edge{
			EdgeID:    id,
			EdgeLabel: label,
			OutV:      out,
			InV:       in,
			Props:     ir.IRObject{"weight": ir.IRInt(weight)},
		}
	}
	return []*graph.Edge{
		edge("7", "knows", "1", "2", 5),
		edge("8", "knows", "1", "4", 10),
		edge("9", "created", "1", "3", 4),
		edge("10", "created", "4", "5", 10),
		edge("11", "created", "4", "3", 4),
		edge("12", "created", "6", "3", 2),
	}
}

// IDs returns the ids of els in order.
func IDs[E graph.Element](els []E) []string {
	ids := make([]string, len(els))
	for i, el := range els {
		ids[i] = el.ID()
	}
	return ids
}
