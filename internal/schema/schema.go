package schema

import (
	"fmt"
	"slices"

	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/ir"
	"github.com/roach88/pushdown/internal/queryir"
)

// PropertyType is the declared value type of a property key.
type PropertyType string

const (
	TypeString PropertyType = "string"
	TypeInt    PropertyType = "int"
	TypeBool   PropertyType = "bool"
	TypeList   PropertyType = "list"
	TypeMap    PropertyType = "map"
)

func (t PropertyType) valid() bool {
	switch t {
	case TypeString, TypeInt, TypeBool, TypeList, TypeMap:
		return true
	default:
		return false
	}
}

// accepts reports whether v is a value of type t. Null is never accepted.
func (t PropertyType) accepts(v ir.IRValue) bool {
	switch v.(type) {
	case ir.IRString:
		return t == TypeString
	case ir.IRInt:
		return t == TypeInt
	case ir.IRBool:
		return t == TypeBool
	case ir.IRArray:
		return t == TypeList
	case ir.IRObject:
		return t == TypeMap
	default:
		return false
	}
}

// PropertyKey is a declared property.
type PropertyKey struct {
	Name string
	Type PropertyType
	Code queryir.KeyCode
}

// VertexLabel is a declared vertex label and the properties it may carry.
type VertexLabel struct {
	Name       string
	Properties []string
}

// EdgeLabel is a declared edge label. Out and In (CUE fields from and to),
// when set, restrict the labels of the endpoint vertices.
type EdgeLabel struct {
	Name       string
	Out        string
	In         string
	Properties []string
}

// Schema is a compiled graph schema.
type Schema struct {
	PropertyKeys []PropertyKey
	VertexLabels []VertexLabel
	EdgeLabels   []EdgeLabel
}

// WellKnownKeys returns the property keys as backend key enumeration
// entries, ready for pushdown.NewResolver.
func (s *Schema) WellKnownKeys() []queryir.WellKnownKey {
	if s == nil {
		return nil
	}
	keys := make([]queryir.WellKnownKey, len(s.PropertyKeys))
	for i, pk := range s.PropertyKeys {
		keys[i] = queryir.WellKnownKey{Code: pk.Code, Name: pk.Name}
	}
	return keys
}

// PropertyKey looks up a declared property key by name.
func (s *Schema) PropertyKey(name string) (PropertyKey, bool) {
	for _, pk := range s.PropertyKeys {
		if pk.Name == name {
			return pk, true
		}
	}
	return PropertyKey{}, false
}

// VertexLabel looks up a declared vertex label by name.
func (s *Schema) VertexLabel(name string) (VertexLabel, bool) {
	for _, vl := range s.VertexLabels {
		if vl.Name == name {
			return vl, true
		}
	}
	return VertexLabel{}, false
}

// EdgeLabel looks up a declared edge label by name.
func (s *Schema) EdgeLabel(name string) (EdgeLabel, bool) {
	for _, el := range s.EdgeLabels {
		if el.Name == name {
			return el, true
		}
	}
	return EdgeLabel{}, false
}

// ValidateVertex checks that v has a declared label and that every property
// is declared for that label with a value of the declared type. A nil
// schema accepts everything.
func (s *Schema) ValidateVertex(v *graph.Vertex) error {
	if s == nil {
		return nil
	}
	vl, ok := s.VertexLabel(v.VertexLabel)
	if !ok {
		return fmt.Errorf("vertex %q: undeclared vertex label %q", v.VertexID, v.VertexLabel)
	}
	if err := s.validateProperties(vl.Properties, v.Props); err != nil {
		return fmt.Errorf("vertex %q: %w", v.VertexID, err)
	}
	return nil
}

// ValidateEdge checks e like ValidateVertex and also checks the endpoint
// labels against the edge label's out/in restriction.
func (s *Schema) ValidateEdge(e *graph.Edge, outLabel, inLabel string) error {
	if s == nil {
		return nil
	}
	el, ok := s.EdgeLabel(e.EdgeLabel)
	if !ok {
		return fmt.Errorf("edge %q: undeclared edge label %q", e.EdgeID, e.EdgeLabel)
	}
	if el.Out != "" && el.Out != outLabel {
		return fmt.Errorf("edge %q: %s edges must start at %q, not %q", e.EdgeID, el.Name, el.Out, outLabel)
	}
	if el.In != "" && el.In != inLabel {
		return fmt.Errorf("edge %q: %s edges must end at %q, not %q", e.EdgeID, el.Name, el.In, inLabel)
	}
	if err := s.validateProperties(el.Properties, e.Props); err != nil {
		return fmt.Errorf("edge %q: %w", e.EdgeID, err)
	}
	return nil
}

// ValidateGraph validates a batch of elements. Edge endpoint labels are
// looked up in the batch first, then through known (which may be nil).
func (s *Schema) ValidateGraph(vertices []*graph.Vertex, edges []*graph.Edge, known func(id string) (string, bool)) error {
	if s == nil {
		return nil
	}
	labels := make(map[string]string, len(vertices))
	for _, v := range vertices {
		if err := s.ValidateVertex(v); err != nil {
			return err
		}
		if v.VertexID != "" {
			labels[v.VertexID] = v.VertexLabel
		}
	}

	labelOf := func(id string) (string, bool) {
		if l, ok := labels[id]; ok {
			return l, true
		}
		if known != nil {
			return known(id)
		}
		return "", false
	}
	for _, e := range edges {
		out, ok := labelOf(e.OutV)
		if !ok {
			return fmt.Errorf("edge %q: unknown out vertex %q", e.EdgeID, e.OutV)
		}
		in, ok := labelOf(e.InV)
		if !ok {
			return fmt.Errorf("edge %q: unknown in vertex %q", e.EdgeID, e.InV)
		}
		if err := s.ValidateEdge(e, out, in); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) validateProperties(allowed []string, props ir.IRObject) error {
	for _, name := range props.SortedKeys() {
		if !slices.Contains(allowed, name) {
			return fmt.Errorf("property %q is not declared for this label", name)
		}
		pk, ok := s.PropertyKey(name)
		if !ok {
			return fmt.Errorf("property %q has no property key", name)
		}
		if !pk.Type.accepts(props[name]) {
			return fmt.Errorf("property %q must be %s", name, pk.Type)
		}
	}
	return nil
}
