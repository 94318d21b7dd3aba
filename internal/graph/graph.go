// Package graph defines the property-graph elements that backends return
// and residual filters inspect.
package graph

import (
	"fmt"
	"strings"

	"github.com/roach88/pushdown/internal/ir"
)

// Reserved accessors. Filters on these names address element structure
// instead of a user property.
const (
	AccessorID    = "~id"
	AccessorLabel = "~label"
	AccessorKey   = "~key"
	AccessorValue = "~value"
)

// Direction is the side of an edge a traversal walks from.
type Direction string

const (
	DirectionOut  Direction = "OUT"
	DirectionIn   Direction = "IN"
	DirectionBoth Direction = "BOTH"
)

// ParseDirection accepts OUT/IN/BOTH in any case.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToUpper(s)); d {
	case DirectionOut, DirectionIn, DirectionBoth:
		return d, nil
	default:
		return "", fmt.Errorf("invalid direction %q: must be OUT, IN or BOTH", s)
	}
}

// ElementType distinguishes vertex and edge queries.
type ElementType string

const (
	ElementVertex ElementType = "vertex"
	ElementEdge   ElementType = "edge"
)

// Element is a vertex or an edge.
type Element interface {
	ID() string
	Label() string
	Type() ElementType
	// Property returns the value and whether the property is present.
	Property(name string) (ir.IRValue, bool)
	Properties() ir.IRObject
}

// Vertex is a labeled node with properties.
type Vertex struct {
	VertexID    string
	VertexLabel string
	Props       ir.IRObject
}

func (v *Vertex) ID() string              { return v.VertexID }
func (v *Vertex) Label() string           { return v.VertexLabel }
func (v *Vertex) Type() ElementType       { return ElementVertex }
func (v *Vertex) Properties() ir.IRObject { return v.Props }

func (v *Vertex) Property(name string) (ir.IRValue, bool) {
	val, ok := v.Props[name]
	return val, ok
}

func (v *Vertex) String() string { return fmt.Sprintf("v[%s]", v.VertexID) }

// Edge is a directed, labeled relationship from OutV (tail) to InV (head).
type Edge struct {
	EdgeID    string
	EdgeLabel string
	OutV      string
	InV       string
	Props     ir.IRObject
}

func (e *Edge) ID() string              { return e.EdgeID }
func (e *Edge) Label() string           { return e.EdgeLabel }
func (e *Edge) Type() ElementType       { return ElementEdge }
func (e *Edge) Properties() ir.IRObject { return e.Props }

func (e *Edge) Property(name string) (ir.IRValue, bool) {
	val, ok := e.Props[name]
	return val, ok
}

// OtherV returns the endpoint opposite to vertexID.
func (e *Edge) OtherV(vertexID string) string {
	if e.OutV == vertexID {
		return e.InV
	}
	return e.OutV
}

func (e *Edge) String() string {
	return fmt.Sprintf("e[%s][%s-%s->%s]", e.EdgeID, e.OutV, e.EdgeLabel, e.InV)
}

// SameElement reports whether two elements have the same type and id.
func SameElement(a, b Element) bool {
	return a.Type() == b.Type() && a.ID() == b.ID()
}
