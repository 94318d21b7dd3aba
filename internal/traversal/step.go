package traversal

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/pushdown/internal/graph"
)

// Step is one stage of a traversal pipeline.
//
// This is a sealed interface - only types in this package implement it.
type Step interface {
	stepNode()
	// Labels returns the step labels (as(...)) attached to the step.
	Labels() []string
	String() string
}

// Labeled carries step labels. Every step embeds it.
type Labeled struct {
	As []string
}

func (l Labeled) Labels() []string { return l.As }

// NoUpperBound marks a RangeStep without a high bound.
const NoUpperBound int64 = -1

// GraphStep starts a traversal from all vertices or edges, optionally
// restricted to IDs. It is a pushdown anchor.
type GraphStep struct {
	Labeled
	ReturnType graph.ElementType
	IDs        []string
}

func (GraphStep) stepNode() {}

func (s GraphStep) String() string {
	name := "V"
	if s.ReturnType == graph.ElementEdge {
		name = "E"
	}
	return fmt.Sprintf("%s(%s)%s", name, strings.Join(s.IDs, ","), labelSuffix(s.As))
}

// VertexStep walks from the current vertex along adjacent edges.
// When ReturnType is edge (outE/inE/bothE) it is a pushdown anchor.
type VertexStep struct {
	Labeled
	Direction  graph.Direction
	EdgeLabels []string
	ReturnType graph.ElementType
}

func (VertexStep) stepNode() {}

// ReturnsEdges reports whether the step yields edges rather than vertices.
func (s VertexStep) ReturnsEdges() bool { return s.ReturnType == graph.ElementEdge }

func (s VertexStep) String() string {
	name := strings.ToLower(string(s.Direction))
	if s.ReturnsEdges() {
		name += "E"
	}
	return fmt.Sprintf("%s(%s)%s", name, strings.Join(s.EdgeLabels, ","), labelSuffix(s.As))
}

// HasStep filters traversers by one or more HasFilters (all must hold).
type HasStep struct {
	Labeled
	Filters []HasFilter
}

func (HasStep) stepNode() {}

func (s HasStep) String() string {
	parts := make([]string, len(s.Filters))
	for i, f := range s.Filters {
		parts[i] = f.String()
	}
	return fmt.Sprintf("has(%s)%s", strings.Join(parts, ", "), labelSuffix(s.As))
}

// Order is a sort direction as written in a pipeline.
type Order string

const (
	OrderIncr Order = "incr"
	OrderDecr Order = "decr"
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Descending reports whether the order sorts high to low.
func (o Order) Descending() bool {
	return o == OrderDecr || o == OrderDesc
}

// Comparator orders traversers by a property value.
type Comparator struct {
	Key   string
	Order Order
}

// OrderStep sorts traversers by its comparators (first is primary).
type OrderStep struct {
	Labeled
	Comparators []Comparator
}

func (OrderStep) stepNode() {}

func (s OrderStep) String() string {
	parts := make([]string, len(s.Comparators))
	for i, c := range s.Comparators {
		parts[i] = fmt.Sprintf("%s:%s", c.Key, c.Order)
	}
	return fmt.Sprintf("order(%s)%s", strings.Join(parts, ", "), labelSuffix(s.As))
}

// RangeStep keeps traversers in [Low, High). High == NoUpperBound means
// no limit.
type RangeStep struct {
	Labeled
	Low  int64
	High int64
}

func (RangeStep) stepNode() {}

func (s RangeStep) String() string {
	return fmt.Sprintf("range(%d, %d)%s", s.Low, s.High, labelSuffix(s.As))
}

// NoOpBarrierStep is a bulking barrier with no semantic effect.
type NoOpBarrierStep struct {
	Labeled
}

func (NoOpBarrierStep) stepNode() {}

func (s NoOpBarrierStep) String() string { return "barrier()" + labelSuffix(s.As) }

// IdentityStep passes traversers through unchanged.
type IdentityStep struct {
	Labeled
}

func (IdentityStep) stepNode() {}

func (s IdentityStep) String() string { return "identity()" + labelSuffix(s.As) }

// OtherStep is any step the pushdown layer does not understand.
type OtherStep struct {
	Labeled
	Name string
}

func (OtherStep) stepNode() {}

func (s OtherStep) String() string { return s.Name + "()" + labelSuffix(s.As) }

func labelSuffix(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	return "@" + strings.Join(labels, ",")
}

// WithLabels returns a copy of s whose labels are the union of its own
// labels and extra, preserving first-seen order.
func WithLabels(s Step, extra []string) Step {
	merged := slices.Clone(s.Labels())
	for _, l := range extra {
		if !slices.Contains(merged, l) {
			merged = append(merged, l)
		}
	}
	l := Labeled{As: merged}

	switch step := s.(type) {
	case GraphStep:
		step.Labeled = l
		return step
	case VertexStep:
		step.Labeled = l
		return step
	case HasStep:
		step.Labeled = l
		return step
	case OrderStep:
		step.Labeled = l
		return step
	case RangeStep:
		step.Labeled = l
		return step
	case NoOpBarrierStep:
		step.Labeled = l
		return step
	case IdentityStep:
		step.Labeled = l
		return step
	case OtherStep:
		step.Labeled = l
		return step
	default:
		return s
	}
}

// Pipeline is an ordered list of steps.
type Pipeline []Step

// Clone returns a shallow copy of the pipeline slice.
func (p Pipeline) Clone() Pipeline {
	return slices.Clone(p)
}

func (p Pipeline) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// IsAnchor reports whether s is a step pushdown can start from.
func IsAnchor(s Step) bool {
	switch step := s.(type) {
	case GraphStep:
		return true
	case VertexStep:
		return step.ReturnsEdges()
	default:
		return false
	}
}
