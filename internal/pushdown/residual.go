package pushdown

import (
	"iter"

	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/traversal"
)

// Filter yields the elements of seq that satisfy every filter.
//
// Filters are re-evaluated against the element's own values, so applying
// Filter to output the backend already filtered exactly is a no-op. The
// returned sequence is lazy, keeps input order, and is restartable
// whenever seq is.
func Filter[E graph.Element](seq iter.Seq[E], filters []traversal.HasFilter) iter.Seq[E] {
	if len(filters) == 0 {
		return seq
	}
	return func(yield func(E) bool) {
		for el := range seq {
			if !traversal.TestAll(el, filters) {
				continue
			}
			if !yield(el) {
				return
			}
		}
	}
}

// FilterByDirection yields the edges of seq that touch vertex on the side
// dir walks from: OUT keeps edges whose out-vertex is vertex, IN keeps
// edges whose in-vertex is vertex, BOTH keeps either.
func FilterByDirection(vertex *graph.Vertex, dir graph.Direction, seq iter.Seq[*graph.Edge]) iter.Seq[*graph.Edge] {
	return func(yield func(*graph.Edge) bool) {
		for e := range seq {
			if !edgeMatches(vertex, dir, e) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

func edgeMatches(vertex *graph.Vertex, dir graph.Direction, e *graph.Edge) bool {
	if vertex == nil || e == nil {
		return false
	}
	switch dir {
	case graph.DirectionOut:
		return e.OutV == vertex.VertexID
	case graph.DirectionIn:
		return e.InV == vertex.VertexID
	case graph.DirectionBoth:
		return e.OutV == vertex.VertexID || e.InV == vertex.VertexID
	default:
		return false
	}
}
