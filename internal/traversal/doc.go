// Package traversal models the engine-agnostic traversal pipeline that the
// pushdown layer rewrites.
//
// A pipeline is an ordered slice of steps. Steps and predicates are sealed
// interfaces using the marker method pattern, so every consumer can switch
// over them exhaustively:
//
//	switch s := step.(type) {
//	case GraphStep, VertexStep:
//	    // anchors - pushdown starts here
//	case HasStep, OrderStep, RangeStep:
//	    // candidates for pushdown
//	case NoOpBarrierStep, IdentityStep:
//	    // transparent
//	case OtherStep:
//	    // opaque - stops extraction
//	}
//
// Steps are values. Rewrites never mutate a pipeline in place; they build a
// new slice, so a caller's view of the original pipeline stays intact.
package traversal
