package traversal

import (
	"fmt"

	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/ir"
)

// HasFilter pairs a property name with a predicate. The name may be one of
// the reserved accessors in package graph.
type HasFilter struct {
	Key       string
	Predicate Predicate
}

// Has builds a HasFilter.
func Has(key string, p Predicate) HasFilter {
	return HasFilter{Key: key, Predicate: p}
}

func (h HasFilter) String() string {
	if h.Predicate == nil {
		return fmt.Sprintf("%s.<nil>", h.Key)
	}
	return fmt.Sprintf("%s.%s", h.Key, h.Predicate)
}

// Test evaluates the filter directly against an element.
//
// ~key matches when any property name satisfies the predicate, ~value when
// any property value does. A missing property never matches, including
// under neq and without.
func (h HasFilter) Test(el graph.Element) bool {
	if h.Predicate == nil {
		return false
	}
	switch h.Key {
	case graph.AccessorID:
		return h.Predicate.Test(ir.IRString(el.ID()))
	case graph.AccessorLabel:
		return h.Predicate.Test(ir.IRString(el.Label()))
	case graph.AccessorKey:
		for k := range el.Properties() {
			if h.Predicate.Test(ir.IRString(k)) {
				return true
			}
		}
		return false
	case graph.AccessorValue:
		for _, v := range el.Properties() {
			if h.Predicate.Test(v) {
				return true
			}
		}
		return false
	default:
		v, ok := el.Property(h.Key)
		if !ok {
			return false
		}
		return h.Predicate.Test(v)
	}
}

// TestAll reports whether el satisfies every filter.
func TestAll(el graph.Element, filters []HasFilter) bool {
	for _, f := range filters {
		if !f.Test(el) {
			return false
		}
	}
	return true
}
