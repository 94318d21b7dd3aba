package traversal

import (
	"fmt"
	"strings"

	"github.com/roach88/pushdown/internal/ir"
)

// Predicate is a test applied to a single property value.
//
// This is a sealed interface. Predicate types:
//   - Compare: eq, neq, gt, gte, lt, lte against one value
//   - SetMembership: within / without a list of values
//   - And: conjunction (two comparisons for inside/between ranges)
//   - Or: disjunction (outside ranges); accepted but never pushed down
type Predicate interface {
	predicateNode()
	// Test evaluates the predicate against a present property value.
	Test(v ir.IRValue) bool
	String() string
}

// CompareOp is a binary comparison operator.
type CompareOp string

const (
	OpEq  CompareOp = "eq"
	OpNeq CompareOp = "neq"
	OpGt  CompareOp = "gt"
	OpGte CompareOp = "gte"
	OpLt  CompareOp = "lt"
	OpLte CompareOp = "lte"
)

// SetOp is a set-membership operator.
type SetOp string

const (
	OpWithin  SetOp = "within"
	OpWithout SetOp = "without"
)

// Compare tests a value against a single operand.
type Compare struct {
	Op    CompareOp
	Value ir.IRValue
}

func (Compare) predicateNode() {}

// Test returns false for operands that cannot be ordered against v
// (different kinds, nulls, lists).
func (c Compare) Test(v ir.IRValue) bool {
	switch c.Op {
	case OpEq:
		return ir.Equal(v, c.Value)
	case OpNeq:
		return !ir.Equal(v, c.Value)
	}

	cmp, ok := ir.Compare(v, c.Value)
	if !ok {
		return false
	}
	switch c.Op {
	case OpGt:
		return cmp > 0
	case OpGte:
		return cmp >= 0
	case OpLt:
		return cmp < 0
	case OpLte:
		return cmp <= 0
	default:
		return false
	}
}

func (c Compare) String() string {
	return fmt.Sprintf("%s(%s)", c.Op, formatValue(c.Value))
}

// SetMembership tests whether a value is (or is not) one of Values.
type SetMembership struct {
	Op     SetOp
	Values []ir.IRValue
}

func (SetMembership) predicateNode() {}

func (s SetMembership) Test(v ir.IRValue) bool {
	found := false
	for _, candidate := range s.Values {
		if ir.Equal(v, candidate) {
			found = true
			break
		}
	}
	switch s.Op {
	case OpWithin:
		return found
	case OpWithout:
		return !found
	default:
		return false
	}
}

func (s SetMembership) String() string {
	parts := make([]string, len(s.Values))
	for i, v := range s.Values {
		parts[i] = formatValue(v)
	}
	return fmt.Sprintf("%s([%s])", s.Op, strings.Join(parts, ", "))
}

// And is a conjunction. Only the two-comparison form is pushed down.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

func (a And) Test(v ir.IRValue) bool {
	for _, p := range a.Predicates {
		if !p.Test(v) {
			return false
		}
	}
	return true
}

func (a And) String() string { return "and(" + joinPredicates(a.Predicates) + ")" }

// Or is a disjunction. It evaluates in memory but has no backend form.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

func (o Or) Test(v ir.IRValue) bool {
	for _, p := range o.Predicates {
		if p.Test(v) {
			return true
		}
	}
	return false
}

func (o Or) String() string { return "or(" + joinPredicates(o.Predicates) + ")" }

func joinPredicates(ps []Predicate) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		if p == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

func formatValue(v ir.IRValue) string {
	switch val := v.(type) {
	case ir.IRString:
		return fmt.Sprintf("%q", string(val))
	case nil:
		return "<nil>"
	default:
		data, err := ir.MarshalIRValue(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}

// Predicate constructors.

func Eq(v ir.IRValue) Compare  { return Compare{Op: OpEq, Value: v} }
func Neq(v ir.IRValue) Compare { return Compare{Op: OpNeq, Value: v} }
func Gt(v ir.IRValue) Compare  { return Compare{Op: OpGt, Value: v} }
func Gte(v ir.IRValue) Compare { return Compare{Op: OpGte, Value: v} }
func Lt(v ir.IRValue) Compare  { return Compare{Op: OpLt, Value: v} }
func Lte(v ir.IRValue) Compare { return Compare{Op: OpLte, Value: v} }

func Within(vs ...ir.IRValue) SetMembership {
	return SetMembership{Op: OpWithin, Values: vs}
}

func Without(vs ...ir.IRValue) SetMembership {
	return SetMembership{Op: OpWithout, Values: vs}
}

// Inside matches low < v < high.
func Inside(low, high ir.IRValue) And {
	return And{Predicates: []Predicate{Gt(low), Lt(high)}}
}

// Between matches low <= v < high.
func Between(low, high ir.IRValue) And {
	return And{Predicates: []Predicate{Gte(low), Lt(high)}}
}

// Outside matches v < low or v > high.
func Outside(low, high ir.IRValue) Or {
	return Or{Predicates: []Predicate{Lt(low), Gt(high)}}
}
