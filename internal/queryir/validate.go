package queryir

import (
	"fmt"
)

// ValidationResult contains the findings of Validate.
//
// Warnings never block execution. They flag queries that are legal but
// almost certainly not what the pipeline author meant, or that a backend
// will have to handle through its inexact path.
type ValidationResult struct {
	// Valid is true when no warnings were produced.
	Valid bool

	// Warnings lists the findings in traversal order.
	Warnings []string
}

// Validate checks a query for structural problems.
//
// Rules:
//  1. No nil conditions (including And children)
//  2. Operators must be in the known set
//  3. CONTAINS_KEY / CONTAINS_VALUE must address PROPERTIES
//  4. IN with no values matches nothing
//  5. Range offset must be >= 0 and limit >= 0 (or NoLimit)
//  6. An id lookup combined with ID conditions is redundant
//
// Validate is a pure function with no side effects.
func Validate(q *BackendQuery) ValidationResult {
	v := &validator{warnings: []string{}}
	if q == nil {
		v.addWarning("nil query")
	} else {
		v.validateQuery(q)
	}
	return ValidationResult{
		Valid:    len(v.warnings) == 0,
		Warnings: v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
	idConds  int
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q *BackendQuery) {
	for _, c := range q.Conditions {
		v.validateCondition(c)
	}

	// Rule 5
	if q.Range != nil {
		if q.Range.Offset < 0 {
			v.addWarning("negative range offset %d", q.Range.Offset)
		}
		if q.Range.Limit < 0 && q.Range.Limit != NoLimit {
			v.addWarning("negative range limit %d", q.Range.Limit)
		}
	}

	for _, o := range q.Orders {
		if o.Direction != ASC && o.Direction != DESC {
			v.addWarning("unknown sort direction %q for %s", o.Direction, o.Key)
		}
	}

	// Rule 6
	if len(q.IDs) > 0 && v.idConds > 0 {
		v.addWarning("id lookup combined with %d ID condition(s)", v.idConds)
	}
}

func (v *validator) validateCondition(c Condition) {
	// Rule 1
	if c == nil {
		v.addWarning("nil condition")
		return
	}

	switch cond := c.(type) {
	case Relation:
		switch cond.Op {
		case EQ, NEQ, GT, GTE, LT, LTE:
		default:
			v.addWarning("unknown relation %q on %s", cond.Op, cond.Key)
		}
		v.countID(cond.Key)
	case SetRelation:
		switch cond.Op {
		case IN:
			// Rule 4
			if len(cond.Values) == 0 {
				v.addWarning("IN with no values on %s matches nothing", cond.Key)
			}
		case NOTIN:
		default:
			v.addWarning("unknown set relation %q on %s", cond.Op, cond.Key)
		}
		v.countID(cond.Key)
	case ContainsKey:
		// Rule 3
		if !cond.Key.Is(KeyProperties) {
			v.addWarning("CONTAINS_KEY on %s, expected PROPERTIES", cond.Key)
		}
	case ContainsValue:
		if !cond.Key.Is(KeyProperties) {
			v.addWarning("CONTAINS_VALUE on %s, expected PROPERTIES", cond.Key)
		}
	case And:
		v.validateCondition(cond.Left)
		v.validateCondition(cond.Right)
	default:
		v.addWarning("unknown condition type: %T", c)
	}
}

func (v *validator) countID(k PropertyKey) {
	if k.Is(KeyID) {
		v.idConds++
	}
}
