package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/pushdown/internal/ir"
)

// Condition is a node of the backend condition tree.
//
// This is a sealed interface - only types in this package implement it.
type Condition interface {
	conditionNode()
	String() string
	describe() map[string]any
}

// RelationOp is a scalar comparison operator.
type RelationOp string

const (
	EQ  RelationOp = "EQ"
	NEQ RelationOp = "NEQ"
	GT  RelationOp = "GT"
	GTE RelationOp = "GTE"
	LT  RelationOp = "LT"
	LTE RelationOp = "LTE"
)

// SetRelationOp is a set-membership operator.
type SetRelationOp string

const (
	IN    SetRelationOp = "IN"
	NOTIN SetRelationOp = "NOT_IN"
)

// Relation is key <op> value.
type Relation struct {
	Key   PropertyKey
	Op    RelationOp
	Value ir.IRValue
}

func (Relation) conditionNode() {}

func (r Relation) String() string {
	return fmt.Sprintf("%s %s %s", r.Key, r.Op, formatValue(r.Value))
}

func (r Relation) describe() map[string]any {
	return map[string]any{"relation": string(r.Op), "key": r.Key.describe(), "value": r.Value}
}

// SetRelation is key IN values / key NOT_IN values.
type SetRelation struct {
	Key    PropertyKey
	Op     SetRelationOp
	Values []ir.IRValue
}

func (SetRelation) conditionNode() {}

func (s SetRelation) String() string {
	parts := make([]string, len(s.Values))
	for i, v := range s.Values {
		parts[i] = formatValue(v)
	}
	return fmt.Sprintf("%s %s [%s]", s.Key, s.Op, strings.Join(parts, ", "))
}

func (s SetRelation) describe() map[string]any {
	return map[string]any{"relation": string(s.Op), "key": s.Key.describe(), "values": ir.IRArray(s.Values)}
}

// ContainsKey holds when the property map addressed by Key has an entry
// named Value.
type ContainsKey struct {
	Key   PropertyKey
	Value ir.IRValue
}

func (ContainsKey) conditionNode() {}

func (c ContainsKey) String() string {
	return fmt.Sprintf("%s CONTAINS_KEY %s", c.Key, formatValue(c.Value))
}

func (c ContainsKey) describe() map[string]any {
	return map[string]any{"relation": "CONTAINS_KEY", "key": c.Key.describe(), "value": c.Value}
}

// ContainsValue holds when some entry of the property map addressed by Key
// equals Value.
type ContainsValue struct {
	Key   PropertyKey
	Value ir.IRValue
}

func (ContainsValue) conditionNode() {}

func (c ContainsValue) String() string {
	return fmt.Sprintf("%s CONTAINS_VALUE %s", c.Key, formatValue(c.Value))
}

func (c ContainsValue) describe() map[string]any {
	return map[string]any{"relation": "CONTAINS_VALUE", "key": c.Key.describe(), "value": c.Value}
}

// And holds when both children hold.
type And struct {
	Left  Condition
	Right Condition
}

func (And) conditionNode() {}

func (a And) String() string {
	return fmt.Sprintf("(%s AND %s)", conditionString(a.Left), conditionString(a.Right))
}

func (a And) describe() map[string]any {
	return map[string]any{"and": []any{describeCondition(a.Left), describeCondition(a.Right)}}
}

// NewAnd builds an And node.
func NewAnd(left, right Condition) And {
	return And{Left: left, Right: right}
}

func conditionString(c Condition) string {
	if c == nil {
		return "<nil>"
	}
	return c.String()
}

func describeCondition(c Condition) any {
	if c == nil {
		return nil
	}
	return c.describe()
}

func formatValue(v ir.IRValue) string {
	if v == nil {
		return "<nil>"
	}
	if s, ok := v.(ir.IRString); ok {
		return fmt.Sprintf("%q", string(s))
	}
	data, err := ir.MarshalIRValue(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
