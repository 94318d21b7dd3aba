package queryir

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/ir"
)

// Direction is a sort direction.
type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// OrderKey is one sort key. The first OrderKey of a query is primary.
type OrderKey struct {
	Key       PropertyKey
	Direction Direction
}

// NoLimit marks a range without an upper bound.
const NoLimit int64 = -1

// Range is a pagination window.
type Range struct {
	Offset int64
	Limit  int64 // NoLimit for unbounded
}

// End returns Offset+Limit, or NoLimit.
func (r Range) End() int64 {
	if r.Limit == NoLimit {
		return NoLimit
	}
	return r.Offset + r.Limit
}

// BackendQuery is the backend-native query built by pushdown.
//
// Conditions are ANDed and unordered among themselves. Orders are ordered.
// IDs, when non-empty, restricts the query to an id lookup.
type BackendQuery struct {
	ResultType graph.ElementType
	IDs        []string
	Conditions []Condition
	Orders     []OrderKey
	Range      *Range
}

// NewBackendQuery creates an empty query for the given element type.
func NewBackendQuery(rt graph.ElementType) *BackendQuery {
	return &BackendQuery{ResultType: rt}
}

// Query adds a condition.
func (q *BackendQuery) Query(c Condition) {
	q.Conditions = append(q.Conditions, c)
}

// OrderBy appends a sort key.
func (q *BackendQuery) OrderBy(key PropertyKey, dir Direction) {
	q.Orders = append(q.Orders, OrderKey{Key: key, Direction: dir})
}

// SetRange sets the window from pipeline bounds [low, high).
// high < 0 means unbounded.
func (q *BackendQuery) SetRange(low, high int64) {
	limit := NoLimit
	if high >= 0 {
		limit = high - low
	}
	q.Range = &Range{Offset: low, Limit: limit}
}

// Clone returns a copy that can be extended without touching q.
// Condition nodes are immutable values and are shared.
func (q *BackendQuery) Clone() *BackendQuery {
	c := &BackendQuery{
		ResultType: q.ResultType,
		IDs:        slices.Clone(q.IDs),
		Conditions: slices.Clone(q.Conditions),
		Orders:     slices.Clone(q.Orders),
	}
	if q.Range != nil {
		r := *q.Range
		c.Range = &r
	}
	return c
}

// IsEmpty reports whether the query carries nothing beyond its result type.
func (q *BackendQuery) IsEmpty() bool {
	return len(q.IDs) == 0 && len(q.Conditions) == 0 && len(q.Orders) == 0 && q.Range == nil
}

// Describe returns the query as plain maps suitable for canonical JSON.
func (q *BackendQuery) Describe() map[string]any {
	conds := make([]any, len(q.Conditions))
	for i, c := range q.Conditions {
		conds[i] = describeCondition(c)
	}
	orders := make([]any, len(q.Orders))
	for i, o := range q.Orders {
		orders[i] = map[string]any{"key": o.Key.describe(), "direction": string(o.Direction)}
	}
	ids := make([]any, len(q.IDs))
	for i, id := range q.IDs {
		ids[i] = id
	}

	out := map[string]any{
		"result_type": string(q.ResultType),
		"ids":         ids,
		"conditions":  conds,
		"orders":      orders,
	}
	if q.Range != nil {
		out["range"] = map[string]any{"offset": q.Range.Offset, "limit": q.Range.Limit}
	}
	return out
}

// Fingerprint returns a stable content hash of the query.
func (q *BackendQuery) Fingerprint() (string, error) {
	return ir.Fingerprint(ir.DomainQuery, q.Describe())
}

func (q *BackendQuery) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", q.ResultType)
	if len(q.IDs) > 0 {
		fmt.Fprintf(&b, " ids=[%s]", strings.Join(q.IDs, ","))
	}
	if len(q.Conditions) > 0 {
		parts := make([]string, len(q.Conditions))
		for i, c := range q.Conditions {
			parts[i] = conditionString(c)
		}
		fmt.Fprintf(&b, " where %s", strings.Join(parts, " AND "))
	}
	if len(q.Orders) > 0 {
		parts := make([]string, len(q.Orders))
		for i, o := range q.Orders {
			parts[i] = fmt.Sprintf("%s %s", o.Key, o.Direction)
		}
		fmt.Fprintf(&b, " order by %s", strings.Join(parts, ", "))
	}
	if q.Range != nil {
		fmt.Fprintf(&b, " offset %d limit %d", q.Range.Offset, q.Range.Limit)
	}
	return b.String()
}
