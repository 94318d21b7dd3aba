// Package queryir provides the backend query model produced by pushdown.
//
// A BackendQuery is what a storage engine receives: a set of conditions
// (implicit AND), an ordered list of sort keys and an optional range.
//
//	[traversal pipeline] → [pushdown] → [BackendQuery] → [storage backend]
//
// CONDITION MODEL:
//
// Condition is a sealed interface using the marker method pattern:
//   - Relation: key <op> value (EQ, NEQ, GT, GTE, LT, LTE)
//   - SetRelation: key IN / NOT IN values
//   - ContainsKey: the property map has key value
//   - ContainsValue: the property map has some entry equal to value
//   - And: both children hold
//
// There is deliberately no Or. Backends are not required to support
// disjunction, so disjunctive predicates stay in the pipeline and are
// rejected at translation time.
//
// PROPERTY KEYS:
//
// A PropertyKey is either well-known (a fixed backend key code such as
// LABEL or ID, or a schema-declared property key) or raw (a property name
// the schema does not know). Backends must handle both; raw keys address
// dynamically typed properties.
//
// EXACTNESS:
//
// Backends may execute a query inexactly (index approximations, adjacency
// queries that ignore direction, advisory ranges). The pushdown layer keeps
// residual filters for exactly that reason, so a backend is free to return
// a superset of the requested elements.
package queryir
