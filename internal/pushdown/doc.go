// Package pushdown rewrites traversal pipelines into backend queries.
//
// PIPELINE:
//
// For one anchor step (a V()/E() lookup or an outE()/inE()/bothE() edge
// walk) Compile runs three passes over the pipeline:
//
//  1. ExtractFilters: has-steps directly after the anchor (barriers are
//     transparent) are translated into Conditions and removed. Id filters
//     the lookup anchor can resolve natively become anchor ids instead.
//  2. ExtractOrder: consecutive order-by steps become sort keys and are
//     removed. Lookup anchors only.
//  3. ExtractRange: the first range step becomes the query window. The step
//     STAYS in the pipeline. Lookup anchors only.
//
// Every pass is a pure transformation: it returns a new pipeline and never
// touches the input slice.
//
// TRANSLATION:
//
// Translator maps (key, predicate) to a queryir.Condition. Comparisons,
// set membership, two-comparison conjunctions (inside/between) and the
// ~key/~value map markers are supported. Disjunctions, wider or deeper
// conjunctions and unknown operators fail with UnsupportedPredicateError,
// which aborts the whole compilation. There is no partial pushdown.
//
// RESIDUAL FILTERING:
//
// Backends may execute a query inexactly. Filter re-checks every pushed
// HasFilter against the returned elements and FilterByDirection restores
// edge directionality. Both are lazy, order-preserving and idempotent.
//
// Nothing in this package blocks, performs I/O or mutates shared state.
// A Resolver is immutable after construction and may be shared across
// goroutines.
package pushdown
