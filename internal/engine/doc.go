// Package engine is the reference traversal host for pushdown.
//
// It compiles a pipeline by running the pushdown passes at every anchor,
// executes each anchor's backend query against a Backend, re-checks the
// rows with the residual filters, and runs the remaining steps in memory.
//
// Execution model:
//
// 1. Compile walks the pipeline left to right. Each anchor (a lookup step
// or an edge-returning vertex step) is compiled with pushdown.Compiler,
// which consumes the steps it pushes down.
// 2. Execute processes the residual pipeline step by step over a slice of
// traversers (graph elements). Anchors run their backend query, once for
// a lookup or once per incoming vertex for an edge step.
// 3. Backend rows always pass through pushdown.Filter with the consumed
// filters; edge rows also pass through pushdown.FilterByDirection.
//
// Steps run in pipeline order and traversers keep backend order, so a
// pipeline over an unchanged store always yields the same sequence.
package engine
