// Package store is the SQLite reference backend that executes pushed-down
// graph queries.
//
// Vertices and edges live in two tables with their properties stored as
// canonical JSON (see internal/ir). Queries arrive as
// queryir.BackendQuery values and are compiled by internal/querysql.
//
// # Deterministic Results
//
// Every query ends with ORDER BY ... id ASC COLLATE BINARY, so rows with
// equal sort keys always come back in the same order.
//
// # Inexact Execution
//
// Property comparisons are exact: each is guarded by json_type, so a text
// value never satisfies a comparison against an integer. Ordering puts
// elements missing a sort key last, as the in-memory order step does.
// OWNER_VERTEX is inexact and matches either endpoint of an edge; queries
// using it fetch every matching row, since a LIMIT could be filled by rows
// the pushdown residual filters later drop. Other ranges are fetched as
// their leading rows.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Edges must reference stored vertices
package store
