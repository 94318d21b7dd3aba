// Package harness runs conformance scenarios against the pushdown engine.
//
// A scenario loads a graph fixture into a fresh in-memory store, runs one
// pipeline through the engine and checks the outcome.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: older_people_top2
//	description: "order and range are pushed, the range step stays"
//	graph: ../graphs/modern.yaml
//	schema: ../schema            # optional CUE schema directory
//	pipeline:
//	  - {step: V}
//	  - {step: has, key: age, predicate: {op: gt, value: 28}}
//	  - {step: order, by: [{key: age, order: desc}]}
//	  - {step: range, low: 0, high: 2}
//	assertions:
//	  - type: result_ids
//	    ids: ["6", "4"]
//	  - type: anchor_query
//	    anchor: 0
//	    query: 'vertex where "age" GT 28 order by "age" DESC offset 0 limit 2'
//
// Paths are relative to the scenario file.
//
// # Assertion Types
//
//   - result_ids: the result ids, in order
//   - result_set: the result ids, in any order
//   - result_count: the number of results
//   - anchor_query: the backend query compiled for the anchor at a residual index
//   - residual: the residual pipeline after pushdown
//   - error_code: execution fails with the given code
//
// # Golden Snapshots
//
// RunWithGolden compares the explained plan plus result ids against
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
