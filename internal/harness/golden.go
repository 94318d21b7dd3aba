package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pushdown/internal/ir"
)

// Snapshot is the golden form of a scenario run: the explained plan and
// the result ids, serialized as canonical JSON.
type Snapshot struct {
	ScenarioName string
	Explain      map[string]any
	IDs          []string
	ErrorCode    string
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization.
func (s *Snapshot) toCanonicalMap() map[string]any {
	ids := make([]any, len(s.IDs))
	for i, id := range s.IDs {
		ids[i] = id
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"ids":           ids,
	}
	if s.Explain != nil {
		result["plan"] = s.Explain
	}
	if s.ErrorCode != "" {
		result["error_code"] = s.ErrorCode
	}
	return result
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass. Test failure (via
// goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := SnapshotJSON(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}

// SnapshotJSON returns the canonical JSON snapshot of a result, the
// content of its golden file.
func SnapshotJSON(scenarioName string, result *Result) ([]byte, error) {
	snapshot := Snapshot{
		ScenarioName: scenarioName,
		Explain:      result.Explain,
		IDs:          result.IDs,
		ErrorCode:    result.ErrorCode,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}
