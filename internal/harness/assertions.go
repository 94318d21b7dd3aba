package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the residual pipeline to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Residual string // Residual pipeline, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Residual != "" {
		fmt.Fprintf(&buf, "  Residual: %s\n", e.Residual)
	}

	return buf.String()
}

// assertResultIDs checks the result ids in order.
func assertResultIDs(result *Result, a Assertion) error {
	if slices.Equal(result.IDs, a.IDs) {
		return nil
	}
	return &AssertionError{
		Type:     AssertResultIDs,
		Expected: formatIDs(a.IDs),
		Actual:   formatIDs(result.IDs),
		Residual: result.Residual,
	}
}

// assertResultSet checks the result ids ignoring order. Duplicates count.
func assertResultSet(result *Result, a Assertion) error {
	got := slices.Sorted(slices.Values(result.IDs))
	want := slices.Sorted(slices.Values(a.IDs))
	if slices.Equal(got, want) {
		return nil
	}
	return &AssertionError{
		Type:     AssertResultSet,
		Expected: formatIDs(want) + " in any order",
		Actual:   formatIDs(got),
		Residual: result.Residual,
	}
}

// assertResultCount checks the number of results.
func assertResultCount(result *Result, a Assertion) error {
	if len(result.IDs) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertResultCount,
		Expected: fmt.Sprintf("%d results", a.Count),
		Actual:   fmt.Sprintf("%d results %s", len(result.IDs), formatIDs(result.IDs)),
		Residual: result.Residual,
	}
}

// assertAnchorQuery checks the query compiled for one anchor.
func assertAnchorQuery(result *Result, a Assertion) error {
	got, ok := result.Queries[a.Anchor]
	if !ok {
		return &AssertionError{
			Type:     AssertAnchorQuery,
			Expected: fmt.Sprintf("anchor at %d: %s", a.Anchor, a.Query),
			Actual:   "no anchor at that index",
			Residual: result.Residual,
		}
	}
	if got != a.Query {
		return &AssertionError{
			Type:     AssertAnchorQuery,
			Expected: a.Query,
			Actual:   got,
			Residual: result.Residual,
		}
	}
	return nil
}

// assertResidual checks the residual pipeline.
func assertResidual(result *Result, a Assertion) error {
	if result.Residual == a.Pipeline {
		return nil
	}
	return &AssertionError{
		Type:     AssertResidual,
		Expected: a.Pipeline,
		Actual:   result.Residual,
	}
}

// assertErrorCode checks that execution failed with the given code.
func assertErrorCode(result *Result, a Assertion) error {
	if result.Err != nil && result.ErrorCode == a.Code {
		return nil
	}
	actual := "no error"
	if result.Err != nil {
		actual = fmt.Sprintf("%s (%v)", result.ErrorCode, result.Err)
	}
	return &AssertionError{
		Type:     AssertErrorCode,
		Expected: a.Code,
		Actual:   actual,
		Residual: result.Residual,
	}
}

func formatIDs(ids []string) string {
	return "[" + strings.Join(ids, ", ") + "]"
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertResultIDs:
			err = assertResultIDs(result, assertion)
		case AssertResultSet:
			err = assertResultSet(result, assertion)
		case AssertResultCount:
			err = assertResultCount(result, assertion)
		case AssertAnchorQuery:
			err = assertAnchorQuery(result, assertion)
		case AssertResidual:
			err = assertResidual(result, assertion)
		case AssertErrorCode:
			err = assertErrorCode(result, assertion)
		default:
			err = fmt.Errorf("unknown assertion type: %s", assertion.Type)
		}

		if err != nil {
			errors = append(errors, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}

	return errors
}
