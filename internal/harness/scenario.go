package harness

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pushdown/internal/traversal"
)

// Scenario defines a conformance scenario: one pipeline over one graph.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Graph is the path to a YAML graph fixture (graph.Fixture).
	Graph string `yaml:"graph"`

	// Schema is an optional CUE schema directory. When set, the graph is
	// validated against it and its property keys become well-known keys.
	Schema string `yaml:"schema,omitempty"`

	// Pipeline is the pipeline to run, in traversal.StepSpec form.
	Pipeline []traversal.StepSpec `yaml:"pipeline"`

	// MaxTraversers overrides the engine quota when non-zero.
	MaxTraversers int `yaml:"max_traversers,omitempty"`

	// Assertions validate the outcome.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of the outcome.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// IDs are the expected result ids (result_ids, result_set).
	IDs []string `yaml:"ids,omitempty"`

	// Count is the expected number of results (result_count).
	Count int `yaml:"count,omitempty"`

	// Anchor is the residual index of an anchor (anchor_query).
	Anchor int `yaml:"anchor,omitempty"`

	// Query is the expected BackendQuery.String() (anchor_query).
	Query string `yaml:"query,omitempty"`

	// Pipeline is the expected residual pipeline string (residual).
	Pipeline string `yaml:"pipeline,omitempty"`

	// Code is the expected error code (error_code).
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertResultIDs   = "result_ids"
	AssertResultSet   = "result_set"
	AssertResultCount = "result_count"
	AssertAnchorQuery = "anchor_query"
	AssertResidual    = "residual"
	AssertErrorCode   = "error_code"
)

// FixtureNotFoundError is returned when a scenario references a graph or
// schema path that does not exist.
type FixtureNotFoundError struct {
	Scenario     string
	Path         string
	ResolvedPath string
}

// Error implements the error interface.
func (e *FixtureNotFoundError) Error() string {
	return fmt.Sprintf("scenario %q references %q which does not exist (resolved to: %s)",
		e.Scenario, e.Path, e.ResolvedPath)
}

// LoadScenario reads and parses a scenario YAML file.
// Graph and schema paths are resolved relative to the file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&scenario.Graph, &scenario.Schema} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the YAML files under dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find scenarios in %s: %w", dir, err)
	}
	slices.Sort(paths)
	return paths, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Graph == "" {
		return fmt.Errorf("graph is required")
	}

	if len(s.Pipeline) == 0 {
		return fmt.Errorf("pipeline list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for _, p := range []string{s.Graph, s.Schema} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return &FixtureNotFoundError{Scenario: s.Name, Path: p, ResolvedPath: p}
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertResultIDs, AssertResultSet:
		if a.IDs == nil {
			return fmt.Errorf("assertions[%d]: ids is required for %s (use [] for none)", index, a.Type)
		}
	case AssertResultCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for result_count", index)
		}
	case AssertAnchorQuery:
		if a.Query == "" {
			return fmt.Errorf("assertions[%d]: query is required for anchor_query", index)
		}
	case AssertResidual:
		if a.Pipeline == "" {
			return fmt.Errorf("assertions[%d]: pipeline is required for residual", index)
		}
	case AssertErrorCode:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error_code", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
