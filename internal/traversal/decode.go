package traversal

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/ir"
)

// StepSpec is the YAML form of a pipeline step. A pipeline file is a list
// of them:
//
//	[{step: V, ids: [v1]},
//	 {step: has, key: age, predicate: {op: between, values: [18, 65]}},
//	 {step: order, by: [{key: age, order: decr}]},
//	 {step: range, low: 0, high: 10}]
type StepSpec struct {
	Step      string           `yaml:"step"`
	As        []string         `yaml:"as,omitempty"`
	IDs       []string         `yaml:"ids,omitempty"`
	Key       string           `yaml:"key,omitempty"`
	Predicate *PredicateSpec   `yaml:"predicate,omitempty"`
	Has       []HasSpec        `yaml:"has,omitempty"`
	Labels    []string         `yaml:"labels,omitempty"`
	By        []ComparatorSpec `yaml:"by,omitempty"`
	Low       int64            `yaml:"low,omitempty"`
	High      *int64           `yaml:"high,omitempty"`
	Name      string           `yaml:"name,omitempty"`
}

// HasSpec is one filter inside a multi-filter has step.
type HasSpec struct {
	Key       string        `yaml:"key"`
	Predicate PredicateSpec `yaml:"predicate"`
}

// PredicateSpec is the YAML form of a predicate.
// Comparison ops take Value; within/without and the range shorthands
// (inside, between, outside) take Values; and/or take Predicates.
type PredicateSpec struct {
	Op         string          `yaml:"op"`
	Value      any             `yaml:"value,omitempty"`
	Values     []any           `yaml:"values,omitempty"`
	Predicates []PredicateSpec `yaml:"predicates,omitempty"`
}

// ComparatorSpec is one order-by key.
type ComparatorSpec struct {
	Key   string `yaml:"key"`
	Order string `yaml:"order"`
}

// LoadPipeline reads a YAML pipeline file.
func LoadPipeline(path string) (Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline: %w", err)
	}
	return DecodePipeline(data)
}

// DecodePipeline parses a YAML list of steps.
func DecodePipeline(data []byte) (Pipeline, error) {
	var specs []StepSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parse pipeline YAML: %w", err)
	}
	return BuildPipeline(specs)
}

// BuildPipeline converts decoded step specs into a Pipeline.
func BuildPipeline(specs []StepSpec) (Pipeline, error) {
	p := make(Pipeline, 0, len(specs))
	for i, spec := range specs {
		step, err := buildStep(spec)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, spec.Step, err)
		}
		p = append(p, step)
	}
	return p, nil
}

func buildStep(spec StepSpec) (Step, error) {
	labels := Labeled{As: spec.As}

	switch spec.Step {
	case "V", "E":
		rt := graph.ElementVertex
		if spec.Step == "E" {
			rt = graph.ElementEdge
		}
		return GraphStep{Labeled: labels, ReturnType: rt, IDs: spec.IDs}, nil

	case "out", "in", "both", "outE", "inE", "bothE":
		name := strings.TrimSuffix(spec.Step, "E")
		dir, err := graph.ParseDirection(name)
		if err != nil {
			return nil, err
		}
		rt := graph.ElementVertex
		if strings.HasSuffix(spec.Step, "E") {
			rt = graph.ElementEdge
		}
		return VertexStep{Labeled: labels, Direction: dir, EdgeLabels: spec.Labels, ReturnType: rt}, nil

	case "has":
		var filters []HasFilter
		if spec.Key != "" {
			if spec.Predicate == nil {
				return nil, fmt.Errorf("has %q: predicate is required", spec.Key)
			}
			p, err := BuildPredicate(*spec.Predicate)
			if err != nil {
				return nil, fmt.Errorf("has %q: %w", spec.Key, err)
			}
			filters = append(filters, Has(spec.Key, p))
		}
		for _, h := range spec.Has {
			p, err := BuildPredicate(h.Predicate)
			if err != nil {
				return nil, fmt.Errorf("has %q: %w", h.Key, err)
			}
			filters = append(filters, Has(h.Key, p))
		}
		if len(filters) == 0 {
			return nil, fmt.Errorf("has step needs key/predicate or has list")
		}
		return HasStep{Labeled: labels, Filters: filters}, nil

	case "hasLabel":
		values := make([]ir.IRValue, len(spec.Labels))
		for i, l := range spec.Labels {
			values[i] = ir.IRString(l)
		}
		var p Predicate = Within(values...)
		if len(values) == 1 {
			p = Eq(values[0])
		}
		return HasStep{Labeled: labels, Filters: []HasFilter{Has(graph.AccessorLabel, p)}}, nil

	case "order":
		comps := make([]Comparator, len(spec.By))
		for i, c := range spec.By {
			order, err := parseOrder(c.Order)
			if err != nil {
				return nil, err
			}
			comps[i] = Comparator{Key: c.Key, Order: order}
		}
		return OrderStep{Labeled: labels, Comparators: comps}, nil

	case "range":
		high := NoUpperBound
		if spec.High != nil {
			high = *spec.High
		}
		if spec.Low < 0 || (high != NoUpperBound && high < spec.Low) {
			return nil, fmt.Errorf("invalid range [%d, %d)", spec.Low, high)
		}
		return RangeStep{Labeled: labels, Low: spec.Low, High: high}, nil

	case "limit":
		if spec.High == nil || *spec.High < 0 {
			return nil, fmt.Errorf("limit requires a non-negative high")
		}
		return RangeStep{Labeled: labels, Low: 0, High: *spec.High}, nil

	case "barrier":
		return NoOpBarrierStep{Labeled: labels}, nil

	case "identity":
		return IdentityStep{Labeled: labels}, nil

	case "other":
		if spec.Name == "" {
			return nil, fmt.Errorf("other step requires a name")
		}
		return OtherStep{Labeled: labels, Name: spec.Name}, nil

	case "dedup":
		return OtherStep{Labeled: labels, Name: "dedup"}, nil

	default:
		return nil, fmt.Errorf("unknown step %q", spec.Step)
	}
}

func parseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(s)); o {
	case "":
		return OrderIncr, nil
	case OrderIncr, OrderDecr, OrderAsc, OrderDesc:
		return o, nil
	default:
		return "", fmt.Errorf("unknown order %q", s)
	}
}

// BuildPredicate converts a decoded PredicateSpec into a Predicate.
func BuildPredicate(spec PredicateSpec) (Predicate, error) {
	switch op := strings.ToLower(spec.Op); op {
	case "eq", "neq", "gt", "gte", "lt", "lte":
		v, err := ir.FromAny(spec.Value)
		if err != nil {
			return nil, err
		}
		return Compare{Op: CompareOp(op), Value: v}, nil

	case "within", "without":
		values, err := convertValues(spec.Values)
		if err != nil {
			return nil, err
		}
		return SetMembership{Op: SetOp(op), Values: values}, nil

	case "inside", "between", "outside":
		values, err := convertValues(spec.Values)
		if err != nil {
			return nil, err
		}
		if len(values) != 2 {
			return nil, fmt.Errorf("%s requires exactly two values, got %d", op, len(values))
		}
		switch op {
		case "inside":
			return Inside(values[0], values[1]), nil
		case "between":
			return Between(values[0], values[1]), nil
		default:
			return Outside(values[0], values[1]), nil
		}

	case "and", "or":
		children := make([]Predicate, len(spec.Predicates))
		for i, child := range spec.Predicates {
			p, err := BuildPredicate(child)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", op, i, err)
			}
			children[i] = p
		}
		if op == "and" {
			return And{Predicates: children}, nil
		}
		return Or{Predicates: children}, nil

	default:
		return nil, fmt.Errorf("unknown predicate op %q", spec.Op)
	}
}

func convertValues(raw []any) ([]ir.IRValue, error) {
	values := make([]ir.IRValue, len(raw))
	for i, r := range raw {
		v, err := ir.FromAny(r)
		if err != nil {
			return nil, fmt.Errorf("values[%d]: %w", i, err)
		}
		values[i] = v
	}
	return values, nil
}
