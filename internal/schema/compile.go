package schema

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/pushdown/internal/queryir"
)

// CompileError is a schema error with its CUE source position, when known.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadDir loads every CUE file of the package in dir and compiles its
// top-level graph field.
func LoadDir(dir string) (*Schema, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("schema directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("schema directory: not a directory: %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return Compile(value.LookupPath(cue.ParsePath("graph")))
}

// CompileString compiles CUE source whose top-level graph field holds the
// schema.
func CompileString(src string) (*Schema, error) {
	value := cuecontext.New().CompileString(src, cue.Filename("schema.cue"))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return Compile(value.LookupPath(cue.ParsePath("graph")))
}

// Compile builds a Schema from the value of a graph field.
func Compile(v cue.Value) (*Schema, error) {
	if !v.Exists() {
		return nil, &CompileError{Field: "graph", Message: "graph is required"}
	}
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	s := &Schema{}
	var err error
	if s.PropertyKeys, err = parsePropertyKeys(v); err != nil {
		return nil, err
	}
	if s.VertexLabels, err = parseVertexLabels(v); err != nil {
		return nil, err
	}
	if s.EdgeLabels, err = parseEdgeLabels(v); err != nil {
		return nil, err
	}
	if err := s.checkReferences(v); err != nil {
		return nil, err
	}
	return s, nil
}

// parsePropertyKeys assigns codes in declaration order.
func parsePropertyKeys(v cue.Value) ([]PropertyKey, error) {
	var keys []PropertyKey

	keysVal := v.LookupPath(cue.ParsePath("propertyKeys"))
	if !keysVal.Exists() {
		return keys, nil
	}

	iter, err := keysVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	code := queryir.FirstSchemaKeyCode
	for iter.Next() {
		name := iter.Label()
		typeVal := iter.Value().LookupPath(cue.ParsePath("type"))
		if !typeVal.Exists() {
			return nil, &CompileError{
				Field:   "propertyKeys." + name,
				Message: "type is required",
				Pos:     iter.Value().Pos(),
			}
		}
		typ, err := typeVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		pt := PropertyType(typ)
		if !pt.valid() {
			return nil, &CompileError{
				Field:   "propertyKeys." + name,
				Message: fmt.Sprintf("unknown type %q: must be string, int, bool, list or map", typ),
				Pos:     typeVal.Pos(),
			}
		}
		for _, builtin := range queryir.BuiltinKeys() {
			if builtin.Name == name {
				return nil, &CompileError{
					Field:   "propertyKeys." + name,
					Message: "name is reserved for a system key",
					Pos:     iter.Value().Pos(),
				}
			}
		}

		keys = append(keys, PropertyKey{Name: name, Type: pt, Code: code})
		code++
	}

	return keys, nil
}

func parseVertexLabels(v cue.Value) ([]VertexLabel, error) {
	var labels []VertexLabel

	labelsVal := v.LookupPath(cue.ParsePath("vertexLabels"))
	if !labelsVal.Exists() {
		return labels, nil
	}

	iter, err := labelsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		props, err := parseStringList(iter.Value(), "properties")
		if err != nil {
			return nil, err
		}
		labels = append(labels, VertexLabel{Name: iter.Label(), Properties: props})
	}

	return labels, nil
}

func parseEdgeLabels(v cue.Value) ([]EdgeLabel, error) {
	var labels []EdgeLabel

	labelsVal := v.LookupPath(cue.ParsePath("edgeLabels"))
	if !labelsVal.Exists() {
		return labels, nil
	}

	iter, err := labelsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		el := EdgeLabel{Name: iter.Label()}
		if el.Out, err = optionalString(iter.Value(), "from"); err != nil {
			return nil, err
		}
		if el.In, err = optionalString(iter.Value(), "to"); err != nil {
			return nil, err
		}
		if el.Properties, err = parseStringList(iter.Value(), "properties"); err != nil {
			return nil, err
		}
		labels = append(labels, el)
	}

	return labels, nil
}

// checkReferences verifies that labels only name declared keys and labels.
func (s *Schema) checkReferences(v cue.Value) error {
	for _, vl := range s.VertexLabels {
		for _, p := range vl.Properties {
			if _, ok := s.PropertyKey(p); !ok {
				return &CompileError{
					Field:   "vertexLabels." + vl.Name,
					Message: fmt.Sprintf("undeclared property key %q", p),
					Pos:     v.LookupPath(cue.MakePath(cue.Str("vertexLabels"), cue.Str(vl.Name))).Pos(),
				}
			}
		}
	}
	for _, el := range s.EdgeLabels {
		pos := v.LookupPath(cue.MakePath(cue.Str("edgeLabels"), cue.Str(el.Name))).Pos()
		for _, p := range el.Properties {
			if _, ok := s.PropertyKey(p); !ok {
				return &CompileError{
					Field:   "edgeLabels." + el.Name,
					Message: fmt.Sprintf("undeclared property key %q", p),
					Pos:     pos,
				}
			}
		}
		for _, end := range []string{el.Out, el.In} {
			if end == "" {
				continue
			}
			if _, ok := s.VertexLabel(end); !ok {
				return &CompileError{
					Field:   "edgeLabels." + el.Name,
					Message: fmt.Sprintf("undeclared vertex label %q", end),
					Pos:     pos,
				}
			}
		}
	}
	return nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.MakePath(cue.Str(field)))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func parseStringList(v cue.Value, field string) ([]string, error) {
	var out []string

	lv := v.LookupPath(cue.MakePath(cue.Str(field)))
	if !lv.Exists() {
		return out, nil
	}

	iter, err := lv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
