package pushdown

import (
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/queryir"
)

// Resolver maps property names to backend keys.
//
// The lookup table holds the built-in keys plus any schema-declared keys
// passed to NewResolver. It is never modified afterwards, so a Resolver is
// safe for concurrent use without locking.
type Resolver struct {
	keys map[string]queryir.WellKnownKey
}

// NewResolver builds a resolver over the built-in keys and schemaKeys.
// Later entries win when names collide.
func NewResolver(schemaKeys ...queryir.WellKnownKey) *Resolver {
	builtins := queryir.BuiltinKeys()
	keys := make(map[string]queryir.WellKnownKey, len(builtins)+len(schemaKeys))
	for _, k := range builtins {
		keys[k.Name] = k
	}
	for _, k := range schemaKeys {
		keys[norm.NFC.String(k.Name)] = k
	}
	return &Resolver{keys: keys}
}

// Resolve maps a name to a PropertyKey. It never fails: names that are
// neither reserved markers nor in the table come back as Raw(name).
//
// Lookup is done on the NFC form of name so that canonically equivalent
// spellings of a schema key resolve identically.
func (r *Resolver) Resolve(name string) queryir.PropertyKey {
	switch name {
	case graph.AccessorLabel:
		return queryir.WellKnown(queryir.KeyLabel)
	case graph.AccessorID:
		return queryir.WellKnown(queryir.KeyID)
	case graph.AccessorKey, graph.AccessorValue:
		return queryir.WellKnown(queryir.KeyProperties)
	}
	if r != nil {
		if k, ok := r.keys[norm.NFC.String(name)]; ok {
			return queryir.WellKnown(k)
		}
	}
	return queryir.Raw(name)
}

// Len returns the number of well-known keys in the table.
func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// isMapMarker reports whether key is ~key or ~value.
func isMapMarker(key string) bool {
	return key == graph.AccessorKey || key == graph.AccessorValue
}
