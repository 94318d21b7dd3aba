package pushdown

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/queryir"
)

var keyAge = queryir.WellKnownKey{Code: queryir.FirstSchemaKeyCode, Name: "age"}

func TestResolve_ReservedMarkers(t *testing.T) {
	r := NewResolver()

	assert.Equal(t, queryir.WellKnown(queryir.KeyLabel), r.Resolve(graph.AccessorLabel))
	assert.Equal(t, queryir.WellKnown(queryir.KeyID), r.Resolve(graph.AccessorID))
	assert.Equal(t, queryir.WellKnown(queryir.KeyProperties), r.Resolve(graph.AccessorKey))
	assert.Equal(t, queryir.WellKnown(queryir.KeyProperties), r.Resolve(graph.AccessorValue))
}

func TestResolve_SchemaKey(t *testing.T) {
	r := NewResolver(keyAge)

	got := r.Resolve("age")
	assert.True(t, got.IsWellKnown())
	assert.True(t, got.Is(keyAge))
}

func TestResolve_BuiltinByName(t *testing.T) {
	r := NewResolver()
	assert.Equal(t, queryir.WellKnown(queryir.KeyProperties), r.Resolve("PROPERTIES"))
}

func TestResolve_FallsBackToRaw(t *testing.T) {
	r := NewResolver(keyAge)

	for _, name := range []string{"name", "", "Age", "~other"} {
		got := r.Resolve(name)
		assert.False(t, got.IsWellKnown(), name)
		assert.Equal(t, queryir.Raw(name), got)
	}
}

func TestResolve_NFCLookup(t *testing.T) {
	cafe := queryir.WellKnownKey{Code: queryir.FirstSchemaKeyCode + 1, Name: "caf\u00e9"}
	r := NewResolver(cafe)

	// Decomposed spelling resolves to the same key.
	assert.True(t, r.Resolve("cafe\u0301").Is(cafe))

	// Raw keys keep the caller's spelling.
	assert.Equal(t, "nai\u0308ve", r.Resolve("nai\u0308ve").Name)
}

func TestResolve_NilResolver(t *testing.T) {
	var r *Resolver
	assert.Equal(t, queryir.WellKnown(queryir.KeyLabel), r.Resolve(graph.AccessorLabel))
	assert.Equal(t, queryir.Raw("age"), r.Resolve("age"))
	assert.Equal(t, 0, r.Len())
}

func TestResolve_Concurrent(t *testing.T) {
	r := NewResolver(keyAge)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.True(t, r.Resolve("age").Is(keyAge))
			}
		}()
	}
	wg.Wait()
}
