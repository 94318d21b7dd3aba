package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pushdown/internal/graph"
	"github.com/roach88/pushdown/internal/ir"
)

func TestPropertyKey_Variants(t *testing.T) {
	label := WellKnown(KeyLabel)
	assert.True(t, label.IsWellKnown())
	assert.True(t, label.Is(KeyLabel))
	assert.False(t, label.Is(KeyID))

	raw := Raw("age")
	assert.False(t, raw.IsWellKnown())
	assert.False(t, raw.Is(WellKnownKey{}), "raw keys never match the zero key")
	assert.Equal(t, `"age"`, raw.String())
	assert.Equal(t, "LABEL#2", label.String())
}

func TestWellKnownKey_IsBuiltin(t *testing.T) {
	for _, k := range BuiltinKeys() {
		assert.True(t, k.IsBuiltin(), k.Name)
	}
	assert.False(t, WellKnownKey{Code: FirstSchemaKeyCode, Name: "age"}.IsBuiltin())
}

func TestBackendQuery_SetRange(t *testing.T) {
	q := NewBackendQuery(graph.ElementVertex)
	q.SetRange(5, 15)
	require.NotNil(t, q.Range)
	assert.Equal(t, Range{Offset: 5, Limit: 10}, *q.Range)
	assert.Equal(t, int64(15), q.Range.End())

	q.SetRange(3, -1)
	assert.Equal(t, Range{Offset: 3, Limit: NoLimit}, *q.Range)
	assert.Equal(t, NoLimit, q.Range.End())
}

func TestBackendQuery_Clone(t *testing.T) {
	q := NewBackendQuery(graph.ElementEdge)
	q.Query(Relation{Key: WellKnown(KeyLabel), Op: EQ, Value: ir.IRString("knows")})
	q.SetRange(0, 10)

	c := q.Clone()
	c.Query(Relation{Key: WellKnown(KeyOwnerVertex), Op: EQ, Value: ir.IRString("1")})
	c.Range.Limit = 1

	assert.Len(t, q.Conditions, 1)
	assert.Len(t, c.Conditions, 2)
	assert.Equal(t, int64(10), q.Range.Limit)
}

func TestBackendQuery_String(t *testing.T) {
	q := NewBackendQuery(graph.ElementVertex)
	q.Query(Relation{Key: Raw("name"), Op: EQ, Value: ir.IRString("x")})
	q.OrderBy(Raw("age"), DESC)
	q.SetRange(0, 10)

	assert.Equal(t, `vertex where "name" EQ "x" order by "age" DESC offset 0 limit 10`, q.String())
}

func TestBackendQuery_Fingerprint(t *testing.T) {
	build := func(v int64) *BackendQuery {
		q := NewBackendQuery(graph.ElementVertex)
		q.Query(NewAnd(
			Relation{Key: Raw("age"), Op: GTE, Value: ir.IRInt(v)},
			Relation{Key: Raw("age"), Op: LT, Value: ir.IRInt(65)},
		))
		q.Query(SetRelation{Key: WellKnown(KeyLabel), Op: IN, Values: []ir.IRValue{ir.IRString("person")}})
		return q
	}

	a, err := build(18).Fingerprint()
	require.NoError(t, err)
	b, err := build(18).Fingerprint()
	require.NoError(t, err)
	c, err := build(21).Fingerprint()
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestBackendQuery_Describe(t *testing.T) {
	q := NewBackendQuery(graph.ElementVertex)
	q.IDs = []string{"1"}
	q.Query(ContainsKey{Key: WellKnown(KeyProperties), Value: ir.IRString("k1")})

	data, err := ir.MarshalCanonical(q.Describe())
	require.NoError(t, err)
	assert.Equal(t,
		`{"conditions":[{"key":{"code":3,"name":"PROPERTIES"},"relation":"CONTAINS_KEY","value":"k1"}],"ids":["1"],"orders":[],"result_type":"vertex"}`,
		string(data))
}
