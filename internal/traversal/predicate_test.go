package traversal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/pushdown/internal/ir"
)

func TestCompare_Test(t *testing.T) {
	tests := []struct {
		name string
		p    Predicate
		v    ir.IRValue
		want bool
	}{
		{"eq match", Eq(ir.IRInt(18)), ir.IRInt(18), true},
		{"eq kind mismatch", Eq(ir.IRInt(18)), ir.IRString("18"), false},
		{"neq", Neq(ir.IRString("x")), ir.IRString("y"), true},
		{"gt", Gt(ir.IRInt(18)), ir.IRInt(19), true},
		{"gt boundary", Gt(ir.IRInt(18)), ir.IRInt(18), false},
		{"gte boundary", Gte(ir.IRInt(18)), ir.IRInt(18), true},
		{"lt strings", Lt(ir.IRString("m")), ir.IRString("a"), true},
		{"lte", Lte(ir.IRInt(5)), ir.IRInt(6), false},
		{"gt incomparable", Gt(ir.IRInt(1)), ir.IRString("z"), false},
		{"unknown op", Compare{Op: "regex", Value: ir.IRString("a.*")}, ir.IRString("abc"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Test(tt.v))
		})
	}
}

func TestSetMembership_Test(t *testing.T) {
	within := Within(ir.IRString("a"), ir.IRString("b"))
	assert.True(t, within.Test(ir.IRString("a")))
	assert.False(t, within.Test(ir.IRString("c")))

	without := Without(ir.IRString("a"), ir.IRString("b"))
	assert.False(t, without.Test(ir.IRString("a")))
	assert.True(t, without.Test(ir.IRString("c")))

	assert.False(t, Within().Test(ir.IRString("a")), "empty within matches nothing")
	assert.True(t, Without().Test(ir.IRString("a")), "empty without matches everything")
}

func TestRangeShorthands(t *testing.T) {
	inside := Inside(ir.IRInt(18), ir.IRInt(65))
	assert.False(t, inside.Test(ir.IRInt(18)))
	assert.True(t, inside.Test(ir.IRInt(30)))
	assert.False(t, inside.Test(ir.IRInt(65)))

	between := Between(ir.IRInt(18), ir.IRInt(65))
	assert.True(t, between.Test(ir.IRInt(18)))
	assert.False(t, between.Test(ir.IRInt(65)))

	outside := Outside(ir.IRInt(1), ir.IRInt(10))
	assert.True(t, outside.Test(ir.IRInt(0)))
	assert.False(t, outside.Test(ir.IRInt(5)))
	assert.True(t, outside.Test(ir.IRInt(11)))
}

func TestPredicateString(t *testing.T) {
	assert.Equal(t, "gt(18)", Gt(ir.IRInt(18)).String())
	assert.Equal(t, `within(["a", "b"])`, Within(ir.IRString("a"), ir.IRString("b")).String())
	assert.Equal(t, "and(gte(18), lt(65))", Between(ir.IRInt(18), ir.IRInt(65)).String())
	assert.Equal(t, "or(lt(1), gt(10))", Outside(ir.IRInt(1), ir.IRInt(10)).String())
}
