package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meko-tech/jsengine/internal/runtime/values"
)

func TestDeclareAndGet(t *testing.T) {
	g := NewGlobal(values.NewObject(nil))
	g.Declare("x", SlotLet, true)
	g.Initialize("x", values.Number(42))

	v, err := g.Get("x")
	require.NoError(t, err)
	assert.Equal(t, values.Number(42), v)
}

func TestTDZBlocksRead(t *testing.T) {
	g := NewGlobal(values.NewObject(nil))
	g.Declare("x", SlotLet, false)

	_, err := g.Get("x")
	require.Error(t, err)
	refErr, ok := err.(*ReferenceError)
	require.True(t, ok)
	assert.True(t, refErr.TDZ)
}

func TestConstReassignmentFails(t *testing.T) {
	g := NewGlobal(values.NewObject(nil))
	g.Declare("x", SlotConst, true)
	g.Initialize("x", values.Number(1))

	err := g.Set("x", values.Number(2))
	require.Error(t, err)
	_, ok := err.(*TypeError)
	assert.True(t, ok)
}

func TestVarHoistsToFunctionScope(t *testing.T) {
	g := NewGlobal(values.NewObject(nil))
	fn := NewFunctionScope(g, values.TheUndefined, nil)
	block := NewBlock(fn)

	block.DeclareVar("hoisted")
	assert.True(t, fn.Has("hoisted"))
	assert.False(t, func() bool { _, ok := block.GetOwn("hoisted"); return ok }())
}

func TestSetWalksOuterScopes(t *testing.T) {
	g := NewGlobal(values.NewObject(nil))
	g.Declare("x", SlotVar, true)
	g.Initialize("x", values.Number(1))

	inner := NewBlock(g)
	require.NoError(t, inner.Set("x", values.Number(99)))

	v, err := g.Get("x")
	require.NoError(t, err)
	assert.Equal(t, values.Number(99), v)
}

func TestArrowScopeInheritsThis(t *testing.T) {
	g := NewGlobal(values.NewObject(nil))
	this := values.NewObject(nil)
	fn := NewFunctionScope(g, this, nil)
	arrow := NewArrowScope(fn)

	assert.Same(t, values.Value(this), arrow.This())
}

func TestUnboundGetIsReferenceError(t *testing.T) {
	g := NewGlobal(values.NewObject(nil))
	_, err := g.Get("nope")
	require.Error(t, err)
	refErr, ok := err.(*ReferenceError)
	require.True(t, ok)
	assert.False(t, refErr.TDZ)
}
