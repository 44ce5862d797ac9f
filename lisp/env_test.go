package lisp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertNumber(t *testing.T, expect int64, v *LVal) {
	t.Helper()
	if assert.Equal(t, LNumber, v.Type) {
		assert.Equal(t, expect, v.Num)
	}
}

func TestEnvDefineGetSet(t *testing.T) {
	env := NewEnv()
	assert.False(t, env.IsBound("x"))

	_, err := env.Get("x")
	var unbound *UnboundVarError
	require.True(t, errors.As(err, &unbound))
	assert.Equal(t, "x", unbound.Name)

	_, err = env.Set("x", Number(1))
	require.True(t, errors.As(err, &unbound))

	env.Define("x", Number(1))
	assert.True(t, env.IsBound("x"))
	v, err := env.Get("x")
	require.NoError(t, err)
	assertNumber(t, 1, v)

	v, err = env.Set("x", Number(2))
	require.NoError(t, err)
	assertNumber(t, 2, v)
	v, err = env.Get("x")
	require.NoError(t, err)
	assertNumber(t, 2, v)

	// define on a bound name behaves like set
	env.Define("x", Number(3))
	v, err = env.Get("x")
	require.NoError(t, err)
	assertNumber(t, 3, v)
	assert.Equal(t, 1, env.Len())
}

func TestBindShadowing(t *testing.T) {
	env := NewEnv()
	env.Define("x", Number(1))
	env.Define("y", Number(2))

	child := env.Bind([]Binding{{Name: "x", Value: Number(10)}})
	v, err := child.Get("x")
	require.NoError(t, err)
	assertNumber(t, 10, v)
	v, err = child.Get("y")
	require.NoError(t, err)
	assertNumber(t, 2, v)

	// the parent's binding is untouched
	v, err = env.Get("x")
	require.NoError(t, err)
	assertNumber(t, 1, v)

	// duplicates within one Bind call: the earlier entry wins lookup
	dup := env.Bind([]Binding{
		{Name: "z", Value: Number(1)},
		{Name: "z", Value: Number(2)},
	})
	v, err = dup.Get("z")
	require.NoError(t, err)
	assertNumber(t, 1, v)
}

func TestBindSharesCells(t *testing.T) {
	env := NewEnv()
	env.Define("x", Number(1))
	child := env.Bind([]Binding{{Name: "y", Value: Number(2)}})

	// mutation through the child frame is visible through the parent
	_, err := child.Set("x", Number(100))
	require.NoError(t, err)
	v, err := env.Get("x")
	require.NoError(t, err)
	assertNumber(t, 100, v)

	// and the other way around
	_, err = env.Set("x", Number(7))
	require.NoError(t, err)
	v, err = child.Get("x")
	require.NoError(t, err)
	assertNumber(t, 7, v)

	// the child's own bindings never leak into the parent
	assert.False(t, env.IsBound("y"))
}

func TestBindSnapshots(t *testing.T) {
	env := NewEnv()
	env.Define("x", Number(1))
	child := env.Bind(nil)

	// a define on the parent after Bind is not visible to the child,
	// which holds a snapshot of the binding list
	env.Define("later", Number(1))
	assert.False(t, child.IsBound("later"))

	// but a define on the same *LEnv is visible to every holder
	alias := child
	child.Define("z", Number(3))
	assert.True(t, alias.IsBound("z"))
}

func TestNewGlobalEnv(t *testing.T) {
	calls := 0
	env := NewGlobalEnv(map[string]PrimitiveFn{
		"touch": func(args []*LVal) (*LVal, error) {
			calls++
			return Nil(), nil
		},
	})
	v, err := env.Get("touch")
	require.NoError(t, err)
	require.Equal(t, LPrimitive, v.Type)
	assert.Equal(t, "touch", v.Str)
	_, err = Apply(v, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
