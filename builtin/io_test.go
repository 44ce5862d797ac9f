package builtin

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skeem-lang/skeem/lisp"
)

func TestDisplay(t *testing.T) {
	var buf bytes.Buffer
	display := Display(&buf)

	_, err := display([]*lisp.LVal{lisp.String("a\"b")})
	require.NoError(t, err)
	_, err = display([]*lisp.LVal{lisp.Char('x')})
	require.NoError(t, err)
	_, err = display([]*lisp.LVal{lisp.List(lisp.Number(1), lisp.String("s"))})
	require.NoError(t, err)

	// strings and characters print raw; aggregates print canonically
	assert.Equal(t, `a"bx(1 "s")`, buf.String())
}

func TestWriteAndNewline(t *testing.T) {
	var buf bytes.Buffer
	write := Write(&buf)
	newline := Newline(&buf)

	_, err := write([]*lisp.LVal{lisp.String("a\"b")})
	require.NoError(t, err)
	_, err = newline(nil)
	require.NoError(t, err)
	_, err = write([]*lisp.LVal{lisp.Char(' ')})
	require.NoError(t, err)
	assert.Equal(t, "\"a\\\"b\"\n#\\space", buf.String())

	_, err = newline([]*lisp.LVal{lisp.Number(1)})
	require.Error(t, err)
}

func TestReadString(t *testing.T) {
	read := ReadString()
	v, err := read([]*lisp.LVal{lisp.String("(+ 1 2)")})
	require.NoError(t, err)
	// the expression is parsed, not evaluated
	assert.Equal(t, "(+ 1 2)", v.String())

	_, err = read([]*lisp.LVal{lisp.String("(1 2")})
	require.Error(t, err)
	_, err = read([]*lisp.LVal{lisp.Number(1)})
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.scm")
	src := "; library\n(define (double x) (* x 2))\n(double 21)\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))

	env := NewEnv(&bytes.Buffer{})
	v, err := LoadFile(env, path)
	require.NoError(t, err)
	assert.Equal(t, "42", v.String())

	// definitions persist in the target environment
	fn, err := env.Get("double")
	require.NoError(t, err)
	assert.Equal(t, lisp.LLambda, fn.Type)

	empty := filepath.Join(dir, "empty.scm")
	require.NoError(t, os.WriteFile(empty, []byte("; nothing\n"), 0600))
	v, err = LoadFile(env, empty)
	require.NoError(t, err)
	assert.True(t, v.IsNil())

	_, err = LoadFile(env, filepath.Join(dir, "missing.scm"))
	require.Error(t, err)
}

func TestLoadPrimitive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.scm")
	require.NoError(t, os.WriteFile(path, []byte("(define answer 42)\n"), 0600))

	var buf bytes.Buffer
	env := NewEnv(&buf)
	load, err := env.Get("load")
	require.NoError(t, err)
	require.Equal(t, lisp.LPrimitive, load.Type)

	_, err = lisp.Apply(load, []*lisp.LVal{lisp.String(path)})
	require.NoError(t, err)
	v, err := env.Get("answer")
	require.NoError(t, err)
	assert.Equal(t, "42", v.String())
}

func TestNewEnvBindings(t *testing.T) {
	env := NewEnv(&bytes.Buffer{})
	for _, name := range []string{
		"load", "read-string", "display", "write", "newline", "+", "car", "apply",
	} {
		v, err := env.Get(name)
		require.NoError(t, err, name)
		assert.Equal(t, lisp.LPrimitive, v.Type, name)
	}
}
