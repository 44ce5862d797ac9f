package lisp_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skeem-lang/skeem/lisp"
	"github.com/skeem-lang/skeem/parser"
)

func eval(t *testing.T, env *lisp.LEnv, src string) (*lisp.LVal, error) {
	t.Helper()
	v, err := parser.Parse([]byte(src))
	require.NoError(t, err, "source: %s", src)
	return lisp.Eval(env, v)
}

func mustEval(t *testing.T, env *lisp.LEnv, src string) *lisp.LVal {
	t.Helper()
	v, err := eval(t, env, src)
	require.NoError(t, err, "source: %s", src)
	return v
}

func TestSelfEvaluating(t *testing.T) {
	env := lisp.NewEnv()
	for _, src := range []string{"42", `"str"`, "#t", "#f", `#\a`, "()"} {
		v := mustEval(t, env, src)
		assert.Equal(t, src, v.String())
	}
	v := mustEval(t, env, "(quote (1 . 2))")
	assert.Equal(t, lisp.LDotted, v.Type)
}

func TestAtomsEvaluateByLookup(t *testing.T) {
	env := lisp.NewEnv()
	env.Define("x", lisp.Number(5))
	v := mustEval(t, env, "x")
	assert.True(t, v.Equal(lisp.Number(5)))

	_, err := eval(t, env, "missing")
	var unbound *lisp.UnboundVarError
	require.True(t, errors.As(err, &unbound))
	assert.Equal(t, "missing", unbound.Name)
}

func TestIfArity(t *testing.T) {
	env := lisp.NewEnv()
	_, err := eval(t, env, "(if #t 1)")
	var numArgs *lisp.NumArgsError
	require.True(t, errors.As(err, &numArgs))
	assert.Equal(t, 3, numArgs.Expected)
	assert.False(t, numArgs.Variadic)

	_, err = eval(t, env, "(if #t 1 2 3)")
	require.True(t, errors.As(err, &numArgs))
	assert.Equal(t, 3, numArgs.Expected)
}

func TestIfDoesNotEvaluateOtherBranch(t *testing.T) {
	env := lisp.NewEnv()
	// the untaken branch would fail if evaluated
	v := mustEval(t, env, "(if #t 1 missing)")
	assert.True(t, v.Equal(lisp.Number(1)))
	v = mustEval(t, env, "(if #f missing 2)")
	assert.True(t, v.Equal(lisp.Number(2)))
}

func TestClosureArity(t *testing.T) {
	env := lisp.NewEnv()
	mustEval(t, env, "(define (f a b) a)")

	_, err := eval(t, env, "(f 1)")
	var numArgs *lisp.NumArgsError
	require.True(t, errors.As(err, &numArgs))
	assert.Equal(t, 2, numArgs.Expected)
	assert.False(t, numArgs.Variadic)
	assert.Len(t, numArgs.Args, 1)

	_, err = eval(t, env, "(f 1 2 3)")
	require.True(t, errors.As(err, &numArgs))
	assert.Len(t, numArgs.Args, 3)

	mustEval(t, env, "(define (g a . r) a)")
	_, err = eval(t, env, "(g)")
	require.True(t, errors.As(err, &numArgs))
	assert.Equal(t, 1, numArgs.Expected)
	assert.True(t, numArgs.Variadic)
	// one fixed argument plus a rest parameter accepts any count >= 1
	for _, src := range []string{"(g 1)", "(g 1 2)", "(g 1 2 3 4)"} {
		mustEval(t, env, src)
	}
}

func TestVariadicBinding(t *testing.T) {
	env := lisp.NewEnv()
	fn := mustEval(t, env, "(lambda (x . y) (quote ok))")
	require.Equal(t, lisp.LLambda, fn.Type)

	v, err := lisp.Apply(fn, []*lisp.LVal{lisp.Number(1), lisp.Number(2), lisp.Number(3)})
	require.NoError(t, err)
	assert.True(t, v.Equal(lisp.Atom("ok")))

	frame := fn.Env.Bind([]lisp.Binding{{Name: "x", Value: lisp.Number(1)}})
	frame.Define("y", lisp.List(lisp.Number(2), lisp.Number(3)))
	x, err := frame.Get("x")
	require.NoError(t, err)
	assert.True(t, x.Equal(lisp.Number(1)))
	y, err := frame.Get("y")
	require.NoError(t, err)
	assert.True(t, y.Equal(lisp.List(lisp.Number(2), lisp.Number(3))))
}

func TestClosureCapturesEnvByReference(t *testing.T) {
	env := lisp.NewEnv()
	mustEval(t, env, "(define x 1)")
	fn := mustEval(t, env, "(lambda () x)")

	v, err := lisp.Apply(fn, nil)
	require.NoError(t, err)
	assert.True(t, v.Equal(lisp.Number(1)))

	mustEval(t, env, "(set! x 2)")
	v, err = lisp.Apply(fn, nil)
	require.NoError(t, err)
	assert.True(t, v.Equal(lisp.Number(2)))
}

func TestApplyNonProcedure(t *testing.T) {
	env := lisp.NewEnv()
	_, err := eval(t, env, "(1 2 3)")
	var mismatch *lisp.TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "procedure", mismatch.Expected)
	assert.True(t, mismatch.Value.Equal(lisp.Number(1)))
}

func TestBadSpecialForms(t *testing.T) {
	env := lisp.NewEnv()
	for _, src := range []string{
		"(quote)",
		"(quote 1 2)",
		"(set! 5 1)",
		"(set! x)",
		"(define)",
		"(define 5 1)",
		"(define x 1 2)",
		"(define (f . 5) 1)",
		"(lambda)",
		"(lambda (x 5) x)",
		"(lambda (x))",
		`(lambda "x" x)`,
	} {
		_, err := eval(t, env, src)
		var bad *lisp.BadSpecialFormError
		require.True(t, errors.As(err, &bad), "source %q: error was %v", src, err)
	}
}

func TestDefineFunctionForms(t *testing.T) {
	env := lisp.NewEnv()
	fn := mustEval(t, env, "(define (f x y) y)")
	require.Equal(t, lisp.LLambda, fn.Type)
	assert.Equal(t, []string{"x", "y"}, fn.Params)
	assert.Equal(t, "", fn.Vararg)

	fn = mustEval(t, env, "(define (g x . rest) rest)")
	require.Equal(t, lisp.LLambda, fn.Type)
	assert.Equal(t, []string{"x"}, fn.Params)
	assert.Equal(t, "rest", fn.Vararg)

	fn = mustEval(t, env, "(lambda args args)")
	require.Equal(t, lisp.LLambda, fn.Type)
	assert.Empty(t, fn.Params)
	assert.Equal(t, "args", fn.Vararg)
}

func TestBodySequencing(t *testing.T) {
	env := lisp.NewEnv()
	mustEval(t, env, "(define x 0)")
	mustEval(t, env, "(define (bump) (set! x 1) (set! x 2) x)")
	v := mustEval(t, env, "(bump)")
	assert.True(t, v.Equal(lisp.Number(2)))
}

func TestErrorsShortCircuit(t *testing.T) {
	env := lisp.NewEnv()
	calls := 0
	env.Define("probe", lisp.Primitive("probe", func(args []*lisp.LVal) (*lisp.LVal, error) {
		calls++
		return lisp.Nil(), nil
	}))
	_, err := eval(t, env, "(probe (probe) missing (probe))")
	require.Error(t, err)
	// the failing argument stops evaluation before the third probe call
	assert.Equal(t, 1, calls)
}

func TestPrimitiveErrorsPropagateUntouched(t *testing.T) {
	env := lisp.NewEnv()
	boom := lisp.Errorf("boom")
	env.Define("explode", lisp.Primitive("explode", func(args []*lisp.LVal) (*lisp.LVal, error) {
		return nil, boom
	}))
	_, err := eval(t, env, "(explode)")
	assert.Equal(t, boom, err)
}
