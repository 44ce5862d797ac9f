// Package skeemtest provides a harness for whole-language tests: tables
// of source expressions paired with their expected rendered results.
package skeemtest

import (
	"io"
	"testing"

	"github.com/skeem-lang/skeem/builtin"
	"github.com/skeem-lang/skeem/lisp"
	"github.com/skeem-lang/skeem/parser"
)

// TestSequence is a sequence of scheme expressions which are evaluated
// sequentially against a single environment.
type TestSequence []struct {
	Expr   string // a scheme expression
	Result string // the rendered result value, or the rendered error
}

// TestSuite is a set of named TestSequences.
type TestSuite []struct {
	Name string
	TestSequence
}

// RunTestSuite runs each TestSequence in tests on an isolated global
// environment carrying the default primitive table.
func RunTestSuite(t *testing.T, tests TestSuite) {
	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			env := builtin.NewEnv(io.Discard)
			for j, expr := range test.TestSequence {
				v, err := parser.Parse([]byte(expr.Expr))
				if err != nil {
					if err.Error() != expr.Result {
						t.Errorf("expr %d %q: parse error: %v", j, expr.Expr, err)
					}
					continue
				}
				r, err := lisp.Eval(env, v)
				var result string
				if err != nil {
					result = err.Error()
				} else {
					result = r.String()
				}
				if result != expr.Result {
					t.Errorf("expr %d %q: expected result %s (got %s)", j, expr.Expr, expr.Result, result)
				}
			}
		})
	}
}
