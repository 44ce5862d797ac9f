package builtin

import (
	"fmt"
	"io"
	"os"

	"github.com/skeem-lang/skeem/lisp"
	"github.com/skeem-lang/skeem/parser"
)

// The primitives here need collaborators the core signature does not carry
// (the environment to evaluate in, the stream to print to), so they are
// constructed against one instead of appearing in the static table.

// Load returns the load primitive bound to env: (load "path") parses the
// file and evaluates each top-level form in env, yielding the value of the
// last form.
func Load(env *lisp.LEnv) lisp.PrimitiveFn {
	return func(args []*lisp.LVal) (*lisp.LVal, error) {
		if len(args) != 1 {
			return nil, &lisp.NumArgsError{Expected: 1, Args: args}
		}
		path, err := wantString(args[0])
		if err != nil {
			return nil, err
		}
		return LoadFile(env, path)
	}
}

// LoadFile evaluates every top-level form in the named file against env
// and returns the last value.  A file with no forms yields the empty list.
func LoadFile(env *lisp.LEnv, path string) (*lisp.LVal, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, lisp.Errorf("load: %v", err)
	}
	forms, err := parser.ParseAll(source)
	if err != nil {
		return nil, err
	}
	ret := lisp.Nil()
	for _, form := range forms {
		ret, err = lisp.Eval(env, form)
		if err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// ReadString returns the read-string primitive: (read-string "(+ 1 2)")
// parses one expression from the string without evaluating it.
func ReadString() lisp.PrimitiveFn {
	return func(args []*lisp.LVal) (*lisp.LVal, error) {
		if len(args) != 1 {
			return nil, &lisp.NumArgsError{Expected: 1, Args: args}
		}
		s, err := wantString(args[0])
		if err != nil {
			return nil, err
		}
		return parser.Parse([]byte(s))
	}
}

// Display returns the display primitive writing to w: strings print raw,
// characters print as themselves, everything else prints canonically.
func Display(w io.Writer) lisp.PrimitiveFn {
	return func(args []*lisp.LVal) (*lisp.LVal, error) {
		if len(args) != 1 {
			return nil, &lisp.NumArgsError{Expected: 1, Args: args}
		}
		v := args[0]
		switch v.Type {
		case lisp.LString:
			fmt.Fprint(w, v.Str)
		case lisp.LChar:
			fmt.Fprint(w, string(v.Char))
		default:
			fmt.Fprint(w, v)
		}
		return lisp.Nil(), nil
	}
}

// Write returns the write primitive writing the canonical form to w.
func Write(w io.Writer) lisp.PrimitiveFn {
	return func(args []*lisp.LVal) (*lisp.LVal, error) {
		if len(args) != 1 {
			return nil, &lisp.NumArgsError{Expected: 1, Args: args}
		}
		fmt.Fprint(w, args[0])
		return lisp.Nil(), nil
	}
}

// Newline returns the newline primitive.
func Newline(w io.Writer) lisp.PrimitiveFn {
	return func(args []*lisp.LVal) (*lisp.LVal, error) {
		if len(args) != 0 {
			return nil, &lisp.NumArgsError{Expected: 0, Args: args}
		}
		fmt.Fprintln(w)
		return lisp.Nil(), nil
	}
}

// NewEnv returns a global environment carrying the default primitive
// table plus the env-bound I/O primitives targeting w.  This is the
// environment the REPL and the run command start from.
func NewEnv(w io.Writer) *lisp.LEnv {
	env := lisp.NewGlobalEnv(Primitives())
	env.Define("load", lisp.Primitive("load", Load(env)))
	env.Define("read-string", lisp.Primitive("read-string", ReadString()))
	env.Define("display", lisp.Primitive("display", Display(w)))
	env.Define("write", lisp.Primitive("write", Write(w)))
	env.Define("newline", lisp.Primitive("newline", Newline(w)))
	return env
}
