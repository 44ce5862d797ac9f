// Package lisp implements the core of the skeem interpreter: the value
// model, the error taxonomy, the mutable lexical environment, and the
// evaluator.  Parsing lives in the parser package and the set of primitive
// procedures is injected through NewGlobalEnv -- the core never hard-codes
// primitive behavior.
package lisp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// LType is the type of an LVal.
type LType uint

// Possible LType values.
const (
	LInvalid LType = iota
	LAtom
	LNumber
	LString
	LBool
	LChar
	LList
	LDotted
	LPrimitive
	LLambda
)

var ltypeStrings = []string{
	LInvalid:   "INVALID",
	LAtom:      "symbol",
	LNumber:    "number",
	LString:    "string",
	LBool:      "boolean",
	LChar:      "character",
	LList:      "list",
	LDotted:    "dotted-list",
	LPrimitive: "primitive",
	LLambda:    "lambda",
}

func (t LType) String() string {
	if int(t) >= len(ltypeStrings) {
		return ltypeStrings[LInvalid]
	}
	return ltypeStrings[t]
}

// PrimitiveFn is the native implementation of a primitive procedure.  The
// arguments have already been evaluated.  A PrimitiveFn returns a value or
// an error from the taxonomy in error.go; either propagates to the caller
// of Eval untouched.
type PrimitiveFn func(args []*LVal) (*LVal, error)

// LVal is a lisp value, a closed tagged union.  The Type tag determines
// which fields are meaningful.  Lists and dotted lists are immutable once
// constructed; sharing cells between values is safe.  A lambda's Env is a
// shared reference to the frame that was active at its creation, never a
// copy, so mutation through set! and define is visible to every closure
// aliasing that frame.
type LVal struct {
	Type LType

	Str  string // atom name, string text, or primitive identity
	Num  int64
	Char rune
	Flag bool

	Cells []*LVal // list elements, or the head of a dotted list
	Tail  *LVal   // dotted list tail

	// Procedure fields
	Fn     PrimitiveFn
	Params []string
	Vararg string // rest parameter name; "" for fixed arity
	Body   []*LVal
	Env    *LEnv
}

// Atom returns an LVal representing the symbol name.
func Atom(name string) *LVal {
	return &LVal{Type: LAtom, Str: name}
}

// Number returns an LVal representing the integer x.
func Number(x int64) *LVal {
	return &LVal{Type: LNumber, Num: x}
}

// String returns an LVal representing the string s.
func String(s string) *LVal {
	return &LVal{Type: LString, Str: s}
}

// Bool returns an LVal representing the boolean b.
func Bool(b bool) *LVal {
	return &LVal{Type: LBool, Flag: b}
}

// Char returns an LVal representing the character c.
func Char(c rune) *LVal {
	return &LVal{Type: LChar, Char: c}
}

// List returns an LVal representing the proper list with the given cells.
func List(cells ...*LVal) *LVal {
	return &LVal{Type: LList, Cells: cells}
}

// Nil returns an LVal representing the empty list.
func Nil() *LVal {
	return List()
}

// DottedList returns an LVal representing the improper list terminated by
// tail.
func DottedList(cells []*LVal, tail *LVal) *LVal {
	return &LVal{Type: LDotted, Cells: cells, Tail: tail}
}

// Primitive returns an LVal wrapping the native function fn.  The name is
// the procedure's identity, used for printing and equivalence.
func Primitive(name string, fn PrimitiveFn) *LVal {
	return &LVal{Type: LPrimitive, Str: name, Fn: fn}
}

// Lambda returns an LVal representing a closure over env.  A non-empty
// vararg names the rest parameter collecting surplus arguments.
func Lambda(params []string, vararg string, body []*LVal, env *LEnv) *LVal {
	return &LVal{Type: LLambda, Params: params, Vararg: vararg, Body: body, Env: env}
}

// IsNil returns true if v is the empty list.
func (v *LVal) IsNil() bool {
	return v.Type == LList && len(v.Cells) == 0
}

// IsProcedure returns true if v can be applied.
func (v *LVal) IsProcedure() bool {
	return v.Type == LPrimitive || v.Type == LLambda
}

// Truthy returns the condition value of v.  Only the boolean false is
// falsy; every other value, including 0, "" and the empty list, is truthy.
func (v *LVal) Truthy() bool {
	return v.Type != LBool || v.Flag
}

// Equal reports structural equivalence between v and u.  Primitives
// compare by identity name; lambdas only by pointer identity.
func (v *LVal) Equal(u *LVal) bool {
	if v == u {
		return true
	}
	if v == nil || u == nil || v.Type != u.Type {
		return false
	}
	switch v.Type {
	case LAtom, LString, LPrimitive:
		return v.Str == u.Str
	case LNumber:
		return v.Num == u.Num
	case LBool:
		return v.Flag == u.Flag
	case LChar:
		return v.Char == u.Char
	case LList:
		return cellsEqual(v.Cells, u.Cells)
	case LDotted:
		return cellsEqual(v.Cells, u.Cells) && v.Tail.Equal(u.Tail)
	default:
		return false
	}
}

func cellsEqual(a, b []*LVal) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// String renders v in its canonical text form.  For atoms, numbers,
// strings, booleans, characters and (dotted) lists the output parses back
// to an equivalent value.
func (v *LVal) String() string {
	switch v.Type {
	case LAtom:
		return v.Str
	case LNumber:
		return strconv.FormatInt(v.Num, 10)
	case LString:
		return quoteString(v.Str)
	case LBool:
		if v.Flag {
			return "#t"
		}
		return "#f"
	case LChar:
		return charString(v.Char)
	case LList:
		return exprString(v.Cells, nil)
	case LDotted:
		return exprString(v.Cells, v.Tail)
	case LPrimitive:
		return fmt.Sprintf("#<primitive %s>", v.Str)
	case LLambda:
		return lambdaString(v)
	default:
		return fmt.Sprintf("%#v", v)
	}
}

func exprString(cells []*LVal, tail *LVal) string {
	var buf bytes.Buffer
	buf.WriteString("(")
	for i, c := range cells {
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(c.String())
	}
	if tail != nil {
		buf.WriteString(" . ")
		buf.WriteString(tail.String())
	}
	buf.WriteString(")")
	return buf.String()
}

func lambdaString(v *LVal) string {
	var buf bytes.Buffer
	buf.WriteString("(lambda ")
	if len(v.Params) == 0 && v.Vararg != "" {
		// bare-atom formal list
		buf.WriteString(v.Vararg)
	} else {
		buf.WriteString("(")
		buf.WriteString(strings.Join(v.Params, " "))
		if v.Vararg != "" {
			buf.WriteString(" . ")
			buf.WriteString(v.Vararg)
		}
		buf.WriteString(")")
	}
	for _, b := range v.Body {
		buf.WriteString(" ")
		buf.WriteString(b.String())
	}
	buf.WriteString(")")
	return buf.String()
}

var stringEscapes = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\t", `\t`,
	"\n", `\n`,
	"\r", `\r`,
)

func quoteString(s string) string {
	return `"` + stringEscapes.Replace(s) + `"`
}

// charNames holds the canonical printed name for code points with a named
// literal form.  The parser accepts more aliases than the printer emits
// (altmode and linefeed parse but print as their canonical spellings).
var charNames = map[rune]string{
	0x1b: "altmode",
	0x1f: "backnext",
	0x08: "backspace",
	0x1a: "call",
	0x0a: "newline",
	0x0d: "return",
	0x0c: "page",
	0x7f: "rubout",
	0x09: "tab",
	' ':  "space",
}

func charString(c rune) string {
	if name, ok := charNames[c]; ok {
		return `#\` + name
	}
	return `#\` + string(c)
}
