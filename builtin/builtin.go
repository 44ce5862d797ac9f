// Package builtin supplies the default primitive procedure table for the
// skeem interpreter.  The core evaluator never imports this package; the
// table is injected through lisp.NewGlobalEnv, and primitives that need an
// environment or an output stream (load, display, ...) are constructed
// against one in io.go.
package builtin

import (
	"strings"

	"github.com/skeem-lang/skeem/lisp"
)

type primitive struct {
	name string
	fn   lisp.PrimitiveFn
}

var primitives = []primitive{
	{"+", numericFold(func(a, b int64) (int64, error) { return a + b, nil })},
	{"-", numericFold(func(a, b int64) (int64, error) { return a - b, nil })},
	{"*", numericFold(func(a, b int64) (int64, error) { return a * b, nil })},
	{"/", numericFold(intDiv)},
	{"mod", numericBinop(intMod)},
	{"quotient", numericBinop(intDiv)},
	{"remainder", numericBinop(intRem)},
	{"=", numBoolBinop(func(a, b int64) bool { return a == b })},
	{"/=", numBoolBinop(func(a, b int64) bool { return a != b })},
	{"<", numBoolBinop(func(a, b int64) bool { return a < b })},
	{">", numBoolBinop(func(a, b int64) bool { return a > b })},
	{"<=", numBoolBinop(func(a, b int64) bool { return a <= b })},
	{">=", numBoolBinop(func(a, b int64) bool { return a >= b })},
	{"&&", boolBoolBinop(func(a, b bool) bool { return a && b })},
	{"||", boolBoolBinop(func(a, b bool) bool { return a || b })},
	{"not", builtinNot},
	{"string=?", strBoolBinop(func(a, b string) bool { return a == b })},
	{"string<?", strBoolBinop(func(a, b string) bool { return a < b })},
	{"string>?", strBoolBinop(func(a, b string) bool { return a > b })},
	{"string<=?", strBoolBinop(func(a, b string) bool { return a <= b })},
	{"string>=?", strBoolBinop(func(a, b string) bool { return a >= b })},
	{"string-length", builtinStringLength},
	{"string-append", builtinStringAppend},
	{"symbol->string", builtinSymbolToString},
	{"string->symbol", builtinStringToSymbol},
	{"car", builtinCAR},
	{"cdr", builtinCDR},
	{"cons", builtinCons},
	{"list", builtinList},
	{"length", builtinLength},
	{"eq?", builtinEqv},
	{"eqv?", builtinEqv},
	{"equal?", builtinEqv},
	{"symbol?", typePredicate(lisp.LAtom)},
	{"string?", typePredicate(lisp.LString)},
	{"number?", typePredicate(lisp.LNumber)},
	{"boolean?", typePredicate(lisp.LBool)},
	{"char?", typePredicate(lisp.LChar)},
	{"list?", builtinIsList},
	{"null?", builtinIsNull},
	{"procedure?", builtinIsProcedure},
	{"apply", builtinApply},
}

// Primitives returns the default primitive table, suitable for
// lisp.NewGlobalEnv.
func Primitives() map[string]lisp.PrimitiveFn {
	table := make(map[string]lisp.PrimitiveFn, len(primitives))
	for _, p := range primitives {
		table[p.name] = p.fn
	}
	return table
}

func wantNumber(v *lisp.LVal) (int64, error) {
	if v.Type != lisp.LNumber {
		return 0, &lisp.TypeMismatchError{Expected: "number", Value: v}
	}
	return v.Num, nil
}

func wantString(v *lisp.LVal) (string, error) {
	if v.Type != lisp.LString {
		return "", &lisp.TypeMismatchError{Expected: "string", Value: v}
	}
	return v.Str, nil
}

func wantBool(v *lisp.LVal) (bool, error) {
	if v.Type != lisp.LBool {
		return false, &lisp.TypeMismatchError{Expected: "boolean", Value: v}
	}
	return v.Flag, nil
}

func intDiv(a, b int64) (int64, error) {
	if b == 0 {
		return 0, lisp.Errorf("division by zero")
	}
	return a / b, nil
}

func intMod(a, b int64) (int64, error) {
	if b == 0 {
		return 0, lisp.Errorf("division by zero")
	}
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m, nil
}

func intRem(a, b int64) (int64, error) {
	if b == 0 {
		return 0, lisp.Errorf("division by zero")
	}
	return a % b, nil
}

// numericFold folds op over two or more numeric arguments.
func numericFold(op func(a, b int64) (int64, error)) lisp.PrimitiveFn {
	return func(args []*lisp.LVal) (*lisp.LVal, error) {
		if len(args) < 2 {
			return nil, &lisp.NumArgsError{Expected: 2, Variadic: true, Args: args}
		}
		acc, err := wantNumber(args[0])
		if err != nil {
			return nil, err
		}
		for _, arg := range args[1:] {
			x, err := wantNumber(arg)
			if err != nil {
				return nil, err
			}
			acc, err = op(acc, x)
			if err != nil {
				return nil, err
			}
		}
		return lisp.Number(acc), nil
	}
}

func numericBinop(op func(a, b int64) (int64, error)) lisp.PrimitiveFn {
	return func(args []*lisp.LVal) (*lisp.LVal, error) {
		if len(args) != 2 {
			return nil, &lisp.NumArgsError{Expected: 2, Args: args}
		}
		a, err := wantNumber(args[0])
		if err != nil {
			return nil, err
		}
		b, err := wantNumber(args[1])
		if err != nil {
			return nil, err
		}
		x, err := op(a, b)
		if err != nil {
			return nil, err
		}
		return lisp.Number(x), nil
	}
}

func numBoolBinop(op func(a, b int64) bool) lisp.PrimitiveFn {
	return func(args []*lisp.LVal) (*lisp.LVal, error) {
		if len(args) != 2 {
			return nil, &lisp.NumArgsError{Expected: 2, Args: args}
		}
		a, err := wantNumber(args[0])
		if err != nil {
			return nil, err
		}
		b, err := wantNumber(args[1])
		if err != nil {
			return nil, err
		}
		return lisp.Bool(op(a, b)), nil
	}
}

func boolBoolBinop(op func(a, b bool) bool) lisp.PrimitiveFn {
	return func(args []*lisp.LVal) (*lisp.LVal, error) {
		if len(args) != 2 {
			return nil, &lisp.NumArgsError{Expected: 2, Args: args}
		}
		a, err := wantBool(args[0])
		if err != nil {
			return nil, err
		}
		b, err := wantBool(args[1])
		if err != nil {
			return nil, err
		}
		return lisp.Bool(op(a, b)), nil
	}
}

func strBoolBinop(op func(a, b string) bool) lisp.PrimitiveFn {
	return func(args []*lisp.LVal) (*lisp.LVal, error) {
		if len(args) != 2 {
			return nil, &lisp.NumArgsError{Expected: 2, Args: args}
		}
		a, err := wantString(args[0])
		if err != nil {
			return nil, err
		}
		b, err := wantString(args[1])
		if err != nil {
			return nil, err
		}
		return lisp.Bool(op(a, b)), nil
	}
}

func builtinNot(args []*lisp.LVal) (*lisp.LVal, error) {
	if len(args) != 1 {
		return nil, &lisp.NumArgsError{Expected: 1, Args: args}
	}
	return lisp.Bool(!args[0].Truthy()), nil
}

func builtinStringLength(args []*lisp.LVal) (*lisp.LVal, error) {
	if len(args) != 1 {
		return nil, &lisp.NumArgsError{Expected: 1, Args: args}
	}
	s, err := wantString(args[0])
	if err != nil {
		return nil, err
	}
	return lisp.Number(int64(len([]rune(s)))), nil
}

func builtinStringAppend(args []*lisp.LVal) (*lisp.LVal, error) {
	var buf strings.Builder
	for _, arg := range args {
		s, err := wantString(arg)
		if err != nil {
			return nil, err
		}
		buf.WriteString(s)
	}
	return lisp.String(buf.String()), nil
}

func builtinSymbolToString(args []*lisp.LVal) (*lisp.LVal, error) {
	if len(args) != 1 {
		return nil, &lisp.NumArgsError{Expected: 1, Args: args}
	}
	if args[0].Type != lisp.LAtom {
		return nil, &lisp.TypeMismatchError{Expected: "symbol", Value: args[0]}
	}
	return lisp.String(args[0].Str), nil
}

func builtinStringToSymbol(args []*lisp.LVal) (*lisp.LVal, error) {
	if len(args) != 1 {
		return nil, &lisp.NumArgsError{Expected: 1, Args: args}
	}
	s, err := wantString(args[0])
	if err != nil {
		return nil, err
	}
	return lisp.Atom(s), nil
}

func builtinCAR(args []*lisp.LVal) (*lisp.LVal, error) {
	if len(args) != 1 {
		return nil, &lisp.NumArgsError{Expected: 1, Args: args}
	}
	v := args[0]
	switch {
	case v.Type == lisp.LList && len(v.Cells) > 0:
		return v.Cells[0], nil
	case v.Type == lisp.LDotted && len(v.Cells) > 0:
		return v.Cells[0], nil
	default:
		return nil, &lisp.TypeMismatchError{Expected: "pair", Value: v}
	}
}

func builtinCDR(args []*lisp.LVal) (*lisp.LVal, error) {
	if len(args) != 1 {
		return nil, &lisp.NumArgsError{Expected: 1, Args: args}
	}
	v := args[0]
	switch {
	case v.Type == lisp.LList && len(v.Cells) > 0:
		return lisp.List(v.Cells[1:]...), nil
	case v.Type == lisp.LDotted && len(v.Cells) == 1:
		return v.Tail, nil
	case v.Type == lisp.LDotted && len(v.Cells) > 1:
		return lisp.DottedList(v.Cells[1:], v.Tail), nil
	default:
		return nil, &lisp.TypeMismatchError{Expected: "pair", Value: v}
	}
}

func builtinCons(args []*lisp.LVal) (*lisp.LVal, error) {
	if len(args) != 2 {
		return nil, &lisp.NumArgsError{Expected: 2, Args: args}
	}
	head, tail := args[0], args[1]
	switch tail.Type {
	case lisp.LList:
		cells := make([]*lisp.LVal, 0, len(tail.Cells)+1)
		cells = append(cells, head)
		cells = append(cells, tail.Cells...)
		return lisp.List(cells...), nil
	case lisp.LDotted:
		cells := make([]*lisp.LVal, 0, len(tail.Cells)+1)
		cells = append(cells, head)
		cells = append(cells, tail.Cells...)
		return lisp.DottedList(cells, tail.Tail), nil
	default:
		return lisp.DottedList([]*lisp.LVal{head}, tail), nil
	}
}

func builtinList(args []*lisp.LVal) (*lisp.LVal, error) {
	return lisp.List(args...), nil
}

func builtinLength(args []*lisp.LVal) (*lisp.LVal, error) {
	if len(args) != 1 {
		return nil, &lisp.NumArgsError{Expected: 1, Args: args}
	}
	if args[0].Type != lisp.LList {
		return nil, &lisp.TypeMismatchError{Expected: "list", Value: args[0]}
	}
	return lisp.Number(int64(len(args[0].Cells))), nil
}

func builtinEqv(args []*lisp.LVal) (*lisp.LVal, error) {
	if len(args) != 2 {
		return nil, &lisp.NumArgsError{Expected: 2, Args: args}
	}
	return lisp.Bool(args[0].Equal(args[1])), nil
}

func typePredicate(t lisp.LType) lisp.PrimitiveFn {
	return func(args []*lisp.LVal) (*lisp.LVal, error) {
		if len(args) != 1 {
			return nil, &lisp.NumArgsError{Expected: 1, Args: args}
		}
		return lisp.Bool(args[0].Type == t), nil
	}
}

func builtinIsList(args []*lisp.LVal) (*lisp.LVal, error) {
	if len(args) != 1 {
		return nil, &lisp.NumArgsError{Expected: 1, Args: args}
	}
	return lisp.Bool(args[0].Type == lisp.LList), nil
}

func builtinIsNull(args []*lisp.LVal) (*lisp.LVal, error) {
	if len(args) != 1 {
		return nil, &lisp.NumArgsError{Expected: 1, Args: args}
	}
	return lisp.Bool(args[0].IsNil()), nil
}

func builtinIsProcedure(args []*lisp.LVal) (*lisp.LVal, error) {
	if len(args) != 1 {
		return nil, &lisp.NumArgsError{Expected: 1, Args: args}
	}
	return lisp.Bool(args[0].IsProcedure()), nil
}

// (apply f arg-list) spreads a final proper list into the argument
// positions; otherwise every remaining argument is passed through.
func builtinApply(args []*lisp.LVal) (*lisp.LVal, error) {
	if len(args) < 1 {
		return nil, &lisp.NumArgsError{Expected: 1, Variadic: true, Args: args}
	}
	fn := args[0]
	rest := args[1:]
	if len(rest) > 0 && rest[len(rest)-1].Type == lisp.LList {
		spread := make([]*lisp.LVal, 0, len(rest)-1+len(rest[len(rest)-1].Cells))
		spread = append(spread, rest[:len(rest)-1]...)
		spread = append(spread, rest[len(rest)-1].Cells...)
		rest = spread
	}
	return lisp.Apply(fn, rest)
}
