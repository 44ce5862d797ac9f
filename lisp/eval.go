package lisp

// Eval evaluates v in the scope of env and returns the resulting value.
// Strings, numbers, booleans, characters, dotted lists and the empty list
// are self-evaluating.  Atoms evaluate by lookup.  Non-empty lists are
// matched structurally against the special forms before falling through to
// procedure application; the match order is quote, if, set!, define,
// lambda, application.
//
// Eval and Apply recurse on the host call stack with no tail-call
// elimination; deeply recursive lisp code grows the Go stack without
// bound.
func Eval(env *LEnv, v *LVal) (*LVal, error) {
	switch v.Type {
	case LAtom:
		return env.Get(v.Str)
	case LList:
		if len(v.Cells) == 0 {
			return v, nil
		}
		return evalForm(env, v)
	default:
		return v, nil
	}
}

func evalForm(env *LEnv, v *LVal) (*LVal, error) {
	head := v.Cells[0]
	if head.Type == LAtom {
		switch head.Str {
		case "quote":
			return evalQuote(env, v)
		case "if":
			return evalIf(env, v)
		case "set!":
			return evalSet(env, v)
		case "define":
			return evalDefine(env, v)
		case "lambda":
			return evalLambda(env, v)
		}
	}
	return evalApplication(env, v)
}

// (quote x)
func evalQuote(env *LEnv, v *LVal) (*LVal, error) {
	if len(v.Cells) != 2 {
		return nil, &BadSpecialFormError{Message: "malformed quote", Form: v}
	}
	return v.Cells[1], nil
}

// (if pred conseq alt)
//
// Only the boolean false selects alt; every other predicate value is
// truthy.
func evalIf(env *LEnv, v *LVal) (*LVal, error) {
	if len(v.Cells) != 4 {
		return nil, &NumArgsError{Expected: 3, Args: v.Cells[1:]}
	}
	pred, err := Eval(env, v.Cells[1])
	if err != nil {
		return nil, err
	}
	if pred.Truthy() {
		return Eval(env, v.Cells[2])
	}
	return Eval(env, v.Cells[3])
}

// (set! name form)
func evalSet(env *LEnv, v *LVal) (*LVal, error) {
	if len(v.Cells) != 3 || v.Cells[1].Type != LAtom {
		return nil, &BadSpecialFormError{Message: "malformed set!", Form: v}
	}
	val, err := Eval(env, v.Cells[2])
	if err != nil {
		return nil, err
	}
	return env.Set(v.Cells[1].Str, val)
}

// (define name form)
// (define (name params...) body...)
// (define (name params... . rest) body...)
func evalDefine(env *LEnv, v *LVal) (*LVal, error) {
	if len(v.Cells) < 3 {
		return nil, &BadSpecialFormError{Message: "malformed define", Form: v}
	}
	target := v.Cells[1]
	switch target.Type {
	case LAtom:
		if len(v.Cells) != 3 {
			return nil, &BadSpecialFormError{Message: "malformed define", Form: v}
		}
		val, err := Eval(env, v.Cells[2])
		if err != nil {
			return nil, err
		}
		return env.Define(target.Str, val), nil
	case LList:
		if len(target.Cells) == 0 {
			return nil, &BadSpecialFormError{Message: "malformed define", Form: v}
		}
		names, err := paramNames(target.Cells, v)
		if err != nil {
			return nil, err
		}
		fun, err := makeLambda(env, names[1:], "", v.Cells[2:], v)
		if err != nil {
			return nil, err
		}
		return env.Define(names[0], fun), nil
	case LDotted:
		if len(target.Cells) == 0 {
			return nil, &BadSpecialFormError{Message: "malformed define", Form: v}
		}
		names, err := paramNames(target.Cells, v)
		if err != nil {
			return nil, err
		}
		if target.Tail.Type != LAtom {
			return nil, &BadSpecialFormError{Message: "malformed define", Form: v}
		}
		fun, err := makeLambda(env, names[1:], target.Tail.Str, v.Cells[2:], v)
		if err != nil {
			return nil, err
		}
		return env.Define(names[0], fun), nil
	default:
		return nil, &BadSpecialFormError{Message: "malformed define", Form: v}
	}
}

// (lambda (params...) body...)
// (lambda (params... . rest) body...)
// (lambda rest body...)
func evalLambda(env *LEnv, v *LVal) (*LVal, error) {
	if len(v.Cells) < 2 {
		return nil, &BadSpecialFormError{Message: "malformed lambda", Form: v}
	}
	formals := v.Cells[1]
	body := v.Cells[2:]
	switch formals.Type {
	case LList:
		names, err := paramNames(formals.Cells, v)
		if err != nil {
			return nil, err
		}
		return makeLambda(env, names, "", body, v)
	case LDotted:
		names, err := paramNames(formals.Cells, v)
		if err != nil {
			return nil, err
		}
		if formals.Tail.Type != LAtom {
			return nil, &BadSpecialFormError{Message: "malformed lambda", Form: v}
		}
		return makeLambda(env, names, formals.Tail.Str, body, v)
	case LAtom:
		return makeLambda(env, nil, formals.Str, body, v)
	default:
		return nil, &BadSpecialFormError{Message: "malformed lambda", Form: v}
	}
}

func paramNames(cells []*LVal, form *LVal) ([]string, error) {
	names := make([]string, len(cells))
	for i, c := range cells {
		if c.Type != LAtom {
			return nil, &BadSpecialFormError{Message: "parameter is not a symbol", Form: form}
		}
		names[i] = c.Str
	}
	return names, nil
}

func makeLambda(env *LEnv, params []string, vararg string, body []*LVal, form *LVal) (*LVal, error) {
	if len(body) == 0 {
		return nil, &BadSpecialFormError{Message: "empty procedure body", Form: form}
	}
	return Lambda(params, vararg, body, env), nil
}

// (function args...)
func evalApplication(env *LEnv, v *LVal) (*LVal, error) {
	fn, err := Eval(env, v.Cells[0])
	if err != nil {
		return nil, err
	}
	args := make([]*LVal, len(v.Cells)-1)
	for i, c := range v.Cells[1:] {
		args[i], err = Eval(env, c)
		if err != nil {
			return nil, err
		}
	}
	return Apply(fn, args)
}

// Apply invokes a procedure value with already-evaluated arguments.  For a
// closure the call frame is the captured environment extended with the
// fixed parameters bound positionally; a rest parameter, when present, is
// then defined to the proper list of surplus arguments.  Body expressions
// evaluate in order against that frame and the last value is the result.
// Primitives are invoked directly and their value or error propagates
// unchanged.  Applying a non-procedure is a type mismatch.
func Apply(fn *LVal, args []*LVal) (*LVal, error) {
	switch fn.Type {
	case LPrimitive:
		return fn.Fn(args)
	case LLambda:
		variadic := fn.Vararg != ""
		if (!variadic && len(args) != len(fn.Params)) || (variadic && len(args) < len(fn.Params)) {
			return nil, &NumArgsError{Expected: len(fn.Params), Variadic: variadic, Args: args}
		}
		bindings := make([]Binding, len(fn.Params))
		for i, name := range fn.Params {
			bindings[i] = Binding{Name: name, Value: args[i]}
		}
		frame := fn.Env.Bind(bindings)
		if variadic {
			frame.Define(fn.Vararg, List(args[len(fn.Params):]...))
		}
		var ret *LVal
		for _, b := range fn.Body {
			var err error
			ret, err = Eval(frame, b)
			if err != nil {
				return nil, err
			}
		}
		return ret, nil
	default:
		return nil, &TypeMismatchError{Expected: "procedure", Value: fn}
	}
}
