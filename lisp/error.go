package lisp

import (
	"bytes"
	"fmt"
)

// The interpreter reports failures through plain error values, one struct
// per kind.  The first error encountered during an evaluation aborts it and
// propagates to the caller untouched; rendering is the caller's concern.

// NumArgsError reports a procedure call with the wrong number of
// arguments.  Expected is the procedure's fixed parameter count; Variadic
// is set when the procedure additionally accepts a rest parameter, making
// Expected a lower bound.
type NumArgsError struct {
	Expected int
	Variadic bool
	Args     []*LVal
}

func (e *NumArgsError) Error() string {
	qual := ""
	if e.Variadic {
		qual = "at least "
	}
	return fmt.Sprintf("expected %s%d args; found values %s", qual, e.Expected, joinVals(e.Args))
}

// TypeMismatchError reports a value of the wrong type, either from a
// primitive's argument check or from applying a non-procedure.
type TypeMismatchError struct {
	Expected string
	Value    *LVal
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("invalid type: expected %s, found %s", e.Expected, e.Value)
}

// BadSpecialFormError reports a list form that matches no recognized
// special form and is not a valid application.
type BadSpecialFormError struct {
	Message string
	Form    *LVal
}

func (e *BadSpecialFormError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Form)
}

// UnboundVarError reports a lookup or assignment of a name with no
// binding.
type UnboundVarError struct {
	Message string
	Name    string
}

func (e *UnboundVarError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Name)
}

// DefaultError is the catch-all for failures raised by primitive
// procedures that fit no other kind.
type DefaultError struct {
	Message string
}

func (e *DefaultError) Error() string {
	return e.Message
}

// Errorf returns a DefaultError with a formatted message.
func Errorf(format string, v ...interface{}) error {
	return &DefaultError{Message: fmt.Sprintf(format, v...)}
}

func joinVals(vals []*LVal) string {
	var buf bytes.Buffer
	for i, v := range vals {
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(v.String())
	}
	return buf.String()
}
