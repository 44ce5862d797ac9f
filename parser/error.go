package parser

import "fmt"

// Error describes malformed input text.  Pos is the byte offset of the
// offending token within the parsed text.
type Error struct {
	Pos int
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

// parseErr is an error discovered while shaping the parse tree (a bad
// escape, an out of range number).  The combinator callbacks cannot return
// errors directly so the node is threaded up through the tree and
// converted to *Error at the top.
type parseErr struct {
	pos int
	msg string
}
