/*
Package parser reads textual s-expressions and produces lisp values.

	expr   := <string> | <character> | <number> | <atom> | "'" <expr>
	        | '(' <expr>* ')' | '(' <expr>+ '.' <expr> ')'
	string := '"' (<escape> | [^"])* '"'
	character := '#\' <name> | '#\' <any char>
	number := [0-9]+ | '#' [xXoOdDbB] <radix digits>
	atom   := <initial> (<initial> | [0-9])*

The alternatives are ordered and the grammar backtracks between them, so a
named character falls back to a literal character and a proper list falls
back to a dotted list.  Comments (';' to end of line) separate expressions
the same way whitespace does.  Adjacent expressions with no separator run
between them are an error; the quote sugar is the one place contact is
required rather than forbidden.
*/
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	parsec "github.com/prataprc/goparsec"

	"github.com/skeem-lang/skeem/lisp"
)

// Parse parses exactly one expression.  Input containing anything beyond
// the expression and surrounding whitespace or comments is an error, as is
// blank input.
func Parse(text []byte) (*lisp.LVal, error) {
	s := parsec.NewScanner(text)
	n, s, err := parseNext(newParser(), s)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, &Error{Pos: skipSeparators(text, s.GetCursor()), Msg: "expected expression"}
	}
	if err := expectEnd(text, s); err != nil {
		return nil, err
	}
	return n.v, nil
}

// ParseAll parses zero or more expressions separated by whitespace and
// comments.
func ParseAll(text []byte) ([]*lisp.LVal, error) {
	s := parsec.NewScanner(text)
	p := newParser()
	var vals []*lisp.LVal
	lastEnd := -1
	for {
		n, next, err := parseNext(p, s)
		if err != nil {
			return nil, err
		}
		if n == nil {
			break
		}
		if n.pos == lastEnd {
			return nil, &Error{Pos: n.pos, Msg: "expected separator between expressions"}
		}
		vals = append(vals, n.v)
		lastEnd = n.end
		s = next
	}
	if err := expectEnd(text, s); err != nil {
		return nil, err
	}
	return vals, nil
}

// ParseOptional parses a single expression from input that may be blank.
// Blank (whitespace/comment-only) input returns nil with no error.
func ParseOptional(text []byte) (*lisp.LVal, error) {
	s := parsec.NewScanner(text)
	n, s, err := parseNext(newParser(), s)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	if err := expectEnd(text, s); err != nil {
		return nil, err
	}
	return n.v, nil
}

// parseNext parses the next expression, consuming any leading comments.
// It returns a nil node when no expression can be parsed at the cursor.
func parseNext(p parsec.Parser, s parsec.Scanner) (*node, parsec.Scanner, error) {
	for {
		pn, next := p(s)
		if pn == nil {
			return nil, s, nil
		}
		s = next
		switch n := pn.(type) {
		case *parseErr:
			return nil, s, &Error{Pos: n.pos, Msg: n.msg}
		case *node:
			return n, s, nil
		}
		// comment terminal; keep going
	}
}

func expectEnd(text []byte, s parsec.Scanner) error {
	pos := skipSeparators(text, s.GetCursor())
	if pos < len(text) {
		return &Error{Pos: pos, Msg: fmt.Sprintf("unexpected input %q", snippet(text, pos))}
	}
	return nil
}

// skipSeparators advances past whitespace and comments, which the scanner
// leaves behind after its final failed match.
func skipSeparators(text []byte, pos int) int {
	for pos < len(text) {
		switch text[pos] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			pos++
		case ';':
			for pos < len(text) && text[pos] != '\n' {
				pos++
			}
		default:
			return pos
		}
	}
	return pos
}

func snippet(text []byte, pos int) string {
	end := pos
	for end < len(text) && end-pos < 16 && !isSpace(text[end]) {
		end++
	}
	return string(text[pos:end])
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

const (
	initialClass = `a-zA-Z!#$%&|*+/:<=>?@^_~\-`
)

func newParser() parsec.Parser {
	openP := parsec.Atom("(", "OPENP")
	closeP := parsec.Atom(")", "CLOSEP")
	quote := parsec.Atom("'", "QUOTE")
	// The dot of a dotted list must be followed by a whitespace/comment
	// run; the token consumes it.
	dot := parsec.Token(`\.(?:\s|;[^\n]*)+`, "DOT")
	comment := parsec.Token(`;([^\n]*[^\s])?`, "COMMENT")
	str := parsec.Token(`"(?:\\.|[^"\\])*"`, "STRING")
	// Multi-letter character names are tried before single literal
	// characters; unknown names become parse errors rather than falling
	// back.
	charName := parsec.Token(`#\\[a-zA-Z][a-zA-Z]+`, "CHARNAME")
	charLit := parsec.Token(`#\\.`, "CHAR")
	hexNum := parsec.Token(`#[xX][0-9a-fA-F]+`, "HEX")
	octNum := parsec.Token(`#[oO][0-7]+`, "OCT")
	decNum := parsec.Token(`#[dD][0-9]+`, "DEC")
	binNum := parsec.Token(`#[bB][01]+`, "BIN")
	number := parsec.Token(`[0-9]+`, "NUMBER")
	symbol := parsec.Token(`[`+initialClass+`][0-9`+initialClass+`]*`, "SYMBOL")

	var expr parsec.Parser // forward declaration allows recursive parsing
	properList := parsec.And(listNode, openP, parsec.Kleene(nil, &expr), closeP)
	dottedList := parsec.And(dottedNode, openP, parsec.Many(nil, &expr), dot, &expr, closeP)
	quoted := parsec.And(quoteNode, quote, &expr)
	expr = parsec.OrdChoice(exprNode,
		comment,
		str,
		charName,
		charLit,
		hexNum,
		octNum,
		decNum,
		binNum,
		number,
		symbol, // symbol comes last among the terminals because it swallows anything
		quoted,
		properList,
		dottedList,
	)
	return expr
}

// node is a parsed value together with its source span.  The scanner skips
// only whitespace between tokens, so two nodes parsed back to back touch
// (end == pos) exactly when no separator stood between them; the composite
// callbacks reject that contact to keep element separation mandatory.
type node struct {
	v   *lisp.LVal
	pos int // byte offset of the value's first character
	end int // byte offset one past the value's last character
}

// exprNode converts terminal tokens into span-carrying lisp values.
// Composite nodes (lists, quotes) arrive already built and pass through, as
// do embedded parse errors and comment terminals.
func exprNode(ns []parsec.ParsecNode) parsec.ParsecNode {
	term, ok := ns[0].(*parsec.Terminal)
	if !ok {
		return ns[0]
	}
	switch term.Name {
	case "COMMENT":
		return term
	case "STRING":
		return valueNode(term, stringValue(term))
	case "CHARNAME":
		return valueNode(term, namedCharValue(term))
	case "CHAR":
		c, _ := utf8.DecodeRuneInString(term.Value[2:])
		return valueNode(term, lisp.Char(c))
	case "HEX":
		return valueNode(term, numberValue(term, 16))
	case "OCT":
		return valueNode(term, numberValue(term, 8))
	case "DEC":
		return valueNode(term, numberValue(term, 10))
	case "BIN":
		return valueNode(term, numberValue(term, 2))
	case "NUMBER":
		x, err := strconv.ParseInt(term.Value, 10, 64)
		if err != nil {
			return &parseErr{pos: term.Position, msg: fmt.Sprintf("bad number %s: %v", term.Value, err)}
		}
		return valueNode(term, lisp.Number(x))
	case "SYMBOL":
		switch term.Value {
		case "#t":
			return valueNode(term, lisp.Bool(true))
		case "#f":
			return valueNode(term, lisp.Bool(false))
		}
		return valueNode(term, lisp.Atom(term.Value))
	default:
		panic(fmt.Sprintf("unknown terminal: %s (%s)", term.Name, term.Value))
	}
}

// valueNode wraps a terminal's value with the terminal's span, unless the
// value is itself an embedded parse error.
func valueNode(term *parsec.Terminal, pn parsec.ParsecNode) parsec.ParsecNode {
	v, ok := pn.(*lisp.LVal)
	if !ok {
		return pn
	}
	return &node{v: v, pos: term.Position, end: term.Position + len(term.Value)}
}

func stringValue(term *parsec.Terminal) parsec.ParsecNode {
	body := term.Value[1 : len(term.Value)-1]
	var buf strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			buf.WriteByte(c)
			continue
		}
		i++ // the token regex guarantees a character follows the backslash
		switch body[i] {
		case '"':
			buf.WriteByte('"')
		case '\\':
			buf.WriteByte('\\')
		case 't':
			buf.WriteByte('\t')
		case 'n':
			buf.WriteByte('\n')
		case 'r':
			buf.WriteByte('\r')
		default:
			return &parseErr{
				pos: term.Position + i,
				msg: fmt.Sprintf("unknown escape sequence \\%c in string literal", body[i]),
			}
		}
	}
	return lisp.String(buf.String())
}

// namedChars maps the case-insensitive multi-letter character names to
// their code points.
var namedChars = map[string]rune{
	"altmode":   0x1b,
	"backnext":  0x1f,
	"backspace": 0x08,
	"call":      0x1a,
	"linefeed":  0x0a,
	"newline":   0x0a,
	"return":    0x0d,
	"page":      0x0c,
	"rubout":    0x7f,
	"tab":       0x09,
	"space":     ' ',
}

func namedCharValue(term *parsec.Terminal) parsec.ParsecNode {
	name := term.Value[2:]
	c, ok := namedChars[strings.ToLower(name)]
	if !ok {
		return &parseErr{pos: term.Position, msg: fmt.Sprintf("unrecognized character name %s", name)}
	}
	return lisp.Char(c)
}

func numberValue(term *parsec.Terminal, base int) parsec.ParsecNode {
	x, err := strconv.ParseInt(term.Value[2:], base, 64)
	if err != nil {
		return &parseErr{pos: term.Position, msg: fmt.Sprintf("bad number %s: %v", term.Value, err)}
	}
	return lisp.Number(x)
}

func listNode(ns []parsec.ParsecNode) parsec.ParsecNode {
	var cells []*lisp.LVal
	var pos, end int
	lastEnd := -1
	for _, n := range cleanNodes(ns) {
		switch n := n.(type) {
		case *parseErr:
			return n
		case *parsec.Terminal:
			switch n.Name {
			case "OPENP":
				pos = n.Position
			case "CLOSEP":
				end = n.Position + 1
			}
			// a comment terminal is a separator and checks nothing
		case *node:
			if n.pos == lastEnd {
				return separatorErr(n.pos)
			}
			cells = append(cells, n.v)
			lastEnd = n.end
		}
	}
	return &node{v: lisp.List(cells...), pos: pos, end: end}
}

func dottedNode(ns []parsec.ParsecNode) parsec.ParsecNode {
	var cells []*lisp.LVal
	var tail *lisp.LVal
	var dotTerm *parsec.Terminal
	var pos, end int
	lastEnd := -1
	for _, n := range cleanNodes(ns) {
		switch n := n.(type) {
		case *parseErr:
			return n
		case *parsec.Terminal:
			switch n.Name {
			case "OPENP":
				pos = n.Position
			case "CLOSEP":
				end = n.Position + 1
			case "DOT":
				if n.Position == lastEnd {
					return separatorErr(n.Position)
				}
				dotTerm = n
				// the dot token consumed its own trailing separator run
				lastEnd = -1
			}
		case *node:
			if n.pos == lastEnd {
				return separatorErr(n.pos)
			}
			if dotTerm != nil {
				tail = n.v
			} else {
				cells = append(cells, n.v)
			}
			lastEnd = n.end
		}
	}
	if tail == nil {
		// the tail expression position held only a comment
		return &parseErr{pos: dotTerm.Position, msg: "expected expression after dot"}
	}
	return &node{v: lisp.DottedList(cells, tail), pos: pos, end: end}
}

func quoteNode(ns []parsec.ParsecNode) parsec.ParsecNode {
	nodes := cleanNodes(ns)
	q := nodes[0].(*parsec.Terminal)
	for _, n := range nodes[1:] {
		switch n := n.(type) {
		case *parseErr:
			return n
		case *node:
			if n.pos != q.Position+1 {
				return &parseErr{pos: q.Position, msg: "expected expression immediately after quote"}
			}
			return &node{v: lisp.List(lisp.Atom("quote"), n.v), pos: q.Position, end: n.end}
		}
	}
	return &parseErr{pos: q.Position, msg: "expected expression after quote"}
}

func separatorErr(pos int) *parseErr {
	return &parseErr{pos: pos, msg: "expected separator between expressions"}
}

func cleanNodes(ns []parsec.ParsecNode) []parsec.ParsecNode {
	var nodes []parsec.ParsecNode
	for _, n := range ns {
		switch n := n.(type) {
		case []parsec.ParsecNode:
			nodes = append(nodes, cleanNodes(n)...)
		default:
			nodes = append(nodes, n)
		}
	}
	return nodes
}
