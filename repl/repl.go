// Package repl implements the interactive read-eval-print loop.
package repl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/skeem-lang/skeem/builtin"
	"github.com/skeem-lang/skeem/lisp"
	"github.com/skeem-lang/skeem/parser"
)

// Run starts a REPL on a fresh global environment with the default
// primitive table, printing results to stdout and errors to stderr.
func Run(prompt string) {
	RunWithEnv(prompt, builtin.NewEnv(os.Stdout))
}

// RunWithEnv starts a REPL evaluating against env.  Lines with unbalanced
// parentheses or an unterminated string are buffered and the prompt
// switches to a continuation prompt until the expression is complete.
// Interrupt drops the buffered input; EOF ends the loop.
func RunWithEnv(prompt string, env *lisp.LEnv) {
	rl, err := readline.New(prompt)
	if err != nil {
		panic(err)
	}
	defer rl.Close()
	contPrompt := strings.Repeat(" ", len(prompt)) // prompt had better be ascii...

	var buf []byte
	for {
		line, err := rl.ReadSlice()
		if err == readline.ErrInterrupt {
			buf = nil
			rl.SetPrompt(prompt)
			continue
		}
		if err != nil {
			if err != io.EOF {
				errln(err)
			}
			return
		}
		if len(buf) != 0 {
			buf = append(buf, '\n')
			line = append(buf, line...)
			buf = nil
			rl.SetPrompt(prompt)
		}
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		if incomplete(line) {
			// ReadSlice reuses its buffer; keep our own copy
			buf = append([]byte(nil), line...)
			rl.SetPrompt(contPrompt)
			continue
		}
		vals, err := parser.ParseAll(line)
		if err != nil {
			errln(err)
			continue
		}
		for _, v := range vals {
			r, err := lisp.Eval(env, v)
			if err != nil {
				errln(err)
				break
			}
			fmt.Println(r)
		}
	}
}

// incomplete reports whether line ends inside an open list or string
// literal, meaning the REPL should keep reading.
func incomplete(line []byte) bool {
	depth := 0
	inString := false
	inComment := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inComment:
			if c == '\n' {
				inComment = false
			}
		case inString:
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
		default:
			switch c {
			case '(':
				depth++
			case ')':
				if depth > 0 {
					depth--
				}
			case '"':
				inString = true
			case ';':
				inComment = true
			case '#':
				// a character literal may be a paren or quote
				if i+2 < len(line) && line[i+1] == '\\' {
					i += 2
				}
			}
		}
	}
	return depth > 0 || inString
}

func errln(v ...interface{}) {
	fmt.Fprintln(os.Stderr, v...)
}
