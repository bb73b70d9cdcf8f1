package writer

import (
	"iter"
	"strings"

	"github.com/p8tools/p8lua/ast"
	"github.com/p8tools/p8lua/scanner"
)

// DefaultIndentWidth is the indent unit used when Formatter.IndentWidth
// is not set.
const DefaultIndentWidth = 2

const commentGutter = "  "

// Formatter keeps token spellings and comments but re-indents every line
// from block nesting, collapses blank line runs to one blank line and
// puts single spaces around binary operators and after commas.
type Formatter struct {
	IndentWidth int
}

func (f Formatter) Lines(_ []scanner.Token, root *ast.Chunk) iter.Seq[string] {
	width := f.IndentWidth
	if width <= 0 {
		width = DefaultIndentWidth
	}
	return func(yield func(string) bool) {
		e := &fmtEmitter{w: newLineWriter(yield), unit: strings.Repeat(" ", width)}
		ast.Emit(root, e)
		e.w.Close()
	}
}

type fmtEmitter struct {
	w    *lineWriter
	unit string
	// stack holds, for each open body, the indent of the line it was
	// opened on.
	stack []int
	// popped holds the bodies closed since the last token, innermost first.
	popped []int
	cur    int // indent of the current line
	blank  int // blank lines written since the last token

	prev     string
	prevRole ast.Role
	prevKw   bool
}

func (e *fmtEmitter) Stmt(ast.Statement) {}

func (e *fmtEmitter) Indent() { e.stack = append(e.stack, e.cur) }

func (e *fmtEmitter) Dedent() {
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	e.popped = append(e.popped, top)
}

func (e *fmtEmitter) bodyIndent() int {
	if len(e.stack) == 0 {
		return 0
	}
	return e.stack[len(e.stack)-1] + 1
}

// tokenIndent is the indent of a line starting with the next token: a
// closing token lines up with the line that opened its body.
func (e *fmtEmitter) tokenIndent() int {
	if len(e.popped) > 0 {
		return e.popped[len(e.popped)-1]
	}
	return e.bodyIndent()
}

// commentIndent is the indent of a comment line in front of the next
// token. Comments before a closing token stay inside the closed body.
func (e *fmtEmitter) commentIndent() int {
	if len(e.popped) > 0 {
		return e.popped[0] + 1
	}
	return e.bodyIndent()
}

func (e *fmtEmitter) startLine(indent int) {
	e.cur = indent
	e.w.Raw(strings.Repeat(e.unit, indent))
}

func (e *fmtEmitter) newline() {
	if e.w.AtLineStart() {
		e.blank++
		if e.blank > 1 {
			return
		}
	}
	e.w.Raw("\n")
	e.prev = ""
}

func (e *fmtEmitter) comment(raw string) {
	switch {
	case e.w.AtLineStart():
		e.startLine(e.commentIndent())
	case isLongComment(raw):
		e.w.Raw(" ")
	default:
		e.w.Raw(commentGutter)
	}
	e.w.Raw(raw)
	e.prev = raw
	e.prevRole = ast.RoleNone
	e.prevKw = false
	e.blank = 0
}

func (e *fmtEmitter) Tok(t *ast.Tok, role ast.Role) {
	hadSpace := false
	for _, tr := range t.Trivia {
		switch tr.Kind {
		case scanner.Space:
			hadSpace = true
		case scanner.Newline:
			e.newline()
		case scanner.Comment:
			e.comment(tr.Raw)
			hadSpace = true
		}
	}
	if t.Raw == "" {
		return
	}
	if e.w.AtLineStart() {
		e.startLine(e.tokenIndent())
	} else if e.space(t.Raw, role, hadSpace) {
		e.w.Raw(" ")
	}
	e.w.Raw(t.Raw)
	e.prev = t.Raw
	e.prevRole = role
	e.prevKw = t.Kind == scanner.Keyword
	e.popped = e.popped[:0]
	e.blank = 0
}

func isLongComment(raw string) bool {
	rest, ok := strings.CutPrefix(raw, "--[")
	if !ok {
		return false
	}
	rest = strings.TrimLeft(rest, "=")
	return strings.HasPrefix(rest, "[")
}

// space decides whether a space goes between the previous token and raw.
func (e *fmtEmitter) space(raw string, role ast.Role, hadSpace bool) bool {
	if e.prev == "" {
		return false
	}
	switch {
	case role == ast.RoleSep:
		return false
	case e.prevRole == ast.RoleSep:
		if raw == "}" || raw == ")" {
			return hadSpace
		}
		return true
	case role == ast.RoleBinary || e.prevRole == ast.RoleBinary:
		return true
	case e.prevRole == ast.RoleUnary:
		return e.prevKw || fuses(e.prev, raw)
	}
	return hadSpace || fuses(e.prev, raw)
}
