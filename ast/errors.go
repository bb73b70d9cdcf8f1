package ast

import (
	"fmt"

	"github.com/p8tools/p8lua/scanner"
	"modernc.org/token"
)

// PosError is an error anchored to a source position.
type PosError struct {
	Msg string
	Pos token.Position
}

func (e *PosError) Error() string {
	if e.Pos.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s at line %d char %d", e.Msg, e.Pos.Line, e.Pos.Column)
}

// Position returns where the error occurred.
func (e *PosError) Position() token.Position { return e.Pos }

// ErrorAt returns a PosError anchored to the first token of n.
func ErrorAt(n Node, format string, args ...any) error {
	return &PosError{Msg: fmt.Sprintf(format, args...), Pos: Pos(n)}
}

// Pos returns the position of the first token of n. Synthesized nodes
// report the zero position.
func Pos(n Node) token.Position {
	if t := First(n); t != nil {
		return t.Pos
	}
	return token.Position{}
}

// First returns the first token of n in source order, or nil if n has none.
func First(n Node) *Tok {
	f := &firstTok{}
	Emit(n, f)
	return f.tok
}

// Last returns the last token of n in source order, or nil if n has none.
func Last(n Node) *Tok {
	l := &lastTok{}
	Emit(n, l)
	return l.tok
}

// Leading returns the trivia owned by n: the whitespace and comments in
// front of its first token.
func Leading(n Node) []scanner.Token {
	if t := First(n); t != nil {
		return t.Trivia
	}
	return nil
}

// SetLeading replaces the trivia in front of n's first token.
func SetLeading(n Node, trivia []scanner.Token) {
	if t := First(n); t != nil {
		t.Trivia = trivia
	}
}

type firstTok struct{ tok *Tok }

func (f *firstTok) Tok(t *Tok, _ Role) {
	if f.tok == nil && t.Present() {
		f.tok = t
	}
}
func (f *firstTok) Stmt(Statement) {}
func (f *firstTok) Indent()        {}
func (f *firstTok) Dedent()        {}

type lastTok struct{ tok *Tok }

func (l *lastTok) Tok(t *Tok, _ Role) {
	if t.Present() {
		l.tok = t
	}
}
func (l *lastTok) Stmt(Statement) {}
func (l *lastTok) Indent()        {}
func (l *lastTok) Dedent()        {}
