package parser

import (
	"fmt"
	"slices"

	"github.com/p8tools/p8lua/ast"
	"github.com/p8tools/p8lua/scanner"
)

// Source pulls the next token. ok is false once the input is exhausted.
type Source func() (tok scanner.Token, ok bool)

// FromTokens returns a Source over a token slice.
func FromTokens(toks []scanner.Token) Source {
	i := 0
	return func() (scanner.Token, bool) {
		if i >= len(toks) {
			return scanner.Token{}, false
		}
		i++
		return toks[i-1], true
	}
}

// Buffer is a cursor over a pulled token stream with unbounded lookahead.
// Positions are absolute token indexes. The cursor never moves before the
// checkpoint; Advance moves the checkpoint forward and drops the tokens
// behind it.
type Buffer struct {
	src        Source
	buf        []scanner.Token // tokens from base onward
	base       int
	pos        int
	checkpoint int
	eof        bool
	rewinds    int
}

// NewBuffer wraps src.
func NewBuffer(src Source) *Buffer {
	return &Buffer{src: src}
}

// fill pulls tokens until abs is buffered. It reports false at end of input.
func (b *Buffer) fill(abs int) bool {
	for abs-b.base >= len(b.buf) {
		if b.eof {
			return false
		}
		t, ok := b.src()
		if !ok {
			b.eof = true
			return false
		}
		b.buf = append(b.buf, t)
	}
	return true
}

// Peek returns the token at the cursor without consuming it.
func (b *Buffer) Peek() (scanner.Token, bool) {
	if !b.fill(b.pos) {
		return scanner.Token{}, false
	}
	return b.buf[b.pos-b.base], true
}

// Next consumes and returns the token at the cursor.
func (b *Buffer) Next() (scanner.Token, bool) {
	t, ok := b.Peek()
	if ok {
		b.pos++
	}
	return t, ok
}

// PeekSignificant looks past trivia at the cursor without consuming
// anything. newline reports whether a Newline token was skipped.
func (b *Buffer) PeekSignificant() (tok scanner.Token, newline bool, ok bool) {
	for i := b.pos; b.fill(i); i++ {
		t := b.buf[i-b.base]
		if !t.IsTrivia() {
			return t, newline, true
		}
		if t.Kind == scanner.Newline {
			newline = true
		}
	}
	return scanner.Token{}, newline, false
}

// Accept consumes the next significant token if it matches p, together
// with the trivia in front of it. On a mismatch nothing is consumed.
func (b *Buffer) Accept(p scanner.Pattern) (ast.Tok, bool) {
	start := b.pos
	var trivia []scanner.Token
	for {
		t, ok := b.Next()
		if !ok {
			break
		}
		if t.IsTrivia() {
			trivia = append(trivia, t)
			continue
		}
		if t.Matches(p) {
			return ast.Tok{Trivia: trivia, Token: t}, true
		}
		break
	}
	b.pos = start
	return ast.Tok{}, false
}

// Trailing consumes the trivia at the cursor.
func (b *Buffer) Trailing() []scanner.Token {
	var out []scanner.Token
	for {
		t, ok := b.Peek()
		if !ok || !t.IsTrivia() {
			return out
		}
		out = append(out, t)
		b.pos++
	}
}

// Pos returns the cursor.
func (b *Buffer) Pos() int { return b.pos }

// Rewind moves the cursor back to the checkpoint.
func (b *Buffer) Rewind() { b.RewindTo(b.checkpoint) }

// RewindTo moves the cursor back to pos, which must not precede the
// checkpoint.
func (b *Buffer) RewindTo(pos int) {
	if pos < b.checkpoint || pos > b.pos {
		panic(fmt.Sprintf("parser: rewind to %d outside [%d, %d]", pos, b.checkpoint, b.pos))
	}
	b.pos = pos
	b.rewinds++
}

// Advance sets the checkpoint at the cursor and discards the tokens
// before it.
func (b *Buffer) Advance() {
	b.checkpoint = b.pos
	if n := b.pos - b.base; n > 0 {
		b.buf = slices.Clone(b.buf[n:])
		b.base = b.pos
	}
}

// Rewinds returns how many times the cursor was moved back.
func (b *Buffer) Rewinds() int { return b.rewinds }

// Buffered returns how many tokens are held in memory.
func (b *Buffer) Buffered() int { return len(b.buf) }
