// Package scanner turns PICO-8 Lua source text into a flat sequence of
// tokens. Whitespace, newlines and comments are kept as tokens so the
// original text can be rebuilt byte for byte.
//
// The Lexer is fed one line (or any fragment) at a time. Strings, long
// strings and long comments may span fragments; the lexer carries that
// state between calls and Finish reports anything left open.
package scanner

import (
	"fmt"
	"strings"

	"modernc.org/token"
)

// Dialect version tags. The tag comes from the cartridge header and only
// gates lexer/grammar extensions.
const (
	// DefaultVersion is the tag assumed for bare .lua files.
	DefaultVersion = 41
	// BitwiseVersion is the first tag accepting the bitwise/shift
	// operator family, integer division, peek operators, // comments and
	// the ? print shorthand.
	BitwiseVersion = 16
)

// LexerError reports text the lexer could not consume.
type LexerError struct {
	Msg string
	Pos token.Position
}

func (e *LexerError) Error() string {
	return fmt.Sprintf("%s at line %d char %d", e.Msg, e.Pos.Line, e.Pos.Column)
}

// Position implements the positioned error contract shared with the parser.
func (e *LexerError) Position() token.Position { return e.Pos }

type state int

const (
	stateNone state = iota
	stateString
	stateLongComment
	stateLongString
)

var keywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

// IsKeyword reports whether s is a reserved word.
func IsKeyword(s string) bool { return keywords[s] }

// Multi-character operators, longest first. A shorter operator must never
// precede one it is a prefix of.
var multiOps = []struct {
	op      string
	bitwise bool
}{
	{">>>=", true}, {"<<>=", true}, {">><=", true},
	{"...", false}, {"..=", false},
	{">>>", true}, {"<<>", true}, {">><", true},
	{"^^=", true}, {"<<=", true}, {">>=", true},
	{"..", false}, {"==", false}, {"~=", false}, {"!=", false},
	{"<=", false}, {">=", false},
	{"+=", false}, {"-=", false}, {"*=", false}, {"/=", false},
	{"%=", false}, {"^=", false},
	{"<<", true}, {">>", true}, {"^^", true},
	{`\=`, true}, {"&=", true}, {"|=", true},
}

const (
	plainSymbols   = "+-*/%^#<>=(){}[];:,."
	bitwiseSymbols = `&|~\@$`
)

var namedEscapes = map[byte]byte{
	'a': '\a', 'b': '\b', 'f': '\f', 'n': '\n', 'r': '\r', 't': '\t',
	'v': '\v', '\\': '\\', '"': '"', '\'': '\'',
}

// Lexer is the stateful tokenizer for one source unit.
type Lexer struct {
	// Filename is recorded in every token position.
	Filename string

	version int
	tokens  []Token

	line, col, offset int
	prevCR            bool

	state    state
	start    token.Position
	raw      strings.Builder
	value    strings.Builder
	delim    byte
	level    int
	escaping bool
	escPos   token.Position
}

// New returns a lexer for the given dialect version.
func New(version int) *Lexer {
	return &Lexer{version: version, line: 1, col: 1}
}

// Tokenize lexes a complete source text.
func Tokenize(src string, version int) ([]Token, error) {
	l := New(version)
	if err := l.ProcessLines(SplitLines(src)); err != nil {
		return nil, err
	}
	if err := l.Finish(); err != nil {
		return nil, err
	}
	return l.Tokens(), nil
}

// SplitLines splits src after every line terminator, keeping the
// terminators, so the pieces concatenate back to src.
func SplitLines(src string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			lines = append(lines, src[start:i+1])
			start = i + 1
		case '\r':
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			lines = append(lines, src[start:i+1])
			start = i + 1
		}
	}
	if start < len(src) {
		lines = append(lines, src[start:])
	}
	return lines
}

// ProcessLines feeds each line to ProcessLine.
func (l *Lexer) ProcessLines(lines []string) error {
	for _, line := range lines {
		if err := l.ProcessLine(line); err != nil {
			return err
		}
	}
	return nil
}

// ProcessLine consumes a fragment of source. The fragment does not have to
// end on a token boundary only if it ends inside a string or long bracket.
func (l *Lexer) ProcessLine(s string) error {
	for len(s) > 0 {
		n, err := l.step(s)
		if err != nil {
			return err
		}
		if n == 0 {
			rest := strings.TrimRight(s, "\r\n")
			return &LexerError{
				Msg: fmt.Sprintf("syntax error (remaining: %q)", rest),
				Pos: l.pos(),
			}
		}
		l.advance(s[:n])
		s = s[n:]
	}
	return nil
}

// Finish validates that no string or long bracket is left open.
func (l *Lexer) Finish() error {
	var msg string
	switch l.state {
	case stateNone:
		return nil
	case stateString:
		msg = "unterminated string"
	case stateLongComment:
		msg = "unterminated multiline comment"
	case stateLongString:
		msg = "unterminated multiline string"
	}
	return &LexerError{Msg: msg, Pos: l.start}
}

// Tokens returns a copy of the tokens produced so far.
func (l *Lexer) Tokens() []Token {
	out := make([]Token, len(l.tokens))
	copy(out, l.tokens)
	return out
}

func (l *Lexer) pos() token.Position {
	return token.Position{Filename: l.Filename, Offset: l.offset, Line: l.line, Column: l.col}
}

// advance moves the position counters over consumed text.
func (l *Lexer) advance(text string) {
	p := l.posAfter(text)
	l.line, l.col, l.offset = p.Line, p.Column, p.Offset
	if len(text) > 0 {
		l.prevCR = text[len(text)-1] == '\r'
	}
}

// posAfter returns the position following text without consuming it.
func (l *Lexer) posAfter(text string) token.Position {
	p := l.pos()
	cr := l.prevCR
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\n' && cr:
			// second half of \r\n
		case c == '\n' || c == '\r':
			p.Line++
			p.Column = 1
		default:
			p.Column++
		}
		cr = c == '\r'
		p.Offset++
	}
	return p
}

func (l *Lexer) emit(kind Kind, raw, value string, pos token.Position) {
	l.tokens = append(l.tokens, Token{Kind: kind, Raw: raw, Value: value, Pos: pos})
}

func (l *Lexer) bitwise() bool { return l.version >= BitwiseVersion }

// step consumes one token's worth of s (or continues an open construct)
// and returns the number of bytes used. Zero means nothing matched.
func (l *Lexer) step(s string) (int, error) {
	switch l.state {
	case stateString:
		return l.continueString(s)
	case stateLongComment, stateLongString:
		return l.continueLong(s), nil
	}

	pos := l.pos()

	// Comments.
	if strings.HasPrefix(s, "--") {
		if lvl, ok := longOpen(s[2:]); ok {
			l.beginLong(stateLongComment, lvl, pos, s[:2+lvl+2])
			return 2 + lvl + 2, nil
		}
		n := lineEnd(s)
		l.emit(Comment, s[:n], s[:n], pos)
		return n, nil
	}
	if l.bitwise() && strings.HasPrefix(s, "//") {
		n := lineEnd(s)
		l.emit(Comment, s[:n], s[:n], pos)
		return n, nil
	}

	// Strings.
	if s[0] == '"' || s[0] == '\'' {
		l.state = stateString
		l.start = pos
		l.delim = s[0]
		l.raw.Reset()
		l.value.Reset()
		l.raw.WriteByte(s[0])
		return 1, nil
	}
	if lvl, ok := longOpen(s); ok {
		l.beginLong(stateLongString, lvl, pos, s[:lvl+2])
		return lvl + 2, nil
	}

	// Whitespace and newlines.
	if n := spaceRun(s); n > 0 {
		l.emit(Space, s[:n], s[:n], pos)
		return n, nil
	}
	if n := newlineLen(s); n > 0 {
		l.emit(Newline, s[:n], s[:n], pos)
		return n, nil
	}

	if n := numberLen(s); n > 0 {
		l.emit(Number, s[:n], s[:n], pos)
		return n, nil
	}

	if n, name := labelLen(s); n > 0 {
		l.emit(Label, s[:n], name, pos)
		return n, nil
	}

	if n := identLen(s); n > 0 && keywords[s[:n]] {
		l.emit(Keyword, s[:n], s[:n], pos)
		return n, nil
	}

	for _, op := range multiOps {
		if op.bitwise && !l.bitwise() {
			continue
		}
		if strings.HasPrefix(s, op.op) {
			l.emit(Symbol, op.op, op.op, pos)
			return len(op.op), nil
		}
	}
	if strings.IndexByte(plainSymbols, s[0]) >= 0 ||
		(l.bitwise() && strings.IndexByte(bitwiseSymbols, s[0]) >= 0) {
		l.emit(Symbol, s[:1], s[:1], pos)
		return 1, nil
	}

	if n := identLen(s); n > 0 {
		l.emit(Name, s[:n], s[:n], pos)
		return n, nil
	}

	if l.bitwise() && s[0] == '?' {
		l.emit(Name, "?", "?", pos)
		return 1, nil
	}
	return 0, nil
}

func (l *Lexer) beginLong(st state, lvl int, pos token.Position, open string) {
	l.state = st
	l.level = lvl
	l.start = pos
	l.raw.Reset()
	l.value.Reset()
	l.raw.WriteString(open)
}

// continueString consumes string contents up to and including the closing
// quote, or all of s if the string stays open.
func (l *Lexer) continueString(s string) (int, error) {
	i := 0
	if l.escaping {
		l.escaping = false
		n, ok := decodeEscape(`\`+s, &l.value)
		if !ok {
			return 0, l.escapeError(l.escPos)
		}
		n--
		l.raw.WriteString(s[:n])
		i = n
	}
	for i < len(s) {
		c := s[i]
		if c == l.delim {
			l.raw.WriteByte(c)
			tok := Token{
				Kind:  String,
				Raw:   l.raw.String(),
				Value: l.value.String(),
				Quote: Quote(l.delim),
				Pos:   l.start,
			}
			l.tokens = append(l.tokens, tok)
			l.state = stateNone
			return i + 1, nil
		}
		if c == '\\' {
			if i+1 == len(s) {
				l.raw.WriteByte(c)
				l.escaping = true
				l.escPos = l.posAfter(s[:i])
				return len(s), nil
			}
			n, ok := decodeEscape(s[i:], &l.value)
			if !ok {
				return 0, l.escapeError(l.posAfter(s[:i]))
			}
			l.raw.WriteString(s[i : i+n])
			i += n
			continue
		}
		l.raw.WriteByte(c)
		l.value.WriteByte(c)
		i++
	}
	return len(s), nil
}

func (l *Lexer) escapeError(pos token.Position) error {
	l.state = stateNone
	return &LexerError{Msg: "decimal escape too large", Pos: pos}
}

// continueLong searches for the closing long bracket of the open level.
func (l *Lexer) continueLong(s string) int {
	closer := "]" + strings.Repeat("=", l.level) + "]"
	// The closer may straddle the fragment boundary.
	prefix := l.raw.String()
	keep := len(closer) - 1
	if keep > len(prefix) {
		keep = len(prefix)
	}
	tail := prefix[len(prefix)-keep:]
	idx := strings.Index(tail+s, closer)
	if idx < 0 {
		l.raw.WriteString(s)
		return len(s)
	}
	n := idx + len(closer) - len(tail)
	l.raw.WriteString(s[:n])
	raw := l.raw.String()
	if l.state == stateLongComment {
		l.emit(Comment, raw, raw, l.start)
	} else {
		open := l.level + 2
		l.tokens = append(l.tokens, Token{
			Kind:  String,
			Raw:   raw,
			Value: trimLongOpenNewline(raw[open : len(raw)-open]),
			Quote: LongQuote,
			Level: l.level,
			Pos:   l.start,
		})
	}
	l.state = stateNone
	return n
}

// decodeEscape decodes one character or backslash escape from the front of
// s into sb and returns the number of bytes consumed. It reports false for a
// decimal escape above 255, writing nothing.
func decodeEscape(s string, sb *strings.Builder) (int, bool) {
	if s[0] != '\\' || len(s) == 1 {
		sb.WriteByte(s[0])
		return 1, true
	}
	c := s[1]
	switch {
	case isDigit(c):
		v, n := 0, 0
		for n < 3 && 1+n < len(s) && isDigit(s[1+n]) {
			v = v*10 + int(s[1+n]-'0')
			n++
		}
		if v > 255 {
			return 1 + n, false
		}
		sb.WriteByte(byte(v))
		return 1 + n, true
	case c == '\r':
		sb.WriteByte('\n')
		if len(s) > 2 && s[2] == '\n' {
			return 3, true
		}
		return 2, true
	case c == '\n':
		sb.WriteByte('\n')
		return 2, true
	}
	if r, ok := namedEscapes[c]; ok {
		sb.WriteByte(r)
		return 2, true
	}
	// Unknown escapes are kept verbatim.
	sb.WriteByte('\\')
	sb.WriteByte(c)
	return 2, true
}

// longOpen reports whether s begins with [[ or [=*[ and returns the level.
func longOpen(s string) (int, bool) {
	if len(s) < 2 || s[0] != '[' {
		return 0, false
	}
	i := 1
	for i < len(s) && s[i] == '=' {
		i++
	}
	if i < len(s) && s[i] == '[' {
		return i - 1, true
	}
	return 0, false
}

func lineEnd(s string) int {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return i
	}
	return len(s)
}

func spaceRun(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\f' || s[i] == '\v') {
		i++
	}
	return i
}

func newlineLen(s string) int {
	switch {
	case strings.HasPrefix(s, "\r\n"):
		return 2
	case s[0] == '\n', s[0] == '\r':
		return 1
	}
	return 0
}

func isDigit(c byte) bool    { return c >= '0' && c <= '9' }
func isHexDigit(c byte) bool { return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') }
func isBinDigit(c byte) bool { return c == '0' || c == '1' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func identLen(s string) int {
	if !isIdentStart(s[0]) {
		return 0
	}
	i := 1
	for i < len(s) && isIdentPart(s[i]) {
		i++
	}
	return i
}

// labelLen matches ::name:: and returns its length and the name.
func labelLen(s string) (int, string) {
	if !strings.HasPrefix(s, "::") || len(s) < 3 {
		return 0, ""
	}
	n := identLen(s[2:])
	if n == 0 || !strings.HasPrefix(s[2+n:], "::") {
		return 0, ""
	}
	return 2 + n + 2, s[2 : 2+n]
}

// numberLen matches hex and binary literals (with optional fraction)
// before decimal ones (with optional fraction and exponent).
func numberLen(s string) int {
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		if n := radixLen(s[2:], isHexDigit); n > 0 {
			return 2 + n
		}
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'b' || s[1] == 'B') {
		if n := radixLen(s[2:], isBinDigit); n > 0 {
			return 2 + n
		}
	}
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	digits := i
	if i < len(s) && s[i] == '.' && !(i+1 < len(s) && s[i+1] == '.') {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if digits > 0 || j > i+1 {
			digits += j - i - 1
			i = j
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

func radixLen(s string, digit func(byte) bool) int {
	i := 0
	for i < len(s) && digit(s[i]) {
		i++
	}
	whole := i
	if i < len(s) && s[i] == '.' && !(i+1 < len(s) && s[i+1] == '.') {
		j := i + 1
		for j < len(s) && digit(s[j]) {
			j++
		}
		if whole > 0 || j > i+1 {
			i = j
		}
	}
	if i == 0 || (whole == 0 && i == 1) {
		return 0
	}
	return i
}
