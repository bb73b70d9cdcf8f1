package scanner

import (
	"fmt"
	"strings"

	"modernc.org/token"
)

// Kind classifies a Token.
type Kind int

const (
	Space   Kind = iota // run of spaces/tabs, no newlines
	Newline             // one of \r\n, \n or \r
	Comment             // -- or // comment, including --[[ ]] blocks
	String              // quoted or long-bracket string literal
	Number              // numeric literal in its original spelling
	Name                // identifier
	Label               // ::name::
	Keyword             // reserved word
	Symbol              // operator or punctuation
)

var kindNames = [...]string{
	Space:   "space",
	Newline: "newline",
	Comment: "comment",
	String:  "string",
	Number:  "number",
	Name:    "name",
	Label:   "label",
	Keyword: "keyword",
	Symbol:  "symbol",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Quote records how a string literal was delimited in the source.
type Quote byte

const (
	NoQuote     Quote = 0
	SingleQuote Quote = '\''
	DoubleQuote Quote = '"'
	LongQuote   Quote = '[' // [[ ]] or [==[ ]==], see Token.Level
)

// Token is an immutable lexical unit.
type Token struct {
	Kind Kind
	// Raw is the exact source spelling, delimiters included.
	Raw string
	// Value is the normalized value: decoded contents for strings, the
	// bare name for labels, the lower-cased word for keywords and Raw
	// for everything else.
	Value string
	// Quote and Level describe the delimiter of a String token.
	Quote Quote
	Level int
	Pos   token.Position
}

// Len is the number of source bytes the token occupies.
func (t Token) Len() int { return len(t.Raw) }

// IsTrivia reports whether the token carries no grammatical meaning.
func (t Token) IsTrivia() bool {
	return t.Kind == Space || t.Kind == Newline || t.Kind == Comment
}

// Equal compares kind and normalized value. Positions are ignored and
// keywords compare case-insensitively.
func (t Token) Equal(o Token) bool {
	if t.Kind != o.Kind {
		return false
	}
	if t.Kind == Keyword {
		return strings.EqualFold(t.Value, o.Value)
	}
	return t.Value == o.Value
}

// Matches reports whether the token satisfies the pattern.
func (t Token) Matches(p Pattern) bool { return p.match(t) }

func (t Token) String() string {
	return fmt.Sprintf("%s<%q, line %d char %d>", t.Kind, t.Raw, t.Pos.Line, t.Pos.Column)
}

// Pattern selects tokens either by kind or by exact value.
type Pattern interface {
	match(Token) bool
	String() string
}

// KindPattern matches every token of the kind.
type KindPattern Kind

func (k KindPattern) match(t Token) bool { return t.Kind == Kind(k) }
func (k KindPattern) String() string     { return Kind(k).String() }

// ValuePattern matches tokens equal to Tok.
type ValuePattern struct{ Tok Token }

func (v ValuePattern) match(t Token) bool { return t.Equal(v.Tok) }
func (v ValuePattern) String() string     { return v.Tok.Value }

// Sym returns a pattern for the symbol s.
func Sym(s string) Pattern { return ValuePattern{Token{Kind: Symbol, Raw: s, Value: s}} }

// Kw returns a pattern for the keyword s.
func Kw(s string) Pattern { return ValuePattern{Token{Kind: Keyword, Raw: s, Value: s}} }

// Of returns a pattern for any token of kind k.
func Of(k Kind) Pattern { return KindPattern(k) }

// NewToken builds a token with no source position. Used for synthesized
// code, where Value is derived from raw the same way the lexer would.
func NewToken(kind Kind, raw string) Token {
	t := Token{Kind: kind, Raw: raw, Value: raw}
	switch kind {
	case Keyword:
		t.Value = strings.ToLower(raw)
	case Label:
		t.Value = strings.TrimSuffix(strings.TrimPrefix(raw, "::"), "::")
	case String:
		t.Quote = DoubleQuote
		if raw != "" {
			switch raw[0] {
			case '\'':
				t.Quote = SingleQuote
			case '[':
				t.Quote = LongQuote
				t.Level = longBracketLevel(raw)
			}
		}
		if v, ok := decodeQuoted(raw); ok {
			t.Value = v
		}
	}
	return t
}

// QuoteString renders s as a double-quoted literal that the lexer reads
// back to s.
func QuoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&sb, `\%d`, c)
				continue
			}
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func longBracketLevel(raw string) int {
	n := 0
	for i := 1; i < len(raw) && raw[i] == '='; i++ {
		n++
	}
	return n
}

// decodeQuoted decodes a complete string literal spelling.
func decodeQuoted(raw string) (string, bool) {
	if len(raw) < 2 {
		return "", false
	}
	if raw[0] == '[' {
		lvl := longBracketLevel(raw)
		open := lvl + 2
		if len(raw) < 2*open {
			return "", false
		}
		return trimLongOpenNewline(raw[open : len(raw)-open]), true
	}
	var sb strings.Builder
	body := raw[1 : len(raw)-1]
	for i := 0; i < len(body); {
		n, ok := decodeEscape(body[i:], &sb)
		if !ok {
			return "", false
		}
		i += n
	}
	return sb.String(), true
}

// trimLongOpenNewline drops a newline directly following the opening
// long bracket, as Lua does.
func trimLongOpenNewline(s string) string {
	switch {
	case strings.HasPrefix(s, "\r\n"):
		return s[2:]
	case strings.HasPrefix(s, "\n"), strings.HasPrefix(s, "\r"):
		return s[1:]
	}
	return s
}
