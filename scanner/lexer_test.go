package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kv struct {
	kind Kind
	raw  string
}

func kinds(toks []Token) []kv {
	out := make([]kv, len(toks))
	for i, t := range toks {
		out[i] = kv{t.Kind, t.Raw}
	}
	return out
}

func TestTokenizeBasic(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []kv
	}{
		{"assignment", "a=1\n", []kv{{Name, "a"}, {Symbol, "="}, {Number, "1"}, {Newline, "\n"}}},
		{"shift assign", "x >>>= 2", []kv{{Name, "x"}, {Space, " "}, {Symbol, ">>>="}, {Space, " "}, {Number, "2"}}},
		{"rotate", "a>>>b", []kv{{Name, "a"}, {Symbol, ">>>"}, {Name, "b"}}},
		{"not equal", "a!=b", []kv{{Name, "a"}, {Symbol, "!="}, {Name, "b"}}},
		{"concat range", "1..2", []kv{{Number, "1"}, {Symbol, ".."}, {Number, "2"}}},
		{"varargs", "f(...)", []kv{{Name, "f"}, {Symbol, "("}, {Symbol, "..."}, {Symbol, ")"}}},
		{"keyword boundary", "ending", []kv{{Name, "ending"}}},
		{"label", "::top:: goto top", []kv{{Label, "::top::"}, {Space, " "}, {Keyword, "goto"}, {Space, " "}, {Name, "top"}}},
		{"comment", "x -- hi\ny", []kv{{Name, "x"}, {Space, " "}, {Comment, "-- hi"}, {Newline, "\n"}, {Name, "y"}}},
		{"print shorthand", "?x", []kv{{Name, "?"}, {Name, "x"}}},
		{"peek", "@0x5f00", []kv{{Symbol, "@"}, {Number, "0x5f00"}}},
		{"integer divide", `a\b`, []kv{{Name, "a"}, {Symbol, `\`}, {Name, "b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokenize(tt.src, DefaultVersion)
			require.NoError(t, err)
			assert.Equal(t, tt.want, kinds(toks))
		})
	}
}

func TestTokenizeNumbers(t *testing.T) {
	for _, src := range []string{"0x1f.8", "0b101", "1e10", "1.5e-3", ".5", "3.", "0xff", "42"} {
		toks, err := Tokenize(src, DefaultVersion)
		require.NoError(t, err, src)
		require.Len(t, toks, 1, src)
		assert.Equal(t, Number, toks[0].Kind, src)
		assert.Equal(t, src, toks[0].Raw)
	}
}

func TestTokenizeStrings(t *testing.T) {
	toks, err := Tokenize(`"a\nb\65\q"`, DefaultVersion)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, String, toks[0].Kind)
	assert.Equal(t, DoubleQuote, toks[0].Quote)
	assert.Equal(t, "a\nbA\\q", toks[0].Value)

	toks, err = Tokenize(`s='it\'s'`, DefaultVersion)
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "it's", toks[2].Value)
	assert.Equal(t, SingleQuote, toks[2].Quote)

	toks, err = Tokenize("s=[==[\nhi]]there]==]", DefaultVersion)
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, LongQuote, toks[2].Quote)
	assert.Equal(t, 2, toks[2].Level)
	assert.Equal(t, "hi]]there", toks[2].Value)
}

func TestLongCommentSpansLines(t *testing.T) {
	toks, err := Tokenize("--[[ a\nb ]] x", DefaultVersion)
	require.NoError(t, err)
	assert.Equal(t, []kv{{Comment, "--[[ a\nb ]]"}, {Space, " "}, {Name, "x"}}, kinds(toks))
}

func TestStringAcrossFragments(t *testing.T) {
	l := New(DefaultVersion)
	require.NoError(t, l.ProcessLine(`x='ab\`))
	require.NoError(t, l.ProcessLine(`nc'`))
	require.NoError(t, l.Finish())
	toks := l.Tokens()
	require.Len(t, toks, 3)
	assert.Equal(t, "ab\nc", toks[2].Value)
	assert.Equal(t, `'ab\nc'`, toks[2].Raw)
}

func TestDecimalEscapeRange(t *testing.T) {
	toks, err := Tokenize(`x = "a\255"`, DefaultVersion)
	require.NoError(t, err)
	assert.Equal(t, "a\xff", toks[4].Value)

	_, err = Tokenize(`x = "a\300"`, DefaultVersion)
	require.Error(t, err)
	var lerr *LexerError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "decimal escape too large at line 1 char 7", err.Error())

	l := New(DefaultVersion)
	require.NoError(t, l.ProcessLine(`x='\`))
	err = l.ProcessLine(`999'`)
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, 1, lerr.Pos.Line)
	assert.Equal(t, 4, lerr.Pos.Column)

	_, ok := decodeQuoted(`"\999"`)
	assert.False(t, ok)
}

func TestPositions(t *testing.T) {
	toks, err := Tokenize("a\n  b\r\nc", DefaultVersion)
	require.NoError(t, err)
	last := toks[len(toks)-1]
	assert.Equal(t, "c", last.Raw)
	assert.Equal(t, 3, last.Pos.Line)
	assert.Equal(t, 1, last.Pos.Column)

	b := toks[3]
	assert.Equal(t, "b", b.Raw)
	assert.Equal(t, 2, b.Pos.Line)
	assert.Equal(t, 3, b.Pos.Column)
	assert.Equal(t, 4, b.Pos.Offset)
}

func TestUnterminatedReportsOpening(t *testing.T) {
	tests := []struct {
		src  string
		msg  string
		line int
		col  int
	}{
		{"x = \"abc\ny = 1\n", "unterminated string", 1, 5},
		{"a = 1\n--[[ open\n", "unterminated multiline comment", 2, 1},
		{"a = [[\n", "unterminated multiline string", 1, 5},
	}
	for _, tt := range tests {
		_, err := Tokenize(tt.src, DefaultVersion)
		require.Error(t, err, tt.src)
		var lerr *LexerError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, tt.msg, lerr.Msg)
		assert.Equal(t, tt.line, lerr.Pos.Line)
		assert.Equal(t, tt.col, lerr.Pos.Column)
	}
}

func TestSyntaxError(t *testing.T) {
	_, err := Tokenize("a = 1\nb = ?", 8)
	require.Error(t, err)
	assert.Equal(t, `syntax error (remaining: "?") at line 2 char 5`, err.Error())
}

func TestVersionGating(t *testing.T) {
	toks, err := Tokenize("a//b", 8)
	require.NoError(t, err)
	assert.Equal(t, []kv{{Name, "a"}, {Symbol, "/"}, {Symbol, "/"}, {Name, "b"}}, kinds(toks))

	toks, err = Tokenize("a//b", DefaultVersion)
	require.NoError(t, err)
	assert.Equal(t, []kv{{Name, "a"}, {Comment, "//b"}}, kinds(toks))

	toks, err = Tokenize("a>>b", 8)
	require.NoError(t, err)
	assert.Equal(t, []kv{{Name, "a"}, {Symbol, ">"}, {Symbol, ">"}, {Name, "b"}}, kinds(toks))
}

func TestRoundTrip(t *testing.T) {
	src := "-- title\n-- by me\r\n" +
		"function _init()\n\tx, y = 0x10, 0b11 -- pos\n" +
		"  s = [[long\nstring]] .. 'q\\'t' .. \"\\65\"\n" +
		"  a >>>= 1 b ^^= 2 c \\= 3\n" +
		"  ::again:: if (x != 1) goto again\n" +
		"end\n?\"hi\"\n"
	toks, err := Tokenize(src, DefaultVersion)
	require.NoError(t, err)
	var sb strings.Builder
	for _, tok := range toks {
		sb.WriteString(tok.Raw)
	}
	assert.Equal(t, src, sb.String())
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a\n", "b\r\n", "c\r", "d"}, SplitLines("a\nb\r\nc\rd"))
	assert.Empty(t, SplitLines(""))
}
