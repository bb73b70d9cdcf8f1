package writer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p8tools/p8lua/parser"
	"github.com/p8tools/p8lua/scanner"
)

func TestShortName(t *testing.T) {
	tests := map[int]string{
		0:   "a",
		25:  "z",
		26:  "aa",
		27:  "ab",
		51:  "az",
		52:  "ba",
		701: "zz",
		702: "aaa",
	}
	for i, want := range tests {
		assert.Equal(t, want, shortName(i), "index %d", i)
	}
}

func TestMinify(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "locals",
			src:  "local foo = 1\nlocal bar = foo + 1\nprint(bar)\n",
			want: "local a=1 local b=a+1 print(b)\n",
		},
		{
			name: "globals are never reused",
			src:  "a = 1\nlocal x = a\n",
			want: "a=1 local b=a\n",
		},
		{
			name: "sibling scopes share names",
			src:  "function f(x) return x end\nfunction g(y) return y end\n",
			want: "function f(a)return a end function g(a)return a end\n",
		},
		{
			name: "shadowing",
			src:  "local x = 1\ndo local x = x + 1 print(x) end\nprint(x)\n",
			want: "local a=1 do local b=a+1 print(b)end print(a)\n",
		},
		{
			name: "method keeps self",
			src:  "function t:m(v)\n  return self.x + v\nend\n",
			want: "function t:m(a)return self.x+a end\n",
		},
		{
			name: "short if ends its line",
			src:  "if (a) b=1\nc=2\n",
			want: "if(a)b=1\nc=2\n",
		},
		{
			name: "comments dropped",
			src:  "-- hello\nx = 1 -- one\n--[[ block\n]]\n",
			want: "x=1\n",
		},
		{
			name: "empty",
			src:  "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, Minify{}, tt.src))
		})
	}
}

func TestMinifyKeepNames(t *testing.T) {
	got := render(t, Minify{KeepNames: true}, "local foo = 1\nprint(foo)\n")
	assert.Equal(t, "local foo=1 print(foo)\n", got)
}

func TestMinifyDeterministic(t *testing.T) {
	toks, root := parse(t, sample)
	first := Render(Minify{}, toks, root)
	assert.Equal(t, first, Render(Minify{}, toks, root))
}

func TestMinifySkipsKeywords(t *testing.T) {
	// Enough locals in one scope to reach "do", "if", "in" and "or".
	src := ""
	for i := range 120 {
		src += "local v" + shortName(i) + "=1\n"
	}
	toks, root := parse(t, src)
	out := Render(Minify{}, toks, root)

	mtoks, err := scanner.Tokenize(out, scanner.DefaultVersion)
	require.NoError(t, err)
	_, err = parser.Parse(mtoks, scanner.DefaultVersion)
	require.NoError(t, err)

	var names []string
	for i, tok := range mtoks {
		if tok.Kind == scanner.Keyword && tok.Value == "local" {
			names = append(names, mtoks[i+2].Value)
		}
	}
	require.Len(t, names, 120)
	assert.NotContains(t, names, "do")
	assert.NotContains(t, names, "if")
	assert.NotContains(t, names, "in")
	assert.NotContains(t, names, "or")
	assert.Equal(t, "a", names[0])
}
