package lua

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/p8tools/p8lua/scanner"
	"github.com/p8tools/p8lua/writer"
)

// seedCorpus loads the .lua files under examples/ as seed inputs for
// coverage-guided fuzzing.
func seedCorpus(f *testing.F) {
	_ = filepath.WalkDir(filepath.Join("..", "examples"), func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".lua") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(string(data))
		return nil
	})

	seeds := []string{
		"",
		"x = 1",
		"a, b = b, a\n",
		"if (a) b = 1\nc = 2\n",
		"while (x < 10) x += 1\n",
		"local t = {1, 2; k = 3, [4] = 5,}\n",
		"function t.a.b:c(x, ...) return ... end\n",
		"repeat local n = n - 1 until n <= 0\n",
		"for i = 10, 1, -1 do print(i) end\n",
		"s = [[long\nstring]] --[==[long\ncomment]==]\n",
		"x = 0x1f.8 + 0b101 + 1e3 + .5\n",
		"x = a ^ -b .. c .. d\n",
		"::top:: goto top\n",
		"print \"hi\" f{1} f[[s]]\n",
		"x = a != b and not c or #d\n",
		"a = 1 // comment\n",
		"a\r\n= 1\r\n",
	}
	for _, s := range seeds {
		f.Add(s)
	}
}

// FuzzWriters checks that every source the parser accepts is reproduced
// exactly by the echo writers, and that the rewriting writers produce
// source that parses again.
func FuzzWriters(f *testing.F) {
	seedCorpus(f)
	f.Fuzz(func(t *testing.T, src string) {
		s, err := FromString(src, scanner.DefaultVersion)
		if err != nil {
			return
		}
		if got := s.String(writer.Echo{}); got != src {
			t.Fatalf("echo mismatch:\n got %q\nwant %q", got, src)
		}
		if got := s.String(writer.ASTEcho{}); got != src {
			t.Fatalf("ast echo mismatch:\n got %q\nwant %q", got, src)
		}
		for _, w := range []writer.Writer{writer.Formatter{}, writer.Minify{}} {
			out := s.String(w)
			if _, err := FromString(out, scanner.DefaultVersion); err != nil {
				t.Fatalf("%T output does not parse: %v\n%s", w, err, out)
			}
		}
	})
}
