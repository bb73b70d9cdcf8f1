// Package writer renders a token sequence and its AST back to source text.
//
// Four writers share one contract: Echo replays the tokens, ASTEcho
// rebuilds the text from the tree, Minify renames locals and drops
// trivia, and Formatter re-indents from block nesting.
package writer

import (
	"fmt"
	"iter"
	"strings"

	"github.com/p8tools/p8lua/ast"
	"github.com/p8tools/p8lua/scanner"
)

// Writer renders source lines. Every call to Lines builds fresh state,
// so the returned sequence can be ranged over more than once. Lines keep
// their terminators, and a terminator inside a long string or comment
// ends a line too.
type Writer interface {
	Lines(tokens []scanner.Token, root *ast.Chunk) iter.Seq[string]
}

// Options configures the writers returned by ByName.
type Options struct {
	IndentWidth int
	KeepNames   bool
}

// Names lists the writer names ByName accepts.
var Names = []string{"echo", "ast", "minify", "fmt"}

// ByName returns the writer selected by a configuration value.
func ByName(name string, opts Options) (Writer, error) {
	switch name {
	case "echo", "":
		return Echo{}, nil
	case "ast":
		return ASTEcho{}, nil
	case "minify":
		return Minify{KeepNames: opts.KeepNames}, nil
	case "fmt":
		return Formatter{IndentWidth: opts.IndentWidth}, nil
	}
	return nil, fmt.Errorf("unknown writer %q (want one of %s)", name, strings.Join(Names, ", "))
}

// Render joins all lines produced by w.
func Render(w Writer, tokens []scanner.Token, root *ast.Chunk) string {
	var sb strings.Builder
	for line := range w.Lines(tokens, root) {
		sb.WriteString(line)
	}
	return sb.String()
}

// lineWriter accumulates output and hands each finished line to yield.
// Once yield asks to stop, further writes are dropped.
type lineWriter struct {
	sb      strings.Builder
	yield   func(string) bool
	stopped bool
}

func newLineWriter(yield func(string) bool) *lineWriter {
	return &lineWriter{yield: yield}
}

// Raw writes s, flushing after every line terminator.
func (w *lineWriter) Raw(s string) {
	for len(s) > 0 && !w.stopped {
		i := strings.IndexAny(s, "\r\n")
		if i < 0 {
			w.sb.WriteString(s)
			return
		}
		end := i + 1
		if s[i] == '\r' && end < len(s) && s[end] == '\n' {
			end++
		}
		w.sb.WriteString(s[:end])
		w.flush()
		s = s[end:]
	}
}

// AtLineStart reports whether nothing was written on the current line.
func (w *lineWriter) AtLineStart() bool { return w.sb.Len() == 0 }

func (w *lineWriter) flush() {
	if w.stopped {
		return
	}
	line := w.sb.String()
	w.sb.Reset()
	if !w.yield(line) {
		w.stopped = true
	}
}

// Close flushes a final unterminated line.
func (w *lineWriter) Close() {
	if w.sb.Len() > 0 {
		w.flush()
	}
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// fuses reports whether writing b directly after a would lex differently
// from the two tokens.
func fuses(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	last := a[len(a)-1]
	if isWordByte(last) && isWordByte(b[0]) {
		return true
	}
	// Lua reads 1..2 as a malformed number.
	if a[0] >= '0' && a[0] <= '9' && b[0] == '.' {
		return true
	}
	toks, err := scanner.Tokenize(a+b, scanner.DefaultVersion)
	return err != nil || len(toks) != 2 || toks[0].Raw != a
}
