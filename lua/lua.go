// Package lua holds one unit of PICO-8 Lua source: its tokens, its tree
// and the queries the cart tooling needs (counts, title and byline).
package lua

import (
	"fmt"
	"iter"
	"os"
	"strings"

	"github.com/p8tools/p8lua/ast"
	"github.com/p8tools/p8lua/parser"
	"github.com/p8tools/p8lua/scanner"
	"github.com/p8tools/p8lua/writer"
)

// Platform limits, for callers that warn about oversized carts.
const (
	CharLimit           = 65535
	TokenLimit          = 8192
	CompressedCharLimit = 15616
)

// Source is a lexed and parsed unit of Lua code. Tokens and Root describe
// the same text until a transform mutates Root; Reparse brings them back
// in line.
type Source struct {
	Version  int
	Filename string
	Tokens   []scanner.Token
	Root     *ast.Chunk
}

// FromLines lexes and parses lines of source. Lines may carry their line
// terminators; fragments are joined as given.
func FromLines(lines []string, version int) (*Source, error) {
	return parse("", lines, version)
}

// FromString is FromLines over a complete text.
func FromString(src string, version int) (*Source, error) {
	return parse("", scanner.SplitLines(src), version)
}

// ParseFile reads and parses a file. Token positions carry path.
func ParseFile(path string, version int) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	src, err := parse(path, scanner.SplitLines(string(data)), version)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

func parse(filename string, lines []string, version int) (*Source, error) {
	l := scanner.New(version)
	l.Filename = filename
	if err := l.ProcessLines(lines); err != nil {
		return nil, err
	}
	if err := l.Finish(); err != nil {
		return nil, err
	}
	toks := l.Tokens()
	root, err := parser.Parse(toks, version)
	if err != nil {
		return nil, err
	}
	root.Filename = filename
	return &Source{Version: version, Filename: filename, Tokens: toks, Root: root}, nil
}

// CharCount is the total length of all tokens, trivia included.
func (s *Source) CharCount() int {
	n := 0
	for _, t := range s.Tokens {
		n += t.Len()
	}
	return n
}

// TokenCount counts the tokens that are not spaces, newlines or comments.
func (s *Source) TokenCount() int {
	n := 0
	for _, t := range s.Tokens {
		if !t.IsTrivia() {
			n++
		}
	}
	return n
}

// LineCount counts newline tokens.
func (s *Source) LineCount() int {
	n := 0
	for _, t := range s.Tokens {
		if t.Kind == scanner.Newline {
			n++
		}
	}
	return n
}

// Title returns the text of the comment that opens the source.
func (s *Source) Title() (string, bool) { return s.commentAt(0) }

// Byline returns the text of the comment on the second line, when the
// source opens with two comment lines.
func (s *Source) Byline() (string, bool) { return s.commentAt(2) }

func (s *Source) commentAt(i int) (string, bool) {
	if i >= len(s.Tokens) || s.Tokens[i].Kind != scanner.Comment {
		return "", false
	}
	return strings.TrimSpace(s.Tokens[i].Raw[2:]), true
}

// Lines renders the source with w.
func (s *Source) Lines(w writer.Writer) iter.Seq[string] {
	return w.Lines(s.Tokens, s.Root)
}

// String renders the whole source with w.
func (s *Source) String(w writer.Writer) string {
	return writer.Render(w, s.Tokens, s.Root)
}

// Reparse renders the source with w and replaces the tokens and tree
// with those of the rendered text.
func (s *Source) Reparse(w writer.Writer) error {
	fresh, err := parse(s.Filename, scanner.SplitLines(s.String(w)), s.Version)
	if err != nil {
		return fmt.Errorf("reparse: %w", err)
	}
	s.Tokens = fresh.Tokens
	s.Root = fresh.Root
	return nil
}

// Check runs the given checks over the tree, stopping at the first error.
func (s *Source) Check(checks ...ast.Check) error {
	return ast.CheckChain(checks).Run(s.Root)
}
