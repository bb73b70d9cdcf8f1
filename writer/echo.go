package writer

import (
	"iter"

	"github.com/p8tools/p8lua/ast"
	"github.com/p8tools/p8lua/scanner"
)

// Echo replays the token sequence exactly as lexed and ignores the tree.
type Echo struct{}

func (Echo) Lines(tokens []scanner.Token, _ *ast.Chunk) iter.Seq[string] {
	return func(yield func(string) bool) {
		w := newLineWriter(yield)
		for _, t := range tokens {
			w.Raw(t.Raw)
		}
		w.Close()
	}
}

// ASTEcho rebuilds the text from the tree: each token is written with the
// trivia it owns. Spacing is only invented around synthesized tokens,
// where two tokens would otherwise fuse, and before synthesized
// statements, which start on a new line.
type ASTEcho struct{}

func (ASTEcho) Lines(_ []scanner.Token, root *ast.Chunk) iter.Seq[string] {
	return func(yield func(string) bool) {
		e := &astEcho{w: newLineWriter(yield)}
		ast.Emit(root, e)
		e.w.Close()
	}
}

type astEcho struct {
	w             *lineWriter
	prev          string
	prevSynthetic bool
}

func (e *astEcho) Tok(t *ast.Tok, _ ast.Role) {
	for _, tr := range t.Trivia {
		e.w.Raw(tr.Raw)
	}
	if len(t.Trivia) > 0 {
		e.prev = ""
	}
	if t.Raw == "" {
		return
	}
	if (t.Synthetic() || e.prevSynthetic) && fuses(e.prev, t.Raw) {
		e.w.Raw(" ")
	}
	e.w.Raw(t.Raw)
	e.prev = t.Raw
	e.prevSynthetic = t.Synthetic()
}

func (e *astEcho) Stmt(s ast.Statement) {
	first := ast.First(s)
	if first != nil && first.Synthetic() && len(first.Trivia) == 0 && !e.w.AtLineStart() {
		e.w.Raw("\n")
		e.prev = ""
	}
}

func (e *astEcho) Indent() {}
func (e *astEcho) Dedent() {}
