package writer

import (
	"iter"

	"github.com/p8tools/p8lua/ast"
	"github.com/p8tools/p8lua/scanner"
)

// Minify renames local variables, parameters and local functions to the
// shortest free names and drops all trivia. Statements are joined on one
// line except where the single line if/while forms or the ? shorthand
// need a line break.
type Minify struct {
	// KeepNames disables renaming; only whitespace and comments go.
	KeepNames bool
}

func (m Minify) Lines(_ []scanner.Token, root *ast.Chunk) iter.Seq[string] {
	return func(yield func(string) bool) {
		var names map[*ast.Tok]string
		if !m.KeepNames {
			names = renameLocals(root)
		}
		e := &minEmitter{
			w:           newLineWriter(yield),
			names:       names,
			breakBefore: make(map[*ast.Tok]bool),
			breakAfter:  make(map[*ast.Tok]bool),
		}
		e.markBreaks(root)
		ast.Emit(root, e)
		if e.wrote {
			e.w.Raw("\n")
		}
		e.w.Close()
	}
}

type minEmitter struct {
	w           *lineWriter
	names       map[*ast.Tok]string
	breakBefore map[*ast.Tok]bool
	breakAfter  map[*ast.Tok]bool
	pending     bool
	prev        string
	wrote       bool
}

// markBreaks records the tokens that must start or end a line.
func (e *minEmitter) markBreaks(root *ast.Chunk) {
	_ = ast.Walk(root, ast.VisitorFunc(func(c *ast.Cursor) (ast.Action, error) {
		switch n := c.Node.(type) {
		case *ast.If:
			if n.Short {
				e.breakAfter[ast.Last(n)] = true
			}
		case *ast.While:
			if n.Short {
				e.breakAfter[ast.Last(n)] = true
			}
		case *ast.Print:
			e.breakBefore[ast.First(n)] = true
			e.breakAfter[ast.Last(n)] = true
		}
		return ast.Continue, nil
	}))
}

func (e *minEmitter) Tok(t *ast.Tok, _ ast.Role) {
	if t.Raw == "" {
		return
	}
	raw := t.Raw
	if n, ok := e.names[t]; ok {
		raw = n
	}
	if e.wrote {
		switch {
		case e.pending || e.breakBefore[t]:
			e.w.Raw("\n")
		case fuses(e.prev, raw):
			e.w.Raw(" ")
		}
	}
	e.pending = e.breakAfter[t]
	e.w.Raw(raw)
	e.prev = raw
	e.wrote = true
}

func (e *minEmitter) Stmt(ast.Statement) {}
func (e *minEmitter) Indent()            {}
func (e *minEmitter) Dedent()            {}

// shortName returns the i-th name of the sequence a..z, aa..az, ba.. .
func shortName(i int) string {
	var b []byte
	for i++; i > 0; i = (i - 1) / 26 {
		b = append([]byte{byte('a' + (i-1)%26)}, b...)
	}
	return string(b)
}

type scope struct {
	vars  map[string]string
	saved int
}

// renamer resolves names against nested scopes. With assign false it only
// records the global names; with assign true it hands out short names.
type renamer struct {
	assign  bool
	globals map[string]bool
	names   map[*ast.Tok]string
	scopes  []scope
	counter int
}

// renameLocals maps every local declaration and reference token to its
// new name. Sibling scopes reuse names; nested scopes never reuse a name
// visible from an enclosing scope.
func renameLocals(root *ast.Chunk) map[*ast.Tok]string {
	r := &renamer{globals: map[string]bool{"self": true}, names: make(map[*ast.Tok]string)}
	r.chunk(root)
	r.assign = true
	r.scopes = nil
	r.counter = 0
	r.chunk(root)
	return r.names
}

func (r *renamer) chunk(c *ast.Chunk) { r.block(c.Block) }

func (r *renamer) push() {
	r.scopes = append(r.scopes, scope{vars: make(map[string]string), saved: r.counter})
}

func (r *renamer) pop() {
	r.counter = r.scopes[len(r.scopes)-1].saved
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *renamer) next() string {
	for {
		n := shortName(r.counter)
		r.counter++
		if !scanner.IsKeyword(n) && !r.globals[n] {
			return n
		}
	}
}

func (r *renamer) declare(t *ast.Tok) {
	if t.Value == "..." {
		return
	}
	name := t.Value
	if r.assign {
		name = r.next()
		r.names[t] = name
	}
	r.scopes[len(r.scopes)-1].vars[t.Value] = name
}

func (r *renamer) ref(t *ast.Tok) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if n, ok := r.scopes[i].vars[t.Value]; ok {
			if r.assign && n != t.Value {
				r.names[t] = n
			}
			return
		}
	}
	if !r.assign {
		r.globals[t.Value] = true
	}
}

func (r *renamer) block(b *ast.Block) {
	r.push()
	r.stmts(b)
	r.pop()
}

func (r *renamer) stmts(b *ast.Block) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		r.stmt(s)
	}
}

func (r *renamer) exprs(l *ast.ExprList) {
	for _, e := range l.Items {
		r.expr(e)
	}
}

func (r *renamer) stmt(s ast.Statement) {
	switch s := s.(type) {
	case *ast.Assign:
		r.exprs(&s.Targets)
		r.exprs(&s.Values)
	case *ast.CallStat:
		r.expr(s.Call)
	case *ast.Do:
		r.block(s.Body)
	case *ast.While:
		r.expr(s.Cond)
		r.block(s.Body)
	case *ast.Repeat:
		// The condition sees the body's locals.
		r.push()
		r.stmts(s.Body)
		r.expr(s.Cond)
		r.pop()
	case *ast.If:
		for _, c := range s.Clauses {
			r.expr(c.Cond)
			r.block(c.Body)
		}
		if s.Else != nil {
			r.block(s.Else.Body)
		}
	case *ast.ForNum:
		r.expr(s.Start)
		r.expr(s.Limit)
		r.expr(s.Step)
		r.push()
		r.declare(&s.Var)
		r.block(s.Body)
		r.pop()
	case *ast.ForIn:
		r.exprs(&s.Exprs)
		r.push()
		for i := range s.Names.Items {
			r.declare(&s.Names.Items[i])
		}
		r.block(s.Body)
		r.pop()
	case *ast.Function:
		r.ref(&s.Name.Path[0])
		r.funcBody(s.Body, s.Name.Method.Present())
	case *ast.LocalFunction:
		r.declare(&s.Name)
		r.funcBody(s.Body, false)
	case *ast.Local:
		r.exprs(&s.Values)
		for i := range s.Names.Items {
			r.declare(&s.Names.Items[i])
		}
	case *ast.Return:
		r.exprs(&s.Values)
	case *ast.Print:
		r.exprs(&s.Args)
	}
}

func (r *renamer) funcBody(f *ast.FuncBody, method bool) {
	r.push()
	if method {
		r.scopes[len(r.scopes)-1].vars["self"] = "self"
	}
	for i := range f.Params.Items {
		r.declare(&f.Params.Items[i])
	}
	r.block(f.Body)
	r.pop()
}

func (r *renamer) expr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Name:
		r.ref(&e.Name)
	case *ast.Index:
		r.expr(e.Obj)
		r.expr(e.Key)
	case *ast.Attr:
		r.expr(e.Obj)
	case *ast.BinOp:
		r.expr(e.Left)
		r.expr(e.Right)
	case *ast.UnOp:
		r.expr(e.Operand)
	case *ast.Paren:
		r.expr(e.X)
	case *ast.Call:
		r.expr(e.Fn)
		r.exprs(&e.Args.List)
	case *ast.MethodCall:
		r.expr(e.Obj)
		r.exprs(&e.Args.List)
	case *ast.FuncExpr:
		r.funcBody(e.Body, false)
	case *ast.Table:
		for _, f := range e.Fields {
			switch f := f.(type) {
			case *ast.PosField:
				r.expr(f.Value)
			case *ast.NamedField:
				r.expr(f.Value)
			case *ast.KeyField:
				r.expr(f.Key)
				r.expr(f.Value)
			}
		}
	}
}
