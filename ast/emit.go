package ast

// Role tells an Emitter how a token is used, for writers that re-space
// the output.
type Role int

const (
	RoleNone   Role = iota
	RoleBinary      // binary or assignment operator, = in fields and for
	RoleUnary       // prefix operator
	RoleSep         // , or ; between items
	RoleEOF         // carries the chunk's trailing trivia, Raw is empty
)

// Emitter receives the tokens of a tree in source order.
//
// Indent and Dedent bracket every nested body (blocks, table constructors
// and parenthesized argument lists). Stmt is called before the first
// token of each statement.
type Emitter interface {
	Tok(t *Tok, r Role)
	Stmt(s Statement)
	Indent()
	Dedent()
}

// Emit feeds every token of n to e. Absent tokens are skipped.
func Emit(n Node, e Emitter) {
	em := emitter{e}
	em.node(n)
}

type emitter struct{ e Emitter }

func (m emitter) tok(t *Tok, r Role) {
	if t.Present() {
		m.e.Tok(t, r)
	}
}

func (m emitter) body(b *Block) {
	m.e.Indent()
	m.block(b)
	m.e.Dedent()
}

func (m emitter) block(b *Block) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		m.e.Stmt(s)
		m.node(s)
	}
}

func (m emitter) exprs(l *ExprList) {
	for i := range l.Items {
		if i > 0 && i-1 < len(l.Seps) {
			m.tok(&l.Seps[i-1], RoleSep)
		}
		m.node(l.Items[i])
	}
}

func (m emitter) names(l *NameList) {
	for i := range l.Items {
		if i > 0 && i-1 < len(l.Seps) {
			m.tok(&l.Seps[i-1], RoleSep)
		}
		m.tok(&l.Items[i], RoleNone)
	}
}

func (m emitter) node(n Node) {
	switch n := n.(type) {
	case nil:
	case *Chunk:
		m.block(n.Block)
		eof := Tok{Trivia: n.Trailing}
		m.e.Tok(&eof, RoleEOF)
	case *Block:
		m.block(n)

	case *Assign:
		m.exprs(&n.Targets)
		m.tok(&n.Op, RoleBinary)
		m.exprs(&n.Values)
	case *CallStat:
		m.node(n.Call)
	case *Do:
		m.tok(&n.Do, RoleNone)
		m.body(n.Body)
		m.tok(&n.End, RoleNone)
	case *While:
		m.tok(&n.While, RoleNone)
		m.node(n.Cond)
		if n.Short {
			m.block(n.Body)
			return
		}
		m.tok(&n.Do, RoleNone)
		m.body(n.Body)
		m.tok(&n.End, RoleNone)
	case *Repeat:
		m.tok(&n.Repeat, RoleNone)
		m.body(n.Body)
		m.tok(&n.Until, RoleNone)
		m.node(n.Cond)
	case *If:
		for _, c := range n.Clauses {
			m.tok(&c.Kw, RoleNone)
			m.node(c.Cond)
			m.tok(&c.Then, RoleNone)
			if n.Short {
				m.block(c.Body)
			} else {
				m.body(c.Body)
			}
		}
		if n.Else != nil {
			m.tok(&n.Else.Else, RoleNone)
			if n.Short {
				m.block(n.Else.Body)
			} else {
				m.body(n.Else.Body)
			}
		}
		m.tok(&n.End, RoleNone)
	case *ForNum:
		m.tok(&n.For, RoleNone)
		m.tok(&n.Var, RoleNone)
		m.tok(&n.Eq, RoleBinary)
		m.node(n.Start)
		m.tok(&n.Comma1, RoleSep)
		m.node(n.Limit)
		m.tok(&n.Comma2, RoleSep)
		m.node(n.Step)
		m.tok(&n.Do, RoleNone)
		m.body(n.Body)
		m.tok(&n.End, RoleNone)
	case *ForIn:
		m.tok(&n.For, RoleNone)
		m.names(&n.Names)
		m.tok(&n.In, RoleNone)
		m.exprs(&n.Exprs)
		m.tok(&n.Do, RoleNone)
		m.body(n.Body)
		m.tok(&n.End, RoleNone)
	case *Function:
		m.tok(&n.Function, RoleNone)
		m.node(n.Name)
		m.node(n.Body)
	case *FuncName:
		for i := range n.Path {
			if i > 0 && i-1 < len(n.Dots) {
				m.tok(&n.Dots[i-1], RoleNone)
			}
			m.tok(&n.Path[i], RoleNone)
		}
		m.tok(&n.Colon, RoleNone)
		m.tok(&n.Method, RoleNone)
	case *LocalFunction:
		m.tok(&n.Local, RoleNone)
		m.tok(&n.Function, RoleNone)
		m.tok(&n.Name, RoleNone)
		m.node(n.Body)
	case *Local:
		m.tok(&n.Local, RoleNone)
		m.names(&n.Names)
		m.tok(&n.Eq, RoleBinary)
		m.exprs(&n.Values)
	case *Break:
		m.tok(&n.Break, RoleNone)
	case *Return:
		m.tok(&n.Return, RoleNone)
		m.exprs(&n.Values)
		m.tok(&n.Semi, RoleNone)
	case *Goto:
		m.tok(&n.Goto, RoleNone)
		m.tok(&n.Label, RoleNone)
	case *Label:
		m.tok(&n.Label, RoleNone)
	case *Empty:
		m.tok(&n.Semi, RoleNone)
	case *Print:
		m.tok(&n.Q, RoleNone)
		m.exprs(&n.Args)

	case *Name:
		m.tok(&n.Name, RoleNone)
	case *Value:
		m.tok(&n.Tok, RoleNone)
	case *Vararg:
		m.tok(&n.Tok, RoleNone)
	case *Index:
		m.node(n.Obj)
		m.tok(&n.Open, RoleNone)
		m.node(n.Key)
		m.tok(&n.Close, RoleNone)
	case *Attr:
		m.node(n.Obj)
		m.tok(&n.Dot, RoleNone)
		m.tok(&n.Name, RoleNone)
	case *BinOp:
		m.node(n.Left)
		m.tok(&n.Op, RoleBinary)
		m.node(n.Right)
	case *UnOp:
		m.tok(&n.Op, RoleUnary)
		m.node(n.Operand)
	case *Call:
		m.node(n.Fn)
		m.node(n.Args)
	case *MethodCall:
		m.node(n.Obj)
		m.tok(&n.Colon, RoleNone)
		m.tok(&n.Method, RoleNone)
		m.node(n.Args)
	case *Args:
		if n.Kind != ParenArgs {
			m.exprs(&n.List)
			return
		}
		m.tok(&n.Open, RoleNone)
		m.e.Indent()
		m.exprs(&n.List)
		m.e.Dedent()
		m.tok(&n.Close, RoleNone)
	case *FuncExpr:
		m.tok(&n.Function, RoleNone)
		m.node(n.Body)
	case *FuncBody:
		m.tok(&n.Open, RoleNone)
		m.names(&n.Params)
		m.tok(&n.Close, RoleNone)
		m.body(n.Body)
		m.tok(&n.End, RoleNone)
	case *Table:
		m.tok(&n.Open, RoleNone)
		m.e.Indent()
		for i, f := range n.Fields {
			m.node(f)
			if i < len(n.Seps) {
				m.tok(&n.Seps[i], RoleSep)
			}
		}
		m.e.Dedent()
		m.tok(&n.Close, RoleNone)
	case *Paren:
		m.tok(&n.Open, RoleNone)
		m.node(n.X)
		m.tok(&n.Close, RoleNone)

	case *PosField:
		m.node(n.Value)
	case *NamedField:
		m.tok(&n.Name, RoleNone)
		m.tok(&n.Eq, RoleBinary)
		m.node(n.Value)
	case *KeyField:
		m.tok(&n.Open, RoleNone)
		m.node(n.Key)
		m.tok(&n.Close, RoleNone)
		m.tok(&n.Eq, RoleBinary)
		m.node(n.Value)
	}
}
