package ast

import (
	"errors"
	"slices"
)

// Point identifies the kind of place the walker is visiting.
type Point int

const (
	PointBlock    Point = iota // a *Block (function, loop or branch body)
	PointStmt                  // a Statement inside a block
	PointExpr                  // an Expr other than a call
	PointCall                  // a *Call or *MethodCall; Cursor.Args holds its arguments
	PointField                 // a table constructor Field
	PointFuncBody              // a *FuncBody
	PointChunk                 // the *Chunk at the root of a walk
	PointClause                // an *IfClause or the *ElseClause of an If
	PointFuncName              // the *FuncName of a function statement
	PointArgs                  // the *Args of a call, after the callee
)

var pointNames = [...]string{
	PointBlock:    "block",
	PointStmt:     "stmt",
	PointExpr:     "expr",
	PointCall:     "call",
	PointField:    "field",
	PointFuncBody: "funcbody",
	PointChunk:    "chunk",
	PointClause:   "clause",
	PointFuncName: "funcname",
	PointArgs:     "args",
}

func (p Point) String() string { return pointNames[p] }

// Action tells the walker how to proceed after a visit.
type Action int

const (
	Continue Action = iota // descend into the node's children
	Skip                   // do not descend
	Stop                   // end the walk
)

// Cursor describes the node being visited.
type Cursor struct {
	Point  Point
	Node   Node
	Parent Node
	// Args is the argument list of a call at PointCall and PointArgs.
	// Assigning to its elements rewrites the call arguments in place.
	Args []Expr

	set     func(Node)
	remove  func()
	removed bool
}

// Replace swaps the visited node for n in its parent. The walker then
// descends into n instead of the original node.
func (c *Cursor) Replace(n Node) {
	if c.set != nil {
		c.set(n)
	}
	c.Node = n
}

// Delete removes the visited statement from its block. It panics for
// nodes that are not block statements.
func (c *Cursor) Delete() {
	if c.remove == nil {
		panic("ast: Delete called on a node that is not a block statement")
	}
	c.remove()
	c.removed = true
}

// Visitor is called for every node in pre-order.
type Visitor interface {
	Visit(c *Cursor) (Action, error)
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(c *Cursor) (Action, error)

func (f VisitorFunc) Visit(c *Cursor) (Action, error) { return f(c) }

var errStop = errors.New("stop")

// Walk visits root and every node below it: statements in order, then
// each statement's sub-expressions in grammar order (assignment targets
// before values, left operand before right, callee before arguments).
// Clauses of an if, function names and argument lists get their own
// points; name lists and bare tokens are reached through their owner.
// A visitor may mutate or replace the visited node; the walker reads the
// node's children after the visit returns.
func Walk(root Node, v Visitor) error {
	w := &walker{v: v}
	var err error
	switch n := root.(type) {
	case *Chunk:
		err = w.chunk(n)
	case *Block:
		err = w.block(n, nil, nil)
	case Statement:
		err = w.stmt(&Cursor{Point: PointStmt, Node: n})
	case Expr:
		err = w.expr(n, nil, nil)
	case *FuncBody:
		err = w.funcBody(n, nil, nil)
	case Field:
		err = w.field(n, nil, nil)
	}
	if errors.Is(err, errStop) {
		return nil
	}
	return err
}

// Collect walks root and gathers whatever fn returns for each node.
func Collect[T any](root Node, fn func(c *Cursor) ([]T, error)) ([]T, error) {
	var out []T
	err := Walk(root, VisitorFunc(func(c *Cursor) (Action, error) {
		items, err := fn(c)
		if err != nil {
			return Stop, err
		}
		out = append(out, items...)
		return Continue, nil
	}))
	return out, err
}

type walker struct {
	v Visitor
}

// visit calls the visitor and reports whether to descend.
func (w *walker) visit(c *Cursor) (bool, error) {
	act, err := w.v.Visit(c)
	if err != nil {
		return false, err
	}
	switch act {
	case Stop:
		return false, errStop
	case Skip:
		return false, nil
	}
	return !c.removed && c.Node != nil, nil
}

func (w *walker) chunk(ch *Chunk) error {
	c := &Cursor{Point: PointChunk, Node: ch}
	descend, err := w.visit(c)
	if !descend || err != nil {
		return err
	}
	ch = c.Node.(*Chunk)
	return w.block(ch.Block, ch, func(b *Block) { ch.Block = b })
}

// leaf visits a node the walker does not descend into.
func (w *walker) leaf(c *Cursor) error {
	_, err := w.visit(c)
	return err
}

func (w *walker) block(b *Block, parent Node, set func(*Block)) error {
	if b == nil {
		return nil
	}
	c := &Cursor{Point: PointBlock, Node: b, Parent: parent}
	if set != nil {
		c.set = func(n Node) { set(n.(*Block)) }
	}
	descend, err := w.visit(c)
	if !descend || err != nil {
		return err
	}
	b = c.Node.(*Block)
	for i := 0; i < len(b.Stmts); {
		idx := i
		c := &Cursor{Point: PointStmt, Node: b.Stmts[idx], Parent: b}
		c.set = func(n Node) { b.Stmts[idx] = n.(Statement) }
		c.remove = func() { b.Stmts = slices.Delete(b.Stmts, idx, idx+1) }
		if err := w.stmt(c); err != nil {
			return err
		}
		if !c.removed {
			i++
		}
	}
	return nil
}

func (w *walker) exprList(l *ExprList, parent Node) error {
	for i := range l.Items {
		idx := i
		if err := w.expr(l.Items[idx], parent, func(e Expr) { l.Items[idx] = e }); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) stmt(c *Cursor) error {
	descend, err := w.visit(c)
	if !descend || err != nil {
		return err
	}
	switch s := c.Node.(type) {
	case *Assign:
		if err := w.exprList(&s.Targets, s); err != nil {
			return err
		}
		return w.exprList(&s.Values, s)
	case *CallStat:
		return w.expr(s.Call, s, func(e Expr) { s.Call = e })
	case *Do:
		return w.block(s.Body, s, func(b *Block) { s.Body = b })
	case *While:
		if err := w.expr(s.Cond, s, func(e Expr) { s.Cond = e }); err != nil {
			return err
		}
		return w.block(s.Body, s, func(b *Block) { s.Body = b })
	case *Repeat:
		if err := w.block(s.Body, s, func(b *Block) { s.Body = b }); err != nil {
			return err
		}
		return w.expr(s.Cond, s, func(e Expr) { s.Cond = e })
	case *If:
		for i := range s.Clauses {
			if err := w.ifClause(s, i); err != nil {
				return err
			}
		}
		if s.Else != nil {
			return w.elseClause(s)
		}
	case *ForNum:
		if err := w.expr(s.Start, s, func(e Expr) { s.Start = e }); err != nil {
			return err
		}
		if err := w.expr(s.Limit, s, func(e Expr) { s.Limit = e }); err != nil {
			return err
		}
		if err := w.expr(s.Step, s, func(e Expr) { s.Step = e }); err != nil {
			return err
		}
		return w.block(s.Body, s, func(b *Block) { s.Body = b })
	case *ForIn:
		if err := w.exprList(&s.Exprs, s); err != nil {
			return err
		}
		return w.block(s.Body, s, func(b *Block) { s.Body = b })
	case *Function:
		if s.Name != nil {
			c := &Cursor{Point: PointFuncName, Node: s.Name, Parent: s}
			c.set = func(n Node) { s.Name = n.(*FuncName) }
			if err := w.leaf(c); err != nil {
				return err
			}
		}
		return w.funcBody(s.Body, s, func(f *FuncBody) { s.Body = f })
	case *LocalFunction:
		return w.funcBody(s.Body, s, func(f *FuncBody) { s.Body = f })
	case *Local:
		return w.exprList(&s.Values, s)
	case *Return:
		return w.exprList(&s.Values, s)
	case *Print:
		return w.exprList(&s.Args, s)
	}
	return nil
}

func (w *walker) ifClause(s *If, idx int) error {
	c := &Cursor{Point: PointClause, Node: s.Clauses[idx], Parent: s}
	c.set = func(n Node) { s.Clauses[idx] = n.(*IfClause) }
	descend, err := w.visit(c)
	if !descend || err != nil {
		return err
	}
	cl := c.Node.(*IfClause)
	if err := w.expr(cl.Cond, cl, func(e Expr) { cl.Cond = e }); err != nil {
		return err
	}
	return w.block(cl.Body, cl, func(b *Block) { cl.Body = b })
}

func (w *walker) elseClause(s *If) error {
	c := &Cursor{Point: PointClause, Node: s.Else, Parent: s}
	c.set = func(n Node) { s.Else = n.(*ElseClause) }
	descend, err := w.visit(c)
	if !descend || err != nil {
		return err
	}
	el := c.Node.(*ElseClause)
	return w.block(el.Body, el, func(b *Block) { el.Body = b })
}

func (w *walker) args(a *Args, parent Node, set func(*Args)) error {
	if a == nil {
		return nil
	}
	c := &Cursor{Point: PointArgs, Node: a, Parent: parent, Args: a.List.Items}
	c.set = func(n Node) { set(n.(*Args)) }
	descend, err := w.visit(c)
	if !descend || err != nil {
		return err
	}
	a = c.Node.(*Args)
	return w.exprList(&a.List, a)
}

func (w *walker) expr(e Expr, parent Node, set func(Expr)) error {
	if e == nil {
		return nil
	}
	c := &Cursor{Point: PointExpr, Node: e, Parent: parent}
	if set != nil {
		c.set = func(n Node) { set(n.(Expr)) }
	}
	switch n := e.(type) {
	case *Call:
		c.Point = PointCall
		if n.Args != nil {
			c.Args = n.Args.List.Items
		}
	case *MethodCall:
		c.Point = PointCall
		if n.Args != nil {
			c.Args = n.Args.List.Items
		}
	}
	descend, err := w.visit(c)
	if !descend || err != nil {
		return err
	}
	switch n := c.Node.(type) {
	case *Index:
		if err := w.expr(n.Obj, n, func(e Expr) { n.Obj = e }); err != nil {
			return err
		}
		return w.expr(n.Key, n, func(e Expr) { n.Key = e })
	case *Attr:
		return w.expr(n.Obj, n, func(e Expr) { n.Obj = e })
	case *BinOp:
		if err := w.expr(n.Left, n, func(e Expr) { n.Left = e }); err != nil {
			return err
		}
		return w.expr(n.Right, n, func(e Expr) { n.Right = e })
	case *UnOp:
		return w.expr(n.Operand, n, func(e Expr) { n.Operand = e })
	case *Paren:
		return w.expr(n.X, n, func(e Expr) { n.X = e })
	case *Call:
		if err := w.expr(n.Fn, n, func(e Expr) { n.Fn = e }); err != nil {
			return err
		}
		return w.args(n.Args, n, func(a *Args) { n.Args = a })
	case *MethodCall:
		if err := w.expr(n.Obj, n, func(e Expr) { n.Obj = e }); err != nil {
			return err
		}
		return w.args(n.Args, n, func(a *Args) { n.Args = a })
	case *FuncExpr:
		return w.funcBody(n.Body, n, func(f *FuncBody) { n.Body = f })
	case *Table:
		for i := range n.Fields {
			idx := i
			if err := w.field(n.Fields[idx], n, func(f Field) { n.Fields[idx] = f }); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) field(f Field, parent Node, set func(Field)) error {
	c := &Cursor{Point: PointField, Node: f, Parent: parent}
	if set != nil {
		c.set = func(n Node) { set(n.(Field)) }
	}
	descend, err := w.visit(c)
	if !descend || err != nil {
		return err
	}
	switch n := c.Node.(type) {
	case *PosField:
		return w.expr(n.Value, n, func(e Expr) { n.Value = e })
	case *NamedField:
		return w.expr(n.Value, n, func(e Expr) { n.Value = e })
	case *KeyField:
		if err := w.expr(n.Key, n, func(e Expr) { n.Key = e }); err != nil {
			return err
		}
		return w.expr(n.Value, n, func(e Expr) { n.Value = e })
	}
	return nil
}

func (w *walker) funcBody(f *FuncBody, parent Node, set func(*FuncBody)) error {
	if f == nil {
		return nil
	}
	c := &Cursor{Point: PointFuncBody, Node: f, Parent: parent}
	if set != nil {
		c.set = func(n Node) { set(n.(*FuncBody)) }
	}
	descend, err := w.visit(c)
	if !descend || err != nil {
		return err
	}
	f = c.Node.(*FuncBody)
	return w.block(f.Body, f, func(b *Block) { f.Body = b })
}
