package ast

import (
	"github.com/p8tools/p8lua/scanner"
)

// Node is the interface for all AST nodes.
type Node interface {
	node()
}

// Statement is the interface for statement nodes.
type Statement interface {
	Node
	stmt()
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr()
}

// Field is the interface for table constructor fields.
type Field interface {
	Node
	field()
}

// Tok is a grammatical token together with the trivia (spaces, newlines,
// comments) that preceded it in the source. A zero Tok means the token is
// absent from the production.
type Tok struct {
	Trivia []scanner.Token
	scanner.Token
}

// Present reports whether the token appears in the source.
func (t Tok) Present() bool { return t.Raw != "" }

// Synthetic reports whether the token was built rather than lexed.
func (t Tok) Synthetic() bool { return t.Present() && t.Pos.Line == 0 }

// ExprList is a comma separated expression list. Seps holds the commas.
type ExprList struct {
	Items []Expr
	Seps  []Tok
}

// Len returns the number of expressions.
func (l *ExprList) Len() int { return len(l.Items) }

// NameList is a comma separated list of names, possibly ending in "...".
type NameList struct {
	Items []Tok
	Seps  []Tok
}

// Chunk is the root node.
type Chunk struct {
	Block *Block
	// Trailing holds the trivia after the last statement.
	Trailing []scanner.Token
	Filename string
}

func (c *Chunk) node() {}

// Block is an ordered statement list.
type Block struct {
	Stmts []Statement
}

func (b *Block) node() {}

// --- Statements ---

// Assign represents varlist = explist and the compound forms (a += 1).
type Assign struct {
	Targets ExprList
	Op      Tok
	Values  ExprList
}

func (s *Assign) node() {}
func (s *Assign) stmt() {}

// Compound reports whether the assignment uses an operator like +=.
func (s *Assign) Compound() bool { return s.Op.Value != "=" }

// CallStat is a function or method call used as a statement.
type CallStat struct {
	Call Expr // *Call or *MethodCall
}

func (s *CallStat) node() {}
func (s *CallStat) stmt() {}

// Do represents do block end.
type Do struct {
	Do   Tok
	Body *Block
	End  Tok
}

func (s *Do) node() {}
func (s *Do) stmt() {}

// While represents while cond do block end. Short marks the single line
// form while (cond) stmt, which has no do/end.
type While struct {
	While Tok
	Cond  Expr
	Do    Tok
	Body  *Block
	End   Tok
	Short bool
}

func (s *While) node() {}
func (s *While) stmt() {}

// Repeat represents repeat block until cond.
type Repeat struct {
	Repeat Tok
	Body   *Block
	Until  Tok
	Cond   Expr
}

func (s *Repeat) node() {}
func (s *Repeat) stmt() {}

// IfClause is the if or an elseif branch of an If.
type IfClause struct {
	Kw   Tok // if / elseif
	Cond Expr
	Then Tok
	Body *Block
}

func (c *IfClause) node() {}

// ElseClause is the trailing else branch.
type ElseClause struct {
	Else Tok
	Body *Block
}

func (c *ElseClause) node() {}

// If represents if/elseif/else/end. Short marks the single line form
// if (cond) stmt [else stmt] which has no then/end.
type If struct {
	Clauses []*IfClause
	Else    *ElseClause
	End     Tok
	Short   bool
}

func (s *If) node() {}
func (s *If) stmt() {}

// ForNum represents for v = start, limit [, step] do block end.
type ForNum struct {
	For    Tok
	Var    Tok
	Eq     Tok
	Start  Expr
	Comma1 Tok
	Limit  Expr
	Comma2 Tok
	Step   Expr // nil if omitted
	Do     Tok
	Body   *Block
	End    Tok
}

func (s *ForNum) node() {}
func (s *ForNum) stmt() {}

// ForIn represents for names in explist do block end.
type ForIn struct {
	For   Tok
	Names NameList
	In    Tok
	Exprs ExprList
	Do    Tok
	Body  *Block
	End   Tok
}

func (s *ForIn) node() {}
func (s *ForIn) stmt() {}

// Function represents function funcname funcbody.
type Function struct {
	Function Tok
	Name     *FuncName
	Body     *FuncBody
}

func (s *Function) node() {}
func (s *Function) stmt() {}

// LocalFunction represents local function name funcbody.
type LocalFunction struct {
	Local    Tok
	Function Tok
	Name     Tok
	Body     *FuncBody
}

func (s *LocalFunction) node() {}
func (s *LocalFunction) stmt() {}

// Local represents local namelist [= explist].
type Local struct {
	Local  Tok
	Names  NameList
	Eq     Tok
	Values ExprList
}

func (s *Local) node() {}
func (s *Local) stmt() {}

// Break represents break.
type Break struct {
	Break Tok
}

func (s *Break) node() {}
func (s *Break) stmt() {}

// Return represents return [explist] [;].
type Return struct {
	Return Tok
	Values ExprList
	Semi   Tok
}

func (s *Return) node() {}
func (s *Return) stmt() {}

// Goto represents goto name.
type Goto struct {
	Goto  Tok
	Label Tok
}

func (s *Goto) node() {}
func (s *Goto) stmt() {}

// Label represents ::name::.
type Label struct {
	Label Tok
}

func (s *Label) node() {}
func (s *Label) stmt() {}

// Empty is a bare ; separator.
type Empty struct {
	Semi Tok
}

func (s *Empty) node() {}
func (s *Empty) stmt() {}

// Print is the ?expr, ... shorthand for print(expr, ...).
type Print struct {
	Q    Tok
	Args ExprList
}

func (s *Print) node() {}
func (s *Print) stmt() {}

// --- Names and variables ---

// Name is a plain identifier reference.
type Name struct {
	Name Tok
}

func (e *Name) node() {}
func (e *Name) expr() {}

// Index is obj[key].
type Index struct {
	Obj   Expr
	Open  Tok
	Key   Expr
	Close Tok
}

func (e *Index) node() {}
func (e *Index) expr() {}

// Attr is obj.name.
type Attr struct {
	Obj  Expr
	Dot  Tok
	Name Tok
}

func (e *Attr) node() {}
func (e *Attr) expr() {}

// FuncName is the dotted path of a function declaration with an optional
// :method suffix.
type FuncName struct {
	Path   []Tok
	Dots   []Tok
	Colon  Tok
	Method Tok
}

func (n *FuncName) node() {}

// String returns the name as written, e.g. "a.b:c".
func (n *FuncName) String() string {
	s := ""
	for i, p := range n.Path {
		if i > 0 {
			s += "."
		}
		s += p.Value
	}
	if n.Method.Present() {
		s += ":" + n.Method.Value
	}
	return s
}

// --- Expressions ---

// Value is a nil, true, false, number or string literal.
type Value struct {
	Tok Tok
}

func (e *Value) node() {}
func (e *Value) expr() {}

// Vararg is the ... expression.
type Vararg struct {
	Tok Tok
}

func (e *Vararg) node() {}
func (e *Vararg) expr() {}

// BinOp is a binary operation.
type BinOp struct {
	Left  Expr
	Op    Tok
	Right Expr
}

func (e *BinOp) node() {}
func (e *BinOp) expr() {}

// UnOp is a unary operation.
type UnOp struct {
	Op      Tok
	Operand Expr
}

func (e *UnOp) node() {}
func (e *UnOp) expr() {}

// ArgsKind tells how call arguments were written.
type ArgsKind int

const (
	ParenArgs  ArgsKind = iota // f(a, b)
	TableArgs                  // f{...}
	StringArgs                 // f"str"
)

// Args is a call argument list. For the table and string shorthand forms
// List holds the single argument and Open/Close are absent.
type Args struct {
	Kind  ArgsKind
	Open  Tok
	List  ExprList
	Close Tok
}

func (a *Args) node() {}

// Call is fn(args).
type Call struct {
	Fn   Expr
	Args *Args
}

func (e *Call) node() {}
func (e *Call) expr() {}

// MethodCall is obj:method(args).
type MethodCall struct {
	Obj    Expr
	Colon  Tok
	Method Tok
	Args   *Args
}

func (e *MethodCall) node() {}
func (e *MethodCall) expr() {}

// FuncBody is the parameter list and body shared by function forms.
type FuncBody struct {
	Open   Tok
	Params NameList
	Close  Tok
	Body   *Block
	End    Tok
}

func (f *FuncBody) node() {}

// FuncExpr is an anonymous function literal.
type FuncExpr struct {
	Function Tok
	Body     *FuncBody
}

func (e *FuncExpr) node() {}
func (e *FuncExpr) expr() {}

// Table is a table constructor. Seps holds the , or ; after each field,
// including an optional trailing one.
type Table struct {
	Open   Tok
	Fields []Field
	Seps   []Tok
	Close  Tok
}

func (e *Table) node() {}
func (e *Table) expr() {}

// Paren is a parenthesized expression.
type Paren struct {
	Open  Tok
	X     Expr
	Close Tok
}

func (e *Paren) node() {}
func (e *Paren) expr() {}

// --- Table fields ---

// PosField is a positional field.
type PosField struct {
	Value Expr
}

func (f *PosField) node()  {}
func (f *PosField) field() {}

// NamedField is name = value.
type NamedField struct {
	Name  Tok
	Eq    Tok
	Value Expr
}

func (f *NamedField) node()  {}
func (f *NamedField) field() {}

// KeyField is [key] = value.
type KeyField struct {
	Open  Tok
	Key   Expr
	Close Tok
	Eq    Tok
	Value Expr
}

func (f *KeyField) node()  {}
func (f *KeyField) field() {}
