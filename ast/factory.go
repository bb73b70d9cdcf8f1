package ast

import (
	"strconv"

	"github.com/p8tools/p8lua/scanner"
)

// Factory centralizes creation of synthesized nodes for transform passes.
// Synthesized tokens carry no trivia and no position; writers that rebuild
// text from the tree add the spacing they need.
type Factory struct{}

// NewFactory returns a new Factory.
func NewFactory() *Factory { return &Factory{} }

// --- Tokens ---

// Tok creates a bare token.
func (f *Factory) Tok(kind scanner.Kind, raw string) Tok {
	return Tok{Token: scanner.NewToken(kind, raw)}
}

// Sym creates a symbol token.
func (f *Factory) Sym(s string) Tok { return f.Tok(scanner.Symbol, s) }

// Kw creates a keyword token.
func (f *Factory) Kw(s string) Tok { return f.Tok(scanner.Keyword, s) }

// --- Expressions ---

// Name creates a name reference.
func (f *Factory) Name(name string) *Name {
	return &Name{Name: f.Tok(scanner.Name, name)}
}

// Number creates an integer literal.
func (f *Factory) Number(n int) *Value {
	return &Value{Tok: f.Tok(scanner.Number, strconv.Itoa(n))}
}

// String creates a double-quoted string literal.
func (f *Factory) String(s string) *Value {
	return &Value{Tok: f.Tok(scanner.String, scanner.QuoteString(s))}
}

// BinOp creates left op right.
func (f *Factory) BinOp(left Expr, op string, right Expr) *BinOp {
	kind := scanner.Symbol
	if op == "and" || op == "or" {
		kind = scanner.Keyword
	}
	return &BinOp{Left: left, Op: f.Tok(kind, op), Right: right}
}

// UnOp creates op operand.
func (f *Factory) UnOp(op string, operand Expr) *UnOp {
	kind := scanner.Symbol
	if op == "not" {
		kind = scanner.Keyword
	}
	return &UnOp{Op: f.Tok(kind, op), Operand: operand}
}

// Paren wraps x in parentheses.
func (f *Factory) Paren(x Expr) *Paren {
	return &Paren{Open: f.Sym("("), X: x, Close: f.Sym(")")}
}

// Attr creates obj.name.
func (f *Factory) Attr(obj Expr, name string) *Attr {
	return &Attr{Obj: obj, Dot: f.Sym("."), Name: f.Tok(scanner.Name, name)}
}

// Index creates obj[key].
func (f *Factory) Index(obj, key Expr) *Index {
	return &Index{Obj: obj, Open: f.Sym("["), Key: key, Close: f.Sym("]")}
}

// Exprs creates a comma separated expression list.
func (f *Factory) Exprs(items ...Expr) ExprList {
	l := ExprList{Items: items}
	for i := 1; i < len(items); i++ {
		l.Seps = append(l.Seps, f.Sym(","))
	}
	return l
}

// Call creates fn(args...).
func (f *Factory) Call(fn Expr, args ...Expr) *Call {
	return &Call{Fn: fn, Args: &Args{
		Kind:  ParenArgs,
		Open:  f.Sym("("),
		List:  f.Exprs(args...),
		Close: f.Sym(")"),
	}}
}

// FuncExpr creates function() body end.
func (f *Factory) FuncExpr(body *Block) *FuncExpr {
	return &FuncExpr{Function: f.Kw("function"), Body: &FuncBody{
		Open:  f.Sym("("),
		Close: f.Sym(")"),
		Body:  body,
		End:   f.Kw("end"),
	}}
}

// --- Statements ---

// CallStat wraps a call as a statement.
func (f *Factory) CallStat(call Expr) *CallStat { return &CallStat{Call: call} }

// Assign creates target = value.
func (f *Factory) Assign(target, value Expr) *Assign {
	return &Assign{Targets: f.Exprs(target), Op: f.Sym("="), Values: f.Exprs(value)}
}

// BlockFrom creates a block holding stmts.
func (f *Factory) BlockFrom(stmts ...Statement) *Block {
	return &Block{Stmts: stmts}
}
