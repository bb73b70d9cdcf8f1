// Package parser builds an AST from PICO-8 Lua tokens with a
// backtracking recursive-descent parser.
package parser

import (
	"fmt"

	"github.com/p8tools/p8lua/ast"
	"github.com/p8tools/p8lua/scanner"
	"modernc.org/token"
)

// ParserError reports that no production matched. Token is the token the
// parser stopped at, or nil at end of input.
type ParserError struct {
	Msg   string
	Token *scanner.Token
}

func (e *ParserError) Error() string {
	if e.Token == nil {
		return e.Msg + " at end of input"
	}
	return fmt.Sprintf("%s at line %d char %d", e.Msg, e.Token.Pos.Line, e.Token.Pos.Column)
}

// Position returns the position of the offending token.
func (e *ParserError) Position() token.Position {
	if e.Token == nil {
		return token.Position{}
	}
	return e.Token.Pos
}

// Parser turns a token sequence into a Chunk.
type Parser struct {
	version int
	b       *Buffer
	short   int // nesting of single line if/while bodies
}

// New returns a parser for the given dialect version.
func New(version int) *Parser {
	return &Parser{version: version}
}

// Parse is shorthand for New(version).Parse(tokens).
func Parse(tokens []scanner.Token, version int) (*ast.Chunk, error) {
	return New(version).Parse(tokens)
}

// Rewinds reports how many backtracking rewinds the last Parse did.
func (p *Parser) Rewinds() int {
	if p.b == nil {
		return 0
	}
	return p.b.Rewinds()
}

// Parse parses a complete chunk. A syntax error aborts the whole parse.
func (p *Parser) Parse(tokens []scanner.Token) (*ast.Chunk, error) {
	p.b = NewBuffer(FromTokens(tokens))
	p.short = 0
	chunk := &ast.Chunk{Block: &ast.Block{}}
	if len(tokens) > 0 {
		chunk.Filename = tokens[0].Pos.Filename
	}
	for {
		if _, _, ok := p.b.PeekSignificant(); !ok {
			break
		}
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		chunk.Block.Stmts = append(chunk.Block.Stmts, s)
		p.b.Advance()
	}
	chunk.Trailing = p.b.Trailing()
	return chunk, nil
}

// --- helpers ---

func (p *Parser) errorf(format string, args ...any) error {
	err := &ParserError{Msg: fmt.Sprintf(format, args...)}
	if t, _, ok := p.b.PeekSignificant(); ok {
		err.Token = &t
	}
	return err
}

func (p *Parser) accept(pat scanner.Pattern) (ast.Tok, bool) { return p.b.Accept(pat) }

func (p *Parser) expect(pat scanner.Pattern) (ast.Tok, error) {
	if t, ok := p.b.Accept(pat); ok {
		return t, nil
	}
	if t, _, ok := p.b.PeekSignificant(); ok {
		return ast.Tok{}, p.errorf("expected '%s' near '%s'", pat, t.Raw)
	}
	return ast.Tok{}, p.errorf("expected '%s'", pat)
}

// peekIs reports whether the next significant token matches pat.
func (p *Parser) peekIs(pat scanner.Pattern) bool {
	t, _, ok := p.b.PeekSignificant()
	return ok && t.Matches(pat)
}

var blockEnds = []scanner.Pattern{
	scanner.Kw("end"), scanner.Kw("else"), scanner.Kw("elseif"), scanner.Kw("until"),
}

// atBlockEnd reports whether the next token closes the current block. In
// a single line body the end of the line also closes it.
func (p *Parser) atBlockEnd() bool {
	t, newline, ok := p.b.PeekSignificant()
	if !ok || (p.short > 0 && newline) {
		return true
	}
	for _, pat := range blockEnds {
		if t.Matches(pat) {
			return true
		}
	}
	return false
}

// --- blocks and statements ---

// block parses statements up to a closing keyword. Nested blocks are
// never single line, even inside a single line if.
func (p *Parser) block() (*ast.Block, error) {
	saved := p.short
	p.short = 0
	defer func() { p.short = saved }()
	b := &ast.Block{}
	for !p.atBlockEnd() {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	return b, nil
}

// shortBlock parses the statements remaining on the current line.
func (p *Parser) shortBlock() (*ast.Block, error) {
	p.short++
	defer func() { p.short-- }()
	b := &ast.Block{}
	for {
		if _, newline, ok := p.b.PeekSignificant(); !ok || newline {
			break
		}
		if p.peekIs(scanner.Kw("else")) || p.peekIs(scanner.Kw("end")) ||
			p.peekIs(scanner.Kw("elseif")) || p.peekIs(scanner.Kw("until")) {
			break
		}
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, s)
	}
	return b, nil
}

func (p *Parser) statement() (ast.Statement, error) {
	if t, ok := p.accept(scanner.Sym(";")); ok {
		return &ast.Empty{Semi: t}, nil
	}
	if t, ok := p.accept(scanner.Of(scanner.Label)); ok {
		return &ast.Label{Label: t}, nil
	}
	if t, ok := p.accept(scanner.Kw("break")); ok {
		return &ast.Break{Break: t}, nil
	}
	if t, ok := p.accept(scanner.Kw("goto")); ok {
		name, err := p.expect(scanner.Of(scanner.Name))
		if err != nil {
			return nil, err
		}
		return &ast.Goto{Goto: t, Label: name}, nil
	}
	if t, ok := p.accept(scanner.Kw("do")); ok {
		return p.doStat(t)
	}
	if t, ok := p.accept(scanner.Kw("while")); ok {
		return p.whileStat(t)
	}
	if t, ok := p.accept(scanner.Kw("repeat")); ok {
		return p.repeatStat(t)
	}
	if t, ok := p.accept(scanner.Kw("if")); ok {
		return p.ifStat(t)
	}
	if t, ok := p.accept(scanner.Kw("for")); ok {
		return p.forStat(t)
	}
	if t, ok := p.accept(scanner.Kw("function")); ok {
		return p.functionStat(t)
	}
	if t, ok := p.accept(scanner.Kw("local")); ok {
		return p.localStat(t)
	}
	if t, ok := p.accept(scanner.Kw("return")); ok {
		return p.returnStat(t)
	}
	if p.version >= scanner.BitwiseVersion {
		if t, ok := p.accept(printShorthand); ok {
			args, err := p.exprList()
			if err != nil {
				return nil, err
			}
			return &ast.Print{Q: t, Args: args}, nil
		}
	}
	return p.exprStat()
}

var printShorthand = scanner.ValuePattern{Tok: scanner.Token{Kind: scanner.Name, Value: "?"}}

func (p *Parser) doStat(do ast.Tok) (ast.Statement, error) {
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	end, err := p.expect(scanner.Kw("end"))
	if err != nil {
		return nil, err
	}
	return &ast.Do{Do: do, Body: body, End: end}, nil
}

func (p *Parser) whileStat(while ast.Tok) (ast.Statement, error) {
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	s := &ast.While{While: while, Cond: cond}
	if do, ok := p.accept(scanner.Kw("do")); ok {
		s.Do = do
		if s.Body, err = p.block(); err != nil {
			return nil, err
		}
		if s.End, err = p.expect(scanner.Kw("end")); err != nil {
			return nil, err
		}
		return s, nil
	}
	if _, ok := cond.(*ast.Paren); !ok {
		return nil, p.errorf("expected 'do'")
	}
	s.Short = true
	if s.Body, err = p.shortBlock(); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Parser) repeatStat(repeat ast.Tok) (ast.Statement, error) {
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	until, err := p.expect(scanner.Kw("until"))
	if err != nil {
		return nil, err
	}
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &ast.Repeat{Repeat: repeat, Body: body, Until: until, Cond: cond}, nil
}

func (p *Parser) ifStat(kw ast.Tok) (ast.Statement, error) {
	cond, err := p.expr()
	if err != nil {
		return nil, err
	}
	then, ok := p.accept(scanner.Kw("then"))
	if !ok {
		if _, paren := cond.(*ast.Paren); !paren {
			return nil, p.errorf("expected 'then'")
		}
		return p.shortIf(kw, cond)
	}
	s := &ast.If{}
	for {
		body, err := p.block()
		if err != nil {
			return nil, err
		}
		s.Clauses = append(s.Clauses, &ast.IfClause{Kw: kw, Cond: cond, Then: then, Body: body})
		var ok bool
		if kw, ok = p.accept(scanner.Kw("elseif")); !ok {
			break
		}
		if cond, err = p.expr(); err != nil {
			return nil, err
		}
		if then, err = p.expect(scanner.Kw("then")); err != nil {
			return nil, err
		}
	}
	if el, ok := p.accept(scanner.Kw("else")); ok {
		body, err := p.block()
		if err != nil {
			return nil, err
		}
		s.Else = &ast.ElseClause{Else: el, Body: body}
	}
	if s.End, err = p.expect(scanner.Kw("end")); err != nil {
		return nil, err
	}
	return s, nil
}

// shortIf parses the single line form if (cond) stmt [else stmt].
func (p *Parser) shortIf(kw ast.Tok, cond ast.Expr) (ast.Statement, error) {
	body, err := p.shortBlock()
	if err != nil {
		return nil, err
	}
	s := &ast.If{Short: true, Clauses: []*ast.IfClause{{Kw: kw, Cond: cond, Body: body}}}
	if _, newline, _ := p.b.PeekSignificant(); !newline {
		if el, ok := p.accept(scanner.Kw("else")); ok {
			body, err := p.shortBlock()
			if err != nil {
				return nil, err
			}
			s.Else = &ast.ElseClause{Else: el, Body: body}
		}
	}
	return s, nil
}

func (p *Parser) forStat(forTok ast.Tok) (ast.Statement, error) {
	first, err := p.expect(scanner.Of(scanner.Name))
	if err != nil {
		return nil, err
	}
	if eq, ok := p.accept(scanner.Sym("=")); ok {
		s := &ast.ForNum{For: forTok, Var: first, Eq: eq}
		if s.Start, err = p.expr(); err != nil {
			return nil, err
		}
		if s.Comma1, err = p.expect(scanner.Sym(",")); err != nil {
			return nil, err
		}
		if s.Limit, err = p.expr(); err != nil {
			return nil, err
		}
		if c, ok := p.accept(scanner.Sym(",")); ok {
			s.Comma2 = c
			if s.Step, err = p.expr(); err != nil {
				return nil, err
			}
		}
		if s.Do, err = p.expect(scanner.Kw("do")); err != nil {
			return nil, err
		}
		if s.Body, err = p.block(); err != nil {
			return nil, err
		}
		if s.End, err = p.expect(scanner.Kw("end")); err != nil {
			return nil, err
		}
		return s, nil
	}

	s := &ast.ForIn{For: forTok}
	s.Names.Items = []ast.Tok{first}
	for {
		c, ok := p.accept(scanner.Sym(","))
		if !ok {
			break
		}
		name, err := p.expect(scanner.Of(scanner.Name))
		if err != nil {
			return nil, err
		}
		s.Names.Seps = append(s.Names.Seps, c)
		s.Names.Items = append(s.Names.Items, name)
	}
	if s.In, err = p.expect(scanner.Kw("in")); err != nil {
		return nil, err
	}
	if s.Exprs, err = p.exprList(); err != nil {
		return nil, err
	}
	if s.Do, err = p.expect(scanner.Kw("do")); err != nil {
		return nil, err
	}
	if s.Body, err = p.block(); err != nil {
		return nil, err
	}
	if s.End, err = p.expect(scanner.Kw("end")); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Parser) functionStat(fn ast.Tok) (ast.Statement, error) {
	name := &ast.FuncName{}
	first, err := p.expect(scanner.Of(scanner.Name))
	if err != nil {
		return nil, err
	}
	name.Path = []ast.Tok{first}
	for {
		dot, ok := p.accept(scanner.Sym("."))
		if !ok {
			break
		}
		part, err := p.expect(scanner.Of(scanner.Name))
		if err != nil {
			return nil, err
		}
		name.Dots = append(name.Dots, dot)
		name.Path = append(name.Path, part)
	}
	if colon, ok := p.accept(scanner.Sym(":")); ok {
		name.Colon = colon
		if name.Method, err = p.expect(scanner.Of(scanner.Name)); err != nil {
			return nil, err
		}
	}
	body, err := p.funcBody()
	if err != nil {
		return nil, err
	}
	return &ast.Function{Function: fn, Name: name, Body: body}, nil
}

func (p *Parser) localStat(local ast.Tok) (ast.Statement, error) {
	if fn, ok := p.accept(scanner.Kw("function")); ok {
		name, err := p.expect(scanner.Of(scanner.Name))
		if err != nil {
			return nil, err
		}
		body, err := p.funcBody()
		if err != nil {
			return nil, err
		}
		return &ast.LocalFunction{Local: local, Function: fn, Name: name, Body: body}, nil
	}
	s := &ast.Local{Local: local}
	first, err := p.expect(scanner.Of(scanner.Name))
	if err != nil {
		return nil, err
	}
	s.Names.Items = []ast.Tok{first}
	for {
		c, ok := p.accept(scanner.Sym(","))
		if !ok {
			break
		}
		name, err := p.expect(scanner.Of(scanner.Name))
		if err != nil {
			return nil, err
		}
		s.Names.Seps = append(s.Names.Seps, c)
		s.Names.Items = append(s.Names.Items, name)
	}
	if eq, ok := p.accept(scanner.Sym("=")); ok {
		s.Eq = eq
		if s.Values, err = p.exprList(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (p *Parser) returnStat(ret ast.Tok) (ast.Statement, error) {
	s := &ast.Return{Return: ret}
	if !p.atBlockEnd() && !p.peekIs(scanner.Sym(";")) {
		var err error
		if s.Values, err = p.exprList(); err != nil {
			return nil, err
		}
	}
	if semi, ok := p.accept(scanner.Sym(";")); ok {
		s.Semi = semi
	}
	return s, nil
}

var compoundOps = []string{
	"+=", "-=", "*=", "/=", "%=", "^=", "..=", `\=`, "&=", "|=",
	"^^=", "<<=", ">>=", ">>>=", "<<>=", ">><=",
}

// exprStat parses a call statement or an assignment. A call is tried
// first; anything else rewinds and is parsed again as a variable list.
func (p *Parser) exprStat() (ast.Statement, error) {
	start := p.b.Pos()
	if e, err := p.suffixedExpr(); err == nil {
		switch e.(type) {
		case *ast.Call, *ast.MethodCall:
			if !p.peekIs(scanner.Sym(",")) && !p.peekIs(scanner.Sym("=")) && !p.peekCompound() {
				return &ast.CallStat{Call: e}, nil
			}
		}
	}
	p.b.RewindTo(start)

	s := &ast.Assign{}
	for {
		target, err := p.suffixedExpr()
		if err != nil {
			return nil, err
		}
		switch target.(type) {
		case *ast.Name, *ast.Index, *ast.Attr:
		default:
			return nil, &ParserError{Msg: "syntax error: cannot assign to expression", Token: tokenOf(target)}
		}
		s.Targets.Items = append(s.Targets.Items, target)
		c, ok := p.accept(scanner.Sym(","))
		if !ok {
			break
		}
		s.Targets.Seps = append(s.Targets.Seps, c)
	}
	if eq, ok := p.accept(scanner.Sym("=")); ok {
		s.Op = eq
	} else if op, ok := p.acceptCompound(); ok && len(s.Targets.Items) == 1 {
		s.Op = op
	} else {
		return nil, p.errorf("syntax error: expected '='")
	}
	var err error
	if s.Values, err = p.exprList(); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Parser) peekCompound() bool {
	for _, op := range compoundOps {
		if p.peekIs(scanner.Sym(op)) {
			return true
		}
	}
	return false
}

func (p *Parser) acceptCompound() (ast.Tok, bool) {
	for _, op := range compoundOps {
		if t, ok := p.accept(scanner.Sym(op)); ok {
			return t, true
		}
	}
	return ast.Tok{}, false
}

func tokenOf(n ast.Node) *scanner.Token {
	if t := ast.First(n); t != nil {
		tok := t.Token
		return &tok
	}
	return nil
}

// --- expressions ---

func (p *Parser) exprList() (ast.ExprList, error) {
	var l ast.ExprList
	for {
		e, err := p.expr()
		if err != nil {
			return l, err
		}
		l.Items = append(l.Items, e)
		c, ok := p.accept(scanner.Sym(","))
		if !ok {
			return l, nil
		}
		l.Seps = append(l.Seps, c)
	}
}

// Binary operator priorities as {left, right}. Right-associative
// operators bind less tightly on their right side.
var binaryPriority = map[string][2]int{
	"or":  {1, 1},
	"and": {2, 2},
	"<":   {3, 3}, ">": {3, 3}, "<=": {3, 3}, ">=": {3, 3},
	"~=": {3, 3}, "!=": {3, 3}, "==": {3, 3},
	"|":  {4, 4},
	"^^": {5, 5},
	"&":  {6, 6},
	"<<": {7, 7}, ">>": {7, 7}, ">>>": {7, 7}, "<<>": {7, 7}, ">><": {7, 7},
	"..": {9, 8},
	"+":  {10, 10}, "-": {10, 10},
	"*": {11, 11}, "/": {11, 11}, `\`: {11, 11}, "%": {11, 11},
	"^": {14, 13},
}

const unaryPriority = 12

var unaryOps = []scanner.Pattern{
	scanner.Kw("not"), scanner.Sym("#"), scanner.Sym("-"),
	scanner.Sym("~"), scanner.Sym("@"), scanner.Sym("$"), scanner.Sym("%"),
}

func (p *Parser) expr() (ast.Expr, error) { return p.subExpr(0) }

func (p *Parser) subExpr(limit int) (ast.Expr, error) {
	var left ast.Expr
	var err error
	if op, ok := p.acceptUnary(); ok {
		operand, err := p.subExpr(unaryPriority)
		if err != nil {
			return nil, err
		}
		left = &ast.UnOp{Op: op, Operand: operand}
	} else if left, err = p.simpleExpr(); err != nil {
		return nil, err
	}
	for {
		t, _, ok := p.b.PeekSignificant()
		if !ok {
			return left, nil
		}
		prio, isOp := binaryOp(t)
		if !isOp || prio[0] <= limit {
			return left, nil
		}
		op, _ := p.accept(scanner.ValuePattern{Tok: t})
		right, err := p.subExpr(prio[1])
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Left: left, Op: op, Right: right}
	}
}

func binaryOp(t scanner.Token) ([2]int, bool) {
	switch t.Kind {
	case scanner.Keyword:
		if t.Value == "and" || t.Value == "or" {
			return binaryPriority[t.Value], true
		}
	case scanner.Symbol:
		prio, ok := binaryPriority[t.Value]
		return prio, ok
	}
	return [2]int{}, false
}

func (p *Parser) acceptUnary() (ast.Tok, bool) {
	for _, pat := range unaryOps {
		if t, ok := p.accept(pat); ok {
			return t, true
		}
	}
	return ast.Tok{}, false
}

func (p *Parser) simpleExpr() (ast.Expr, error) {
	for _, kw := range []string{"nil", "true", "false"} {
		if t, ok := p.accept(scanner.Kw(kw)); ok {
			return &ast.Value{Tok: t}, nil
		}
	}
	if t, ok := p.accept(scanner.Of(scanner.Number)); ok {
		return &ast.Value{Tok: t}, nil
	}
	if t, ok := p.accept(scanner.Of(scanner.String)); ok {
		return &ast.Value{Tok: t}, nil
	}
	if t, ok := p.accept(scanner.Sym("...")); ok {
		return &ast.Vararg{Tok: t}, nil
	}
	if t, ok := p.accept(scanner.Kw("function")); ok {
		body, err := p.funcBody()
		if err != nil {
			return nil, err
		}
		return &ast.FuncExpr{Function: t, Body: body}, nil
	}
	if p.peekIs(scanner.Sym("{")) {
		return p.table()
	}
	return p.suffixedExpr()
}

func (p *Parser) primaryExpr() (ast.Expr, error) {
	if t, ok := p.accept(scanner.Of(scanner.Name)); ok {
		return &ast.Name{Name: t}, nil
	}
	if open, ok := p.accept(scanner.Sym("(")); ok {
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		closeTok, err := p.expect(scanner.Sym(")"))
		if err != nil {
			return nil, err
		}
		return &ast.Paren{Open: open, X: x, Close: closeTok}, nil
	}
	if t, _, ok := p.b.PeekSignificant(); ok {
		return nil, p.errorf("unexpected symbol near '%s'", t.Raw)
	}
	return nil, p.errorf("unexpected end of input")
}

// suffixedExpr parses a prefix expression followed by any number of
// indexing, field, method and call suffixes.
func (p *Parser) suffixedExpr() (ast.Expr, error) {
	e, err := p.primaryExpr()
	if err != nil {
		return nil, err
	}
	for {
		if dot, ok := p.accept(scanner.Sym(".")); ok {
			name, err := p.expect(scanner.Of(scanner.Name))
			if err != nil {
				return nil, err
			}
			e = &ast.Attr{Obj: e, Dot: dot, Name: name}
			continue
		}
		if open, ok := p.accept(scanner.Sym("[")); ok {
			key, err := p.expr()
			if err != nil {
				return nil, err
			}
			closeTok, err := p.expect(scanner.Sym("]"))
			if err != nil {
				return nil, err
			}
			e = &ast.Index{Obj: e, Open: open, Key: key, Close: closeTok}
			continue
		}
		if colon, ok := p.accept(scanner.Sym(":")); ok {
			method, err := p.expect(scanner.Of(scanner.Name))
			if err != nil {
				return nil, err
			}
			args, err := p.args()
			if err != nil {
				return nil, err
			}
			e = &ast.MethodCall{Obj: e, Colon: colon, Method: method, Args: args}
			continue
		}
		if p.peekIs(scanner.Sym("(")) || p.peekIs(scanner.Sym("{")) || p.peekIs(scanner.Of(scanner.String)) {
			args, err := p.args()
			if err != nil {
				return nil, err
			}
			e = &ast.Call{Fn: e, Args: args}
			continue
		}
		return e, nil
	}
}

func (p *Parser) args() (*ast.Args, error) {
	if t, ok := p.accept(scanner.Of(scanner.String)); ok {
		return &ast.Args{Kind: ast.StringArgs, List: ast.ExprList{Items: []ast.Expr{&ast.Value{Tok: t}}}}, nil
	}
	if p.peekIs(scanner.Sym("{")) {
		tbl, err := p.table()
		if err != nil {
			return nil, err
		}
		return &ast.Args{Kind: ast.TableArgs, List: ast.ExprList{Items: []ast.Expr{tbl}}}, nil
	}
	open, err := p.expect(scanner.Sym("("))
	if err != nil {
		return nil, err
	}
	a := &ast.Args{Kind: ast.ParenArgs, Open: open}
	if !p.peekIs(scanner.Sym(")")) {
		if a.List, err = p.exprList(); err != nil {
			return nil, err
		}
	}
	if a.Close, err = p.expect(scanner.Sym(")")); err != nil {
		return nil, err
	}
	return a, nil
}

func (p *Parser) funcBody() (*ast.FuncBody, error) {
	f := &ast.FuncBody{}
	var err error
	if f.Open, err = p.expect(scanner.Sym("(")); err != nil {
		return nil, err
	}
	if !p.peekIs(scanner.Sym(")")) {
		for {
			if t, ok := p.accept(scanner.Sym("...")); ok {
				f.Params.Items = append(f.Params.Items, t)
				break
			}
			name, err := p.expect(scanner.Of(scanner.Name))
			if err != nil {
				return nil, err
			}
			f.Params.Items = append(f.Params.Items, name)
			c, ok := p.accept(scanner.Sym(","))
			if !ok {
				break
			}
			f.Params.Seps = append(f.Params.Seps, c)
		}
	}
	if f.Close, err = p.expect(scanner.Sym(")")); err != nil {
		return nil, err
	}
	if f.Body, err = p.block(); err != nil {
		return nil, err
	}
	if f.End, err = p.expect(scanner.Kw("end")); err != nil {
		return nil, err
	}
	return f, nil
}

func (p *Parser) table() (*ast.Table, error) {
	t := &ast.Table{}
	var err error
	if t.Open, err = p.expect(scanner.Sym("{")); err != nil {
		return nil, err
	}
	for !p.peekIs(scanner.Sym("}")) {
		f, err := p.field()
		if err != nil {
			return nil, err
		}
		t.Fields = append(t.Fields, f)
		sep, ok := p.accept(scanner.Sym(","))
		if !ok {
			sep, ok = p.accept(scanner.Sym(";"))
		}
		if !ok {
			break
		}
		t.Seps = append(t.Seps, sep)
	}
	if t.Close, err = p.expect(scanner.Sym("}")); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *Parser) field() (ast.Field, error) {
	if open, ok := p.accept(scanner.Sym("[")); ok {
		f := &ast.KeyField{Open: open}
		var err error
		if f.Key, err = p.expr(); err != nil {
			return nil, err
		}
		if f.Close, err = p.expect(scanner.Sym("]")); err != nil {
			return nil, err
		}
		if f.Eq, err = p.expect(scanner.Sym("=")); err != nil {
			return nil, err
		}
		if f.Value, err = p.expr(); err != nil {
			return nil, err
		}
		return f, nil
	}
	start := p.b.Pos()
	if name, ok := p.accept(scanner.Of(scanner.Name)); ok {
		if eq, ok := p.accept(scanner.Sym("=")); ok {
			value, err := p.expr()
			if err != nil {
				return nil, err
			}
			return &ast.NamedField{Name: name, Eq: eq, Value: value}, nil
		}
		p.b.RewindTo(start)
	}
	value, err := p.expr()
	if err != nil {
		return nil, err
	}
	return &ast.PosField{Value: value}, nil
}
