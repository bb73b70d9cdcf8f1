package parser

import (
	"testing"

	"github.com/p8tools/p8lua/ast"
	"github.com/p8tools/p8lua/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) (*ast.Chunk, *Parser) {
	t.Helper()
	toks, err := scanner.Tokenize(src, scanner.DefaultVersion)
	require.NoError(t, err)
	p := New(scanner.DefaultVersion)
	chunk, err := p.Parse(toks)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return chunk, p
}

func parseErr(t *testing.T, src string) *ParserError {
	t.Helper()
	toks, err := scanner.Tokenize(src, scanner.DefaultVersion)
	require.NoError(t, err)
	_, err = Parse(toks, scanner.DefaultVersion)
	require.Error(t, err)
	var perr *ParserError
	require.ErrorAs(t, err, &perr)
	return perr
}

func onlyStmt[T ast.Statement](t *testing.T, chunk *ast.Chunk) T {
	t.Helper()
	require.Len(t, chunk.Block.Stmts, 1)
	s, ok := chunk.Block.Stmts[0].(T)
	if !ok {
		t.Fatalf("expected %T, got %T", s, chunk.Block.Stmts[0])
	}
	return s
}

// shape renders an expression as a fully parenthesized string.
func shape(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Name:
		return e.Name.Value
	case *ast.Value:
		return e.Tok.Raw
	case *ast.BinOp:
		return "(" + shape(e.Left) + " " + e.Op.Value + " " + shape(e.Right) + ")"
	case *ast.UnOp:
		return "(" + e.Op.Value + " " + shape(e.Operand) + ")"
	case *ast.Paren:
		return "[" + shape(e.X) + "]"
	case *ast.Call:
		return shape(e.Fn) + "()"
	}
	return "?"
}

func TestParseMultipleAssignmentRewindsOnce(t *testing.T) {
	chunk, p := parse(t, "a, b = 1, 2")
	s := onlyStmt[*ast.Assign](t, chunk)
	assert.Len(t, s.Targets.Items, 2)
	assert.Len(t, s.Values.Items, 2)
	assert.Len(t, s.Targets.Seps, 1)
	assert.Equal(t, "=", s.Op.Value)
	assert.False(t, s.Compound())
	assert.Equal(t, 1, p.Rewinds())
}

func TestParseRewindOverFunctionBody(t *testing.T) {
	chunk, p := parse(t, "f(function()\n  local t = {k = 1}\nend).y = 2\nz = 3\n")
	require.Len(t, chunk.Block.Stmts, 2)
	s, ok := chunk.Block.Stmts[0].(*ast.Assign)
	require.True(t, ok)
	target := s.Targets.Items[0].(*ast.Attr)
	call := target.Obj.(*ast.Call)
	fn := call.Args.List.Items[0].(*ast.FuncExpr)
	assert.Len(t, fn.Body.Body.Stmts, 1)
	assert.GreaterOrEqual(t, p.Rewinds(), 1)
}

func TestParseCallStatement(t *testing.T) {
	chunk, p := parse(t, `print("hi", 1)`)
	s := onlyStmt[*ast.CallStat](t, chunk)
	call, ok := s.Call.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, ast.ParenArgs, call.Args.Kind)
	assert.Len(t, call.Args.List.Items, 2)
	assert.Equal(t, 0, p.Rewinds())
}

func TestParseCallForms(t *testing.T) {
	chunk, _ := parse(t, "f\"s\"\ng{1}\no:m(1)\na.b[c](d)")
	require.Len(t, chunk.Block.Stmts, 4)

	str := chunk.Block.Stmts[0].(*ast.CallStat).Call.(*ast.Call)
	assert.Equal(t, ast.StringArgs, str.Args.Kind)
	assert.Equal(t, "s", str.Args.List.Items[0].(*ast.Value).Tok.Value)

	tbl := chunk.Block.Stmts[1].(*ast.CallStat).Call.(*ast.Call)
	assert.Equal(t, ast.TableArgs, tbl.Args.Kind)
	assert.IsType(t, &ast.Table{}, tbl.Args.List.Items[0])

	m := chunk.Block.Stmts[2].(*ast.CallStat).Call.(*ast.MethodCall)
	assert.Equal(t, "m", m.Method.Value)

	c := chunk.Block.Stmts[3].(*ast.CallStat).Call.(*ast.Call)
	idx := c.Fn.(*ast.Index)
	attr := idx.Obj.(*ast.Attr)
	assert.Equal(t, "b", attr.Name.Value)
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"x = 1 + 2 * 3", "(1 + (2 * 3))"},
		{"x = 2 ^ 3 ^ 2", "(2 ^ (3 ^ 2))"},
		{"x = a .. b .. c", "(a .. (b .. c))"},
		{"x = -y ^ 2", "(- (y ^ 2))"},
		{"x = not a == b", "((not a) == b)"},
		{"x = a or b and c", "(a or (b and c))"},
		{"x = a < b == c", "((a < b) == c)"},
		{"x = 1 - 2 - 3", "((1 - 2) - 3)"},
		{"x = a | b ^^ c & d", "(a | (b ^^ (c & d)))"},
		{"x = a << 1 + 2", "(a << (1 + 2))"},
		{"x = a != b", "(a != b)"},
		{`x = a \ 2 * 3`, `((a \ 2) * 3)`},
		{"x = @a + $b", "((@ a) + ($ b))"},
		{"x = (1 + 2) * 3", "([(1 + 2)] * 3)"},
		{"x = 1 .. 2 + 3", "(1 .. (2 + 3))"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			chunk, _ := parse(t, tt.src)
			s := onlyStmt[*ast.Assign](t, chunk)
			assert.Equal(t, tt.want, shape(s.Values.Items[0]))
		})
	}
}

func TestParseCompoundAssignment(t *testing.T) {
	for _, op := range []string{"+=", "-=", "..=", ">>>=", "^^=", `\=`} {
		chunk, _ := parse(t, "x "+op+" 2")
		s := onlyStmt[*ast.Assign](t, chunk)
		assert.True(t, s.Compound(), op)
		assert.Equal(t, op, s.Op.Value)
	}
}

func TestParseStatements(t *testing.T) {
	src := `
local a, b = 1
local function f(x, ...) return ... end
function m.n:o() end
for i = 1, 10, 2 do break end
for k, v in pairs(t) do end
while x do x = x - 1 end
repeat y = y + 1 until y > 3
do ; end
::top::
goto top
if a then b() elseif c then d() else e() end
?"hi", 1
return
`
	chunk, _ := parse(t, src)
	var got []string
	for _, s := range chunk.Block.Stmts {
		switch s.(type) {
		case *ast.Local:
			got = append(got, "local")
		case *ast.LocalFunction:
			got = append(got, "localfunction")
		case *ast.Function:
			got = append(got, "function")
		case *ast.ForNum:
			got = append(got, "fornum")
		case *ast.ForIn:
			got = append(got, "forin")
		case *ast.While:
			got = append(got, "while")
		case *ast.Repeat:
			got = append(got, "repeat")
		case *ast.Do:
			got = append(got, "do")
		case *ast.Label:
			got = append(got, "label")
		case *ast.Goto:
			got = append(got, "goto")
		case *ast.If:
			got = append(got, "if")
		case *ast.Print:
			got = append(got, "print")
		case *ast.Return:
			got = append(got, "return")
		default:
			got = append(got, "other")
		}
	}
	assert.Equal(t, []string{
		"local", "localfunction", "function", "fornum", "forin", "while",
		"repeat", "do", "label", "goto", "if", "print", "return",
	}, got)

	fn := chunk.Block.Stmts[2].(*ast.Function)
	assert.Equal(t, "m.n:o", fn.Name.String())

	lf := chunk.Block.Stmts[1].(*ast.LocalFunction)
	require.Len(t, lf.Body.Params.Items, 2)
	assert.Equal(t, "...", lf.Body.Params.Items[1].Value)

	iff := chunk.Block.Stmts[10].(*ast.If)
	assert.Len(t, iff.Clauses, 2)
	assert.NotNil(t, iff.Else)
	assert.False(t, iff.Short)

	ret := chunk.Block.Stmts[12].(*ast.Return)
	assert.Zero(t, ret.Values.Len())
}

func TestParseShortIf(t *testing.T) {
	chunk, _ := parse(t, "if (a) b=1 c=2\nd=3")
	require.Len(t, chunk.Block.Stmts, 2)
	s := chunk.Block.Stmts[0].(*ast.If)
	assert.True(t, s.Short)
	assert.Len(t, s.Clauses[0].Body.Stmts, 2)
	assert.False(t, s.Clauses[0].Then.Present())
	assert.IsType(t, &ast.Assign{}, chunk.Block.Stmts[1])

	chunk, _ = parse(t, "if (a) b() else c()\nd()")
	require.Len(t, chunk.Block.Stmts, 2)
	s = chunk.Block.Stmts[0].(*ast.If)
	require.NotNil(t, s.Else)
	assert.Len(t, s.Else.Body.Stmts, 1)

	chunk, _ = parse(t, "if (a) return\nx=1")
	require.Len(t, chunk.Block.Stmts, 2)

	chunk, _ = parse(t, "while (x<3) x+=1\ny=2")
	require.Len(t, chunk.Block.Stmts, 2)
	w := chunk.Block.Stmts[0].(*ast.While)
	assert.True(t, w.Short)
}

func TestParseShortIfWithNestedBlock(t *testing.T) {
	chunk, _ := parse(t, "if (a) for i=1,2 do\nprint(i)\nend\nx=1")
	require.Len(t, chunk.Block.Stmts, 2)
	s := chunk.Block.Stmts[0].(*ast.If)
	require.Len(t, s.Clauses[0].Body.Stmts, 1)
	assert.IsType(t, &ast.ForNum{}, s.Clauses[0].Body.Stmts[0])
}

func TestParseTable(t *testing.T) {
	chunk, _ := parse(t, "t = {1, x=2, [3]=4; 5,}")
	s := onlyStmt[*ast.Assign](t, chunk)
	tbl := s.Values.Items[0].(*ast.Table)
	require.Len(t, tbl.Fields, 4)
	assert.Len(t, tbl.Seps, 4)
	assert.IsType(t, &ast.PosField{}, tbl.Fields[0])
	assert.IsType(t, &ast.NamedField{}, tbl.Fields[1])
	assert.IsType(t, &ast.KeyField{}, tbl.Fields[2])
	assert.IsType(t, &ast.PosField{}, tbl.Fields[3])
	assert.Equal(t, ";", tbl.Seps[2].Value)
}

func TestParseTrivia(t *testing.T) {
	chunk, _ := parse(t, "-- hi\nx = 1 -- c\n")
	require.Len(t, chunk.Block.Stmts, 1)
	lead := ast.Leading(chunk.Block.Stmts[0])
	require.Len(t, lead, 2)
	assert.Equal(t, scanner.Comment, lead[0].Kind)
	assert.Equal(t, scanner.Newline, lead[1].Kind)

	require.Len(t, chunk.Trailing, 3)
	assert.Equal(t, "-- c", chunk.Trailing[1].Raw)
}

func TestParseErrors(t *testing.T) {
	perr := parseErr(t, "x = = 1")
	require.NotNil(t, perr.Token)
	assert.Equal(t, "=", perr.Token.Raw)
	assert.Equal(t, 1, perr.Token.Pos.Line)
	assert.Equal(t, 5, perr.Token.Pos.Column)

	perr = parseErr(t, "if x then\ny()\n")
	assert.Nil(t, perr.Token)
	assert.Contains(t, perr.Error(), "at end of input")

	perr = parseErr(t, "x = 1\nend")
	require.NotNil(t, perr.Token)
	assert.Equal(t, 2, perr.Token.Pos.Line)

	perr = parseErr(t, "f() = 1")
	assert.Contains(t, perr.Msg, "cannot assign")

	perr = parseErr(t, "while x y()")
	assert.Contains(t, perr.Msg, "expected 'do'")
}
