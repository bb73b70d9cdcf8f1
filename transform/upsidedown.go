// Package transform holds tree rewrites built on the ast walker.
package transform

import (
	"fmt"
	"strconv"

	"github.com/p8tools/p8lua/ast"
	"github.com/p8tools/p8lua/parser"
	"github.com/p8tools/p8lua/scanner"
	"github.com/p8tools/p8lua/writer"
	"modernc.org/token"
)

// UpsideDown rewrites the coordinate arguments of drawing calls so a cart
// renders rotated by 180 degrees. Only direct calls to the global drawing
// functions are rewritten.
//
// SmallMap means the shared gfx/map region is used as sprites, which
// halves the map height. FlipButtons swaps left/right and up/down in btn
// and btnp calls with a constant button number.
type UpsideDown struct {
	SmallMap    bool
	FlipButtons bool

	// Warnings lists the calls that could only be partly rewritten.
	Warnings []error

	f ast.Factory
}

// Name implements ast.Transform.
func (u *UpsideDown) Name() string { return "upsidedown" }

// Transform implements ast.Transform.
func (u *UpsideDown) Transform(c *ast.Chunk) error {
	return ast.VisitorTransform(u.Name(), u).Transform(c)
}

// Visit implements ast.Visitor.
func (u *UpsideDown) Visit(c *ast.Cursor) (ast.Action, error) {
	if c.Point != ast.PointCall {
		return ast.Continue, nil
	}
	call, ok := c.Node.(*ast.Call)
	if !ok {
		return ast.Continue, nil
	}
	fn, ok := call.Fn.(*ast.Name)
	if !ok {
		return ast.Continue, nil
	}
	args := c.Args
	switch fn.Name.Value {
	case "btn", "btnp":
		if u.FlipButtons {
			u.flipButton(args)
		}
	case "pget", "pset", "circ", "circfill":
		u.mirror(args, 0, 127)
		u.mirror(args, 1, 127)
	case "sget", "sset":
		u.mirror(args, 0, 127)
		u.mirror(args, 1, u.pick(127, 63))
	case "print":
		// Text still runs left to right; keep a line of room below y.
		u.mirror(args, 2, 119)
	case "cursor":
		u.mirror(args, 1, 119)
	case "camera":
		if len(args) >= 2 {
			u.mirror(args, 0, 0)
			u.mirror(args, 1, 0)
		}
	case "line":
		for i := range 4 {
			u.mirror(args, i, 127)
		}
	case "rect", "rectfill":
		if len(args) >= 4 {
			swap(args, 0, 2)
		}
		for i := range 4 {
			u.mirror(args, i, 127)
		}
	case "spr":
		if len(args) > 3 {
			u.warn(call, "spr drawing more than one tile is not turned upside down")
		}
		u.mirror(args, 1, 113)
		u.mirror(args, 2, 113)
	case "sspr":
		u.warn(call, "sspr is not turned upside down")
	case "mget", "mset":
		u.mirror(args, 0, 127)
		u.mirror(args, 1, u.pick(31, 63))
	case "map", "mapdraw":
		if err := u.mapArgs(args); err != nil {
			return ast.Stop, err
		}
	}
	return ast.Continue, nil
}

func (u *UpsideDown) pick(small, large int) int {
	if u.SmallMap {
		return small
	}
	return large
}

func (u *UpsideDown) warn(n ast.Node, msg string) {
	u.Warnings = append(u.Warnings, ast.ErrorAt(n, "%s", msg))
}

// mirror replaces args[i] with limit-args[i]. The argument's leading
// trivia moves to the new expression.
func (u *UpsideDown) mirror(args []ast.Expr, i, limit int) {
	if i >= len(args) {
		return
	}
	u.replace(args, i, func(x ast.Expr) ast.Expr {
		return u.f.BinOp(u.f.Number(limit), "-", u.operand(x))
	})
}

func (u *UpsideDown) replace(args []ast.Expr, i int, build func(ast.Expr) ast.Expr) {
	arg := args[i]
	lead := ast.Leading(arg)
	ast.SetLeading(arg, nil)
	n := build(arg)
	ast.SetLeading(n, lead)
	args[i] = n
}

// operand parenthesizes x when it would not bind as the right operand
// of a subtraction.
func (u *UpsideDown) operand(x ast.Expr) ast.Expr {
	switch x.(type) {
	case *ast.Name, *ast.Value, *ast.Vararg, *ast.Index, *ast.Attr,
		*ast.Call, *ast.MethodCall, *ast.Paren:
		return x
	}
	return u.f.Paren(x)
}

func (u *UpsideDown) flipButton(args []ast.Expr) {
	if len(args) == 0 {
		return
	}
	v, ok := args[0].(*ast.Value)
	if !ok || v.Tok.Kind != scanner.Number {
		return
	}
	n, err := strconv.Atoi(v.Tok.Value)
	if err != nil {
		return
	}
	// 0/1 are left/right, 2/3 up/down, 4/5 the action buttons.
	if n%2 == 0 {
		n++
	} else {
		n--
	}
	u.replace(args, 0, func(ast.Expr) ast.Expr { return u.f.Number(n) })
}

// mapArgs rewrites map(cel_x, cel_y, sx, sy, cel_w, cel_h):
//
//	cel_x = 128 - cel_x - cel_w
//	cel_y = rows - cel_y - cel_h
//	sx = 128 - sx - 8*cel_w
//	sy = 128 - sy - 8*cel_h
func (u *UpsideDown) mapArgs(args []ast.Expr) error {
	if len(args) < 6 {
		return nil
	}
	celW, celH := args[4], args[5]
	var copies [4]ast.Expr
	for i, src := range []ast.Expr{celW, celH, celW, celH} {
		c, err := clone(src)
		if err != nil {
			return err
		}
		copies[i] = u.operand(c)
	}
	sub := func(from int, x, y ast.Expr) ast.Expr {
		return u.f.BinOp(u.f.BinOp(u.f.Number(from), "-", u.operand(x)), "-", y)
	}
	u.replace(args, 0, func(x ast.Expr) ast.Expr { return sub(128, x, copies[0]) })
	u.replace(args, 1, func(x ast.Expr) ast.Expr { return sub(u.pick(32, 64), x, copies[1]) })
	u.replace(args, 2, func(x ast.Expr) ast.Expr {
		return sub(128, x, u.f.BinOp(u.f.Number(8), "*", copies[2]))
	})
	u.replace(args, 3, func(x ast.Expr) ast.Expr {
		return sub(128, x, u.f.BinOp(u.f.Number(8), "*", copies[3]))
	})
	return nil
}

// swap exchanges two arguments, leaving the trivia in place.
func swap(args []ast.Expr, i, j int) {
	li, lj := ast.Leading(args[i]), ast.Leading(args[j])
	ast.SetLeading(args[i], lj)
	ast.SetLeading(args[j], li)
	args[i], args[j] = args[j], args[i]
}

// clone deep-copies an expression by rendering and re-parsing it. The
// copy has no leading trivia and no positions.
func clone(x ast.Expr) (ast.Expr, error) {
	var f ast.Factory
	wrap := &ast.Chunk{Block: f.BlockFrom(&ast.Return{Return: f.Kw("return"), Values: f.Exprs(x)})}
	text := writer.Render(writer.ASTEcho{}, nil, wrap)
	toks, err := scanner.Tokenize(text, scanner.DefaultVersion)
	if err != nil {
		return nil, fmt.Errorf("clone %q: %w", text, err)
	}
	root, err := parser.Parse(toks, scanner.DefaultVersion)
	if err != nil {
		return nil, fmt.Errorf("clone %q: %w", text, err)
	}
	ret, ok := root.Block.Stmts[0].(*ast.Return)
	if !ok || ret.Values.Len() != 1 {
		return nil, fmt.Errorf("clone %q: not a single expression", text)
	}
	c := ret.Values.Items[0]
	ast.SetLeading(c, nil)
	ast.Emit(c, unplace{})
	return c, nil
}

// unplace clears token positions, marking the tokens as synthesized.
type unplace struct{}

func (unplace) Tok(t *ast.Tok, _ ast.Role) { t.Pos = token.Position{} }
func (unplace) Stmt(ast.Statement)         {}
func (unplace) Indent()                    {}
func (unplace) Dedent()                    {}
