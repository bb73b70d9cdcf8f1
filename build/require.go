package build

import (
	"fmt"

	"github.com/p8tools/p8lua/ast"
	"github.com/p8tools/p8lua/scanner"
	"modernc.org/token"
)

// BuildError is a module resolution failure, anchored to the require
// call that caused it.
type BuildError struct {
	Msg string
	Pos token.Position
}

func (e *BuildError) Error() string {
	msg := e.Msg
	if e.Pos.Line > 0 {
		msg = fmt.Sprintf("%s at line %d char %d", msg, e.Pos.Line, e.Pos.Column)
	}
	if e.Pos.Filename != "" {
		msg = e.Pos.Filename + ": " + msg
	}
	return msg
}

// Position returns the position of the require call.
func (e *BuildError) Position() token.Position { return e.Pos }

func errorAt(n ast.Node, format string, args ...any) *BuildError {
	return &BuildError{Msg: fmt.Sprintf(format, args...), Pos: ast.Pos(n)}
}

// Require is one require() call found in a chunk.
type Require struct {
	Path        string // the string literal argument
	UseGameLoop bool
	Call        *ast.Call
}

// Pos returns the position of the call.
func (r Require) Pos() token.Position { return ast.Pos(r.Call) }

// FindRequires collects the require() calls of root in source order and
// validates their arguments.
func FindRequires(root *ast.Chunk) ([]Require, error) {
	return ast.Collect(root, func(c *ast.Cursor) ([]Require, error) {
		if c.Point != ast.PointCall {
			return nil, nil
		}
		call, ok := c.Node.(*ast.Call)
		if !ok {
			return nil, nil
		}
		fn, ok := call.Fn.(*ast.Name)
		if !ok || fn.Name.Value != "require" {
			return nil, nil
		}
		r, err := parseRequire(call, c.Args)
		if err != nil {
			return nil, err
		}
		return []Require{r}, nil
	})
}

func parseRequire(call *ast.Call, args []ast.Expr) (Require, error) {
	if len(args) < 1 || len(args) > 2 {
		return Require{}, errorAt(call, "require() has %d args, should have 1 or 2", len(args))
	}
	lit, ok := args[0].(*ast.Value)
	if !ok || lit.Tok.Kind != scanner.String {
		return Require{}, errorAt(call, "require() first argument must be a string literal")
	}
	r := Require{Path: lit.Tok.Value, Call: call}
	if len(args) == 1 {
		return r, nil
	}
	opts, ok := args[1].(*ast.Table)
	if !ok {
		return Require{}, errorAt(call, "require() second argument must be a table literal")
	}
	use, ok := gameLoopOption(opts)
	if !ok {
		return Require{}, errorAt(call, "Invalid require() options; did you mean {use_game_loop=true} ?")
	}
	r.UseGameLoop = use
	return r, nil
}

// gameLoopOption reads {use_game_loop=<boolean>}, the only options table
// require() accepts.
func gameLoopOption(t *ast.Table) (bool, bool) {
	if len(t.Fields) != 1 {
		return false, false
	}
	f, ok := t.Fields[0].(*ast.NamedField)
	if !ok || f.Name.Value != "use_game_loop" {
		return false, false
	}
	v, ok := f.Value.(*ast.Value)
	if !ok || v.Tok.Kind != scanner.Keyword {
		return false, false
	}
	switch v.Tok.Value {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}
