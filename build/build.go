// Package build resolves require() calls across Lua files and splices the
// required modules, wrapped in a small loader, ahead of the main program.
package build

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/p8tools/p8lua/ast"
	"github.com/p8tools/p8lua/lua"
	"github.com/p8tools/p8lua/scanner"
	"github.com/p8tools/p8lua/writer"
)

// DefaultLuaPath is the search path used when Options.LuaPath is empty.
// Each ';'-separated pattern has its '?' replaced by the require literal;
// relative results are taken from the requiring file's directory.
const DefaultLuaPath = "?;?.lua"

// GameLoopFunctions are removed from required modules unless the module is
// required with {use_game_loop=true} or Options.KeepGameLoop is set.
var GameLoopFunctions = []string{"_init", "_update", "_update60", "_draw"}

const preamble = `package={loaded={},_c={}}
function require(p)
local l=package.loaded
if (l[p]==nil) l[p]=package._c[p]()
if (l[p]==nil) l[p]=true
return l[p]
end
`

// Options configures a build.
type Options struct {
	LuaPath      string
	KeepGameLoop bool
	Version      int

	// Logf, when set, receives one line per loaded module.
	Logf func(format string, args ...any)
}

// Module is a resolved require() target.
type Module struct {
	Literal string
	File    string
	Source  *lua.Source
}

// Context holds the modules resolved during one build, keyed by require
// literal. The first require of a literal decides its game loop option.
type Context struct {
	opts    Options
	modules map[string]*Module
	order   []*Module
}

// NewContext returns an empty resolution context.
func NewContext(opts Options) *Context {
	if opts.LuaPath == "" {
		opts.LuaPath = DefaultLuaPath
	}
	if opts.Version == 0 {
		opts.Version = scanner.DefaultVersion
	}
	return &Context{opts: opts, modules: make(map[string]*Module)}
}

// Modules returns the resolved modules in first-resolution order.
func (c *Context) Modules() []Module {
	out := make([]Module, len(c.order))
	for i, m := range c.order {
		out[i] = *m
	}
	return out
}

// Resolve loads every module src requires, recursively. path is the file
// src was read from; relative search patterns start from its directory.
func (c *Context) Resolve(src *lua.Source, path string) error {
	reqs, err := FindRequires(src.Root)
	if err != nil {
		return err
	}
	for _, r := range reqs {
		if strings.Contains(r.Path, "./") || strings.HasPrefix(r.Path, "/") {
			return errorAt(r.Call, `require() filename cannot contain "./" or "../" or start with "/"`)
		}
		if _, ok := c.modules[r.Path]; ok {
			continue
		}
		file, ok := Locate(r.Path, path, c.opts.LuaPath)
		if !ok {
			return errorAt(r.Call, "require() file %s not found; used load path %s", r.Path, c.opts.LuaPath)
		}
		mod, err := lua.ParseFile(file, c.opts.Version)
		if err != nil {
			return err
		}
		if !r.UseGameLoop && !c.opts.KeepGameLoop && StripGameLoop(mod.Root) > 0 {
			if err := mod.Reparse(writer.ASTEcho{}); err != nil {
				return err
			}
		}
		m := &Module{Literal: r.Path, File: file, Source: mod}
		c.modules[r.Path] = m
		c.order = append(c.order, m)
		if c.opts.Logf != nil {
			c.opts.Logf("require %q -> %s", r.Path, file)
		}
		if err := c.Resolve(mod, file); err != nil {
			return err
		}
	}
	return nil
}

// Locate finds the file for a require literal. Patterns are tried in
// order; the first regular file wins.
func Locate(literal, fromFile, luaPath string) (string, bool) {
	base := filepath.Dir(fromFile)
	for _, pattern := range strings.Split(luaPath, ";") {
		if pattern == "" {
			continue
		}
		candidate := strings.ReplaceAll(pattern, "?", literal)
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(base, candidate)
		}
		if fi, err := os.Stat(candidate); err == nil && fi.Mode().IsRegular() {
			return candidate, true
		}
	}
	return "", false
}

// StripGameLoop deletes the top-level declarations of the game loop
// functions and reports how many it removed.
func StripGameLoop(root *ast.Chunk) int {
	return deleteTopLevel(root, func(s ast.Statement) bool {
		f, ok := s.(*ast.Function)
		return ok && len(f.Name.Path) == 1 && !f.Name.Method.Present() &&
			slices.Contains(GameLoopFunctions, f.Name.Path[0].Value)
	})
}

// removeReturns deletes top-level return statements, which PICO-8
// rejects in cart code.
func removeReturns(root *ast.Chunk) int {
	return deleteTopLevel(root, func(s ast.Statement) bool {
		_, ok := s.(*ast.Return)
		return ok
	})
}

func deleteTopLevel(root *ast.Chunk, match func(ast.Statement) bool) int {
	n := 0
	_ = ast.Walk(root, ast.VisitorFunc(func(c *ast.Cursor) (ast.Action, error) {
		switch c.Point {
		case ast.PointBlock:
			if c.Node != root.Block {
				return ast.Skip, nil
			}
		case ast.PointStmt:
			if match(c.Node.(ast.Statement)) {
				c.Delete()
				n++
			}
			return ast.Skip, nil
		}
		return ast.Continue, nil
	}))
	return n
}

// Build resolves the requires of src and returns the combined program:
// the loader, one wrapped function per module, then src itself with its
// top-level returns removed. A program without requires comes back with
// only the returns removed.
func Build(src *lua.Source, path string, opts Options) (*lua.Source, error) {
	c := NewContext(opts)
	if err := c.Resolve(src, path); err != nil {
		return nil, err
	}
	removed := removeReturns(src.Root)
	if len(c.order) == 0 {
		if removed > 0 {
			if err := src.Reparse(writer.ASTEcho{}); err != nil {
				return nil, err
			}
		}
		return src, nil
	}

	root, err := c.splice(src.Root)
	if err != nil {
		return nil, err
	}
	out := &lua.Source{Version: c.opts.Version, Filename: path, Root: root}
	if err := out.Reparse(writer.ASTEcho{}); err != nil {
		return nil, err
	}
	return out, nil
}

// splice parses the loader, wraps each module's statements in a function
// stored under its literal and appends the program.
func (c *Context) splice(program *ast.Chunk) (*ast.Chunk, error) {
	shim, err := lua.FromString(preamble, c.opts.Version)
	if err != nil {
		return nil, err
	}
	root := shim.Root
	sep := root.Trailing
	root.Trailing = nil

	var f ast.Factory
	for _, m := range c.order {
		body := m.Source.Root
		if len(body.Block.Stmts) > 0 {
			first := body.Block.Stmts[0]
			ast.SetLeading(first, prepend([]scanner.Token{newline()}, ast.Leading(first)))
		}
		end := slices.Clone(body.Trailing)
		if len(end) == 0 || end[len(end)-1].Kind != scanner.Newline {
			end = append(end, newline())
		}
		fn := f.FuncExpr(body.Block)
		fn.Body.End.Trivia = end

		slot := f.Index(f.Attr(f.Name("package"), "_c"), f.String(m.Literal))
		wrapper := f.Assign(slot, fn)
		ast.SetLeading(wrapper, sep)
		root.Block.Stmts = append(root.Block.Stmts, wrapper)
		sep = []scanner.Token{newline()}
	}

	if len(program.Block.Stmts) > 0 {
		first := program.Block.Stmts[0]
		ast.SetLeading(first, prepend(sep, ast.Leading(first)))
		root.Trailing = program.Trailing
	} else {
		root.Trailing = append(sep, program.Trailing...)
	}
	root.Block.Stmts = append(root.Block.Stmts, program.Block.Stmts...)
	root.Filename = program.Filename
	return root, nil
}

func newline() scanner.Token { return scanner.NewToken(scanner.Newline, "\n") }

func prepend(head, tail []scanner.Token) []scanner.Token {
	return append(slices.Clone(head), tail...)
}
