// Package doc extracts a cart listing from Lua source: title, byline,
// size counts and the top-level functions with their doc comments.
//
// The extraction rule is simple: consecutive comment lines immediately
// before a top-level function declaration (no blank line gap) are attached
// as the doc comment for that declaration.
package doc

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/p8tools/p8lua/ast"
	"github.com/p8tools/p8lua/lua"
	"github.com/p8tools/p8lua/scanner"
)

// FileDoc holds the listing of a single Lua file.
type FileDoc struct {
	Path   string
	Title  string
	Byline string
	Doc    string // file-level doc (first comment block)
	Chars  int
	Tokens int
	Lines  int
	Funcs  []FuncDoc
}

// FuncDoc describes a top-level function.
type FuncDoc struct {
	Name   string   // e.g. "_update" or "player:move"
	Params []string // parameter names, "..." included
	Doc    string
	Line   int // 1-based line number of the declaration
	Local  bool
}

// Signature returns the declaration line, e.g. "function player:move(dx, dy)".
func (f FuncDoc) Signature() string {
	sig := "function " + f.Name + "(" + strings.Join(f.Params, ", ") + ")"
	if f.Local {
		sig = "local " + sig
	}
	return sig
}

// ExtractFile reads a Lua file and extracts its listing.
func ExtractFile(path string, version int) (*FileDoc, error) {
	src, err := lua.ParseFile(path, version)
	if err != nil {
		return nil, err
	}
	return Extract(src, path), nil
}

// ExtractDir reads all Lua files in a directory (non-recursive) and
// returns aggregated documentation. The entry file's doc, title and byline
// become the top-level ones; other files contribute their functions.
// Files that fail to parse are skipped.
func ExtractDir(dir, entryFile string, version int) (*FileDoc, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	result := &FileDoc{Path: dir}
	add := func(fd *FileDoc) {
		result.Funcs = append(result.Funcs, fd.Funcs...)
		result.Chars += fd.Chars
		result.Tokens += fd.Tokens
		result.Lines += fd.Lines
	}

	entryBase := ""
	if entryFile != "" {
		entryBase = filepath.Base(entryFile)
		if fd, err := ExtractFile(entryFile, version); err == nil {
			result.Doc = fd.Doc
			result.Title = fd.Title
			result.Byline = fd.Byline
			add(fd)
		}
	}

	for _, e := range entries {
		if e.IsDir() || !isLuaFile(e.Name()) || e.Name() == entryBase {
			continue
		}
		fd, err := ExtractFile(filepath.Join(dir, e.Name()), version)
		if err != nil {
			continue
		}
		add(fd)
	}
	return result, nil
}

// Extract builds the listing of a parsed source.
func Extract(src *lua.Source, path string) *FileDoc {
	fd := &FileDoc{
		Path:   path,
		Chars:  src.CharCount(),
		Tokens: src.TokenCount(),
		Lines:  src.LineCount(),
	}
	fd.Title, _ = src.Title()
	fd.Byline, _ = src.Byline()

	stmts := src.Root.Block.Stmts
	if len(stmts) > 0 {
		fd.Doc = fileDoc(ast.Leading(stmts[0]))
	} else {
		fd.Doc = fileDoc(src.Root.Trailing)
	}

	for _, s := range stmts {
		f, ok := funcDoc(s)
		if !ok {
			continue
		}
		f.Doc = attachedDoc(ast.Leading(s))
		f.Line = ast.Pos(s).Line
		fd.Funcs = append(fd.Funcs, f)
	}
	return fd
}

// funcDoc recognizes function declarations, including name = function().
func funcDoc(s ast.Statement) (FuncDoc, bool) {
	switch s := s.(type) {
	case *ast.Function:
		return FuncDoc{Name: s.Name.String(), Params: params(s.Body)}, true
	case *ast.LocalFunction:
		return FuncDoc{Name: s.Name.Value, Params: params(s.Body), Local: true}, true
	case *ast.Assign:
		if s.Compound() || s.Targets.Len() != 1 || s.Values.Len() != 1 {
			break
		}
		fn, ok := s.Values.Items[0].(*ast.FuncExpr)
		if !ok {
			break
		}
		if name, ok := exprName(s.Targets.Items[0]); ok {
			return FuncDoc{Name: name, Params: params(fn.Body)}, true
		}
	}
	return FuncDoc{}, false
}

func exprName(e ast.Expr) (string, bool) {
	switch e := e.(type) {
	case *ast.Name:
		return e.Name.Value, true
	case *ast.Attr:
		if obj, ok := exprName(e.Obj); ok {
			return obj + "." + e.Name.Value, true
		}
	}
	return "", false
}

func params(b *ast.FuncBody) []string {
	var out []string
	for _, p := range b.Params.Items {
		out = append(out, p.Value)
	}
	return out
}

// attachedDoc returns the comment lines directly above a declaration.
func attachedDoc(trivia []scanner.Token) string {
	var lines []string
	i := len(trivia) - 1
	for {
		for i >= 0 && trivia[i].Kind == scanner.Space {
			i--
		}
		if i < 0 || trivia[i].Kind != scanner.Newline {
			break
		}
		i--
		for i >= 0 && trivia[i].Kind == scanner.Space {
			i--
		}
		if i < 0 || trivia[i].Kind != scanner.Comment {
			break
		}
		lines = append(lines, commentText(trivia[i].Raw))
		i--
	}
	for l, r := 0, len(lines)-1; l < r; l, r = l+1, r-1 {
		lines[l], lines[r] = lines[r], lines[l]
	}
	return strings.Join(lines, "\n")
}

// fileDoc returns the first run of comment lines at the top of a file.
func fileDoc(trivia []scanner.Token) string {
	var lines []string
	newlines := 0
	for _, t := range trivia {
		switch t.Kind {
		case scanner.Comment:
			lines = append(lines, commentText(t.Raw))
			newlines = 0
		case scanner.Newline:
			newlines++
			if newlines > 1 && len(lines) > 0 {
				return strings.Join(lines, "\n")
			}
		}
	}
	return strings.Join(lines, "\n")
}

// commentText strips the comment markers from a comment token.
func commentText(raw string) string {
	switch {
	case strings.HasPrefix(raw, "--"):
		raw = raw[2:]
		if open, ok := longOpen(raw); ok {
			raw = strings.TrimSuffix(raw[len(open):], strings.Replace(open, "[", "]", 2))
			return strings.TrimSpace(raw)
		}
	case strings.HasPrefix(raw, "//"):
		raw = raw[2:]
	}
	return strings.TrimPrefix(strings.TrimRight(raw, " \t"), " ")
}

// longOpen matches a long bracket opener such as [[ or [==[.
func longOpen(s string) (string, bool) {
	if !strings.HasPrefix(s, "[") {
		return "", false
	}
	i := 1
	for i < len(s) && s[i] == '=' {
		i++
	}
	if i < len(s) && s[i] == '[' {
		return s[:i+1], true
	}
	return "", false
}

func isLuaFile(name string) bool {
	return strings.HasSuffix(name, ".lua")
}

// LookupSymbol finds a top-level function by name.
func LookupSymbol(fd *FileDoc, name string) (doc string, signature string, found bool) {
	for _, f := range fd.Funcs {
		if f.Name == name {
			return f.Doc, f.Signature(), true
		}
	}
	return "", "", false
}
