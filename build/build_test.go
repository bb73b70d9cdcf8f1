package build

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p8tools/p8lua/lua"
	"github.com/p8tools/p8lua/scanner"
	"github.com/p8tools/p8lua/writer"
)

// writeFiles creates files under dir and returns dir.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func buildMain(t *testing.T, dir string, opts Options) (string, error) {
	t.Helper()
	path := filepath.Join(dir, "main.lua")
	src, err := lua.ParseFile(path, scanner.DefaultVersion)
	require.NoError(t, err)
	out, err := Build(src, path, opts)
	if err != nil {
		return "", err
	}
	return out.String(writer.Echo{}), nil
}

func TestBuildSingleModule(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.lua": "x = require(\"foo\")\n",
		"foo.lua":  "return 42\n",
	})
	got, err := buildMain(t, dir, Options{})
	require.NoError(t, err)
	want := preamble +
		"package._c[\"foo\"]=function()\n" +
		"return 42\n" +
		"end\n" +
		"x = require(\"foo\")\n"
	assert.Equal(t, want, got)
}

func TestBuildWrapperLayout(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.lua": "require(\"a\")\nrequire(\"b\")\n",
		"a.lua":    "",
		"b.lua":    "x = 1 -- tail",
	})
	got, err := buildMain(t, dir, Options{})
	require.NoError(t, err)
	want := preamble +
		"package._c[\"a\"]=function()\n" +
		"end\n" +
		"package._c[\"b\"]=function()\n" +
		"x = 1 -- tail\n" +
		"end\n" +
		"require(\"a\")\nrequire(\"b\")\n"
	assert.Equal(t, want, got)
}

func TestBuildMemoizesByLiteral(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.lua": "a = require(\"foo\")\nb = require(\"foo\")\nc = require(\"foo.lua\")\nprint(a)\n",
		"foo.lua":  "function _init() end\nfunction helper() end\nreturn {x=1}\n",
	})
	got, err := buildMain(t, dir, Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(got, `package._c["foo"]=function()`))
	assert.Equal(t, 1, strings.Count(got, `package._c["foo.lua"]=function()`))
	assert.Equal(t, 2, strings.Count(got, "function helper()"))
	assert.NotContains(t, got, "_init")

	loader := strings.Index(got, "function require(p)")
	foo := strings.Index(got, `package._c["foo"]`)
	fooLua := strings.Index(got, `package._c["foo.lua"]`)
	program := strings.Index(got, "a = require")
	assert.True(t, 0 < loader && loader < foo && foo < fooLua && fooLua < program)

	_, err = lua.FromString(got, scanner.DefaultVersion)
	assert.NoError(t, err)
}

func TestBuildGameLoopOption(t *testing.T) {
	files := map[string]string{
		"foo.lua": "function _update() end\nfunction _draw() end\nfunction f() end\n",
	}

	files["main.lua"] = "require(\"foo\", {use_game_loop=true})\nrequire(\"foo\")\n"
	got, err := buildMain(t, writeFiles(t, files), Options{})
	require.NoError(t, err)
	assert.Contains(t, got, "function _update()")
	assert.Contains(t, got, "function _draw()")

	files["main.lua"] = "require(\"foo\")\nrequire(\"foo\", {use_game_loop=true})\n"
	got, err = buildMain(t, writeFiles(t, files), Options{})
	require.NoError(t, err)
	assert.NotContains(t, got, "function _update()")
	assert.Contains(t, got, "function f()")

	got, err = buildMain(t, writeFiles(t, files), Options{KeepGameLoop: true})
	require.NoError(t, err)
	assert.Contains(t, got, "function _update()")
}

func TestBuildRecursive(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.lua":    "require(\"lib/foo\")\n",
		"lib/foo.lua": "require(\"bar\")\nfoo = 1\n",
		"lib/bar.lua": "bar = 2\n",
	})
	path := filepath.Join(dir, "main.lua")
	src, err := lua.ParseFile(path, scanner.DefaultVersion)
	require.NoError(t, err)

	var logged []string
	ctx := NewContext(Options{Logf: func(format string, args ...any) {
		logged = append(logged, format)
	}})
	require.NoError(t, ctx.Resolve(src, path))

	mods := ctx.Modules()
	require.Len(t, mods, 2)
	assert.Equal(t, "lib/foo", mods[0].Literal)
	assert.Equal(t, filepath.Join(dir, "lib", "foo.lua"), mods[0].File)
	assert.Equal(t, "bar", mods[1].Literal)
	assert.Equal(t, filepath.Join(dir, "lib", "bar.lua"), mods[1].File)
	assert.Len(t, logged, 2)
}

func TestBuildCycle(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.lua": "require(\"a\")\n",
		"a.lua":    "require(\"b\")\n",
		"b.lua":    "require(\"a\")\n",
	})
	got, err := buildMain(t, dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(got, `package._c["a"]`))
	assert.Equal(t, 1, strings.Count(got, `package._c["b"]`))
}

func TestBuildRemovesRootReturn(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.lua": "x=1\nfunction f() return 2 end\nreturn x\n",
	})
	got, err := buildMain(t, dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, "x=1\nfunction f() return 2 end\n", got)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		main string
		want string
	}{
		{"traversal", "x = require(\"../foo\")\n", `require() filename cannot contain "./" or "../" or start with "/" at line 1 char 5`},
		{"absolute", "x = require(\"/etc/foo\")\n", `cannot contain "./"`},
		{"not found", "x = require(\"nope\")\n", "require() file nope not found; used load path ?;?.lua at line 1 char 5"},
		{"no args", "require()\n", "require() has 0 args, should have 1 or 2"},
		{"three args", "require(\"a\", {}, 3)\n", "require() has 3 args, should have 1 or 2"},
		{"not a literal", "require(name)\n", "require() first argument must be a string literal"},
		{"options not a table", "require(\"foo\", 1)\n", "require() second argument must be a table literal"},
		{"bad option", "require(\"foo\", {use_game_loop=1})\n", "Invalid require() options; did you mean {use_game_loop=true} ?"},
		{"extra option", "require(\"foo\", {use_game_loop=true, x=1})\n", "Invalid require() options"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeFiles(t, map[string]string{"main.lua": tt.main, "foo.lua": "x=1\n"})
			_, err := buildMain(t, dir, Options{})
			require.Error(t, err)
			var be *BuildError
			require.ErrorAs(t, err, &be)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, filepath.Join(dir, "main.lua"), be.Pos.Filename)
		})
	}
}

func TestFindRequires(t *testing.T) {
	src, err := lua.FromString("a = require\"x\"\nlocal t = { f = require(\"y\", {use_game_loop=false}) }\nobj:require(\"z\")\n", scanner.DefaultVersion)
	require.NoError(t, err)
	reqs, err := FindRequires(src.Root)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "x", reqs[0].Path)
	assert.Equal(t, 1, reqs[0].Pos().Line)
	assert.Equal(t, "y", reqs[1].Path)
	assert.False(t, reqs[1].UseGameLoop)
	assert.Equal(t, 2, reqs[1].Pos().Line)
}

func TestLocate(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"lib/util.lua":  "",
		"game/main.lua": "",
	})
	from := filepath.Join(dir, "game", "main.lua")

	_, ok := Locate("util", from, DefaultLuaPath)
	assert.False(t, ok)

	got, ok := Locate("util", from, "?;../lib/?.lua")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "lib", "util.lua"), got)

	got, ok = Locate("util", from, filepath.Join(dir, "lib", "?.lua"))
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "lib", "util.lua"), got)

	_, ok = Locate("lib", from, "../?")
	assert.False(t, ok, "directories never match")
}

func TestStripGameLoop(t *testing.T) {
	src, err := lua.FromString("function _init() end\nfunction _update60() end\nfunction obj:_draw() end\nlocal function _draw() end\n", scanner.DefaultVersion)
	require.NoError(t, err)
	assert.Equal(t, 2, StripGameLoop(src.Root))
	assert.Len(t, src.Root.Block.Stmts, 2)
}
