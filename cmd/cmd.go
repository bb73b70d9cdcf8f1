package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/p8tools/p8lua/ast"
	"github.com/p8tools/p8lua/build"
	"github.com/p8tools/p8lua/doc"
	"github.com/p8tools/p8lua/lua"
	"github.com/p8tools/p8lua/scanner"
	"github.com/p8tools/p8lua/transform"
	"github.com/p8tools/p8lua/writer"
	"github.com/urfave/cli/v3"
)

// Execute runs the p8lua CLI with the given version string.
func Execute(version string) {
	os.Exit(run(context.Background(), version, os.Args, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status.
func run(ctx context.Context, version string, args []string, stdout, stderr io.Writer) int {
	app := newApp(version)
	app.Writer = stdout
	app.ErrWriter = stderr
	if err := app.Run(ctx, args); err != nil {
		newReporter(app).fail(err)
		return 1
	}
	return 0
}

func newApp(version string) *cli.Command {
	writerFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:  "writer",
			Usage: "Output writer: echo, ast, minify or fmt",
			Value: "ast",
		}
	}
	outputFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write to this file instead of stdout",
		}
	}
	indentFlag := func() cli.Flag {
		return &cli.IntFlag{
			Name:  "indentwidth",
			Usage: "Spaces per indent level for the fmt writer",
			Value: writer.DefaultIndentWidth,
		}
	}

	return &cli.Command{
		Name:                   "p8lua",
		Usage:                  "Tools for PICO-8 Lua source",
		Version:                version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "version-tag",
				Usage: "Dialect version tag of the input",
				Value: scanner.DefaultVersion,
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only print errors",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Print debug messages",
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Aliases: []string{"C"},
				Usage:   "Disable ANSI color output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "echo",
				Usage:     "Print files exactly as lexed",
				ArgsUsage: "<file.lua>...",
				Action:    writeAction(func(*cli.Command) writer.Writer { return writer.Echo{} }),
			},
			{
				Name:      "ast",
				Usage:     "Print files regenerated from the syntax tree",
				ArgsUsage: "<file.lua>...",
				Action:    writeAction(func(*cli.Command) writer.Writer { return writer.ASTEcho{} }),
			},
			{
				Name:      "fmt",
				Usage:     "Reformat files",
				ArgsUsage: "<file.lua>...",
				Flags:     []cli.Flag{indentFlag()},
				Action: writeAction(func(cmd *cli.Command) writer.Writer {
					return writer.Formatter{IndentWidth: cmd.Int("indentwidth")}
				}),
			},
			{
				Name:      "minify",
				Usage:     "Shrink files by dropping trivia and renaming locals",
				ArgsUsage: "<file.lua>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "keep-names",
						Usage: "Do not rename local variables",
					},
				},
				Action: writeAction(func(cmd *cli.Command) writer.Writer {
					return writer.Minify{KeepNames: cmd.Bool("keep-names")}
				}),
			},
			{
				Name:      "stats",
				Usage:     "Print title, byline and size counts",
				ArgsUsage: "<file.lua>...",
				Action:    statsAction,
			},
			{
				Name:      "doc",
				Usage:     "List the functions of a file or directory",
				ArgsUsage: "<file.lua | dir> [symbol]",
				Action:    docAction,
			},
			{
				Name:      "build",
				Usage:     "Inline required modules into one program",
				ArgsUsage: "<file.lua>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "lua-path",
						Usage:   "Module search patterns, ? is replaced by the require string",
						Value:   build.DefaultLuaPath,
						Sources: cli.EnvVars("PICO8_LUA_PATH"),
					},
					&cli.BoolFlag{
						Name:  "keep-game-loop",
						Usage: "Keep _init, _update and _draw in every module",
					},
					writerFlag(),
					indentFlag(),
					outputFlag(),
				},
				Action: buildAction,
			},
			{
				Name:      "upsidedown",
				Usage:     "Rewrite drawing calls to render the cart rotated",
				ArgsUsage: "<file.lua>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "smallmap",
						Usage: "The cart uses the shared gfx/map region as sprites",
					},
					&cli.BoolFlag{
						Name:  "flip-buttons",
						Usage: "Swap left/right and up/down buttons",
					},
					writerFlag(),
					indentFlag(),
					outputFlag(),
				},
				Action: upsidedownAction,
			},
		},
	}
}

// load parses a file and runs the tree checks over it.
func load(cmd *cli.Command, path string) (*lua.Source, error) {
	src, err := lua.ParseFile(path, cmd.Int("version-tag"))
	if err != nil {
		return nil, err
	}
	if err := src.Check(ast.LabelCheck{}); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	newReporter(cmd).debugf("parsed %s: %d tokens", path, src.TokenCount())
	return src, nil
}

func writeAction(pick func(*cli.Command) writer.Writer) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if cmd.NArg() < 1 {
			return fmt.Errorf("usage: p8lua %s <file.lua>...", cmd.Name)
		}
		w := pick(cmd)
		out := cmd.Root().Writer
		for _, path := range cmd.Args().Slice() {
			src, err := load(cmd, path)
			if err != nil {
				return err
			}
			for line := range src.Lines(w) {
				if _, err := io.WriteString(out, line); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

func statsAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: p8lua stats <file.lua>...")
	}
	r := newReporter(cmd)
	out := cmd.Root().Writer
	for _, path := range cmd.Args().Slice() {
		src, err := load(cmd, path)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, path)
		if title, ok := src.Title(); ok {
			fmt.Fprintf(out, "  title:  %s\n", title)
		}
		if byline, ok := src.Byline(); ok {
			fmt.Fprintf(out, "  byline: %s\n", byline)
		}
		fmt.Fprintf(out, "  chars:  %6d / %d\n", src.CharCount(), lua.CharLimit)
		fmt.Fprintf(out, "  tokens: %6d / %d\n", src.TokenCount(), lua.TokenLimit)
		fmt.Fprintf(out, "  lines:  %6d\n", src.LineCount())

		if n := src.CharCount(); n > lua.CharLimit {
			r.warnf("%s: %d chars is over the %d limit", path, n, lua.CharLimit)
		}
		if n := src.TokenCount(); n > lua.TokenLimit {
			r.warnf("%s: %d tokens is over the %d limit", path, n, lua.TokenLimit)
		}
	}
	return nil
}

func docAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: p8lua doc <file.lua | dir> [symbol]")
	}
	target := cmd.Args().First()
	version := cmd.Int("version-tag")

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", target, err)
	}
	var fd *doc.FileDoc
	if info.IsDir() {
		entry := filepath.Join(target, "main.lua")
		if _, err := os.Stat(entry); err != nil {
			entry = ""
		}
		fd, err = doc.ExtractDir(target, entry, version)
	} else {
		fd, err = doc.ExtractFile(target, version)
	}
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	if cmd.NArg() > 1 {
		name := cmd.Args().Get(1)
		d, sig, found := doc.LookupSymbol(fd, name)
		if !found {
			return fmt.Errorf("symbol %q not found in %s", name, target)
		}
		fmt.Fprint(out, doc.FormatSymbol(d, sig))
		return nil
	}
	fmt.Fprint(out, doc.FormatFile(fd))
	return nil
}

func buildAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: p8lua build [-o output] <file.lua>")
	}
	path := cmd.Args().First()
	src, err := load(cmd, path)
	if err != nil {
		return err
	}
	r := newReporter(cmd)
	built, err := build.Build(src, path, build.Options{
		LuaPath:      cmd.String("lua-path"),
		KeepGameLoop: cmd.Bool("keep-game-loop"),
		Version:      cmd.Int("version-tag"),
		Logf:         r.debugf,
	})
	if err != nil {
		return err
	}
	if n := built.TokenCount(); n > lua.TokenLimit {
		r.warnf("%s: built program has %d tokens, over the %d limit", path, n, lua.TokenLimit)
	}
	return emit(cmd, built)
}

func upsidedownAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: p8lua upsidedown [-o output] <file.lua>")
	}
	src, err := load(cmd, cmd.Args().First())
	if err != nil {
		return err
	}
	u := &transform.UpsideDown{
		SmallMap:    cmd.Bool("smallmap"),
		FlipButtons: cmd.Bool("flip-buttons"),
	}
	if err := ast.Chain(u).Transform(src.Root); err != nil {
		return err
	}
	if err := src.Reparse(writer.ASTEcho{}); err != nil {
		return err
	}
	r := newReporter(cmd)
	for _, w := range u.Warnings {
		r.warnf("%s: %v", src.Filename, w)
	}
	return emit(cmd, src)
}

// emit renders src with the writer named by --writer to --output or stdout.
func emit(cmd *cli.Command, src *lua.Source) error {
	w, err := writer.ByName(cmd.String("writer"), writer.Options{IndentWidth: cmd.Int("indentwidth")})
	if err != nil {
		return err
	}
	text := src.String(w)
	if output := cmd.String("output"); output != "" {
		if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		newReporter(cmd).infof("wrote %s", output)
		return nil
	}
	_, err = io.WriteString(cmd.Root().Writer, text)
	return err
}
