package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/p8tools/p8lua/lua"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const (
	colorWarn  = "\033[33m"
	colorFail  = "\033[31m"
	colorDebug = "\033[2m"
	colorReset = "\033[0m"
)

// reporter writes diagnostics to the command's error writer. Library
// packages never print; everything user-facing goes through here.
type reporter struct {
	w     io.Writer
	color bool
	quiet bool
	debug bool
}

func newReporter(cmd *cli.Command) *reporter {
	w := cmd.Root().ErrWriter
	if w == nil {
		w = os.Stderr
	}
	return &reporter{
		w:     w,
		color: useColor(w, cmd.Bool("no-color")),
		quiet: cmd.Bool("quiet"),
		debug: cmd.Bool("debug"),
	}
}

// useColor reports whether w is a terminal that accepts ANSI colors.
func useColor(w io.Writer, disabled bool) bool {
	if disabled || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (r *reporter) paint(color, s string) string {
	if !r.color {
		return s
	}
	return color + s + colorReset
}

func (r *reporter) infof(format string, args ...any) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.w, format+"\n", args...)
}

func (r *reporter) warnf(format string, args ...any) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.w, "%s %s\n", r.paint(colorWarn, "warning:"), fmt.Sprintf(format, args...))
}

func (r *reporter) debugf(format string, args ...any) {
	if !r.debug {
		return
	}
	fmt.Fprintln(r.w, r.paint(colorDebug, "debug: "+fmt.Sprintf(format, args...)))
}

// fail prints err, one line per positioned error it carries.
func (r *reporter) fail(err error) {
	for _, e := range lua.AsErrList(err) {
		fmt.Fprintf(r.w, "%s %v\n", r.paint(colorFail, "error:"), e.Err)
	}
}
