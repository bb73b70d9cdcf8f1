package doc

import (
	"fmt"
	"strings"

	"github.com/p8tools/p8lua/lua"
)

// FormatFile formats a FileDoc for terminal display.
func FormatFile(fd *FileDoc) string {
	var sb strings.Builder

	if fd.Title != "" {
		sb.WriteString(fd.Title)
		sb.WriteString("\n")
		if fd.Byline != "" {
			sb.WriteString(fd.Byline)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	formatStats(&sb, fd)
	sb.WriteString("\n")

	if fd.Doc != "" && fd.Doc != headerText(fd) {
		sb.WriteString(fd.Doc)
		sb.WriteString("\n\n")
	}

	for _, f := range fd.Funcs {
		formatFunc(&sb, f)
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

// FormatSymbol formats a single symbol lookup result.
func FormatSymbol(docStr, signature string) string {
	var sb strings.Builder
	sb.WriteString(signature)
	sb.WriteString("\n")
	if docStr != "" {
		sb.WriteString("    ")
		sb.WriteString(strings.ReplaceAll(docStr, "\n", "\n    "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// headerText is the file doc a title and byline alone would produce.
func headerText(fd *FileDoc) string {
	if fd.Byline == "" {
		return fd.Title
	}
	return fd.Title + "\n" + fd.Byline
}

func formatStats(sb *strings.Builder, fd *FileDoc) {
	fmt.Fprintf(sb, "chars:  %6d / %d\n", fd.Chars, lua.CharLimit)
	fmt.Fprintf(sb, "tokens: %6d / %d\n", fd.Tokens, lua.TokenLimit)
	fmt.Fprintf(sb, "lines:  %6d\n", fd.Lines)
}

func formatFunc(sb *strings.Builder, f FuncDoc) {
	sb.WriteString(f.Signature())
	sb.WriteString("\n")
	if f.Doc != "" {
		sb.WriteString("    ")
		sb.WriteString(strings.ReplaceAll(f.Doc, "\n", "\n    "))
		sb.WriteString("\n")
	}
}
