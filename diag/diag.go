// Package diag renders syntax and type errors as source snippets.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smasher164/l5/lexer"
	"github.com/smasher164/l5/parser"
	"github.com/smasher164/l5/types"
)

const (
	red   = "\x1b[31m"
	reset = "\x1b[0m"
)

func locate(err error) (header string, span lexer.Span, msg string, ok bool) {
	var perr *parser.Error
	if errors.As(err, &perr) {
		return "syntax error", perr.Span, perr.Msg, !perr.Span.IsZero()
	}
	var terr *types.Error
	if errors.As(err, &terr) {
		return terr.Kind.String(), terr.Span, terr.Msg, !terr.Span.IsZero()
	}
	return "", lexer.Span{}, "", false
}

// Snippet renders err with the line it points at, one line of context on
// either side, and a caret under the offending text. Errors without a
// location are rendered as "name: err".
func Snippet(err error, name, src string, color bool) string {
	header, span, msg, ok := locate(err)
	if !ok {
		if name == "" {
			return err.Error()
		}
		return fmt.Sprintf("%s: %s", name, err)
	}
	lines := strings.Split(src, "\n")
	line := clamp(span.Start.Line, 1, len(lines))
	col := span.Start.Column
	if col < 1 {
		col = 1
	}
	width := 1
	if span.End.Line == span.Start.Line && span.End.Column > span.Start.Column {
		width = span.End.Column - span.Start.Column + 1
	}

	var b strings.Builder
	if color {
		header = red + header + reset
	}
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s%s\n", strings.Repeat(" ", col-1), strings.Repeat("^", width))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
