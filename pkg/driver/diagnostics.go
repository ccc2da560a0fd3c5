package driver

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"linus/interpreter-go/pkg/lexer"
	"linus/interpreter-go/pkg/parser"
)

// FormatDiag renders one diagnostic for display. Lexical and syntactic
// diagnostics carry a position and get a source snippet with a caret
// under the offending column; evaluation errors carry none and render
// as a bare header.
func FormatDiag(diag error, src, path string) string {
	switch e := diag.(type) {
	case *lexer.Error:
		header := fmt.Sprintf("%s: lex error: %s", headerLoc(path, e.Pos), e.Message())
		return withSnippet(header, src, e.Pos)
	case *parser.Error:
		header := fmt.Sprintf("%s: parse error: %s", headerLoc(path, e.Pos), e.Message())
		return withSnippet(header, src, e.Pos)
	default:
		if path != "" {
			return fmt.Sprintf("%s: %s", path, diag.Error())
		}
		return diag.Error()
	}
}

func headerLoc(path string, pos lexer.Pos) string {
	if path == "" {
		return pos.String()
	}
	return fmt.Sprintf("%s:%s", path, pos)
}

// withSnippet appends the source line named by pos and a caret marker.
// Positions past the end of the line (end-of-input diagnostics) clamp
// to one column after it.
func withSnippet(header, src string, pos lexer.Pos) string {
	line, ok := sourceLine(src, pos.Line)
	if !ok {
		return header
	}
	col := pos.Col
	if col < 1 {
		col = 1
	}
	if n := utf8.RuneCountInString(line); col > n+1 {
		col = n + 1
	}
	var b strings.Builder
	b.WriteString(header)
	fmt.Fprintf(&b, "\n%4d | %s", pos.Line, line)
	fmt.Fprintf(&b, "\n     | %s^", strings.Repeat(" ", col-1))
	return b.String()
}

func sourceLine(src string, n int) (string, bool) {
	if n < 1 {
		return "", false
	}
	lines := strings.Split(src, "\n")
	if n > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[n-1], "\r"), true
}
