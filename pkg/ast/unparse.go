package ast

import (
	"strconv"
	"strings"
)

// Unparse renders a node in canonical parenthesized prefix form. The
// output re-parses to an equal tree: composites are always parenthesized,
// so the rendering is independent of the grouping style ($ or indentation)
// the source used.
func Unparse(node Node) string {
	var b strings.Builder
	writeNode(&b, node)
	return b.String()
}

// UnparseProgram renders top-level forms one per line.
func UnparseProgram(forms []Expression) string {
	var b strings.Builder
	for _, f := range forms {
		writeNode(&b, f)
		b.WriteByte('\n')
	}
	return b.String()
}

func writeNode(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case *NumberLiteral:
		b.WriteString(formatNumber(n.Value))
	case *StringLiteral:
		writeQuoted(b, n.Value)
	case *BooleanLiteral:
		b.WriteString(strconv.FormatBool(n.Value))
	case *NoneLiteral:
		b.WriteString("none")
	case *SymbolRef:
		b.WriteString(n.Name)
	case *Call:
		b.WriteByte('(')
		writeNode(b, n.Operator)
		writeBody(b, n.Operands)
		b.WriteByte(')')
	case *Conditional:
		b.WriteString("(if ")
		writeNode(b, n.Test)
		b.WriteByte(' ')
		writeNode(b, n.Consequent)
		if n.Alternative != nil {
			b.WriteByte(' ')
			writeNode(b, n.Alternative)
		}
		b.WriteByte(')')
	case *Let:
		b.WriteString("(let ")
		b.WriteString(n.Name)
		b.WriteString(" -> ")
		writeNode(b, n.Value)
		b.WriteByte(')')
	case *Block:
		b.WriteByte('(')
		b.WriteString(string(n.Kind))
		writeBody(b, n.Body)
		b.WriteByte(')')
	case *TryExpression:
		b.WriteString("(try")
		writeBody(b, n.Try.Body)
		if n.Catch != nil {
			b.WriteString(" catch")
			writeBody(b, n.Catch.Body)
		}
		if n.Finally != nil {
			b.WriteString(" finally")
			writeBody(b, n.Finally.Body)
		}
		b.WriteByte(')')
	case *Throw:
		b.WriteString("(throw")
		writeBody(b, n.Body)
		b.WriteByte(')')
	case *Definition:
		b.WriteString("(def ")
		b.WriteString(n.Name)
		if n.TypeAnnotation != "" {
			b.WriteString(": ")
			b.WriteString(n.TypeAnnotation)
		}
		for _, p := range n.Params {
			b.WriteByte(' ')
			b.WriteString(p.Name)
			b.WriteString(": ")
			b.WriteString(p.TypeAnnotation)
		}
		b.WriteString(" ->")
		if n.Body != nil {
			b.WriteByte(' ')
			writeNode(b, n.Body)
		}
		b.WriteByte(')')
	}
}

func writeBody(b *strings.Builder, exprs []Expression) {
	for _, e := range exprs {
		b.WriteByte(' ')
		writeNode(b, e)
	}
}

// formatNumber keeps plain decimal notation so the rendering re-lexes
// (the language has no exponent syntax).
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// writeQuoted emits the string with the lexer's escape set; anything else,
// including raw control characters, passes through untouched.
func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
}
