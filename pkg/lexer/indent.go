package lexer

// Resolve rewrites the physical token stream into one with explicit
// grouping: a stack of indentation widths, initially {0}, is compared
// against each token that begins a new line. A strictly greater width
// pushes and emits IndentOpen; an equal width is a continuation and emits
// nothing; a strictly smaller width pops and emits IndentClose until the
// stack top is at or below the new width, then compares once more, so a
// dedent to a width not on the stack closes the deeper groups and opens
// one of its own. Remaining open widths are closed before EndOfInput. The
// output always has balanced IndentOpen/IndentClose pairs; Resolve cannot
// fail.
//
// Blank and comment-only lines never reach Resolve (they produce no
// tokens), so they neither open nor close groups.
func Resolve(toks []Token) []Token {
	out := make([]Token, 0, len(toks)+8)
	stack := []int{0}
	lastLine := 0
	for _, t := range toks {
		if t.Kind == EndOfInput {
			for len(stack) > 1 {
				stack = stack[:len(stack)-1]
				out = append(out, Token{Kind: IndentClose, Pos: t.Pos, Indent: t.Indent})
			}
			out = append(out, t)
			continue
		}
		if t.Pos.Line > lastLine {
			lastLine = t.Pos.Line
			w := t.Indent
			top := stack[len(stack)-1]
			switch {
			case w > top:
				stack = append(stack, w)
				out = append(out, Token{Kind: IndentOpen, Pos: t.Pos, Indent: w})
			case w < top:
				for len(stack) > 1 && stack[len(stack)-1] > w {
					stack = stack[:len(stack)-1]
					out = append(out, Token{Kind: IndentClose, Pos: t.Pos, Indent: w})
				}
				// A width not on the stack starts its own group.
				if w > stack[len(stack)-1] {
					stack = append(stack, w)
					out = append(out, Token{Kind: IndentOpen, Pos: t.Pos, Indent: w})
				}
			}
		}
		out = append(out, t)
	}
	return out
}
