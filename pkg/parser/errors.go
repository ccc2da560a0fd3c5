package parser

import (
	"fmt"

	"linus/interpreter-go/pkg/lexer"
)

// Error is one syntax diagnostic. Incomplete marks errors whose found
// token is end of input; interactive hosts treat those as "keep typing"
// rather than failure.
type Error struct {
	Pos        lexer.Pos
	Expected   string
	Found      string
	Msg        string
	Incomplete bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Pos, e.Message())
}

// Message is the diagnostic text without the position prefix.
func (e *Error) Message() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
}

// IsIncomplete reports whether errs is non-empty and every error in it
// stems from truncated input, i.e. the source so far is a prefix of
// something well formed.
func IsIncomplete(errs []*Error) bool {
	if len(errs) == 0 {
		return false
	}
	for _, e := range errs {
		if !e.Incomplete {
			return false
		}
	}
	return true
}
