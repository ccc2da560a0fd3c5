package interpreter

import (
	"fmt"
	"strings"

	"linus/interpreter-go/pkg/runtime"
)

// ErrorKind discriminates runtime failures.
type ErrorKind int

const (
	UndefinedSymbol ErrorKind = iota
	ArityMismatch
	TypeMismatch
	UnresolvedForwardDeclaration
	UncaughtThrow
	BudgetExhausted
)

// EvalError is a runtime failure. One field group is populated per
// kind: Symbol and Suggestions for name errors, Payload for an uncaught
// throw, Msg for the rest.
type EvalError struct {
	Kind        ErrorKind
	Symbol      string
	Suggestions []string
	Payload     runtime.Value
	Msg         string
}

func (e *EvalError) Error() string {
	switch e.Kind {
	case UndefinedSymbol:
		if len(e.Suggestions) > 0 {
			return fmt.Sprintf("eval error: undefined symbol '%s' (did you mean %s?)", e.Symbol, quoteList(e.Suggestions))
		}
		return fmt.Sprintf("eval error: undefined symbol '%s'", e.Symbol)
	case UnresolvedForwardDeclaration:
		return fmt.Sprintf("eval error: '%s' is declared but not yet defined", e.Symbol)
	case UncaughtThrow:
		return fmt.Sprintf("eval error: uncaught throw: %s", e.Payload)
	default:
		return "eval error: " + e.Msg
	}
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, " or ")
}
