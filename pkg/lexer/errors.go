package lexer

import "fmt"

// ErrorKind classifies a lexical failure.
type ErrorKind int

const (
	UnterminatedString ErrorKind = iota
	MalformedNumber
	UnexpectedCharacter
)

func (k ErrorKind) String() string {
	switch k {
	case UnterminatedString:
		return "unterminated string"
	case MalformedNumber:
		return "malformed number"
	case UnexpectedCharacter:
		return "unexpected character"
	default:
		return "lex error"
	}
}

// Error is one lexical diagnostic. Pos is the start of the offending
// construct: the opening quote for UnterminatedString, the first digit for
// MalformedNumber, the character itself otherwise. Fragment holds the
// offending lexeme text where one exists.
type Error struct {
	Kind     ErrorKind
	Pos      Pos
	Fragment string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lex error at %s: %s", e.Pos, e.Message())
}

// Message is the diagnostic text without the position prefix.
func (e *Error) Message() string {
	switch e.Kind {
	case UnterminatedString:
		return "unterminated string"
	case MalformedNumber:
		return fmt.Sprintf("malformed number literal %q", e.Fragment)
	case UnexpectedCharacter:
		return fmt.Sprintf("unexpected character %q", e.Fragment)
	default:
		return e.Kind.String()
	}
}
