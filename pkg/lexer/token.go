package lexer

import (
	"fmt"
	"sort"
)

// Kind identifies a token class.
type Kind int

const (
	// Atoms
	Symbol Kind = iota
	Number
	Str
	Boolean
	None

	// Keywords
	KwDef
	KwLet
	KwDo
	KwLoop
	KwTry
	KwCatch
	KwFinally
	KwThrow
	KwIf

	// Punctuation
	LeftParen
	RightParen
	Appl      // $
	Arrow     // ->
	TypeDelim // :

	// Reserved type names: num, str, bool, _
	TypeName

	// Synthetic grouping tokens, emitted by Resolve only.
	IndentOpen
	IndentClose

	EndOfInput
)

func (k Kind) String() string {
	switch k {
	case Symbol:
		return "symbol"
	case Number:
		return "number"
	case Str:
		return "string"
	case Boolean:
		return "boolean"
	case None:
		return "none"
	case KwDef:
		return "'def'"
	case KwLet:
		return "'let'"
	case KwDo:
		return "'do'"
	case KwLoop:
		return "'loop'"
	case KwTry:
		return "'try'"
	case KwCatch:
		return "'catch'"
	case KwFinally:
		return "'finally'"
	case KwThrow:
		return "'throw'"
	case KwIf:
		return "'if'"
	case LeftParen:
		return "'('"
	case RightParen:
		return "')'"
	case Appl:
		return "'$'"
	case Arrow:
		return "'->'"
	case TypeDelim:
		return "':'"
	case TypeName:
		return "type name"
	case IndentOpen:
		return "indent"
	case IndentClose:
		return "dedent"
	case EndOfInput:
		return "end of input"
	default:
		return "unknown token"
	}
}

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// Token is one lexical unit. Lexeme holds the raw spelling. Payload fields
// are populated per kind: Num for Number, Text for the cooked Str payload,
// Bool for Boolean. Indent is the leading-whitespace width of the token's
// line. Op marks Symbol tokens with operator spellings (+ - * / > < >= <=
// = and or not), which the parser treats as application heads rather than
// atoms when they appear in operand position.
type Token struct {
	Kind   Kind
	Lexeme string
	Text   string
	Num    float64
	Bool   bool
	Pos    Pos
	Indent int
	Op     bool
}

// Describe renders the token for expected-vs-found diagnostics.
func (t Token) Describe() string {
	switch t.Kind {
	case Symbol:
		return fmt.Sprintf("symbol '%s'", t.Lexeme)
	case Number, Str, Boolean:
		return t.Lexeme
	case None:
		return "'none'"
	case TypeName:
		return fmt.Sprintf("type '%s'", t.Lexeme)
	case IndentOpen, IndentClose, EndOfInput:
		return t.Kind.String()
	default:
		return t.Kind.String()
	}
}

var keywords = map[string]Kind{
	"def":     KwDef,
	"let":     KwLet,
	"do":      KwDo,
	"loop":    KwLoop,
	"try":     KwTry,
	"catch":   KwCatch,
	"finally": KwFinally,
	"throw":   KwThrow,
	"if":      KwIf,
}

// Keywords lists the reserved words in sorted order, for editor and
// REPL completion.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for w := range keywords {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

var typeNames = map[string]bool{
	"num":  true,
	"str":  true,
	"bool": true,
	"_":    true,
}

// Word-spelled operators; lexed as Symbol with Op set.
var wordOperators = map[string]bool{
	"and": true,
	"or":  true,
	"not": true,
}
