// Package lexer turns source text into the token stream the parser
// consumes. Tokenize performs the character-level scan; Resolve rewrites
// physical line structure into explicit IndentOpen/IndentClose grouping
// tokens so the parser never needs to know about lines.
package lexer

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Tokenize scans src into its physical token stream, terminated by exactly
// one EndOfInput token. Errors are collected and scanning continues: an
// unterminated string skips to the end of its line, anything else skips the
// offending character.
func Tokenize(src string) ([]Token, []*Error) {
	s := &scanner{src: src, line: 1, col: 1, bol: true}
	for !s.atEnd() {
		s.skipBlanks()
		if s.atEnd() {
			break
		}
		s.start = s.cur
		s.startPos = Pos{s.line, s.col}
		s.scanToken()
	}
	s.toks = append(s.toks, Token{Kind: EndOfInput, Lexeme: "", Pos: Pos{s.line, s.col}, Indent: s.lineIndent})
	return s.toks, s.errs
}

type scanner struct {
	src        string
	start      int
	cur        int
	line       int
	col        int
	startPos   Pos
	lineIndent int
	bol        bool
	toks       []Token
	errs       []*Error
}

func (s *scanner) atEnd() bool { return s.cur >= len(s.src) }

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.cur]
}

func (s *scanner) peekNext() byte {
	if s.cur+1 >= len(s.src) {
		return 0
	}
	return s.src[s.cur+1]
}

func (s *scanner) advance() byte {
	c := s.src[s.cur]
	s.cur++
	if c == '\n' {
		s.line++
		s.col = 1
		s.bol = true
		s.lineIndent = 0
	} else {
		s.col++
	}
	return c
}

func (s *scanner) match(want byte) bool {
	if s.peek() != want {
		return false
	}
	s.advance()
	return true
}

// skipBlanks consumes whitespace and comments. Leading spaces and tabs are
// counted into lineIndent, one per character, until the first real token of
// the line. Comment-only and blank lines therefore never contribute tokens
// and are invisible to Resolve.
func (s *scanner) skipBlanks() {
	for !s.atEnd() {
		switch s.peek() {
		case ' ', '\t':
			s.advance()
			if s.bol {
				s.lineIndent++
			}
		case '\r', '\n':
			s.advance()
		case '#':
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		default:
			s.bol = false
			return
		}
	}
}

func (s *scanner) scanToken() {
	c := s.advance()
	switch {
	case c == '(':
		s.add(LeftParen)
	case c == ')':
		s.add(RightParen)
	case c == '$':
		s.add(Appl)
	case c == ':':
		s.add(TypeDelim)
	case c == '-':
		if s.match('>') {
			s.add(Arrow)
		} else {
			s.addOperator()
		}
	case c == '>' || c == '<':
		s.match('=')
		s.addOperator()
	case c == '+' || c == '*' || c == '/' || c == '=':
		s.addOperator()
	case c == '"':
		s.scanString()
	case isDigit(c):
		s.scanNumber()
	case isAlpha(c):
		s.scanWord()
	case c == '_':
		if isSubsequent(s.peek()) {
			for isSubsequent(s.peek()) {
				s.advance()
			}
			s.errs = append(s.errs, &Error{Kind: UnexpectedCharacter, Pos: s.startPos, Fragment: "_"})
		} else {
			s.add(TypeName)
		}
	default:
		s.unexpected(c)
	}
}

func (s *scanner) add(kind Kind) {
	s.toks = append(s.toks, Token{
		Kind:   kind,
		Lexeme: s.src[s.start:s.cur],
		Pos:    s.startPos,
		Indent: s.lineIndent,
	})
}

func (s *scanner) addOperator() {
	s.toks = append(s.toks, Token{
		Kind:   Symbol,
		Lexeme: s.src[s.start:s.cur],
		Pos:    s.startPos,
		Indent: s.lineIndent,
		Op:     true,
	})
}

func (s *scanner) scanWord() {
	for isSubsequent(s.peek()) {
		s.advance()
	}
	word := s.src[s.start:s.cur]
	if k, ok := keywords[word]; ok {
		s.add(k)
		return
	}
	if typeNames[word] {
		s.add(TypeName)
		return
	}
	switch word {
	case "true", "false":
		s.toks = append(s.toks, Token{
			Kind:   Boolean,
			Lexeme: word,
			Bool:   word == "true",
			Pos:    s.startPos,
			Indent: s.lineIndent,
		})
	case "none":
		s.add(None)
	default:
		s.toks = append(s.toks, Token{
			Kind:   Symbol,
			Lexeme: word,
			Pos:    s.startPos,
			Indent: s.lineIndent,
			Op:     wordOperators[word],
		})
	}
}

// scanNumber accepts digits, optionally followed by '.' and at least one
// more digit. A trailing dot, a second dot, or a literal that does not
// parse to a finite float is MalformedNumber at the literal's start.
func (s *scanner) scanNumber() {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' {
		s.advance()
		if !isDigit(s.peek()) {
			s.errorFrom(MalformedNumber)
			return
		}
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	if s.peek() == '.' {
		for isDigit(s.peek()) || s.peek() == '.' {
			s.advance()
		}
		s.errorFrom(MalformedNumber)
		return
	}
	text := s.src[s.start:s.cur]
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		s.errorFrom(MalformedNumber)
		return
	}
	s.toks = append(s.toks, Token{
		Kind:   Number,
		Lexeme: text,
		Num:    f,
		Pos:    s.startPos,
		Indent: s.lineIndent,
	})
}

// scanString runs with the opening quote already consumed. Escapes \" \\
// \n \t cook into their characters; any other escape is reported at the
// escaped character and suppresses the token. A newline or end of input
// before the closing quote is UnterminatedString at the opening quote.
func (s *scanner) scanString() {
	var b strings.Builder
	bad := false
	for {
		if s.atEnd() || s.peek() == '\n' {
			s.errs = append(s.errs, &Error{Kind: UnterminatedString, Pos: s.startPos, Fragment: s.src[s.start:s.cur]})
			return
		}
		c := s.advance()
		switch c {
		case '"':
			if !bad {
				s.toks = append(s.toks, Token{
					Kind:   Str,
					Lexeme: s.src[s.start:s.cur],
					Text:   b.String(),
					Pos:    s.startPos,
					Indent: s.lineIndent,
				})
			}
			return
		case '\\':
			if s.atEnd() || s.peek() == '\n' {
				continue
			}
			escPos := Pos{s.line, s.col}
			switch e := s.advance(); e {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				s.errs = append(s.errs, &Error{Kind: UnexpectedCharacter, Pos: escPos, Fragment: string(e)})
				bad = true
			}
		default:
			b.WriteByte(c)
		}
	}
}

func (s *scanner) errorFrom(kind ErrorKind) {
	s.errs = append(s.errs, &Error{Kind: kind, Pos: s.startPos, Fragment: s.src[s.start:s.cur]})
}

// unexpected reports a character outside the language's alphabet. The
// first byte is already consumed; the rest of a multi-byte rune is skipped
// so one bad rune yields one diagnostic.
func (s *scanner) unexpected(first byte) {
	fragment := string(first)
	if first >= utf8.RuneSelf {
		r, size := utf8.DecodeRuneInString(s.src[s.start:])
		for i := 1; i < size; i++ {
			s.advance()
		}
		fragment = string(r)
	}
	s.errs = append(s.errs, &Error{Kind: UnexpectedCharacter, Pos: s.startPos, Fragment: fragment})
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// isSubsequent reports whether c may continue a symbol:
// [A-Za-z0-9!%&*<=>?_^+-].
func isSubsequent(c byte) bool {
	if isAlpha(c) || isDigit(c) {
		return true
	}
	switch c {
	case '!', '%', '&', '*', '<', '=', '>', '?', '_', '^', '+', '-':
		return true
	}
	return false
}
