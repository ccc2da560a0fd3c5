// Package parser turns a resolved token stream into expression trees.
//
// The grammar is prefix notation with no precedence. A symbol in head
// position opens an application and gathers operands greedily until a
// token that cannot start an operand. Three tokens delimit sub-structure:
// '$' makes the rest of the group a single operand, '(' … ')' brackets
// exactly one expression, and an indent block likewise holds exactly one
// expression when it appears in operand position. Keyword constructs
// (let, if, do, loop, try, throw, def) carry their own shapes and may
// themselves stand in operand position.
package parser

import (
	"fmt"
	"sort"

	"linus/interpreter-go/pkg/ast"
	"linus/interpreter-go/pkg/lexer"
)

// Parse consumes a resolved token stream (see lexer.Resolve) and returns
// the top-level forms together with every syntax error found. After an
// error the parser resynchronizes at the next dedent at the current
// depth, the next def, or end of input, so a single pass can report
// several independent mistakes.
func Parse(toks []lexer.Token) ([]ast.Expression, []*Error) {
	if len(toks) == 0 {
		return nil, nil
	}
	p := &parser{toks: toks}
	var forms []ast.Expression
	for !p.at(lexer.EndOfInput) {
		form, err := p.parseExpression()
		if err != nil {
			p.errs = append(p.errs, err)
			p.synchronize()
			continue
		}
		forms = append(forms, form)
	}
	return forms, p.errs
}

// ParseSource runs the whole front end over src: tokenize, resolve
// indentation, parse. Lexical and syntactic diagnostics keep their own
// types in the returned slice and are ordered by source position.
func ParseSource(src string) ([]ast.Expression, []error) {
	toks, lexErrs := lexer.Tokenize(src)
	forms, parseErrs := Parse(lexer.Resolve(toks))
	if len(lexErrs) == 0 && len(parseErrs) == 0 {
		return forms, nil
	}
	diags := make([]error, 0, len(lexErrs)+len(parseErrs))
	for _, e := range lexErrs {
		diags = append(diags, e)
	}
	for _, e := range parseErrs {
		diags = append(diags, e)
	}
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diagPos(diags[i]), diagPos(diags[j])
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
	return forms, diags
}

func diagPos(err error) lexer.Pos {
	switch e := err.(type) {
	case *lexer.Error:
		return e.Pos
	case *Error:
		return e.Pos
	}
	return lexer.Pos{}
}

type parser struct {
	toks []lexer.Token
	pos  int
	errs []*Error
}

func (p *parser) peek() lexer.Token {
	return p.toks[p.pos]
}

func (p *parser) peek2() lexer.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

// advance never walks past EndOfInput, so peek stays in bounds.
func (p *parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if t.Kind != lexer.EndOfInput {
		p.pos++
	}
	return t
}

func (p *parser) at(k lexer.Kind) bool {
	return p.peek().Kind == k
}

func (p *parser) expected(what string, found lexer.Token) *Error {
	return &Error{
		Pos:        found.Pos,
		Expected:   what,
		Found:      found.Describe(),
		Incomplete: found.Kind == lexer.EndOfInput,
	}
}

// canStartOperand reports whether t can begin an operand. def is absent
// on purpose: it always starts a fresh form, never an operand or body,
// which is what lets a forward declaration sit directly above the next
// definition.
func canStartOperand(t lexer.Token) bool {
	switch t.Kind {
	case lexer.Number, lexer.Str, lexer.Boolean, lexer.None, lexer.Symbol,
		lexer.Appl, lexer.LeftParen, lexer.IndentOpen,
		lexer.KwLet, lexer.KwIf, lexer.KwDo, lexer.KwLoop, lexer.KwTry, lexer.KwThrow:
		return true
	}
	return false
}

func (p *parser) parseExpression() (ast.Expression, *Error) {
	t := p.peek()
	switch t.Kind {
	case lexer.Number, lexer.Str, lexer.Boolean, lexer.None:
		p.advance()
		return literalFromToken(t), nil
	case lexer.Symbol:
		return p.parseApplication()
	case lexer.LeftParen:
		return p.parseParenGroup()
	case lexer.IndentOpen:
		return p.parseIndentGroup()
	case lexer.KwLet:
		return p.parseLet()
	case lexer.KwIf:
		return p.parseConditional()
	case lexer.KwDo:
		return p.parseBlock(ast.BlockDo)
	case lexer.KwLoop:
		return p.parseBlock(ast.BlockLoop)
	case lexer.KwTry:
		return p.parseTry()
	case lexer.KwThrow:
		return p.parseThrow()
	case lexer.KwDef:
		return p.parseDefinition()
	case lexer.KwCatch, lexer.KwFinally:
		return nil, &Error{Pos: t.Pos, Msg: fmt.Sprintf("'%s' without a preceding try", t.Lexeme)}
	default:
		return nil, p.expected("an expression", t)
	}
}

func literalFromToken(t lexer.Token) ast.Expression {
	switch t.Kind {
	case lexer.Number:
		return ast.NewNumberLiteral(t.Num)
	case lexer.Str:
		return ast.NewStringLiteral(t.Text)
	case lexer.Boolean:
		return ast.NewBooleanLiteral(t.Bool)
	default:
		return ast.NewNoneLiteral()
	}
}

// parseApplication parses a symbol in head position and gathers its
// operands. A bare symbol with no operands stays a SymbolRef. Operator
// symbols met in operand position open a nested application in place,
// which is how "+ 1 * 2 3" nests without '$'.
func (p *parser) parseApplication() (ast.Expression, *Error) {
	head := p.advance()
	var operands []ast.Expression
gather:
	for {
		t := p.peek()
		switch {
		case t.Kind == lexer.Appl:
			p.advance()
			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			operands = append(operands, e)
		case t.Kind == lexer.Symbol && t.Op:
			e, err := p.parseApplication()
			if err != nil {
				return nil, err
			}
			operands = append(operands, e)
		case t.Kind == lexer.Symbol:
			p.advance()
			operands = append(operands, ast.NewSymbolRef(t.Lexeme))
		case t.Kind == lexer.Number || t.Kind == lexer.Str || t.Kind == lexer.Boolean || t.Kind == lexer.None:
			p.advance()
			operands = append(operands, literalFromToken(t))
		case t.Kind == lexer.LeftParen:
			e, err := p.parseParenGroup()
			if err != nil {
				return nil, err
			}
			operands = append(operands, e)
		case t.Kind == lexer.IndentOpen:
			e, err := p.parseIndentGroup()
			if err != nil {
				return nil, err
			}
			operands = append(operands, e)
		case t.Kind == lexer.KwLet || t.Kind == lexer.KwIf || t.Kind == lexer.KwDo ||
			t.Kind == lexer.KwLoop || t.Kind == lexer.KwTry || t.Kind == lexer.KwThrow:
			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			operands = append(operands, e)
		default:
			break gather
		}
	}
	if head.Lexeme == "not" && len(operands) != 1 {
		return nil, &Error{
			Pos: head.Pos,
			Msg: fmt.Sprintf("'not' takes exactly one operand, found %d", len(operands)),
		}
	}
	if len(operands) == 0 {
		return ast.NewSymbolRef(head.Lexeme), nil
	}
	return ast.NewCall(ast.NewSymbolRef(head.Lexeme), operands), nil
}

// parseParenGroup brackets exactly one expression. Parentheses are pure
// grouping and leave no trace in the tree.
func (p *parser) parseParenGroup() (ast.Expression, *Error) {
	p.advance()
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.RightParen) {
		return nil, p.expected("')'", p.peek())
	}
	p.advance()
	return e, nil
}

// parseIndentGroup handles an indent block in expression position: the
// block holds exactly one expression, like a parenthesized group.
func (p *parser) parseIndentGroup() (ast.Expression, *Error) {
	p.advance()
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.IndentClose) {
		return nil, p.expected("a dedent", p.peek())
	}
	p.advance()
	return e, nil
}

func (p *parser) parseLet() (ast.Expression, *Error) {
	p.advance()
	if !p.at(lexer.Symbol) {
		return nil, p.expected("a name after 'let'", p.peek())
	}
	name := p.advance()
	if !p.at(lexer.Arrow) {
		return nil, p.expected("'->'", p.peek())
	}
	p.advance()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.NewLet(name.Lexeme, value), nil
}

func (p *parser) parseConditional() (ast.Expression, *Error) {
	ifTok := p.advance()
	clauses, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	switch len(clauses) {
	case 2:
		return ast.NewConditional(clauses[0], clauses[1], nil), nil
	case 3:
		return ast.NewConditional(clauses[0], clauses[1], clauses[2]), nil
	default:
		// Too few clauses at end of input may just be an unfinished
		// form; interactive hosts keep reading.
		return nil, &Error{
			Pos:        ifTok.Pos,
			Msg:        fmt.Sprintf("if takes a test, a consequent and an optional alternative, found %d expressions", len(clauses)),
			Incomplete: len(clauses) < 2 && p.at(lexer.EndOfInput),
		}
	}
}

func (p *parser) parseBlock(kind ast.BlockKind) (ast.Expression, *Error) {
	p.advance()
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return ast.NewBlock(kind, body), nil
}

func (p *parser) parseThrow() (ast.Expression, *Error) {
	p.advance()
	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return ast.NewThrow(body), nil
}

func (p *parser) parseTry() (ast.Expression, *Error) {
	p.advance()
	tryBody, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	tryBlock := ast.NewBlock(ast.BlockTry, tryBody)
	var catchBlock, finallyBlock *ast.Block
	if p.at(lexer.KwCatch) {
		p.advance()
		body, err := p.parseBody()
		if err != nil {
			return nil, err
		}
		catchBlock = ast.NewBlock(ast.BlockCatch, body)
	}
	if p.at(lexer.KwFinally) {
		p.advance()
		body, err := p.parseBody()
		if err != nil {
			return nil, err
		}
		finallyBlock = ast.NewBlock(ast.BlockFinally, body)
	}
	return ast.NewTryExpression(tryBlock, catchBlock, finallyBlock), nil
}

// parseBody gathers the expression sequence of a keyword construct.
// Unlike operand groups, bodies hold any number of expressions. The
// sequence runs to the IndentClose matching the first block it entered,
// or to a delimiter owned by an enclosing construct: an unmatched
// dedent, ')', catch, finally, or end of input. Dedents inside the body
// are structural only; consecutive expressions at one width belong to
// the same body. '$' plays its usual role and turns the rest of the
// line into one expression.
func (p *parser) parseBody() ([]ast.Expression, *Error) {
	var body []ast.Expression
	depth := 0
	for {
		t := p.peek()
		switch t.Kind {
		case lexer.IndentOpen:
			p.advance()
			depth++
		case lexer.IndentClose:
			if depth == 0 {
				return body, nil
			}
			p.advance()
			depth--
			if depth == 0 {
				return body, nil
			}
		case lexer.EndOfInput, lexer.RightParen, lexer.KwCatch, lexer.KwFinally:
			return body, nil
		case lexer.Appl:
			p.advance()
			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			body = append(body, e)
		default:
			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			body = append(body, e)
		}
	}
}

// parseDefinition parses a def header and optional body. The parameter
// list may sit on the header line or inside an indent block opened right
// after the return type; either way every parameter is "name : type".
// A missing body after '->' declares the name forward.
func (p *parser) parseDefinition() (ast.Expression, *Error) {
	p.advance()
	if !p.at(lexer.Symbol) {
		return nil, p.expected("a name after 'def'", p.peek())
	}
	name := p.advance()
	typeAnnotation := ""
	if p.at(lexer.TypeDelim) {
		p.advance()
		if !p.at(lexer.TypeName) {
			return nil, p.expected("a type name (num, str, bool or _)", p.peek())
		}
		typeAnnotation = p.advance().Lexeme
	}
	openedBlock := false
	if p.at(lexer.IndentOpen) {
		p.advance()
		openedBlock = true
	}
	var params []ast.Parameter
	for p.at(lexer.Symbol) && p.peek2().Kind == lexer.TypeDelim {
		pname := p.advance()
		p.advance()
		if !p.at(lexer.TypeName) {
			return nil, p.expected("a type name (num, str, bool or _)", p.peek())
		}
		ptype := p.advance()
		params = append(params, ast.Parameter{Name: pname.Lexeme, TypeAnnotation: ptype.Lexeme})
	}
	if !p.at(lexer.Arrow) {
		return nil, p.expected("'->'", p.peek())
	}
	p.advance()
	var body ast.Expression
	if canStartOperand(p.peek()) {
		var err *Error
		body, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if openedBlock {
		if !p.at(lexer.IndentClose) {
			return nil, p.expected("a dedent", p.peek())
		}
		p.advance()
	}
	return ast.NewDefinition(name.Lexeme, typeAnnotation, params, body), nil
}

// synchronize skips ahead to a plausible recovery point: the dedent
// closing the current region, the next def at this depth, or end of
// input.
func (p *parser) synchronize() {
	depth := 0
	for !p.at(lexer.EndOfInput) {
		switch p.peek().Kind {
		case lexer.IndentOpen:
			depth++
		case lexer.IndentClose:
			if depth == 0 {
				p.advance()
				return
			}
			depth--
		case lexer.KwDef:
			if depth == 0 {
				return
			}
		}
		p.advance()
	}
}
