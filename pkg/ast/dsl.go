package ast

// Compact constructors for building trees in tests and embedding hosts.
// They read close to the surface syntax:
//
//	Apply("+", Num(1), Apply("*", Num(2), Num(3)))
//
// is the tree for `+ 1 (* 2 3)`.

func Num(value float64) *NumberLiteral { return NewNumberLiteral(value) }

func Str(value string) *StringLiteral { return NewStringLiteral(value) }

func Bool(value bool) *BooleanLiteral { return NewBooleanLiteral(value) }

func None() *NoneLiteral { return NewNoneLiteral() }

func Sym(name string) *SymbolRef { return NewSymbolRef(name) }

// Apply builds a symbol-led call.
func Apply(operator string, operands ...Expression) *Call {
	return NewCall(Sym(operator), operands)
}

func If(test, consequent Expression) *Conditional {
	return NewConditional(test, consequent, nil)
}

func IfElse(test, consequent, alternative Expression) *Conditional {
	return NewConditional(test, consequent, alternative)
}

func Bind(name string, value Expression) *Let { return NewLet(name, value) }

func Do(body ...Expression) *Block { return NewBlock(BlockDo, body) }

func Loop(body ...Expression) *Block { return NewBlock(BlockLoop, body) }

func Try(body ...Expression) *TryExpression {
	return NewTryExpression(NewBlock(BlockTry, body), nil, nil)
}

// WithCatch attaches a catch clause and returns the receiver for chaining.
func (t *TryExpression) WithCatch(body ...Expression) *TryExpression {
	t.Catch = NewBlock(BlockCatch, body)
	return t
}

// WithFinally attaches a finally clause and returns the receiver for
// chaining.
func (t *TryExpression) WithFinally(body ...Expression) *TryExpression {
	t.Finally = NewBlock(BlockFinally, body)
	return t
}

func Raise(body ...Expression) *Throw { return NewThrow(body) }

func P(name, typeAnnotation string) Parameter {
	return Parameter{Name: name, TypeAnnotation: typeAnnotation}
}

func Def(name, typeAnnotation string, body Expression, params ...Parameter) *Definition {
	return NewDefinition(name, typeAnnotation, params, body)
}

// Fwd builds a forward declaration (a Definition with no body).
func Fwd(name, typeAnnotation string, params ...Parameter) *Definition {
	return NewDefinition(name, typeAnnotation, params, nil)
}
