package ast

type NodeType string

const (
	NodeNumberLiteral  NodeType = "NumberLiteral"
	NodeStringLiteral  NodeType = "StringLiteral"
	NodeBooleanLiteral NodeType = "BooleanLiteral"
	NodeNoneLiteral    NodeType = "NoneLiteral"
	NodeSymbolRef      NodeType = "SymbolRef"
	NodeCall           NodeType = "Call"
	NodeConditional    NodeType = "Conditional"
	NodeLet            NodeType = "Let"
	NodeBlock          NodeType = "Block"
	NodeTryExpression  NodeType = "TryExpression"
	NodeThrow          NodeType = "Throw"
	NodeDefinition     NodeType = "Definition"
)

type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

// Literals

type NumberLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value float64 `json:"value"`
}

func NewNumberLiteral(value float64) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type NoneLiteral struct {
	nodeImpl
	expressionMarker
	literalMarker
}

func NewNoneLiteral() *NoneLiteral {
	return &NoneLiteral{nodeImpl: newNodeImpl(NodeNoneLiteral)}
}

// SymbolRef names a binding to be resolved at evaluation time. Operators
// are plain symbols here; the distinction between operator and user
// spellings is a lexical concern and does not survive into the tree.

type SymbolRef struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewSymbolRef(name string) *SymbolRef {
	return &SymbolRef{nodeImpl: newNodeImpl(NodeSymbolRef), Name: name}
}

// Call applies an operator to zero or more operands. Operand gathering is
// the parser's job; arity and callability checks are the evaluator's.

type Call struct {
	nodeImpl
	expressionMarker

	Operator Expression   `json:"operator"`
	Operands []Expression `json:"operands"`
}

func NewCall(operator Expression, operands []Expression) *Call {
	return &Call{nodeImpl: newNodeImpl(NodeCall), Operator: operator, Operands: operands}
}

type Conditional struct {
	nodeImpl
	expressionMarker

	Test        Expression `json:"test"`
	Consequent  Expression `json:"consequent"`
	Alternative Expression `json:"alternative,omitempty"`
}

func NewConditional(test, consequent, alternative Expression) *Conditional {
	return &Conditional{
		nodeImpl:    newNodeImpl(NodeConditional),
		Test:        test,
		Consequent:  consequent,
		Alternative: alternative,
	}
}

type Let struct {
	nodeImpl
	expressionMarker

	Name  string     `json:"name"`
	Value Expression `json:"value"`
}

func NewLet(name string, value Expression) *Let {
	return &Let{nodeImpl: newNodeImpl(NodeLet), Name: name, Value: value}
}

// BlockKind distinguishes the five body-holding constructs. Do and Loop
// blocks stand alone as expressions; Try, Catch and Finally blocks only
// occur inside a TryExpression.
type BlockKind string

const (
	BlockDo      BlockKind = "do"
	BlockLoop    BlockKind = "loop"
	BlockTry     BlockKind = "try"
	BlockCatch   BlockKind = "catch"
	BlockFinally BlockKind = "finally"
)

type Block struct {
	nodeImpl
	expressionMarker

	Kind BlockKind    `json:"kind"`
	Body []Expression `json:"body"`
}

func NewBlock(kind BlockKind, body []Expression) *Block {
	return &Block{nodeImpl: newNodeImpl(NodeBlock), Kind: kind, Body: body}
}

// TryExpression pairs a try body with its optional catch and finally
// handlers, so the three blocks evaluate as one unit.

type TryExpression struct {
	nodeImpl
	expressionMarker

	Try     *Block `json:"try"`
	Catch   *Block `json:"catch,omitempty"`
	Finally *Block `json:"finally,omitempty"`
}

func NewTryExpression(try, catch, finally *Block) *TryExpression {
	return &TryExpression{
		nodeImpl: newNodeImpl(NodeTryExpression),
		Try:      try,
		Catch:    catch,
		Finally:  finally,
	}
}

// Throw evaluates its body in order; the last value becomes the thrown
// payload (None when the body is empty).

type Throw struct {
	nodeImpl
	expressionMarker

	Body []Expression `json:"body"`
}

func NewThrow(body []Expression) *Throw {
	return &Throw{nodeImpl: newNodeImpl(NodeThrow), Body: body}
}

// Parameter is one formal parameter of a Definition. Annotations are
// carried for tooling and never enforced.

type Parameter struct {
	Name           string `json:"name"`
	TypeAnnotation string `json:"typeAnnotation"`
}

// Definition binds a name. With a Body it defines a function (or, with no
// parameters, a named value); with a nil Body it forward-declares the name.

type Definition struct {
	nodeImpl
	expressionMarker

	Name           string      `json:"name"`
	TypeAnnotation string      `json:"typeAnnotation,omitempty"`
	Params         []Parameter `json:"params,omitempty"`
	Body           Expression  `json:"body,omitempty"`
}

func NewDefinition(name, typeAnnotation string, params []Parameter, body Expression) *Definition {
	return &Definition{
		nodeImpl:       newNodeImpl(NodeDefinition),
		Name:           name,
		TypeAnnotation: typeAnnotation,
		Params:         params,
		Body:           body,
	}
}
