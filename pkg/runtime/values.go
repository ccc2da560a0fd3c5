// Package runtime holds the value model and the scope chain the evaluator
// runs against. It is pure data: no I/O, no evaluation.
package runtime

import (
	"fmt"
	"strconv"

	"linus/interpreter-go/pkg/ast"
)

// Kind tags the value variants.
type Kind int

const (
	KindNumber Kind = iota
	KindStr
	KindBoolean
	KindNone
	KindFunction
	KindBuiltin
	KindPlaceholder
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "num"
	case KindStr:
		return "str"
	case KindBoolean:
		return "bool"
	case KindNone:
		return "none"
	case KindFunction:
		return "function"
	case KindBuiltin:
		return "builtin"
	case KindPlaceholder:
		return "forward declaration"
	default:
		return "unknown"
	}
}

// Value is anything an expression can evaluate to. String renders a value
// for diagnostics and display.
type Value interface {
	Kind() Kind
	String() string
}

type NumberValue struct {
	Value float64
}

func (NumberValue) Kind() Kind { return KindNumber }
func (v NumberValue) String() string {
	return strconv.FormatFloat(v.Value, 'f', -1, 64)
}

type StrValue struct {
	Value string
}

func (StrValue) Kind() Kind       { return KindStr }
func (v StrValue) String() string { return v.Value }

type BooleanValue struct {
	Value bool
}

func (BooleanValue) Kind() Kind       { return KindBoolean }
func (v BooleanValue) String() string { return strconv.FormatBool(v.Value) }

type NoneValue struct{}

func (NoneValue) Kind() Kind     { return KindNone }
func (NoneValue) String() string { return "none" }

// FunctionValue is a user function: its definition node plus the
// environment it captured when the definition evaluated.
type FunctionValue struct {
	Decl    *ast.Definition
	Closure *Environment
}

func (*FunctionValue) Kind() Kind { return KindFunction }
func (f *FunctionValue) String() string {
	return fmt.Sprintf("<fn %s/%d>", f.Decl.Name, len(f.Decl.Params))
}

// NativeCallContext carries what a native implementation may need at
// invocation time.
type NativeCallContext struct {
	Env *Environment
}

// NativeFunc implements a builtin operator.
type NativeFunc func(ctx *NativeCallContext, args []Value) (Value, error)

// ArityVariadic leaves the operand count to the implementation.
const ArityVariadic = -1

// BuiltinValue is a host-provided operator. Arity >= 0 demands exactly
// that operand count. ShortCircuit marks the logical operators whose
// operands the evaluator feeds one at a time instead of pre-evaluating;
// their Impl is never called.
type BuiltinValue struct {
	Name         string
	Arity        int
	Impl         NativeFunc
	ShortCircuit bool
}

func (BuiltinValue) Kind() Kind       { return KindBuiltin }
func (b BuiltinValue) String() string { return fmt.Sprintf("<builtin %s>", b.Name) }

// PlaceholderValue marks a forward declaration: the name is bound, but
// using it before a redefinition supplies the body is an error.
type PlaceholderValue struct {
	Name string
}

func (PlaceholderValue) Kind() Kind       { return KindPlaceholder }
func (v PlaceholderValue) String() string { return fmt.Sprintf("<forward %s>", v.Name) }
