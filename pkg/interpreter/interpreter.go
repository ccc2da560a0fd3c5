// Package interpreter walks expression trees against a mutable chain of
// environments. Thrown payloads travel as a typed error value threaded
// up the walk, never as a panic, so finally blocks wrap every exit path
// deterministically.
package interpreter

import (
	"fmt"

	"github.com/sahilm/fuzzy"

	"linus/interpreter-go/pkg/ast"
	"linus/interpreter-go/pkg/runtime"
)

// throwSignal carries a thrown payload up the walk until a try/catch
// absorbs it.
type throwSignal struct {
	payload runtime.Value
}

func (t throwSignal) Error() string {
	return fmt.Sprintf("throw: %s", t.payload)
}

// CatchName is the reserved binding that holds the thrown payload
// inside a catch block.
const CatchName = "err"

// DefaultMaxDepth bounds evaluation nesting so runaway recursion in the
// evaluated program cannot blow the host stack. Steps are unbounded
// unless the host sets a budget.
const DefaultMaxDepth = 10000

// Interpreter drives evaluation against one global environment.
type Interpreter struct {
	global   *runtime.Environment
	maxSteps int
	maxDepth int
	steps    int
}

type Option func(*Interpreter)

// WithMaxSteps caps expression evaluations per top-level form; zero
// means unbounded.
func WithMaxSteps(n int) Option {
	return func(in *Interpreter) { in.maxSteps = n }
}

// WithMaxDepth caps evaluation nesting; zero means unbounded.
func WithMaxDepth(n int) Option {
	return func(in *Interpreter) { in.maxDepth = n }
}

// New returns an interpreter whose global environment is pre-populated
// with the builtin operators.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		global:   runtime.NewEnvironment(nil),
		maxDepth: DefaultMaxDepth,
	}
	installBuiltins(in.global)
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// GlobalEnvironment returns the interpreter's root environment.
func (in *Interpreter) GlobalEnvironment() *runtime.Environment {
	return in.global
}

// RegisterNative binds a host function as a builtin in the global
// environment. A zero-arity native is invoked by bare reference, like
// the language's own nullary callables.
func (in *Interpreter) RegisterNative(name string, arity int, impl runtime.NativeFunc) {
	in.global.Define(name, runtime.BuiltinValue{Name: name, Arity: arity, Impl: impl})
}

// GlobalKeys lists every name visible at top level, sorted.
func (in *Interpreter) GlobalKeys() []string {
	return in.global.Keys()
}

// EvaluateForm evaluates one top-level form against the global
// environment. The step budget, when set, applies afresh to each form.
// A throw that reaches the top surfaces as an UncaughtThrow error.
func (in *Interpreter) EvaluateForm(form ast.Expression) (runtime.Value, error) {
	in.steps = 0
	val, err := in.evaluate(form, in.global, 0)
	if err != nil {
		if ts, ok := err.(throwSignal); ok {
			return nil, &EvalError{Kind: UncaughtThrow, Payload: ts.payload}
		}
		return nil, err
	}
	return val, nil
}

// EvaluateProgram evaluates top-level forms in order against the shared
// global environment. A failing form does not stop the ones after it,
// with one exception: an uncaught throw terminates the whole program.
// Returns the last successfully produced value and every error in
// source order.
func (in *Interpreter) EvaluateProgram(forms []ast.Expression) (runtime.Value, []error) {
	var last runtime.Value = runtime.NoneValue{}
	var errs []error
	for _, form := range forms {
		val, err := in.EvaluateForm(form)
		if err != nil {
			errs = append(errs, err)
			if ee, ok := err.(*EvalError); ok && ee.Kind == UncaughtThrow {
				break
			}
			continue
		}
		last = val
	}
	return last, errs
}

func (in *Interpreter) chargeStep() *EvalError {
	if in.maxSteps <= 0 {
		return nil
	}
	in.steps++
	if in.steps > in.maxSteps {
		return &EvalError{Kind: BudgetExhausted, Msg: fmt.Sprintf("evaluation exceeded %d steps", in.maxSteps)}
	}
	return nil
}

func (in *Interpreter) evaluate(node ast.Expression, env *runtime.Environment, depth int) (runtime.Value, error) {
	if err := in.chargeStep(); err != nil {
		return nil, err
	}
	if in.maxDepth > 0 && depth > in.maxDepth {
		return nil, &EvalError{Kind: BudgetExhausted, Msg: fmt.Sprintf("evaluation nested deeper than %d", in.maxDepth)}
	}
	switch n := node.(type) {
	case *ast.NumberLiteral:
		return runtime.NumberValue{Value: n.Value}, nil
	case *ast.StringLiteral:
		return runtime.StrValue{Value: n.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.BooleanValue{Value: n.Value}, nil
	case *ast.NoneLiteral:
		return runtime.NoneValue{}, nil
	case *ast.SymbolRef:
		return in.resolveSymbol(n.Name, env, depth)
	case *ast.Call:
		return in.evaluateCall(n, env, depth)
	case *ast.Conditional:
		return in.evaluateConditional(n, env, depth)
	case *ast.Let:
		val, err := in.evaluate(n.Value, env, depth+1)
		if err != nil {
			return nil, err
		}
		env.Define(n.Name, val)
		return val, nil
	case *ast.Block:
		return in.evaluateBlock(n, env, depth)
	case *ast.TryExpression:
		return in.evaluateTry(n, env, depth)
	case *ast.Throw:
		payload, err := in.evaluateSequence(n.Body, runtime.NewEnvironment(env), depth)
		if err != nil {
			return nil, err
		}
		return nil, throwSignal{payload: payload}
	case *ast.Definition:
		return in.evaluateDefinition(n, env)
	default:
		return nil, &EvalError{Kind: TypeMismatch, Msg: fmt.Sprintf("cannot evaluate node of type %s", node.NodeType())}
	}
}

// resolveSymbol looks a name up and applies the reference rules: a
// placeholder fails, and a nullary callable is invoked on the spot,
// since the grammar has no other way to call one.
func (in *Interpreter) resolveSymbol(name string, env *runtime.Environment, depth int) (runtime.Value, error) {
	val, ok := env.Get(name)
	if !ok {
		return nil, in.undefined(name, env)
	}
	switch v := val.(type) {
	case runtime.PlaceholderValue:
		return nil, &EvalError{Kind: UnresolvedForwardDeclaration, Symbol: name}
	case runtime.BuiltinValue:
		if v.Arity == 0 && v.Impl != nil {
			return v.Impl(&runtime.NativeCallContext{Env: env}, nil)
		}
		return val, nil
	case *runtime.FunctionValue:
		if len(v.Decl.Params) == 0 && v.Decl.Body != nil {
			return in.invokeFunction(v, nil, depth)
		}
		return val, nil
	default:
		return val, nil
	}
}

func (in *Interpreter) undefined(name string, env *runtime.Environment) *EvalError {
	matches := fuzzy.Find(name, env.Keys())
	limit := 3
	if len(matches) < limit {
		limit = len(matches)
	}
	suggestions := make([]string, 0, limit)
	for _, m := range matches[:limit] {
		suggestions = append(suggestions, m.Str)
	}
	return &EvalError{Kind: UndefinedSymbol, Symbol: name, Suggestions: suggestions}
}

func (in *Interpreter) evaluateCall(n *ast.Call, env *runtime.Environment, depth int) (runtime.Value, error) {
	// Operands are absent when the grammar degenerated a group to a
	// single value; the operator is that value.
	if len(n.Operands) == 0 {
		return in.evaluate(n.Operator, env, depth+1)
	}
	callee, err := in.evaluate(n.Operator, env, depth+1)
	if err != nil {
		return nil, err
	}
	if b, ok := callee.(runtime.BuiltinValue); ok && b.ShortCircuit {
		return in.evaluateShortCircuit(b, n.Operands, env, depth)
	}
	args := make([]runtime.Value, 0, len(n.Operands))
	for _, operand := range n.Operands {
		val, err := in.evaluate(operand, env, depth+1)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return in.apply(callee, args, env, depth)
}

// evaluateShortCircuit feeds and/or their operands one at a time,
// stopping at the first decisive value. Later operands are never
// evaluated.
func (in *Interpreter) evaluateShortCircuit(b runtime.BuiltinValue, operands []ast.Expression, env *runtime.Environment, depth int) (runtime.Value, error) {
	if len(operands) < 2 {
		return nil, &EvalError{Kind: ArityMismatch, Msg: fmt.Sprintf("'%s' takes at least 2 operands, found %d", b.Name, len(operands))}
	}
	for _, operand := range operands {
		val, err := in.evaluate(operand, env, depth+1)
		if err != nil {
			return nil, err
		}
		flag, ok := val.(runtime.BooleanValue)
		if !ok {
			return nil, &EvalError{Kind: TypeMismatch, Msg: fmt.Sprintf("'%s' expects bool operands, found %s", b.Name, val.Kind())}
		}
		if b.Name == "or" && flag.Value {
			return runtime.BooleanValue{Value: true}, nil
		}
		if b.Name == "and" && !flag.Value {
			return runtime.BooleanValue{Value: false}, nil
		}
	}
	return runtime.BooleanValue{Value: b.Name == "and"}, nil
}

func (in *Interpreter) apply(callee runtime.Value, args []runtime.Value, env *runtime.Environment, depth int) (runtime.Value, error) {
	switch c := callee.(type) {
	case runtime.BuiltinValue:
		if c.Arity >= 0 && len(args) != c.Arity {
			return nil, &EvalError{Kind: ArityMismatch, Msg: fmt.Sprintf("'%s' takes exactly %d %s, found %d", c.Name, c.Arity, operandNoun(c.Arity), len(args))}
		}
		return c.Impl(&runtime.NativeCallContext{Env: env}, args)
	case *runtime.FunctionValue:
		if len(args) != len(c.Decl.Params) {
			return nil, &EvalError{Kind: ArityMismatch, Msg: fmt.Sprintf("'%s' takes %d %s, found %d", c.Decl.Name, len(c.Decl.Params), operandNoun(len(c.Decl.Params)), len(args))}
		}
		return in.invokeFunction(c, args, depth)
	case runtime.PlaceholderValue:
		return nil, &EvalError{Kind: UnresolvedForwardDeclaration, Symbol: c.Name}
	default:
		return nil, &EvalError{Kind: TypeMismatch, Msg: fmt.Sprintf("%s is not callable", callee.Kind())}
	}
}

func operandNoun(n int) string {
	if n == 1 {
		return "operand"
	}
	return "operands"
}

// invokeFunction binds parameters in a child of the closure environment
// and evaluates the body there. Annotations are carried but not
// enforced.
func (in *Interpreter) invokeFunction(fn *runtime.FunctionValue, args []runtime.Value, depth int) (runtime.Value, error) {
	if fn.Decl.Body == nil {
		return nil, &EvalError{Kind: UnresolvedForwardDeclaration, Symbol: fn.Decl.Name}
	}
	callEnv := runtime.NewEnvironment(fn.Closure)
	for i, param := range fn.Decl.Params {
		callEnv.Define(param.Name, args[i])
	}
	return in.evaluate(fn.Decl.Body, callEnv, depth+1)
}

func (in *Interpreter) evaluateConditional(n *ast.Conditional, env *runtime.Environment, depth int) (runtime.Value, error) {
	test, err := in.evaluate(n.Test, env, depth+1)
	if err != nil {
		return nil, err
	}
	flag, ok := test.(runtime.BooleanValue)
	if !ok {
		return nil, &EvalError{Kind: TypeMismatch, Msg: fmt.Sprintf("if test must be bool, found %s", test.Kind())}
	}
	if flag.Value {
		return in.evaluate(n.Consequent, env, depth+1)
	}
	if n.Alternative != nil {
		return in.evaluate(n.Alternative, env, depth+1)
	}
	return runtime.NoneValue{}, nil
}

func (in *Interpreter) evaluateBlock(n *ast.Block, env *runtime.Environment, depth int) (runtime.Value, error) {
	if n.Kind == ast.BlockLoop {
		// Each iteration gets a fresh scope. The only exits are a
		// throw unwinding past the loop or an evaluation error, so an
		// idle body spins until the step budget ends it.
		for {
			if err := in.chargeStep(); err != nil {
				return nil, err
			}
			if _, err := in.evaluateSequence(n.Body, runtime.NewEnvironment(env), depth); err != nil {
				return nil, err
			}
		}
	}
	return in.evaluateSequence(n.Body, runtime.NewEnvironment(env), depth)
}

// evaluateSequence runs body expressions in order in env and yields the
// last value, or None for an empty body.
func (in *Interpreter) evaluateSequence(body []ast.Expression, env *runtime.Environment, depth int) (runtime.Value, error) {
	var last runtime.Value = runtime.NoneValue{}
	for _, e := range body {
		val, err := in.evaluate(e, env, depth+1)
		if err != nil {
			return nil, err
		}
		last = val
	}
	return last, nil
}

// evaluateTry wraps finally around every exit path: normal completion,
// a caught throw, a rethrow from catch, and plain evaluation errors. A
// failure inside finally supersedes whatever preceded it. Only thrown
// payloads are catchable; host-level errors pass through the catch.
func (in *Interpreter) evaluateTry(n *ast.TryExpression, env *runtime.Environment, depth int) (runtime.Value, error) {
	result, err := in.evaluateSequence(n.Try.Body, runtime.NewEnvironment(env), depth)
	if err != nil && n.Catch != nil {
		if ts, ok := err.(throwSignal); ok {
			catchEnv := runtime.NewEnvironment(env)
			catchEnv.Define(CatchName, ts.payload)
			result, err = in.evaluateSequence(n.Catch.Body, catchEnv, depth)
		}
	}
	if n.Finally != nil {
		if _, ferr := in.evaluateSequence(n.Finally.Body, runtime.NewEnvironment(env), depth); ferr != nil {
			return nil, ferr
		}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// evaluateDefinition binds the name in the current scope. With a body
// the binding is a function closing over env; without one it is a
// placeholder to be redefined later. Either way the form yields None.
func (in *Interpreter) evaluateDefinition(n *ast.Definition, env *runtime.Environment) (runtime.Value, error) {
	if n.Body == nil {
		env.Define(n.Name, runtime.PlaceholderValue{Name: n.Name})
	} else {
		env.Define(n.Name, &runtime.FunctionValue{Decl: n, Closure: env})
	}
	return runtime.NoneValue{}, nil
}
