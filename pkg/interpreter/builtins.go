package interpreter

import (
	"fmt"

	"linus/interpreter-go/pkg/runtime"
)

// installBuiltins binds the operator set into env. and/or carry only a
// short-circuit marker; the evaluator feeds their operands itself.
func installBuiltins(env *runtime.Environment) {
	arithmetic := map[string]func(acc, operand float64) float64{
		"+": func(acc, operand float64) float64 { return acc + operand },
		"-": func(acc, operand float64) float64 { return acc - operand },
		"*": func(acc, operand float64) float64 { return acc * operand },
		"/": func(acc, operand float64) float64 { return acc / operand },
	}
	for name, fold := range arithmetic {
		env.Define(name, runtime.BuiltinValue{Name: name, Arity: runtime.ArityVariadic, Impl: arithmeticImpl(name, fold)})
	}
	comparisons := map[string]func(a, b float64) bool{
		">":  func(a, b float64) bool { return a > b },
		"<":  func(a, b float64) bool { return a < b },
		">=": func(a, b float64) bool { return a >= b },
		"<=": func(a, b float64) bool { return a <= b },
	}
	for name, cmp := range comparisons {
		env.Define(name, runtime.BuiltinValue{Name: name, Arity: 2, Impl: comparisonImpl(name, cmp)})
	}
	env.Define("=", runtime.BuiltinValue{Name: "=", Arity: 2, Impl: equalityImpl})
	env.Define("not", runtime.BuiltinValue{Name: "not", Arity: 1, Impl: notImpl})
	env.Define("and", runtime.BuiltinValue{Name: "and", Arity: runtime.ArityVariadic, ShortCircuit: true})
	env.Define("or", runtime.BuiltinValue{Name: "or", Arity: runtime.ArityVariadic, ShortCircuit: true})
}

// arithmeticImpl folds left to right over two or more numbers. Division
// keeps float semantics, so a zero divisor yields an infinity rather
// than an error.
func arithmeticImpl(name string, fold func(acc, operand float64) float64) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		if len(args) < 2 {
			return nil, &EvalError{Kind: ArityMismatch, Msg: fmt.Sprintf("'%s' takes at least 2 operands, found %d", name, len(args))}
		}
		nums, err := numberArgs(name, args)
		if err != nil {
			return nil, err
		}
		acc := nums[0]
		for _, operand := range nums[1:] {
			acc = fold(acc, operand)
		}
		return runtime.NumberValue{Value: acc}, nil
	}
}

func comparisonImpl(name string, cmp func(a, b float64) bool) runtime.NativeFunc {
	return func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		nums, err := numberArgs(name, args)
		if err != nil {
			return nil, err
		}
		return runtime.BooleanValue{Value: cmp(nums[0], nums[1])}, nil
	}
}

func numberArgs(name string, args []runtime.Value) ([]float64, error) {
	nums := make([]float64, len(args))
	for i, arg := range args {
		n, ok := arg.(runtime.NumberValue)
		if !ok {
			return nil, &EvalError{Kind: TypeMismatch, Msg: fmt.Sprintf("'%s' expects num operands, found %s", name, arg.Kind())}
		}
		nums[i] = n.Value
	}
	return nums, nil
}

// equalityImpl compares two scalars of one kind. Functions and builtins
// have no equality.
func equalityImpl(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	a, b := args[0], args[1]
	if a.Kind() != b.Kind() {
		return nil, &EvalError{Kind: TypeMismatch, Msg: fmt.Sprintf("'=' expects operands of one kind, found %s and %s", a.Kind(), b.Kind())}
	}
	switch av := a.(type) {
	case runtime.NumberValue:
		return runtime.BooleanValue{Value: av.Value == b.(runtime.NumberValue).Value}, nil
	case runtime.StrValue:
		return runtime.BooleanValue{Value: av.Value == b.(runtime.StrValue).Value}, nil
	case runtime.BooleanValue:
		return runtime.BooleanValue{Value: av.Value == b.(runtime.BooleanValue).Value}, nil
	case runtime.NoneValue:
		return runtime.BooleanValue{Value: true}, nil
	default:
		return nil, &EvalError{Kind: TypeMismatch, Msg: fmt.Sprintf("'=' cannot compare %s values", a.Kind())}
	}
}

func notImpl(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	flag, ok := args[0].(runtime.BooleanValue)
	if !ok {
		return nil, &EvalError{Kind: TypeMismatch, Msg: fmt.Sprintf("'not' expects a bool operand, found %s", args[0].Kind())}
	}
	return runtime.BooleanValue{Value: !flag.Value}, nil
}
