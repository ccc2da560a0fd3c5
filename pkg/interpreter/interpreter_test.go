package interpreter

import (
	"math"
	"strings"
	"testing"

	"linus/interpreter-go/pkg/ast"
	"linus/interpreter-go/pkg/parser"
	"linus/interpreter-go/pkg/runtime"
)

func run(t *testing.T, in *Interpreter, src string) (runtime.Value, []error) {
	t.Helper()
	forms, diags := parser.ParseSource(src)
	if len(diags) > 0 {
		t.Fatalf("ParseSource(%q) diagnostics: %v", src, diags)
	}
	return in.EvaluateProgram(forms)
}

func evalOk(t *testing.T, src string) runtime.Value {
	t.Helper()
	val, errs := run(t, New(), src)
	if len(errs) > 0 {
		t.Fatalf("evaluate(%q) errors: %v", src, errs)
	}
	return val
}

func wantNumber(t *testing.T, src string, want float64) {
	t.Helper()
	val := evalOk(t, src)
	num, ok := val.(runtime.NumberValue)
	if !ok || num.Value != want {
		t.Fatalf("evaluate(%q) = %v, want %v", src, val, want)
	}
}

func wantBool(t *testing.T, src string, want bool) {
	t.Helper()
	val := evalOk(t, src)
	flag, ok := val.(runtime.BooleanValue)
	if !ok || flag.Value != want {
		t.Fatalf("evaluate(%q) = %v, want %v", src, val, want)
	}
}

func wantEvalError(t *testing.T, src string, kind ErrorKind) *EvalError {
	t.Helper()
	_, errs := run(t, New(), src)
	if len(errs) == 0 {
		t.Fatalf("evaluate(%q) succeeded, want error", src)
	}
	ee, ok := errs[0].(*EvalError)
	if !ok || ee.Kind != kind {
		t.Fatalf("evaluate(%q) error = %v, want kind %d", src, errs[0], kind)
	}
	return ee
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"+ 1 2", 3},
		{"+ 1 * 2 - 4 3", 3},
		{"+ 1 $ * 2 $ - 4 3", 3},
		{"+ 1\n    * 2\n        - 4 3", 3},
		{"- 10 1 2", 7},
		{"* 2 3 4", 24},
		{"/ 8 2 2", 2},
		{"+ 0.5 0.25", 0.75},
	}
	for _, tt := range tests {
		wantNumber(t, tt.src, tt.want)
	}
}

func TestDivisionKeepsFloatSemantics(t *testing.T) {
	val := evalOk(t, "/ 1 0")
	num, ok := val.(runtime.NumberValue)
	if !ok || !math.IsInf(num.Value, 1) {
		t.Fatalf("/ 1 0 = %v, want +Inf", val)
	}
}

func TestArithmeticErrors(t *testing.T) {
	wantEvalError(t, "+ 1", ArityMismatch)
	wantEvalError(t, `+ 1 "two"`, TypeMismatch)
	wantEvalError(t, "> 1 2 3", ArityMismatch)
}

func TestComparisonsAndEquality(t *testing.T) {
	wantBool(t, "> 2 1", true)
	wantBool(t, "< 2 1", false)
	wantBool(t, ">= 2 2", true)
	wantBool(t, "<= 3 2", false)
	wantBool(t, "= 1 1", true)
	wantBool(t, "= 1 2", false)
	wantBool(t, `= "a" "a"`, true)
	wantBool(t, `= "a" "b"`, false)
	wantBool(t, "= true true", true)
	wantBool(t, "= none none", true)
	wantEvalError(t, `= 1 "1"`, TypeMismatch)
}

func TestLogicalOperators(t *testing.T) {
	wantBool(t, "and true true", true)
	wantBool(t, "and true true false", false)
	wantBool(t, "or false false true", true)
	wantBool(t, "or false false", false)
	wantBool(t, "not false", true)
	wantBool(t, "and (not true) false", false)
	wantEvalError(t, "and true 1", TypeMismatch)
	wantEvalError(t, "not 1", TypeMismatch)
}

// A decisive operand stops evaluation, so a recording native after it
// must never fire.
func TestShortCircuitSkipsLaterOperands(t *testing.T) {
	in := New()
	calls := 0
	in.RegisterNative("probe", 0, func(_ *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
		calls++
		return runtime.BooleanValue{Value: true}, nil
	})

	val, errs := run(t, in, "and (not true) probe")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if flag, ok := val.(runtime.BooleanValue); !ok || flag.Value {
		t.Fatalf("value = %v, want false", val)
	}
	if calls != 0 {
		t.Fatalf("probe fired %d times, want 0", calls)
	}

	if _, errs := run(t, in, "or true probe"); len(errs) > 0 || calls != 0 {
		t.Fatalf("or true probe: errs=%v calls=%d", errs, calls)
	}
	if _, errs := run(t, in, "and true probe"); len(errs) > 0 || calls != 1 {
		t.Fatalf("and true probe: errs=%v calls=%d", errs, calls)
	}
}

func TestConditional(t *testing.T) {
	wantNumber(t, "if true 1 2", 1)
	wantNumber(t, "if false 1 2", 2)
	wantNumber(t, "if (> 3 2) 1 0", 1)
	if val := evalOk(t, "if false 1"); val.Kind() != runtime.KindNone {
		t.Fatalf("if false with no alternative = %v, want none", val)
	}
	wantEvalError(t, "if 1 2 3", TypeMismatch)
}

func TestLetYieldsBoundValue(t *testing.T) {
	wantNumber(t, "let x -> 5", 5)
	wantNumber(t, "+ 1 let y -> 2", 3)
}

func TestDoBlockScoping(t *testing.T) {
	wantNumber(t, "do\n    let x -> 1\n    + x 1", 2)

	// x must not survive the block.
	_, errs := run(t, New(), "do\n    let x -> 1\n    + x 1\nx")
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want 1", errs)
	}
	ee, ok := errs[0].(*EvalError)
	if !ok || ee.Kind != UndefinedSymbol || ee.Symbol != "x" {
		t.Fatalf("error = %v, want undefined 'x'", errs[0])
	}

	if val := evalOk(t, "do"); val.Kind() != runtime.KindNone {
		t.Fatalf("empty do = %v, want none", val)
	}
}

func TestClosureOutlivesDefiningBlock(t *testing.T) {
	src := "def make: _ x: num ->\n" +
		"    do\n" +
		"        def add: num y: num -> (+ x y)\n" +
		"        add\n" +
		"let add5 -> (make 5)\n" +
		"add5 2"
	wantNumber(t, src, 7)
}

func TestRecursion(t *testing.T) {
	src := "def fact: num n: num -> (if (<= n 1) 1 (* n (fact (- n 1))))\n" +
		"fact 5"
	wantNumber(t, src, 120)
}

func TestFunctionsAreValues(t *testing.T) {
	src := "def twice: num f: _ v: num -> (f (f v))\n" +
		"def inc: num n: num -> (+ n 1)\n" +
		"twice inc 5"
	wantNumber(t, src, 7)
}

func TestFunctionArity(t *testing.T) {
	src := "def sum: num x: num y: num -> (+ x y)\n" +
		"sum 1 2 3"
	in := New()
	_, errs := run(t, in, src)
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want 1", errs)
	}
	ee, ok := errs[0].(*EvalError)
	if !ok || ee.Kind != ArityMismatch {
		t.Fatalf("error = %v, want arity mismatch", errs[0])
	}
	if !strings.Contains(ee.Error(), "'sum' takes 2 operands, found 3") {
		t.Fatalf("message = %q", ee.Error())
	}
}

func TestUnevenIndentationGroupsOperands(t *testing.T) {
	// Each indented line is one operand even when the second dedents to
	// a width the first never opened.
	src := "def g: num x: num -> (* x 10)\n" +
		"def add2: num a: num b: num -> (+ a b)\n" +
		"add2\n" +
		"        1\n" +
		"  g 2"
	wantNumber(t, src, 21)
}

func TestNullaryDefinitionInvokesOnReference(t *testing.T) {
	wantNumber(t, "def seven: num -> 7\n+ seven 1", 8)
}

func TestValuesAreNotCallable(t *testing.T) {
	wantEvalError(t, "let x -> 1\nx 2", TypeMismatch)
}

func TestForwardDeclaration(t *testing.T) {
	// Use before redefinition fails loudly instead of yielding none. The
	// trees are built directly: in source text anything that could start
	// an operand after the arrow would become the def's body.
	in := New()
	if _, err := in.EvaluateForm(ast.Fwd("f", "num")); err != nil {
		t.Fatalf("forward declaration failed: %v", err)
	}
	_, err := in.EvaluateForm(ast.Sym("f"))
	ee, ok := err.(*EvalError)
	if !ok || ee.Kind != UnresolvedForwardDeclaration || ee.Symbol != "f" {
		t.Fatalf("bare reference: error = %v, want unresolved 'f'", err)
	}
	_, err = in.EvaluateForm(ast.Apply("f", ast.Num(1)))
	if ee, ok := err.(*EvalError); !ok || ee.Kind != UnresolvedForwardDeclaration {
		t.Fatalf("call: error = %v, want unresolved 'f'", err)
	}

	// Redefinition resolves it.
	wantNumber(t, "def f: num ->\ndef f: num -> 42\nf", 42)
}

func TestDefinitionYieldsNone(t *testing.T) {
	if val := evalOk(t, "def f: num -> 1"); val.Kind() != runtime.KindNone {
		t.Fatalf("def = %v, want none", val)
	}
}

func TestThrowCatchFinallyOrdering(t *testing.T) {
	wantNumber(t, `try (throw "boom") catch (+ 1 1) finally (+ 2 2)`, 2)

	in := New()
	var log []string
	in.RegisterNative("record", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		log = append(log, args[0].String())
		return runtime.NoneValue{}, nil
	})

	src := `try (throw "boom") catch (record "catch") finally (record "finally")`
	if _, errs := run(t, in, src); len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if strings.Join(log, ",") != "catch,finally" {
		t.Fatalf("log = %v, want catch then finally", log)
	}

	// No throw: finally still runs.
	log = nil
	val, errs := run(t, in, `try 5 finally (record "finally")`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if num, ok := val.(runtime.NumberValue); !ok || num.Value != 5 {
		t.Fatalf("value = %v, want 5", val)
	}
	if strings.Join(log, ",") != "finally" {
		t.Fatalf("log = %v, want finally", log)
	}
}

func TestCatchBindsPayload(t *testing.T) {
	val := evalOk(t, "try\n    throw \"boom\"\ncatch\n    err")
	str, ok := val.(runtime.StrValue)
	if !ok || str.Value != "boom" {
		t.Fatalf("caught payload = %v, want boom", val)
	}
}

func TestRethrowFromCatchRunsFinallyFirst(t *testing.T) {
	in := New()
	var log []string
	in.RegisterNative("record", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		log = append(log, args[0].String())
		return runtime.NoneValue{}, nil
	})

	src := `try (throw "a") catch (throw "b") finally (record "finally")`
	_, errs := run(t, in, src)
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want 1", errs)
	}
	ee, ok := errs[0].(*EvalError)
	if !ok || ee.Kind != UncaughtThrow {
		t.Fatalf("error = %v, want uncaught throw", errs[0])
	}
	if str, ok := ee.Payload.(runtime.StrValue); !ok || str.Value != "b" {
		t.Fatalf("payload = %v, want b", ee.Payload)
	}
	if strings.Join(log, ",") != "finally" {
		t.Fatalf("log = %v, want finally", log)
	}
}

func TestHostErrorsAreNotCatchable(t *testing.T) {
	wantEvalError(t, "try (missing 1) catch 0", UndefinedSymbol)
}

func TestThrowPayloadIsLastBodyValue(t *testing.T) {
	ee := wantEvalError(t, "throw\n    let x -> 20\n    + x 1", UncaughtThrow)
	if num, ok := ee.Payload.(runtime.NumberValue); !ok || num.Value != 21 {
		t.Fatalf("payload = %v, want 21", ee.Payload)
	}
}

func TestUncaughtThrowStopsProgram(t *testing.T) {
	val, errs := run(t, New(), "(throw \"boom\")\n+ 1 2")
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want 1", errs)
	}
	ee, ok := errs[0].(*EvalError)
	if !ok || ee.Kind != UncaughtThrow {
		t.Fatalf("error = %v, want uncaught throw", errs[0])
	}
	if val.Kind() != runtime.KindNone {
		t.Fatalf("later form still ran: value = %v", val)
	}
}

// Other evaluation errors are per-form: the rest of the program is
// still attempted.
func TestProgramContinuesPastFormErrors(t *testing.T) {
	val, errs := run(t, New(), "(missing)\n+ 1 2")
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want 1", errs)
	}
	if num, ok := val.(runtime.NumberValue); !ok || num.Value != 3 {
		t.Fatalf("value = %v, want 3", val)
	}
}

func TestLoopTerminatesViaThrow(t *testing.T) {
	val := evalOk(t, "try\n    loop\n        throw \"done\"\ncatch\n    err")
	if str, ok := val.(runtime.StrValue); !ok || str.Value != "done" {
		t.Fatalf("value = %v, want done", val)
	}
}

func TestLoopScopeResetsPerIteration(t *testing.T) {
	// let in an iteration must not leak into the next; if it did, the
	// second iteration's reference would see a stale binding rather
	// than fail. The throw carries proof of the first iteration.
	src := "try\n" +
		"    loop\n" +
		"        let x -> 1\n" +
		"        throw (+ x 1)\n" +
		"catch\n" +
		"    err"
	wantNumber(t, src, 2)
}

func TestStepBudget(t *testing.T) {
	in := New(WithMaxSteps(200))
	_, errs := run(t, in, "loop\n    1")
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want 1", errs)
	}
	ee, ok := errs[0].(*EvalError)
	if !ok || ee.Kind != BudgetExhausted {
		t.Fatalf("error = %v, want budget exhausted", errs[0])
	}

	// An empty loop body still charges per iteration.
	in = New(WithMaxSteps(50))
	if _, errs := run(t, in, "loop"); len(errs) != 1 {
		t.Fatalf("empty loop: errors = %v, want budget exhausted", errs)
	}
}

func TestStepBudgetResetsPerForm(t *testing.T) {
	in := New(WithMaxSteps(50))
	val, errs := run(t, in, "(+ 1 2)\n(+ 3 4)")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if num, ok := val.(runtime.NumberValue); !ok || num.Value != 7 {
		t.Fatalf("value = %v, want 7", val)
	}
}

func TestDepthBudget(t *testing.T) {
	in := New(WithMaxDepth(32))
	src := "def spin: num n: num -> (spin (+ n 1))\n(spin 0)"
	_, errs := run(t, in, src)
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want 1", errs)
	}
	ee, ok := errs[0].(*EvalError)
	if !ok || ee.Kind != BudgetExhausted || !strings.Contains(ee.Msg, "deeper") {
		t.Fatalf("error = %v, want depth exhaustion", errs[0])
	}
}

func TestUndefinedSymbolSuggestions(t *testing.T) {
	in := New()
	_, errs := run(t, in, "let counter -> 1\ncountr")
	if len(errs) != 1 {
		t.Fatalf("errors = %v, want 1", errs)
	}
	ee, ok := errs[0].(*EvalError)
	if !ok || ee.Kind != UndefinedSymbol {
		t.Fatalf("error = %v, want undefined symbol", errs[0])
	}
	found := false
	for _, s := range ee.Suggestions {
		if s == "counter" {
			found = true
		}
	}
	if !found {
		t.Fatalf("suggestions = %v, want counter", ee.Suggestions)
	}
	if !strings.Contains(ee.Error(), "did you mean") {
		t.Fatalf("message = %q, want a suggestion hint", ee.Error())
	}
}

func TestRegisterNative(t *testing.T) {
	in := New()
	in.RegisterNative("double", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		num, ok := args[0].(runtime.NumberValue)
		if !ok {
			return nil, &EvalError{Kind: TypeMismatch, Msg: "'double' expects num operands"}
		}
		return runtime.NumberValue{Value: num.Value * 2}, nil
	})

	val, errs := run(t, in, "double 21")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if num, ok := val.(runtime.NumberValue); !ok || num.Value != 42 {
		t.Fatalf("value = %v, want 42", val)
	}

	if _, errs := run(t, in, "double 1 2"); len(errs) != 1 {
		t.Fatalf("arity violation: errors = %v, want 1", errs)
	}
}

func TestGlobalKeysSeesBuiltinsAndDefinitions(t *testing.T) {
	in := New()
	if _, errs := run(t, in, "def f: num -> 1"); len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	keys := in.GlobalKeys()
	wantPresent := map[string]bool{"+": false, "and": false, "not": false, "f": false}
	for _, k := range keys {
		if _, ok := wantPresent[k]; ok {
			wantPresent[k] = true
		}
	}
	for name, seen := range wantPresent {
		if !seen {
			t.Fatalf("GlobalKeys() = %v, missing %q", keys, name)
		}
	}
}
