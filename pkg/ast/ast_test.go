package ast

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUnparse(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"integer", Num(7), "7"},
		{"fraction", Num(1.5), "1.5"},
		{"large number stays plain decimal", Num(1e6), "1000000"},
		{"string", Str("hi"), `"hi"`},
		{"string escapes", Str("a\"b\nc\\d\te"), `"a\"b\nc\\d\te"`},
		{"booleans", Bool(true), "true"},
		{"none", None(), "none"},
		{"symbol", Sym("foo"), "foo"},
		{"bare reference call", NewCall(Sym("f"), nil), "(f)"},
		{
			"nested call",
			Apply("+", Num(1), Apply("*", Num(2), Num(3))),
			"(+ 1 (* 2 3))",
		},
		{
			"conditional without alternative",
			If(Apply(">", Sym("x"), Num(0)), Num(1)),
			"(if (> x 0) 1)",
		},
		{
			"conditional with alternative",
			IfElse(Apply(">", Sym("x"), Num(0)), Num(1), Num(2)),
			"(if (> x 0) 1 2)",
		},
		{"let", Bind("x", Num(1)), "(let x -> 1)"},
		{
			"do block",
			Do(Bind("x", Num(1)), Apply("+", Sym("x"), Num(1))),
			"(do (let x -> 1) (+ x 1))",
		},
		{"empty do", Do(), "(do)"},
		{"loop", Loop(Raise(Num(1))), "(loop (throw 1))"},
		{
			"try catch finally",
			Try(Raise(Str("boom"))).
				WithCatch(Apply("+", Num(1), Num(1))).
				WithFinally(Apply("+", Num(2), Num(2))),
			`(try (throw "boom") catch (+ 1 1) finally (+ 2 2))`,
		},
		{"try alone", Try(Num(1)), "(try 1)"},
		{"throw", Raise(Str("boom")), `(throw "boom")`},
		{
			"function definition",
			Def("sum", "num", Apply("+", Sym("x"), Sym("y")), P("x", "num"), P("y", "num")),
			"(def sum: num x: num y: num -> (+ x y))",
		},
		{"value definition", Def("x", "num", Num(1)), "(def x: num -> 1)"},
		{"unannotated definition", Def("x", "", Num(1)), "(def x -> 1)"},
		{"forward declaration", Fwd("f", "num"), "(def f: num ->)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unparse(tt.node); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnparseProgram(t *testing.T) {
	forms := []Expression{Bind("x", Num(1)), Apply("+", Sym("x"), Num(2))}
	want := "(let x -> 1)\n(+ x 2)\n"
	if got := UnparseProgram(forms); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNodeTypes(t *testing.T) {
	checks := []struct {
		node Node
		want NodeType
	}{
		{Num(1), NodeNumberLiteral},
		{Sym("a"), NodeSymbolRef},
		{Apply("f"), NodeCall},
		{Do(), NodeBlock},
		{Try(), NodeTryExpression},
		{Fwd("f", ""), NodeDefinition},
	}
	for _, c := range checks {
		if c.node.NodeType() != c.want {
			t.Fatalf("got %v, want %v", c.node.NodeType(), c.want)
		}
	}
}

func TestJSONCarriesTypeTag(t *testing.T) {
	data, err := json.Marshal(Apply("+", Num(1), Num(2)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"type":"Call"`, `"type":"SymbolRef"`, `"type":"NumberLiteral"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("marshaled call missing %s: %s", want, data)
		}
	}
}
