package runtime

import (
	"reflect"
	"testing"
)

func TestDefineAndGet(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("x", NumberValue{1})
	v, ok := env.Get("x")
	if !ok {
		t.Fatal("x not found")
	}
	if v != (NumberValue{1}) {
		t.Fatalf("got %v, want 1", v)
	}
	if _, ok := env.Get("y"); ok {
		t.Fatal("y should not resolve")
	}
}

func TestRebindInSameScope(t *testing.T) {
	env := NewEnvironment(nil)
	env.Define("x", NumberValue{1})
	env.Define("x", StrValue{"two"})
	v, _ := env.Get("x")
	if v != (StrValue{"two"}) {
		t.Fatalf("got %v, want the rebound value", v)
	}
}

func TestChainLookupAndShadowing(t *testing.T) {
	root := NewEnvironment(nil)
	root.Define("x", NumberValue{1})
	root.Define("y", NumberValue{10})
	child := NewEnvironment(root)
	child.Define("x", NumberValue{2})

	if v, _ := child.Get("x"); v != (NumberValue{2}) {
		t.Fatalf("child x = %v, want the shadow", v)
	}
	if v, _ := child.Get("y"); v != (NumberValue{10}) {
		t.Fatalf("child y = %v, want the outer binding", v)
	}
	// The shadow never leaks outward.
	if v, _ := root.Get("x"); v != (NumberValue{1}) {
		t.Fatalf("root x = %v, want the original", v)
	}
}

func TestKeysWalkTheChain(t *testing.T) {
	root := NewEnvironment(nil)
	root.Define("b", NoneValue{})
	root.Define("a", NoneValue{})
	child := NewEnvironment(root)
	child.Define("c", NoneValue{})
	child.Define("a", NumberValue{1})

	got := child.Keys()
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestValueKindsAndRendering(t *testing.T) {
	tests := []struct {
		value Value
		kind  Kind
		text  string
	}{
		{NumberValue{3}, KindNumber, "3"},
		{NumberValue{1.5}, KindNumber, "1.5"},
		{StrValue{"hi"}, KindStr, "hi"},
		{BooleanValue{true}, KindBoolean, "true"},
		{NoneValue{}, KindNone, "none"},
		{BuiltinValue{Name: "+"}, KindBuiltin, "<builtin +>"},
		{PlaceholderValue{Name: "f"}, KindPlaceholder, "<forward f>"},
	}
	for _, tt := range tests {
		if tt.value.Kind() != tt.kind {
			t.Fatalf("%v: kind %v, want %v", tt.value, tt.value.Kind(), tt.kind)
		}
		if tt.value.String() != tt.text {
			t.Fatalf("kind %v: rendered %q, want %q", tt.kind, tt.value.String(), tt.text)
		}
	}
}
