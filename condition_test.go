package styles

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConditionInputVariables(t *testing.T) {
	in := ConditionInput{
		Values:  map[string]any{"size": 14.0, "bg": "#000"},
		ScopeID: "w1",
		FieldID: "size",
	}
	want := map[string]any{
		"size":   14.0,
		"bg":     "#000",
		"fields": map[string]any{"size": 14.0, "bg": "#000"},
		"scope":  map[string]any{"id": "w1", "field": "size", "selector": "#w1"},
	}
	if diff := cmp.Diff(want, in.Variables()); diff != "" {
		t.Fatalf("variables mismatch (-want +got):\n%s", diff)
	}

	empty := ConditionInput{}.Variables()
	if fields, ok := empty["fields"].(map[string]any); !ok || fields == nil {
		t.Fatalf("expected empty fields map, got %#v", empty["fields"])
	}
}

func TestConditionErrorWrapsCause(t *testing.T) {
	base := errors.New("boom")
	err := conditionError(EngineExpr, "flag && missing", ConditionInput{ScopeID: "w1", FieldID: "bg"}, base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	want := EvaluationError{Engine: EngineExpr, Expr: "flag && missing", Scope: "w1", Field: "bg"}
	got := *evalErr
	got.Err = nil
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("error metadata mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected cause to unwrap")
	}
	if conditionError(EngineExpr, "x", ConditionInput{}, nil) != nil {
		t.Fatalf("nil error must stay nil")
	}
}

func TestConditionErrorCompletesExisting(t *testing.T) {
	existing := &EvaluationError{Engine: EngineCEL, Err: errors.New("compile failure")}

	err := conditionError(EngineExpr, "size > 1", ConditionInput{FieldID: "size"}, existing)
	if err != existing {
		t.Fatalf("expected the existing error back, got %v", err)
	}
	if existing.Engine != EngineCEL {
		t.Fatalf("engine must not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "size > 1" || existing.Field != "size" || existing.Scope != "-" {
		t.Fatalf("expected blanks filled, got %+v", existing)
	}
}

func TestStyleHelpers(t *testing.T) {
	functions := withStyleHelpers(nil)
	cases := []struct {
		name string
		args []any
		want any
	}{
		{"is_color", []any{"#fff"}, true},
		{"is_color", []any{"chartreuse"}, false},
		{"is_color", []any{12.0}, false},
		{"IS_COLOR", []any{"var(--accent)"}, true},
		{"side", []any{map[string]any{"top": 4.0, "right": 8.0, "bottom": 4.0, "left": 8.0}, "right"}, 8.0},
		{"has", []any{nil}, false},
		{"has", []any{"solid"}, true},
	}
	for _, tc := range cases {
		got, err := functions.Call(tc.name, tc.args...)
		if err != nil {
			t.Fatalf("%s%v: %v", tc.name, tc.args, err)
		}
		if got != tc.want {
			t.Fatalf("%s%v: got %v want %v", tc.name, tc.args, got, tc.want)
		}
	}
	if _, err := functions.Call("side", "10px", "top"); err == nil {
		t.Fatalf("expected side to reject non-dimension values")
	}
}

func TestStyleHelpersDoNotOverrideCustom(t *testing.T) {
	custom := NewFunctionRegistry()
	if err := custom.Register("has", func(...any) (any, error) { return "custom", nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := withStyleHelpers(custom).Call("has", nil)
	if err != nil || got != "custom" {
		t.Fatalf("expected custom helper to win, got %v (%v)", got, err)
	}
	if len(custom.Names()) != 1 {
		t.Fatalf("helpers must not leak into the caller's registry: %v", custom.Names())
	}
}

func TestFunctionRegistryRejects(t *testing.T) {
	functions := NewFunctionRegistry()
	noop := func(...any) (any, error) { return nil, nil }
	if err := functions.Register("dup", noop); err != nil {
		t.Fatalf("register: %v", err)
	}
	for _, tc := range []struct {
		name string
		fn   Function
	}{
		{"", noop},
		{"nilfn", nil},
		{"DUP", noop},
		{"call", noop},
		{"scope", noop},
	} {
		if err := functions.Register(tc.name, tc.fn); err == nil {
			t.Fatalf("expected %q to be rejected", tc.name)
		}
	}
}
