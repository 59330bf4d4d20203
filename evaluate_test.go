package styles

import (
	"errors"
	"strings"
	"testing"
)

func conditionFixture(t *testing.T, opts ...Option) (*Compiler, ResolvedSettings) {
	t.Helper()
	reg := NewRegistry()
	reg.MustRegisterField(nil, FieldDefinition{ID: "size", Type: FieldScalar, Default: 14, Selectors: []SelectorRule{{Selector: "{{WRAPPER}}", Property: "font-size: {{VALUE}}px;"}}})
	reg.MustRegisterField(nil, FieldDefinition{ID: "bg", Type: FieldColor, Default: "#000", Selectors: []SelectorRule{{Selector: "{{WRAPPER}}", Property: "background: {{VALUE}};"}}})
	compiler := mustCompiler(t, reg, opts...)
	return compiler, Resolve(reg, compiler.Breakpoints(), nil)
}

func TestEvaluateCondition(t *testing.T) {
	compiler, resolved := conditionFixture(t)

	cases := []struct {
		expr string
		want bool
	}{
		{"", true},
		{"size > 10", true},
		{"size > 20", false},
		{`bg == "#000" && size == 14`, true},
		{"missing_field", false},
		{`scope.id == "w1"`, true},
		{`scope.selector == "#w1" && fields["size"] == 14`, true},
		{"is_color(bg) && !has(missing_field)", true},
	}
	for _, tc := range cases {
		got, err := compiler.EvaluateCondition("w1", "field", tc.expr, resolved)
		if err != nil {
			t.Fatalf("%q: %v", tc.expr, err)
		}
		if got != tc.want {
			t.Fatalf("%q: got %v want %v", tc.expr, got, tc.want)
		}
	}
}

func TestEvaluateConditionRejectsNonBool(t *testing.T) {
	var events []EvaluatorLogEvent
	compiler, resolved := conditionFixture(t, WithEvaluatorLogger(EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
		events = append(events, event)
	})))

	_, err := compiler.EvaluateCondition("w1", "field", "size + 1", resolved)
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) || evalErr.Engine != EngineExpr || evalErr.Scope != "w1" {
		t.Fatalf("expected expr EvaluationError, got %v", err)
	}
	if len(events) != 1 || events[0].Err == nil {
		t.Fatalf("expected failed evaluation logged, got %+v", events)
	}
}

func TestEvaluateConditionCustomFunctions(t *testing.T) {
	isDark := func(args ...any) (any, error) {
		color, _ := args[0].(string)
		return strings.HasPrefix(color, "#0"), nil
	}
	cache, err := NewLRUProgramCache(8)
	if err != nil {
		t.Fatalf("program cache: %v", err)
	}
	for name, opts := range map[string][]Option{
		"uncached": {WithCustomFunction("is_dark", isDark)},
		"cached":   {WithCustomFunction("is_dark", isDark), WithProgramCache(cache)},
	} {
		t.Run(name, func(t *testing.T) {
			compiler, resolved := conditionFixture(t, opts...)
			for i := 0; i < 2; i++ {
				ok, err := compiler.EvaluateCondition("w1", "field", "is_dark(bg)", resolved)
				if err != nil || !ok {
					t.Fatalf("expected true, got %v (%v)", ok, err)
				}
			}
		})
	}
}

func TestCELConditionWithFunctions(t *testing.T) {
	functions := NewFunctionRegistry()
	if err := functions.Register("double", func(args ...any) (any, error) {
		n, _ := args[0].(float64)
		return n * 2, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	evaluator, err := NewEvaluator(EngineCEL, nil, functions)
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}
	compiler, resolved := conditionFixture(t, WithEvaluator(evaluator))

	ok, err := compiler.EvaluateCondition("w1", "field", `call("double", [size]) == 28.0 && scope.id == "w1"`, resolved)
	if err != nil || !ok {
		t.Fatalf("expected true, got %v (%v)", ok, err)
	}
}

func TestNewEvaluatorEngines(t *testing.T) {
	if _, err := NewEvaluator("lua", nil, nil); !errors.Is(err, ErrEvaluatorUnavailable) {
		t.Fatalf("expected ErrEvaluatorUnavailable, got %v", err)
	}
	_, err := NewEvaluator(EngineJS, nil, nil)
	if jsEvaluatorAvailable() {
		if err != nil {
			t.Fatalf("expected js evaluator, got %v", err)
		}
	} else if !errors.Is(err, ErrEvaluatorUnavailable) {
		t.Fatalf("expected ErrEvaluatorUnavailable without js_eval, got %v", err)
	}
	for _, engine := range []string{"", EngineExpr, " CEL "} {
		if _, err := NewEvaluator(engine, nil, nil); err != nil {
			t.Fatalf("%q: %v", engine, err)
		}
	}
}
