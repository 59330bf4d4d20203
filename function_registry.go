package styles

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function is a helper callable from field conditions.
type Function func(args ...any) (any, error)

// FunctionRegistry holds condition helpers by case-insensitive name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry returns an empty registry. Engines built by
// NewEvaluator add the style helpers (is_color, side, has) on top.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: make(map[string]Function)}
}

// Register adds fn under name. Names are unique per registry.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	key := strings.ToLower(strings.TrimSpace(name))
	switch {
	case key == "":
		return fmt.Errorf("styles: function name must not be empty")
	case fn == nil:
		return fmt.Errorf("styles: function %q is nil", name)
	case key == conditionCallFunc || key == conditionFieldsVar || key == conditionScopeVar:
		return fmt.Errorf("styles: function name %q is reserved", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("styles: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Clone copies the registry so later registrations do not leak into engines
// already built from it.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{functions: make(map[string]Function, len(r.functions))}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call runs the function registered under name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("styles: no condition functions configured")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("styles: function %q not registered", name)
	}
	return fn(args...)
}

// Names lists registered names in sorted order.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// withStyleHelpers returns a copy of custom with the built in helpers added
// where custom does not define them already.
func withStyleHelpers(custom *FunctionRegistry) *FunctionRegistry {
	out := custom.Clone()
	if out == nil {
		out = NewFunctionRegistry()
	}
	for name, fn := range map[string]Function{
		"is_color": isColorHelper,
		"side":     sideHelper,
		"has":      hasHelper,
	} {
		if _, exists := out.functions[name]; !exists {
			out.functions[name] = fn
		}
	}
	return out
}

// is_color(value) reports whether value passes the color shape check.
func isColorHelper(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("styles: is_color expects 1 argument, got %d", len(args))
	}
	text, ok := args[0].(string)
	return ok && IsColor(text), nil
}

// side(dimension, "top") returns one side of a dimension value.
func sideHelper(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("styles: side expects 2 arguments, got %d", len(args))
	}
	name, _ := args[1].(string)
	name = strings.ToLower(strings.TrimSpace(name))
	dimension, ok := args[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("styles: side expects a dimension value, got %T", args[0])
	}
	value, ok := dimension[name]
	if !ok {
		return nil, fmt.Errorf("styles: dimension has no side %q", name)
	}
	return toNumber(value)
}

// has(value) reports whether a field resolved to anything.
func hasHelper(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("styles: has expects 1 argument, got %d", len(args))
	}
	return args[0] != nil, nil
}

// WithFunctionRegistry exposes registry functions to field conditions.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *compilerConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for field conditions.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *compilerConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}
