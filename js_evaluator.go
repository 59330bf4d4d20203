//go:build js_eval

package styles

import (
	"strings"

	"github.com/dop251/goja"
)

// jsEvaluator runs conditions in a fresh goja runtime per evaluation. Programs
// are compiled once and shared; runtimes are not.
type jsEvaluator struct {
	engineConfig
}

// NewJSEvaluator returns a JavaScript condition engine.
func NewJSEvaluator(opts ...EvaluatorOption) Evaluator {
	return &jsEvaluator{engineConfig: applyEngineOptions(opts)}
}

func (e *jsEvaluator) Engine() string { return EngineJS }

func (e *jsEvaluator) Evaluate(in ConditionInput, condition string) (any, error) {
	if strings.TrimSpace(condition) == "" {
		return nil, conditionError(EngineJS, condition, in, errEmptyCondition)
	}
	program, err := e.program(condition)
	if err != nil {
		return nil, conditionError(EngineJS, condition, in, err)
	}
	vm := goja.New()
	if err := e.bind(vm, in); err != nil {
		return nil, conditionError(EngineJS, condition, in, err)
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, conditionError(EngineJS, condition, in, err)
	}
	return value.Export(), nil
}

func (e *jsEvaluator) program(condition string) (*goja.Program, error) {
	key := EngineJS + ":" + condition
	if program, ok := cachedProgram[*goja.Program](e.cache, key); ok {
		return program, nil
	}
	program, err := goja.Compile("condition", "(function(){ return ("+condition+"); })()", true)
	if err != nil {
		return nil, err
	}
	storeProgram(e.cache, key, program)
	return program, nil
}

func (e *jsEvaluator) bind(vm *goja.Runtime, in ConditionInput) error {
	for name, value := range in.Variables() {
		if err := vm.Set(name, value); err != nil {
			return err
		}
	}
	if err := vm.Set(conditionCallFunc, func(name string, args ...any) (any, error) {
		return e.functions.Call(name, args...)
	}); err != nil {
		return err
	}
	for _, name := range e.functions.Names() {
		fn := name
		if err := vm.Set(fn, func(args ...any) (any, error) {
			return e.functions.Call(fn, args...)
		}); err != nil {
			return err
		}
	}
	return nil
}

func jsEvaluatorAvailable() bool {
	return true
}
