package styles

import (
	"fmt"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// exprEvaluator runs conditions with github.com/expr-lang/expr. Field ids are
// bound as variables; unknown identifiers evaluate to nil.
type exprEvaluator struct {
	engineConfig
}

// NewExprEvaluator returns the default condition engine.
func NewExprEvaluator(opts ...EvaluatorOption) Evaluator {
	return &exprEvaluator{engineConfig: applyEngineOptions(opts)}
}

func (e *exprEvaluator) Evaluate(in ConditionInput, condition string) (any, error) {
	if strings.TrimSpace(condition) == "" {
		return nil, conditionError(EngineExpr, condition, in, errEmptyCondition)
	}
	program, err := e.program(condition)
	if err != nil {
		return nil, conditionError(EngineExpr, condition, in, err)
	}
	out, err := exprlang.Run(program, in.Variables())
	if err != nil {
		return nil, conditionError(EngineExpr, condition, in, err)
	}
	return out, nil
}

func (e *exprEvaluator) program(condition string) (*exprvm.Program, error) {
	key := EngineExpr + ":" + condition
	if program, ok := cachedProgram[*exprvm.Program](e.cache, key); ok {
		return program, nil
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
		exprlang.Function(conditionCallFunc, e.call),
	}
	for _, name := range e.functions.Names() {
		options = append(options, exprlang.Function(name, e.bind(name)))
	}
	program, err := exprlang.Compile(condition, options...)
	if err != nil {
		return nil, err
	}
	storeProgram(e.cache, key, program)
	return program, nil
}

func (e *exprEvaluator) bind(name string) func(...any) (any, error) {
	return func(args ...any) (any, error) {
		return e.functions.Call(name, args...)
	}
}

// call implements call("name", args...).
func (e *exprEvaluator) call(args ...any) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("call expects a function name")
	}
	name, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("call name must be a string, got %T", args[0])
	}
	return e.functions.Call(name, args[1:]...)
}
