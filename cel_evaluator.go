package styles

import (
	"reflect"
	"sort"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// celEvaluator runs conditions with cel-go. CEL checks identifiers when it
// compiles, so every variable of the input is declared dynamically typed and
// programs are cached per expression and variable set.
type celEvaluator struct {
	engineConfig
}

// NewCELEvaluator returns a CEL condition engine. Helpers are reachable as
// call("name", [args...]).
func NewCELEvaluator(opts ...EvaluatorOption) Evaluator {
	return &celEvaluator{engineConfig: applyEngineOptions(opts)}
}

func (e *celEvaluator) Evaluate(in ConditionInput, condition string) (any, error) {
	if strings.TrimSpace(condition) == "" {
		return nil, conditionError(EngineCEL, condition, in, errEmptyCondition)
	}
	vars := in.Variables()
	program, err := e.program(condition, vars)
	if err != nil {
		return nil, conditionError(EngineCEL, condition, in, err)
	}
	out, _, err := program.Eval(vars)
	if err != nil {
		return nil, conditionError(EngineCEL, condition, in, err)
	}
	return out.Value(), nil
}

func (e *celEvaluator) program(condition string, vars map[string]any) (celgo.Program, error) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	key := EngineCEL + ":" + strings.Join(names, ",") + ":" + condition
	if program, ok := cachedProgram[celgo.Program](e.cache, key); ok {
		return program, nil
	}

	options := make([]celgo.EnvOption, 0, len(names)+1)
	for _, name := range names {
		options = append(options, celgo.Variable(name, celgo.DynType))
	}
	options = append(options, celgo.Function(conditionCallFunc,
		celgo.Overload("call_string_list",
			[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
			celgo.DynType,
			celgo.BinaryBinding(e.call),
		),
	))
	env, err := celgo.NewEnv(options...)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(condition)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	storeProgram(e.cache, key, program)
	return program, nil
}

var anySliceType = reflect.TypeOf([]any{})

func (e *celEvaluator) call(nameVal, argsVal ref.Val) ref.Val {
	name, ok := nameVal.Value().(string)
	if !ok {
		return types.NewErr("call name must be a string")
	}
	native, err := argsVal.ConvertToNative(anySliceType)
	if err != nil {
		return types.NewErr("call arguments must be a list: %v", err)
	}
	args, _ := native.([]any)
	result, err := e.functions.Call(name, args...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

