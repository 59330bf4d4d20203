package styles

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNoEvaluator = errors.New("styles: evaluator not configured")
	// ErrEvaluatorUnavailable reports an unknown engine, or the js engine in a
	// binary built without the js_eval tag.
	ErrEvaluatorUnavailable = errors.New("styles: evaluator engine unavailable")
)

// Condition engine names accepted by NewEvaluator.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// NewEvaluator builds the named condition engine. cache and functions may be
// nil; the style helpers are always available.
func NewEvaluator(engine string, cache ProgramCache, functions *FunctionRegistry) (Evaluator, error) {
	opts := []EvaluatorOption{EvaluatorProgramCache(cache), EvaluatorFunctions(functions)}
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineExpr:
		return NewExprEvaluator(opts...), nil
	case EngineCEL:
		return NewCELEvaluator(opts...), nil
	case EngineJS:
		if !jsEvaluatorAvailable() {
			return nil, fmt.Errorf("%w: %s (build with -tags js_eval)", ErrEvaluatorUnavailable, engine)
		}
		return NewJSEvaluator(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrEvaluatorUnavailable, engine)
	}
}

// EvaluateCondition reports whether the field fieldID of scopeID renders. An
// empty condition is true; an undefined result (nil) is false; any other
// non-boolean result is an error.
func (c *Compiler) EvaluateCondition(scopeID, fieldID, condition string, resolved ResolvedSettings) (bool, error) {
	if strings.TrimSpace(condition) == "" {
		return true, nil
	}
	evaluator, err := c.resolveEvaluator()
	if err != nil {
		return false, err
	}
	in := ConditionInput{
		Values:  resolved.Snapshot(),
		ScopeID: scopeID,
		FieldID: fieldID,
	}
	engine := engineName(evaluator)
	start := time.Now()
	value, err := evaluator.Evaluate(in, condition)
	if err == nil {
		switch typed := value.(type) {
		case bool:
		case nil:
			value = false
		default:
			err = fmt.Errorf("condition returned %T, want bool", typed)
		}
	}
	err = conditionError(engine, condition, in, err)
	c.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     condition,
		Scope:    in.scope(),
		Field:    fieldID,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return false, err
	}
	return value.(bool), nil
}

func (c *Compiler) resolveEvaluator() (Evaluator, error) {
	c.evaluatorOnce.Do(func() {
		if c.cfg.evaluator != nil {
			c.evaluator = c.cfg.evaluator
			return
		}
		c.evaluator, c.evaluatorErr = NewEvaluator(EngineExpr, c.cfg.programCache, c.cfg.functions)
	})
	if c.evaluatorErr != nil {
		return nil, c.evaluatorErr
	}
	if c.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	return c.evaluator, nil
}

func (c *Compiler) evaluatorLogger() EvaluatorLogger {
	if c.cfg.evalLogger != nil {
		return c.cfg.evalLogger
	}
	return zapEvaluatorLogger{log: c.log.Named("conditions")}
}

func engineName(e Evaluator) string {
	switch e.(type) {
	case *exprEvaluator:
		return EngineExpr
	case *celEvaluator:
		return EngineCEL
	}
	if named, ok := e.(interface{ Engine() string }); ok {
		return named.Engine()
	}
	return "custom"
}
