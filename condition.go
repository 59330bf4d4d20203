package styles

import (
	"errors"
	"fmt"
)

var errEmptyCondition = errors.New("condition must not be empty")

// Names bound next to the field values. A field whose id collides with one of
// them is reachable through fields["id"] only.
const (
	conditionFieldsVar = "fields"
	conditionScopeVar  = "scope"
	conditionCallFunc  = "call"
)

// ConditionInput is what a field condition is evaluated against.
type ConditionInput struct {
	// Values maps field ids to the native form of their unconditional value.
	Values  map[string]any
	ScopeID string
	FieldID string
}

// Variables flattens the input into the bindings every engine exposes: one
// variable per field id, the whole map as "fields" and the widget as "scope".
func (in ConditionInput) Variables() map[string]any {
	vars := make(map[string]any, len(in.Values)+2)
	for id, value := range in.Values {
		vars[id] = value
	}
	values := in.Values
	if values == nil {
		values = map[string]any{}
	}
	vars[conditionFieldsVar] = values
	vars[conditionScopeVar] = map[string]any{
		"id":       in.ScopeID,
		"field":    in.FieldID,
		"selector": "#" + in.ScopeID,
	}
	return vars
}

func (in ConditionInput) scope() string {
	if in.ScopeID == "" {
		return "-"
	}
	return in.ScopeID
}

// Evaluator runs field conditions. Implementations must be safe for
// concurrent use.
type Evaluator interface {
	Evaluate(in ConditionInput, condition string) (any, error)
}

// EvaluationError reports a condition that failed to compile or run.
type EvaluationError struct {
	Engine string
	Expr   string
	Scope  string
	Field  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	field := e.Field
	if field == "" {
		field = "-"
	}
	return fmt.Sprintf("styles: %s condition %q on field %s (scope %s): %v", e.Engine, e.Expr, field, e.Scope, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// conditionError attaches engine, expression and widget details to err. An
// EvaluationError already in the chain keeps what it has and is completed.
func conditionError(engine, condition string, in ConditionInput, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = condition
		}
		if evalErr.Scope == "" {
			evalErr.Scope = in.scope()
		}
		if evalErr.Field == "" {
			evalErr.Field = in.FieldID
		}
		return evalErr
	}
	return &EvaluationError{
		Engine: engine,
		Expr:   condition,
		Scope:  in.scope(),
		Field:  in.FieldID,
		Err:    err,
	}
}
