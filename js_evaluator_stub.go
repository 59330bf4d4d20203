//go:build !js_eval

package styles

// NewJSEvaluator returns nil unless built with the js_eval tag; NewEvaluator
// reports ErrEvaluatorUnavailable instead of calling it.
func NewJSEvaluator(...EvaluatorOption) Evaluator {
	return nil
}

func jsEvaluatorAvailable() bool {
	return false
}
