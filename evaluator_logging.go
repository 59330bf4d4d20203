package styles

import (
	"time"

	"go.uber.org/zap"
)

// EvaluatorLogEvent describes one condition evaluation.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Scope    string
	Field    string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger receives condition evaluations.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

type zapEvaluatorLogger struct {
	log *zap.Logger
}

func (l zapEvaluatorLogger) LogEvaluation(event EvaluatorLogEvent) {
	if event.Err == nil && !l.log.Core().Enabled(zap.DebugLevel) {
		return
	}
	fields := []zap.Field{
		zap.String("engine", event.Engine),
		zap.String("condition", event.Expr),
		zap.String("scope", event.Scope),
		zap.String("field", event.Field),
		zap.Duration("duration", event.Duration),
	}
	if event.Err != nil {
		l.log.Warn("Condition evaluation failed", append(fields, zap.Error(event.Err))...)
		return
	}
	l.log.Debug("Condition evaluated", fields...)
}

// WithEvaluatorLogger replaces the compiler's condition log. By default
// evaluations go to the compiler's zap logger; nil silences them.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *compilerConfig) {
		if logger == nil {
			cfg.evalLogger = noopEvaluatorLogger{}
			return
		}
		cfg.evalLogger = logger
	}
}
