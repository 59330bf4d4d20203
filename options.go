package styles

import (
	"github.com/goliatone/go-styles/pkg/activity"
	"go.uber.org/zap"
)

// Option configures a Compiler.
type Option func(*compilerConfig)

type compilerConfig struct {
	logger        *zap.Logger
	breakpoints   BreakpointTable
	mode          Mode
	cache         Cache
	evaluator     Evaluator
	programCache  ProgramCache
	functions     *FunctionRegistry
	evalLogger    EvaluatorLogger
	activityHooks activity.Hooks
	activity      activity.Config
	concurrency   int
}

func applyOptions(opts []Option) compilerConfig {
	cfg := compilerConfig{
		mode:        ModeExpanded,
		concurrency: 8,
		activity:    activity.Config{Enabled: true, Channel: "styles"},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.breakpoints.IsZero() {
		cfg.breakpoints = DefaultBreakpoints()
	}
	return cfg
}

// WithLogger sets the logger used for cache degradation, skipped fields and
// condition evaluation.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *compilerConfig) {
		cfg.logger = logger
	}
}

// WithBreakpoints sets the breakpoint table. DefaultBreakpoints is used when
// unset.
func WithBreakpoints(table BreakpointTable) Option {
	return func(cfg *compilerConfig) {
		cfg.breakpoints = table
	}
}

// WithFormat sets the default output mode. Requests may override it.
func WithFormat(mode Mode) Option {
	return func(cfg *compilerConfig) {
		if mode != "" {
			cfg.mode = mode
		}
	}
}

// WithCache memoises compiled CSS in cache.
func WithCache(cache Cache) Option {
	return func(cfg *compilerConfig) {
		cfg.cache = cache
	}
}

// WithEvaluator configures the field condition evaluator. The expr evaluator
// is used when unset.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *compilerConfig) {
		cfg.evaluator = e
	}
}

// WithBatchConcurrency bounds the number of parallel compilations in
// CompileBatch. Values below one mean unbounded.
func WithBatchConcurrency(n int) Option {
	return func(cfg *compilerConfig) {
		cfg.concurrency = n
	}
}
