package styles

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// ProgramCache keeps compiled condition programs between compilations. Keys
// are prefixed with the engine name.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache shares cache across the compiler's condition evaluations.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *compilerConfig) {
		cfg.programCache = cache
	}
}

type lruProgramCache struct {
	programs *lru.Cache[string, any]
}

// NewLRUProgramCache returns a ProgramCache holding at most size programs.
func NewLRUProgramCache(size int) (ProgramCache, error) {
	if size <= 0 {
		size = 128
	}
	programs, err := lru.New[string, any](size)
	if err != nil {
		return nil, err
	}
	return &lruProgramCache{programs: programs}, nil
}

func (c *lruProgramCache) Get(key string) (any, bool) {
	return c.programs.Get(key)
}

func (c *lruProgramCache) Set(key string, value any) {
	c.programs.Add(key, value)
}

// cachedProgram fetches a program of type P, treating foreign entries as
// misses.
func cachedProgram[P any](cache ProgramCache, key string) (P, bool) {
	var zero P
	if cache == nil {
		return zero, false
	}
	value, ok := cache.Get(key)
	if !ok {
		return zero, false
	}
	program, ok := value.(P)
	return program, ok
}

func storeProgram(cache ProgramCache, key string, program any) {
	if cache != nil {
		cache.Set(key, program)
	}
}

// EvaluatorOption configures a condition engine.
type EvaluatorOption func(*engineConfig)

type engineConfig struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// EvaluatorProgramCache stores compiled programs in cache.
func EvaluatorProgramCache(cache ProgramCache) EvaluatorOption {
	return func(cfg *engineConfig) {
		cfg.cache = cache
	}
}

// EvaluatorFunctions exposes registry functions to conditions, both by name
// and through call("name", ...).
func EvaluatorFunctions(registry *FunctionRegistry) EvaluatorOption {
	return func(cfg *engineConfig) {
		cfg.functions = registry
	}
}

func applyEngineOptions(opts []EvaluatorOption) engineConfig {
	var cfg engineConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	cfg.functions = withStyleHelpers(cfg.functions)
	return cfg
}
