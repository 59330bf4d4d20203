package styles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-styles/pkg/activity"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrRegistryRequired indicates NewCompiler was called without a registry.
var ErrRegistryRequired = errors.New("styles: registry must be provided")

// Request describes one compilation: a widget instance and its settings.
type Request struct {
	ScopeID string
	// Settings is the submitted payload. Ignored when Layers is set.
	Settings Settings
	// Layers resolves settings from a kit/page/widget stack instead.
	Layers *LayerStack
	// Mode overrides the compiler's default output mode.
	Mode Mode
	// SkipCache bypasses cache reads; the result is still written.
	SkipCache bool
}

// Result is the output of a compilation.
type Result struct {
	ScopeID  string
	CSS      string
	Key      string
	CacheHit bool
	// Trace is populated when the CSS was computed (not on cache hits).
	Trace  Trace
	Errors []*ValueError
}

// Compiler turns a registry plus settings into scoped CSS. It is safe for
// concurrent use; the registry is sealed on construction.
type Compiler struct {
	id       string
	registry *Registry
	cfg      compilerConfig
	log      *zap.Logger
	cache    *guardedCache
	emitter  *activity.Emitter

	evaluatorOnce sync.Once
	evaluator     Evaluator
	evaluatorErr  error
}

// NewCompiler constructs a compiler for reg.
func NewCompiler(reg *Registry, opts ...Option) (*Compiler, error) {
	if reg == nil {
		return nil, ErrRegistryRequired
	}
	cfg := applyOptions(opts)
	mode, err := ParseMode(string(cfg.mode))
	if err != nil {
		return nil, err
	}
	cfg.mode = mode
	reg.Seal()
	log := cfg.logger.Named("styles")
	if name := reg.Name(); name != "" {
		log = log.With(zap.String("registry", name))
	}
	return &Compiler{
		id:       uuid.NewString(),
		registry: reg,
		cfg:      cfg,
		log:      log,
		cache:    newGuardedCache(cfg.cache, log),
		emitter:  activity.NewEmitter(cfg.activityHooks, cfg.activity),
	}, nil
}

// ID returns the compiler instance id attached to activity events.
func (c *Compiler) ID() string {
	return c.id
}

// Registry returns the sealed registry the compiler renders.
func (c *Compiler) Registry() *Registry {
	return c.registry
}

// Breakpoints returns the breakpoint table in use.
func (c *Compiler) Breakpoints() BreakpointTable {
	return c.cfg.breakpoints
}

// Mode returns the default output mode.
func (c *Compiler) Mode() Mode {
	return c.cfg.mode
}

// Key returns the cache key req would be stored under.
func (c *Compiler) Key(req Request) (string, error) {
	scopeID := strings.TrimSpace(req.ScopeID)
	if scopeID == "" {
		return "", ErrScopeIDRequired
	}
	mode, err := ParseMode(string(c.modeFor(req)))
	if err != nil {
		return "", err
	}
	return CacheKey(KeyInput{
		ScopeID:         scopeID,
		Settings:        c.settingsFor(req),
		RegistryVersion: c.registry.Version(),
		Breakpoints:     c.cfg.breakpoints.Fingerprint(),
		Mode:            mode,
	})
}

// Compile renders the CSS for req. The only errors are request errors (a
// missing scope id or an unknown mode); invalid values, failing conditions
// and cache failures are logged and reported in the Result.
func (c *Compiler) Compile(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	scopeID := strings.TrimSpace(req.ScopeID)
	if scopeID == "" {
		return Result{}, ErrScopeIDRequired
	}
	mode, err := ParseMode(string(c.modeFor(req)))
	if err != nil {
		return Result{}, err
	}
	settings := c.settingsFor(req)

	key, err := CacheKey(KeyInput{
		ScopeID:         scopeID,
		Settings:        settings,
		RegistryVersion: c.registry.Version(),
		Breakpoints:     c.cfg.breakpoints.Fingerprint(),
		Mode:            mode,
	})
	if err != nil {
		c.log.Warn("Settings not serialisable, compiling uncached", zap.String("scope", scopeID), zap.Error(err))
		key = ""
	}

	if !req.SkipCache {
		if css, ok := c.cache.get(ctx, key); ok {
			c.log.Debug("Cache hit", zap.String("scope", scopeID), zap.String("key", key))
			return Result{ScopeID: scopeID, CSS: css, Key: key, CacheHit: true, Trace: Trace{ScopeID: scopeID, Key: key}}, nil
		}
	}

	start := time.Now()
	var resolved ResolvedSettings
	if req.Layers != nil {
		resolved = ResolveLayers(c.registry, c.cfg.breakpoints, req.Layers)
	} else {
		resolved = Resolve(c.registry, c.cfg.breakpoints, settings)
	}
	sheet, trace := c.build(scopeID, resolved)
	trace.Key = key
	css := Render(sheet, mode)
	c.cache.set(ctx, key, css)

	result := Result{
		ScopeID: scopeID,
		CSS:     css,
		Key:     key,
		Trace:   trace,
		Errors:  resolved.Errors(),
	}
	c.log.Debug("Compiled styles",
		zap.String("scope", scopeID),
		zap.String("mode", string(mode)),
		zap.Int("bytes", len(css)),
		zap.Int("value_errors", len(result.Errors)),
		zap.Duration("duration", time.Since(start)))
	c.emitCompiled(ctx, result, mode)
	return result, nil
}

// Build resolves and assembles req without touching the cache or formatting
// the output.
func (c *Compiler) Build(req Request) (*Stylesheet, Trace, error) {
	scopeID := strings.TrimSpace(req.ScopeID)
	if scopeID == "" {
		return nil, Trace{}, ErrScopeIDRequired
	}
	var resolved ResolvedSettings
	if req.Layers != nil {
		resolved = ResolveLayers(c.registry, c.cfg.breakpoints, req.Layers)
	} else {
		resolved = Resolve(c.registry, c.cfg.breakpoints, req.Settings)
	}
	sheet, trace := c.build(scopeID, resolved)
	return sheet, trace, nil
}

// CompileBatch compiles many widget instances in parallel and returns results
// in input order. The first request error cancels the remaining work.
func (c *Compiler) CompileBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]Result, len(reqs))
	group, groupCtx := errgroup.WithContext(ctx)
	if c.cfg.concurrency > 0 {
		group.SetLimit(c.cfg.concurrency)
	}
	for i := range reqs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			result, err := c.Compile(groupCtx, reqs[i])
			if err != nil {
				return fmt.Errorf("styles: batch request %d (scope %q): %w", i, reqs[i].ScopeID, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Invalidate drops cached entries matching keyOrPrefix. Unlike reads and
// writes, invalidation failures are returned to the caller.
func (c *Compiler) Invalidate(ctx context.Context, keyOrPrefix string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(keyOrPrefix) == "" {
		return fmt.Errorf("styles: invalidate requires a key or prefix")
	}
	if err := c.cache.invalidate(ctx, keyOrPrefix); err != nil {
		c.log.Error("Cache invalidation failed", zap.String("key", keyOrPrefix), zap.Error(err))
		return err
	}
	c.emit(ctx, activity.BuildCacheInvalidatedEvent(activity.StylesEventInput{
		ObjectID: keyOrPrefix,
		Metadata: map[string]any{"compiler_id": c.id},
	}))
	return nil
}

// InvalidateScope drops every cached entry of scopeID.
func (c *Compiler) InvalidateScope(ctx context.Context, scopeID string) error {
	if strings.TrimSpace(scopeID) == "" {
		return ErrScopeIDRequired
	}
	return c.Invalidate(ctx, ScopePrefix(scopeID))
}

func (c *Compiler) modeFor(req Request) Mode {
	if req.Mode != "" {
		return req.Mode
	}
	return c.cfg.mode
}

func (c *Compiler) settingsFor(req Request) Settings {
	if req.Layers != nil {
		return req.Layers.Merge()
	}
	if req.Settings == nil {
		return Settings{}
	}
	return req.Settings
}

// build runs substitution and assembly over resolved settings.
func (c *Compiler) build(scopeID string, resolved ResolvedSettings) (*Stylesheet, Trace) {
	set := NewDeclarationSet()
	trace := Trace{ScopeID: scopeID, Fields: make([]FieldTrace, 0, len(resolved.Fields))}

	for _, field := range resolved.Fields {
		def := field.Definition
		ft := FieldTrace{
			FieldID:    def.ID,
			Considered: !field.Skipped(),
			SkipReason: field.Skip,
			Condition:  def.Condition,
		}
		if field.Skipped() {
			trace.Fields = append(trace.Fields, ft)
			continue
		}
		if def.Condition != "" {
			ok, err := c.EvaluateCondition(scopeID, def.ID, def.Condition, resolved)
			if err != nil || !ok {
				ft.Considered = false
				ft.SkipReason = SkipCondition
				if err != nil {
					c.log.Warn("Field condition failed, skipping field",
						zap.String("scope", scopeID), zap.String("field", def.ID), zap.Error(err))
				}
				trace.Fields = append(trace.Fields, ft)
				continue
			}
		}

		for _, entry := range field.Values {
			bt := BreakpointTrace{
				Breakpoint: entry.Breakpoint,
				Source:     entry.Source,
				SkipReason: entry.Skip,
			}
			if entry.Err != nil {
				bt.Error = entry.Err.Error()
				bt.Resolved = entry.Raw
				c.log.Info("Invalid value, skipping declarations",
					zap.String("scope", scopeID),
					zap.String("field", def.ID),
					zap.String("breakpoint", entry.Breakpoint),
					zap.String("reason", entry.Err.Reason))
			}
			if entry.Value == nil {
				ft.Breakpoints = append(ft.Breakpoints, bt)
				continue
			}
			bt.Resolved = entry.Value.Native()
			if toggle, ok := entry.Value.(ToggleValue); ok && !toggle.On {
				bt.SkipReason = SkipToggleOff
				ft.Breakpoints = append(ft.Breakpoints, bt)
				continue
			}
			for _, rule := range def.Selectors {
				selector, text, err := Substitute(rule.Selector, rule.Property, entry.Value, def.Unit, scopeID)
				if err != nil {
					bt.SkipReason = SkipInvalidValue
					bt.Error = err.Error()
					continue
				}
				declarations := ParseDeclarations(text)
				if selector == "" || len(declarations) == 0 {
					continue
				}
				set.Add(entry.Breakpoint, selector, declarations...)
				bt.Selectors = append(bt.Selectors, selector)
				for _, decl := range declarations {
					bt.Declarations = append(bt.Declarations, decl.String())
				}
			}
			ft.Breakpoints = append(ft.Breakpoints, bt)
		}
		trace.Fields = append(trace.Fields, ft)
	}
	return Assemble(set, c.cfg.breakpoints), trace
}

func (c *Compiler) emitCompiled(ctx context.Context, result Result, mode Mode) {
	if !c.emitter.Enabled() {
		return
	}
	c.emit(ctx, activity.BuildCompiledEvent(activity.StylesEventInput{
		ObjectID: result.ScopeID,
		Metadata: map[string]any{
			"compiler_id":  c.id,
			"key":          result.Key,
			"mode":         string(mode),
			"bytes":        len(result.CSS),
			"value_errors": len(result.Errors),
		},
	}))
	if !c.emitter.Wants(activity.VerbFieldSkipped) {
		return
	}
	for _, field := range result.Trace.Fields {
		if field.SkipReason != SkipCondition && !hasInvalidBreakpoint(field) {
			continue
		}
		c.emit(ctx, activity.BuildFieldSkippedEvent(activity.StylesEventInput{
			ObjectID: result.ScopeID,
			FieldID:  field.FieldID,
			Reason:   string(skipReasonOf(field)),
			Metadata: map[string]any{"compiler_id": c.id},
		}))
	}
}

func hasInvalidBreakpoint(field FieldTrace) bool {
	for _, bp := range field.Breakpoints {
		if bp.SkipReason == SkipInvalidValue {
			return true
		}
	}
	return false
}

func skipReasonOf(field FieldTrace) SkipReason {
	if field.SkipReason != SkipNone {
		return field.SkipReason
	}
	return SkipInvalidValue
}

func (c *Compiler) emit(ctx context.Context, event activity.Event) {
	if err := c.emitter.Emit(ctx, event); err != nil {
		c.log.Warn("Activity hook failed", zap.String("verb", event.Verb), zap.Error(err))
	}
}
