package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	styles "github.com/goliatone/go-styles"
	"github.com/goliatone/go-styles/cache"
	"github.com/goliatone/go-styles/config"
	"github.com/goliatone/go-styles/internal/hydrate"
	"github.com/goliatone/go-styles/loader"
	"github.com/goliatone/go-styles/pkg/activity"
)

// project is a loaded registry plus the breakpoint table compilations use.
type project struct {
	registry    *styles.Registry
	breakpoints styles.BreakpointTable
}

// loadProject loads the registry at path. The breakpoint table comes from the
// configured file, then from the registry document, then the defaults.
func loadProject(cfg *config.Config, path string, log *zap.Logger) (project, error) {
	if path == "" {
		return project{}, fmt.Errorf("registry file is required (--registry)")
	}
	loaded, err := loader.LoadRegistryFile(path,
		loader.WithLogger(log),
		loader.WithStrictPlaceholders(cfg.Compiler.StrictPlaceholders),
	)
	if err != nil {
		return project{}, err
	}
	table := loaded.Breakpoints
	if cfg.Compiler.Breakpoints != "" {
		if table, err = loader.LoadBreakpointsFile(cfg.Compiler.Breakpoints); err != nil {
			return project{}, err
		}
	}
	if table.IsZero() {
		table = styles.DefaultBreakpoints()
	}
	return project{registry: loaded.Registry, breakpoints: table}, nil
}

// openCache builds the configured backend. The returned closer is never nil.
func openCache(cfg config.CacheConfig) (styles.Cache, io.Closer, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nopCloser{}, nil
	case "memory":
		return cache.NewMemory(), nopCloser{}, nil
	case "lru":
		backend, err := cache.NewLRU(cfg.Size)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return backend, nopCloser{}, nil
	case "sqlite":
		backend, err := cache.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return backend, backend, nil
	default:
		return nil, nopCloser{}, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newCompiler wires configuration into compiler options.
func newCompiler(cfg *config.Config, p project, backend styles.Cache, log *zap.Logger) (*styles.Compiler, error) {
	mode, err := styles.ParseMode(cfg.Compiler.Format)
	if err != nil {
		return nil, err
	}
	var programs styles.ProgramCache
	if cfg.Compiler.ProgramCacheSize > 0 {
		if programs, err = styles.NewLRUProgramCache(cfg.Compiler.ProgramCacheSize); err != nil {
			return nil, err
		}
	}
	evaluator, err := styles.NewEvaluator(cfg.Compiler.Engine, programs, nil)
	if err != nil {
		return nil, err
	}

	opts := []styles.Option{
		styles.WithLogger(log),
		styles.WithBreakpoints(p.breakpoints),
		styles.WithFormat(mode),
		styles.WithEvaluator(evaluator),
		styles.WithBatchConcurrency(cfg.Compiler.BatchConcurrency),
		styles.WithActivityConfig(activity.Config{Enabled: cfg.Activity.Enabled, Channel: cfg.Activity.Channel, Verbs: cfg.Activity.Verbs}),
	}
	if backend != nil {
		opts = append(opts, styles.WithCache(backend))
	}
	if cfg.Activity.Enabled {
		opts = append(opts, styles.WithActivityHooks(activity.Hooks{logHook(log.Named("activity"))}))
	}
	return styles.NewCompiler(p.registry, opts...)
}

// logHook reports activity events in the program log.
func logHook(log *zap.Logger) activity.ActivityHook {
	return activity.HookFunc(func(_ context.Context, event activity.Event) error {
		log.Debug("Activity",
			zap.String("verb", event.Verb),
			zap.String("object", event.ObjectType+"/"+event.ObjectID),
			zap.String("channel", event.Channel),
			zap.Any("metadata", event.Metadata))
		return nil
	})
}

var settingsDecoder = hydrate.NewDecoder(
	hydrate.WithPreHook[styles.Settings](hydrate.ExpandDottedKeys),
)

// readSettings decodes a JSON or YAML settings file. scope may be empty.
func readSettings(path, scope string) (styles.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read settings '%s': %w", path, err)
	}
	return settingsDecoder.DecodeDocument(hydrate.Context{Scope: scope, Source: path}, data)
}

// scopeFromPath derives a scope id from a settings file name:
// "Hero Button.yaml" becomes "hero-button".
func scopeFromPath(path string) string {
	base := filepath.Base(path)
	return slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
}
