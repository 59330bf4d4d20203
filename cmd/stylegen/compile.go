package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	styles "github.com/goliatone/go-styles"
)

// runCompile compiles one CSS block per settings file, in argument order.
func runCompile(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)

	p, err := loadProject(env.Cfg, cmd.String("registry"), env.Log)
	if err != nil {
		return err
	}
	backend, closer, err := openCache(env.Cfg.Cache)
	if err != nil {
		return fmt.Errorf("unable to open cache: %w", err)
	}
	defer appendClose(&err, closer, "cache")

	compiler, err := newCompiler(env.Cfg, p, backend, env.Log)
	if err != nil {
		return err
	}

	mode := styles.Mode("")
	if format := cmd.String("format"); format != "" {
		if mode, err = styles.ParseMode(format); err != nil {
			return err
		}
	}

	files := cmd.Args().Slice()
	scope := cmd.String("scope")
	if scope != "" && len(files) > 1 {
		return fmt.Errorf("--scope can only be used with a single settings file")
	}

	var reqs []styles.Request
	if len(files) == 0 {
		if scope == "" {
			return fmt.Errorf("either a settings file or --scope is required")
		}
		// defaults only
		reqs = append(reqs, styles.Request{ScopeID: scope, Mode: mode})
	}
	for _, file := range files {
		id := scope
		if id == "" {
			id = scopeFromPath(file)
		}
		settings, err := readSettings(file, id)
		if err != nil {
			return err
		}
		reqs = append(reqs, styles.Request{ScopeID: id, Settings: settings, Mode: mode})
	}

	results, err := compiler.CompileBatch(ctx, reqs)
	if err != nil {
		return err
	}

	out := env.Out
	if dest := cmd.String("out"); dest != "" {
		f, er := os.Create(dest)
		if er != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", dest, er)
		}
		defer appendClose(&err, f, fmt.Sprintf("destination file '%s'", dest))
		out = f
	}

	blocks := make([]string, 0, len(results))
	for _, result := range results {
		for _, valueErr := range result.Errors {
			env.Log.Warn("Field value rejected", zap.String("scope", result.ScopeID), zap.Error(valueErr))
		}
		if result.CSS != "" {
			blocks = append(blocks, result.CSS)
		}
		env.Log.Debug("Compiled", zap.String("scope", result.ScopeID), zap.String("key", result.Key), zap.Bool("cached", result.CacheHit))
	}
	effective := mode
	if effective == "" {
		effective = compiler.Mode()
	}
	separator := "\n"
	if effective == styles.ModeCompact {
		separator = ""
	}
	if _, err := fmt.Fprint(out, strings.Join(blocks, separator)); err != nil {
		return err
	}

	if cmd.Bool("trace") {
		for _, result := range results {
			data, err := result.Trace.ToJSON()
			if err != nil {
				return err
			}
			env.Log.Info("Trace", zap.String("scope", result.ScopeID), zap.ByteString("trace", data))
		}
	}
	return nil
}

// appendClose closes c and folds a failure into *err.
func appendClose(err *error, c io.Closer, what string) {
	if er := c.Close(); er != nil {
		*err = multierr.Append(*err, fmt.Errorf("unable to close %s: %w", what, er))
	}
}
