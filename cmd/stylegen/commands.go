package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/goliatone/go-styles/config"
	"github.com/goliatone/go-styles/schema/openapi"
)

// runFields lists the registry's fields in registration order.
func runFields(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)

	p, err := loadProject(env.Cfg, cmd.String("registry"), env.Log)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tPATH\tUNIT\tRESPONSIVE\tSELECTORS")
	flat := p.registry.Flat()
	for _, def := range flat.Fields() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%d\n",
			def.ID, def.Type, strings.Join(flat.SettingsPath(def.ID), "."), def.Unit, def.Responsive, len(def.Selectors))
	}
	return tw.Flush()
}

// runSchema writes the OpenAPI document for the registry's settings payload.
func runSchema(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)

	p, err := loadProject(env.Cfg, cmd.String("registry"), env.Log)
	if err != nil {
		return err
	}
	data, err := openapi.NewGenerator(schemaOptions(cmd)...).GenerateJSON(p.registry, p.breakpoints)
	if err != nil {
		return err
	}
	return writeOutput(env, cmd.Args().Get(0), append(data, '\n'))
}

// runValidate checks settings files against the registry schema and reports
// every failing file.
func runValidate(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)

	if cmd.Args().Len() == 0 {
		return fmt.Errorf("at least one settings file is required")
	}
	p, err := loadProject(env.Cfg, cmd.String("registry"), env.Log)
	if err != nil {
		return err
	}
	validator, err := openapi.NewValidator(ctx, p.registry, p.breakpoints, schemaOptions(cmd)...)
	if err != nil {
		return err
	}

	var errs error
	for _, file := range cmd.Args().Slice() {
		settings, err := readSettings(file, "")
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if err := validator.Validate(settings); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", file, err))
			continue
		}
		fmt.Fprintf(env.Out, "%s: ok\n", file)
	}
	return errs
}

func schemaOptions(cmd *cli.Command) []openapi.GeneratorOption {
	var opts []openapi.GeneratorOption
	if cmd.Bool("strict") {
		opts = append(opts, openapi.WithStrictKeys())
	}
	if path := cmd.String("path"); path != "" {
		opts = append(opts, openapi.WithOperation(path, "", ""))
	}
	return opts
}

// outputConfiguration dumps the default or the active configuration.
func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	var (
		err   error
		data  []byte
		state string
	)
	if cmd.Bool("default") {
		state = "default"
		data, err = config.Prepare()
	} else {
		state = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	fname := cmd.Args().Get(0)
	if len(fname) == 0 {
		env.Log.Debug("Outputing configuration", zap.String("state", state), zap.String("file", "STDOUT"))
	} else {
		env.Log.Info("Outputing configuration", zap.String("state", state), zap.String("file", fname))
	}
	return writeOutput(env, fname, data)
}

func writeOutput(env *localEnv, fname string, data []byte) error {
	if len(fname) == 0 {
		_, err := env.Out.Write(data)
		return err
	}
	if err := os.WriteFile(fname, data, 0644); err != nil {
		return fmt.Errorf("unable to write destination file '%s': %w", fname, err)
	}
	return nil
}
