// Command stylegen compiles widget style settings into scoped CSS.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/goliatone/go-styles/config"
)

const appName = "stylegen"

var version = "dev"

// initializeAppContext loads configuration and prepares logging after the
// command line has been parsed.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	env := envFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		env.Cfg.Logging.ConsoleLogger.Level = "debug"
	}
	if env.Log, err = env.Cfg.Logging.Prepare(appName); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.redirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", version), zap.String("runtime", runtime.Version()))
	if len(configFile) == 0 {
		env.Log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	env.Log.Debug("Program ended", zap.Duration("elapsed", env.uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	env.restoreLog()
	return nil
}

// set when the error was already logged by exitErrHandler
var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := envFromContext(ctx)
	if env.Log != nil && env.Cfg != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func registryFlag() cli.Flag {
	return &cli.StringFlag{Name: "registry", Aliases: []string{"r"}, Usage: "load field registry from `FILE` (YAML)"}
}

func schemaFlags() []cli.Flag {
	return []cli.Flag{
		registryFlag(),
		&cli.BoolFlag{Name: "strict", Usage: "reject settings keys no field declares"},
		&cli.StringFlag{Name: "path", Usage: "operation `PATH` used in the document"},
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:            appName,
		Usage:           "compiles widget style settings into scoped CSS",
		Version:         version + " (" + runtime.Version() + ")",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log debug messages to the console"},
		},
		Commands: []*cli.Command{
			{
				Name:         "compile",
				Usage:        "Compiles settings file(s) into CSS",
				OnUsageError: usageErrorHandler,
				Action:       runCompile,
				ArgsUsage:    "[SETTINGS...]",
				Flags: []cli.Flag{
					registryFlag(),
					&cli.StringFlag{Name: "scope", Aliases: []string{"s"}, Usage: "scope `ID` (default: derived from the settings file name)"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "output `MODE` (expanded or compact), overrides configuration"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write CSS to `FILE` instead of STDOUT"},
					&cli.BoolFlag{Name: "trace", Usage: "log the per-field compilation trace"},
				},
			},
			{
				Name:         "fields",
				Usage:        "Lists registry fields in registration order",
				OnUsageError: usageErrorHandler,
				Action:       runFields,
				Flags:        []cli.Flag{registryFlag()},
			},
			{
				Name:         "schema",
				Usage:        "Outputs the OpenAPI document of the settings payload",
				OnUsageError: usageErrorHandler,
				Action:       runSchema,
				ArgsUsage:    "[DESTINATION]",
				Flags:        schemaFlags(),
			},
			{
				Name:         "validate",
				Usage:        "Validates settings file(s) against the registry schema",
				OnUsageError: usageErrorHandler,
				Action:       runValidate,
				ArgsUsage:    "SETTINGS...",
				Flags:        schemaFlags(),
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "[DESTINATION]",
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(contextWithEnv(context.Background(), nil), os.Interrupt, syscall.SIGTERM)

	var err error
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = newApp().Run(ctx, os.Args)
}
