package main

import (
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-styles/config"
)

type envKey struct{}

// localEnv keeps everything a subcommand needs in a single place.
type localEnv struct {
	Cfg *config.Config
	Log *zap.Logger
	Out io.Writer

	start         time.Time
	restoreStdLog func()
}

func envFromContext(ctx context.Context) *localEnv {
	if env, ok := ctx.Value(envKey{}).(*localEnv); ok {
		return env
	}
	panic("localenv not found in context")
}

func contextWithEnv(ctx context.Context, env *localEnv) context.Context {
	if env == nil {
		env = &localEnv{}
	}
	if env.Out == nil {
		env.Out = os.Stdout
	}
	if env.Log == nil {
		env.Log = zap.NewNop()
	}
	env.start = time.Now()
	return context.WithValue(ctx, envKey{}, env)
}

func (e *localEnv) uptime() time.Duration {
	return time.Since(e.start)
}

func (e *localEnv) redirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *localEnv) restoreLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
		e.restoreStdLog = nil
	}
}
