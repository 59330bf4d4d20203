package styles

import "github.com/goliatone/go-styles/pkg/activity"

// WithActivityHooks attaches hooks notified after compilations, skipped fields
// and cache invalidations.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *compilerConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityConfig overrides the emitter defaults: enabled, channel "styles"
// and every verb.
func WithActivityConfig(config activity.Config) Option {
	return func(cfg *compilerConfig) {
		cfg.activity = config
	}
}

// ActivityHooks returns a copy of the configured hooks.
func (c *Compiler) ActivityHooks() activity.Hooks {
	if c == nil {
		return nil
	}
	return cloneActivityHooks(c.cfg.activityHooks)
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	return append(activity.Hooks(nil), hooks...)
}
