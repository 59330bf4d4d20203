package activity

import (
	"context"
	"strings"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "styles"

// Config controls what a compiler reports.
type Config struct {
	Enabled bool   `yaml:"enabled"`
	Channel string `yaml:"channel"`
	// Verbs restricts emission to the listed verbs. Empty emits every verb.
	Verbs []string `yaml:"verbs"`
}

// Emitter stamps compiler events with a channel and hands them to hooks.
type Emitter struct {
	hooks   Hooks
	channel string
	verbs   map[string]struct{}
}

// NewEmitter returns nil when cfg is disabled or no hook is usable; a nil
// Emitter is valid and drops everything.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	live := make(Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			live = append(live, hook)
		}
	}
	if !cfg.Enabled || len(live) == 0 {
		return nil
	}
	e := &Emitter{hooks: live, channel: strings.TrimSpace(cfg.Channel)}
	if e.channel == "" {
		e.channel = DefaultChannel
	}
	for _, verb := range cfg.Verbs {
		if verb = strings.ToLower(strings.TrimSpace(verb)); verb != "" {
			if e.verbs == nil {
				e.verbs = make(map[string]struct{})
			}
			e.verbs[verb] = struct{}{}
		}
	}
	return e
}

// Enabled reports whether any event can reach a hook.
func (e *Emitter) Enabled() bool {
	return e != nil
}

// Wants reports whether events with verb would be forwarded. Callers use it
// to skip building events nobody receives.
func (e *Emitter) Wants(verb string) bool {
	if e == nil {
		return false
	}
	if e.verbs == nil {
		return true
	}
	_, ok := e.verbs[strings.ToLower(strings.TrimSpace(verb))]
	return ok
}

// Emit forwards event when its verb is wanted.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Wants(event.Verb) {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	return e.hooks.Notify(ctx, event)
}
