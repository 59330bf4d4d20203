package styles

import (
	"strings"

	"github.com/goliatone/go-styles/layering"
)

// Settings is a submitted settings payload: nested maps mirroring the group
// path down to each field id.
type Settings map[string]any

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	if s == nil {
		return nil
	}
	cloned, _ := layering.Clone(map[string]any(s)).(map[string]any)
	return Settings(cloned)
}

// SkipReason explains why a field (or one of its breakpoints) produced no CSS.
type SkipReason string

const (
	SkipNone            SkipReason = ""
	SkipNoValue         SkipReason = "no-value"
	SkipInvalidValue    SkipReason = "invalid-value"
	SkipDecorative      SkipReason = "decorative"
	SkipToggleOff       SkipReason = "toggle-off"
	SkipCondition       SkipReason = "condition-false"
	SkipUnsetBreakpoint SkipReason = "breakpoint-unset"
)

// Value sources recorded when no layer stack is involved.
const (
	SourceSettings = "settings"
	SourceDefault  = "default"
)

// BreakpointValue is the resolution outcome of one field at one breakpoint.
type BreakpointValue struct {
	Breakpoint string
	Value      Value
	Raw        any
	Source     string
	Skip       SkipReason
	Err        *ValueError
}

// ResolvedField is the typed, default-filled view of a single field.
type ResolvedField struct {
	Definition FieldDefinition
	Path       []string
	// Values holds one entry per breakpoint in table order; non-responsive
	// fields only carry the unconditional breakpoint.
	Values []BreakpointValue
	Skip   SkipReason
}

// Value returns the usable value at breakpoint.
func (f ResolvedField) Value(breakpoint string) (Value, bool) {
	for _, entry := range f.Values {
		if entry.Breakpoint == breakpoint && entry.Value != nil {
			return entry.Value, true
		}
	}
	return nil, false
}

// Skipped reports whether the field produces nothing at any breakpoint.
func (f ResolvedField) Skipped() bool {
	return f.Skip != SkipNone
}

// ResolvedSettings is the outcome of resolving a whole registry once, before
// any substitution runs.
type ResolvedSettings struct {
	Fields []ResolvedField
	index  map[string]int
}

// Field returns the resolved field registered under id.
func (r ResolvedSettings) Field(id string) (ResolvedField, bool) {
	i, ok := r.index[id]
	if !ok {
		return ResolvedField{}, false
	}
	return r.Fields[i], true
}

// Errors returns every value error collected during resolution, in field
// order.
func (r ResolvedSettings) Errors() []*ValueError {
	var out []*ValueError
	for _, field := range r.Fields {
		for _, entry := range field.Values {
			if entry.Err != nil {
				out = append(out, entry.Err)
			}
		}
	}
	return out
}

// Snapshot maps each field id to the native form of its unconditional value.
// Field conditions evaluate against it.
func (r ResolvedSettings) Snapshot() map[string]any {
	out := make(map[string]any, len(r.Fields))
	for _, field := range r.Fields {
		if len(field.Values) == 0 || field.Values[0].Value == nil {
			out[field.Definition.ID] = nil
			continue
		}
		out[field.Definition.ID] = field.Values[0].Value.Native()
	}
	return out
}

type sourceFunc func(path ...string) (string, bool)

// Resolve resolves every field of reg against settings in registration order.
func Resolve(reg *Registry, table BreakpointTable, settings Settings) ResolvedSettings {
	return resolveAll(reg, table, settings, nil)
}

// ResolveLayers merges stack and resolves against the result, recording which
// layer supplied every value.
func ResolveLayers(reg *Registry, table BreakpointTable, stack *LayerStack) ResolvedSettings {
	return resolveAll(reg, table, stack.Merge(), stack.Source)
}

func resolveAll(reg *Registry, table BreakpointTable, settings Settings, sources sourceFunc) ResolvedSettings {
	flat := reg.Flat()
	out := ResolvedSettings{
		Fields: make([]ResolvedField, 0, flat.Len()),
		index:  make(map[string]int, flat.Len()),
	}
	for _, id := range flat.ids {
		entry := flat.entry(id)
		field := resolveField(entry.def, entry.path, table, settings, sources)
		out.index[id] = len(out.Fields)
		out.Fields = append(out.Fields, field)
	}
	return out
}

// ResolveField resolves a single definition found at group path. A field with
// neither a submitted value nor a default is skipped, never an error.
func ResolveField(def FieldDefinition, path []string, table BreakpointTable, settings Settings) ResolvedField {
	return resolveField(def, path, table, settings, nil)
}

func resolveField(def FieldDefinition, path []string, table BreakpointTable, settings Settings, sources sourceFunc) ResolvedField {
	field := ResolvedField{
		Definition: def,
		Path:       append([]string(nil), path...),
	}
	if def.Decorative() {
		field.Skip = SkipDecorative
		return field
	}
	if table.IsZero() {
		table = DefaultBreakpoints()
	}

	settingsPath := append(append([]string(nil), path...), def.ID)
	submitted, hasSubmitted := layering.Lookup(settings, settingsPath...)
	if hasSubmitted && !present(def, submitted) {
		hasSubmitted = false
	}

	unconditional := table.Unconditional().Name
	breakpoints := []string{unconditional}
	if def.Responsive {
		breakpoints = breakpoints[:0]
		for _, bp := range table.entries {
			breakpoints = append(breakpoints, bp.Name)
		}
	}

	found := false
	for _, bp := range breakpoints {
		entry := BreakpointValue{Breakpoint: bp}
		raw, source, ok := pick(def, table, bp, unconditional, submitted, hasSubmitted)
		if !ok {
			entry.Skip = SkipUnsetBreakpoint
			field.Values = append(field.Values, entry)
			continue
		}
		found = true
		entry.Raw = layering.Clone(raw)
		entry.Source = source
		if source == SourceSettings && sources != nil {
			lookup := settingsPath
			if isBreakpointMap(submitted, table) {
				lookup = append(append([]string(nil), settingsPath...), bp)
			}
			if layer, ok := sources(lookup...); ok {
				entry.Source = layer
			}
		}
		value, err := ParseValue(def, raw)
		if err != nil {
			entry.Skip = SkipInvalidValue
			entry.Err = &ValueError{
				FieldID:    def.ID,
				Type:       def.Type,
				Breakpoint: bp,
				Value:      raw,
				Reason:     err.Error(),
			}
		} else {
			entry.Value = value
		}
		field.Values = append(field.Values, entry)
	}
	if !found {
		field.Skip = SkipNoValue
		field.Values = nil
	}
	return field
}

// pick chooses the raw value for breakpoint bp: submitted first, then the
// default. A plain (non per-breakpoint) value only applies to the
// unconditional breakpoint.
func pick(def FieldDefinition, table BreakpointTable, bp, unconditional string, submitted any, hasSubmitted bool) (any, string, bool) {
	if hasSubmitted {
		if raw, ok := forBreakpoint(def, table, submitted, bp, unconditional); ok {
			return raw, SourceSettings, true
		}
	}
	if def.Default != nil && present(def, def.Default) {
		if raw, ok := forBreakpoint(def, table, def.Default, bp, unconditional); ok {
			return raw, SourceDefault, true
		}
	}
	return nil, "", false
}

func forBreakpoint(def FieldDefinition, table BreakpointTable, raw any, bp, unconditional string) (any, bool) {
	if isBreakpointMap(raw, table) {
		value, ok := raw.(map[string]any)[bp]
		if !ok || !present(def, value) {
			return nil, false
		}
		return value, true
	}
	if bp != unconditional {
		return nil, false
	}
	return raw, true
}

// isBreakpointMap reports whether raw is a per-breakpoint map: a non-empty
// object whose keys are all breakpoint names.
func isBreakpointMap(raw any, table BreakpointTable) bool {
	obj, ok := raw.(map[string]any)
	if !ok || len(obj) == 0 {
		return false
	}
	for key := range obj {
		if !table.Has(key) {
			return false
		}
	}
	return true
}

// present treats nil, empty objects and blank strings as unset, except for
// toggles where an empty string means off.
func present(def FieldDefinition, raw any) bool {
	switch typed := raw.(type) {
	case nil:
		return false
	case map[string]any:
		return len(typed) > 0
	case Settings:
		return len(typed) > 0
	}
	if text, ok := raw.(string); ok && strings.TrimSpace(text) == "" {
		return def.Type == FieldToggle
	}
	return true
}
