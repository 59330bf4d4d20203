package styles

import (
	"encoding/json"
)

// Trace is the diagnostic record of one compilation: what happened to every
// field, in registration order.
type Trace struct {
	ScopeID string       `json:"scope_id"`
	Key     string       `json:"key,omitempty"`
	Fields  []FieldTrace `json:"fields"`
}

// FieldTrace describes how a single field contributed to the output.
type FieldTrace struct {
	FieldID     string            `json:"field_id"`
	Considered  bool              `json:"considered"`
	SkipReason  SkipReason        `json:"skip_reason,omitempty"`
	Condition   string            `json:"condition,omitempty"`
	Breakpoints []BreakpointTrace `json:"breakpoints,omitempty"`
}

// BreakpointTrace is the per-breakpoint part of a FieldTrace.
type BreakpointTrace struct {
	Breakpoint   string     `json:"breakpoint"`
	Resolved     any        `json:"resolved,omitempty"`
	Source       string     `json:"source,omitempty"`
	Selectors    []string   `json:"selectors,omitempty"`
	Declarations []string   `json:"declarations,omitempty"`
	SkipReason   SkipReason `json:"skip_reason,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// Provenance details how a specific layer contributed to a settings path.
type Provenance struct {
	Layer      string `json:"layer"`
	Label      string `json:"label,omitempty"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Path       string `json:"path"`
	Value      any    `json:"value,omitempty"`
	Found      bool   `json:"found"`
}

// Field returns the trace entry for id.
func (t Trace) Field(id string) (FieldTrace, bool) {
	for _, field := range t.Fields {
		if field.FieldID == id {
			return field, true
		}
	}
	return FieldTrace{}, false
}

// Emitted reports whether the field produced at least one declaration.
func (f FieldTrace) Emitted() bool {
	for _, bp := range f.Breakpoints {
		if len(bp.Declarations) > 0 {
			return true
		}
	}
	return false
}

// ToJSON serialises the trace for logging or tooling.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload previously generated via ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
