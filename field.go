package styles

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-styles/layering"
)

// FieldType identifies the closed set of style field kinds. Each kind maps to
// exactly one Value variant produced by the resolver.
type FieldType string

const (
	FieldScalar    FieldType = "scalar"
	FieldColor     FieldType = "color"
	FieldDimension FieldType = "dimension"
	FieldToggle    FieldType = "toggle"
	FieldSelect    FieldType = "select"
)

var fieldTypes = []FieldType{FieldScalar, FieldColor, FieldDimension, FieldToggle, FieldSelect}

// FieldTypes returns the supported field types in declaration order.
func FieldTypes() []FieldType {
	out := make([]FieldType, len(fieldTypes))
	copy(out, fieldTypes)
	return out
}

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	for _, known := range fieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseFieldType converts a string (case-insensitive) into a FieldType.
func ParseFieldType(value string) (FieldType, error) {
	t := FieldType(strings.ToLower(strings.TrimSpace(value)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFieldType, value)
	}
	return t, nil
}

// SelectorRule pairs a selector template with a property template. For toggle
// fields Property holds the fixed declaration set emitted when enabled.
type SelectorRule struct {
	Selector string `json:"selector" yaml:"selector"`
	Property string `json:"property" yaml:"property"`
}

// FieldDefinition describes a single style-affecting input.
type FieldDefinition struct {
	ID         string         `json:"id" yaml:"id"`
	Type       FieldType      `json:"type" yaml:"type"`
	Label      string         `json:"label,omitempty" yaml:"label,omitempty"`
	Default    any            `json:"default,omitempty" yaml:"default,omitempty"`
	Unit       string         `json:"unit,omitempty" yaml:"unit,omitempty"`
	Responsive bool           `json:"responsive,omitempty" yaml:"responsive,omitempty"`
	Selectors  []SelectorRule `json:"selectors,omitempty" yaml:"selectors,omitempty"`
	// Options restricts select values. Empty accepts any non-empty string.
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
	// Condition is an optional expression; the field only renders when it
	// evaluates truthy against the other fields' values.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// Decorative reports whether the field produces no CSS at all.
func (d FieldDefinition) Decorative() bool {
	return len(d.Selectors) == 0
}

func (d FieldDefinition) clone() FieldDefinition {
	out := d
	if len(d.Selectors) > 0 {
		out.Selectors = append([]SelectorRule(nil), d.Selectors...)
	}
	if len(d.Options) > 0 {
		out.Options = append([]string(nil), d.Options...)
	}
	out.Default = layering.Clone(d.Default)
	return out
}

func (d FieldDefinition) allowsOption(value string) bool {
	if len(d.Options) == 0 {
		return value != ""
	}
	for _, option := range d.Options {
		if option == value {
			return true
		}
	}
	return false
}
