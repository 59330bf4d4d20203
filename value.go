package styles

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Value is a resolved, type-checked field value. The set of implementations is
// closed: ScalarValue, ColorValue, DimensionValue, ToggleValue and SelectValue.
type Value interface {
	// Kind returns the field type this value belongs to.
	Kind() FieldType
	// String renders the value for a bare {{VALUE}} token.
	String() string
	// Unit returns a unit carried by the value itself, or "".
	Unit() string
	// Native returns a JSON-compatible form, used by conditions and traces.
	Native() any

	sealed()
}

// ScalarValue is a single number with an optional unit override.
type ScalarValue struct {
	Number   float64
	UnitName string
}

func (ScalarValue) Kind() FieldType  { return FieldScalar }
func (v ScalarValue) String() string { return formatNumber(v.Number) }
func (v ScalarValue) Unit() string   { return v.UnitName }
func (v ScalarValue) Native() any {
	if v.UnitName == "" {
		return v.Number
	}
	return map[string]any{"size": v.Number, "unit": v.UnitName}
}
func (ScalarValue) sealed() {}

// ColorValue is a CSS color that passed the shape check.
type ColorValue struct {
	Color string
}

func (ColorValue) Kind() FieldType  { return FieldColor }
func (v ColorValue) String() string { return v.Color }
func (ColorValue) Unit() string     { return "" }
func (v ColorValue) Native() any    { return v.Color }
func (ColorValue) sealed()          {}

// DimensionValue carries four box-model sides.
type DimensionValue struct {
	Top, Right, Bottom, Left float64
	UnitName                 string
}

func (DimensionValue) Kind() FieldType { return FieldDimension }

// String joins the sides without units in top-right-bottom-left order. The
// substitutor uses Shorthand for unit-suffixed output.
func (v DimensionValue) String() string {
	return v.Shorthand("")
}

// Shorthand joins the four sides, each suffixed with unit, in
// top-right-bottom-left order.
func (v DimensionValue) Shorthand(unit string) string {
	return strings.Join([]string{
		formatNumber(v.Top) + unit,
		formatNumber(v.Right) + unit,
		formatNumber(v.Bottom) + unit,
		formatNumber(v.Left) + unit,
	}, " ")
}

// Side returns the value of one side ("top", "right", "bottom" or "left").
func (v DimensionValue) Side(side string) float64 {
	switch side {
	case "top":
		return v.Top
	case "right":
		return v.Right
	case "bottom":
		return v.Bottom
	default:
		return v.Left
	}
}

func (v DimensionValue) Unit() string { return v.UnitName }
func (v DimensionValue) Native() any {
	out := map[string]any{"top": v.Top, "right": v.Right, "bottom": v.Bottom, "left": v.Left}
	if v.UnitName != "" {
		out["unit"] = v.UnitName
	}
	return out
}
func (DimensionValue) sealed() {}

// ToggleValue is an on/off switch. Enabled toggles emit their fixed
// declarations; disabled toggles emit nothing.
type ToggleValue struct {
	On bool
}

func (ToggleValue) Kind() FieldType  { return FieldToggle }
func (v ToggleValue) String() string { return strconv.FormatBool(v.On) }
func (ToggleValue) Unit() string     { return "" }
func (v ToggleValue) Native() any    { return v.On }
func (ToggleValue) sealed()          {}

// SelectValue is one of the field's allowed options.
type SelectValue struct {
	Option string
}

func (SelectValue) Kind() FieldType  { return FieldSelect }
func (v SelectValue) String() string { return v.Option }
func (SelectValue) Unit() string     { return "" }
func (v SelectValue) Native() any    { return v.Option }
func (SelectValue) sealed()          {}

var (
	hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	rgbColorPattern = regexp.MustCompile(`^rgba?\(\s*[^()]+\)$`)
	varColorPattern = regexp.MustCompile(`^var\(\s*--[A-Za-z0-9_-]+\s*(?:,[^()]*)?\)$`)
)

// IsColor reports whether value passes the lightweight color shape check: a
// hex triplet or sextet, rgb(...), rgba(...) or a custom property reference.
func IsColor(value string) bool {
	value = strings.TrimSpace(value)
	return hexColorPattern.MatchString(value) ||
		rgbColorPattern.MatchString(strings.ToLower(value)) ||
		varColorPattern.MatchString(value)
}

// ParseValue converts a raw settings value into the Value variant for def. The
// returned error describes why the value failed its shape check.
func ParseValue(def FieldDefinition, raw any) (Value, error) {
	switch def.Type {
	case FieldScalar:
		return parseScalar(raw)
	case FieldColor:
		return parseColor(raw)
	case FieldDimension:
		return parseDimension(raw)
	case FieldToggle:
		return parseToggle(raw)
	case FieldSelect:
		return parseSelect(def, raw)
	default:
		return nil, fmt.Errorf("unsupported field type %q", def.Type)
	}
}

func parseScalar(raw any) (Value, error) {
	if obj, ok := raw.(map[string]any); ok {
		size, ok := obj["size"]
		if !ok {
			return nil, fmt.Errorf("object scalar requires a size")
		}
		number, err := toNumber(size)
		if err != nil {
			return nil, err
		}
		unit, _ := obj["unit"].(string)
		return ScalarValue{Number: number, UnitName: strings.TrimSpace(unit)}, nil
	}
	if text, ok := raw.(string); ok {
		number, unit, err := splitNumberUnit(text)
		if err != nil {
			return nil, err
		}
		return ScalarValue{Number: number, UnitName: unit}, nil
	}
	number, err := toNumber(raw)
	if err != nil {
		return nil, err
	}
	return ScalarValue{Number: number}, nil
}

func parseColor(raw any) (Value, error) {
	text, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("color must be a string")
	}
	text = strings.TrimSpace(text)
	if !IsColor(text) {
		return nil, fmt.Errorf("not a recognised color")
	}
	return ColorValue{Color: text}, nil
}

var dimensionSides = []string{"top", "right", "bottom", "left"}

func parseDimension(raw any) (Value, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("dimension must be an object with top, right, bottom and left")
	}
	var sides [4]float64
	for i, side := range dimensionSides {
		value, ok := obj[side]
		if !ok || value == nil || value == "" {
			return nil, fmt.Errorf("dimension side %q is missing", side)
		}
		number, err := toNumber(value)
		if err != nil {
			return nil, fmt.Errorf("dimension side %q: %w", side, err)
		}
		sides[i] = number
	}
	unit, _ := obj["unit"].(string)
	return DimensionValue{
		Top:      sides[0],
		Right:    sides[1],
		Bottom:   sides[2],
		Left:     sides[3],
		UnitName: strings.TrimSpace(unit),
	}, nil
}

func parseToggle(raw any) (Value, error) {
	switch typed := raw.(type) {
	case bool:
		return ToggleValue{On: typed}, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "yes", "true", "on", "1":
			return ToggleValue{On: true}, nil
		case "", "no", "false", "off", "0":
			return ToggleValue{On: false}, nil
		}
		return nil, fmt.Errorf("toggle string must be yes/no or true/false")
	default:
		number, err := toNumber(raw)
		if err != nil {
			return nil, fmt.Errorf("toggle must be a boolean")
		}
		switch number {
		case 0:
			return ToggleValue{On: false}, nil
		case 1:
			return ToggleValue{On: true}, nil
		}
		return nil, fmt.Errorf("toggle number must be 0 or 1")
	}
}

func parseSelect(def FieldDefinition, raw any) (Value, error) {
	text, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("select value must be a string")
	}
	text = strings.TrimSpace(text)
	if !def.allowsOption(text) {
		if len(def.Options) == 0 {
			return nil, fmt.Errorf("select value must not be empty")
		}
		return nil, fmt.Errorf("%q is not one of %s", text, strings.Join(def.Options, ", "))
	}
	return SelectValue{Option: text}, nil
}

func toNumber(raw any) (float64, error) {
	var number float64
	switch typed := raw.(type) {
	case float64:
		number = typed
	case float32:
		number = float64(typed)
	case int:
		number = float64(typed)
	case int8:
		number = float64(typed)
	case int16:
		number = float64(typed)
	case int32:
		number = float64(typed)
	case int64:
		number = float64(typed)
	case uint:
		number = float64(typed)
	case uint8:
		number = float64(typed)
	case uint16:
		number = float64(typed)
	case uint32:
		number = float64(typed)
	case uint64:
		number = float64(typed)
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return 0, fmt.Errorf("not numeric")
		}
		number = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not numeric", typed)
		}
		number = parsed
	default:
		return 0, fmt.Errorf("not numeric")
	}
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return number, nil
}

var numberUnitPattern = regexp.MustCompile(`^([-+]?(?:\d+\.?\d*|\.\d+))\s*([A-Za-z%]*)$`)

// splitNumberUnit accepts "12", "12px" or "1.5 em".
func splitNumberUnit(text string) (float64, string, error) {
	match := numberUnitPattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return 0, "", fmt.Errorf("%q is not numeric", text)
	}
	number, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, "", fmt.Errorf("%q is not numeric", text)
	}
	return number, match[2], nil
}

func formatNumber(number float64) string {
	if number == 0 {
		return "0"
	}
	return strconv.FormatFloat(number, 'f', -1, 64)
}
