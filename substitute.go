package styles

import (
	"fmt"
	"strings"
)

// Substitute fills a selector/property template pair for one resolved value.
//
// {{WRAPPER}} becomes "#"+scopeID. {{VALUE}} becomes the value's string form,
// except for dimensions where it expands to the unit-suffixed four-side
// shorthand. {{VALUE.TOP}} and friends pick single sides. {{UNIT}} becomes
// the value's own unit when it carries one, otherwise unit. Unknown tokens are
// left literal.
//
// Disabled toggles return empty strings and a nil error: there is nothing to
// emit. Colors are re-checked so hand-built values cannot bypass the shape
// check.
func Substitute(selectorTemplate, propertyTemplate string, value Value, unit, scopeID string) (string, string, error) {
	if value == nil {
		return "", "", fmt.Errorf("styles: substitute: nil value")
	}
	switch typed := value.(type) {
	case ToggleValue:
		if !typed.On {
			return "", "", nil
		}
	case ColorValue:
		if !IsColor(typed.Color) {
			return "", "", &ValueError{Type: FieldColor, Value: typed.Color, Reason: "not a recognised color"}
		}
	}
	if own := value.Unit(); own != "" {
		unit = own
	}

	pairs := []string{
		TokenWrapper, "#" + scopeID,
		TokenUnit, unit,
	}
	if dim, ok := value.(DimensionValue); ok {
		pairs = append(pairs,
			TokenValueTop, formatNumber(dim.Top),
			TokenValueRight, formatNumber(dim.Right),
			TokenValueBottom, formatNumber(dim.Bottom),
			TokenValueLeft, formatNumber(dim.Left),
			TokenValue, dim.Shorthand(unit),
		)
	} else {
		text := value.String()
		pairs = append(pairs,
			TokenValueTop, text,
			TokenValueRight, text,
			TokenValueBottom, text,
			TokenValueLeft, text,
			TokenValue, text,
		)
	}
	replacer := strings.NewReplacer(pairs...)

	selector := collapseSpace(replacer.Replace(normalizePlaceholders(selectorTemplate)))
	declarations := strings.TrimSpace(replacer.Replace(normalizePlaceholders(propertyTemplate)))
	return selector, declarations, nil
}
