package styles

import (
	"regexp"
	"strings"
)

// Recognised template tokens.
const (
	TokenWrapper     = "{{WRAPPER}}"
	TokenValue       = "{{VALUE}}"
	TokenValueTop    = "{{VALUE.TOP}}"
	TokenValueRight  = "{{VALUE.RIGHT}}"
	TokenValueBottom = "{{VALUE.BOTTOM}}"
	TokenValueLeft   = "{{VALUE.LEFT}}"
	TokenUnit        = "{{UNIT}}"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)

var knownPlaceholders = map[string]struct{}{
	"WRAPPER":      {},
	"VALUE":        {},
	"VALUE.TOP":    {},
	"VALUE.RIGHT":  {},
	"VALUE.BOTTOM": {},
	"VALUE.LEFT":   {},
	"UNIT":         {},
}

// unknownPlaceholders lists tokens in template that the substitutor does not
// recognise, in order of first appearance.
func unknownPlaceholders(template string) []string {
	if !strings.Contains(template, "{{") {
		return nil
	}
	var unknown []string
	seen := map[string]struct{}{}
	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		name := match[1]
		if _, ok := knownPlaceholders[name]; ok {
			continue
		}
		if _, ok := seen[match[0]]; ok {
			continue
		}
		seen[match[0]] = struct{}{}
		unknown = append(unknown, match[0])
	}
	return unknown
}

// normalizePlaceholders rewrites "{{ VALUE }}" style tokens to their canonical
// spacing so substitution can use plain string replacement.
func normalizePlaceholders(template string) string {
	if !strings.Contains(template, "{{") {
		return template
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if _, ok := knownPlaceholders[name]; !ok {
			return match
		}
		return "{{" + name + "}}"
	})
}

func hasSidePlaceholder(template string) bool {
	return strings.Contains(template, TokenValueTop) ||
		strings.Contains(template, TokenValueRight) ||
		strings.Contains(template, TokenValueBottom) ||
		strings.Contains(template, TokenValueLeft)
}
