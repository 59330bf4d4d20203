package styles

import (
	"fmt"
	"strings"
)

// Mode selects the output layout of rendered CSS.
type Mode string

const (
	// ModeExpanded puts one declaration per line, indents two spaces per
	// nesting level and separates rules with a blank line.
	ModeExpanded Mode = "expanded"
	// ModeCompact strips all insignificant whitespace, comments and trailing
	// semicolons.
	ModeCompact Mode = "compact"
)

// ParseMode converts a string (case-insensitive) into a Mode. The empty string
// maps to ModeExpanded.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(ModeExpanded):
		return ModeExpanded, nil
	case string(ModeCompact), "minified", "min":
		return ModeCompact, nil
	default:
		return "", fmt.Errorf("styles: unknown format mode %q", value)
	}
}

// Format parses cssText and renders it in mode. Comments are dropped in both
// modes.
func Format(cssText string, mode Mode) (string, error) {
	sheet, err := ParseStylesheet(cssText)
	if err != nil {
		return "", err
	}
	return Render(sheet, mode), nil
}

// Render writes sheet in mode. Empty rules and empty block at-rules are not
// written. Expanded output ends with a newline; compact output does not.
func Render(sheet *Stylesheet, mode Mode) string {
	if sheet == nil {
		return ""
	}
	var sb strings.Builder
	if mode == ModeCompact {
		for _, item := range sheet.Items {
			renderCompact(&sb, item)
		}
		return sb.String()
	}
	renderExpandedItems(&sb, sheet.Items, 0)
	if sb.Len() > 0 {
		sb.WriteByte('\n')
	}
	return sb.String()
}

func renderExpandedItems(sb *strings.Builder, items []Item, depth int) {
	first := true
	for _, item := range items {
		if itemEmpty(item) {
			continue
		}
		if !first {
			sb.WriteString("\n\n")
		}
		first = false
		renderExpanded(sb, item, depth)
	}
}

func renderExpanded(sb *strings.Builder, item Item, depth int) {
	indent := strings.Repeat("  ", depth)
	switch typed := item.(type) {
	case *Rule:
		sb.WriteString(indent)
		sb.WriteString(typed.Selector)
		sb.WriteString(" {\n")
		writeExpandedDeclarations(sb, typed.Declarations, depth+1)
		sb.WriteString(indent)
		sb.WriteString("}")
	case *AtRule:
		sb.WriteString(indent)
		sb.WriteString(typed.Name)
		if typed.Prelude != "" {
			sb.WriteByte(' ')
			sb.WriteString(typed.Prelude)
		}
		if !typed.Block {
			sb.WriteString(";")
			return
		}
		sb.WriteString(" {\n")
		writeExpandedDeclarations(sb, typed.Declarations, depth+1)
		if len(typed.Declarations) > 0 && len(typed.Items) > 0 {
			sb.WriteByte('\n')
		}
		if len(typed.Items) > 0 {
			renderExpandedItems(sb, typed.Items, depth+1)
			sb.WriteByte('\n')
		}
		sb.WriteString(indent)
		sb.WriteString("}")
	}
}

func writeExpandedDeclarations(sb *strings.Builder, declarations []Declaration, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, decl := range declarations {
		sb.WriteString(indent)
		sb.WriteString(decl.Property)
		sb.WriteString(": ")
		sb.WriteString(decl.Value)
		sb.WriteString(";\n")
	}
}

func renderCompact(sb *strings.Builder, item Item) {
	if itemEmpty(item) {
		return
	}
	switch typed := item.(type) {
	case *Rule:
		sb.WriteString(compactSelector(typed.Selector))
		sb.WriteByte('{')
		writeCompactDeclarations(sb, typed.Declarations)
		sb.WriteByte('}')
	case *AtRule:
		sb.WriteString(typed.Name)
		if typed.Prelude != "" {
			sb.WriteByte(' ')
			sb.WriteString(compactPrelude(typed.Prelude))
		}
		if !typed.Block {
			sb.WriteByte(';')
			return
		}
		sb.WriteByte('{')
		writeCompactDeclarations(sb, typed.Declarations)
		if len(typed.Declarations) > 0 && len(typed.Items) > 0 {
			sb.WriteByte(';')
		}
		for _, nested := range typed.Items {
			renderCompact(sb, nested)
		}
		sb.WriteByte('}')
	}
}

func writeCompactDeclarations(sb *strings.Builder, declarations []Declaration) {
	for i, decl := range declarations {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(decl.Property)
		sb.WriteByte(':')
		sb.WriteString(compactValue(decl.Value))
	}
}

// compactSelector drops whitespace around combinators and commas.
func compactSelector(selector string) string {
	return squeeze(collapseSpace(selector), ",>+~")
}

// compactPrelude drops whitespace after colons and around commas and
// parentheses; keywords such as "and" keep their separating spaces.
func compactPrelude(prelude string) string {
	out := squeeze(collapseSpace(prelude), ",:")
	out = strings.ReplaceAll(out, "( ", "(")
	return strings.ReplaceAll(out, " )", ")")
}

func compactValue(value string) string {
	return squeeze(collapseSpace(value), ",")
}

// squeeze removes single spaces adjacent to any of the punctuation bytes,
// outside quoted strings.
func squeeze(text, punctuation string) string {
	if !strings.ContainsAny(text, punctuation) {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text))
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			sb.WriteByte(c)
			if c == '\\' && i+1 < len(text) {
				i++
				sb.WriteByte(text[i])
			} else if c == quote {
				quote = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			sb.WriteByte(c)
			continue
		}
		if c == ' ' {
			prevPunct := i > 0 && strings.IndexByte(punctuation, text[i-1]) >= 0
			nextPunct := i+1 < len(text) && strings.IndexByte(punctuation, text[i+1]) >= 0
			if prevPunct || nextPunct {
				continue
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
