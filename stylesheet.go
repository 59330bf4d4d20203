package styles

import "strings"

// Stylesheet is an ordered list of rules and at-rules.
type Stylesheet struct {
	Items []Item
}

// Item is a top-level or nested stylesheet entry: *Rule or *AtRule.
type Item interface {
	item()
}

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property string
	Value    string
}

func (d Declaration) String() string {
	return d.Property + ": " + d.Value
}

// Rule is a selector with its declarations.
type Rule struct {
	Selector     string
	Declarations []Declaration
}

func (*Rule) item() {}

// AtRule is an at-rule such as @media. Name keeps the leading "@". Block
// at-rules hold nested Items (e.g. @media) or Declarations (e.g. @font-face);
// statement at-rules (e.g. @import) have neither.
type AtRule struct {
	Name         string
	Prelude      string
	Block        bool
	Declarations []Declaration
	Items        []Item
}

func (*AtRule) item() {}

// MediaBlock builds an @media at-rule wrapping rules.
func MediaBlock(query string, rules ...*Rule) *AtRule {
	items := make([]Item, 0, len(rules))
	for _, rule := range rules {
		items = append(items, rule)
	}
	return &AtRule{Name: "@media", Prelude: normalizeMediaQuery(query), Block: true, Items: items}
}

// Rules returns the top-level rules, skipping at-rules.
func (s *Stylesheet) Rules() []*Rule {
	if s == nil {
		return nil
	}
	var out []*Rule
	for _, item := range s.Items {
		if rule, ok := item.(*Rule); ok {
			out = append(out, rule)
		}
	}
	return out
}

// Media returns the top-level @media blocks in order.
func (s *Stylesheet) Media() []*AtRule {
	if s == nil {
		return nil
	}
	var out []*AtRule
	for _, item := range s.Items {
		if at, ok := item.(*AtRule); ok && at.Name == "@media" {
			out = append(out, at)
		}
	}
	return out
}

// Empty reports whether the stylesheet renders to nothing.
func (s *Stylesheet) Empty() bool {
	if s == nil {
		return true
	}
	for _, item := range s.Items {
		if !itemEmpty(item) {
			return false
		}
	}
	return true
}

func itemEmpty(item Item) bool {
	switch typed := item.(type) {
	case *Rule:
		return typed == nil || len(typed.Declarations) == 0
	case *AtRule:
		if typed == nil {
			return true
		}
		if !typed.Block {
			return false
		}
		if len(typed.Declarations) > 0 {
			return false
		}
		for _, nested := range typed.Items {
			if !itemEmpty(nested) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// ParseDeclarations splits declaration text ("a: b; c: d;") into declarations.
// Semicolons and colons inside parentheses or quotes do not split. Fragments
// without a colon are dropped.
func ParseDeclarations(text string) []Declaration {
	var out []Declaration
	for _, part := range splitTopLevel(text, ';') {
		property, value, ok := cutTopLevel(part, ':')
		if !ok {
			continue
		}
		property = strings.TrimSpace(property)
		value = collapseSpace(value)
		if property == "" || value == "" {
			continue
		}
		out = append(out, Declaration{Property: property, Value: value})
	}
	return out
}

func splitTopLevel(text string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			parts = append(parts, text[start:i])
			start = i + 1
		}
	}
	return append(parts, text[start:])
}

func cutTopLevel(text string, sep byte) (string, string, bool) {
	parts := splitTopLevel(text, sep)
	if len(parts) < 2 {
		return text, "", false
	}
	return parts[0], text[len(parts[0])+1:], true
}

// collapseSpace trims text and folds whitespace runs to one space, leaving
// quoted strings untouched.
func collapseSpace(text string) string {
	text = strings.TrimSpace(text)
	var sb strings.Builder
	sb.Grow(len(text))
	var quote byte
	space := false
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
		if isSpace(c) {
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		if c == '"' || c == '\'' {
			quote = c
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
