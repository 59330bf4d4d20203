package openapi

import (
	"sort"

	styles "github.com/goliatone/go-styles"
)

// Patterns mirror the value parsers for untrimmed input.
const (
	colorPattern      = `^(#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})|[rR][gG][bB][aA]?\(\s*[^()]+\)|var\(\s*--[A-Za-z0-9_-]+\s*(,[^()]*)?\))$`
	numberUnitPattern = `^[-+]?([0-9]+\.?[0-9]*|\.[0-9]+)\s*[A-Za-z%]*$`
	numericPattern    = `^[-+]?([0-9]+\.?[0-9]*|\.[0-9]+)$`
)

type schemaNode struct {
	Type        string
	Format      string
	Description string
	Properties  map[string]*schemaNode
	Required    []string
	Enum        []any
	Default     any
	Pattern     string
	AnyOf       []*schemaNode
	// Closed renders additionalProperties: false.
	Closed     bool
	extensions map[string]any
}

func newObjectNode() *schemaNode {
	return &schemaNode{
		Type:       "object",
		Properties: map[string]*schemaNode{},
	}
}

func (n *schemaNode) child(name string) *schemaNode {
	if existing, ok := n.Properties[name]; ok {
		return existing
	}
	node := newObjectNode()
	n.Properties[name] = node
	return node
}

func (n *schemaNode) toMap() map[string]any {
	result := map[string]any{}
	if n.Type != "" {
		result["type"] = n.Type
	}
	if n.Format != "" {
		result["format"] = n.Format
	}
	if n.Description != "" {
		result["description"] = n.Description
	}
	if n.Default != nil {
		result["default"] = n.Default
	}
	if len(n.Enum) > 0 {
		result["enum"] = n.Enum
	}
	if n.Pattern != "" {
		result["pattern"] = n.Pattern
	}
	if len(n.Properties) > 0 || n.Type == "object" {
		props := make(map[string]any, len(n.Properties))
		for name, child := range n.Properties {
			props[name] = child.toMap()
		}
		result["properties"] = props
	}
	if len(n.Required) > 0 {
		required := append([]string{}, n.Required...)
		sort.Strings(required)
		result["required"] = required
	}
	if len(n.AnyOf) > 0 {
		variants := make([]any, len(n.AnyOf))
		for i, variant := range n.AnyOf {
			variants[i] = variant.toMap()
		}
		result["anyOf"] = variants
	}
	if n.Closed {
		result["additionalProperties"] = false
	}
	for key, value := range n.extensions {
		result[key] = value
	}
	return result
}

// valueNode returns the schema of one plain (non-responsive) value of def.
func valueNode(def styles.FieldDefinition) *schemaNode {
	switch def.Type {
	case styles.FieldColor:
		return &schemaNode{Type: "string", Pattern: colorPattern}
	case styles.FieldScalar:
		return &schemaNode{AnyOf: []*schemaNode{
			{Type: "number"},
			{Type: "string", Pattern: numberUnitPattern},
			{
				Type: "object",
				Properties: map[string]*schemaNode{
					"size": {AnyOf: numeric()},
					"unit": {Type: "string"},
				},
				Required: []string{"size"},
			},
		}}
	case styles.FieldDimension:
		node := &schemaNode{
			Type: "object",
			Properties: map[string]*schemaNode{
				"top":    {AnyOf: numeric()},
				"right":  {AnyOf: numeric()},
				"bottom": {AnyOf: numeric()},
				"left":   {AnyOf: numeric()},
				"unit":   {Type: "string"},
			},
			Required: []string{"top", "right", "bottom", "left"},
		}
		return node
	case styles.FieldToggle:
		return &schemaNode{AnyOf: []*schemaNode{
			{Type: "boolean"},
			{Type: "string", Enum: []any{"", "yes", "no", "true", "false", "on", "off", "1", "0"}},
			{Type: "number", Enum: []any{0, 1}},
		}}
	case styles.FieldSelect:
		node := &schemaNode{Type: "string"}
		for _, option := range def.Options {
			node.Enum = append(node.Enum, option)
		}
		return node
	default:
		return &schemaNode{}
	}
}

func numeric() []*schemaNode {
	return []*schemaNode{
		{Type: "number"},
		{Type: "string", Pattern: numericPattern},
	}
}
