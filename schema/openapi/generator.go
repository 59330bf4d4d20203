package openapi

import (
	"context"
	"encoding/json"
	"fmt"

	styles "github.com/goliatone/go-styles"
)

// Generator renders OpenAPI documents for style registries.
type Generator struct {
	config generatorConfig
}

// NewGenerator constructs a Generator.
func NewGenerator(opts ...GeneratorOption) *Generator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Generator{config: cfg}
}

// Generate returns the OpenAPI document describing reg's settings payload. The
// document is checked with kin-openapi before it is returned.
// Responsive fields accept per-breakpoint maps keyed by table's names; a zero
// table falls back to styles.DefaultBreakpoints.
func (g *Generator) Generate(reg *styles.Registry, table styles.BreakpointTable) (map[string]any, error) {
	if reg == nil {
		return nil, styles.ErrRegistryRequired
	}
	if table.IsZero() {
		table = styles.DefaultBreakpoints()
	}
	root, err := g.settingsNode(reg, table)
	if err != nil {
		return nil, err
	}
	cfg := g.config
	if cfg.info.Title == DefaultTitle && reg.Name() != "" {
		cfg.info.Title = reg.Name() + " style settings"
	}
	document := settingsDocument(cfg, root)
	if err := checkDocument(context.Background(), document); err != nil {
		return nil, err
	}
	return document, nil
}

// GenerateJSON is Generate encoded as indented JSON.
func (g *Generator) GenerateJSON(reg *styles.Registry, table styles.BreakpointTable) ([]byte, error) {
	document, err := g.Generate(reg, table)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(document, "", "  ")
}

func (g *Generator) settingsNode(reg *styles.Registry, table styles.BreakpointTable) (*schemaNode, error) {
	root := newObjectNode()
	root.Closed = g.config.strictKeys
	flat := reg.Flat()
	for _, id := range flat.IDs() {
		def, ok := flat.Get(id)
		if !ok {
			return nil, fmt.Errorf("openapi: field %q missing from index", id)
		}
		parent := root
		for i, segment := range flat.Path(id) {
			parent = parent.child(segment)
			parent.Closed = g.config.strictKeys
			if parent.Description == "" {
				parent.Description = reg.GroupLabel(flat.Path(id)[:i+1])
			}
		}
		parent.Properties[id] = fieldNode(def, table)
	}
	return root, nil
}

func fieldNode(def styles.FieldDefinition, table styles.BreakpointTable) *schemaNode {
	node := valueNode(def)
	if def.Responsive {
		perBreakpoint := &schemaNode{
			Type:       "object",
			Properties: map[string]*schemaNode{},
			Closed:     true,
		}
		for _, bp := range table.Entries() {
			perBreakpoint.Properties[bp.Name] = valueNode(def)
		}
		node = &schemaNode{AnyOf: []*schemaNode{node, perBreakpoint}}
	}
	node.Description = def.Label
	node.Default = def.Default
	node.extensions = map[string]any{
		"x-style-type": string(def.Type),
	}
	if def.Unit != "" {
		node.extensions["x-style-unit"] = def.Unit
	}
	if def.Responsive {
		node.extensions["x-style-responsive"] = true
	}
	if def.Decorative() {
		node.extensions["x-style-decorative"] = true
	}
	if def.Condition != "" {
		node.extensions["x-style-condition"] = def.Condition
	}
	return node
}
