package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	styles "github.com/goliatone/go-styles"
)

// ErrInvalidSettings is wrapped by every payload validation failure.
var ErrInvalidSettings = errors.New("openapi: settings payload invalid")

// Validator checks settings payloads against a registry's OpenAPI schema.
type Validator struct {
	doc    *openapi3.T
	schema *openapi3.Schema
}

// NewValidator generates the registry document and resolves its request body
// schema. Registry defaults that do not match their field schema fail here.
func NewValidator(ctx context.Context, reg *styles.Registry, table styles.BreakpointTable, opts ...GeneratorOption) (*Validator, error) {
	generator := NewGenerator(opts...)
	raw, err := generator.GenerateJSON(reg, table)
	if err != nil {
		return nil, err
	}

	doc, err := loadDocument(ctx, raw)
	if err != nil {
		return nil, err
	}

	schema, err := requestSchema(doc, generator.config)
	if err != nil {
		return nil, err
	}
	return &Validator{doc: doc, schema: schema}, nil
}

// Document returns the loaded document.
func (v *Validator) Document() *openapi3.T {
	return v.doc
}

// Validate reports every schema violation in settings, joined under
// ErrInvalidSettings.
func (v *Validator) Validate(settings styles.Settings) error {
	if settings == nil {
		settings = styles.Settings{}
	}
	// Round-trip so Go ints and nested Settings become plain JSON values.
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := v.schema.VisitJSON(payload, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return nil
}

func requestSchema(doc *openapi3.T, cfg generatorConfig) (*openapi3.Schema, error) {
	if doc.Paths == nil {
		return nil, fmt.Errorf("openapi: document has no paths")
	}
	item := doc.Paths.Value(cfg.operation.Path)
	if item == nil {
		return nil, fmt.Errorf("openapi: path %q not found", cfg.operation.Path)
	}
	operation := item.GetOperation(strings.ToUpper(cfg.method()))
	if operation == nil || operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return nil, fmt.Errorf("openapi: %s %s has no request body", cfg.method(), cfg.operation.Path)
	}
	media := operation.RequestBody.Value.Content.Get(cfg.contentType)
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil, fmt.Errorf("openapi: %s %s has no %s schema", cfg.method(), cfg.operation.Path, cfg.contentType)
	}
	return media.Schema.Value, nil
}
