package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// settingsDocument lays out the single-operation document that carries the
// settings schema as its request body.
func settingsDocument(cfg generatorConfig, root *schemaNode) map[string]any {
	info := map[string]any{
		"title":   cfg.info.Title,
		"version": cfg.info.Version,
	}
	if cfg.info.Description != "" {
		info["description"] = cfg.info.Description
	}

	responses := make(map[string]any, len(cfg.responses))
	for status, response := range cfg.responses {
		responses[status] = map[string]any{"description": response.Description}
	}

	method := cfg.method()
	operation := map[string]any{
		"operationId": cfg.operationID(),
		"requestBody": map[string]any{
			"required": true,
			"content": map[string]any{
				cfg.contentType: map[string]any{"schema": root.toMap()},
			},
		},
		"responses": responses,
	}
	if summary := strings.TrimSpace(cfg.operation.Summary); summary != "" {
		operation["summary"] = summary
	}

	return map[string]any{
		"openapi": cfg.openAPIVersion,
		"info":    info,
		"paths": map[string]any{
			cfg.operation.Path: map[string]any{method: operation},
		},
	}
}

// loadDocument parses raw with kin-openapi and runs its document validation,
// which also checks every field default against its schema.
func loadDocument(ctx context.Context, raw []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate document: %w", err)
	}
	return doc, nil
}

func checkDocument(ctx context.Context, document map[string]any) error {
	raw, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("openapi: encode document: %w", err)
	}
	_, err = loadDocument(ctx, raw)
	return err
}
