package openapi

import (
	"strings"
)

// DefaultTitle is replaced by "<registry name> style settings" when the
// registry is named.
const DefaultTitle = "Widget Style Settings"

type generatorConfig struct {
	openAPIVersion string
	info           struct{ Title, Version, Description string }
	operation      struct{ Path, Method, OperationID, Summary string }
	contentType    string
	responses      map[string]responseConfig
	// strictKeys rejects settings keys that no field declares.
	strictKeys bool
}

type responseConfig struct {
	Description string
}

func defaultGeneratorConfig() generatorConfig {
	var cfg generatorConfig
	cfg.openAPIVersion = "3.0.3"
	cfg.info.Title = DefaultTitle
	cfg.info.Version = "1.0.0"
	cfg.operation.Path = "/settings"
	cfg.operation.Method = "put"
	cfg.contentType = "application/json"
	cfg.responses = map[string]responseConfig{"204": {Description: "Saved"}}
	return cfg
}

func (cfg generatorConfig) method() string {
	if method := strings.ToLower(strings.TrimSpace(cfg.operation.Method)); method != "" {
		return method
	}
	return "put"
}

func (cfg generatorConfig) operationID() string {
	if cfg.operation.OperationID != "" {
		return cfg.operation.OperationID
	}
	return cfg.method() + ":" + cfg.operation.Path
}

// GeneratorOption configures a Generator. Empty arguments keep the current
// value unless noted.
type GeneratorOption func(*generatorConfig)

// WithOpenAPIVersion sets the openapi version string (3.0.3 by default).
func WithOpenAPIVersion(version string) GeneratorOption {
	return func(cfg *generatorConfig) {
		setIfNotEmpty(&cfg.openAPIVersion, version)
	}
}

// WithInfo fills the info block.
func WithInfo(title, version, description string) GeneratorOption {
	return func(cfg *generatorConfig) {
		setIfNotEmpty(&cfg.info.Title, title)
		setIfNotEmpty(&cfg.info.Version, version)
		setIfNotEmpty(&cfg.info.Description, description)
	}
}

// WithOperation places the settings body on path and method (PUT /settings
// by default). The operationId defaults to "method:path".
func WithOperation(path, method, operationID string) GeneratorOption {
	return func(cfg *generatorConfig) {
		setIfNotEmpty(&cfg.operation.Path, path)
		setIfNotEmpty(&cfg.operation.Method, strings.ToLower(method))
		setIfNotEmpty(&cfg.operation.OperationID, operationID)
	}
}

// WithOperationSummary sets the operation summary; empty clears it.
func WithOperationSummary(summary string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.operation.Summary = summary
	}
}

// WithContentType sets the request body media type.
func WithContentType(contentType string) GeneratorOption {
	return func(cfg *generatorConfig) {
		setIfNotEmpty(&cfg.contentType, contentType)
	}
}

// WithResponse adds or replaces the response documented for status.
func WithResponse(status, description string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if status == "" {
			return
		}
		responses := make(map[string]responseConfig, len(cfg.responses)+1)
		for code, response := range cfg.responses {
			responses[code] = response
		}
		responses[status] = responseConfig{Description: description}
		cfg.responses = responses
	}
}

// WithStrictKeys closes every settings object (additionalProperties: false)
// so payloads with undeclared keys fail validation.
func WithStrictKeys() GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.strictKeys = true
	}
}

func setIfNotEmpty(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
