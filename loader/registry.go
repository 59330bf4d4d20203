// Package loader builds style registries and breakpoint tables from YAML and
// TOML documents.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	styles "github.com/goliatone/go-styles"
)

// RegistryDocument is the YAML shape of a widget's field registry.
//
//	name: button
//	strict_placeholders: true
//	fields:
//	  - id: background_color
//	    type: color
//	groups:
//	  - id: layout
//	    label: Layout
//	    fields: [...]
type RegistryDocument struct {
	Name               string                   `yaml:"name"`
	StrictPlaceholders bool                     `yaml:"strict_placeholders,omitempty"`
	Fields             []styles.FieldDefinition `yaml:"fields,omitempty"`
	Groups             []GroupDocument          `yaml:"groups,omitempty"`
	Breakpoints        []styles.Breakpoint      `yaml:"breakpoints,omitempty"`
}

// GroupDocument is a labelled group of fields; groups nest.
type GroupDocument struct {
	ID     string                   `yaml:"id"`
	Label  string                   `yaml:"label,omitempty"`
	Fields []styles.FieldDefinition `yaml:"fields,omitempty"`
	Groups []GroupDocument          `yaml:"groups,omitempty"`
}

// Option configures loading.
type Option func(*config)

type config struct {
	log    *zap.Logger
	strict *bool
}

// WithLogger sets the logger handed to the built registry.
func WithLogger(log *zap.Logger) Option {
	return func(cfg *config) {
		cfg.log = log
	}
}

// WithStrictPlaceholders overrides the document's strict_placeholders flag.
func WithStrictPlaceholders(strict bool) Option {
	return func(cfg *config) {
		cfg.strict = &strict
	}
}

func newConfig(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.log == nil {
		cfg.log = zap.NewNop()
	}
	return cfg
}

// Loaded is a registry together with the breakpoint table its document
// declared. Breakpoints is zero when the document declares none.
type Loaded struct {
	Registry    *styles.Registry
	Breakpoints styles.BreakpointTable
}

// DecodeRegistry parses a registry document. Unknown keys are rejected.
func DecodeRegistry(r io.Reader) (RegistryDocument, error) {
	var doc RegistryDocument
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, fmt.Errorf("loader: registry document is empty")
		}
		return doc, fmt.Errorf("loader: decode registry: %w", err)
	}
	return doc, nil
}

// LoadRegistry decodes and builds a sealed registry. Every field problem is
// reported, combined with multierr, rather than only the first one.
func LoadRegistry(r io.Reader, opts ...Option) (Loaded, error) {
	doc, err := DecodeRegistry(r)
	if err != nil {
		return Loaded{}, err
	}
	return Build(doc, opts...)
}

// LoadRegistryFile is LoadRegistry for a file path.
func LoadRegistryFile(path string, opts ...Option) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, fmt.Errorf("loader: read %s: %w", path, err)
	}
	loaded, err := LoadRegistry(bytes.NewReader(data), opts...)
	if err != nil {
		return Loaded{}, fmt.Errorf("%s: %w", path, err)
	}
	return loaded, nil
}

// Build turns a decoded document into a sealed registry.
func Build(doc RegistryDocument, opts ...Option) (Loaded, error) {
	cfg := newConfig(opts)
	strict := doc.StrictPlaceholders
	if cfg.strict != nil {
		strict = *cfg.strict
	}

	registryOpts := []styles.RegistryOption{
		styles.WithRegistryName(strings.TrimSpace(doc.Name)),
		styles.WithRegistryLogger(cfg.log),
	}
	if strict {
		registryOpts = append(registryOpts, styles.WithStrictPlaceholders())
	}
	reg := styles.NewRegistry(registryOpts...)

	var errs error
	errs = multierr.Append(errs, registerFields(reg, nil, doc.Fields))
	for _, group := range doc.Groups {
		errs = multierr.Append(errs, registerGroup(reg, nil, group))
	}

	var table styles.BreakpointTable
	if len(doc.Breakpoints) > 0 {
		built, err := styles.NewBreakpointTable(doc.Breakpoints...)
		errs = multierr.Append(errs, err)
		table = built
	}
	if errs != nil {
		return Loaded{}, errs
	}
	return Loaded{Registry: reg.Seal(), Breakpoints: table}, nil
}

func registerGroup(reg *styles.Registry, parent []string, group GroupDocument) error {
	if err := reg.RegisterGroup(parent, group.ID, group.Label); err != nil {
		return err
	}
	path := append(append([]string(nil), parent...), group.ID)
	errs := registerFields(reg, path, group.Fields)
	for _, child := range group.Groups {
		errs = multierr.Append(errs, registerGroup(reg, path, child))
	}
	return errs
}

func registerFields(reg *styles.Registry, path []string, fields []styles.FieldDefinition) error {
	var errs error
	for _, def := range fields {
		// Types are matched case-insensitively in documents.
		if parsed, err := styles.ParseFieldType(string(def.Type)); err == nil {
			def.Type = parsed
		}
		errs = multierr.Append(errs, reg.RegisterField(path, def))
	}
	return errs
}
