// Package config loads stylegen configuration: an embedded YAML template with
// defaults, overlaid by an optional user file, then sanitized and validated.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/rupor-github/gencfg"
	yaml "gopkg.in/yaml.v3"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	CompilerConfig struct {
		Format             string `yaml:"format" validate:"oneof=expanded compact"`
		Engine             string `yaml:"engine" validate:"oneof=expr cel js"`
		StrictPlaceholders bool   `yaml:"strict_placeholders"`
		BatchConcurrency   int    `yaml:"batch_concurrency" validate:"gte=0"`
		Breakpoints        string `yaml:"breakpoints,omitempty" validate:"omitempty,filepath"`
		ProgramCacheSize   int    `yaml:"program_cache_size" validate:"gte=0"`
	}

	CacheConfig struct {
		Backend string `yaml:"backend" validate:"oneof=none memory lru sqlite"`
		Size    int    `yaml:"size" validate:"required_if=Backend lru,gte=0"`
		Path    string `yaml:"path,omitempty" validate:"required_if=Backend sqlite"`
	}

	ActivityConfig struct {
		Enabled bool     `yaml:"enabled"`
		Channel string   `yaml:"channel" validate:"required_if=Enabled true"`
		Verbs   []string `yaml:"verbs,omitempty"`
	}

	Config struct {
		Version  int            `yaml:"version" validate:"eq=1"`
		Compiler CompilerConfig `yaml:"compiler"`
		Cache    CacheConfig    `yaml:"cache"`
		Activity ActivityConfig `yaml:"activity"`
		Logging  LoggingConfig  `yaml:"logging"`
	}
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are accepted, so yaml.Unmarshal is not enough
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration expands the embedded template, overlays the file at path
// (when given) and validates the result.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare returns the expanded default configuration.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
