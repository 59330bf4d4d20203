package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	styles "github.com/goliatone/go-styles"
)

// ErrUnsupportedFormat is returned for breakpoint files that are neither TOML
// nor YAML.
var ErrUnsupportedFormat = errors.New("loader: unsupported document format")

// Format names a breakpoint document encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath derives the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// breakpointsDocument is shared by both encodings:
//
//	[[breakpoints]]
//	name = "desktop"
//
//	[[breakpoints]]
//	name = "tablet"
//	media_query = "(max-width: 1024px)"
//	max_width = 1024
type breakpointsDocument struct {
	Breakpoints []styles.Breakpoint `toml:"breakpoints" yaml:"breakpoints"`
}

// LoadBreakpoints decodes and validates a breakpoint table.
func LoadBreakpoints(r io.Reader, format Format) (styles.BreakpointTable, error) {
	var doc breakpointsDocument
	switch format {
	case FormatTOML:
		decoder := toml.NewDecoder(r)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&doc); err != nil {
			return styles.BreakpointTable{}, fmt.Errorf("loader: decode toml breakpoints: %w", err)
		}
	case FormatYAML:
		decoder := yaml.NewDecoder(r)
		decoder.KnownFields(true)
		if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return styles.BreakpointTable{}, fmt.Errorf("loader: decode yaml breakpoints: %w", err)
		}
	default:
		return styles.BreakpointTable{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return styles.NewBreakpointTable(doc.Breakpoints...)
}

// LoadBreakpointsFile picks the decoder from the file extension.
func LoadBreakpointsFile(path string) (styles.BreakpointTable, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return styles.BreakpointTable{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return styles.BreakpointTable{}, fmt.Errorf("loader: read %s: %w", path, err)
	}
	table, err := LoadBreakpoints(bytes.NewReader(data), format)
	if err != nil {
		return styles.BreakpointTable{}, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}
