package styles

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-styles/layering"
)

// Layer pairs a layering ref (kit, page or widget) with the settings captured
// for it.
type Layer struct {
	Ref        layering.Ref
	Label      string
	Settings   Settings
	SnapshotID string
}

// LayerOption configures optional metadata for a layer.
type LayerOption func(*Layer)

// WithLayerLabel sets a human-friendly label on the layer.
func WithLayerLabel(label string) LayerOption {
	return func(layer *Layer) {
		layer.Label = label
	}
}

// WithSnapshotID sets the snapshot identifier used for auditing.
func WithSnapshotID(id string) LayerOption {
	return func(layer *Layer) {
		layer.SnapshotID = id
	}
}

// NewLayer constructs a Layer with a detached copy of settings.
func NewLayer(ref layering.Ref, settings Settings, opts ...LayerOption) Layer {
	layer := Layer{
		Ref:      ref,
		Settings: settings.Clone(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&layer)
	}
	return layer
}

// KitLayer, PageLayer and WidgetLayer build layers for the standard levels.
func KitLayer(id string, settings Settings, opts ...LayerOption) Layer {
	return NewLayer(layering.Ref{Level: layering.LevelKit, ID: id}, settings, opts...)
}

func PageLayer(id string, settings Settings, opts ...LayerOption) Layer {
	return NewLayer(layering.Ref{Level: layering.LevelPage, ID: id}, settings, opts...)
}

func WidgetLayer(id string, settings Settings, opts ...LayerOption) Layer {
	return NewLayer(layering.Ref{Level: layering.LevelWidget, ID: id}, settings, opts...)
}

var (
	// ErrLayerLevelRequired indicates a layer without a known level.
	ErrLayerLevelRequired = errors.New("styles: layer level must be provided")
	// ErrDuplicateLayer indicates two layers share the same identifier.
	ErrDuplicateLayer = errors.New("styles: layer identifiers must be unique")
)

// LayerStack is an immutable set of settings layers ordered from strongest
// (widget) to weakest (kit).
type LayerStack struct {
	layers []Layer
}

// NewLayerStack validates and orders layers. Peers on the same level keep the
// order they were supplied in, earlier ones winning.
func NewLayerStack(layers ...Layer) (*LayerStack, error) {
	byID := make(map[string]Layer, len(layers))
	refs := make([]layering.Ref, 0, len(layers))
	for _, layer := range layers {
		if layer.Ref.Level == layering.LevelUnknown {
			return nil, fmt.Errorf("%w: %q", ErrLayerLevelRequired, layer.Ref.ID)
		}
		id := layer.Ref.Identifier()
		if _, exists := byID[id]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLayer, id)
		}
		layer.Settings = layer.Settings.Clone()
		byID[id] = layer
		refs = append(refs, layer.Ref)
	}
	chain := layering.NewChain(refs...)
	ordered := make([]Layer, 0, len(layers))
	for _, ref := range chain.Ordered() {
		ordered = append(ordered, byID[ref.Identifier()])
	}
	return &LayerStack{layers: ordered}, nil
}

// Layers returns copies of the layers, strongest first.
func (s *LayerStack) Layers() []Layer {
	if s == nil || len(s.layers) == 0 {
		return nil
	}
	out := make([]Layer, len(s.layers))
	for i, layer := range s.layers {
		layer.Settings = layer.Settings.Clone()
		out[i] = layer
	}
	return out
}

// Len returns the number of layers in the stack.
func (s *LayerStack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.layers)
}

// Merge flattens the stack into a single settings payload.
func (s *LayerStack) Merge() Settings {
	if s == nil || len(s.layers) == 0 {
		return Settings{}
	}
	payloads := make([]map[string]any, len(s.layers))
	for i, layer := range s.layers {
		payloads[i] = layer.Settings
	}
	merged := layering.Merge(payloads...)
	if merged == nil {
		return Settings{}
	}
	return Settings(merged)
}

// Source returns the identifier of the strongest layer that sets path.
func (s *LayerStack) Source(path ...string) (string, bool) {
	if s == nil {
		return "", false
	}
	for _, layer := range s.layers {
		if _, ok := layering.Lookup(layer.Settings, path...); ok {
			return layer.Ref.Identifier(), true
		}
	}
	return "", false
}

// Provenance reports, for every layer strongest first, whether it sets path
// and with which value.
func (s *LayerStack) Provenance(path ...string) []Provenance {
	if s == nil {
		return nil
	}
	joined := strings.Join(path, ".")
	out := make([]Provenance, 0, len(s.layers))
	for _, layer := range s.layers {
		value, found := layering.Lookup(layer.Settings, path...)
		out = append(out, Provenance{
			Layer:      layer.Ref.Identifier(),
			Label:      layer.Label,
			SnapshotID: layer.SnapshotID,
			Path:       joined,
			Value:      layering.Clone(value),
			Found:      found,
		})
	}
	return out
}
